package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/harvest/internal/domain/models"
	"github.com/mamadbah2/harvest/internal/service/reporting"
)

func sampleSnapshot() Snapshot {
	r := models.Receipt{
		ID:             1,
		ReceiptDate:    models.NewDate(2024, time.March, 10),
		ProducerID:     1,
		Variety:        "Valencia",
		Lot:            "240310-1-VAL",
		SizeQuantities: models.Quantities{"10": 100, "12": 50},
		Certifications: []string{"GlobalGAP", "Organic"},
		PricePerKg:     decimal.RequireFromString("0.80"),
		CreatedBy:      "admin",
		CreatedAt:      time.Date(2024, time.March, 10, 8, 0, 0, 0, time.UTC),
	}
	r.Normalize()
	return Snapshot{
		Producers: []models.Producer{{ID: 1, Name: "Παραγωγός Α", Quantity: 1500, Certifications: []string{"GlobalGAP"}}},
		Locations: []models.StorageLocation{{ID: 1, Name: "Cold room", Capacity: 1000}},
		Receipts:  []models.Receipt{r},
	}
}

func TestWorkbookLayout(t *testing.T) {
	tables := Workbook(sampleSnapshot())
	require.Len(t, tables, 6)

	names := make([]string, 0, len(tables))
	for _, tbl := range tables {
		names = append(names, tbl.Name)
		for _, row := range tbl.Rows {
			assert.Len(t, row, len(tbl.Header), tbl.Name)
		}
	}
	assert.Equal(t, []string{"Producers", "Customers", "Agencies", "StorageLocations", "Receipts", "Orders"}, names)

	receipts, ok := Find(tables, "receipts")
	require.True(t, ok)
	assert.Equal(t, []string{"id", "receipt_date", "producer_id", "variety", "lot", "storage_location_id", "size_4"}, receipts.Header[:7])
	assert.Equal(t, "quality_Extra", receipts.Header[6+len(models.SizeLabels)])
	assert.Equal(t, "created_at", receipts.Header[len(receipts.Header)-1])

	orders, ok := Find(tables, "orders")
	require.True(t, ok)
	assert.Len(t, orders.Header, 5+2*len(models.SizeLabels)+2*len(models.QualityGrades)+8)

	_, ok = Find(tables, "missing")
	assert.False(t, ok)
}

func TestWriteCSV(t *testing.T) {
	receipts, _ := Find(Workbook(sampleSnapshot()), "receipts")

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, receipts))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	row := map[string]string{}
	for i, h := range records[0] {
		row[h] = records[1][i]
	}
	assert.Equal(t, "2024-03-10", row["receipt_date"])
	assert.Equal(t, "240310-1-VAL", row["lot"])
	assert.Equal(t, "100", row["size_10"])
	assert.Equal(t, "0", row["size_4"])
	assert.Equal(t, "GlobalGAP; Organic", row["certifications"])
	assert.Equal(t, "0.8", row["price_per_kg"])
	assert.Equal(t, "150", row["total_kg"])
	assert.Equal(t, "120", row["total_value"])
	assert.Equal(t, "false", row["paid"])
	assert.Equal(t, "2024-03-10T08:00:00Z", row["created_at"])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, Workbook(sampleSnapshot())))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"Producers", "Customers", "Agencies", "StorageLocations", "Receipts", "Orders"}, f.GetSheetList())

	name, err := f.GetCellValue("Producers", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Παραγωγός Α", name)

	lot, err := f.GetCellValue("Receipts", "E2")
	require.NoError(t, err)
	assert.Equal(t, "240310-1-VAL", lot)

	header, err := f.GetCellValue("Orders", "A1")
	require.NoError(t, err)
	assert.Equal(t, "id", header)
}

func TestAggregateTableIncludesZeroBuckets(t *testing.T) {
	result := reporting.Result{
		Collection: "receipts",
		Grouping:   reporting.GroupSize,
		Buckets:    models.Quantities{"10": 110, "26-32": 40}.Ordered(models.SizeLabels),
	}
	tbl := AggregateTable(result)

	assert.Equal(t, []string{"label", "kg"}, tbl.Header)
	require.Len(t, tbl.Rows, len(models.SizeLabels))
	assert.Equal(t, []any{"4", 0}, tbl.Rows[0])
	assert.Equal(t, []any{"10", 110}, tbl.Rows[6])

	total := AggregateTable(reporting.Result{Collection: "orders", Grouping: reporting.GroupTotal, Count: 2, TotalKg: 9, TotalValue: decimal.NewFromInt(3)})
	assert.Equal(t, []string{"collection", "from", "to", "count", "total_kg", "total_value"}, total.Header)
	require.Len(t, total.Rows, 1)
}

type recordingSink map[string][][]interface{}

func (r recordingSink) ReplaceSheet(_ context.Context, sheet string, rows [][]interface{}) error {
	r[sheet] = rows
	return nil
}

func TestPushSheets(t *testing.T) {
	sink := recordingSink{}
	require.NoError(t, PushSheets(context.Background(), sink, Workbook(sampleSnapshot())))

	require.Len(t, sink, 6)
	producers := sink["Producers"]
	require.Len(t, producers, 2)
	assert.Equal(t, []interface{}{"id", "name", "quantity", "certifications"}, producers[0])
	assert.Equal(t, []interface{}{"1", "Παραγωγός Α", "1500", "GlobalGAP"}, producers[1])
	assert.Len(t, sink["Customers"], 1)
}
