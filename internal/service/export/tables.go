package export

import (
	"strings"

	"github.com/mamadbah2/harvest/internal/domain/models"
	"github.com/mamadbah2/harvest/internal/service/reporting"
)

// Table is an ordered tabular section. Cells hold native values (int, string,
// bool, decimal.Decimal, time.Time, models.Date); writers render them.
type Table struct {
	Name   string
	Slug   string
	Header []string
	Rows   [][]any
}

// Snapshot is every collection at a point in time.
type Snapshot struct {
	Producers []models.Producer
	Customers []models.Customer
	Agencies  []models.Agency
	Locations []models.StorageLocation
	Receipts  []models.Receipt
	Orders    []models.Order
}

// Workbook lays the snapshot out as one table per collection, columns in
// record declaration order and grading buckets flattened per label.
func Workbook(s Snapshot) []Table {
	return []Table{
		ProducersTable(s.Producers),
		CustomersTable(s.Customers),
		AgenciesTable(s.Agencies),
		LocationsTable(s.Locations),
		ReceiptsTable(s.Receipts),
		OrdersTable(s.Orders),
	}
}

// Find returns the table with the given slug.
func Find(tables []Table, slug string) (Table, bool) {
	for _, t := range tables {
		if t.Slug == slug {
			return t, true
		}
	}
	return Table{}, false
}

func ProducersTable(items []models.Producer) Table {
	t := Table{Name: "Producers", Slug: "producers", Header: []string{"id", "name", "quantity", "certifications"}}
	for _, p := range items {
		t.Rows = append(t.Rows, []any{p.ID, p.Name, p.Quantity, strings.Join(p.Certifications, "; ")})
	}
	return t
}

func CustomersTable(items []models.Customer) Table {
	t := Table{Name: "Customers", Slug: "customers", Header: []string{"id", "name", "address", "phone"}}
	for _, c := range items {
		t.Rows = append(t.Rows, []any{c.ID, c.Name, c.Address, c.Phone})
	}
	return t
}

func AgenciesTable(items []models.Agency) Table {
	t := Table{Name: "Agencies", Slug: "agencies", Header: []string{"id", "name", "contact", "phone"}}
	for _, a := range items {
		t.Rows = append(t.Rows, []any{a.ID, a.Name, a.Contact, a.Phone})
	}
	return t
}

func LocationsTable(items []models.StorageLocation) Table {
	t := Table{Name: "StorageLocations", Slug: "storage-locations", Header: []string{"id", "name", "capacity", "description"}}
	for _, s := range items {
		t.Rows = append(t.Rows, []any{s.ID, s.Name, s.Capacity, s.Description})
	}
	return t
}

func ReceiptsTable(items []models.Receipt) Table {
	header := []string{"id", "receipt_date", "producer_id", "variety", "lot", "storage_location_id"}
	header = append(header, bucketColumns("size", models.SizeLabels)...)
	header = append(header, bucketColumns("quality", models.QualityGrades)...)
	header = append(header, "certifications", "price_per_kg", "total_kg", "total_value", "paid", "notes", "created_by", "created_at")

	t := Table{Name: "Receipts", Slug: "receipts", Header: header}
	for _, r := range items {
		row := []any{r.ID, r.ReceiptDate, r.ProducerID, r.Variety, r.Lot, r.StorageLocationID}
		row = appendBuckets(row, r.SizeQuantities, models.SizeLabels)
		row = appendBuckets(row, r.QualityQuantities, models.QualityGrades)
		row = append(row, strings.Join(r.Certifications, "; "), r.PricePerKg, r.TotalKg, r.TotalValue, r.Paid, r.Notes, r.CreatedBy, r.CreatedAt)
		t.Rows = append(t.Rows, row)
	}
	return t
}

func OrdersTable(items []models.Order) Table {
	header := []string{"id", "order_date", "customer_id", "variety", "lot"}
	header = append(header, bucketColumns("ordered_size", models.SizeLabels)...)
	header = append(header, bucketColumns("ordered_quality", models.QualityGrades)...)
	header = append(header, bucketColumns("delivered_size", models.SizeLabels)...)
	header = append(header, bucketColumns("delivered_quality", models.QualityGrades)...)
	header = append(header, "price_per_kg", "total_ordered_kg", "total_delivered_kg", "total_value", "paid", "notes", "created_by", "created_at")

	t := Table{Name: "Orders", Slug: "orders", Header: header}
	for _, o := range items {
		row := []any{o.ID, o.OrderDate, o.CustomerID, o.Variety, o.Lot}
		row = appendBuckets(row, o.OrderedSize, models.SizeLabels)
		row = appendBuckets(row, o.OrderedQuality, models.QualityGrades)
		row = appendBuckets(row, o.DeliveredSize, models.SizeLabels)
		row = appendBuckets(row, o.DeliveredQuality, models.QualityGrades)
		row = append(row, o.PricePerKg, o.TotalOrderedKg, o.TotalDeliveredKg, o.TotalValue, o.Paid, o.Notes, o.CreatedBy, o.CreatedAt)
		t.Rows = append(t.Rows, row)
	}
	return t
}

// AggregateTable exports an aggregation. Bucket groupings list every label,
// zero-valued ones included, in canonical order.
func AggregateTable(r reporting.Result) Table {
	t := Table{Name: "Report", Slug: "report"}
	if r.Grouping == reporting.GroupTotal || r.Grouping == "" {
		t.Header = []string{"collection", "from", "to", "count", "total_kg", "total_value"}
		t.Rows = [][]any{{r.Collection, r.From, r.To, r.Count, r.TotalKg, r.TotalValue}}
		return t
	}
	t.Header = []string{"label", "kg"}
	for _, b := range r.Buckets {
		t.Rows = append(t.Rows, []any{b.Label, b.Kg})
	}
	return t
}

// RollupTable exports a per-name rollup.
func RollupTable(rows []reporting.Rollup) Table {
	t := Table{Name: "Rollup", Slug: "rollup", Header: []string{"name", "count", "total_kg", "total_value"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.Name, r.Count, r.TotalKg, r.TotalValue})
	}
	return t
}

func bucketColumns(prefix string, vocab []string) []string {
	out := make([]string, 0, len(vocab))
	for _, label := range vocab {
		out = append(out, prefix+"_"+label)
	}
	return out
}

func appendBuckets(row []any, q models.Quantities, vocab []string) []any {
	for _, label := range vocab {
		row = append(row, q[label])
	}
	return row
}
