package reporting

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mamadbah2/harvest/internal/domain/models"
)

type fakeLedger struct {
	receipts []models.Receipt
	orders   []models.Order
}

func (f fakeLedger) Receipts() []models.Receipt { return f.receipts }
func (f fakeLedger) Orders() []models.Order { return f.orders }

type fakeNames map[int]string

func (f fakeNames) ProducerName(id int) string { return f.name(id) }
func (f fakeNames) CustomerName(id int) string { return f.name(id) }

func (f fakeNames) name(id int) string {
	if n, ok := f[id]; ok {
		return n
	}
	return fmt.Sprintf("#%d", id)
}

func receipt(id, producer int, date models.Date, size models.Quantities, certs ...string) models.Receipt {
	r := models.Receipt{
		ID:             id,
		ProducerID:     producer,
		ReceiptDate:    date,
		SizeQuantities: size,
		Certifications: certs,
		PricePerKg:     decimal.NewFromInt(1),
	}
	r.Normalize()
	return r
}

func march(d int) models.Date { return models.NewDate(2024, time.March, d) }

func newService(l fakeLedger) *Service {
	return NewService(l, fakeNames{1: "Alpha", 2: "Beta", 3: "Alpha"}, nil)
}

func TestAggregateReceiptsBySize(t *testing.T) {
	svc := newService(fakeLedger{receipts: []models.Receipt{
		receipt(1, 1, march(1), models.Quantities{"10": 100}),
		receipt(2, 2, march(31), models.Quantities{"26-32": 40, "10": 10}),
		receipt(3, 1, models.NewDate(2024, time.April, 1), models.Quantities{"12": 999}),
		receipt(4, 1, models.NewDate(2024, time.February, 29), models.Quantities{"4": 999}),
	}})

	result, err := svc.AggregateReceipts(Query{From: march(1), To: march(31), Grouping: GroupSize})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Count, "both range ends are inclusive")
	assert.Equal(t, 150, result.TotalKg)
	assert.Equal(t, "150", result.TotalValue.String())

	require.Len(t, result.Buckets, len(models.SizeLabels))
	for i, b := range result.Buckets {
		assert.Equal(t, models.SizeLabels[i], b.Label)
	}
	assert.Equal(t, []models.BucketAmount{{Label: "10", Kg: 110}, {Label: "26-32", Kg: 40}}, result.Display())
}

func TestAggregateReceiptsFilters(t *testing.T) {
	svc := newService(fakeLedger{receipts: []models.Receipt{
		receipt(1, 1, march(1), models.Quantities{"10": 100}, "Organic"),
		receipt(2, 2, march(2), models.Quantities{"10": 30}, "GlobalGAP"),
		receipt(3, 1, march(3), models.Quantities{"10": 7}),
	}})

	byProducer, err := svc.AggregateReceipts(Query{CounterpartID: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, byProducer.Count)
	assert.Equal(t, 107, byProducer.TotalKg)
	assert.Nil(t, byProducer.Buckets)

	organic, err := svc.AggregateReceipts(Query{Certification: "Organic"})
	require.NoError(t, err)
	assert.Equal(t, 1, organic.Count)

	openStart, err := svc.AggregateReceipts(Query{To: march(2)})
	require.NoError(t, err)
	assert.Equal(t, 130, openStart.TotalKg)
}

func TestAggregateByQuality(t *testing.T) {
	r := receipt(1, 1, march(1), models.Quantities{"10": 5})
	r.QualityQuantities = models.Quantities{"Extra": 20, "II": 3}
	r.Normalize()
	svc := newService(fakeLedger{receipts: []models.Receipt{r}})

	result, err := svc.AggregateReceipts(Query{Grouping: GroupQuality})
	require.NoError(t, err)
	assert.Equal(t, 28, result.TotalKg)
	assert.Len(t, result.Buckets, len(models.QualityGrades))
	assert.Equal(t, []models.BucketAmount{{Label: "Extra", Kg: 20}, {Label: "II", Kg: 3}}, result.Display())
}

func TestAggregateOrdersUsesDelivered(t *testing.T) {
	o := models.Order{
		ID:            1,
		CustomerID:    2,
		OrderDate:     march(4),
		OrderedSize:   models.Quantities{"8": 100},
		DeliveredSize: models.Quantities{"8": 80},
		PricePerKg:    decimal.RequireFromString("0.5"),
	}
	o.Normalize()
	svc := newService(fakeLedger{orders: []models.Order{o}})

	result, err := svc.AggregateOrders(Query{Grouping: GroupSize})
	require.NoError(t, err)
	assert.Equal(t, 80, result.TotalKg)
	assert.Equal(t, "40", result.TotalValue.String())
	assert.Equal(t, []models.BucketAmount{{Label: "8", Kg: 80}}, result.Display())

	_, err = svc.AggregateOrders(Query{Certification: "Organic"})
	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestQueryValidation(t *testing.T) {
	svc := newService(fakeLedger{})
	var verr *models.ValidationError

	_, err := svc.AggregateReceipts(Query{From: march(10), To: march(1)})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "from", verr.Field)

	_, err = svc.AggregateReceipts(Query{Grouping: "weekly"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "group", verr.Field)

	empty, err := svc.AggregateReceipts(Query{})
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Count)
	assert.True(t, empty.TotalValue.IsZero())
}

func TestParseGrouping(t *testing.T) {
	g, err := ParseGrouping("")
	require.NoError(t, err)
	assert.Equal(t, GroupTotal, g)

	g, err = ParseGrouping(" Size ")
	require.NoError(t, err)
	assert.Equal(t, GroupSize, g)

	_, err = ParseGrouping("month")
	assert.Error(t, err)
}

func TestProducerRollupMergesSharedNames(t *testing.T) {
	svc := newService(fakeLedger{receipts: []models.Receipt{
		receipt(1, 1, march(1), models.Quantities{"10": 10}),
		receipt(2, 3, march(2), models.Quantities{"10": 5}),
		receipt(3, 2, march(3), models.Quantities{"10": 1}),
		receipt(4, 9, march(3), models.Quantities{"10": 2}),
	}})

	rows := svc.ProducerRollup(models.Date{}, models.Date{})
	require.Len(t, rows, 3)
	assert.Equal(t, "#9", rows[0].Name)
	assert.Equal(t, "2", rows[0].TotalValue.String())
	assert.Equal(t, "Alpha", rows[1].Name)
	assert.Equal(t, 2, rows[1].Count)
	assert.Equal(t, 15, rows[1].TotalKg)
	assert.Equal(t, "Beta", rows[2].Name)
}

func TestWeeklySummary(t *testing.T) {
	// Wednesday 2024-03-13; the week starts Monday 2024-03-11.
	now := time.Date(2024, time.March, 13, 18, 0, 0, 0, time.UTC)
	svc := newService(fakeLedger{receipts: []models.Receipt{
		receipt(1, 1, march(11), models.Quantities{"10": 10}),
		receipt(2, 2, march(10), models.Quantities{"10": 99}),
	}})

	summary := svc.WeeklySummary(now)
	assert.Contains(t, summary, "Weekly summary (2024-03-11 - 2024-03-13)")
	assert.Contains(t, summary, "Receipts: 1 entries, 10 kg")
	assert.Contains(t, summary, "size 10: 10 kg")
	assert.Contains(t, summary, "Orders: no records yet.")
	assert.NotContains(t, summary, "99")
}

func TestWeeklySectionsLogAggregationErrors(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	svc := NewService(fakeLedger{}, fakeNames{}, zap.New(core))
	failure := errors.New("ledger offline")

	var b strings.Builder
	svc.writeReceiptSection(&b, Result{}, failure)
	svc.writeOrderSection(&b, Result{}, failure)

	assert.Equal(t, "Receipts: unavailable.\nOrders: unavailable.\n", b.String())
	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "weekly receipts aggregation failed", entries[0].Message)
	assert.Equal(t, "weekly orders aggregation failed", entries[1].Message)
	assert.Equal(t, "ledger offline", entries[0].ContextMap()["error"])
}

func TestWeeklySummaryLogsNothingOnSuccess(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	svc := NewService(fakeLedger{}, fakeNames{}, zap.New(core))

	summary := svc.WeeklySummary(time.Date(2024, time.March, 13, 18, 0, 0, 0, time.UTC))
	assert.Contains(t, summary, "Receipts: no records yet.")
	assert.Zero(t, logs.Len())
}
