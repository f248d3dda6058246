package reporting

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/harvest/internal/domain/models"
)

// Grouping selects how an aggregation breaks down its totals.
type Grouping string

const (
	GroupTotal   Grouping = "total"
	GroupSize    Grouping = "size"
	GroupQuality Grouping = "quality"
)

// ParseGrouping maps the query value onto a Grouping; empty means total.
func ParseGrouping(value string) (Grouping, error) {
	switch g := Grouping(strings.ToLower(strings.TrimSpace(value))); g {
	case "":
		return GroupTotal, nil
	case GroupTotal, GroupSize, GroupQuality:
		return g, nil
	default:
		return "", &models.ValidationError{Field: "group", Reason: fmt.Sprintf("unsupported grouping %q", value)}
	}
}

// Query filters ledger entries. A zero From or To leaves that end open.
type Query struct {
	From          models.Date
	To            models.Date
	CounterpartID int
	Certification string
	Grouping      Grouping
}

// Result is an aggregation over the filtered entries. For bucket groupings
// Buckets lists every vocabulary label in canonical order, zeros included.
type Result struct {
	Collection string                `json:"collection"`
	Grouping   Grouping              `json:"grouping"`
	From       models.Date           `json:"from"`
	To         models.Date           `json:"to"`
	Count      int                   `json:"count"`
	TotalKg    int                   `json:"total_kg"`
	TotalValue decimal.Decimal       `json:"total_value"`
	Buckets    []models.BucketAmount `json:"buckets,omitempty"`
}

// Display returns the non-zero buckets, canonical order kept.
func (r Result) Display() []models.BucketAmount {
	out := make([]models.BucketAmount, 0, len(r.Buckets))
	for _, b := range r.Buckets {
		if b.Kg != 0 {
			out = append(out, b)
		}
	}
	return out
}

// Rollup totals the entries of counterparts sharing a display name.
type Rollup struct {
	Name       string          `json:"name"`
	Count      int             `json:"count"`
	TotalKg    int             `json:"total_kg"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// LedgerSource lists ledger entries.
type LedgerSource interface {
	Receipts() []models.Receipt
	Orders() []models.Order
}

// NameSource resolves counterpart display names.
type NameSource interface {
	ProducerName(id int) string
	CustomerName(id int) string
}

// Service filters and groups ledger entries. Nothing is cached; every call
// recomputes from the ledger.
type Service struct {
	ledger LedgerSource
	names  NameSource
	logger *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(ledger LedgerSource, names NameSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{ledger: ledger, names: names, logger: logger}
}

// AggregateReceipts aggregates receipts matching the query.
func (s *Service) AggregateReceipts(q Query) (Result, error) {
	if err := checkQuery(q); err != nil {
		return Result{}, err
	}
	var matched []models.Receipt
	for _, r := range s.ledger.Receipts() {
		if !inRange(r.ReceiptDate, q) {
			continue
		}
		if q.CounterpartID != 0 && r.ProducerID != q.CounterpartID {
			continue
		}
		if q.Certification != "" && !r.HasCertification(q.Certification) {
			continue
		}
		matched = append(matched, r)
	}

	result := aggregate("receipts", q, matched, func(r models.Receipt) (models.Quantities, models.Quantities) {
		return r.SizeQuantities, r.QualityQuantities
	})
	s.logger.Debug("receipts aggregated",
		zap.String("grouping", string(q.Grouping)),
		zap.Int("count", result.Count),
		zap.Int("total_kg", result.TotalKg))
	return result, nil
}

// AggregateOrders aggregates orders matching the query. Bucket groupings sum
// the delivered quantities, which also govern an order's value.
func (s *Service) AggregateOrders(q Query) (Result, error) {
	if q.Certification != "" {
		return Result{}, &models.ValidationError{Field: "certification", Reason: "only applies to receipts"}
	}
	if err := checkQuery(q); err != nil {
		return Result{}, err
	}
	var matched []models.Order
	for _, o := range s.ledger.Orders() {
		if !inRange(o.OrderDate, q) {
			continue
		}
		if q.CounterpartID != 0 && o.CustomerID != q.CounterpartID {
			continue
		}
		matched = append(matched, o)
	}

	result := aggregate("orders", q, matched, func(o models.Order) (models.Quantities, models.Quantities) {
		return o.DeliveredSize, o.DeliveredQuality
	})
	s.logger.Debug("orders aggregated",
		zap.String("grouping", string(q.Grouping)),
		zap.Int("count", result.Count),
		zap.Int("total_kg", result.TotalKg))
	return result, nil
}

// ProducerRollup totals receipts per producer display name. Producers sharing
// a name are merged.
func (s *Service) ProducerRollup(from, to models.Date) []Rollup {
	q := Query{From: from, To: to}
	var entries []models.Receipt
	for _, r := range s.ledger.Receipts() {
		if inRange(r.ReceiptDate, q) {
			entries = append(entries, r)
		}
	}
	return rollup(entries, s.names.ProducerName)
}

// CustomerRollup totals orders per customer display name. Customers sharing a
// name are merged.
func (s *Service) CustomerRollup(from, to models.Date) []Rollup {
	q := Query{From: from, To: to}
	var entries []models.Order
	for _, o := range s.ledger.Orders() {
		if inRange(o.OrderDate, q) {
			entries = append(entries, o)
		}
	}
	return rollup(entries, s.names.CustomerName)
}

// WeeklySummary renders the intake and outbound totals from Monday of the
// week containing now up to now.
func (s *Service) WeeklySummary(now time.Time) string {
	start := models.DateOf(mondayStart(now))
	end := models.DateOf(now)

	receipts, receiptsErr := s.AggregateReceipts(Query{From: start, To: end, Grouping: GroupSize})
	orders, ordersErr := s.AggregateOrders(Query{From: start, To: end})

	var b strings.Builder
	fmt.Fprintf(&b, "Weekly summary (%s - %s)\n", start, end)
	s.writeReceiptSection(&b, receipts, receiptsErr)
	s.writeOrderSection(&b, orders, ordersErr)
	for _, r := range s.ProducerRollup(start, end) {
		fmt.Fprintf(&b, "  %s: %d kg\n", r.Name, r.TotalKg)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *Service) writeReceiptSection(b *strings.Builder, receipts Result, err error) {
	switch {
	case err != nil:
		s.logger.Error("weekly receipts aggregation failed", zap.Error(err))
		b.WriteString("Receipts: unavailable.\n")
	case receipts.Count == 0:
		b.WriteString("Receipts: no records yet.\n")
	default:
		fmt.Fprintf(b, "Receipts: %d entries, %d kg, value %s.\n", receipts.Count, receipts.TotalKg, receipts.TotalValue.StringFixed(2))
		for _, bucket := range receipts.Display() {
			fmt.Fprintf(b, "  size %s: %d kg\n", bucket.Label, bucket.Kg)
		}
	}
}

func (s *Service) writeOrderSection(b *strings.Builder, orders Result, err error) {
	switch {
	case err != nil:
		s.logger.Error("weekly orders aggregation failed", zap.Error(err))
		b.WriteString("Orders: unavailable.\n")
	case orders.Count == 0:
		b.WriteString("Orders: no records yet.\n")
	default:
		fmt.Fprintf(b, "Orders: %d entries, %d kg delivered, value %s.\n", orders.Count, orders.TotalKg, orders.TotalValue.StringFixed(2))
	}
}

func aggregate[E models.Entry](collection string, q Query, entries []E, buckets func(E) (models.Quantities, models.Quantities)) Result {
	grouping := q.Grouping
	if grouping == "" {
		grouping = GroupTotal
	}
	result := Result{
		Collection: collection,
		Grouping:   grouping,
		From:       q.From,
		To:         q.To,
		TotalValue: decimal.Zero,
	}
	summed := models.Quantities{}
	for _, e := range entries {
		result.Count++
		result.TotalKg += e.GoverningKg()
		result.TotalValue = result.TotalValue.Add(e.Value())

		size, quality := buckets(e)
		source := size
		if grouping == GroupQuality {
			source = quality
		}
		for label, kg := range source {
			summed[label] += kg
		}
	}

	switch grouping {
	case GroupSize:
		result.Buckets = summed.Ordered(models.SizeLabels)
	case GroupQuality:
		result.Buckets = summed.Ordered(models.QualityGrades)
	}
	return result
}

func rollup[E models.Entry](entries []E, name func(int) string) []Rollup {
	byName := map[string]*Rollup{}
	for _, e := range entries {
		key := name(e.CounterpartID())
		row, ok := byName[key]
		if !ok {
			row = &Rollup{Name: key, TotalValue: decimal.Zero}
			byName[key] = row
		}
		row.Count++
		row.TotalKg += e.GoverningKg()
		row.TotalValue = row.TotalValue.Add(e.Value())
	}

	out := make([]Rollup, 0, len(byName))
	for _, row := range byName {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func checkQuery(q Query) error {
	if _, err := ParseGrouping(string(q.Grouping)); err != nil {
		return err
	}
	if !q.From.IsZero() && !q.To.IsZero() && q.From.After(q.To.Time) {
		return &models.ValidationError{Field: "from", Reason: "must not be after to"}
	}
	return nil
}

func inRange(d models.Date, q Query) bool {
	if !q.From.IsZero() && d.Before(q.From.Time) {
		return false
	}
	if !q.To.IsZero() && d.After(q.To.Time) {
		return false
	}
	return true
}

func mondayStart(t time.Time) time.Time {
	weekday := int(t.Weekday())
	daysSinceMonday := (weekday + 6) % 7
	start := t.AddDate(0, 0, -daysSinceMonday)
	return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
}
