package models

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// SchemaVersion is the current on-disk version of ledger records.
const SchemaVersion = 2

// Entry is the common surface of receipts and orders.
type Entry interface {
	Identified
	LotCode() string
	EntryDate() Date
	CounterpartID() int
	GoverningKg() int
	Value() decimal.Decimal
}

// Receipt records goods taken in from a producer.
type Receipt struct {
	ID                int             `json:"id"`
	ReceiptDate       Date            `json:"receipt_date"`
	ProducerID        int             `json:"producer_id"`
	Variety           string          `json:"variety"`
	Lot               string          `json:"lot"`
	StorageLocationID int             `json:"storage_location_id"`
	SizeQuantities    Quantities      `json:"size_quantities"`
	QualityQuantities Quantities      `json:"quality_quantities"`
	Certifications    []string        `json:"certifications"`
	PricePerKg        decimal.Decimal `json:"price_per_kg"`
	TotalKg           int             `json:"total_kg"`
	TotalValue        decimal.Decimal `json:"total_value"`
	Paid              bool            `json:"paid"`
	Notes             string          `json:"notes"`
	CreatedBy         string          `json:"created_by"`
	CreatedAt         time.Time       `json:"created_at"`
	SchemaVersion     int             `json:"schema_version"`
}

func (r Receipt) Key() int { return r.ID }
func (r Receipt) LotCode() string { return r.Lot }
func (r Receipt) EntryDate() Date { return r.ReceiptDate }
func (r Receipt) CounterpartID() int { return r.ProducerID }
func (r Receipt) GoverningKg() int { return r.TotalKg }
func (r Receipt) Value() decimal.Decimal { return r.TotalValue }

// HasCertification reports whether the receipt carries the label.
func (r Receipt) HasCertification(label string) bool {
	return slices.Contains(r.Certifications, label)
}

// Recompute derives TotalKg and TotalValue from the buckets and price.
func (r *Receipt) Recompute() {
	r.TotalKg = r.SizeQuantities.Sum() + r.QualityQuantities.Sum()
	r.TotalValue = r.PricePerKg.Mul(decimal.NewFromInt(int64(r.TotalKg)))
}

// Normalize fills defaults for fields older records may lack and recomputes derived values.
func (r *Receipt) Normalize() {
	if r.SizeQuantities == nil {
		r.SizeQuantities = Quantities{}
	}
	if r.QualityQuantities == nil {
		r.QualityQuantities = Quantities{}
	}
	if r.Certifications == nil {
		r.Certifications = []string{}
	}
	r.Recompute()
	r.SchemaVersion = SchemaVersion
}

// Order records goods promised and delivered to a customer. Its value is
// based on the delivered quantity.
type Order struct {
	ID               int             `json:"id"`
	OrderDate        Date            `json:"order_date"`
	CustomerID       int             `json:"customer_id"`
	Variety          string          `json:"variety"`
	Lot              string          `json:"lot"`
	OrderedSize      Quantities      `json:"ordered_size_quantities"`
	OrderedQuality   Quantities      `json:"ordered_quality_quantities"`
	DeliveredSize    Quantities      `json:"delivered_size_quantities"`
	DeliveredQuality Quantities      `json:"delivered_quality_quantities"`
	PricePerKg       decimal.Decimal `json:"price_per_kg"`
	TotalOrderedKg   int             `json:"total_ordered_kg"`
	TotalDeliveredKg int             `json:"total_delivered_kg"`
	TotalValue       decimal.Decimal `json:"total_value"`
	Paid             bool            `json:"paid"`
	Notes            string          `json:"notes"`
	CreatedBy        string          `json:"created_by"`
	CreatedAt        time.Time       `json:"created_at"`
	SchemaVersion    int             `json:"schema_version"`
}

func (o Order) Key() int { return o.ID }
func (o Order) LotCode() string { return o.Lot }
func (o Order) EntryDate() Date { return o.OrderDate }
func (o Order) CounterpartID() int { return o.CustomerID }
func (o Order) GoverningKg() int { return o.TotalDeliveredKg }
func (o Order) Value() decimal.Decimal { return o.TotalValue }

// Recompute derives the ordered and delivered totals and the delivered value.
func (o *Order) Recompute() {
	o.TotalOrderedKg = o.OrderedSize.Sum() + o.OrderedQuality.Sum()
	o.TotalDeliveredKg = o.DeliveredSize.Sum() + o.DeliveredQuality.Sum()
	o.TotalValue = o.PricePerKg.Mul(decimal.NewFromInt(int64(o.TotalDeliveredKg)))
}

// Normalize fills defaults for fields older records may lack and recomputes derived values.
func (o *Order) Normalize() {
	for _, q := range []*Quantities{&o.OrderedSize, &o.OrderedQuality, &o.DeliveredSize, &o.DeliveredQuality} {
		if *q == nil {
			*q = Quantities{}
		}
	}
	o.Recompute()
	o.SchemaVersion = SchemaVersion
}

// UnmarshalJSON accepts first-version orders, whose ordered buckets were stored
// as size_quantities / quality_quantities.
func (o *Order) UnmarshalJSON(data []byte) error {
	type plain Order
	var doc struct {
		plain
		LegacySize    Quantities `json:"size_quantities"`
		LegacyQuality Quantities `json:"quality_quantities"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*o = Order(doc.plain)
	if len(o.OrderedSize) == 0 && len(doc.LegacySize) > 0 {
		o.OrderedSize = doc.LegacySize
	}
	if len(o.OrderedQuality) == 0 && len(doc.LegacyQuality) > 0 {
		o.OrderedQuality = doc.LegacyQuality
	}
	return nil
}

// Clone returns a copy that shares no maps or slices with r.
func (r Receipt) Clone() Receipt {
	r.SizeQuantities = r.SizeQuantities.Clone()
	r.QualityQuantities = r.QualityQuantities.Clone()
	r.Certifications = append([]string{}, r.Certifications...)
	return r
}

// Clone returns a copy that shares no maps with o.
func (o Order) Clone() Order {
	o.OrderedSize = o.OrderedSize.Clone()
	o.OrderedQuality = o.OrderedQuality.Clone()
	o.DeliveredSize = o.DeliveredSize.Clone()
	o.DeliveredQuality = o.DeliveredQuality.Clone()
	return o
}
