package ledger

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/harvest/internal/domain/models"
	"github.com/mamadbah2/harvest/internal/service/lot"
	"github.com/mamadbah2/harvest/internal/service/registry"
)

// Stamp identifies who created an entry and when.
type Stamp struct {
	By string
	At time.Time
}

// ReceiptDraft is a receipt submission before derived fields are computed.
type ReceiptDraft struct {
	ReceiptDate       models.Date       `json:"receipt_date"`
	ProducerID        int               `json:"producer_id"`
	Variety           string            `json:"variety"`
	StorageLocationID int               `json:"storage_location_id"`
	SizeQuantities    models.Quantities `json:"size_quantities"`
	QualityQuantities models.Quantities `json:"quality_quantities"`
	Certifications    []string          `json:"certifications"`
	PricePerKg        decimal.Decimal   `json:"price_per_kg"`
	Paid              bool              `json:"paid"`
	Notes             string            `json:"notes"`
}

// OrderDraft is an order submission before derived fields are computed.
type OrderDraft struct {
	OrderDate        models.Date       `json:"order_date"`
	CustomerID       int               `json:"customer_id"`
	Variety          string            `json:"variety"`
	OrderedSize      models.Quantities `json:"ordered_size_quantities"`
	OrderedQuality   models.Quantities `json:"ordered_quality_quantities"`
	DeliveredSize    models.Quantities `json:"delivered_size_quantities"`
	DeliveredQuality models.Quantities `json:"delivered_quality_quantities"`
	PricePerKg       decimal.Decimal   `json:"price_per_kg"`
	Paid             bool              `json:"paid"`
	Notes            string            `json:"notes"`
}

// Store holds the receipt and order collections. A failed command leaves
// both collections untouched.
type Store struct {
	registry *registry.Registry
	receipts []models.Receipt
	orders   []models.Order
}

// New returns an empty ledger bound to the registry that resolves its references.
func New(reg *registry.Registry) *Store {
	return &Store{registry: reg, receipts: []models.Receipt{}, orders: []models.Order{}}
}

// CreateReceipt validates the draft, derives lot and totals, and appends the receipt.
func (s *Store) CreateReceipt(draft ReceiptDraft, stamp Stamp) (models.Receipt, error) {
	receipt, err := s.buildReceipt(draft, 0)
	if err != nil {
		return models.Receipt{}, err
	}
	receipt.ID = models.NextID(s.receipts)
	receipt.CreatedBy = stamp.By
	receipt.CreatedAt = stamp.At
	s.receipts = append(s.receipts, receipt)
	return receipt.Clone(), nil
}

// UpdateReceipt replaces the receipt with the given id, keeping its audit stamp.
func (s *Store) UpdateReceipt(id int, draft ReceiptDraft) (models.Receipt, error) {
	idx := slices.IndexFunc(s.receipts, func(r models.Receipt) bool { return r.ID == id })
	if idx < 0 {
		return models.Receipt{}, fmt.Errorf("receipt %d: %w", id, models.ErrNotFound)
	}
	receipt, err := s.buildReceipt(draft, id)
	if err != nil {
		return models.Receipt{}, err
	}
	existing := s.receipts[idx]
	receipt.ID = id
	receipt.CreatedBy = existing.CreatedBy
	receipt.CreatedAt = existing.CreatedAt
	s.receipts[idx] = receipt
	return receipt.Clone(), nil
}

// DeleteReceipt removes the receipt with the given id and returns it.
func (s *Store) DeleteReceipt(id int) (models.Receipt, error) {
	idx := slices.IndexFunc(s.receipts, func(r models.Receipt) bool { return r.ID == id })
	if idx < 0 {
		return models.Receipt{}, fmt.Errorf("receipt %d: %w", id, models.ErrNotFound)
	}
	removed := s.receipts[idx]
	s.receipts = slices.Delete(s.receipts, idx, idx+1)
	return removed, nil
}

// Receipt returns the receipt with the given id.
func (s *Store) Receipt(id int) (models.Receipt, error) {
	for _, r := range s.receipts {
		if r.ID == id {
			return r.Clone(), nil
		}
	}
	return models.Receipt{}, fmt.Errorf("receipt %d: %w", id, models.ErrNotFound)
}

// Receipts returns copies of every receipt in insertion order.
func (s *Store) Receipts() []models.Receipt {
	out := make([]models.Receipt, 0, len(s.receipts))
	for _, r := range s.receipts {
		out = append(out, r.Clone())
	}
	return out
}

// ReplaceReceipts loads a stored collection, filling defaults for older records.
func (s *Store) ReplaceReceipts(items []models.Receipt) {
	s.receipts = make([]models.Receipt, 0, len(items))
	for _, r := range items {
		r = r.Clone()
		r.Normalize()
		s.receipts = append(s.receipts, r)
	}
}

// CreateOrder validates the draft, derives lot and totals, and appends the order.
func (s *Store) CreateOrder(draft OrderDraft, stamp Stamp) (models.Order, error) {
	order, err := s.buildOrder(draft, 0)
	if err != nil {
		return models.Order{}, err
	}
	order.ID = models.NextID(s.orders)
	order.CreatedBy = stamp.By
	order.CreatedAt = stamp.At
	s.orders = append(s.orders, order)
	return order.Clone(), nil
}

// UpdateOrder replaces the order with the given id, keeping its audit stamp.
func (s *Store) UpdateOrder(id int, draft OrderDraft) (models.Order, error) {
	idx := slices.IndexFunc(s.orders, func(o models.Order) bool { return o.ID == id })
	if idx < 0 {
		return models.Order{}, fmt.Errorf("order %d: %w", id, models.ErrNotFound)
	}
	order, err := s.buildOrder(draft, id)
	if err != nil {
		return models.Order{}, err
	}
	existing := s.orders[idx]
	order.ID = id
	order.CreatedBy = existing.CreatedBy
	order.CreatedAt = existing.CreatedAt
	s.orders[idx] = order
	return order.Clone(), nil
}

// DeleteOrder removes the order with the given id and returns it.
func (s *Store) DeleteOrder(id int) (models.Order, error) {
	idx := slices.IndexFunc(s.orders, func(o models.Order) bool { return o.ID == id })
	if idx < 0 {
		return models.Order{}, fmt.Errorf("order %d: %w", id, models.ErrNotFound)
	}
	removed := s.orders[idx]
	s.orders = slices.Delete(s.orders, idx, idx+1)
	return removed, nil
}

// Order returns the order with the given id.
func (s *Store) Order(id int) (models.Order, error) {
	for _, o := range s.orders {
		if o.ID == id {
			return o.Clone(), nil
		}
	}
	return models.Order{}, fmt.Errorf("order %d: %w", id, models.ErrNotFound)
}

// Orders returns copies of every order in insertion order.
func (s *Store) Orders() []models.Order {
	out := make([]models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o.Clone())
	}
	return out
}

// ReplaceOrders loads a stored collection, filling defaults for older records.
func (s *Store) ReplaceOrders(items []models.Order) {
	s.orders = make([]models.Order, 0, len(items))
	for _, o := range items {
		o = o.Clone()
		o.Normalize()
		s.orders = append(s.orders, o)
	}
}

// References lists the ledger entries that point at the given registry entity.
func (s *Store) References(kind models.EntityKind, id int) []string {
	var refs []string
	switch kind {
	case models.KindProducer:
		for _, r := range s.receipts {
			if r.ProducerID == id {
				refs = append(refs, fmt.Sprintf("receipt %d", r.ID))
			}
		}
	case models.KindStorageLocation:
		for _, r := range s.receipts {
			if r.StorageLocationID == id {
				refs = append(refs, fmt.Sprintf("receipt %d", r.ID))
			}
		}
	case models.KindCustomer:
		for _, o := range s.orders {
			if o.CustomerID == id {
				refs = append(refs, fmt.Sprintf("order %d", o.ID))
			}
		}
	}
	return refs
}

func (s *Store) buildReceipt(d ReceiptDraft, selfID int) (models.Receipt, error) {
	if d.ProducerID <= 0 {
		return models.Receipt{}, &models.ValidationError{Field: "producer_id", Reason: "a producer must be selected"}
	}
	variety, err := checkCommon(d.ReceiptDate, "receipt_date", d.Variety, d.PricePerKg)
	if err != nil {
		return models.Receipt{}, err
	}
	if err := d.SizeQuantities.Check("size_quantities", models.SizeLabels); err != nil {
		return models.Receipt{}, err
	}
	if err := d.QualityQuantities.Check("quality_quantities", models.QualityGrades); err != nil {
		return models.Receipt{}, err
	}
	if !d.SizeQuantities.HasPositive() && !d.QualityQuantities.HasPositive() {
		return models.Receipt{}, &models.ValidationError{Field: "quantities", Reason: "total quantity must be positive"}
	}
	if err := models.CheckCertifications("certifications", d.Certifications); err != nil {
		return models.Receipt{}, err
	}
	if !s.registry.Producers.Exists(d.ProducerID) {
		return models.Receipt{}, &models.ReferentialGapError{Kind: models.KindProducer, ID: d.ProducerID}
	}
	if d.StorageLocationID < 0 {
		return models.Receipt{}, &models.ValidationError{Field: "storage_location_id", Reason: "must not be negative"}
	}
	if d.StorageLocationID > 0 && !s.registry.Locations.Exists(d.StorageLocationID) {
		return models.Receipt{}, &models.ReferentialGapError{Kind: models.KindStorageLocation, ID: d.StorageLocationID}
	}

	code := lot.Generate(d.ReceiptDate, d.ProducerID, variety)
	if conflictID, taken := lot.Conflict(code, s.receipts, selfID); taken {
		return models.Receipt{}, &models.DuplicateLotError{Lot: code, ConflictID: conflictID}
	}

	receipt := models.Receipt{
		ReceiptDate:       d.ReceiptDate,
		ProducerID:        d.ProducerID,
		Variety:           variety,
		Lot:               code,
		StorageLocationID: d.StorageLocationID,
		SizeQuantities:    d.SizeQuantities,
		QualityQuantities: d.QualityQuantities,
		Certifications:    d.Certifications,
		PricePerKg:        d.PricePerKg,
		Paid:              d.Paid,
		Notes:             d.Notes,
	}
	receipt = receipt.Clone()
	receipt.Normalize()
	return receipt, nil
}

func (s *Store) buildOrder(d OrderDraft, selfID int) (models.Order, error) {
	if d.CustomerID <= 0 {
		return models.Order{}, &models.ValidationError{Field: "customer_id", Reason: "a customer must be selected"}
	}
	variety, err := checkCommon(d.OrderDate, "order_date", d.Variety, d.PricePerKg)
	if err != nil {
		return models.Order{}, err
	}
	for _, b := range []struct {
		field string
		q     models.Quantities
		vocab []string
	}{
		{"ordered_size_quantities", d.OrderedSize, models.SizeLabels},
		{"ordered_quality_quantities", d.OrderedQuality, models.QualityGrades},
		{"delivered_size_quantities", d.DeliveredSize, models.SizeLabels},
		{"delivered_quality_quantities", d.DeliveredQuality, models.QualityGrades},
	} {
		if err := b.q.Check(b.field, b.vocab); err != nil {
			return models.Order{}, err
		}
	}
	if !d.OrderedSize.HasPositive() && !d.OrderedQuality.HasPositive() {
		return models.Order{}, &models.ValidationError{Field: "quantities", Reason: "total ordered quantity must be positive"}
	}
	if !s.registry.Customers.Exists(d.CustomerID) {
		return models.Order{}, &models.ReferentialGapError{Kind: models.KindCustomer, ID: d.CustomerID}
	}

	code := lot.Generate(d.OrderDate, d.CustomerID, variety)
	if conflictID, taken := lot.Conflict(code, s.orders, selfID); taken {
		return models.Order{}, &models.DuplicateLotError{Lot: code, ConflictID: conflictID}
	}

	order := models.Order{
		OrderDate:        d.OrderDate,
		CustomerID:       d.CustomerID,
		Variety:          variety,
		Lot:              code,
		OrderedSize:      d.OrderedSize,
		OrderedQuality:   d.OrderedQuality,
		DeliveredSize:    d.DeliveredSize,
		DeliveredQuality: d.DeliveredQuality,
		PricePerKg:       d.PricePerKg,
		Paid:             d.Paid,
		Notes:            d.Notes,
	}
	order = order.Clone()
	order.Normalize()
	return order, nil
}

func checkCommon(date models.Date, dateField, variety string, price decimal.Decimal) (string, error) {
	if date.IsZero() {
		return "", &models.ValidationError{Field: dateField, Reason: "is required"}
	}
	variety = strings.TrimSpace(variety)
	if variety == "" {
		return "", &models.ValidationError{Field: "variety", Reason: "must not be empty"}
	}
	if price.IsNegative() {
		return "", &models.ValidationError{Field: "price_per_kg", Reason: "must not be negative"}
	}
	return variety, nil
}
