package allocation

import (
	"fmt"
	"sort"

	"github.com/mamadbah2/harvest/internal/domain/models"
)

// ReceiptSource lists the receipts currently in the ledger.
type ReceiptSource interface {
	Receipts() []models.Receipt
}

// LocationSource resolves storage locations and producer names.
type LocationSource interface {
	StorageLocations() []models.StorageLocation
	StorageLocation(id int) (models.StorageLocation, bool)
	ProducerName(id int) string
}

// Contribution is one receipt's share of a location's usage.
type Contribution struct {
	ReceiptID    int         `json:"receipt_id"`
	Kg           int         `json:"kg"`
	Date         models.Date `json:"date"`
	ProducerName string      `json:"producer_name"`
}

// Usage describes how much of a storage location is taken. Headroom goes
// negative when receipts exceed capacity; Percent is nil for zero capacity.
type Usage struct {
	Location      models.StorageLocation `json:"location"`
	UsageKg       int                    `json:"usage_kg"`
	HeadroomKg    int                    `json:"headroom_kg"`
	Percent       *float64               `json:"percent"`
	OverAllocated bool                   `json:"over_allocated"`
	Contributors  []Contribution         `json:"contributors"`
}

// Tracker derives storage usage from the receipt collection on every call.
type Tracker struct {
	receipts  ReceiptSource
	locations LocationSource
}

// NewTracker wires a tracker over the ledger and registry.
func NewTracker(receipts ReceiptSource, locations LocationSource) *Tracker {
	return &Tracker{receipts: receipts, locations: locations}
}

// Usage reports the allocation of a single storage location.
func (t *Tracker) Usage(locationID int) (Usage, error) {
	location, ok := t.locations.StorageLocation(locationID)
	if !ok {
		return Usage{}, fmt.Errorf("%s %d: %w", models.KindStorageLocation, locationID, models.ErrNotFound)
	}
	return t.compute(location, t.receipts.Receipts()), nil
}

// All reports the allocation of every storage location in registry order.
func (t *Tracker) All() []Usage {
	receipts := t.receipts.Receipts()
	locations := t.locations.StorageLocations()
	out := make([]Usage, 0, len(locations))
	for _, location := range locations {
		out = append(out, t.compute(location, receipts))
	}
	return out
}

// Unassigned sums receipts that have no storage location.
func (t *Tracker) Unassigned() int {
	total := 0
	for _, r := range t.receipts.Receipts() {
		if r.StorageLocationID == 0 {
			total += r.TotalKg
		}
	}
	return total
}

func (t *Tracker) compute(location models.StorageLocation, receipts []models.Receipt) Usage {
	usage := Usage{Location: location, Contributors: []Contribution{}}
	for _, r := range receipts {
		if r.StorageLocationID != location.ID {
			continue
		}
		usage.UsageKg += r.TotalKg
		usage.Contributors = append(usage.Contributors, Contribution{
			ReceiptID:    r.ID,
			Kg:           r.TotalKg,
			Date:         r.ReceiptDate,
			ProducerName: t.locations.ProducerName(r.ProducerID),
		})
	}
	sort.SliceStable(usage.Contributors, func(i, j int) bool {
		a, b := usage.Contributors[i], usage.Contributors[j]
		if !a.Date.Equal(b.Date.Time) {
			return a.Date.Before(b.Date.Time)
		}
		return a.ReceiptID < b.ReceiptID
	})
	usage.HeadroomKg = location.Capacity - usage.UsageKg
	usage.OverAllocated = usage.HeadroomKg < 0
	if location.Capacity > 0 {
		pct := float64(usage.UsageKg) / float64(location.Capacity) * 100
		usage.Percent = &pct
	}
	return usage
}
