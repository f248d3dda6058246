package allocation

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/harvest/internal/domain/models"
)

type fakeReceipts []models.Receipt

func (f fakeReceipts) Receipts() []models.Receipt { return f }

type fakeLocations struct {
	locations []models.StorageLocation
	producers map[int]string
}

func (f fakeLocations) StorageLocations() []models.StorageLocation { return f.locations }

func (f fakeLocations) StorageLocation(id int) (models.StorageLocation, bool) {
	for _, l := range f.locations {
		if l.ID == id {
			return l, true
		}
	}
	return models.StorageLocation{}, false
}

func (f fakeLocations) ProducerName(id int) string { return f.producers[id] }

func day(d int) models.Date { return models.NewDate(2024, time.March, d) }

func TestUsageOverCapacityIsReported(t *testing.T) {
	locations := fakeLocations{
		locations: []models.StorageLocation{{ID: 1, Name: "Cold room", Capacity: 1000}},
		producers: map[int]string{1: "Alpha", 2: "Beta"},
	}
	receipts := fakeReceipts{
		{ID: 2, ProducerID: 2, StorageLocationID: 1, TotalKg: 700, ReceiptDate: day(5)},
		{ID: 1, ProducerID: 1, StorageLocationID: 1, TotalKg: 400, ReceiptDate: day(5)},
		{ID: 3, ProducerID: 1, StorageLocationID: 0, TotalKg: 50, ReceiptDate: day(1)},
	}

	usage, err := NewTracker(receipts, locations).Usage(1)
	require.NoError(t, err)

	assert.Equal(t, 1100, usage.UsageKg)
	assert.Equal(t, -100, usage.HeadroomKg)
	assert.True(t, usage.OverAllocated)
	require.NotNil(t, usage.Percent)
	assert.InDelta(t, 110.0, *usage.Percent, 0.0001)

	require.Len(t, usage.Contributors, 2)
	assert.Equal(t, 1, usage.Contributors[0].ReceiptID, "same date orders by receipt id")
	assert.Equal(t, "Alpha", usage.Contributors[0].ProducerName)
	assert.Equal(t, 700, usage.Contributors[1].Kg)
}

func TestZeroCapacityHasNoPercent(t *testing.T) {
	locations := fakeLocations{locations: []models.StorageLocation{{ID: 1, Name: "Yard"}}}
	receipts := fakeReceipts{{ID: 1, StorageLocationID: 1, TotalKg: 10, ReceiptDate: day(2)}}

	usage, err := NewTracker(receipts, locations).Usage(1)
	require.NoError(t, err)
	assert.Nil(t, usage.Percent)
	assert.Equal(t, -10, usage.HeadroomKg)
	assert.True(t, usage.OverAllocated)
}

func TestEmptyLocation(t *testing.T) {
	locations := fakeLocations{locations: []models.StorageLocation{{ID: 1, Capacity: 500}}}
	usage, err := NewTracker(fakeReceipts{}, locations).Usage(1)
	require.NoError(t, err)

	assert.Equal(t, 0, usage.UsageKg)
	assert.Equal(t, 500, usage.HeadroomKg)
	assert.False(t, usage.OverAllocated)
	assert.NotNil(t, usage.Contributors)
	assert.InDelta(t, 0.0, *usage.Percent, 0.0001)
}

func TestUnknownLocation(t *testing.T) {
	_, err := NewTracker(fakeReceipts{}, fakeLocations{}).Usage(3)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestAllAndUnassigned(t *testing.T) {
	locations := fakeLocations{locations: []models.StorageLocation{
		{ID: 1, Capacity: 100},
		{ID: 2, Capacity: 100},
	}}
	receipts := fakeReceipts{
		{ID: 1, StorageLocationID: 2, TotalKg: 60, ReceiptDate: day(1)},
		{ID: 2, StorageLocationID: 0, TotalKg: 15, ReceiptDate: day(1)},
		{ID: 3, StorageLocationID: 0, TotalKg: 5, ReceiptDate: day(2)},
	}
	tracker := NewTracker(receipts, locations)

	all := tracker.All()
	require.Len(t, all, 2)
	assert.Equal(t, 0, all[0].UsageKg)
	assert.Equal(t, 60, all[1].UsageKg)
	assert.Equal(t, 20, tracker.Unassigned())
}
