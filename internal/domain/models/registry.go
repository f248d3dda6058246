package models

// EntityKind names a reference collection.
type EntityKind string

const (
	KindProducer        EntityKind = "producer"
	KindCustomer        EntityKind = "customer"
	KindAgency          EntityKind = "agency"
	KindStorageLocation EntityKind = "storage location"
)

// Identified is implemented by every record with a collection-scoped integer id.
type Identified interface {
	Key() int
}

// NextID returns 1 for an empty collection, otherwise the highest id plus one.
func NextID[T Identified](items []T) int {
	highest := 0
	for _, item := range items {
		if item.Key() > highest {
			highest = item.Key()
		}
	}
	return highest + 1
}

// Producer supplies goods recorded as receipts.
type Producer struct {
	ID             int      `json:"id"`
	Name           string   `json:"name"`
	Quantity       int      `json:"quantity"`
	Certifications []string `json:"certifications"`
}

func (p Producer) Key() int { return p.ID }

// Clone returns a copy that shares no slices with p.
func (p Producer) Clone() Producer {
	if p.Certifications != nil {
		p.Certifications = append([]string(nil), p.Certifications...)
	}
	return p
}

// Customer receives goods recorded as orders.
type Customer struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

func (c Customer) Key() int { return c.ID }

// Agency is a trading intermediary kept for reference and export.
type Agency struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Phone   string `json:"phone"`
}

func (a Agency) Key() int { return a.ID }

// StorageLocation is a capacity-bounded place where received goods are kept.
type StorageLocation struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Capacity    int    `json:"capacity"`
	Description string `json:"description"`
}

func (s StorageLocation) Key() int { return s.ID }
