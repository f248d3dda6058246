package registry

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mamadbah2/harvest/internal/domain/models"
)

// Collection is an ordered, id-keyed set of reference entities.
type Collection[T models.Identified] struct {
	kind    models.EntityKind
	items   []T
	assign  func(T, int) T
	prepare func(T) (T, error)
	clone   func(T) T
}

// newCollection builds a collection; clone deep-copies an item and may be nil
// for types without reference fields.
func newCollection[T models.Identified](kind models.EntityKind, assign func(T, int) T, prepare func(T) (T, error), clone func(T) T) *Collection[T] {
	if clone == nil {
		clone = func(item T) T { return item }
	}
	return &Collection[T]{kind: kind, items: []T{}, assign: assign, prepare: prepare, clone: clone}
}

// Kind names the entities held by the collection.
func (c *Collection[T]) Kind() models.EntityKind { return c.kind }

// NextID returns the id the next added entity will receive.
func (c *Collection[T]) NextID() int { return models.NextID(c.items) }

// Add validates item, assigns it the next id and appends it.
func (c *Collection[T]) Add(item T) (T, error) {
	prepared, err := c.prepare(item)
	if err != nil {
		return item, err
	}
	prepared = c.assign(c.clone(prepared), c.NextID())
	c.items = append(c.items, prepared)
	return c.clone(prepared), nil
}

// Update replaces the entity with the given id wholesale.
func (c *Collection[T]) Update(id int, item T) (T, error) {
	idx := c.index(id)
	if idx < 0 {
		return item, fmt.Errorf("%s %d: %w", c.kind, id, models.ErrNotFound)
	}
	prepared, err := c.prepare(item)
	if err != nil {
		return item, err
	}
	prepared = c.assign(c.clone(prepared), id)
	c.items[idx] = prepared
	return c.clone(prepared), nil
}

// Get returns the entity with the given id.
func (c *Collection[T]) Get(id int) (T, bool) {
	idx := c.index(id)
	if idx < 0 {
		var zero T
		return zero, false
	}
	return c.clone(c.items[idx]), true
}

// Exists reports whether an entity with the given id is present.
func (c *Collection[T]) Exists(id int) bool { return c.index(id) >= 0 }

// List returns deep copies of the entities in insertion order.
func (c *Collection[T]) List() []T {
	out := make([]T, 0, len(c.items))
	for _, item := range c.items {
		out = append(out, c.clone(item))
	}
	return out
}

// Remove deletes the entity with the given id. It does not look for ledger
// entries that still reference it; callers guard that.
func (c *Collection[T]) Remove(id int) error {
	idx := c.index(id)
	if idx < 0 {
		return fmt.Errorf("%s %d: %w", c.kind, id, models.ErrNotFound)
	}
	c.items = slices.Delete(c.items, idx, idx+1)
	return nil
}

// Replace swaps the whole collection, as done when loading from storage.
func (c *Collection[T]) Replace(items []T) {
	c.items = make([]T, 0, len(items))
	for _, item := range items {
		c.items = append(c.items, c.clone(item))
	}
}

func (c *Collection[T]) index(id int) int {
	return slices.IndexFunc(c.items, func(item T) bool { return item.Key() == id })
}

// Registry owns the producer, customer, agency and storage location collections.
type Registry struct {
	Producers *Collection[models.Producer]
	Customers *Collection[models.Customer]
	Agencies  *Collection[models.Agency]
	Locations *Collection[models.StorageLocation]
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		Producers: newCollection(models.KindProducer,
			func(p models.Producer, id int) models.Producer { p.ID = id; return p },
			prepareProducer, models.Producer.Clone),
		Customers: newCollection(models.KindCustomer,
			func(c models.Customer, id int) models.Customer { c.ID = id; return c },
			prepareCustomer, nil),
		Agencies: newCollection(models.KindAgency,
			func(a models.Agency, id int) models.Agency { a.ID = id; return a },
			prepareAgency, nil),
		Locations: newCollection(models.KindStorageLocation,
			func(s models.StorageLocation, id int) models.StorageLocation { s.ID = id; return s },
			prepareLocation, nil),
	}
}

// StorageLocations lists every storage location.
func (r *Registry) StorageLocations() []models.StorageLocation { return r.Locations.List() }

// StorageLocation returns the storage location with the given id.
func (r *Registry) StorageLocation(id int) (models.StorageLocation, bool) { return r.Locations.Get(id) }

// ProducerName returns the producer's display name, or #id when it no longer exists.
func (r *Registry) ProducerName(id int) string {
	if p, ok := r.Producers.Get(id); ok {
		return p.Name
	}
	return fmt.Sprintf("#%d", id)
}

// CustomerName returns the customer's display name, or #id when it no longer exists.
func (r *Registry) CustomerName(id int) string {
	if c, ok := r.Customers.Get(id); ok {
		return c.Name
	}
	return fmt.Sprintf("#%d", id)
}

func requireName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &models.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	return name, nil
}

func prepareProducer(p models.Producer) (models.Producer, error) {
	name, err := requireName(p.Name)
	if err != nil {
		return p, err
	}
	p.Name = name
	if p.Quantity < 0 {
		return p, &models.ValidationError{Field: "quantity", Reason: "must not be negative"}
	}
	if err := models.CheckCertifications("certifications", p.Certifications); err != nil {
		return p, err
	}
	if p.Certifications == nil {
		p.Certifications = []string{}
	}
	return p, nil
}

func prepareCustomer(c models.Customer) (models.Customer, error) {
	name, err := requireName(c.Name)
	if err != nil {
		return c, err
	}
	c.Name = name
	return c, nil
}

func prepareAgency(a models.Agency) (models.Agency, error) {
	name, err := requireName(a.Name)
	if err != nil {
		return a, err
	}
	a.Name = name
	return a, nil
}

func prepareLocation(s models.StorageLocation) (models.StorageLocation, error) {
	name, err := requireName(s.Name)
	if err != nil {
		return s, err
	}
	s.Name = name
	if s.Capacity < 0 {
		return s, &models.ValidationError{Field: "capacity", Reason: "must not be negative"}
	}
	return s, nil
}
