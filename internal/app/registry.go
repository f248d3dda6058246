package app

import (
	"context"

	"github.com/mamadbah2/harvest/internal/domain/models"
	"github.com/mamadbah2/harvest/internal/service/registry"
)

// Producers lists every producer.
func (s *State) Producers(p models.Principal) ([]models.Producer, error) {
	return list(s, p, s.registry.Producers)
}

func (s *State) AddProducer(ctx context.Context, p models.Principal, in models.Producer) (models.Producer, error) {
	return add(ctx, s, p, "add_producer", s.registry.Producers, CollProducers, in)
}

func (s *State) UpdateProducer(ctx context.Context, p models.Principal, id int, in models.Producer) (models.Producer, error) {
	return update(ctx, s, p, "update_producer", s.registry.Producers, CollProducers, id, in)
}

func (s *State) RemoveProducer(ctx context.Context, p models.Principal, id int) error {
	return remove(ctx, s, p, "remove_producer", s.registry.Producers, CollProducers, id)
}

// Customers lists every customer.
func (s *State) Customers(p models.Principal) ([]models.Customer, error) {
	return list(s, p, s.registry.Customers)
}

func (s *State) AddCustomer(ctx context.Context, p models.Principal, in models.Customer) (models.Customer, error) {
	return add(ctx, s, p, "add_customer", s.registry.Customers, CollCustomers, in)
}

func (s *State) UpdateCustomer(ctx context.Context, p models.Principal, id int, in models.Customer) (models.Customer, error) {
	return update(ctx, s, p, "update_customer", s.registry.Customers, CollCustomers, id, in)
}

func (s *State) RemoveCustomer(ctx context.Context, p models.Principal, id int) error {
	return remove(ctx, s, p, "remove_customer", s.registry.Customers, CollCustomers, id)
}

// Agencies lists every agency.
func (s *State) Agencies(p models.Principal) ([]models.Agency, error) {
	return list(s, p, s.registry.Agencies)
}

func (s *State) AddAgency(ctx context.Context, p models.Principal, in models.Agency) (models.Agency, error) {
	return add(ctx, s, p, "add_agency", s.registry.Agencies, CollAgencies, in)
}

func (s *State) UpdateAgency(ctx context.Context, p models.Principal, id int, in models.Agency) (models.Agency, error) {
	return update(ctx, s, p, "update_agency", s.registry.Agencies, CollAgencies, id, in)
}

func (s *State) RemoveAgency(ctx context.Context, p models.Principal, id int) error {
	return remove(ctx, s, p, "remove_agency", s.registry.Agencies, CollAgencies, id)
}

// StorageLocations lists every storage location.
func (s *State) StorageLocations(p models.Principal) ([]models.StorageLocation, error) {
	return list(s, p, s.registry.Locations)
}

func (s *State) AddStorageLocation(ctx context.Context, p models.Principal, in models.StorageLocation) (models.StorageLocation, error) {
	return add(ctx, s, p, "add_storage_location", s.registry.Locations, CollLocations, in)
}

func (s *State) UpdateStorageLocation(ctx context.Context, p models.Principal, id int, in models.StorageLocation) (models.StorageLocation, error) {
	return update(ctx, s, p, "update_storage_location", s.registry.Locations, CollLocations, id, in)
}

func (s *State) RemoveStorageLocation(ctx context.Context, p models.Principal, id int) error {
	return remove(ctx, s, p, "remove_storage_location", s.registry.Locations, CollLocations, id)
}

func list[T models.Identified](s *State, p models.Principal, c *registry.Collection[T]) ([]T, error) {
	var out []T
	err := s.query(p, "list "+string(c.Kind()), func() error {
		out = c.List()
		return nil
	})
	return out, err
}

func add[T models.Identified](ctx context.Context, s *State, p models.Principal, command string, c *registry.Collection[T], collection string, in T) (T, error) {
	var out T
	err := s.exec(ctx, command, p, models.CapEdit, func() error {
		var err error
		out, err = c.Add(in)
		return err
	}, collection)
	return out, err
}

func update[T models.Identified](ctx context.Context, s *State, p models.Principal, command string, c *registry.Collection[T], collection string, id int, in T) (T, error) {
	var out T
	err := s.exec(ctx, command, p, models.CapEdit, func() error {
		var err error
		out, err = c.Update(id, in)
		return err
	}, collection)
	return out, err
}

// remove refuses to delete an entity that ledger entries still reference.
func remove[T models.Identified](ctx context.Context, s *State, p models.Principal, command string, c *registry.Collection[T], collection string, id int) error {
	return s.exec(ctx, command, p, models.CapDelete, func() error {
		if refs := s.ledger.References(c.Kind(), id); len(refs) > 0 {
			return &models.InUseError{Kind: c.Kind(), ID: id, References: refs}
		}
		return c.Remove(id)
	}, collection)
}
