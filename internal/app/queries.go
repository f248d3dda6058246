package app

import (
	"context"

	"github.com/mamadbah2/harvest/internal/domain/models"
	"github.com/mamadbah2/harvest/internal/service/allocation"
	"github.com/mamadbah2/harvest/internal/service/auth"
	"github.com/mamadbah2/harvest/internal/service/export"
	"github.com/mamadbah2/harvest/internal/service/reporting"
)

// StorageReport is the allocation of every location plus unassigned intake.
type StorageReport struct {
	Locations    []allocation.Usage `json:"locations"`
	UnassignedKg int                `json:"unassigned_kg"`
}

// Storage reports usage for every storage location.
func (s *State) Storage(p models.Principal) (StorageReport, error) {
	var out StorageReport
	err := s.query(p, "view storage", func() error {
		out = StorageReport{Locations: s.tracker.All(), UnassignedKg: s.tracker.Unassigned()}
		return nil
	})
	return out, err
}

// StorageUsage reports usage for a single storage location.
func (s *State) StorageUsage(p models.Principal, id int) (allocation.Usage, error) {
	var out allocation.Usage
	err := s.query(p, "view storage", func() error {
		var err error
		out, err = s.tracker.Usage(id)
		return err
	})
	return out, err
}

func (s *State) AggregateReceipts(p models.Principal, q reporting.Query) (reporting.Result, error) {
	var out reporting.Result
	err := s.query(p, "view reports", func() error {
		var err error
		out, err = s.reports.AggregateReceipts(q)
		return err
	})
	return out, err
}

func (s *State) AggregateOrders(p models.Principal, q reporting.Query) (reporting.Result, error) {
	var out reporting.Result
	err := s.query(p, "view reports", func() error {
		var err error
		out, err = s.reports.AggregateOrders(q)
		return err
	})
	return out, err
}

func (s *State) ProducerRollup(p models.Principal, from, to models.Date) ([]reporting.Rollup, error) {
	var out []reporting.Rollup
	err := s.query(p, "view reports", func() error {
		out = s.reports.ProducerRollup(from, to)
		return nil
	})
	return out, err
}

func (s *State) CustomerRollup(p models.Principal, from, to models.Date) ([]reporting.Rollup, error) {
	var out []reporting.Rollup
	err := s.query(p, "view reports", func() error {
		out = s.reports.CustomerRollup(from, to)
		return nil
	})
	return out, err
}

// WeeklySummary renders the week-to-date summary as of the state clock.
func (s *State) WeeklySummary(p models.Principal) (string, error) {
	var out string
	err := s.query(p, "view reports", func() error {
		out = s.reports.WeeklySummary(s.now())
		return nil
	})
	return out, err
}

// Workbook lays every collection out as export tables.
func (s *State) Workbook(p models.Principal) ([]export.Table, error) {
	var out []export.Table
	err := s.query(p, "export data", func() error {
		out = export.Workbook(export.Snapshot{
			Producers: s.registry.Producers.List(),
			Customers: s.registry.Customers.List(),
			Agencies:  s.registry.Agencies.List(),
			Locations: s.registry.Locations.List(),
			Receipts:  s.ledger.Receipts(),
			Orders:    s.ledger.Orders(),
		})
		return nil
	})
	return out, err
}

// Users lists every account.
func (s *State) Users(p models.Principal) ([]auth.Account, error) {
	if err := p.Authorize(models.CapManageUsers, "list users"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users.ListUsers(), nil
}

func (s *State) AddUser(ctx context.Context, p models.Principal, in auth.NewUser) (auth.Account, error) {
	var out auth.Account
	err := s.exec(ctx, "add_user", p, models.CapManageUsers, func() error {
		var err error
		out, err = s.users.AddUser(in)
		return err
	}, CollUsers)
	return out, err
}

func (s *State) UpdateUser(ctx context.Context, p models.Principal, username string, in auth.UserUpdate) (auth.Account, error) {
	var out auth.Account
	err := s.exec(ctx, "update_user", p, models.CapManageUsers, func() error {
		var err error
		out, err = s.users.UpdateUser(username, in)
		return err
	}, CollUsers)
	return out, err
}

func (s *State) RemoveUser(ctx context.Context, p models.Principal, username string) error {
	return s.exec(ctx, "remove_user", p, models.CapManageUsers, func() error {
		return s.users.RemoveUser(username)
	}, CollUsers)
}
