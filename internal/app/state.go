package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/harvest/internal/domain/models"
	"github.com/mamadbah2/harvest/internal/metrics"
	"github.com/mamadbah2/harvest/internal/repository"
	"github.com/mamadbah2/harvest/internal/service/allocation"
	"github.com/mamadbah2/harvest/internal/service/auth"
	"github.com/mamadbah2/harvest/internal/service/ledger"
	"github.com/mamadbah2/harvest/internal/service/registry"
	"github.com/mamadbah2/harvest/internal/service/reporting"
	"github.com/mamadbah2/harvest/pkg/password"
)

// Collection names as stored by every backend.
const (
	CollUsers     = "users"
	CollProducers = "producers"
	CollCustomers = "customers"
	CollAgencies  = "agencies"
	CollLocations = "storage_locations"
	CollReceipts  = "receipts"
	CollOrders    = "orders"
)

// Collections lists every stored collection in load order.
var Collections = []string{CollUsers, CollProducers, CollCustomers, CollAgencies, CollLocations, CollReceipts, CollOrders}

// Options tune first-run behaviour.
type Options struct {
	AdminPassword string
	SeedSample    bool
	Now           func() time.Time
}

// State is the single owner of every collection. Commands and queries run one
// at a time; each command checks the acting principal, applies the mutation
// and then writes the affected collection through the store.
type State struct {
	mu sync.Mutex

	registry *registry.Registry
	ledger   *ledger.Store
	tracker  *allocation.Tracker
	reports  *reporting.Service
	users    *auth.Directory

	store   repository.Store
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
	verify  func(secret, encoded string) bool
	opts    Options
}

// New wires an empty state over the store. Call Load before serving.
func New(store repository.Store, m *metrics.Metrics, logger *zap.Logger, opts Options) *State {
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	reg := registry.New()
	led := ledger.New(reg)
	return &State{
		registry: reg,
		ledger:   led,
		tracker:  allocation.NewTracker(led, reg),
		reports:  reporting.NewService(led, reg, logger.Named("reporting")),
		users:    auth.NewDirectory(),
		store:    store,
		metrics:  m,
		logger:   logger,
		now:      now,
		verify:   password.Verify,
		opts:     opts,
	}
}

// Load reads every collection, bootstraps the admin account when there are no
// users and optionally seeds sample reference data into an empty registry.
func (s *State) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.readAll(ctx); err != nil {
		return err
	}

	created, err := s.users.EnsureAdmin(s.opts.AdminPassword)
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	if created {
		s.logger.Info("admin account created", zap.String("username", auth.AdminUsername))
		if err := s.persist(ctx, CollUsers); err != nil {
			return err
		}
	}

	if s.opts.SeedSample && s.registryEmpty() {
		seedSample(s.registry)
		s.logger.Info("sample reference data seeded")
		if err := s.persist(ctx, CollProducers, CollCustomers, CollAgencies); err != nil {
			return err
		}
	}

	s.logger.Info("state loaded",
		zap.Int("producers", len(s.registry.Producers.List())),
		zap.Int("receipts", len(s.ledger.Receipts())),
		zap.Int("orders", len(s.ledger.Orders())))
	return nil
}

// Reload discards the in-memory collections and reads them again from the store.
func (s *State) Reload(ctx context.Context, p models.Principal) error {
	started := time.Now()
	err := s.reload(ctx, p)
	s.metrics.Observe("reload", started, err)
	return err
}

func (s *State) reload(ctx context.Context, p models.Principal) error {
	if err := p.Authorize(models.CapView, "reload data"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAll(ctx)
}

// Authenticate checks credentials against the user directory. Only the
// account lookup holds the state lock; the hash check runs outside it.
func (s *State) Authenticate(username, secret string) (models.Principal, error) {
	s.mu.Lock()
	user, ok := s.users.Lookup(username)
	s.mu.Unlock()

	if !ok || !s.verify(secret, user.PasswordHash) {
		return models.Principal{}, models.ErrUnauthenticated
	}
	return models.Principal{Username: username, Role: user.Role}, nil
}

// exec runs a mutation under the state lock and persists the named
// collections when it succeeds. A persistence failure leaves the mutation applied.
func (s *State) exec(ctx context.Context, command string, p models.Principal, c models.Capability, mutate func() error, collections ...string) (err error) {
	started := time.Now()
	defer func() { s.metrics.Observe(command, started, err) }()

	if err := p.Authorize(c, strings.ReplaceAll(command, "_", " ")); err != nil {
		s.logger.Warn("command denied", zap.String("command", command), zap.String("user", p.Username), zap.String("role", string(p.Role)))
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := mutate(); err != nil {
		return err
	}
	return s.persist(ctx, collections...)
}

// query runs a read under the state lock after checking the view capability.
func (s *State) query(p models.Principal, action string, read func() error) error {
	if err := p.Authorize(models.CapView, action); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return read()
}

func (s *State) persist(ctx context.Context, collections ...string) error {
	var errs []error
	for _, name := range collections {
		payload, err := encode(s.snapshot(name))
		if err == nil {
			err = s.store.Save(ctx, name, payload)
		}
		if err != nil {
			s.logger.Error("failed to persist collection", zap.String("collection", name), zap.Error(err))
			errs = append(errs, &models.PersistenceError{Collection: name, Err: err})
		}
	}
	return errors.Join(errs...)
}

func (s *State) snapshot(collection string) any {
	switch collection {
	case CollUsers:
		return s.users.Snapshot()
	case CollProducers:
		return s.registry.Producers.List()
	case CollCustomers:
		return s.registry.Customers.List()
	case CollAgencies:
		return s.registry.Agencies.List()
	case CollLocations:
		return s.registry.Locations.List()
	case CollReceipts:
		return s.ledger.Receipts()
	case CollOrders:
		return s.ledger.Orders()
	default:
		return nil
	}
}

func (s *State) readAll(ctx context.Context) error {
	var (
		users     map[string]models.User
		producers []models.Producer
		customers []models.Customer
		agencies  []models.Agency
		locations []models.StorageLocation
		receipts  []models.Receipt
		orders    []models.Order
	)
	targets := map[string]any{
		CollUsers:     &users,
		CollProducers: &producers,
		CollCustomers: &customers,
		CollAgencies:  &agencies,
		CollLocations: &locations,
		CollReceipts:  &receipts,
		CollOrders:    &orders,
	}
	for _, name := range Collections {
		payload, err := s.store.Load(ctx, name)
		if err != nil {
			return fmt.Errorf("load %s: %w", name, err)
		}
		if len(bytes.TrimSpace(payload)) == 0 {
			continue
		}
		if err := json.Unmarshal(payload, targets[name]); err != nil {
			return fmt.Errorf("decode %s: %w", name, err)
		}
	}

	// Nothing is replaced until every collection decoded.
	s.users.Replace(users)
	s.registry.Producers.Replace(producers)
	s.registry.Customers.Replace(customers)
	s.registry.Agencies.Replace(agencies)
	s.registry.Locations.Replace(locations)
	s.ledger.ReplaceReceipts(receipts)
	s.ledger.ReplaceOrders(orders)
	return nil
}

func (s *State) registryEmpty() bool {
	return len(s.registry.Producers.List()) == 0 &&
		len(s.registry.Customers.List()) == 0 &&
		len(s.registry.Agencies.List()) == 0
}

// encode renders a collection as indented JSON, leaving non-ASCII and HTML
// characters unescaped.
func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func seedSample(reg *registry.Registry) {
	_, _ = reg.Producers.Add(models.Producer{Name: "Producer A", Quantity: 1500, Certifications: []string{"GlobalGAP"}})
	_, _ = reg.Producers.Add(models.Producer{Name: "Producer B", Quantity: 2000, Certifications: []string{"Organic"}})
	_, _ = reg.Customers.Add(models.Customer{Name: "Customer A", Address: "Address 1", Phone: "2101111111"})
	_, _ = reg.Customers.Add(models.Customer{Name: "Customer B", Address: "Address 2", Phone: "2102222222"})
	_, _ = reg.Agencies.Add(models.Agency{Name: "Agency A", Contact: "Contact A", Phone: "2103333333"})
	_, _ = reg.Agencies.Add(models.Agency{Name: "Agency B", Contact: "Contact B", Phone: "2104444444"})
}
