package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mamadbah2/harvest/internal/domain/models"
)

// Command outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeRejected    = "rejected"
	OutcomeDenied      = "denied"
	OutcomePersistFail = "persist_failed"
	OutcomeError       = "error"
)

// Metrics holds the command instruments on a private registry.
type Metrics struct {
	registry        *prometheus.Registry
	commands        *prometheus.CounterVec
	persistFailures *prometheus.CounterVec
	duration        *prometheus.HistogramVec
}

// New registers the instruments on a fresh registry along with the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "harvest_commands_total",
			Help: "Commands executed, by command and outcome.",
		}, []string{"command", "outcome"}),
		persistFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "harvest_persistence_failures_total",
			Help: "Collection writes that failed after the in-memory mutation was applied.",
		}, []string{"collection"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "harvest_command_duration_seconds",
			Help:    "Command latency including persistence.",
			Buckets: prometheus.DefBuckets,
		}, []string{"command"}),
	}
	reg.MustRegister(
		m.commands,
		m.persistFailures,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Observe records a finished command.
func (m *Metrics) Observe(command string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(command, Outcome(err)).Inc()
	m.duration.WithLabelValues(command).Observe(time.Since(started).Seconds())

	for _, perr := range persistenceFailures(err) {
		m.persistFailures.WithLabelValues(perr.Collection).Inc()
	}
}

// persistenceFailures collects every PersistenceError in err's tree, joined
// errors included.
func persistenceFailures(err error) []*models.PersistenceError {
	if err == nil {
		return nil
	}
	if perr, ok := err.(*models.PersistenceError); ok {
		return []*models.PersistenceError{perr}
	}
	switch u := err.(type) {
	case interface{ Unwrap() []error }:
		var out []*models.PersistenceError
		for _, e := range u.Unwrap() {
			out = append(out, persistenceFailures(e)...)
		}
		return out
	case interface{ Unwrap() error }:
		return persistenceFailures(u.Unwrap())
	}
	return nil
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Commands exposes the command counter, mainly for tests.
func (m *Metrics) Commands() *prometheus.CounterVec { return m.commands }

// PersistFailures exposes the persistence failure counter, mainly for tests.
func (m *Metrics) PersistFailures() *prometheus.CounterVec { return m.persistFailures }

// Outcome classifies a command error.
func Outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	var (
		perr *models.PersistenceError
		aerr *models.AuthorizationError
		verr *models.ValidationError
		derr *models.DuplicateLotError
		gerr *models.ReferentialGapError
		uerr *models.InUseError
	)
	switch {
	case errors.As(err, &perr):
		return OutcomePersistFail
	case errors.As(err, &aerr), errors.Is(err, models.ErrUnauthenticated):
		return OutcomeDenied
	case errors.As(err, &verr), errors.As(err, &derr), errors.As(err, &gerr), errors.As(err, &uerr),
		errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrConflict):
		return OutcomeRejected
	default:
		return OutcomeError
	}
}
