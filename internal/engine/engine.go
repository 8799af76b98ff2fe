package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/sentropy/internal/ir"
)

// Service is the set of engine capabilities consumed by the harness and CLI.
type Service interface {
	GenerateMeasurement(ctx context.Context, in MeasurementInput) (ir.Measurement, error)
	Align(ctx context.Context, knowledge, time, entropy float64) (ir.Coordinate, error)
	AttemptIntegration(ctx context.Context, target float64) (bool, error)
	IntegrationStats() ir.IntegrationStats
	ValidateAllMarkers() ir.ValidationReport
}

// Journal persists engine records. Implemented by store.Store.
//
// Each call happens inside the engine's critical section for the record
// being written, before the in-memory append.
type Journal interface {
	PutCoordinate(ctx context.Context, key string, seq int64, c ir.Coordinate) error
	AppendMeasurement(ctx context.Context, m ir.Measurement) error
	AppendAttempt(ctx context.Context, a ir.IntegrationAttempt) error
}

// Metrics observes completed engine operations. Implemented by metrics.Collector.
type Metrics interface {
	ObserveMeasurement(m ir.Measurement, historyLen int)
	ObserveAlignment(ok bool, cacheLen int)
	ObserveIntegration(a ir.IntegrationAttempt, stats ir.IntegrationStats)
	ObserveValidation(r ir.ValidationReport)
}

// Engine is the measurement engine.
//
// Engine must not be copied after first use; share it by pointer.
type Engine struct {
	precision ir.Precision
	policy    ir.Policy
	logger    *slog.Logger
	now       func() time.Time
	ids       IDGenerator
	clock     *Clock
	journal   Journal
	metrics   Metrics

	// stamp overrides the marker written onto new coordinates. Empty means
	// policy.Marker.
	stamp string

	historyCap    int
	attemptLogCap int

	cacheMu sync.RWMutex
	cache   map[string]ir.Coordinate

	historyMu sync.RWMutex
	history   *history

	trackerMu sync.RWMutex
	tracker   tracker
}

var _ Service = (*Engine)(nil)

// Option configures an Engine.
type Option func(*Engine)

// WithPolicy replaces the default policy.
func WithPolicy(p ir.Policy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithNow sets the wall clock used for record timestamps and cache buckets.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithIDGenerator sets the record ID generator. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) {
		if g != nil {
			e.ids = g
		}
	}
}

// WithHistoryCap sets how many measurements are retained.
//
// Default: 1000 (DefaultHistoryCap)
func WithHistoryCap(n int) Option {
	return func(e *Engine) {
		e.historyCap = n
	}
}

// WithAttemptLogCap bounds the integration attempt log. Zero keeps every
// attempt. Counters used for the success rate are never evicted.
func WithAttemptLogCap(n int) Option {
	return func(e *Engine) {
		e.attemptLogCap = n
	}
}

// WithJournal makes the engine write every record to j before keeping it.
func WithJournal(j Journal) Option {
	return func(e *Engine) {
		e.journal = j
	}
}

// WithMetrics registers an observer for completed operations.
func WithMetrics(m Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// New creates an Engine at the given precision.
//
// Returns a configuration error if precision is unknown, the policy fails
// validation, or a cap is negative.
func New(precision ir.Precision, opts ...Option) (*Engine, error) {
	e := &Engine{
		precision:  precision,
		policy:     ir.DefaultPolicy(),
		logger:     slog.Default(),
		now:        time.Now,
		ids:        UUIDv7Generator{},
		clock:      NewClock(),
		historyCap: DefaultHistoryCap,
		cache:      make(map[string]ir.Coordinate),
	}

	for _, opt := range opts {
		opt(e)
	}

	if !precision.Valid() {
		return nil, ir.NewError(ir.KindPrecision, "new_engine", "unknown precision "+precision.String())
	}
	if err := e.policy.Validate(); err != nil {
		return nil, err
	}
	if e.historyCap < 1 {
		return nil, ir.NewError(ir.KindConfiguration, "new_engine", "history cap must be positive")
	}
	if e.attemptLogCap < 0 {
		return nil, ir.NewError(ir.KindConfiguration, "new_engine", "attempt log cap must not be negative")
	}
	if e.metrics == nil {
		e.metrics = nopMetrics{}
	}

	if e.stamp == "" {
		e.stamp = e.policy.Marker
	}
	e.history = newHistory(e.historyCap)
	e.tracker = newTracker(e.policy.InitialSeparation)

	e.logger.Info("engine initialized",
		"precision", precision.String(),
		"threshold", precision.Threshold(),
		"history_cap", e.historyCap,
	)
	return e, nil
}

// Precision returns the engine's precision level.
func (e *Engine) Precision() ir.Precision {
	return e.precision
}

// Policy returns a copy of the engine's policy.
func (e *Engine) Policy() ir.Policy {
	return e.policy
}

// Seq returns the last seq stamped by the engine.
func (e *Engine) Seq() int64 {
	return e.clock.Current()
}

// CacheLen returns the number of cached coordinates.
func (e *Engine) CacheLen() int {
	e.cacheMu.RLock()
	defer e.cacheMu.RUnlock()
	return len(e.cache)
}

// Coordinates returns a copy of the coordinate cache.
func (e *Engine) Coordinates() map[string]ir.Coordinate {
	e.cacheMu.RLock()
	defer e.cacheMu.RUnlock()

	out := make(map[string]ir.Coordinate, len(e.cache))
	for k, c := range e.cache {
		out[k] = c
	}
	return out
}

// History returns a copy of the retained measurements, oldest first.
func (e *Engine) History() []ir.Measurement {
	e.historyMu.RLock()
	defer e.historyMu.RUnlock()
	return e.history.snapshot()
}

// HistoryLen returns the number of retained measurements.
func (e *Engine) HistoryLen() int {
	e.historyMu.RLock()
	defer e.historyMu.RUnlock()
	return e.history.len()
}

type nopMetrics struct{}

func (nopMetrics) ObserveMeasurement(ir.Measurement, int)                        {}
func (nopMetrics) ObserveAlignment(bool, int)                                    {}
func (nopMetrics) ObserveIntegration(ir.IntegrationAttempt, ir.IntegrationStats) {}
func (nopMetrics) ObserveValidation(ir.ValidationReport)                         {}
