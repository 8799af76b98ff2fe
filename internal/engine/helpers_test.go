package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sentropy/internal/ir"
	"github.com/roach88/sentropy/internal/testutil"
)

// newTestEngine builds an engine with frozen time and sequential IDs.
func newTestEngine(t *testing.T, opts ...Option) (*Engine, *testutil.StepClock) {
	t.Helper()
	clock := testutil.NewStepClock(0)
	base := []Option{
		WithLogger(testutil.DiscardLogger()),
		WithNow(clock.Now),
		WithIDGenerator(NewSequenceGenerator("id")),
	}
	e, err := New(ir.PrecisionStandard, append(base, opts...)...)
	require.NoError(t, err)
	return e, clock
}

var defaultInput = MeasurementInput{
	Context:         "0123456789",
	Observer:        ir.ObserverNaive,
	TargetPrecision: 1e-30,
	EmotionalFactor: 0,
	Complexity:      5,
	Accessibility:   0.95,
}

// memJournal records every write. Setting fail makes the next writes error.
type memJournal struct {
	mu           sync.Mutex
	fail         bool
	coordinates  map[string]ir.Coordinate
	coordSeqs    []int64
	measurements []ir.Measurement
	attempts     []ir.IntegrationAttempt
}

var errJournal = errors.New("journal unavailable")

func newMemJournal() *memJournal {
	return &memJournal{coordinates: make(map[string]ir.Coordinate)}
}

func (j *memJournal) PutCoordinate(_ context.Context, key string, seq int64, c ir.Coordinate) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.fail {
		return errJournal
	}
	j.coordinates[key] = c
	j.coordSeqs = append(j.coordSeqs, seq)
	return nil
}

func (j *memJournal) AppendMeasurement(_ context.Context, m ir.Measurement) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.fail {
		return errJournal
	}
	j.measurements = append(j.measurements, m)
	return nil
}

func (j *memJournal) AppendAttempt(_ context.Context, a ir.IntegrationAttempt) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.fail {
		return errJournal
	}
	j.attempts = append(j.attempts, a)
	return nil
}

// countingMetrics tallies observer calls.
type countingMetrics struct {
	mu           sync.Mutex
	measurements int
	alignOK      int
	alignFailed  int
	integrations int
	validations  int
	lastHistory  int
	lastReport   ir.ValidationReport
}

func (m *countingMetrics) ObserveMeasurement(_ ir.Measurement, historyLen int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.measurements++
	m.lastHistory = historyLen
}

func (m *countingMetrics) ObserveAlignment(ok bool, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ok {
		m.alignOK++
	} else {
		m.alignFailed++
	}
}

func (m *countingMetrics) ObserveIntegration(ir.IntegrationAttempt, ir.IntegrationStats) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.integrations++
}

func (m *countingMetrics) ObserveValidation(r ir.ValidationReport) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.validations++
	m.lastReport = r
}

// assertInternalError checks that err is classified as an internal *ir.Error.
func assertInternalError(t *testing.T, err error) {
	t.Helper()
	var ierr *ir.Error
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, ir.KindInternal, ir.KindOf(err))
	assert.NotEmpty(t, ierr.Op)
}

func canceledContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}
