package metrics

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sentropy/internal/engine"
	"github.com/roach88/sentropy/internal/ir"
	tu "github.com/roach88/sentropy/internal/testutil"
)

func newInstrumentedEngine(t *testing.T, c *Collector) *engine.Engine {
	t.Helper()
	clock := tu.NewStepClock(0)
	e, err := engine.New(ir.PrecisionStandard,
		engine.WithLogger(tu.DiscardLogger()),
		engine.WithNow(clock.Now),
		engine.WithIDGenerator(engine.NewSequenceGenerator("id")),
		engine.WithMetrics(c),
	)
	require.NoError(t, err)
	return e
}

func TestCollector_Measurements(t *testing.T) {
	c := New()
	e := newInstrumentedEngine(t, c)
	ctx := context.Background()

	in := engine.MeasurementInput{Context: "0123456789", Observer: ir.ObserverNaive, TargetPrecision: 1e-30, Complexity: 5, Accessibility: 0.95}
	for i := 0; i < 3; i++ {
		_, err := e.GenerateMeasurement(ctx, in)
		require.NoError(t, err)
	}

	converged := engine.MeasurementInput{Observer: ir.ObserverUniversal, EmotionalFactor: -1, Complexity: -100, Accessibility: 0.5}
	_, err := e.GenerateMeasurement(ctx, converged)
	require.NoError(t, err)

	assert.Equal(t, 3.0, testutil.ToFloat64(c.measurements.WithLabelValues("false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.measurements.WithLabelValues("true")))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.historySize))
}

func TestCollector_Alignment(t *testing.T) {
	c := New()
	e := newInstrumentedEngine(t, c)
	ctx := context.Background()

	_, err := e.Align(ctx, 1, 2, 3)
	require.NoError(t, err)
	_, err = e.Align(ctx, 4, 5, 6)
	require.NoError(t, err)
	_, err = e.Align(ctx, 1, 2, 3)
	require.NoError(t, err)

	assert.Equal(t, 3.0, testutil.ToFloat64(c.alignments.WithLabelValues("ok")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.alignments.WithLabelValues("failed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.cacheSize))
}

func TestCollector_Integration(t *testing.T) {
	c := New()
	e := newInstrumentedEngine(t, c)
	ctx := context.Background()

	ok, err := e.AttemptIntegration(ctx, 0.01)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.integrations.WithLabelValues("success")))
	assert.Equal(t, e.IntegrationStats().CurrentSeparation, testutil.ToFloat64(c.separation))
}

func TestCollector_Validation(t *testing.T) {
	c := New()
	e := newInstrumentedEngine(t, c)

	e.ValidateAllMarkers()
	assert.Equal(t, 1.0, testutil.ToFloat64(c.validationRate))
}

func TestCollector_Registered(t *testing.T) {
	c := New()
	c.ObserveMeasurement(ir.Measurement{}, 1)
	c.ObserveAlignment(true, 1)
	c.ObserveIntegration(ir.IntegrationAttempt{Success: true}, ir.IntegrationStats{})
	c.ObserveValidation(ir.ValidationReport{Rate: 1})

	count, err := testutil.GatherAndCount(c.Registry())
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}

func TestCollector_WriteText(t *testing.T) {
	c := New()
	c.ObserveAlignment(false, 0)
	c.ObserveValidation(ir.ValidationReport{Rate: 0.5})

	var buf bytes.Buffer
	require.NoError(t, c.WriteText(&buf))

	out := buf.String()
	assert.Contains(t, out, "# TYPE sentropy_alignments_total counter")
	assert.Contains(t, out, `sentropy_alignments_total{result="failed"} 1`)
	assert.Contains(t, out, "sentropy_marker_validation_rate 0.5")

	err := testutil.GatherAndCompare(c.Registry(), strings.NewReader(`
# HELP sentropy_marker_validation_rate Fraction of records carrying the expected marker at the last validation
# TYPE sentropy_marker_validation_rate gauge
sentropy_marker_validation_rate 0.5
`), "sentropy_marker_validation_rate")
	assert.NoError(t, err)
}
