package engine

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sentropy/internal/ir"
)

func TestAlign_AppliesMatrix(t *testing.T) {
	e, _ := newTestEngine(t)

	c, err := e.Align(t.Context(), 10, 20, 30)
	require.NoError(t, err)

	assert.InDelta(t, 0.8*10+0.1*20+0.1*30, c.Knowledge, 1e-12)
	assert.InDelta(t, 0.1*10+0.8*20+0.1*30, c.Time, 1e-12)
	assert.InDelta(t, 0.1*10+0.1*20+0.8*30, c.Entropy, 1e-12)
	assert.Equal(t, ir.DefaultMarker, c.Marker)
	assert.Equal(t, "id-1", c.ID)
	assert.Equal(t, 1, e.CacheLen())
}

func TestAlign_IdempotentWithinBucket(t *testing.T) {
	e, clock := newTestEngine(t)

	first, err := e.Align(t.Context(), 1, 2, 3)
	require.NoError(t, err)
	clock.Advance(500 * time.Millisecond)
	second, err := e.Align(t.Context(), 1, 2, 3)
	require.NoError(t, err)

	assert.Equal(t, 1, e.CacheLen(), "same inputs in the same bucket share one entry")

	cached := e.Coordinates()
	key := ir.MustCoordinateKey(1, 2, 3, e.Policy().Bucket(first.CreatedAt))
	require.Contains(t, cached, key)
	assert.Equal(t, second.ID, cached[key].ID, "last write wins")
}

func TestAlign_NewBucketAddsEntry(t *testing.T) {
	e, clock := newTestEngine(t)

	_, err := e.Align(t.Context(), 1, 2, 3)
	require.NoError(t, err)
	clock.Advance(time.Second)
	_, err = e.Align(t.Context(), 1, 2, 3)
	require.NoError(t, err)

	assert.Equal(t, 2, e.CacheLen())
}

func TestAlign_DistinctInputsDistinctEntries(t *testing.T) {
	e, _ := newTestEngine(t)

	_, err := e.Align(t.Context(), 1, 2, 3)
	require.NoError(t, err)
	_, err = e.Align(t.Context(), 3, 2, 1)
	require.NoError(t, err)

	assert.Equal(t, 2, e.CacheLen())
}

func TestAlign_MarkerMismatchIsNotCached(t *testing.T) {
	metrics := &countingMetrics{}
	e, _ := newTestEngine(t, WithMetrics(metrics), withStamp("someone-else"))

	_, err := e.Align(t.Context(), 1, 2, 3)
	require.Error(t, err)
	assert.True(t, ir.IsMarkerError(err))
	assert.Equal(t, ir.SeverityCritical, ir.SeverityOf(err))
	assert.False(t, ir.Retryable(err))
	assert.Equal(t, 0, e.CacheLen())
	assert.Equal(t, 1, metrics.alignFailed)
}

func TestAlign_NonFinite(t *testing.T) {
	e, _ := newTestEngine(t)

	_, err := e.Align(t.Context(), 1, math.NaN(), 3)
	require.Error(t, err)
	assert.True(t, ir.IsKind(err, ir.KindAlignment))
	assert.Contains(t, err.Error(), "time is not finite")
	assert.Equal(t, 0, e.CacheLen())
}

func TestAlign_CanceledContext(t *testing.T) {
	e, _ := newTestEngine(t)

	_, err := e.Align(canceledContext(), 1, 2, 3)
	assert.ErrorIs(t, err, context.Canceled)
	assertInternalError(t, err)
	assert.Equal(t, 0, e.CacheLen())
}

func TestAlign_LargeFiniteComponents(t *testing.T) {
	e, _ := newTestEngine(t)

	c, err := e.Align(t.Context(), 1e200, 1e200, 1e200)
	require.NoError(t, err)

	assert.InEpsilon(t, 1e200, c.Knowledge, 1e-12)
	assert.False(t, math.IsInf(c.Magnitude(), 0))
	assert.InEpsilon(t, math.Sqrt(3)*1e200, c.Magnitude(), 1e-12)
	assert.Equal(t, 1, e.CacheLen())
}

func TestAlign_CoordinatesReturnsCopy(t *testing.T) {
	e, _ := newTestEngine(t)
	_, err := e.Align(t.Context(), 1, 2, 3)
	require.NoError(t, err)

	for k := range e.Coordinates() {
		c := e.Coordinates()
		delete(c, k)
	}
	assert.Equal(t, 1, e.CacheLen())
}

func TestProbe(t *testing.T) {
	e, _ := newTestEngine(t)

	c, err := e.Probe(t.Context())
	require.NoError(t, err)
	assert.Equal(t, ir.DefaultMarker, c.Marker)
	assert.Greater(t, c.Magnitude(), 0.0)
	assert.Equal(t, 1, e.CacheLen())
}
