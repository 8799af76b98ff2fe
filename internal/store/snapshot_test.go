package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sentropy/internal/engine"
	"github.com/roach88/sentropy/internal/ir"
	"github.com/roach88/sentropy/internal/testutil"
)

func newJournaledEngine(t *testing.T, s *Store, opts ...engine.Option) *engine.Engine {
	t.Helper()
	clock := testutil.NewStepClock(0)
	base := []engine.Option{
		engine.WithLogger(testutil.DiscardLogger()),
		engine.WithNow(clock.Now),
		engine.WithIDGenerator(engine.NewSequenceGenerator("id")),
		engine.WithJournal(s),
	}
	e, err := engine.New(ir.PrecisionStandard, append(base, opts...)...)
	require.NoError(t, err)
	return e
}

var sampleInput = engine.MeasurementInput{
	Context:         "0123456789",
	Observer:        ir.ObserverNaive,
	TargetPrecision: 1e-30,
	Complexity:      5,
	Accessibility:   0.95,
}

func TestSnapshot_RestoresEngine(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")

	s, err := Open(path)
	require.NoError(t, err)

	e := newJournaledEngine(t, s)
	for i := 0; i < 3; i++ {
		_, err := e.GenerateMeasurement(ctx, sampleInput)
		require.NoError(t, err)
	}
	_, err = e.Align(ctx, 1000, 0.5, 0.01)
	require.NoError(t, err)
	_, err = e.AttemptIntegration(ctx, 1e-6)
	require.NoError(t, err)
	_, err = e.AttemptIntegration(ctx, 1e-40)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	snap, err := s.Snapshot(ctx, engine.DefaultHistoryCap)
	require.NoError(t, err)
	assert.Equal(t, e.Seq(), snap.LastSeq)

	restored, err := engine.New(ir.PrecisionStandard, engine.WithLogger(testutil.DiscardLogger()))
	require.NoError(t, err)
	require.NoError(t, restored.Restore(ctx, snap))

	assert.Equal(t, e.History(), restored.History())
	assert.Equal(t, e.Coordinates(), restored.Coordinates())
	assert.Equal(t, e.Attempts(), restored.Attempts())
	assert.Equal(t, e.IntegrationStats(), restored.IntegrationStats())
	assert.Equal(t, e.Seq(), restored.Seq())
	assert.True(t, restored.ValidateAllMarkers().Passed())
}

func TestSnapshot_HistoryCapKeepsNewest(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	e := newJournaledEngine(t, s)
	for i := 0; i < 5; i++ {
		_, err := e.GenerateMeasurement(ctx, sampleInput)
		require.NoError(t, err)
	}

	snap, err := s.Snapshot(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"id-4", "id-5"}, ids(snap.Measurements))
	assert.Equal(t, int64(5), snap.LastSeq)

	n, err := s.CountMeasurements(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestSnapshot_Empty(t *testing.T) {
	s := createTestStore(t)

	snap, err := s.Snapshot(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, snap.Coordinates)
	assert.Empty(t, snap.Measurements)
	assert.Empty(t, snap.Attempts)
	assert.Equal(t, int64(0), snap.LastSeq)
}

func TestSnapshot_InvalidCap(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Snapshot(context.Background(), 0)
	require.Error(t, err)
}
