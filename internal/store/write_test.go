package store

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sentropy/internal/ir"
)

func TestPutCoordinate_LastWriteWins(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first := ir.Coordinate{ID: "c-1", Knowledge: 1, Time: 2, Entropy: 3, Marker: ir.DefaultMarker, CreatedAt: testTime}
	second := ir.Coordinate{ID: "c-2", Knowledge: 4, Time: 5, Entropy: 6, Marker: ir.DefaultMarker, CreatedAt: testTime}

	require.NoError(t, s.PutCoordinate(ctx, "key-a", 1, first))
	require.NoError(t, s.PutCoordinate(ctx, "key-a", 2, second))

	coords, err := s.ReadCoordinates(ctx)
	require.NoError(t, err)
	require.Len(t, coords, 1)
	assert.Equal(t, second, coords["key-a"])

	seq, err := s.LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), seq)
}

func TestPutCoordinate_DistinctKeys(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for i, key := range []string{"key-a", "key-b", "key-c"} {
		c := ir.Coordinate{ID: key, Knowledge: float64(i), Marker: ir.DefaultMarker, CreatedAt: testTime}
		require.NoError(t, s.PutCoordinate(ctx, key, int64(i+1), c))
	}

	coords, err := s.ReadCoordinates(ctx)
	require.NoError(t, err)
	assert.Len(t, coords, 3)
	assert.Equal(t, 2.0, coords["key-c"].Knowledge)
}

func TestAppendMeasurement_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	m := createTestMeasurement("m-1", 1)
	m.Observer = ir.ObserverExpert
	m.Precision = ir.PrecisionUltra
	m.Converged = true
	require.NoError(t, s.AppendMeasurement(ctx, m))

	got, err := s.ReadMeasurement(ctx, "m-1")
	require.NoError(t, err)
	assert.Equal(t, m, got)
	assert.Equal(t, math.Float64bits(m.Entropy), math.Float64bits(got.Entropy), "floats must round-trip bit for bit")
}

func TestAppendMeasurement_DuplicateIDIgnored(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	m := createTestMeasurement("m-1", 1)
	require.NoError(t, s.AppendMeasurement(ctx, m))

	dup := m
	dup.Knowledge = 42
	require.NoError(t, s.AppendMeasurement(ctx, dup))

	n, err := s.CountMeasurements(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := s.ReadMeasurement(ctx, "m-1")
	require.NoError(t, err)
	assert.Equal(t, m.Knowledge, got.Knowledge)
}

func TestAppendMeasurement_SeqConflict(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AppendMeasurement(ctx, createTestMeasurement("m-1", 1)))
	err := s.AppendMeasurement(ctx, createTestMeasurement("m-2", 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "append measurement")
}

func TestAppendMeasurement_InvalidEnum(t *testing.T) {
	s := createTestStore(t)

	m := createTestMeasurement("m-1", 1)
	m.Observer = ir.Observer(99)
	err := s.AppendMeasurement(context.Background(), m)
	require.Error(t, err)
}

func TestAppendAttempt_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	a1 := createTestAttempt("a-1", 1, 1e-6, true)
	a2 := createTestAttempt("a-2", 2, 1e-40, false)
	require.NoError(t, s.AppendAttempt(ctx, a2))
	require.NoError(t, s.AppendAttempt(ctx, a1))
	require.NoError(t, s.AppendAttempt(ctx, a1))

	attempts, err := s.ReadAttempts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []ir.IntegrationAttempt{a1, a2}, attempts)
}

func TestReadAttempts_EmptyNotNil(t *testing.T) {
	s := createTestStore(t)

	attempts, err := s.ReadAttempts(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, attempts)
	assert.Empty(t, attempts)
}
