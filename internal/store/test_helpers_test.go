package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/sentropy/internal/ir"
)

// createTestStore creates a new temporary store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var testTime = time.Date(2025, 1, 1, 12, 0, 0, 123456789, time.UTC)

// createTestMeasurement creates a measurement with minimal required fields.
func createTestMeasurement(id string, seq int64) ir.Measurement {
	return ir.Measurement{
		ID:         id,
		Seq:        seq,
		Knowledge:  1001,
		Time:       0.01,
		Entropy:    0.1 + 0.2,
		Magnitude:  ir.Magnitude(1001, 0.01, 0.1+0.2),
		Observer:   ir.ObserverNaive,
		Precision:  ir.PrecisionStandard,
		Converged:  false,
		Marker:     ir.DefaultMarker,
		MeasuredAt: testTime,
	}
}

// createTestAttempt creates an attempt with minimal required fields.
func createTestAttempt(id string, seq int64, target float64, success bool) ir.IntegrationAttempt {
	return ir.IntegrationAttempt{
		ID:          id,
		Seq:         seq,
		Target:      target,
		Achieved:    target * 0.99,
		Success:     success,
		Iterations:  1,
		Method:      ir.MethodTriDimensionalAlignment,
		AttemptedAt: testTime,
	}
}
