package harness

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFinal = Final{
	Seq:            9,
	HistoryLen:     3,
	CacheSize:      2,
	TotalAttempts:  4,
	SuccessRate:    0.75,
	MarkerRate:     1,
	ConvergedCount: 1,
}

func TestCheckAssertion(t *testing.T) {
	tests := []struct {
		name string
		a    Assertion
		pass bool
	}{
		{"history len", Assertion{Type: AssertHistoryLen, Value: 3}, true},
		{"history len mismatch", Assertion{Type: AssertHistoryLen, Value: 4}, false},
		{"cache size", Assertion{Type: AssertCacheSize, Value: 2}, true},
		{"total attempts", Assertion{Type: AssertTotalAttempts, Value: 4}, true},
		{"success rate", Assertion{Type: AssertSuccessRate, Value: 0.75}, true},
		{"success rate within tolerance", Assertion{Type: AssertSuccessRate, Value: 0.7500000001}, true},
		{"success rate outside tolerance", Assertion{Type: AssertSuccessRate, Value: 0.7501}, false},
		{"marker rate", Assertion{Type: AssertMarkerRate, Value: 1}, true},
		{"converged count", Assertion{Type: AssertConvergedCount, Value: 1}, true},
		{"converged count mismatch", Assertion{Type: AssertConvergedCount, Value: 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkAssertion(testFinal, tt.a)
			if tt.pass {
				assert.NoError(t, err)
				return
			}
			var ae *AssertionError
			require.True(t, errors.As(err, &ae))
			assert.Equal(t, tt.a.Type, ae.Type)
			assert.Equal(t, tt.a.Value, ae.Expected)
		})
	}
}

func TestCheckAssertion_UnknownType(t *testing.T) {
	err := checkAssertion(testFinal, Assertion{Type: "trace_order"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown assertion type")
}

func TestAssertionError_Message(t *testing.T) {
	err := &AssertionError{
		Type:     AssertCacheSize,
		Expected: 5,
		Actual:   2,
		Final:    testFinal,
	}

	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: cache_size")
	assert.Contains(t, msg, "Expected: 5")
	assert.Contains(t, msg, "Actual: 2")
	assert.Contains(t, msg, "seq=9 history_len=3 cache_size=2")
	assert.Contains(t, msg, "total_attempts=4 success_rate=0.75")
}

func TestEvaluateAssertions(t *testing.T) {
	errs := EvaluateAssertions(testFinal, []Assertion{
		{Type: AssertHistoryLen, Value: 3},
		{Type: AssertCacheSize, Value: 0},
		{Type: AssertMarkerRate, Value: 0.5},
	})
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "cache_size")
	assert.Contains(t, errs[1], "marker_rate")

	assert.Empty(t, EvaluateAssertions(testFinal, nil))
}
