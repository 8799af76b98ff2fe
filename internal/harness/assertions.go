package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes the final state to help debug the failure.
type AssertionError struct {
	Type     string
	Expected float64
	Actual   float64
	Final    Final
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %v\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %v\n", e.Actual)

	f := e.Final
	fmt.Fprintf(&buf, "\nFinal state:\n")
	fmt.Fprintf(&buf, "  seq=%d history_len=%d cache_size=%d\n", f.Seq, f.HistoryLen, f.CacheSize)
	fmt.Fprintf(&buf, "  total_attempts=%d success_rate=%v\n", f.TotalAttempts, f.SuccessRate)
	fmt.Fprintf(&buf, "  marker_rate=%v converged_count=%d\n", f.MarkerRate, f.ConvergedCount)

	return buf.String()
}

// actualValue returns the final-state value an assertion type reads.
func actualValue(f Final, typ string) (float64, bool) {
	switch typ {
	case AssertHistoryLen:
		return float64(f.HistoryLen), true
	case AssertCacheSize:
		return float64(f.CacheSize), true
	case AssertTotalAttempts:
		return float64(f.TotalAttempts), true
	case AssertSuccessRate:
		return f.SuccessRate, true
	case AssertMarkerRate:
		return f.MarkerRate, true
	case AssertConvergedCount:
		return float64(f.ConvergedCount), true
	}
	return 0, false
}

// checkAssertion evaluates one assertion against the final state.
func checkAssertion(f Final, a Assertion) error {
	actual, ok := actualValue(f, a.Type)
	if !ok {
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
	if !approxEqual(a.Value, actual) {
		return &AssertionError{
			Type:     a.Type,
			Expected: a.Value,
			Actual:   actual,
			Final:    f,
		}
	}
	return nil
}

// EvaluateAssertions runs all assertions and returns the failure messages.
func EvaluateAssertions(f Final, assertions []Assertion) []string {
	var errs []string
	for _, a := range assertions {
		if err := checkAssertion(f, a); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}
