package ir

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind categorizes sentropy errors. The set is closed.
type Kind string

const (
	// KindCalculation indicates a component calculator received or produced a non-finite value.
	KindCalculation Kind = "calculation"

	// KindAlignment indicates the alignment step could not build a coordinate.
	KindAlignment Kind = "alignment"

	// KindNavigation indicates a navigator rejected its input.
	KindNavigation Kind = "navigation"

	// KindIntegration indicates the integration tracker rejected an attempt.
	KindIntegration Kind = "integration"

	// KindMarkerValidation indicates a record carried an unexpected marker.
	KindMarkerValidation Kind = "marker_validation"

	// KindPrecision indicates an unknown or unusable precision level.
	KindPrecision Kind = "precision"

	// KindConfiguration indicates invalid configuration or policy.
	KindConfiguration Kind = "configuration"

	// KindIO indicates a storage or serialization failure.
	KindIO Kind = "io"

	// KindInternal indicates a broken internal invariant.
	KindInternal Kind = "internal"
)

// Severity ranks how serious an error is for the caller.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "low"
	}
}

// RequiresAttention reports whether the caller must stop and correct the input.
func (s Severity) RequiresAttention() bool {
	return s >= SeverityHigh
}

// Error is the single error type returned across package boundaries.
//
// Kind identifies the category; Op names the failing operation (e.g. "align",
// "attempt_integration"). Err, when set, is the underlying cause and is
// reachable through errors.Unwrap.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Details map[string]string
	Err     error
}

// NewError creates an Error without an underlying cause.
func NewError(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// WrapError creates an Error around cause.
func WrapError(kind Kind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Message: cause.Error(), Err: cause}
}

// WithDetail returns e with key set in Details.
func (e *Error) WithDetail(key, value string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Op != "" {
		b.WriteString(" (")
		b.WriteString(e.Op)
		b.WriteString(")")
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s=%s", k, e.Details[k])
		}
		b.WriteString(" [")
		b.WriteString(strings.Join(parts, ", "))
		b.WriteString("]")
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Severity maps the error kind onto a severity level.
func (e *Error) Severity() Severity {
	switch e.Kind {
	case KindMarkerValidation:
		return SeverityCritical
	case KindCalculation, KindAlignment, KindIntegration:
		return SeverityHigh
	case KindNavigation, KindPrecision:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal
// when err is not a sentropy error. A nil err has no kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind returns true if err wraps an *Error of the given kind.
// Uses errors.As to handle wrapped errors.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// IsMarkerError returns true if err is a marker validation error.
func IsMarkerError(err error) bool {
	return IsKind(err, KindMarkerValidation)
}

// IsCalculationError returns true if err is a calculation error.
func IsCalculationError(err error) bool {
	return IsKind(err, KindCalculation)
}

// Retryable reports whether retrying with different inputs can succeed.
// Marker validation failures are never retryable.
func Retryable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Kind {
	case KindCalculation, KindPrecision, KindIntegration, KindNavigation, KindIO:
		return true
	default:
		return false
	}
}

// SeverityOf returns the severity of err, or SeverityLow for foreign errors.
func SeverityOf(err error) Severity {
	var e *Error
	if errors.As(err, &e) {
		return e.Severity()
	}
	return SeverityLow
}

// NewMarkerError creates a marker validation error.
func NewMarkerError(op, expected, actual string) *Error {
	return &Error{
		Kind:    KindMarkerValidation,
		Op:      op,
		Message: fmt.Sprintf("marker mismatch: expected %q, got %q", expected, actual),
		Details: map[string]string{
			"expected": expected,
			"actual":   actual,
		},
	}
}

// NewNonFiniteError creates a calculation error naming the offending input.
func NewNonFiniteError(op, input string, value float64) *Error {
	return &Error{
		Kind:    KindCalculation,
		Op:      op,
		Message: fmt.Sprintf("%s is not finite", input),
		Details: map[string]string{
			input: fmt.Sprintf("%v", value),
		},
	}
}
