package store

import (
	"fmt"
	"time"

	"github.com/roach88/sentropy/internal/ir"
)

// timeToColumn converts t to unix nanoseconds for storage.
func timeToColumn(t time.Time) int64 {
	return t.UnixNano()
}

// timeFromColumn converts stored unix nanoseconds back to a UTC time.
func timeFromColumn(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

func boolToColumn(b bool) int {
	if b {
		return 1
	}
	return 0
}

// enumToColumn stores an enum by its text form so the journal stays
// readable and independent of constant ordering.
func enumToColumn(v interface{ MarshalText() ([]byte, error) }) (string, error) {
	b, err := v.MarshalText()
	if err != nil {
		return "", fmt.Errorf("marshal enum: %w", err)
	}
	return string(b), nil
}

func observerFromColumn(s string) (ir.Observer, error) {
	o, err := ir.ParseObserver(s)
	if err != nil {
		return 0, fmt.Errorf("unmarshal observer: %w", err)
	}
	return o, nil
}

func precisionFromColumn(s string) (ir.Precision, error) {
	p, err := ir.ParsePrecision(s)
	if err != nil {
		return 0, fmt.Errorf("unmarshal precision: %w", err)
	}
	return p, nil
}
