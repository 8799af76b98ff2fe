package ir

import (
	"fmt"
	"strings"
)

// Precision selects the convergence threshold used by an engine.
type Precision int

const (
	PrecisionStandard Precision = iota
	PrecisionHigh
	PrecisionUltra
	PrecisionSupreme
)

var precisionNames = [...]string{"standard", "high", "ultra", "supreme"}

var precisionThresholds = [...]float64{1e-6, 1e-15, 1e-30, 1e-50}

// Threshold returns the magnitude a measurement must stay strictly below to
// count as converged.
func (p Precision) Threshold() float64 {
	if !p.Valid() {
		return precisionThresholds[PrecisionStandard]
	}
	return precisionThresholds[p]
}

// Valid reports whether p is one of the four defined levels.
func (p Precision) Valid() bool {
	return p >= PrecisionStandard && p <= PrecisionSupreme
}

func (p Precision) String() string {
	if !p.Valid() {
		return fmt.Sprintf("precision(%d)", int(p))
	}
	return precisionNames[p]
}

// ParsePrecision parses a case-insensitive level name.
func ParsePrecision(s string) (Precision, error) {
	for i, name := range precisionNames {
		if strings.EqualFold(s, name) {
			return Precision(i), nil
		}
	}
	return 0, NewError(KindPrecision, "parse_precision", fmt.Sprintf("unknown precision %q", s))
}

// MarshalText implements encoding.TextMarshaler.
func (p Precision) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, NewError(KindPrecision, "marshal_precision", p.String())
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Precision) UnmarshalText(b []byte) error {
	v, err := ParsePrecision(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Optimal reports whether magnitude is strictly below the threshold for
// level. A magnitude equal to the threshold is not optimal.
func Optimal(magnitude float64, level Precision) bool {
	return magnitude < level.Threshold()
}

// Observer is the sophistication of whoever supplies a measurement context.
type Observer int

const (
	ObserverNaive Observer = iota
	ObserverIntermediate
	ObserverExpert
	ObserverUniversal
)

var observerNames = [...]string{"naive", "intermediate", "expert", "universal"}

var observerDeficits = [...]float64{1000, 100, 10, 0}

// Deficit returns the base knowledge deficit for the observer level.
func (o Observer) Deficit() float64 {
	if !o.Valid() {
		return observerDeficits[ObserverNaive]
	}
	return observerDeficits[o]
}

// Valid reports whether o is one of the four defined levels.
func (o Observer) Valid() bool {
	return o >= ObserverNaive && o <= ObserverUniversal
}

func (o Observer) String() string {
	if !o.Valid() {
		return fmt.Sprintf("observer(%d)", int(o))
	}
	return observerNames[o]
}

// ParseObserver parses a case-insensitive observer name.
func ParseObserver(s string) (Observer, error) {
	for i, name := range observerNames {
		if strings.EqualFold(s, name) {
			return Observer(i), nil
		}
	}
	return 0, NewError(KindCalculation, "parse_observer", fmt.Sprintf("unknown observer %q", s))
}

// MarshalText implements encoding.TextMarshaler.
func (o Observer) MarshalText() ([]byte, error) {
	if !o.Valid() {
		return nil, NewError(KindCalculation, "marshal_observer", o.String())
	}
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Observer) UnmarshalText(b []byte) error {
	v, err := ParseObserver(string(b))
	if err != nil {
		return err
	}
	*o = v
	return nil
}
