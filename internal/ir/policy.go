package ir

import (
	"fmt"
	"math"
	"time"
)

// DefaultMarker is the provenance marker stamped on every coordinate and
// measurement produced under the default policy.
const DefaultMarker = "st-stella-lorraine"

// Policy holds the constants an engine runs under. It is passed by value and
// never mutated after construction.
type Policy struct {
	// Marker is stamped on records and checked during alignment and validation.
	Marker string `json:"marker"`

	// UltraThreshold is the precision target below which the time
	// calculator returns its floor value.
	UltraThreshold float64 `json:"ultra_threshold"`

	// UniversalConstant scales the universal transform.
	UniversalConstant float64 `json:"universal_constant"`

	// DecayFactor multiplies the achieved separation on each decay step.
	DecayFactor float64 `json:"decay_factor"`

	// Overshoot sets the starting separation as target*Overshoot.
	Overshoot float64 `json:"overshoot"`

	// MaxDecaySteps bounds the decay loop.
	MaxDecaySteps int `json:"max_decay_steps"`

	// InitialSeparation is the tracker separation before any attempt.
	InitialSeparation float64 `json:"initial_separation"`

	// CacheBucket is the width of the time bucket folded into cache keys.
	CacheBucket time.Duration `json:"cache_bucket"`
}

// DefaultPolicy returns the policy every engine uses unless overridden.
func DefaultPolicy() Policy {
	return Policy{
		Marker:            DefaultMarker,
		UltraThreshold:    1e-30,
		UniversalConstant: 1.0,
		DecayFactor:       0.9,
		Overshoot:         1.1,
		MaxDecaySteps:     10,
		InitialSeparation: 1000.0,
		CacheBucket:       time.Second,
	}
}

// Validate checks the policy for values that would break the engine.
func (p Policy) Validate() error {
	fail := func(field, msg string) error {
		return NewError(KindConfiguration, "validate_policy", msg).WithDetail("field", field)
	}

	if p.Marker == "" {
		return fail("marker", "marker must not be empty")
	}
	if !positiveFinite(p.UltraThreshold) {
		return fail("ultra_threshold", fmt.Sprintf("ultra threshold must be positive and finite, got %v", p.UltraThreshold))
	}
	if !positiveFinite(p.UniversalConstant) {
		return fail("universal_constant", fmt.Sprintf("universal constant must be positive and finite, got %v", p.UniversalConstant))
	}
	if !(p.DecayFactor > 0 && p.DecayFactor < 1) {
		return fail("decay_factor", fmt.Sprintf("decay factor must be in (0, 1), got %v", p.DecayFactor))
	}
	if !(p.Overshoot >= 1) || math.IsInf(p.Overshoot, 0) {
		return fail("overshoot", fmt.Sprintf("overshoot must be >= 1 and finite, got %v", p.Overshoot))
	}
	if p.MaxDecaySteps < 1 {
		return fail("max_decay_steps", fmt.Sprintf("max decay steps must be >= 1, got %d", p.MaxDecaySteps))
	}
	if math.IsNaN(p.InitialSeparation) || math.IsInf(p.InitialSeparation, 0) || p.InitialSeparation < 0 {
		return fail("initial_separation", fmt.Sprintf("initial separation must be non-negative and finite, got %v", p.InitialSeparation))
	}
	if p.CacheBucket < time.Second {
		return fail("cache_bucket", fmt.Sprintf("cache bucket must be at least 1s, got %s", p.CacheBucket))
	}
	return nil
}

// Bucket returns the cache key bucket for t.
func (p Policy) Bucket(t time.Time) int64 {
	width := int64(p.CacheBucket / time.Second)
	if width < 1 {
		width = 1
	}
	return t.Unix() / width
}

func positiveFinite(f float64) bool {
	return f > 0 && !math.IsInf(f, 0)
}
