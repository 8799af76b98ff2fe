package engine

import (
	"math"

	"github.com/roach88/sentropy/internal/ir"
)

const (
	// floorDistance is returned by the time and endpoint calculators once
	// their input is past the precision or accessibility cutoff.
	floorDistance = 0.01

	emotionalGain        = 10.0
	accessibilityCutoff  = 0.9
	oscillationCutoff    = 0.5
	oscillationLowWeight = 100.0
)

// CalculateKnowledge returns the observer's base deficit plus
// max(log10(len(context)), 0), where len is the byte length of context.
// The result is never negative.
func (e *Engine) CalculateKnowledge(context string, observer ir.Observer) (float64, error) {
	if !observer.Valid() {
		return 0, ir.NewError(ir.KindCalculation, "calculate_knowledge", "unknown observer "+observer.String())
	}

	deficit := observer.Deficit()
	frame := math.Max(math.Log10(float64(len(context))), 0)
	k := deficit + frame

	e.logger.Debug("knowledge calculated",
		"knowledge", k,
		"deficit", deficit,
		"frame", frame,
	)
	return k, nil
}

// CalculateTime returns the precision distance plus emotionalFactor*10.
//
// The precision distance is 0.01 when targetPrecision is at or below the
// policy's ultra threshold and log10(targetPrecision/ultraThreshold)
// otherwise. The result is not clamped; GenerateMeasurement clamps the time
// component to zero.
func (e *Engine) CalculateTime(targetPrecision, emotionalFactor float64) (float64, error) {
	const op = "calculate_time"
	if !finite(targetPrecision) {
		return 0, ir.NewNonFiniteError(op, "target_precision", targetPrecision)
	}
	if !finite(emotionalFactor) {
		return 0, ir.NewNonFiniteError(op, "emotional_factor", emotionalFactor)
	}

	distance := floorDistance
	if targetPrecision > e.policy.UltraThreshold {
		distance = math.Log10(targetPrecision / e.policy.UltraThreshold)
	}
	distortion := emotionalFactor * emotionalGain
	t := distance + distortion
	if !finite(t) {
		return 0, ir.NewNonFiniteError(op, "time", t)
	}

	e.logger.Debug("time calculated",
		"time", t,
		"precision_distance", distance,
		"emotional_distortion", distortion,
	)
	return t, nil
}

// CalculateEntropyEndpoint returns the navigation distance to the entropy
// endpoint: 0.01 when accessibility exceeds 0.9, otherwise
// (1-accessibility)*complexity.
func (e *Engine) CalculateEntropyEndpoint(complexity, accessibility float64) (float64, error) {
	const op = "calculate_entropy_endpoint"
	if !finite(complexity) {
		return 0, ir.NewNonFiniteError(op, "complexity", complexity)
	}
	if !finite(accessibility) {
		return 0, ir.NewNonFiniteError(op, "accessibility", accessibility)
	}

	d := endpointDistance(complexity, accessibility)
	if !finite(d) {
		return 0, ir.NewNonFiniteError(op, "endpoint_distance", d)
	}
	return d, nil
}

// CalculateOscillation returns the oscillation accessibility factor:
// |log10(accessibility)| above 0.5, otherwise (1-accessibility)*100.
// A non-positive accessibility above the cutoff cannot occur, so the result
// is finite for every finite input.
func (e *Engine) CalculateOscillation(accessibility float64) (float64, error) {
	if !finite(accessibility) {
		return 0, ir.NewNonFiniteError("calculate_oscillation", "accessibility", accessibility)
	}
	return oscillationFactor(accessibility), nil
}

// CalculateEntropy returns the full entropy component used by measurements:
// the endpoint distance plus the oscillation factor.
func (e *Engine) CalculateEntropy(complexity, accessibility float64) (float64, error) {
	d, err := e.CalculateEntropyEndpoint(complexity, accessibility)
	if err != nil {
		return 0, err
	}
	osc := oscillationFactor(accessibility)
	s := d + osc
	if !finite(s) {
		return 0, ir.NewNonFiniteError("calculate_entropy", "entropy", s)
	}

	e.logger.Debug("entropy calculated",
		"entropy", s,
		"navigation", d,
		"oscillation", osc,
	)
	return s, nil
}

func endpointDistance(complexity, accessibility float64) float64 {
	if accessibility > accessibilityCutoff {
		return floorDistance
	}
	return (1 - accessibility) * complexity
}

func oscillationFactor(accessibility float64) float64 {
	if accessibility > oscillationCutoff {
		return math.Abs(math.Log10(accessibility))
	}
	return (1 - accessibility) * oscillationLowWeight
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
