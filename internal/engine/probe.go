package engine

import (
	"context"

	"github.com/roach88/sentropy/internal/ir"
)

// Probe inputs used by health checks.
const (
	probeContext       = "default_context"
	probeEmotional     = 0.5
	probeComplexity    = 1.0
	probeAccessibility = 0.8
)

// Probe computes and aligns a coordinate from fixed inputs: an intermediate
// observer, the ultra threshold as precision target, and moderate
// accessibility. It exercises every calculator and the alignment step, so a
// successful probe shows the engine is healthy. The probe coordinate is
// cached like any other alignment.
func (e *Engine) Probe(ctx context.Context) (ir.Coordinate, error) {
	k, err := e.CalculateKnowledge(probeContext, ir.ObserverIntermediate)
	if err != nil {
		return ir.Coordinate{}, err
	}
	t, err := e.CalculateTime(e.policy.UltraThreshold, probeEmotional)
	if err != nil {
		return ir.Coordinate{}, err
	}
	s, err := e.CalculateEntropy(probeComplexity, probeAccessibility)
	if err != nil {
		return ir.Coordinate{}, err
	}
	return e.Align(ctx, k, t, s)
}
