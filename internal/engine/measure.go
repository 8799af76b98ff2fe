package engine

import (
	"context"
	"math"

	"github.com/roach88/sentropy/internal/ir"
)

// MeasurementInput carries the contextual inputs for one measurement.
type MeasurementInput struct {
	Context         string      `json:"context" yaml:"context"`
	Observer        ir.Observer `json:"observer" yaml:"observer"`
	TargetPrecision float64     `json:"target_precision" yaml:"target_precision"`
	EmotionalFactor float64     `json:"emotional_factor" yaml:"emotional_factor"`
	Complexity      float64     `json:"complexity" yaml:"complexity"`
	Accessibility   float64     `json:"accessibility" yaml:"accessibility"`
}

// GenerateMeasurement computes the three components for in, decides
// convergence at the engine's precision, and appends the measurement to the
// history, evicting the oldest entry past the cap.
//
// The time component is clamped to zero before the magnitude is taken.
// A non-finite input returns a calculation error and nothing is appended.
func (e *Engine) GenerateMeasurement(ctx context.Context, in MeasurementInput) (ir.Measurement, error) {
	const op = "generate_measurement"
	if err := ctx.Err(); err != nil {
		return ir.Measurement{}, ir.WrapError(ir.KindInternal, op, err)
	}

	k, err := e.CalculateKnowledge(in.Context, in.Observer)
	if err != nil {
		return ir.Measurement{}, err
	}
	t, err := e.CalculateTime(in.TargetPrecision, in.EmotionalFactor)
	if err != nil {
		return ir.Measurement{}, err
	}
	s, err := e.CalculateEntropy(in.Complexity, in.Accessibility)
	if err != nil {
		return ir.Measurement{}, err
	}

	t = math.Max(t, 0)
	magnitude := ir.Magnitude(k, t, s)
	if !finite(magnitude) {
		return ir.Measurement{}, ir.NewNonFiniteError(op, "magnitude", magnitude)
	}

	m := ir.Measurement{
		ID:         e.ids.Generate(),
		Knowledge:  k,
		Time:       t,
		Entropy:    s,
		Magnitude:  magnitude,
		Observer:   in.Observer,
		Precision:  e.precision,
		Converged:  ir.Optimal(magnitude, e.precision),
		Marker:     e.policy.Marker,
		MeasuredAt: e.now(),
	}

	m, size, err := e.appendMeasurement(ctx, m)
	if err != nil {
		return ir.Measurement{}, err
	}

	e.metrics.ObserveMeasurement(m, size)
	e.logger.Info("measurement generated",
		"id", m.ID,
		"seq", m.Seq,
		"magnitude", m.Magnitude,
		"converged", m.Converged,
	)
	return m, nil
}

func (e *Engine) appendMeasurement(ctx context.Context, m ir.Measurement) (ir.Measurement, int, error) {
	e.historyMu.Lock()
	defer e.historyMu.Unlock()

	m.Seq = e.clock.Next()
	if e.journal != nil {
		if err := e.journal.AppendMeasurement(ctx, m); err != nil {
			e.logger.Error("journal write failed", "op", "append_measurement", "seq", m.Seq, "error", err)
			return ir.Measurement{}, e.history.len(), ir.WrapError(ir.KindIO, "generate_measurement", err)
		}
	}
	if evicted := e.history.append(m); evicted > 0 {
		e.logger.Debug("history evicted", "count", evicted, "cap", e.historyCap)
	}
	return m, e.history.len(), nil
}
