package engine

import (
	"context"
	"time"

	"github.com/roach88/sentropy/internal/ir"
)

// tracker is the integration state. Guarded by Engine.trackerMu.
type tracker struct {
	separation  float64
	attempts    []ir.IntegrationAttempt
	total       int
	successes   int
	lastSuccess *time.Time
}

func newTracker(initial float64) tracker {
	return tracker{separation: initial}
}

func (t *tracker) record(a ir.IntegrationAttempt, logCap int) {
	t.separation = a.Achieved
	t.attempts = append(t.attempts, a)
	if logCap > 0 && len(t.attempts) > logCap {
		n := len(t.attempts) - logCap
		clear(t.attempts[:n])
		t.attempts = t.attempts[n:]
	}
	t.total++
	if a.Success {
		t.successes++
		at := a.AttemptedAt
		t.lastSuccess = &at
	}
}

func (t *tracker) stats(level ir.Precision) ir.IntegrationStats {
	s := ir.IntegrationStats{
		CurrentSeparation: t.separation,
		TotalAttempts:     t.total,
		Successes:         t.successes,
		OptimalAchieved:   ir.Optimal(t.separation, level),
	}
	if t.total > 0 {
		s.SuccessRate = float64(t.successes) / float64(t.total)
	}
	if t.lastSuccess != nil {
		ls := *t.lastSuccess
		s.LastSuccess = &ls
	}
	return s
}

// decay runs the bounded decay loop for target and returns the achieved
// separation and the number of steps taken.
//
// The loop starts from target*overshoot, not from the tracker's current
// separation.
func decay(p ir.Policy, target float64) (achieved float64, steps int) {
	achieved = target * p.Overshoot
	for steps < p.MaxDecaySteps {
		achieved *= p.DecayFactor
		steps++
		if achieved <= target {
			break
		}
	}
	return achieved, steps
}

// AttemptIntegration runs one integration attempt toward target and records
// it. It returns whether the achieved separation reached the target.
//
// The attempt is deterministic in target: the same target always yields the
// same achieved value and iteration count. A non-finite target returns a
// calculation error and nothing is recorded. A failed attempt is not an
// error; it is recorded with Success false.
func (e *Engine) AttemptIntegration(ctx context.Context, target float64) (bool, error) {
	const op = "attempt_integration"
	if err := ctx.Err(); err != nil {
		return false, ir.WrapError(ir.KindInternal, op, err)
	}
	if !finite(target) {
		return false, ir.NewNonFiniteError(op, "target", target)
	}

	achieved, steps := decay(e.policy, target)
	a := ir.IntegrationAttempt{
		ID:          e.ids.Generate(),
		Target:      target,
		Achieved:    achieved,
		Success:     achieved <= target,
		Iterations:  steps,
		Method:      ir.MethodTriDimensionalAlignment,
		AttemptedAt: e.now(),
	}

	a, stats, err := e.recordAttempt(ctx, a)
	if err != nil {
		return false, err
	}

	e.metrics.ObserveIntegration(a, stats)
	if a.Success {
		e.logger.Info("integration succeeded",
			"id", a.ID,
			"target", target,
			"achieved", achieved,
			"iterations", steps,
		)
	} else {
		e.logger.Warn("integration incomplete",
			"id", a.ID,
			"target", target,
			"achieved", achieved,
			"iterations", steps,
		)
	}
	return a.Success, nil
}

func (e *Engine) recordAttempt(ctx context.Context, a ir.IntegrationAttempt) (ir.IntegrationAttempt, ir.IntegrationStats, error) {
	e.trackerMu.Lock()
	defer e.trackerMu.Unlock()

	a.Seq = e.clock.Next()
	if e.journal != nil {
		if err := e.journal.AppendAttempt(ctx, a); err != nil {
			e.logger.Error("journal write failed", "op", "append_attempt", "seq", a.Seq, "error", err)
			return ir.IntegrationAttempt{}, ir.IntegrationStats{}, ir.WrapError(ir.KindIO, "attempt_integration", err)
		}
	}
	e.tracker.record(a, e.attemptLogCap)
	return a, e.tracker.stats(e.precision), nil
}

// IntegrationStats returns a snapshot of the tracker.
func (e *Engine) IntegrationStats() ir.IntegrationStats {
	e.trackerMu.RLock()
	defer e.trackerMu.RUnlock()
	return e.tracker.stats(e.precision)
}

// Attempts returns a copy of the retained attempt log, oldest first.
func (e *Engine) Attempts() []ir.IntegrationAttempt {
	e.trackerMu.RLock()
	defer e.trackerMu.RUnlock()

	out := make([]ir.IntegrationAttempt, len(e.tracker.attempts))
	copy(out, e.tracker.attempts)
	return out
}

// DrainAttempts returns the retained attempt log and empties it. Counters,
// the current separation and the last success time are kept.
func (e *Engine) DrainAttempts() []ir.IntegrationAttempt {
	e.trackerMu.Lock()
	defer e.trackerMu.Unlock()

	out := e.tracker.attempts
	e.tracker.attempts = nil
	return out
}
