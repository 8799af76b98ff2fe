package engine

import (
	"context"

	"github.com/roach88/sentropy/internal/ir"
)

// Snapshot is the durable state an engine can be restored from.
//
// Measurements and Attempts are ordered by seq. LastSeq is the highest seq
// recorded in the journal across all record kinds.
type Snapshot struct {
	Coordinates  map[string]ir.Coordinate
	Measurements []ir.Measurement
	Attempts     []ir.IntegrationAttempt
	LastSeq      int64
}

// Restore replaces the engine's state with snap.
//
// Only the newest history-cap measurements are kept. Tracker counters and
// the current separation are recomputed from the attempts; with no attempts
// the separation stays at the policy's initial value. The clock resumes
// after LastSeq. Restored records are not written back to the journal and
// their markers are not checked; ValidateAllMarkers reports any that differ.
//
// Restore takes each lock in turn. Call it before the engine is shared.
func (e *Engine) Restore(ctx context.Context, snap Snapshot) error {
	if err := ctx.Err(); err != nil {
		return ir.WrapError(ir.KindInternal, "restore", err)
	}

	cache := make(map[string]ir.Coordinate, len(snap.Coordinates))
	for k, c := range snap.Coordinates {
		cache[k] = c
	}

	t := newTracker(e.policy.InitialSeparation)
	for _, a := range snap.Attempts {
		t.record(a, e.attemptLogCap)
	}

	e.cacheMu.Lock()
	e.cache = cache
	e.cacheMu.Unlock()

	e.historyMu.Lock()
	e.history.replace(snap.Measurements)
	e.historyMu.Unlock()

	e.trackerMu.Lock()
	e.tracker = t
	e.trackerMu.Unlock()

	e.clock.AdvanceTo(snap.LastSeq)

	e.logger.Info("engine restored",
		"coordinates", len(cache),
		"measurements", min(len(snap.Measurements), e.historyCap),
		"attempts", len(snap.Attempts),
		"seq", snap.LastSeq,
	)
	return nil
}
