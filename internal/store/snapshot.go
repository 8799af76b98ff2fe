package store

import (
	"context"
	"fmt"

	"github.com/roach88/sentropy/internal/engine"
)

var _ engine.Journal = (*Store)(nil)

// Snapshot reads the state an engine needs to resume: every coordinate, the
// newest historyCap measurements, every attempt, and the last seq.
func (s *Store) Snapshot(ctx context.Context, historyCap int) (engine.Snapshot, error) {
	if historyCap < 1 {
		return engine.Snapshot{}, fmt.Errorf("snapshot: history cap must be positive, got %d", historyCap)
	}

	coords, err := s.ReadCoordinates(ctx)
	if err != nil {
		return engine.Snapshot{}, fmt.Errorf("snapshot: %w", err)
	}

	ms, err := s.QueryMeasurements(ctx, MeasurementFilter{Limit: historyCap, Tail: true})
	if err != nil {
		return engine.Snapshot{}, fmt.Errorf("snapshot: %w", err)
	}

	attempts, err := s.ReadAttempts(ctx)
	if err != nil {
		return engine.Snapshot{}, fmt.Errorf("snapshot: %w", err)
	}

	last, err := s.LastSeq(ctx)
	if err != nil {
		return engine.Snapshot{}, fmt.Errorf("snapshot: %w", err)
	}

	return engine.Snapshot{
		Coordinates:  coords,
		Measurements: ms,
		Attempts:     attempts,
		LastSeq:      last,
	}, nil
}
