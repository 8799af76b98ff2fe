package store

import (
	"context"
	"fmt"

	"github.com/roach88/sentropy/internal/ir"
)

// PutCoordinate stores an aligned coordinate under its cache key.
// A later write for the same key replaces the earlier one, matching the
// engine's last-write-wins cache.
func (s *Store) PutCoordinate(ctx context.Context, key string, seq int64, c ir.Coordinate) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO coordinates
		(cache_key, id, seq, knowledge, time, entropy, marker, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			id = excluded.id,
			seq = excluded.seq,
			knowledge = excluded.knowledge,
			time = excluded.time,
			entropy = excluded.entropy,
			marker = excluded.marker,
			created_at = excluded.created_at
	`,
		key,
		c.ID,
		seq,
		c.Knowledge,
		c.Time,
		c.Entropy,
		c.Marker,
		timeToColumn(c.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put coordinate: %w", err)
	}
	return nil
}

// AppendMeasurement inserts a measurement record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are silently ignored.
// A different record reusing an existing seq is a constraint error.
func (s *Store) AppendMeasurement(ctx context.Context, m ir.Measurement) error {
	observer, err := enumToColumn(m.Observer)
	if err != nil {
		return fmt.Errorf("append measurement: %w", err)
	}
	precision, err := enumToColumn(m.Precision)
	if err != nil {
		return fmt.Errorf("append measurement: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO measurements
		(id, seq, knowledge, time, entropy, magnitude, observer, precision, converged, marker, measured_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		m.ID,
		m.Seq,
		m.Knowledge,
		m.Time,
		m.Entropy,
		m.Magnitude,
		observer,
		precision,
		boolToColumn(m.Converged),
		m.Marker,
		timeToColumn(m.MeasuredAt),
	)
	if err != nil {
		return fmt.Errorf("append measurement: %w", err)
	}
	return nil
}

// AppendAttempt inserts an integration attempt record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency.
func (s *Store) AppendAttempt(ctx context.Context, a ir.IntegrationAttempt) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO integration_attempts
		(id, seq, target, achieved, success, iterations, method, attempted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		a.ID,
		a.Seq,
		a.Target,
		a.Achieved,
		boolToColumn(a.Success),
		a.Iterations,
		a.Method,
		timeToColumn(a.AttemptedAt),
	)
	if err != nil {
		return fmt.Errorf("append attempt: %w", err)
	}
	return nil
}
