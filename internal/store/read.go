package store

import (
	"context"
	"fmt"

	"github.com/roach88/sentropy/internal/ir"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

const measurementColumns = `id, seq, knowledge, time, entropy, magnitude, observer, precision, converged, marker, measured_at`

// ReadCoordinates returns every stored coordinate keyed by cache key.
func (s *Store) ReadCoordinates(ctx context.Context) (map[string]ir.Coordinate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT cache_key, id, knowledge, time, entropy, marker, created_at
		FROM coordinates
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query coordinates: %w", err)
	}
	defer rows.Close()

	coords := make(map[string]ir.Coordinate)
	for rows.Next() {
		var (
			key       string
			c         ir.Coordinate
			createdAt int64
		)
		if err := rows.Scan(&key, &c.ID, &c.Knowledge, &c.Time, &c.Entropy, &c.Marker, &createdAt); err != nil {
			return nil, fmt.Errorf("scan coordinate: %w", err)
		}
		c.CreatedAt = timeFromColumn(createdAt)
		coords[key] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate coordinates: %w", err)
	}
	return coords, nil
}

// ReadAttempts returns every integration attempt ordered by seq.
//
// Returns an empty slice (not nil) if no attempts exist.
func (s *Store) ReadAttempts(ctx context.Context) ([]ir.IntegrationAttempt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, target, achieved, success, iterations, method, attempted_at
		FROM integration_attempts
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	attempts := []ir.IntegrationAttempt{}
	for rows.Next() {
		var (
			a           ir.IntegrationAttempt
			success     int
			attemptedAt int64
		)
		if err := rows.Scan(&a.ID, &a.Seq, &a.Target, &a.Achieved, &success, &a.Iterations, &a.Method, &attemptedAt); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		a.Success = success == 1
		a.AttemptedAt = timeFromColumn(attemptedAt)
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	return attempts, nil
}

// ReadMeasurement returns the measurement with the given id.
// Returns sql.ErrNoRows (wrapped) if it does not exist.
func (s *Store) ReadMeasurement(ctx context.Context, id string) (ir.Measurement, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+measurementColumns+` FROM measurements WHERE id = ?`, id)
	m, err := scanMeasurement(row)
	if err != nil {
		return ir.Measurement{}, fmt.Errorf("read measurement %s: %w", id, err)
	}
	return m, nil
}

// CountMeasurements returns the total number of journaled measurements,
// including those older than any engine's history cap.
func (s *Store) CountMeasurements(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM measurements`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count measurements: %w", err)
	}
	return n, nil
}

// LastSeq returns the highest seq recorded across all record kinds, or 0
// for an empty journal.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(
			COALESCE((SELECT MAX(seq) FROM coordinates), 0),
			COALESCE((SELECT MAX(seq) FROM measurements), 0),
			COALESCE((SELECT MAX(seq) FROM integration_attempts), 0)
		)
	`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq, nil
}

func scanMeasurement(row rowScanner) (ir.Measurement, error) {
	var (
		m          ir.Measurement
		observer   string
		precision  string
		converged  int
		measuredAt int64
	)
	err := row.Scan(
		&m.ID,
		&m.Seq,
		&m.Knowledge,
		&m.Time,
		&m.Entropy,
		&m.Magnitude,
		&observer,
		&precision,
		&converged,
		&m.Marker,
		&measuredAt,
	)
	if err != nil {
		return ir.Measurement{}, err
	}

	if m.Observer, err = observerFromColumn(observer); err != nil {
		return ir.Measurement{}, err
	}
	if m.Precision, err = precisionFromColumn(precision); err != nil {
		return ir.Measurement{}, err
	}
	m.Converged = converged == 1
	m.MeasuredAt = timeFromColumn(measuredAt)
	return m, nil
}
