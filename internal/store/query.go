package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/sentropy/internal/ir"
)

// MeasurementFilter selects journaled measurements. Zero-valued fields do
// not filter.
type MeasurementFilter struct {
	Observer  *ir.Observer
	Precision *ir.Precision
	Converged *bool
	// SinceSeq keeps measurements with seq strictly greater than it.
	SinceSeq int64
	// Limit caps the number of rows. Zero means no limit.
	Limit int
	// Tail selects the newest Limit rows instead of the oldest. Results are
	// still returned oldest first.
	Tail bool
}

// compileMeasurementQuery converts f to parameterized SQL.
//
// MANDATORY: Every query ends in ORDER BY seq ASC, id COLLATE BINARY ASC.
// MANDATORY: All values are parameterized, never interpolated.
func compileMeasurementQuery(f MeasurementFilter) (string, []any, error) {
	if f.Limit < 0 {
		return "", nil, fmt.Errorf("limit must not be negative: %d", f.Limit)
	}

	var (
		preds  []string
		params []any
	)
	if f.Observer != nil {
		v, err := enumToColumn(*f.Observer)
		if err != nil {
			return "", nil, err
		}
		preds = append(preds, "observer = ?")
		params = append(params, v)
	}
	if f.Precision != nil {
		v, err := enumToColumn(*f.Precision)
		if err != nil {
			return "", nil, err
		}
		preds = append(preds, "precision = ?")
		params = append(params, v)
	}
	if f.Converged != nil {
		preds = append(preds, "converged = ?")
		params = append(params, boolToColumn(*f.Converged))
	}
	if f.SinceSeq > 0 {
		preds = append(preds, "seq > ?")
		params = append(params, f.SinceSeq)
	}

	where := ""
	if len(preds) > 0 {
		where = " WHERE " + strings.Join(preds, " AND ")
	}

	const order = " ORDER BY seq ASC, id COLLATE BINARY ASC"
	base := "SELECT " + measurementColumns + " FROM measurements" + where

	switch {
	case f.Limit == 0:
		return base + order, params, nil
	case f.Tail:
		inner := base + " ORDER BY seq DESC, id COLLATE BINARY DESC LIMIT ?"
		return "SELECT " + measurementColumns + " FROM (" + inner + ")" + order, append(params, f.Limit), nil
	default:
		return base + order + " LIMIT ?", append(params, f.Limit), nil
	}
}

// QueryMeasurements returns the measurements matching f, oldest first.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) QueryMeasurements(ctx context.Context, f MeasurementFilter) ([]ir.Measurement, error) {
	query, params, err := compileMeasurementQuery(f)
	if err != nil {
		return nil, fmt.Errorf("query measurements: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query measurements: %w", err)
	}
	defer rows.Close()

	ms := []ir.Measurement{}
	for rows.Next() {
		m, err := scanMeasurement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan measurement: %w", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate measurements: %w", err)
	}
	return ms, nil
}
