package engine

import (
	"context"
	"fmt"

	"github.com/roach88/sentropy/internal/ir"
)

var componentNames = [3]string{"knowledge", "time", "entropy"}

// alignment is applied to (knowledge, time, entropy) column vectors.
var alignment = [3][3]float64{
	{0.8, 0.1, 0.1},
	{0.1, 0.8, 0.1},
	{0.1, 0.1, 0.8},
}

func alignVector(v [3]float64) [3]float64 {
	var out [3]float64
	for i, row := range alignment {
		out[i] = row[0]*v[0] + row[1]*v[1] + row[2]*v[2]
	}
	return out
}

// Align transforms (knowledge, time, entropy) through the alignment matrix,
// checks the resulting coordinate's marker, and caches it.
//
// The cache key covers the three raw inputs and the current time bucket, so
// aligning the same inputs twice in one bucket leaves a single entry (last
// write wins). A marker mismatch returns a marker_validation error and
// nothing is cached.
func (e *Engine) Align(ctx context.Context, knowledge, time, entropy float64) (ir.Coordinate, error) {
	const op = "align"
	if err := ctx.Err(); err != nil {
		return ir.Coordinate{}, ir.WrapError(ir.KindInternal, op, err)
	}

	inputs := [3]float64{knowledge, time, entropy}
	for i, v := range inputs {
		if !finite(v) {
			name := componentNames[i]
			e.metrics.ObserveAlignment(false, e.CacheLen())
			return ir.Coordinate{}, ir.NewError(ir.KindAlignment, op, fmt.Sprintf("%s is not finite", name)).
				WithDetail(name, fmt.Sprintf("%v", v))
		}
	}

	out := alignVector(inputs)
	now := e.now()
	coord := ir.Coordinate{
		ID:        e.ids.Generate(),
		Knowledge: out[0],
		Time:      out[1],
		Entropy:   out[2],
		Marker:    e.stamp,
		CreatedAt: now,
	}

	if coord.Marker != e.policy.Marker {
		e.metrics.ObserveAlignment(false, e.CacheLen())
		return ir.Coordinate{}, ir.NewMarkerError(op, e.policy.Marker, coord.Marker)
	}

	key, err := ir.CoordinateKey(knowledge, time, entropy, e.policy.Bucket(now))
	if err != nil {
		return ir.Coordinate{}, ir.WrapError(ir.KindInternal, op, err)
	}

	size, err := e.cacheCoordinate(ctx, key, coord)
	if err != nil {
		e.metrics.ObserveAlignment(false, size)
		return ir.Coordinate{}, err
	}

	e.metrics.ObserveAlignment(true, size)
	e.logger.Info("coordinate aligned",
		"id", coord.ID,
		"key", key,
		"magnitude", coord.Magnitude(),
	)
	return coord, nil
}

func (e *Engine) cacheCoordinate(ctx context.Context, key string, coord ir.Coordinate) (int, error) {
	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()

	seq := e.clock.Next()
	if e.journal != nil {
		if err := e.journal.PutCoordinate(ctx, key, seq, coord); err != nil {
			e.logger.Error("journal write failed", "op", "put_coordinate", "key", key, "error", err)
			return len(e.cache), ir.WrapError(ir.KindIO, "align", err)
		}
	}
	e.cache[key] = coord
	return len(e.cache), nil
}
