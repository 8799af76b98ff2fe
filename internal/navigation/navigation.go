// Package navigation maps S-entropy coordinates onto navigation positions.
//
// A Position places each component on its own axis and carries a confidence
// that falls as the coordinate's magnitude grows. Positions are stamped with
// the navigator's marker and are checked against it before a solution is
// extracted.
package navigation

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/roach88/sentropy/internal/engine"
	"github.com/roach88/sentropy/internal/ir"
)

// Confidence bounds and fixed confidences for generated positions.
const (
	MinConfidence       = 0.1
	MaxConfidence       = 1.0
	ThresholdConfidence = 0.9
	ProblemConfidence   = 0.8

	// ThresholdSamples is the number of positions NearThreshold returns.
	ThresholdSamples = 10
	thresholdStep    = 0.01
)

// Position is a point in navigation space.
type Position struct {
	ID         string    `json:"id"`
	Knowledge  float64   `json:"knowledge"`
	Time       float64   `json:"time"`
	Entropy    float64   `json:"entropy"`
	Confidence float64   `json:"confidence"`
	Marker     string    `json:"marker"`
	CreatedAt  time.Time `json:"created_at"`
}

// Distance returns the Euclidean distance of p from the origin.
func (p Position) Distance() float64 {
	return ir.Magnitude(p.Knowledge, p.Time, p.Entropy)
}

// Navigator produces positions under a fixed marker.
//
// Thread-safety: Navigator holds no mutable state and is safe for
// concurrent use when its IDGenerator is.
type Navigator struct {
	marker string
	logger *slog.Logger
	now    func() time.Time
	ids    engine.IDGenerator
}

// Option configures a Navigator.
type Option func(*Navigator)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(n *Navigator) {
		if l != nil {
			n.logger = l
		}
	}
}

// WithNow sets the clock used to stamp positions.
func WithNow(now func() time.Time) Option {
	return func(n *Navigator) { n.now = now }
}

// WithIDGenerator sets the position ID source. Default: UUIDv7.
func WithIDGenerator(g engine.IDGenerator) Option {
	return func(n *Navigator) { n.ids = g }
}

// New creates a Navigator that expects and stamps marker.
func New(marker string, opts ...Option) *Navigator {
	n := &Navigator{
		marker: marker,
		logger: slog.Default(),
		now:    func() time.Time { return time.Now().UTC() },
		ids:    engine.UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Marker returns the marker the navigator stamps and expects.
func (n *Navigator) Marker() string {
	return n.marker
}

// Navigate converts coord into a position. The coordinate must carry the
// navigator's marker. Confidence is 1/(1+magnitude) clamped to
// [MinConfidence, MaxConfidence].
func (n *Navigator) Navigate(coord ir.Coordinate) (Position, error) {
	if coord.Marker != n.marker {
		return Position{}, ir.NewMarkerError("navigate", n.marker, coord.Marker)
	}
	for _, c := range []struct {
		name  string
		value float64
	}{
		{"knowledge", coord.Knowledge},
		{"time", coord.Time},
		{"entropy", coord.Entropy},
	} {
		if err := checkFinite("navigate", c.name, c.value); err != nil {
			return Position{}, err
		}
	}

	confidence := ClampConfidence(1 / (1 + coord.Magnitude()))
	p := n.position(coord.Knowledge, coord.Time, coord.Entropy, confidence)

	n.logger.Info("navigated",
		"coordinate", coord.ID,
		"position", p.ID,
		"confidence", p.Confidence,
	)
	return p, nil
}

// NearThreshold returns ThresholdSamples positions whose components all
// equal s plus an offset from -0.05 to +0.04, floored at zero.
func (n *Navigator) NearThreshold(s float64) ([]Position, error) {
	if err := checkFinite("near_threshold", "threshold", s); err != nil {
		return nil, err
	}

	out := make([]Position, ThresholdSamples)
	for i := range out {
		offset := float64(i-ThresholdSamples/2) * thresholdStep
		v := math.Max(s+offset, 0)
		out[i] = n.position(v, v, v, ThresholdConfidence)
	}

	n.logger.Debug("threshold neighbourhood generated", "threshold", s, "positions", len(out))
	return out, nil
}

// Uniform returns a position with every component set to |s|, used to
// express a single S value in navigation space. Confidence is
// 1/(1+|s|) with a floor of MinConfidence.
func (n *Navigator) Uniform(s float64) (Position, error) {
	if err := checkFinite("uniform", "s", s); err != nil {
		return Position{}, err
	}
	v := math.Abs(s)
	return n.position(v, v, v, math.Max(1/(1+v), MinConfidence)), nil
}

// FromProblem derives a deterministic position from a problem description.
// Each component lies in [0, 0.1).
func (n *Navigator) FromProblem(problem string) Position {
	sum := sha256.Sum256([]byte(problem))
	h := binary.BigEndian.Uint64(sum[:8])

	x := float64(h%1000) / 1000
	y := float64((h/1000)%1000) / 1000
	z := float64((h/1_000_000)%1000) / 1000

	return n.position(x*0.1, y*0.1, z*0.1, ProblemConfidence)
}

// Solution describes p as a solution string. p must carry the navigator's
// marker.
func (n *Navigator) Solution(p Position) (string, error) {
	if p.Marker != n.marker {
		return "", ir.NewMarkerError("solution", n.marker, p.Marker)
	}
	return fmt.Sprintf("knowledge=%.3f time=%.3f entropy=%.3f confidence=%.3f",
		p.Knowledge, p.Time, p.Entropy, p.Confidence), nil
}

// ClampConfidence limits c to [MinConfidence, MaxConfidence].
func ClampConfidence(c float64) float64 {
	return math.Min(math.Max(c, MinConfidence), MaxConfidence)
}

func (n *Navigator) position(k, t, e, confidence float64) Position {
	return Position{
		ID:         n.ids.Generate(),
		Knowledge:  k,
		Time:       t,
		Entropy:    e,
		Confidence: confidence,
		Marker:     n.marker,
		CreatedAt:  n.now(),
	}
}

func checkFinite(op, input string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		err := ir.NewNonFiniteError(op, input, v)
		err.Kind = ir.KindNavigation
		return err
	}
	return nil
}
