// Package transform maps free-text problems to S values and navigation
// positions.
//
// The pipeline has four steps. MapProblem turns text into an oscillation
// vector. Alpha takes its norm. Apply computes S = k*ln(alpha). Solve runs
// them all and expresses S as a navigation position.
package transform

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/sentropy/internal/ir"
	"github.com/roach88/sentropy/internal/navigation"
)

// MinAlpha keeps the logarithm in Apply finite.
const MinAlpha = 0.001

// Vector is a problem's position in oscillation space.
type Vector struct {
	Complexity float64 `json:"complexity"`
	Semantic   float64 `json:"semantic"`
	Diversity  float64 `json:"diversity"`
}

// Norm returns the Euclidean length of v.
func (v Vector) Norm() float64 {
	return ir.Magnitude(v.Complexity, v.Semantic, v.Diversity)
}

// Solution is the result of running the full pipeline on one problem.
type Solution struct {
	Problem  string              `json:"problem"`
	Class    string              `json:"class"`
	Vector   Vector              `json:"vector"`
	Alpha    float64             `json:"alpha"`
	S        float64             `json:"s"`
	Position navigation.Position `json:"position"`
	Summary  string              `json:"summary"`
}

// Transformer runs the pipeline with a fixed universal constant.
type Transformer struct {
	constant float64
	nav      *navigation.Navigator
	logger   *slog.Logger
}

// Option configures a Transformer.
type Option func(*Transformer)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(t *Transformer) {
		if l != nil {
			t.logger = l
		}
	}
}

// New creates a Transformer. constant is the k in S = k*ln(alpha) and must
// be positive and finite; nav stamps the resulting positions.
func New(constant float64, nav *navigation.Navigator, opts ...Option) (*Transformer, error) {
	if !(constant > 0) || math.IsInf(constant, 0) {
		return nil, ir.NewError(ir.KindConfiguration, "new_transformer",
			fmt.Sprintf("universal constant must be positive and finite, got %v", constant)).
			WithDetail("field", "universal_constant")
	}
	if nav == nil {
		return nil, ir.NewError(ir.KindConfiguration, "new_transformer", "navigator is required")
	}

	t := &Transformer{constant: constant, nav: nav, logger: slog.Default()}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// MapProblem maps NFC-normalised text to an oscillation vector:
// sqrt(bytes)/10, max(log10(words), 0.1), and distinct runes/26.
func (t *Transformer) MapProblem(text string) Vector {
	text = norm.NFC.String(text)

	distinct := make(map[rune]struct{})
	for _, r := range text {
		distinct[r] = struct{}{}
	}

	v := Vector{
		Complexity: math.Sqrt(float64(len(text))) / 10,
		Semantic:   math.Max(math.Log10(float64(len(strings.Fields(text)))), 0.1),
		Diversity:  float64(len(distinct)) / 26,
	}
	t.logger.Debug("problem mapped",
		"complexity", v.Complexity,
		"semantic", v.Semantic,
		"diversity", v.Diversity,
	)
	return v
}

// Alpha returns the oscillation amplitude of v, at least MinAlpha.
func (t *Transformer) Alpha(v Vector) float64 {
	return math.Max(v.Norm(), MinAlpha)
}

// Apply returns k*ln(alpha). alpha must be positive and finite.
func (t *Transformer) Apply(alpha float64) (float64, error) {
	if math.IsNaN(alpha) || math.IsInf(alpha, 0) {
		return 0, ir.NewNonFiniteError("apply_transform", "alpha", alpha)
	}
	if alpha <= 0 {
		return 0, ir.NewError(ir.KindCalculation, "apply_transform", "alpha must be positive").
			WithDetail("alpha", fmt.Sprintf("%v", alpha))
	}
	return t.constant * math.Log(alpha), nil
}

// Solve runs the whole pipeline on problem.
func (t *Transformer) Solve(problem string) (Solution, error) {
	v := t.MapProblem(problem)
	alpha := t.Alpha(v)

	s, err := t.Apply(alpha)
	if err != nil {
		return Solution{}, err
	}

	pos, err := t.nav.Uniform(s)
	if err != nil {
		return Solution{}, err
	}

	sol := Solution{
		Problem:  problem,
		Class:    Classify(problem),
		Vector:   v,
		Alpha:    alpha,
		S:        s,
		Position: pos,
		Summary: fmt.Sprintf("oscillation(%.3f, %.3f, %.3f) alpha=%.3f S=%.3f confidence=%.3f",
			v.Complexity, v.Semantic, v.Diversity, alpha, s, pos.Confidence),
	}

	t.logger.Info("problem transformed", "class", sol.Class, "s", s, "confidence", pos.Confidence)
	return sol, nil
}
