package harness

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/roach88/sentropy/internal/engine"
	"github.com/roach88/sentropy/internal/ir"
	"github.com/roach88/sentropy/internal/testutil"
)

// tolerance is the absolute tolerance for float expectations.
const tolerance = 1e-9

// Harness is the test execution engine.
// It runs one scenario against one engine with a deterministic clock and
// sequential IDs.
type Harness struct {
	engine *engine.Engine
	logger *slog.Logger
}

// Option configures a scenario run.
type Option func(*runConfig)

type runConfig struct {
	logger  *slog.Logger
	metrics engine.Metrics
}

// WithLogger sets the logger used by the harness and its engine.
// Default: logs are discarded.
func WithLogger(l *slog.Logger) Option {
	return func(c *runConfig) { c.logger = l }
}

// WithMetrics attaches a metrics sink to the scenario's engine.
func WithMetrics(m engine.Metrics) Option {
	return func(c *runConfig) { c.metrics = m }
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs against a fresh engine. Step failures and failed
// assertions are recorded in the result; the returned error is reserved
// for problems that stop the run, such as a canceled context or an
// invalid scenario.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{logger: testutil.DiscardLogger()}
	for _, opt := range opts {
		opt(&cfg)
	}

	eng, err := newEngine(scenario, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	h := &Harness{engine: eng, logger: cfg.logger}
	result := NewResult()

	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}

	result.Final = h.final()
	for _, msg := range EvaluateAssertions(result.Final, scenario.Assertions) {
		result.AddError(msg)
	}

	h.logger.Info("scenario completed",
		"scenario", scenario.Name,
		"pass", result.Pass,
		"errors", len(result.Errors),
	)
	return result, nil
}

func newEngine(s *Scenario, cfg runConfig) (*engine.Engine, error) {
	precision := ir.PrecisionStandard
	if s.Precision != "" {
		p, err := ir.ParsePrecision(s.Precision)
		if err != nil {
			return nil, err
		}
		precision = p
	}

	var step time.Duration
	if s.ClockStep != "" {
		d, err := time.ParseDuration(s.ClockStep)
		if err != nil {
			return nil, fmt.Errorf("clock_step: %w", err)
		}
		step = d
	}

	opts := []engine.Option{
		engine.WithLogger(cfg.logger),
		engine.WithNow(testutil.NewStepClock(step).Now),
		engine.WithIDGenerator(engine.NewSequenceGenerator("id")),
		engine.WithAttemptLogCap(s.AttemptLogCap),
	}
	if s.HistoryCap > 0 {
		opts = append(opts, engine.WithHistoryCap(s.HistoryCap))
	}
	if cfg.metrics != nil {
		opts = append(opts, engine.WithMetrics(cfg.metrics))
	}
	return engine.New(precision, opts...)
}

// executeStep runs one step Runs() times, checking its expect clause after
// each run, and records the last run in the trace.
func (h *Harness) executeStep(ctx context.Context, index int, step Step, result *Result) error {
	op := step.Op()
	if op == "" {
		return fmt.Errorf("step names no single operation")
	}

	var (
		outcome string
		res     ir.IRObject
	)
	for run := 0; run < step.Runs(); run++ {
		var (
			opErr error
			value observed
		)
		res, value, opErr = h.execute(ctx, op, step)

		outcome = OutcomeOK
		if opErr != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			outcome = string(ir.KindOf(opErr))
			res = nil
		}

		for _, msg := range checkExpect(step.Expect, outcome, value, opErr) {
			result.AddError(fmt.Sprintf("step %d (%s) run %d: %s", index, op, run+1, msg))
		}
	}

	result.AddTrace(TraceEvent{
		Step:    index,
		Op:      op,
		Repeat:  step.Runs(),
		Seq:     h.engine.Seq(),
		Outcome: outcome,
		Result:  res,
	})

	h.logger.Debug("step completed", "step", index, "op", op, "runs", step.Runs(), "outcome", outcome)
	return nil
}

// observed carries the values an expect clause can check.
type observed struct {
	converged *bool
	magnitude *float64
	success   *bool
	rate      *float64
}

func (h *Harness) execute(ctx context.Context, op string, step Step) (ir.IRObject, observed, error) {
	switch op {
	case OpMeasure:
		m, err := h.engine.GenerateMeasurement(ctx, *step.Measure)
		if err != nil {
			return nil, observed{}, err
		}
		return measurementObject(m), observed{converged: &m.Converged, magnitude: &m.Magnitude}, nil

	case OpAlign:
		a := step.Align
		c, err := h.engine.Align(ctx, a.Knowledge, a.Time, a.Entropy)
		if err != nil {
			return nil, observed{}, err
		}
		mag := c.Magnitude()
		return coordinateObject(c), observed{magnitude: &mag}, nil

	case OpIntegrate:
		ok, err := h.engine.AttemptIntegration(ctx, step.Integrate.Target)
		if err != nil {
			return nil, observed{}, err
		}
		stats := h.engine.IntegrationStats()
		obj := statsObject(stats)
		obj["success"] = ir.IRBool(ok)
		if attempts := h.engine.Attempts(); len(attempts) > 0 {
			last := attempts[len(attempts)-1]
			obj["achieved"] = ir.FloatText(last.Achieved)
			obj["iterations"] = ir.IRInt(last.Iterations)
		}
		return obj, observed{success: &ok}, nil

	case OpValidate:
		r := h.engine.ValidateAllMarkers()
		return reportObject(r), observed{rate: &r.Rate}, nil
	}
	return nil, observed{}, fmt.Errorf("unknown operation %q", op)
}

func checkExpect(e *Expect, outcome string, v observed, opErr error) []string {
	want := OutcomeOK
	if e != nil && e.Error != "" {
		want = e.Error
	}
	if outcome != want {
		if opErr != nil {
			return []string{fmt.Sprintf("expected outcome %s, got %s: %v", want, outcome, opErr)}
		}
		return []string{fmt.Sprintf("expected outcome %s, got %s", want, outcome)}
	}
	if e == nil || outcome != OutcomeOK {
		return nil
	}

	var errs []string
	if e.Converged != nil && v.converged != nil && *e.Converged != *v.converged {
		errs = append(errs, fmt.Sprintf("expected converged %t, got %t", *e.Converged, *v.converged))
	}
	if e.Magnitude != nil && v.magnitude != nil && !approxEqual(*e.Magnitude, *v.magnitude) {
		errs = append(errs, fmt.Sprintf("expected magnitude %v, got %v", *e.Magnitude, *v.magnitude))
	}
	if e.Success != nil && v.success != nil && *e.Success != *v.success {
		errs = append(errs, fmt.Sprintf("expected success %t, got %t", *e.Success, *v.success))
	}
	if e.Rate != nil && v.rate != nil && !approxEqual(*e.Rate, *v.rate) {
		errs = append(errs, fmt.Sprintf("expected rate %v, got %v", *e.Rate, *v.rate))
	}
	return errs
}

// final reads the engine state checked by assertions. The marker rate is
// computed directly so that reading it does not count as a validation.
func (h *Harness) final() Final {
	stats := h.engine.IntegrationStats()
	history := h.engine.History()

	converged := 0
	matching := 0
	for _, m := range history {
		if m.Converged {
			converged++
		}
		if m.Marker == h.engine.Policy().Marker {
			matching++
		}
	}
	coords := h.engine.Coordinates()
	for _, c := range coords {
		if c.Marker == h.engine.Policy().Marker {
			matching++
		}
	}

	rate := 1.0
	if total := len(history) + len(coords); total > 0 {
		rate = float64(matching) / float64(total)
	}

	return Final{
		Seq:            h.engine.Seq(),
		HistoryLen:     len(history),
		CacheSize:      len(coords),
		TotalAttempts:  stats.TotalAttempts,
		SuccessRate:    stats.SuccessRate,
		MarkerRate:     rate,
		ConvergedCount: converged,
	}
}

func approxEqual(a, b float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= tolerance
}
