package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/sentropy/internal/engine"
	"github.com/roach88/sentropy/internal/ir"
)

// Demo inputs.
const (
	demoContext       = "demonstration_problem"
	demoEmotional     = 0.3
	demoComplexity    = 1.0
	demoAccessibility = 0.8
)

// demoTargets are the integration targets tried in order.
var demoTargets = []float64{1.0, 0.1, 0.01, 0.001}

// DemoOptions holds flags for the demo command.
type DemoOptions struct {
	*RootOptions
	Observer string
	Count    int
	Workers  int
	Metrics  bool
}

// IntegrationOutcome is one integration attempt made by the demo.
type IntegrationOutcome struct {
	Target  float64 `json:"target"`
	Success bool    `json:"success"`
}

// AnalysisResult summarises the demo's batch of measurements.
type AnalysisResult struct {
	Count            int     `json:"count"`
	AverageMagnitude float64 `json:"average_magnitude"`
	Optimal          int     `json:"optimal"`
	OptimalRate      float64 `json:"optimal_rate"`
}

// DemoResult holds every step of the demonstration.
type DemoResult struct {
	Initial      ir.ValidationReport  `json:"initial_validation"`
	Measurement  ir.Measurement       `json:"measurement"`
	Integrations []IntegrationOutcome `json:"integrations"`
	Stats        ir.IntegrationStats  `json:"stats"`
	Analysis     AnalysisResult       `json:"analysis"`
	Final        ir.ValidationReport  `json:"final_validation"`
}

// NewDemoCommand creates the demo command.
func NewDemoCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DemoOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a comprehensive demonstration",
		Long: `Run every engine operation in sequence:

  1. Validate markers
  2. Generate one measurement
  3. Attempt integration toward 1, 0.1, 0.01, and 0.001
  4. Generate a batch of measurements with varying inputs, concurrently
  5. Validate markers again

Examples:
  sentropy demo
  sentropy demo --observer universal --count 100 --workers 8
  sentropy demo --metrics`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Observer, "observer", "expert", "observer sophistication for every measurement")
	cmd.Flags().IntVar(&opts.Count, "count", 5, "number of measurements in the statistical batch")
	cmd.Flags().IntVar(&opts.Workers, "workers", 1, "concurrent workers for the batch")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "print Prometheus metrics after the demo")

	return cmd
}

func runDemo(opts *DemoOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	observer, err := ir.ParseObserver(opts.Observer)
	if err != nil {
		return invalidArgs(f, err)
	}
	if opts.Count < 1 {
		return invalidArgs(f, fmt.Errorf("--count must be positive, got %d", opts.Count))
	}
	if opts.Workers < 1 {
		return invalidArgs(f, fmt.Errorf("--workers must be positive, got %d", opts.Workers))
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	s, err := openSession(ctx, opts.RootOptions, cmd, sessionOptions{metrics: opts.Metrics})
	if err != nil {
		return f.Fail("failed to start engine", err)
	}
	defer s.Close()

	eng := s.engine
	var result DemoResult

	s.logger.Info("demo step", "step", 1, "name", "marker validation")
	result.Initial = eng.ValidateAllMarkers()

	s.logger.Info("demo step", "step", 2, "name", "measurement")
	result.Measurement, err = eng.GenerateMeasurement(ctx, engine.MeasurementInput{
		Context:         demoContext,
		Observer:        observer,
		TargetPrecision: eng.Policy().UltraThreshold,
		EmotionalFactor: demoEmotional,
		Complexity:      demoComplexity,
		Accessibility:   demoAccessibility,
	})
	if err != nil {
		return f.Fail("measurement failed", err)
	}

	s.logger.Info("demo step", "step", 3, "name", "integration")
	for _, target := range demoTargets {
		ok, err := eng.AttemptIntegration(ctx, target)
		if err != nil {
			return f.Fail("integration failed", err)
		}
		result.Integrations = append(result.Integrations, IntegrationOutcome{Target: target, Success: ok})
	}
	result.Stats = eng.IntegrationStats()

	s.logger.Info("demo step", "step", 4, "name", "statistical analysis", "count", opts.Count, "workers", opts.Workers)
	batch, err := measureBatch(ctx, eng, observer, opts.Count, opts.Workers)
	if err != nil {
		return f.Fail("statistical analysis failed", err)
	}
	result.Analysis = analyze(batch)

	s.logger.Info("demo step", "step", 5, "name", "final validation")
	result.Final = eng.ValidateAllMarkers()

	if f.JSON() {
		if err := f.Success(result); err != nil {
			return err
		}
	} else {
		printDemo(f, result)
	}

	if s.metrics != nil {
		// JSON output keeps stdout to the response envelope.
		w := f.Writer
		if f.JSON() {
			w = f.GetErrWriter()
		} else {
			fmt.Fprintln(w)
		}
		if err := s.metrics.WriteText(w); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}

	if !result.Final.Passed() {
		return NewExitError(ExitFailure, "marker validation incomplete")
	}
	return nil
}

// measureBatch generates count measurements on workers goroutines. Inputs
// vary with the measurement index; results are returned in index order.
func measureBatch(ctx context.Context, svc engine.Service, observer ir.Observer, count, workers int) ([]ir.Measurement, error) {
	out := make([]ir.Measurement, count)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range count {
		g.Go(func() error {
			step := float64(i % 5)
			m, err := svc.GenerateMeasurement(gctx, engine.MeasurementInput{
				Context:         fmt.Sprintf("analysis_problem_%d", i),
				Observer:        observer,
				TargetPrecision: 1e-30,
				EmotionalFactor: 0.1 + step*0.2,
				Complexity:      demoComplexity,
				Accessibility:   0.9 - step*0.1,
			})
			if err != nil {
				return err
			}
			out[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func analyze(ms []ir.Measurement) AnalysisResult {
	r := AnalysisResult{Count: len(ms)}
	if len(ms) == 0 {
		return r
	}
	var sum float64
	for _, m := range ms {
		sum += m.Magnitude
		if m.Converged {
			r.Optimal++
		}
	}
	r.AverageMagnitude = sum / float64(len(ms))
	r.OptimalRate = float64(r.Optimal) / float64(len(ms))
	return r
}

func printDemo(f *OutputFormatter, r DemoResult) {
	w := f.Writer

	fmt.Fprintln(w, "Step 1: Marker validation")
	fmt.Fprintf(w, "  %d/%d record(s) valid\n\n", r.Initial.Matching, r.Initial.Total)

	fmt.Fprintln(w, "Step 2: Measurement")
	printMeasurement(w, r.Measurement)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Step 3: Integration")
	for _, o := range r.Integrations {
		mark := "✓"
		if !o.Success {
			mark = "✗"
		}
		fmt.Fprintf(w, "  %s target %s\n", mark, formatFloat(o.Target))
	}
	printStats(w, r.Stats)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Step 4: Statistical analysis")
	fmt.Fprintf(w, "  measurements:      %d\n", r.Analysis.Count)
	fmt.Fprintf(w, "  average magnitude: %s\n", formatFloat(r.Analysis.AverageMagnitude))
	fmt.Fprintf(w, "  optimal:           %d/%d (%s)\n", r.Analysis.Optimal, r.Analysis.Count, formatFloat(r.Analysis.OptimalRate))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Step 5: Final marker validation")
	fmt.Fprintf(w, "  %d/%d record(s) valid (rate %s)\n", r.Final.Matching, r.Final.Total, formatFloat(r.Final.Rate))
}
