package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/sentropy/internal/engine"
	"github.com/roach88/sentropy/internal/ir"
)

// MeasureOptions holds flags for the measure command.
type MeasureOptions struct {
	*RootOptions
	Context         string
	Observer        string
	TargetPrecision float64
	Emotional       float64
	Complexity      float64
	Accessibility   float64
}

// NewMeasureCommand creates the measure command.
func NewMeasureCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MeasureOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "measure",
		Short: "Generate one S-entropy measurement",
		Long: `Generate one measurement from observer context, precision target,
emotional distortion, problem complexity, and accessibility.

The measurement is appended to the history (and the journal with --db) and
reports whether its magnitude is below the precision threshold.

Examples:
  sentropy measure --context "hello world" --observer expert
  sentropy measure --observer universal --accessibility 0.95 --complexity 5
  sentropy measure --precision ultra --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMeasure(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Context, "context", "", "observer context text")
	cmd.Flags().StringVar(&opts.Observer, "observer", "naive", "observer sophistication (naive|intermediate|expert|universal)")
	cmd.Flags().Float64Var(&opts.TargetPrecision, "target-precision", 1e-30, "precision target")
	cmd.Flags().Float64Var(&opts.Emotional, "emotional", 0, "emotional distortion factor")
	cmd.Flags().Float64Var(&opts.Complexity, "complexity", 1, "problem complexity")
	cmd.Flags().Float64Var(&opts.Accessibility, "accessibility", 0.8, "solution accessibility in (0, 1]")

	return cmd
}

func runMeasure(opts *MeasureOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	observer, err := ir.ParseObserver(opts.Observer)
	if err != nil {
		return invalidArgs(f, err)
	}

	ctx := cmd.Context()
	s, err := openSession(ctx, opts.RootOptions, cmd, sessionOptions{})
	if err != nil {
		return f.Fail("failed to start engine", err)
	}
	defer s.Close()

	m, err := s.engine.GenerateMeasurement(ctx, engine.MeasurementInput{
		Context:         opts.Context,
		Observer:        observer,
		TargetPrecision: opts.TargetPrecision,
		EmotionalFactor: opts.Emotional,
		Complexity:      opts.Complexity,
		Accessibility:   opts.Accessibility,
	})
	if err != nil {
		return f.Fail("measurement failed", err)
	}

	if f.JSON() {
		return f.Success(m)
	}
	printMeasurement(f.Writer, m)
	return nil
}

func printMeasurement(w io.Writer, m ir.Measurement) {
	fmt.Fprintf(w, "Measurement %s (seq %d)\n", m.ID, m.Seq)
	fmt.Fprintf(w, "  observer:  %s\n", m.Observer)
	fmt.Fprintf(w, "  knowledge: %s\n", formatFloat(m.Knowledge))
	fmt.Fprintf(w, "  time:      %s\n", formatFloat(m.Time))
	fmt.Fprintf(w, "  entropy:   %s\n", formatFloat(m.Entropy))
	fmt.Fprintf(w, "  magnitude: %s\n", formatFloat(m.Magnitude))
	fmt.Fprintf(w, "  converged: %t (%s threshold %s)\n", m.Converged, m.Precision, formatFloat(m.Precision.Threshold()))
}

// invalidArgs reports a bad flag or argument value with exit code 2.
func invalidArgs(f *OutputFormatter, err error) error {
	if outErr := f.Error(ErrCodeInvalidArgs, err.Error(), nil); outErr != nil {
		return outErr
	}
	return WrapExitError(ExitCommandError, "invalid arguments", err)
}

// parseFloats parses command arguments as float64 values.
func parseFloats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %q is not a number", i+1, a)
		}
		out[i] = v
	}
	return out, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
