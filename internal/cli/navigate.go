package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/sentropy/internal/ir"
	"github.com/roach88/sentropy/internal/navigation"
)

// NavigateOptions holds flags for the navigate command.
type NavigateOptions struct {
	*RootOptions
	NearThreshold float64
	Problem       string
}

// NavigateResult holds the positions produced by the navigate command.
type NavigateResult struct {
	Coordinate *ir.Coordinate        `json:"coordinate,omitempty"`
	Positions  []navigation.Position `json:"positions"`
	Solution   string                `json:"solution,omitempty"`
}

// NewNavigateCommand creates the navigate command.
func NewNavigateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &NavigateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "navigate [<knowledge> <time> <entropy>]",
		Short: "Map a coordinate onto a navigation position",
		Long: `Align the three components, then map the aligned coordinate onto a
navigation position and describe it as a solution.

With --near-threshold S, list the positions sampled around S instead.
With --problem TEXT, derive a position from a problem description.

Examples:
  sentropy navigate 1 2 3
  sentropy navigate --near-threshold 0.05
  sentropy navigate --problem "memory consolidation" --format json`,
		Args: func(cmd *cobra.Command, args []string) error {
			modes := 0
			if cmd.Flags().Changed("near-threshold") {
				modes++
			}
			if cmd.Flags().Changed("problem") {
				modes++
			}
			switch {
			case modes > 1:
				return fmt.Errorf("--near-threshold and --problem are mutually exclusive")
			case modes == 1 && len(args) != 0:
				return fmt.Errorf("coordinates cannot be combined with --near-threshold or --problem")
			case modes == 0 && len(args) != 3:
				return fmt.Errorf("accepts 3 arg(s), received %d", len(args))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNavigate(opts, args, cmd)
		},
	}

	cmd.Flags().Float64Var(&opts.NearThreshold, "near-threshold", 0, "sample positions around this S value")
	cmd.Flags().StringVar(&opts.Problem, "problem", "", "derive a position from a problem description")

	return cmd
}

func runNavigate(opts *NavigateOptions, args []string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	var v []float64
	if len(args) > 0 {
		var err error
		if v, err = parseFloats(args); err != nil {
			return invalidArgs(f, err)
		}
	}

	ctx := cmd.Context()
	s, err := openSession(ctx, opts.RootOptions, cmd, sessionOptions{})
	if err != nil {
		return f.Fail("failed to start engine", err)
	}
	defer s.Close()

	nav := navigation.New(s.cfg.Marker, navigation.WithLogger(s.logger))
	var result NavigateResult

	switch {
	case cmd.Flags().Changed("near-threshold"):
		ps, err := nav.NearThreshold(opts.NearThreshold)
		if err != nil {
			return f.Fail("navigation failed", err)
		}
		result.Positions = ps

	case cmd.Flags().Changed("problem"):
		p := nav.FromProblem(opts.Problem)
		result.Positions = []navigation.Position{p}

	default:
		c, err := s.engine.Align(ctx, v[0], v[1], v[2])
		if err != nil {
			return f.Fail("alignment failed", err)
		}
		p, err := nav.Navigate(c)
		if err != nil {
			return f.Fail("navigation failed", err)
		}
		result.Coordinate = &c
		result.Positions = []navigation.Position{p}
	}

	if len(result.Positions) == 1 {
		sol, err := nav.Solution(result.Positions[0])
		if err != nil {
			return f.Fail("navigation failed", err)
		}
		result.Solution = sol
	}

	if f.JSON() {
		return f.Success(result)
	}

	w := f.Writer
	if result.Coordinate != nil {
		printCoordinate(w, *result.Coordinate, s.engine.Precision())
	}
	for _, p := range result.Positions {
		printPosition(w, p)
	}
	if result.Solution != "" {
		fmt.Fprintf(w, "Solution: %s\n", result.Solution)
	}
	return nil
}

func printPosition(w io.Writer, p navigation.Position) {
	fmt.Fprintf(w, "Position %s: (%s, %s, %s) distance %s confidence %s\n",
		p.ID, formatFloat(p.Knowledge), formatFloat(p.Time), formatFloat(p.Entropy),
		formatFloat(p.Distance()), formatFloat(p.Confidence))
}
