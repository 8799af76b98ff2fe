package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sentropy/internal/navigation"
	"github.com/roach88/sentropy/internal/transform"
)

// NewTransformCommand creates the transform command.
func NewTransformCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transform <problem text>",
		Short: "Transform a problem description into an S value",
		Long: `Run the universal transformation on a problem description: map the text
to an oscillation vector, take its norm as alpha, compute S = k*ln(alpha)
with the configured universal constant, and express S as a navigation
position. Multiple arguments are joined with spaces.

Examples:
  sentropy transform "how do memories consolidate during sleep"
  sentropy transform --format json "schedule meetings across time zones"`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransform(rootOpts, strings.Join(args, " "), cmd)
		},
	}

	return cmd
}

func runTransform(opts *RootOptions, problem string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	cfg, err := opts.loadConfig()
	if err != nil {
		return f.Fail("invalid configuration", err)
	}
	logger := newLogger(cmd, cfg)

	nav := navigation.New(cfg.Marker, navigation.WithLogger(logger))
	t, err := transform.New(cfg.Policy.UniversalConstant, nav, transform.WithLogger(logger))
	if err != nil {
		return f.Fail("failed to create transformer", err)
	}

	sol, err := t.Solve(problem)
	if err != nil {
		return f.Fail("transformation failed", err)
	}

	if f.JSON() {
		return f.Success(sol)
	}

	w := f.Writer
	fmt.Fprintf(w, "Problem class: %s\n", sol.Class)
	fmt.Fprintf(w, "  vector: (%s, %s, %s)\n",
		formatFloat(sol.Vector.Complexity), formatFloat(sol.Vector.Semantic), formatFloat(sol.Vector.Diversity))
	fmt.Fprintf(w, "  alpha:  %s\n", formatFloat(sol.Alpha))
	fmt.Fprintf(w, "  S:      %s\n", formatFloat(sol.S))
	printPosition(w, sol.Position)
	fmt.Fprintf(w, "Summary: %s\n", sol.Summary)
	return nil
}
