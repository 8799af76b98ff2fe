package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/sentropy/internal/ir"
)

// IntegrateResult is the outcome of one integration attempt.
type IntegrateResult struct {
	Success bool                   `json:"success"`
	Attempt *ir.IntegrationAttempt `json:"attempt,omitempty"`
	Stats   ir.IntegrationStats    `json:"stats"`
}

// NewIntegrateCommand creates the integrate command.
func NewIntegrateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "integrate <target>",
		Short: "Attempt integration toward a target separation",
		Long: `Run the bounded decay loop toward a target separation and record the
attempt in the integration tracker.

An attempt that does not reach the target is reported, not treated as a
command failure. A non-finite target is an error.

Examples:
  sentropy integrate 0.01
  sentropy integrate 1e-9 --db ./sentropy.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIntegrate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runIntegrate(opts *RootOptions, args []string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	v, err := parseFloats(args)
	if err != nil {
		return invalidArgs(f, err)
	}

	ctx := cmd.Context()
	s, err := openSession(ctx, opts, cmd, sessionOptions{})
	if err != nil {
		return f.Fail("failed to start engine", err)
	}
	defer s.Close()

	ok, err := s.engine.AttemptIntegration(ctx, v[0])
	if err != nil {
		return f.Fail("integration failed", err)
	}

	result := IntegrateResult{Success: ok, Stats: s.engine.IntegrationStats()}
	if attempts := s.engine.Attempts(); len(attempts) > 0 {
		last := attempts[len(attempts)-1]
		result.Attempt = &last
	}

	if f.JSON() {
		return f.Success(result)
	}

	w := f.Writer
	if result.Attempt != nil {
		a := result.Attempt
		fmt.Fprintf(w, "Attempt %s: target %s, achieved %s after %d iteration(s)\n",
			a.ID, formatFloat(a.Target), formatFloat(a.Achieved), a.Iterations)
	}
	if ok {
		fmt.Fprintln(w, "✓ Integration succeeded")
	} else {
		fmt.Fprintln(w, "✗ Integration did not reach the target")
	}
	printStats(w, result.Stats)
	return nil
}

func printStats(w io.Writer, st ir.IntegrationStats) {
	fmt.Fprintf(w, "  current separation: %s\n", formatFloat(st.CurrentSeparation))
	fmt.Fprintf(w, "  attempts:           %d (%d succeeded)\n", st.TotalAttempts, st.Successes)
	fmt.Fprintf(w, "  success rate:       %s\n", formatFloat(st.SuccessRate))
	fmt.Fprintf(w, "  optimal achieved:   %t\n", st.OptimalAchieved)
	if st.LastSuccess != nil {
		fmt.Fprintf(w, "  last success:       %s\n", st.LastSuccess.UTC().Format("2006-01-02T15:04:05.000Z07:00"))
	}
}
