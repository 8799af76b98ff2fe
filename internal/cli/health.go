package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sentropy/internal/ir"
)

// HealthCheck is the outcome of one health check.
type HealthCheck struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// HealthResult holds every health check.
type HealthResult struct {
	Healthy bool           `json:"healthy"`
	Checks  []HealthCheck  `json:"checks"`
	Probe   *ir.Coordinate `json:"probe,omitempty"`
}

func (r *HealthResult) add(name string, err error, okMsg string) {
	c := HealthCheck{Name: name, OK: err == nil, Message: okMsg}
	if err != nil {
		c.Message = err.Error()
		r.Healthy = false
	}
	r.Checks = append(r.Checks, c)
}

// NewHealthCommand creates the health command.
func NewHealthCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check the engine configuration and run a probe",
		Long: `Run the engine self-checks: validate the policy constants, align a probe
coordinate computed from fixed inputs, and validate the markers of every
record (including journaled ones with --db).

Exit codes:
  0 - All checks passed
  1 - One or more checks failed
  2 - Command error (bad configuration, unreadable journal)`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHealth(rootOpts, cmd)
		},
	}

	return cmd
}

func runHealth(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	ctx := cmd.Context()
	s, err := openSession(ctx, opts, cmd, sessionOptions{})
	if err != nil {
		return f.Fail("failed to start engine", err)
	}
	defer s.Close()

	result := HealthResult{Healthy: true}

	policy := s.engine.Policy()
	result.add("policy", policy.Validate(),
		fmt.Sprintf("ultra threshold %s, marker %s", formatFloat(policy.UltraThreshold), policy.Marker))

	probe, err := s.engine.Probe(ctx)
	if err == nil {
		result.Probe = &probe
	}
	result.add("probe", err, fmt.Sprintf("probe coordinate magnitude %s", formatFloat(probe.Magnitude())))

	report := s.engine.ValidateAllMarkers()
	var markerErr error
	if !report.Passed() {
		markerErr = ir.NewError(ir.KindMarkerValidation, "health",
			fmt.Sprintf("%d of %d record(s) carry an unexpected marker", report.Total-report.Matching, report.Total))
	}
	result.add("markers", markerErr, fmt.Sprintf("%d record(s) validated", report.Total))

	if f.JSON() {
		if err := f.Success(result); err != nil {
			return err
		}
	} else {
		w := f.Writer
		for _, c := range result.Checks {
			mark := "✓"
			if !c.OK {
				mark = "✗"
			}
			fmt.Fprintf(w, "%s %s: %s\n", mark, c.Name, c.Message)
		}
	}

	if !result.Healthy {
		return NewExitError(ExitFailure, "health check failed")
	}
	if !f.JSON() {
		fmt.Fprintln(f.Writer, "All systems operational")
	}
	return nil
}
