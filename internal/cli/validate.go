package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sentropy/internal/ir"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate provenance markers on every record",
		Long: `Scan the coordinate cache and measurement history and check that every
record carries the configured marker.

Exit codes:
  0 - Every record carries the marker
  1 - One or more records carry a different marker
  2 - Command error (bad configuration, unreadable journal)

Examples:
  sentropy validate --db ./sentropy.db
  SENTROPY_MARKER=other sentropy validate --db ./sentropy.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	s, err := openSession(cmd.Context(), opts, cmd, sessionOptions{})
	if err != nil {
		return f.Fail("failed to start engine", err)
	}
	defer s.Close()

	report := s.engine.ValidateAllMarkers()
	f.VerboseLog("Validated %d coordinate(s) and %d measurement(s)", report.Cache.Total, report.History.Total)

	if !report.Passed() {
		return outputValidationFailure(f, report)
	}

	if f.JSON() {
		return f.Success(report)
	}
	fmt.Fprintf(f.Writer, "✓ All %d record(s) carry the expected marker\n", report.Total)
	return nil
}

// outputValidationFailure reports records with foreign markers. Exit code 1.
func outputValidationFailure(f *OutputFormatter, r ir.ValidationReport) error {
	msg := fmt.Sprintf("%d of %d record(s) carry an unexpected marker", r.Total-r.Matching, r.Total)

	if f.JSON() {
		if err := f.Error(ErrCodeValidation, msg, r); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}

	w := f.Writer
	fmt.Fprintf(w, "✗ %s\n", msg)
	fmt.Fprintf(w, "  cache:   %d/%d\n", r.Cache.Matching, r.Cache.Total)
	fmt.Fprintf(w, "  history: %d/%d\n", r.History.Matching, r.History.Total)
	fmt.Fprintf(w, "  rate:    %s\n", formatFloat(r.Rate))
	return NewExitError(ExitFailure, msg)
}
