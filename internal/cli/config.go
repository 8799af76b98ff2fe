package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// ConfigOptions holds flags for the config command.
type ConfigOptions struct {
	*RootOptions
	Output string // output file path
}

// NewConfigCommand creates the config command.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConfigOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Resolve and validate the configuration the other commands would use:
defaults, then the CUE file named by --config (checked against the
embedded schema), then SENTROPY_* environment variables, then flags.

CUE errors are reported with their file position.

Examples:
  sentropy config
  sentropy config --config ./sentropy.cue --format json
  sentropy config --config ./sentropy.cue -o effective.json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfig(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the effective configuration as JSON to this file")

	return cmd
}

func runConfig(opts *ConfigOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	cfg, err := opts.loadConfig()
	if err != nil {
		return f.Fail("invalid configuration", err)
	}
	f.VerboseLog("Configuration resolved (file: %q)", opts.ConfigPath)

	if opts.Output != "" {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal configuration: %w", err)
		}
		if err := os.WriteFile(opts.Output, append(data, '\n'), 0644); err != nil {
			return WrapExitError(ExitCommandError, "failed to write configuration", err)
		}
	}

	if f.JSON() {
		return f.Success(cfg)
	}

	w := f.Writer
	p := cfg.PolicyValue()
	fmt.Fprintln(w, "Effective configuration")
	fmt.Fprintf(w, "  precision:          %s\n", cfg.Precision)
	fmt.Fprintf(w, "  marker:             %s\n", cfg.Marker)
	fmt.Fprintf(w, "  history cap:        %d\n", cfg.HistoryCap)
	fmt.Fprintf(w, "  attempt log cap:    %d\n", cfg.AttemptLogCap)
	fmt.Fprintf(w, "  db:                 %s\n", orNone(cfg.DB))
	fmt.Fprintf(w, "  log level:          %s\n", cfg.LogLevel)
	fmt.Fprintln(w, "Policy")
	fmt.Fprintf(w, "  ultra threshold:    %s\n", formatFloat(p.UltraThreshold))
	fmt.Fprintf(w, "  universal constant: %s\n", formatFloat(p.UniversalConstant))
	fmt.Fprintf(w, "  decay factor:       %s\n", formatFloat(p.DecayFactor))
	fmt.Fprintf(w, "  overshoot:          %s\n", formatFloat(p.Overshoot))
	fmt.Fprintf(w, "  max decay steps:    %d\n", p.MaxDecaySteps)
	fmt.Fprintf(w, "  initial separation: %s\n", formatFloat(p.InitialSeparation))
	fmt.Fprintf(w, "  cache bucket:       %s\n", p.CacheBucket)
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
