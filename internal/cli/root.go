package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/sentropy/internal/config"
	"github.com/roach88/sentropy/internal/ir"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string // CUE configuration file
	Precision  string // overrides the configured precision
	Database   string // overrides the configured journal path
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the sentropy CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "sentropy",
		Short: "sentropy - S-entropy measurement engine",
		Long: `Measure (knowledge, time, entropy) coordinates, align them, and track
convergence toward the optimal coordinate.

Configuration is resolved from defaults, then the CUE file named by
--config, then SENTROPY_* environment variables, then flags. With --db
every operation is journaled to SQLite and the engine resumes from the
journal on the next invocation.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to CUE configuration file")
	cmd.PersistentFlags().StringVar(&opts.Precision, "precision", "", "precision level (standard|high|ultra|supreme)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite journal")

	// Add subcommands
	cmd.AddCommand(NewMeasureCommand(opts))
	cmd.AddCommand(NewAlignCommand(opts))
	cmd.AddCommand(NewIntegrateCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewNavigateCommand(opts))
	cmd.AddCommand(NewTransformCommand(opts))
	cmd.AddCommand(NewHealthCommand(opts))
	cmd.AddCommand(NewDemoCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// formatter builds the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// loadConfig resolves the effective configuration: defaults, the CUE file,
// the environment, and finally the global flags. The result is validated.
func (o *RootOptions) loadConfig() (config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}

	if o.Precision != "" {
		p, err := ir.ParsePrecision(o.Precision)
		if err != nil {
			return config.Config{}, ir.WrapError(ir.KindConfiguration, "load_config", err).
				WithDetail("field", "precision")
		}
		cfg.Precision = p
	}
	if o.Database != "" {
		cfg.DB = o.Database
	}
	if o.Verbose {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newLogger builds the text logger commands hand to the engine. Logs go to
// stderr so JSON output on stdout stays parseable.
func newLogger(cmd *cobra.Command, cfg config.Config) *slog.Logger {
	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}
