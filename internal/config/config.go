package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/sentropy/internal/engine"
	"github.com/roach88/sentropy/internal/ir"
)

// Config is the effective configuration.
type Config struct {
	Precision     ir.Precision `json:"precision" env:"PRECISION"`
	Marker        string       `json:"marker" env:"MARKER"`
	HistoryCap    int          `json:"history_cap" env:"HISTORY_CAP"`
	AttemptLogCap int          `json:"attempt_log_cap" env:"ATTEMPT_LOG_CAP"`
	DB            string       `json:"db" env:"DB"`
	LogLevel      string       `json:"log_level" env:"LOG_LEVEL"`

	// Policy carries the engine constants. Its Marker is kept in sync with
	// Marker by PolicyValue.
	Policy ir.Policy `json:"policy"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	p := ir.DefaultPolicy()
	return Config{
		Precision:  ir.PrecisionStandard,
		Marker:     p.Marker,
		HistoryCap: engine.DefaultHistoryCap,
		LogLevel:   "info",
		Policy:     p,
	}
}

// PolicyValue returns the policy with the configured marker applied.
func (c Config) PolicyValue() ir.Policy {
	p := c.Policy
	p.Marker = c.Marker
	return p
}

// Validate checks every field. Failures are configuration errors naming the
// offending field.
func (c Config) Validate() error {
	fail := func(field, msg string) error {
		return ir.NewError(ir.KindConfiguration, "validate_config", msg).WithDetail("field", field)
	}

	if !c.Precision.Valid() {
		return fail("precision", fmt.Sprintf("unknown precision %s", c.Precision))
	}
	if c.HistoryCap < 1 {
		return fail("history_cap", fmt.Sprintf("history cap must be positive, got %d", c.HistoryCap))
	}
	if c.AttemptLogCap < 0 {
		return fail("attempt_log_cap", fmt.Sprintf("attempt log cap must not be negative, got %d", c.AttemptLogCap))
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return c.PolicyValue().Validate()
}

// EngineOptions returns the engine options this configuration implies.
// Logger, clock, journal, and metrics are left to the caller.
func (c Config) EngineOptions() []engine.Option {
	return []engine.Option{
		engine.WithPolicy(c.PolicyValue()),
		engine.WithHistoryCap(c.HistoryCap),
		engine.WithAttemptLogCap(c.AttemptLogCap),
	}
}

// ParseLogLevel maps a level name to a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, ir.NewError(ir.KindConfiguration, "parse_log_level", fmt.Sprintf("unknown log level %q", s)).
		WithDetail("field", "log_level")
}
