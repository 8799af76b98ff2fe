package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sentropy/internal/engine"
	"github.com/roach88/sentropy/internal/ir"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, ir.PrecisionStandard, cfg.Precision)
	assert.Equal(t, ir.DefaultMarker, cfg.Marker)
	assert.Equal(t, engine.DefaultHistoryCap, cfg.HistoryCap)
	assert.Equal(t, 0, cfg.AttemptLogCap)
	assert.Equal(t, ir.DefaultPolicy(), cfg.PolicyValue())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"precision", func(c *Config) { c.Precision = ir.Precision(9) }, "precision"},
		{"history cap", func(c *Config) { c.HistoryCap = 0 }, "history_cap"},
		{"attempt log cap", func(c *Config) { c.AttemptLogCap = -1 }, "attempt_log_cap"},
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"marker", func(c *Config) { c.Marker = "" }, "marker"},
		{"decay factor", func(c *Config) { c.Policy.DecayFactor = 1 }, "decay_factor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, ir.IsKind(err, ir.KindConfiguration))

			var e *ir.Error
			require.True(t, errors.As(err, &e))
			assert.Equal(t, tt.field, e.Details["field"])
		})
	}
}

func TestPolicyValue_AppliesMarker(t *testing.T) {
	cfg := Default()
	cfg.Marker = "other"
	cfg.Policy.Marker = ir.DefaultMarker

	assert.Equal(t, "other", cfg.PolicyValue().Marker)
}

func TestEngineOptions(t *testing.T) {
	cfg := Default()
	cfg.Precision = ir.PrecisionHigh
	cfg.Marker = "st-options"
	cfg.HistoryCap = 3

	e, err := engine.New(cfg.Precision, cfg.EngineOptions()...)
	require.NoError(t, err)
	assert.Equal(t, ir.PrecisionHigh, e.Precision())
	assert.Equal(t, "st-options", e.Policy().Marker)
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLogLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLogLevel("trace")
	assert.True(t, ir.IsKind(err, ir.KindConfiguration))
}

func TestLoadFile(t *testing.T) {
	cfg := Default()
	require.NoError(t, LoadFile(&cfg, filepath.Join("testdata", "sentropy.cue")))
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ir.PrecisionUltra, cfg.Precision)
	assert.Equal(t, "st-test-marker", cfg.Marker)
	assert.Equal(t, 250, cfg.HistoryCap)
	assert.Equal(t, 50, cfg.AttemptLogCap)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 0.5, cfg.Policy.DecayFactor)
	assert.Equal(t, 20, cfg.Policy.MaxDecaySteps)
	assert.Equal(t, 5*time.Second, cfg.Policy.CacheBucket)

	// Fields the file leaves out keep their defaults.
	assert.Equal(t, 1e-30, cfg.Policy.UltraThreshold)
	assert.Equal(t, 1.1, cfg.Policy.Overshoot)
}

func TestLoadFile_Missing(t *testing.T) {
	cfg := Default()
	err := LoadFile(&cfg, filepath.Join(t.TempDir(), "absent.cue"))
	require.Error(t, err)
	assert.True(t, ir.IsKind(err, ir.KindConfiguration))
}

func TestApplyCUE_Rejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unknown precision", `precision: "extreme"`},
		{"unknown field", `colour: "blue"`},
		{"empty marker", `marker: ""`},
		{"zero history cap", `history_cap: 0`},
		{"decay factor at one", `policy: decay_factor: 1`},
		{"overshoot below one", `policy: overshoot: 0.5`},
		{"unknown policy field", `policy: speed: 3`},
		{"bad duration", `policy: cache_bucket: "soon"`},
		{"syntax", `precision: `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			before := cfg

			err := ApplyCUE(&cfg, []byte(tt.src), "bad.cue")
			require.Error(t, err)
			assert.True(t, ir.IsKind(err, ir.KindConfiguration))

			var ce *CompileError
			assert.True(t, errors.As(err, &ce), "want CompileError, got %v", err)
			assert.Equal(t, before, cfg)
		})
	}
}

func TestApplyCUE_PositionInError(t *testing.T) {
	cfg := Default()
	err := ApplyCUE(&cfg, []byte("marker: \"ok\"\nhistory_cap: -4\n"), "pos.cue")
	require.Error(t, err)

	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.True(t, ce.Pos.IsValid())
	assert.Contains(t, ce.Error(), "pos.cue")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SENTROPY_PRECISION", "supreme")
	t.Setenv("SENTROPY_MARKER", "st-env")
	t.Setenv("SENTROPY_HISTORY_CAP", "12")
	t.Setenv("SENTROPY_ATTEMPT_LOG_CAP", "4")
	t.Setenv("SENTROPY_DB", "/tmp/sentropy.db")
	t.Setenv("SENTROPY_LOG_LEVEL", "warn")

	cfg := Default()
	require.NoError(t, ApplyEnv(&cfg))

	assert.Equal(t, ir.PrecisionSupreme, cfg.Precision)
	assert.Equal(t, "st-env", cfg.Marker)
	assert.Equal(t, 12, cfg.HistoryCap)
	assert.Equal(t, 4, cfg.AttemptLogCap)
	assert.Equal(t, "/tmp/sentropy.db", cfg.DB)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, ir.DefaultPolicy().DecayFactor, cfg.Policy.DecayFactor)
}

func TestApplyEnv_Invalid(t *testing.T) {
	t.Setenv("SENTROPY_HISTORY_CAP", "lots")

	cfg := Default()
	err := ApplyEnv(&cfg)
	require.Error(t, err)
	assert.True(t, ir.IsKind(err, ir.KindConfiguration))
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sentropy.cue")
	require.NoError(t, os.WriteFile(path, []byte(`precision: "high"
history_cap: 10
`), 0o644))
	t.Setenv("SENTROPY_HISTORY_CAP", "20")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ir.PrecisionHigh, cfg.Precision)
	assert.Equal(t, 20, cfg.HistoryCap)
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
