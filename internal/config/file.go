package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/sentropy/internal/ir"
)

//go:embed schema.cue
var schemaCUE string

// fileConfig mirrors the CUE schema. Absent fields stay nil.
type fileConfig struct {
	Precision     *string     `json:"precision"`
	Marker        *string     `json:"marker"`
	HistoryCap    *int        `json:"history_cap"`
	AttemptLogCap *int        `json:"attempt_log_cap"`
	DB            *string     `json:"db"`
	LogLevel      *string     `json:"log_level"`
	Policy        *filePolicy `json:"policy"`
}

type filePolicy struct {
	UltraThreshold    *float64 `json:"ultra_threshold"`
	UniversalConstant *float64 `json:"universal_constant"`
	DecayFactor       *float64 `json:"decay_factor"`
	Overshoot         *float64 `json:"overshoot"`
	MaxDecaySteps     *int     `json:"max_decay_steps"`
	InitialSeparation *float64 `json:"initial_separation"`
	CacheBucket       *string  `json:"cache_bucket"`
}

// CompileError reports a configuration file problem with its CUE position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LoadFile applies the CUE file at path on top of cfg.
func LoadFile(cfg *Config, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return ir.WrapError(ir.KindConfiguration, "load_config", err).WithDetail("path", path)
	}
	return ApplyCUE(cfg, src, path)
}

// ApplyCUE unifies src with the schema and applies the fields it sets on
// top of cfg. Unknown fields and constraint violations are rejected.
func ApplyCUE(cfg *Config, src []byte, filename string) error {
	fc, err := compileFile(src, filename)
	if err != nil {
		return ir.WrapError(ir.KindConfiguration, "load_config", err)
	}
	if err := fc.apply(cfg); err != nil {
		return ir.WrapError(ir.KindConfiguration, "load_config", err)
	}
	return nil
}

func compileFile(src []byte, filename string) (*fileConfig, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	unified := def.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var fc fileConfig
	if err := unified.Decode(&fc); err != nil {
		return nil, formatCUEError(err)
	}
	return &fc, nil
}

func (fc *fileConfig) apply(cfg *Config) error {
	if fc.Precision != nil {
		p, err := ir.ParsePrecision(*fc.Precision)
		if err != nil {
			return err
		}
		cfg.Precision = p
	}
	if fc.Marker != nil {
		cfg.Marker = *fc.Marker
	}
	if fc.HistoryCap != nil {
		cfg.HistoryCap = *fc.HistoryCap
	}
	if fc.AttemptLogCap != nil {
		cfg.AttemptLogCap = *fc.AttemptLogCap
	}
	if fc.DB != nil {
		cfg.DB = *fc.DB
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}

	p := fc.Policy
	if p == nil {
		return nil
	}
	if p.UltraThreshold != nil {
		cfg.Policy.UltraThreshold = *p.UltraThreshold
	}
	if p.UniversalConstant != nil {
		cfg.Policy.UniversalConstant = *p.UniversalConstant
	}
	if p.DecayFactor != nil {
		cfg.Policy.DecayFactor = *p.DecayFactor
	}
	if p.Overshoot != nil {
		cfg.Policy.Overshoot = *p.Overshoot
	}
	if p.MaxDecaySteps != nil {
		cfg.Policy.MaxDecaySteps = *p.MaxDecaySteps
	}
	if p.InitialSeparation != nil {
		cfg.Policy.InitialSeparation = *p.InitialSeparation
	}
	if p.CacheBucket != nil {
		d, err := time.ParseDuration(*p.CacheBucket)
		if err != nil {
			return &CompileError{Field: "policy.cache_bucket", Message: err.Error()}
		}
		cfg.Policy.CacheBucket = d
	}
	return nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	ce := &CompileError{Field: "cue", Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		ce.Pos = positions[0]
	}
	if path := errors.Path(first); len(path) > 0 {
		ce.Field = strings.Join(path, ".")
	}
	return ce
}
