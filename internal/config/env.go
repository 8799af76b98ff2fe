package config

import (
	"github.com/caarlos0/env/v11"

	"github.com/roach88/sentropy/internal/ir"
)

// EnvPrefix prefixes every environment variable the configuration reads.
const EnvPrefix = "SENTROPY_"

// ApplyEnv overrides cfg with any SENTROPY_* variables that are set.
// Unset variables leave the current value in place.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return ir.WrapError(ir.KindConfiguration, "parse_env", err)
	}
	return nil
}
