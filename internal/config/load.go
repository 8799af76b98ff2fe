package config

// Load resolves defaults, the optional CUE file at path, and the
// environment, in that order. The result is not validated; callers apply
// flag overrides first and then call Validate.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := LoadFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	if err := ApplyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
