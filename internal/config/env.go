package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "VOICELINK_"

// ApplyEnv applies VOICELINK_* overrides from environ, or from the process
// environment when environ is nil. Only variables that are set override the
// current values; names come from the env tags on Config.
func (c *Config) ApplyEnv(environ map[string]string) error {
	if environ == nil {
		environ = env.ToMap(os.Environ())
	}
	if err := env.ParseWithOptions(c, env.Options{
		Environment: environ,
		Prefix:      EnvPrefix,
	}); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}
