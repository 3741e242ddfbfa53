// Package config loads process configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix namespaces every cardforge environment variable.
const EnvPrefix = "CARDFORGE_"

// ParseEnv loads configuration from environment variables. Struct tags omit
// the EnvPrefix, so `env:"SEED"` reads CARDFORGE_SEED.
func ParseEnv(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
