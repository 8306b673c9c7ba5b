package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load parses environment variables into cfg, which must be a pointer to a
// struct using `env` / `envDefault` tags. Fields tagged `required` must be set.
//
//	type Config struct {
//	    Port    int           `env:"HTTP_PORT" envDefault:"8080"`
//	    Timeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"5s"`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
