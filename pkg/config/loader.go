package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load parses environment variables into the given struct, using `env`
// tags to map fields:
//
//	type Config struct {
//	    FeedURL  string `env:"CATALOG_FEED_URL,required"`
//	    Port     int    `env:"HTTP_PORT" envDefault:"8080"`
//	}
//
// Defaults apply when the variable is unset; fields marked required fail
// the whole load when missing.
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
