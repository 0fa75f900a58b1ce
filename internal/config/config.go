// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime settings. Flags in main may override fields
// after Load.
type Config struct {
	HTTPAddr      string        `env:"SCRUMDECK_HTTP_ADDR" envDefault:":8080"`
	DBPath        string        `env:"SCRUMDECK_DB_PATH" envDefault:""`
	StateDir      string        `env:"SCRUMDECK_STATE_DIR" envDefault:".scrumdeck"`
	BaseURL       string        `env:"SCRUMDECK_BASE_URL" envDefault:""`
	LogLevel      string        `env:"SCRUMDECK_LOG_LEVEL" envDefault:"info"`
	LogHTTP       bool          `env:"SCRUMDECK_LOG_HTTP" envDefault:"false"`
	IntentTimeout time.Duration `env:"SCRUMDECK_INTENT_TIMEOUT" envDefault:"10s"`
}

// Load parses configuration from the environment. An empty DBPath selects
// the in-memory session store.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
