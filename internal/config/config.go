// Package config loads server configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Server holds the HTTP server configuration.
type Server struct {
	// Addr is the listen address.
	Addr string `env:"PRISM_ADDR" envDefault:":8000"`

	// DBPath overrides the default database location.
	DBPath string `env:"PRISM_DB"`

	// APIToken, when set, is the bearer token API requests must present.
	// When empty, any non-empty bearer token is accepted.
	APIToken string `env:"PRISM_API_TOKEN"`

	ReadTimeout     time.Duration `env:"PRISM_READ_TIMEOUT"     envDefault:"30s"`
	WriteTimeout    time.Duration `env:"PRISM_WRITE_TIMEOUT"    envDefault:"3m"`
	ShutdownTimeout time.Duration `env:"PRISM_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// LoadServer parses server configuration from the environment.
func LoadServer() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
