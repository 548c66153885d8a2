// Package config loads server configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the complete externally visible configuration surface.
type Config struct {

	// Addr is the HTTP listen address.
	Addr string `env:"FAULTSERVE_ADDR" envDefault:":8080"`

	// OriginURL and OriginDir locate the origin store; exactly one must be
	// set. OriginURL selects the HTTP origin, OriginDir the filesystem one.
	OriginURL string `env:"FAULTSERVE_ORIGIN_URL"`
	OriginDir string `env:"FAULTSERVE_ORIGIN_DIR"`

	// DatasetPath is the origin path of the compressed consolidated
	// dataset.
	DatasetPath string `env:"FAULTSERVE_DATASET_PATH" envDefault:"dataset.json.gz"`

	// EntityPrefix is the origin path prefix of the pre-split records.
	EntityPrefix string `env:"FAULTSERVE_ENTITY_PREFIX" envDefault:"entities"`

	// CacheDB is the bbolt file backing the shared cache tier. Empty runs
	// the tier in-process only.
	CacheDB string `env:"FAULTSERVE_CACHE_DB"`

	// CacheTTL is how long a shared-tier entry stays valid after being
	// written.
	CacheTTL time.Duration `env:"FAULTSERVE_CACHE_TTL" envDefault:"5m"`

	// FetchTimeout bounds one origin fetch + decode.
	FetchTimeout time.Duration `env:"FAULTSERVE_FETCH_TIMEOUT" envDefault:"30s"`

	// MaxResidency, when positive, bounds how long the process serves the
	// same resident dataset before a background refresh is triggered.
	// Zero disables refresh.
	MaxResidency time.Duration `env:"FAULTSERVE_MAX_RESIDENCY" envDefault:"0"`

	// WriteBackBuffer is how many pending shared-tier writes queue before
	// drops begin.
	WriteBackBuffer int `env:"FAULTSERVE_WRITEBACK_BUFFER" envDefault:"4"`
}

// Parse loads and validates configuration from the environment.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if (c.OriginURL == "") == (c.OriginDir == "") {
		return fmt.Errorf("exactly one of FAULTSERVE_ORIGIN_URL and FAULTSERVE_ORIGIN_DIR must be set")
	}
	if c.DatasetPath == "" {
		return fmt.Errorf("FAULTSERVE_DATASET_PATH cannot be empty")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("FAULTSERVE_CACHE_TTL must be positive")
	}
	if c.WriteBackBuffer < 0 {
		return fmt.Errorf("FAULTSERVE_WRITEBACK_BUFFER cannot be negative")
	}
	return nil
}
