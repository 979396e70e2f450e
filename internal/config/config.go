// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the console's runtime configuration.
type Config struct {
	APIURL      string        `env:"ADMINKIT_API_URL" envDefault:"http://localhost:8080/api"`
	HTTPTimeout time.Duration `env:"ADMINKIT_HTTP_TIMEOUT" envDefault:"30s"`

	StoreSocket string `env:"ADMINKIT_STORE_SOCK"`
	StoreDB     string `env:"ADMINKIT_STORE_DB"`
	StoreBucket string `env:"ADMINKIT_STORE_BUCKET" envDefault:"session"`

	SessionKey    string        `env:"ADMINKIT_SESSION_KEY" envDefault:"currentUser"`
	SessionTTL    time.Duration `env:"ADMINKIT_SESSION_TTL" envDefault:"8h"`
	SweepInterval time.Duration `env:"ADMINKIT_SWEEP_INTERVAL" envDefault:"1m"`

	UploadMaxBytes int64 `env:"ADMINKIT_UPLOAD_MAX_BYTES" envDefault:"10485760"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses Config and fills in the storage paths under the user cache
// directory when they are not set.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.StoreSocket == "" {
		cfg.StoreSocket = filepath.Join(cacheDir(), "store.sock")
	}
	if cfg.StoreDB == "" {
		cfg.StoreDB = filepath.Join(cacheDir(), "session.bbolt")
	}
	if cfg.SweepInterval <= 0 {
		return Config{}, fmt.Errorf("parse env: ADMINKIT_SWEEP_INTERVAL must be positive")
	}
	return cfg, nil
}

func cacheDir() string {
	home, _ := os.UserHomeDir()
	if home == "" {
		home = "."
	}
	return filepath.Join(home, ".cache", "adminkit")
}
