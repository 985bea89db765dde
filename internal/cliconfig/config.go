// Package cliconfig loads the task CLI's TOML configuration.
package cliconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the runtime settings of the task CLI. Flags override the
// file; the file overrides the defaults.
type Config struct {
	ServerURL      string `toml:"server_url"`
	TokenFile      string `toml:"token_file"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	Retries        int    `toml:"retries"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ServerURL:      "http://localhost:8085",
		TokenFile:      defaultStatePath("auth.json"),
		TimeoutSeconds: 10,
		Retries:        2,
	}
}

// DefaultPath returns the config file location used when --config is not
// given.
func DefaultPath() string {
	return defaultStatePath("config.toml")
}

func defaultStatePath(name string) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return name
	}
	return filepath.Join(dir, "taskapp", name)
}

// Load reads the config file at path on top of the defaults. A missing
// file resolves to the defaults, not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings no command could run with.
func (c Config) Validate() error {
	parsed, err := url.Parse(c.ServerURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("server_url %q must be an http or https URL", c.ServerURL)
	}
	if c.TokenFile == "" {
		return errors.New("token_file must not be empty")
	}
	if c.TimeoutSeconds < 0 {
		return errors.New("timeout_seconds must not be negative")
	}
	if c.Retries < 0 {
		return errors.New("retries must not be negative")
	}
	return nil
}

// Timeout returns the per-call budget as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
