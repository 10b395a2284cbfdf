// Package config resolves the console's settings from built-in defaults, an
// optional YAML file and KESTREL_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"gopkg.in/yaml.v3"
)

// Token store backends.
const (
	StoreFile = "file"
	StoreBolt = "bolt"
)

// Config holds every setting of the console.
type Config struct {
	APIURL         string `yaml:"api_url" env:"KESTREL_API_URL"`
	TokenStore     string `yaml:"token_store" env:"KESTREL_TOKEN_STORE"`
	TokenPath      string `yaml:"token_path" env:"KESTREL_TOKEN_PATH"`
	LogLevel       string `yaml:"log_level" env:"KESTREL_LOG_LEVEL"`
	LogFile        string `yaml:"log_file" env:"KESTREL_LOG_FILE"`
	TimeoutSeconds int    `yaml:"timeout_seconds" env:"KESTREL_TIMEOUT_SECONDS"`
}

// DefaultDir returns ~/.kestrel.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config.DefaultDir: %w", err)
	}
	return filepath.Join(home, ".kestrel"), nil
}

// Path returns the config file location: $KESTREL_CONFIG, else
// ~/.kestrel/config.yaml.
func Path() (string, error) {
	if p := os.Getenv("KESTREL_CONFIG"); p != "" {
		return p, nil
	}
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Defaults returns the built-in settings rooted at dir.
func Defaults(dir string) *Config {
	return &Config{
		APIURL:         "http://localhost:8080",
		TokenStore:     StoreFile,
		LogLevel:       "info",
		LogFile:        filepath.Join(dir, "admin.log"),
		TimeoutSeconds: 30,
	}
}

// Load reads the file at path, if it exists, over the defaults and then
// applies the process environment.
func Load(path string) (*Config, error) {
	es, err := env.EnvironToEnvSet(os.Environ())
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	dir, err := DefaultDir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path, dir, es)
}

// LoadFrom is Load with an explicit default directory and environment.
func LoadFrom(path, dir string, es env.EnvSet) (*Config, error) {
	cfg := Defaults(dir)

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("config.Load: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config.Load: parse %s: %w", path, err)
			}
		}
	}

	if err := env.Unmarshal(es, cfg); err != nil {
		return nil, fmt.Errorf("config.Load: environment: %w", err)
	}

	cfg.TokenStore = strings.ToLower(strings.TrimSpace(cfg.TokenStore))
	if cfg.TokenPath == "" {
		cfg.TokenPath = filepath.Join(dir, "token")
		if cfg.TokenStore == StoreBolt {
			cfg.TokenPath = filepath.Join(dir, "session.db")
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that would otherwise fail late.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: api_url %q must be an http(s) URL with a host", c.APIURL)
	}
	if c.TokenStore != StoreFile && c.TokenStore != StoreBolt {
		return fmt.Errorf("config: token_store %q must be %q or %q", c.TokenStore, StoreFile, StoreBolt)
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("config: timeout_seconds must be positive, got %d", c.TimeoutSeconds)
	}
	return nil
}

// Timeout is the per-request HTTP timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
