package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/runnerr0/historydb/internal/history"
)

// Default config file path.
const DefaultConfigPath = "~/.config/historydb/config.yaml"

// Supported store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all historydb configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store"`
	Import  ImportConfig  `yaml:"import"`
	Logging LoggingConfig `yaml:"logging"`
}

// StoreConfig selects the backend. The connection string itself is never
// stored in the file; it is read from the environment variable URLEnv.
type StoreConfig struct {
	Driver string `yaml:"driver"`
	URLEnv string `yaml:"url_env"`
}

type ImportConfig struct {
	BatchSize int    `yaml:"batch_size"`
	Sheet     string `yaml:"sheet"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
}

// Load reads a YAML config file at path and merges it with defaults.
// Returns an error if the file cannot be read or contains invalid YAML.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	path, err := expandPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &history.ConfigError{Detail: "reading config file", Err: err}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &history.ConfigError{Detail: "parsing config file", Err: err}
	}

	return cfg, nil
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// LoadOrDefault loads the config from the default path, falling back to
// DefaultConfig when no file has been written there.
func LoadOrDefault() (*Config, error) {
	path, err := expandPath(DefaultConfigPath)
	if err != nil {
		return nil, err
	}
	return LoadOrDefaultAt(path)
}

// LoadOrDefaultAt loads the config from the given path. A missing file is
// not an error.
func LoadOrDefaultAt(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return Load(path)
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return &history.ConfigError{Detail: fmt.Sprintf("unknown store driver %q", c.Store.Driver)}
	}
	if strings.TrimSpace(c.Store.URLEnv) == "" {
		return &history.ConfigError{Detail: "store.url_env must name an environment variable"}
	}
	if c.Import.BatchSize <= 0 {
		return &history.ConfigError{Detail: fmt.Sprintf("import.batch_size must be positive, got %d", c.Import.BatchSize)}
	}
	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		return &history.ConfigError{Detail: "logging.level", Err: err}
	}
	return nil
}

// StoreURL returns the connection string from the configured environment
// variable. For the sqlite driver it is a database file path.
func (c *Config) StoreURL() (string, error) {
	url := os.Getenv(c.Store.URLEnv)
	if url == "" {
		return "", &history.ConfigError{Detail: fmt.Sprintf("expecting environment variable %s to be set", c.Store.URLEnv)}
	}
	return url, nil
}
