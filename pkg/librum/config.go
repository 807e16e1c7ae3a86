package librum

import (
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/librum-dev/librum/pkg/core"
)

// Backend names a storage implementation.
type Backend string

const (
	// BackendFile is the JSON-file engine with its own commit protocol.
	BackendFile Backend = "file"
	// BackendSQLite delegates transactions to SQLite.
	BackendSQLite Backend = "sqlite"
)

// Config is the application configuration. Values load in order:
// defaults, then the YAML config file, then LIBRUM_* environment
// variables.
type Config struct {
	Backend         Backend `yaml:"backend" env:"LIBRUM_BACKEND"`
	DataDir         string  `yaml:"data_dir" env:"LIBRUM_DATA_DIR"`
	LogLevel        string  `yaml:"log_level" env:"LIBRUM_LOG_LEVEL"`
	Demo            bool    `yaml:"demo" env:"LIBRUM_DEMO"`
	FineCentsPerDay int64   `yaml:"fine_cents_per_day" env:"LIBRUM_FINE_CENTS_PER_DAY"`
}

// DefaultConfig returns the configuration used when nothing else is
// set.
func DefaultConfig() Config {
	return Config{
		Backend:         BackendFile,
		DataDir:         "data",
		LogLevel:        "info",
		Demo:            false,
		FineCentsPerDay: 50,
	}
}

// LoadConfig reads path (when it exists) over the defaults, then
// applies environment overrides. A missing config file is not an
// error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, core.Invalidf("parse config %s: %v", path, err)
			}
		} else if !os.IsNotExist(err) {
			return Config{}, core.StorageFailed("read config", err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, core.Invalidf("parse environment: %v", err)
	}
	switch cfg.Backend {
	case BackendFile, BackendSQLite:
	default:
		return Config{}, core.Invalidf("unknown backend: %s", cfg.Backend)
	}
	return cfg, nil
}
