// Package config loads the runtime settings of the local grants host.
// Governance limits are compile time constants in package contract and are
// not configurable here.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config represents the complete host configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store"`
	Log      LogConfig      `yaml:"log"`
	Contract ContractConfig `yaml:"contract"`
	Genesis  GenesisConfig  `yaml:"genesis"`
}

// StoreConfig selects the state backend.
type StoreConfig struct {
	// Driver is one of memory, badger or sqlite.
	Driver string `yaml:"driver" env:"OKINOKO_STORE_DRIVER"`
	// Path is the snapshot file (memory), directory (badger) or db file (sqlite).
	Path string `yaml:"path" env:"OKINOKO_STORE_PATH"`
}

// LogConfig configures zap.
type LogConfig struct {
	Level       string `yaml:"level" env:"OKINOKO_LOG_LEVEL"`
	Development bool   `yaml:"development" env:"OKINOKO_LOG_DEVELOPMENT"`
}

type ContractConfig struct {
	ID string `yaml:"id" env:"OKINOKO_CONTRACT_ID"`
}

// GenesisConfig seeds ledger balances the first time a store is opened.
type GenesisConfig struct {
	// Balances maps address to a decimal amount of the treasury asset.
	Balances map[string]string `yaml:"balances"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Driver: "memory",
			Path:   "state.json",
		},
		Log: LogConfig{
			Level: "info",
		},
		Contract: ContractConfig{
			ID: "okinoko_grants",
		},
	}
}

// Load reads the yaml file at path on top of the defaults, then applies
// OKINOKO_* environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values the host cannot start without.
func (c *Config) Validate() error {
	var errs []error
	switch c.Store.Driver {
	case "memory":
	case "badger", "sqlite":
		if strings.TrimSpace(c.Store.Path) == "" {
			errs = append(errs, fmt.Errorf("store.path is required for driver %s", c.Store.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("store.driver %q is not one of memory, badger, sqlite", c.Store.Driver))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	if strings.TrimSpace(c.Contract.ID) == "" {
		errs = append(errs, errors.New("contract.id is required"))
	}
	return errors.Join(errs...)
}
