// Package config loads the unreal-lsp configuration file.
//
// The file is YAML and optional: a missing file yields DefaultConfig().
// Environment variables override file values, and CLI flags override both
// (flags are applied by the caller).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DirName is the per-user directory holding config and caches.
	DirName = ".unreal-lsp"
	// FileName is the config file name inside DirName.
	FileName = "config.yaml"
)

// Config holds all unreal-lsp configuration.
type Config struct {
	// ProjectPath is the directory containing the .uproject file.
	ProjectPath string `yaml:"project_path"`
	// EnginePath forces an engine install instead of discovery.
	EnginePath string `yaml:"engine_path"`
	// ExtraEngineRoots are probed in addition to the built-in locations.
	ExtraEngineRoots []string `yaml:"extra_engine_roots"`
	// DataDir holds the scan cache database.
	DataDir string `yaml:"data_dir"`

	Session SessionConfig `yaml:"session"`
	Index   IndexConfig   `yaml:"index"`
	Logging LoggingConfig `yaml:"logging"`
}

// SessionConfig configures the protocol session.
type SessionConfig struct {
	// StrictErrors answers unknown methods and commands with a
	// MethodNotFound error instead of dropping them.
	StrictErrors bool `yaml:"strict_errors"`
}

// IndexConfig configures the background header scan.
type IndexConfig struct {
	Enabled bool `yaml:"enabled"`
	Workers int  `yaml:"workers"`
	Cache   bool `yaml:"cache"`
}

// LoggingConfig configures the diagnostic logger. Output always goes to
// stderr because stdout carries protocol frames.
type LoggingConfig struct {
	Level       string `yaml:"level"`  // debug, info, warn, error
	Format      string `yaml:"format"` // json, console
	Development bool   `yaml:"development"`
}

// DefaultDir returns ~/.unreal-lsp, or DirName relative to cwd when the
// home directory cannot be determined.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DirName
	}
	return filepath.Join(home, DirName)
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), FileName)
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		DataDir: DefaultDir(),
		Index: IndexConfig{
			Enabled: true,
			Workers: 4,
			Cache:   true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads configuration from a YAML file. A missing file is not an
// error: defaults (plus environment overrides) are returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.applyEnvOverrides(os.Getenv)
	cfg.normalize()
	return cfg, nil
}

// Save writes the configuration as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides(getenv func(string) string) {
	if v := getenv("UNREAL_LSP_PROJECT"); v != "" {
		c.ProjectPath = v
	}
	if v := getenv("UNREAL_LSP_ENGINE"); v != "" {
		c.EnginePath = v
	}
	if v := getenv("UNREAL_LSP_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := getenv("UNREAL_LSP_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) normalize() {
	if c.Index.Workers <= 0 {
		c.Index.Workers = 1
	}
	if c.DataDir == "" {
		c.DataDir = DefaultDir()
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}
