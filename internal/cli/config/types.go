// Package config provides configuration management for the leapproof CLI.
package config

import "time"

// ServeConfig holds configuration for the HTTP check server.
type ServeConfig struct {
	Addr string `koanf:"addr"`
}

// WatchConfig holds configuration for check --watch.
type WatchConfig struct {
	Debounce time.Duration `koanf:"debounce"`
}

// Config holds all CLI configuration options.
type Config struct {
	// RulesFile is an optional catalog file (.yaml, .yml or .star) whose
	// rules are added to, or replace, the built-in set.
	RulesFile    string       `koanf:"rules_file"`
	BuiltinRules bool         `koanf:"builtin_rules"`
	OutputFormat string       `koanf:"output"`
	Verbose      bool         `koanf:"verbose"`
	StatePath    string       `koanf:"state_path"`
	Record       bool         `koanf:"record"`
	Serve        *ServeConfig `koanf:"serve"`
	Watch        *WatchConfig `koanf:"watch"`

	// ProjectRoot is the directory relative paths are resolved against:
	// the directory of the config file, or the working directory.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultStateFile = ".leapproof/history.db"
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultServeAddr = ":8787"
	DefaultDebounce  = 200 * time.Millisecond
)

// GetServeConfig returns the serve config with defaults applied.
func (c *Config) GetServeConfig() *ServeConfig {
	if c.Serve == nil || c.Serve.Addr == "" {
		return &ServeConfig{Addr: DefaultServeAddr}
	}
	return c.Serve
}

// GetWatchConfig returns the watch config with defaults applied.
func (c *Config) GetWatchConfig() *WatchConfig {
	if c.Watch == nil || c.Watch.Debounce <= 0 {
		return &WatchConfig{Debounce: DefaultDebounce}
	}
	return c.Watch
}
