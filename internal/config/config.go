// Package config loads dropwatch settings from ~/.dropwatch/config.toml,
// with environment variables overriding the file and flags overriding both
// (flag precedence is handled by the command layer).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	configDirName  = ".dropwatch"
	configFileName = "config.toml"

	DefaultServerURL  = "http://localhost:8001"
	DefaultIntervalMS = 2000
	DefaultMode       = "graph"
	DefaultOrient     = "LR"
	DefaultLogMaxMB   = 10
)

// Config is the persisted monitor configuration.
type Config struct {
	ServerURL   string `toml:"server_url"`
	IntervalMS  int    `toml:"interval_ms"`
	Mode        string `toml:"mode"`
	Orientation string `toml:"orientation"`

	History HistoryConfig `toml:"history"`
	Log     LogConfig     `toml:"log"`
}

// HistoryConfig controls the optional status-transition recorder.
type HistoryConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// LogConfig controls the rotating application log.
type LogConfig struct {
	Path    string `toml:"path"`
	MaxSize int    `toml:"max_size_mb"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ServerURL:   DefaultServerURL,
		IntervalMS:  DefaultIntervalMS,
		Mode:        DefaultMode,
		Orientation: DefaultOrient,
		Log:         LogConfig{MaxSize: DefaultLogMaxMB},
	}
}

// Dir returns the dropwatch config directory, honoring DROPWATCH_HOME.
func Dir() (string, error) {
	if dir := os.Getenv("DROPWATCH_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, configDirName), nil
}

// Load reads the config file if present, applies environment overrides, and
// fills unset fields with defaults. A missing file is not an error.
func Load() (*Config, error) {
	cfg := Default()

	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, configFileName)
	if _, err := toml.DecodeFile(path, cfg); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.fillDefaults(dir)
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DROPWATCH_SERVER"); v != "" {
		c.ServerURL = v
	}
	if v := os.Getenv("DROPWATCH_INTERVAL_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			c.IntervalMS = ms
		}
	}
	if v := os.Getenv("DROPWATCH_MODE"); v != "" {
		c.Mode = v
	}
	if v := os.Getenv("DROPWATCH_ORIENTATION"); v != "" {
		c.Orientation = v
	}
}

func (c *Config) fillDefaults(dir string) {
	if c.ServerURL == "" {
		c.ServerURL = DefaultServerURL
	}
	if c.IntervalMS <= 0 {
		c.IntervalMS = DefaultIntervalMS
	}
	if c.Mode == "" {
		c.Mode = DefaultMode
	}
	if c.Orientation == "" {
		c.Orientation = DefaultOrient
	}
	if c.History.Path == "" {
		c.History.Path = filepath.Join(dir, "history.db")
	}
	if c.Log.Path == "" {
		c.Log.Path = filepath.Join(dir, "dropwatch.log")
	}
	if c.Log.MaxSize <= 0 {
		c.Log.MaxSize = DefaultLogMaxMB
	}
}

// Interval returns the poll interval as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalMS) * time.Millisecond
}
