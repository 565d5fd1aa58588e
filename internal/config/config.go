package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
)

// EnvTimeout overrides timeout_seconds when set. It is read once per
// invocation, at orchestration start.
const EnvTimeout = "PARLEY_TIMEOUT_SECONDS"

// Config holds all configurable parley settings.
type Config struct {
	TimeoutSeconds int      `json:"timeout_seconds"` // session countdown budget
	WarningSeconds int      `json:"warning_seconds"` // countdown warning threshold
	GraceSeconds   int      `json:"grace_seconds"`   // orchestrator margin past the session timeout
	UICommand      []string `json:"ui_command"`      // override the session process argv prefix
}

// Defaults returns sensible default configuration values.
func Defaults() Config {
	return Config{
		TimeoutSeconds: 600,
		WarningSeconds: 120,
		GraceSeconds:   30,
	}
}

// LoadGlobal reads ~/.config/parley/config.json.
// Returns defaults if the file is absent.
func LoadGlobal() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(home, ".config", "parley", "config.json")
	return loadFile(path, true)
}

// LoadProject reads .parleyconfig in the current working directory.
// Returns nil (no error) if the file is absent.
func LoadProject() (*Config, error) {
	return loadFile(".parleyconfig", false)
}

// loadFile reads and parses a JSON config file at path.
// If returnDefaults is true, returns defaults when the file is absent.
// If returnDefaults is false, returns nil when the file is absent.
func loadFile(path string, returnDefaults bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if returnDefaults {
				d := Defaults()
				return &d, nil
			}
			return nil, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &cfg, nil
}

// Merge combines global and project configs, with project taking precedence.
// Missing keys fall back to global, then defaults.
func Merge(global, project *Config) Config {
	result := Defaults()

	for _, c := range []*Config{global, project} {
		if c == nil {
			continue
		}
		if c.TimeoutSeconds > 0 {
			result.TimeoutSeconds = c.TimeoutSeconds
		}
		if c.WarningSeconds > 0 {
			result.WarningSeconds = c.WarningSeconds
		}
		if c.GraceSeconds > 0 {
			result.GraceSeconds = c.GraceSeconds
		}
		if len(c.UICommand) > 0 {
			result.UICommand = c.UICommand
		}
	}

	return result
}

// EffectiveTimeout returns the countdown budget, honoring EnvTimeout when it
// holds a positive integer.
func (c Config) EffectiveTimeout() int {
	if v := os.Getenv(EnvTimeout); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return c.TimeoutSeconds
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
