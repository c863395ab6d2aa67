// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Review ReviewConfig `toml:"review"`
	Stats  StatsConfig  `toml:"stats"`
	Log    LogConfig    `toml:"log"`
	Remind RemindConfig `toml:"remind"`
}

// ReviewConfig maps review-session settings.
type ReviewConfig struct {
	Cards      *int     `toml:"cards"`
	Level      *int     `toml:"level"`
	Contextual *bool    `toml:"contextual"`
	FocusHard  *bool    `toml:"focus-hard"`
	HardFactor *float64 `toml:"hard-factor"`
	Due        *bool    `toml:"due"`
}

// StatsConfig maps stats settings.
type StatsConfig struct {
	Days *int `toml:"days"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level  *string `toml:"level"`
	Format *string `toml:"format"`
}

// RemindConfig maps reminder settings. Every is a Go duration string.
type RemindConfig struct {
	Every     *string `toml:"every"`
	StartHour *int    `toml:"start-hour"`
	EndHour   *int    `toml:"end-hour"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// Template is written by `hancards config` when no config file exists.
const Template = `# hancards configuration.
# Command-line flags override these values.

[review]
# cards = 10
# level = 1
# contextual = false
# focus-hard = false
# hard-factor = 1.0
# due = false

[stats]
# days = 14

[log]
# level = "info"   # debug, info, warn, error
# format = "text"  # text, json

[remind]
# every = "1h"
# start-hour = 8
# end-hour = 22
`

// EnsureConfigFile writes Template to path unless a file already exists.
// It reports whether the file was created.
func EnsureConfigFile(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(Template), 0o644); err != nil {
		return false, fmt.Errorf("failed to write config: %w", err)
	}
	return true, nil
}
