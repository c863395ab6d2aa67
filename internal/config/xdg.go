// Package config provides XDG path helpers.
package config

import (
	"os"
	"path/filepath"
)

const appName = "hancards"

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// ConfigDir is the hancards config directory. HANCARDS_CONFIG_HOME replaces it.
func ConfigDir() string {
	if v := os.Getenv(EnvConfigHome); v != "" {
		return v
	}
	return filepath.Join(XDGConfigHome(), appName)
}

// DataDir is the hancards data directory. HANCARDS_DATA_HOME replaces it.
func DataDir() string {
	if v := os.Getenv(EnvDataHome); v != "" {
		return v
	}
	return filepath.Join(XDGDataHome(), appName)
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DefaultVocabPath returns the path of the user vocabulary table.
func DefaultVocabPath() string {
	return filepath.Join(ConfigDir(), "vocab.tsv")
}

// DefaultDBPath returns the default path for the SQLite database.
func DefaultDBPath() string {
	return filepath.Join(DataDir(), appName+".db")
}

// DefaultLogPath returns the log file used while a TUI owns the terminal.
func DefaultLogPath() string {
	return filepath.Join(DataDir(), appName+".log")
}
