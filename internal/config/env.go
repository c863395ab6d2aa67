package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment overrides.
const (
	EnvConfigHome = "HANCARDS_CONFIG_HOME"
	EnvDataHome   = "HANCARDS_DATA_HOME"
	EnvLogLevel   = "HANCARDS_LOG_LEVEL"
)

// LoadEnv loads variables from the given .env files without overriding the
// process environment. Missing files are skipped.
func LoadEnv(paths ...string) error {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// LogLevelOverride returns HANCARDS_LOG_LEVEL, if set.
func LogLevelOverride() (string, bool) {
	v := os.Getenv(EnvLogLevel)
	return v, v != ""
}
