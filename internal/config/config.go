// Package config loads tidysheet settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvOutputDir      = "TIDYSHEET_OUTPUT_DIR"
	EnvPreviewRows    = "TIDYSHEET_PREVIEW_ROWS"
	EnvKeepDuplicates = "TIDYSHEET_KEEP_DUPLICATE_HEADERS"
	EnvLogFile        = "TIDYSHEET_LOG_FILE"
	EnvLogJSON        = "TIDYSHEET_LOG_JSON"
)

const DefaultPreviewRows = 10

// ConfigErrorType represents the type of configuration error.
type ConfigErrorType string

const (
	EnvFileInvalid  ConfigErrorType = "ENV_FILE_INVALID"
	InvalidValue    ConfigErrorType = "INVALID_VALUE"
	ValidationError ConfigErrorType = "VALIDATION_ERROR"
)

// ConfigError represents an error that occurred during configuration loading.
type ConfigError struct {
	Type    ConfigErrorType
	Key     string
	Message string
}

func (e *ConfigError) Error() string {
	switch e.Type {
	case EnvFileInvalid:
		return fmt.Sprintf("invalid env file: %s", e.Message)
	case InvalidValue:
		return fmt.Sprintf("invalid value for %s: %s", e.Key, e.Message)
	case ValidationError:
		return fmt.Sprintf("configuration validation error: %s", e.Message)
	default:
		return fmt.Sprintf("configuration error: %s", e.Message)
	}
}

// Config holds all settings for tidysheet.
type Config struct {
	// OutputDir receives exported CSV files. Empty means next to the source.
	OutputDir      string
	PreviewRows    int
	KeepDuplicates bool
	LogFile        string
	LogJSON        bool
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{PreviewRows: DefaultPreviewRows}
}

// LoadFile reads an optional env file and then the TIDYSHEET_* environment
// variables. A missing file is not an error; variables already set in the
// environment win over the file.
func LoadFile(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, &ConfigError{Type: EnvFileInvalid, Message: err.Error()}
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function such as os.Getenv.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := Default()
	cfg.OutputDir = strings.TrimSpace(getenv(EnvOutputDir))
	cfg.LogFile = strings.TrimSpace(getenv(EnvLogFile))

	if v := strings.TrimSpace(getenv(EnvPreviewRows)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, &ConfigError{Type: InvalidValue, Key: EnvPreviewRows, Message: fmt.Sprintf("%q is not an integer", v)}
		}
		cfg.PreviewRows = n
	}

	var err error
	if cfg.KeepDuplicates, err = parseBool(getenv, EnvKeepDuplicates); err != nil {
		return nil, err
	}
	if cfg.LogJSON, err = parseBool(getenv, EnvLogJSON); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings for consistency.
func (c *Config) Validate() error {
	if c.PreviewRows <= 0 {
		return &ConfigError{
			Type:    ValidationError,
			Message: fmt.Sprintf("%s must be greater than zero, got %d", EnvPreviewRows, c.PreviewRows),
		}
	}
	return nil
}

func parseBool(getenv func(string) string, key string) (bool, error) {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, &ConfigError{Type: InvalidValue, Key: key, Message: fmt.Sprintf("%q is not a boolean", v)}
	}
	return b, nil
}
