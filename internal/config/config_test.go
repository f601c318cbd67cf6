package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(envMap(nil))
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}
	if cfg.PreviewRows != DefaultPreviewRows {
		t.Errorf("PreviewRows = %d; want %d", cfg.PreviewRows, DefaultPreviewRows)
	}
	if cfg.OutputDir != "" || cfg.LogFile != "" || cfg.KeepDuplicates || cfg.LogJSON {
		t.Errorf("unexpected non-default config: %+v", cfg)
	}
}

func TestFromEnv(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		EnvOutputDir:      " /tmp/out ",
		EnvPreviewRows:    "25",
		EnvKeepDuplicates: "true",
		EnvLogFile:        "tidysheet.log",
		EnvLogJSON:        "1",
	}))
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}

	if cfg.OutputDir != "/tmp/out" {
		t.Errorf("OutputDir = %q; want %q", cfg.OutputDir, "/tmp/out")
	}
	if cfg.PreviewRows != 25 {
		t.Errorf("PreviewRows = %d; want 25", cfg.PreviewRows)
	}
	if !cfg.KeepDuplicates {
		t.Error("KeepDuplicates = false; want true")
	}
	if cfg.LogFile != "tidysheet.log" {
		t.Errorf("LogFile = %q; want %q", cfg.LogFile, "tidysheet.log")
	}
	if !cfg.LogJSON {
		t.Error("LogJSON = false; want true")
	}
}

func TestFromEnvErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		errType ConfigErrorType
		key     string
	}{
		{"Non-numeric preview rows", map[string]string{EnvPreviewRows: "ten"}, InvalidValue, EnvPreviewRows},
		{"Zero preview rows", map[string]string{EnvPreviewRows: "0"}, ValidationError, ""},
		{"Negative preview rows", map[string]string{EnvPreviewRows: "-3"}, ValidationError, ""},
		{"Bad boolean", map[string]string{EnvKeepDuplicates: "maybe"}, InvalidValue, EnvKeepDuplicates},
		{"Bad json flag", map[string]string{EnvLogJSON: "yes please"}, InvalidValue, EnvLogJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(envMap(tt.env))
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("FromEnv() error = %v; want *ConfigError", err)
			}
			if cfgErr.Type != tt.errType {
				t.Errorf("error type = %s; want %s", cfgErr.Type, tt.errType)
			}
			if cfgErr.Key != tt.key {
				t.Errorf("error key = %q; want %q", cfgErr.Key, tt.key)
			}
		})
	}
}

func TestLoadFileReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte(EnvPreviewRows+"=7\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	os.Unsetenv(EnvPreviewRows)
	t.Cleanup(func() { os.Unsetenv(EnvPreviewRows) })

	cfg, err := LoadFile(envFile)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.PreviewRows != 7 {
		t.Errorf("PreviewRows = %d; want 7", cfg.PreviewRows)
	}
}

func TestLoadFileMissingIsNotAnError(t *testing.T) {
	t.Setenv(EnvPreviewRows, "")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.PreviewRows != DefaultPreviewRows {
		t.Errorf("PreviewRows = %d; want %d", cfg.PreviewRows, DefaultPreviewRows)
	}
}
