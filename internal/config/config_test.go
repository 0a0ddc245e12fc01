package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestDefaultConfig verifies default configuration values
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.LogDir != filepath.Join(".taskflow", "logs") {
		t.Errorf("LogDir = %q, want .taskflow/logs", cfg.LogDir)
	}
	if cfg.ReportDir != filepath.Join(".taskflow", "reports") {
		t.Errorf("ReportDir = %q, want .taskflow/reports", cfg.ReportDir)
	}
	if cfg.ReportFormat != FormatJSON {
		t.Errorf("ReportFormat = %q, want json", cfg.ReportFormat)
	}
	if cfg.MaxConcurrency != 0 {
		t.Errorf("MaxConcurrency = %d, want 0", cfg.MaxConcurrency)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("HTTPTimeout = %v, want 30s", cfg.HTTPTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

// TestLoadConfigValidFile tests loading a valid YAML config file
func TestLoadConfigValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `log_level: DEBUG
log_dir: /tmp/logs
report_dir: /tmp/reports
report_format: yaml
max_concurrency: 4
http_timeout: 5s
max_result_length: 200
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.LogDir != "/tmp/logs" {
		t.Errorf("LogDir = %q, want /tmp/logs", cfg.LogDir)
	}
	if cfg.ReportDir != "/tmp/reports" {
		t.Errorf("ReportDir = %q, want /tmp/reports", cfg.ReportDir)
	}
	if cfg.ReportFormat != FormatYAML {
		t.Errorf("ReportFormat = %q, want yaml", cfg.ReportFormat)
	}
	if cfg.MaxConcurrency != 4 {
		t.Errorf("MaxConcurrency = %d, want 4", cfg.MaxConcurrency)
	}
	if cfg.HTTPTimeout != 5*time.Second {
		t.Errorf("HTTPTimeout = %v, want 5s", cfg.HTTPTimeout)
	}
	if cfg.MaxResultLength != 200 {
		t.Errorf("MaxResultLength = %d, want 200", cfg.MaxResultLength)
	}
}

// TestLoadConfigPartialFile verifies unspecified fields keep their defaults
func TestLoadConfigPartialFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("report_format: yaml\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	defaults := DefaultConfig()
	if cfg.LogLevel != defaults.LogLevel || cfg.HTTPTimeout != defaults.HTTPTimeout {
		t.Errorf("unspecified fields changed: %+v", cfg)
	}
	if cfg.ReportFormat != FormatYAML {
		t.Errorf("ReportFormat = %q, want yaml", cfg.ReportFormat)
	}
}

// TestLoadConfigExplicitZero verifies an explicit zero overrides a default
func TestLoadConfigExplicitZero(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("max_concurrency: 0\nmax_result_length: 0\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.MaxConcurrency != 0 || cfg.MaxResultLength != 0 {
		t.Errorf("explicit zeros not applied: %+v", cfg)
	}
}

// TestLoadConfigMissingFile verifies defaults are returned when the file is absent
func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

// TestLoadConfigErrors verifies malformed files are rejected
func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid yaml", "log_level: [unterminated"},
		{"invalid duration", "http_timeout: soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}
			if _, err := LoadConfig(configPath); err == nil {
				t.Error("expected error")
			}
		})
	}
}

// TestLoadConfigFromHome verifies directories default under the home directory
func TestLoadConfigFromHome(t *testing.T) {
	home := t.TempDir()

	cfg, err := LoadConfigFromHome(home)
	if err != nil {
		t.Fatalf("LoadConfigFromHome() error = %v", err)
	}
	if cfg.LogDir != filepath.Join(home, "logs") {
		t.Errorf("LogDir = %q, want under home", cfg.LogDir)
	}

	if err := os.WriteFile(ConfigPath(home), []byte("log_level: warn\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	cfg, err = LoadConfigFromHome(home)
	if err != nil {
		t.Fatalf("LoadConfigFromHome() error = %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
	}
	if cfg.ReportDir != filepath.Join(home, "reports") {
		t.Errorf("ReportDir = %q, want under home", cfg.ReportDir)
	}
}

// TestMergeWithFlags verifies non-nil flags override config values
func TestMergeWithFlags(t *testing.T) {
	cfg := DefaultConfig()
	level := "ERROR"
	reportDir := "/var/reports"
	concurrency := 3

	cfg.MergeWithFlags(&level, nil, &reportDir, nil, &concurrency)

	if cfg.LogLevel != "error" {
		t.Errorf("LogLevel = %q, want error", cfg.LogLevel)
	}
	if cfg.LogDir != DefaultConfig().LogDir {
		t.Errorf("LogDir changed without a flag: %q", cfg.LogDir)
	}
	if cfg.ReportDir != reportDir {
		t.Errorf("ReportDir = %q, want %q", cfg.ReportDir, reportDir)
	}
	if cfg.ReportFormat != FormatJSON {
		t.Errorf("ReportFormat changed without a flag: %q", cfg.ReportFormat)
	}
	if cfg.MaxConcurrency != 3 {
		t.Errorf("MaxConcurrency = %d, want 3", cfg.MaxConcurrency)
	}
}

// TestValidate covers each rejected value
func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
		{"bad report format", func(c *Config) { c.ReportFormat = "xml" }},
		{"negative concurrency", func(c *Config) { c.MaxConcurrency = -1 }},
		{"negative timeout", func(c *Config) { c.HTTPTimeout = -time.Second }},
		{"negative result length", func(c *Config) { c.MaxResultLength = -5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

// TestHome verifies TASKFLOW_HOME takes priority over the working directory
func TestHome(t *testing.T) {
	t.Setenv(HomeEnvVar, "/opt/taskflow")
	home, err := Home()
	if err != nil {
		t.Fatalf("Home() error = %v", err)
	}
	if home != "/opt/taskflow" {
		t.Errorf("Home() = %q, want /opt/taskflow", home)
	}

	t.Setenv(HomeEnvVar, "")
	home, err = Home()
	if err != nil {
		t.Fatalf("Home() error = %v", err)
	}
	if filepath.Base(home) != ".taskflow" {
		t.Errorf("Home() = %q, want .taskflow under cwd", home)
	}
}
