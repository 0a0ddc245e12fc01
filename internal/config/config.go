package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Report formats accepted by report_format.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config represents taskflow configuration options
type Config struct {
	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory where run logs will be written
	LogDir string `yaml:"log_dir"`

	// ReportDir is the directory where execution reports will be written
	ReportDir string `yaml:"report_dir"`

	// ReportFormat is the encoding for report files (json or yaml)
	ReportFormat string `yaml:"report_format"`

	// MaxConcurrency is the number of tasks allowed to run at once (0 or 1 = sequential)
	MaxConcurrency int `yaml:"max_concurrency"`

	// HTTPTimeout bounds each HTTP task's request (0 = no timeout)
	HTTPTimeout time.Duration `yaml:"http_timeout"`

	// MaxResultLength truncates stringified task results in reports (0 = unlimited)
	MaxResultLength int `yaml:"max_result_length"`
}

// DefaultConfig returns a Config with sensible default values rooted at .taskflow
func DefaultConfig() *Config {
	return DefaultConfigIn(homeDirName)
}

// DefaultConfigIn returns the default configuration with directories under home
func DefaultConfigIn(home string) *Config {
	return &Config{
		LogLevel:        "info",
		LogDir:          filepath.Join(home, "logs"),
		ReportDir:       filepath.Join(home, "reports"),
		ReportFormat:    FormatJSON,
		MaxConcurrency:  0, // Sequential
		HTTPTimeout:     30 * time.Second,
		MaxResultLength: 0, // Unlimited
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	return loadInto(DefaultConfig(), path)
}

// LoadConfigFromHome loads home/config.yaml over defaults rooted at home
func LoadConfigFromHome(home string) (*Config, error) {
	return loadInto(DefaultConfigIn(home), ConfigPath(home))
}

func loadInto(cfg *Config, path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Durations are strings in YAML ("30s"), so decode into a shadow struct first.
	type yamlConfig struct {
		LogLevel        string `yaml:"log_level"`
		LogDir          string `yaml:"log_dir"`
		ReportDir       string `yaml:"report_dir"`
		ReportFormat    string `yaml:"report_format"`
		MaxConcurrency  *int   `yaml:"max_concurrency"`
		HTTPTimeout     string `yaml:"http_timeout"`
		MaxResultLength *int   `yaml:"max_result_length"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply values present in the file (merging with defaults)
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = strings.ToLower(yamlCfg.LogLevel)
	}
	if yamlCfg.LogDir != "" {
		cfg.LogDir = yamlCfg.LogDir
	}
	if yamlCfg.ReportDir != "" {
		cfg.ReportDir = yamlCfg.ReportDir
	}
	if yamlCfg.ReportFormat != "" {
		cfg.ReportFormat = strings.ToLower(yamlCfg.ReportFormat)
	}
	if yamlCfg.MaxConcurrency != nil {
		cfg.MaxConcurrency = *yamlCfg.MaxConcurrency
	}
	if yamlCfg.HTTPTimeout != "" {
		timeout, err := time.ParseDuration(yamlCfg.HTTPTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid http_timeout format %q: %w", yamlCfg.HTTPTimeout, err)
		}
		cfg.HTTPTimeout = timeout
	}
	if yamlCfg.MaxResultLength != nil {
		cfg.MaxResultLength = *yamlCfg.MaxResultLength
	}

	return cfg, nil
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
func (c *Config) MergeWithFlags(logLevel, logDir, reportDir, reportFormat *string, maxConcurrency *int) {
	if logLevel != nil {
		c.LogLevel = strings.ToLower(*logLevel)
	}
	if logDir != nil {
		c.LogDir = *logDir
	}
	if reportDir != nil {
		c.ReportDir = *reportDir
	}
	if reportFormat != nil {
		c.ReportFormat = strings.ToLower(*reportFormat)
	}
	if maxConcurrency != nil {
		c.MaxConcurrency = *maxConcurrency
	}
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.ReportFormat != FormatJSON && c.ReportFormat != FormatYAML {
		return fmt.Errorf("invalid report_format %q, must be one of: json, yaml", c.ReportFormat)
	}

	if c.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency must be >= 0, got %d", c.MaxConcurrency)
	}

	if c.HTTPTimeout < 0 {
		return fmt.Errorf("http_timeout must be >= 0, got %v", c.HTTPTimeout)
	}

	if c.MaxResultLength < 0 {
		return fmt.Errorf("max_result_length must be >= 0, got %d", c.MaxResultLength)
	}

	return nil
}
