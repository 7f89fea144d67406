package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harrison/doctest/internal/flags"
	"github.com/harrison/doctest/internal/shell"
)

// ShellConfig represents shell backend configuration
type ShellConfig struct {
	// Signal selects how wait steps are released: "file" or "pipe"
	Signal string `yaml:"signal"`

	// SyntaxCheck runs "sh -n" on every example before the script is built
	SyntaxCheck bool `yaml:"syntax_check"`

	// WorkDir is the parent of the per-DocTest temporary directories
	WorkDir string `yaml:"work_dir"`

	// HelperPath is the program invoked as the shell helper (empty = doctest itself)
	HelperPath string `yaml:"helper_path"`
}

// Config represents doctest configuration options
type Config struct {
	// Verbose reports every example, not only failures
	Verbose bool `yaml:"verbose"`

	// OptionFlags are flag names enabled for every example
	OptionFlags []string `yaml:"option_flags"`

	// Languages restricts the backends used (empty = all available)
	Languages []string `yaml:"languages"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// MaxConcurrency is the number of files run concurrently (0 = all at once)
	MaxConcurrency int `yaml:"max_concurrency"`

	// Timeout bounds the whole run (0 = no timeout)
	Timeout time.Duration `yaml:"timeout"`

	// FailFast stops each file at its first failing example
	FailFast bool `yaml:"fail_fast"`

	// ExcludeEmpty drops DocTests without examples from the summary
	ExcludeEmpty bool `yaml:"exclude_empty"`

	// ReportFile receives a JSON record of every run (empty = none)
	ReportFile string `yaml:"report_file"`

	// Markdown parses only the code blocks of Markdown files
	Markdown bool `yaml:"markdown"`

	// Shell contains shell backend configuration
	Shell ShellConfig `yaml:"shell"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Verbose:        false,
		LogLevel:       "warn",
		MaxConcurrency: 0,
		Timeout:        0,
		FailFast:       false,
		ExcludeEmpty:   true,
		Markdown:       true,
		Shell: ShellConfig{
			Signal:      shell.SignalFile,
			SyntaxCheck: true,
		},
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Durations are parsed by hand
	type yamlConfig struct {
		Verbose        bool        `yaml:"verbose"`
		OptionFlags    []string    `yaml:"option_flags"`
		Languages      []string    `yaml:"languages"`
		LogLevel       string      `yaml:"log_level"`
		MaxConcurrency int         `yaml:"max_concurrency"`
		Timeout        string      `yaml:"timeout"`
		FailFast       bool        `yaml:"fail_fast"`
		ExcludeEmpty   bool        `yaml:"exclude_empty"`
		ReportFile     string      `yaml:"report_file"`
		Markdown       bool        `yaml:"markdown"`
		Shell          ShellConfig `yaml:"shell"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlCfg.Verbose {
		cfg.Verbose = true
	}
	if len(yamlCfg.OptionFlags) > 0 {
		cfg.OptionFlags = yamlCfg.OptionFlags
	}
	if len(yamlCfg.Languages) > 0 {
		cfg.Languages = yamlCfg.Languages
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.MaxConcurrency != 0 {
		cfg.MaxConcurrency = yamlCfg.MaxConcurrency
	}
	if yamlCfg.Timeout != "" {
		timeout, err := time.ParseDuration(yamlCfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout format %q: %w", yamlCfg.Timeout, err)
		}
		cfg.Timeout = timeout
	}
	if yamlCfg.FailFast {
		cfg.FailFast = true
	}
	if yamlCfg.ReportFile != "" {
		cfg.ReportFile = yamlCfg.ReportFile
	}
	if yamlCfg.Shell.Signal != "" {
		cfg.Shell.Signal = yamlCfg.Shell.Signal
	}
	if yamlCfg.Shell.WorkDir != "" {
		cfg.Shell.WorkDir = yamlCfg.Shell.WorkDir
	}
	if yamlCfg.Shell.HelperPath != "" {
		cfg.Shell.HelperPath = yamlCfg.Shell.HelperPath
	}

	// Settings that default to true only change when present in the file
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err == nil {
		if _, exists := rawMap["exclude_empty"]; exists {
			cfg.ExcludeEmpty = yamlCfg.ExcludeEmpty
		}
		if _, exists := rawMap["markdown"]; exists {
			cfg.Markdown = yamlCfg.Markdown
		}
		if shellSection, ok := rawMap["shell"].(map[string]interface{}); ok {
			if _, exists := shellSection["syntax_check"]; exists {
				cfg.Shell.SyntaxCheck = yamlCfg.Shell.SyntaxCheck
			}
		}
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .doctest/config.yaml in the specified directory
// If the directory or file doesn't exist, returns default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, ConfigDir, ConfigFile))
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
func (c *Config) MergeWithFlags(verbose *bool, optionFlags *[]string, languages *[]string, logLevel *string, maxConcurrency *int, timeout *time.Duration, failFast *bool, reportFile *string) {
	if verbose != nil {
		c.Verbose = *verbose
	}
	if optionFlags != nil {
		c.OptionFlags = *optionFlags
	}
	if languages != nil {
		c.Languages = *languages
	}
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if maxConcurrency != nil {
		c.MaxConcurrency = *maxConcurrency
	}
	if timeout != nil {
		c.Timeout = *timeout
	}
	if failFast != nil {
		c.FailFast = *failFast
	}
	if reportFile != nil {
		c.ReportFile = *reportFile
	}
}

// Validate validates the configuration values against registry
// Returns an error if any values are invalid
func (c *Config) Validate(registry *flags.Registry) error {
	if c.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency must be >= 0, got %d", c.MaxConcurrency)
	}

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

	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %v", c.Timeout)
	}

	if _, err := registry.Parse(c.OptionFlags); err != nil {
		return fmt.Errorf("invalid option_flags: %w", err)
	}

	if c.Shell.Signal != shell.SignalFile && c.Shell.Signal != shell.SignalPipe {
		return fmt.Errorf("invalid shell.signal %q, must be one of: %s, %s", c.Shell.Signal, shell.SignalFile, shell.SignalPipe)
	}

	return nil
}

// ShellOptions converts the shell section into backend options.
func (c *Config) ShellOptions() shell.Options {
	return shell.Options{
		HelperPath:    c.Shell.HelperPath,
		Signal:        c.Shell.Signal,
		NoSyntaxCheck: !c.Shell.SyntaxCheck,
		WorkDir:       c.Shell.WorkDir,
	}
}
