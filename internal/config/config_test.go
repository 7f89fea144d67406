package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/harrison/doctest/internal/flags"
	"github.com/harrison/doctest/internal/shell"
)

// TestDefaultConfig verifies default configuration values
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.MaxConcurrency != 0 {
		t.Errorf("MaxConcurrency = %d, want 0", cfg.MaxConcurrency)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "warn")
	}
	if !cfg.ExcludeEmpty {
		t.Errorf("ExcludeEmpty = false, want true")
	}
	if !cfg.Markdown {
		t.Errorf("Markdown = false, want true")
	}
	if cfg.Shell.Signal != shell.SignalFile {
		t.Errorf("Shell.Signal = %q, want %q", cfg.Shell.Signal, shell.SignalFile)
	}
	if !cfg.Shell.SyntaxCheck {
		t.Errorf("Shell.SyntaxCheck = false, want true")
	}
	if err := cfg.Validate(flags.Default()); err != nil {
		t.Errorf("default config should validate, got: %v", err)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

// TestLoadConfigValidFile tests loading a valid YAML config file
func TestLoadConfigValidFile(t *testing.T) {
	path := writeConfig(t, `verbose: true
option_flags: [ELLIPSIS, NORMALIZE_WHITESPACE]
languages: [sh]
log_level: debug
max_concurrency: 4
timeout: 30s
fail_fast: true
report_file: out/report.json
shell:
  signal: pipe
  work_dir: /tmp/doctest
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if !cfg.Verbose {
		t.Errorf("Verbose = false, want true")
	}
	if !reflect.DeepEqual(cfg.OptionFlags, []string{"ELLIPSIS", "NORMALIZE_WHITESPACE"}) {
		t.Errorf("OptionFlags = %v", cfg.OptionFlags)
	}
	if !reflect.DeepEqual(cfg.Languages, []string{"sh"}) {
		t.Errorf("Languages = %v, want [sh]", cfg.Languages)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.MaxConcurrency != 4 {
		t.Errorf("MaxConcurrency = %d, want 4", cfg.MaxConcurrency)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if !cfg.FailFast {
		t.Errorf("FailFast = false, want true")
	}
	if cfg.ReportFile != "out/report.json" {
		t.Errorf("ReportFile = %q", cfg.ReportFile)
	}
	if cfg.Shell.Signal != shell.SignalPipe {
		t.Errorf("Shell.Signal = %q, want %q", cfg.Shell.Signal, shell.SignalPipe)
	}
	if cfg.Shell.WorkDir != "/tmp/doctest" {
		t.Errorf("Shell.WorkDir = %q", cfg.Shell.WorkDir)
	}
	// Not mentioned in the file, so still the defaults
	if !cfg.ExcludeEmpty || !cfg.Markdown || !cfg.Shell.SyntaxCheck {
		t.Errorf("true defaults were lost: %+v", cfg)
	}
}

// TestLoadConfigDisablesTrueDefaults tests that explicit false values win
func TestLoadConfigDisablesTrueDefaults(t *testing.T) {
	path := writeConfig(t, `exclude_empty: false
markdown: false
shell:
  syntax_check: false
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.ExcludeEmpty {
		t.Errorf("ExcludeEmpty = true, want false")
	}
	if cfg.Markdown {
		t.Errorf("Markdown = true, want false")
	}
	if cfg.Shell.SyntaxCheck {
		t.Errorf("Shell.SyntaxCheck = true, want false")
	}
	if !cfg.ShellOptions().NoSyntaxCheck {
		t.Errorf("ShellOptions().NoSyntaxCheck = false, want true")
	}
}

// TestLoadConfigFileNotExists tests fallback to defaults when file doesn't exist
func TestLoadConfigFileNotExists(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("LoadConfig() should not error on missing file, got: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("LoadConfig() = %+v, want defaults", cfg)
	}
}

// TestLoadConfigMalformed tests error reporting for invalid files
func TestLoadConfigMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid yaml", "verbose: [unclosed\n"},
		{"invalid timeout", "timeout: soon\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, tt.content)); err == nil {
				t.Errorf("LoadConfig() expected error for %q", tt.content)
			}
		})
	}
}

// TestMergeWithFlags tests that set flags override the file
func TestMergeWithFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Languages = []string{"go"}
	cfg.MaxConcurrency = 2

	verbose := true
	langs := []string{"sh", "cmd"}
	level := "trace"
	timeout := time.Minute
	cfg.MergeWithFlags(&verbose, nil, &langs, &level, nil, &timeout, nil, nil)

	if !cfg.Verbose {
		t.Errorf("Verbose = false, want true")
	}
	if !reflect.DeepEqual(cfg.Languages, langs) {
		t.Errorf("Languages = %v, want %v", cfg.Languages, langs)
	}
	if cfg.LogLevel != "trace" {
		t.Errorf("LogLevel = %q, want trace", cfg.LogLevel)
	}
	if cfg.MaxConcurrency != 2 {
		t.Errorf("MaxConcurrency = %d, want 2 (unset flag)", cfg.MaxConcurrency)
	}
	if cfg.Timeout != time.Minute {
		t.Errorf("Timeout = %v, want 1m", cfg.Timeout)
	}
}

// TestValidate tests rejection of invalid values
func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"negative concurrency", func(c *Config) { c.MaxConcurrency = -1 }},
		{"unknown level", func(c *Config) { c.LogLevel = "loud" }},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }},
		{"unknown flag", func(c *Config) { c.OptionFlags = []string{"ELLIPSIS", "NOPE"} }},
		{"unknown signal", func(c *Config) { c.Shell.Signal = "smoke" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(flags.Default()); err == nil {
				t.Errorf("Validate() expected error")
			}
		})
	}
}

// TestFindConfig tests discovery in parent directories
func TestFindConfig(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, ConfigDir), 0755); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(root, ConfigDir, ConfigFile)
	if err := os.WriteFile(want, []byte("verbose: true\n"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := FindConfig(nested)
	if err != nil {
		t.Fatalf("FindConfig() error = %v", err)
	}
	if got != want {
		t.Errorf("FindConfig() = %q, want %q", got, want)
	}

	cfg, path, err := Discover(nested)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if path != want || !cfg.Verbose {
		t.Errorf("Discover() = %+v, %q", cfg, path)
	}

	cfg, err = LoadConfigFromDir(root)
	if err != nil || !cfg.Verbose {
		t.Errorf("LoadConfigFromDir() = %+v, %v", cfg, err)
	}
}
