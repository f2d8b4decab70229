// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/codequill/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete codequill configuration.
type Config struct {
	Version string `toml:"version"`

	// Generation client configuration
	Gemini GeminiConfig `toml:"gemini"`

	// Context collection limits
	Limits LimitsConfig `toml:"limits"`

	// Output rendering configuration
	UI UIConfig `toml:"ui"`
}

// GeminiConfig contains generation client configuration.
type GeminiConfig struct {
	// BaseURL is the API endpoint base (no trailing slash)
	BaseURL string `toml:"base_url"`
	// TimeoutSecs is the per-request timeout in seconds
	TimeoutSecs int `toml:"timeout_secs"`
	// MaxAttempts is the total attempt count for transient failures.
	// 3 means one call plus two retries.
	MaxAttempts int `toml:"max_attempts"`
	// RetryBackoffMs is the fixed delay between attempts in milliseconds
	RetryBackoffMs int `toml:"retry_backoff_ms"`
	// RequestsPerMinute paces outgoing requests (0 = unpaced)
	RequestsPerMinute int `toml:"requests_per_minute"`
}

// LimitsConfig contains context collection limits.
type LimitsConfig struct {
	// DiffBudgetChars caps diff text sent to the model; longer diffs
	// are truncated with a marker and flagged in the result metadata.
	DiffBudgetChars int `toml:"diff_budget_chars"`
	// FileMaxBytes caps file reads for /explain
	FileMaxBytes int64 `toml:"file_max_bytes"`
	// TreeMaxDepth caps directory tree traversal depth
	TreeMaxDepth int `toml:"tree_max_depth"`
	// TreeMaxFiles caps entries listed in a tree summary
	TreeMaxFiles int `toml:"tree_max_files"`
	// GitTimeoutSecs bounds external git invocations
	GitTimeoutSecs int `toml:"git_timeout_secs"`
}

// UIConfig contains output rendering configuration.
type UIConfig struct {
	// WordWrap is the markdown render width
	WordWrap int `toml:"word_wrap"`
	// Color enables styled output (still subject to TTY detection)
	Color bool `toml:"color"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",
		Gemini: GeminiConfig{
			BaseURL:           "https://generativelanguage.googleapis.com/v1beta",
			TimeoutSecs:       60,
			MaxAttempts:       3,
			RetryBackoffMs:    500,
			RequestsPerMinute: 30,
		},
		Limits: LimitsConfig{
			DiffBudgetChars: 20000,
			FileMaxBytes:    100 * 1024,
			TreeMaxDepth:    5,
			TreeMaxFiles:    200,
			GitTimeoutSecs:  10,
		},
		UI: UIConfig{
			WordWrap: 100,
			Color:    true,
		},
	}
}

// =============================================================================
// PATH HELPERS
// =============================================================================

// Dir returns the codequill configuration directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".codequill"), nil
}

// Path returns the path to the TOML config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureDir ensures the config directory exists.
func EnsureDir() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load loads configuration from the config file, falling back to
// defaults when the file is absent. Environment overrides are applied
// last, before validation.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific file path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, statErr := os.Stat(path); statErr == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to the default config file.
// Uses atomic replace-on-write so a crash never leaves a torn file.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveToPath(cfg, path)
}

// SaveToPath writes the configuration to a specific file path.
func SaveToPath(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# codequill configuration file\n")
	buf.WriteString("# Generated by codequill - edit with care\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides.
//
// Supported variables:
//   - CODEQUILL_BASE_URL: overrides gemini.base_url
//   - CODEQUILL_TIMEOUT_SECS: overrides gemini.timeout_secs
//   - CODEQUILL_DIFF_BUDGET: overrides limits.diff_budget_chars
//   - CODEQUILL_NO_COLOR / NO_COLOR: disables color output
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("CODEQUILL_BASE_URL"); v != "" {
		c.Gemini.BaseURL = v
	}
	if v := os.Getenv("CODEQUILL_TIMEOUT_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Gemini.TimeoutSecs = n
		}
	}
	if v := os.Getenv("CODEQUILL_DIFF_BUDGET"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Limits.DiffBudgetChars = n
		}
	}
	if os.Getenv("CODEQUILL_NO_COLOR") != "" || os.Getenv("NO_COLOR") != "" {
		c.UI.Color = false
	}
}

// SetDefaults fills zero-valued fields with defaults.
func (c *Config) SetDefaults() {
	d := Default()

	if c.Version == "" {
		c.Version = d.Version
	}
	if c.Gemini.BaseURL == "" {
		c.Gemini.BaseURL = d.Gemini.BaseURL
	}
	if c.Gemini.TimeoutSecs == 0 {
		c.Gemini.TimeoutSecs = d.Gemini.TimeoutSecs
	}
	if c.Gemini.MaxAttempts == 0 {
		c.Gemini.MaxAttempts = d.Gemini.MaxAttempts
	}
	if c.Gemini.RetryBackoffMs == 0 {
		c.Gemini.RetryBackoffMs = d.Gemini.RetryBackoffMs
	}
	if c.Limits.DiffBudgetChars == 0 {
		c.Limits.DiffBudgetChars = d.Limits.DiffBudgetChars
	}
	if c.Limits.FileMaxBytes == 0 {
		c.Limits.FileMaxBytes = d.Limits.FileMaxBytes
	}
	if c.Limits.TreeMaxDepth == 0 {
		c.Limits.TreeMaxDepth = d.Limits.TreeMaxDepth
	}
	if c.Limits.TreeMaxFiles == 0 {
		c.Limits.TreeMaxFiles = d.Limits.TreeMaxFiles
	}
	if c.Limits.GitTimeoutSecs == 0 {
		c.Limits.GitTimeoutSecs = d.Limits.GitTimeoutSecs
	}
	if c.UI.WordWrap == 0 {
		c.UI.WordWrap = d.UI.WordWrap
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if _, err := url.Parse(c.Gemini.BaseURL); err != nil {
		errs = append(errs, ValidationError{
			Field:   "gemini.base_url",
			Message: fmt.Sprintf("invalid URL: %v", err),
		})
	}
	if c.Gemini.TimeoutSecs < 1 || c.Gemini.TimeoutSecs > 600 {
		errs = append(errs, ValidationError{
			Field:   "gemini.timeout_secs",
			Message: fmt.Sprintf("must be 1-600, got %d", c.Gemini.TimeoutSecs),
		})
	}
	if c.Gemini.MaxAttempts < 1 || c.Gemini.MaxAttempts > 10 {
		errs = append(errs, ValidationError{
			Field:   "gemini.max_attempts",
			Message: fmt.Sprintf("must be 1-10, got %d", c.Gemini.MaxAttempts),
		})
	}
	if c.Gemini.RequestsPerMinute < 0 {
		errs = append(errs, ValidationError{
			Field:   "gemini.requests_per_minute",
			Message: "cannot be negative",
		})
	}
	if c.Limits.DiffBudgetChars < 1000 {
		errs = append(errs, ValidationError{
			Field:   "limits.diff_budget_chars",
			Message: fmt.Sprintf("must be at least 1000, got %d", c.Limits.DiffBudgetChars),
		})
	}
	if c.Limits.TreeMaxDepth < 1 || c.Limits.TreeMaxDepth > 20 {
		errs = append(errs, ValidationError{
			Field:   "limits.tree_max_depth",
			Message: fmt.Sprintf("must be 1-20, got %d", c.Limits.TreeMaxDepth),
		})
	}
	if c.Limits.GitTimeoutSecs < 1 {
		errs = append(errs, ValidationError{
			Field:   "limits.git_timeout_secs",
			Message: "must be at least 1",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
