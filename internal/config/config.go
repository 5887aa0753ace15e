// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for rookie.
//
// Configuration is read from ~/.rookie/config.toml with sensible defaults
// and environment variable overrides applied on top.
package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/rookie-ai/rookie-tui/internal/lang"
	"github.com/rookie-ai/rookie-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete rookie configuration.
type Config struct {
	// LLM provider configuration
	LLM LLMConfig `toml:"llm"`

	// Backend (auth, profiles, notifications) configuration
	Backend BackendConfig `toml:"backend"`

	// Inbox configuration
	Inbox InboxConfig `toml:"inbox"`

	// Storage configuration
	Storage StorageConfig `toml:"storage"`

	// UI configuration
	UI UIConfig `toml:"ui"`
}

// LLMConfig contains chat completion provider configuration.
type LLMConfig struct {
	// BaseURL is the OpenAI-compatible API base URL.
	BaseURL string `toml:"base_url"`
	// APIKey is the provider API key.
	APIKey string `toml:"api_key"`
	// Model is the chat completion model identifier.
	Model string `toml:"model"`
}

// BackendConfig contains the hosted backend configuration.
type BackendConfig struct {
	// URL is the backend project base URL.
	URL string `toml:"url"`
	// AnonKey is the public API key sent with every backend request.
	AnonKey string `toml:"anon_key"`
	// Email and Password are optional sign-in credentials. When both are
	// set, the app signs in at startup instead of starting locally.
	Email    string `toml:"email"`
	Password string `toml:"password"`
}

// InboxConfig contains notification inbox configuration.
type InboxConfig struct {
	// AlertsFile is an optional local JSON file whose entries are merged
	// into the notification feed. Empty disables the file source.
	AlertsFile string `toml:"alerts_file"`
}

// StorageConfig contains local persistence configuration.
type StorageConfig struct {
	// DBPath is the path to the local key-value database
	// (empty = default ~/.rookie/rookie.db).
	DBPath string `toml:"db_path"`
}

// UIConfig contains user interface configuration.
type UIConfig struct {
	// Theme is the initial color theme: "dark" or "light".
	// Overridden by the persisted theme once one has been saved.
	Theme string `toml:"theme"`
	// Language is the initial chat language code.
	Language string `toml:"language"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a configuration with default values.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			BaseURL: "https://api.groq.com/openai/v1",
			Model:   "llama-3.3-70b-versatile",
		},
		Backend: BackendConfig{},
		Inbox:   InboxConfig{},
		Storage: StorageConfig{},
		UI: UIConfig{
			Theme:    "dark",
			Language: lang.DefaultCode,
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the rookie configuration directory (~/.rookie).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".rookie"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DefaultDBPath returns the default local database path.
func DefaultDBPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "rookie.db"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ensureSecurePermissions checks and fixes permissions on the config file.
// The file holds API keys and must be owner read/write only.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load loads configuration from ~/.rookie/config.toml on top of defaults.
// A missing file is seeded with the defaults so the user has something to
// edit. Environment overrides are applied last and are never written back.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadTOML(cfg, path); err != nil {
				return nil, fmt.Errorf("failed to load config: %w", err)
			}
		} else if os.IsNotExist(statErr) {
			if err := EnsureConfigDir(); err == nil {
				if err := Save(cfg); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: could not write default config: %v\n", err)
				}
			}
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file into cfg.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file path with full
// defaults, env overrides, and validation applied.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to the default TOML path.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration to a TOML file with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# rookie configuration file")
	fmt.Fprintln(&buf, "# Generated by rookie - edit with care")
	fmt.Fprintln(&buf, "")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
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
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.LLM.BaseURL != "" {
		if u, err := url.Parse(c.LLM.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "llm.base_url",
				Message: fmt.Sprintf("invalid URL '%s'", c.LLM.BaseURL),
			})
		}
	}

	if c.Backend.URL != "" {
		if u, err := url.Parse(c.Backend.URL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "backend.url",
				Message: fmt.Sprintf("invalid URL '%s'", c.Backend.URL),
			})
		}
	}

	if theme := strings.ToLower(c.UI.Theme); theme != "dark" && theme != "light" {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light", c.UI.Theme),
		})
	}

	if !lang.IsSupported(c.UI.Language) {
		errs = append(errs, ValidationError{
			Field:   "ui.language",
			Message: fmt.Sprintf("unsupported language code '%s'", c.UI.Language),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills in zero values with defaults.
func (c *Config) SetDefaults() {
	def := Default()
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = def.LLM.BaseURL
	}
	if c.LLM.Model == "" {
		c.LLM.Model = def.LLM.Model
	}
	if c.UI.Theme == "" {
		c.UI.Theme = def.UI.Theme
	}
	if c.UI.Language == "" {
		c.UI.Language = def.UI.Language
	}
	if c.Storage.DBPath == "" {
		if path, err := DefaultDBPath(); err == nil {
			c.Storage.DBPath = path
		}
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
func (c *Config) ApplyEnvOverrides() {
	// GROQ_API_KEY / ROOKIE_LLM_KEY
	if key := os.Getenv("GROQ_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
	if key := os.Getenv("ROOKIE_LLM_KEY"); key != "" {
		c.LLM.APIKey = key
	}

	// ROOKIE_LLM_URL
	if u := os.Getenv("ROOKIE_LLM_URL"); u != "" {
		c.LLM.BaseURL = u
	}

	// ROOKIE_MODEL
	if model := os.Getenv("ROOKIE_MODEL"); model != "" {
		c.LLM.Model = model
	}

	// SUPABASE_URL / SUPABASE_ANON_KEY
	if u := os.Getenv("SUPABASE_URL"); u != "" {
		c.Backend.URL = u
	}
	if key := os.Getenv("SUPABASE_ANON_KEY"); key != "" {
		c.Backend.AnonKey = key
	}

	// ROOKIE_EMAIL / ROOKIE_PASSWORD
	if email := os.Getenv("ROOKIE_EMAIL"); email != "" {
		c.Backend.Email = email
	}
	if password := os.Getenv("ROOKIE_PASSWORD"); password != "" {
		c.Backend.Password = password
	}

	// ROOKIE_ALERTS_FILE
	if path := os.Getenv("ROOKIE_ALERTS_FILE"); path != "" {
		c.Inbox.AlertsFile = path
	}

	// ROOKIE_DB
	if path := os.Getenv("ROOKIE_DB"); path != "" {
		c.Storage.DBPath = path
	}

	// ROOKIE_THEME
	if theme := os.Getenv("ROOKIE_THEME"); theme != "" {
		c.UI.Theme = theme
	}

	// ROOKIE_LANGUAGE
	if code := os.Getenv("ROOKIE_LANGUAGE"); code != "" {
		c.UI.Language = code
	}
}
