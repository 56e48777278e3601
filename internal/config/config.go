// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/jeranaias/agentchat/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete agentchat configuration.
type Config struct {
	// General settings
	Version string `toml:"version" json:"version"`

	// Agent proxy client configuration
	Agent AgentConfig `toml:"agent" json:"agent"`

	// Chat widget configuration
	Widget WidgetConfig `toml:"widget" json:"widget"`

	// Reference proxy server configuration
	Server ServerConfig `toml:"server" json:"server"`

	// Identity persistence configuration
	Identity IdentityConfig `toml:"identity" json:"identity"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`
}

// AgentConfig contains agent proxy client configuration.
type AgentConfig struct {
	// Endpoint is the full URL of the agent chat endpoint
	Endpoint string `toml:"endpoint" json:"endpoint"`
	// TimeoutSecs is the client timeout in seconds (0 = no timeout)
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
}

// WidgetConfig contains chat widget behavior configuration.
type WidgetConfig struct {
	// Placeholder is the input prompt shown when the field is empty
	Placeholder string `toml:"placeholder" json:"placeholder"`
	// MaxHistoryHeight caps the rendered transcript height in rows
	MaxHistoryHeight int `toml:"max_history_height" json:"max_history_height"`
	// CopiedResetMillis is how long the copied confirmation stays visible
	CopiedResetMillis int `toml:"copied_reset_millis" json:"copied_reset_millis"`
	// Prompts are the suggestion pills shown above the input
	Prompts []PromptConfig `toml:"prompts" json:"prompts"`
}

// PromptConfig is one suggestion pill: a short title shown in the UI and
// the full message submitted when picked.
type PromptConfig struct {
	Title   string `toml:"title" json:"title"`
	Message string `toml:"message" json:"message"`
}

// ServerConfig contains the reference proxy server configuration.
type ServerConfig struct {
	// Listen is the address the proxy binds to
	Listen string `toml:"listen" json:"listen"`
	// Upstream is the URL requests are forwarded to (empty = echo mode)
	Upstream string `toml:"upstream" json:"upstream"`
	// RateLimit is requests per second allowed per client IP
	RateLimit float64 `toml:"rate_limit" json:"rate_limit"`
	// RateBurst is the per-IP burst allowance
	RateBurst int `toml:"rate_burst" json:"rate_burst"`
	// MaxBodyBytes caps the accepted request body size
	MaxBodyBytes int64 `toml:"max_body_bytes" json:"max_body_bytes"`
}

// IdentityConfig contains identity persistence configuration.
type IdentityConfig struct {
	// DatabasePath is the SQLite file holding the device identifier
	// (empty = default ~/.agentchat/identity.db)
	DatabasePath string `toml:"database_path" json:"database_path"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// Markdown renders agent replies as markdown when true
	Markdown bool `toml:"markdown" json:"markdown"`
	// CompactMode uses a more compact UI layout
	CompactMode bool `toml:"compact_mode" json:"compact_mode"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Agent: AgentConfig{
			Endpoint:    "http://127.0.0.1:8420/api/agent",
			TimeoutSecs: 0, // no client-side timeout
		},

		Widget: WidgetConfig{
			Placeholder:       "Ask me anything...",
			MaxHistoryHeight:  20,
			CopiedResetMillis: 1200,
			Prompts: []PromptConfig{
				{Title: "Getting started", Message: "How do I get started?"},
				{Title: "Capabilities", Message: "What can you help me with?"},
			},
		},

		Server: ServerConfig{
			Listen:       "127.0.0.1:8420",
			Upstream:     "",
			RateLimit:    5,
			RateBurst:    10,
			MaxBodyBytes: 1 << 20, // 1 MiB
		},

		Identity: IdentityConfig{
			DatabasePath: "",
		},

		UI: UIConfig{
			Theme:       "dark",
			Markdown:    true,
			CompactMode: false,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the agentchat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".agentchat"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// IdentityDBPath returns the SQLite path for the device identifier,
// honoring the configured override.
func (c *Config) IdentityDBPath() (string, error) {
	if c.Identity.DatabasePath != "" {
		return c.Identity.DatabasePath, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "identity.db"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ensureSecurePermissions checks and fixes permissions on config files.
// Config files should be 0600 (owner read/write only).
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	mode := info.Mode().Perm()
	if mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}

	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	// Try TOML first
	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			} else {
				cfg.ApplyEnvOverrides()
				if err := cfg.Validate(); err != nil {
					return nil, fmt.Errorf("invalid config: %w", err)
				}
				return cfg, nil
			}
		}
	}

	// Try JSON as fallback
	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = fmt.Errorf("failed to load JSON config: %w", err)
			} else {
				cfg.ApplyEnvOverrides()
				if err := cfg.Validate(); err != nil {
					return nil, fmt.Errorf("invalid config: %w", err)
				}
				return cfg, nil
			}
		}
	}

	// Apply environment overrides to defaults
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// Return defaults (with any load error for informational purposes)
	return cfg, loadErr
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		// Permissions might not be fixable on all systems
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	_, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadJSON loads configuration from a JSON file.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadFromPath loads configuration from a specific file path with full
// validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := &Config{}

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		// Default to TOML
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) error {
	defaults := Default()

	// General
	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}

	// Agent
	if cfg.Agent.Endpoint == "" {
		cfg.Agent.Endpoint = defaults.Agent.Endpoint
	}

	// Widget
	if cfg.Widget.Placeholder == "" {
		cfg.Widget.Placeholder = defaults.Widget.Placeholder
	}
	if cfg.Widget.MaxHistoryHeight == 0 {
		cfg.Widget.MaxHistoryHeight = defaults.Widget.MaxHistoryHeight
	}
	if cfg.Widget.CopiedResetMillis == 0 {
		cfg.Widget.CopiedResetMillis = defaults.Widget.CopiedResetMillis
	}
	if cfg.Widget.Prompts == nil {
		cfg.Widget.Prompts = defaults.Widget.Prompts
	}

	// Server
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = defaults.Server.Listen
	}
	if cfg.Server.RateLimit == 0 {
		cfg.Server.RateLimit = defaults.Server.RateLimit
	}
	if cfg.Server.RateBurst == 0 {
		cfg.Server.RateBurst = defaults.Server.RateBurst
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = defaults.Server.MaxBodyBytes
	}

	// UI
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}

	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	// Ensure permissions are correct even if the file already existed
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	// Write header comment
	fmt.Fprintln(file, "# agentchat configuration file")
	fmt.Fprintln(file, "# Generated by agentchat - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// SaveJSON saves the configuration to a JSON file. The write is atomic so
// a crash cannot leave a truncated config behind.
func SaveJSON(cfg *Config, path string) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
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

	// Agent endpoint must be an absolute http(s) URL.
	if c.Agent.Endpoint != "" {
		u, err := url.Parse(c.Agent.Endpoint)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "agent.endpoint",
				Message: fmt.Sprintf("invalid URL '%s'", c.Agent.Endpoint),
			})
		} else if u.Scheme != "http" && u.Scheme != "https" {
			errs = append(errs, ValidationError{
				Field:   "agent.endpoint",
				Message: fmt.Sprintf("unsupported scheme '%s', must be http or https", u.Scheme),
			})
		}
	}

	if c.Agent.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{
			Field:   "agent.timeout_secs",
			Message: "cannot be negative",
		})
	}

	if c.Widget.MaxHistoryHeight < 0 {
		errs = append(errs, ValidationError{
			Field:   "widget.max_history_height",
			Message: "cannot be negative",
		})
	}
	if c.Widget.CopiedResetMillis < 0 {
		errs = append(errs, ValidationError{
			Field:   "widget.copied_reset_millis",
			Message: "cannot be negative",
		})
	}

	// Prompt pills need both halves to be usable.
	for i, p := range c.Widget.Prompts {
		if strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.Message) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("widget.prompts[%d]", i),
				Message: "title and message must both be non-empty",
			})
		}
	}

	if c.Server.Upstream != "" {
		u, err := url.Parse(c.Server.Upstream)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "server.upstream",
				Message: fmt.Sprintf("invalid URL '%s'", c.Server.Upstream),
			})
		}
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, ValidationError{
			Field:   "server.rate_limit",
			Message: "cannot be negative",
		})
	}
	if c.Server.MaxBodyBytes < 0 {
		errs = append(errs, ValidationError{
			Field:   "server.max_body_bytes",
			Message: "cannot be negative",
		})
	}

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies AGENTCHAT_* environment variables on top of
// the loaded configuration.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("AGENTCHAT_ENDPOINT"); v != "" {
		c.Agent.Endpoint = v
	}
	if v := os.Getenv("AGENTCHAT_TIMEOUT_SECS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.Agent.TimeoutSecs = secs
		}
	}
	if v := os.Getenv("AGENTCHAT_LISTEN"); v != "" {
		c.Server.Listen = v
	}
	if v := os.Getenv("AGENTCHAT_UPSTREAM"); v != "" {
		c.Server.Upstream = v
	}
	if v := os.Getenv("AGENTCHAT_IDENTITY_DB"); v != "" {
		c.Identity.DatabasePath = v
	}
	if v := os.Getenv("AGENTCHAT_THEME"); v != "" {
		c.UI.Theme = v
	}
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// AgentTimeout converts the configured timeout to a duration.
func (c *Config) AgentTimeout() time.Duration {
	return time.Duration(c.Agent.TimeoutSecs) * time.Second
}

// CopiedResetDelay converts the configured copied reset to a duration.
func (c *Config) CopiedResetDelay() time.Duration {
	return time.Duration(c.Widget.CopiedResetMillis) * time.Millisecond
}
