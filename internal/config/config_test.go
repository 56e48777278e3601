// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// =============================================================================
// DEFAULT TESTS
// =============================================================================

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default() config fails validation: %v", err)
	}
}

func TestDefault_Values(t *testing.T) {
	cfg := Default()

	if cfg.Agent.Endpoint == "" {
		t.Error("default agent endpoint is empty")
	}
	if cfg.Agent.TimeoutSecs != 0 {
		t.Errorf("default timeout = %d, want 0 (no timeout)", cfg.Agent.TimeoutSecs)
	}
	if cfg.Widget.CopiedResetMillis != 1200 {
		t.Errorf("default copied reset = %d, want 1200", cfg.Widget.CopiedResetMillis)
	}
	if len(cfg.Widget.Prompts) == 0 {
		t.Error("default config has no prompt pills")
	}
}

// =============================================================================
// FILL DEFAULTS TESTS
// =============================================================================

func TestFillDefaults(t *testing.T) {
	cfg := &Config{}
	if err := fillDefaults(cfg); err != nil {
		t.Fatalf("fillDefaults() error: %v", err)
	}

	defaults := Default()
	if cfg.Agent.Endpoint != defaults.Agent.Endpoint {
		t.Errorf("endpoint = %q, want default", cfg.Agent.Endpoint)
	}
	if cfg.Widget.Placeholder != defaults.Widget.Placeholder {
		t.Errorf("placeholder = %q, want default", cfg.Widget.Placeholder)
	}
	if cfg.Server.Listen != defaults.Server.Listen {
		t.Errorf("listen = %q, want default", cfg.Server.Listen)
	}
	if cfg.UI.Theme != defaults.UI.Theme {
		t.Errorf("theme = %q, want default", cfg.UI.Theme)
	}
}

func TestFillDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Agent.Endpoint = "https://example.com/chat"
	cfg.Widget.Prompts = []PromptConfig{}

	if err := fillDefaults(cfg); err != nil {
		t.Fatal(err)
	}

	if cfg.Agent.Endpoint != "https://example.com/chat" {
		t.Errorf("explicit endpoint overwritten: %q", cfg.Agent.Endpoint)
	}
	// An explicit empty prompt list disables the pills; only nil gets
	// the defaults.
	if len(cfg.Widget.Prompts) != 0 {
		t.Errorf("explicit empty prompts replaced with %d defaults", len(cfg.Widget.Prompts))
	}
}

// =============================================================================
// VALIDATION TESTS
// =============================================================================

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad endpoint scheme",
			mutate:  func(c *Config) { c.Agent.Endpoint = "ftp://example.com" },
			wantErr: "agent.endpoint",
		},
		{
			name:    "relative endpoint",
			mutate:  func(c *Config) { c.Agent.Endpoint = "/api/agent" },
			wantErr: "agent.endpoint",
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.Agent.TimeoutSecs = -1 },
			wantErr: "agent.timeout_secs",
		},
		{
			name:    "blank prompt title",
			mutate:  func(c *Config) { c.Widget.Prompts = []PromptConfig{{Title: " ", Message: "hi"}} },
			wantErr: "widget.prompts[0]",
		},
		{
			name:    "bad upstream",
			mutate:  func(c *Config) { c.Server.Upstream = "not a url" },
			wantErr: "server.upstream",
		},
		{
			name:    "bad theme",
			mutate:  func(c *Config) { c.UI.Theme = "neon" },
			wantErr: "ui.theme",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() passed, want error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q does not mention %q", err.Error(), tc.wantErr)
			}
		})
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDE TESTS
// =============================================================================

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("AGENTCHAT_ENDPOINT", "https://proxy.example.com/api/agent")
	t.Setenv("AGENTCHAT_TIMEOUT_SECS", "30")
	t.Setenv("AGENTCHAT_THEME", "light")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Agent.Endpoint != "https://proxy.example.com/api/agent" {
		t.Errorf("endpoint = %q", cfg.Agent.Endpoint)
	}
	if cfg.Agent.TimeoutSecs != 30 {
		t.Errorf("timeout = %d, want 30", cfg.Agent.TimeoutSecs)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("theme = %q", cfg.UI.Theme)
	}
}

func TestApplyEnvOverrides_IgnoresInvalidInt(t *testing.T) {
	t.Setenv("AGENTCHAT_TIMEOUT_SECS", "soon")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Agent.TimeoutSecs != 0 {
		t.Errorf("timeout = %d, want unchanged 0", cfg.Agent.TimeoutSecs)
	}
}

// =============================================================================
// SAVE / LOAD TESTS
// =============================================================================

func TestSaveTOML_LoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Agent.Endpoint = "https://proxy.example.com/api/agent"
	cfg.Widget.Placeholder = "Type here"
	cfg.Widget.Prompts = []PromptConfig{{Title: "Hi", Message: "Say hi"}}

	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML() error: %v", err)
	}

	// 0600 permissions on the saved file.
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file permissions = %o, want 0600", perm)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if loaded.Agent.Endpoint != cfg.Agent.Endpoint {
		t.Errorf("endpoint = %q, want %q", loaded.Agent.Endpoint, cfg.Agent.Endpoint)
	}
	if loaded.Widget.Placeholder != "Type here" {
		t.Errorf("placeholder = %q", loaded.Widget.Placeholder)
	}
	if len(loaded.Widget.Prompts) != 1 || loaded.Widget.Prompts[0].Title != "Hi" {
		t.Errorf("prompts = %+v", loaded.Widget.Prompts)
	}
}

func TestSaveJSON_LoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := Default()
	cfg.Server.Upstream = "https://upstream.example.com"

	if err := SaveJSON(cfg, path); err != nil {
		t.Fatalf("SaveJSON() error: %v", err)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if loaded.Server.Upstream != cfg.Server.Upstream {
		t.Errorf("upstream = %q, want %q", loaded.Server.Upstream, cfg.Server.Upstream)
	}
}

func TestLoadFromPath_InvalidConfigRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := "[ui]\ntheme = \"neon\"\n"
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFromPath(path); err == nil {
		t.Error("LoadFromPath() accepted an invalid theme")
	}
}

// =============================================================================
// WATCHER TESTS
// =============================================================================

func TestWatcher_ReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := SaveTOML(Default(), path); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan *Config, 1)
	w, err := NewWatcher(path, 50*time.Millisecond, func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})
	if err != nil {
		t.Fatalf("NewWatcher() error: %v", err)
	}
	defer w.Close()

	if err := w.Watch(); err != nil {
		t.Fatalf("Watch() error: %v", err)
	}

	updated := Default()
	updated.Widget.Placeholder = "Changed"
	if err := SaveTOML(updated, path); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Widget.Placeholder != "Changed" {
			t.Errorf("reloaded placeholder = %q", cfg.Widget.Placeholder)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("watcher never reloaded the config")
	}
}

// =============================================================================
// DERIVED VALUE TESTS
// =============================================================================

func TestDurationHelpers(t *testing.T) {
	cfg := Default()
	cfg.Agent.TimeoutSecs = 45
	cfg.Widget.CopiedResetMillis = 500

	if got := cfg.AgentTimeout(); got != 45*time.Second {
		t.Errorf("AgentTimeout() = %v", got)
	}
	if got := cfg.CopiedResetDelay(); got != 500*time.Millisecond {
		t.Errorf("CopiedResetDelay() = %v", got)
	}
}
