// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// wiring.go - Shared construction of the exchange stack for CLI commands.
package cli

import (
	"fmt"
	"os"

	"github.com/jeranaias/agentchat/internal/agent"
	"github.com/jeranaias/agentchat/internal/config"
	"github.com/jeranaias/agentchat/internal/conversation"
	"github.com/jeranaias/agentchat/internal/exchange"
	"github.com/jeranaias/agentchat/internal/identity"
)

// LoadConfig loads the effective configuration for a command, applying
// the global flag overrides.
func LoadConfig(args Args) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if args.Config != "" {
		cfg, err = config.LoadFromPath(args.Config)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	if args.Endpoint != "" {
		cfg.Agent.Endpoint = args.Endpoint
	}
	return cfg, nil
}

// BuildController wires an exchange controller from the configuration:
// an HTTP agent client, a per-device SQLite identity scope, and a fresh
// in-memory session scope. The returned cleanup closes the device scope.
func BuildController(cfg *config.Config, verbose bool) (*exchange.Controller, func(), error) {
	client := agent.NewClientWithConfig(&agent.ClientConfig{
		Endpoint: cfg.Agent.Endpoint,
		Timeout:  cfg.AgentTimeout(),
	})

	cleanup := func() {}
	var device identity.Scope

	dbPath, err := cfg.IdentityDBPath()
	if err == nil {
		sqlScope, openErr := identity.OpenSQLiteScope(dbPath)
		if openErr == nil {
			device = sqlScope
			cleanup = func() { sqlScope.Close() }
		} else {
			err = openErr
		}
	}
	if device == nil {
		// Identity persistence is best effort; fall back to a fresh
		// in-memory user id rather than refusing to chat.
		if verbose {
			fmt.Fprintf(os.Stderr, "identity store unavailable, using ephemeral ids: %v\n", err)
		}
		device = identity.NewMemoryScope()
	}

	ids := identity.NewStore(identity.NewMemoryScope(), device)
	conv := conversation.New()
	conv.SetCopiedResetDelay(cfg.CopiedResetDelay())
	return exchange.NewController(client, ids, conv), cleanup, nil
}
