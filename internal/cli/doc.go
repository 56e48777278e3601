// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the agentchat command line: argument parsing,
// the one-shot ask command, the interactive chat REPL, the serve command
// for the reference proxy, and transcript/config management.
package cli
