// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package agent provides the HTTP client for communicating with the
// conversational agent proxy.
//
// The proxy accepts a single POST per exchange: one user message wrapped in
// a stateful, non-streaming envelope together with the session and user
// identifiers. The reply carries the agent's answer in an optional
// output_data.content field.
package agent
