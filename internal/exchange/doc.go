// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package exchange orchestrates one request/response cycle with the agent
// proxy: validate the input, append the user turn, send the envelope, and
// append the agent's reply.
//
// Failures never escape as errors to the caller. Transport and decode
// failures are converted into an agent-authored "Error: ..." turn, and a
// success without usable content becomes a fixed fallback message. The
// controller allows one in-flight exchange at a time.
package exchange
