// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server provides the reference agent proxy: the HTTP endpoint the
// chat widget talks to.
//
// Endpoints:
//   - POST /api/agent - one chat exchange (envelope in, reply out)
//   - GET  /health    - health check
//   - GET  /stats     - usage statistics
//
// With an upstream configured, envelopes are forwarded as-is and the
// upstream reply is relayed. Without one, the server runs in echo mode and
// answers from the envelope itself, which is enough to exercise the widget
// end to end.
package server
