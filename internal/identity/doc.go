// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package identity derives and persists the two opaque client identifiers
// that correlate chat requests with a session and a device.
//
// A session identifier lives for one run of the program; a user identifier
// persists across runs. Both are generated lazily on first access, written
// back to their storage scope, and regenerated if the stored value is
// missing or malformed.
package identity
