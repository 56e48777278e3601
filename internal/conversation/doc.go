// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation holds the append-only transcript of a chat and the
// per-entry feedback state (like, dislike, copied).
//
// Entries are never edited or removed once appended. Feedback is tracked by
// entry index; like and dislike are mutually exclusive toggles, and the
// copied flag clears itself after a short delay so the UI can flash a
// confirmation.
package conversation
