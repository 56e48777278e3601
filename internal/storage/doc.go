// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists chat transcripts as JSON files under the
// agentchat data directory, one file per transcript. Writes are atomic so
// a crash cannot corrupt a saved transcript.
package storage
