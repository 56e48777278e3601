// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui provides the terminal chat widget built on Bubble Tea.
//
// The widget is a single-view chat surface: a scrollable transcript, a
// one-line input, and a status bar. Suggested prompt pills are shown while
// the conversation is empty, and the last agent reply can be liked,
// disliked, or copied to the clipboard from the keyboard.
//
// All conversation state lives in the exchange controller; the model here
// only holds presentation state (viewport offset, input buffer, spinner).
package ui
