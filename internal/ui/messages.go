// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui provides the terminal chat widget built on Bubble Tea.
//
// This file defines the Bubble Tea messages and the commands that produce
// them. Exchanges run inside commands so the update loop never blocks on
// the network.
package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/agentchat/internal/conversation"
	"github.com/jeranaias/agentchat/internal/exchange"
)

// =============================================================================
// MESSAGES
// =============================================================================

// ExchangeDoneMsg signals that a submitted exchange has finished. The
// conversation already holds the reply (or the error entry); Err is only
// non-nil when the submission itself was rejected.
type ExchangeDoneMsg struct {
	Err error
}

// CopyDoneMsg signals that a clipboard copy attempt has finished.
type CopyDoneMsg struct {
	Index int
	Err   error
}

// CopiedExpiredMsg triggers a repaint after the copied indicator reset.
type CopiedExpiredMsg struct{}

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// SubmitCmd creates a command that runs one exchange through the
// controller.
func SubmitCmd(ctrl *exchange.Controller, text string) tea.Cmd {
	return func() tea.Msg {
		err := ctrl.Submit(context.Background(), text)
		return ExchangeDoneMsg{Err: err}
	}
}

// CopyCmd creates a command that copies the entry at index to the system
// clipboard and marks it copied.
func CopyCmd(conv *conversation.Conversation, index int) tea.Cmd {
	return func() tea.Msg {
		err := conv.CopyToClipboard(index)
		return CopyDoneMsg{Index: index, Err: err}
	}
}

// ExpireCopiedCmd schedules a repaint shortly after the copied indicator
// clears itself, so the view picks up the reset.
func ExpireCopiedCmd(delay time.Duration) tea.Cmd {
	if delay <= 0 {
		return nil
	}
	return tea.Tick(delay+50*time.Millisecond, func(time.Time) tea.Msg {
		return CopiedExpiredMsg{}
	})
}
