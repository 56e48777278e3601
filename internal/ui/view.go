// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui provides the terminal chat widget built on Bubble Tea.
package ui

import (
	"strconv"
	"strings"

	"github.com/jeranaias/agentchat/internal/conversation"
	"github.com/jeranaias/agentchat/internal/exchange"
)

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder

	b.WriteString(m.styles.Header.Render("agentchat"))
	b.WriteString("\n\n")

	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.conv.Len() == 0 && len(m.prompts) > 0 {
		b.WriteString(m.renderPills())
		b.WriteString("\n\n")
	}

	if m.sending {
		b.WriteString(m.spin.View())
		b.WriteString(" waiting for the agent...")
	} else {
		b.WriteString(m.input.View())
	}
	b.WriteString("\n")

	b.WriteString(m.renderStatus())

	return b.String()
}

// renderTranscript renders the conversation for the viewport.
func (m Model) renderTranscript() string {
	entries := m.conv.Entries()
	if len(entries) == 0 {
		return m.styles.PillHint.Render("No messages yet. Say hello, or pick a suggestion below.")
	}

	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}

		switch e.Role {
		case conversation.RoleUser:
			b.WriteString(m.styles.UserLabel.Render("You"))
			b.WriteString("\n")
			b.WriteString(e.Content)
		case conversation.RoleAgent:
			b.WriteString(m.styles.AgentLabel.Render("Agent"))
			if badge := feedbackBadge(m.conv.FeedbackFor(i)); badge != "" {
				b.WriteString(" ")
				b.WriteString(m.styles.FeedbackActive.Render(badge))
			}
			b.WriteString("\n")
			b.WriteString(m.renderAgentContent(e.Content))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderAgentContent formats one agent reply. Error entries stay plain so
// the error text is not mangled by the markdown renderer.
func (m Model) renderAgentContent(content string) string {
	if strings.HasPrefix(content, exchange.ErrorPrefix) {
		return m.styles.ErrorText.Render(content)
	}
	if m.renderer != nil {
		return strings.TrimRight(m.renderer.Render(content), "\n")
	}
	return content
}

// renderPills renders the suggested prompt row shown on an empty chat.
func (m Model) renderPills() string {
	var parts []string
	for i, p := range m.prompts {
		if i >= 9 {
			break
		}
		parts = append(parts, m.styles.Pill.Render(strconv.Itoa(i+1)+" "+p.Title))
	}
	return strings.Join(parts, " ")
}

// renderStatus renders the status bar: transient status first, key hints
// otherwise.
func (m Model) renderStatus() string {
	if m.statusMsg != "" {
		return m.styles.Status.Render(m.statusMsg)
	}

	var hints []string
	for _, b := range m.keyMap.ShortHelp() {
		h := b.Help()
		hints = append(hints, h.Key+" "+h.Desc)
	}
	return m.styles.StatusKey.Render(strings.Join(hints, "  "))
}

// feedbackBadge summarizes the feedback flags on an agent turn.
func feedbackBadge(fb conversation.Feedback) string {
	var parts []string
	if fb.Liked {
		parts = append(parts, "liked")
	}
	if fb.Disliked {
		parts = append(parts, "disliked")
	}
	if fb.Copied {
		parts = append(parts, "copied")
	}
	if len(parts) == 0 {
		return ""
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
