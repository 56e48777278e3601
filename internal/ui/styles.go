// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui provides the terminal chat widget built on Bubble Tea.
//
// This file defines the visual styling. All colors use Lip Gloss
// AdaptiveColor for automatic light/dark detection.
package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// =============================================================================
// PALETTE
// =============================================================================

// Cyan - brand color, user highlights
var Cyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// Purple - agent replies, selections
var Purple = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}

// Emerald - success states, feedback markers
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// Rose - errors
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Amber - warnings, pending states
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// Text colors
var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}
var TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A6ADC8"}
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}

// Overlay - borders, separators
var Overlay = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#313244"}

// =============================================================================
// STYLES
// =============================================================================

// Styles holds the pre-built Lip Gloss styles for the chat widget.
type Styles struct {
	Header     lipgloss.Style
	UserLabel  lipgloss.Style
	AgentLabel lipgloss.Style
	ErrorText  lipgloss.Style

	Feedback       lipgloss.Style
	FeedbackActive lipgloss.Style

	Pill     lipgloss.Style
	PillHint lipgloss.Style

	InputPrompt lipgloss.Style
	Spinner     lipgloss.Style

	Status    lipgloss.Style
	StatusKey lipgloss.Style
}

// NewStyles builds the widget styles.
func NewStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Foreground(Cyan).
			Bold(true),
		UserLabel: lipgloss.NewStyle().
			Foreground(Cyan).
			Bold(true),
		AgentLabel: lipgloss.NewStyle().
			Foreground(Purple).
			Bold(true),
		ErrorText: lipgloss.NewStyle().
			Foreground(Rose),

		Feedback: lipgloss.NewStyle().
			Foreground(TextMuted),
		FeedbackActive: lipgloss.NewStyle().
			Foreground(Emerald).
			Bold(true),

		Pill: lipgloss.NewStyle().
			Foreground(TextPrimary).
			Background(Overlay).
			Padding(0, 1),
		PillHint: lipgloss.NewStyle().
			Foreground(TextMuted),

		InputPrompt: lipgloss.NewStyle().
			Foreground(Cyan),
		Spinner: lipgloss.NewStyle().
			Foreground(Purple),

		Status: lipgloss.NewStyle().
			Foreground(TextSecondary),
		StatusKey: lipgloss.NewStyle().
			Foreground(TextMuted),
	}
}

// ApplyTheme forces light or dark rendering when the configured theme is
// not "auto". Auto defers to the terminal's reported background.
func ApplyTheme(theme string) {
	switch theme {
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	case "light":
		lipgloss.SetHasDarkBackground(false)
	default:
		lipgloss.SetHasDarkBackground(termenv.HasDarkBackground())
	}
}
