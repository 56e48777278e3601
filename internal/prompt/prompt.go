// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package prompt holds the suggestion pills shown above the chat input:
// short titles that expand into full messages when picked.
package prompt

import (
	"strings"

	"github.com/jeranaias/agentchat/internal/config"
)

// Prompt is one suggestion pill.
type Prompt struct {
	// Title is the short label rendered on the pill.
	Title string
	// Message is the full text submitted when the pill is picked.
	Message string
}

// Defaults returns the built-in suggestion pills.
func Defaults() []Prompt {
	return FromConfig(config.Default().Widget.Prompts)
}

// FromConfig converts configured pills, dropping entries that are unusable.
func FromConfig(configured []config.PromptConfig) []Prompt {
	prompts := make([]Prompt, 0, len(configured))
	for _, p := range configured {
		title := strings.TrimSpace(p.Title)
		message := strings.TrimSpace(p.Message)
		if title == "" || message == "" {
			continue
		}
		prompts = append(prompts, Prompt{Title: title, Message: message})
	}
	return prompts
}

// Match finds the pill whose title the input names, for picking a pill by
// typing its title instead of its number. Only an exact match counts,
// ignoring case and surrounding space; looser input is an ordinary first
// message, not a pick.
func Match(prompts []Prompt, input string) (Prompt, bool) {
	needle := strings.ToLower(strings.TrimSpace(input))
	if needle == "" {
		return Prompt{}, false
	}

	for _, p := range prompts {
		if strings.ToLower(p.Title) == needle {
			return p, true
		}
	}
	return Prompt{}, false
}
