// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns agent reply text into terminal output, with
// markdown formatting when a renderer is available.
package render

import (
	"sync"

	"github.com/charmbracelet/glamour"
)

// Renderer renders markdown for terminal display. The zero value renders
// plain text; use NewRenderer for formatted output.
type Renderer struct {
	mu   sync.Mutex
	term *glamour.TermRenderer
	wrap int
}

// NewRenderer creates a renderer wrapping at width columns. If the
// underlying markdown renderer cannot be initialized the Renderer still
// works and passes content through untouched.
func NewRenderer(width int) *Renderer {
	if width <= 0 {
		width = 80
	}

	r := &Renderer{wrap: width}
	term, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err == nil {
		r.term = term
	}
	return r
}

// Render renders markdown content for terminal display.
// Returns the original content if rendering fails or the renderer is
// unavailable.
func (r *Renderer) Render(content string) string {
	if r == nil || r.term == nil {
		return content
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rendered, err := r.term.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// Width returns the wrap width the renderer was created with.
func (r *Renderer) Width() int {
	if r == nil {
		return 0
	}
	return r.wrap
}
