// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui provides the terminal chat widget built on Bubble Tea.
package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/agentchat/internal/config"
	"github.com/jeranaias/agentchat/internal/conversation"
	"github.com/jeranaias/agentchat/internal/exchange"
	"github.com/jeranaias/agentchat/internal/prompt"
	"github.com/jeranaias/agentchat/internal/render"
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat widget.
type Model struct {
	// Styling
	styles Styles
	keyMap KeyMap

	// Dimensions
	width  int
	height int
	ready  bool

	// Conversation wiring
	ctrl    *exchange.Controller
	conv    *conversation.Conversation
	prompts []prompt.Prompt

	// Rendering
	renderer   *render.Renderer
	markdown   bool
	widget     config.WidgetConfig
	resetDelay time.Duration

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spin     spinner.Model

	// Transient state
	sending   bool
	statusMsg string
}

// New creates a chat widget model wired to the given controller.
func New(cfg *config.Config, ctrl *exchange.Controller) Model {
	ApplyTheme(cfg.UI.Theme)
	styles := NewStyles()

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = cfg.Widget.Placeholder
	ti.CharLimit = 4096
	ti.PromptStyle = styles.InputPrompt
	ti.Focus()

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(styles.Spinner),
	)

	return Model{
		styles:     styles,
		keyMap:     DefaultKeyMap(),
		ctrl:       ctrl,
		conv:       ctrl.Conversation(),
		prompts:    prompt.FromConfig(cfg.Widget.Prompts),
		markdown:   cfg.UI.Markdown,
		widget:     cfg.Widget,
		resetDelay: cfg.CopiedResetDelay(),
		input:      ti,
		spin:       sp,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.resize(msg.Width, msg.Height), nil

	case spinner.TickMsg:
		if !m.sending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		// The optimistic user turn appears mid-exchange, so keep the
		// transcript fresh while the spinner runs.
		m.refresh()
		return m, cmd

	case ExchangeDoneMsg:
		m.sending = false
		if msg.Err != nil {
			m.statusMsg = msg.Err.Error()
		}
		m.refresh()
		m.viewport.GotoBottom()
		return m, nil

	case CopyDoneMsg:
		if msg.Err != nil {
			m.statusMsg = "clipboard unavailable"
		} else {
			m.statusMsg = "copied to clipboard"
		}
		m.refresh()
		return m, ExpireCopiedCmd(m.resetDelay)

	case CopiedExpiredMsg:
		m.statusMsg = ""
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// handleKey dispatches a key press.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Submit):
		return m.submit(m.input.Value())

	case key.Matches(msg, m.keyMap.Copy):
		if i := lastAgentIndex(m.conv); i >= 0 {
			return m, CopyCmd(m.conv, i)
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Like):
		if i := lastAgentIndex(m.conv); i >= 0 {
			m.conv.ToggleLike(i)
			m.refresh()
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Dislike):
		if i := lastAgentIndex(m.conv); i >= 0 {
			m.conv.ToggleDislike(i)
			m.refresh()
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Clear):
		m.input.Reset()
		m.statusMsg = ""
		return m, nil

	case key.Matches(msg, m.keyMap.Up):
		m.viewport.LineUp(1)
		return m, nil

	case key.Matches(msg, m.keyMap.Down):
		m.viewport.LineDown(1)
		return m, nil

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.ViewDown()
		return m, nil
	}

	// Digit shortcuts submit a suggested prompt while the chat is empty.
	if m.conv.Len() == 0 && m.input.Value() == "" {
		if p, ok := m.pillForKey(msg.String()); ok {
			return m.submit(p.Message)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit starts an exchange for the given text. Blank input is ignored and
// a second submit while one is in flight only updates the status line.
func (m Model) submit(text string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(text) == "" {
		return m, nil
	}
	if m.sending {
		m.statusMsg = "still waiting on the agent"
		return m, nil
	}

	// While the pills are on screen, typing a pill title picks that pill.
	if m.conv.Len() == 0 {
		if p, ok := prompt.Match(m.prompts, text); ok {
			text = p.Message
		}
	}

	m.sending = true
	m.statusMsg = ""
	m.input.Reset()
	return m, tea.Batch(SubmitCmd(m.ctrl, text), m.spin.Tick)
}

// pillForKey maps a digit key to its suggested prompt.
func (m Model) pillForKey(k string) (prompt.Prompt, bool) {
	if len(k) != 1 || k[0] < '1' || k[0] > '9' {
		return prompt.Prompt{}, false
	}
	i := int(k[0] - '1')
	if i >= len(m.prompts) {
		return prompt.Prompt{}, false
	}
	return m.prompts[i], true
}

// resize recomputes the layout for a new terminal size.
func (m Model) resize(width, height int) Model {
	m.width = width
	m.height = height

	vpHeight := height - chromeHeight(m.conv.Len() == 0 && len(m.prompts) > 0)
	if vpHeight < 1 {
		vpHeight = 1
	}
	if m.widget.MaxHistoryHeight > 0 && vpHeight > m.widget.MaxHistoryHeight {
		vpHeight = m.widget.MaxHistoryHeight
	}

	if !m.ready {
		m.viewport = viewport.New(width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = vpHeight
	}

	wrap := width - 4
	if wrap < 20 {
		wrap = 20
	}
	if m.markdown {
		m.renderer = render.NewRenderer(wrap)
	}
	m.input.Width = width - 4

	m.refresh()
	m.viewport.GotoBottom()
	return m
}

// chromeHeight is the number of rows used around the transcript viewport.
func chromeHeight(showPills bool) int {
	h := 4 // header, blank, input, status
	if showPills {
		h += 2
	}
	return h
}

// refresh rebuilds the viewport content from the conversation.
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderTranscript())
	if atBottom {
		m.viewport.GotoBottom()
	}
}

// lastAgentIndex returns the index of the most recent agent turn, or -1.
func lastAgentIndex(conv *conversation.Conversation) int {
	entries := conv.Entries()
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Role == conversation.RoleAgent {
			return i
		}
	}
	return -1
}
