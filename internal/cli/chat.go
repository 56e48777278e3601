// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat REPL for the agentchat CLI.
//
// Command: chat
// Short:   Chat with the agent in a plain REPL (no TUI)
//
// Interactive commands (during chat):
//   /help, /h       Show available commands
//   /history        Show the conversation so far
//   /like, /dislike Toggle feedback on the last reply
//   /copy           Copy the last reply to the clipboard
//   /save           Save the chat as a transcript now
//   /quit, /q       Exit (also Ctrl+D)
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/jeranaias/agentchat/internal/config"
	"github.com/jeranaias/agentchat/internal/conversation"
	"github.com/jeranaias/agentchat/internal/exchange"
	"github.com/jeranaias/agentchat/internal/render"
	"github.com/jeranaias/agentchat/internal/storage"
	"github.com/jeranaias/agentchat/internal/ui"
	"github.com/jeranaias/agentchat/internal/util"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(ui.Cyan).
			Bold(true)

	welcomeStyle = lipgloss.NewStyle().
			Foreground(ui.Purple).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(ui.TextSecondary)

	commandStyle = lipgloss.NewStyle().
			Foreground(ui.Emerald)

	errorStyle = lipgloss.NewStyle().
			Foreground(ui.Rose).
			Bold(true)
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI with input history support.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	cli := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	cli.LoadHistory()
	return cli
}

// LoadHistory loads input history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt. Non-empty input
// is appended to the history.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists input history with secure permissions.
func (c *ChatCLI) SaveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// HandleChatCommand handles the "chat" command.
func HandleChatCommand(args Args) error {
	if !IsTTY() {
		return fmt.Errorf("chat needs an interactive terminal (try: agentchat ask \"question\")")
	}
	lipgloss.SetColorProfile(GetColorProfile())

	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}

	ctrl, cleanup, err := BuildController(cfg, args.Verbose)
	if err != nil {
		return err
	}
	defer cleanup()

	var renderer *render.Renderer
	if cfg.UI.Markdown && IsStdoutTTY() {
		renderer = render.NewRenderer(GetTerminalWidth())
	}

	if !args.Quiet {
		printWelcome(cfg)
	}

	input := NewChatCLI()
	defer input.Close()

	saved := false
	for {
		line, err := input.ReadInput(promptStyle.Render("you> "))
		if err != nil {
			// Ctrl+C, Ctrl+D, or a closed stdin all end the session.
			fmt.Println()
			return finishChat(ctrl, saved, args.Quiet)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			keepGoing, didSave := handleSlashCommand(line, ctrl)
			saved = saved || didSave
			if !keepGoing {
				return finishChat(ctrl, saved, args.Quiet)
			}
			continue
		}

		if strings.EqualFold(line, "exit") || strings.EqualFold(line, "quit") {
			return finishChat(ctrl, saved, args.Quiet)
		}

		if err := ctrl.Submit(context.Background(), line); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
			continue
		}

		if reply, ok := lastAgentReply(ctrl.Conversation()); ok {
			printChatReply(reply, renderer)
		}
	}
}

// finishChat saves the transcript (unless already saved or empty) and
// prints the goodbye line.
func finishChat(ctrl *exchange.Controller, alreadySaved, quiet bool) error {
	conv := ctrl.Conversation()
	if conv.Len() > 0 && !alreadySaved {
		if id, err := saveTranscript(ctrl); err == nil && !quiet {
			fmt.Println(infoStyle.Render("Saved chat " + id))
		}
	}
	if !quiet {
		fmt.Println(infoStyle.Render("Goodbye!"))
	}
	return nil
}

// saveTranscript persists the current conversation.
func saveTranscript(ctrl *exchange.Controller) (string, error) {
	store, err := storage.NewTranscriptStore()
	if err != nil {
		return "", err
	}
	tr := storage.FromConversation(ctrl.Conversation(), ctrl.SessionID(), ctrl.UserID())
	return store.Save(tr)
}

// printChatReply prints one agent reply, markdown-rendered when possible.
func printChatReply(reply string, renderer *render.Renderer) {
	fmt.Println()
	if strings.HasPrefix(reply, exchange.ErrorPrefix) {
		fmt.Println(errorStyle.Render(reply))
	} else if renderer != nil {
		fmt.Print(renderer.Render(reply))
	} else {
		fmt.Println(reply)
	}
	fmt.Println()
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand processes a slash command. Returns (keepGoing,
// saved).
func handleSlashCommand(cmd string, ctrl *exchange.Controller) (bool, bool) {
	conv := ctrl.Conversation()

	switch strings.ToLower(strings.Fields(cmd)[0]) {
	case "/help", "/h", "/?", "/":
		printChatHelp()
		return true, false

	case "/history":
		printChatHistory(conv)
		return true, false

	case "/like":
		if i := lastAgentEntryIndex(conv); i >= 0 {
			conv.ToggleLike(i)
			printFeedbackState(conv, i)
		}
		return true, false

	case "/dislike":
		if i := lastAgentEntryIndex(conv); i >= 0 {
			conv.ToggleDislike(i)
			printFeedbackState(conv, i)
		}
		return true, false

	case "/copy":
		if i := lastAgentEntryIndex(conv); i >= 0 {
			if err := conv.CopyToClipboard(i); err != nil {
				fmt.Fprintf(os.Stderr, "%s clipboard unavailable: %v\n", errorStyle.Render("[Error]"), err)
			} else {
				fmt.Println(commandStyle.Render("[Copied]"))
			}
		}
		return true, false

	case "/save":
		id, err := saveTranscript(ctrl)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
			return true, false
		}
		fmt.Println(commandStyle.Render("[Saved " + id + "]"))
		return true, true

	case "/quit", "/q", "/exit":
		return false, false

	default:
		fmt.Fprintf(os.Stderr, "%s unknown command: %s (type /help)\n", errorStyle.Render("[Error]"), cmd)
		return true, false
	}
}

// lastAgentEntryIndex returns the index of the most recent agent turn, or
// -1.
func lastAgentEntryIndex(conv *conversation.Conversation) int {
	entries := conv.Entries()
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Role == conversation.RoleAgent {
			return i
		}
	}
	fmt.Println(infoStyle.Render("[No reply yet]"))
	return -1
}

// printFeedbackState echoes the feedback flags after a toggle.
func printFeedbackState(conv *conversation.Conversation, i int) {
	fb := conv.FeedbackFor(i)
	switch {
	case fb.Liked:
		fmt.Println(commandStyle.Render("[Liked]"))
	case fb.Disliked:
		fmt.Println(commandStyle.Render("[Disliked]"))
	default:
		fmt.Println(infoStyle.Render("[Feedback cleared]"))
	}
}

// =============================================================================
// DISPLAY FUNCTIONS
// =============================================================================

// printWelcome prints the welcome banner.
func printWelcome(cfg *config.Config) {
	fmt.Println()
	fmt.Println(welcomeStyle.Render("agentchat interactive chat"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 30)))
	fmt.Printf("%s %s\n",
		infoStyle.Render("Endpoint:"),
		commandStyle.Render(cfg.Agent.Endpoint))
	fmt.Println()
	fmt.Println(infoStyle.Render("Type your message and press Enter. Commands: /help, /quit"))
	fmt.Println()
}

// printChatHelp prints available slash commands.
func printChatHelp() {
	commands := []struct {
		cmd  string
		desc string
	}{
		{"/help, /h", "Show this help"},
		{"/history", "Show the conversation so far"},
		{"/like", "Toggle like on the last reply"},
		{"/dislike", "Toggle dislike on the last reply"},
		{"/copy", "Copy the last reply to the clipboard"},
		{"/save", "Save the chat as a transcript"},
		{"/quit, /q", "Exit chat"},
	}

	fmt.Println()
	for _, c := range commands {
		fmt.Printf("  %s  %s\n",
			commandStyle.Render(fmt.Sprintf("%-12s", c.cmd)),
			infoStyle.Render(c.desc))
	}
	fmt.Println()
	fmt.Println(infoStyle.Render("Tip: Ctrl+D exits and saves the chat"))
	fmt.Println()
}

// printChatHistory prints the conversation so far, one line per turn.
func printChatHistory(conv *conversation.Conversation) {
	entries := conv.Entries()
	if len(entries) == 0 {
		fmt.Println(infoStyle.Render("[No messages yet]"))
		return
	}

	fmt.Println()
	for i, e := range entries {
		role := promptStyle.Render("You")
		if e.Role == conversation.RoleAgent {
			role = welcomeStyle.Render("Agent")
		}

		content := util.TruncateRunes(util.CollapseSpace(e.Content), 100)
		fmt.Printf("  %d. %s: %s\n", i+1, role, content)
	}
	fmt.Println()
}
