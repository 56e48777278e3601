// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question command handler for the agentchat CLI.
//
// Command: ask
// Short:   Ask a single question and print the reply
//
// Examples:
//   agentchat ask "What are your opening hours?"
//   agentchat --endpoint http://host/api/agent ask "hi"
//   agentchat ask "hi" | cat        Plain text when piped
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/agentchat/internal/conversation"
	"github.com/jeranaias/agentchat/internal/exchange"
	"github.com/jeranaias/agentchat/internal/render"
)

// HandleAskCommand runs one exchange and prints the agent's reply.
func HandleAskCommand(args Args) error {
	query := strings.TrimSpace(args.Query)
	if query == "" {
		return fmt.Errorf("no question provided (usage: agentchat ask \"question\")")
	}

	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}

	ctrl, cleanup, err := BuildController(cfg, args.Verbose)
	if err != nil {
		return err
	}
	defer cleanup()

	if args.Verbose {
		fmt.Fprintf(os.Stderr, "endpoint: %s\n", cfg.Agent.Endpoint)
	}

	if err := ctrl.Submit(context.Background(), query); err != nil {
		return err
	}

	reply, ok := lastAgentReply(ctrl.Conversation())
	if !ok {
		return fmt.Errorf("no reply received")
	}

	// Error entries exit non-zero so scripts can tell replies from
	// failures.
	if strings.HasPrefix(reply, exchange.ErrorPrefix) {
		return fmt.Errorf("%s", strings.TrimPrefix(reply, exchange.ErrorPrefix))
	}

	printReply(reply, cfg.UI.Markdown)
	return nil
}

// lastAgentReply returns the content of the most recent agent turn.
func lastAgentReply(conv *conversation.Conversation) (string, bool) {
	entries := conv.Entries()
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Role == conversation.RoleAgent {
			return entries[i].Content, true
		}
	}
	return "", false
}

// printReply writes the reply, markdown-rendered on a TTY and plain when
// piped.
func printReply(reply string, markdown bool) {
	if markdown && IsStdoutTTY() {
		r := render.NewRenderer(GetTerminalWidth())
		fmt.Print(r.Render(reply))
		return
	}
	fmt.Println(reply)
}
