// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for agentchat.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdServe
	CmdSession
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet    bool
	Verbose  bool
	Endpoint string // Override the configured agent endpoint
	Config   string // Explicit config file path

	// Command-specific
	Query      string
	Subcommand string
	Format     string // session export format (json|md)
	Output     string // session export destination file

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `agentchat - chat widget for conversational agents, in your terminal

Agentchat talks to an agent proxy over a single HTTP endpoint and keeps
per-user and per-session identifiers so the agent can hold context.

Usage:
  agentchat                      Start the chat TUI (default)
  agentchat ask "question"       Ask a single question
  agentchat chat                 Interactive chat REPL
  agentchat serve                Run the reference agent proxy
  agentchat session [subcommand] Saved chat management
  agentchat config [subcommand]  Configuration
  agentchat version              Show version
  agentchat help                 Show this help

Session Commands:
  agentchat session list             List saved chats
  agentchat session show <id|index>  Show one chat
  agentchat session search <text>    Search chat content
  agentchat session export <id>      Export a chat
    --format json|md                 Export format (default: md)
    --output FILE                    Write to file (default: stdout)
  agentchat session delete <id>      Delete a chat
  agentchat session clear            Delete all chats

Config Commands:
  agentchat config show              Show effective configuration
  agentchat config path              Show config file location
  agentchat config init              Write a default config file

Global Flags:
  -q, --quiet       Minimal output
  -v, --verbose     Debug output
  --endpoint URL    Override the agent endpoint
  --config FILE     Load configuration from FILE

Examples:
  agentchat                                Start the TUI
  agentchat ask "What are your hours?"     One question, one answer
  agentchat chat                           Chat with input history
  agentchat serve                          Echo proxy on 127.0.0.1:8420
  agentchat --endpoint http://host/api/agent ask "hi"
  agentchat session export 1 --format md   Export most recent chat

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("agentchat version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
	fmt.Printf("  Go version: %s\n", runtime.Version())
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses the given arguments. Split out of Parse for testing.
func ParseArgs(argv []string) (Command, Args) {
	remaining, parsed := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, parsed
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsed.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsed

	case "ask":
		parseAskArgs(&parsed, remaining)
		return CmdAsk, parsed

	case "chat":
		return CmdChat, parsed

	case "serve", "server", "proxy":
		return CmdServe, parsed

	case "session", "sessions":
		parseSessionArgs(&parsed, remaining)
		return CmdSession, parsed

	case "config":
		if len(remaining) > 0 {
			parsed.Subcommand = remaining[0]
		}
		return CmdConfig, parsed

	case "version", "-v", "--version":
		return CmdVersion, parsed

	case "help", "-h", "--help":
		return CmdHelp, parsed

	default:
		// A lone unknown word close to a command is probably a typo.
		// Anything else is treated as a direct question.
		if len(remaining) == 0 {
			if suggestion := SuggestCommand(cmd); suggestion != "" {
				fmt.Fprintf(os.Stderr, "Unknown command %q. Did you mean %q?\n", cmd, suggestion)
				return CmdHelp, parsed
			}
		}
		parseAskArgs(&parsed, append([]string{cmd}, remaining...))
		return CmdAsk, parsed
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining
// args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsed Args

	i := 0
	for i < len(args) {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			parsed.Quiet = true
		case "-v", "--verbose":
			parsed.Verbose = true
		case "--endpoint":
			if i+1 < len(args) {
				i++
				parsed.Endpoint = args[i]
			}
		case "--config":
			if i+1 < len(args) {
				i++
				parsed.Config = args[i]
			}
		default:
			switch {
			case strings.HasPrefix(arg, "--endpoint="):
				parsed.Endpoint = strings.TrimPrefix(arg, "--endpoint=")
			case strings.HasPrefix(arg, "--config="):
				parsed.Config = strings.TrimPrefix(arg, "--config=")
			default:
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsed
}

// parseAskArgs parses ask command specific arguments.
func parseAskArgs(args *Args, remaining []string) {
	var query []string
	for _, arg := range remaining {
		if !strings.HasPrefix(arg, "-") {
			query = append(query, arg)
		}
	}
	args.Query = strings.Join(query, " ")
}

// parseSessionArgs parses session command specific arguments. The
// subcommand's positional argument (id or search text) lands in Query.
func parseSessionArgs(args *Args, remaining []string) {
	args.Format = "md"

	var positional []string
	for i := 0; i < len(remaining); i++ {
		arg := remaining[i]
		switch {
		case arg == "--format" && i+1 < len(remaining):
			args.Format = remaining[i+1]
			i++
		case strings.HasPrefix(arg, "--format="):
			args.Format = strings.TrimPrefix(arg, "--format=")
		case arg == "--output" && i+1 < len(remaining):
			args.Output = remaining[i+1]
			i++
		case strings.HasPrefix(arg, "--output="):
			args.Output = strings.TrimPrefix(arg, "--output=")
		case !strings.HasPrefix(arg, "-"):
			positional = append(positional, arg)
		}
	}

	if len(positional) > 0 {
		args.Subcommand = positional[0]
	}
	if len(positional) > 1 {
		args.Query = strings.Join(positional[1:], " ")
	}
}

// =============================================================================
// COMMAND HANDLERS
// =============================================================================

// HandleAsk handles the "ask" command.
func HandleAsk(args Args) {
	if err := HandleAskCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// HandleChat handles the "chat" command.
func HandleChat(args Args) {
	if err := HandleChatCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// HandleServe handles the "serve" command.
func HandleServe(args Args) {
	if err := HandleServeCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// HandleSession handles the "session" command.
func HandleSession(args Args) {
	if err := HandleSessionCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// HandleConfig handles the "config" command.
func HandleConfig(args Args) {
	if err := HandleConfigCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// HandleVersion handles the "version" command.
func HandleVersion() {
	PrintVersion()
}

// HandleHelp handles the "help" command.
func HandleHelp() {
	PrintUsage()
}
