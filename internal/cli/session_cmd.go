// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// session_cmd.go - Saved chat management for the agentchat CLI.
//
// Command: session
// Short:   List, show, search, export, and delete saved chats
// Aliases: sessions
//
// Examples:
//   agentchat session list
//   agentchat session show 1
//   agentchat session search refund
//   agentchat session export chat_a1b2c3d4 --format json
//   agentchat session delete chat_a1b2c3d4
//   agentchat session clear
package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jeranaias/agentchat/internal/storage"
)

// HandleSessionCommand handles the "session" command.
func HandleSessionCommand(args Args) error {
	store, err := storage.NewTranscriptStore()
	if err != nil {
		return err
	}

	switch strings.ToLower(args.Subcommand) {
	case "", "list", "ls", "l":
		return sessionList(store)
	case "show":
		return sessionShow(store, args.Query)
	case "search":
		return sessionSearch(store, args.Query)
	case "export":
		return sessionExport(store, args)
	case "delete", "rm":
		return sessionDelete(store, args.Query)
	case "clear", "delete-all":
		return store.Clear()
	default:
		return fmt.Errorf("unknown session subcommand %q (list, show, search, export, delete, clear)", args.Subcommand)
	}
}

// sessionList prints all saved chats, most recent first.
func sessionList(store *storage.TranscriptStore) error {
	metas, err := store.List()
	if err != nil {
		return err
	}
	fmt.Print(storage.FormatTranscriptList(metas))
	return nil
}

// sessionShow prints one chat as markdown. Accepts a transcript id or a
// 1-based index into the list.
func sessionShow(store *storage.TranscriptStore, ref string) error {
	tr, err := resolveTranscript(store, ref)
	if err != nil {
		return err
	}
	fmt.Print(tr.ExportMarkdown())
	return nil
}

// sessionSearch lists chats whose turns contain the query.
func sessionSearch(store *storage.TranscriptStore, query string) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("no search text provided")
	}
	metas, err := store.SearchEntries(query)
	if err != nil {
		return err
	}
	if len(metas) == 0 {
		fmt.Println("No matching chats.")
		return nil
	}
	fmt.Print(storage.FormatTranscriptList(metas))
	return nil
}

// sessionExport writes one chat as markdown or JSON.
func sessionExport(store *storage.TranscriptStore, args Args) error {
	tr, err := resolveTranscript(store, args.Query)
	if err != nil {
		return err
	}

	var out []byte
	switch strings.ToLower(args.Format) {
	case "", "md", "markdown":
		out = []byte(tr.ExportMarkdown())
	case "json":
		out, err = tr.ExportJSON()
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown export format %q (json, md)", args.Format)
	}

	if args.Output == "" {
		fmt.Print(string(out))
		return nil
	}
	return os.WriteFile(args.Output, out, 0644)
}

// sessionDelete removes one chat.
func sessionDelete(store *storage.TranscriptStore, ref string) error {
	tr, err := resolveTranscript(store, ref)
	if err != nil {
		return err
	}
	if err := store.Delete(tr.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted %s\n", tr.ID)
	return nil
}

// resolveTranscript loads a transcript by id, or by 1-based list index
// when the reference is a small number.
func resolveTranscript(store *storage.TranscriptStore, ref string) (*storage.Transcript, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("no chat id provided (see: agentchat session list)")
	}
	if n, err := strconv.Atoi(ref); err == nil {
		return store.LoadByIndex(n - 1)
	}
	return store.Load(ref)
}
