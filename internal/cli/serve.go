// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// serve.go - Reference agent proxy command handler.
//
// Command: serve
// Short:   Run the agent proxy the widget talks to
// Aliases: server, proxy
//
// Without an upstream configured the proxy runs in echo mode, which is
// enough to try the widget end to end on one machine. While serving, edits
// to the config file hot-swap the upstream, body cap, and rate limits; a
// new listen address still needs a restart.
package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jeranaias/agentchat/internal/config"
	"github.com/jeranaias/agentchat/internal/server"
)

// HandleServeCommand handles the "serve" command. Blocks until the
// process is interrupted.
func HandleServeCommand(args Args) error {
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}

	srv := server.NewServer(cfg.Server)

	if w := watchConfig(args, srv); w != nil {
		defer w.Close()
	}

	if !args.Quiet {
		mode := "echo"
		if cfg.Server.Upstream != "" {
			mode = "forward -> " + cfg.Server.Upstream
		}
		fmt.Printf("agentchat proxy listening on %s (%s)\n", srv.Addr(), mode)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-sigCh:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// watchConfig starts a watcher that applies config file edits to the
// running proxy. Best effort: returns nil when there is no config file to
// watch or the watcher cannot start.
func watchConfig(args Args, srv *server.Server) *config.Watcher {
	path := args.Config
	if path == "" {
		p, err := config.ConfigPathTOML()
		if err != nil {
			return nil
		}
		path = p
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	w, err := config.NewWatcher(path, time.Second, func(next *config.Config) {
		srv.UpdateConfig(next.Server)
	})
	if err != nil {
		return nil
	}
	if err := w.Watch(); err != nil {
		w.Close()
		return nil
	}
	return w
}
