// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Configuration command handler for the agentchat CLI.
//
// Command: config
// Short:   Show or initialize the configuration
//
// Examples:
//   agentchat config show    Show the effective configuration
//   agentchat config path    Show where the config file lives
//   agentchat config init    Write a default config file
package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/agentchat/internal/config"
)

// HandleConfigCommand handles the "config" command.
func HandleConfigCommand(args Args) error {
	switch args.Subcommand {
	case "", "show":
		return configShow(args)
	case "path":
		return configPath()
	case "init":
		return configInit()
	default:
		return fmt.Errorf("unknown config subcommand %q (show, path, init)", args.Subcommand)
	}
}

// configShow prints the effective configuration as TOML.
func configShow(args Args) error {
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	return toml.NewEncoder(os.Stdout).Encode(cfg)
}

// configPath prints the config file location and whether it exists.
func configPath() error {
	path, err := config.ConfigPathTOML()
	if err != nil {
		return err
	}
	if _, statErr := os.Stat(path); statErr != nil {
		fmt.Printf("%s (not created yet; run: agentchat config init)\n", path)
		return nil
	}
	fmt.Println(path)
	return nil
}

// configInit writes a default config file, refusing to clobber an
// existing one.
func configInit() error {
	path, err := config.ConfigPathTOML()
	if err != nil {
		return err
	}
	if _, statErr := os.Stat(path); statErr == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := config.Save(config.Default()); err != nil {
		return err
	}
	fmt.Printf("Wrote default configuration to %s\n", path)
	return nil
}
