// Copyright (c) 2024-2025 Wayra Labs S.A. / RutaViva
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Configuration command handlers.
//
// Commands:
//   wayra config show             Show all settings
//   wayra config get <key>        Read one setting
//   wayra config set <key> <val>  Write one setting
//   wayra config path             Print the config file path
package cli

import (
	"fmt"
	"os"

	"github.com/wayralabs/wayra-tui/internal/config"
)

// HandleConfig dispatches the "config" subcommands.
func HandleConfig(args Args) {
	if err := handleConfigCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(GetExitCode(err))
	}
}

func handleConfigCommand(args Args) error {
	switch args.Subcommand {
	case "", "show", "list":
		return configShow(args)

	case "get":
		return configGet(args)

	case "set":
		return configSet(args)

	case "path":
		path, err := config.ConfigPath()
		if err != nil {
			return WrapError(err, "failed to resolve config path")
		}
		fmt.Println(path)
		return nil

	default:
		return &ValidationError{
			Field:   "subcommand",
			Value:   args.Subcommand,
			Reason:  "unknown config subcommand",
			Example: "wayra config [show|get|set|path]",
		}
	}
}

func configShow(args Args) error {
	cfg := config.Global()

	if args.JSON {
		settings := make(map[string]string, len(config.Keys()))
		for _, key := range config.Keys() {
			val, err := cfg.Get(key)
			if err != nil {
				continue
			}
			settings[key] = val
		}
		NewJSONResponse("config", settings).Print()
		return nil
	}

	fmt.Println(headerStyle.Render("Configuración"))
	for _, key := range config.Keys() {
		val, err := cfg.Get(key)
		if err != nil {
			continue
		}
		if val == "" {
			val = infoStyle.Render("(sin valor)")
		}
		fmt.Printf("  %-28s %s\n", key, val)
	}
	return nil
}

func configGet(args Args) error {
	if args.ConfigKey == "" {
		return ErrMissingArgument("key", "wayra config get assistant.webhook_url")
	}
	val, err := config.Global().Get(args.ConfigKey)
	if err != nil {
		return err
	}
	fmt.Println(val)
	return nil
}

func configSet(args Args) error {
	if args.ConfigKey == "" || args.ConfigVal == "" {
		return ErrMissingArgument("key and value",
			"wayra config set assistant.webhook_url https://example.com/webhook")
	}

	cfg := config.Global()
	if err := cfg.Set(args.ConfigKey, args.ConfigVal); err != nil {
		return err
	}
	cfg.Clamp()
	if err := config.Save(cfg); err != nil {
		return WrapError(err, "failed to save config")
	}

	if !args.Quiet {
		val, _ := cfg.Get(args.ConfigKey)
		fmt.Printf("%s = %s\n", args.ConfigKey, val)
	}
	return nil
}
