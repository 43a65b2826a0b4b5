// Copyright (c) 2024-2025 Wayra Labs S.A. / RutaViva
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for wayra.
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
	CmdStatus
	CmdConfig
	CmdSession
	CmdCatalog
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	JSON    bool

	// Webhook overrides the configured assistant endpoint for this run.
	Webhook string

	// Command-specific
	Query      string
	Subcommand string
	ConfigKey  string
	ConfigVal  string
	Refs       []string // accommodation ids attached to ask/chat messages

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `wayra - terminal client for the RutaViva travel assistant

Wayra is the command line companion of the RutaViva discovery site.
It talks to the same assistant webhook as the web widget and keeps
your conversation across restarts.

Usage:
  wayra                      Start TUI (default)
  wayra ask "question"       Ask a single question
  wayra chat                 Interactive chat
  wayra status, s            Show connectivity and session status
  wayra config [show|get|set|path]  Configuration
  wayra session [show|clear] Session management
  wayra catalog [list|search|show]  Accommodation catalog

Ask Command:
  wayra ask "hay lugar en Salta?"   One question, one answer
    --ref ID                        Attach an accommodation reference
                                    (repeatable)

Chat Commands (during chat):
  /help, /h           Show available commands
  /ref <id>           Attach an accommodation reference to the next message
  /refs               Show currently attached references
  /clear              Drop attached references
  /history            Show restored conversation history
  /quit, /q           Exit chat
  Ctrl+D              Exit chat

Session Commands:
  wayra session show          Show session id, expiry and transcript size
  wayra session clear --confirm   Forget the session and transcript

Config Commands:
  wayra config show           Show all settings
  wayra config get <key>      Read one setting
  wayra config set <key> <value>  Write one setting
  wayra config path           Print the config file path

Catalog Commands:
  wayra catalog list          List accommodations
  wayra catalog search <text> Search by name or region
  wayra catalog show <id>     Show one accommodation

Global Flags:
  --webhook URL       Override assistant.webhook_url for this run
  --json              Machine-readable output where supported
  -q, --quiet         Minimal output
  -v, --verbose       Verbose output

Examples:
  wayra ask "alojamiento con pileta en Mendoza"
  wayra ask "cual conviene?" --ref 1 --ref 2
  wayra config set assistant.webhook_url https://example.com/webhook
  wayra catalog search Salta

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("wayra version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
	fmt.Printf("  Go version: %s\n", runtime.Version())
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	return ParseFrom(os.Args[1:])
}

// ParseFrom parses the given arguments. Split out from Parse for tests.
func ParseFrom(args []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(args)

	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs

	case "ask":
		parseAskArgs(&parsedArgs, remaining)
		return CmdAsk, parsedArgs

	case "chat":
		return CmdChat, parsedArgs

	case "status", "s":
		return CmdStatus, parsedArgs

	case "config":
		parseConfigArgs(&parsedArgs, remaining)
		return CmdConfig, parsedArgs

	case "session", "sessions":
		if len(remaining) > 0 {
			parsedArgs.Subcommand = remaining[0]
		}
		return CmdSession, parsedArgs

	case "catalog", "listings":
		if len(remaining) > 0 {
			parsedArgs.Subcommand = remaining[0]
		}
		return CmdCatalog, parsedArgs

	case "version", "-v", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		// Unknown command, treat the whole line as a question.
		parseAskArgs(&parsedArgs, append([]string{cmd}, remaining...))
		return CmdAsk, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	i := 0
	for i < len(args) {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "-v", "--verbose":
			parsedArgs.Verbose = true
		case "--json":
			parsedArgs.JSON = true
		case "--webhook":
			if i+1 < len(args) {
				i++
				parsedArgs.Webhook = args[i]
			}
		default:
			if strings.HasPrefix(arg, "--webhook=") {
				parsedArgs.Webhook = strings.TrimPrefix(arg, "--webhook=")
			} else {
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsedArgs
}

// parseAskArgs parses ask command specific arguments.
func parseAskArgs(args *Args, remaining []string) {
	var query []string

	i := 0
	for i < len(remaining) {
		arg := remaining[i]

		switch arg {
		case "-r", "--ref":
			if i+1 < len(remaining) {
				i++
				args.Refs = append(args.Refs, remaining[i])
			}
		default:
			if strings.HasPrefix(arg, "--ref=") {
				args.Refs = append(args.Refs, strings.TrimPrefix(arg, "--ref="))
			} else if !strings.HasPrefix(arg, "-") {
				query = append(query, arg)
			}
		}
		i++
	}

	args.Query = strings.Join(query, " ")
}

// parseConfigArgs parses config command specific arguments.
func parseConfigArgs(args *Args, remaining []string) {
	if len(remaining) > 0 {
		args.Subcommand = remaining[0]
		if len(remaining) > 1 {
			args.ConfigKey = remaining[1]
		}
		if len(remaining) > 2 {
			args.ConfigVal = remaining[2]
		}
	}
}

// =============================================================================
// COMMAND HANDLERS
// =============================================================================

// HandleAsk handles the "ask" command.
func HandleAsk(args Args) {
	if err := HandleAskCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(GetExitCode(err))
	}
}

// HandleChat handles the "chat" command.
func HandleChat(args Args) {
	if err := HandleChatCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(GetExitCode(err))
	}
}

// HandleVersion handles the "version" command.
func HandleVersion(args Args) {
	if args.JSON {
		resp := NewJSONResponse("version", map[string]string{
			"version":    Version,
			"git_commit": GitCommit,
			"build_date": BuildDate,
			"go_version": runtime.Version(),
		})
		resp.Print()
		return
	}
	PrintVersion()
}

// HandleHelp handles the "help" command.
func HandleHelp() {
	PrintUsage()
}
