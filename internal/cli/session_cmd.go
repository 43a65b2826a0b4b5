// Copyright (c) 2024-2025 Wayra Labs S.A. / RutaViva
// SPDX-License-Identifier: AGPL-3.0-or-later

// session_cmd.go - Session management command handlers.
//
// Commands:
//   wayra session show            Show session id, expiry, transcript size
//   wayra session clear --confirm Forget the session and transcript
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/wayralabs/wayra-tui/internal/composer"
	"github.com/wayralabs/wayra-tui/internal/session"
)

// HandleSession dispatches the "session" subcommands.
func HandleSession(args Args) {
	if err := handleSessionCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(GetExitCode(err))
	}
}

func handleSessionCommand(args Args) error {
	store, err := session.NewStore()
	if err != nil {
		return WrapError(err, "failed to open session store")
	}

	switch args.Subcommand {
	case "", "show", "list":
		return sessionShow(store, args)

	case "history", "transcript":
		return sessionHistory(store)

	case "clear", "delete":
		return sessionClear(store, args)

	default:
		return &ValidationError{
			Field:   "subcommand",
			Value:   args.Subcommand,
			Reason:  "unknown session subcommand",
			Example: "wayra session [show|list|history|clear]",
		}
	}
}

func sessionShow(store *session.Store, args Args) error {
	sess := store.InitSession()
	entries := store.RestoreHistory()

	if args.JSON {
		NewJSONResponse("session", map[string]interface{}{
			"id":         sess.ID,
			"expires_at": sess.ExpiresAt,
			"fresh":      store.IsNew(),
			"messages":   len(entries),
		}).Print()
		return nil
	}

	fmt.Println(headerStyle.Render("Sesión"))
	fmt.Printf("  ID:       %s\n", sess.ID)
	fmt.Printf("  Expira:   %s\n", sess.ExpiresAt.Format("2006-01-02 15:04"))
	fmt.Printf("  Mensajes: %d\n", len(entries))
	if store.IsNew() {
		fmt.Println(infoStyle.Render("  (sesión recién creada)"))
	}
	return nil
}

func sessionHistory(store *session.Store) error {
	store.InitSession()
	for _, e := range store.RestoreHistory() {
		role := "vos"
		if e.Role == "assistant" {
			role = "asistente"
		}
		fmt.Printf("%s %s %s\n",
			infoStyle.Render(e.Timestamp.Format("15:04")),
			promptStyle.Render(role+">"),
			composer.AnnotatedToPlain(e.Content))
	}
	return nil
}

func sessionClear(store *session.Store, args Args) error {
	confirmed := false
	for _, raw := range args.Raw {
		if raw == "--confirm" || raw == "-y" {
			confirmed = true
		}
	}
	if !confirmed {
		return &ValidationError{
			Field:   "confirm",
			Reason:  "clearing the session is destructive",
			Example: "wayra session clear --confirm",
		}
	}

	sess := store.InitSession()
	if err := store.Clear(); err != nil {
		return NewCommandError("session", "clear", "failed to remove session files", err)
	}
	if !args.Quiet {
		fmt.Println(infoStyle.Render("Sesión olvidada: " + shortID(sess.ID)))
	}
	return nil
}

// shortID abbreviates a session id for display.
func shortID(id string) string {
	if idx := strings.IndexByte(id, '-'); idx > 0 {
		return id[:idx]
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
