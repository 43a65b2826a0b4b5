// Copyright (c) 2024-2025 Wayra Labs S.A. / RutaViva
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/wayralabs/wayra-tui/internal/assistant"
	"github.com/wayralabs/wayra-tui/internal/catalog"
)

func TestParseFromDefaultsToTUI(t *testing.T) {
	cmd, _ := ParseFrom(nil)
	if cmd != CmdTUI {
		t.Fatalf("expected CmdTUI, got %v", cmd)
	}
}

func TestParseFromCommands(t *testing.T) {
	tests := []struct {
		args []string
		want Command
	}{
		{[]string{"tui"}, CmdTUI},
		{[]string{"ask", "hola"}, CmdAsk},
		{[]string{"chat"}, CmdChat},
		{[]string{"status"}, CmdStatus},
		{[]string{"s"}, CmdStatus},
		{[]string{"config", "show"}, CmdConfig},
		{[]string{"session", "show"}, CmdSession},
		{[]string{"sessions"}, CmdSession},
		{[]string{"catalog", "list"}, CmdCatalog},
		{[]string{"listings"}, CmdCatalog},
		{[]string{"version"}, CmdVersion},
		{[]string{"--version"}, CmdVersion},
		{[]string{"help"}, CmdHelp},
	}

	for _, tt := range tests {
		cmd, _ := ParseFrom(tt.args)
		if cmd != tt.want {
			t.Errorf("ParseFrom(%v) = %v, want %v", tt.args, cmd, tt.want)
		}
	}
}

func TestParseGlobalFlags(t *testing.T) {
	cmd, args := ParseFrom([]string{"--json", "-q", "--webhook", "https://example.com/hook", "status"})
	if cmd != CmdStatus {
		t.Fatalf("expected CmdStatus, got %v", cmd)
	}
	if !args.JSON || !args.Quiet {
		t.Errorf("expected JSON and Quiet set: %+v", args)
	}
	if args.Webhook != "https://example.com/hook" {
		t.Errorf("webhook not parsed: %q", args.Webhook)
	}
}

func TestParseWebhookEqualsForm(t *testing.T) {
	_, args := ParseFrom([]string{"--webhook=https://example.com/hook", "status"})
	if args.Webhook != "https://example.com/hook" {
		t.Errorf("webhook= form not parsed: %q", args.Webhook)
	}
}

func TestParseAskQueryAndRefs(t *testing.T) {
	cmd, args := ParseFrom([]string{"ask", "cual", "conviene?", "--ref", "1", "--ref=2"})
	if cmd != CmdAsk {
		t.Fatalf("expected CmdAsk, got %v", cmd)
	}
	if args.Query != "cual conviene?" {
		t.Errorf("query = %q", args.Query)
	}
	if len(args.Refs) != 2 || args.Refs[0] != "1" || args.Refs[1] != "2" {
		t.Errorf("refs = %v", args.Refs)
	}
}

func TestUnknownCommandBecomesQuestion(t *testing.T) {
	cmd, args := ParseFrom([]string{"hay", "lugar", "en", "Salta?"})
	if cmd != CmdAsk {
		t.Fatalf("expected CmdAsk, got %v", cmd)
	}
	if args.Query != "hay lugar en Salta?" {
		t.Errorf("query = %q", args.Query)
	}
}

func TestParseConfigArgs(t *testing.T) {
	_, args := ParseFrom([]string{"config", "set", "ui.theme", "light"})
	if args.Subcommand != "set" || args.ConfigKey != "ui.theme" || args.ConfigVal != "light" {
		t.Errorf("config args = %+v", args)
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, ExitSuccess},
		{&ValidationError{Field: "id", Reason: "bad"}, ExitUsageError},
		{&NotFoundError{Resource: "listing", ID: "99"}, ExitNotFoundError},
		{assistant.ErrNoEndpoint, ExitConfigError},
		{assistant.ErrTimeout, ExitTimeoutError},
		{errors.New("dial tcp: connection refused"), ExitNetworkError},
		{errors.New("something else"), ExitGeneralError},
	}

	for _, tt := range tests {
		if got := GetExitCode(tt.err); got != tt.want {
			t.Errorf("GetExitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestComposeMessage(t *testing.T) {
	cat, err := catalog.OpenPath(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	defer cat.Close()

	plain, annotated, ids, err := composeMessage(cat, []string{"1"}, "tiene pileta?")
	if err != nil {
		t.Fatalf("composeMessage: %v", err)
	}
	if plain != "Hotel Aymara tiene pileta?" {
		t.Errorf("plain = %q", plain)
	}
	if annotated == plain {
		t.Error("annotated text should carry the token marker")
	}
	if len(ids) != 1 || ids[0] != "1" {
		t.Errorf("ids = %v", ids)
	}
}

func TestComposeMessageRejectsBadRefs(t *testing.T) {
	cat, err := catalog.OpenPath(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	defer cat.Close()

	if _, _, _, err := composeMessage(cat, []string{"abc"}, "hola"); err == nil {
		t.Error("expected error for non-numeric ref")
	}
	if _, _, _, err := composeMessage(cat, []string{"9999"}, "hola"); err == nil {
		t.Error("expected error for unknown ref")
	}
}

func TestShortID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"0b8f3c2a-1111-2222-3333-444455556666", "0b8f3c2a"},
		{"abcdefghijkl", "abcdefgh"},
		{"short", "short"},
	}
	for _, tt := range tests {
		if got := shortID(tt.in); got != tt.want {
			t.Errorf("shortID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
