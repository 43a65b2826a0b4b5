// Copyright (c) 2024-2025 Wayra Labs S.A. / RutaViva
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question command handler for the wayra CLI.
//
// Command: ask
// Short:   Ask the assistant a single question
//
// Examples:
//   wayra ask "hay lugar en Salta para el finde?"
//   wayra ask "cual conviene?" --ref 1 --ref 2
//
// References resolve against the local catalog and travel with the
// message the same way chips do in the TUI composer.
package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/wayralabs/wayra-tui/internal/assistant"
	"github.com/wayralabs/wayra-tui/internal/catalog"
	"github.com/wayralabs/wayra-tui/internal/composer"
	"github.com/wayralabs/wayra-tui/internal/config"
	"github.com/wayralabs/wayra-tui/internal/session"
)

// =============================================================================
// MARKDOWN OUTPUT
// =============================================================================

// markdownRenderer is the shared glamour renderer for assistant replies.
var markdownRenderer *glamour.TermRenderer

func init() {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(GetTerminalWidth()),
	)
	if err != nil {
		markdownRenderer = nil
	}
}

// renderMarkdown renders content as markdown, falling back to plain text.
func renderMarkdown(content string) string {
	if markdownRenderer == nil {
		return content
	}
	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n") + "\n"
}

// displayResponse displays a reply with markdown rendering when stdout is
// a terminal, plain text when piped.
func displayResponse(response string) {
	if IsStdoutTTY() && config.Global().UI.Markdown {
		fmt.Print(renderMarkdown(response))
		return
	}
	fmt.Println(response)
}

// =============================================================================
// CLIENT AND MESSAGE CONSTRUCTION
// =============================================================================

// buildClient creates an assistant client from config plus CLI overrides.
func buildClient(cfg *config.Config, args Args) *assistant.Client {
	clientCfg := assistant.DefaultConfig()
	clientCfg.WebhookURL = cfg.Assistant.WebhookURL
	clientCfg.Source = cfg.Assistant.Source
	clientCfg.Timeout = cfg.SendTimeout()
	clientCfg.NotifyTimeout = cfg.NotifyTimeout()
	if args.Webhook != "" {
		clientCfg.WebhookURL = args.Webhook
	}
	return assistant.NewClient(clientCfg)
}

// composeMessage builds the outbound message from refs and query text
// using the same buffer the TUI composer uses, so reference handling
// stays identical across surfaces.
func composeMessage(cat *catalog.Catalog, refs []string, query string) (plain, annotated string, ids []string, err error) {
	buf := composer.New()
	for _, ref := range refs {
		id, convErr := strconv.ParseInt(ref, 10, 64)
		if convErr != nil {
			return "", "", nil, &ValidationError{Field: "ref", Value: ref, Reason: "must be a numeric listing id"}
		}
		listing, getErr := cat.Get(id)
		if getErr != nil {
			return "", "", nil, ErrNotFound("listing", ref)
		}
		label, tokenID := listing.Token()
		buf.InsertToken(label, tokenID)
	}
	buf.InsertText(query)
	return buf.PlainText(), buf.AnnotatedText(), buf.TokenIDs(), nil
}

// =============================================================================
// ASK COMMAND
// =============================================================================

// HandleAskCommand handles the "ask" command.
func HandleAskCommand(args Args) error {
	if strings.TrimSpace(args.Query) == "" {
		return ErrMissingArgument("question", `wayra ask "hay lugar en Salta?"`)
	}

	cfg := config.Global()
	client := buildClient(cfg, args)

	store, err := session.NewStore()
	if err != nil {
		return WrapError(err, "failed to open session store")
	}
	sess := store.InitSession()
	store.RestoreHistory()
	if store.IsNew() {
		client.NotifySessionStart(sess.ID, "cli/ask")
	}

	cat, err := catalog.Open()
	if err != nil {
		return WrapError(err, "failed to open catalog")
	}
	defer cat.Close()

	plain, annotated, ids, err := composeMessage(cat, args.Refs, args.Query)
	if err != nil {
		return err
	}

	if !args.Quiet && len(ids) > 0 {
		fmt.Println(infoStyle.Render("Referencias: ") + refStyle.Render(strings.Join(ids, ", ")))
	}

	reply, err := client.Send(context.Background(), assistant.Outbound{
		Message:          plain,
		Source:           cfg.Assistant.Source,
		SessionID:        store.Current().ID,
		AccommodationIDs: ids,
	})
	if err != nil {
		return err
	}

	store.AdoptExternalSessionID(reply.SessionID)
	store.Append("user", annotated)
	store.Append("assistant", reply.Text)

	displayResponse(reply.Text)
	return nil
}
