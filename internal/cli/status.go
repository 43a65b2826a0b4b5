// Copyright (c) 2024-2025 Wayra Labs S.A. / RutaViva
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Connectivity and state status report.
//
// Command: status
// Short:   Show webhook reachability, session, and catalog state
package cli

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/wayralabs/wayra-tui/internal/catalog"
	"github.com/wayralabs/wayra-tui/internal/config"
	"github.com/wayralabs/wayra-tui/internal/session"
)

// probeTimeout bounds the reachability check so status stays snappy.
const probeTimeout = 3 * time.Second

// statusReport is the JSON shape of "wayra status --json".
type statusReport struct {
	ConfigPath       string `json:"config_path"`
	WebhookURL       string `json:"webhook_url"`
	WebhookReachable bool   `json:"webhook_reachable"`
	SessionID        string `json:"session_id"`
	SessionExpires   string `json:"session_expires"`
	Messages         int    `json:"messages"`
	Listings         int    `json:"listings"`
}

// HandleStatus handles the "status" command.
func HandleStatus(args Args) {
	if err := handleStatusCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(GetExitCode(err))
	}
}

func handleStatusCommand(args Args) error {
	cfg := config.Global()
	report := statusReport{WebhookURL: cfg.Assistant.WebhookURL}
	if args.Webhook != "" {
		report.WebhookURL = args.Webhook
	}

	if path, err := config.ConfigPath(); err == nil {
		report.ConfigPath = path
	}

	if report.WebhookURL != "" {
		report.WebhookReachable = probeEndpoint(report.WebhookURL)
	}

	store, err := session.NewStore()
	if err == nil {
		sess := store.InitSession()
		report.SessionID = sess.ID
		report.SessionExpires = sess.ExpiresAt.Format("2006-01-02 15:04")
		report.Messages = len(store.RestoreHistory())
	}

	if cat, err := catalog.Open(); err == nil {
		if listings, err := cat.All(); err == nil {
			report.Listings = len(listings)
		}
		cat.Close()
	}

	if args.JSON {
		NewJSONResponse("status", report).Print()
		return nil
	}

	fmt.Println(headerStyle.Render("wayra"))
	fmt.Printf("  Config:    %s\n", report.ConfigPath)
	if report.WebhookURL == "" {
		fmt.Printf("  Webhook:   %s\n", warningStyle.Render("sin configurar"))
		fmt.Println(infoStyle.Render("             wayra config set assistant.webhook_url <url>"))
	} else {
		state := errorStyle.Render("inalcanzable")
		if report.WebhookReachable {
			state = refStyle.Render("ok")
		}
		fmt.Printf("  Webhook:   %s (%s)\n", report.WebhookURL, state)
	}
	fmt.Printf("  Sesión:    %s (expira %s, %d mensajes)\n",
		shortID(report.SessionID), report.SessionExpires, report.Messages)
	fmt.Printf("  Catálogo:  %d alojamientos\n", report.Listings)
	return nil
}

// probeEndpoint checks TCP reachability of the webhook host. A full POST
// would hit the assistant, so only the connection is tested.
func probeEndpoint(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}

	host := u.Host
	if u.Port() == "" {
		port := "443"
		if u.Scheme == "http" {
			port = "80"
		}
		host = net.JoinHostPort(u.Hostname(), port)
	}

	conn, err := net.DialTimeout("tcp", host, probeTimeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
