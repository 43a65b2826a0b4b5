// Copyright (c) 2024-2025 Wayra Labs S.A. / RutaViva
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/wayralabs/wayra-tui/internal/assistant"
	"github.com/wayralabs/wayra-tui/internal/composer"
	"github.com/wayralabs/wayra-tui/internal/config"
	"github.com/wayralabs/wayra-tui/internal/guard"
	"github.com/wayralabs/wayra-tui/internal/session"
	"github.com/wayralabs/wayra-tui/internal/ui/components"
	"github.com/wayralabs/wayra-tui/internal/ui/styles"
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat panel.
type Model struct {
	theme  *styles.Theme
	cfg    *config.Config
	client *assistant.Client
	store  *session.Store

	buf   *composer.Buffer
	guard *guard.Guard

	viewport viewport.Model
	typing   components.Typing
	renderer *glamour.TermRenderer

	entries    []entry
	pendingIdx int
	sending    bool

	open   bool
	width  int
	height int
}

// New creates the chat panel and restores the persisted transcript.
func New(theme *styles.Theme, cfg *config.Config, client *assistant.Client, store *session.Store) Model {
	buf := composer.New()
	g := guard.New(buf)
	g.Window = cfg.ArmWindow()

	m := Model{
		theme:      theme,
		cfg:        cfg,
		client:     client,
		store:      store,
		buf:        buf,
		guard:      g,
		viewport:   viewport.New(0, 0),
		typing:     components.NewTyping(theme),
		pendingIdx: -1,
	}

	for _, e := range store.RestoreHistory() {
		kind := entryAssistant
		if e.Role == "user" {
			kind = entryUser
		}
		m.entries = append(m.entries, entry{kind: kind, content: e.Content, ts: e.Timestamp})
	}
	return m
}

// ApplyConfig picks up reloaded settings that affect a running panel.
func (m *Model) ApplyConfig(cfg *config.Config) {
	m.cfg = cfg
	m.guard.Window = cfg.ArmWindow()
	if m.width > 0 {
		m.SetSize(m.width, m.height)
	}
}

// Buffer exposes the composition buffer for external token insertion.
func (m *Model) Buffer() *composer.Buffer {
	return m.buf
}

// IsOpen reports whether the panel is visible.
func (m Model) IsOpen() bool {
	return m.open
}

// Open shows the panel.
func (m *Model) Open() {
	m.open = true
}

// Close hides the panel. The composer content survives until submit.
func (m *Model) Close() {
	m.open = false
}

// Sending reports whether a send is in flight. The send control stays
// disabled until the pending entry is resolved.
func (m Model) Sending() bool {
	return m.sending
}

// SetSize resizes the panel.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height

	// Header, input line, and borders take four rows.
	vpHeight := height - 4
	if vpHeight < 1 {
		vpHeight = 1
	}
	m.viewport.Width = width
	m.viewport.Height = vpHeight

	if m.cfg.UI.Markdown {
		wrap := width - 4
		if wrap < 20 {
			wrap = 20
		}
		if r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wrap),
		); err == nil {
			m.renderer = r
		}
	}
	m.refreshTranscript()
}

// =============================================================================
// SUBMIT
// =============================================================================

// submit serializes the composer and launches the send. The input clears
// even when no endpoint is configured; the placeholder then resolves to
// the configuration error.
func (m *Model) submit() tea.Cmd {
	if m.sending || m.buf.IsEmpty() {
		return nil
	}

	plain := m.buf.PlainText()
	annotated := m.buf.AnnotatedText()
	ids := m.buf.TokenIDs()
	m.buf.Clear()

	now := m.store.Now()
	m.entries = append(m.entries, entry{kind: entryUser, content: annotated, ts: now})
	m.store.Append("user", annotated)

	m.entries = append(m.entries, entry{kind: entryPending, ts: now})
	m.pendingIdx = len(m.entries) - 1
	m.sending = true
	m.refreshTranscript()

	outbound := assistant.Outbound{
		Message:          plain,
		SessionID:        m.store.Current().ID,
		AccommodationIDs: ids,
	}
	client := m.client
	send := func() tea.Msg {
		reply, err := client.Send(context.Background(), outbound)
		if err != nil {
			return SendErrorMsg{Err: err}
		}
		return ReplyMsg{Text: reply.Text, SessionID: reply.SessionID}
	}
	return tea.Batch(m.typing.Start(), send)
}

// resolvePending replaces the placeholder entry in place. Whatever the
// outcome, the send control is re-enabled.
func (m *Model) resolvePending(kind entryKind, content string) {
	m.typing.Stop()
	m.sending = false
	if m.pendingIdx >= 0 && m.pendingIdx < len(m.entries) {
		m.entries[m.pendingIdx] = entry{kind: kind, content: content, ts: m.store.Now()}
	} else {
		m.entries = append(m.entries, entry{kind: kind, content: content, ts: m.store.Now()})
	}
	m.pendingIdx = -1
	m.refreshTranscript()
}
