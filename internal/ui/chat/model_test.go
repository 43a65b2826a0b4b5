// Copyright (c) 2024-2025 Wayra Labs S.A. / RutaViva
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"reflect"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wayralabs/wayra-tui/internal/assistant"
	"github.com/wayralabs/wayra-tui/internal/config"
	"github.com/wayralabs/wayra-tui/internal/session"
	"github.com/wayralabs/wayra-tui/internal/ui/styles"
)

func newTestPanel(t *testing.T, webhookURL string) Model {
	t.Helper()
	store, err := session.NewStoreWithDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	store.InitSession()

	cfg := config.Default()
	acfg := assistant.DefaultConfig()
	acfg.WebhookURL = webhookURL
	acfg.RatePerSec = 1000

	m := New(styles.NewTheme(), cfg, assistant.NewClient(acfg), store)
	m.SetSize(80, 24)
	m.Open()
	return m
}

// drain executes a command tree and collects the produced messages.
func drain(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	var out []tea.Msg
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			out = append(out, drain(t, c)...)
		}
	default:
		out = append(out, msg)
	}
	return out
}

func typeText(m Model, text string) Model {
	for _, r := range text {
		if r == ' ' {
			m, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace})
			continue
		}
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestComposeWithExternalTokens(t *testing.T) {
	m := newTestPanel(t, "")
	m.Close()

	m, _ = m.Update(AppendTokenMsg{Label: "Hotel Aymara", ID: "1"})
	if !m.IsOpen() {
		t.Error("external token insert must open the panel")
	}
	m = typeText(m, " y ")
	m, _ = m.Update(AppendTokenMsg{Label: "Hostal de las Sierras", ID: "2"})

	if got := m.Buffer().PlainText(); got != "Hotel Aymara y Hostal de las Sierras " {
		t.Errorf("PlainText() = %q", got)
	}
	if ids := m.Buffer().TokenIDs(); !reflect.DeepEqual(ids, []string{"1", "2"}) {
		t.Errorf("TokenIDs() = %v", ids)
	}
}

func TestSubmitWithoutEndpointShowsConfigError(t *testing.T) {
	m := newTestPanel(t, "")
	m = typeText(m, "hola")

	var cmd tea.Cmd
	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.Sending() {
		t.Fatal("submit must mark a send in flight")
	}
	if !m.Buffer().IsEmpty() {
		t.Error("submit must clear the input even without an endpoint")
	}

	for _, msg := range drain(t, cmd) {
		if _, ok := msg.(SendErrorMsg); ok {
			m, _ = m.Update(msg)
		}
	}

	last := m.entries[len(m.entries)-1]
	if last.kind != entryError || last.content != ErrMsgNoEndpoint {
		t.Errorf("last entry = %+v, want fixed configuration error", last)
	}
	if m.Sending() {
		t.Error("send control must be re-enabled after the error")
	}
}

func TestSubmitWhileSendingIsIgnored(t *testing.T) {
	m := newTestPanel(t, "")
	m = typeText(m, "hola")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	m = typeText(m, "otra")
	before := len(m.entries)
	var cmd tea.Cmd
	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil || len(m.entries) != before {
		t.Error("second submit while pending must be a no-op")
	}
}

func TestReplyResolvesPendingAndAdoptsSession(t *testing.T) {
	m := newTestPanel(t, "")
	m = typeText(m, "hola")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	pending := m.pendingIdx
	if pending < 0 {
		t.Fatal("no pending placeholder after submit")
	}

	m, _ = m.Update(ReplyMsg{Text: "Encontré opciones.", SessionID: "srv-7"})

	if m.entries[pending].kind != entryAssistant || m.entries[pending].content != "Encontré opciones." {
		t.Errorf("pending entry = %+v, want replaced in place", m.entries[pending])
	}
	if m.Sending() {
		t.Error("send control must be re-enabled after the reply")
	}
	if got := m.store.Current().ID; got != "srv-7" {
		t.Errorf("session id = %q, want adopted", got)
	}
}

func TestGuardedDeletionThroughKeys(t *testing.T) {
	m := newTestPanel(t, "")
	m, _ = m.Update(AppendTokenMsg{Label: "Hotel Plaza", ID: "42"})
	m.guard.Now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	// Skip the trailing separator, then press backspace twice.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if ids := m.Buffer().TokenIDs(); len(ids) != 1 {
		t.Fatal("first backspace must not remove the token")
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if ids := m.Buffer().TokenIDs(); ids != nil {
		t.Errorf("second backspace must remove the token, ids = %v", ids)
	}
}

func TestRestoredTranscriptSeedsGreeting(t *testing.T) {
	m := newTestPanel(t, "")
	if len(m.entries) != 1 || m.entries[0].kind != entryAssistant {
		t.Fatalf("entries = %+v, want single greeting", m.entries)
	}
	if m.entries[0].content != session.DefaultGreeting {
		t.Errorf("greeting = %q", m.entries[0].content)
	}
}

func TestSendFailureIsPersisted(t *testing.T) {
	m := newTestPanel(t, "")
	m = typeText(m, "hola")

	var cmd tea.Cmd
	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	for _, msg := range drain(t, cmd) {
		if _, ok := msg.(SendErrorMsg); ok {
			m, _ = m.Update(msg)
		}
	}

	stored := m.store.Entries()
	last := stored[len(stored)-1]
	if last.Role != "assistant" || last.Content != ErrMsgNoEndpoint {
		t.Errorf("persisted tail = %+v, want the failure entry", last)
	}
	if prev := stored[len(stored)-2]; prev.Role != "user" {
		t.Errorf("entry before failure = %+v, want the user message", prev)
	}
}
