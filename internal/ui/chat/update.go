// Copyright (c) 2024-2025 Wayra Labs S.A. / RutaViva
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wayralabs/wayra-tui/internal/assistant"
	"github.com/wayralabs/wayra-tui/internal/guard"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update handles Bubble Tea messages for the panel.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case AppendTokenMsg:
		// External insertion works whether or not the input is focused;
		// the panel opens if closed.
		m.open = true
		m.buf.InsertToken(msg.Label, msg.ID)
		return m, nil

	case ReplyMsg:
		if msg.SessionID != "" {
			m.store.AdoptExternalSessionID(msg.SessionID)
		}
		text := msg.Text
		if text == "" {
			text = ErrMsgSendFailed
		}
		m.resolvePending(entryAssistant, text)
		m.store.Append("assistant", text)
		return m, nil

	case SendErrorMsg:
		text := ErrMsgSendFailed
		if assistant.IsNoEndpoint(msg.Err) {
			text = ErrMsgNoEndpoint
		}
		m.resolvePending(entryError, text)
		// Persist the failure so the restored transcript still explains
		// why the user message got no reply.
		m.store.Append("assistant", text)
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.typing, cmd = m.typing.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// handleKey routes one key press. Delete keys go through the guard;
// everything else edits the buffer directly.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Close()
		return m, nil

	case "enter":
		return m, m.submit()

	case "backspace":
		m.guard.HandleDelete(guard.Backward)
		return m, nil

	case "delete":
		m.guard.HandleDelete(guard.Forward)
		return m, nil

	case "left":
		m.buf.MoveCaretLeft()
		m.guard.Disarm()
		return m, nil

	case "right":
		m.buf.MoveCaretRight()
		m.guard.Disarm()
		return m, nil

	case "home":
		m.buf.SetCaret(0)
		m.guard.OnCaretChange()
		return m, nil

	case "end":
		m.buf.MoveCaretToEnd()
		m.guard.Disarm()
		return m, nil

	case "ctrl+u":
		m.buf.Clear()
		return m, nil

	case "up", "down", "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	switch msg.Type {
	case tea.KeyRunes:
		text := string(msg.Runes)
		// Bracketed paste arrives as one multi-rune burst.
		if len(msg.Runes) > 1 {
			m.buf.InsertPasted(text)
		} else {
			m.buf.InsertText(text)
		}
		return m, nil
	case tea.KeySpace:
		m.buf.InsertText(" ")
		return m, nil
	}
	return m, nil
}
