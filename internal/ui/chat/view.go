// Copyright (c) 2024-2025 Wayra Labs S.A. / RutaViva
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wayralabs/wayra-tui/internal/composer"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the panel. A closed panel renders nothing; the badge is
// the only visible trigger.
func (m Model) View() string {
	if !m.open {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.theme.Header.Render("RutaViva") + " " + m.theme.HeaderSub.Render("asistente de viaje"))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if m.typing.Active() {
		b.WriteString(m.typing.View())
		b.WriteString("\n")
	}
	b.WriteString(m.theme.InputContainer.Width(m.width).Render(m.renderInput()))
	return b.String()
}

// refreshTranscript rebuilds the viewport content and scrolls to the
// latest entry.
func (m *Model) refreshTranscript() {
	var b strings.Builder
	for i, e := range m.entries {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.renderEntry(e))
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m *Model) renderEntry(e entry) string {
	stamp := ""
	if !e.ts.IsZero() {
		stamp = m.theme.Timestamp.Render(e.ts.Format("15:04")) + " "
	}

	switch e.kind {
	case entryUser:
		return stamp + m.theme.UserBubble.Render(m.renderUserContent(e.content))
	case entryPending:
		return m.theme.PendingText.Render("...")
	case entryError:
		return stamp + m.theme.ErrorText.Render(e.content)
	default:
		if m.renderer != nil {
			if rendered, err := m.renderer.Render(e.content); err == nil {
				return stamp + m.theme.AssistantText.Render(strings.TrimRight(rendered, "\n"))
			}
		}
		return stamp + m.theme.AssistantText.Render(e.content)
	}
}

// renderUserContent rehydrates annotated text so restored listing
// references keep their chip styling in the transcript.
func (m *Model) renderUserContent(annotated string) string {
	var b strings.Builder
	for _, seg := range composer.ParseAnnotated(annotated) {
		if seg.Kind == composer.SegmentToken {
			b.WriteString(m.theme.TokenChip.Render(seg.Token.Label))
		} else {
			b.WriteString(seg.Text)
		}
	}
	return b.String()
}

// =============================================================================
// COMPOSER RENDERING
// =============================================================================

// renderInput draws the composer line: free text plain, tokens as chips,
// the armed token highlighted, and a caret bar at the caret offset.
func (m Model) renderInput() string {
	prompt := m.theme.InputPrompt.Render("> ")

	if m.buf.IsEmpty() {
		return prompt + m.theme.Caret.Render(" ") + m.theme.InputPlaceholder.Render("Escribí tu consulta...")
	}

	armed, hasArmed := m.guard.Armed()
	caret := m.buf.Caret()
	caretBar := m.theme.Caret.Render("│")
	caretDrawn := false

	var parts []string
	offset := 0
	for _, seg := range m.buf.Segments() {
		runes := []rune(seg.Rendered())
		end := offset + len(runes)

		switch seg.Kind {
		case composer.SegmentToken:
			if caret == offset && !caretDrawn {
				parts = append(parts, caretBar)
				caretDrawn = true
			}
			style := m.theme.TokenChip
			if hasArmed && seg.Token == armed {
				style = m.theme.TokenChipArmed
			}
			parts = append(parts, style.Render(seg.Rendered()))
		default:
			if caret >= offset && caret < end && !caretDrawn {
				at := caret - offset
				parts = append(parts,
					m.theme.InputText.Render(string(runes[:at])),
					caretBar,
					m.theme.InputText.Render(string(runes[at:])),
				)
				caretDrawn = true
			} else {
				parts = append(parts, m.theme.InputText.Render(seg.Rendered()))
			}
		}
		offset = end
	}
	if !caretDrawn {
		parts = append(parts, caretBar)
	}

	return prompt + lipgloss.JoinHorizontal(lipgloss.Left, parts...)
}
