// Copyright (c) 2024-2025 Wayra Labs S.A. / RutaViva
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wayralabs/wayra-tui/internal/gesture"
	"github.com/wayralabs/wayra-tui/internal/ui/styles"
)

var badgeT0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestBadge() *Badge {
	b := NewBadge(styles.NewTheme(), gesture.New(), gesture.Point{X: -1, Y: -1})
	b.SetViewport(80, 24)
	return b
}

func TestSetViewportSnapsUnsetPosition(t *testing.T) {
	b := newTestBadge()
	pos := b.Position()
	if pos.X != 63 || pos.Y != 19 {
		t.Errorf("snapped position = %v, want bottom-right corner inset", pos)
	}
}

func TestContains(t *testing.T) {
	b := newTestBadge()
	pos := b.Position()
	if !b.Contains(pos.X, pos.Y) {
		t.Error("badge origin must hit")
	}
	if !b.Contains(pos.X+5, pos.Y) {
		t.Error("inside the label must hit")
	}
	if b.Contains(pos.X, pos.Y+1) {
		t.Error("row below must miss")
	}
	if b.Contains(pos.X-1, pos.Y) {
		t.Error("cell left of the badge must miss")
	}
}

func TestQuickClickOpens(t *testing.T) {
	b := newTestBadge()
	pos := b.Position()

	press := tea.MouseMsg{Type: tea.MouseLeft, X: pos.X, Y: pos.Y}
	if b.HandleMouse(press, badgeT0) {
		t.Error("press alone must not click")
	}
	release := tea.MouseMsg{Type: tea.MouseRelease, X: pos.X, Y: pos.Y}
	if !b.HandleMouse(release, badgeT0.Add(80*time.Millisecond)) {
		t.Error("quick still release must click")
	}
}

func TestDragMovesWithoutClicking(t *testing.T) {
	b := newTestBadge()
	start := b.Position()

	b.HandleMouse(tea.MouseMsg{Type: tea.MouseLeft, X: start.X, Y: start.Y}, badgeT0)
	b.HandleMouse(tea.MouseMsg{Type: tea.MouseLeft, X: start.X - 20, Y: start.Y - 5}, badgeT0.Add(50*time.Millisecond))

	if !b.Dragging() {
		t.Fatal("displacement past threshold must start dragging")
	}
	moved := b.Position()
	if moved == start {
		t.Error("position must track the pointer during drag")
	}

	if b.HandleMouse(tea.MouseMsg{Type: tea.MouseRelease, X: start.X - 20, Y: start.Y - 5}, badgeT0.Add(100*time.Millisecond)) {
		t.Error("drag release must not click")
	}
}

func TestDragClampsToViewport(t *testing.T) {
	b := newTestBadge()
	start := b.Position()

	b.HandleMouse(tea.MouseMsg{Type: tea.MouseLeft, X: start.X, Y: start.Y}, badgeT0)
	b.HandleMouse(tea.MouseMsg{Type: tea.MouseMotion, X: 500, Y: 500}, badgeT0.Add(50*time.Millisecond))

	pos := b.Position()
	if pos.X > 71 || pos.Y > 15 {
		t.Errorf("position %v escaped the viewport margin", pos)
	}
}

func TestPressOffBadgeIgnored(t *testing.T) {
	b := newTestBadge()
	pos := b.Position()

	b.HandleMouse(tea.MouseMsg{Type: tea.MouseLeft, X: 0, Y: 0}, badgeT0)
	if b.HandleMouse(tea.MouseMsg{Type: tea.MouseRelease, X: 0, Y: 0}, badgeT0.Add(50*time.Millisecond)) {
		t.Error("click away from the badge must not open")
	}
	if b.Position() != pos {
		t.Error("badge moved without being pressed")
	}
}
