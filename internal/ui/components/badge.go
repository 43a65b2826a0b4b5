// Copyright (c) 2024-2025 Wayra Labs S.A. / RutaViva
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/wayralabs/wayra-tui/internal/gesture"
	"github.com/wayralabs/wayra-tui/internal/ui/styles"
)

// =============================================================================
// FLOATING BADGE
// =============================================================================

// Badge is the floating chat trigger. It can be dragged anywhere in the
// terminal; a click (as decided by the gesture arbiter) opens the chat
// panel.
type Badge struct {
	theme   *styles.Theme
	arbiter *gesture.Arbiter

	label  string
	pos    gesture.Point
	width  int
	height int

	pressed bool
}

// NewBadge creates the badge. A negative position means "never moved":
// the badge snaps to the default corner on the first resize.
func NewBadge(theme *styles.Theme, arbiter *gesture.Arbiter, pos gesture.Point) *Badge {
	return &Badge{
		theme:   theme,
		arbiter: arbiter,
		label:   "RutaViva",
		pos:     pos,
	}
}

// Position returns the badge's current cell position.
func (b *Badge) Position() gesture.Point {
	return b.pos
}

// SetViewport records the terminal size and keeps the badge on screen.
// An unset position snaps to the bottom-right corner.
func (b *Badge) SetViewport(width, height int) {
	b.width = width
	b.height = height
	if b.pos.X < 0 || b.pos.Y < 0 {
		b.pos = gesture.SnapToCorner(
			gesture.Point{X: width, Y: height},
			width, height,
			gesture.DefaultSnapMarginX, gesture.DefaultSnapMarginY,
		)
		return
	}
	b.pos = gesture.ClampToViewport(b.pos, width, height, 0)
}

// Contains reports whether the cell (x, y) falls on the rendered badge.
func (b *Badge) Contains(x, y int) bool {
	if y != b.pos.Y {
		return false
	}
	// Padding adds one cell each side of the label.
	w := runewidth.StringWidth(b.label) + 2
	return x >= b.pos.X && x < b.pos.X+w
}

// HandleMouse feeds one mouse event through the gesture arbiter and
// reports whether the badge was clicked. Drags move the badge, clamped
// to the viewport margin.
func (b *Badge) HandleMouse(msg tea.MouseMsg, now time.Time) bool {
	p := gesture.Point{X: msg.X, Y: msg.Y}

	switch msg.Type {
	case tea.MouseLeft:
		if !b.pressed {
			if !b.Contains(msg.X, msg.Y) {
				return false
			}
			b.pressed = true
			b.arbiter.Press(p, now)
			return false
		}
		// Repeated press events while held are drag motion.
		b.trackMove(p, now)
		return false

	case tea.MouseMotion:
		if b.pressed {
			b.trackMove(p, now)
		}
		return false

	case tea.MouseRelease:
		if !b.pressed {
			return false
		}
		b.pressed = false
		if b.arbiter.Release(now) == gesture.DecisionDrag {
			return false
		}
		return b.arbiter.ResolveClick(now) == gesture.DecisionClick
	}
	return false
}

func (b *Badge) trackMove(p gesture.Point, now time.Time) {
	if b.arbiter.Move(p, now) {
		b.pos = gesture.ClampToViewport(p, b.width, b.height, gesture.DefaultViewportMargin)
	}
}

// Dragging reports whether the badge is currently tracking the pointer.
func (b *Badge) Dragging() bool {
	return b.arbiter.Dragging()
}

// View renders the badge label.
func (b *Badge) View() string {
	if b.Dragging() {
		return b.theme.BadgeDragging.Render(b.label)
	}
	return b.theme.Badge.Render(b.label)
}
