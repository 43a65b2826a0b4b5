// Copyright (c) 2024-2025 Wayra Labs S.A. / RutaViva
// SPDX-License-Identifier: AGPL-3.0-or-later

package gesture

import (
	"time"
)

// =============================================================================
// TYPES AND DEFAULTS
// =============================================================================

// Point is a position in terminal cells.
type Point struct {
	X int
	Y int
}

// Decision is the outcome of a completed interaction.
type Decision int

const (
	// DecisionNone means the sequence is still pending resolution.
	DecisionNone Decision = iota
	// DecisionClick fires the control's primary action.
	DecisionClick
	// DecisionDrag repositions the control and suppresses the click.
	DecisionDrag
)

func (d Decision) String() string {
	switch d {
	case DecisionClick:
		return "click"
	case DecisionDrag:
		return "drag"
	default:
		return "none"
	}
}

const (
	// DefaultDragThreshold is the displacement, in cells, past which a
	// press becomes a drag.
	DefaultDragThreshold = 8
	// DefaultClickMaxDuration is the longest press still eligible to be a
	// click when combined with recent movement.
	DefaultClickMaxDuration = 150 * time.Millisecond
	// DefaultRecentMoveWindow is how recently the pointer must have moved
	// for a slow press to be treated as a drag.
	DefaultRecentMoveWindow = 400 * time.Millisecond
)

// =============================================================================
// ARBITER
// =============================================================================

// Arbiter tracks one pointer interaction at a time. A second concurrent
// pointer is ignored: Press while already pressed is a no-op.
type Arbiter struct {
	Threshold  int
	ClickMax   time.Duration
	MoveWindow time.Duration

	pressed   bool
	start     Point
	startTime time.Time
	lastMove  time.Time
	moved     bool
	released  time.Time
}

// New creates an arbiter with the default thresholds.
func New() *Arbiter {
	return &Arbiter{
		Threshold:  DefaultDragThreshold,
		ClickMax:   DefaultClickMaxDuration,
		MoveWindow: DefaultRecentMoveWindow,
	}
}

// Press begins tracking an interaction. The moved flag from the previous
// interaction is cleared here and only here, so the synthetic click that
// trails a drag release can still be inspected and suppressed.
func (a *Arbiter) Press(p Point, t time.Time) {
	if a.pressed {
		return
	}
	a.pressed = true
	a.start = p
	a.startTime = t
	a.moved = false
}

// Move feeds a pointer position while pressed and reports whether the
// interaction is a drag in progress, in which case the caller updates the
// control's position to track the pointer. Every move refreshes the
// recent-move time; only displacement past the threshold sets moved.
func (a *Arbiter) Move(p Point, t time.Time) bool {
	if !a.pressed {
		return false
	}
	a.lastMove = t
	if !a.moved {
		dx := p.X - a.start.X
		dy := p.Y - a.start.Y
		if dx*dx+dy*dy >= a.Threshold*a.Threshold {
			a.moved = true
		}
	}
	return a.moved
}

// Release ends the press. A sequence that crossed the drag threshold is
// classified immediately; otherwise the answer is DecisionNone and the
// caller resolves the trailing click with ResolveClick.
func (a *Arbiter) Release(t time.Time) Decision {
	if !a.pressed {
		return DecisionNone
	}
	a.pressed = false
	a.released = t
	if a.moved {
		return DecisionDrag
	}
	return DecisionNone
}

// ResolveClick classifies the click event that follows a release. A click
// after a drag is always suppressed. A slow press that wiggled recently
// but never crossed the threshold is treated as a drag too; everything
// else is a genuine click.
func (a *Arbiter) ResolveClick(t time.Time) Decision {
	if a.moved {
		return DecisionDrag
	}
	duration := a.released.Sub(a.startTime)
	if duration > a.ClickMax && !a.lastMove.IsZero() && t.Sub(a.lastMove) < a.MoveWindow {
		return DecisionDrag
	}
	return DecisionClick
}

// Dragging reports whether a press is active and past the threshold.
func (a *Arbiter) Dragging() bool {
	return a.pressed && a.moved
}

// =============================================================================
// GEOMETRY
// =============================================================================

// DefaultViewportMargin keeps the badge clear of the terminal edges while
// dragging.
const DefaultViewportMargin = 8

// Snap insets from the corner the badge returns to after a resize.
// Terminal cells are roughly twice as tall as wide, so the vertical inset
// is smaller.
const (
	DefaultSnapMarginX = 16
	DefaultSnapMarginY = 4
)

// ClampToViewport keeps p at least margin cells inside a width x height
// viewport. A viewport too small for the margin collapses to its center.
func ClampToViewport(p Point, width, height, margin int) Point {
	p.X = clamp(p.X, margin, width-1-margin)
	p.Y = clamp(p.Y, margin, height-1-margin)
	return p
}

// SnapToCorner moves p to the nearest viewport corner, inset by the snap
// margins. Called on terminal resize so the badge never ends up off screen.
func SnapToCorner(p Point, width, height, marginX, marginY int) Point {
	left := marginX
	right := width - 1 - marginX
	top := marginY
	bottom := height - 1 - marginY
	if right < left {
		right = left
	}
	if bottom < top {
		bottom = top
	}

	if p.X-left > right-p.X {
		p.X = right
	} else {
		p.X = left
	}
	if p.Y-top > bottom-p.Y {
		p.Y = bottom
	} else {
		p.Y = top
	}
	return p
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return (lo + hi) / 2
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
