// Copyright (c) 2024-2025 Wayra Labs S.A. / RutaViva
// SPDX-License-Identifier: AGPL-3.0-or-later

package guard

import (
	"time"

	"github.com/wayralabs/wayra-tui/internal/composer"
)

// =============================================================================
// TYPES
// =============================================================================

// Direction is the delete direction of a key press.
type Direction int

const (
	// Backward is the backspace direction: delete before the caret.
	Backward Direction = iota
	// Forward is the delete-key direction: delete after the caret.
	Forward
)

// DefaultArmWindow is how long an armed token stays armed before the next
// delete press is treated as a fresh first press again.
const DefaultArmWindow = 1200 * time.Millisecond

// Guard is the deletion state machine for one composition buffer.
//
// Like the buffer it protects, Guard lives on the UI event loop and is not
// safe for concurrent use.
type Guard struct {
	buf *composer.Buffer

	// Window is the arm-to-confirm window. Now is the clock, injectable
	// for tests.
	Window time.Duration
	Now    func() time.Time

	armed    bool
	armedTok composer.Token
	armedDir Direction
	armedAt  time.Time

	onRepair func([]composer.Token)

	// observing suppresses re-entrant validation while the guard itself
	// mutates the buffer.
	observing bool
}

// New creates a guard for buf and installs it as the buffer's commit hook.
func New(buf *composer.Buffer) *Guard {
	g := &Guard{
		buf:    buf,
		Window: DefaultArmWindow,
		Now:    time.Now,
	}
	buf.SetCommitHook(g.Observe)
	return g
}

// SetRepairHook registers fn to be called with the tokens removed by a
// validation pass, so the surrounding UI can reflect the repair.
func (g *Guard) SetRepairHook(fn func([]composer.Token)) {
	g.onRepair = fn
}

// =============================================================================
// DELETE HANDLING
// =============================================================================

// HandleDelete processes one delete key press. When the caret is not
// adjacent to a token in the given direction the press falls through to
// plain rune deletion. When it is, the first press arms the token and the
// second press in the same direction within the arm window removes it
// wholesale. The return value reports whether the buffer changed.
func (g *Guard) HandleDelete(dir Direction) bool {
	tok, adjacent := g.adjacent(dir)
	if !adjacent {
		g.Disarm()
		if dir == Backward {
			return g.buf.DeleteBackward()
		}
		return g.buf.DeleteForward()
	}

	now := g.Now()
	if g.armed && g.armedTok == tok && g.armedDir == dir && now.Sub(g.armedAt) <= g.Window {
		g.Disarm()
		return g.buf.RemoveToken(tok)
	}

	g.armed = true
	g.armedTok = tok
	g.armedDir = dir
	g.armedAt = now
	return false
}

func (g *Guard) adjacent(dir Direction) (composer.Token, bool) {
	if dir == Backward {
		return g.buf.TokenBefore()
	}
	return g.buf.TokenAfter()
}

// Armed returns the currently armed token, if any. An arm past its window
// is reported as expired here too, so the highlight clears without
// waiting for another key press.
func (g *Guard) Armed() (composer.Token, bool) {
	if !g.armed {
		return composer.Token{}, false
	}
	if g.Now().Sub(g.armedAt) > g.Window {
		g.Disarm()
		return composer.Token{}, false
	}
	return g.armedTok, true
}

// Disarm clears any armed token.
func (g *Guard) Disarm() {
	g.armed = false
	g.armedTok = composer.Token{}
}

// OnCaretChange disarms and re-normalizes the caret. The UI calls this
// after cursor keys and mouse clicks in the input.
func (g *Guard) OnCaretChange() {
	g.Disarm()
	g.buf.NormalizeCaret()
}

// =============================================================================
// VALIDATION
// =============================================================================

// Observe is the buffer's commit hook. Every mutation disarms the guard,
// and mutations that can corrupt a token trigger a validation pass that
// removes half-edited tokens wholesale.
func (g *Guard) Observe(m composer.Mutation) {
	if g.observing {
		return
	}
	g.Disarm()

	g.observing = true
	removed := g.buf.Validate()
	g.observing = false

	if len(removed) > 0 && g.onRepair != nil {
		g.onRepair(removed)
	}
}
