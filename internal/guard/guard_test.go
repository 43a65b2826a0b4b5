// Copyright (c) 2024-2025 Wayra Labs S.A. / RutaViva
// SPDX-License-Identifier: AGPL-3.0-or-later

package guard

import (
	"testing"
	"time"

	"github.com/wayralabs/wayra-tui/internal/composer"
)

// fakeClock steps time manually so arm-window behavior is deterministic.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newGuarded(t *testing.T) (*composer.Buffer, *Guard, *fakeClock) {
	t.Helper()
	buf := composer.New()
	g := New(buf)
	clk := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	g.Now = clk.Now
	return buf, g, clk
}

func TestFirstDeleteArmsWithoutRemoving(t *testing.T) {
	buf, g, _ := newGuarded(t)
	buf.InsertToken("Hotel Plaza", "42")
	buf.MoveCaretLeft() // skip the trailing space, caret right after the token

	if g.HandleDelete(Backward) {
		t.Error("first press must not change the buffer")
	}
	if buf.PlainText() != "Hotel Plaza " {
		t.Errorf("buffer changed on arm: %q", buf.PlainText())
	}
	tok, ok := g.Armed()
	if !ok || tok.ID != "42" {
		t.Errorf("Armed() = %v, %v, want token 42", tok, ok)
	}
}

func TestSecondDeleteWithinWindowRemoves(t *testing.T) {
	buf, g, clk := newGuarded(t)
	buf.InsertText("ver ")
	buf.InsertToken("Hostal Sur", "7")
	buf.MoveCaretLeft()

	g.HandleDelete(Backward)
	clk.advance(500 * time.Millisecond)
	if !g.HandleDelete(Backward) {
		t.Fatal("second press within the window must remove the token")
	}
	if ids := buf.TokenIDs(); ids != nil {
		t.Errorf("token survived: %v", ids)
	}
	if _, ok := g.Armed(); ok {
		t.Error("guard should disarm after a confirmed removal")
	}
}

func TestExpiredArmReArmsInsteadOfRemoving(t *testing.T) {
	buf, g, clk := newGuarded(t)
	buf.InsertToken("Hotel Plaza", "42")
	buf.MoveCaretLeft()

	g.HandleDelete(Backward)
	clk.advance(g.Window + time.Millisecond)

	if g.HandleDelete(Backward) {
		t.Error("press after the window expired must re-arm, not remove")
	}
	if ids := buf.TokenIDs(); len(ids) != 1 {
		t.Errorf("token removed after expiry: %v", ids)
	}
	if _, ok := g.Armed(); !ok {
		t.Error("guard should be re-armed")
	}
}

func TestArmedExpiresForHighlight(t *testing.T) {
	buf, g, clk := newGuarded(t)
	buf.InsertToken("Hotel Plaza", "42")
	buf.MoveCaretLeft()

	g.HandleDelete(Backward)
	clk.advance(g.Window + time.Millisecond)
	if _, ok := g.Armed(); ok {
		t.Error("Armed() must report expiry without another key press")
	}
}

func TestTypingDisarms(t *testing.T) {
	buf, g, _ := newGuarded(t)
	buf.InsertToken("Hotel Plaza", "42")
	buf.MoveCaretLeft()

	g.HandleDelete(Backward)
	buf.InsertText("x")
	if _, ok := g.Armed(); ok {
		t.Error("a committed mutation must disarm the guard")
	}
}

func TestCaretMoveDisarms(t *testing.T) {
	buf, g, _ := newGuarded(t)
	buf.InsertToken("Hotel Plaza", "42")
	buf.MoveCaretLeft()

	g.HandleDelete(Backward)
	buf.MoveCaretLeft()
	g.OnCaretChange()
	if _, ok := g.Armed(); ok {
		t.Error("caret movement must disarm the guard")
	}
}

func TestDifferentTokenReArms(t *testing.T) {
	buf, g, _ := newGuarded(t)
	buf.InsertToken("A", "1")
	buf.InsertToken("B", "2")
	// "A B " with A spanning [0, 1) and B spanning [2, 3).

	buf.SetCaret(1)
	g.HandleDelete(Backward) // arms A
	buf.SetCaret(3)
	if g.HandleDelete(Backward) {
		t.Error("press on a different token must arm it, not remove")
	}
	tok, ok := g.Armed()
	if !ok || tok.ID != "2" {
		t.Errorf("Armed() = %v, %v, want token 2", tok, ok)
	}
	if ids := buf.TokenIDs(); len(ids) != 2 {
		t.Errorf("tokens = %v, want both intact", ids)
	}
}

func TestPlainDeleteFallsThrough(t *testing.T) {
	buf, g, _ := newGuarded(t)
	buf.InsertText("hola")

	if !g.HandleDelete(Backward) {
		t.Fatal("delete away from tokens must edit normally")
	}
	if got := buf.PlainText(); got != "hol" {
		t.Errorf("PlainText() = %q", got)
	}
}

func TestForwardDeleteGuardsLeadingToken(t *testing.T) {
	buf, g, clk := newGuarded(t)
	buf.InsertToken("Hostal Sur", "7")
	buf.SetCaret(0)

	if g.HandleDelete(Forward) {
		t.Error("first forward press must arm")
	}
	clk.advance(100 * time.Millisecond)
	if !g.HandleDelete(Forward) {
		t.Fatal("second forward press must remove")
	}
	if ids := buf.TokenIDs(); ids != nil {
		t.Errorf("token survived forward removal: %v", ids)
	}
}

func TestValidationRepairRemovesCorruptedToken(t *testing.T) {
	buf, g, _ := newGuarded(t)
	var repaired []composer.Token
	g.SetRepairHook(func(toks []composer.Token) { repaired = append(repaired, toks...) })

	buf.InsertText("ir a ")
	buf.InsertToken("Hostal Sur", "7")
	// Raw edit biting one rune out of the label, as paste-over-selection does.
	buf.ReplaceRange(5, 6, "")

	if len(repaired) != 1 || repaired[0].ID != "7" {
		t.Fatalf("repair hook saw %v, want token 7", repaired)
	}
	if ids := buf.TokenIDs(); ids != nil {
		t.Errorf("corrupted token still present: %v", ids)
	}
}

func TestValidationLeavesIntactTokensAlone(t *testing.T) {
	buf, g, _ := newGuarded(t)
	var repaired []composer.Token
	g.SetRepairHook(func(toks []composer.Token) { repaired = append(repaired, toks...) })

	buf.InsertToken("Hotel Aymara", "1")
	buf.InsertText("y algo mas")
	buf.ReplaceRange(13, 15, "") // edit inside the free text only

	if repaired != nil {
		t.Errorf("repair fired for intact tokens: %v", repaired)
	}
	if ids := buf.TokenIDs(); len(ids) != 1 {
		t.Errorf("intact token removed: %v", ids)
	}
}
