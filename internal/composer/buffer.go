// Copyright (c) 2024-2025 Wayra Labs S.A. / RutaViva
// SPDX-License-Identifier: AGPL-3.0-or-later

package composer

import (
	"strings"
)

// =============================================================================
// TOKEN AND SEGMENT TYPES
// =============================================================================

// Token identifies a referenced catalog listing embedded in the input.
// The label is frozen at insertion time; any divergence between the frozen
// label and what the buffer renders is treated as corruption and the token
// is removed wholesale by Validate.
type Token struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// SegmentKind distinguishes free text from atomic tokens.
type SegmentKind int

const (
	SegmentText SegmentKind = iota
	SegmentToken
)

// Segment is one element of the composition buffer.
type Segment struct {
	Kind  SegmentKind
	Text  string // content for SegmentText
	Token Token  // frozen identity for SegmentToken

	// live is the rendered label of a token segment. It matches Token.Label
	// unless a raw edit slipped past the guard (IME, paste over a span).
	live string
}

// Rendered returns the text this segment currently displays.
func (s Segment) Rendered() string {
	if s.Kind == SegmentToken {
		return s.live
	}
	return s.Text
}

// IsCorrupted reports whether a token segment's rendered label has diverged
// from its frozen label. Always false for text segments.
func (s Segment) IsCorrupted() bool {
	return s.Kind == SegmentToken && s.live != s.Token.Label
}

// =============================================================================
// MUTATIONS
// =============================================================================

// MutationKind categorizes buffer mutations for the commit hook.
type MutationKind int

const (
	MutInsertText MutationKind = iota
	MutInsertToken
	MutDeleteText
	MutRemoveToken
	MutReplaceRange
	MutClear
)

// Mutation describes a committed buffer change. Token is set for
// MutInsertToken and MutRemoveToken.
type Mutation struct {
	Kind  MutationKind
	Token *Token
}

// =============================================================================
// BUFFER
// =============================================================================

// Buffer holds the mixed text/token content of the chat input plus the
// caret. Positions are rune offsets into the rendered text; a token spans
// as many positions as its rendered label has runes.
//
// Buffer is not safe for concurrent use; it lives on the UI event loop.
type Buffer struct {
	segments []Segment
	caret    int

	onCommit func(Mutation)
}

// New creates an empty buffer.
func New() *Buffer {
	return &Buffer{}
}

// SetCommitHook registers the single observation point invoked after every
// committed mutation, in the order mutations are applied. The deletion
// guard subscribes here; nothing may bypass it.
func (b *Buffer) SetCommitHook(fn func(Mutation)) {
	b.onCommit = fn
}

func (b *Buffer) commit(m Mutation) {
	if b.onCommit != nil {
		b.onCommit(m)
	}
}

// Segments returns a copy of the current segment list for rendering.
func (b *Buffer) Segments() []Segment {
	out := make([]Segment, len(b.segments))
	copy(out, b.segments)
	return out
}

// Len returns the total rendered length in runes.
func (b *Buffer) Len() int {
	n := 0
	for _, s := range b.segments {
		n += len([]rune(s.Rendered()))
	}
	return n
}

// IsEmpty reports whether the buffer holds no content.
func (b *Buffer) IsEmpty() bool {
	return b.Len() == 0
}

// =============================================================================
// CARET
// =============================================================================

// Caret returns the caret position in rune offsets.
func (b *Buffer) Caret() int {
	return b.caret
}

// SetCaret moves the caret to pos, clamped to the buffer bounds. A position
// strictly inside a token is normalized to just after that token; the
// return value reports whether such a relocation happened.
func (b *Buffer) SetCaret(pos int) bool {
	if pos < 0 {
		pos = 0
	}
	if max := b.Len(); pos > max {
		pos = max
	}
	b.caret = pos
	return b.NormalizeCaret()
}

// NormalizeCaret relocates a caret resting strictly inside a token span to
// just after that token. Returns true if the caret moved.
func (b *Buffer) NormalizeCaret() bool {
	start := 0
	for _, s := range b.segments {
		end := start + len([]rune(s.Rendered()))
		if s.Kind == SegmentToken && b.caret > start && b.caret < end {
			b.caret = end
			return true
		}
		start = end
	}
	return false
}

// MoveCaretLeft moves the caret one position left, hopping over an entire
// token when the caret sits at its trailing boundary.
func (b *Buffer) MoveCaretLeft() {
	if b.caret == 0 {
		return
	}
	if idx, ok := b.tokenEndingAt(b.caret); ok {
		b.caret -= len([]rune(b.segments[idx].Rendered()))
		return
	}
	b.caret--
	b.NormalizeCaret()
}

// MoveCaretRight moves the caret one position right, hopping over an entire
// token when the caret sits at its leading boundary.
func (b *Buffer) MoveCaretRight() {
	if b.caret >= b.Len() {
		return
	}
	if idx, ok := b.tokenStartingAt(b.caret); ok {
		b.caret += len([]rune(b.segments[idx].Rendered()))
		return
	}
	b.caret++
	b.NormalizeCaret()
}

// MoveCaretToEnd places the caret after the last segment.
func (b *Buffer) MoveCaretToEnd() {
	b.caret = b.Len()
}

// =============================================================================
// TOKEN ADJACENCY
// =============================================================================

// TokenBefore returns the token whose span ends exactly at the caret, if
// any. This is the deletion guard's backward-adjacency query.
func (b *Buffer) TokenBefore() (Token, bool) {
	if idx, ok := b.tokenEndingAt(b.caret); ok {
		return b.segments[idx].Token, true
	}
	return Token{}, false
}

// TokenAfter returns the token whose span starts exactly at the caret, if
// any. This is the deletion guard's forward-adjacency query.
func (b *Buffer) TokenAfter() (Token, bool) {
	if idx, ok := b.tokenStartingAt(b.caret); ok {
		return b.segments[idx].Token, true
	}
	return Token{}, false
}

func (b *Buffer) tokenEndingAt(pos int) (int, bool) {
	start := 0
	for i, s := range b.segments {
		end := start + len([]rune(s.Rendered()))
		if s.Kind == SegmentToken && end == pos {
			return i, true
		}
		start = end
	}
	return 0, false
}

func (b *Buffer) tokenStartingAt(pos int) (int, bool) {
	start := 0
	for i, s := range b.segments {
		if s.Kind == SegmentToken && start == pos {
			return i, true
		}
		start += len([]rune(s.Rendered()))
	}
	return 0, false
}

// =============================================================================
// INSERTION
// =============================================================================

// InsertToken appends a token to the end of the buffer: a separating space
// is added first unless the buffer already ends in whitespace, then the
// token, then a trailing space, and the caret moves to the end. The call
// works whether or not the input is focused; the user's next keystroke
// lands after the inserted token, never inside it.
func (b *Buffer) InsertToken(label, id string) {
	if !b.endsInWhitespace() {
		b.appendText(" ")
	}
	tok := Token{ID: id, Label: label}
	b.segments = append(b.segments, Segment{Kind: SegmentToken, Token: tok, live: label})
	b.appendText(" ")
	b.caret = b.Len()
	b.commit(Mutation{Kind: MutInsertToken, Token: &tok})
}

// InsertText inserts free text at the caret. A caret inside a token is
// normalized to the token's trailing boundary first. The auto-inserted
// separator after a token is soft: a space typed directly after it merges
// with it instead of doubling.
func (b *Buffer) InsertText(text string) {
	if text == "" {
		return
	}
	b.NormalizeCaret()
	if strings.HasPrefix(text, " ") && b.caretAfterSoftSpace() {
		text = text[1:]
		if text == "" {
			return
		}
	}
	b.spliceText(b.caret, text)
	b.caret += len([]rune(text))
	b.mergeText()
	b.commit(Mutation{Kind: MutInsertText})
}

// InsertPasted inserts clipboard content, forced to plain text. Marker
// syntax is rewritten to bare labels and control characters are stripped so
// the clipboard can never forge a token.
func (b *Buffer) InsertPasted(text string) {
	b.InsertText(SanitizePaste(text))
}

// caretAfterSoftSpace reports whether the rune before the caret is the
// auto-inserted separator space directly trailing a token.
func (b *Buffer) caretAfterSoftSpace() bool {
	if b.caret == 0 {
		return false
	}
	start := 0
	prevWasToken := false
	for _, s := range b.segments {
		runes := []rune(s.Rendered())
		end := start + len(runes)
		if b.caret > start && b.caret <= end {
			if s.Kind != SegmentText {
				return false
			}
			off := b.caret - start
			return runes[off-1] == ' ' && off == 1 && prevWasToken
		}
		prevWasToken = s.Kind == SegmentToken
		start = end
	}
	return false
}

// endsInWhitespace reports whether the final rendered rune is whitespace.
// Token labels never count: a buffer ending in a token needs a separator.
func (b *Buffer) endsInWhitespace() bool {
	if len(b.segments) == 0 {
		return true
	}
	last := b.segments[len(b.segments)-1]
	if last.Kind == SegmentToken {
		return false
	}
	r := []rune(last.Text)
	return len(r) > 0 && (r[len(r)-1] == ' ' || r[len(r)-1] == '\t' || r[len(r)-1] == '\n')
}

// appendText appends to the trailing text segment, creating one if needed.
func (b *Buffer) appendText(text string) {
	if n := len(b.segments); n > 0 && b.segments[n-1].Kind == SegmentText {
		b.segments[n-1].Text += text
		return
	}
	b.segments = append(b.segments, Segment{Kind: SegmentText, Text: text})
}

// spliceText inserts text at a rune position, splitting a text segment or
// slotting a new segment at a boundary.
func (b *Buffer) spliceText(pos int, text string) {
	start := 0
	for i, s := range b.segments {
		runes := []rune(s.Rendered())
		end := start + len(runes)
		if s.Kind == SegmentText && pos >= start && pos <= end {
			off := pos - start
			b.segments[i].Text = string(runes[:off]) + text + string(runes[off:])
			return
		}
		if pos == start {
			b.insertSegmentAt(i, Segment{Kind: SegmentText, Text: text})
			return
		}
		start = end
	}
	b.segments = append(b.segments, Segment{Kind: SegmentText, Text: text})
}

func (b *Buffer) insertSegmentAt(i int, seg Segment) {
	b.segments = append(b.segments, Segment{})
	copy(b.segments[i+1:], b.segments[i:])
	b.segments[i] = seg
}

// =============================================================================
// DELETION
// =============================================================================

// DeleteBackward removes the rune before the caret. The call is refused
// (returns false) when the preceding content is a token: atomic removal
// goes through the deletion guard, never through rune deletion.
func (b *Buffer) DeleteBackward() bool {
	b.NormalizeCaret()
	if b.caret == 0 {
		return false
	}
	if _, ok := b.tokenEndingAt(b.caret); ok {
		return false
	}
	b.deleteRuneAt(b.caret - 1)
	b.caret--
	b.repairSpacing()
	b.commit(Mutation{Kind: MutDeleteText})
	return true
}

// DeleteForward removes the rune after the caret, refusing when that
// content is a token.
func (b *Buffer) DeleteForward() bool {
	b.NormalizeCaret()
	if b.caret >= b.Len() {
		return false
	}
	if _, ok := b.tokenStartingAt(b.caret); ok {
		return false
	}
	b.deleteRuneAt(b.caret)
	b.repairSpacing()
	b.commit(Mutation{Kind: MutDeleteText})
	return true
}

// deleteRuneAt removes a single rune belonging to a text segment.
func (b *Buffer) deleteRuneAt(pos int) {
	start := 0
	for i, s := range b.segments {
		runes := []rune(s.Rendered())
		end := start + len(runes)
		if s.Kind == SegmentText && pos >= start && pos < end {
			off := pos - start
			b.segments[i].Text = string(runes[:off]) + string(runes[off+1:])
			break
		}
		start = end
	}
	b.mergeText()
}

// RemoveToken removes the token with the given identity wholesale, together
// with one adjacent auto-inserted space, and parks the caret at the
// resulting boundary. Used by the deletion guard on a confirmed two-press
// delete. Returns false if the token is no longer present.
func (b *Buffer) RemoveToken(tok Token) bool {
	for i, s := range b.segments {
		if s.Kind != SegmentToken || s.Token != tok {
			continue
		}
		boundary := b.segmentStart(i)
		b.segments = append(b.segments[:i], b.segments[i+1:]...)

		// Eat the auto-inserted trailing space, or the leading one when the
		// token sat at the very end.
		if i < len(b.segments) && b.segments[i].Kind == SegmentText && strings.HasPrefix(b.segments[i].Text, " ") {
			b.segments[i].Text = b.segments[i].Text[1:]
		} else if i > 0 && b.segments[i-1].Kind == SegmentText && strings.HasSuffix(b.segments[i-1].Text, " ") {
			b.segments[i-1].Text = strings.TrimSuffix(b.segments[i-1].Text, " ")
			boundary--
		}

		b.mergeText()
		b.repairSpacing()
		b.SetCaret(boundary)
		b.commit(Mutation{Kind: MutRemoveToken, Token: &tok})
		return true
	}
	return false
}

// =============================================================================
// RAW EDITS
// =============================================================================

// ReplaceRange applies a raw edit over [start, end), the path taken by
// paste-over-selection and IME commits. Text spans are edited normally and
// tokens fully covered by the range are removed wholesale. A token only
// partially covered has its rendered label mutated - exactly the kind of
// edit the guard's validator then repairs by deleting the token.
func (b *Buffer) ReplaceRange(start, end int, text string) {
	if start < 0 {
		start = 0
	}
	if max := b.Len(); end > max {
		end = max
	}
	if end < start {
		end = start
	}

	var out []Segment
	segStart := 0
	for _, s := range b.segments {
		runes := []rune(s.Rendered())
		segEnd := segStart + len(runes)

		switch {
		case segEnd <= start || segStart >= end:
			out = append(out, s)
		case s.Kind == SegmentText:
			keepLeft := ""
			if start > segStart {
				keepLeft = string(runes[:start-segStart])
			}
			keepRight := ""
			if end < segEnd {
				keepRight = string(runes[end-segStart:])
			}
			if keepLeft != "" || keepRight != "" {
				out = append(out, Segment{Kind: SegmentText, Text: keepLeft + keepRight})
			}
		case segStart >= start && segEnd <= end:
			// Token fully covered: removed wholesale.
		default:
			// Token partially covered: the edit bites into the rendered
			// label. Apply it there and let Validate repair.
			lo := 0
			if start > segStart {
				lo = start - segStart
			}
			hi := len(runes)
			if end < segEnd {
				hi = end - segStart
			}
			s.live = string(runes[:lo]) + string(runes[hi:])
			out = append(out, s)
		}
		segStart = segEnd
	}

	b.segments = out
	b.caret = start
	if text != "" {
		b.spliceText(start, text)
		b.caret = start + len([]rune(text))
	}
	b.mergeText()
	b.repairSpacing()
	b.NormalizeCaret()
	b.commit(Mutation{Kind: MutReplaceRange})
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate removes every token whose rendered label has diverged from its
// frozen label and returns the removed tokens. Safe to run repeatedly:
// once a corrupted token is gone the pass is a no-op.
func (b *Buffer) Validate() []Token {
	var removed []Token
	for i := 0; i < len(b.segments); {
		if b.segments[i].IsCorrupted() {
			tokStart := b.segmentStart(i)
			removed = append(removed, b.segments[i].Token)
			b.segments = append(b.segments[:i], b.segments[i+1:]...)
			if b.caret > tokStart {
				b.caret = tokStart
			}
			continue
		}
		i++
	}
	if removed != nil {
		b.mergeText()
		b.repairSpacing()
		b.SetCaret(b.caret)
	}
	return removed
}

// =============================================================================
// SERIALIZATION AND CLEARING
// =============================================================================

// PlainText returns the outbound payload: free text verbatim, tokens as
// their bare frozen labels, no marker syntax.
func (b *Buffer) PlainText() string {
	var sb strings.Builder
	for _, s := range b.segments {
		if s.Kind == SegmentToken {
			sb.WriteString(s.Token.Label)
		} else {
			sb.WriteString(s.Text)
		}
	}
	return sb.String()
}

// AnnotatedText returns the transcript form: tokens encoded as
// TOKEN(id, label) markers so references stay clickable after rehydration.
func (b *Buffer) AnnotatedText() string {
	var sb strings.Builder
	for _, s := range b.segments {
		if s.Kind == SegmentToken {
			sb.WriteString(FormatMarker(s.Token))
		} else {
			sb.WriteString(s.Text)
		}
	}
	return sb.String()
}

// TokenIDs returns the ids of all tokens still present, in document order.
func (b *Buffer) TokenIDs() []string {
	var ids []string
	for _, s := range b.segments {
		if s.Kind == SegmentToken {
			ids = append(ids, s.Token.ID)
		}
	}
	return ids
}

// Clear empties the buffer and releases all tokens.
func (b *Buffer) Clear() {
	b.segments = nil
	b.caret = 0
	b.commit(Mutation{Kind: MutClear})
}

// =============================================================================
// INTERNAL MAINTENANCE
// =============================================================================

func (b *Buffer) segmentStart(i int) int {
	start := 0
	for j := 0; j < i; j++ {
		start += len([]rune(b.segments[j].Rendered()))
	}
	return start
}

// mergeText coalesces adjacent text segments and drops empty ones.
func (b *Buffer) mergeText() {
	var out []Segment
	for _, s := range b.segments {
		if s.Kind == SegmentText {
			if s.Text == "" {
				continue
			}
			if n := len(out); n > 0 && out[n-1].Kind == SegmentText {
				out[n-1].Text += s.Text
				continue
			}
		}
		out = append(out, s)
	}
	b.segments = out
}

// repairSpacing restores the invariant that two token segments are always
// separated by a text segment containing a space, re-inserting the space
// when an edit removed it.
func (b *Buffer) repairSpacing() {
	for i := 0; i+1 < len(b.segments); i++ {
		if b.segments[i].Kind == SegmentToken && b.segments[i+1].Kind == SegmentToken {
			boundary := b.segmentStart(i + 1)
			b.insertSegmentAt(i+1, Segment{Kind: SegmentText, Text: " "})
			if b.caret >= boundary {
				b.caret++
			}
		}
	}
}
