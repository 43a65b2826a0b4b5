// Copyright (c) 2024-2025 Wayra Labs S.A. / RutaViva
// SPDX-License-Identifier: AGPL-3.0-or-later

package composer

import (
	"regexp"
	"strings"
)

// =============================================================================
// ANNOTATED MARKER CODEC
// =============================================================================

// markerPattern matches the TOKEN(id, label) markers used in annotated
// text. The id is everything up to the first comma; the label runs to the
// closing parenthesis. Labels containing ')' are not representable - the
// catalog never produces them.
var markerPattern = regexp.MustCompile(`TOKEN\(([^,)]+),\s*([^)]*)\)`)

// FormatMarker encodes a token as its annotated marker.
func FormatMarker(tok Token) string {
	return "TOKEN(" + tok.ID + ", " + tok.Label + ")"
}

// ParseAnnotated rehydrates annotated text into segments: marker spans
// become token segments, everything between them free text. Used to render
// persisted transcript entries with their listing references intact.
func ParseAnnotated(text string) []Segment {
	var segs []Segment
	last := 0
	for _, m := range markerPattern.FindAllStringSubmatchIndex(text, -1) {
		if m[0] > last {
			segs = append(segs, Segment{Kind: SegmentText, Text: text[last:m[0]]})
		}
		tok := Token{
			ID:    text[m[2]:m[3]],
			Label: text[m[4]:m[5]],
		}
		segs = append(segs, Segment{Kind: SegmentToken, Token: tok, live: tok.Label})
		last = m[1]
	}
	if last < len(text) {
		segs = append(segs, Segment{Kind: SegmentText, Text: text[last:]})
	}
	return segs
}

// AnnotatedToPlain strips marker syntax from annotated text, leaving bare
// labels.
func AnnotatedToPlain(text string) string {
	return markerPattern.ReplaceAllString(text, "$2")
}

// =============================================================================
// PASTE SANITIZING
// =============================================================================

// controlChars matches control characters other than tab and newline.
var controlChars = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)

// SanitizePaste forces clipboard content to plain text before insertion.
// Marker syntax is rewritten to its bare label so pasted text can never
// forge a token, carriage returns and control characters are dropped.
func SanitizePaste(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = AnnotatedToPlain(text)
	return controlChars.ReplaceAllString(text, "")
}
