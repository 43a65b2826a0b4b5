// Copyright (c) 2024-2025 Wayra Labs S.A. / RutaViva
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package guard protects listing tokens in the chat input from accidental
// deletion.
//
// Rune deletion next to a token never removes it. Instead the first delete
// press arms the guard on that token, the UI highlights it, and only a
// second press in the same direction within the arm window removes the
// token wholesale. Any other interaction (typing, caret movement, a
// different delete direction) disarms.
//
// The guard also subscribes to the buffer's commit hook and runs a
// validation pass after every mutation, so tokens corrupted by raw edits
// (paste over a selection, IME commits) are removed wholesale instead of
// lingering half-edited.
package guard
