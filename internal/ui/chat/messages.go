// Copyright (c) 2024-2025 Wayra Labs S.A. / RutaViva
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import "time"

// =============================================================================
// BUBBLE TEA MESSAGES
// =============================================================================

// ReplyMsg carries a completed assistant reply.
type ReplyMsg struct {
	Text      string
	SessionID string
}

// SendErrorMsg carries a failed send.
type SendErrorMsg struct {
	Err error
}

// AppendTokenMsg asks the panel to insert a listing token. Sent from the
// browse view's "add to chat" action; the panel opens if closed.
type AppendTokenMsg struct {
	Label string
	ID    string
}

// =============================================================================
// TRANSCRIPT ENTRIES
// =============================================================================

// entryKind distinguishes transcript line treatments.
type entryKind int

const (
	entryUser entryKind = iota
	entryAssistant
	entryPending
	entryError
)

// entry is one transcript line. Content for user entries is annotated
// text so listing references survive persistence.
type entry struct {
	kind    entryKind
	content string
	ts      time.Time
}

// =============================================================================
// USER-FACING ERROR STRINGS
// =============================================================================

const (
	// ErrMsgNoEndpoint is shown when no webhook URL is configured. The
	// string is fixed so tests and support can match on it.
	ErrMsgNoEndpoint = "El asistente no está configurado. Definí assistant.webhook_url en ~/.wayra/config.toml."

	// ErrMsgSendFailed replaces the pending placeholder on network
	// failure or timeout.
	ErrMsgSendFailed = "No pude obtener una respuesta en este momento. Intentá de nuevo más tarde."
)
