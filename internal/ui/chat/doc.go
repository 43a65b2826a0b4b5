// Copyright (c) 2024-2025 Wayra Labs S.A. / RutaViva
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation panel of the wayra TUI.
//
// The panel combines the transcript viewport, the typing indicator, and
// the tokenized composer. All token-boundary logic lives in the composer
// and guard packages; this package renders their state and forwards raw
// key events.
//
// One send is in flight at a time. While the panel waits for the
// assistant a pending placeholder sits at the end of the transcript and
// is replaced in place by the reply or by an error line; it is never left
// pending forever.
package chat
