// Copyright (c) 2024-2025 Wayra Labs S.A. / RutaViva
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gesture classifies press-move-release sequences on the floating
// chat badge as either a drag (reposition the badge) or a click (open the
// panel), never both.
//
// The arbiter is a pure state machine: every event carries its own
// timestamp, so tests drive it with a fixed clock and the UI layer feeds
// it mouse events as they arrive. Positions are terminal cells.
package gesture
