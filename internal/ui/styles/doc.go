// Copyright (c) 2024-2025 Wayra Labs S.A. / RutaViva
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the wayra TUI.
//
// The theme detects terminal color capability through termenv and builds
// every Lip Gloss style up front. Colors are AdaptiveColor pairs so the
// same theme reads well on light and dark backgrounds.
package styles
