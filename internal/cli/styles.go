// Copyright (c) 2024-2025 Wayra Labs S.A. / RutaViva
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/wayralabs/wayra-tui/internal/ui/styles"
)

// Shared CLI output styles, built on the TUI palette so both surfaces
// look like the same product.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Sky).
			Bold(true)

	welcomeStyle = lipgloss.NewStyle().
			Foreground(styles.Terracotta).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	refStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald)

	warningStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(styles.Sky).
			Bold(true)
)
