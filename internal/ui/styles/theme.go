// Copyright (c) 2024-2025 Wayra Labs S.A. / RutaViva
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// CONTAINER AND HEADER STYLES
	// ==========================================================================

	App       lipgloss.Style
	Panel     lipgloss.Style
	Header    lipgloss.Style
	HeaderSub lipgloss.Style

	// ==========================================================================
	// TRANSCRIPT STYLES
	// ==========================================================================

	UserBubble    lipgloss.Style
	AssistantText lipgloss.Style
	PendingText   lipgloss.Style
	ErrorText     lipgloss.Style
	Timestamp     lipgloss.Style

	// ==========================================================================
	// COMPOSER STYLES
	// ==========================================================================

	InputContainer   lipgloss.Style
	InputPrompt      lipgloss.Style
	InputText        lipgloss.Style
	InputPlaceholder lipgloss.Style
	Caret            lipgloss.Style
	TokenChip        lipgloss.Style
	TokenChipArmed   lipgloss.Style

	// ==========================================================================
	// BADGE AND BROWSE STYLES
	// ==========================================================================

	Badge         lipgloss.Style
	BadgeDragging lipgloss.Style
	BrowseItem    lipgloss.Style
	BrowseCursor  lipgloss.Style
	BrowseRegion  lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar    lipgloss.Style
	Spinner      lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
}

// NewTheme creates a new theme with all styles configured.
func NewTheme() *Theme {
	colorProfile := termenv.ColorProfile()
	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle()
	t.Panel = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Terracotta).
		Background(SurfaceDim).
		Padding(0, 2)

	t.HeaderSub = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	// Transcript
	t.UserBubble = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(TerracottaDeep).
		Padding(0, 1).
		MarginLeft(4)

	t.AssistantText = lipgloss.NewStyle().
		Foreground(TextPrimary).
		MarginRight(4)

	t.PendingText = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.ErrorText = lipgloss.NewStyle().
		Foreground(Rose)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Composer
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Bold(true).
		Foreground(Terracotta)

	t.InputText = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.Caret = lipgloss.NewStyle().
		Reverse(true)

	t.TokenChip = lipgloss.NewStyle().
		Foreground(Emerald).
		Background(EmeraldDeep).
		Bold(true)

	t.TokenChipArmed = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(RoseDeep).
		Bold(true)

	// Badge and browse
	t.Badge = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Terracotta).
		Padding(0, 1)

	t.BadgeDragging = lipgloss.NewStyle().
		Bold(true).
		Foreground(Terracotta).
		Background(SurfaceDim).
		Padding(0, 1)

	t.BrowseItem = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.BrowseCursor = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Sky)

	t.BrowseRegion = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)

	t.Spinner = lipgloss.NewStyle().
		Foreground(Amber)

	t.ShortcutKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(Sky)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)
}

// SetSize updates the theme's layout dimensions.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}
