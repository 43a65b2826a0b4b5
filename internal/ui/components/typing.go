// Copyright (c) 2024-2025 Wayra Labs S.A. / RutaViva
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wayralabs/wayra-tui/internal/ui/styles"
)

// =============================================================================
// TYPING INDICATOR
// =============================================================================

// Typing is the "assistant is typing" indicator shown while a send is in
// flight.
type Typing struct {
	theme   *styles.Theme
	spinner spinner.Model
	active  bool
}

// NewTyping creates the indicator with an ASCII-safe spinner.
func NewTyping(theme *styles.Theme) Typing {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	s.Style = theme.Spinner
	return Typing{theme: theme, spinner: s}
}

// Start activates the indicator and returns the tick command that drives
// the animation.
func (t *Typing) Start() tea.Cmd {
	t.active = true
	return t.spinner.Tick
}

// Stop deactivates the indicator.
func (t *Typing) Stop() {
	t.active = false
}

// Active reports whether the indicator is running.
func (t Typing) Active() bool {
	return t.active
}

// Update advances the spinner animation.
func (t Typing) Update(msg tea.Msg) (Typing, tea.Cmd) {
	if !t.active {
		return t, nil
	}
	var cmd tea.Cmd
	t.spinner, cmd = t.spinner.Update(msg)
	return t, cmd
}

// View renders the indicator line.
func (t Typing) View() string {
	if !t.active {
		return ""
	}
	return t.spinner.View() + " " + t.theme.PendingText.Render("escribiendo...")
}
