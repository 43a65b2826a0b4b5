// Copyright (c) 2024-2025 Wayra Labs S.A. / RutaViva
// SPDX-License-Identifier: AGPL-3.0-or-later

package browse

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wayralabs/wayra-tui/internal/catalog"
	"github.com/wayralabs/wayra-tui/internal/ui/chat"
	"github.com/wayralabs/wayra-tui/internal/ui/styles"
	"github.com/wayralabs/wayra-tui/internal/util"
)

// =============================================================================
// BROWSE MODEL
// =============================================================================

// Model is the Bubble Tea model for the listing browser.
type Model struct {
	theme *styles.Theme
	cat   *catalog.Catalog

	listings []catalog.Listing
	filter   string
	cursor   int

	width  int
	height int
}

// New creates the browser and loads the catalog.
func New(theme *styles.Theme, cat *catalog.Catalog) Model {
	m := Model{theme: theme, cat: cat}
	m.reload()
	return m
}

func (m *Model) reload() {
	var (
		listings []catalog.Listing
		err      error
	)
	if m.filter == "" {
		listings, err = m.cat.All()
	} else {
		listings, err = m.cat.Search(m.filter)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "browse: catalog query: %v\n", err)
		return
	}
	m.listings = listings
	if m.cursor >= len(m.listings) {
		m.cursor = 0
	}
}

// SetSize resizes the browser.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Selected returns the listing under the cursor.
func (m Model) Selected() (catalog.Listing, bool) {
	if m.cursor < 0 || m.cursor >= len(m.listings) {
		return catalog.Listing{}, false
	}
	return m.listings[m.cursor], true
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles key events. Enter emits an AppendTokenMsg for the chat
// panel; printable keys refine the filter.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "up":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "down":
		if m.cursor < len(m.listings)-1 {
			m.cursor++
		}
		return m, nil

	case "enter":
		sel, ok := m.Selected()
		if !ok {
			return m, nil
		}
		label, id := sel.Token()
		return m, func() tea.Msg {
			return chat.AppendTokenMsg{Label: label, ID: id}
		}

	case "backspace":
		if m.filter != "" {
			m.filter = m.filter[:len(m.filter)-len(lastRune(m.filter))]
			m.reload()
		}
		return m, nil

	case "ctrl+u":
		m.filter = ""
		m.reload()
		return m, nil
	}

	if key.Type == tea.KeyRunes {
		m.filter += string(key.Runes)
		m.reload()
	}
	return m, nil
}

func lastRune(s string) string {
	r := []rune(s)
	return string(r[len(r)-1])
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the filter line and the listing table.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.theme.Header.Render("Alojamientos"))
	if m.filter != "" {
		b.WriteString(" " + m.theme.HeaderSub.Render("filtro: "+m.filter))
	}
	b.WriteString("\n")

	if len(m.listings) == 0 {
		b.WriteString(m.theme.InputPlaceholder.Render("Sin resultados."))
		return b.String()
	}

	region := ""
	for i, l := range m.listings {
		if l.Region != region {
			region = l.Region
			b.WriteString(m.theme.BrowseRegion.Render(region))
			b.WriteString("\n")
		}
		line := m.theme.BrowseItem.Render("  "+util.PadRight(l.Name, 40)) + m.theme.ShortcutDesc.Render(l.Kind)
		if i == m.cursor {
			line = m.theme.BrowseCursor.Render("> " + util.PadRight(l.Name, 40) + l.Kind)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString(m.theme.ShortcutKey.Render("enter") + m.theme.ShortcutDesc.Render(" agregar al chat  "))
	b.WriteString(m.theme.ShortcutKey.Render("escribir") + m.theme.ShortcutDesc.Render(" filtrar"))
	return b.String()
}
