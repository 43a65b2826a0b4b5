// Copyright (c) 2024-2025 Wayra Labs S.A. / RutaViva
// SPDX-License-Identifier: AGPL-3.0-or-later

// wayra - terminal client for the RutaViva travel assistant.
//
// The default invocation starts the TUI: a listing browser with a
// draggable assistant badge. Clicking the badge (or pressing ctrl+t)
// opens the chat panel, the terminal counterpart of the site's chat
// widget. Subcommands are handled by internal/cli.
package main

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wayralabs/wayra-tui/internal/assistant"
	"github.com/wayralabs/wayra-tui/internal/catalog"
	"github.com/wayralabs/wayra-tui/internal/cli"
	"github.com/wayralabs/wayra-tui/internal/config"
	"github.com/wayralabs/wayra-tui/internal/gesture"
	"github.com/wayralabs/wayra-tui/internal/session"
	"github.com/wayralabs/wayra-tui/internal/ui/browse"
	"github.com/wayralabs/wayra-tui/internal/ui/chat"
	"github.com/wayralabs/wayra-tui/internal/ui/components"
	"github.com/wayralabs/wayra-tui/internal/ui/styles"
)

var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global program reference for async config reload notifications
var (
	programRef *tea.Program
	programMu  sync.Mutex
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdAsk:
		cli.HandleAsk(args)
	case cli.CmdChat:
		cli.HandleChat(args)
	case cli.CmdStatus:
		cli.HandleStatus(args)
	case cli.CmdConfig:
		cli.HandleConfig(args)
	case cli.CmdSession:
		cli.HandleSession(args)
	case cli.CmdCatalog:
		cli.HandleCatalog(args)
	case cli.CmdVersion:
		cli.HandleVersion(args)
	case cli.CmdHelp:
		cli.HandleHelp()
	default:
		runTUI(args)
	}
}

// runTUI starts the TUI interface.
func runTUI(args cli.Args) {
	cfg := config.Global()
	if args.Webhook != "" {
		cfg.Assistant.WebhookURL = args.Webhook
	}

	theme := styles.NewTheme()

	store, err := session.NewStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open session store: %v\n", err)
		os.Exit(1)
	}
	store.TTL = cfg.SessionTTL()
	store.Limit = cfg.Session.HistoryLimit
	sess := store.InitSession()

	cat, err := catalog.Open()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open catalog: %v\n", err)
		os.Exit(1)
	}
	defer cat.Close()

	clientCfg := assistant.DefaultConfig()
	clientCfg.WebhookURL = cfg.Assistant.WebhookURL
	clientCfg.Source = cfg.Assistant.Source
	clientCfg.Timeout = cfg.SendTimeout()
	clientCfg.NotifyTimeout = cfg.NotifyTimeout()
	client := assistant.NewClient(clientCfg)

	if store.IsNew() {
		client.NotifySessionStart(sess.ID, "tui")
	}

	m := NewModel(theme, cfg, client, store, cat)

	// Reload config when the file changes on disk. The watcher pushes the
	// fresh config into the running program.
	if path, err := config.ConfigPath(); err == nil {
		watcher, werr := config.NewWatcher(path, func(fresh *config.Config) {
			programMu.Lock()
			p := programRef
			programMu.Unlock()
			if p != nil {
				p.Send(ConfigReloadedMsg{Config: fresh})
			}
		})
		if werr == nil {
			if werr := watcher.Watch(); werr != nil {
				fmt.Fprintf(os.Stderr, "config watch: %v\n", werr)
			}
			defer watcher.Close()
		}
	}

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	programMu.Lock()
	programRef = p
	programMu.Unlock()

	final, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running wayra: %v\n", err)
		os.Exit(1)
	}

	// Persist where the user left the badge.
	if fm, ok := final.(*Model); ok {
		pos := fm.badge.Position()
		if pos.X != cfg.UI.BadgeX || pos.Y != cfg.UI.BadgeY {
			cfg.UI.BadgeX = pos.X
			cfg.UI.BadgeY = pos.Y
			if err := config.Save(cfg); err != nil {
				fmt.Fprintf(os.Stderr, "saving badge position: %v\n", err)
			}
		}
	}
}

// =============================================================================
// APPLICATION MODEL
// =============================================================================

// ConfigReloadedMsg carries a freshly loaded config from the file watcher.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// Model is the root application model. The browser is the background
// surface; the chat panel replaces it while open, mirroring the site
// where the widget floats over the listings.
type Model struct {
	theme *styles.Theme
	cfg   *config.Config

	browser   browse.Model
	chatPanel chat.Model
	badge     *components.Badge

	width  int
	height int
}

// NewModel wires the browser, chat panel, and badge together.
func NewModel(theme *styles.Theme, cfg *config.Config, client *assistant.Client, store *session.Store, cat *catalog.Catalog) *Model {
	arbiter := gesture.New()
	arbiter.Threshold = cfg.Input.DragThreshold
	arbiter.ClickMax = cfg.ClickMax()
	arbiter.MoveWindow = cfg.RecentMove()

	badge := components.NewBadge(theme, arbiter, gesture.Point{X: cfg.UI.BadgeX, Y: cfg.UI.BadgeY})

	return &Model{
		theme:     theme,
		cfg:       cfg,
		browser:   browse.New(theme, cat),
		chatPanel: chat.New(theme, cfg, client, store),
		badge:     badge,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		m.badge.SetViewport(msg.Width, msg.Height)
		m.browser.SetSize(msg.Width, msg.Height)
		m.chatPanel.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.MouseMsg:
		if m.badge.HandleMouse(msg, time.Now()) {
			if m.chatPanel.IsOpen() {
				m.chatPanel.Close()
			} else {
				m.chatPanel.Open()
			}
			return m, nil
		}
		if m.chatPanel.IsOpen() {
			var cmd tea.Cmd
			m.chatPanel, cmd = m.chatPanel.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case ConfigReloadedMsg:
		m.cfg = msg.Config
		m.chatPanel.ApplyConfig(msg.Config)
		return m, nil

	case chat.AppendTokenMsg:
		// Browser selection goes straight into the composer.
		var cmd tea.Cmd
		m.chatPanel, cmd = m.chatPanel.Update(msg)
		return m, cmd
	}

	// Everything else (replies, errors, spinner ticks) belongs to the
	// chat panel.
	var cmd tea.Cmd
	m.chatPanel, cmd = m.chatPanel.Update(msg)
	return m, cmd
}

// handleKeyPress processes keyboard input.
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "ctrl+t":
		if m.chatPanel.IsOpen() {
			m.chatPanel.Close()
		} else {
			m.chatPanel.Open()
		}
		return m, nil
	}

	if m.chatPanel.IsOpen() {
		var cmd tea.Cmd
		m.chatPanel, cmd = m.chatPanel.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.browser, cmd = m.browser.Update(msg)
	return m, cmd
}

// View renders the current state.
func (m *Model) View() string {
	if m.width == 0 {
		return ""
	}

	if m.chatPanel.IsOpen() {
		return m.chatPanel.View()
	}

	return overlayBadge(m.browser.View(), m.badge.View(), m.badge.Position(), m.width, m.height)
}

// overlayBadge draws the badge over the background at its position. The
// badge claims its whole row; browse content on that line is hidden
// while the badge floats there.
func overlayBadge(background, badgeView string, pos gesture.Point, width, height int) string {
	lines := strings.Split(background, "\n")
	for len(lines) < height {
		lines = append(lines, "")
	}
	if pos.Y >= 0 && pos.Y < len(lines) {
		pad := pos.X
		// lipgloss.Width skips ANSI escapes; the styled badge must clamp
		// by its visible cells or it lands at column 0 under color.
		if max := width - lipgloss.Width(badgeView); pad > max {
			pad = max
		}
		if pad < 0 {
			pad = 0
		}
		lines[pos.Y] = strings.Repeat(" ", pad) + badgeView
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}
