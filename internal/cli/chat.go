// Copyright (c) 2024-2025 Wayra Labs S.A. / RutaViva
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat command handler for the wayra CLI.
//
// Command: chat
// Short:   Start an interactive conversation with the assistant
//
// Interactive Commands (during chat):
//   /help, /h           Show available commands
//   /ref <id>           Attach an accommodation reference to the next message
//   /refs               Show currently attached references
//   /clear              Drop attached references
//   /history            Show restored conversation history
//   /quit, /q           Exit chat
//   Ctrl+D              Exit chat
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/wayralabs/wayra-tui/internal/assistant"
	"github.com/wayralabs/wayra-tui/internal/catalog"
	"github.com/wayralabs/wayra-tui/internal/composer"
	"github.com/wayralabs/wayra-tui/internal/config"
	"github.com/wayralabs/wayra-tui/internal/session"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a new ChatCLI with input history support.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	cli := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	cli.LoadHistory()
	return cli
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists command history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0755); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// SESSION STATE
// =============================================================================

// ChatREPL holds the state for an interactive chat session.
type ChatREPL struct {
	Config  *config.Config
	Client  *assistant.Client
	Store   *session.Store
	Catalog *catalog.Catalog

	// Refs are listings attached to the next message.
	Refs []catalog.Listing

	StartTime time.Time
	Sent      int

	InputCLI *ChatCLI
}

// =============================================================================
// CHAT COMMAND
// =============================================================================

// HandleChatCommand handles the "chat" command.
func HandleChatCommand(args Args) error {
	cfg := config.Global()

	store, err := session.NewStore()
	if err != nil {
		return WrapError(err, "failed to open session store")
	}
	sess := store.InitSession()
	history := store.RestoreHistory()

	client := buildClient(cfg, args)
	if store.IsNew() {
		client.NotifySessionStart(sess.ID, "cli/chat")
	}

	cat, err := catalog.Open()
	if err != nil {
		return WrapError(err, "failed to open catalog")
	}
	defer cat.Close()

	repl := &ChatREPL{
		Config:    cfg,
		Client:    client,
		Store:     store,
		Catalog:   cat,
		StartTime: time.Now(),
		InputCLI:  NewChatCLI(),
	}
	defer repl.InputCLI.Close()

	if !args.Quiet {
		fmt.Println(welcomeStyle.Render("wayra chat"))
		fmt.Println(infoStyle.Render("Escribí tu consulta, /help para comandos, /quit para salir."))
		if last := lastAssistantEntry(history); last != "" {
			fmt.Println()
			displayResponse(last)
		}
	}

	for {
		input, err := repl.InputCLI.ReadInput(promptStyle.Render("vos> "))
		if err != nil {
			// liner.ErrPromptAborted on Ctrl+C, io.EOF on Ctrl+D.
			fmt.Println()
			printExitSummary(repl)
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if !handleSlashCommand(input, repl) {
				printExitSummary(repl)
				return nil
			}
			continue
		}

		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			printExitSummary(repl)
			return nil
		}

		if err := repl.send(input); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
		}
	}
}

// send composes, sends, persists, and displays one message exchange.
func (r *ChatREPL) send(input string) error {
	buf := composer.New()
	for _, l := range r.Refs {
		label, id := l.Token()
		buf.InsertToken(label, id)
	}
	buf.InsertText(input)

	reply, err := r.Client.Send(context.Background(), assistant.Outbound{
		Message:          buf.PlainText(),
		Source:           r.Config.Assistant.Source,
		SessionID:        r.Store.Current().ID,
		AccommodationIDs: buf.TokenIDs(),
	})
	if err != nil {
		return err
	}

	r.Store.AdoptExternalSessionID(reply.SessionID)
	r.Store.Append("user", buf.AnnotatedText())
	r.Store.Append("assistant", reply.Text)
	r.Refs = nil
	r.Sent++

	fmt.Println()
	displayResponse(reply.Text)
	return nil
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand processes a /command. Returns false to exit the REPL.
func handleSlashCommand(input string, r *ChatREPL) bool {
	fields := strings.Fields(input)
	cmd := strings.ToLower(fields[0])

	switch cmd {
	case "/quit", "/q", "/exit":
		return false

	case "/help", "/h":
		fmt.Println(headerStyle.Render("Comandos:"))
		fmt.Println("  /ref <id>   " + infoStyle.Render("adjuntar un alojamiento al próximo mensaje"))
		fmt.Println("  /refs       " + infoStyle.Render("ver referencias adjuntas"))
		fmt.Println("  /clear      " + infoStyle.Render("quitar referencias adjuntas"))
		fmt.Println("  /history    " + infoStyle.Render("ver historial restaurado"))
		fmt.Println("  /quit       " + infoStyle.Render("salir"))

	case "/ref":
		if len(fields) < 2 {
			fmt.Println(warningStyle.Render("Uso: /ref <id>"))
			return true
		}
		r.attachRef(fields[1])

	case "/refs":
		if len(r.Refs) == 0 {
			fmt.Println(infoStyle.Render("Sin referencias adjuntas."))
			return true
		}
		for _, l := range r.Refs {
			fmt.Printf("  %s %s\n", refStyle.Render(fmt.Sprintf("[%d]", l.ID)), l.Name)
		}

	case "/clear", "/c":
		r.Refs = nil
		fmt.Println(infoStyle.Render("Referencias quitadas."))

	case "/history":
		for _, e := range r.Store.Entries() {
			role := "vos"
			if e.Role == "assistant" {
				role = "asistente"
			}
			fmt.Printf("%s %s\n", promptStyle.Render(role+">"), composer.AnnotatedToPlain(e.Content))
		}

	default:
		fmt.Println(warningStyle.Render("Comando desconocido: " + cmd))
	}
	return true
}

// attachRef resolves a listing id and attaches it to the next message.
func (r *ChatREPL) attachRef(raw string) {
	listing, err := resolveListing(r.Catalog, raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
		return
	}
	for _, existing := range r.Refs {
		if existing.ID == listing.ID {
			fmt.Println(infoStyle.Render("Ya estaba adjunto: " + listing.Name))
			return
		}
	}
	r.Refs = append(r.Refs, listing)
	fmt.Println(refStyle.Render("Adjunto: ") + listing.Name)
}

// =============================================================================
// HELPERS
// =============================================================================

func lastAssistantEntry(entries []session.Entry) string {
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Role == "assistant" {
			return entries[i].Content
		}
	}
	return ""
}

func printExitSummary(r *ChatREPL) {
	if r.Sent == 0 {
		return
	}
	elapsed := time.Since(r.StartTime).Round(time.Second)
	fmt.Println(infoStyle.Render(fmt.Sprintf("%d mensajes en %s. ¡Buen viaje!", r.Sent, elapsed)))
}
