// Package tui is a Bubble Tea chat client for playing Words Against
// Strangers from a terminal.
package tui

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/wordsagainststrangers/internal/chat"
	"github.com/lox/wordsagainststrangers/internal/game"
)

// DefaultChannel is used by /room when no channel is given
const DefaultChannel = "general"

// Sender posts a line of input to the hub
type Sender interface {
	Say(to chat.Address, content string) error
}

// EnvelopeMsg carries an envelope received from the hub
type EnvelopeMsg struct {
	Envelope *chat.Envelope
}

// DisconnectedMsg signals that the hub connection closed
type DisconnectedMsg struct{}

type entry struct {
	id        string
	where     chat.Address
	author    game.PlayerID
	content   string
	reactions []string
	notice    bool
	failure   bool
}

// Model is the Bubble Tea model for the chat client
type Model struct {
	sender Sender
	events <-chan *chat.Envelope
	user   game.PlayerID
	target chat.Address
	logger *log.Logger

	viewport viewport.Model
	input    textinput.Model

	entries   []entry
	byID      map[string]int
	connected bool
	quitting  bool

	width  int
	height int
}

// NewModel creates a model that reads hub envelopes from events and posts
// input through sender, starting in the target conversation.
func NewModel(sender Sender, events <-chan *chat.Envelope, user game.PlayerID, target chat.Address, logger *log.Logger) *Model {
	vp := viewport.New(10, 5)

	ti := textinput.New()
	ti.Placeholder = "Type a word, a w:: command, or /help"
	ti.Focus()
	ti.CharLimit = 200
	ti.Prompt = "> "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)

	return &Model{
		sender:   sender,
		events:   events,
		user:     user,
		target:   target,
		logger:   logger.WithPrefix("tui"),
		viewport: vp,
		input:    ti,
		byID:     make(map[string]int),
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForEnvelope())
}

func (m *Model) waitForEnvelope() tea.Cmd {
	if m.events == nil {
		return nil
	}
	return func() tea.Msg {
		env, ok := <-m.events
		if !ok {
			return DisconnectedMsg{}
		}
		return EnvelopeMsg{Envelope: env}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case EnvelopeMsg:
		m.apply(msg.Envelope)
		cmds = append(cmds, m.waitForEnvelope())

	case DisconnectedMsg:
		m.connected = false
		m.failure("Disconnected from hub")

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			line := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if m.submit(line) {
				m.quitting = true
				return m, tea.Quit
			}
			return m, nil
		case "pgup":
			m.viewport.HalfPageUp()
			return m, nil
		case "pgdown":
			m.viewport.HalfPageDown()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit handles a line of input and reports whether the client should quit.
func (m *Model) submit(line string) bool {
	if line == "" {
		return false
	}

	if !strings.HasPrefix(line, "/") {
		if err := m.sender.Say(m.target, line); err != nil {
			m.logger.Warn("Send failed", "error", err)
			m.failure("Send failed: " + err.Error())
		}
		return false
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit":
		return true
	case "/dm":
		m.target = chat.Direct(m.user)
		m.notice("Now talking to the bot directly. Send words here during a round.")
	case "/room":
		if len(fields) < 2 {
			m.failure("Usage: /room <room> [channel]")
			return false
		}
		m.target = chat.Address{Room: fields[1], Channel: DefaultChannel}
		if len(fields) > 2 {
			m.target.Channel = fields[2]
		}
		m.notice("Now talking in " + label(m.target))
	case "/help":
		for _, l := range helpLines {
			m.notice(l)
		}
	default:
		m.failure("Unknown command: " + fields[0])
	}
	return false
}

var helpLines = []string{
	"/room <room> [channel]  talk in a room channel",
	"/dm                     talk to the bot directly",
	"/quit                   leave",
	"In a room: w::new, w::join, w::start, w::end",
	"In direct messages: send one word per message",
}

func (m *Model) apply(env *chat.Envelope) {
	if env == nil {
		return
	}

	switch env.Type {
	case chat.TypeWelcome:
		var data chat.WelcomeData
		if m.decode(env, &data) {
			m.connected = true
			m.notice(fmt.Sprintf("Connected as %s", data.User))
		}

	case chat.TypeMessage:
		var data chat.MessageData
		if m.decode(env, &data) {
			m.byID[data.ID] = len(m.entries)
			m.append(entry{id: data.ID, where: data.Where, author: data.Author, content: data.Content})
		}

	case chat.TypeEdit:
		var data chat.EditData
		if m.decode(env, &data) {
			if i, ok := m.byID[data.ID]; ok {
				m.entries[i].content = data.Content
				m.refresh()
			}
		}

	case chat.TypeReaction:
		var data chat.ReactionData
		if m.decode(env, &data) {
			if i, ok := m.byID[data.ID]; ok {
				m.entries[i].reactions = append(m.entries[i].reactions, data.Emoji)
				m.refresh()
			}
		}

	case chat.TypeError:
		var data chat.ErrorData
		if m.decode(env, &data) {
			m.failure(fmt.Sprintf("Hub error: %s (%s)", data.Message, data.Code))
		}

	default:
		m.logger.Debug("Ignoring envelope", "type", env.Type)
	}
}

func (m *Model) decode(env *chat.Envelope, v any) bool {
	if err := json.Unmarshal(env.Data, v); err != nil {
		m.logger.Warn("Failed to decode envelope", "type", env.Type, "error", err)
		return false
	}
	return true
}

func (m *Model) notice(text string) {
	m.append(entry{content: text, notice: true})
}

func (m *Model) failure(text string) {
	m.append(entry{content: text, notice: true, failure: true})
}

func (m *Model) append(e entry) {
	m.entries = append(m.entries, e)
	m.refresh()
	m.viewport.GotoBottom()
}

func (m *Model) refresh() {
	lines := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		lines = append(lines, m.styled(e))
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
}

func (m *Model) resize() {
	// header, input and help lines plus the pane border
	w := max(1, m.width-2)
	h := max(1, m.height-5)
	m.viewport.Width = w
	m.viewport.Height = h
	m.input.Width = max(1, m.width-len(m.input.Prompt)-1)
	m.refresh()
	m.viewport.GotoBottom()
}

func label(where chat.Address) string {
	switch {
	case where.IsDirect():
		return "[dm]"
	case where.Channel == "":
		return "[" + where.Room + "]"
	default:
		return "[" + where.Room + "/" + where.Channel + "]"
	}
}

func plain(e entry) string {
	if e.notice {
		return "* " + e.content
	}
	text := label(e.where) + " " + string(e.author) + ": " + strings.ReplaceAll(e.content, "\n", "\n  ")
	if len(e.reactions) > 0 {
		text += " " + strings.Join(e.reactions, "")
	}
	return text
}

func (m *Model) styled(e entry) string {
	if e.notice {
		if e.failure {
			return ErrorStyle.Render("* " + e.content)
		}
		return InfoStyle.Render("* " + e.content)
	}

	author := AuthorStyle
	switch e.author {
	case chat.BotUser:
		author = BotStyle
	case m.user:
		author = SelfStyle
	}

	text := LabelStyle.Render(label(e.where)) + " " +
		author.Render(string(e.author)) + ": " +
		strings.ReplaceAll(e.content, "\n", "\n  ")
	if len(e.reactions) > 0 {
		text += " " + strings.Join(e.reactions, "")
	}
	return text
}

// Transcript returns the conversation as unstyled lines
func (m *Model) Transcript() []string {
	var lines []string
	for _, e := range m.entries {
		lines = append(lines, strings.Split(plain(e), "\n")...)
	}
	return lines
}

// Target returns where plain input is currently sent
func (m *Model) Target() chat.Address {
	return m.target
}

// Connected reports whether the hub has welcomed this client
func (m *Model) Connected() bool {
	return m.connected
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	status := "offline"
	if m.connected {
		status = "online"
	}
	header := HeaderStyle.Width(m.width).Render(
		fmt.Sprintf(" Words Against Strangers | %s | %s | %s", m.user, label(m.target), status))

	pane := PaneStyle.
		Width(m.viewport.Width).
		Height(m.viewport.Height).
		Render(m.viewport.View())

	help := InfoStyle.Render("Enter to send • PgUp/PgDn scroll • /help • Ctrl+C to quit")

	return lipgloss.JoinVertical(lipgloss.Left, header, pane, m.input.View(), help)
}
