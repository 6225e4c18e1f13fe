package tui

import (
	"errors"
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/wordsagainststrangers/internal/chat"
)

type said struct {
	to      chat.Address
	content string
}

type fakeSender struct {
	said []said
	err  error
}

func (f *fakeSender) Say(to chat.Address, content string) error {
	if f.err != nil {
		return f.err
	}
	f.said = append(f.said, said{to, content})
	return nil
}

var room = chat.Address{Room: "guild", Channel: "general"}

func newTestModel(t *testing.T, events <-chan *chat.Envelope) (*Model, *fakeSender) {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
	sender := &fakeSender{}
	m := NewModel(sender, events, "alice", room, logger)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m, sender
}

func envelope(t *testing.T, typ chat.EnvelopeType, data any) EnvelopeMsg {
	t.Helper()
	env, err := chat.NewEnvelope(typ, data)
	require.NoError(t, err)
	return EnvelopeMsg{Envelope: env}
}

func enter(m *Model, line string) tea.Cmd {
	m.input.SetValue(line)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return cmd
}

func TestModelAppliesEnvelopes(t *testing.T) {
	m, _ := newTestModel(t, nil)
	assert.False(t, m.Connected())

	m.Update(envelope(t, chat.TypeWelcome, chat.WelcomeData{User: "alice"}))
	assert.True(t, m.Connected())

	m.Update(envelope(t, chat.TypeMessage, chat.MessageData{
		ID: "m1", Where: room, Author: chat.BotUser,
		Content: "**Words Against Strangers**\nPlayers: ",
	}))
	m.Update(envelope(t, chat.TypeMessage, chat.MessageData{
		ID: "m2", Where: room, Author: "alice", Content: "w::join",
	}))
	m.Update(envelope(t, chat.TypeEdit, chat.EditData{
		ID: "m1", Where: room, Content: "**Words Against Strangers**\nPlayers: <@alice>",
	}))
	m.Update(envelope(t, chat.TypeReaction, chat.ReactionData{ID: "m2", Where: room, Emoji: chat.ReactionJoined}))
	m.Update(envelope(t, chat.TypeReaction, chat.ReactionData{ID: "unknown", Where: room, Emoji: chat.ReactionInvalid}))
	m.Update(envelope(t, chat.TypeError, chat.ErrorData{Code: "rate_limited", Message: "slow down"}))

	assert.Equal(t, []string{
		"* Connected as alice",
		"[guild/general] words-against-strangers: **Words Against Strangers**",
		"  Players: <@alice>",
		"[guild/general] alice: w::join " + chat.ReactionJoined,
		"* Hub error: slow down (rate_limited)",
	}, m.Transcript())
}

func TestModelDirectMessages(t *testing.T) {
	m, _ := newTestModel(t, nil)

	m.Update(envelope(t, chat.TypeMessage, chat.MessageData{
		ID: "d1", Where: chat.Direct("alice"), Author: "alice", Content: "teapot",
	}))
	m.Update(envelope(t, chat.TypeReaction, chat.ReactionData{ID: "d1", Where: chat.Direct("alice"), Emoji: chat.ReactionScoredBonus}))

	assert.Equal(t, []string{"[dm] alice: teapot " + chat.ReactionScoredBonus}, m.Transcript())
}

func TestModelSubmit(t *testing.T) {
	m, sender := newTestModel(t, nil)

	assert.Nil(t, enter(m, "   "))
	enter(m, "w::new")
	enter(m, "/dm")
	assert.Equal(t, chat.Direct("alice"), m.Target())
	enter(m, "teapot")
	enter(m, "/room lobby")
	assert.Equal(t, chat.Address{Room: "lobby", Channel: DefaultChannel}, m.Target())
	enter(m, "/room lobby games")
	assert.Equal(t, chat.Address{Room: "lobby", Channel: "games"}, m.Target())
	enter(m, "/room")
	enter(m, "/bogus")

	assert.Equal(t, []said{
		{room, "w::new"},
		{chat.Direct("alice"), "teapot"},
	}, sender.said)

	transcript := m.Transcript()
	assert.Contains(t, transcript, "* Now talking in [lobby/games]")
	assert.Contains(t, transcript, "* Usage: /room <room> [channel]")
	assert.Contains(t, transcript, "* Unknown command: /bogus")
	assert.Empty(t, m.input.Value())
}

func TestModelSendFailure(t *testing.T) {
	m, sender := newTestModel(t, nil)
	sender.err = errors.New("not connected")

	enter(m, "teapot")
	assert.Equal(t, []string{"* Send failed: not connected"}, m.Transcript())
}

func TestModelQuit(t *testing.T) {
	m, _ := newTestModel(t, nil)
	cmd := enter(m, "/quit")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())

	m, _ = newTestModel(t, nil)
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModelWaitsForEvents(t *testing.T) {
	events := make(chan *chat.Envelope, 1)
	m, _ := newTestModel(t, events)

	env, err := chat.NewEnvelope(chat.TypeWelcome, chat.WelcomeData{User: "alice"})
	require.NoError(t, err)
	events <- env
	assert.Equal(t, EnvelopeMsg{Envelope: env}, m.waitForEnvelope()())

	close(events)
	msg := m.waitForEnvelope()()
	assert.Equal(t, DisconnectedMsg{}, msg)

	m.Update(msg)
	assert.False(t, m.Connected())
	assert.Equal(t, []string{"* Disconnected from hub"}, m.Transcript())
}

func TestModelView(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
	m := NewModel(&fakeSender{}, nil, "alice", room, logger)
	assert.Equal(t, "Loading...", m.View())

	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	view := m.View()
	assert.Contains(t, view, "alice")
	assert.Contains(t, view, "[guild/general]")
	assert.Contains(t, view, "offline")
}
