package chat

import (
	"encoding/json"
	"time"

	"github.com/lox/wordsagainststrangers/internal/game"
)

// EnvelopeType identifies a WebSocket frame
type EnvelopeType string

const (
	// client -> hub
	TypeHello EnvelopeType = "hello"
	TypeSay   EnvelopeType = "say"

	// hub -> client
	TypeWelcome  EnvelopeType = "welcome"
	TypeMessage  EnvelopeType = "message"
	TypeEdit     EnvelopeType = "edit"
	TypeReaction EnvelopeType = "reaction"
	TypeError    EnvelopeType = "error"
)

// Envelope is the JSON frame exchanged with chat clients
type Envelope struct {
	Type      EnvelopeType    `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewEnvelope creates an envelope with the current timestamp
func NewEnvelope(t EnvelopeType, data any) (*Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Envelope{Type: t, Data: raw, Timestamp: time.Now()}, nil
}

// HelloData identifies a client and the rooms it is watching
type HelloData struct {
	User  game.PlayerID `json:"user"`
	Rooms []string      `json:"rooms,omitempty"`
}

// SayData posts content. An empty room sends a direct message to the bot.
type SayData struct {
	Room    string `json:"room,omitempty"`
	Channel string `json:"channel,omitempty"`
	Content string `json:"content"`
}

type WelcomeData struct {
	User game.PlayerID `json:"user"`
}

type MessageData struct {
	ID      string        `json:"id"`
	Where   Address       `json:"where"`
	Author  game.PlayerID `json:"author"`
	Content string        `json:"content"`
}

type EditData struct {
	ID      string  `json:"id"`
	Where   Address `json:"where"`
	Content string  `json:"content"`
}

type ReactionData struct {
	ID    string  `json:"id"`
	Where Address `json:"where"`
	Emoji string  `json:"emoji"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
