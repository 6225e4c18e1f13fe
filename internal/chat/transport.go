// Package chat connects the game engine to a chat platform: it parses
// commands, routes direct-message word submissions and renders engine
// events as chat messages.
package chat

import (
	"context"

	"github.com/lox/wordsagainststrangers/internal/game"
)

// Address names where a message lives: a channel inside a room, or a user's
// direct messages with the bot when User is set.
type Address struct {
	Room    string        `json:"room,omitempty"`
	Channel string        `json:"channel,omitempty"`
	User    game.PlayerID `json:"user,omitempty"`
}

// Direct returns the direct-message address of user.
func Direct(user game.PlayerID) Address {
	return Address{User: user}
}

// IsDirect reports whether a is a direct-message conversation.
func (a Address) IsDirect() bool { return a.User != "" }

// Message is an inbound chat message.
type Message struct {
	ID      string
	Where   Address
	Author  game.PlayerID
	Content string
}

// Transport performs chat platform I/O. Implementations must be safe for
// concurrent use.
type Transport interface {
	// Send posts content and returns the new message's id.
	Send(ctx context.Context, to Address, content string) (string, error)
	Edit(ctx context.Context, where Address, messageID, content string) error
	React(ctx context.Context, where Address, messageID, emoji string) error
}

// Reactions placed on submissions and commands.
const (
	ReactionInvalid     = "❌"
	ReactionBlocked     = "🛑"
	ReactionScored      = "✅"
	ReactionScoredBonus = "☑️"
	ReactionJoined      = "✅"
)

// ReactionFor maps a word result to its reaction.
func ReactionFor(result game.WordResult) string {
	switch result {
	case game.Blocked:
		return ReactionBlocked
	case game.Scored:
		return ReactionScored
	case game.ScoredBonus:
		return ReactionScoredBonus
	default:
		return ReactionInvalid
	}
}
