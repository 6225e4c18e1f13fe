package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lox/wordsagainststrangers/internal/game"
)

// Bot turns inbound chat messages into registry calls. Commands are posted
// in a room channel behind a prefix; words are sent to the bot in direct
// messages.
type Bot struct {
	registry  *game.Registry
	announcer *Announcer
	transport Transport
	prefix    string
	logger    zerolog.Logger
}

// NewBot creates a bot that answers commands starting with prefix.
func NewBot(registry *game.Registry, announcer *Announcer, transport Transport, prefix string, logger zerolog.Logger) *Bot {
	return &Bot{
		registry:  registry,
		announcer: announcer,
		transport: transport,
		prefix:    prefix,
		logger:    logger.With().Str("component", "bot").Logger(),
	}
}

// Handle processes one inbound message. Errors are transport failures;
// game errors are answered in chat.
func (b *Bot) Handle(ctx context.Context, msg Message) error {
	content := strings.TrimSpace(msg.Content)

	if rest, ok := strings.CutPrefix(content, b.prefix); ok {
		if msg.Where.IsDirect() {
			return b.reply(ctx, msg, msgNoDirectCommands)
		}
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			return nil
		}
		return b.command(ctx, msg, strings.ToLower(fields[0]))
	}

	if msg.Where.IsDirect() {
		return b.submit(ctx, msg, content)
	}
	return nil
}

func (b *Bot) command(ctx context.Context, msg Message, name string) error {
	room := msg.Where.Room
	b.logger.Debug().Str("room", room).Str("player", string(msg.Author)).Str("command", name).Msg("Command")

	switch name {
	case "new":
		claimed := b.announcer.Bind(room, msg.Where)
		if !claimed {
			return b.reply(ctx, msg, msgExistingGame)
		}
		if _, err := b.registry.CreateSession(room, msg.Author); err != nil {
			b.announcer.Unbind(room)
			return b.fail(ctx, msg, err)
		}
		return nil

	case "join":
		if err := b.registry.JoinSession(room, msg.Author); err != nil {
			return b.fail(ctx, msg, err)
		}
		return b.transport.React(ctx, msg.Where, msg.ID, ReactionJoined)

	case "start":
		if err := b.registry.StartSession(room, msg.Author); err != nil {
			return b.fail(ctx, msg, err)
		}
		return nil

	case "end":
		if err := b.registry.AbortSession(room, msg.Author); err != nil {
			return b.fail(ctx, msg, err)
		}
		b.announcer.Aborted(room)
		return nil

	default:
		return nil
	}
}

func (b *Bot) submit(ctx context.Context, msg Message, word string) error {
	room, ok := b.registry.RoomOf(msg.Author)
	if !ok {
		return nil
	}

	result, err := b.registry.SubmitWord(ctx, room, msg.Author, word)
	if err != nil {
		// Words sent outside active play are ignored.
		if game.IsUserError(err) {
			b.logger.Debug().Err(err).Str("room", room).Str("player", string(msg.Author)).Msg("Submission ignored")
			return nil
		}
		return err
	}
	return b.transport.React(ctx, msg.Where, msg.ID, ReactionFor(result))
}

func (b *Bot) fail(ctx context.Context, msg Message, err error) error {
	if !game.IsUserError(err) {
		b.logger.Error().Err(err).Str("room", msg.Where.Room).Msg("Command failed")
	}
	return b.reply(ctx, msg, UserMessage(err))
}

func (b *Bot) reply(ctx context.Context, msg Message, content string) error {
	_, err := b.transport.Send(ctx, msg.Where, content)
	if err != nil {
		return fmt.Errorf("failed to reply: %w", err)
	}
	return nil
}
