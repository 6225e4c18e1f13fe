package chat

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/lox/wordsagainststrangers/internal/criteria"
	"github.com/lox/wordsagainststrangers/internal/game"
	"github.com/lox/wordsagainststrangers/internal/words"
)

type sentMessage struct {
	ID      string
	To      Address
	Content string
}

type editedMessage struct {
	Where   Address
	ID      string
	Content string
}

type reaction struct {
	Where Address
	ID    string
	Emoji string
}

// fakeTransport records every call and issues sequential message ids.
type fakeTransport struct {
	mu        sync.Mutex
	sent      []sentMessage
	edits     []editedMessage
	reactions []reaction
}

func (f *fakeTransport) Send(_ context.Context, to Address, content string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := fmt.Sprintf("m%d", len(f.sent)+1)
	f.sent = append(f.sent, sentMessage{ID: id, To: to, Content: content})
	return id, nil
}

func (f *fakeTransport) Edit(_ context.Context, where Address, id, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, editedMessage{Where: where, ID: id, Content: content})
	return nil
}

func (f *fakeTransport) React(_ context.Context, where Address, id, emoji string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reactions = append(f.reactions, reaction{Where: where, ID: id, Emoji: emoji})
	return nil
}

// sentTo returns the contents sent to addr, in order.
func (f *fakeTransport) sentTo(addr Address) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, m := range f.sent {
		if m.To == addr {
			out = append(out, m.Content)
		}
	}
	return out
}

func (f *fakeTransport) hasSent(addr Address, substr string) bool {
	for _, c := range f.sentTo(addr) {
		if strings.Contains(c, substr) {
			return true
		}
	}
	return false
}

func (f *fakeTransport) idOf(addr Address, substr string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.sent {
		if m.To == addr && strings.Contains(m.Content, substr) {
			return m.ID
		}
	}
	return ""
}

func (f *fakeTransport) reactionOn(id string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reactions {
		if r.ID == id {
			return r.Emoji, true
		}
	}
	return "", false
}

func (f *fakeTransport) editsOf(id string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, e := range f.edits {
		if e.ID == id {
			out = append(out, e.Content)
		}
	}
	return out
}

type fixedSource []criteria.Criterion

func (f fixedSource) Generate() []criteria.Criterion { return f }

type botEnv struct {
	clock     *quartz.Mock
	transport *fakeTransport
	announcer *Announcer
	registry  *game.Registry
	bot       *Bot
	nextID    int
}

func newBotEnv(t *testing.T, rounds int) *botEnv {
	t.Helper()

	logger := zerolog.New(io.Discard)
	lex := words.NewLexicon(map[string][]words.PartOfSpeech{
		"teapot": {words.Noun},
		"tent":   {words.Noun},
		"cup":    {words.Noun},
	}, words.DefaultLexiconOptions())

	env := &botEnv{
		clock:     quartz.NewMock(t),
		transport: &fakeTransport{},
	}
	env.announcer = NewAnnouncer(env.transport, logger)

	reg, err := game.NewRegistry(
		game.Config{Rounds: rounds, RoundDuration: 15 * time.Second, Intermission: 3 * time.Second},
		game.Deps{
			Oracle:    lex,
			Criteria:  fixedSource{criteria.NewStartsWith("te")},
			Announcer: env.announcer,
			Clock:     env.clock,
			Logger:    logger,
		})
	require.NoError(t, err)
	env.registry = reg
	env.bot = NewBot(reg, env.announcer, env.transport, "w::", logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = env.announcer.Run(ctx)
	}()
	t.Cleanup(func() {
		reg.Close()
		cancel()
		<-done
	})
	return env
}

// say delivers a message to the bot and returns its id.
func (e *botEnv) say(t *testing.T, where Address, author game.PlayerID, content string) string {
	t.Helper()
	e.nextID++
	id := fmt.Sprintf("in%d", e.nextID)
	require.NoError(t, e.bot.Handle(context.Background(), Message{ID: id, Where: where, Author: author, Content: content}))
	return id
}

func (e *botEnv) advance(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, w := e.clock.AdvanceNext()
	w.MustWait(ctx)
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 5*time.Millisecond, msg)
}
