package chat

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/lox/wordsagainststrangers/internal/game"
)

const announceQueueSize = 256

// binding ties a room's session to the channel it was created in.
type binding struct {
	addr Address
	// header is the id of the intro message, edited as players join. Only
	// the worker writes it.
	header string
}

type job struct {
	room string
	name string
	run  func(ctx context.Context) error
}

// Announcer renders engine events as chat messages. Event methods only
// enqueue work; Run performs the transport calls in event order.
type Announcer struct {
	transport Transport
	logger    zerolog.Logger
	queue     chan job

	mu    sync.Mutex
	rooms map[string]*binding
}

// NewAnnouncer creates an announcer that writes through transport.
func NewAnnouncer(transport Transport, logger zerolog.Logger) *Announcer {
	return &Announcer{
		transport: transport,
		logger:    logger.With().Str("component", "announcer").Logger(),
		queue:     make(chan job, announceQueueSize),
		rooms:     make(map[string]*binding),
	}
}

// Bind records addr as the public channel of room's session. It returns
// false if room is already bound.
func (a *Announcer) Bind(room string, addr Address) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.rooms[room]; ok {
		return false
	}
	a.rooms[room] = &binding{addr: addr}
	return true
}

// Unbind forgets room's channel.
func (a *Announcer) Unbind(room string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.rooms, room)
}

// Aborted announces that the host ended room's session and unbinds it.
func (a *Announcer) Aborted(room string) {
	b, ok := a.take(room)
	if !ok {
		return
	}
	a.enqueue(room, "aborted", func(ctx context.Context) error {
		_, err := a.transport.Send(ctx, b.addr, msgEnded)
		return err
	})
}

// Run performs queued announcements until ctx is cancelled.
func (a *Announcer) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case j := <-a.queue:
			if err := j.run(ctx); err != nil {
				a.logger.Error().Err(err).Str("room", j.room).Str("event", j.name).Msg("Announcement failed")
			}
		}
	}
}

func (a *Announcer) lookup(room string) (*binding, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, ok := a.rooms[room]
	return b, ok
}

func (a *Announcer) take(room string) (*binding, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, ok := a.rooms[room]
	delete(a.rooms, room)
	return b, ok
}

func (a *Announcer) enqueue(room, name string, run func(ctx context.Context) error) {
	select {
	case a.queue <- job{room: room, name: name, run: run}:
	default:
		a.logger.Warn().Str("room", room).Str("event", name).Msg("Announcement queue full, dropping")
	}
}

func (a *Announcer) header(b *binding) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return b.header
}

func (a *Announcer) direct(ctx context.Context, players []game.PlayerID, content string) error {
	for _, p := range players {
		if _, err := a.transport.Send(ctx, Direct(p), content); err != nil {
			return err
		}
	}
	return nil
}

func (a *Announcer) SessionOpened(room string, roster []game.PlayerID) {
	b, ok := a.lookup(room)
	if !ok {
		a.logger.Warn().Str("room", room).Msg("Session opened in unbound room")
		return
	}
	content := introMessage(roster)
	a.enqueue(room, "opened", func(ctx context.Context) error {
		id, err := a.transport.Send(ctx, b.addr, content)
		if err != nil {
			return err
		}
		a.mu.Lock()
		b.header = id
		a.mu.Unlock()
		return nil
	})
}

func (a *Announcer) RosterChanged(room string, roster []game.PlayerID) {
	b, ok := a.lookup(room)
	if !ok {
		return
	}
	content := introMessage(roster)
	a.enqueue(room, "roster", func(ctx context.Context) error {
		id := a.header(b)
		if id == "" {
			_, err := a.transport.Send(ctx, b.addr, content)
			return err
		}
		return a.transport.Edit(ctx, b.addr, id, content)
	})
}

func (a *Announcer) SessionStarted(room string, roster []game.PlayerID, _ int) {
	b, ok := a.lookup(room)
	if !ok {
		return
	}
	public := startMessage(roster)
	a.enqueue(room, "started", func(ctx context.Context) error {
		if _, err := a.transport.Send(ctx, b.addr, public); err != nil {
			return err
		}
		return a.direct(ctx, roster, msgDirectOpening)
	})
}

func (a *Announcer) RoundStarted(room string, round game.RoundInfo) {
	content := roundMessage(round)
	a.enqueue(room, "round_started", func(ctx context.Context) error {
		return a.direct(ctx, round.Players, content)
	})
}

func (a *Announcer) RoundEnded(room string, round game.RoundInfo, standings []game.Standing) {
	if round.Number == round.Total {
		// the final scoreboard follows immediately
		return
	}
	b, ok := a.lookup(room)
	if !ok {
		return
	}
	content := roundResultsMessage(round, standings)
	a.enqueue(room, "round_ended", func(ctx context.Context) error {
		_, err := a.transport.Send(ctx, b.addr, content)
		return err
	})
}

func (a *Announcer) SessionEnded(room string, standings []game.Standing) {
	b, ok := a.take(room)
	if !ok {
		return
	}
	content := finalMessage(standings)
	a.enqueue(room, "ended", func(ctx context.Context) error {
		_, err := a.transport.Send(ctx, b.addr, content)
		return err
	})
}

var _ game.Announcer = (*Announcer)(nil)
