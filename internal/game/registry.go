package game

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// Registry maps chat rooms to their live session. It enforces one session
// per room and one room per enrolled player.
type Registry struct {
	cfg    Config
	deps   Deps
	logger zerolog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
	enrolled map[PlayerID]string // player -> room
}

// NewRegistry constructs an empty registry. Every session it creates uses
// cfg and deps.
func NewRegistry(cfg Config, deps Deps) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid game config: %w", err)
	}
	if err := deps.validate(); err != nil {
		return nil, err
	}
	deps = deps.withDefaults()

	return &Registry{
		cfg:      cfg,
		deps:     deps,
		logger:   deps.Logger.With().Str("component", "registry").Logger(),
		sessions: make(map[string]*Session),
		enrolled: make(map[PlayerID]string),
	}, nil
}

// CreateSession opens a new session in room with host as its first player.
func (r *Registry) CreateSession(room string, host PlayerID) (*Session, error) {
	r.mu.Lock()
	if _, ok := r.sessions[room]; ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("create in %s: %w", room, ErrSessionExists)
	}
	if other, ok := r.enrolled[host]; ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("create by %s (playing in %s): %w", host, other, ErrAlreadyEnrolled)
	}

	s, err := NewSession(room, host, r.cfg, r.deps)
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	s.onEnd = r.release
	r.sessions[room] = s
	r.enrolled[host] = room
	r.mu.Unlock()

	s.Open()
	return s, nil
}

// JoinSession adds player to the session in room.
func (r *Registry) JoinSession(room string, player PlayerID) error {
	r.mu.Lock()
	s, ok := r.sessions[room]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("join %s: %w", room, ErrNoSession)
	}
	if other, ok := r.enrolled[player]; ok {
		r.mu.Unlock()
		if other == room {
			return fmt.Errorf("join %s: %w", room, ErrAlreadyJoined)
		}
		return fmt.Errorf("join %s (playing in %s): %w", room, other, ErrAlreadyEnrolled)
	}
	// Reserve the enrollment so a concurrent join elsewhere is rejected.
	r.enrolled[player] = room
	r.mu.Unlock()

	if err := s.Join(player); err != nil {
		r.mu.Lock()
		if r.enrolled[player] == room {
			delete(r.enrolled, player)
		}
		r.mu.Unlock()
		return err
	}
	return nil
}

// StartSession starts the session in room on behalf of requester.
func (r *Registry) StartSession(room string, requester PlayerID) error {
	s, err := r.Session(room)
	if err != nil {
		return err
	}
	return s.Start(requester)
}

// SubmitWord routes a word submission to the session in room.
func (r *Registry) SubmitWord(ctx context.Context, room string, player PlayerID, text string) (WordResult, error) {
	s, err := r.Session(room)
	if err != nil {
		return Invalid, err
	}
	return s.SubmitWord(ctx, player, text)
}

// AbortSession ends the session in room early. Only its host may abort.
func (r *Registry) AbortSession(room string, requester PlayerID) error {
	s, err := r.Session(room)
	if err != nil {
		return err
	}
	if s.Host() != requester {
		return fmt.Errorf("abort by %s: %w", requester, ErrNotHost)
	}
	r.Remove(room)
	return nil
}

// Session returns the live session in room.
func (r *Registry) Session(room string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[room]
	if !ok {
		return nil, fmt.Errorf("%s: %w", room, ErrNoSession)
	}
	return s, nil
}

// RoomOf returns the room player is enrolled in.
func (r *Registry) RoomOf(player PlayerID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.enrolled[player]
	return room, ok
}

// Rooms returns the rooms with a live session, sorted.
func (r *Registry) Rooms() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]string, 0, len(r.sessions))
	for room := range r.sessions {
		rooms = append(rooms, room)
	}
	sort.Strings(rooms)
	return rooms
}

// Remove closes and forgets the session in room, releasing its players.
func (r *Registry) Remove(room string) bool {
	r.mu.Lock()
	s, ok := r.sessions[room]
	if ok {
		r.forgetLocked(room)
	}
	r.mu.Unlock()

	if ok {
		s.Close()
		r.logger.Info().Str("room", room).Str("session", s.ID()).Msg("Session removed")
	}
	return ok
}

// Close stops every session's timers without announcing anything and
// empties the registry.
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.enrolled = make(map[PlayerID]string)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	r.logger.Info().Int("sessions", len(sessions)).Msg("Registry closed")
}

// release is called once by a session after it reaches Ended on its own.
func (r *Registry) release(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sessions[s.Room()] == s {
		r.forgetLocked(s.Room())
		r.logger.Info().Str("room", s.Room()).Str("session", s.ID()).Msg("Session finished")
	}
}

func (r *Registry) forgetLocked(room string) {
	delete(r.sessions, room)
	for p, enrolledRoom := range r.enrolled {
		if enrolledRoom == room {
			delete(r.enrolled, p)
		}
	}
}
