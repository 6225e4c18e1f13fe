package game

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/lox/wordsagainststrangers/internal/criteria"
	"github.com/lox/wordsagainststrangers/internal/gameid"
	"github.com/lox/wordsagainststrangers/internal/words"
)

// State is a session lifecycle phase.
type State int

const (
	Starting State = iota
	BetweenRounds
	ActivePlay
	Ended
)

func (s State) String() string {
	switch s {
	case Starting:
		return "starting"
	case BetweenRounds:
		return "between_rounds"
	case ActivePlay:
		return "active_play"
	case Ended:
		return "ended"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// CriteriaSource produces the criteria set for one round.
type CriteriaSource interface {
	Generate() []criteria.Criterion
}

// Deps are the collaborators shared by every session.
type Deps struct {
	Oracle    words.Oracle
	Criteria  CriteriaSource
	Announcer Announcer
	Clock     quartz.Clock
	Logger    zerolog.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Announcer == nil {
		d.Announcer = NopAnnouncer{}
	}
	if d.Clock == nil {
		d.Clock = quartz.NewReal()
	}
	return d
}

func (d Deps) validate() error {
	if d.Oracle == nil {
		return errors.New("oracle is required")
	}
	if d.Criteria == nil {
		return errors.New("criteria source is required")
	}
	return nil
}

// Snapshot is a point-in-time copy of a session's public state.
type Snapshot struct {
	ID          string
	Room        string
	State       State
	Roster      []PlayerID
	RoundIndex  int // -1 before the first round
	TotalRounds int
	Criteria    []criteria.Criterion
	Scoreboard  map[PlayerID]int
}

// Session is the state machine for one game in one room. All methods are
// safe for concurrent use.
type Session struct {
	id        string
	room      string
	cfg       Config
	oracle    words.Oracle
	source    CriteriaSource
	announcer Announcer
	clock     quartz.Clock
	logger    zerolog.Logger
	onEnd     func(*Session)

	mu         sync.Mutex
	state      State
	roster     []PlayerID
	rounds     []*Round
	roundIndex int
	scoreboard map[PlayerID]int
	timer      *quartz.Timer
	epoch      uint64 // bumped on every timer schedule and on Close
	closed     bool
}

// NewSession creates a session in the Starting state with host as the only
// player. Most callers go through Registry.CreateSession instead.
func NewSession(room string, host PlayerID, cfg Config, deps Deps) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := deps.validate(); err != nil {
		return nil, err
	}
	deps = deps.withDefaults()

	id := gameid.New()
	return &Session{
		id:         id,
		room:       room,
		cfg:        cfg,
		oracle:     deps.Oracle,
		source:     deps.Criteria,
		announcer:  deps.Announcer,
		clock:      deps.Clock,
		logger:     deps.Logger.With().Str("component", "session").Str("room", room).Str("session", id).Logger(),
		state:      Starting,
		roster:     []PlayerID{host},
		roundIndex: -1,
		scoreboard: make(map[PlayerID]int),
	}, nil
}

// Open announces the new session.
func (s *Session) Open() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.logger.Info().Str("host", string(s.roster[0])).Msg("Session created")
	s.announcer.SessionOpened(s.room, s.rosterLocked())
}

// Join adds player to the roster while the session is Starting.
func (s *Session) Join(player PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Starting {
		return fmt.Errorf("join in %s: %w", s.state, ErrWrongPhase)
	}
	if slices.Contains(s.roster, player) {
		return fmt.Errorf("join %s: %w", player, ErrAlreadyJoined)
	}

	s.roster = append(s.roster, player)
	s.logger.Info().Str("player", string(player)).Int("players", len(s.roster)).Msg("Player joined")
	s.announcer.RosterChanged(s.room, s.rosterLocked())
	return nil
}

// Start draws every round's criteria and moves to BetweenRounds. Only the
// host may start, and only from Starting.
func (s *Session) Start(requester PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Starting {
		return fmt.Errorf("start in %s: %w", s.state, ErrWrongPhase)
	}
	if requester != s.roster[0] {
		return fmt.Errorf("start by %s: %w", requester, ErrNotHost)
	}

	s.rounds = make([]*Round, s.cfg.Rounds)
	for i := range s.rounds {
		s.rounds[i] = NewRound(i+1, s.source.Generate(), s.roster, s.oracle)
	}
	for _, p := range s.roster {
		s.scoreboard[p] = 0
	}
	s.state = BetweenRounds
	s.roundIndex = 0

	s.logger.Info().Int("players", len(s.roster)).Int("rounds", len(s.rounds)).Msg("Session started")
	s.announcer.SessionStarted(s.room, s.rosterLocked(), len(s.rounds))
	s.scheduleRoundStartLocked()
	return nil
}

// SubmitWord adjudicates a word for player in the active round. Oracle
// failures are logged and reported as Invalid without an error.
func (s *Session) SubmitWord(ctx context.Context, player PlayerID, text string) (WordResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != ActivePlay {
		return Invalid, fmt.Errorf("submit in %s: %w", s.state, ErrWrongPhase)
	}
	round, err := s.currentRoundLocked()
	if err != nil {
		s.logger.Error().Err(err).Msg("No current round during active play")
		return Invalid, err
	}

	result, err := round.ReceiveWord(ctx, player, text)
	if errors.Is(err, ErrOracleUnavailable) {
		s.logger.Warn().Err(err).Str("player", string(player)).Str("word", text).Msg("Oracle failure, treating word as invalid")
		return Invalid, nil
	}
	if err != nil {
		return Invalid, err
	}

	s.logger.Debug().
		Str("player", string(player)).
		Str("word", text).
		Stringer("result", result).
		Msg("Word judged")
	return result, nil
}

// Close stops any pending timer and marks the session Ended without
// announcing anything. It reports whether the session was still live.
func (s *Session) Close() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	wasLive := s.state != Ended
	s.closed = true
	s.state = Ended
	s.epoch++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if wasLive {
		s.logger.Info().Msg("Session closed")
	}
	return wasLive
}

func (s *Session) Room() string { return s.room }

// ID returns the session's unique, time-ordered identifier.
func (s *Session) ID() string { return s.id }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Host returns the player who created the session.
func (s *Session) Host() PlayerID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster[0]
}

// Roster returns the players in join order.
func (s *Session) Roster() []PlayerID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rosterLocked()
}

// Standings returns cumulative scores, highest first, ties in join order.
func (s *Session) Standings() []Standing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.standingsLocked()
}

// Snapshot returns a copy of the session's public state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:          s.id,
		Room:        s.room,
		State:       s.state,
		Roster:      s.rosterLocked(),
		RoundIndex:  s.roundIndex,
		TotalRounds: s.cfg.Rounds,
		Scoreboard:  make(map[PlayerID]int, len(s.scoreboard)),
	}
	for p, score := range s.scoreboard {
		snap.Scoreboard[p] = score
	}
	if round, err := s.currentRoundLocked(); err == nil {
		snap.Criteria = round.Criteria()
	}
	return snap
}

// RoundDescription renders the current round's criteria for players.
func (s *Session) RoundDescription() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	round, err := s.currentRoundLocked()
	if err != nil {
		return "", err
	}
	return criteria.Describe(round.criteria), nil
}

// ScoredWords returns the words player scored with in round number
// (1-based), in submission order.
func (s *Session) ScoredWords(number int, player PlayerID) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if number < 1 || number > len(s.rounds) {
		return nil, fmt.Errorf("round %d of %d: %w", number, len(s.rounds), ErrInternal)
	}
	return s.rounds[number-1].ScoredWords(player), nil
}

func (s *Session) currentRoundLocked() (*Round, error) {
	if s.roundIndex < 0 || s.roundIndex >= len(s.rounds) {
		return nil, fmt.Errorf("round index %d out of range [0,%d): %w", s.roundIndex, len(s.rounds), ErrInternal)
	}
	return s.rounds[s.roundIndex], nil
}

func (s *Session) rosterLocked() []PlayerID {
	return append([]PlayerID(nil), s.roster...)
}

func (s *Session) standingsLocked() []Standing {
	standings := make([]Standing, len(s.roster))
	for i, p := range s.roster {
		standings[i] = Standing{Player: p, Score: s.scoreboard[p]}
	}
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Score > standings[j].Score
	})
	return standings
}

func (s *Session) roundInfoLocked(r *Round) RoundInfo {
	return RoundInfo{
		Number:   r.Number(),
		Total:    len(s.rounds),
		Criteria: r.Criteria(),
		Players:  r.Players(),
	}
}

// scheduleLocked arms the session timer. A callback whose epoch no longer matches
// was superseded or cancelled and does nothing.
func (s *Session) scheduleLocked(d time.Duration, fn func()) {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.epoch++
	epoch := s.epoch
	s.timer = s.clock.AfterFunc(d, func() {
		s.mu.Lock()
		if s.closed || s.epoch != epoch {
			s.mu.Unlock()
			return
		}
		s.timer = nil
		fn()
	}, "session", s.room)
}

func (s *Session) scheduleRoundStartLocked() {
	if s.cfg.Intermission <= 0 {
		s.beginRoundLocked()
		return
	}
	s.scheduleLocked(s.cfg.Intermission, func() {
		defer s.mu.Unlock()
		s.beginRoundLocked()
	})
}

// beginRoundLocked moves BetweenRounds to ActivePlay and arms the round
// timer.
func (s *Session) beginRoundLocked() {
	if s.state != BetweenRounds {
		s.logger.Error().Stringer("state", s.state).Msg("Round start fired outside BetweenRounds")
		return
	}
	round, err := s.currentRoundLocked()
	if err != nil {
		s.logger.Error().Err(err).Msg("Cannot begin round")
		return
	}

	s.state = ActivePlay
	s.logger.Info().
		Int("round", round.Number()).
		Str("criteria", criteria.Describe(round.criteria)).
		Msg("Round started")
	s.announcer.RoundStarted(s.room, s.roundInfoLocked(round))

	s.scheduleLocked(s.cfg.RoundDuration, s.endRound)
}

// endRound runs when the round timer fires, with the lock held. It settles
// the round and either schedules the next one or ends the session.
func (s *Session) endRound() {
	ended := false
	defer func() {
		s.mu.Unlock()
		if ended && s.onEnd != nil {
			s.onEnd(s)
		}
	}()

	if s.state != ActivePlay {
		s.logger.Error().Stringer("state", s.state).Msg("Round end fired outside ActivePlay")
		return
	}
	round, err := s.currentRoundLocked()
	if err != nil {
		s.logger.Error().Err(err).Msg("Cannot end round")
		return
	}

	round.Close()
	for p, delta := range round.ScoreDeltas() {
		s.scoreboard[p] += delta
	}
	standings := s.standingsLocked()
	s.logger.Info().Int("round", round.Number()).Msg("Round ended")
	s.announcer.RoundEnded(s.room, s.roundInfoLocked(round), standings)

	s.roundIndex++
	if s.roundIndex >= len(s.rounds) {
		s.state = Ended
		ended = true
		s.logger.Info().Msg("Session ended")
		s.announcer.SessionEnded(s.room, standings)
		return
	}

	s.state = BetweenRounds
	s.scheduleRoundStartLocked()
}
