package game

import (
	"context"
	"fmt"

	"github.com/lox/wordsagainststrangers/internal/criteria"
	"github.com/lox/wordsagainststrangers/internal/words"
)

// PlayerID is the platform-assigned identity of a player.
type PlayerID string

// WordResult is the outcome of a word submission.
type WordResult int

const (
	Invalid WordResult = iota
	Blocked
	Scored
	ScoredBonus
)

func (r WordResult) String() string {
	switch r {
	case Invalid:
		return "invalid"
	case Blocked:
		return "blocked"
	case Scored:
		return "scored"
	case ScoredBonus:
		return "scored_bonus"
	default:
		return fmt.Sprintf("WordResult(%d)", int(r))
	}
}

// Points returns the score a result is worth.
func (r WordResult) Points() int {
	switch r {
	case Scored:
		return 1
	case ScoredBonus:
		return 2
	default:
		return 0
	}
}

// Round is one timed scoring window. It is not safe for concurrent use; the
// owning Session serialises access.
type Round struct {
	number      int
	criteria    []criteria.Criterion
	players     []PlayerID
	playerSet   map[PlayerID]bool
	scoreDeltas map[PlayerID]int
	scoredWords map[PlayerID][]string
	useCount    map[string]int
	oracle      words.Oracle
	closed      bool
}

// NewRound creates round number (1-based) for players.
func NewRound(number int, set []criteria.Criterion, players []PlayerID, oracle words.Oracle) *Round {
	r := &Round{
		number:      number,
		criteria:    append([]criteria.Criterion(nil), set...),
		players:     append([]PlayerID(nil), players...),
		playerSet:   make(map[PlayerID]bool, len(players)),
		scoreDeltas: make(map[PlayerID]int, len(players)),
		scoredWords: make(map[PlayerID][]string, len(players)),
		useCount:    make(map[string]int),
		oracle:      oracle,
	}
	for _, p := range players {
		r.playerSet[p] = true
		r.scoreDeltas[p] = 0
	}
	return r
}

// BlockThreshold is how many times a word may be accepted in this round
// before further submissions of it are blocked: half the players, rounded
// down, but never less than one.
func (r *Round) BlockThreshold() int {
	return max(1, len(r.players)/2)
}

// ReceiveWord adjudicates one submission. An oracle failure returns Invalid
// with an error wrapping ErrOracleUnavailable and leaves the round untouched,
// so the player may retry the same word.
func (r *Round) ReceiveWord(ctx context.Context, player PlayerID, raw string) (WordResult, error) {
	if r.closed {
		return Invalid, fmt.Errorf("round %d is closed: %w", r.number, ErrWrongPhase)
	}
	if !r.playerSet[player] {
		return Invalid, fmt.Errorf("%s in round %d: %w", player, r.number, ErrNotPlaying)
	}

	word := words.Normalize(raw)
	if word == "" {
		return Invalid, nil
	}

	ok, err := r.oracle.IsWord(ctx, word)
	if err != nil {
		return Invalid, fmt.Errorf("%w: %w", ErrOracleUnavailable, err)
	}
	if !ok {
		return Invalid, nil
	}

	if r.useCount[word] >= r.BlockThreshold() {
		return Blocked, nil
	}

	// Every oracle query happens before the first mutation.
	pass, err := criteria.TestAll(ctx, r.oracle, r.criteria, word)
	if err != nil {
		return Invalid, fmt.Errorf("%w: %w", ErrOracleUnavailable, err)
	}
	bonus := false
	if pass {
		if bonus, err = r.oracle.DeservesBonus(ctx, word); err != nil {
			return Invalid, fmt.Errorf("%w: %w", ErrOracleUnavailable, err)
		}
	}

	// A word that fails the criteria still uses up a slot.
	r.useCount[word]++
	if !pass {
		return Invalid, nil
	}

	result := Scored
	if bonus {
		result = ScoredBonus
	}
	r.scoredWords[player] = append(r.scoredWords[player], word)
	r.scoreDeltas[player] += result.Points()
	return result, nil
}

// Close freezes the round; later submissions fail with ErrWrongPhase.
func (r *Round) Close() { r.closed = true }

func (r *Round) Closed() bool { return r.closed }

func (r *Round) Number() int { return r.number }

// Criteria returns the round's criteria in display order.
func (r *Round) Criteria() []criteria.Criterion {
	return append([]criteria.Criterion(nil), r.criteria...)
}

// Players returns the players fixed at round creation.
func (r *Round) Players() []PlayerID {
	return append([]PlayerID(nil), r.players...)
}

// ScoreDeltas returns the points each player earned this round.
func (r *Round) ScoreDeltas() map[PlayerID]int {
	deltas := make(map[PlayerID]int, len(r.scoreDeltas))
	for p, d := range r.scoreDeltas {
		deltas[p] = d
	}
	return deltas
}

// ScoredWords returns the words player scored with, in submission order.
func (r *Round) ScoredWords(player PlayerID) []string {
	return append([]string(nil), r.scoredWords[player]...)
}

// UseCount returns how many times word has been accepted this round.
func (r *Round) UseCount(word string) int {
	return r.useCount[words.Normalize(word)]
}
