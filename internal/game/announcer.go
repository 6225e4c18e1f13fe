package game

import (
	"github.com/lox/wordsagainststrangers/internal/criteria"
)

// RoundInfo describes a round for announcements.
type RoundInfo struct {
	Number   int // 1-based
	Total    int
	Criteria []criteria.Criterion
	Players  []PlayerID
}

// Description renders the round's criteria one per line.
func (ri RoundInfo) Description() string {
	return criteria.Describe(ri.Criteria)
}

// Standing is one player's cumulative score.
type Standing struct {
	Player PlayerID
	Score  int
}

// Announcer receives every user-visible event a session produces. Calls are
// made while the session lock is held and in event order, so
// implementations must not call back into the session and should hand slow
// I/O off to another goroutine.
type Announcer interface {
	SessionOpened(room string, roster []PlayerID)
	RosterChanged(room string, roster []PlayerID)
	SessionStarted(room string, roster []PlayerID, totalRounds int)
	RoundStarted(room string, round RoundInfo)
	RoundEnded(room string, round RoundInfo, standings []Standing)
	SessionEnded(room string, standings []Standing)
}

// NopAnnouncer discards every event.
type NopAnnouncer struct{}

func (NopAnnouncer) SessionOpened(string, []PlayerID) {}
func (NopAnnouncer) RosterChanged(string, []PlayerID) {}
func (NopAnnouncer) SessionStarted(string, []PlayerID, int) {}
func (NopAnnouncer) RoundStarted(string, RoundInfo) {}
func (NopAnnouncer) RoundEnded(string, RoundInfo, []Standing) {}
func (NopAnnouncer) SessionEnded(string, []Standing) {}
