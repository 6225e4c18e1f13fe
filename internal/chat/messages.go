package chat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lox/wordsagainststrangers/internal/game"
)

const title = "**Words Against Strangers**"

// Replies to commands.
const (
	msgNoDirectCommands = "You cannot use commands in direct messages."
	msgExistingGame     = "There is already a game in this server!"
	msgNoGame           = "There is no game in this server yet!"
	msgInProgress       = "This game is in progress, you cannot do that!"
	msgNoPermission     = "Only the player who created the game may do that!"
	msgAlreadyInGame    = "You may only join a game in one server at a time!"
	msgAlreadyJoined    = "You have already joined this game!"
	msgNotPlaying       = "You are not playing in this game!"
	msgSomethingWrong   = "Something went wrong, please try again."
	msgEnded            = title + "\nThe host ended the game."
	msgDirectOpening    = title + "\nGet ready to play! Game starting soon..."
)

// UserMessage returns the reply shown to a player for an engine error.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, game.ErrSessionExists):
		return msgExistingGame
	case errors.Is(err, game.ErrNoSession):
		return msgNoGame
	case errors.Is(err, game.ErrWrongPhase):
		return msgInProgress
	case errors.Is(err, game.ErrNotHost):
		return msgNoPermission
	case errors.Is(err, game.ErrAlreadyEnrolled):
		return msgAlreadyInGame
	case errors.Is(err, game.ErrAlreadyJoined):
		return msgAlreadyJoined
	case errors.Is(err, game.ErrNotPlaying):
		return msgNotPlaying
	default:
		return msgSomethingWrong
	}
}

func mention(p game.PlayerID) string {
	return fmt.Sprintf("<@%s>", p)
}

func mentions(players []game.PlayerID) string {
	parts := make([]string, len(players))
	for i, p := range players {
		parts[i] = mention(p)
	}
	return strings.Join(parts, ", ")
}

func introMessage(roster []game.PlayerID) string {
	return title + "\nPlayers: " + mentions(roster)
}

func startMessage(roster []game.PlayerID) string {
	return title + "\nStarting now with players: " + mentions(roster) +
		"\n:warning: Go to your DMs to get ready to play!"
}

func roundMessage(round game.RoundInfo) string {
	return fmt.Sprintf("**Words Against Strangers: Round %d of %d**\nSend me words that:\n%s",
		round.Number, round.Total, round.Description())
}

func scoreLines(b *strings.Builder, standings []game.Standing) {
	for i, s := range standings {
		fmt.Fprintf(b, "\n%d. %s: %d", i+1, mention(s.Player), s.Score)
	}
}

func roundResultsMessage(round game.RoundInfo, standings []game.Standing) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Words Against Strangers: Round %d of %d is over**", round.Number, round.Total)
	scoreLines(&b, standings)
	return b.String()
}

func finalMessage(standings []game.Standing) string {
	var b strings.Builder
	b.WriteString("**Words Against Strangers: Final scores**")
	scoreLines(&b, standings)
	switch {
	case len(standings) > 1 && standings[1].Score == standings[0].Score:
		b.WriteString("\nIt's a tie!")
	case len(standings) > 0:
		fmt.Fprintf(&b, "\n:trophy: %s wins!", mention(standings[0].Player))
	}
	return b.String()
}
