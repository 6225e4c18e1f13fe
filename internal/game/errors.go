package game

import "errors"

// Errors returned to the player who made the request.
var (
	ErrWrongPhase      = errors.New("operation not allowed in the current phase")
	ErrNotHost         = errors.New("only the host may do that")
	ErrAlreadyEnrolled = errors.New("player is already in a game in another room")
	ErrAlreadyJoined   = errors.New("player has already joined this game")
	ErrNoSession       = errors.New("room has no game")
	ErrSessionExists   = errors.New("room already has a game")
	ErrNotPlaying      = errors.New("player is not in this game")
)

var userErrors = []error{
	ErrWrongPhase, ErrNotHost, ErrAlreadyEnrolled, ErrAlreadyJoined,
	ErrNoSession, ErrSessionExists, ErrNotPlaying,
}

// ErrInternal marks a broken engine invariant. The failing call is
// abandoned; the session and registry stay usable.
var ErrInternal = errors.New("internal error")

// ErrOracleUnavailable wraps oracle failures during adjudication.
var ErrOracleUnavailable = errors.New("linguistic oracle unavailable")

// IsUserError reports whether err is a recoverable error caused by the
// request itself.
func IsUserError(err error) bool {
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
