// Package game implements the Words Against Strangers engine.
//
// A Session is one game bound to a chat room. Players join while it is
// Starting; the host (the player who created it) starts it, which draws a
// criteria set for every round up front. Each round then runs on a timer:
// BetweenRounds is a short intermission, ActivePlay accepts word
// submissions, and when the round timer fires the round's score deltas are
// folded into the session scoreboard. After the last round the session is
// Ended and removed from the Registry.
//
// # Adjudication
//
// Round.ReceiveWord judges a submission in a fixed order:
//
//  1. the oracle must recognise the word, otherwise Invalid
//  2. the per-round use count must be below the block threshold, otherwise
//     Blocked
//  3. the word must satisfy every criterion, otherwise Invalid; the use
//     count is consumed either way
//  4. the word scores, with a bonus if the oracle says it deserves one
//
// # Concurrency
//
// Sessions are independent. Within a session every mutation, including
// timer callbacks, runs under the session mutex. The Registry guards only the
// room and enrollment maps and never holds its lock while calling into a
// session, so a slow oracle query in one room does not stall another.
//
// Timers come from a quartz.Clock so tests can drive rounds with a mock
// clock:
//
//	clock := quartz.NewMock(t)
//	reg, _ := game.NewRegistry(game.DefaultConfig(), game.Deps{Clock: clock, ...})
//	_, w := clock.AdvanceNext() // intermission
//	w.MustWait(ctx)
package game
