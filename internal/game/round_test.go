package game

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/wordsagainststrangers/internal/criteria"
	"github.com/lox/wordsagainststrangers/internal/words"
)

func players(n int) []PlayerID {
	ids := make([]PlayerID, n)
	for i := range ids {
		ids[i] = PlayerID(fmt.Sprintf("p%d", i))
	}
	return ids
}

func TestRoundReceiveWord(t *testing.T) {
	ctx := context.Background()
	set := []criteria.Criterion{criteria.NewStartsWith("te")}
	r := NewRound(1, set, []PlayerID{"alice", "bob"}, testLexicon())

	result, err := r.ReceiveWord(ctx, "bob", "teapot")
	require.NoError(t, err)
	assert.Equal(t, Scored, result)

	result, err = r.ReceiveWord(ctx, "bob", "teapot")
	require.NoError(t, err)
	assert.Equal(t, Blocked, result)

	result, err = r.ReceiveWord(ctx, "alice", "cup")
	require.NoError(t, err)
	assert.Equal(t, Invalid, result)
	assert.Equal(t, 1, r.UseCount("cup"))

	result, err = r.ReceiveWord(ctx, "alice", "teapotz")
	require.NoError(t, err)
	assert.Equal(t, Invalid, result)
	assert.Equal(t, 0, r.UseCount("teapotz"), "non-words never touch the use count")

	assert.Equal(t, []string{"teapot"}, r.ScoredWords("bob"))
	assert.Empty(t, r.ScoredWords("alice"))
	assert.Equal(t, map[PlayerID]int{"alice": 0, "bob": 1}, r.ScoreDeltas())
}

func TestRoundBonus(t *testing.T) {
	ctx := context.Background()
	r := NewRound(1, []criteria.Criterion{criteria.NewContains("u")}, players(2), testLexicon())

	result, err := r.ReceiveWord(ctx, "p0", "QUIZ")
	require.NoError(t, err)
	assert.Equal(t, ScoredBonus, result)
	assert.Equal(t, 2, r.ScoreDeltas()["p0"])
	assert.Equal(t, []string{"quiz"}, r.ScoredWords("p0"))
}

func TestRoundThrottle(t *testing.T) {
	ctx := context.Background()
	set := []criteria.Criterion{criteria.NewStartsWith("te")}

	for n := 2; n <= 7; n++ {
		t.Run(fmt.Sprintf("%d players", n), func(t *testing.T) {
			ids := players(n)
			r := NewRound(1, set, ids, testLexicon())
			k := n / 2
			require.Equal(t, k, r.BlockThreshold())

			accepted := 0
			for i := 0; i < n+2; i++ {
				result, err := r.ReceiveWord(ctx, ids[i%n], "teapot")
				require.NoError(t, err)
				if i < k {
					assert.Equal(t, Scored, result, "submission %d", i)
					accepted++
				} else {
					assert.Equal(t, Blocked, result, "submission %d", i)
				}
			}
			assert.Equal(t, k, accepted)
			assert.Equal(t, k, r.UseCount("teapot"))
		})
	}

	t.Run("single player threshold is one", func(t *testing.T) {
		r := NewRound(1, set, players(1), testLexicon())
		assert.Equal(t, 1, r.BlockThreshold())

		result, _ := r.ReceiveWord(ctx, "p0", "teapot")
		assert.Equal(t, Scored, result)
		result, _ = r.ReceiveWord(ctx, "p0", "teapot")
		assert.Equal(t, Blocked, result)
	})
}

func TestRoundCriteriaFailureConsumesUse(t *testing.T) {
	ctx := context.Background()
	ids := players(4) // threshold 2
	set := []criteria.Criterion{criteria.NewStartsWith("zz")}
	r := NewRound(1, set, ids, testLexicon())

	for i := 0; i < 2; i++ {
		result, err := r.ReceiveWord(ctx, ids[i], "teapot")
		require.NoError(t, err)
		assert.Equal(t, Invalid, result)
	}
	assert.Equal(t, 2, r.UseCount("teapot"))

	// The same literal word from another player, even in a different case,
	// is now used up before the criteria are consulted.
	result, err := r.ReceiveWord(ctx, ids[2], " TeaPot ")
	require.NoError(t, err)
	assert.Equal(t, Blocked, result)
}

func TestRoundOracleFailure(t *testing.T) {
	ctx := context.Background()

	t.Run("word lookup", func(t *testing.T) {
		oracle := &flakyOracle{Lexicon: testLexicon(), down: true}
		r := NewRound(1, []criteria.Criterion{criteria.NewStartsWith("te")}, players(2), oracle)

		result, err := r.ReceiveWord(ctx, "p0", "teapot")
		require.ErrorIs(t, err, ErrOracleUnavailable)
		require.ErrorIs(t, err, errLookup)
		assert.Equal(t, Invalid, result)
		assert.Equal(t, 0, r.UseCount("teapot"))

		oracle.setDown(false)
		result, err = r.ReceiveWord(ctx, "p0", "teapot")
		require.NoError(t, err)
		assert.Equal(t, Scored, result)
	})

	t.Run("criteria lookup leaves use count alone", func(t *testing.T) {
		oracle := &flakyOracle{Lexicon: testLexicon(), down: true, rhymeOnly: true}
		r := NewRound(1, []criteria.Criterion{criteria.NewRhymesWith("batter")}, players(2), oracle)

		result, err := r.ReceiveWord(ctx, "p0", "matter")
		require.ErrorIs(t, err, ErrOracleUnavailable)
		assert.Equal(t, Invalid, result)
		assert.Equal(t, 0, r.UseCount("matter"))
		assert.Empty(t, r.ScoredWords("p0"))

		oracle.setDown(false)
		result, err = r.ReceiveWord(ctx, "p0", "matter")
		require.NoError(t, err)
		assert.Equal(t, Scored, result)
	})
}

func TestRoundRejections(t *testing.T) {
	ctx := context.Background()
	r := NewRound(2, []criteria.Criterion{criteria.NewPartOfSpeech(words.Noun)}, players(2), testLexicon())

	_, err := r.ReceiveWord(ctx, "stranger", "teapot")
	require.ErrorIs(t, err, ErrNotPlaying)

	result, err := r.ReceiveWord(ctx, "p0", "   ")
	require.NoError(t, err)
	assert.Equal(t, Invalid, result)

	r.Close()
	assert.True(t, r.Closed())
	_, err = r.ReceiveWord(ctx, "p0", "teapot")
	require.ErrorIs(t, err, ErrWrongPhase)
}

func TestWordResult(t *testing.T) {
	assert.Equal(t, 0, Invalid.Points())
	assert.Equal(t, 0, Blocked.Points())
	assert.Equal(t, 1, Scored.Points())
	assert.Equal(t, 2, ScoredBonus.Points())
	assert.Equal(t, "scored_bonus", ScoredBonus.String())
}
