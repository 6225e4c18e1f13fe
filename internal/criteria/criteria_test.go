package criteria

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/wordsagainststrangers/internal/randutil"
	"github.com/lox/wordsagainststrangers/internal/words"
)

type failingOracle struct{ words.Lexicon }

var errOracleDown = errors.New("oracle down")

func (failingOracle) IsRhyme(context.Context, string, string) (bool, error) {
	return false, errOracleDown
}

func testOracle() *words.Lexicon {
	return words.NewLexicon(map[string][]words.PartOfSpeech{
		"teapot": {words.Noun},
		"run":    {words.Verb, words.Noun},
	}, words.DefaultLexiconOptions())
}

func TestCriterionTest(t *testing.T) {
	ctx := context.Background()
	oracle := testOracle()

	tests := []struct {
		name      string
		criterion Criterion
		word      string
		want      bool
	}{
		{"starts with", NewStartsWith("te"), "teapot", true},
		{"starts with miss", NewStartsWith("te"), "cup", false},
		{"ends with", NewEndsWith("pot"), "teapot", true},
		{"ends with miss", NewEndsWith("ing"), "teapot", false},
		{"contains", NewContains("ap"), "teapot", true},
		{"contains miss", NewContains("zz"), "teapot", false},
		{"exact length", NewExactLength(6), "teapot", true},
		{"exact length miss", NewExactLength(7), "teapot", false},
		{"min length", NewMinLength(6), "teapot", true},
		{"min length miss", NewMinLength(8), "teapot", false},
		{"rhymes", NewRhymesWith("batter"), "matter", true},
		{"rhymes miss", NewRhymesWith("batter"), "teapot", false},
		{"part of speech", NewPartOfSpeech(words.Noun), "teapot", true},
		{"part of speech miss", NewPartOfSpeech(words.Verb), "teapot", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.criterion.Test(ctx, oracle, tt.word)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "Starts with `te`", NewStartsWith("te").Describe())
	assert.Equal(t, "Ends with `ing`", NewEndsWith("ing").Describe())
	assert.Equal(t, "Contains `ea`", NewContains("ea").Describe())
	assert.Equal(t, "Exactly `7` letters long", NewExactLength(7).Describe())
	assert.Equal(t, "At least `9` letters long", NewMinLength(9).Describe())
	assert.Equal(t, "Rhymes with \"`batter`\"", NewRhymesWith("batter").Describe())
	assert.Equal(t, "Is a `noun`", NewPartOfSpeech(words.Noun).Describe())

	set := []Criterion{NewStartsWith("te"), NewMinLength(8)}
	assert.Equal(t, "Starts with `te`\nAt least `8` letters long", Describe(set))
}

func TestTestAll(t *testing.T) {
	ctx := context.Background()
	set := []Criterion{NewStartsWith("te"), NewExactLength(6)}

	ok, err := TestAll(ctx, testOracle(), set, "teapot")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = TestAll(ctx, testOracle(), set, "tea")
	require.NoError(t, err)
	assert.False(t, ok)

	t.Run("short circuits before oracle", func(t *testing.T) {
		set := []Criterion{NewStartsWith("zz"), NewRhymesWith("cat")}
		ok, err := TestAll(ctx, &failingOracle{}, set, "hat")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("propagates oracle failure", func(t *testing.T) {
		set := []Criterion{NewRhymesWith("cat")}
		_, err := TestAll(ctx, &failingOracle{}, set, "hat")
		require.ErrorIs(t, err, errOracleDown)
	})
}

func TestGenerator(t *testing.T) {
	gen, err := NewGenerator(DefaultPools(), randutil.New(99))
	require.NoError(t, err)

	primaries := map[Kind]bool{StartsWith: true, EndsWith: true, Contains: true}
	secondaries := map[Kind]bool{ExactLength: true, MinLength: true, RhymesWith: true, PartOfSpeech: true}

	counts := map[int]int{}
	collapsed := 0
	for range 5000 {
		set := gen.Generate()
		require.NotEmpty(t, set)
		require.LessOrEqual(t, len(set), 2)
		counts[len(set)]++

		switch len(set) {
		case 1:
			if secondaries[set[0].Kind()] {
				// only reachable through the EndsWith+RhymesWith collapse
				require.Equal(t, RhymesWith, set[0].Kind())
				collapsed++
			} else {
				require.True(t, primaries[set[0].Kind()])
			}
		case 2:
			require.True(t, primaries[set[0].Kind()])
			require.True(t, secondaries[set[1].Kind()])
			require.False(t, set[0].Kind() == EndsWith && set[1].Kind() == RhymesWith)
		}

		for _, c := range set {
			switch c.Kind() {
			case ExactLength:
				require.GreaterOrEqual(t, c.Length(), ExactLengthMin)
				require.LessOrEqual(t, c.Length(), ExactLengthMax)
			case MinLength:
				require.GreaterOrEqual(t, c.Length(), MinLengthMin)
				require.LessOrEqual(t, c.Length(), MinLengthMax)
			}
		}
	}

	assert.Greater(t, collapsed, 0)
	assert.Greater(t, counts[1], counts[2])
}

func TestGeneratorReducedPools(t *testing.T) {
	pools := Pools{EndsWith: []string{"ing"}}
	gen, err := NewGenerator(pools, randutil.New(3))
	require.NoError(t, err)

	for range 1000 {
		for _, c := range gen.Generate() {
			assert.NotEqual(t, RhymesWith, c.Kind())
			assert.NotEqual(t, PartOfSpeech, c.Kind())
			assert.NotEqual(t, StartsWith, c.Kind())
			assert.NotEqual(t, Contains, c.Kind())
		}
	}

	_, err = NewGenerator(Pools{RhymesWith: []string{"cat"}}, randutil.New(3))
	assert.Error(t, err)
}

func TestGeneratorDeterministic(t *testing.T) {
	a, _ := NewGenerator(DefaultPools(), randutil.New(5))
	b, _ := NewGenerator(DefaultPools(), randutil.New(5))
	for range 50 {
		assert.Equal(t, a.Generate(), b.Generate())
	}
}
