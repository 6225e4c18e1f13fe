package criteria

import (
	"fmt"
	rand "math/rand/v2"
	"sync"

	"github.com/lox/wordsagainststrangers/internal/randutil"
	"github.com/lox/wordsagainststrangers/internal/words"
)

// Relative weights for each draw. A round has one criterion about twice as
// often as two.
var (
	countWeights = []int{100, 50}

	primaryKinds   = []Kind{StartsWith, EndsWith, Contains}
	primaryWeights = []int{50, 40, 20}

	secondaryKinds   = []Kind{ExactLength, MinLength, RhymesWith, PartOfSpeech}
	secondaryWeights = []int{20, 30, 10, 10}
)

// Inclusive ranges for numeric parameters.
const (
	ExactLengthMin = 6
	ExactLengthMax = 10
	MinLengthMin   = 8
	MinLengthMax   = 11
)

// Pools supplies the parameters criteria are drawn with.
type Pools struct {
	StartsWith    []string
	EndsWith      []string
	Contains      []string
	RhymesWith    []string
	PartsOfSpeech []words.PartOfSpeech
}

// DefaultPools returns the built-in parameter pools.
func DefaultPools() Pools {
	return Pools{
		StartsWith:    []string{"te", "st", "pr", "ch", "re", "un", "co", "tr", "bl", "sp"},
		EndsWith:      []string{"ing", "er", "ly", "ed", "tion", "ous", "ness", "ful"},
		Contains:      []string{"ea", "ou", "ck", "an", "ight", "ph", "qu"},
		RhymesWith:    []string{"batter", "cat", "light", "day", "bold", "ring"},
		PartsOfSpeech: append([]words.PartOfSpeech(nil), words.AllPartsOfSpeech...),
	}
}

// Validate checks that at least one primary criterion can be drawn.
func (p Pools) Validate() error {
	if len(p.StartsWith)+len(p.EndsWith)+len(p.Contains) == 0 {
		return fmt.Errorf("criteria pools: at least one of starts_with, ends_with or contains must be non-empty")
	}
	return nil
}

func (p Pools) available(k Kind) bool {
	switch k {
	case StartsWith:
		return len(p.StartsWith) > 0
	case EndsWith:
		return len(p.EndsWith) > 0
	case Contains:
		return len(p.Contains) > 0
	case RhymesWith:
		return len(p.RhymesWith) > 0
	case PartOfSpeech:
		return len(p.PartsOfSpeech) > 0
	default:
		return true
	}
}

// Generator draws random criteria sets. It is safe for concurrent use.
type Generator struct {
	pools Pools
	mu    sync.Mutex
	rng   *rand.Rand
}

// NewGenerator returns a generator drawing from pools with rng.
func NewGenerator(pools Pools, rng *rand.Rand) (*Generator, error) {
	if err := pools.Validate(); err != nil {
		return nil, err
	}
	return &Generator{pools: pools, rng: rng}, nil
}

// Generate returns the criteria for one round, in display order.
//
// One primary criterion is always drawn; a secondary one is added on the
// two-criterion outcome. An EndsWith primary paired with a RhymesWith
// secondary is collapsed to the secondary alone, since the two constrain the
// same end of the word.
func (g *Generator) Generate() []Criterion {
	g.mu.Lock()
	defer g.mu.Unlock()

	count := 1 + randutil.WeightedIndex(g.rng, countWeights)

	primary := g.draw(primaryKinds, primaryWeights)
	if count == 1 {
		return []Criterion{primary}
	}

	secondary := g.draw(secondaryKinds, secondaryWeights)
	if primary.Kind() == EndsWith && secondary.Kind() == RhymesWith {
		return []Criterion{secondary}
	}
	return []Criterion{primary, secondary}
}

// draw samples a kind from the candidates whose parameter pools are
// non-empty, then builds it with fresh parameters.
func (g *Generator) draw(kinds []Kind, weights []int) Criterion {
	reduced := make([]int, len(weights))
	for i, k := range kinds {
		if g.pools.available(k) {
			reduced[i] = weights[i]
		}
	}
	return g.build(kinds[randutil.WeightedIndex(g.rng, reduced)])
}

func (g *Generator) build(k Kind) Criterion {
	switch k {
	case StartsWith:
		return NewStartsWith(pick(g.rng, g.pools.StartsWith))
	case EndsWith:
		return NewEndsWith(pick(g.rng, g.pools.EndsWith))
	case Contains:
		return NewContains(pick(g.rng, g.pools.Contains))
	case ExactLength:
		return NewExactLength(randutil.IntRange(g.rng, ExactLengthMin, ExactLengthMax))
	case MinLength:
		return NewMinLength(randutil.IntRange(g.rng, MinLengthMin, MinLengthMax))
	case RhymesWith:
		return NewRhymesWith(pick(g.rng, g.pools.RhymesWith))
	default:
		return NewPartOfSpeech(pick(g.rng, g.pools.PartsOfSpeech))
	}
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.IntN(len(items))]
}
