// Package criteria defines the predicates a submitted word must satisfy in a
// round and the weighted generator that draws a fresh set for every round.
package criteria

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lox/wordsagainststrangers/internal/words"
)

// Kind identifies a Criterion variant.
type Kind int

const (
	StartsWith Kind = iota
	EndsWith
	Contains
	ExactLength
	MinLength
	RhymesWith
	PartOfSpeech
)

func (k Kind) String() string {
	switch k {
	case StartsWith:
		return "starts_with"
	case EndsWith:
		return "ends_with"
	case Contains:
		return "contains"
	case ExactLength:
		return "exact_length"
	case MinLength:
		return "min_length"
	case RhymesWith:
		return "rhymes_with"
	case PartOfSpeech:
		return "part_of_speech"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Criterion is a single predicate over a word. It is a closed sum type: the
// kind selects which of the parameter fields are meaningful. Values are
// immutable once constructed.
type Criterion struct {
	kind    Kind
	pattern string // StartsWith, EndsWith, Contains, RhymesWith
	length  int    // ExactLength, MinLength
	pos     words.PartOfSpeech
}

func NewStartsWith(pattern string) Criterion {
	return Criterion{kind: StartsWith, pattern: words.Normalize(pattern)}
}

func NewEndsWith(pattern string) Criterion {
	return Criterion{kind: EndsWith, pattern: words.Normalize(pattern)}
}

func NewContains(pattern string) Criterion {
	return Criterion{kind: Contains, pattern: words.Normalize(pattern)}
}

func NewExactLength(n int) Criterion {
	return Criterion{kind: ExactLength, length: n}
}

func NewMinLength(n int) Criterion {
	return Criterion{kind: MinLength, length: n}
}

func NewRhymesWith(word string) Criterion {
	return Criterion{kind: RhymesWith, pattern: words.Normalize(word)}
}

func NewPartOfSpeech(pos words.PartOfSpeech) Criterion {
	return Criterion{kind: PartOfSpeech, pos: pos}
}

func (c Criterion) Kind() Kind { return c.kind }

// Pattern returns the text parameter of pattern and rhyme criteria.
func (c Criterion) Pattern() string { return c.pattern }

// Length returns the numeric parameter of length criteria.
func (c Criterion) Length() int { return c.length }

// Part returns the parameter of part-of-speech criteria.
func (c Criterion) Part() words.PartOfSpeech { return c.pos }

// Test reports whether the normalised word satisfies the criterion. Only
// rhyme and part-of-speech checks consult the oracle, and only they can
// fail.
func (c Criterion) Test(ctx context.Context, oracle words.Oracle, word string) (bool, error) {
	switch c.kind {
	case StartsWith:
		return strings.HasPrefix(word, c.pattern), nil
	case EndsWith:
		return strings.HasSuffix(word, c.pattern), nil
	case Contains:
		return strings.Contains(word, c.pattern), nil
	case ExactLength:
		return utf8.RuneCountInString(word) == c.length, nil
	case MinLength:
		return utf8.RuneCountInString(word) >= c.length, nil
	case RhymesWith:
		return oracle.IsRhyme(ctx, word, c.pattern)
	case PartOfSpeech:
		return oracle.IsPartOfSpeech(ctx, word, c.pos)
	default:
		return false, fmt.Errorf("unknown criterion kind %v", c.kind)
	}
}

// Describe renders the criterion for players.
func (c Criterion) Describe() string {
	switch c.kind {
	case StartsWith:
		return fmt.Sprintf("Starts with `%s`", c.pattern)
	case EndsWith:
		return fmt.Sprintf("Ends with `%s`", c.pattern)
	case Contains:
		return fmt.Sprintf("Contains `%s`", c.pattern)
	case ExactLength:
		return fmt.Sprintf("Exactly `%d` letters long", c.length)
	case MinLength:
		return fmt.Sprintf("At least `%d` letters long", c.length)
	case RhymesWith:
		return fmt.Sprintf("Rhymes with \"`%s`\"", c.pattern)
	case PartOfSpeech:
		return fmt.Sprintf("Is a `%s`", c.pos)
	default:
		return c.kind.String()
	}
}

func (c Criterion) String() string { return c.Describe() }

// Describe renders a criteria set one per line, in order.
func Describe(set []Criterion) string {
	lines := make([]string, len(set))
	for i, c := range set {
		lines[i] = c.Describe()
	}
	return strings.Join(lines, "\n")
}

// TestAll reports whether word satisfies every criterion in set, stopping at
// the first one it fails.
func TestAll(ctx context.Context, oracle words.Oracle, set []Criterion, word string) (bool, error) {
	for _, c := range set {
		ok, err := c.Test(ctx, oracle, word)
		if err != nil {
			return false, fmt.Errorf("criterion %s: %w", c.kind, err)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}
