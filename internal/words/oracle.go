// Package words answers the linguistic questions the game asks about
// submitted words: whether a string is a word, whether it earns a bonus,
// whether two words rhyme and which parts of speech a word can be.
//
// The Oracle interface is the boundary the engine consumes. Lexicon is the
// in-process implementation backed by an immutable word list, and
// GuardedOracle wraps any Oracle with per-query timeouts so that a slow or
// remote implementation cannot hold a session hostage.
package words

import (
	"context"
	"fmt"
	"strings"
)

// PartOfSpeech is a lexical category a word may belong to.
type PartOfSpeech int

const (
	Noun PartOfSpeech = iota
	Verb
	Adverb
	Adjective
)

// AllPartsOfSpeech lists every category in display order.
var AllPartsOfSpeech = []PartOfSpeech{Noun, Verb, Adverb, Adjective}

func (p PartOfSpeech) String() string {
	switch p {
	case Noun:
		return "noun"
	case Verb:
		return "verb"
	case Adverb:
		return "adverb"
	case Adjective:
		return "adjective"
	default:
		return fmt.Sprintf("PartOfSpeech(%d)", int(p))
	}
}

// ParsePartOfSpeech accepts the full name or the single-letter tag used in
// word list files (n, v, r, a).
func ParsePartOfSpeech(s string) (PartOfSpeech, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "noun", "n":
		return Noun, nil
	case "verb", "v":
		return Verb, nil
	case "adverb", "adv", "r":
		return Adverb, nil
	case "adjective", "adj", "a":
		return Adjective, nil
	default:
		return 0, fmt.Errorf("unknown part of speech %q", s)
	}
}

// Oracle answers linguistic queries. Implementations may be remote, so every
// query takes a context and may fail.
type Oracle interface {
	IsWord(ctx context.Context, word string) (bool, error)
	DeservesBonus(ctx context.Context, word string) (bool, error)
	IsRhyme(ctx context.Context, a, b string) (bool, error)
	IsPartOfSpeech(ctx context.Context, word string, pos PartOfSpeech) (bool, error)
}
