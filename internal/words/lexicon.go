package words

import (
	"bufio"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

//go:embed data/lexicon.txt
var embeddedLexicon string

const (
	DefaultBonusLength  = 10
	DefaultBonusLetters = "jqxz"
)

// LexiconOptions tunes the bonus rule of a Lexicon.
type LexiconOptions struct {
	// BonusLength is the minimum rune count that earns a bonus. Zero
	// disables the length rule.
	BonusLength int
	// BonusLetters earns a bonus when the word contains any of them.
	BonusLetters string
}

// DefaultLexiconOptions returns the bonus rule used when nothing is configured.
func DefaultLexiconOptions() LexiconOptions {
	return LexiconOptions{BonusLength: DefaultBonusLength, BonusLetters: DefaultBonusLetters}
}

type posSet uint8

func (s posSet) has(p PartOfSpeech) bool { return s&(1<<uint(p)) != 0 }

// Lexicon is an immutable Oracle backed by an in-memory word list. It is
// built once at startup and shared by reference; nothing mutates it after
// construction, so it is safe for concurrent use without locking.
type Lexicon struct {
	entries map[string]posSet
	opts    LexiconOptions
}

var _ Oracle = (*Lexicon)(nil)

// NewLexicon builds a lexicon from a word to parts-of-speech mapping.
func NewLexicon(entries map[string][]PartOfSpeech, opts LexiconOptions) *Lexicon {
	l := &Lexicon{entries: make(map[string]posSet, len(entries)), opts: opts}
	for w, parts := range entries {
		var set posSet
		for _, p := range parts {
			set |= 1 << uint(p)
		}
		l.entries[Normalize(w)] |= set
	}
	return l
}

// LoadLexicon parses a word list. Each non-empty line holds a word,
// optionally followed by whitespace and a comma separated list of part of
// speech tags (n, v, r, a or full names). Lines starting with # are ignored.
func LoadLexicon(r io.Reader, opts LexiconOptions) (*Lexicon, error) {
	l := &Lexicon{entries: make(map[string]posSet), opts: opts}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		word := Normalize(fields[0])
		if word == "" {
			continue
		}

		var set posSet
		if len(fields) > 1 {
			for _, tag := range strings.Split(fields[1], ",") {
				if tag == "" {
					continue
				}
				p, err := ParsePartOfSpeech(tag)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				set |= 1 << uint(p)
			}
		}
		l.entries[word] |= set
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read word list: %w", err)
	}
	if len(l.entries) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}
	return l, nil
}

// LoadLexiconFile reads a word list from disk.
func LoadLexiconFile(path string, opts LexiconOptions) (*Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open word list: %w", err)
	}
	defer f.Close()
	return LoadLexicon(f, opts)
}

// DefaultLexicon parses the word list compiled into the binary.
func DefaultLexicon(opts LexiconOptions) (*Lexicon, error) {
	return LoadLexicon(strings.NewReader(embeddedLexicon), opts)
}

// Len returns the number of distinct words.
func (l *Lexicon) Len() int {
	return len(l.entries)
}

// PartsOfSpeech returns the categories recorded for word, in display order.
func (l *Lexicon) PartsOfSpeech(word string) []PartOfSpeech {
	set := l.entries[Normalize(word)]
	var parts []PartOfSpeech
	for _, p := range AllPartsOfSpeech {
		if set.has(p) {
			parts = append(parts, p)
		}
	}
	return parts
}

func (l *Lexicon) IsWord(_ context.Context, word string) (bool, error) {
	_, ok := l.entries[Normalize(word)]
	return ok, nil
}

func (l *Lexicon) DeservesBonus(_ context.Context, word string) (bool, error) {
	w := Normalize(word)
	if l.opts.BonusLength > 0 && utf8.RuneCountInString(w) >= l.opts.BonusLength {
		return true, nil
	}
	return l.opts.BonusLetters != "" && strings.ContainsAny(w, l.opts.BonusLetters), nil
}

func (l *Lexicon) IsRhyme(_ context.Context, a, b string) (bool, error) {
	return Rhymes(Normalize(a), Normalize(b)), nil
}

func (l *Lexicon) IsPartOfSpeech(_ context.Context, word string, pos PartOfSpeech) (bool, error) {
	return l.entries[Normalize(word)].has(pos), nil
}
