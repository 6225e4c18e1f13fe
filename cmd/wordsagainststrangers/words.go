package main

import (
	"context"
	"fmt"
	"io"
	rand "math/rand/v2"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/lox/wordsagainststrangers/internal/config"
	"github.com/lox/wordsagainststrangers/internal/criteria"
	"github.com/lox/wordsagainststrangers/internal/randutil"
	"github.com/lox/wordsagainststrangers/internal/words"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	wordStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	yesStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	noStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("9"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))
)

// WordsCmd reports how the lexicon judges each word
type WordsCmd struct {
	Words   []string `arg:"" help:"Words to look up"`
	Config  string   `kong:"default='wordsagainststrangers.hcl',help='HCL configuration file'"`
	Lexicon string   `kong:"help='Word list file, overriding the config'"`
	Rhymes  string   `kong:"help='Also check whether each word rhymes with this one'"`
}

type wordReport struct {
	Word   string
	Valid  bool
	Bonus  bool
	Parts  []words.PartOfSpeech
	Rhymes *bool
}

func (c *WordsCmd) Run() error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	if c.Lexicon != "" {
		cfg.Lexicon.Path = c.Lexicon
	}
	lexicon, err := cfg.LoadLexicon()
	if err != nil {
		return err
	}

	reports := make([]wordReport, 0, len(c.Words))
	for _, w := range c.Words {
		r, err := lookupWord(context.Background(), lexicon, w, c.Rhymes)
		if err != nil {
			return err
		}
		reports = append(reports, r)
	}
	renderReports(os.Stdout, lexicon.Len(), reports)
	return nil
}

func lookupWord(ctx context.Context, lexicon *words.Lexicon, raw, rhymeWith string) (wordReport, error) {
	w := words.Normalize(raw)
	r := wordReport{Word: w}

	var err error
	if r.Valid, err = lexicon.IsWord(ctx, w); err != nil {
		return r, err
	}
	if r.Valid {
		if r.Bonus, err = lexicon.DeservesBonus(ctx, w); err != nil {
			return r, err
		}
		r.Parts = lexicon.PartsOfSpeech(w)
	}
	if rhymeWith != "" {
		ok, err := lexicon.IsRhyme(ctx, w, words.Normalize(rhymeWith))
		if err != nil {
			return r, err
		}
		r.Rhymes = &ok
	}
	return r, nil
}

func yesNo(b bool) string {
	if b {
		return yesStyle.Render("yes")
	}
	return noStyle.Render("no")
}

func renderReports(out io.Writer, lexiconSize int, reports []wordReport) {
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("Lexicon: %d words", lexiconSize)))
	for _, r := range reports {
		fmt.Fprintf(out, "\n%s\n", wordStyle.Render(r.Word))
		fmt.Fprintf(out, "  word:  %s\n", yesNo(r.Valid))
		if !r.Valid {
			continue
		}
		fmt.Fprintf(out, "  bonus: %s\n", yesNo(r.Bonus))

		parts := make([]string, len(r.Parts))
		for i, p := range r.Parts {
			parts[i] = p.String()
		}
		if len(parts) == 0 {
			fmt.Fprintf(out, "  parts: %s\n", mutedStyle.Render("untagged"))
		} else {
			fmt.Fprintf(out, "  parts: %s\n", strings.Join(parts, ", "))
		}
		if r.Rhymes != nil {
			fmt.Fprintf(out, "  rhyme: %s\n", yesNo(*r.Rhymes))
		}
	}
}

// CriteriaCmd prints criteria sets the generator would hand out
type CriteriaCmd struct {
	Count  int    `kong:"default='5',help='Number of rounds to generate'"`
	Seed   *int64 `kong:"help='Deterministic RNG seed (optional)'"`
	Config string `kong:"default='wordsagainststrangers.hcl',help='HCL configuration file'"`
}

func (c *CriteriaCmd) Run() error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	pools, err := cfg.Pools()
	if err != nil {
		return err
	}

	rng, seed := seededRand(c.Seed)
	gen, err := criteria.NewGenerator(pools, rng)
	if err != nil {
		return err
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("Seed %d", seed)))
	for i := range c.Count {
		fmt.Printf("\n%s\n", wordStyle.Render(fmt.Sprintf("Round %d", i+1)))
		for _, line := range strings.Split(criteria.Describe(gen.Generate()), "\n") {
			fmt.Printf("  %s\n", line)
		}
	}
	return nil
}

func seededRand(seed *int64) (*rand.Rand, int64) {
	s := time.Now().UnixNano()
	if seed != nil {
		s = *seed
	}
	return randutil.New(s), s
}
