package game

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/lox/wordsagainststrangers/internal/criteria"
	"github.com/lox/wordsagainststrangers/internal/words"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard).Level(zerolog.Disabled)
}

func testLexicon() *words.Lexicon {
	return words.NewLexicon(map[string][]words.PartOfSpeech{
		"teapot":    {words.Noun},
		"teaspoon":  {words.Noun},
		"tent":      {words.Noun},
		"cup":       {words.Noun},
		"run":       {words.Verb},
		"matter":    {words.Noun, words.Verb},
		"quiz":      {words.Noun},
		"telephone": {words.Noun},
	}, words.LexiconOptions{BonusLetters: "qz"})
}

// fixedSource hands out criteria sets in order, repeating the last one.
type fixedSource struct {
	mu   sync.Mutex
	sets [][]criteria.Criterion
	n    int
}

func newFixedSource(sets ...[]criteria.Criterion) *fixedSource {
	return &fixedSource{sets: sets}
}

func (f *fixedSource) Generate() []criteria.Criterion {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := min(f.n, len(f.sets)-1)
	f.n++
	return f.sets[i]
}

// flakyOracle fails every query while down is set.
type flakyOracle struct {
	*words.Lexicon
	mu   sync.Mutex
	down bool
	// rhymeOnly restricts failures to IsRhyme.
	rhymeOnly bool
}

var errLookup = errors.New("lookup service unreachable")

func (f *flakyOracle) failing(rhyme bool) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.down && (!f.rhymeOnly || rhyme)
}

func (f *flakyOracle) setDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = down
}

func (f *flakyOracle) IsWord(ctx context.Context, w string) (bool, error) {
	if f.failing(false) {
		return false, errLookup
	}
	return f.Lexicon.IsWord(ctx, w)
}

func (f *flakyOracle) IsRhyme(ctx context.Context, a, b string) (bool, error) {
	if f.failing(true) {
		return false, errLookup
	}
	return f.Lexicon.IsRhyme(ctx, a, b)
}

// recordingAnnouncer keeps a log of every event.
type recordingAnnouncer struct {
	mu     sync.Mutex
	events []string
	final  []Standing
}

func (a *recordingAnnouncer) add(format string, args ...any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, fmt.Sprintf(format, args...))
}

func (a *recordingAnnouncer) Events() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.events...)
}

func (a *recordingAnnouncer) count(prefix string) int {
	n := 0
	for _, e := range a.Events() {
		if len(e) >= len(prefix) && e[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func (a *recordingAnnouncer) SessionOpened(room string, roster []PlayerID) {
	a.add("opened %s %v", room, roster)
}

func (a *recordingAnnouncer) RosterChanged(room string, roster []PlayerID) {
	a.add("roster %s %v", room, roster)
}

func (a *recordingAnnouncer) SessionStarted(room string, roster []PlayerID, total int) {
	a.add("started %s %v %d", room, roster, total)
}

func (a *recordingAnnouncer) RoundStarted(room string, round RoundInfo) {
	a.add("round_started %s %d/%d", room, round.Number, round.Total)
}

func (a *recordingAnnouncer) RoundEnded(room string, round RoundInfo, standings []Standing) {
	a.add("round_ended %s %d/%d %v", room, round.Number, round.Total, standings)
}

func (a *recordingAnnouncer) SessionEnded(room string, standings []Standing) {
	a.mu.Lock()
	a.final = standings
	a.mu.Unlock()
	a.add("ended %s", room)
}

type testEnv struct {
	clock     *quartz.Mock
	announcer *recordingAnnouncer
	source    *fixedSource
	oracle    words.Oracle
	registry  *Registry
}

func newTestEnv(t *testing.T, cfg Config, source *fixedSource) *testEnv {
	t.Helper()
	return newTestEnvWithOracle(t, cfg, source, testLexicon())
}

func newTestEnvWithOracle(t *testing.T, cfg Config, source *fixedSource, oracle words.Oracle) *testEnv {
	t.Helper()
	env := &testEnv{
		clock:     quartz.NewMock(t),
		announcer: &recordingAnnouncer{},
		source:    source,
		oracle:    oracle,
	}
	reg, err := NewRegistry(cfg, Deps{
		Oracle:    oracle,
		Criteria:  source,
		Announcer: env.announcer,
		Clock:     env.clock,
		Logger:    testLogger(),
	})
	if err != nil {
		t.Fatalf("failed to create registry: %v", err)
	}
	t.Cleanup(reg.Close)
	env.registry = reg
	return env
}

// advance fires the next pending timer and waits for its callback.
func (e *testEnv) advance(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, w := e.clock.AdvanceNext()
	w.MustWait(ctx)
}

func testConfig(rounds int) Config {
	return Config{Rounds: rounds, RoundDuration: 15 * time.Second, Intermission: 3 * time.Second}
}
