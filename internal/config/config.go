// Package config loads the bot's HCL configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"

	"github.com/lox/wordsagainststrangers/internal/criteria"
	"github.com/lox/wordsagainststrangers/internal/fileutil"
	"github.com/lox/wordsagainststrangers/internal/game"
	"github.com/lox/wordsagainststrangers/internal/words"
)

const (
	DefaultOracleTimeoutMS   = 2000
	DefaultAddress           = ":8080"
	DefaultPrefix            = "w::"
	DefaultMessagesPerSecond = 5
	DefaultBurst             = 10

	DefaultServerURL      = "http://localhost:8080"
	DefaultClientChannel  = "general"
	DefaultClientLogFile  = "wordsagainststrangers-client.log"
	DefaultClientLogLevel = "warn"
)

// Config represents the complete bot configuration
type Config struct {
	Game     *GameSettings     `hcl:"game,block"`
	Criteria *CriteriaSettings `hcl:"criteria,block"`
	Lexicon  *LexiconSettings  `hcl:"lexicon,block"`
	Chat     *ChatSettings     `hcl:"chat,block"`
	Client   *ClientSettings   `hcl:"client,block"`
}

// GameSettings controls session pacing
type GameSettings struct {
	Rounds              int  `hcl:"rounds,optional"`
	RoundSeconds        int  `hcl:"round_seconds,optional"`
	IntermissionSeconds *int `hcl:"intermission_seconds,optional"`
	OracleTimeoutMS     int  `hcl:"oracle_timeout_ms,optional"`
}

// CriteriaSettings overrides the generator's parameter pools. A nil list
// keeps the built-in pool, an empty list disables that kind.
type CriteriaSettings struct {
	StartsWith    *[]string `hcl:"starts_with,optional"`
	EndsWith      *[]string `hcl:"ends_with,optional"`
	Contains      *[]string `hcl:"contains,optional"`
	RhymesWith    *[]string `hcl:"rhymes_with,optional"`
	PartsOfSpeech *[]string `hcl:"parts_of_speech,optional"`
}

// LexiconSettings selects the word list and the bonus rule
type LexiconSettings struct {
	Path         string  `hcl:"path,optional"`
	BonusLength  *int    `hcl:"bonus_length,optional"`
	BonusLetters *string `hcl:"bonus_letters,optional"`
}

// ChatSettings configures the chat transport
type ChatSettings struct {
	Address           string  `hcl:"address,optional"`
	Prefix            string  `hcl:"prefix,optional"`
	MessagesPerSecond float64 `hcl:"messages_per_second,optional"`
	Burst             int     `hcl:"burst,optional"`
}

// ClientSettings configures the terminal client
type ClientSettings struct {
	Server   string `hcl:"server,optional"`
	User     string `hcl:"user,optional"`
	Room     string `hcl:"room,optional"`
	Channel  string `hcl:"channel,optional"`
	LogFile  string `hcl:"log_file,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Template returns the defaults with every criteria pool spelled out, as a
// starting point for a config file.
func Template() *Config {
	cfg := Default()
	pools := criteria.DefaultPools()
	parts := make([]string, len(pools.PartsOfSpeech))
	for i, p := range pools.PartsOfSpeech {
		parts[i] = p.String()
	}
	cfg.Criteria = &CriteriaSettings{
		StartsWith:    &pools.StartsWith,
		EndsWith:      &pools.EndsWith,
		Contains:      &pools.Contains,
		RhymesWith:    &pools.RhymesWith,
		PartsOfSpeech: &parts,
	}
	return cfg
}

// Encode renders the configuration as formatted HCL.
func (c *Config) Encode() []byte {
	f := hclwrite.NewEmptyFile()
	gohcl.EncodeIntoBody(c, f.Body())
	return hclwrite.Format(f.Bytes())
}

// WriteFile writes the configuration to filename. An existing file is only
// replaced when overwrite is set.
func (c *Config) WriteFile(filename string, overwrite bool) error {
	if !overwrite && fileutil.Exists(filename) {
		return fmt.Errorf("%s already exists", filename)
	}
	return fileutil.WriteFileAtomic(filename, c.Encode(), 0o644)
}

// Load loads configuration from an HCL file. A missing file yields the
// defaults.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(src, filename)
}

// Parse decodes configuration from in-memory HCL source.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}

	var cfg Config
	if diags = gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Game == nil {
		c.Game = &GameSettings{}
	}
	if c.Criteria == nil {
		c.Criteria = &CriteriaSettings{}
	}
	if c.Lexicon == nil {
		c.Lexicon = &LexiconSettings{}
	}
	if c.Chat == nil {
		c.Chat = &ChatSettings{}
	}
	if c.Client == nil {
		c.Client = &ClientSettings{}
	}

	if c.Game.Rounds == 0 {
		c.Game.Rounds = game.DefaultRounds
	}
	if c.Game.RoundSeconds == 0 {
		c.Game.RoundSeconds = int(game.DefaultRoundDuration / time.Second)
	}
	if c.Game.OracleTimeoutMS == 0 {
		c.Game.OracleTimeoutMS = DefaultOracleTimeoutMS
	}
	if c.Game.IntermissionSeconds == nil {
		n := int(game.DefaultIntermission / time.Second)
		c.Game.IntermissionSeconds = &n
	}

	if c.Lexicon.BonusLength == nil {
		n := words.DefaultBonusLength
		c.Lexicon.BonusLength = &n
	}
	if c.Lexicon.BonusLetters == nil {
		s := words.DefaultBonusLetters
		c.Lexicon.BonusLetters = &s
	}

	if c.Chat.Address == "" {
		c.Chat.Address = DefaultAddress
	}
	if c.Chat.Prefix == "" {
		c.Chat.Prefix = DefaultPrefix
	}
	if c.Chat.MessagesPerSecond == 0 {
		c.Chat.MessagesPerSecond = DefaultMessagesPerSecond
	}
	if c.Chat.Burst == 0 {
		c.Chat.Burst = DefaultBurst
	}

	if c.Client.Server == "" {
		c.Client.Server = DefaultServerURL
	}
	if c.Client.Channel == "" {
		c.Client.Channel = DefaultClientChannel
	}
	if c.Client.LogFile == "" {
		c.Client.LogFile = DefaultClientLogFile
	}
	if c.Client.LogLevel == "" {
		c.Client.LogLevel = DefaultClientLogLevel
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := c.GameConfig(); err != nil {
		return err
	}
	if c.Game.OracleTimeoutMS < 0 {
		return fmt.Errorf("game: oracle_timeout_ms must not be negative, got %d", c.Game.OracleTimeoutMS)
	}
	pools, err := c.Pools()
	if err != nil {
		return err
	}
	if err := pools.Validate(); err != nil {
		return err
	}
	if *c.Lexicon.BonusLength < 0 {
		return fmt.Errorf("lexicon: bonus_length must not be negative, got %d", *c.Lexicon.BonusLength)
	}
	if c.Chat.MessagesPerSecond < 0 {
		return fmt.Errorf("chat: messages_per_second must not be negative, got %v", c.Chat.MessagesPerSecond)
	}
	if c.Chat.Burst < 1 {
		return fmt.Errorf("chat: burst must be at least 1, got %d", c.Chat.Burst)
	}
	if !validLogLevels[c.Client.LogLevel] {
		return fmt.Errorf("client: invalid log_level %q", c.Client.LogLevel)
	}
	return nil
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// GameConfig converts the game block into engine settings.
func (c *Config) GameConfig() (game.Config, error) {
	cfg := game.Config{
		Rounds:        c.Game.Rounds,
		RoundDuration: time.Duration(c.Game.RoundSeconds) * time.Second,
		Intermission:  time.Duration(*c.Game.IntermissionSeconds) * time.Second,
	}
	if err := cfg.Validate(); err != nil {
		return game.Config{}, fmt.Errorf("game: %w", err)
	}
	return cfg, nil
}

// OracleTimeout returns the per-query oracle deadline.
func (c *Config) OracleTimeout() time.Duration {
	return time.Duration(c.Game.OracleTimeoutMS) * time.Millisecond
}

// Pools returns the criteria parameter pools with overrides applied.
func (c *Config) Pools() (criteria.Pools, error) {
	pools := criteria.DefaultPools()
	override := func(dst *[]string, src *[]string) {
		if src != nil {
			*dst = append([]string(nil), (*src)...)
		}
	}
	override(&pools.StartsWith, c.Criteria.StartsWith)
	override(&pools.EndsWith, c.Criteria.EndsWith)
	override(&pools.Contains, c.Criteria.Contains)
	override(&pools.RhymesWith, c.Criteria.RhymesWith)

	if c.Criteria.PartsOfSpeech != nil {
		parts := make([]words.PartOfSpeech, 0, len(*c.Criteria.PartsOfSpeech))
		for _, name := range *c.Criteria.PartsOfSpeech {
			pos, err := words.ParsePartOfSpeech(name)
			if err != nil {
				return criteria.Pools{}, fmt.Errorf("criteria: %w", err)
			}
			parts = append(parts, pos)
		}
		pools.PartsOfSpeech = parts
	}
	return pools, nil
}

// LexiconOptions returns the bonus rule for the lexicon.
func (c *Config) LexiconOptions() words.LexiconOptions {
	return words.LexiconOptions{
		BonusLength:  *c.Lexicon.BonusLength,
		BonusLetters: *c.Lexicon.BonusLetters,
	}
}

// LoadLexicon loads the configured word list, falling back to the embedded
// one when no path is set.
func (c *Config) LoadLexicon() (*words.Lexicon, error) {
	if c.Lexicon.Path == "" {
		return words.DefaultLexicon(c.LexiconOptions())
	}
	return words.LoadLexiconFile(c.Lexicon.Path, c.LexiconOptions())
}
