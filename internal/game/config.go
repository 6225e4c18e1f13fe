package game

import (
	"fmt"
	"time"
)

const (
	DefaultRounds        = 3
	DefaultRoundDuration = 15 * time.Second
	DefaultIntermission  = 3 * time.Second
)

// Config holds per-session game settings. It is fixed when a session is
// created.
type Config struct {
	Rounds        int
	RoundDuration time.Duration
	// Intermission is the pause before each round. Zero starts rounds
	// immediately.
	Intermission time.Duration
}

// DefaultConfig returns a config with the standard game settings.
func DefaultConfig() Config {
	return Config{
		Rounds:        DefaultRounds,
		RoundDuration: DefaultRoundDuration,
		Intermission:  DefaultIntermission,
	}
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.Rounds < 1 {
		return fmt.Errorf("rounds must be at least 1, got %d", c.Rounds)
	}
	if c.RoundDuration <= 0 {
		return fmt.Errorf("round duration must be positive, got %s", c.RoundDuration)
	}
	if c.Intermission < 0 {
		return fmt.Errorf("intermission must not be negative, got %s", c.Intermission)
	}
	return nil
}
