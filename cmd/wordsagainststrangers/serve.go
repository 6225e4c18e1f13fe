package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lox/wordsagainststrangers/cmd/wordsagainststrangers/shared"
	"github.com/lox/wordsagainststrangers/internal/chat"
	"github.com/lox/wordsagainststrangers/internal/config"
	"github.com/lox/wordsagainststrangers/internal/criteria"
	"github.com/lox/wordsagainststrangers/internal/game"
	"github.com/lox/wordsagainststrangers/internal/words"
)

// ServeCmd runs the bot behind a WebSocket chat hub
type ServeCmd struct {
	Config       string `kong:"default='wordsagainststrangers.hcl',help='HCL configuration file (defaults apply if missing)'"`
	Addr         string `kong:"help='Override the listen address'"`
	Rounds       int    `kong:"help='Override rounds per game'"`
	RoundSeconds int    `kong:"help='Override round length in seconds'"`
	Seed         *int64 `kong:"help='Deterministic RNG seed for criteria generation (optional)'"`
	Debug        bool   `kong:"help='Enable debug logging'"`
	LogFormat    string `kong:"default='console',enum='console,json',help='Log output format'"`
}

func (c *ServeCmd) logger() zerolog.Logger {
	if c.LogFormat == "json" {
		return shared.SetupStructuredLogger(c.Debug)
	}
	return shared.SetupLogger(c.Debug)
}

func (c *ServeCmd) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	if c.Addr != "" {
		cfg.Chat.Address = c.Addr
	}
	if c.Rounds != 0 {
		cfg.Game.Rounds = c.Rounds
	}
	if c.RoundSeconds != 0 {
		cfg.Game.RoundSeconds = c.RoundSeconds
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", c.Config, err)
	}
	return cfg, nil
}

func (c *ServeCmd) Run() error {
	logger := c.logger()

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	rng, seed := seededRand(c.Seed)
	logger.Info().Int64("seed", seed).Msg("Criteria seed")

	lexicon, err := cfg.LoadLexicon()
	if err != nil {
		return err
	}
	logger.Info().Int("words", lexicon.Len()).Str("path", cfg.Lexicon.Path).Msg("Lexicon loaded")
	oracle := words.NewGuardedOracle(lexicon, cfg.OracleTimeout(), logger)

	pools, err := cfg.Pools()
	if err != nil {
		return err
	}
	generator, err := criteria.NewGenerator(pools, rng)
	if err != nil {
		return err
	}

	hub := chat.NewHub(chat.HubOptions{
		MessagesPerSecond: cfg.Chat.MessagesPerSecond,
		Burst:             cfg.Chat.Burst,
	}, shared.SetupTransportLogger(c.Debug, c.LogFormat == "json"))
	announcer := chat.NewAnnouncer(hub, logger)

	gameCfg, err := cfg.GameConfig()
	if err != nil {
		return err
	}
	registry, err := game.NewRegistry(gameCfg, game.Deps{
		Oracle:    oracle,
		Criteria:  generator,
		Announcer: announcer,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	bot := chat.NewBot(registry, announcer, hub, cfg.Chat.Prefix, logger)
	hub.SetHandler(bot.Handle)

	srv := &http.Server{
		Addr:              cfg.Chat.Address,
		Handler:           hub.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info().
		Str("address", cfg.Chat.Address).
		Str("prefix", cfg.Chat.Prefix).
		Int("rounds", gameCfg.Rounds).
		Dur("round_duration", gameCfg.RoundDuration).
		Dur("intermission", gameCfg.Intermission).
		Dur("oracle_timeout", cfg.OracleTimeout()).
		Msg("Starting Words Against Strangers")

	ctx, cancel := shared.WithShutdownSignals(context.Background(), logger)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return announcer.Run(gctx)
	})
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("Shutting down server...")
		registry.Close()
		hub.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
