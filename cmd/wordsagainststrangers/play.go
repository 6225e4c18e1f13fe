package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lox/wordsagainststrangers/cmd/wordsagainststrangers/shared"
	"github.com/lox/wordsagainststrangers/internal/chat"
	"github.com/lox/wordsagainststrangers/internal/client"
	"github.com/lox/wordsagainststrangers/internal/config"
	"github.com/lox/wordsagainststrangers/internal/game"
	"github.com/lox/wordsagainststrangers/internal/tui"
)

const connectTimeout = 10 * time.Second

// PlayCmd opens a terminal chat client against a running hub
type PlayCmd struct {
	Config  string `kong:"default='wordsagainststrangers.hcl',help='HCL configuration file'"`
	Server  string `kong:"help='Hub URL, overriding the config'"`
	User    string `kong:"help='Name to chat as (defaults to $USER)'"`
	Room    string `kong:"help='Room to talk in after connecting'"`
	Channel string `kong:"help='Channel within the room'"`
	LogFile string `kong:"help='Client log file, overriding the config'"`
}

func (c *PlayCmd) settings() (*config.ClientSettings, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}

	s := cfg.Client
	if c.Server != "" {
		s.Server = strings.TrimSpace(c.Server)
	}
	if c.User != "" {
		s.User = strings.TrimSpace(c.User)
	}
	if c.Room != "" {
		s.Room = strings.TrimSpace(c.Room)
	}
	if c.Channel != "" {
		s.Channel = strings.TrimSpace(c.Channel)
	}
	if c.LogFile != "" {
		s.LogFile = c.LogFile
	}
	if s.User == "" {
		s.User = os.Getenv("USER")
	}
	if s.User == "" {
		return nil, errors.New("a user name is required, pass --user")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", c.Config, err)
	}
	return s, nil
}

func (c *PlayCmd) Run() error {
	s, err := c.settings()
	if err != nil {
		return err
	}

	logger, logFile, err := shared.SetupFileLogger(s.LogFile, s.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logFile.Close() }()

	logger.Info("Starting client", "server", s.Server, "user", s.User, "room", s.Room)

	user := game.PlayerID(s.User)
	target := chat.Direct(user)
	var rooms []string
	if s.Room != "" {
		target = chat.Address{Room: s.Room, Channel: s.Channel}
		rooms = append(rooms, s.Room)
	}

	ws := client.NewClient(s.Server, logger)
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := ws.Connect(ctx); err != nil {
		return err
	}
	defer func() { _ = ws.Disconnect() }()

	if err := ws.Hello(user, rooms...); err != nil {
		return fmt.Errorf("failed to identify: %w", err)
	}

	model := tui.NewModel(ws, ws.Events(), user, target, logger)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
