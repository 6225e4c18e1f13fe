package main

import (
	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	NoColor  bool             `help:"Disable colored output"`
	Serve    ServeCmd         `cmd:"" help:"Run the chat bot server"`
	Play     PlayCmd          `cmd:"" help:"Chat with a running server from the terminal"`
	Words    WordsCmd         `cmd:"" help:"Look words up in the lexicon"`
	Criteria CriteriaCmd      `cmd:"" help:"Print sample round criteria"`
	Init     InitCmd          `cmd:"" help:"Write a configuration file with the defaults"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("wordsagainststrangers"),
		kong.Description("Multiplayer word game for chat rooms"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	if cli.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
