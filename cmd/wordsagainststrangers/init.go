package main

import (
	"fmt"

	"github.com/lox/wordsagainststrangers/internal/config"
)

// InitCmd writes a starter configuration file
type InitCmd struct {
	Path  string `arg:"" optional:"" default:"wordsagainststrangers.hcl" help:"Where to write the file"`
	Force bool   `short:"f" help:"Overwrite an existing file"`
}

func (c *InitCmd) Run() error {
	if err := config.Template().WriteFile(c.Path, c.Force); err != nil {
		return err
	}
	fmt.Println(headerStyle.Render("Wrote " + c.Path))
	return nil
}
