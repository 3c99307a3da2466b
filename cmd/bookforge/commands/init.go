package commands

import (
	"log/slog"

	"git.home.luguber.info/inful/bookforge/internal/config"
	"git.home.luguber.info/inful/bookforge/internal/logfields"
)

// InitCmd writes a starter configuration file.
type InitCmd struct {
	Force bool `help:"Overwrite an existing configuration file"`
}

func (i *InitCmd) Run(cli *CLI) error {
	slog.Info("Initializing configuration", logfields.Path(cli.Config))
	return config.Init(cli.Config, i.Force)
}
