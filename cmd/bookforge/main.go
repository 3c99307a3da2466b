package main

import (
	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/bookforge/cmd/bookforge/commands"
)

var version = "dev"

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("bookforge"),
		kong.Description("Incremental recipe book builder: LaTeX sources in, PDF and HTML editions out."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)
	err := ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
