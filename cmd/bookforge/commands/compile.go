package commands

import (
	"git.home.luguber.info/inful/bookforge/internal/assemble"
	"git.home.luguber.info/inful/bookforge/internal/extract"
	"git.home.luguber.info/inful/bookforge/internal/pipeline"
	"git.home.luguber.info/inful/bookforge/internal/preprocess"
	"git.home.luguber.info/inful/bookforge/internal/scan"
)

// CompileCmd renders and compiles the book without the HTML export.
type CompileCmd struct {
	Standalone bool `help:"Compile each recipe into its own PDF instead of the book"`
	Force      bool `help:"Recompile even when artifacts are up to date"`
}

func (c *CompileCmd) Run(cli *CLI) error {
	return cli.runStages(pipeline.Options{Force: c.Force, Standalone: c.Standalone},
		scan.StageName, extract.StageName, preprocess.StageName, assemble.StageName)
}
