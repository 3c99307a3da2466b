package commands

import "git.home.luguber.info/inful/bookforge/internal/pipeline"

// BuildCmd runs every stage in order.
type BuildCmd struct {
	Force bool `help:"Re-extract and re-render everything regardless of change status"`
}

func (b *BuildCmd) Run(cli *CLI) error {
	return cli.runStages(pipeline.Options{Force: b.Force})
}
