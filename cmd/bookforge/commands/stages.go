package commands

import (
	"git.home.luguber.info/inful/bookforge/internal/export"
	"git.home.luguber.info/inful/bookforge/internal/extract"
	"git.home.luguber.info/inful/bookforge/internal/pipeline"
	"git.home.luguber.info/inful/bookforge/internal/preprocess"
	"git.home.luguber.info/inful/bookforge/internal/scan"
)

// The partial commands run prefixes of the pipeline (export additionally
// skips the compile step). Each one re-scans first so the state never
// trails the tree.

// ScanCmd only refreshes the build state.
type ScanCmd struct{}

func (s *ScanCmd) Run(cli *CLI) error {
	return cli.runStages(pipeline.Options{}, scan.StageName)
}

// ExtractCmd refreshes state and extracts changed bodies.
type ExtractCmd struct {
	Force bool `help:"Re-extract every recipe"`
}

func (e *ExtractCmd) Run(cli *CLI) error {
	return cli.runStages(pipeline.Options{Force: e.Force},
		scan.StageName, extract.StageName)
}

// PreprocessCmd runs everything up to body normalization.
type PreprocessCmd struct {
	Force bool `help:"Re-extract every recipe before preprocessing"`
}

func (p *PreprocessCmd) Run(cli *CLI) error {
	return cli.runStages(pipeline.Options{Force: p.Force},
		scan.StageName, extract.StageName, preprocess.StageName)
}

// ExportCmd produces the HTML edition without compiling the book.
type ExportCmd struct {
	Force bool `help:"Re-extract every recipe before exporting"`
}

func (e *ExportCmd) Run(cli *CLI) error {
	return cli.runStages(pipeline.Options{Force: e.Force},
		scan.StageName, extract.StageName, preprocess.StageName, export.StageName)
}
