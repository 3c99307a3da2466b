package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/bookforge/internal/config"
	"git.home.luguber.info/inful/bookforge/internal/pipeline"
)

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"book.yml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build      BuildCmd      `cmd:"" help:"Run the full pipeline: scan, extract, preprocess, assemble, export"`
	Scan       ScanCmd       `cmd:"" help:"Discover recipe sources and update the build state"`
	Extract    ExtractCmd    `cmd:"" help:"Extract recipe bodies and package requirements"`
	Preprocess PreprocessCmd `cmd:"" help:"Normalize extracted bodies for assembly"`
	Compile    CompileCmd    `cmd:"" help:"Render and compile the book (or per-recipe PDFs)"`
	Export     ExportCmd     `cmd:"" help:"Export the HTML edition"`
	Init       InitCmd       `cmd:"" help:"Initialize a new book configuration file"`
	Watch      WatchCmd      `cmd:"" help:"Rebuild automatically when recipe sources change"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// setup loads the configuration and resolves the content root: the
// directory holding the config file, so the tool works from anywhere. A
// relative build directory is anchored to the root.
func (c *CLI) setup() (*config.Config, string, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, "", err
	}
	root := filepath.Dir(c.Config)
	if !filepath.IsAbs(cfg.Build.OutputDir) {
		cfg.Build.OutputDir = filepath.Join(root, cfg.Build.OutputDir)
	}
	if cfg.Build.TemplateDir != "" && !filepath.IsAbs(cfg.Build.TemplateDir) {
		cfg.Build.TemplateDir = filepath.Join(root, cfg.Build.TemplateDir)
	}
	if cfg.Introduction != "" && !filepath.IsAbs(cfg.Introduction) {
		cfg.Introduction = filepath.Join(root, cfg.Introduction)
	}
	return cfg, root, nil
}

// runStages executes the named pipeline stages and prints the run report.
// Per-document issues alone do not produce an error: the process exits
// zero whenever the requested artifacts were produced.
func (c *CLI) runStages(opts pipeline.Options, stages ...string) error {
	cfg, root, err := c.setup()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rep, runErr := pipeline.New(cfg, root, opts).Run(ctx, stages...)
	if rep != nil {
		fmt.Fprint(os.Stdout, rep.Render())
	}
	return runErr
}
