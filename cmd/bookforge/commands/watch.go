package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/bookforge/internal/pipeline"
	"git.home.luguber.info/inful/bookforge/internal/watch"
)

// WatchCmd rebuilds the book whenever recipe sources change.
type WatchCmd struct {
	Debounce time.Duration `help:"Quiet period after a change before rebuilding" default:"2s"`
}

func (w *WatchCmd) Run(cli *CLI) error {
	cfg, root, err := cli.setup()
	if err != nil {
		return err
	}

	p := pipeline.New(cfg, root, pipeline.Options{})
	rebuild := func(ctx context.Context) error {
		rep, err := p.Run(ctx)
		if rep != nil {
			fmt.Fprint(os.Stdout, rep.Render())
		}
		return err
	}

	watcher, err := watch.New(root, cfg.Build.Extension, w.Debounce, rebuild)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Build once up front so the watcher starts from a current book.
	if err := rebuild(ctx); err != nil {
		return err
	}
	return watcher.Run(ctx)
}
