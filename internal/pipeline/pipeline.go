// Package pipeline orchestrates the build stages in their fixed order and
// owns the error policy between them: per-document problems accumulate as
// store issues, stage failures before assembly abort the run, and an
// export failure degrades the run without failing it. The store is
// persisted after every stage so an aborted run resumes where it stopped.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/bookforge/internal/assemble"
	"git.home.luguber.info/inful/bookforge/internal/config"
	"git.home.luguber.info/inful/bookforge/internal/export"
	"git.home.luguber.info/inful/bookforge/internal/extract"
	"git.home.luguber.info/inful/bookforge/internal/logfields"
	"git.home.luguber.info/inful/bookforge/internal/preprocess"
	"git.home.luguber.info/inful/bookforge/internal/report"
	"git.home.luguber.info/inful/bookforge/internal/scan"
	"git.home.luguber.info/inful/bookforge/internal/state"
)

// StateFileName is the store file kept inside the build directory.
const StateFileName = "metadata.yml"

// ErrorKind classifies a stage failure.
type ErrorKind string

const (
	KindFatal    ErrorKind = "fatal"
	KindWarning  ErrorKind = "warning"
	KindCanceled ErrorKind = "canceled"
)

// StageError is a stage failure annotated with the stage that produced it.
type StageError struct {
	Stage string
	Kind  ErrorKind
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// stageOrder is the fixed execution order. Subset runs keep this order.
var stageOrder = []string{
	scan.StageName,
	extract.StageName,
	preprocess.StageName,
	assemble.StageName,
	export.StageName,
}

// Options tune a pipeline run.
type Options struct {
	Force      bool // re-extract and re-compile everything
	Standalone bool // per-recipe PDFs instead of the assembled book
}

// Pipeline runs build stages over one content root.
type Pipeline struct {
	cfg  *config.Config
	root string
	opts Options
}

// New creates a pipeline for the given configuration and content root.
func New(cfg *config.Config, root string, opts Options) *Pipeline {
	return &Pipeline{cfg: cfg, root: root, opts: opts}
}

// StatePath returns the store location inside the build directory.
func (p *Pipeline) StatePath() string {
	return filepath.Join(p.cfg.Build.OutputDir, StateFileName)
}

// Run executes the named stages (all of them when none are named) and
// returns the run report. The returned error is nil when the book was
// produced, even if per-document issues or an export failure occurred.
func (p *Pipeline) Run(ctx context.Context, names ...string) (*report.Report, error) {
	start := time.Now()
	st := state.Load(p.StatePath())
	st.BuildID = uuid.NewString()
	slog.Info("Build starting", logfields.BuildID(st.BuildID))

	selected := selection(names)
	rep := &report.Report{BuildID: st.BuildID, StartedAt: start}

	var fatal error
	for _, name := range stageOrder {
		if !selected[name] {
			continue
		}
		if err := ctx.Err(); err != nil {
			fatal = &StageError{Stage: name, Kind: KindCanceled, Err: err}
			break
		}

		stageStart := time.Now()
		slog.Debug("Stage starting", logfields.Stage(name))
		err := p.runStage(ctx, name, st)
		res := report.StageResult{Name: name, Duration: time.Since(stageStart)}

		if err != nil {
			res.Err = err
			if name == export.StageName {
				// The web edition failing never takes down a finished book.
				res.Err = &StageError{Stage: name, Kind: KindWarning, Err: err}
				slog.Warn("Export failed, book artifact unaffected", logfields.Error(err))
			} else {
				res.Fatal = true
				fatal = &StageError{Stage: name, Kind: KindFatal, Err: err}
			}
		}
		if saveErr := st.Save(); saveErr != nil {
			// Report this even when the stage already failed: the store on
			// disk is now stale and the next run will redo work.
			slog.Error("Persisting build state failed",
				logfields.Stage(name), logfields.Error(saveErr))
			if fatal == nil {
				res.Err = saveErr
				res.Fatal = true
				fatal = &StageError{Stage: name, Kind: KindFatal, Err: saveErr}
			}
		}
		rep.Stages = append(rep.Stages, res)
		slog.Debug("Stage finished", logfields.Stage(name),
			logfields.DurationMS(float64(res.Duration.Milliseconds())))

		if fatal != nil {
			break
		}
	}

	rep.Duration = time.Since(start)
	rep.Sections = len(st.Sections)
	rep.Recipes = len(st.Recipes)
	rep.Issues = st.Issues

	if fatal != nil {
		return rep, fatal
	}
	slog.Info("Build finished",
		logfields.BuildID(st.BuildID),
		logfields.DurationMS(float64(rep.Duration.Milliseconds())),
		slog.Int("issues", len(st.Issues)))
	return rep, nil
}

func (p *Pipeline) runStage(ctx context.Context, name string, st *state.Store) error {
	switch name {
	case scan.StageName:
		return scan.New(p.root, p.cfg.Build.Extension).Run(st)
	case extract.StageName:
		return extract.New(p.root, p.cfg.Build.OutputDir, p.opts.Force).Run(st)
	case preprocess.StageName:
		return preprocess.New(p.cfg.Build.OutputDir).Run(st)
	case assemble.StageName:
		a := assemble.New(p.cfg)
		if p.opts.Standalone {
			return a.Standalone(ctx, st, p.opts.Force)
		}
		return a.Run(ctx, st)
	case export.StageName:
		return export.New(p.cfg).Run(st)
	default:
		return fmt.Errorf("unknown stage %q", name)
	}
}

// selection expands the requested stage names; empty means every stage.
func selection(names []string) map[string]bool {
	sel := map[string]bool{}
	if len(names) == 0 {
		for _, n := range stageOrder {
			sel[n] = true
		}
		return sel
	}
	for _, n := range names {
		sel[n] = true
	}
	return sel
}
