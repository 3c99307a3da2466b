package assemble

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Runner invokes the external LaTeX compiler inside a working directory.
type Runner struct {
	compiler string
	dir      string
}

// NewRunner creates a runner for the given compiler binary and working
// directory.
func NewRunner(compiler, dir string) *Runner {
	return &Runner{compiler: compiler, dir: dir}
}

// intermediateExts are compiler byproducts removed after a successful run.
var intermediateExts = []string{".aux", ".log", ".toc", ".out"}

// Compile runs the compiler twice over texFile so cross references and the
// table of contents settle, then removes the intermediate files. The
// compiler's combined output is kept and its tail included in the error on
// a nonzero exit.
func (r *Runner) Compile(ctx context.Context, texFile string) error {
	for pass := 1; pass <= 2; pass++ {
		cmd := exec.CommandContext(ctx, r.compiler, "-interaction=nonstopmode", texFile)
		cmd.Dir = r.dir
		out, err := cmd.CombinedOutput()
		if err != nil {
			return fmt.Errorf("%s pass %d failed: %w\n%s", r.compiler, pass, err, outputTail(out, 20))
		}
	}
	r.removeIntermediates(texFile)
	return nil
}

// Available reports whether the compiler binary can be found in PATH.
func (r *Runner) Available() bool {
	_, err := exec.LookPath(r.compiler)
	return err == nil
}

func (r *Runner) removeIntermediates(texFile string) {
	base := strings.TrimSuffix(texFile, filepath.Ext(texFile))
	for _, ext := range intermediateExts {
		os.Remove(filepath.Join(r.dir, base+ext))
	}
}

// outputTail returns the last n lines of compiler output, which is where
// the engine prints the actual failure.
func outputTail(out []byte, n int) string {
	lines := bytes.Split(bytes.TrimSpace(out), []byte("\n"))
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return string(bytes.Join(lines, []byte("\n")))
}
