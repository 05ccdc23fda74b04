package executor

import (
	"context"
	stderrors "errors"
	"io"
	"os/exec"
	"strings"
	"syscall"

	"github.com/matzehuels/monist/pkg/errors"
)

// Process describes one subprocess.
type Process struct {
	Program string
	Args    []string
	Dir     string
	Stdout  io.Writer // Nil discards the output
	Stderr  io.Writer
}

func (p Process) String() string {
	return strings.Join(append([]string{p.Program}, p.Args...), " ")
}

// Runner starts processes and waits for them.
type Runner interface {
	// Run runs p to completion. A process that does not exit with status 0
	// is reported as a *errors.CommandError.
	Run(ctx context.Context, p Process) error
}

// ExecRunner runs processes with os/exec.
type ExecRunner struct{}

// Run implements Runner. The process is killed when ctx is cancelled.
func (ExecRunner) Run(ctx context.Context, p Process) error {
	cmd := exec.CommandContext(ctx, p.Program, p.Args...)
	cmd.Dir = p.Dir
	cmd.Stdout = p.Stdout
	cmd.Stderr = p.Stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}

	cerr := &errors.CommandError{Dir: p.Dir, Command: p.String(), ExitCode: -1, Cause: err}
	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		cerr.ExitCode = exitErr.ExitCode()
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			cerr.Signal = ws.Signal().String()
		}
	}
	return cerr
}
