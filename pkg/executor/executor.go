// Package executor runs a command in every member of a monorepo, following
// an execution plan.
//
// Batches run strictly one after the other. The members of a batch run
// either one at a time (serial) or all at once. When a command fails, the
// commands already running in the same batch are allowed to finish, the
// first failure is returned and no later batch starts.
//
// Before a member's command runs, its local dependencies can be prepared
// with one of the [Strategy] values: "npm link", "npm install" or a plain
// symlink to the dependency's build directory.
package executor

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/monist/pkg/errors"
	"github.com/matzehuels/monist/pkg/monorepo"
	"github.com/matzehuels/monist/pkg/observability"
)

// Executor drives plans through a Runner.
type Executor struct {
	runner Runner
	logger *log.Logger

	// Hooks receives progress events. Nil uses the globally registered
	// observability hooks.
	Hooks observability.ExecutionHooks

	// Stdout and Stderr receive the output of the commands unless the policy
	// suppresses it.
	Stdout io.Writer
	Stderr io.Writer
}

// New returns an executor. A nil runner uses ExecRunner and a nil logger
// discards messages.
func New(runner Runner, logger *log.Logger) *Executor {
	if runner == nil {
		runner = ExecRunner{}
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Executor{
		runner: runner,
		logger: logger,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

func (e *Executor) hooks() observability.ExecutionHooks {
	if e.Hooks != nil {
		return e.Hooks
	}
	return observability.Execution()
}

// run carries the state of one Execute call.
type run struct {
	*Executor
	id     string
	logger *log.Logger
	cmd    Command
	policy Policy
}

// Execute runs cmd in every member of plan.
func (e *Executor) Execute(ctx context.Context, plan [][]*monorepo.Member, cmd Command, policy Policy) error {
	if policy.BuildDir == "" {
		policy.BuildDir = "build/dist"
	}
	if err := errors.ValidateRelativePath(policy.BuildDir); err != nil {
		return err
	}

	r := &run{Executor: e, id: uuid.NewString(), cmd: cmd, policy: policy}
	r.logger = e.logger.With("run", r.id)

	names := make([][]string, len(plan))
	for i, batch := range plan {
		for _, m := range batch {
			names[i] = append(names[i], m.Name)
		}
	}

	start := time.Now()
	hooks := e.hooks()
	hooks.OnRunStart(ctx, r.id, names)
	err := r.execute(ctx, plan, names)
	hooks.OnRunComplete(ctx, r.id, time.Since(start), err)
	return err
}

func (r *run) execute(ctx context.Context, plan [][]*monorepo.Member, names [][]string) error {
	hooks := r.hooks()
	for i, batch := range plan {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		hooks.OnBatchStart(ctx, r.id, i, names[i])
		r.logger.Debug("starting batch", "index", i, "members", names[i])

		var err error
		if r.policy.Serial {
			err = r.serial(ctx, batch)
		} else {
			err = r.parallel(ctx, batch)
		}

		hooks.OnBatchComplete(ctx, r.id, i, time.Since(start), err)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *run) serial(ctx context.Context, batch []*monorepo.Member) error {
	for _, m := range batch {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.member(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// parallel starts every member of the batch and waits for all of them. The
// group has no context, so a failure does not cancel the siblings.
func (r *run) parallel(ctx context.Context, batch []*monorepo.Member) error {
	var g errgroup.Group
	if r.policy.Concurrency > 0 {
		g.SetLimit(r.policy.Concurrency)
	}
	for _, m := range batch {
		g.Go(func() error { return r.member(ctx, m) })
	}
	return g.Wait()
}

func (r *run) member(ctx context.Context, m *monorepo.Member) error {
	hooks := r.hooks()
	start := time.Now()
	hooks.OnMemberStart(ctx, r.id, m.Name)

	err := r.prepare(ctx, m)
	if err == nil {
		err = r.command(ctx, m)
	}

	hooks.OnMemberComplete(ctx, r.id, m.Name, time.Since(start), err)
	return err
}

func (r *run) command(ctx context.Context, m *monorepo.Member) error {
	p := Process{Program: r.cmd.Program, Args: r.cmd.argsFor(m), Dir: m.Top}
	if !r.policy.SuppressOutput {
		p.Stdout, p.Stderr = r.Stdout, r.Stderr
	}

	pretty := r.cmd.String(m)
	r.logger.Infof("%s: started %s", m.Top, pretty)
	if err := r.runner.Run(ctx, p); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return asCommandError(err, p)
	}
	r.logger.Infof("%s: finished %s", m.Top, pretty)
	return nil
}

// asCommandError makes sure failures of runners that do not report
// *errors.CommandError still carry the member and command.
func asCommandError(err error, p Process) error {
	if errors.GetCode(err) == errors.ErrCodeCommandFailed {
		return err
	}
	return &errors.CommandError{Dir: p.Dir, Command: p.String(), ExitCode: -1, Cause: err}
}
