package executor

import (
	"context"
	"os"
	"path/filepath"

	"github.com/matzehuels/monist/pkg/errors"
	"github.com/matzehuels/monist/pkg/monorepo"
)

// prepare makes the local dependencies of m available under its
// node_modules directory, one dependency at a time. Dependencies that are
// already present are left alone.
func (r *run) prepare(ctx context.Context, m *monorepo.Member) error {
	if r.policy.LocalDeps == None {
		return nil
	}

	for _, dep := range m.LocalDeps {
		if err := ctx.Err(); err != nil {
			return err
		}

		installed := filepath.Join(m.Top, "node_modules", filepath.FromSlash(dep.Name))
		if _, err := os.Lstat(installed); err == nil {
			r.logger.Infof("%s: %s already %s", m.Top, dep.Name, pastTense(r.policy.LocalDeps))
			continue
		}

		build := filepath.Join(dep.Top, filepath.FromSlash(r.policy.BuildDir))
		rel, err := filepath.Rel(m.Top, build)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "cannot reach %s from %s", build, m.Top)
		}

		r.logger.Infof("%s: %s %s", m.Top, presentTense(r.policy.LocalDeps), dep.Name)
		switch r.policy.LocalDeps {
		case None:
			return nil
		case Link:
			if err := os.MkdirAll(build, 0o755); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "cannot create %s", build)
			}
			err = r.npm(ctx, m, "link", rel)
		case Install:
			err = r.npm(ctx, m, "install", "--no-save", rel)
		case Symlink:
			err = symlink(build, installed)
		default:
			return errors.New(errors.ErrCodeUnsupported, "%s is not a supported localDeps value", r.policy.LocalDeps)
		}
		if err != nil {
			return err
		}
		r.logger.Infof("%s: %s %s", m.Top, pastTense(r.policy.LocalDeps), dep.Name)
	}
	return nil
}

// npm runs an npm helper command in m. Its output is never shown.
func (r *run) npm(ctx context.Context, m *monorepo.Member, args ...string) error {
	p := Process{Program: "npm", Args: args, Dir: m.Top}
	if err := r.runner.Run(ctx, p); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return asCommandError(err, p)
	}
	return nil
}

// symlink creates link pointing at target with a relative path.
func symlink(target, link string) error {
	dir := filepath.Dir(link)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "cannot create %s", dir)
	}
	rel, err := filepath.Rel(dir, target)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "cannot reach %s from %s", target, dir)
	}
	if err := os.Symlink(rel, link); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "cannot link %s", link)
	}
	return nil
}

func presentTense(s Strategy) string {
	switch s {
	case Link:
		return "linking"
	case Install:
		return "installing"
	case Symlink:
		return "symlinking"
	}
	return "preparing"
}

func pastTense(s Strategy) string {
	switch s {
	case Link:
		return "linked"
	case Install:
		return "installed"
	case Symlink:
		return "symlinked"
	}
	return "prepared"
}
