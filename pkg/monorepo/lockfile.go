package monorepo

import (
	"os"

	"github.com/matzehuels/monist/pkg/errors"
	"github.com/matzehuels/monist/pkg/manifest"
)

// RemoveLocalFromLockfile strips the members of the repository from the npm
// lock file at path. Members are removed from the "dependencies" table and,
// for lockfileVersion 2 and later, from the "node_modules/<name>" entries of
// the "packages" table.
//
// A lock file left without any dependency is deleted. It reports whether the
// file was deleted.
func (r *Monorepo) RemoveLocalFromLockfile(path string) (bool, error) {
	lock, err := manifest.Read(path)
	if err != nil {
		return false, err
	}

	e := lock.Edit()
	for _, m := range r.members {
		e.Delete("dependencies", m.Name)
		e.Delete("packages", "node_modules/"+m.Name)
	}

	remaining := len(e.Keys("dependencies"))
	for _, key := range e.Keys("packages") {
		// The "" entry describes the project itself.
		if key != "" {
			remaining++
		}
	}

	if remaining == 0 {
		if err := os.Remove(path); err != nil {
			return false, errors.Wrap(errors.ErrCodeInternal, err, "cannot remove %s", path)
		}
		r.logger.Debug("removed lock file", "path", path)
		return true, nil
	}
	if !e.Changed() {
		return false, nil
	}
	if err := e.Write(); err != nil {
		return false, err
	}
	r.logger.Debug("cleaned lock file", "path", path)
	return false, nil
}
