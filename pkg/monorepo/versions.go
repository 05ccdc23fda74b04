package monorepo

import (
	"github.com/matzehuels/monist/pkg/errors"
	"github.com/matzehuels/monist/pkg/manifest"
	"github.com/matzehuels/monist/pkg/versions"
)

// UpdateVersions sets the version of every member to v and pins every
// dependency on another member, whatever its field, to exactly v. The root
// manifest version is updated last.
//
// v is validated before anything is written. A failed write leaves the
// manifests written so far in place.
func (r *Monorepo) UpdateVersions(v string) error {
	clean, ok := versions.Clean(v)
	if !ok {
		return errors.New(errors.ErrCodeInvalidVersion, "%s is not a valid semver version", v)
	}

	for _, m := range r.members {
		e := m.Manifest.Edit()
		if err := e.Set(clean, "version"); err != nil {
			return err
		}
		for _, kind := range manifest.AllKinds {
			if !m.Manifest.Get(string(kind)).IsObject() {
				continue
			}
			for _, dep := range m.Manifest.Dependencies(kind) {
				if !r.IsMember(dep.Name) {
					continue
				}
				if err := e.Set(clean, string(kind), dep.Name); err != nil {
					return err
				}
			}
		}
		if err := e.Write(); err != nil {
			return err
		}
		r.logger.Debug("updated version", "member", m.Name, "version", clean)
	}

	e := r.Manifest.Edit()
	if err := e.Set(clean, "version"); err != nil {
		return err
	}
	return e.Write()
}
