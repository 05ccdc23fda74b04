package monorepo

import (
	"fmt"

	"github.com/matzehuels/monist/pkg/manifest"
	"github.com/matzehuels/monist/pkg/versions"
)

// Verify checks the dependency declarations of the repository and returns
// every violation found. An empty result means the repository is
// consistent. Root violations come first, then members in name order.
//
// The rules:
//   - the root manifest declares no run time dependencies of its own
//   - devDependencies of a member only name other members
//   - external dependencies of a member are declared in the root
//     devDependencies, with the same version string (or, for
//     peerDependencies, an overlapping range)
func (r *Monorepo) Verify() []string {
	var violations []string
	for _, kind := range manifest.NonDevKinds {
		if r.Manifest.Has(string(kind)) {
			violations = append(violations, fmt.Sprintf("%s are not allowed in the monorepo package.json", kind))
		}
	}
	for _, m := range r.members {
		violations = append(violations, r.verifyMember(m)...)
	}
	return violations
}

func (r *Monorepo) verifyMember(m *Member) []string {
	var violations []string

	for _, dep := range m.Manifest.Dependencies(manifest.KindDev) {
		if !r.IsMember(dep.Name) {
			violations = append(violations, fmt.Sprintf(
				"%s has devDependencies referring to external packages; such dependencies should instead be in the top package.json", m.Name))
		}
	}

	missing := make(map[string]bool)
	inconsistent := make(map[string]bool)
	check := func(dep manifest.Dependency, consistent func(root, own string) bool) {
		if r.IsMember(dep.Name) {
			return
		}
		rootRange, ok := r.Manifest.Range(manifest.KindDev, dep.Name)
		switch {
		case !ok:
			if !missing[dep.Name] {
				missing[dep.Name] = true
				violations = append(violations, fmt.Sprintf("%s: %s is missing from monorepo package.json", m.Name, dep.Name))
			}
		case consistent != nil && !consistent(rootRange, dep.Range):
			if !inconsistent[dep.Name] {
				inconsistent[dep.Name] = true
				violations = append(violations, fmt.Sprintf("%s: %s version is inconsistent from the one in the monorepo package.json", m.Name, dep.Name))
			}
		}
	}

	exact := func(root, own string) bool { return root == own }
	for _, kind := range manifest.StrictKinds {
		consistent := exact
		// The array form of bundledDependencies carries names only.
		if m.Manifest.Get(string(kind)).IsArray() {
			consistent = nil
		}
		for _, dep := range m.Manifest.Dependencies(kind) {
			check(dep, consistent)
		}
	}
	for _, dep := range m.Manifest.Dependencies(manifest.KindPeer) {
		check(dep, versions.Intersects)
	}

	return violations
}
