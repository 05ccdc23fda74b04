// Package monorepo models an npm workspaces repository: a root package.json
// that declares member location patterns, and the member packages those
// patterns match.
//
// [Load] scans the repository once. The resulting [Monorepo] and its
// [Member] values are snapshots: operations that write manifests
// ([Monorepo.UpdateVersions], [Monorepo.SetScript], ...) only touch the
// files on disk. Load the repository again to observe their effect.
//
// # Usage
//
//	repo, err := monorepo.Load(".", monorepo.Options{Logger: logger})
//	if err != nil {
//	    return err
//	}
//	plan, err := repo.Plan()
//	for _, batch := range plan {
//	    // members in one batch can be processed concurrently
//	}
package monorepo

import (
	"cmp"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/monist/pkg/deptree"
	"github.com/matzehuels/monist/pkg/errors"
	"github.com/matzehuels/monist/pkg/manifest"
)

// Options configures [Load].
type Options struct {
	// Logger receives debug output about the scan and about manifest writes.
	// Nil discards everything.
	Logger *log.Logger
}

// Member is one package of the repository.
type Member struct {
	Top       string             // Directory of the package, unique per member
	Name      string             // "name" field of the manifest
	Manifest  *manifest.Manifest // Snapshot taken by Load
	Deps      []string           // Every declared dependency name, in scan order
	LocalDeps []*Member          // The Deps that name another member
}

// Key identifies the member inside a dependency forest.
func (m *Member) Key() string { return m.Top }

// String returns the package name, which is how members appear in errors.
func (m *Member) String() string { return m.Name }

// Monorepo is a loaded repository.
type Monorepo struct {
	Top      string
	Manifest *manifest.Manifest

	members []*Member // Sorted by name
	byName  map[string]*Member
	logger  *log.Logger
}

// Load reads the repository rooted at top.
func Load(top string, opts Options) (*Monorepo, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	root, err := manifest.ReadDir(top)
	if err != nil {
		return nil, err
	}
	patterns, ok := root.Workspaces()
	if !ok || len(patterns) == 0 {
		return nil, errors.New(errors.ErrCodeMissingWorkspaces, "%s: workspaces must be defined", root.Path())
	}

	dirs, err := expand(top, patterns)
	if err != nil {
		return nil, err
	}

	repo := &Monorepo{
		Top:      top,
		Manifest: root,
		byName:   make(map[string]*Member, len(dirs)),
		logger:   logger,
	}
	for _, dir := range dirs {
		memberTop := filepath.Join(top, filepath.FromSlash(dir))
		m, err := manifest.ReadDir(memberTop)
		if errors.Is(err, errors.ErrCodeFileNotFound) {
			logger.Debug("skipping directory without manifest", "dir", memberTop)
			continue
		}
		if err != nil {
			return nil, err
		}

		name := m.Name()
		if err := errors.ValidatePackageName(name); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "%s", m.Path())
		}
		if existing, dup := repo.byName[name]; dup {
			paths := []string{existing.Top, memberTop}
			slices.Sort(paths)
			return nil, errors.New(errors.ErrCodeDuplicateMember,
				"duplicate package name %s at %s and %s", name, paths[0], paths[1])
		}

		member := &Member{Top: memberTop, Name: name, Manifest: m, Deps: m.DependencyNames()}
		repo.byName[name] = member
		repo.members = append(repo.members, member)
	}

	slices.SortFunc(repo.members, byName)

	// Second phase: every member is known, resolve local dependencies.
	for _, member := range repo.members {
		for _, dep := range member.Deps {
			if local, ok := repo.byName[dep]; ok {
				member.LocalDeps = append(member.LocalDeps, local)
			}
		}
	}

	logger.Debug("loaded monorepo", "top", top, "members", len(repo.members))
	return repo, nil
}

// expand resolves workspace patterns to member directories relative to top.
// Patterns starting with "!" remove directories matched by earlier patterns.
func expand(top string, patterns []string) ([]string, error) {
	fsys := os.DirFS(top)
	seen := make(map[string]bool)
	for _, p := range patterns {
		exclude := strings.HasPrefix(p, "!")
		p = path.Clean(filepath.ToSlash(strings.TrimPrefix(p, "!")))
		if !doublestar.ValidatePattern(p) || strings.HasPrefix(p, "../") || p == ".." {
			return nil, errors.New(errors.ErrCodeInvalidManifest, "invalid workspace pattern %q", p)
		}
		matches, err := doublestar.Glob(fsys, p)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "cannot expand workspace pattern %q", p)
		}
		for _, match := range matches {
			info, err := fs.Stat(fsys, match)
			if err != nil || !info.IsDir() {
				continue
			}
			if exclude {
				delete(seen, match)
			} else {
				seen[match] = true
			}
		}
	}

	dirs := make([]string, 0, len(seen))
	for dir := range seen {
		dirs = append(dirs, dir)
	}
	slices.Sort(dirs)
	return dirs, nil
}

func byName(a, b *Member) int { return cmp.Compare(a.Name, b.Name) }

// Name returns the name of the root package.
func (r *Monorepo) Name() string { return r.Manifest.Name() }

// Members returns the members sorted by name.
func (r *Monorepo) Members() []*Member { return slices.Clone(r.members) }

// Member returns the member called name.
func (r *Monorepo) Member(name string) (*Member, bool) {
	m, ok := r.byName[name]
	return m, ok
}

// IsMember reports whether name is the name of a member.
func (r *Monorepo) IsMember(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// Forest builds the local dependency forest of the repository. It fails with
// a CYCLIC_DEPENDENCY error when members depend on each other in a loop.
func (r *Monorepo) Forest() (*deptree.Forest[*Member], error) {
	return deptree.Build(r.members, func(m *Member) []*Member { return m.LocalDeps })
}

// Plan returns the execution plan: batches of members where every member
// comes after all of its local dependencies. Batches are sorted by name.
func (r *Monorepo) Plan() ([][]*Member, error) {
	forest, err := r.Forest()
	if err != nil {
		return nil, err
	}
	return deptree.Plan(forest, byName), nil
}
