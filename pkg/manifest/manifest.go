// Package manifest reads and writes package.json documents.
//
// A [Manifest] is an immutable snapshot of one package.json file taken at
// load time. Accessors never allocate shared state, so a Manifest can be read
// from many goroutines. Changes go through an [Editor], which works on its own
// copy of the document and preserves the original key order when the result
// is written back.
//
// Writing a file never updates Manifests that were already loaded from it:
// callers that need to observe a write must read the file again.
package manifest

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/matzehuels/monist/pkg/errors"
)

// FileName is the manifest file expected at the top of every package.
const FileName = "package.json"

// Kind names one of the dependency fields of a manifest.
type Kind string

const (
	KindDependencies Kind = "dependencies"
	KindOptional     Kind = "optionalDependencies"
	KindPeer         Kind = "peerDependencies"
	KindBundled      Kind = "bundledDependencies"
	KindDev          Kind = "devDependencies"
)

// NonDevKinds lists the fields that describe what a package needs at run time.
var NonDevKinds = []Kind{KindDependencies, KindOptional, KindPeer, KindBundled}

// AllKinds lists every dependency field, in the order they are scanned.
var AllKinds = []Kind{KindDependencies, KindOptional, KindPeer, KindBundled, KindDev}

// StrictKinds lists the fields whose external versions must match the
// repository root exactly.
var StrictKinds = []Kind{KindDependencies, KindOptional, KindBundled}

// Dependency is one entry of a dependency field.
type Dependency struct {
	Name  string
	Range string // Empty for the array form of bundledDependencies
	Kind  Kind
}

// Manifest is a read-only snapshot of a package.json file.
type Manifest struct {
	path string
	raw  string
	root gjson.Result
}

// Read loads the manifest stored at path.
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "cannot read %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "cannot read %s", path)
	}
	return Parse(path, data)
}

// ReadDir loads the package.json at the top of dir.
func ReadDir(dir string) (*Manifest, error) {
	return Read(filepath.Join(dir, FileName))
}

// Parse builds a manifest from raw bytes. The path is only used for error
// messages and by [Manifest.Path].
func Parse(path string, data []byte) (*Manifest, error) {
	raw := string(data)
	if !gjson.Valid(raw) {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "%s is not valid JSON", path)
	}
	root := gjson.Parse(raw)
	if !root.IsObject() {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "%s must contain a JSON object", path)
	}
	return &Manifest{path: path, raw: raw, root: root}, nil
}

// Path returns the file the manifest was read from.
func (m *Manifest) Path() string { return m.path }

// Raw returns the document exactly as it was read.
func (m *Manifest) Raw() string { return m.raw }

// Name returns the "name" field, or an empty string.
func (m *Manifest) Name() string { return m.Get("name").String() }

// Version returns the "version" field, or an empty string.
func (m *Manifest) Version() string { return m.Get("version").String() }

// Get returns the top-level field key. Keys are matched literally; no path
// syntax is interpreted. When a key is repeated the last one wins, as it does
// for JavaScript consumers of the file.
func (m *Manifest) Get(key string) gjson.Result {
	return field(m.root, key)
}

// Has reports whether the top-level field key is present and not null.
func (m *Manifest) Has(key string) bool {
	v := m.Get(key)
	return v.Exists() && v.Type != gjson.Null
}

// Dependencies returns the entries of one dependency field in document order.
func (m *Manifest) Dependencies(kind Kind) []Dependency {
	v := m.Get(string(kind))
	var out []Dependency
	switch {
	case v.IsObject():
		v.ForEach(func(k, val gjson.Result) bool {
			out = append(out, Dependency{Name: k.String(), Range: val.String(), Kind: kind})
			return true
		})
	case v.IsArray():
		for _, item := range v.Array() {
			if item.Type == gjson.String {
				out = append(out, Dependency{Name: item.String(), Kind: kind})
			}
		}
	}
	return out
}

// Range returns the version range declared for name in the given field.
func (m *Manifest) Range(kind Kind, name string) (string, bool) {
	v := m.Get(string(kind))
	if !v.IsObject() {
		return "", false
	}
	r := field(v, name)
	if !r.Exists() {
		return "", false
	}
	return r.String(), true
}

// DependencyNames returns every dependency name declared in any field,
// de-duplicated and in scan order.
func (m *Manifest) DependencyNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, kind := range AllKinds {
		for _, dep := range m.Dependencies(kind) {
			if !seen[dep.Name] {
				seen[dep.Name] = true
				names = append(names, dep.Name)
			}
		}
	}
	return names
}

// Workspaces returns the member location patterns. Both the array form and
// the object form ({"packages": [...]}) are accepted. The boolean is false
// when the field is absent or null.
func (m *Manifest) Workspaces() ([]string, bool) {
	v := m.Get("workspaces")
	if v.IsObject() {
		v = field(v, "packages")
	}
	if !v.IsArray() {
		return nil, false
	}
	var patterns []string
	for _, item := range v.Array() {
		if s := strings.TrimSpace(item.String()); s != "" {
			patterns = append(patterns, s)
		}
	}
	return patterns, true
}

// Script returns the command stored under name in the "scripts" table.
func (m *Manifest) Script(name string) (string, bool) {
	scripts := m.Get("scripts")
	if !scripts.IsObject() {
		return "", false
	}
	v := field(scripts, name)
	if !v.Exists() {
		return "", false
	}
	return v.String(), true
}

// Edit returns an editor working on a private copy of the document.
func (m *Manifest) Edit() *Editor {
	return newEditor(m.path, m.raw)
}

// field looks up a literal key in a JSON object.
func field(obj gjson.Result, key string) gjson.Result {
	var found gjson.Result
	obj.ForEach(func(k, v gjson.Result) bool {
		if k.String() == key {
			found = v
		}
		return true
	})
	return found
}
