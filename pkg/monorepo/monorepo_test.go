package monorepo

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/monist/pkg/errors"
)

// writeManifest stores doc as dir/package.json.
func writeManifest(t *testing.T, dir string, doc map[string]any) {
	t.Helper()
	data, err := json.MarshalIndent(doc, "", "  ")
	require.NoError(t, err)
	writeFile(t, filepath.Join(dir, "package.json"), string(data)+"\n")
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// goodRepo creates a consistent repository:
//
//	@abc/package-a  (no local deps)
//	@abc/package-b  -> package-a
//	@abc/package-c  -> package-a, package-b
func goodRepo(t *testing.T) string {
	t.Helper()
	top := t.TempDir()
	writeManifest(t, top, map[string]any{
		"name":       "@abc/monorepo",
		"version":    "0.0.1",
		"private":    true,
		"workspaces": []string{"packages/*"},
		"devDependencies": map[string]string{
			"external": "1.0.0",
			"peer":     "^2.1.0",
		},
	})
	writeManifest(t, filepath.Join(top, "packages", "package-a"), map[string]any{
		"name":         "@abc/package-a",
		"version":      "0.0.1",
		"dependencies": map[string]string{"external": "1.0.0"},
	})
	writeManifest(t, filepath.Join(top, "packages", "package-b"), map[string]any{
		"name":             "@abc/package-b",
		"version":          "0.0.1",
		"dependencies":     map[string]string{"@abc/package-a": "0.0.1"},
		"peerDependencies": map[string]string{"peer": "^2.0.0"},
	})
	writeManifest(t, filepath.Join(top, "packages", "package-c"), map[string]any{
		"name":            "@abc/package-c",
		"version":         "0.0.1",
		"dependencies":    map[string]string{"@abc/package-b": "0.0.1"},
		"devDependencies": map[string]string{"@abc/package-a": "0.0.1"},
	})
	return top
}

func load(t *testing.T, top string) *Monorepo {
	t.Helper()
	repo, err := Load(top, Options{})
	require.NoError(t, err)
	return repo
}

func memberNames(members []*Member) []string {
	out := make([]string, 0, len(members))
	for _, m := range members {
		out = append(out, m.Name)
	}
	return out
}

func planNames(plan [][]*Member) [][]string {
	out := make([][]string, 0, len(plan))
	for _, batch := range plan {
		out = append(out, memberNames(batch))
	}
	return out
}

func TestLoad(t *testing.T) {
	top := goodRepo(t)
	repo := load(t, top)

	assert.Equal(t, "@abc/monorepo", repo.Name())
	assert.Equal(t, []string{"@abc/package-a", "@abc/package-b", "@abc/package-c"}, memberNames(repo.Members()))

	c, ok := repo.Member("@abc/package-c")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(top, "packages", "package-c"), c.Top)
	assert.Equal(t, []string{"@abc/package-b", "@abc/package-a"}, c.Deps)
	assert.Equal(t, []string{"@abc/package-b", "@abc/package-a"}, memberNames(c.LocalDeps))

	a, _ := repo.Member("@abc/package-a")
	assert.Equal(t, []string{"external"}, a.Deps)
	assert.Empty(t, a.LocalDeps)

	assert.True(t, repo.IsMember("@abc/package-a"))
	assert.False(t, repo.IsMember("external"))
	_, ok = repo.Member("nope")
	assert.False(t, ok)
}

func TestLoadDuplicateName(t *testing.T) {
	top := t.TempDir()
	writeManifest(t, top, map[string]any{"name": "root", "workspaces": []string{"packages/*", "other/*"}})
	writeManifest(t, filepath.Join(top, "packages", "x"), map[string]any{"name": "dup"})
	writeManifest(t, filepath.Join(top, "other", "y"), map[string]any{"name": "dup"})

	_, err := Load(top, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeDuplicateMember))
	assert.Equal(t, "duplicate package name dup at "+
		filepath.Join(top, "other", "y")+" and "+filepath.Join(top, "packages", "x"),
		errors.UserMessage(err))
}

func TestLoadMissingWorkspaces(t *testing.T) {
	for name, doc := range map[string]map[string]any{
		"absent": {"name": "root"},
		"empty":  {"name": "root", "workspaces": []string{}},
		"null":   {"name": "root", "workspaces": nil},
	} {
		t.Run(name, func(t *testing.T) {
			top := t.TempDir()
			writeManifest(t, top, doc)
			_, err := Load(top, Options{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeMissingWorkspaces))
		})
	}
}

func TestLoadMissingRootManifest(t *testing.T) {
	_, err := Load(t.TempDir(), Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
}

func TestLoadPatterns(t *testing.T) {
	top := t.TempDir()
	writeManifest(t, top, map[string]any{
		"name": "root",
		"workspaces": map[string]any{
			"packages": []string{"./libs/**/pkg-*", "apps/*", "!apps/legacy"},
		},
	})
	writeManifest(t, filepath.Join(top, "libs", "core", "pkg-one"), map[string]any{"name": "one"})
	writeManifest(t, filepath.Join(top, "libs", "pkg-two"), map[string]any{"name": "two"})
	writeManifest(t, filepath.Join(top, "apps", "web"), map[string]any{"name": "web"})
	writeManifest(t, filepath.Join(top, "apps", "legacy"), map[string]any{"name": "legacy"})
	// Neither a plain file nor a directory without a manifest is a member.
	writeFile(t, filepath.Join(top, "apps", "README.md"), "apps\n")
	require.NoError(t, os.MkdirAll(filepath.Join(top, "apps", "empty"), 0o755))

	repo := load(t, top)
	assert.Equal(t, []string{"one", "two", "web"}, memberNames(repo.Members()))
}

func TestLoadInvalidName(t *testing.T) {
	top := t.TempDir()
	writeManifest(t, top, map[string]any{"name": "root", "workspaces": []string{"packages/*"}})
	writeManifest(t, filepath.Join(top, "packages", "a"), map[string]any{"version": "1.0.0"})

	_, err := Load(top, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidManifest))
}

func TestPlanConcreteScenario(t *testing.T) {
	top := t.TempDir()
	writeManifest(t, top, map[string]any{"name": "root", "workspaces": []string{"*"}})
	writeManifest(t, filepath.Join(top, "a"), map[string]any{"name": "a"})
	writeManifest(t, filepath.Join(top, "d"), map[string]any{"name": "d"})
	writeManifest(t, filepath.Join(top, "b"), map[string]any{
		"name":         "b",
		"dependencies": map[string]string{"a": "*"},
	})
	writeManifest(t, filepath.Join(top, "c"), map[string]any{
		"name":            "c",
		"dependencies":    map[string]string{"a": "*"},
		"devDependencies": map[string]string{"b": "*"},
	})

	plan, err := load(t, top).Plan()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "d"}, {"b"}, {"c"}}, planNames(plan))
}

func TestPlanSharedDependency(t *testing.T) {
	plan, err := load(t, goodRepo(t)).Plan()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"@abc/package-a"}, {"@abc/package-b"}, {"@abc/package-c"}}, planNames(plan))
}

func TestPlanCycle(t *testing.T) {
	top := t.TempDir()
	writeManifest(t, top, map[string]any{"name": "root", "workspaces": []string{"*"}})
	writeManifest(t, filepath.Join(top, "a"), map[string]any{
		"name":         "a",
		"dependencies": map[string]string{"b": "*"},
	})
	writeManifest(t, filepath.Join(top, "b"), map[string]any{
		"name":             "b",
		"peerDependencies": map[string]string{"a": "*"},
	})

	repo := load(t, top)
	_, err := repo.Plan()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeCyclicDependency))
	assert.Contains(t, err.Error(), "cyclic local dependency: a -> b -> a")
	assert.NotContains(t, err.Error(), top)
}

func TestLoadExampleWorkspace(t *testing.T) {
	repo := load(t, filepath.Join("..", "..", "examples", "workspace"))
	assert.Equal(t, "@acme/workspace", repo.Name())

	plan, err := repo.Plan()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"@acme/utils"}, {"@acme/core"}, {"@acme/app"}}, planNames(plan))
	assert.Empty(t, repo.Verify())
}
