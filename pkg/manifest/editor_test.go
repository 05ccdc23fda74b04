package manifest

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditorSetPreservesOrder(t *testing.T) {
	m, err := Parse("package.json", []byte(`{"name":"a","version":"1.0.0","scripts":{"test":"x"}}`))
	require.NoError(t, err)

	ed := m.Edit()
	require.NoError(t, ed.Set("2.0.0", "version"))
	require.NoError(t, ed.Set("tsc", "scripts", "build"))

	want := `{
  "name": "a",
  "version": "2.0.0",
  "scripts": {
    "test": "x",
    "build": "tsc"
  }
}`
	assert.Equal(t, want, string(ed.Bytes()))
	assert.True(t, ed.Changed())

	// The snapshot is untouched.
	assert.Equal(t, "1.0.0", m.Version())
}

func TestEditorCreatesMissingObjects(t *testing.T) {
	m, err := Parse("package.json", []byte("{\"name\": \"a\"}\n"))
	require.NoError(t, err)

	ed := m.Edit()
	require.NoError(t, ed.Set("mocha", "scripts", "test"))

	want := "{\n  \"name\": \"a\",\n  \"scripts\": {\n    \"test\": \"mocha\"\n  }\n}\n"
	assert.Equal(t, want, string(ed.Bytes()))
}

func TestEditorDelete(t *testing.T) {
	m, err := Parse("package.json", []byte(sample))
	require.NoError(t, err)

	ed := m.Edit()
	assert.False(t, ed.Delete("scripts", "lint"))
	assert.False(t, ed.Delete("nothing", "here"))
	assert.False(t, ed.Changed())

	assert.True(t, ed.Delete("scripts", "test"))
	assert.Equal(t, []string{"build"}, ed.Keys("scripts"))
	assert.True(t, ed.Changed())

	out, err := Parse("package.json", ed.Bytes())
	require.NoError(t, err)
	_, ok := out.Script("test")
	assert.False(t, ok)
	assert.Equal(t, m.DependencyNames(), out.DependencyNames())
}

func TestEditorKeysWithSpecialCharacters(t *testing.T) {
	m, err := Parse("package.json", []byte(`{"dependencies":{"lodash.merge":"1.0.0","@abc/x":"^1.0.0"}}`))
	require.NoError(t, err)

	ed := m.Edit()
	require.NoError(t, ed.Set("2.0.0", "dependencies", "@abc/x"))
	assert.Equal(t, []string{"lodash.merge", "@abc/x"}, ed.Keys("dependencies"))

	out, err := Parse("package.json", ed.Bytes())
	require.NoError(t, err)
	r, _ := out.Range(KindDependencies, "@abc/x")
	assert.Equal(t, "2.0.0", r)
	r, _ = out.Range(KindDependencies, "lodash.merge")
	assert.Equal(t, "1.0.0", r)
}

func TestEditorEscapesValues(t *testing.T) {
	m, err := Parse("package.json", []byte(`{}`))
	require.NoError(t, err)

	ed := m.Edit()
	require.NoError(t, ed.Set(`echo "a && b" > <out>`, "scripts", "x"))

	out, err := Parse("package.json", ed.Bytes())
	require.NoError(t, err)
	s, _ := out.Script("x")
	assert.Equal(t, `echo "a && b" > <out>`, s)
}

func TestEditorWrite(t *testing.T) {
	path := writeFile(t, sample)
	m, err := Read(path)
	require.NoError(t, err)

	ed := m.Edit()
	require.NoError(t, ed.Set("3.0.0", "version"))
	require.NoError(t, ed.Write())

	again, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "3.0.0", again.Version())
	assert.Equal(t, "1.0.0", m.Version())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}
