package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/monist/pkg/errors"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func ptr[T any](v T) *T { return &v }

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir(), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultBuildDir, cfg.BuildDir)
	assert.Empty(t, cfg.CLIOptions)
	assert.Empty(t, cfg.Path)
}

func TestLoadFormats(t *testing.T) {
	want := map[string]map[string]CommonOptions{
		"run": {
			"*":    {LocalDeps: ptr("link")},
			"test": {Serial: ptr(true), InhibitSubprocessOutput: ptr(false)},
		},
	}

	tests := []struct {
		file    string
		content string
	}{
		{"monistrc.json", `{
  "buildDir": "out",
  "cliOptions": {
    "run": {
      "*": {"localDeps": "link"},
      "test": {"serial": true, "inhibitSubprocessOutput": false}
    }
  }
}`},
		{"monist.toml", `buildDir = "out"

[cliOptions.run."*"]
localDeps = "link"

[cliOptions.run.test]
serial = true
inhibitSubprocessOutput = false
`},
		{"monist.yaml", `buildDir: out
cliOptions:
  run:
    "*":
      localDeps: link
    test:
      serial: true
      inhibitSubprocessOutput: false
`},
		{"monist.yml", `buildDir: out
cliOptions:
  run:
    "*": {localDeps: link}
    test: {serial: true, inhibitSubprocessOutput: false}
`},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			dir := t.TempDir()
			path := writeConfig(t, dir, tt.file, tt.content)

			cfg, err := Load(dir, "")
			require.NoError(t, err)
			assert.Equal(t, "out", cfg.BuildDir)
			assert.Equal(t, want, cfg.CLIOptions)
			assert.Equal(t, path, cfg.Path)
		})
	}
}

func TestLoadPrefersJSON(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "monist.yaml", "buildDir: from-yaml\n")
	writeConfig(t, dir, "monistrc.json", `{"buildDir": "from-json"}`)

	cfg, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "from-json", cfg.BuildDir)
}

func TestLoadExplicit(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "custom.toml", `buildDir = "dist"`)

	cfg, err := Load(t.TempDir(), path)
	require.NoError(t, err)
	assert.Equal(t, "dist", cfg.BuildDir)

	_, err = Load(dir, filepath.Join(dir, "missing.json"))
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name, file, content string
	}{
		{"unknown json key", "monistrc.json", `{"buildDirectory": "x"}`},
		{"unknown toml key", "monist.toml", "colour = \"red\"\n"},
		{"unknown yaml key", "monist.yaml", "extra: 1\n"},
		{"bad json", "monistrc.json", `{`},
		{"bad localDeps", "monistrc.json", `{"cliOptions": {"run": {"*": {"localDeps": "copy"}}}}`},
		{"absolute buildDir", "monistrc.json", `{"buildDir": "/tmp/out"}`},
		{"escaping buildDir", "monist.yaml", "buildDir: ../elsewhere\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, tt.file, tt.content)
			_, err := Load(dir, "")
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig), err.Error())
		})
	}
}

func TestLoadEmptyYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "monist.yaml", "")
	cfg, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultBuildDir, cfg.BuildDir)
}

func TestLoadExampleWorkspace(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "examples", "workspace"), "")
	require.NoError(t, err)
	assert.Equal(t, "monist.yaml", filepath.Base(cfg.Path))

	opts, err := Resolve(cfg, "run", []string{"test"}, CommonOptions{})
	require.NoError(t, err)
	assert.Equal(t, Resolved{Serial: true, LocalDeps: LocalDepsSymlink, InhibitSubprocessOutput: true}, opts)
}
