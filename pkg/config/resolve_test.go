package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/monist/pkg/errors"
)

func TestResolveRequiresArgs(t *testing.T) {
	for _, args := range [][]string{nil, {}} {
		_, err := Resolve(Default(), "run", args, CommonOptions{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
		assert.Equal(t, "args must have a cmd property set which must contain at least one element", errors.UserMessage(err))
	}
}

func TestResolve(t *testing.T) {
	all := CommonOptions{Serial: ptr(true), LocalDeps: ptr("link"), InhibitSubprocessOutput: ptr(true)}
	none := Resolved{}

	tests := []struct {
		name    string
		options map[string]map[string]CommonOptions
		flags   CommonOptions
		want    Resolved
	}{
		{
			name:    "script entry",
			options: map[string]map[string]CommonOptions{"run": {"a": all}},
			want:    Resolved{Serial: true, LocalDeps: "link", InhibitSubprocessOutput: true},
		},
		{
			name:    "wildcard entry",
			options: map[string]map[string]CommonOptions{"run": {"*": all}},
			want:    Resolved{Serial: true, LocalDeps: "link", InhibitSubprocessOutput: true},
		},
		{
			name: "script entry beats wildcard",
			options: map[string]map[string]CommonOptions{"run": {
				"*": all,
				"a": {Serial: ptr(false), LocalDeps: ptr("install"), InhibitSubprocessOutput: ptr(false)},
			}},
			want: Resolved{LocalDeps: "install"},
		},
		{
			name: "partial script entry keeps wildcard values",
			options: map[string]map[string]CommonOptions{"run": {
				"*": all,
				"a": {Serial: ptr(false)},
			}},
			want: Resolved{LocalDeps: "link", InhibitSubprocessOutput: true},
		},
		{
			name:    "empty entry",
			options: map[string]map[string]CommonOptions{"run": {"a": {}}},
			want:    none,
		},
		{
			name:    "other script",
			options: map[string]map[string]CommonOptions{"run": {"b": all}},
			want:    none,
		},
		{
			name:    "other command",
			options: map[string]map[string]CommonOptions{"npm": {"a": all}},
			want:    none,
		},
		{
			name:  "flags only",
			flags: all,
			want:  Resolved{Serial: true, LocalDeps: "link", InhibitSubprocessOutput: true},
		},
		{
			name:    "flags beat configuration",
			options: map[string]map[string]CommonOptions{"run": {"a": all}},
			flags:   CommonOptions{Serial: ptr(false), LocalDeps: ptr("symlink")},
			want:    Resolved{LocalDeps: "symlink", InhibitSubprocessOutput: true},
		},
		{
			name:    "none flag turns off configured strategy",
			options: map[string]map[string]CommonOptions{"run": {"*": all}},
			flags:   CommonOptions{LocalDeps: ptr("none")},
			want:    Resolved{Serial: true, LocalDeps: "none", InhibitSubprocessOutput: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.CLIOptions = tt.options
			got, err := Resolve(cfg, "run", []string{"a", "--", "x"}, tt.flags)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveRejectsUnknownStrategy(t *testing.T) {
	_, err := Resolve(nil, "npm", []string{"test"}, CommonOptions{LocalDeps: ptr("copy")})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}
