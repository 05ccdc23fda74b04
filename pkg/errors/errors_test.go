package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidVersion, "%s is not a valid semver version", "x.y")

	assert.Equal(t, ErrCodeInvalidVersion, err.Code)
	assert.Equal(t, "x.y is not a valid semver version", err.Message)
	assert.Equal(t, "INVALID_VERSION: x.y is not a valid semver version", err.Error())
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeInvalidManifest, cause, "cannot read %s", "package.json")

	assert.Equal(t, ErrCodeInvalidManifest, err.Code)
	assert.Same(t, cause, errors.Unwrap(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "cannot read package.json: underlying error", UserMessage(err))
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{"matching code", New(ErrCodeCyclicDependency, "test"), ErrCodeCyclicDependency, true},
		{"non-matching code", New(ErrCodeCyclicDependency, "test"), ErrCodeDuplicateMember, false},
		{"wrapped error", Wrap(ErrCodeInvalidConfig, New(ErrCodeInvalidInput, "inner"), "outer"), ErrCodeInvalidConfig, true},
		{"fmt wrapped", fmt.Errorf("ctx: %w", New(ErrCodeScriptConflict, "x")), ErrCodeScriptConflict, true},
		{"command error", &CommandError{Dir: "a", Command: "npm test", ExitCode: 1}, ErrCodeCommandFailed, true},
		{"non-Error type", errors.New("plain error"), ErrCodeInvalidInput, false},
		{"nil error", nil, ErrCodeInvalidInput, false},
		{"empty code", errors.New("plain error"), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Is(tt.err, tt.code))
		})
	}
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, ErrCodeMissingWorkspaces, GetCode(New(ErrCodeMissingWorkspaces, "test")))
	assert.Equal(t, Code(""), GetCode(errors.New("plain")))
	assert.Equal(t, Code(""), GetCode(nil))
}

func TestCommandError(t *testing.T) {
	t.Run("exit code", func(t *testing.T) {
		err := &CommandError{Dir: "packages/a", Command: "npm test", ExitCode: 2}
		assert.Equal(t, "packages/a: npm test exited with code 2", err.Error())
	})

	t.Run("signal", func(t *testing.T) {
		err := &CommandError{Dir: "packages/a", Command: "npm test", ExitCode: -1, Signal: "killed"}
		assert.Equal(t, "packages/a: npm test terminated by signal killed", err.Error())
	})

	t.Run("unwrap", func(t *testing.T) {
		cause := errors.New("exit status 2")
		err := &CommandError{Cause: cause}
		require.ErrorIs(t, err, cause)
		assert.Equal(t, ErrCodeCommandFailed, err.Code())
	})
}

func TestValidatePackageName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"plain", "lodash", false},
		{"scoped", "@abc/package-a", false},
		{"empty", "", true},
		{"traversal", "../evil", true},
		{"control", "a\nb", true},
		{"backslash", `a\b`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePackageName(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, Is(err, ErrCodeInvalidManifest))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidateRelativePath(t *testing.T) {
	require.NoError(t, ValidateRelativePath("build/dist"))
	require.NoError(t, ValidateRelativePath("dist/../lib"))
	require.Error(t, ValidateRelativePath(""))
	require.Error(t, ValidateRelativePath("/abs"))
	require.Error(t, ValidateRelativePath("../outside"))
	require.Error(t, ValidateRelativePath("a/../../b"))
}

func TestValidateScriptName(t *testing.T) {
	require.NoError(t, ValidateScriptName("test"))
	require.Error(t, ValidateScriptName(" "))
	require.Error(t, ValidateScriptName("a\tb"))
}
