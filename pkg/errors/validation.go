package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// ValidatePackageName validates a member name read from a manifest.
// Member names end up as paths under node_modules, so they are rejected
// when they could escape that directory.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - Maximum length of 214 characters (the npm limit)
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidManifest, "package name cannot be empty")
	}

	if len(name) > 214 {
		return New(ErrCodeInvalidManifest, "package name too long (max 214 characters): %q", name)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidManifest, "package name contains invalid control characters: %q", name)
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidManifest, "package name %q contains invalid characters: %q", name, pattern)
		}
	}

	return nil
}

// ValidateRelativePath validates a path that must stay inside the directory
// it is resolved against, such as the build output directory of a member.
//
// Validation rules:
//   - Path cannot be empty
//   - No null bytes or control characters
//   - No absolute paths
//   - No path traversal after cleaning
func ValidateRelativePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if filepath.IsAbs(path) || strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative: %q", path)
	}

	clean := filepath.ToSlash(filepath.Clean(path))
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return New(ErrCodeInvalidPath, "path cannot leave its base directory: %q", path)
	}

	return nil
}

// ValidateScriptName validates the key of a package.json script entry.
func ValidateScriptName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "script name cannot be empty")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "script name contains invalid control characters")
		}
	}
	return nil
}
