package buildinfo

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	oldV, oldC, oldD := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = oldV, oldC, oldD })

	Version, Commit, Date = "v1.2.3", "abc123", "2024-01-01"
	want := "version: v1.2.3\ncommit: abc123\nbuilt: 2024-01-01"
	if got := String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got := Template(); !strings.HasPrefix(got, "{{.Name}} version v1.2.3\n") {
		t.Errorf("Template() = %q", got)
	}
}

func TestResolvedDev(t *testing.T) {
	if got := Resolved(); got == "" {
		t.Error("Resolved() returned empty version")
	}
}
