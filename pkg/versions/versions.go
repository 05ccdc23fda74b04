// Package versions validates npm version strings and compares npm version
// ranges.
//
// Individual versions are parsed with Masterminds/semver. Ranges are
// desugared into sets of closed/open intervals over the semver order so two
// ranges can be tested for overlap, which is what peer dependency checks
// need. Prerelease exclusion rules are not modelled: a prerelease version is
// simply a point in the total order.
package versions

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Clean trims the decorations npm tolerates around a version ("v1.2.3",
// "=1.2.3", surrounding spaces) and reports whether what is left is a full
// semver version.
func Clean(v string) (string, bool) {
	s := strings.TrimSpace(v)
	s = strings.TrimPrefix(s, "=")
	s = strings.TrimPrefix(s, "v")
	s = strings.TrimSpace(s)
	parsed, err := semver.StrictNewVersion(s)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}

// Valid reports whether v is a full semver version such as "1.2.3" or
// "2.0.0-rc.1". Partial versions like "1.2" are rejected.
func Valid(v string) bool {
	_, ok := Clean(v)
	return ok
}

// Intersects reports whether some version satisfies both ranges. Ranges that
// cannot be parsed as npm ranges (tags, URLs, git specs) only intersect when
// they are the same string.
func Intersects(a, b string) bool {
	ra, errA := ParseRange(a)
	rb, errB := ParseRange(b)
	if errA != nil || errB != nil {
		return strings.TrimSpace(a) == strings.TrimSpace(b)
	}
	return ra.Intersects(rb)
}
