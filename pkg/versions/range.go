package versions

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Range is a union of version intervals.
type Range struct {
	raw       string
	intervals []interval
}

// String returns the range as it was written.
func (r Range) String() string { return r.raw }

// Intersects reports whether some version lies in both ranges.
func (r Range) Intersects(other Range) bool {
	for _, a := range r.intervals {
		for _, b := range other.intervals {
			if !a.intersect(b).empty() {
				return true
			}
		}
	}
	return false
}

// Contains reports whether the version v lies in the range.
func (r Range) Contains(v string) bool {
	clean, ok := Clean(v)
	if !ok {
		return false
	}
	p := semver.MustParse(clean)
	point := interval{lo: bound{v: p, inclusive: true}, hi: bound{v: p, inclusive: true}}
	for _, iv := range r.intervals {
		if !iv.intersect(point).empty() {
			return true
		}
	}
	return false
}

// bound is one end of an interval; a nil version means unbounded.
type bound struct {
	v         *semver.Version
	inclusive bool
}

type interval struct {
	lo, hi bound
	none   bool
}

var anyInterval = interval{}

var noInterval = interval{none: true}

func (i interval) empty() bool {
	if i.none {
		return true
	}
	if i.lo.v == nil || i.hi.v == nil {
		return false
	}
	c := i.lo.v.Compare(i.hi.v)
	return c > 0 || (c == 0 && !(i.lo.inclusive && i.hi.inclusive))
}

func (i interval) intersect(o interval) interval {
	if i.none || o.none {
		return noInterval
	}
	out := interval{lo: i.lo, hi: i.hi}
	if o.lo.v != nil {
		if out.lo.v == nil {
			out.lo = o.lo
		} else if c := o.lo.v.Compare(out.lo.v); c > 0 || (c == 0 && !o.lo.inclusive) {
			out.lo = o.lo
		}
	}
	if o.hi.v != nil {
		if out.hi.v == nil {
			out.hi = o.hi
		} else if c := o.hi.v.Compare(out.hi.v); c < 0 || (c == 0 && !o.hi.inclusive) {
			out.hi = o.hi
		}
	}
	if out.empty() {
		return noInterval
	}
	return out
}

var (
	hyphenRe   = regexp.MustCompile(`^\s*(\S+)\s+-\s+(\S+)\s*$`)
	opSpaceRe  = regexp.MustCompile(`(<=|>=|~>|<|>|=|~|\^)\s+`)
	partialRe  = regexp.MustCompile(`^=?v?(\d+|[xX*])(?:\.(\d+|[xX*])(?:\.(\d+|[xX*])(?:-([0-9A-Za-z.-]+))?(?:\+[0-9A-Za-z.-]+)?)?)?$`)
	operatorRe = regexp.MustCompile(`^(<=|>=|~>|<|>|=|~|\^)?(.*)$`)
)

// wild marks a missing or wildcard version component.
const wild = -1

type partial struct {
	major, minor, patch int
	pre                 string
}

func parsePartial(s string) (partial, error) {
	m := partialRe.FindStringSubmatch(s)
	if m == nil {
		return partial{}, fmt.Errorf("invalid version %q", s)
	}
	var p partial
	for i, dst := range []*int{&p.major, &p.minor, &p.patch} {
		n, err := component(m[i+1])
		if err != nil {
			return partial{}, fmt.Errorf("invalid version %q: %w", s, err)
		}
		*dst = n
	}
	p.pre = m[4]
	if p.major == wild {
		p.minor, p.patch, p.pre = wild, wild, ""
	} else if p.minor == wild {
		p.patch, p.pre = wild, ""
	} else if p.patch == wild {
		p.pre = ""
	}
	return p, nil
}

func component(s string) (int, error) {
	if s == "" || s == "x" || s == "X" || s == "*" {
		return wild, nil
	}
	return strconv.Atoi(s)
}

func zero(n int) uint64 {
	if n == wild {
		return 0
	}
	return uint64(n)
}

func ver(major, minor, patch uint64, pre string) *semver.Version {
	return semver.New(major, minor, patch, pre, "")
}

// floor is the lowest version matched by p.
func (p partial) floor() *semver.Version {
	return ver(zero(p.major), zero(p.minor), zero(p.patch), p.pre)
}

// ceiling is the exclusive upper bound of the x-range p. It returns nil when
// p has no wildcard.
func (p partial) ceiling() *semver.Version {
	switch {
	case p.minor == wild:
		return ver(uint64(p.major)+1, 0, 0, "0")
	case p.patch == wild:
		return ver(uint64(p.major), uint64(p.minor)+1, 0, "0")
	}
	return nil
}

func incl(v *semver.Version) bound { return bound{v: v, inclusive: true} }
func excl(v *semver.Version) bound { return bound{v: v} }

// ParseRange parses an npm version range such as "^1.2.0 || >=3 <4".
func ParseRange(raw string) (Range, error) {
	r := Range{raw: raw}
	for _, part := range strings.Split(raw, "||") {
		iv, err := parseSet(part)
		if err != nil {
			return Range{}, fmt.Errorf("invalid range %q: %w", raw, err)
		}
		r.intervals = append(r.intervals, iv)
	}
	return r, nil
}

func parseSet(s string) (interval, error) {
	if m := hyphenRe.FindStringSubmatch(s); m != nil {
		return hyphen(m[1], m[2])
	}
	s = opSpaceRe.ReplaceAllString(strings.TrimSpace(s), "$1")
	out := anyInterval
	for _, tok := range strings.Fields(s) {
		iv, err := comparator(tok)
		if err != nil {
			return interval{}, err
		}
		out = out.intersect(iv)
	}
	return out, nil
}

func hyphen(from, to string) (interval, error) {
	lo, err := parsePartial(from)
	if err != nil {
		return interval{}, err
	}
	hi, err := parsePartial(to)
	if err != nil {
		return interval{}, err
	}
	out := anyInterval
	if lo.major != wild {
		out.lo = incl(lo.floor())
	}
	if hi.major != wild {
		if c := hi.ceiling(); c != nil {
			out.hi = excl(c)
		} else {
			out.hi = incl(hi.floor())
		}
	}
	if out.empty() {
		return noInterval, nil
	}
	return out, nil
}

func comparator(tok string) (interval, error) {
	m := operatorRe.FindStringSubmatch(tok)
	op := m[1]
	p, err := parsePartial(m[2])
	if err != nil {
		return interval{}, err
	}

	switch op {
	case "", "=":
		if p.major == wild {
			return anyInterval, nil
		}
		if c := p.ceiling(); c != nil {
			return interval{lo: incl(p.floor()), hi: excl(c)}, nil
		}
		return interval{lo: incl(p.floor()), hi: incl(p.floor())}, nil

	case "~", "~>":
		if p.major == wild {
			return anyInterval, nil
		}
		if p.minor == wild {
			return interval{lo: incl(p.floor()), hi: excl(ver(uint64(p.major)+1, 0, 0, "0"))}, nil
		}
		return interval{lo: incl(p.floor()), hi: excl(ver(uint64(p.major), uint64(p.minor)+1, 0, "0"))}, nil

	case "^":
		if p.major == wild {
			return anyInterval, nil
		}
		var hi *semver.Version
		switch {
		case p.major != 0:
			hi = ver(uint64(p.major)+1, 0, 0, "0")
		case p.minor == wild:
			hi = ver(1, 0, 0, "0")
		case p.minor != 0:
			hi = ver(0, uint64(p.minor)+1, 0, "0")
		case p.patch == wild:
			hi = ver(0, 1, 0, "0")
		default:
			hi = ver(0, 0, uint64(p.patch)+1, "0")
		}
		return interval{lo: incl(p.floor()), hi: excl(hi)}, nil

	case ">":
		switch {
		case p.major == wild:
			return noInterval, nil
		case p.minor == wild:
			return interval{lo: incl(ver(uint64(p.major)+1, 0, 0, ""))}, nil
		case p.patch == wild:
			return interval{lo: incl(ver(uint64(p.major), uint64(p.minor)+1, 0, ""))}, nil
		}
		return interval{lo: excl(p.floor())}, nil

	case ">=":
		if p.major == wild {
			return anyInterval, nil
		}
		return interval{lo: incl(p.floor())}, nil

	case "<":
		switch {
		case p.major == wild:
			return noInterval, nil
		case p.minor == wild:
			return interval{hi: excl(ver(uint64(p.major), 0, 0, "0"))}, nil
		case p.patch == wild:
			return interval{hi: excl(ver(uint64(p.major), uint64(p.minor), 0, "0"))}, nil
		}
		return interval{hi: excl(p.floor())}, nil

	case "<=":
		if p.major == wild {
			return anyInterval, nil
		}
		if c := p.ceiling(); c != nil {
			return interval{hi: excl(c)}, nil
		}
		return interval{hi: incl(p.floor())}, nil
	}

	return interval{}, fmt.Errorf("unsupported operator %q", op)
}
