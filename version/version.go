// Package version parses, compares and derives Semantic Versioning 2.0.0
// versions. Strings are validated by a table-driven automaton (see Accept)
// rather than a regular expression. Version values are immutable: every
// derivation returns a new Version.
//
// See https://semver.org/.
package version

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidArgument is wrapped by every error returned from this package.
var ErrInvalidArgument = errors.New("version: invalid argument")

// Segment indexes the normal version segments of a Version.
type Segment int

const (
	SegmentMajor Segment = iota
	SegmentMinor
	SegmentPatch
)

func (s Segment) String() string {
	switch s {
	case SegmentMajor:
		return "major"
	case SegmentMinor:
		return "minor"
	case SegmentPatch:
		return "patch"
	default:
		return "<UNKNOWN>"
	}
}

// Version is a parsed semantic version. The zero value is 0.0.0.
type Version struct {
	segments   [3]uint64
	prerelease string
	build      string
}

// Parse returns the Version described by s. s must not carry a tag prefix
// such as "v"; use FromTag for tags.
func Parse(s string) (Version, error) {
	if !Accept(s) {
		return Version{}, fmt.Errorf("%w: invalid version %q", ErrInvalidArgument, s)
	}

	var v Version
	rest := s
	if i := strings.IndexByte(rest, '+'); i >= 0 {
		v.build = rest[i+1:]
		rest = rest[:i]
	}
	if i := strings.IndexByte(rest, '-'); i >= 0 {
		v.prerelease = rest[i+1:]
		rest = rest[:i]
	}

	for i, part := range strings.Split(rest, ".") {
		n, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %s segment of %q: %v", ErrInvalidArgument, Segment(i), s, err)
		}
		v.segments[i] = n
	}
	return v, nil
}

// MustParse is like Parse but panics if s is invalid.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// FromTag parses a tag such as "v1.2.3" after removing prefix.
func FromTag(tag, prefix string) (Version, error) {
	if prefix != "" && !strings.HasPrefix(tag, prefix) {
		return Version{}, fmt.Errorf("%w: tag %q does not have prefix %q", ErrInvalidArgument, tag, prefix)
	}
	return Parse(strings.TrimPrefix(tag, prefix))
}

func (v Version) Segments() [3]uint64 { return v.segments }
func (v Version) Major() uint64       { return v.segments[SegmentMajor] }
func (v Version) Minor() uint64       { return v.segments[SegmentMinor] }
func (v Version) Patch() uint64       { return v.segments[SegmentPatch] }

// Prerelease returns the dot-separated prerelease identifiers, or "" if there
// are none.
func (v Version) Prerelease() string { return v.prerelease }

// Build returns the build metadata, or "" if there is none.
func (v Version) Build() string { return v.build }

func (v Version) IsPrerelease() bool { return v.prerelease != "" }

// BumpMajor increments the major segment. Only the targeted segment changes:
// 2.1.15 becomes 3.1.15. Chain ResetLower to zero the minor and patch
// segments. Prerelease and build metadata are dropped.
func (v Version) BumpMajor() Version { return v.bump(SegmentMajor) }

// BumpMinor increments the minor segment, dropping prerelease and build.
func (v Version) BumpMinor() Version { return v.bump(SegmentMinor) }

// BumpPatch increments the patch segment, dropping prerelease and build.
func (v Version) BumpPatch() Version { return v.bump(SegmentPatch) }

// bump saturates: a segment already at math.MaxUint64 is left unchanged
// rather than wrapping to zero. Callers that need a strictly greater version
// check Bumpable first.
func (v Version) bump(seg Segment) Version {
	next := Version{segments: v.segments}
	if next.segments[seg] < math.MaxUint64 {
		next.segments[seg]++
	}
	return next
}

// Bumpable reports whether seg can be incremented without overflowing.
func (v Version) Bumpable(seg Segment) bool {
	return v.segments[seg] < math.MaxUint64
}

// ResetLower returns a copy of v with every segment after seg set to zero.
func (v Version) ResetLower(seg Segment) Version {
	next := v
	for i := int(seg) + 1; i < len(next.segments); i++ {
		next.segments[i] = 0
	}
	return next
}

// BumpPrerelease increments the trailing digits of the prerelease, so
// 1.0.0-alpha.9 becomes 1.0.0-alpha.10 and 1.0.0-rc1 becomes 1.0.0-rc2. It
// fails if v has no prerelease or the prerelease does not end in a digit.
// Build metadata is dropped.
func (v Version) BumpPrerelease() (Version, error) {
	if v.prerelease == "" {
		return Version{}, fmt.Errorf("%w: no prerelease present to bump in %s", ErrInvalidArgument, v)
	}
	pre := v.prerelease
	start := len(pre)
	for start > 0 && isDigit(pre[start-1]) {
		start--
	}
	if start == len(pre) {
		return Version{}, fmt.Errorf("%w: prerelease %q does not end with an integer", ErrInvalidArgument, pre)
	}

	n, _ := new(big.Int).SetString(pre[start:], 10)
	n.Add(n, big.NewInt(1))
	return Version{segments: v.segments, prerelease: pre[:start] + n.String()}, nil
}

// AsPrerelease returns v with its prerelease replaced by token + ".0", such
// as 1.0.3-unstable.0. Segments are kept and build metadata is dropped.
func (v Version) AsPrerelease(token string) (Version, error) {
	next := Version{segments: v.segments, prerelease: token + ".0"}
	if !Accept(next.String()) {
		return Version{}, fmt.Errorf("%w: invalid prerelease token %q", ErrInvalidArgument, token)
	}
	return next, nil
}

// String renders major.minor.patch[-prerelease][+build].
func (v Version) String() string {
	var b strings.Builder
	for i, seg := range v.segments {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.FormatUint(seg, 10))
	}
	if v.prerelease != "" {
		b.WriteByte('-')
		b.WriteString(v.prerelease)
	}
	if v.build != "" {
		b.WriteByte('+')
		b.WriteString(v.build)
	}
	return b.String()
}

// Compare returns -1, 0 or 1 as v is lower than, equal to, or greater than
// other in semver precedence. Build metadata is ignored.
func (v Version) Compare(other Version) int {
	for i := range v.segments {
		if v.segments[i] != other.segments[i] {
			if v.segments[i] < other.segments[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case v.prerelease == "" && other.prerelease == "":
		return 0
	case v.prerelease == "":
		return 1
	case other.prerelease == "":
		return -1
	}
	return comparePrerelease(v.prerelease, other.prerelease)
}

func (v Version) Equal(other Version) bool       { return v.Compare(other) == 0 }
func (v Version) LessThan(other Version) bool    { return v.Compare(other) < 0 }
func (v Version) GreaterThan(other Version) bool { return v.Compare(other) > 0 }

func comparePrerelease(a, b string) int {
	mine := strings.Split(a, ".")
	theirs := strings.Split(b, ".")
	for i := 0; i < len(mine) || i < len(theirs); i++ {
		if i >= len(mine) {
			return -1
		}
		if i >= len(theirs) {
			return 1
		}
		if c := compareIdentifier(mine[i], theirs[i]); c != 0 {
			return c
		}
	}
	return 0
}

// numeric identifiers sort below alphanumeric ones.
func compareIdentifier(a, b string) int {
	an, bn := isNumeric(a), isNumeric(b)
	switch {
	case an && bn:
		return compareNumeric(a, b)
	case an:
		return -1
	case bn:
		return 1
	}
	return strings.Compare(a, b)
}

func compareNumeric(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// Versions implements sort.Interface in ascending precedence.
type Versions []Version

func (vs Versions) Len() int           { return len(vs) }
func (vs Versions) Swap(i, j int)      { vs[i], vs[j] = vs[j], vs[i] }
func (vs Versions) Less(i, j int) bool { return vs[i].LessThan(vs[j]) }

// Sort sorts vs in ascending order. Equal versions keep their relative order.
func Sort(vs []Version) {
	sort.Stable(Versions(vs))
}
