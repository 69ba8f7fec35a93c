// Package version gates grammar nodes by language version.
//
// A Range is either "introduced at V" (true from V onward) or "removed at V"
// (true before V). A Specifier is a conjunction of ranges. Specifiers are
// never evaluated while parsing: Compile turns a target version into Flags
// once, and the grammar compiler consults the flags while it builds the
// parser.
package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Quality says whether a range opens or closes at its version.
type Quality int

const (
	Introduced Quality = iota
	Removed
)

func (q Quality) String() string {
	if q == Removed {
		return "removed"
	}
	return "introduced"
}

// Range is a predicate over versions.
type Range struct {
	Quality Quality
	From    *semver.Version
}

// IntroducedIn returns a range true from v onward. It panics if v is not a
// valid version.
func IntroducedIn(v string) Range {
	return Range{Quality: Introduced, From: semver.MustParse(v)}
}

// RemovedIn returns a range true before v. It panics if v is not a valid
// version.
func RemovedIn(v string) Range {
	return Range{Quality: Removed, From: semver.MustParse(v)}
}

// Never returns a specifier that holds in no version.
func Never() Specifier {
	return Specifier{RemovedIn("0.0.0")}
}

// Contains evaluates the range directly against v.
func (r Range) Contains(v *semver.Version) bool {
	atLeast := !v.LessThan(r.From)
	if r.Quality == Removed {
		return !atLeast
	}
	return atLeast
}

func (r Range) String() string {
	if r.Quality == Removed {
		return "<" + r.From.String()
	}
	return ">=" + r.From.String()
}

// Specifier is a conjunction of ranges. The empty specifier is always true.
type Specifier []Range

// ParseSpecifier reads a comma separated list of ">=V" and "<V" terms.
func ParseSpecifier(s string) (Specifier, error) {
	var spec Specifier
	for _, term := range strings.Split(s, ",") {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		var r Range
		switch {
		case strings.HasPrefix(term, ">="):
			r.Quality, term = Introduced, term[2:]
		case strings.HasPrefix(term, "<"):
			r.Quality, term = Removed, term[1:]
		default:
			return nil, fmt.Errorf("version term %q: expected >=V or <V", term)
		}
		v, err := semver.NewVersion(strings.TrimSpace(term))
		if err != nil {
			return nil, fmt.Errorf("version term %q: %w", term, err)
		}
		r.From = v
		spec = append(spec, r)
	}
	return spec, nil
}

// Contains evaluates every range of the specifier directly against v.
func (s Specifier) Contains(v *semver.Version) bool {
	for _, r := range s {
		if !r.Contains(v) {
			return false
		}
	}
	return true
}

// Versions returns the versions the specifier mentions.
func (s Specifier) Versions() []*semver.Version {
	result := make([]*semver.Version, len(s))
	for i, r := range s {
		result[i] = r.From
	}
	return result
}

func (s Specifier) String() string {
	parts := make([]string, len(s))
	for i, r := range s {
		parts[i] = r.String()
	}
	return strings.Join(parts, ", ")
}
