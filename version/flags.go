package version

import "github.com/Masterminds/semver/v3"

// Flags holds, for one target version, whether the target is at or past
// each version a grammar refers to.
type Flags struct {
	target  *semver.Version
	atLeast map[string]bool
}

// Compile precomputes the flags of target for every referenced version.
func Compile(target *semver.Version, referenced []*semver.Version) Flags {
	f := Flags{target: target, atLeast: make(map[string]bool, len(referenced))}
	for _, v := range referenced {
		f.atLeast[v.String()] = !target.LessThan(v)
	}
	return f
}

// Target returns the version the flags were compiled for.
func (f Flags) Target() *semver.Version { return f.target }

// AtLeast reports whether the target is v or later. v must have been
// passed to Compile.
func (f Flags) AtLeast(v *semver.Version) bool {
	atLeast, ok := f.atLeast[v.String()]
	if !ok {
		panic("version: " + v.String() + " was not compiled into flags for " + f.target.String())
	}
	return atLeast
}

// Enabled evaluates spec against the precomputed flags.
func (f Flags) Enabled(spec Specifier) bool {
	for _, r := range spec {
		if f.AtLeast(r.From) == (r.Quality == Removed) {
			return false
		}
	}
	return true
}
