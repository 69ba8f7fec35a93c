// Package scanner turns characters into tokens. Literal tokens and
// keywords are dispatched through compiled tries, everything else through
// scanner combinators.
package scanner

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/dhamidi/cstkit/parser"
)

// Scanner consumes the characters of one token. A scanner that fails
// leaves the stream where it found it.
type Scanner func(s *parser.Stream) bool

// Chars matches the literal text.
func Chars(text string) Scanner {
	return func(s *parser.Stream) bool {
		if !strings.HasPrefix(s.Remaining(), text) {
			return false
		}
		for range utf8.RuneCountInString(text) {
			s.Next()
		}
		return true
	}
}

// Range matches one character between lo and hi inclusive.
func Range(lo, hi rune) Scanner {
	return func(s *parser.Stream) bool {
		r, ok := s.Peek()
		if !ok || r < lo || r > hi {
			return false
		}
		s.Next()
		return true
	}
}

// NoneOf matches any one character not in chars.
func NoneOf(chars string) Scanner {
	return func(s *parser.Stream) bool {
		r, ok := s.Peek()
		if !ok || strings.ContainsRune(chars, r) {
			return false
		}
		s.Next()
		return true
	}
}

// Sequence matches all scanners one after the other.
func Sequence(scanners ...Scanner) Scanner {
	return func(s *parser.Stream) bool {
		start := s.Position()
		for _, sc := range scanners {
			if !sc(s) {
				s.SetPosition(start)
				return false
			}
		}
		return true
	}
}

// Choice matches the first scanner that succeeds.
func Choice(scanners ...Scanner) Scanner {
	return func(s *parser.Stream) bool {
		for _, sc := range scanners {
			if sc(s) {
				return true
			}
		}
		return false
	}
}

// Literals matches the longest of the given texts.
func Literals(texts ...string) Scanner {
	sorted := slices.Clone(texts)
	slices.SortStableFunc(sorted, func(a, b string) int { return len(b) - len(a) })
	scanners := make([]Scanner, len(sorted))
	for i, t := range sorted {
		scanners[i] = Chars(t)
	}
	return Choice(scanners...)
}

func Optional(sc Scanner) Scanner {
	return func(s *parser.Stream) bool {
		sc(s)
		return true
	}
}

func ZeroOrMore(sc Scanner) Scanner {
	return func(s *parser.Stream) bool {
		for {
			before := s.Position()
			if !sc(s) || s.Position() == before {
				return true
			}
		}
	}
}

func OneOrMore(sc Scanner) Scanner {
	return Sequence(sc, ZeroOrMore(sc))
}

// NotFollowedBy matches sc unless it is directly followed by something
// lookahead matches.
func NotFollowedBy(sc, lookahead Scanner) Scanner {
	return func(s *parser.Stream) bool {
		start := s.Position()
		if !sc(s) {
			return false
		}
		end := s.Position()
		if lookahead(s) {
			s.SetPosition(start)
			return false
		}
		s.SetPosition(end)
		return true
	}
}

// Never matches nothing. It stands in for scanners that are disabled in
// the version being compiled.
func Never() Scanner {
	return func(*parser.Stream) bool { return false }
}
