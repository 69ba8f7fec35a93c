// Package text tracks positions in source text in the three units that
// consumers of a syntax tree index by: UTF-8 bytes, UTF-16 code units and
// Unicode code points.
package text

import (
	"fmt"
	"unicode/utf16"
	"unicode/utf8"
)

// Index is a position in source text, or a length of text, measured in
// bytes, UTF-16 code units and code points at the same time.
type Index struct {
	Utf8  int
	Utf16 int
	Char  int
}

// IndexOf returns the length of s in all three units.
func IndexOf(s string) Index {
	var idx Index
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		idx = idx.Advance(r, size)
		s = s[size:]
	}
	return idx
}

// Advance returns the index just past a rune that was decoded from size
// bytes. An invalid byte decodes as utf8.RuneError with size 1 and counts
// as one UTF-16 unit.
func (i Index) Advance(r rune, size int) Index {
	u := utf16.RuneLen(r)
	if u < 0 {
		u = 1
	}
	return Index{Utf8: i.Utf8 + size, Utf16: i.Utf16 + u, Char: i.Char + 1}
}

// Add returns the sum of two indices, treating other as a length.
func (i Index) Add(other Index) Index {
	return Index{
		Utf8:  i.Utf8 + other.Utf8,
		Utf16: i.Utf16 + other.Utf16,
		Char:  i.Char + other.Char,
	}
}

// Sub returns the length between other and i. other must not be past i.
func (i Index) Sub(other Index) Index {
	return Index{
		Utf8:  i.Utf8 - other.Utf8,
		Utf16: i.Utf16 - other.Utf16,
		Char:  i.Char - other.Char,
	}
}

func (i Index) String() string {
	return fmt.Sprintf("%d", i.Utf8)
}

// Range is a half-open span of source text.
type Range struct {
	Start Index
	End   Index
}

// Len returns the length of the range.
func (r Range) Len() Index {
	return r.End.Sub(r.Start)
}

// IsEmpty reports whether the range covers no text.
func (r Range) IsEmpty() bool {
	return r.End.Utf8 <= r.Start.Utf8
}

func (r Range) String() string {
	return fmt.Sprintf("%d..%d", r.Start.Utf8, r.End.Utf8)
}
