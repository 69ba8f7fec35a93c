package text

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Position is a line/column location, as printed in reports.
// Line and Column are one-based; Column counts code points.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Lines maps byte offsets of a source text to lines and columns.
type Lines struct {
	source     string
	lineStarts []int
}

// NewLines indexes the line starts of source.
func NewLines(source string) *Lines {
	starts := make([]int, 1, strings.Count(source, "\n")+1)
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Lines{source: source, lineStarts: starts}
}

// Count returns the number of lines. An empty text has one line.
func (l *Lines) Count() int {
	return len(l.lineStarts)
}

func (l *Lines) lineOf(offset int) int {
	if offset < 0 {
		return 0
	}
	if offset > len(l.source) {
		offset = len(l.source)
	}
	return sort.Search(len(l.lineStarts), func(i int) bool {
		return l.lineStarts[i] > offset
	}) - 1
}

// Position returns the one-based line and code point column of idx.
func (l *Lines) Position(idx Index) Position {
	line := l.lineOf(idx.Utf8)
	start := l.lineStarts[line]
	end := min(max(idx.Utf8, start), len(l.source))
	return Position{Line: line + 1, Column: utf8.RuneCountInString(l.source[start:end]) + 1}
}

// UTF16Position returns the zero-based line and the zero-based column in
// UTF-16 code units of idx, which is what editors speaking LSP expect.
func (l *Lines) UTF16Position(idx Index) (line, character int) {
	line = l.lineOf(idx.Utf8)
	start := l.lineStarts[line]
	end := min(max(idx.Utf8, start), len(l.source))
	for _, r := range l.source[start:end] {
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		character += n
	}
	return line, character
}

// Line returns the text of the one-based line n without its line break.
func (l *Lines) Line(n int) string {
	if n < 1 || n > len(l.lineStarts) {
		return ""
	}
	start := l.lineStarts[n-1]
	end := len(l.source)
	if n < len(l.lineStarts) {
		end = l.lineStarts[n] - 1
	}
	return strings.TrimSuffix(l.source[start:end], "\r")
}

// IndexAt is the inverse of UTF16Position. A character past the end of
// the line maps to the end of the line, a line past the end of the text
// to the end of the text.
func (l *Lines) IndexAt(line, character int) Index {
	if line >= len(l.lineStarts) {
		return IndexOf(l.source)
	}
	start := l.lineStarts[max(line, 0)]
	base := IndexOf(l.source[:start])
	idx := base
	rest := l.source[start:]
	for len(rest) > 0 && rest[0] != '\n' && idx.Utf16-base.Utf16 < character {
		r, size := utf8.DecodeRuneInString(rest)
		idx = idx.Advance(r, size)
		rest = rest[size:]
	}
	return idx
}
