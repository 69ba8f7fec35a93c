package parser

import (
	"strings"

	"github.com/dhamidi/cstkit/cst"
)

// testLexer scans lowercase identifiers, a handful of punctuation tokens
// and spaces as trivia.
type testLexer struct{}

var punctuation = []struct {
	text string
	kind cst.TokenKind
}{
	{"**", "StarStar"},
	{"(", "OpenParen"},
	{")", "CloseParen"},
	{"[", "OpenBracket"},
	{"]", "CloseBracket"},
	{",", "Comma"},
	{";", "Semicolon"},
	{"-", "Minus"},
	{"!", "Bang"},
}

func scanTest(rest string) (cst.TokenKind, int) {
	n := 0
	for n < len(rest) && rest[n] >= 'a' && rest[n] <= 'z' {
		n++
	}
	if n > 0 {
		return "Identifier", n
	}
	for _, p := range punctuation {
		if strings.HasPrefix(rest, p.text) {
			return p.kind, len(p.text)
		}
	}
	return "", 0
}

func advance(s *Stream, n int) {
	end := s.Position().Utf8 + n
	for s.Position().Utf8 < end {
		s.Next()
	}
}

func (testLexer) NextToken(s *Stream) (cst.TokenKind, bool) {
	before := s.Position()
	advance(s, len(s.Remaining())-len(strings.TrimLeft(s.Remaining(), " ")))
	kind, n := scanTest(s.Remaining())
	if n == 0 {
		s.SetPosition(before)
		return "", false
	}
	advance(s, n)
	return kind, true
}

func (testLexer) LeadingTrivia(s *Stream) Result {
	rest := s.Remaining()
	ws := rest[:len(rest)-len(strings.TrimLeft(rest, " "))]
	if ws == "" {
		return Match(nil, nil)
	}
	advance(s, len(ws))
	return Match([]cst.Node{cst.NewToken("Whitespace", ws)}, nil)
}

func (l testLexer) ParseTokenWithTrivia(s *Stream, kind cst.TokenKind) Result {
	start := s.Position()
	lead := l.LeadingTrivia(s)
	got, n := scanTest(s.Remaining())
	if n == 0 || got != kind {
		s.SetPosition(start)
		return NoMatch([]cst.TokenKind{kind})
	}
	tok := cst.NewToken(kind, s.Remaining()[:n])
	advance(s, n)
	return Match(append(lead.Nodes, tok), nil)
}

func (testLexer) Delimiters() map[cst.TokenKind]cst.TokenKind {
	return map[cst.TokenKind]cst.TokenKind{
		"OpenParen":   "CloseParen",
		"OpenBracket": "CloseBracket",
	}
}

// fixed returns a parser that consumes n bytes and returns r.
func fixed(r Result, n int) Parser {
	return func(s *Stream) Result {
		advance(s, n)
		return r
	}
}

func tok(kind cst.TokenKind, text string) cst.Node {
	return cst.NewToken(kind, text)
}

func kinds(k ...cst.TokenKind) []cst.TokenKind { return k }
