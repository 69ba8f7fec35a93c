package parser

import "github.com/dhamidi/cstkit/cst"

// Lexer scans the tokens of one lexical context.
type Lexer interface {
	// NextToken skips leading trivia and scans one token. It returns false
	// and leaves the stream unchanged if no token can be scanned.
	NextToken(s *Stream) (cst.TokenKind, bool)
	// LeadingTrivia parses the trivia allowed before a token.
	LeadingTrivia(s *Stream) Result
	// ParseTokenWithTrivia parses a token of the given kind together with
	// its surrounding trivia.
	ParseTokenWithTrivia(s *Stream, kind cst.TokenKind) Result
	// Delimiters maps opening delimiters to their closers.
	Delimiters() map[cst.TokenKind]cst.TokenKind
}

// Token returns a parser for one token of kind, with its trivia.
func Token(lexer Lexer, kind cst.TokenKind) Parser {
	return func(s *Stream) Result {
		return lexer.ParseTokenWithTrivia(s, kind)
	}
}

func peekToken(s *Stream, lexer Lexer) (cst.TokenKind, bool) {
	before := s.Position()
	kind, ok := lexer.NextToken(s)
	s.SetPosition(before)
	return kind, ok
}
