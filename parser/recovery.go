package parser

import (
	"slices"

	"github.com/dhamidi/cstkit/cst"
	"github.com/dhamidi/cstkit/text"
)

// SkipUntilWithNestedDelims consumes tokens until it reaches until, or the
// closer of any delimited construct open on the stream, outside of any
// delimiters opened while skipping. The stream is left before the token
// that stopped the skip, which is returned. It returns false at the end of
// input. Characters no token starts with are skipped one at a time.
func SkipUntilWithNestedDelims(s *Stream, lexer Lexer, until cst.TokenKind) (cst.TokenKind, bool) {
	delims := lexer.Delimiters()
	var nested []cst.TokenKind
	for {
		save := s.Position()
		kind, ok := lexer.NextToken(s)
		if !ok {
			if _, ok := s.Next(); !ok {
				return "", false
			}
			continue
		}

		if len(nested) == 0 && (kind == until || slices.Contains(s.ClosingDelimiters(), kind)) {
			s.SetPosition(save)
			return kind, true
		}
		if closer, ok := delims[kind]; ok {
			nested = append(nested, closer)
		} else if len(nested) > 0 && nested[len(nested)-1] == kind {
			nested = nested[:len(nested)-1]
		}
	}
}

// RecoverUntil makes r a full match by skipping ahead to expected. It
// applies to an incomplete r, and to a full match that is followed by
// something other than expected. The skipped text becomes an error node at
// the end of the result, merged with an error node already there. If
// expected cannot be reached before a sibling's closer or the end of
// input, r is returned unchanged.
func RecoverUntil(s *Stream, lexer Lexer, r Result, expected cst.TokenKind) Result {
	return recoverUntil(s, lexer, r, expected, false)
}

// RecoverNoMatchUntil is RecoverUntil that also recovers a NoMatch body
// followed by something other than expected. It is used where the parse
// is already committed, such as after an opening delimiter.
func RecoverNoMatchUntil(s *Stream, lexer Lexer, r Result, expected cst.TokenKind) Result {
	return recoverUntil(s, lexer, r, expected, true)
}

func recoverUntil(s *Stream, lexer Lexer, r Result, expected cst.TokenKind, fromNoMatch bool) Result {
	hint := r.Expected
	switch r.Kind {
	case ResultIncomplete:
	case ResultMatch:
		if next, ok := peekToken(s, lexer); ok && next == expected {
			return r
		}
		hint = union(r.Expected, []cst.TokenKind{expected})
	case ResultNoMatch:
		if !fromNoMatch {
			return r
		}
		if next, ok := peekToken(s, lexer); ok && next == expected {
			return r
		}
	default:
		return r
	}

	before := s.Position()
	found, ok := SkipUntilWithNestedDelims(s, lexer, expected)
	if !ok || found != expected {
		s.SetPosition(before)
		return r
	}
	skipped := s.Content(text.Range{Start: before, End: s.Position()})
	if r.Kind != ResultIncomplete && skipped == "" {
		return r
	}

	return Match(appendError(slices.Clone(r.Nodes), skipped, hint), []cst.TokenKind{expected})
}

// DelimitedBy parses open, body and close. A body that fails part way is
// recovered up to close, and close is registered on the stream so that
// recovery inside body does not skip past it.
func DelimitedBy(lexer Lexer, open cst.TokenKind, body Parser, close cst.TokenKind) Parser {
	return func(s *Stream) Result {
		start := s.Position()
		done := s.OpenDelim(close)
		defer done()

		var seq SequenceHelper
		if !seq.Elem(lexer.ParseTokenWithTrivia(s, open)) &&
			!seq.Elem(RecoverNoMatchUntil(s, lexer, body(s), close)) {
			seq.Elem(lexer.ParseTokenWithTrivia(s, close))
		}
		r := seq.Result()
		if r.IsNoMatch() {
			s.SetPosition(start)
		}
		return r
	}
}

// TerminatedBy parses body followed by terminator, recovering a failing
// body up to the terminator.
func TerminatedBy(lexer Lexer, body Parser, terminator cst.TokenKind) Parser {
	return func(s *Stream) Result {
		start := s.Position()
		var seq SequenceHelper
		if !seq.Elem(RecoverUntil(s, lexer, body(s), terminator)) {
			seq.Elem(lexer.ParseTokenWithTrivia(s, terminator))
		}
		r := seq.Result()
		if r.IsNoMatch() {
			s.SetPosition(start)
		}
		return r
	}
}
