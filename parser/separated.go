package parser

import (
	"slices"

	"github.com/dhamidi/cstkit/cst"
	"github.com/dhamidi/cstkit/text"
)

// SeparatedBy parses one or more elements with separator tokens between
// them. An element that fails after a separator is skipped up to the next
// separator or closing delimiter and recorded as an error node, empty if
// nothing was skipped, so that the list goes on.
func SeparatedBy(lexer Lexer, element Parser, separator cst.TokenKind) Parser {
	return func(s *Stream) Result {
		first := element(s)
		if !first.IsMatch() {
			return first
		}
		nodes := slices.Clone(first.Flatten())
		hint := first.Expected

		for {
			before := s.Position()
			sep := lexer.ParseTokenWithTrivia(s, separator)
			if !sep.IsMatch() {
				s.SetPosition(before)
				return Match(nodes, union(hint, sep.Expected))
			}
			nodes = append(nodes, sep.Nodes...)

			start := s.Position()
			el := element(s)
			if el.IsMatch() {
				nodes = append(nodes, el.Flatten()...)
				hint = el.Expected
				continue
			}

			nodes = append(nodes, el.Nodes...)
			s.SetPosition(start.Add(cst.TextLen(el.Nodes)))
			skipStart := s.Position()
			found, ok := SkipUntilWithNestedDelims(s, lexer, separator)
			skipped := s.Content(text.Range{Start: skipStart, End: s.Position()})
			nodes = appendError(nodes, skipped, el.Expected)
			hint = el.Expected

			if !ok {
				return Incomplete(nodes, hint)
			}
			if found != separator {
				return Match(nodes, hint)
			}
		}
	}
}

// appendError adds skipped text to nodes, extending a trailing error node
// instead of starting a new one. It modifies nodes in place, so callers
// that do not own them pass a copy.
func appendError(nodes []cst.Node, skipped string, expected []cst.TokenKind) []cst.Node {
	if n := len(nodes); n > 0 {
		if last, ok := nodes[n-1].(*cst.ErrorNode); ok {
			nodes[n-1] = cst.NewError(last.Text+skipped, union(last.Expected, expected))
			return nodes
		}
	}
	return append(nodes, cst.NewError(skipped, expected))
}
