package parser

import (
	"github.com/dhamidi/cstkit/cst"
	"github.com/dhamidi/cstkit/text"
)

// Tracer observes rule calls. A nil Tracer is valid and does nothing.
type Tracer interface {
	Enter(rule cst.RuleKind, depth int, pos text.Index, preview string)
	Exit(rule cst.RuleKind, depth int, pos text.Index, result ResultKind)
}

const previewLen = 16

func preview(s *Stream) string {
	rest := s.Remaining()
	n := 0
	for i := range rest {
		if n == previewLen {
			return rest[:i]
		}
		n++
	}
	return rest
}

// Guard wraps the parser of a rule. It counts the call against the
// stream's depth limit and reports it to the stream's tracer. Exceeding
// the limit is reported as NoMatch.
func Guard(kind cst.RuleKind, p Parser) Parser {
	return func(s *Stream) Result {
		if !s.Enter() {
			return NoMatch(nil)
		}
		defer s.Leave()

		t := s.Tracer()
		if t == nil {
			return p(s)
		}
		t.Enter(kind, s.Depth(), s.Position(), preview(s))
		r := p(s)
		t.Exit(kind, s.Depth(), s.Position(), r.Kind)
		return r
	}
}

// Rule is Guard followed by wrapping the result into one node of kind.
func Rule(kind cst.RuleKind, p Parser) Parser {
	g := Guard(kind, p)
	return func(s *Stream) Result {
		return g(s).WithKind(kind)
	}
}
