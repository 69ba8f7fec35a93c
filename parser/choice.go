package parser

import (
	"github.com/dhamidi/cstkit/cst"
	"github.com/dhamidi/cstkit/text"
)

// ChoiceHelper picks the best of several alternatives parsed from the same
// position.
type ChoiceHelper struct {
	start text.Index
	best  Result
	done  bool
}

// NewChoiceHelper starts a choice at the current position of s.
func NewChoiceHelper(s *Stream) *ChoiceHelper {
	return &ChoiceHelper{start: s.Position()}
}

// Consider records the result of one alternative and reports whether the
// choice is decided. Unless it is, the stream is rewound for the next
// alternative.
func (h *ChoiceHelper) Consider(s *Stream, r Result) bool {
	if h.done {
		panic("parser: ChoiceHelper.Consider after a full match")
	}
	if r.IsMatch() {
		h.best, h.done = r, true
		return true
	}

	switch r.Kind {
	case ResultIncomplete:
		if h.best.Kind != ResultIncomplete || progress(r.Nodes) > progress(h.best.Nodes) {
			h.best = r
		}
	case ResultNoMatch:
		if h.best.Kind == ResultNoMatch {
			h.best.Expected = union(h.best.Expected, r.Expected)
		}
	}
	s.SetPosition(h.start)
	return false
}

// Finish returns the chosen result. When no alternative matched fully but
// one made progress, the stream is moved to the end of that progress.
func (h *ChoiceHelper) Finish(s *Stream) Result {
	if !h.done && h.best.Kind == ResultIncomplete {
		s.SetPosition(h.start.Add(cst.TextLen(h.best.Nodes)))
	}
	return h.best
}

// Choice tries alternatives in order. The first full match wins. Otherwise
// the incomplete match that got furthest wins, and if every alternative
// failed outright their expectations are combined.
func Choice(parsers ...Parser) Parser {
	if len(parsers) == 1 {
		return parsers[0]
	}
	return func(s *Stream) Result {
		choice := NewChoiceHelper(s)
		for _, p := range parsers {
			if choice.Consider(s, p(s)) {
				break
			}
		}
		return choice.Finish(s)
	}
}

// progress measures matched text in bytes, not counting error text at the
// end of the nodes.
func progress(nodes []cst.Node) int {
	n := cst.TextLen(nodes).Utf8
	trailing, _ := trailingErrorLen(nodes)
	return n - trailing
}

// trailingErrorLen returns the length of the error text that ends nodes,
// and whether nodes consist of error text only.
func trailingErrorLen(nodes []cst.Node) (int, bool) {
	total := 0
	for i := len(nodes) - 1; i >= 0; i-- {
		switch n := nodes[i].(type) {
		case *cst.ErrorNode:
			total += len(n.Text)
		case *cst.RuleNode:
			l, all := trailingErrorLen(n.Children)
			total += l
			if !all {
				return total, false
			}
		default:
			return total, false
		}
	}
	return total, true
}
