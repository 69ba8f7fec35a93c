package parser

// SequenceHelper accumulates the results of consecutive parsers.
type SequenceHelper struct {
	result  Result
	started bool
	done    bool
}

// Elem adds the result of the next parser in the sequence. It returns true
// once the sequence cannot continue; later elements must not be parsed.
func (h *SequenceHelper) Elem(next Result) bool {
	if h.done {
		panic("parser: SequenceHelper.Elem after the sequence finished")
	}
	if !h.started {
		h.started = true
		h.result = next
		h.done = !next.IsMatch()
		return h.done
	}

	cur := h.result
	switch cur.Kind {
	case ResultMatch:
		if len(cur.Nodes) == 0 {
			if next.Kind == ResultNoMatch {
				next.Expected = union(cur.Expected, next.Expected)
			}
			h.result = next
			break
		}
		switch next.Kind {
		case ResultMatch:
			h.result = Match(concat(cur.Nodes, next.Nodes), next.Expected)
		case ResultOperatorMatch:
			elements := make([]OperatorElement, 0, len(next.Elements)+1)
			elements = append(elements, OperatorElement{Label: Operand, Nodes: cur.Nodes})
			h.result = OperatorMatch(append(elements, next.Elements...))
			h.result.Expected = next.Expected
		case ResultIncomplete:
			h.result = Incomplete(concat(cur.Nodes, next.Nodes), next.Expected)
		case ResultNoMatch:
			h.result = Incomplete(cur.Nodes, union(cur.Expected, next.Expected))
		}

	case ResultOperatorMatch:
		switch next.Kind {
		case ResultMatch:
			if len(next.Nodes) > 0 {
				h.result.Elements = append(cloneElements(cur.Elements), OperatorElement{Label: Operand, Nodes: next.Nodes})
			}
			h.result.Expected = next.Expected
		case ResultOperatorMatch:
			h.result.Elements = append(cloneElements(cur.Elements), next.Elements...)
			h.result.Expected = next.Expected
		case ResultIncomplete:
			h.result = Incomplete(concat(cur.Flatten(), next.Nodes), next.Expected)
		case ResultNoMatch:
			h.result = Incomplete(cur.Flatten(), union(cur.Expected, next.Expected))
		}
	}

	h.done = !h.result.IsMatch()
	return h.done
}

// Result returns the merged result. An empty sequence is an empty Match.
func (h *SequenceHelper) Result() Result {
	if !h.started {
		return Match(nil, nil)
	}
	return h.result
}

func cloneElements(e []OperatorElement) []OperatorElement {
	return append(make([]OperatorElement, 0, len(e)+1), e...)
}

// Sequence runs parsers one after the other and stops at the first that
// does not fully match.
func Sequence(parsers ...Parser) Parser {
	if len(parsers) == 1 {
		return parsers[0]
	}
	return func(s *Stream) Result {
		start := s.Position()
		var seq SequenceHelper
		for _, p := range parsers {
			if seq.Elem(p(s)) {
				break
			}
		}
		r := seq.Result()
		if r.IsNoMatch() {
			s.SetPosition(start)
		}
		return r
	}
}
