package parser

import "slices"

// ZeroOrMore applies p as often as it fully matches. If the first attempt
// fails the result is an empty Match carrying the attempt's expectations.
func ZeroOrMore(p Parser) Parser {
	return repeat(p, false)
}

// OneOrMore is like ZeroOrMore but the first attempt's failure is returned
// as is.
func OneOrMore(p Parser) Parser {
	return repeat(p, true)
}

func repeat(p Parser, atLeastOne bool) Parser {
	return func(s *Stream) Result {
		acc := Match(nil, nil)
		first := true
		for {
			before := s.Position()
			r := p(s)
			if !r.IsMatch() {
				if first && atLeastOne {
					return r
				}
				s.SetPosition(before)
				acc.Expected = r.Expected
				return acc
			}

			// A match that consumed nothing would match forever.
			if s.Position() == before {
				if first {
					return r
				}
				acc.Expected = r.Expected
				return acc
			}

			if first {
				// acc grows in place from here on, so it must not share
				// its backing arrays with r.
				acc = r
				acc.Nodes = slices.Clone(r.Nodes)
				acc.Elements = slices.Clone(r.Elements)
				first = false
			} else {
				acc = accumulate(acc, r)
			}
		}
	}
}

// accumulate appends r to acc, which must own its slices.
func accumulate(acc, r Result) Result {
	if acc.Kind != r.Kind {
		panic("parser: repetition mixes " + acc.Kind.String() + " and " + r.Kind.String() + " results")
	}
	if r.Kind == ResultOperatorMatch {
		acc.Elements = append(acc.Elements, r.Elements...)
	} else {
		acc.Nodes = append(acc.Nodes, r.Nodes...)
	}
	acc.Expected = r.Expected
	return acc
}

// Optional applies p at most once. Anything but a full match is turned
// into an empty Match and the stream is rewound.
func Optional(p Parser) Parser {
	return func(s *Stream) Result {
		before := s.Position()
		r := p(s)
		if r.IsMatch() {
			return r
		}
		s.SetPosition(before)
		return Match(nil, r.Expected)
	}
}
