// Package parser is a backtracking recursive descent runtime. Grammars are
// built from combinators that consume a Stream and produce Results, and
// every result keeps enough information to build a lossless tree.
package parser

import (
	"fmt"
	"slices"

	"github.com/dhamidi/cstkit/cst"
	"github.com/dhamidi/cstkit/text"
)

// Parser consumes input from a stream. A parser that returns NoMatch
// leaves the stream where it found it.
type Parser func(s *Stream) Result

// ResultKind discriminates Result values.
type ResultKind int

const (
	ResultNoMatch ResultKind = iota
	ResultMatch
	ResultOperatorMatch
	ResultIncomplete
)

func (k ResultKind) String() string {
	switch k {
	case ResultNoMatch:
		return "NoMatch"
	case ResultMatch:
		return "Match"
	case ResultOperatorMatch:
		return "OperatorMatch"
	case ResultIncomplete:
		return "IncompleteMatch"
	}
	return fmt.Sprintf("ResultKind(%d)", int(k))
}

// Result is the outcome of running a parser.
//
// Nodes is set for Match and IncompleteMatch, Elements for OperatorMatch.
// Expected holds the tokens that would have let the parse go further; it
// is kept on success for the benefit of a failing sibling.
type Result struct {
	Kind     ResultKind
	Nodes    []cst.Node
	Elements []OperatorElement
	Expected []cst.TokenKind
}

// ElementLabel tags the parts of an OperatorMatch.
type ElementLabel int

const (
	Operand ElementLabel = iota
	PrefixOperator
	BinaryOperator
	PostfixOperator
)

// OperatorElement is one operand or operator of a flat precedence
// expression. Rule is the kind of the node an operator produces. Operands
// carry zero binding powers.
type OperatorElement struct {
	Label ElementLabel
	Rule  cst.RuleKind
	Nodes []cst.Node
	Left  uint8
	Right uint8
}

func Match(nodes []cst.Node, expected []cst.TokenKind) Result {
	return Result{Kind: ResultMatch, Nodes: nodes, Expected: expected}
}

func Incomplete(nodes []cst.Node, expected []cst.TokenKind) Result {
	return Result{Kind: ResultIncomplete, Nodes: nodes, Expected: expected}
}

func NoMatch(expected []cst.TokenKind) Result {
	return Result{Kind: ResultNoMatch, Expected: expected}
}

// Disabled is the result of a grammar node that does not exist in the
// version being parsed.
func Disabled() Result {
	return NoMatch(nil)
}

func OperatorMatch(elements []OperatorElement) Result {
	return Result{Kind: ResultOperatorMatch, Elements: elements}
}

// IsMatch reports whether r is a Match or an OperatorMatch.
func (r Result) IsMatch() bool {
	return r.Kind == ResultMatch || r.Kind == ResultOperatorMatch
}

func (r Result) IsNoMatch() bool    { return r.Kind == ResultNoMatch }
func (r Result) IsIncomplete() bool { return r.Kind == ResultIncomplete }

// WithKind wraps the nodes of a Match or IncompleteMatch into a single rule
// node. NoMatch is returned unchanged. An OperatorMatch must be reduced by
// its precedence parser before it can be wrapped.
func (r Result) WithKind(kind cst.RuleKind) Result {
	switch r.Kind {
	case ResultMatch, ResultIncomplete:
		r.Nodes = []cst.Node{cst.NewRule(kind, r.Nodes)}
		return r
	case ResultOperatorMatch:
		panic("parser: WithKind(" + string(kind) + ") on an unreduced OperatorMatch")
	}
	return r
}

// Flatten returns the nodes of r in document order, dissolving the
// elements of an OperatorMatch.
func (r Result) Flatten() []cst.Node {
	if r.Kind != ResultOperatorMatch {
		return r.Nodes
	}
	var nodes []cst.Node
	for _, e := range r.Elements {
		nodes = append(nodes, e.Nodes...)
	}
	return nodes
}

// TextLen returns the length of the text r covers.
func (r Result) TextLen() text.Index {
	return cst.TextLen(r.Flatten())
}

// union returns the kinds of a followed by the kinds of b that a lacks.
func union(a, b []cst.TokenKind) []cst.TokenKind {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	out := slices.Clone(a)
	for _, k := range b {
		if !slices.Contains(out, k) {
			out = append(out, k)
		}
	}
	return out
}

// concat appends without aliasing the backing array of a, which may be
// shared with a result that is still held by a choice.
func concat(a, b []cst.Node) []cst.Node {
	if len(b) == 0 {
		return a
	}
	out := make([]cst.Node, 0, len(a)+len(b))
	return append(append(out, a...), b...)
}
