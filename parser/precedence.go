package parser

import (
	"fmt"

	"github.com/dhamidi/cstkit/cst"
)

// MaxPrecedenceLevels is the number of levels whose binding powers fit in
// a uint8.
const MaxPrecedenceLevels = 126

// OperatorModel says where an operator sits relative to its operands.
type OperatorModel int

const (
	BinaryLeftAssociative OperatorModel = iota
	BinaryRightAssociative
	Prefix
	Postfix
)

func (m OperatorModel) String() string {
	switch m {
	case BinaryLeftAssociative:
		return "BinaryLeftAssociative"
	case BinaryRightAssociative:
		return "BinaryRightAssociative"
	case Prefix:
		return "Prefix"
	case Postfix:
		return "Postfix"
	}
	return fmt.Sprintf("OperatorModel(%d)", int(m))
}

// Operator matches the tokens of one operator.
type Operator struct {
	Model  OperatorModel
	Parser Parser
}

// Level groups the operators that bind equally tight. Applying any of them
// produces a node of Kind.
type Level struct {
	Kind      cst.RuleKind
	Operators []Operator
}

// BindingPowers returns the left and right binding power of an operator
// of the given model at level i of n. Earlier levels bind tighter.
func BindingPowers(model OperatorModel, i, n int) (left, right uint8) {
	p := uint8(2*(n-i) + 1)
	switch model {
	case BinaryLeftAssociative:
		return p, p + 1
	case BinaryRightAssociative:
		return p, p
	case Prefix:
		return 0, p
	default:
		return p, 0
	}
}

// Precedence parses an expression of primaries joined by the operators
// of levels, which are ordered from the tightest binding to the loosest.
// Every operand ends up wrapped in a node of kind, as does the result.
func Precedence(kind cst.RuleKind, levels []Level, primary Parser) Parser {
	if len(levels) > MaxPrecedenceLevels {
		panic(fmt.Sprintf("parser: precedence rule %s has %d levels, at most %d are supported", kind, len(levels), MaxPrecedenceLevels))
	}

	var prefix, postfix, binary []Parser
	for i, level := range levels {
		for _, op := range level.Operators {
			left, right := BindingPowers(op.Model, i, len(levels))
			switch op.Model {
			case Prefix:
				prefix = append(prefix, operator(level.Kind, PrefixOperator, left, right, op.Parser))
			case Postfix:
				postfix = append(postfix, operator(level.Kind, PostfixOperator, left, right, op.Parser))
			default:
				binary = append(binary, operator(level.Kind, BinaryOperator, left, right, op.Parser))
			}
		}
	}

	var operand []Parser
	if len(prefix) > 0 {
		operand = append(operand, ZeroOrMore(Choice(prefix...)))
	}
	operand = append(operand, primary)
	if len(postfix) > 0 {
		operand = append(operand, ZeroOrMore(Choice(postfix...)))
	}
	single := Sequence(operand...)
	linear := single
	if len(binary) > 0 {
		linear = Sequence(single, ZeroOrMore(Sequence(Choice(binary...), single)))
	}

	return func(s *Stream) Result {
		r := linear(s)
		if r.Kind != ResultOperatorMatch {
			return r.WithKind(kind)
		}
		nodes, ok := Reduce(kind, r.Elements)
		if !ok {
			return Incomplete(r.Flatten(), r.Expected).WithKind(kind)
		}
		return Match(nodes, r.Expected).WithKind(kind)
	}
}

func operator(kind cst.RuleKind, label ElementLabel, left, right uint8, p Parser) Parser {
	return func(s *Stream) Result {
		r := p(s)
		if r.Kind != ResultMatch {
			return r
		}
		m := OperatorMatch([]OperatorElement{{Label: label, Rule: kind, Nodes: r.Nodes, Left: left, Right: right}})
		m.Expected = r.Expected
		return m
	}
}

// Reduce turns a flat list of operands and operators into a tree by
// precedence climbing. It reports false if the list does not form an
// expression.
func Reduce(kind cst.RuleKind, elements []OperatorElement) ([]cst.Node, bool) {
	r := &reducer{kind: kind, elements: elements}
	nodes, ok := r.expr(0)
	if !ok || r.pos != len(elements) {
		return nil, false
	}
	return nodes, true
}

type reducer struct {
	kind     cst.RuleKind
	elements []OperatorElement
	pos      int
}

func (r *reducer) peek() (OperatorElement, bool) {
	if r.pos >= len(r.elements) {
		return OperatorElement{}, false
	}
	return r.elements[r.pos], true
}

func (r *reducer) wrap(nodes []cst.Node) cst.Node {
	return cst.NewRule(r.kind, nodes)
}

func (r *reducer) expr(minBP uint8) ([]cst.Node, bool) {
	e, ok := r.peek()
	if !ok {
		return nil, false
	}
	r.pos++

	var lhs []cst.Node
	switch e.Label {
	case Operand:
		lhs = e.Nodes
	case PrefixOperator:
		rhs, ok := r.expr(e.Right)
		if !ok {
			return nil, false
		}
		children := append(append([]cst.Node{}, e.Nodes...), r.wrap(rhs))
		lhs = []cst.Node{cst.NewRule(e.Rule, children)}
	default:
		return nil, false
	}

	for {
		e, ok := r.peek()
		if !ok {
			return lhs, true
		}
		switch e.Label {
		case PostfixOperator:
			if e.Left < minBP {
				return lhs, true
			}
			r.pos++
			children := append([]cst.Node{r.wrap(lhs)}, e.Nodes...)
			lhs = []cst.Node{cst.NewRule(e.Rule, children)}
		case BinaryOperator:
			if e.Left < minBP {
				return lhs, true
			}
			r.pos++
			rhs, ok := r.expr(e.Right)
			if !ok {
				return nil, false
			}
			children := append([]cst.Node{r.wrap(lhs)}, e.Nodes...)
			children = append(children, r.wrap(rhs))
			lhs = []cst.Node{cst.NewRule(e.Rule, children)}
		default:
			return nil, false
		}
	}
}
