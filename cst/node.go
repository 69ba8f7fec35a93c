// Package cst defines the lossless concrete syntax tree produced by parsers.
//
// A tree is made of three node variants: rule nodes (interior), token nodes
// and error nodes (leaves). Concatenating the text of all leaves in document
// order reproduces the parsed source exactly. Nodes are immutable once
// constructed and may be shared between trees.
package cst

import (
	"strings"

	"github.com/dhamidi/cstkit/text"
)

// RuleKind tags rule nodes. The set of kinds is defined by a grammar.
type RuleKind string

// TokenKind tags token nodes and names the terminals a parser expected.
type TokenKind string

// Node is one of *RuleNode, *TokenNode or *ErrorNode.
type Node interface {
	// TextLen returns the length of all text covered by the node.
	TextLen() text.Index
	node()
}

// RuleNode is an interior node grouping children under a rule kind.
type RuleNode struct {
	Kind     RuleKind
	Children []Node
	textLen  text.Index
}

// NewRule builds a rule node and caches its text length. The node takes
// ownership of children.
func NewRule(kind RuleKind, children []Node) *RuleNode {
	var n text.Index
	for _, c := range children {
		n = n.Add(c.TextLen())
	}
	return &RuleNode{Kind: kind, Children: children, textLen: n}
}

func (n *RuleNode) TextLen() text.Index { return n.textLen }
func (*RuleNode) node()                 {}

// FirstChildOfKind returns the first direct child rule of the given kind.
func (n *RuleNode) FirstChildOfKind(kind RuleKind) *RuleNode {
	for _, child := range n.Children {
		if r, ok := child.(*RuleNode); ok && r.Kind == kind {
			return r
		}
	}
	return nil
}

// ChildrenOfKind returns all direct child rules of the given kind.
func (n *RuleNode) ChildrenOfKind(kind RuleKind) []*RuleNode {
	var result []*RuleNode
	for _, child := range n.Children {
		if r, ok := child.(*RuleNode); ok && r.Kind == kind {
			result = append(result, r)
		}
	}
	return result
}

// TokenNode is a leaf holding the text of one scanned terminal.
type TokenNode struct {
	Kind TokenKind
	Text string
}

// NewToken builds a token node.
func NewToken(kind TokenKind, text string) *TokenNode {
	return &TokenNode{Kind: kind, Text: text}
}

func (n *TokenNode) TextLen() text.Index { return text.IndexOf(n.Text) }
func (*TokenNode) node()                 {}

// ErrorNode is a leaf holding source text that could not be parsed, and the
// token kinds that would have allowed the parser to make progress there.
type ErrorNode struct {
	Text     string
	Expected []TokenKind
}

// NewError builds an error node.
func NewError(text string, expected []TokenKind) *ErrorNode {
	return &ErrorNode{Text: text, Expected: expected}
}

func (n *ErrorNode) TextLen() text.Index { return text.IndexOf(n.Text) }
func (*ErrorNode) node()                 {}

// TextLen returns the combined text length of nodes.
func TextLen(nodes []Node) text.Index {
	var n text.Index
	for _, node := range nodes {
		n = n.Add(node.TextLen())
	}
	return n
}

// Unparse returns the source text covered by n.
func Unparse(n Node) string {
	var sb strings.Builder
	unparse(&sb, n)
	return sb.String()
}

// UnparseAll returns the source text covered by nodes.
func UnparseAll(nodes []Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		unparse(&sb, n)
	}
	return sb.String()
}

func unparse(sb *strings.Builder, n Node) {
	switch n := n.(type) {
	case *RuleNode:
		for _, c := range n.Children {
			unparse(sb, c)
		}
	case *TokenNode:
		sb.WriteString(n.Text)
	case *ErrorNode:
		sb.WriteString(n.Text)
	}
}

// Errors returns all error nodes below n in document order.
func Errors(n Node) []*ErrorNode {
	var result []*ErrorNode
	Walk(n, VisitorFuncs{
		EnterFunc: func(c *Cursor) Action {
			if e, ok := c.Node().(*ErrorNode); ok {
				result = append(result, e)
			}
			return Continue
		},
	})
	return result
}
