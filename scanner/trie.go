package scanner

import (
	"fmt"
	"unicode/utf8"

	"github.com/dhamidi/cstkit/cst"
	"github.com/dhamidi/cstkit/parser"
)

// Payload is what a trie yields for a literal.
type Payload struct {
	Kind     cst.TokenKind
	Enabled  bool
	Reserved bool
}

// Trie collects literals before compiling them into a Matcher.
type Trie struct {
	root trieNode
}

type trieNode struct {
	children map[rune]*trieNode
	payload  *Payload
}

// Insert adds literal. Inserting the same literal again merges the
// version flags, unless the kinds differ.
func (t *Trie) Insert(literal string, p Payload) error {
	if literal == "" {
		return fmt.Errorf("empty literal for %s", p.Kind)
	}
	n := &t.root
	for _, r := range literal {
		if n.children == nil {
			n.children = make(map[rune]*trieNode)
		}
		child, ok := n.children[r]
		if !ok {
			child = &trieNode{}
			n.children[r] = child
		}
		n = child
	}
	if n.payload != nil {
		if n.payload.Kind != p.Kind {
			return fmt.Errorf("literal %q is both %s and %s", literal, n.payload.Kind, p.Kind)
		}
		n.payload.Enabled = n.payload.Enabled || p.Enabled
		n.payload.Reserved = n.payload.Reserved || p.Reserved
		return nil
	}
	n.payload = &p
	return nil
}

// Matcher scans a literal at the stream position and returns its payload.
// On failure the stream is left unchanged.
type Matcher func(s *parser.Stream) (Payload, bool)

type state struct {
	payload *Payload
	edges   map[rune]edge
}

// edge consumes label, whose first rune is the key it is stored under.
type edge struct {
	label string
	to    *state
}

// Compile builds the matcher. Runs of nodes without a payload and with a
// single child collapse into one edge. The trie is not referenced by the
// result.
func (t *Trie) Compile() Matcher {
	root := compile(&t.root)
	return func(s *parser.Stream) (Payload, bool) {
		start := s.Position()
		p, ok := root.match(s)
		if !ok {
			s.SetPosition(start)
		}
		return p, ok
	}
}

func compile(n *trieNode) *state {
	st := &state{}
	if n.payload != nil {
		p := *n.payload
		st.payload = &p
	}
	if len(n.children) == 0 {
		return st
	}
	st.edges = make(map[rune]edge, len(n.children))
	for r, child := range n.children {
		label := string(r)
		for child.payload == nil && len(child.children) == 1 {
			for next, grandchild := range child.children {
				label += string(next)
				child = grandchild
			}
		}
		st.edges[r] = edge{label: label, to: compile(child)}
	}
	return st
}

// match descends as far as the input allows. Where the input leaves the
// trie, the payload of the node reached is the result; a node without one
// means there is no match, even if a shorter literal was passed on the way.
func (st *state) match(s *parser.Stream) (Payload, bool) {
	here := s.Position()
	r, ok := s.Next()
	var e edge
	if ok {
		e, ok = st.edges[r]
	}
	if !ok {
		s.SetPosition(here)
		if st.payload == nil {
			return Payload{}, false
		}
		return *st.payload, true
	}

	_, size := utf8.DecodeRuneInString(e.label)
	for _, want := range e.label[size:] {
		if got, ok := s.Next(); !ok || got != want {
			return Payload{}, false
		}
	}
	return e.to.match(s)
}
