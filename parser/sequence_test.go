package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/cstkit/cst"
)

func TestSequenceMerge(t *testing.T) {
	a := Match([]cst.Node{tok("A", "a")}, kinds("X"))
	b := Match([]cst.Node{tok("B", "b")}, kinds("Y"))
	empty := Match(nil, kinds("E"))
	op := OperatorMatch([]OperatorElement{{Label: BinaryOperator, Rule: "Sub", Nodes: []cst.Node{tok("Minus", "-")}}})

	tests := []struct {
		name     string
		parts    []Result
		kind     ResultKind
		text     string
		expected []cst.TokenKind
	}{
		{"match match", []Result{a, b}, ResultMatch, "ab", kinds("Y")},
		{"match nomatch", []Result{a, NoMatch(kinds("Z"))}, ResultIncomplete, "a", kinds("X", "Z")},
		{"match incomplete", []Result{a, Incomplete([]cst.Node{tok("B", "b")}, kinds("Z"))}, ResultIncomplete, "ab", kinds("Z")},
		{"empty then match", []Result{empty, b}, ResultMatch, "b", kinds("Y")},
		{"empty then nomatch", []Result{empty, NoMatch(kinds("Z"))}, ResultNoMatch, "", kinds("E", "Z")},
		{"leading nomatch", []Result{NoMatch(kinds("Z")), a}, ResultNoMatch, "", kinds("Z")},
		{"match operator", []Result{a, op}, ResultOperatorMatch, "a-", nil},
		{"operator match", []Result{op, b}, ResultOperatorMatch, "-b", kinds("Y")},
		{"operator empty", []Result{op, empty}, ResultOperatorMatch, "-", kinds("E")},
		{"operator nomatch", []Result{op, NoMatch(kinds("Z"))}, ResultIncomplete, "-", kinds("Z")},
		{"operator incomplete", []Result{op, Incomplete([]cst.Node{tok("B", "b")}, kinds("Z"))}, ResultIncomplete, "-b", kinds("Z")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seq SequenceHelper
			for _, r := range tt.parts {
				if seq.Elem(r) {
					break
				}
			}
			r := seq.Result()
			assert.Equal(t, tt.kind, r.Kind)
			assert.Equal(t, tt.text, cst.UnparseAll(r.Flatten()))
			assert.Equal(t, tt.expected, r.Expected)
		})
	}
}

func TestSequenceSplicesOperand(t *testing.T) {
	var seq SequenceHelper
	seq.Elem(Match([]cst.Node{tok("A", "a")}, nil))
	seq.Elem(OperatorMatch([]OperatorElement{{Label: PostfixOperator, Left: 3}}))

	r := seq.Result()
	require.Len(t, r.Elements, 2)
	assert.Equal(t, Operand, r.Elements[0].Label)
	assert.Equal(t, uint8(0), r.Elements[0].Left)
	assert.Equal(t, uint8(0), r.Elements[0].Right)
	assert.Equal(t, PostfixOperator, r.Elements[1].Label)
}

func TestSequenceStopsAtFailure(t *testing.T) {
	called := false
	p := Sequence(
		fixed(Match([]cst.Node{tok("A", "a")}, nil), 1),
		fixed(NoMatch(kinds("B")), 0),
		func(s *Stream) Result {
			called = true
			return Match(nil, nil)
		},
	)

	s := NewStream("ab")
	r := p(s)
	assert.Equal(t, ResultIncomplete, r.Kind)
	assert.False(t, called, "parsers after a failure must not run")
	assert.Equal(t, 1, s.Position().Utf8)
}

func TestSequenceRestoresOnNoMatch(t *testing.T) {
	lx := testLexer{}
	p := Sequence(Optional(Token(lx, "Minus")), Token(lx, "Identifier"))

	s := NewStream("- ,")
	r := p(s)
	assert.Equal(t, ResultIncomplete, r.Kind)
	assert.Equal(t, "-", cst.UnparseAll(r.Nodes))

	s = NewStream(",")
	r = p(s)
	assert.True(t, r.IsNoMatch())
	assert.Equal(t, kinds("Minus", "Identifier"), r.Expected)
	assert.Equal(t, 0, s.Position().Utf8)
}

func TestSequenceHelperElemAfterDone(t *testing.T) {
	var seq SequenceHelper
	seq.Elem(NoMatch(nil))
	assert.Panics(t, func() { seq.Elem(Match(nil, nil)) })
}
