package cst

import (
	"encoding/json"

	"github.com/dhamidi/cstkit/text"
)

type jsonNode struct {
	Type     string      `json:"type"`
	Kind     string      `json:"kind,omitempty"`
	Range    [2]int      `json:"range"`
	Text     *string     `json:"text,omitempty"`
	Expected []string    `json:"expected,omitempty"`
	Children []*jsonNode `json:"children,omitempty"`
}

func (n *RuleNode) MarshalJSON() ([]byte, error)  { return json.Marshal(toJSON(n, text.Index{})) }
func (n *TokenNode) MarshalJSON() ([]byte, error) { return json.Marshal(toJSON(n, text.Index{})) }
func (n *ErrorNode) MarshalJSON() ([]byte, error) { return json.Marshal(toJSON(n, text.Index{})) }

func toJSON(n Node, start text.Index) *jsonNode {
	end := start.Add(n.TextLen())
	jn := &jsonNode{Range: [2]int{start.Utf8, end.Utf8}}

	switch n := n.(type) {
	case *RuleNode:
		jn.Type = "rule"
		jn.Kind = string(n.Kind)
		jn.Children = make([]*jsonNode, len(n.Children))
		pos := start
		for i, child := range n.Children {
			jn.Children[i] = toJSON(child, pos)
			pos = pos.Add(child.TextLen())
		}
	case *TokenNode:
		jn.Type = "token"
		jn.Kind = string(n.Kind)
		jn.Text = &n.Text
	case *ErrorNode:
		jn.Type = "error"
		jn.Text = &n.Text
		for _, exp := range n.Expected {
			jn.Expected = append(jn.Expected, string(exp))
		}
	}
	return jn
}
