package cst

import (
	"strconv"
	"strings"

	"github.com/dhamidi/cstkit/text"
)

// Dump renders n as an indented outline, one node per line.
func Dump(n Node) string {
	var sb strings.Builder
	dump(&sb, n, 0, text.Index{}, false)
	return sb.String()
}

// DumpWithRanges is like Dump but annotates every node with its byte range.
func DumpWithRanges(n Node) string {
	var sb strings.Builder
	dump(&sb, n, 0, text.Index{}, true)
	return sb.String()
}

func dump(sb *strings.Builder, n Node, indent int, start text.Index, showRanges bool) {
	sb.WriteString(strings.Repeat("  ", indent))
	switch n := n.(type) {
	case *RuleNode:
		sb.WriteString(string(n.Kind))
	case *TokenNode:
		sb.WriteString(string(n.Kind))
	case *ErrorNode:
		sb.WriteString("ERROR")
	}
	if showRanges {
		r := text.Range{Start: start, End: start.Add(n.TextLen())}
		sb.WriteString(" [" + r.String() + "]")
	}
	switch n := n.(type) {
	case *TokenNode:
		sb.WriteString(" " + strconv.Quote(n.Text))
	case *ErrorNode:
		sb.WriteString(" " + strconv.Quote(n.Text))
		if len(n.Expected) > 0 {
			sb.WriteString(" expected: ")
			for i, k := range n.Expected {
				if i > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(string(k))
			}
		}
	}
	sb.WriteString("\n")

	if r, ok := n.(*RuleNode); ok {
		pos := start
		for _, child := range r.Children {
			dump(sb, child, indent+1, pos, showRanges)
			pos = pos.Add(child.TextLen())
		}
	}
}

func (n *RuleNode) String() string  { return Dump(n) }
func (n *TokenNode) String() string { return Dump(n) }
func (n *ErrorNode) String() string { return Dump(n) }
