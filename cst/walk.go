package cst

import "github.com/dhamidi/cstkit/text"

// Action tells Walk how to proceed after a visitor callback.
type Action int

const (
	// Continue descends into children (on enter) or moves on (on exit).
	Continue Action = iota
	// SkipChildren does not descend into the children of the entered node.
	SkipChildren
	// Stop ends the walk immediately.
	Stop
)

// Cursor describes the node being visited.
type Cursor struct {
	node     Node
	parents  []*RuleNode
	start    text.Index
	childIdx int
}

// Node returns the visited node.
func (c *Cursor) Node() Node { return c.node }

// Depth returns the number of ancestors of the visited node.
func (c *Cursor) Depth() int { return len(c.parents) }

// Parent returns the parent of the visited node, or nil at the root.
func (c *Cursor) Parent() *RuleNode {
	if len(c.parents) == 0 {
		return nil
	}
	return c.parents[len(c.parents)-1]
}

// Index returns the position of the visited node among its siblings.
func (c *Cursor) Index() int { return c.childIdx }

// TextRange returns the source range covered by the visited node.
func (c *Cursor) TextRange() text.Range {
	return text.Range{Start: c.start, End: c.start.Add(c.node.TextLen())}
}

// Visitor receives callbacks for every node of a tree in document order.
type Visitor interface {
	Enter(c *Cursor) Action
	Exit(c *Cursor) Action
}

// VisitorFuncs adapts plain functions to Visitor. Nil funcs return Continue.
type VisitorFuncs struct {
	EnterFunc func(c *Cursor) Action
	ExitFunc  func(c *Cursor) Action
}

func (v VisitorFuncs) Enter(c *Cursor) Action {
	if v.EnterFunc == nil {
		return Continue
	}
	return v.EnterFunc(c)
}

func (v VisitorFuncs) Exit(c *Cursor) Action {
	if v.ExitFunc == nil {
		return Continue
	}
	return v.ExitFunc(c)
}

// Walk visits n and its descendants depth first. It reports whether the
// walk ran to completion rather than being stopped.
func Walk(n Node, v Visitor) bool {
	c := &Cursor{}
	return walk(c, n, text.Index{}, 0, v)
}

func walk(c *Cursor, n Node, start text.Index, idx int, v Visitor) bool {
	c.node, c.start, c.childIdx = n, start, idx
	switch v.Enter(c) {
	case Stop:
		return false
	case SkipChildren:
	default:
		if r, ok := n.(*RuleNode); ok {
			c.parents = append(c.parents, r)
			pos := start
			for i, child := range r.Children {
				if !walk(c, child, pos, i, v) {
					return false
				}
				pos = pos.Add(child.TextLen())
			}
			c.parents = c.parents[:len(c.parents)-1]
		}
	}
	c.node, c.start, c.childIdx = n, start, idx
	return v.Exit(c) != Stop
}
