package parser

import (
	"fmt"

	"github.com/dhamidi/cstkit/cst"
	"github.com/dhamidi/cstkit/diagnostic"
	"github.com/dhamidi/cstkit/text"
)

// Output is the tree and the errors of one parse.
type Output struct {
	// Tree is a *cst.RuleNode, or a single *cst.ErrorNode covering the
	// whole input if nothing could be parsed.
	Tree   cst.Node
	Errors []*diagnostic.ParseError
}

// IsValid reports whether the input parsed without errors.
func (o *Output) IsValid() bool {
	return len(o.Errors) == 0
}

// Parse runs p over source. Input the root rule leaves unconsumed, apart
// from trailing trivia, is attached to the root as an error node. Parse
// always returns a tree whose text is exactly source.
func Parse(kind cst.RuleKind, p Parser, lexer Lexer, source string, opts ...StreamOption) *Output {
	s := NewStream(source, opts...)
	r := p(s)

	out := &Output{}
	defer func() {
		if at, ok := s.Overflow(); ok {
			out.Errors = append(out.Errors, &diagnostic.ParseError{
				TextRange: text.Range{Start: at, End: at},
				ErrorCode: diagnostic.CodeRecursionLimit,
				Detail:    fmt.Sprintf("Recursion limit of %d exceeded.", s.MaxDepth()),
			})
		}
	}()

	if r.IsNoMatch() {
		out.Tree = cst.NewError(source, r.Expected)
		out.Errors = collectErrors(out.Tree)
		return out
	}

	nodes := r.Flatten()
	root, ok := singleRule(nodes)
	if !ok {
		root = cst.NewRule(kind, nodes)
	}
	children := root.Children

	end := root.TextLen()
	s.SetPosition(end)
	if !s.AtEnd() {
		if trivia := lexer.LeadingTrivia(s); trivia.IsMatch() {
			children = concat(children, trivia.Flatten())
		} else {
			s.SetPosition(end)
		}
	}

	switch {
	case !s.AtEnd():
		children = concat(children, []cst.Node{cst.NewError(s.Remaining(), r.Expected)})
	case r.IsIncomplete() && len(cst.Errors(root)) == 0:
		children = concat(children, []cst.Node{cst.NewError("", r.Expected)})
	}
	if len(children) != len(root.Children) {
		root = cst.NewRule(root.Kind, children)
	}

	out.Tree = root
	out.Errors = collectErrors(root)
	return out
}

func singleRule(nodes []cst.Node) (*cst.RuleNode, bool) {
	if len(nodes) != 1 {
		return nil, false
	}
	r, ok := nodes[0].(*cst.RuleNode)
	return r, ok
}

func collectErrors(tree cst.Node) []*diagnostic.ParseError {
	var errs []*diagnostic.ParseError
	cst.Walk(tree, cst.VisitorFuncs{
		EnterFunc: func(c *cst.Cursor) cst.Action {
			if e, ok := c.Node().(*cst.ErrorNode); ok {
				errs = append(errs, diagnostic.NewParseError(c.TextRange(), e.Expected))
			}
			return cst.Continue
		},
	})
	return errs
}
