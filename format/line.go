package format

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dhamidi/cstkit/cst"
)

// LineEncoder writes one tab separated line per token and error of the
// tree, in source order:
//
//	token	Identifier	1:5	"x"
//	error	2:1	"}"	Expected Semicolon.
//
// Trivia is included so that the text column of all lines concatenated
// is the source.
type LineEncoder struct {
	w   io.Writer
	doc *Document
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(doc *Document) error {
	e.doc = doc
	return write(e.w, e)
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	lines := e.doc.Lines()

	cst.Walk(e.doc.Output.Tree, cst.VisitorFuncs{
		EnterFunc: func(c *cst.Cursor) cst.Action {
			pos := lines.Position(c.TextRange().Start)
			switch n := c.Node().(type) {
			case *cst.TokenNode:
				fmt.Fprintf(&sb, "token\t%s\t%s\t%s\n", n.Kind, pos, strconv.Quote(n.Text))
			case *cst.ErrorNode:
				fmt.Fprintf(&sb, "error\t%s\t%s\t%s\n", pos, strconv.Quote(n.Text), e.message(c))
			}
			return cst.Continue
		},
	})

	return []byte(sb.String()), nil
}

// message finds the diagnostic reported for the error node under c.
func (e *LineEncoder) message(c *cst.Cursor) string {
	r := c.TextRange()
	for _, d := range e.doc.Output.Errors {
		if d.Range() == r {
			return d.Message()
		}
	}
	return ""
}
