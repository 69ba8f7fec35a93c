package lsp

import (
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/cstkit/cst"
	"github.com/dhamidi/cstkit/grammar"
	"github.com/dhamidi/cstkit/parser"
	"github.com/dhamidi/cstkit/text"
)

const diagnosticSource = "cstkit"

// Document is the parsed content of an open text document.
type Document struct {
	Source string
	Output *parser.Output
	lines  *text.Lines
}

// Parse parses source as the start rule of lang.
func Parse(lang *grammar.Language, start cst.RuleKind, source string) *Document {
	return &Document{
		Source: source,
		Output: lang.Parse(start, source),
		lines:  text.NewLines(source),
	}
}

func (d *Document) position(idx text.Index) protocol.Position {
	line, character := d.lines.UTF16Position(idx)
	return protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(character)}
}

func (d *Document) protocolRange(r text.Range) protocol.Range {
	return protocol.Range{Start: d.position(r.Start), End: d.position(r.End)}
}

// Diagnostics converts the parse errors to protocol diagnostics.
func (d *Document) Diagnostics() []protocol.Diagnostic {
	diags := make([]protocol.Diagnostic, 0, len(d.Output.Errors))
	for _, e := range d.Output.Errors {
		severity := protocol.DiagnosticSeverity(e.Severity())
		source := diagnosticSource
		diags = append(diags, protocol.Diagnostic{
			Range:    d.protocolRange(e.Range()),
			Severity: &severity,
			Code:     &protocol.IntegerOrString{Value: e.Code()},
			Source:   &source,
			Message:  e.Message(),
		})
	}
	return diags
}

// PathAt describes the leaf under a zero-based line and UTF-16 column by
// the kinds of its ancestors, as in "Statement > LetStatement > Identifier".
// It also returns the range of the leaf.
func (d *Document) PathAt(line, character int) (string, protocol.Range, bool) {
	at := d.lines.IndexAt(line, character).Utf8
	inside := func(r text.Range) bool {
		return at >= r.Start.Utf8 && at < r.End.Utf8
	}

	var (
		stack []string
		path  string
		r     text.Range
		found bool
	)
	cst.Walk(d.Output.Tree, cst.VisitorFuncs{
		EnterFunc: func(c *cst.Cursor) cst.Action {
			cr := c.TextRange()
			if !inside(cr) {
				return cst.SkipChildren
			}
			switch n := c.Node().(type) {
			case *cst.RuleNode:
				stack = append(stack, string(n.Kind))
				return cst.Continue
			case *cst.TokenNode:
				path = strings.Join(append(stack, string(n.Kind)), " > ")
			case *cst.ErrorNode:
				path = strings.Join(append(stack, "error"), " > ")
			}
			r, found = cr, true
			return cst.Stop
		},
		ExitFunc: func(c *cst.Cursor) cst.Action {
			if _, ok := c.Node().(*cst.RuleNode); ok && inside(c.TextRange()) {
				stack = stack[:len(stack)-1]
			}
			return cst.Continue
		},
	})
	if !found {
		return "", protocol.Range{}, false
	}
	return path, d.protocolRange(r), true
}
