package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/cstkit/cst"
	"github.com/dhamidi/cstkit/diagnostic"
	"github.com/dhamidi/cstkit/text"
)

type JSONEncoder struct {
	w   io.Writer
	doc *Document
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(doc *Document) error {
	e.doc = doc
	if err := write(e.w, e); err != nil {
		return err
	}
	_, err := io.WriteString(e.w, "\n")
	return err
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	return json.MarshalIndent(e.buildDocument(), "", "  ")
}

type jsonDocument struct {
	File        string           `json:"file,omitempty"`
	Valid       bool             `json:"valid"`
	Tree        *jsonNode        `json:"tree"`
	Diagnostics []jsonDiagnostic `json:"diagnostics,omitempty"`
}

type jsonNode struct {
	Type     string      `json:"type"`
	Kind     string      `json:"kind,omitempty"`
	Span     jsonSpan    `json:"span"`
	Text     *string     `json:"text,omitempty"`
	Expected []string    `json:"expected,omitempty"`
	Children []*jsonNode `json:"children,omitempty"`
}

type jsonSpan struct {
	Start jsonPosition `json:"start"`
	End   jsonPosition `json:"end"`
}

type jsonPosition struct {
	Offset int `json:"offset"`
	Line   int `json:"line"`
	Column int `json:"column"`
}

type jsonDiagnostic struct {
	Severity string   `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Span     jsonSpan `json:"span"`
}

func (e *JSONEncoder) buildDocument() jsonDocument {
	out := e.doc.Output
	doc := jsonDocument{
		File:  e.doc.Filename,
		Valid: out.IsValid(),
		Tree:  e.buildNode(out.Tree, text.Index{}),
	}
	for _, d := range out.Errors {
		doc.Diagnostics = append(doc.Diagnostics, e.buildDiagnostic(d))
	}
	return doc
}

func (e *JSONEncoder) span(r text.Range) jsonSpan {
	lines := e.doc.Lines()
	start, end := lines.Position(r.Start), lines.Position(r.End)
	return jsonSpan{
		Start: jsonPosition{Offset: r.Start.Utf8, Line: start.Line, Column: start.Column},
		End:   jsonPosition{Offset: r.End.Utf8, Line: end.Line, Column: end.Column},
	}
}

func (e *JSONEncoder) buildNode(n cst.Node, start text.Index) *jsonNode {
	jn := &jsonNode{Span: e.span(text.Range{Start: start, End: start.Add(n.TextLen())})}

	switch n := n.(type) {
	case *cst.RuleNode:
		jn.Type = "rule"
		jn.Kind = string(n.Kind)
		pos := start
		for _, child := range n.Children {
			jn.Children = append(jn.Children, e.buildNode(child, pos))
			pos = pos.Add(child.TextLen())
		}
	case *cst.TokenNode:
		jn.Type = "token"
		jn.Kind = string(n.Kind)
		jn.Text = &n.Text
	case *cst.ErrorNode:
		jn.Type = "error"
		jn.Text = &n.Text
		for _, exp := range n.Expected {
			jn.Expected = append(jn.Expected, string(exp))
		}
	}

	return jn
}

func (e *JSONEncoder) buildDiagnostic(d diagnostic.Diagnostic) jsonDiagnostic {
	return jsonDiagnostic{
		Severity: d.Severity().String(),
		Code:     d.Code(),
		Message:  d.Message(),
		Span:     e.span(d.Range()),
	}
}
