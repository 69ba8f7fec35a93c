// Package format renders parse results for people and tools.
package format

import (
	"encoding"
	"fmt"
	"io"

	"github.com/dhamidi/cstkit/parser"
	"github.com/dhamidi/cstkit/text"
)

// Document is the result of parsing one source file.
type Document struct {
	Filename string
	Source   string
	Output   *parser.Output

	lines *text.Lines
}

// NewDocument pairs a parse output with the source it was parsed from.
func NewDocument(filename, source string, out *parser.Output) *Document {
	return &Document{Filename: filename, Source: source, Output: out}
}

// Lines returns the line index of the source.
func (d *Document) Lines() *text.Lines {
	if d.lines == nil {
		d.lines = text.NewLines(d.Source)
	}
	return d.lines
}

type Encoder interface {
	encoding.TextMarshaler
	Encode(doc *Document) error
}

// Names lists the formats New accepts.
var Names = []string{"tree", "ranges", "lines", "json", "report"}

// New returns the encoder for a format name.
func New(name string, w io.Writer) (Encoder, error) {
	switch name {
	case "tree":
		return NewTreeEncoder(w), nil
	case "ranges":
		return NewTreeEncoder(w, WithRanges()), nil
	case "lines":
		return NewLineEncoder(w), nil
	case "json":
		return NewJSONEncoder(w), nil
	case "report":
		return NewReportEncoder(w), nil
	}
	return nil, fmt.Errorf("unknown format: %s", name)
}

func write(w io.Writer, m encoding.TextMarshaler) error {
	text, err := m.MarshalText()
	if err != nil {
		return err
	}
	_, err = w.Write(text)
	return err
}
