package format

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dhamidi/cstkit/diagnostic"
)

// ReportEncoder writes every diagnostic with an excerpt of the source,
// followed by a one line summary.
type ReportEncoder struct {
	w   io.Writer
	doc *Document
}

func NewReportEncoder(w io.Writer) *ReportEncoder {
	return &ReportEncoder{w: w}
}

func (e *ReportEncoder) Encode(doc *Document) error {
	e.doc = doc
	return write(e.w, e)
}

func (e *ReportEncoder) MarshalText() ([]byte, error) {
	var buf bytes.Buffer
	errs := e.doc.Output.Errors
	for _, d := range errs {
		if err := diagnostic.Render(&buf, e.doc.Filename, e.doc.Lines(), d); err != nil {
			return nil, err
		}
		buf.WriteString("\n")
	}

	switch len(errs) {
	case 0:
		fmt.Fprintf(&buf, "%s: ok\n", e.doc.Filename)
	case 1:
		fmt.Fprintf(&buf, "%s: 1 error\n", e.doc.Filename)
	default:
		fmt.Fprintf(&buf, "%s: %d errors\n", e.doc.Filename, len(errs))
	}
	return buf.Bytes(), nil
}
