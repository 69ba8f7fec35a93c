package format

import (
	"io"

	"github.com/dhamidi/cstkit/cst"
)

// TreeEncoder writes the tree as an indented outline.
type TreeEncoder struct {
	w      io.Writer
	doc    *Document
	ranges bool
}

type TreeOption func(*TreeEncoder)

// WithRanges annotates every node with its byte range.
func WithRanges() TreeOption {
	return func(e *TreeEncoder) { e.ranges = true }
}

func NewTreeEncoder(w io.Writer, opts ...TreeOption) *TreeEncoder {
	e := &TreeEncoder{w: w}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *TreeEncoder) Encode(doc *Document) error {
	e.doc = doc
	return write(e.w, e)
}

func (e *TreeEncoder) MarshalText() ([]byte, error) {
	if e.ranges {
		return []byte(cst.DumpWithRanges(e.doc.Output.Tree)), nil
	}
	return []byte(cst.Dump(e.doc.Output.Tree)), nil
}
