package parser

import (
	"unicode/utf8"

	"github.com/dhamidi/cstkit/cst"
	"github.com/dhamidi/cstkit/text"
)

// DefaultMaxDepth bounds the nesting of rule calls during one parse.
const DefaultMaxDepth = 1024

// StreamOption configures a Stream.
type StreamOption func(*Stream)

// WithMaxDepth sets the maximum nesting of rule calls.
func WithMaxDepth(depth int) StreamOption {
	return func(s *Stream) {
		s.maxDepth = depth
	}
}

// WithTracer reports rule entry and exit to t.
func WithTracer(t Tracer) StreamOption {
	return func(s *Stream) {
		s.tracer = t
	}
}

// Stream is a cursor over the source text of one parse. Saving and
// restoring the position is a plain value copy.
type Stream struct {
	source   string
	pos      text.Index
	closers  []cst.TokenKind
	depth    int
	maxDepth int
	tracer   Tracer

	overflowed bool
	overflowAt text.Index
}

// NewStream returns a stream positioned at the start of source.
func NewStream(source string, opts ...StreamOption) *Stream {
	s := &Stream{source: source, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Stream) Source() string           { return s.source }
func (s *Stream) Position() text.Index     { return s.pos }
func (s *Stream) SetPosition(p text.Index) { s.pos = p }
func (s *Stream) AtEnd() bool              { return s.pos.Utf8 >= len(s.source) }

// Remaining returns the unread part of the source.
func (s *Stream) Remaining() string { return s.source[s.pos.Utf8:] }

// Content returns the source text covered by r.
func (s *Stream) Content(r text.Range) string {
	return s.source[r.Start.Utf8:r.End.Utf8]
}

// Peek returns the next rune without consuming it.
func (s *Stream) Peek() (rune, bool) {
	if s.AtEnd() {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(s.source[s.pos.Utf8:])
	return r, true
}

// Next consumes and returns the next rune. Invalid bytes are consumed one
// at a time and returned as utf8.RuneError.
func (s *Stream) Next() (rune, bool) {
	if s.AtEnd() {
		return 0, false
	}
	r, size := utf8.DecodeRuneInString(s.source[s.pos.Utf8:])
	s.pos = s.pos.Advance(r, size)
	return r, true
}

// OpenDelim records that close is expected to end the construct being
// parsed. The returned func removes it again.
func (s *Stream) OpenDelim(close cst.TokenKind) func() {
	s.closers = append(s.closers, close)
	n := len(s.closers)
	return func() {
		s.closers = s.closers[:n-1]
	}
}

// ClosingDelimiters returns the closers of all delimited constructs
// currently open, innermost last.
func (s *Stream) ClosingDelimiters() []cst.TokenKind {
	return s.closers
}

// Enter records a nested rule call. It returns false when the maximum depth
// would be exceeded; the caller must then fail without calling Leave.
func (s *Stream) Enter() bool {
	if s.depth >= s.maxDepth {
		if !s.overflowed {
			s.overflowed, s.overflowAt = true, s.pos
		}
		return false
	}
	s.depth++
	return true
}

// Leave ends a rule call started by a successful Enter.
func (s *Stream) Leave() { s.depth-- }

// Depth returns the current nesting of rule calls.
func (s *Stream) Depth() int { return s.depth }

// MaxDepth returns the configured nesting limit.
func (s *Stream) MaxDepth() int { return s.maxDepth }

// Overflow reports whether the depth limit was hit, and where first.
func (s *Stream) Overflow() (text.Index, bool) {
	return s.overflowAt, s.overflowed
}

// Tracer returns the tracer the stream reports to, or nil.
func (s *Stream) Tracer() Tracer { return s.tracer }
