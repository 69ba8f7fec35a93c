// Package diagnostic describes problems found in source text.
package diagnostic

import (
	"slices"
	"strings"

	"github.com/dhamidi/cstkit/cst"
	"github.com/dhamidi/cstkit/text"
)

// Severity values match the ones used by the language server protocol.
type Severity int

const (
	Error Severity = iota + 1
	Warning
	Information
	Hint
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Information:
		return "info"
	case Hint:
		return "hint"
	}
	return "unknown"
}

// Stable diagnostic codes.
const (
	CodeParseError     = "ParseError"
	CodeRecursionLimit = "RecursionLimitExceeded"
)

// Diagnostic is a problem attached to a range of source text.
type Diagnostic interface {
	Severity() Severity
	Range() text.Range
	Code() string
	Message() string
}

// ParseError reports a span of input the parser could not make sense of.
type ParseError struct {
	TextRange text.Range
	// Expected lists the tokens that would have allowed progress.
	Expected  []cst.TokenKind
	ErrorCode string
	// Detail replaces the generated message when set.
	Detail string
}

// NewParseError returns a ParseError covering r.
func NewParseError(r text.Range, expected []cst.TokenKind) *ParseError {
	return &ParseError{TextRange: r, Expected: expected, ErrorCode: CodeParseError}
}

func (e *ParseError) Severity() Severity { return Error }
func (e *ParseError) Range() text.Range  { return e.TextRange }
func (e *ParseError) Code() string       { return e.ErrorCode }

// Message renders "Expected end of file." when nothing was expected, and
// otherwise lists the expected tokens sorted and without duplicates.
func (e *ParseError) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	return ExpectedMessage(e.Expected)
}

func (e *ParseError) Error() string {
	return e.TextRange.String() + ": " + e.Message()
}

// ExpectedMessage formats a list of expected token kinds.
func ExpectedMessage(expected []cst.TokenKind) string {
	if len(expected) == 0 {
		return "Expected end of file."
	}
	names := make([]string, 0, len(expected))
	for _, k := range expected {
		names = append(names, string(k))
	}
	slices.Sort(names)
	names = slices.Compact(names)
	return "Expected " + strings.Join(names, " or ") + "."
}
