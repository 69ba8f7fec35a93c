// Package trace logs the rule calls of parses through commonlog.
package trace

import (
	"strings"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/cstkit/cst"
	"github.com/dhamidi/cstkit/parser"
	"github.com/dhamidi/cstkit/text"
)

// LoggerName is the commonlog logger Default writes to.
const LoggerName = "cstkit.parser"

// Logger is the part of commonlog.Logger a Tracer needs.
type Logger interface {
	Debugf(format string, args ...any)
}

// Tracer implements parser.Tracer. Every rule call is logged at debug
// level on entry and exit, indented by call depth.
type Tracer struct {
	log   Logger
	first func(cst.RuleKind) []cst.TokenKind
}

var _ parser.Tracer = (*Tracer)(nil)

type Option func(*Tracer)

// WithFirstSets adds the tokens a rule can start with to its entry line,
// as reported by first, typically (*grammar.Language).FirstSet.
func WithFirstSets(first func(cst.RuleKind) []cst.TokenKind) Option {
	return func(t *Tracer) { t.first = first }
}

func New(log Logger, opts ...Option) *Tracer {
	t := &Tracer{log: log}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Default returns a Tracer writing to the LoggerName logger.
func Default(opts ...Option) *Tracer {
	return New(commonlog.GetLogger(LoggerName), opts...)
}

func indent(depth int) string {
	return strings.Repeat("  ", max(depth-1, 0))
}

func (t *Tracer) Enter(rule cst.RuleKind, depth int, pos text.Index, preview string) {
	if t.first == nil {
		t.log.Debugf("%s> %s @%s %q", indent(depth), rule, pos, preview)
		return
	}
	first := make([]string, 0, 4)
	for _, k := range t.first(rule) {
		first = append(first, string(k))
	}
	t.log.Debugf("%s> %s @%s %q first=[%s]", indent(depth), rule, pos, preview, strings.Join(first, " "))
}

func (t *Tracer) Exit(rule cst.RuleKind, depth int, pos text.Index, result parser.ResultKind) {
	t.log.Debugf("%s< %s @%s %s", indent(depth), rule, pos, result)
}
