package grammar

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/dhamidi/cstkit/cst"
	"github.com/dhamidi/cstkit/parser"
	"github.com/dhamidi/cstkit/scanner"
)

// Language is a grammar compiled for one version. It is immutable and
// may parse any number of inputs concurrently.
type Language struct {
	name    string
	version *semver.Version

	rules     map[cst.RuleKind]*parser.Parser
	ruleNames []cst.RuleKind
	context   map[cst.RuleKind]string
	lexers    map[string]*scanner.Lexer
	contexts  []string
	trivia    map[cst.TokenKind]bool
	first     map[cst.RuleKind][]cst.TokenKind

	tracer   parser.Tracer
	maxDepth int
}

func (l *Language) Name() string                  { return l.name }
func (l *Language) Version() *semver.Version      { return l.version }
func (l *Language) Rules() []cst.RuleKind         { return l.ruleNames }
func (l *Language) Contexts() []string            { return l.contexts }
func (l *Language) IsTrivia(k cst.TokenKind) bool { return l.trivia[k] }

// HasRule reports whether kind names a rule or precedence expression.
func (l *Language) HasRule(kind cst.RuleKind) bool {
	_, ok := l.rules[kind]
	return ok
}

// Lexer returns the lexer of a lexical context, or nil.
func (l *Language) Lexer(context string) *scanner.Lexer {
	return l.lexers[context]
}

// FirstSet returns the tokens a rule can start with, sorted by name.
func (l *Language) FirstSet(kind cst.RuleKind) []cst.TokenKind {
	return l.first[kind]
}

// Parse parses source as the rule kind. It panics if the language has no
// such rule.
func (l *Language) Parse(kind cst.RuleKind, source string) *parser.Output {
	p, ok := l.rules[kind]
	if !ok {
		panic(fmt.Sprintf("grammar: %s has no rule %s", l.name, kind))
	}
	opts := []parser.StreamOption{parser.WithMaxDepth(l.maxDepth)}
	if l.tracer != nil {
		opts = append(opts, parser.WithTracer(l.tracer))
	}
	return parser.Parse(kind, *p, l.lexers[l.context[kind]], source, opts...)
}
