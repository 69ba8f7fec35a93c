// Package ebnf builds grammars from files written in the EBNF notation of
// golang.org/x/exp/ebnf.
//
// Productions named with a lower case first letter are lexical. The ones
// that syntactic productions refer to, and the ones listed as trivia,
// become tokens; the others become fragments. Capitalized productions
// become rules. A string literal inside a rule becomes a token named by
// its quoted text, or a keyword if it starts with a letter and an
// identifier token is configured.
//
// EBNF has no notation for delimited, terminated or separated lists, so
// they are recognised from the shape of sequences: a configured opening
// literal up to its closing literal, a sequence ending in a configured
// terminator, and x { "sep" x }.
package ebnf

import (
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	xebnf "golang.org/x/exp/ebnf"

	"github.com/dhamidi/cstkit/grammar"
	"github.com/dhamidi/cstkit/scanner"
)

// Context is the name of the single lexical context of loaded grammars.
const Context = "Default"

type config struct {
	name        string
	versions    []string
	trivia      []string
	identifier  string
	delimiters  map[string]string
	terminators []string
}

// Option configures how an EBNF grammar is converted.
type Option func(*config)

// WithName sets the grammar name. It defaults to the file name without
// its extension.
func WithName(name string) Option {
	return func(c *config) { c.name = name }
}

// WithVersions lists the versions the grammar may be compiled for.
func WithVersions(versions ...string) Option {
	return func(c *config) { c.versions = versions }
}

// WithTrivia names the lexical productions that are trivia.
func WithTrivia(names ...string) Option {
	return func(c *config) { c.trivia = names }
}

// WithIdentifier names the lexical production keywords are carved out of.
func WithIdentifier(name string) Option {
	return func(c *config) { c.identifier = name }
}

// WithDelimiters registers pairs of opening and closing literals, as in
// WithDelimiters("(", ")", "[", "]").
func WithDelimiters(pairs ...string) Option {
	return func(c *config) {
		for i := 0; i+1 < len(pairs); i += 2 {
			c.delimiters[pairs[i]] = pairs[i+1]
		}
	}
}

// WithTerminators registers literals that end statements.
func WithTerminators(literals ...string) Option {
	return func(c *config) { c.terminators = literals }
}

// LiteralKind is the token kind of a string literal used in a rule.
func LiteralKind(text string) string {
	return strconv.Quote(text)
}

// Load reads and converts the grammar in filename.
func Load(filename string, opts ...Option) (*grammar.Grammar, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open grammar: %w", err)
	}
	defer f.Close()

	return Parse(filename, f, opts...)
}

// Parse reads and converts a grammar from r.
func Parse(filename string, r io.Reader, opts ...Option) (*grammar.Grammar, error) {
	src, err := xebnf.Parse(filename, r)
	if err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}

	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return Convert(src, append([]Option{WithName(base)}, opts...)...)
}

// Verify checks that every production of the grammar in r is defined and
// reachable from start.
func Verify(filename string, r io.Reader, start string) error {
	src, err := xebnf.Parse(filename, r)
	if err != nil {
		return err
	}
	return xebnf.Verify(src, start)
}

type converter struct {
	cfg config
	src xebnf.Grammar

	tokens   map[string]bool
	literals map[string]bool
	inlining map[string]bool
	errs     grammar.ErrorList
}

// Convert turns a parsed EBNF grammar into a grammar. Problems are
// reported as a grammar.ErrorList.
func Convert(src xebnf.Grammar, opts ...Option) (*grammar.Grammar, error) {
	c := &converter{
		cfg:      config{name: "Grammar", delimiters: map[string]string{}},
		src:      src,
		tokens:   map[string]bool{},
		literals: map[string]bool{},
		inlining: map[string]bool{},
	}
	for _, opt := range opts {
		opt(&c.cfg)
	}

	names := slices.Sorted(maps.Keys(src))
	c.collectTokens(names)

	var items []grammar.Item
	for _, name := range names {
		if it := c.item(name, src[name].Expr); it != nil {
			items = append(items, it)
		}
	}
	items = append(items, c.literalItems()...)

	g := &grammar.Grammar{
		Name:     c.cfg.name,
		Versions: c.cfg.versions,
		Contexts: []grammar.Context{{Name: Context, Items: items}},
	}
	if len(c.cfg.trivia) > 0 {
		var alts []grammar.Parser
		for _, name := range c.cfg.trivia {
			alts = append(alts, grammar.Tok(name))
		}
		g.LeadingTrivia = grammar.ZeroOrMore{Body: grammar.Alt(alts...)}
	}

	if len(c.errs) > 0 {
		return nil, c.errs
	}
	return g, nil
}

func (c *converter) fail(item, format string, args ...any) {
	c.errs = append(c.errs, &grammar.Error{Item: item, Message: fmt.Sprintf(format, args...)})
}

// isLexical follows x/exp/ebnf: a production is lexical unless its name
// starts with an upper case letter.
func isLexical(name string) bool {
	ch, _ := utf8.DecodeRuneInString(name)
	return !unicode.IsUpper(ch)
}

// collectTokens finds the lexical productions used as tokens and the
// literals used by rules.
func (c *converter) collectTokens(names []string) {
	for _, name := range c.cfg.trivia {
		c.markToken(name, "trivia")
	}
	if c.cfg.identifier != "" {
		c.markToken(c.cfg.identifier, "identifier")
	}

	var walk func(x xebnf.Expression)
	walk = func(x xebnf.Expression) {
		switch x := x.(type) {
		case *xebnf.Name:
			if isLexical(x.String) {
				c.tokens[x.String] = true
			}
		case *xebnf.Token:
			c.literals[x.String] = true
		case xebnf.Sequence:
			for _, child := range x {
				walk(child)
			}
		case xebnf.Alternative:
			for _, child := range x {
				walk(child)
			}
		case *xebnf.Group:
			walk(x.Body)
		case *xebnf.Option:
			walk(x.Body)
		case *xebnf.Repetition:
			walk(x.Body)
		}
	}
	for _, name := range names {
		if !isLexical(name) {
			walk(c.src[name].Expr)
		}
	}
}

func (c *converter) markToken(name, role string) {
	switch {
	case c.src[name] == nil:
		c.fail(name, "%s production is not defined", role)
	case !isLexical(name):
		c.fail(name, "%s production must be lexical", role)
	default:
		c.tokens[name] = true
	}
}

func (c *converter) item(name string, x xebnf.Expression) grammar.Item {
	if x == nil {
		c.fail(name, "empty production")
		return nil
	}
	switch {
	case !isLexical(name):
		return &grammar.RuleItem{Name: name, Body: c.parser(name, x)}
	case slices.Contains(c.cfg.trivia, name):
		return &grammar.TriviaItem{Name: name, Scanner: c.scanner(name, x)}
	case c.tokens[name]:
		return &grammar.TokenItem{Name: name, Definitions: []grammar.TokenDefinition{{Scanner: c.scanner(name, x)}}}
	}
	return &grammar.FragmentItem{Name: name, Scanner: c.scanner(name, x)}
}

func startsWithLetter(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLetter(r) || r == '_'
}

func (c *converter) literalItems() []grammar.Item {
	var items []grammar.Item
	for _, text := range slices.Sorted(maps.Keys(c.literals)) {
		kind := LiteralKind(text)
		if c.cfg.identifier != "" && startsWithLetter(text) {
			items = append(items, &grammar.KeywordItem{
				Name:        kind,
				Identifier:  c.cfg.identifier,
				Definitions: []grammar.KeywordDefinition{{Value: scanner.KeywordAtom{Text: text}}},
			})
			continue
		}
		items = append(items, &grammar.TokenItem{
			Name:        kind,
			Definitions: []grammar.TokenDefinition{{Scanner: grammar.Atom{Text: text}}},
		})
	}
	return items
}

func (c *converter) scanner(owner string, x xebnf.Expression) grammar.Scanner {
	switch x := x.(type) {
	case *xebnf.Token:
		if x.String == "" {
			c.fail(owner, "empty string at %s", x.Pos())
		}
		return grammar.Atom{Text: x.String}
	case *xebnf.Range:
		from, n := utf8.DecodeRuneInString(x.Begin.String)
		to, m := utf8.DecodeRuneInString(x.End.String)
		if n != len(x.Begin.String) || m != len(x.End.String) || n == 0 || m == 0 {
			c.fail(owner, "range bounds must be single characters at %s", x.Pos())
		}
		return grammar.CharRange{From: from, To: to}
	case xebnf.Sequence:
		items := make([]grammar.Scanner, len(x))
		for i, child := range x {
			items[i] = c.scanner(owner, child)
		}
		return grammar.ScanSequence{Items: items}
	case xebnf.Alternative:
		items := make([]grammar.Scanner, len(x))
		for i, child := range x {
			items[i] = c.scanner(owner, child)
		}
		return grammar.ScanChoice{Items: items}
	case *xebnf.Group:
		return c.scanner(owner, x.Body)
	case *xebnf.Option:
		return grammar.ScanOptional{Body: c.scanner(owner, x.Body)}
	case *xebnf.Repetition:
		return grammar.ScanZeroOrMore{Body: c.scanner(owner, x.Body)}
	case *xebnf.Name:
		return c.lexicalRef(owner, x)
	}
	c.fail(owner, "unsupported expression %T", x)
	return grammar.Atom{}
}

// lexicalRef refers to a fragment by name. Tokens have no name a scanner
// can refer to, so their definition is inlined.
func (c *converter) lexicalRef(owner string, x *xebnf.Name) grammar.Scanner {
	name := x.String
	prod := c.src[name]
	switch {
	case prod == nil:
		c.fail(owner, "reference to undefined production %s at %s", name, x.Pos())
		return grammar.Atom{}
	case !isLexical(name):
		c.fail(owner, "lexical production refers to rule %s at %s", name, x.Pos())
		return grammar.Atom{}
	case !c.tokens[name]:
		return grammar.Fragment{Name: name}
	case c.inlining[name] || name == owner:
		c.fail(owner, "token %s refers to itself", name)
		return grammar.Atom{}
	}
	c.inlining[name] = true
	defer delete(c.inlining, name)
	return c.scanner(name, prod.Expr)
}

func (c *converter) parser(owner string, x xebnf.Expression) grammar.Parser {
	switch x := x.(type) {
	case *xebnf.Name:
		if !isLexical(x.String) {
			return grammar.Ref{Name: x.String}
		}
		if slices.Contains(c.cfg.trivia, x.String) {
			c.fail(owner, "rule refers to trivia %s at %s", x.String, x.Pos())
		}
		return grammar.Tok(x.String)
	case *xebnf.Token:
		return grammar.Tok(LiteralKind(x.String))
	case xebnf.Sequence:
		return c.sequence(owner, x)
	case xebnf.Alternative:
		items := make([]grammar.Parser, len(x))
		for i, child := range x {
			items[i] = c.parser(owner, child)
		}
		return grammar.Alt(items...)
	case *xebnf.Group:
		return c.parser(owner, x.Body)
	case *xebnf.Option:
		return grammar.Optional{Body: c.parser(owner, x.Body)}
	case *xebnf.Repetition:
		return grammar.ZeroOrMore{Body: c.parser(owner, x.Body)}
	case *xebnf.Range:
		c.fail(owner, "character range in a rule at %s", x.Pos())
		return grammar.Sequence{}
	}
	c.fail(owner, "unsupported expression %T", x)
	return grammar.Sequence{}
}

func literal(x xebnf.Expression) (string, bool) {
	t, ok := x.(*xebnf.Token)
	if !ok {
		return "", false
	}
	return t.String, true
}

// sequence converts a sequence, recognising a trailing terminator first.
func (c *converter) sequence(owner string, items xebnf.Sequence) grammar.Parser {
	if n := len(items); n > 1 {
		if text, ok := literal(items[n-1]); ok && slices.Contains(c.cfg.terminators, text) {
			return grammar.TerminatedBy{
				Body:       c.group(owner, items[:n-1]),
				Terminator: LiteralKind(text),
			}
		}
	}
	return c.group(owner, items)
}

// group converts the items of a sequence, recognising delimited and
// separated parts.
func (c *converter) group(owner string, items []xebnf.Expression) grammar.Parser {
	var out []grammar.Parser
	for i := 0; i < len(items); i++ {
		if end, ok := c.closing(items, i); ok {
			open, _ := literal(items[i])
			out = append(out, grammar.DelimitedBy{
				Open:  LiteralKind(open),
				Body:  c.sequence(owner, items[i+1:end]),
				Close: LiteralKind(c.cfg.delimiters[open]),
			})
			i = end
			continue
		}
		if i+1 < len(items) {
			if sep, ok := separator(items[i], items[i+1]); ok {
				out = append(out, grammar.SeparatedBy{
					Body:      c.parser(owner, items[i]),
					Separator: LiteralKind(sep),
				})
				i++
				continue
			}
		}
		out = append(out, c.parser(owner, items[i]))
	}
	if len(out) == 1 {
		return out[0]
	}
	return grammar.Seq(out...)
}

// closing returns the index of the literal closing the delimiter opened at
// items[i], if the delimiters enclose at least one item.
func (c *converter) closing(items []xebnf.Expression, i int) (int, bool) {
	open, ok := literal(items[i])
	if !ok {
		return 0, false
	}
	closer, ok := c.cfg.delimiters[open]
	if !ok {
		return 0, false
	}
	depth := 0
	for j := i + 1; j < len(items); j++ {
		text, _ := literal(items[j])
		switch {
		case text == open && text != closer:
			depth++
		case text == closer && depth > 0:
			depth--
		case text == closer:
			return j, j > i+1
		}
	}
	return 0, false
}

// separator recognises x { "sep" x }.
func separator(x, next xebnf.Expression) (string, bool) {
	rep, ok := next.(*xebnf.Repetition)
	if !ok {
		return "", false
	}
	body := rep.Body
	if g, ok := body.(*xebnf.Group); ok {
		body = g.Body
	}
	seq, ok := body.(xebnf.Sequence)
	if !ok || len(seq) != 2 {
		return "", false
	}
	sep, ok := literal(seq[0])
	if !ok || render(seq[1]) != render(x) {
		return "", false
	}
	return sep, true
}

// render prints an expression without positions so that two occurrences
// can be compared.
func render(x xebnf.Expression) string {
	var sb strings.Builder
	var walk func(x xebnf.Expression)
	list := func(items []xebnf.Expression, sep string) {
		for i, child := range items {
			if i > 0 {
				sb.WriteString(sep)
			}
			walk(child)
		}
	}
	walk = func(x xebnf.Expression) {
		switch x := x.(type) {
		case *xebnf.Name:
			sb.WriteString(x.String)
		case *xebnf.Token:
			sb.WriteString(strconv.Quote(x.String))
		case *xebnf.Range:
			fmt.Fprintf(&sb, "%q…%q", x.Begin.String, x.End.String)
		case xebnf.Sequence:
			list(x, " ")
		case xebnf.Alternative:
			list(x, " | ")
		case *xebnf.Group:
			sb.WriteString("(")
			walk(x.Body)
			sb.WriteString(")")
		case *xebnf.Option:
			sb.WriteString("[")
			walk(x.Body)
			sb.WriteString("]")
		case *xebnf.Repetition:
			sb.WriteString("{")
			walk(x.Body)
			sb.WriteString("}")
		}
	}
	walk(x)
	return sb.String()
}
