package grammar

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/dhamidi/cstkit/cst"
	"github.com/dhamidi/cstkit/parser"
	"github.com/dhamidi/cstkit/scanner"
	"github.com/dhamidi/cstkit/version"
)

// Option configures a compiled Language.
type Option func(*Language)

// WithTracer reports every rule call of every parse to t.
func WithTracer(t parser.Tracer) Option {
	return func(l *Language) {
		l.tracer = t
	}
}

// WithMaxDepth bounds the nesting of rule calls in one parse.
func WithMaxDepth(depth int) Option {
	return func(l *Language) {
		l.maxDepth = depth
	}
}

type compiler struct {
	g     *Grammar
	ix    *index
	flags version.Flags
	lang  *Language

	fragments map[string]scanner.Scanner
	trivia    []scanner.Token
	// tokens without a definition in the target version
	disabled map[string]bool
}

// Compile builds the parser of g for the target version. Mistakes in g
// are reported as an ErrorList; an invalid or unknown version as an
// *Error.
func Compile(g *Grammar, target string, opts ...Option) (*Language, error) {
	ix, errs := validate(g)
	if err := errs.err(); err != nil {
		return nil, err
	}

	v, err := semver.NewVersion(target)
	if err != nil {
		return nil, &Error{Item: g.Name, Message: fmt.Sprintf("invalid version %q: %v", target, err)}
	}
	if len(g.Versions) > 0 {
		known, err := knownVersion(g.Versions, v)
		if err != nil {
			return nil, &Error{Item: g.Name, Message: err.Error()}
		}
		if !known {
			return nil, &Error{Item: g.Name, Message: fmt.Sprintf("unknown version %s", v)}
		}
	}

	lang := &Language{
		name:     g.Name,
		version:  v,
		rules:    map[cst.RuleKind]*parser.Parser{},
		context:  map[cst.RuleKind]string{},
		lexers:   map[string]*scanner.Lexer{},
		trivia:   map[cst.TokenKind]bool{},
		maxDepth: parser.DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(lang)
	}

	c := &compiler{
		g:         g,
		ix:        ix,
		flags:     version.Compile(v, referencedVersions(g)),
		lang:      lang,
		fragments: map[string]scanner.Scanner{},
		disabled:  map[string]bool{},
	}

	for _, ctx := range g.Contexts {
		for _, it := range ctx.Items {
			switch it := it.(type) {
			case *TriviaItem:
				c.trivia = append(c.trivia, scanner.Token{Kind: cst.TokenKind(it.Name), Scanner: c.scanner(it.Scanner)})
				lang.trivia[cst.TokenKind(it.Name)] = true
			case *RuleItem, *PrecedenceItem:
				kind := cst.RuleKind(it.ItemName())
				lang.rules[kind] = new(parser.Parser)
				lang.context[kind] = ctx.Name
				lang.ruleNames = append(lang.ruleNames, kind)
			}
		}
	}

	for _, ctx := range g.Contexts {
		lexer, err := c.lexer(ctx)
		if err != nil {
			return nil, &Error{Item: ctx.Name, Message: err.Error()}
		}
		lexer.SetTrivia(c.parser(lexer, g.LeadingTrivia, true), c.parser(lexer, g.TrailingTrivia, true))
		lang.lexers[ctx.Name] = lexer
		lang.contexts = append(lang.contexts, ctx.Name)
	}

	for _, ctx := range g.Contexts {
		lexer := lang.lexers[ctx.Name]
		for _, it := range ctx.Items {
			switch it := it.(type) {
			case *RuleItem:
				*lang.rules[cst.RuleKind(it.Name)] = c.rule(lexer, it)
			case *PrecedenceItem:
				*lang.rules[cst.RuleKind(it.Name)] = c.precedence(lexer, it)
			}
		}
	}

	lang.first = c.firstSets()
	return lang, nil
}

func knownVersion(versions []string, v *semver.Version) (bool, error) {
	for _, s := range versions {
		known, err := semver.NewVersion(s)
		if err != nil {
			return false, fmt.Errorf("invalid version %q in version list: %w", s, err)
		}
		if known.Equal(v) {
			return true, nil
		}
	}
	return false, nil
}

func disabled(*parser.Stream) parser.Result { return parser.Disabled() }

// active reports whether p takes part in the target version. Only
// Versioned nodes can be inactive.
func (c *compiler) active(p Parser) bool {
	if v, ok := p.(Versioned); ok {
		return c.flags.Enabled(v.Enabled)
	}
	return true
}

func (c *compiler) rule(lexer *scanner.Lexer, it *RuleItem) parser.Parser {
	if !c.flags.Enabled(it.Enabled) {
		return disabled
	}
	return parser.Rule(cst.RuleKind(it.Name), c.parser(lexer, it.Body, false))
}

func (c *compiler) precedence(lexer *scanner.Lexer, it *PrecedenceItem) parser.Parser {
	if !c.flags.Enabled(it.Enabled) {
		return disabled
	}
	levels := make([]parser.Level, len(it.Levels))
	for i, level := range it.Levels {
		levels[i].Kind = cst.RuleKind(level.Name)
		for _, op := range level.Operators {
			if !c.flags.Enabled(op.Enabled) {
				continue
			}
			levels[i].Operators = append(levels[i].Operators, parser.Operator{
				Model:  op.Model,
				Parser: c.parser(lexer, op.Body, false),
			})
		}
	}
	kind := cst.RuleKind(it.Name)
	return parser.Guard(kind, parser.Precedence(kind, levels, c.parser(lexer, it.Primary, false)))
}

// parser builds the closure for p. Trivia parsers scan their tokens
// without trivia of their own.
func (c *compiler) parser(lexer *scanner.Lexer, p Parser, trivia bool) parser.Parser {
	switch p := p.(type) {
	case nil:
		return nil
	case Sequence:
		children := c.parsers(lexer, p.Items, trivia)
		if len(children) == 0 {
			return func(*parser.Stream) parser.Result { return parser.Match(nil, nil) }
		}
		return parser.Sequence(children...)
	case Choice:
		children := c.parsers(lexer, p.Items, trivia)
		if len(children) == 0 {
			return disabled
		}
		return parser.Choice(children...)
	case Optional:
		return parser.Optional(c.parser(lexer, p.Body, trivia))
	case ZeroOrMore:
		return parser.ZeroOrMore(c.parser(lexer, p.Body, trivia))
	case OneOrMore:
		return parser.OneOrMore(c.parser(lexer, p.Body, trivia))
	case Versioned:
		if !c.flags.Enabled(p.Enabled) {
			return disabled
		}
		return c.parser(lexer, p.Body, trivia)
	case SeparatedBy:
		return parser.SeparatedBy(lexer, c.parser(lexer, p.Body, trivia), cst.TokenKind(p.Separator))
	case DelimitedBy:
		return parser.DelimitedBy(lexer, cst.TokenKind(p.Open), c.parser(lexer, p.Body, trivia), cst.TokenKind(p.Close))
	case TerminatedBy:
		return parser.TerminatedBy(lexer, c.parser(lexer, p.Body, trivia), cst.TokenKind(p.Terminator))
	case Token:
		if c.disabled[p.Name] {
			return disabled
		}
		kind := cst.TokenKind(p.Name)
		if trivia {
			return func(s *parser.Stream) parser.Result {
				return lexer.ParseToken(s, kind)
			}
		}
		return parser.Token(lexer, kind)
	case Ref:
		slot := c.lang.rules[cst.RuleKind(p.Name)]
		return func(s *parser.Stream) parser.Result {
			return (*slot)(s)
		}
	}
	panic(fmt.Sprintf("grammar: unknown parser node %T", p))
}

// parsers builds the children of a sequence or choice, leaving out those
// that do not exist in the target version.
func (c *compiler) parsers(lexer *scanner.Lexer, items []Parser, trivia bool) []parser.Parser {
	var out []parser.Parser
	for _, p := range items {
		if c.active(p) {
			out = append(out, c.parser(lexer, p, trivia))
		}
	}
	return out
}

func (c *compiler) scanner(sc Scanner) scanner.Scanner {
	switch sc := sc.(type) {
	case Atom:
		return scanner.Chars(sc.Text)
	case CharRange:
		return scanner.Range(sc.From, sc.To)
	case NoneOf:
		return scanner.NoneOf(sc.Chars)
	case ScanSequence:
		return scanner.Sequence(c.scanners(sc.Items)...)
	case ScanChoice:
		if atoms, ok := literalAtoms(sc); ok {
			return scanner.Literals(atoms...)
		}
		return scanner.Choice(c.scanners(sc.Items)...)
	case ScanOptional:
		return scanner.Optional(c.scanner(sc.Body))
	case ScanZeroOrMore:
		return scanner.ZeroOrMore(c.scanner(sc.Body))
	case ScanOneOrMore:
		return scanner.OneOrMore(c.scanner(sc.Body))
	case NotFollowedBy:
		return scanner.NotFollowedBy(c.scanner(sc.Body), c.scanner(sc.Lookahead))
	case Fragment:
		return c.fragment(sc.Name)
	}
	panic(fmt.Sprintf("grammar: unknown scanner node %T", sc))
}

func (c *compiler) scanners(items []Scanner) []scanner.Scanner {
	out := make([]scanner.Scanner, len(items))
	for i, sc := range items {
		out[i] = c.scanner(sc)
	}
	return out
}

func (c *compiler) fragment(name string) scanner.Scanner {
	if sc, ok := c.fragments[name]; ok {
		return sc
	}
	f := c.ix.items[name].(*FragmentItem)
	sc := scanner.Never()
	if c.flags.Enabled(f.Enabled) {
		sc = c.scanner(f.Scanner)
	}
	c.fragments[name] = sc
	return sc
}

// literalAtoms returns the texts of a scanner made only of atoms.
func literalAtoms(sc Scanner) ([]string, bool) {
	switch sc := sc.(type) {
	case Atom:
		return []string{sc.Text}, true
	case ScanChoice:
		var out []string
		for _, child := range sc.Items {
			atoms, ok := literalAtoms(child)
			if !ok {
				return nil, false
			}
			out = append(out, atoms...)
		}
		return out, len(out) > 0
	}
	return nil, false
}

// lexer collects the tokens, keywords and delimiters of one lexical
// context as they are in the target version.
func (c *compiler) lexer(ctx Context) (*scanner.Lexer, error) {
	cfg := scanner.Config{
		Name:       ctx.Name,
		Delimiters: map[cst.TokenKind]cst.TokenKind{},
	}

	identifier := ""
	for _, it := range ctx.Items {
		if kw, ok := it.(*KeywordItem); ok {
			identifier = kw.Identifier
		}
	}

	for _, it := range ctx.Items {
		switch it := it.(type) {
		case *TokenItem:
			kind := cst.TokenKind(it.Name)
			var scanners []scanner.Scanner
			enabled := false
			for _, def := range it.Definitions {
				if !c.flags.Enabled(def.Enabled) {
					continue
				}
				enabled = true
				if atoms, ok := literalAtoms(def.Scanner); ok && it.Name != identifier {
					for _, text := range atoms {
						cfg.Literals = append(cfg.Literals, scanner.Literal{Text: text, Kind: kind})
					}
					continue
				}
				scanners = append(scanners, c.scanner(def.Scanner))
			}
			if !enabled {
				c.disabled[it.Name] = true
				continue
			}
			if len(scanners) == 0 {
				continue
			}
			sc := scanners[0]
			if len(scanners) > 1 {
				sc = scanner.Choice(scanners...)
			}
			if it.Name == identifier {
				cfg.Identifier, cfg.IdentifierScanner = kind, sc
				continue
			}
			cfg.Tokens = append(cfg.Tokens, scanner.Token{Kind: kind, Scanner: sc})

		case *KeywordItem:
			kind := cst.TokenKind(it.Name)
			for _, def := range it.Definitions {
				enabled := c.flags.Enabled(def.Enabled)
				reserved := c.flags.Enabled(def.Reserved)
				for _, text := range scanner.CollectVariations(def.Value) {
					if text == "" {
						continue
					}
					cfg.Keywords = append(cfg.Keywords, scanner.Keyword{Text: text, Kind: kind, Enabled: enabled, Reserved: reserved})
				}
			}

		case *RuleItem:
			collectDelimiters(it.Body, cfg.Delimiters)
		case *PrecedenceItem:
			collectDelimiters(it.Primary, cfg.Delimiters)
			for _, level := range it.Levels {
				for _, op := range level.Operators {
					collectDelimiters(op.Body, cfg.Delimiters)
				}
			}
		}
	}
	cfg.Tokens = append(cfg.Tokens, c.trivia...)

	return scanner.NewLexer(cfg)
}

func collectDelimiters(p Parser, delims map[cst.TokenKind]cst.TokenKind) {
	eachParser(p, func(p Parser) {
		if d, ok := p.(DelimitedBy); ok {
			delims[cst.TokenKind(d.Open)] = cst.TokenKind(d.Close)
		}
	})
}

// eachParser calls fn for p and all nodes below it.
func eachParser(p Parser, fn func(Parser)) {
	if p == nil {
		return
	}
	fn(p)
	switch p := p.(type) {
	case Sequence:
		for _, child := range p.Items {
			eachParser(child, fn)
		}
	case Choice:
		for _, child := range p.Items {
			eachParser(child, fn)
		}
	case Optional:
		eachParser(p.Body, fn)
	case ZeroOrMore:
		eachParser(p.Body, fn)
	case OneOrMore:
		eachParser(p.Body, fn)
	case Versioned:
		eachParser(p.Body, fn)
	case SeparatedBy:
		eachParser(p.Body, fn)
	case DelimitedBy:
		eachParser(p.Body, fn)
	case TerminatedBy:
		eachParser(p.Body, fn)
	}
}

// referencedVersions lists every version any specifier of g mentions, so
// that gates can be read from precomputed flags.
func referencedVersions(g *Grammar) []*semver.Version {
	var out []*semver.Version
	add := func(s version.Specifier) {
		out = append(out, s.Versions()...)
	}
	walk := func(p Parser) {
		eachParser(p, func(p Parser) {
			if v, ok := p.(Versioned); ok {
				add(v.Enabled)
			}
		})
	}

	walk(g.LeadingTrivia)
	walk(g.TrailingTrivia)
	for _, ctx := range g.Contexts {
		for _, it := range ctx.Items {
			switch it := it.(type) {
			case *RuleItem:
				add(it.Enabled)
				walk(it.Body)
			case *PrecedenceItem:
				add(it.Enabled)
				walk(it.Primary)
				for _, level := range it.Levels {
					for _, op := range level.Operators {
						add(op.Enabled)
						walk(op.Body)
					}
				}
			case *TokenItem:
				for _, def := range it.Definitions {
					add(def.Enabled)
				}
			case *KeywordItem:
				for _, def := range it.Definitions {
					add(def.Enabled)
					add(def.Reserved)
				}
			case *FragmentItem:
				add(it.Enabled)
			}
		}
	}
	return out
}
