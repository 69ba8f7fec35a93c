package scanner

import (
	"fmt"
	"slices"
	"sort"
	"unicode"
	"unicode/utf8"

	"github.com/dhamidi/cstkit/cst"
	"github.com/dhamidi/cstkit/parser"
	"github.com/dhamidi/cstkit/text"
)

// Literal is a token spelled one fixed way.
type Literal struct {
	Text string
	Kind cst.TokenKind
}

// Token is a token recognised by a scanner.
type Token struct {
	Kind    cst.TokenKind
	Scanner Scanner
}

// Keyword is one spelling of a keyword with its version flags.
type Keyword struct {
	Text     string
	Kind     cst.TokenKind
	Enabled  bool
	Reserved bool
}

// Config describes one lexical context. Only enabled literals and tokens
// should be listed; keywords are listed whatever their flags so that they
// can be classified.
type Config struct {
	Name              string
	Literals          []Literal
	Tokens            []Token
	Identifier        cst.TokenKind
	IdentifierScanner Scanner
	Keywords          []Keyword
	Delimiters        map[cst.TokenKind]cst.TokenKind
}

// Lexer scans the tokens of one lexical context. It implements
// parser.Lexer.
type Lexer struct {
	name       string
	literals   Matcher
	tokens     []Token
	identifier cst.TokenKind
	identScan  Scanner
	keywords   Matcher
	keywordSet []Keyword
	delimiters map[cst.TokenKind]cst.TokenKind

	leading  parser.Parser
	trailing parser.Parser
}

var _ parser.Lexer = (*Lexer)(nil)

// NewLexer compiles the tries of a lexical context. Literals that start
// with a letter compete with the identifier scanner and are handled as
// keywords that are always enabled and reserved.
func NewLexer(cfg Config) (*Lexer, error) {
	var lits, words Trie
	l := &Lexer{
		name:       cfg.Name,
		tokens:     cfg.Tokens,
		identifier: cfg.Identifier,
		identScan:  cfg.IdentifierScanner,
		delimiters: cfg.Delimiters,
	}
	if l.delimiters == nil {
		l.delimiters = map[cst.TokenKind]cst.TokenKind{}
	}

	keywords := slices.Clone(cfg.Keywords)
	for _, lit := range cfg.Literals {
		if l.identScan != nil && startsWithLetter(lit.Text) {
			keywords = append(keywords, Keyword{Text: lit.Text, Kind: lit.Kind, Enabled: true, Reserved: true})
			continue
		}
		if err := lits.Insert(lit.Text, Payload{Kind: lit.Kind, Enabled: true}); err != nil {
			return nil, fmt.Errorf("lexical context %s: %w", cfg.Name, err)
		}
	}
	for _, kw := range keywords {
		if l.identScan == nil {
			if !kw.Enabled {
				continue
			}
			if err := lits.Insert(kw.Text, Payload{Kind: kw.Kind, Enabled: true}); err != nil {
				return nil, fmt.Errorf("lexical context %s: %w", cfg.Name, err)
			}
			continue
		}
		if err := words.Insert(kw.Text, Payload{Kind: kw.Kind, Enabled: kw.Enabled, Reserved: kw.Reserved}); err != nil {
			return nil, fmt.Errorf("lexical context %s: %w", cfg.Name, err)
		}
		l.keywordSet = append(l.keywordSet, kw)
	}

	l.literals = lits.Compile()
	l.keywords = words.Compile()
	return l, nil
}

func startsWithLetter(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLetter(r) || r == '_'
}

// SetTrivia installs the parsers for trivia before and after tokens.
// Either may be nil.
func (l *Lexer) SetTrivia(leading, trailing parser.Parser) {
	l.leading, l.trailing = leading, trailing
}

func (l *Lexer) Name() string { return l.name }

// Scan reads one token without trivia. The longest candidate wins; on a
// tie literals beat scanned tokens, which beat identifiers.
func (l *Lexer) Scan(s *parser.Stream) (Scanned, bool) {
	start := s.Position()
	var best cst.TokenKind
	bestEnd := start

	if p, ok := l.literals(s); ok {
		best, bestEnd = p.Kind, s.Position()
		s.SetPosition(start)
	}
	for _, t := range l.tokens {
		if t.Scanner(s) && s.Position().Utf8 > bestEnd.Utf8 {
			best, bestEnd = t.Kind, s.Position()
		}
		s.SetPosition(start)
	}

	if l.identScan != nil && l.identScan(s) && s.Position().Utf8 > bestEnd.Utf8 {
		end := s.Position()
		sc := Scanned{Kind: l.identifier}
		s.SetPosition(start)
		if p, ok := l.keywords(s); ok && s.Position() == end {
			sc.Keyword = p.Kind
			sc.Scan = Classify(p.Enabled, p.Reserved)
		}
		s.SetPosition(end)
		return sc, true
	}
	s.SetPosition(start)

	if best == "" {
		return Scanned{}, false
	}
	s.SetPosition(bestEnd)
	return Scanned{Kind: best}, true
}

// ParseToken parses one token of kind without trivia.
func (l *Lexer) ParseToken(s *parser.Stream, kind cst.TokenKind) parser.Result {
	start := s.Position()
	sc, ok := l.Scan(s)
	if !ok || !sc.Accepts(kind) {
		s.SetPosition(start)
		return parser.NoMatch([]cst.TokenKind{kind})
	}
	tok := cst.NewToken(kind, s.Content(text.Range{Start: start, End: s.Position()}))
	return parser.Match([]cst.Node{tok}, nil)
}

// ParseTokenWithTrivia parses leading trivia, a token of kind and
// trailing trivia.
func (l *Lexer) ParseTokenWithTrivia(s *parser.Stream, kind cst.TokenKind) parser.Result {
	start := s.Position()
	leading := l.LeadingTrivia(s)
	tok := l.ParseToken(s, kind)
	if !tok.IsMatch() {
		s.SetPosition(start)
		return tok
	}
	trailing := l.TrailingTrivia(s)

	nodes := make([]cst.Node, 0, len(leading.Nodes)+1+len(trailing.Nodes))
	nodes = append(nodes, leading.Nodes...)
	nodes = append(nodes, tok.Nodes...)
	nodes = append(nodes, trailing.Nodes...)
	return parser.Match(nodes, nil)
}

// LeadingTrivia parses the trivia allowed before a token. It always
// matches, possibly with no nodes.
func (l *Lexer) LeadingTrivia(s *parser.Stream) parser.Result {
	return l.trivia(s, l.leading)
}

// TrailingTrivia parses the trivia allowed after a token on the same
// line. It always matches, possibly with no nodes.
func (l *Lexer) TrailingTrivia(s *parser.Stream) parser.Result {
	return l.trivia(s, l.trailing)
}

func (l *Lexer) trivia(s *parser.Stream, p parser.Parser) parser.Result {
	if p == nil {
		return parser.Match(nil, nil)
	}
	start := s.Position()
	r := p(s)
	if !r.IsMatch() {
		s.SetPosition(start)
		return parser.Match(nil, nil)
	}
	return parser.Match(r.Flatten(), nil)
}

// NextToken skips leading trivia and scans one token, reporting the
// keyword kind for identifiers that are active keywords.
func (l *Lexer) NextToken(s *parser.Stream) (cst.TokenKind, bool) {
	start := s.Position()
	l.LeadingTrivia(s)
	sc, ok := l.Scan(s)
	if !ok {
		s.SetPosition(start)
		return "", false
	}
	return sc.Effective(), true
}

func (l *Lexer) Delimiters() map[cst.TokenKind]cst.TokenKind {
	return l.delimiters
}

// Keywords returns the keywords of the context with their classification,
// sorted by spelling.
func (l *Lexer) Keywords() []Keyword {
	out := append([]Keyword(nil), l.keywordSet...)
	sort.Slice(out, func(i, j int) bool { return out[i].Text < out[j].Text })
	return out
}
