// Package grammar describes languages declaratively and compiles them into
// parsers.
//
// A Grammar is a set of lexical contexts, each holding items: rules,
// precedence expressions, tokens, keywords, trivia and scanner fragments.
// Items refer to each other by name. Compile checks the references, picks
// the definitions enabled in one version of the language and builds an
// immutable Language whose Parse method produces a lossless syntax tree.
package grammar

import (
	"github.com/dhamidi/cstkit/parser"
	"github.com/dhamidi/cstkit/scanner"
	"github.com/dhamidi/cstkit/version"
)

// Grammar is the definition of a language across all of its versions.
type Grammar struct {
	Name string
	// Versions lists every released version of the language. If it is
	// not empty, Compile only accepts these.
	Versions []string
	// LeadingTrivia and TrailingTrivia are parsed around every token.
	// Tokens they reference must be trivia items.
	LeadingTrivia  Parser
	TrailingTrivia Parser
	Contexts       []Context
}

// Context is a lexical context: the items whose tokens are scanned by the
// same lexer.
type Context struct {
	Name  string
	Items []Item
}

// Item is one of RuleItem, PrecedenceItem, TokenItem, KeywordItem,
// TriviaItem or FragmentItem.
type Item interface {
	ItemName() string
	item()
}

// RuleItem produces a node of kind Name over everything Body matches.
type RuleItem struct {
	Name    string
	Enabled version.Specifier
	Body    Parser
}

// PrecedenceItem is an expression whose operators are listed in Levels,
// tightest binding first. Operands are parsed by Primary.
type PrecedenceItem struct {
	Name    string
	Enabled version.Specifier
	Levels  []PrecedenceLevel
	Primary Parser
}

// PrecedenceLevel produces nodes of kind Name when one of its operators is
// applied.
type PrecedenceLevel struct {
	Name      string
	Operators []Operator
}

type Operator struct {
	Model   parser.OperatorModel
	Enabled version.Specifier
	Body    Parser
}

// TokenItem is a terminal. A token scanned by a plain Atom (or a choice
// of atoms) is dispatched through the literal trie of its context.
type TokenItem struct {
	Name        string
	Definitions []TokenDefinition
}

type TokenDefinition struct {
	Enabled version.Specifier
	Scanner Scanner
}

// KeywordItem is a word that competes with the Identifier token of its
// context.
type KeywordItem struct {
	Name        string
	Identifier  string
	Definitions []KeywordDefinition
}

// KeywordDefinition spells a keyword in the versions where it is Enabled.
// A Reserved word can no longer be used as an identifier. A nil
// specifier is true in every version; use version.Never for keywords
// that are never reserved.
type KeywordDefinition struct {
	Enabled  version.Specifier
	Reserved version.Specifier
	Value    scanner.KeywordValue
}

// TriviaItem is a terminal that may appear between any two tokens.
type TriviaItem struct {
	Name    string
	Scanner Scanner
}

// FragmentItem is a named scanner that tokens can share. It is never a
// token on its own.
type FragmentItem struct {
	Name    string
	Enabled version.Specifier
	Scanner Scanner
}

func (i *RuleItem) ItemName() string       { return i.Name }
func (i *PrecedenceItem) ItemName() string { return i.Name }
func (i *TokenItem) ItemName() string      { return i.Name }
func (i *KeywordItem) ItemName() string    { return i.Name }
func (i *TriviaItem) ItemName() string     { return i.Name }
func (i *FragmentItem) ItemName() string   { return i.Name }

func (*RuleItem) item()       {}
func (*PrecedenceItem) item() {}
func (*TokenItem) item()      {}
func (*KeywordItem) item()    {}
func (*TriviaItem) item()     {}
func (*FragmentItem) item()   {}

// Parser is a node of a rule body. It is one of Sequence, Choice,
// Optional, ZeroOrMore, OneOrMore, SeparatedBy, DelimitedBy,
// TerminatedBy, Token, Ref or Versioned.
type Parser interface {
	parserNode()
}

type Sequence struct{ Items []Parser }
type Choice struct{ Items []Parser }
type Optional struct{ Body Parser }
type ZeroOrMore struct{ Body Parser }
type OneOrMore struct{ Body Parser }

// SeparatedBy is one or more Body separated by the Separator token.
type SeparatedBy struct {
	Body      Parser
	Separator string
}

// DelimitedBy is Body between the Open and Close tokens. Errors in Body
// are contained before Close.
type DelimitedBy struct {
	Open  string
	Body  Parser
	Close string
}

// TerminatedBy is Body followed by the Terminator token.
type TerminatedBy struct {
	Body       Parser
	Terminator string
}

// Token matches the token, keyword or trivia item Name.
type Token struct{ Name string }

// Ref calls the rule or precedence item Name.
type Ref struct{ Name string }

// Versioned is Body in the versions where Enabled holds and matches
// nothing elsewhere.
type Versioned struct {
	Enabled version.Specifier
	Body    Parser
}

func (Sequence) parserNode()     {}
func (Choice) parserNode()       {}
func (Optional) parserNode()     {}
func (ZeroOrMore) parserNode()   {}
func (OneOrMore) parserNode()    {}
func (SeparatedBy) parserNode()  {}
func (DelimitedBy) parserNode()  {}
func (TerminatedBy) parserNode() {}
func (Token) parserNode()        {}
func (Ref) parserNode()          {}
func (Versioned) parserNode()    {}

// Scanner is a node of a token definition. It is one of Atom, CharRange,
// NoneOf, ScanSequence, ScanChoice, ScanOptional, ScanZeroOrMore,
// ScanOneOrMore, NotFollowedBy or Fragment.
type Scanner interface {
	scannerNode()
}

type Atom struct{ Text string }

type CharRange struct{ From, To rune }

type NoneOf struct{ Chars string }

type ScanSequence struct{ Items []Scanner }
type ScanChoice struct{ Items []Scanner }
type ScanOptional struct{ Body Scanner }
type ScanZeroOrMore struct{ Body Scanner }
type ScanOneOrMore struct{ Body Scanner }

// NotFollowedBy matches Body unless Lookahead matches right after it.
type NotFollowedBy struct {
	Body      Scanner
	Lookahead Scanner
}

// Fragment reuses the scanner of the fragment item Name.
type Fragment struct{ Name string }

func (Atom) scannerNode()           {}
func (CharRange) scannerNode()      {}
func (NoneOf) scannerNode()         {}
func (ScanSequence) scannerNode()   {}
func (ScanChoice) scannerNode()     {}
func (ScanOptional) scannerNode()   {}
func (ScanZeroOrMore) scannerNode() {}
func (ScanOneOrMore) scannerNode()  {}
func (NotFollowedBy) scannerNode()  {}
func (Fragment) scannerNode()       {}

// Seq is shorthand for a Sequence of items.
func Seq(items ...Parser) Sequence { return Sequence{Items: items} }

// Alt is shorthand for a Choice between items.
func Alt(items ...Parser) Choice { return Choice{Items: items} }

// Tok is shorthand for a Token reference.
func Tok(name string) Token { return Token{Name: name} }
