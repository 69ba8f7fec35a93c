package grammar

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dhamidi/cstkit/parser"
	"github.com/dhamidi/cstkit/scanner"
	"github.com/dhamidi/cstkit/version"
)

// testGrammar is a small statement language with expressions, blocks, a
// keyword that becomes reserved over time and a second lexical context
// for pragmas.
func testGrammar() *Grammar {
	since := func(v string) version.Specifier { return version.Specifier{version.IntroducedIn(v)} }
	lit := func(name, text string) Item {
		return &TokenItem{Name: name, Definitions: []TokenDefinition{{Scanner: Atom{text}}}}
	}
	kw := func(name, text string, enabled, reserved version.Specifier) Item {
		return &KeywordItem{
			Name:       name,
			Identifier: "Identifier",
			Definitions: []KeywordDefinition{{
				Enabled:  enabled,
				Reserved: reserved,
				Value:    scanner.KeywordAtom{Text: text},
			}},
		}
	}

	return &Grammar{
		Name:     "TestLang",
		Versions: []string{"0.1.0", "0.2.0", "0.3.0"},
		LeadingTrivia: ZeroOrMore{Alt(
			Tok("Whitespace"), Tok("EndOfLine"), Tok("SingleLineComment"),
		)},
		TrailingTrivia: Seq(
			Optional{Tok("Whitespace")},
			Optional{Tok("SingleLineComment")},
			Optional{Tok("EndOfLine")},
		),
		Contexts: []Context{
			{
				Name: "Default",
				Items: []Item{
					&RuleItem{Name: "SourceUnit", Body: ZeroOrMore{Ref{"Statement"}}},
					&RuleItem{Name: "Statement", Body: Alt(
						Ref{"LetStatement"},
						Ref{"PragmaDirective"},
						Ref{"Block"},
						Versioned{Enabled: since("0.2.0"), Body: Ref{"UncheckedBlock"}},
						Ref{"ExpressionStatement"},
					)},
					&RuleItem{Name: "LetStatement", Body: TerminatedBy{
						Body:       Seq(Tok("LetKeyword"), Tok("Identifier"), Tok("Equal"), Ref{"Expression"}),
						Terminator: "Semicolon",
					}},
					&RuleItem{Name: "ExpressionStatement", Body: TerminatedBy{Body: Ref{"Expression"}, Terminator: "Semicolon"}},
					&RuleItem{Name: "PragmaDirective", Body: TerminatedBy{
						Body:       Seq(Tok("PragmaKeyword"), Ref{"VersionPragma"}),
						Terminator: "Semicolon",
					}},
					&RuleItem{Name: "Block", Body: DelimitedBy{Open: "OpenBrace", Body: Ref{"Statements"}, Close: "CloseBrace"}},
					&RuleItem{Name: "Statements", Body: ZeroOrMore{Ref{"Statement"}}},
					&RuleItem{Name: "UncheckedBlock", Enabled: since("0.2.0"), Body: Seq(Tok("UncheckedKeyword"), Ref{"Block"})},
					&PrecedenceItem{
						Name: "Expression",
						Levels: []PrecedenceLevel{
							{Name: "CallExpression", Operators: []Operator{{
								Model: parser.Postfix,
								Body:  DelimitedBy{Open: "OpenParen", Body: Optional{Ref{"Arguments"}}, Close: "CloseParen"},
							}}},
							{Name: "FactorialExpression", Operators: []Operator{{Model: parser.Postfix, Body: Tok("Bang")}}},
							{Name: "ExponentiationExpression", Operators: []Operator{{Model: parser.BinaryRightAssociative, Body: Tok("AsteriskAsterisk")}}},
							{Name: "PrefixExpression", Operators: []Operator{{Model: parser.Prefix, Body: Tok("Minus")}}},
							{Name: "MultiplicativeExpression", Operators: []Operator{{Model: parser.BinaryLeftAssociative, Body: Tok("Asterisk")}}},
							{Name: "AdditiveExpression", Operators: []Operator{
								{Model: parser.BinaryLeftAssociative, Body: Tok("Plus")},
								{Model: parser.BinaryLeftAssociative, Body: Tok("Minus")},
							}},
							{Name: "PipeExpression", Operators: []Operator{
								{Model: parser.BinaryLeftAssociative, Enabled: since("0.2.0"), Body: Tok("BarGreaterThan")},
							}},
						},
						Primary: Alt(
							Tok("Identifier"),
							Tok("DecimalLiteral"),
							Tok("StringLiteral"),
							Ref{"ParenthesizedExpression"},
							Ref{"ArrayLiteral"},
						),
					},
					&RuleItem{Name: "Arguments", Body: SeparatedBy{Body: Ref{"Expression"}, Separator: "Comma"}},
					&RuleItem{Name: "ParenthesizedExpression", Body: DelimitedBy{Open: "OpenParen", Body: Ref{"Expression"}, Close: "CloseParen"}},
					&RuleItem{Name: "ArrayLiteral", Body: DelimitedBy{
						Open:  "OpenBracket",
						Body:  Optional{SeparatedBy{Body: Ref{"Expression"}, Separator: "Comma"}},
						Close: "CloseBracket",
					}},

					&TriviaItem{Name: "Whitespace", Scanner: ScanOneOrMore{ScanChoice{Items: []Scanner{Atom{" "}, Atom{"\t"}}}}},
					&TriviaItem{Name: "EndOfLine", Scanner: ScanChoice{Items: []Scanner{Atom{"\r\n"}, Atom{"\n"}}}},
					&TriviaItem{Name: "SingleLineComment", Scanner: ScanSequence{Items: []Scanner{Atom{"//"}, ScanZeroOrMore{NoneOf{"\r\n"}}}}},

					&FragmentItem{Name: "Letter", Scanner: ScanChoice{Items: []Scanner{CharRange{'a', 'z'}, CharRange{'A', 'Z'}, Atom{"_"}}}},
					&FragmentItem{Name: "Digit", Scanner: CharRange{'0', '9'}},

					&TokenItem{Name: "Identifier", Definitions: []TokenDefinition{{Scanner: ScanSequence{Items: []Scanner{
						Fragment{"Letter"},
						ScanZeroOrMore{ScanChoice{Items: []Scanner{Fragment{"Letter"}, Fragment{"Digit"}}}},
					}}}}},
					&TokenItem{Name: "DecimalLiteral", Definitions: []TokenDefinition{{Scanner: NotFollowedBy{
						Body:      ScanOneOrMore{Fragment{"Digit"}},
						Lookahead: Fragment{"Letter"},
					}}}},
					&TokenItem{Name: "StringLiteral", Definitions: []TokenDefinition{{Scanner: ScanSequence{Items: []Scanner{
						Atom{`"`}, ScanZeroOrMore{NoneOf{"\"\r\n"}}, Atom{`"`},
					}}}}},
					lit("OpenParen", "("), lit("CloseParen", ")"),
					lit("OpenBracket", "["), lit("CloseBracket", "]"),
					lit("OpenBrace", "{"), lit("CloseBrace", "}"),
					lit("Comma", ","), lit("Semicolon", ";"), lit("Equal", "="),
					lit("Plus", "+"), lit("Minus", "-"), lit("Bang", "!"),
					lit("Asterisk", "*"), lit("AsteriskAsterisk", "**"),
					&TokenItem{Name: "BarGreaterThan", Definitions: []TokenDefinition{{Enabled: since("0.2.0"), Scanner: Atom{"|>"}}}},

					kw("LetKeyword", "let", nil, nil),
					kw("PragmaKeyword", "pragma", nil, nil),
					kw("UncheckedKeyword", "unchecked", since("0.2.0"), since("0.3.0")),
				},
			},
			{
				Name: "Pragma",
				Items: []Item{
					&RuleItem{Name: "VersionPragma", Body: Seq(
						Tok("PragmaName"),
						OneOrMore{Seq(Optional{Tok("Caret")}, Tok("VersionNumber"))},
					)},
					&TokenItem{Name: "PragmaName", Definitions: []TokenDefinition{{Scanner: ScanOneOrMore{Fragment{"Letter"}}}}},
					&TokenItem{Name: "Caret", Definitions: []TokenDefinition{{Scanner: Atom{"^"}}}},
					&TokenItem{Name: "VersionNumber", Definitions: []TokenDefinition{{Scanner: ScanSequence{Items: []Scanner{
						ScanOneOrMore{Fragment{"Digit"}},
						ScanZeroOrMore{ScanSequence{Items: []Scanner{Atom{"."}, ScanOneOrMore{Fragment{"Digit"}}}}},
					}}}}},
				},
			},
		},
	}
}

func compileTest(t testing.TB, v string, opts ...Option) *Language {
	t.Helper()
	lang, err := Compile(testGrammar(), v, opts...)
	require.NoError(t, err)
	return lang
}
