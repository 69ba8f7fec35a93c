package grammar

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/dhamidi/cstkit/cst"
	"github.com/dhamidi/cstkit/diagnostic"
	"github.com/dhamidi/cstkit/parser"
	"github.com/dhamidi/cstkit/text"
)

var sources = []string{
	"",
	"let x = 1;",
	"let x = (1 + 2) * y;\n// done\n",
	"f(a, b)!;",
	"[1, 2, [3]];",
	"{ let a = 1; { b; } }",
	"pragma solidity ^0.8.0;",
	"let = ;",
	"let x = ;",
	"{ let x = (1 + ; }",
	"}}}",
	"x(((((",
	")))",
	"\"unterminated",
	"é日本😀 = 1;",
	"a +",
	"let let let",
	"\t\r\n",
}

// shape renders an expression tree with one pair of parentheses per
// operator node, leaving out trivia.
func shape(lang *Language, n cst.Node) string {
	switch n := n.(type) {
	case *cst.RuleNode:
		var parts []string
		for _, child := range n.Children {
			if s := shape(lang, child); s != "" {
				parts = append(parts, s)
			}
		}
		if n.Kind == "Expression" && len(parts) == 1 {
			return parts[0]
		}
		return "(" + strings.Join(parts, " ") + ")"
	case *cst.TokenNode:
		if lang.IsTrivia(n.Kind) {
			return ""
		}
		return n.Text
	case *cst.ErrorNode:
		return "ERROR"
	}
	return ""
}

func ruleKinds(n cst.Node) []cst.RuleKind {
	var kinds []cst.RuleKind
	cst.Walk(n, cst.VisitorFuncs{
		EnterFunc: func(c *cst.Cursor) cst.Action {
			if r, ok := c.Node().(*cst.RuleNode); ok {
				kinds = append(kinds, r.Kind)
			}
			return cst.Continue
		},
	})
	return kinds
}

func tokensOfKind(n cst.Node, kind cst.TokenKind) []string {
	var texts []string
	cst.Walk(n, cst.VisitorFuncs{
		EnterFunc: func(c *cst.Cursor) cst.Action {
			if tok, ok := c.Node().(*cst.TokenNode); ok && tok.Kind == kind {
				texts = append(texts, tok.Text)
			}
			return cst.Continue
		},
	})
	return texts
}

func TestLossless(t *testing.T) {
	for _, v := range []string{"0.1.0", "0.3.0"} {
		lang := compileTest(t, v)
		for _, src := range sources {
			t.Run(v+"/"+src, func(t *testing.T) {
				for _, kind := range lang.Rules() {
					out := lang.Parse(kind, src)
					require.NotNil(t, out.Tree)
					assert.Equal(t, src, cst.Unparse(out.Tree), "rule %s", kind)
					assert.Equal(t, text.IndexOf(src), out.Tree.TextLen(), "rule %s", kind)
				}
			})
		}
	}
}

func TestValidPrograms(t *testing.T) {
	lang := compileTest(t, "0.3.0")
	for _, src := range sources[:7] {
		t.Run(src, func(t *testing.T) {
			out := lang.Parse("SourceUnit", src)
			assert.True(t, out.IsValid(), "errors: %v", out.Errors)
			root, ok := out.Tree.(*cst.RuleNode)
			require.True(t, ok)
			assert.Equal(t, cst.RuleKind("SourceUnit"), root.Kind)
		})
	}
}

func TestDeterministic(t *testing.T) {
	lang := compileTest(t, "0.2.0")

	want := make([]string, len(sources))
	for i, src := range sources {
		want[i] = cst.DumpWithRanges(lang.Parse("SourceUnit", src).Tree)
	}

	var g errgroup.Group
	got := make([][]string, 8)
	for w := range got {
		got[w] = make([]string, len(sources))
		g.Go(func() error {
			for i, src := range sources {
				got[w][i] = cst.DumpWithRanges(lang.Parse("SourceUnit", src).Tree)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for w := range got {
		assert.Equal(t, want, got[w])
	}
}

func TestPrecedenceAssociativity(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"a - b - c", "((a - b) - c)"},
		{"a ** b ** c", "(a ** (b ** c))"},
		{"a + b * c", "(a + (b * c))"},
		{"a * b + c", "((a * b) + c)"},
		{"-a ** b", "(- (a ** b))"},
		{"-a * b", "((- a) * b)"},
		{"a! ** b", "((a !) ** b)"},
	}

	lang := compileTest(t, "0.1.0")
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			out := lang.Parse("Expression", tt.input)
			require.True(t, out.IsValid(), "errors: %v", out.Errors)
			assert.Equal(t, tt.want, shape(lang, out.Tree))
		})
	}
}

func TestPrecedenceNodeKinds(t *testing.T) {
	lang := compileTest(t, "0.1.0")
	out := lang.Parse("Expression", "f(x, y) + 1")
	require.True(t, out.IsValid(), "errors: %v", out.Errors)
	assert.Equal(t, []cst.RuleKind{
		"Expression",
		"AdditiveExpression",
		"Expression", "CallExpression",
		"Expression",
		"Arguments", "Expression", "Expression",
		"Expression",
	}, ruleKinds(out.Tree))
}

func TestRecoveryContainment(t *testing.T) {
	lang := compileTest(t, "0.1.0")
	src := "[a, , b]"
	out := lang.Parse("ArrayLiteral", src)

	require.Len(t, out.Errors, 1)
	assert.Equal(t, 4, out.Errors[0].Range().Start.Utf8)
	assert.True(t, out.Errors[0].Range().IsEmpty())

	root := out.Tree.(*cst.RuleNode)
	assert.Equal(t, []string{"a", "b"}, tokensOfKind(root, "Identifier"))
	assert.Len(t, root.ChildrenOfKind("Expression"), 2)
	assert.Len(t, cst.Errors(root), 1)

	last := root.Children[len(root.Children)-1].(*cst.TokenNode)
	assert.Equal(t, cst.TokenKind("CloseBracket"), last.Kind)
	assert.Equal(t, src, cst.Unparse(out.Tree))
}

func TestRecoveryContainmentInArguments(t *testing.T) {
	lang := compileTest(t, "0.1.0")
	src := "f( a , , b )"
	out := lang.Parse("Expression", src)

	require.Len(t, out.Errors, 1)
	assert.Equal(t, text.Range{Start: text.IndexOf("f( a , "), End: text.IndexOf("f( a , ")}, out.Errors[0].Range())
	assert.Equal(t, src, cst.Unparse(out.Tree))

	var args *cst.RuleNode
	cst.Walk(out.Tree, cst.VisitorFuncs{
		EnterFunc: func(c *cst.Cursor) cst.Action {
			if r, ok := c.Node().(*cst.RuleNode); ok && r.Kind == "Arguments" {
				args = r
				return cst.Stop
			}
			return cst.Continue
		},
	})
	require.NotNil(t, args)
	assert.Equal(t, []string{"a", "b"}, tokensOfKind(args, "Identifier"))
	errs := cst.Errors(args)
	require.Len(t, errs, 1)
	assert.Empty(t, errs[0].Text)

	assert.Equal(t, []string{")"}, tokensOfKind(out.Tree, "CloseParen"))
}

func TestRecoveryInsideBlock(t *testing.T) {
	lang := compileTest(t, "0.1.0")
	out := lang.Parse("SourceUnit", "{ let x = ; } y;")

	require.Len(t, out.Errors, 1)
	root := out.Tree.(*cst.RuleNode)
	assert.Len(t, root.ChildrenOfKind("Statement"), 2)
	assert.Equal(t, []string{"}"}, tokensOfKind(root, "CloseBrace"))
	assert.Equal(t, []string{";", ";"}, tokensOfKind(root, "Semicolon"))
}

func TestRecoverySkipsNestedDelimiters(t *testing.T) {
	lang := compileTest(t, "0.1.0")
	out := lang.Parse("SourceUnit", "let x = 1 [ ; ] 2; y;")

	require.Len(t, out.Errors, 1)
	assert.Equal(t, "[ ; ] 2", strings.TrimSpace(cst.Errors(out.Tree)[0].Text))
	assert.Len(t, out.Tree.(*cst.RuleNode).ChildrenOfKind("Statement"), 2)
}

func TestLeftoverInput(t *testing.T) {
	lang := compileTest(t, "0.1.0")
	out := lang.Parse("SourceUnit", "a; ) b;")

	require.Len(t, out.Errors, 1)
	assert.Equal(t, ") b;", cst.Errors(out.Tree)[0].Text)
	assert.Equal(t, 3, out.Errors[0].Range().Start.Utf8)
}

func TestTotalFailure(t *testing.T) {
	lang := compileTest(t, "0.1.0")
	out := lang.Parse("Block", "let x;")

	_, ok := out.Tree.(*cst.ErrorNode)
	assert.True(t, ok)
	require.Len(t, out.Errors, 1)
	assert.Equal(t, text.IndexOf("let x;"), out.Errors[0].Range().End)
	assert.Equal(t, "Expected OpenBrace.", out.Errors[0].Message())
}

func TestKeywordVersionGating(t *testing.T) {
	tests := []struct {
		input string
		valid map[string]bool
	}{
		{"unchecked;", map[string]bool{"0.1.0": true, "0.2.0": true, "0.3.0": false}},
		{"unchecked { x; }", map[string]bool{"0.1.0": false, "0.2.0": true, "0.3.0": true}},
		{"let;", map[string]bool{"0.1.0": false, "0.2.0": false, "0.3.0": false}},
	}

	for _, tt := range tests {
		for v, valid := range tt.valid {
			t.Run(v+"/"+tt.input, func(t *testing.T) {
				out := compileTest(t, v).Parse("SourceUnit", tt.input)
				assert.Equal(t, valid, out.IsValid(), "errors: %v", out.Errors)
				assert.Equal(t, tt.input, cst.Unparse(out.Tree))
			})
		}
	}
}

func TestVersionedOperator(t *testing.T) {
	out := compileTest(t, "0.1.0").Parse("Expression", "a |> b")
	assert.False(t, out.IsValid())

	lang := compileTest(t, "0.2.0")
	out = lang.Parse("Expression", "a |> b")
	require.True(t, out.IsValid(), "errors: %v", out.Errors)
	assert.Equal(t, "(a |> b)", shape(lang, out.Tree))
}

func TestPragmaContext(t *testing.T) {
	lang := compileTest(t, "0.1.0")
	out := lang.Parse("SourceUnit", "pragma solidity ^0.8.0;\nlet v = 0.8;")

	assert.Equal(t, []string{"0.8.0"}, tokensOfKind(out.Tree, "VersionNumber"))
	assert.Equal(t, []string{"solidity"}, tokensOfKind(out.Tree, "PragmaName"))
	// Outside the pragma "0.8" is not a single token.
	assert.Len(t, out.Errors, 1)
}

func TestRecursionLimit(t *testing.T) {
	src := strings.Repeat("(", 40) + "1" + strings.Repeat(")", 40)

	lang := compileTest(t, "0.1.0", WithMaxDepth(20))
	out := lang.Parse("Expression", src)
	assert.Equal(t, src, cst.Unparse(out.Tree))

	var codes []string
	for _, e := range out.Errors {
		codes = append(codes, e.Code())
	}
	assert.Contains(t, codes, diagnostic.CodeRecursionLimit)

	out = compileTest(t, "0.1.0").Parse("Expression", src)
	assert.True(t, out.IsValid())
}

type countingTracer struct {
	calls map[cst.RuleKind]int
}

func (c *countingTracer) Enter(rule cst.RuleKind, depth int, pos text.Index, preview string) {
	c.calls[rule]++
}

func (c *countingTracer) Exit(cst.RuleKind, int, text.Index, parser.ResultKind) {}

func TestTracer(t *testing.T) {
	tr := &countingTracer{calls: map[cst.RuleKind]int{}}
	lang := compileTest(t, "0.1.0", WithTracer(tr))
	lang.Parse("SourceUnit", "a;")

	assert.Equal(t, 1, tr.calls["SourceUnit"])
	assert.Equal(t, 2, tr.calls["Statement"])
	assert.Positive(t, tr.calls["ExpressionStatement"])
	assert.Zero(t, tr.calls["UncheckedBlock"])
}

func TestFirstSet(t *testing.T) {
	first := compileTest(t, "0.1.0").FirstSet("Statement")
	assert.Equal(t, []cst.TokenKind{
		"DecimalLiteral", "Identifier", "LetKeyword", "Minus", "OpenBrace",
		"OpenBracket", "OpenParen", "PragmaKeyword", "StringLiteral",
	}, first)

	assert.Contains(t, compileTest(t, "0.2.0").FirstSet("Statement"), cst.TokenKind("UncheckedKeyword"))
	assert.Equal(t, []cst.TokenKind{"PragmaName"}, compileTest(t, "0.1.0").FirstSet("VersionPragma"))
}

func TestKeywords(t *testing.T) {
	for v, reserved := range map[string]bool{"0.2.0": false, "0.3.0": true} {
		lang := compileTest(t, v)
		var found bool
		for _, kw := range lang.Lexer("Default").Keywords() {
			if kw.Text == "unchecked" {
				found = true
				assert.True(t, kw.Enabled, v)
				assert.Equal(t, reserved, kw.Reserved, v)
			}
		}
		assert.True(t, found, v)
	}
}

func tiny(items ...Item) *Grammar {
	base := []Item{
		&TokenItem{Name: "A", Definitions: []TokenDefinition{{Scanner: Atom{"a"}}}},
		&TokenItem{Name: "B", Definitions: []TokenDefinition{{Scanner: Atom{"b"}}}},
	}
	return &Grammar{
		Name:     "Tiny",
		Contexts: []Context{{Name: "Default", Items: append(base, items...)}},
	}
}

func TestCompileErrors(t *testing.T) {
	levels := make([]PrecedenceLevel, parser.MaxPrecedenceLevels+1)
	for i := range levels {
		levels[i].Name = "Level"
	}

	tests := []struct {
		name string
		g    *Grammar
		want string
	}{
		{"unknown rule", tiny(&RuleItem{Name: "R", Body: Ref{"Missing"}}), "R: reference to unknown rule Missing"},
		{"unknown token", tiny(&RuleItem{Name: "R", Body: Tok("C")}), "R: token C is not defined"},
		{"duplicate", tiny(&RuleItem{Name: "A", Body: Tok("B")}), "A: defined more than once"},
		{"delimiter not a token", tiny(
			&RuleItem{Name: "R", Body: DelimitedBy{Open: "S", Body: Tok("A"), Close: "B"}},
			&RuleItem{Name: "S", Body: Tok("A")},
		), "R: delimiter S is not a token"},
		{"separator not a token", tiny(
			&RuleItem{Name: "R", Body: SeparatedBy{Body: Tok("A"), Separator: "R"}},
		), "R: separator R is not a token"},
		{"closer reused as opener", tiny(
			&RuleItem{Name: "R", Body: DelimitedBy{Open: "A", Body: Tok("A"), Close: "B"}},
			&RuleItem{Name: "S", Body: DelimitedBy{Open: "B", Body: Tok("A"), Close: "A"}},
		), "A: used both as an opening and a closing delimiter in context Default"},
		{"too many levels", tiny(&PrecedenceItem{Name: "E", Levels: levels, Primary: Tok("A")}), "E: 127 precedence levels, at most 126 are supported"},
		{"unknown fragment", tiny(&TokenItem{Name: "C", Definitions: []TokenDefinition{{Scanner: Fragment{"F"}}}}), "C: reference to unknown fragment F"},
		{"recursive fragment", tiny(&FragmentItem{Name: "F", Scanner: ScanSequence{Items: []Scanner{Atom{"x"}, Fragment{"F"}}}}), "F: fragment refers to itself"},
		{"bad trivia", func() *Grammar {
			g := tiny()
			g.LeadingTrivia = Tok("A")
			return g
		}(), "Tiny: trivia parser refers to A, which is not a trivia item"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.g, "1.0.0")
			require.Error(t, err)
			var list ErrorList
			require.True(t, errors.As(err, &list))
			var msgs []string
			for _, e := range list {
				msgs = append(msgs, e.Error())
			}
			assert.Contains(t, msgs, tt.want)
		})
	}
}

func TestCompileVersionErrors(t *testing.T) {
	_, err := Compile(testGrammar(), "9.9.9")
	var gerr *Error
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, "TestLang: unknown version 9.9.9", gerr.Error())

	_, err = Compile(testGrammar(), "not a version")
	require.True(t, errors.As(err, &gerr))
	assert.Contains(t, gerr.Message, "invalid version")
}
