package ebnf

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/cstkit/cst"
	"github.com/dhamidi/cstkit/grammar"
)

var calcOptions = []Option{
	WithTrivia("whitespace"),
	WithIdentifier("identifier"),
	WithDelimiters("(", ")", "[", "]"),
	WithTerminators(";"),
}

func loadCalc(t *testing.T) *grammar.Grammar {
	t.Helper()
	g, err := Load("testdata/calc.ebnf", calcOptions...)
	require.NoError(t, err)
	return g
}

func items(g *grammar.Grammar) map[string]grammar.Item {
	out := map[string]grammar.Item{}
	for _, it := range g.Contexts[0].Items {
		out[it.ItemName()] = it
	}
	return out
}

func TestLoadClassifiesProductions(t *testing.T) {
	g := loadCalc(t)
	assert.Equal(t, "calc", g.Name)
	require.Len(t, g.Contexts, 1)

	byName := items(g)
	for _, name := range []string{"Program", "Statement", "Expr", "Term", "Call", "Args", "List"} {
		assert.IsType(t, &grammar.RuleItem{}, byName[name], name)
	}
	assert.IsType(t, &grammar.TokenItem{}, byName["identifier"])
	assert.IsType(t, &grammar.TokenItem{}, byName["number"])
	assert.IsType(t, &grammar.FragmentItem{}, byName["letter"])
	assert.IsType(t, &grammar.FragmentItem{}, byName["digit"])
	assert.IsType(t, &grammar.TriviaItem{}, byName["whitespace"])
	assert.IsType(t, &grammar.KeywordItem{}, byName[`"let"`])
	assert.IsType(t, &grammar.TokenItem{}, byName[`"+"`])
}

func TestLoadRecognisesListShapes(t *testing.T) {
	byName := items(loadCalc(t))

	assert.Equal(t, grammar.SeparatedBy{Body: grammar.Ref{Name: "Expr"}, Separator: `","`}, byName["Args"].(*grammar.RuleItem).Body)
	assert.Equal(t, grammar.SeparatedBy{Body: grammar.Ref{Name: "Term"}, Separator: `"+"`}, byName["Expr"].(*grammar.RuleItem).Body)
	assert.Equal(t, grammar.Seq(
		grammar.Tok("identifier"),
		grammar.DelimitedBy{Open: `"("`, Body: grammar.Optional{Body: grammar.Ref{Name: "Args"}}, Close: `")"`},
	), byName["Call"].(*grammar.RuleItem).Body)

	stmt := byName["Statement"].(*grammar.RuleItem).Body.(grammar.Choice)
	require.Len(t, stmt.Items, 2)
	assert.Equal(t, grammar.TerminatedBy{Body: grammar.Ref{Name: "Expr"}, Terminator: `";"`}, stmt.Items[1])
}

func TestLoadedGrammarParses(t *testing.T) {
	lang, err := grammar.Compile(loadCalc(t), "1.0.0")
	require.NoError(t, err)

	src := "let x = f(a, 1) + [2, y];\nx + 1;\n"
	out := lang.Parse("Program", src)
	require.True(t, out.IsValid(), "errors: %v", out.Errors)
	assert.Equal(t, src, cst.Unparse(out.Tree))

	root := out.Tree.(*cst.RuleNode)
	assert.Len(t, root.ChildrenOfKind("Statement"), 2)
	assert.Contains(t, cst.Dump(root), `"let"`)

	out = lang.Parse("Program", "let = 1; y;")
	assert.Len(t, out.Errors, 1)
	assert.Len(t, out.Tree.(*cst.RuleNode).ChildrenOfKind("Statement"), 2)
}

func TestKeywordsNeedIdentifier(t *testing.T) {
	g, err := Load("testdata/calc.ebnf", WithTrivia("whitespace"))
	require.NoError(t, err)
	assert.IsType(t, &grammar.TokenItem{}, items(g)[`"let"`])
}

func TestConvertErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		opts []Option
		want string
	}{
		{"range in rule", `A = "a" … "z" .`, nil, "A: character range in a rule"},
		{"lexical refers to rule", "A = b . b = A .", nil, "b: lexical production refers to rule A"},
		{"undefined lexical", `A = b . b = "x" c .`, nil, "b: reference to undefined production c"},
		{"self referencing token", `A = b . b = "x" | "(" b ")" .`, nil, "b: token b refers to itself"},
		{"empty production", "A = .", nil, "A: empty production"},
		{"missing trivia", `A = "x" .`, []Option{WithTrivia("ws")}, "ws: trivia production is not defined"},
		{"trivia in rule", `A = ws . ws = " " .`, []Option{WithTrivia("ws")}, "A: rule refers to trivia ws"},
		{"identifier is a rule", `A = "x" .`, []Option{WithIdentifier("A")}, "A: identifier production must be lexical"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("test.ebnf", strings.NewReader(tt.src), tt.opts...)
			require.Error(t, err)
			var list grammar.ErrorList
			require.True(t, errors.As(err, &list), "%v", err)
			var msgs []string
			for _, e := range list {
				msgs = append(msgs, e.Error())
			}
			assert.True(t, containsPrefix(msgs, tt.want), "%q not in %q", tt.want, msgs)
		})
	}
}

func containsPrefix(msgs []string, prefix string) bool {
	for _, m := range msgs {
		if strings.HasPrefix(m, prefix) {
			return true
		}
	}
	return false
}

func TestParseSyntaxError(t *testing.T) {
	_, err := Parse("bad.ebnf", strings.NewReader("A = ( ."))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse grammar")
}

func TestVerify(t *testing.T) {
	assert.NoError(t, Verify("ok.ebnf", strings.NewReader(`A = B "x" . B = "y" .`), "A"))
	assert.Error(t, Verify("unused.ebnf", strings.NewReader(`A = "x" . B = "y" .`), "A"))
}

func TestIsLexical(t *testing.T) {
	for name, want := range map[string]bool{
		"identifier": true,
		"_digit":     true,
		"ärger":      true,
		"Program":    false,
		"Élan":       false,
		"X":          false,
	} {
		assert.Equal(t, want, isLexical(name), name)
	}
}

func TestUnicodeRuleNames(t *testing.T) {
	g, err := Parse("unicode.ebnf", strings.NewReader(`Äußeres = "x" ärger . ärger = "y" .`))
	require.NoError(t, err)
	byName := items(g)
	assert.IsType(t, &grammar.RuleItem{}, byName["Äußeres"])
	assert.IsType(t, &grammar.TokenItem{}, byName["ärger"])
}
