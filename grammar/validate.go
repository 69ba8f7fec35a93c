package grammar

import (
	"maps"
	"slices"

	"github.com/dhamidi/cstkit/parser"
)

// index locates items by name.
type index struct {
	items   map[string]Item
	context map[string]string
}

func (ix *index) rule(name string) bool {
	switch ix.items[name].(type) {
	case *RuleItem, *PrecedenceItem:
		return true
	}
	return false
}

func (ix *index) terminal(name string) bool {
	switch ix.items[name].(type) {
	case *TokenItem, *KeywordItem:
		return true
	}
	return false
}

func (ix *index) trivia(name string) bool {
	_, ok := ix.items[name].(*TriviaItem)
	return ok
}

type validator struct {
	ix   *index
	errs ErrorList

	// opening and closing delimiters per context
	opens  map[string]map[string]bool
	closes map[string]map[string]bool
}

// validate checks the grammar across all versions and indexes its items.
func validate(g *Grammar) (*index, ErrorList) {
	v := &validator{
		ix:     &index{items: map[string]Item{}, context: map[string]string{}},
		opens:  map[string]map[string]bool{},
		closes: map[string]map[string]bool{},
	}
	if len(g.Contexts) == 0 {
		v.errs.add(g.Name, "grammar has no lexical contexts")
	}

	seen := map[string]bool{}
	for _, ctx := range g.Contexts {
		if seen[ctx.Name] {
			v.errs.add(ctx.Name, "lexical context is defined more than once")
		}
		seen[ctx.Name] = true
		for _, it := range ctx.Items {
			name := it.ItemName()
			switch {
			case name == "":
				v.errs.add(ctx.Name, "item without a name")
			case v.ix.items[name] != nil:
				v.errs.add(name, "defined more than once")
			default:
				v.ix.items[name] = it
				v.ix.context[name] = ctx.Name
			}
		}
	}

	for _, ctx := range g.Contexts {
		v.opens[ctx.Name] = map[string]bool{}
		v.closes[ctx.Name] = map[string]bool{}
		identifier := ""
		for _, it := range ctx.Items {
			if kw, ok := it.(*KeywordItem); ok {
				if identifier != "" && kw.Identifier != identifier {
					v.errs.add(kw.Name, "identifier %s differs from %s used by other keywords of context %s", kw.Identifier, identifier, ctx.Name)
				}
				identifier = kw.Identifier
			}
			v.item(ctx.Name, it)
		}
		for _, open := range slices.Sorted(maps.Keys(v.opens[ctx.Name])) {
			if v.closes[ctx.Name][open] {
				v.errs.add(open, "used both as an opening and a closing delimiter in context %s", ctx.Name)
			}
		}
	}

	v.trivia(g.Name, g.LeadingTrivia)
	v.trivia(g.Name, g.TrailingTrivia)
	v.fragmentCycles(g)
	return v.ix, v.errs
}

func (v *validator) item(ctx string, it Item) {
	switch it := it.(type) {
	case *RuleItem:
		v.parser(ctx, it.Name, it.Body)
	case *PrecedenceItem:
		if len(it.Levels) == 0 {
			v.errs.add(it.Name, "precedence expression has no levels")
		}
		if len(it.Levels) > parser.MaxPrecedenceLevels {
			v.errs.add(it.Name, "%d precedence levels, at most %d are supported", len(it.Levels), parser.MaxPrecedenceLevels)
		}
		for _, level := range it.Levels {
			if level.Name == "" {
				v.errs.add(it.Name, "precedence level without a name")
			}
			for _, op := range level.Operators {
				v.parser(ctx, it.Name, op.Body)
			}
		}
		v.parser(ctx, it.Name, it.Primary)
	case *TokenItem:
		if len(it.Definitions) == 0 {
			v.errs.add(it.Name, "token has no definitions")
		}
		for _, def := range it.Definitions {
			v.scanner(it.Name, def.Scanner)
		}
	case *KeywordItem:
		if len(it.Definitions) == 0 {
			v.errs.add(it.Name, "keyword has no definitions")
		}
		if _, ok := v.ix.items[it.Identifier].(*TokenItem); !ok || v.ix.context[it.Identifier] != ctx {
			v.errs.add(it.Name, "identifier %s is not a token of context %s", it.Identifier, ctx)
		}
		for _, def := range it.Definitions {
			if def.Value == nil {
				v.errs.add(it.Name, "keyword definition has no value")
			}
		}
	case *TriviaItem:
		v.scanner(it.Name, it.Scanner)
	case *FragmentItem:
		v.scanner(it.Name, it.Scanner)
	}
}

func (v *validator) token(ctx, owner, name, role string) {
	switch {
	case v.ix.items[name] == nil:
		v.errs.add(owner, "%s %s is not defined", role, name)
	case !v.ix.terminal(name):
		v.errs.add(owner, "%s %s is not a token", role, name)
	case v.ix.context[name] != ctx:
		v.errs.add(owner, "%s %s is not defined in lexical context %s", role, name, ctx)
	}
}

func (v *validator) parser(ctx, owner string, p Parser) {
	switch p := p.(type) {
	case nil:
		v.errs.add(owner, "missing parser")
	case Sequence:
		if len(p.Items) == 0 {
			v.errs.add(owner, "empty sequence")
		}
		for _, child := range p.Items {
			v.parser(ctx, owner, child)
		}
	case Choice:
		if len(p.Items) == 0 {
			v.errs.add(owner, "empty choice")
		}
		for _, child := range p.Items {
			v.parser(ctx, owner, child)
		}
	case Optional:
		v.parser(ctx, owner, p.Body)
	case ZeroOrMore:
		v.parser(ctx, owner, p.Body)
	case OneOrMore:
		v.parser(ctx, owner, p.Body)
	case Versioned:
		v.parser(ctx, owner, p.Body)
	case SeparatedBy:
		v.token(ctx, owner, p.Separator, "separator")
		v.parser(ctx, owner, p.Body)
	case TerminatedBy:
		v.token(ctx, owner, p.Terminator, "terminator")
		v.parser(ctx, owner, p.Body)
	case DelimitedBy:
		v.token(ctx, owner, p.Open, "delimiter")
		v.token(ctx, owner, p.Close, "delimiter")
		v.opens[ctx][p.Open] = true
		v.closes[ctx][p.Close] = true
		v.parser(ctx, owner, p.Body)
	case Token:
		v.token(ctx, owner, p.Name, "token")
	case Ref:
		if !v.ix.rule(p.Name) {
			v.errs.add(owner, "reference to unknown rule %s", p.Name)
		}
	}
}

// trivia checks that a trivia parser only combines trivia tokens.
func (v *validator) trivia(owner string, p Parser) {
	switch p := p.(type) {
	case nil:
	case Sequence:
		for _, child := range p.Items {
			v.trivia(owner, child)
		}
	case Choice:
		for _, child := range p.Items {
			v.trivia(owner, child)
		}
	case Optional:
		v.trivia(owner, p.Body)
	case ZeroOrMore:
		v.trivia(owner, p.Body)
	case OneOrMore:
		v.trivia(owner, p.Body)
	case Versioned:
		v.trivia(owner, p.Body)
	case Token:
		if !v.ix.trivia(p.Name) {
			v.errs.add(owner, "trivia parser refers to %s, which is not a trivia item", p.Name)
		}
	default:
		v.errs.add(owner, "trivia parsers may only combine trivia tokens")
	}
}

func (v *validator) scanner(owner string, sc Scanner) {
	switch sc := sc.(type) {
	case nil:
		v.errs.add(owner, "missing scanner")
	case Atom:
		if sc.Text == "" {
			v.errs.add(owner, "empty atom")
		}
	case CharRange:
		if sc.From > sc.To {
			v.errs.add(owner, "empty character range %q..%q", sc.From, sc.To)
		}
	case NoneOf:
	case ScanSequence:
		for _, child := range sc.Items {
			v.scanner(owner, child)
		}
	case ScanChoice:
		for _, child := range sc.Items {
			v.scanner(owner, child)
		}
	case ScanOptional:
		v.scanner(owner, sc.Body)
	case ScanZeroOrMore:
		v.scanner(owner, sc.Body)
	case ScanOneOrMore:
		v.scanner(owner, sc.Body)
	case NotFollowedBy:
		v.scanner(owner, sc.Body)
		v.scanner(owner, sc.Lookahead)
	case Fragment:
		if _, ok := v.ix.items[sc.Name].(*FragmentItem); !ok {
			v.errs.add(owner, "reference to unknown fragment %s", sc.Name)
		}
	}
}

// fragmentCycles reports fragments that refer to themselves, which would
// never finish scanning.
func (v *validator) fragmentCycles(g *Grammar) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := map[string]int{}

	var visit func(name string) bool
	var refs func(sc Scanner, yield func(string) bool) bool
	refs = func(sc Scanner, yield func(string) bool) bool {
		switch sc := sc.(type) {
		case Fragment:
			return yield(sc.Name)
		case ScanSequence:
			for _, child := range sc.Items {
				if !refs(child, yield) {
					return false
				}
			}
		case ScanChoice:
			for _, child := range sc.Items {
				if !refs(child, yield) {
					return false
				}
			}
		case ScanOptional:
			return refs(sc.Body, yield)
		case ScanZeroOrMore:
			return refs(sc.Body, yield)
		case ScanOneOrMore:
			return refs(sc.Body, yield)
		case NotFollowedBy:
			return refs(sc.Body, yield) && refs(sc.Lookahead, yield)
		}
		return true
	}
	visit = func(name string) bool {
		f, ok := v.ix.items[name].(*FragmentItem)
		if !ok {
			return true
		}
		switch state[name] {
		case visiting:
			v.errs.add(name, "fragment refers to itself")
			return false
		case done:
			return true
		}
		state[name] = visiting
		ok = refs(f.Scanner, visit)
		state[name] = done
		return ok
	}

	for _, ctx := range g.Contexts {
		for _, it := range ctx.Items {
			if f, ok := it.(*FragmentItem); ok && state[f.Name] == unvisited {
				visit(f.Name)
			}
		}
	}
}
