package grammar

import (
	"slices"

	"github.com/dhamidi/cstkit/cst"
	"github.com/dhamidi/cstkit/parser"
)

type firstSet struct {
	kinds    []cst.TokenKind
	nullable bool
}

func (f *firstSet) add(kinds []cst.TokenKind) {
	for _, k := range kinds {
		if !slices.Contains(f.kinds, k) {
			f.kinds = append(f.kinds, k)
		}
	}
}

// firstSets computes, for every rule enabled in the target version, the
// tokens it can start with. Rules refer to each other, possibly left
// recursively, so the sets are grown until none of them changes.
func (c *compiler) firstSets() map[cst.RuleKind][]cst.TokenKind {
	sets := map[string]firstSet{}
	for changed := true; changed; {
		changed = false
		for _, kind := range c.lang.ruleNames {
			name := string(kind)
			next := c.firstOfItem(c.ix.items[name], sets)
			prev := sets[name]
			if len(next.kinds) != len(prev.kinds) || next.nullable != prev.nullable {
				sets[name] = next
				changed = true
			}
		}
	}

	out := make(map[cst.RuleKind][]cst.TokenKind, len(sets))
	for name, set := range sets {
		kinds := slices.Clone(set.kinds)
		slices.Sort(kinds)
		out[cst.RuleKind(name)] = kinds
	}
	return out
}

func (c *compiler) firstOfItem(it Item, sets map[string]firstSet) firstSet {
	switch it := it.(type) {
	case *RuleItem:
		if !c.flags.Enabled(it.Enabled) {
			return firstSet{}
		}
		return c.first(it.Body, sets)
	case *PrecedenceItem:
		if !c.flags.Enabled(it.Enabled) {
			return firstSet{}
		}
		var set firstSet
		for _, level := range it.Levels {
			for _, op := range level.Operators {
				if op.Model == parser.Prefix && c.flags.Enabled(op.Enabled) {
					set.add(c.first(op.Body, sets).kinds)
				}
			}
		}
		primary := c.first(it.Primary, sets)
		set.add(primary.kinds)
		set.nullable = primary.nullable
		return set
	}
	return firstSet{}
}

func (c *compiler) first(p Parser, sets map[string]firstSet) firstSet {
	switch p := p.(type) {
	case Token:
		if c.disabled[p.Name] {
			return firstSet{}
		}
		return firstSet{kinds: []cst.TokenKind{cst.TokenKind(p.Name)}}
	case Ref:
		set := sets[p.Name]
		set.kinds = slices.Clip(set.kinds)
		return set
	case Sequence:
		var set firstSet
		for _, child := range p.Items {
			if !c.active(child) {
				continue
			}
			f := c.first(child, sets)
			set.add(f.kinds)
			if !f.nullable {
				return set
			}
		}
		set.nullable = true
		return set
	case Choice:
		var set firstSet
		for _, child := range p.Items {
			if !c.active(child) {
				continue
			}
			f := c.first(child, sets)
			set.add(f.kinds)
			set.nullable = set.nullable || f.nullable
		}
		return set
	case Optional:
		f := c.first(p.Body, sets)
		f.nullable = true
		return f
	case ZeroOrMore:
		f := c.first(p.Body, sets)
		f.nullable = true
		return f
	case OneOrMore:
		return c.first(p.Body, sets)
	case SeparatedBy:
		return c.first(p.Body, sets)
	case DelimitedBy:
		return firstSet{kinds: []cst.TokenKind{cst.TokenKind(p.Open)}}
	case TerminatedBy:
		f := c.first(p.Body, sets)
		if f.nullable {
			f.add([]cst.TokenKind{cst.TokenKind(p.Terminator)})
			f.nullable = false
		}
		return f
	case Versioned:
		if !c.flags.Enabled(p.Enabled) {
			return firstSet{}
		}
		return c.first(p.Body, sets)
	}
	return firstSet{}
}
