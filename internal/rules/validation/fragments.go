package validation

import (
	"strings"

	"github.com/hanpama/graphplan/internal/document"
	"github.com/hanpama/graphplan/internal/rules"
	"github.com/hanpama/graphplan/internal/schema"
)

func fragmentRules() []*Rule {
	return []*Rule{
		{
			Ref:           rules.FragmentSpreadTypeExistence,
			Kind:          document.KindInlineFragment,
			ShouldExecute: func(c *Context, p *document.Part) bool { return p.Node.TypeCondition != "" },
			Execute:       fragmentTypeExists,
		},
		{Ref: rules.FragmentsOnCompositeTypes, Kind: document.KindInlineFragment, Execute: fragmentOnCompositeType},
		{
			Ref:  rules.ObjectSpreadsInObjectScope,
			Kind: document.KindInlineFragment,
			Execute: func(c *Context, p *document.Part) bool {
				return spreadIsPossible(c, p, p.GraphType, "Fragment")
			},
		},

		{Ref: rules.FragmentSpreadTargetDefined, Kind: document.KindFragmentSpread, Execute: fragmentSpreadTargetDefined},
		{Ref: rules.FragmentNameUniqueness, Kind: document.KindFragmentSpread, Execute: fragmentNameUniqueness},
		{
			Ref:  rules.ObjectSpreadsInObjectScope,
			Kind: document.KindFragmentSpread,
			Execute: func(c *Context, p *document.Part) bool {
				frag := c.Document.Part(p.Fragment)
				if frag == nil {
					return true
				}
				return spreadIsPossible(c, p, frag.GraphType, "Fragment \""+p.Name+"\"")
			},
		},

		{Ref: rules.FragmentNameUniqueness, Kind: document.KindNamedFragment, Execute: fragmentNameUniqueness},
		{Ref: rules.FragmentSpreadTypeExistence, Kind: document.KindNamedFragment, Execute: fragmentTypeExists},
		{Ref: rules.FragmentsOnCompositeTypes, Kind: document.KindNamedFragment, Execute: fragmentOnCompositeType},
		{Ref: rules.FragmentsMustBeUsed, Kind: document.KindNamedFragment, Execute: fragmentMustBeUsed},
		{Ref: rules.FragmentSpreadsNoCycles, Kind: document.KindNamedFragment, Execute: fragmentSpreadsNoCycles},
	}
}

// fragmentNameUniqueness runs for every fragment definition and every spread
// but reports each duplicated name once.
func fragmentNameUniqueness(c *Context, p *document.Part) bool {
	return c.Once("5.5.1.1:"+p.Name, func() bool {
		defs := sameName(c.Document.NamedFragments(), p.Name)
		if len(defs) > 1 {
			return c.Report(rules.FragmentNameUniqueness, defs[1], "There can be only one fragment named %q.", p.Name)
		}
		return true
	})
}

func fragmentTypeExists(c *Context, p *document.Part) bool {
	if p.GraphType != nil {
		return true
	}
	return c.Report(rules.FragmentSpreadTypeExistence, p, "Unknown type %q.", p.Node.TypeCondition)
}

func fragmentOnCompositeType(c *Context, p *document.Part) bool {
	if p.GraphType == nil || p.GraphType.IsComposite() {
		return true
	}
	if p.Kind == document.KindNamedFragment {
		return c.Report(rules.FragmentsOnCompositeTypes, p, "Fragment %q cannot condition on non composite type %q.", p.Name, p.GraphType.Name)
	}
	return c.Report(rules.FragmentsOnCompositeTypes, p, "Fragment cannot condition on non composite type %q.", p.GraphType.Name)
}

func fragmentSpreadTargetDefined(c *Context, p *document.Part) bool {
	if p.Fragment != document.NoPart {
		return true
	}
	return c.Report(rules.FragmentSpreadTargetDefined, p, "Unknown fragment %q.", p.Name)
}

func fragmentMustBeUsed(c *Context, f *document.Part) bool {
	used := false
	c.Document.Walk(func(p *document.Part) bool {
		if p.Kind == document.KindFragmentSpread && p.Name == f.Name {
			used = true
		}
		return !used
	})
	if used {
		return true
	}
	return c.Report(rules.FragmentsMustBeUsed, f, "Fragment %q is never used.", f.Name)
}

func fragmentSpreadsNoCycles(c *Context, f *document.Part) bool {
	return c.Once("5.5.2.2:"+f.Name, func() bool {
		path := c.fragmentCycle(f)
		if path == nil {
			return true
		}
		// one report per cycle
		for _, name := range path {
			c.memo["5.5.2.2:"+name] = false
		}
		via := ""
		if len(path) > 1 {
			via = " via " + strings.Join(path[:len(path)-1], ", ")
		}
		return c.Report(rules.FragmentSpreadsNoCycles, f, "Cannot spread fragment %q within itself%s.", f.Name, via)
	})
}

// fragmentCycle returns the spread names leading from f back to itself.
func (c *Context) fragmentCycle(f *document.Part) []string {
	var path []string
	visited := map[document.PartID]bool{}
	var rec func(cur *document.Part) bool
	rec = func(cur *document.Part) bool {
		for _, s := range c.spreadsIn(cur) {
			target := c.Document.Part(s.Fragment)
			if target == nil {
				continue
			}
			path = append(path, s.Name)
			if target.ID == f.ID {
				return true
			}
			if !visited[target.ID] {
				visited[target.ID] = true
				if rec(target) {
					return true
				}
			}
			path = path[:len(path)-1]
		}
		return false
	}
	if rec(f) {
		return path
	}
	return nil
}

func (c *Context) spreadsIn(p *document.Part) []*document.Part {
	var out []*document.Part
	var rec func(p *document.Part)
	rec = func(p *document.Part) {
		for _, child := range c.Document.Children(p) {
			if child.Kind == document.KindFragmentSpread {
				out = append(out, child)
			}
			rec(child)
		}
	}
	rec(p)
	return out
}

// spreadIsPossible requires the fragment's type and the enclosing selection
// type to share at least one concrete object type.
func spreadIsPossible(c *Context, p *document.Part, fragType *schema.Type, label string) bool {
	set := c.Document.ParentOf(p)
	if set == nil || set.GraphType == nil || fragType == nil || !fragType.IsComposite() {
		return true
	}
	parentType := set.GraphType
	inParent := map[string]bool{}
	for _, t := range c.possibleTypes(parentType) {
		inParent[t.Name] = true
	}
	for _, t := range c.possibleTypes(fragType) {
		if inParent[t.Name] {
			return true
		}
	}
	return c.Report(spreadRule(parentType, fragType), p,
		"%s cannot be spread here as objects of type %q can never be of type %q.", label, parentType.Name, fragType.Name)
}

func (c *Context) possibleTypes(t *schema.Type) []*schema.Type {
	if t.IsAbstract() {
		return c.Schema.ExpandAbstractType(t)
	}
	return []*schema.Type{t}
}

func spreadRule(parent, frag *schema.Type) rules.Ref {
	switch {
	case !parent.IsAbstract() && !frag.IsAbstract():
		return rules.ObjectSpreadsInObjectScope
	case !parent.IsAbstract():
		return rules.AbstractSpreadsInObject
	case !frag.IsAbstract():
		return rules.ObjectSpreadsInAbstract
	}
	return rules.AbstractSpreadsInAbstract
}
