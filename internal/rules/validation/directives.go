package validation

import (
	"github.com/hanpama/graphplan/internal/document"
	"github.com/hanpama/graphplan/internal/rules"
)

func directiveRules() []*Rule {
	out := []*Rule{
		{Ref: rules.DirectivesAreDefined, Kind: document.KindDirective, Execute: directiveIsDefined},
		{Ref: rules.DirectivesInValidLocations, Kind: document.KindDirective, Execute: directiveInValidLocation},
		{Ref: rules.ArgumentUniqueness, Kind: document.KindDirective, Execute: argumentUniqueness},
		{
			Ref:  rules.RequiredArguments,
			Kind: document.KindDirective,
			Execute: func(c *Context, p *document.Part) bool {
				return requiredArguments(c, p, p.Directive.Arguments, "Directive \"@"+p.Name+"\"")
			},
		},
	}
	for _, k := range []document.PartKind{
		document.KindOperation, document.KindVariable, document.KindFieldSelection,
		document.KindInlineFragment, document.KindFragmentSpread, document.KindNamedFragment,
	} {
		out = append(out, &Rule{
			Ref:           rules.DirectivesUniquePerLocation,
			Kind:          k,
			ShouldExecute: func(c *Context, p *document.Part) bool { return len(p.Directives) > 1 },
			Execute:       directivesUniquePerLocation,
		})
	}
	return out
}

func directiveIsDefined(c *Context, p *document.Part) bool {
	if p.Directive != nil {
		return true
	}
	return c.Report(rules.DirectivesAreDefined, p, "Unknown directive \"@%s\".", p.Name)
}

func directiveInValidLocation(c *Context, p *document.Part) bool {
	if p.Directive.AllowsLocation(p.Location) {
		return true
	}
	return c.Report(rules.DirectivesInValidLocations, p, "Directive \"@%s\" may not be used on %s.", p.Name, p.Location)
}

func directivesUniquePerLocation(c *Context, p *document.Part) bool {
	ok := true
	seen := map[string]bool{}
	for _, d := range c.Document.FieldDirectives(p) {
		if d.Directive == nil || d.Directive.IsRepeatable {
			continue
		}
		if seen[d.Name] {
			ok = c.Report(rules.DirectivesUniquePerLocation, d, "The directive \"@%s\" can only be used once at this location.", d.Name)
			continue
		}
		seen[d.Name] = true
	}
	return ok
}
