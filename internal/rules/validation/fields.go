package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hanpama/graphplan/internal/document"
	"github.com/hanpama/graphplan/internal/rules"
	"github.com/hanpama/graphplan/internal/schema"
	"github.com/hanpama/graphplan/internal/syntax"
)

func fieldRules() []*Rule {
	return []*Rule{
		{Ref: rules.FieldSelections, Kind: document.KindFieldSelectionSet, Execute: selectionSetResolved},
		{Ref: rules.FieldSelectionMerging, Kind: document.KindFieldSelectionSet, Execute: fieldSelectionMerging},
		{Ref: rules.LeafFieldSelections, Kind: document.KindFieldSelection, Execute: leafFieldSelections},
		{Ref: rules.ArgumentUniqueness, Kind: document.KindFieldSelection, Execute: argumentUniqueness},
		{
			Ref:  rules.RequiredArguments,
			Kind: document.KindFieldSelection,
			Execute: func(c *Context, p *document.Part) bool {
				return requiredArguments(c, p, p.Field.Arguments, fmt.Sprintf("Field %q", p.Name))
			},
		},
	}
}

// selectionSetResolved stops the other rules of a set whose type is missing
// or not composite. Operations, fragments and leaf fields report that case
// through their own rules; a set under any other owner is reported here.
func selectionSetResolved(c *Context, set *document.Part) bool {
	if set.GraphType.IsComposite() {
		return true
	}
	if ownerReportsSelectionType(c.Document.ParentOf(set)) {
		return false
	}
	if set.GraphType == nil {
		return c.Report(rules.FieldSelections, set, "Selection set of %q cannot be resolved to a type.", c.Document.Path(set))
	}
	return c.Report(rules.FieldSelections, set, "Cannot select fields on type %q.", set.GraphType.Name)
}

func ownerReportsSelectionType(owner *document.Part) bool {
	if owner == nil {
		return false
	}
	switch owner.Kind {
	case document.KindOperation, document.KindNamedFragment, document.KindInlineFragment:
		return true
	case document.KindFieldSelection:
		return owner.GraphType.IsLeaf()
	}
	return false
}

func leafFieldSelections(c *Context, p *document.Part) bool {
	if p.GraphType == nil {
		return true
	}
	sub := c.Document.FirstChild(p, document.KindFieldSelectionSet)
	switch {
	case p.GraphType.IsLeaf() && sub != nil:
		return c.Report(rules.LeafFieldSelections, p,
			"Field %q must not have a selection since type %q has no subfields.", p.Name, p.GraphType.Name)
	case p.GraphType.IsComposite() && sub == nil:
		return c.Report(rules.LeafFieldSelections, p,
			"Field %q of type %q must have a selection of subfields. Did you mean \"%s { ... }\"?",
			p.Name, p.TypeExpression.String(), p.Name)
	}
	return true
}

func argumentUniqueness(c *Context, p *document.Part) bool {
	ok := true
	seen := map[string]bool{}
	for _, arg := range c.Document.ChildrenOfKind(p, document.KindInputArgument) {
		if seen[arg.Name] {
			ok = c.Report(rules.ArgumentUniqueness, arg, "There can be only one argument named %q.", arg.Name)
			continue
		}
		seen[arg.Name] = true
	}
	return ok
}

func requiredArguments(c *Context, p *document.Part, defs []*schema.InputValue, subject string) bool {
	ok := true
	args := c.Document.ChildrenOfKind(p, document.KindInputArgument)
	for _, def := range defs {
		if !def.Type.IsNonNull() || def.DefaultValue != nil {
			continue
		}
		supplied := sameName(args, def.Name)
		if len(supplied) == 0 {
			ok = c.Report(rules.RequiredArguments, p,
				"%s argument %q of type %q is required, but it was not provided.", subject, def.Name, def.Type.String())
			continue
		}
		if v := c.Document.FirstChild(supplied[0], document.KindSuppliedValue); v != nil && v.ValueKind == document.ValueNull {
			ok = c.Report(rules.RequiredArguments, supplied[0],
				"%s argument %q of type %q must not be null.", subject, def.Name, def.Type.String())
		}
	}
	return ok
}

// fieldSelectionMerging checks that fields sharing a response name in one
// selection set can be merged into a single result entry.
func fieldSelectionMerging(c *Context, set *document.Part) bool {
	var order []string
	byName := map[string][]*document.Part{}
	for _, f := range c.collectFields(set) {
		name := f.ResponseName()
		if _, ok := byName[name]; !ok {
			order = append(order, name)
		}
		byName[name] = append(byName[name], f)
	}
	ok := true
	for _, name := range order {
		fields := byName[name]
		for _, other := range fields[1:] {
			if reason := mergeConflict(c, fields[0], other); reason != "" {
				ok = c.Report(rules.FieldSelectionMerging, other,
					"Fields %q conflict because %s. Use different aliases on the fields to fetch both if this was intentional.",
					name, reason)
				break
			}
		}
	}
	return ok
}

func mergeConflict(c *Context, a, b *document.Part) string {
	if !a.TypeExpression.Equal(b.TypeExpression) {
		return fmt.Sprintf("they return conflicting types %q and %q", a.TypeExpression.String(), b.TypeExpression.String())
	}
	pa, pb := c.parentType(a), c.parentType(b)
	if pa != pb && pa != nil && pb != nil && pa.Kind == schema.TypeKindObject && pb.Kind == schema.TypeKindObject {
		// never both apply to the same object
		return ""
	}
	if a.Name != b.Name {
		return fmt.Sprintf("%q and %q are different fields", a.Name, b.Name)
	}
	if c.argumentKey(a) != c.argumentKey(b) {
		return "they have differing arguments"
	}
	return ""
}

func (c *Context) parentType(f *document.Part) *schema.Type {
	if f.TargetGraphType != nil {
		return f.TargetGraphType
	}
	if set := c.Document.ParentOf(f); set != nil {
		return set.GraphType
	}
	return nil
}

func (c *Context) argumentKey(f *document.Part) string {
	var parts []string
	for _, arg := range c.Document.ChildrenOfKind(f, document.KindInputArgument) {
		parts = append(parts, arg.Name+":"+c.renderValue(c.Document.FirstChild(arg, document.KindSuppliedValue)))
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

// renderValue prints a supplied value the way it is written in a query.
func (c *Context) renderValue(v *document.Part) string {
	if v == nil {
		return ""
	}
	switch v.ValueKind {
	case document.ValueNull:
		return "null"
	case document.ValueVariable:
		return "$" + v.Name
	case document.ValueList:
		var items []string
		for _, item := range c.Document.ChildrenOfKind(v, document.KindSuppliedValue) {
			items = append(items, c.renderValue(item))
		}
		return "[" + strings.Join(items, ", ") + "]"
	case document.ValueComplex:
		var fields []string
		for _, f := range c.Document.ChildrenOfKind(v, document.KindInputArgument) {
			fields = append(fields, f.Name+": "+c.renderValue(c.Document.FirstChild(f, document.KindSuppliedValue)))
		}
		return "{" + strings.Join(fields, ", ") + "}"
	}
	if v.ScalarKind == syntax.ScalarString {
		return fmt.Sprintf("%q", v.Raw)
	}
	return v.Raw
}
