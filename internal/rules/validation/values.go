package validation

import (
	"fmt"
	"strings"

	"github.com/hanpama/graphplan/internal/document"
	"github.com/hanpama/graphplan/internal/rules"
	"github.com/hanpama/graphplan/internal/schema"
	"github.com/hanpama/graphplan/internal/syntax"
)

func valueRules() []*Rule {
	complexValue := func(c *Context, p *document.Part) bool { return p.ValueKind == document.ValueComplex }
	return []*Rule{
		{
			Ref:           rules.ValuesOfCorrectType,
			Kind:          document.KindSuppliedValue,
			ShouldExecute: func(c *Context, p *document.Part) bool { return p.TypeExpression != nil },
			Execute:       valuesOfCorrectType,
		},
		{Ref: rules.InputObjectFieldUniqueness, Kind: document.KindSuppliedValue, ShouldExecute: complexValue, Execute: inputObjectFieldUniqueness},
		{Ref: rules.InputObjectRequiredFields, Kind: document.KindSuppliedValue, ShouldExecute: complexValue, Execute: inputObjectRequiredFields},
	}
}

func valuesOfCorrectType(c *Context, p *document.Part) bool {
	t := p.TypeExpression
	switch p.ValueKind {
	case document.ValueVariable:
		if c.Document.Ancestor(p, document.KindVariable) != nil {
			return c.Report(rules.ValuesOfCorrectType, p, "Variable \"$%s\" cannot be used in a default value.", p.Name)
		}
		return true
	case document.ValueNull:
		if t.IsNonNull() {
			return c.Report(rules.ValuesOfCorrectType, p, "Expected value of type %q, found null.", t.String())
		}
		return true
	case document.ValueList:
		if !t.IsList() {
			return c.Report(rules.ValuesOfCorrectType, p, "Expected value of type %q, found %s.", t.String(), c.renderValue(p))
		}
		return true
	}

	// a single value stands for a list of one, so only the item type matters
	gt := p.GraphType
	if gt == nil {
		return true
	}
	if p.ValueKind == document.ValueComplex {
		if gt.Kind != schema.TypeKindInputObject {
			return c.Report(rules.ValuesOfCorrectType, p, "Expected value of type %q, found %s.", t.String(), c.renderValue(p))
		}
		if gt.OneOf && len(c.Document.ChildrenOfKind(p, document.KindInputArgument)) != 1 {
			return c.Report(rules.ValuesOfCorrectType, p, "OneOf Input Object %q must specify exactly one key.", gt.Name)
		}
		return true
	}
	if !literalFits(p, gt) {
		return c.Report(rules.ValuesOfCorrectType, p, "Expected value of type %q, found %s.", t.String(), c.renderValue(p))
	}
	return true
}

// literalFits reports whether a scalar or enum literal can be coerced to gt.
func literalFits(p *document.Part, gt *schema.Type) bool {
	switch gt.Kind {
	case schema.TypeKindEnum:
		if p.ValueKind != document.ValueEnum {
			return false
		}
	case schema.TypeKindScalar:
		if p.ValueKind != document.ValueScalar {
			return false
		}
		if gt.Name == "Int" && p.ScalarKind != syntax.ScalarInt {
			return false
		}
	default:
		return false
	}
	lit, err := p.Literal()
	if err != nil {
		return false
	}
	_, err = schema.ParseLeaf(gt, lit)
	return err == nil
}

func inputObjectFieldUniqueness(c *Context, p *document.Part) bool {
	ok := true
	seen := map[string]bool{}
	for _, f := range c.Document.ChildrenOfKind(p, document.KindInputArgument) {
		if seen[f.Name] {
			ok = c.Report(rules.InputObjectFieldUniqueness, f, "There can be only one input field named %q.", f.Name)
			continue
		}
		seen[f.Name] = true
	}
	return ok
}

func inputObjectRequiredFields(c *Context, p *document.Part) bool {
	gt := p.GraphType
	if gt == nil || gt.Kind != schema.TypeKindInputObject {
		return true
	}
	supplied := c.Document.ChildrenOfKind(p, document.KindInputArgument)
	var missing []string
	for _, def := range gt.InputFields {
		if !def.Type.IsNonNull() || def.DefaultValue != nil {
			continue
		}
		fields := sameName(supplied, def.Name)
		if len(fields) == 0 {
			missing = append(missing, fmt.Sprintf("%s.%s of required type %s", gt.Name, def.Name, def.Type))
			continue
		}
		if v := c.Document.FirstChild(fields[0], document.KindSuppliedValue); v != nil && v.ValueKind == document.ValueNull {
			missing = append(missing, fmt.Sprintf("%s.%s of required type %s (found null)", gt.Name, def.Name, def.Type))
		}
	}
	if len(missing) == 0 {
		return true
	}
	return c.Report(rules.InputObjectRequiredFields, p, "Field %s was not provided.", strings.Join(missing, ", "))
}
