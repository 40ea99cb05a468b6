package validation

import (
	"fmt"

	"github.com/hanpama/graphplan/internal/document"
	"github.com/hanpama/graphplan/internal/rules"
)

func operationRules() []*Rule {
	return []*Rule{
		{Ref: rules.OperationNameUniqueness, Kind: document.KindOperation, ShouldExecute: named, Execute: operationNameUniqueness},
		{Ref: rules.LoneAnonymousOperation, Kind: document.KindOperation, Execute: loneAnonymousOperation},
		{Ref: rules.OperationTypeSupported, Kind: document.KindOperation, Execute: operationTypeSupported},
		{
			Ref:           rules.SingleRootField,
			Kind:          document.KindOperation,
			ShouldExecute: func(c *Context, p *document.Part) bool { return p.OperationType == "subscription" },
			Execute:       singleRootField,
		},
		{Ref: rules.AllVariableUsesDefined, Kind: document.KindOperation, Execute: allVariableUsesDefined},
		{Ref: rules.AllVariablesUsed, Kind: document.KindOperation, Execute: allVariablesUsed},
		{Ref: rules.AllVariableUsagesAreAllowed, Kind: document.KindOperation, Execute: allVariableUsagesAreAllowed},
	}
}

func named(c *Context, p *document.Part) bool { return p.Name != "" }

func operationName(p *document.Part) string {
	if p.Name == "" {
		return "anonymous " + p.OperationType
	}
	return p.Name
}

func operationNameUniqueness(c *Context, p *document.Part) bool {
	return c.Once("5.2.1.1:"+p.Name, func() bool {
		count := 0
		for _, op := range c.Document.Operations() {
			if op.Name == p.Name {
				count++
			}
		}
		if count > 1 {
			return c.Report(rules.OperationNameUniqueness, p, "There can be only one operation named %q.", p.Name)
		}
		return true
	})
}

func loneAnonymousOperation(c *Context, p *document.Part) bool {
	if p.Name != "" || len(c.Document.Operations()) == 1 {
		return true
	}
	return c.Once("5.2.2.1", func() bool {
		return c.Report(rules.LoneAnonymousOperation, p, "This anonymous operation must be the only defined operation.")
	})
}

func operationTypeSupported(c *Context, p *document.Part) bool {
	if p.GraphType != nil {
		return true
	}
	return c.Report(rules.OperationTypeSupported, p, "Schema does not support operation type %q.", p.OperationType)
}

func singleRootField(c *Context, p *document.Part) bool {
	set := c.Document.FirstChild(p, document.KindFieldSelectionSet)
	if set == nil {
		return true
	}
	names := map[string]bool{}
	for _, f := range c.collectFields(set) {
		names[f.ResponseName()] = true
	}
	if len(names) > 1 {
		return c.Report(rules.SingleRootField, p, "Subscription %q must select only one top level field.", operationName(p))
	}
	return true
}

func declaredVariable(c *Context, op *document.Part, name string) *document.Part {
	for _, v := range c.Document.ChildrenOfKind(op, document.KindVariable) {
		if v.Name == name {
			return v
		}
	}
	return nil
}

func allVariableUsesDefined(c *Context, op *document.Part) bool {
	ok := true
	reported := map[string]bool{}
	for _, u := range c.Document.VariableUsages(op) {
		if reported[u.Name] || declaredVariable(c, op, u.Name) != nil {
			continue
		}
		reported[u.Name] = true
		ok = c.Report(rules.AllVariableUsesDefined, u, "Variable \"$%s\" is not defined by operation %q.", u.Name, operationName(op))
	}
	return ok
}

func allVariablesUsed(c *Context, op *document.Part) bool {
	used := map[string]bool{}
	for _, u := range c.Document.VariableUsages(op) {
		used[u.Name] = true
	}
	ok := true
	for _, v := range c.Document.ChildrenOfKind(op, document.KindVariable) {
		if !used[v.Name] {
			ok = c.Report(rules.AllVariablesUsed, v, "Variable \"$%s\" is never used in operation %q.", v.Name, operationName(op))
		}
	}
	return ok
}

// allVariableUsagesAreAllowed requires the declared type of a variable to be
// exactly the type expected where it is used.
func allVariableUsagesAreAllowed(c *Context, op *document.Part) bool {
	ok := true
	for _, u := range c.Document.VariableUsages(op) {
		v := declaredVariable(c, op, u.Name)
		if v == nil || v.TypeExpression == nil || u.TypeExpression == nil {
			continue
		}
		if !v.TypeExpression.Equal(u.TypeExpression) {
			ok = c.Report(rules.AllVariableUsagesAreAllowed, u,
				"Variable \"$%s\" of type %q used in position expecting type %q.",
				u.Name, v.TypeExpression.String(), u.TypeExpression.String())
		}
	}
	return ok
}

func variableRules() []*Rule {
	return []*Rule{
		{Ref: rules.VariableUniqueness, Kind: document.KindVariable, Execute: variableUniqueness},
		{Ref: rules.VariablesAreInputTypes, Kind: document.KindVariable, Execute: variablesAreInputTypes},
	}
}

func variableUniqueness(c *Context, v *document.Part) bool {
	op := c.Document.ParentOf(v)
	return c.Once(fmt.Sprintf("5.8.1:%d:%s", op.ID, v.Name), func() bool {
		if len(sameName(c.Document.ChildrenOfKind(op, document.KindVariable), v.Name)) > 1 {
			return c.Report(rules.VariableUniqueness, v, "There can be only one variable named \"$%s\".", v.Name)
		}
		return true
	})
}

func variablesAreInputTypes(c *Context, v *document.Part) bool {
	if v.GraphType.IsInput() {
		return true
	}
	return c.Report(rules.VariablesAreInputTypes, v, "Variable \"$%s\" cannot be non-input type %q.", v.Name, v.TypeExpression.String())
}

func sameName(parts []*document.Part, name string) []*document.Part {
	var out []*document.Part
	for _, p := range parts {
		if p.Name == name {
			out = append(out, p)
		}
	}
	return out
}
