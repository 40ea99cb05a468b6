package construction

import (
	"github.com/hanpama/graphplan/internal/document"
	"github.com/hanpama/graphplan/internal/rules"
	"github.com/hanpama/graphplan/internal/schema"
	"github.com/hanpama/graphplan/internal/syntax"
)

// DefaultSteps returns the steps that build a document from a query.
func DefaultSteps() []*Step {
	steps := []*Step{
		{Name: "CreateOperation", Node: syntax.KindOperation, Ancestor: RootAncestor, Execute: createOperation},
		{Name: "CreateNamedFragment", Node: syntax.KindNamedFragment, Ancestor: RootAncestor, Execute: createNamedFragment},
		{Name: "CreateVariable", Node: syntax.KindVariableDefinition, Ancestor: document.KindOperation, Execute: createVariable},

		{Name: "CreateOperationSelectionSet", Node: syntax.KindFieldCollection, Ancestor: document.KindOperation, Execute: createSelectionSet},
		{Name: "CreateFieldSelectionSet", Node: syntax.KindFieldCollection, Ancestor: document.KindFieldSelection, Execute: createSelectionSet},
		{Name: "CreateInlineFragmentSelectionSet", Node: syntax.KindFieldCollection, Ancestor: document.KindInlineFragment, Execute: createSelectionSet},
		{Name: "CreateNamedFragmentSelectionSet", Node: syntax.KindFieldCollection, Ancestor: document.KindNamedFragment, Execute: createSelectionSet},

		{Name: "CreateFieldSelection", Node: syntax.KindField, Ancestor: document.KindFieldSelectionSet, Execute: createFieldSelection},
		{Name: "CreateInlineFragment", Node: syntax.KindInlineFragment, Ancestor: document.KindFieldSelectionSet, Execute: createInlineFragment},
		{Name: "CreateFragmentSpread", Node: syntax.KindFragmentSpread, Ancestor: document.KindFieldSelectionSet, Execute: createFragmentSpread},

		{
			Name:          "CreateDirective",
			Node:          syntax.KindDirective,
			Ancestor:      AnyAncestor,
			ShouldExecute: func(c *Context) bool { return c.Current != nil },
			Execute:       createDirective,
		},

		{Name: "CreateFieldArgument", Node: syntax.KindInputItem, Ancestor: document.KindFieldSelection, Execute: createFieldArgument},
		{
			Name:     "CreateDirectiveArgument",
			Node:     syntax.KindInputItem,
			Ancestor: document.KindDirective,
			ShouldExecute: func(c *Context) bool {
				gp := c.Node.ParentOfParent()
				return gp != nil && gp.Kind == syntax.KindDirective
			},
			Execute: createDirectiveArgument,
		},
		{
			Name:          "CreateInputField",
			Node:          syntax.KindInputItem,
			Ancestor:      document.KindSuppliedValue,
			ShouldExecute: func(c *Context) bool { return c.Current.ValueKind == document.ValueComplex },
			Execute:       createInputField,
		},
	}

	for _, k := range []syntax.Kind{
		syntax.KindScalarValue, syntax.KindEnumValue, syntax.KindListValue,
		syntax.KindComplexValue, syntax.KindNullValue, syntax.KindVariableValue,
	} {
		steps = append(steps,
			&Step{
				Name:     "CreateArgumentValue",
				Node:     k,
				Ancestor: document.KindInputArgument,
				Execute:  func(c *Context) bool { return createValue(c, c.Current.TypeExpression) },
			},
			&Step{
				Name:     "CreateVariableDefault",
				Node:     k,
				Ancestor: document.KindVariable,
				Execute:  func(c *Context) bool { return createValue(c, c.Current.TypeExpression) },
			},
			&Step{
				Name:          "CreateListItem",
				Node:          k,
				Ancestor:      document.KindSuppliedValue,
				ShouldExecute: func(c *Context) bool { return c.Current.ValueKind == document.ValueList },
				Execute: func(c *Context) bool {
					var item *schema.TypeRef
					if c.Current.TypeExpression != nil {
						item = c.Current.TypeExpression.ListItem()
					}
					return createValue(c, item)
				},
			},
		)
	}
	steps = append(steps, &Step{
		Name:     "ResolveVariableReference",
		Node:     syntax.KindVariableValue,
		Ancestor: AnyAncestor,
		Slot:     1,
		ShouldExecute: func(c *Context) bool {
			return c.Created != nil && c.Document.Ancestor(c.Created, document.KindOperation) != nil
		},
		Execute: resolveVariableReference,
	})
	return steps
}

func createOperation(c *Context) bool {
	p := document.NewPart(document.KindOperation, c.Node)
	p.OperationType = c.Node.Operation
	p.GraphType = c.Schema.Operation(c.Node.Operation)
	c.AddPart(p)
	return true
}

func createNamedFragment(c *Context) bool {
	p := document.NewPart(document.KindNamedFragment, c.Node)
	p.GraphType = c.Schema.FindGraphType(c.Node.TypeCondition)
	c.AddPart(p)
	return true
}

func createVariable(c *Context) bool {
	p := document.NewPart(document.KindVariable, c.Node)
	p.TypeExpression = schema.TypeRefFromAST(c.Node.Type)
	p.GraphType = c.NamedType(p.TypeExpression)
	c.AddPart(p)
	return true
}

func createSelectionSet(c *Context) bool {
	p := document.NewPart(document.KindFieldSelectionSet, c.Node)
	p.GraphType = c.Current.GraphType
	c.AddPart(p)
	return true
}

func createFieldSelection(c *Context) bool {
	set := c.Current
	if set.GraphType == nil {
		// the owner's type is unknown and already reported
		return false
	}
	field := set.GraphType.Field(c.Node.Name)
	if field == nil {
		return c.Fail(rules.FieldSelections, "Cannot query field %q on type %q.", c.Node.Name, set.GraphType.Name)
	}
	p := document.NewPart(document.KindFieldSelection, c.Node)
	p.Field = field
	p.TypeExpression = field.Type
	p.GraphType = c.NamedType(field.Type)
	if owner := c.Document.ParentOf(set); owner != nil {
		switch owner.Kind {
		case document.KindInlineFragment, document.KindNamedFragment:
			p.TargetGraphType = set.GraphType
		}
	}
	c.AddPart(p)
	return true
}

func createInlineFragment(c *Context) bool {
	p := document.NewPart(document.KindInlineFragment, c.Node)
	if c.Node.TypeCondition == "" {
		p.GraphType = c.Current.GraphType
	} else {
		p.GraphType = c.Schema.FindGraphType(c.Node.TypeCondition)
	}
	c.AddPart(p)
	return true
}

func createFragmentSpread(c *Context) bool {
	c.AddPart(document.NewPart(document.KindFragmentSpread, c.Node))
	return true
}

func createDirective(c *Context) bool {
	owner := c.Current
	p := document.NewPart(document.KindDirective, c.Node)
	p.Directive = c.Schema.FindDirective(c.Node.Name)
	p.Location = directiveLocation(owner)
	p.Rank = c.Rank(c.Node)
	c.AddPart(p)
	owner.InsertDirective(p.ID, p.Rank)
	return true
}

func directiveLocation(owner *document.Part) schema.DirectiveLocation {
	switch owner.Kind {
	case document.KindOperation:
		switch owner.OperationType {
		case "mutation":
			return schema.LocationMutation
		case "subscription":
			return schema.LocationSubscription
		}
		return schema.LocationQuery
	case document.KindFieldSelection:
		return schema.LocationField
	case document.KindInlineFragment:
		return schema.LocationInlineFragment
	case document.KindFragmentSpread:
		return schema.LocationFragmentSpread
	case document.KindNamedFragment:
		return schema.LocationFragmentDefinition
	case document.KindVariable:
		return schema.LocationVariableDefinition
	}
	return ""
}

func createFieldArgument(c *Context) bool {
	field := c.Current.Field
	arg := field.Argument(c.Node.Name)
	if arg == nil {
		return c.Fail(rules.ArgumentNames, "Unknown argument %q on field %q.", c.Node.Name, field.Name)
	}
	return addArgument(c, arg)
}

func createDirectiveArgument(c *Context) bool {
	d := c.Current.Directive
	if d == nil {
		return false
	}
	var arg *schema.InputValue
	for _, a := range d.Arguments {
		if a.Name == c.Node.Name {
			arg = a
			break
		}
	}
	if arg == nil {
		return c.Fail(rules.ArgumentNames, "Unknown argument %q on directive \"@%s\".", c.Node.Name, d.Name)
	}
	return addArgument(c, arg)
}

func createInputField(c *Context) bool {
	t := c.Current.GraphType
	if t == nil || t.Kind != schema.TypeKindInputObject {
		return false
	}
	field := t.InputField(c.Node.Name)
	if field == nil {
		return c.Fail(rules.InputObjectFieldNames, "Field %q is not defined by type %q.", c.Node.Name, t.Name)
	}
	return addArgument(c, field)
}

func addArgument(c *Context, def *schema.InputValue) bool {
	p := document.NewPart(document.KindInputArgument, c.Node)
	p.Argument = def
	p.TypeExpression = def.Type
	p.GraphType = c.NamedType(def.Type)
	c.AddPart(p)
	return true
}

var valueKinds = map[syntax.Kind]document.ValueKind{
	syntax.KindScalarValue:   document.ValueScalar,
	syntax.KindEnumValue:     document.ValueEnum,
	syntax.KindListValue:     document.ValueList,
	syntax.KindComplexValue:  document.ValueComplex,
	syntax.KindNullValue:     document.ValueNull,
	syntax.KindVariableValue: document.ValueVariable,
}

func createValue(c *Context, expected *schema.TypeRef) bool {
	p := document.NewPart(document.KindSuppliedValue, c.Node)
	p.ValueKind = valueKinds[c.Node.Kind]
	p.Raw = c.Node.Raw
	p.ScalarKind = c.Node.Scalar
	p.TypeExpression = expected
	p.GraphType = c.NamedType(expected)
	c.AddPart(p)
	return true
}

// resolveVariableReference points a variable value at the variable declared
// by its operation. Undeclared variables stay unresolved.
func resolveVariableReference(c *Context) bool {
	op := c.Document.Ancestor(c.Created, document.KindOperation)
	for _, v := range c.Document.ChildrenOfKind(op, document.KindVariable) {
		if v.Name == c.Created.Name {
			c.Created.Variable = v.ID
			v.Referenced = true
			break
		}
	}
	return true
}
