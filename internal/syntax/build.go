package syntax

import (
	"github.com/hanpama/graphplan/internal/language"
)

// Parse parses query text and builds its syntax tree.
func Parse(query string) (*Node, error) {
	doc, err := language.ParseQuery(query)
	if err != nil {
		return nil, err
	}
	return Build(doc), nil
}

// Build converts a parsed document. Operations come first, then fragments,
// each group in the order written.
func Build(doc *language.QueryDocument) *Node {
	root := &Node{Kind: KindDocument, Position: Position{Line: 1, Column: 1}}
	for _, op := range doc.Operations {
		root.add(buildOperation(op))
	}
	for _, frag := range doc.Fragments {
		root.add(buildFragment(frag))
	}
	return root
}

func position(p *language.Position) Position {
	if p == nil {
		return Position{}
	}
	return Position{Line: p.Line, Column: p.Column}
}

func buildOperation(op *language.OperationDefinition) *Node {
	n := &Node{
		Kind:      KindOperation,
		Name:      op.Name,
		Operation: string(op.Operation),
		Position:  position(op.Position),
	}
	for _, v := range op.VariableDefinitions {
		vn := n.add(&Node{
			Kind:     KindVariableDefinition,
			Name:     v.Variable,
			Type:     v.Type,
			Position: position(v.Position),
		})
		if v.DefaultValue != nil {
			vn.add(buildValue(v.DefaultValue))
		}
		addDirectives(vn, v.Directives)
	}
	addDirectives(n, op.Directives)
	n.add(buildSelectionSet(op.SelectionSet, op.Position))
	return n
}

func buildFragment(frag *language.FragmentDefinition) *Node {
	n := &Node{
		Kind:          KindNamedFragment,
		Name:          frag.Name,
		TypeCondition: frag.TypeCondition,
		Position:      position(frag.Position),
	}
	addDirectives(n, frag.Directives)
	n.add(buildSelectionSet(frag.SelectionSet, frag.Position))
	return n
}

func buildSelectionSet(set language.SelectionSet, owner *language.Position) *Node {
	n := &Node{Kind: KindFieldCollection, Position: position(owner)}
	for _, sel := range set {
		switch s := sel.(type) {
		case *language.Field:
			n.add(buildField(s))
		case *language.InlineFragment:
			in := n.add(&Node{
				Kind:          KindInlineFragment,
				TypeCondition: s.TypeCondition,
				Position:      position(s.Position),
			})
			addDirectives(in, s.Directives)
			in.add(buildSelectionSet(s.SelectionSet, s.Position))
		case *language.FragmentSpread:
			sn := n.add(&Node{
				Kind:     KindFragmentSpread,
				Name:     s.Name,
				Position: position(s.Position),
			})
			addDirectives(sn, s.Directives)
		}
	}
	return n
}

func buildField(f *language.Field) *Node {
	n := &Node{
		Kind:     KindField,
		Name:     f.Name,
		Alias:    f.Alias,
		Position: position(f.Position),
	}
	// gqlparser fills Alias with the name when no alias is written
	if n.Alias == n.Name {
		n.Alias = ""
	}
	if len(f.Arguments) > 0 {
		n.add(buildArguments(f.Arguments, f.Position))
	}
	addDirectives(n, f.Directives)
	if len(f.SelectionSet) > 0 {
		n.add(buildSelectionSet(f.SelectionSet, f.Position))
	}
	return n
}

func addDirectives(n *Node, dirs language.DirectiveList) {
	for _, d := range dirs {
		dn := n.add(&Node{
			Kind:     KindDirective,
			Name:     d.Name,
			Position: position(d.Position),
		})
		if len(d.Arguments) > 0 {
			dn.add(buildArguments(d.Arguments, d.Position))
		}
	}
}

func buildArguments(args language.ArgumentList, owner *language.Position) *Node {
	n := &Node{Kind: KindInputItemCollection, Position: position(owner)}
	for _, a := range args {
		item := n.add(&Node{Kind: KindInputItem, Name: a.Name, Position: position(a.Position)})
		item.add(buildValue(a.Value))
	}
	return n
}

func buildValue(v *language.Value) *Node {
	n := &Node{Position: position(v.Position), Raw: v.Raw}
	switch v.Kind {
	case language.Variable:
		n.Kind = KindVariableValue
		n.Name = v.Raw
		n.Raw = ""
	case language.IntValue:
		n.Kind, n.Scalar = KindScalarValue, ScalarInt
	case language.FloatValue:
		n.Kind, n.Scalar = KindScalarValue, ScalarFloat
	case language.StringValue, language.BlockValue:
		n.Kind, n.Scalar = KindScalarValue, ScalarString
	case language.BooleanValue:
		n.Kind, n.Scalar = KindScalarValue, ScalarBoolean
	case language.NullValue:
		n.Kind = KindNullValue
		n.Raw = ""
	case language.EnumValue:
		n.Kind = KindEnumValue
	case language.ListValue:
		n.Kind = KindListValue
		n.Raw = ""
		for _, c := range v.Children {
			n.add(buildValue(c.Value))
		}
	case language.ObjectValue:
		n.Kind = KindComplexValue
		n.Raw = ""
		for _, c := range v.Children {
			item := n.add(&Node{Kind: KindInputItem, Name: c.Name, Position: position(c.Position)})
			item.add(buildValue(c.Value))
		}
	}
	return n
}
