// Package syntax turns a parsed query document into a uniform tree of typed
// nodes. Children keep document order.
package syntax

import (
	"fmt"

	"github.com/hanpama/graphplan/internal/language"
)

type Kind int

const (
	KindDocument Kind = iota
	KindOperation
	KindVariableDefinition
	KindFieldCollection
	KindField
	KindInlineFragment
	KindFragmentSpread
	KindNamedFragment
	KindDirective
	KindInputItemCollection
	KindInputItem
	KindScalarValue
	KindEnumValue
	KindListValue
	KindComplexValue
	KindNullValue
	KindVariableValue
)

var kindNames = [...]string{
	KindDocument:            "Document",
	KindOperation:           "Operation",
	KindVariableDefinition:  "VariableDefinition",
	KindFieldCollection:     "FieldCollection",
	KindField:               "Field",
	KindInlineFragment:      "InlineFragment",
	KindFragmentSpread:      "FragmentSpread",
	KindNamedFragment:       "NamedFragment",
	KindDirective:           "Directive",
	KindInputItemCollection: "InputItemCollection",
	KindInputItem:           "InputItem",
	KindScalarValue:         "ScalarValue",
	KindEnumValue:           "EnumValue",
	KindListValue:           "ListValue",
	KindComplexValue:        "ComplexValue",
	KindNullValue:           "NullValue",
	KindVariableValue:       "VariableValue",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsValue reports whether k is one of the supplied value kinds.
func (k Kind) IsValue() bool { return k >= KindScalarValue }

// ScalarKind distinguishes scalar literals.
type ScalarKind int

const (
	ScalarNone ScalarKind = iota
	ScalarInt
	ScalarFloat
	ScalarString
	ScalarBoolean
)

func (k ScalarKind) String() string {
	switch k {
	case ScalarInt:
		return "Int"
	case ScalarFloat:
		return "Float"
	case ScalarString:
		return "String"
	case ScalarBoolean:
		return "Boolean"
	}
	return "None"
}

type Position struct {
	Line   int
	Column int
}

// Node is one element of the syntax tree.
type Node struct {
	Kind     Kind
	Position Position
	Parent   *Node
	Children []*Node

	// Name is the operation, field, fragment, directive, argument or
	// variable name.
	Name  string
	Alias string
	// Operation is "query", "mutation" or "subscription".
	Operation string
	// TypeCondition is the fragment's target type name.
	TypeCondition string
	// Type is the declared type of a variable definition.
	Type *language.Type
	// Raw holds a scalar or enum literal as written.
	Raw    string
	Scalar ScalarKind
}

// ResponseName is the alias of a field, or its name when no alias is set.
func (n *Node) ResponseName() string {
	if n.Alias != "" {
		return n.Alias
	}
	return n.Name
}

// FirstChild returns the first child of kind k or nil.
func (n *Node) FirstChild(k Kind) *Node {
	for _, c := range n.Children {
		if c.Kind == k {
			return c
		}
	}
	return nil
}

// ParentOfParent returns the grandparent node or nil.
func (n *Node) ParentOfParent() *Node {
	if n.Parent == nil {
		return nil
	}
	return n.Parent.Parent
}

func (n *Node) String() string {
	switch {
	case n.Name != "":
		return fmt.Sprintf("%s(%s) %d:%d", n.Kind, n.Name, n.Position.Line, n.Position.Column)
	case n.Raw != "":
		return fmt.Sprintf("%s(%s) %d:%d", n.Kind, n.Raw, n.Position.Line, n.Position.Column)
	}
	return fmt.Sprintf("%s %d:%d", n.Kind, n.Position.Line, n.Position.Column)
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the node's children.
func Walk(n *Node, fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

func (n *Node) add(c *Node) *Node {
	c.Parent = n
	n.Children = append(n.Children, c)
	return c
}
