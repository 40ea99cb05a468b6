// Package document holds the semantic model of a query: a flat table of
// parts linked by id. Parent/child links express ownership; fragment and
// variable references are plain ids into the same table.
package document

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/hanpama/graphplan/internal/schema"
	"github.com/hanpama/graphplan/internal/syntax"
)

// PartID indexes the document's part table.
type PartID int

// NoPart marks an unset part reference.
const NoPart PartID = -1

type PartKind int

const (
	KindOperation PartKind = iota
	KindVariable
	KindFieldSelectionSet
	KindFieldSelection
	KindInlineFragment
	KindFragmentSpread
	KindNamedFragment
	KindDirective
	KindInputArgument
	KindSuppliedValue
)

var partKindNames = [...]string{
	KindOperation:         "Operation",
	KindVariable:          "Variable",
	KindFieldSelectionSet: "FieldSelectionSet",
	KindFieldSelection:    "FieldSelection",
	KindInlineFragment:    "InlineFragment",
	KindFragmentSpread:    "FragmentSpread",
	KindNamedFragment:     "NamedFragment",
	KindDirective:         "Directive",
	KindInputArgument:     "InputArgument",
	KindSuppliedValue:     "SuppliedValue",
}

func (k PartKind) String() string {
	if int(k) >= 0 && int(k) < len(partKindNames) {
		return partKindNames[k]
	}
	return fmt.Sprintf("PartKind(%d)", int(k))
}

// ValueKind is the variant of a supplied value.
type ValueKind int

const (
	ValueScalar ValueKind = iota
	ValueEnum
	ValueList
	ValueComplex
	ValueNull
	ValueVariable
)

func (k ValueKind) String() string {
	switch k {
	case ValueScalar:
		return "Scalar"
	case ValueEnum:
		return "Enum"
	case ValueList:
		return "List"
	case ValueComplex:
		return "Complex"
	case ValueNull:
		return "Null"
	case ValueVariable:
		return "Variable"
	}
	return "Unknown"
}

// RankedDirective is a directive part with its invocation rank.
type RankedDirective struct {
	Rank int
	ID   PartID
}

// Part is a node of the document graph. Which fields are meaningful depends
// on Kind.
type Part struct {
	ID       PartID
	Kind     PartKind
	Parent   PartID
	Children []PartID
	Node     *syntax.Node

	Name  string
	Alias string

	// OperationType is set on operations.
	OperationType string

	// GraphType is the named type a part works against: the root type of an
	// operation, the type of a selection set, the return type of a field,
	// the type condition of a fragment or the expected type of an input.
	GraphType *schema.Type
	// TypeExpression is the full expected type of fields, arguments,
	// variables and supplied values.
	TypeExpression *schema.TypeRef

	Field *schema.Field
	// TargetGraphType restricts which concrete type a field selection may
	// resolve against; nil means unrestricted.
	TargetGraphType *schema.Type

	Directive *schema.Directive
	Location  schema.DirectiveLocation
	Rank      int
	// Directives lists the directive parts applied to this part, by rank.
	Directives []RankedDirective

	// Argument is the schema definition matched by an input argument.
	Argument *schema.InputValue

	// Fragment is the named fragment a spread refers to.
	Fragment PartID

	ValueKind  ValueKind
	Raw        string
	ScalarKind syntax.ScalarKind
	// Variable is the declared variable a variable reference resolved to.
	Variable   PartID
	Referenced bool
}

// NewPart creates an unattached part with its references unset.
func NewPart(kind PartKind, node *syntax.Node) *Part {
	p := &Part{Kind: kind, Node: node, Parent: NoPart, Fragment: NoPart, Variable: NoPart}
	if node != nil {
		p.Name = node.Name
		p.Alias = node.Alias
	}
	return p
}

// ResponseName is the alias of a field selection, or its name.
func (p *Part) ResponseName() string {
	if p.Alias != "" {
		return p.Alias
	}
	return p.Name
}

// CanResolveForGraphType reports whether the selection applies to a value of
// concrete type t.
func (p *Part) CanResolveForGraphType(s *schema.Schema, t *schema.Type) bool {
	if p.TargetGraphType == nil || p.TargetGraphType == t {
		return true
	}
	return s.AnalyzeRuntimeConcreteType(p.TargetGraphType, t)
}

// InsertDirective records a directive part with its rank.
func (p *Part) InsertDirective(id PartID, rank int) {
	p.Directives = append(p.Directives, RankedDirective{Rank: rank, ID: id})
	sort.SliceStable(p.Directives, func(i, j int) bool { return p.Directives[i].Rank < p.Directives[j].Rank })
}

// Position is the location of the part in the query text.
func (p *Part) Position() syntax.Position {
	if p.Node == nil {
		return syntax.Position{}
	}
	return p.Node.Position
}

// Literal returns the Go value of a scalar or enum literal: int64, float64,
// string or bool for scalars and the member name for enums.
func (p *Part) Literal() (any, error) {
	if p.ValueKind == ValueEnum {
		return p.Raw, nil
	}
	if p.ValueKind != ValueScalar {
		return nil, fmt.Errorf("%s value is not a literal", p.ValueKind)
	}
	switch p.ScalarKind {
	case syntax.ScalarInt:
		return strconv.ParseInt(p.Raw, 10, 64)
	case syntax.ScalarFloat:
		return strconv.ParseFloat(p.Raw, 64)
	case syntax.ScalarBoolean:
		return p.Raw == "true", nil
	}
	return p.Raw, nil
}
