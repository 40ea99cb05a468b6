package schema

import (
	"reflect"
	"strings"
	"sync"

	"go.uber.org/atomic"
)

// Schema represents the complete GraphQL schema
type Schema struct {
	QueryType         string
	MutationType      string
	SubscriptionType  string
	Types             map[string]*Type // All named types keyed by name
	Directives        map[string]*Directive
	Description       string
	AppliedDirectives []*AppliedDirective `json:",omitempty"`

	initOnce    sync.Once
	initialized atomic.Bool
	initErr     error
}

// GetQueryType returns the root query type (may be nil if absent)
func (s *Schema) GetQueryType() *Type { return s.Types[s.QueryType] }

// GetMutationType returns the root mutation type (may be nil if absent)
func (s *Schema) GetMutationType() *Type { return s.Types[s.MutationType] }

// GetSubscriptionType returns the root subscription type (may be nil if absent)
func (s *Schema) GetSubscriptionType() *Type { return s.Types[s.SubscriptionType] }

// Type is a named GraphQL type (object, interface, union, scalar, enum, input)
type Type struct {
	Name              string
	Kind              TypeKind
	Description       string
	Fields            []*Field      // For OBJECT and INTERFACE
	Interfaces        []string      // For OBJECT and INTERFACE (implemented/extended)
	PossibleTypes     []string      // For UNION
	EnumValues        []*EnumValue  // For ENUM
	InputFields       []*InputValue // For INPUT_OBJECT
	SpecifiedByURL    *string
	OneOf             bool
	AppliedDirectives []*AppliedDirective `json:",omitempty"`

	// Scalar serializes and parses leaf values of a SCALAR type.
	Scalar ScalarCodec `json:"-"`
	// SourceType is the Go type backing an OBJECT; used to pick the concrete
	// type of values returned for abstract fields.
	SourceType reflect.Type `json:"-"`
	// ResolveType picks the concrete object type name for a value returned
	// from an INTERFACE or UNION field.
	ResolveType func(value any) string `json:"-"`
}

// Field returns the named field, including the __typename meta field on
// composite types.
func (t *Type) Field(name string) *Field {
	if t == nil {
		return nil
	}
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	if name == TypenameFieldName && t.IsComposite() {
		return typenameField
	}
	return nil
}

// InputField returns the named input field of an INPUT_OBJECT.
func (t *Type) InputField(name string) *InputValue {
	for _, f := range t.InputFields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// EnumValue returns the named enum value.
func (t *Type) EnumValue(name string) *EnumValue {
	for _, v := range t.EnumValues {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// Implements reports whether t declares the interface directly.
func (t *Type) Implements(iface string) bool {
	for _, name := range t.Interfaces {
		if name == iface {
			return true
		}
	}
	return false
}

func (t *Type) IsLeaf() bool {
	return t != nil && (t.Kind == TypeKindScalar || t.Kind == TypeKindEnum)
}

func (t *Type) IsComposite() bool {
	return t != nil && (t.Kind == TypeKindObject || t.Kind == TypeKindInterface || t.Kind == TypeKindUnion)
}

func (t *Type) IsAbstract() bool {
	return t != nil && (t.Kind == TypeKindInterface || t.Kind == TypeKindUnion)
}

func (t *Type) IsInput() bool {
	return t != nil && (t.Kind == TypeKindScalar || t.Kind == TypeKindEnum || t.Kind == TypeKindInputObject)
}

// ResolutionMode decides how many source items one resolver call services.
type ResolutionMode int

const (
	PerSourceItem ResolutionMode = iota
	Batch
)

func (m ResolutionMode) String() string {
	switch m {
	case PerSourceItem:
		return "PerSourceItem"
	case Batch:
		return "Batch"
	}
	return "Unknown"
}

// Field represents a field on an object or interface
type Field struct {
	Name              string
	Description       string
	Type              *TypeRef
	Arguments         []*InputValue
	Mode              ResolutionMode
	IsDeprecated      bool
	DeprecationReason string
	AppliedDirectives []*AppliedDirective `json:",omitempty"`

	Resolver FieldResolver `json:"-"`
	// Authorize runs before the resolver; a non-nil error denies access to
	// the field for every source item in the invocation.
	Authorize func(p ResolveParams) error `json:"-"`
}

// Argument returns the named argument definition.
func (f *Field) Argument(name string) *InputValue {
	for _, a := range f.Arguments {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// TypeKind represents the kind of GraphQL type
type TypeKind string

const (
	TypeKindScalar      TypeKind = "SCALAR"
	TypeKindObject      TypeKind = "OBJECT"
	TypeKindInterface   TypeKind = "INTERFACE"
	TypeKindUnion       TypeKind = "UNION"
	TypeKindEnum        TypeKind = "ENUM"
	TypeKindInputObject TypeKind = "INPUT_OBJECT"
)

// TypeRef represents a reference to a type (can be wrapped)
type TypeRef struct {
	Kind   TypeRefKind
	OfType *TypeRef // For List and NonNull
	Named  string   // For named types
}

type TypeRefKind string

const (
	TypeRefKindNamed   TypeRefKind = "NAMED"
	TypeRefKindList    TypeRefKind = "LIST"
	TypeRefKindNonNull TypeRefKind = "NON_NULL"
)

// Helper functions for TypeRef
func (t *TypeRef) IsNonNull() bool {
	return t != nil && t.Kind == TypeRefKindNonNull
}

func (t *TypeRef) IsList() bool {
	if t.Kind == TypeRefKindList {
		return true
	}
	if t.Kind == TypeRefKindNonNull && t.OfType != nil {
		return t.OfType.Kind == TypeRefKindList
	}
	return false
}

func (t *TypeRef) Unwrap() *TypeRef {
	if t.Kind == TypeRefKindNonNull || t.Kind == TypeRefKindList {
		return t.OfType
	}
	return t
}

// Nullable strips a Non-Null wrapper if present.
func (t *TypeRef) Nullable() *TypeRef {
	if t.IsNonNull() {
		return t.OfType
	}
	return t
}

// ListItem returns the item type of a (possibly non-null) list type.
func (t *TypeRef) ListItem() *TypeRef {
	n := t.Nullable()
	if n != nil && n.Kind == TypeRefKindList {
		return n.OfType
	}
	return nil
}

func (t *TypeRef) GetNamedType() string {
	current := t
	for current != nil {
		if current.Named != "" {
			return current.Named
		}
		current = current.OfType
	}
	return ""
}

// Equal reports whether two type expressions are identical, nullability and
// list wrapping included.
func (t *TypeRef) Equal(o *TypeRef) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Kind != o.Kind || t.Named != o.Named {
		return false
	}
	return t.OfType.Equal(o.OfType)
}

// String renders the type expression as written in a document, e.g. [Int!]!.
func (t *TypeRef) String() string {
	if t == nil {
		return ""
	}
	switch t.Kind {
	case TypeRefKindNamed:
		return t.Named
	case TypeRefKindList:
		return "[" + t.OfType.String() + "]"
	case TypeRefKindNonNull:
		return t.OfType.String() + "!"
	}
	return ""
}

type EnumValue struct {
	Name              string
	Description       string
	Value             any `json:",omitempty"`
	IsDeprecated      bool
	DeprecationReason string
	AppliedDirectives []*AppliedDirective `json:",omitempty"`
}

type InputValue struct {
	Name              string
	Description       string
	Type              *TypeRef
	DefaultValue      any
	IsDeprecated      bool
	DeprecationReason string
	AppliedDirectives []*AppliedDirective `json:",omitempty"`
}

type Directive struct {
	Name         string
	Description  string
	Locations    []DirectiveLocation
	Arguments    []*InputValue
	IsRepeatable bool
	Phases       DirectivePhase

	Resolver DirectiveResolver `json:"-"`
	// Impl is the Go type implementing the directive, when it was declared
	// from one. FindDirectiveByType looks directives up through it.
	Impl reflect.Type `json:"-"`
}

// Argument returns the named parameter of the directive.
func (d *Directive) Argument(name string) *InputValue {
	for _, a := range d.Arguments {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// AllowsLocation reports whether the directive may appear at loc.
func (d *Directive) AllowsLocation(loc DirectiveLocation) bool {
	for _, l := range d.Locations {
		if l == loc {
			return true
		}
	}
	return false
}

// AppliedDirective is a directive attached to a schema item. Arguments are
// positional; Named holds arguments supplied by name (from SDL).
type AppliedDirective struct {
	Name      string
	Type      reflect.Type   `json:"-"`
	Arguments []any          `json:",omitempty"`
	Named     map[string]any `json:",omitempty"`
}

// Apply builds an applied directive referencing the definition by name.
func Apply(name string, args ...any) *AppliedDirective {
	return &AppliedDirective{Name: name, Arguments: args}
}

// ApplyType builds an applied directive referencing the definition by the Go
// type that implements it.
func ApplyType(impl any, args ...any) *AppliedDirective {
	t := reflect.TypeOf(impl)
	return &AppliedDirective{Name: strings.TrimPrefix(t.String(), "*"), Type: t, Arguments: args}
}

func NonNullType(t *TypeRef) *TypeRef { return &TypeRef{Kind: TypeRefKindNonNull, OfType: t} }
func ListType(t *TypeRef) *TypeRef    { return &TypeRef{Kind: TypeRefKindList, OfType: t} }
func NamedType(name string) *TypeRef  { return &TypeRef{Kind: TypeRefKindNamed, Named: name} }

// IsNonNull reports whether the type is wrapped with Non-Null.
func IsNonNull(t *TypeRef) bool { return t != nil && t.IsNonNull() }

// IsList reports whether the type is (or is wrapped by) a list type.
func IsList(t *TypeRef) bool { return t != nil && t.IsList() }

// Unwrap removes one layer of Non-Null or List wrapping and returns the inner type.
func Unwrap(t *TypeRef) *TypeRef { return t.Unwrap() }

// GetNamedType returns the innermost named type for the given reference.
func GetNamedType(t *TypeRef) string { return t.GetNamedType() }
