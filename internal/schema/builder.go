package schema

import (
	"context"
	"reflect"
)

// NewSchema creates an empty schema carrying the built-in scalars and the
// @include / @skip directives.
func NewSchema(description string) *Schema {
	s := &Schema{
		QueryType:   "Query",
		Types:       make(map[string]*Type),
		Directives:  make(map[string]*Directive),
		Description: description,
	}
	for _, t := range builtinScalars() {
		s.AddType(t)
	}
	s.AddDirective(includeDirective).
		AddDirective(skipDirective)
	return s
}

func (s *Schema) SetQueryType(name string) *Schema {
	s.QueryType = name
	return s
}

func (s *Schema) SetMutationType(name string) *Schema {
	s.MutationType = name
	return s
}

func (s *Schema) SetSubscriptionType(name string) *Schema {
	s.SubscriptionType = name
	return s
}

// AddType registers t, replacing any type with the same name.
func (s *Schema) AddType(t *Type) *Schema {
	s.Types[t.Name] = t
	return s
}

func (s *Schema) AddDirective(d *Directive) *Schema {
	s.Directives[d.Name] = d
	return s
}

// ApplyDirective attaches a directive to the schema itself.
func (s *Schema) ApplyDirective(d *AppliedDirective) *Schema {
	s.AppliedDirectives = append(s.AppliedDirectives, d)
	return s
}

func NewType(name string, kind TypeKind, description string) *Type {
	return &Type{Name: name, Kind: kind, Description: description}
}

// NewScalar creates a custom scalar backed by codec.
func NewScalar(name, description string, codec ScalarCodec) *Type {
	return &Type{Name: name, Kind: TypeKindScalar, Description: description, Scalar: codec}
}

func (t *Type) AddField(f *Field) *Type {
	t.Fields = append(t.Fields, f)
	return t
}

func (t *Type) AddInterface(name string) *Type {
	t.Interfaces = append(t.Interfaces, name)
	return t
}

func (t *Type) AddPossibleType(name string) *Type {
	t.PossibleTypes = append(t.PossibleTypes, name)
	return t
}

func (t *Type) AddEnumValue(v *EnumValue) *Type {
	t.EnumValues = append(t.EnumValues, v)
	return t
}

func (t *Type) AddInputField(v *InputValue) *Type {
	t.InputFields = append(t.InputFields, v)
	return t
}

func (t *Type) SetOneOf(oneOf bool) *Type {
	t.OneOf = oneOf
	return t
}

func (t *Type) ApplyDirective(d *AppliedDirective) *Type {
	t.AppliedDirectives = append(t.AppliedDirectives, d)
	return t
}

func NewField(name, description string, typ *TypeRef) *Field {
	return &Field{Name: name, Description: description, Type: typ}
}

func (f *Field) SetMode(mode ResolutionMode) *Field {
	f.Mode = mode
	return f
}

func (f *Field) SetResolver(r FieldResolver) *Field {
	f.Resolver = r
	return f
}

// ResolveWith is a shorthand for SetResolver(FieldResolverFunc(fn)).
func (f *Field) ResolveWith(fn func(ctx context.Context, p ResolveParams) (any, error)) *Field {
	f.Resolver = FieldResolverFunc(fn)
	return f
}

func (f *Field) Deprecate(reason string) *Field {
	f.IsDeprecated = true
	f.DeprecationReason = reason
	return f
}

func (f *Field) AddArgument(v *InputValue) *Field {
	f.Arguments = append(f.Arguments, v)
	return f
}

func (f *Field) ApplyDirective(d *AppliedDirective) *Field {
	f.AppliedDirectives = append(f.AppliedDirectives, d)
	return f
}

func NewInputValue(name, description string, typ *TypeRef) *InputValue {
	return &InputValue{Name: name, Description: description, Type: typ}
}

func (v *InputValue) SetDefault(value any) *InputValue {
	v.DefaultValue = value
	return v
}

func (v *InputValue) Deprecate(reason string) *InputValue {
	v.IsDeprecated = true
	v.DeprecationReason = reason
	return v
}

func (v *InputValue) ApplyDirective(d *AppliedDirective) *InputValue {
	v.AppliedDirectives = append(v.AppliedDirectives, d)
	return v
}

func NewEnumValue(name, description string) *EnumValue {
	return &EnumValue{Name: name, Description: description}
}

func (e *EnumValue) Deprecate(reason string) *EnumValue {
	e.IsDeprecated = true
	e.DeprecationReason = reason
	return e
}

func (e *EnumValue) ApplyDirective(d *AppliedDirective) *EnumValue {
	e.AppliedDirectives = append(e.AppliedDirectives, d)
	return e
}

func NewDirective(name, description string) *Directive {
	return &Directive{Name: name, Description: description}
}

func (d *Directive) SetRepeatable(repeatable bool) *Directive {
	d.IsRepeatable = repeatable
	return d
}

func (d *Directive) AddLocation(locs ...DirectiveLocation) *Directive {
	d.Locations = append(d.Locations, locs...)
	return d
}

func (d *Directive) SetPhases(p DirectivePhase) *Directive {
	d.Phases = p
	return d
}

func (d *Directive) SetResolver(r DirectiveResolver) *Directive {
	d.Resolver = r
	return d
}

// SetImpl records the Go type implementing the directive and uses it as the
// resolver when it implements DirectiveResolver.
func (d *Directive) SetImpl(impl any) *Directive {
	d.Impl = reflect.TypeOf(impl)
	if r, ok := impl.(DirectiveResolver); ok {
		d.Resolver = r
	}
	return d
}

func (d *Directive) AddArgument(v *InputValue) *Directive {
	d.Arguments = append(d.Arguments, v)
	return d
}
