package schema

import "context"

// TypenameFieldName is the meta field available on every composite type.
const TypenameFieldName = "__typename"

var typenameField = &Field{
	Name:        TypenameFieldName,
	Description: "The name of the current Object type at runtime.",
	Type:        NonNullType(NamedType("String")),
}

// IsTypenameField reports whether f is the __typename meta field.
func IsTypenameField(f *Field) bool { return f == typenameField }

var stringType = &Type{
	Name:        "String",
	Kind:        TypeKindScalar,
	Description: "The `String` scalar type represents textual data, represented as UTF-8 character sequences.",
	Scalar:      stringCodec{},
}

var intType = &Type{
	Name:        "Int",
	Kind:        TypeKindScalar,
	Description: "The `Int` scalar type represents non-fractional signed whole numeric values.",
	Scalar:      intCodec{},
}

var floatType = &Type{
	Name:        "Float",
	Kind:        TypeKindScalar,
	Description: "The `Float` scalar type represents signed double-precision fractional values.",
	Scalar:      floatCodec{},
}

var booleanType = &Type{
	Name:        "Boolean",
	Kind:        TypeKindScalar,
	Description: "The `Boolean` scalar type represents `true` or `false`.",
	Scalar:      booleanCodec{},
}

var idType = &Type{
	Name:        "ID",
	Kind:        TypeKindScalar,
	Description: "The `ID` scalar type represents a unique identifier, often used to refetch an object or as a key for caching.",
	Scalar:      idCodec{},
}

// DateTimeType is an RFC 3339 timestamp scalar.
var DateTimeType = &Type{
	Name:        "DateTime",
	Kind:        TypeKindScalar,
	Description: "A point in time, formatted as an RFC 3339 string.",
	Scalar:      dateTimeCodec{},
}

// URIType is an absolute URI scalar.
var URIType = &Type{
	Name:        "URI",
	Kind:        TypeKindScalar,
	Description: "An absolute uniform resource identifier.",
	Scalar:      uriCodec{},
}

func builtinScalars() []*Type {
	return []*Type{stringType, intType, floatType, booleanType, idType}
}

func isBuiltinType(t *Type) bool {
	switch t {
	case stringType, intType, floatType, booleanType, idType:
		return true
	}
	return false
}

// knownScalars are bound by name when SDL declares a scalar of the same name.
var knownScalars = map[string]*Type{
	"DateTime": DateTimeType,
	"URI":      URIType,
}

var includeDirective = &Directive{
	Name:        "include",
	Description: "Directs the executor to include this field or fragment only when the `if` argument is true.",
	Arguments: []*InputValue{
		{
			Name:        "if",
			Description: "Included when true.",
			Type:        &TypeRef{Kind: TypeRefKindNonNull, OfType: &TypeRef{Kind: TypeRefKindNamed, Named: "Boolean"}},
		},
	},
	Locations:    []DirectiveLocation{LocationField, LocationFragmentSpread, LocationInlineFragment},
	IsRepeatable: false,
	Phases:       PhaseBeforeFieldResolution,
	Resolver: DirectiveResolverFunc(func(ctx context.Context, inv DirectiveInvocation) error {
		if v, _ := inv.Request().Argument("if"); v != true {
			inv.Cancel()
		}
		return nil
	}),
}

var skipDirective = &Directive{
	Name:        "skip",
	Description: "Directs the executor to skip this field or fragment when the `if` argument is true.",
	Arguments: []*InputValue{
		{
			Name:        "if",
			Description: "Skipped when true.",
			Type:        &TypeRef{Kind: TypeRefKindNonNull, OfType: &TypeRef{Kind: TypeRefKindNamed, Named: "Boolean"}},
		},
	},
	Locations:    []DirectiveLocation{LocationField, LocationFragmentSpread, LocationInlineFragment},
	IsRepeatable: false,
	Phases:       PhaseBeforeFieldResolution,
	Resolver: DirectiveResolverFunc(func(ctx context.Context, inv DirectiveInvocation) error {
		if v, _ := inv.Request().Argument("if"); v == true {
			inv.Cancel()
		}
		return nil
	}),
}

func isBuiltinDirective(d *Directive) bool {
	return d == includeDirective || d == skipDirective
}
