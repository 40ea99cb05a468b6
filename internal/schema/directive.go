package schema

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// DirectiveLocation is a position in a document or schema where a directive
// may be applied.
type DirectiveLocation string

const (
	LocationQuery                DirectiveLocation = "QUERY"
	LocationMutation             DirectiveLocation = "MUTATION"
	LocationSubscription         DirectiveLocation = "SUBSCRIPTION"
	LocationField                DirectiveLocation = "FIELD"
	LocationFragmentDefinition   DirectiveLocation = "FRAGMENT_DEFINITION"
	LocationFragmentSpread       DirectiveLocation = "FRAGMENT_SPREAD"
	LocationInlineFragment       DirectiveLocation = "INLINE_FRAGMENT"
	LocationVariableDefinition   DirectiveLocation = "VARIABLE_DEFINITION"
	LocationSchema               DirectiveLocation = "SCHEMA"
	LocationScalar               DirectiveLocation = "SCALAR"
	LocationObject               DirectiveLocation = "OBJECT"
	LocationFieldDefinition      DirectiveLocation = "FIELD_DEFINITION"
	LocationArgumentDefinition   DirectiveLocation = "ARGUMENT_DEFINITION"
	LocationInterface            DirectiveLocation = "INTERFACE"
	LocationUnion                DirectiveLocation = "UNION"
	LocationEnum                 DirectiveLocation = "ENUM"
	LocationEnumValue            DirectiveLocation = "ENUM_VALUE"
	LocationInputObject          DirectiveLocation = "INPUT_OBJECT"
	LocationInputFieldDefinition DirectiveLocation = "INPUT_FIELD_DEFINITION"
)

var knownLocations = map[DirectiveLocation]bool{
	LocationQuery: true, LocationMutation: true, LocationSubscription: true,
	LocationField: true, LocationFragmentDefinition: true, LocationFragmentSpread: true,
	LocationInlineFragment: true, LocationVariableDefinition: true, LocationSchema: true,
	LocationScalar: true, LocationObject: true, LocationFieldDefinition: true,
	LocationArgumentDefinition: true, LocationInterface: true, LocationUnion: true,
	LocationEnum: true, LocationEnumValue: true, LocationInputObject: true,
	LocationInputFieldDefinition: true,
}

// IsKnown reports whether l is one of the GraphQL directive locations.
func (l DirectiveLocation) IsKnown() bool { return knownLocations[l] }

// IsExecutable reports whether l is a location inside a query document.
func (l DirectiveLocation) IsExecutable() bool {
	switch l {
	case LocationQuery, LocationMutation, LocationSubscription, LocationField,
		LocationFragmentDefinition, LocationFragmentSpread, LocationInlineFragment,
		LocationVariableDefinition:
		return true
	}
	return false
}

// DirectivePhase is a lifecycle point at which a directive runs. Directive
// definitions hold a set of phases; a request holds exactly one.
type DirectivePhase int

const (
	PhaseUnknown               DirectivePhase = 0
	PhaseSchemaGeneration      DirectivePhase = 1 << 0
	PhaseBeforeFieldResolution DirectivePhase = 1 << 1
	PhaseAfterFieldResolution  DirectivePhase = 1 << 2

	PhaseExecution = PhaseBeforeFieldResolution | PhaseAfterFieldResolution
)

// Has reports whether every phase in p is part of the set.
func (s DirectivePhase) Has(p DirectivePhase) bool {
	return p != PhaseUnknown && s&p == p
}

func (s DirectivePhase) String() string {
	if s == PhaseUnknown {
		return "Unknown"
	}
	var parts []string
	if s&PhaseSchemaGeneration != 0 {
		parts = append(parts, "SchemaGeneration")
	}
	if s&PhaseBeforeFieldResolution != 0 {
		parts = append(parts, "BeforeFieldResolution")
	}
	if s&PhaseAfterFieldResolution != 0 {
		parts = append(parts, "AfterFieldResolution")
	}
	if len(parts) == 0 {
		return "Unknown"
	}
	return strings.Join(parts, "|")
}

// ArgumentValue is a resolved directive input value.
type ArgumentValue struct {
	Name  string
	Value any
}

// DirectiveRequest describes one application of a directive. It is never
// changed after creation; ForPhase produces the request for the next phase.
type DirectiveRequest struct {
	id        string
	directive *Directive
	location  DirectiveLocation
	phase     DirectivePhase
	arguments []ArgumentValue
	target    any
	origin    string
}

func NewDirectiveRequest(d *Directive, loc DirectiveLocation, phase DirectivePhase, args []ArgumentValue, target any, origin string) *DirectiveRequest {
	return &DirectiveRequest{
		id:        uuid.NewString(),
		directive: d,
		location:  loc,
		phase:     phase,
		arguments: args,
		target:    target,
		origin:    origin,
	}
}

// ForPhase returns a copy of the request for another phase and target. The
// id, directive, location, arguments and origin carry over.
func (r *DirectiveRequest) ForPhase(phase DirectivePhase, target any) *DirectiveRequest {
	next := *r
	next.phase = phase
	next.target = target
	return &next
}

func (r *DirectiveRequest) ID() string                  { return r.id }
func (r *DirectiveRequest) Directive() *Directive       { return r.directive }
func (r *DirectiveRequest) Location() DirectiveLocation { return r.location }
func (r *DirectiveRequest) Phase() DirectivePhase       { return r.phase }
func (r *DirectiveRequest) Target() any                 { return r.target }

// Origin names the schema item or document path the directive was applied to.
func (r *DirectiveRequest) Origin() string { return r.origin }

func (r *DirectiveRequest) Arguments() []ArgumentValue {
	out := make([]ArgumentValue, len(r.arguments))
	copy(out, r.arguments)
	return out
}

// Argument returns the named argument value.
func (r *DirectiveRequest) Argument(name string) (any, bool) {
	for _, a := range r.arguments {
		if a.Name == name {
			return a.Value, true
		}
	}
	return nil, false
}

// DirectiveInvocation is handed to a directive resolver while it runs.
type DirectiveInvocation interface {
	Request() *DirectiveRequest
	// Target is the current directive target; it reflects replacements made
	// by earlier directives in the same phase.
	Target() any
	SetTarget(v any)
	Fail(code, message string, err error)
	Cancel()
}

// DirectiveResolver implements the behavior of a directive.
type DirectiveResolver interface {
	ResolveDirective(ctx context.Context, inv DirectiveInvocation) error
}

// DirectiveResolverFunc adapts a function to DirectiveResolver.
type DirectiveResolverFunc func(ctx context.Context, inv DirectiveInvocation) error

func (f DirectiveResolverFunc) ResolveDirective(ctx context.Context, inv DirectiveInvocation) error {
	return f(ctx, inv)
}

// ResolveParams is the input of a field resolver call.
type ResolveParams struct {
	// Source is set for PerSourceItem fields.
	Source any
	// Sources is set for Batch fields, one entry per source item.
	Sources    []any
	Args       map[string]any
	Field      *Field
	ParentType *Type
	Path       []any
}

// FieldResolver produces the value of a field.
type FieldResolver interface {
	Resolve(ctx context.Context, p ResolveParams) (any, error)
}

// FieldResolverFunc adapts a function to FieldResolver.
type FieldResolverFunc func(ctx context.Context, p ResolveParams) (any, error)

func (f FieldResolverFunc) Resolve(ctx context.Context, p ResolveParams) (any, error) {
	return f(ctx, p)
}
