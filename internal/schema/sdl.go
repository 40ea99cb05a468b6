package schema

import (
	"fmt"

	"github.com/hanpama/graphplan/internal/language"
)

// BuildFromSDL parses SDL and returns the corresponding Schema. Scalars named
// DateTime or URI are bound to the library codecs; other custom scalars pass
// values through unchanged. Resolvers are attached afterwards.
func BuildFromSDL(sdl string) (*Schema, error) {
	doc, err := language.LoadSchema("schema.graphql", sdl)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	s := NewSchema("")
	s.QueryType = ""
	if doc.Query != nil {
		s.SetQueryType(doc.Query.Name)
	}
	if doc.Mutation != nil {
		s.SetMutationType(doc.Mutation.Name)
	}
	if doc.Subscription != nil {
		s.SetSubscriptionType(doc.Subscription.Name)
	}
	for _, def := range doc.Types {
		if def.BuiltIn {
			continue
		}
		t, err := buildDefinition(def)
		if err != nil {
			return nil, err
		}
		s.AddType(t)
	}
	for _, def := range doc.Directives {
		if def.Position != nil && def.Position.Src != nil && def.Position.Src.BuiltIn {
			continue
		}
		d, err := buildDirectiveDefinition(def)
		if err != nil {
			return nil, err
		}
		s.AddDirective(d)
	}
	return s, nil
}

func buildDefinition(def *language.Definition) (*Type, error) {
	var t *Type
	switch def.Kind {
	case language.Scalar:
		if known, ok := knownScalars[def.Name]; ok {
			copied := *known
			t = &copied
		} else {
			t = NewType(def.Name, TypeKindScalar, def.Description)
		}
		if d := def.Directives.ForName("specifiedBy"); d != nil {
			if arg := d.Arguments.ForName("url"); arg != nil {
				url := arg.Value.Raw
				t.SpecifiedByURL = &url
			}
		}
	case language.Object, language.Interface:
		kind := TypeKindObject
		if def.Kind == language.Interface {
			kind = TypeKindInterface
		}
		t = NewType(def.Name, kind, def.Description)
		for _, name := range def.Interfaces {
			t.AddInterface(name)
		}
		for _, fd := range def.Fields {
			if len(fd.Name) > 1 && fd.Name[:2] == "__" {
				continue
			}
			f, err := buildField(fd)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", def.Name, fd.Name, err)
			}
			t.AddField(f)
		}
	case language.Union:
		t = NewType(def.Name, TypeKindUnion, def.Description)
		for _, name := range def.Types {
			t.AddPossibleType(name)
		}
	case language.Enum:
		t = NewType(def.Name, TypeKindEnum, def.Description)
		for _, ev := range def.EnumValues {
			v := NewEnumValue(ev.Name, ev.Description)
			if reason, ok := deprecation(ev.Directives); ok {
				v.Deprecate(reason)
			}
			applied, err := buildApplied(ev.Directives)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", def.Name, ev.Name, err)
			}
			v.AppliedDirectives = applied
			t.AddEnumValue(v)
		}
	case language.InputObject:
		t = NewType(def.Name, TypeKindInputObject, def.Description)
		t.SetOneOf(def.Directives.ForName("oneOf") != nil)
		for _, fd := range def.Fields {
			iv, err := buildInputValue(fd.Name, fd.Description, fd.Type, fd.DefaultValue, fd.Directives)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", def.Name, fd.Name, err)
			}
			t.AddInputField(iv)
		}
	default:
		return nil, fmt.Errorf("unsupported definition kind %s for %s", def.Kind, def.Name)
	}
	if t.Description == "" {
		t.Description = def.Description
	}
	applied, err := buildApplied(def.Directives)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", def.Name, err)
	}
	t.AppliedDirectives = applied
	return t, nil
}

func buildField(fd *language.FieldDefinition) (*Field, error) {
	f := NewField(fd.Name, fd.Description, TypeRefFromAST(fd.Type))
	if reason, ok := deprecation(fd.Directives); ok {
		f.Deprecate(reason)
	}
	for _, ad := range fd.Arguments {
		iv, err := buildInputValue(ad.Name, ad.Description, ad.Type, ad.DefaultValue, ad.Directives)
		if err != nil {
			return nil, err
		}
		f.AddArgument(iv)
	}
	applied, err := buildApplied(fd.Directives)
	if err != nil {
		return nil, err
	}
	f.AppliedDirectives = applied
	return f, nil
}

func buildInputValue(name, description string, typ *language.Type, def *language.Value, dirs language.DirectiveList) (*InputValue, error) {
	iv := NewInputValue(name, description, TypeRefFromAST(typ))
	if def != nil {
		v, err := def.Value(nil)
		if err != nil {
			return nil, fmt.Errorf("default value of %s: %w", name, err)
		}
		iv.SetDefault(v)
	}
	if reason, ok := deprecation(dirs); ok {
		iv.Deprecate(reason)
	}
	applied, err := buildApplied(dirs)
	if err != nil {
		return nil, err
	}
	iv.AppliedDirectives = applied
	return iv, nil
}

func buildDirectiveDefinition(def *language.DirectiveDefinition) (*Directive, error) {
	d := NewDirective(def.Name, def.Description).SetRepeatable(def.IsRepeatable)
	var phases DirectivePhase
	for _, loc := range def.Locations {
		l := DirectiveLocation(loc)
		d.AddLocation(l)
		if l.IsExecutable() {
			phases |= PhaseBeforeFieldResolution
		} else {
			phases |= PhaseSchemaGeneration
		}
	}
	d.SetPhases(phases)
	for _, ad := range def.Arguments {
		iv, err := buildInputValue(ad.Name, ad.Description, ad.Type, ad.DefaultValue, ad.Directives)
		if err != nil {
			return nil, fmt.Errorf("@%s: %w", def.Name, err)
		}
		d.AddArgument(iv)
	}
	return d, nil
}

var sdlOnlyDirectives = map[string]bool{"deprecated": true, "specifiedBy": true, "oneOf": true}

func buildApplied(dirs language.DirectiveList) ([]*AppliedDirective, error) {
	var out []*AppliedDirective
	for _, d := range dirs {
		if sdlOnlyDirectives[d.Name] {
			continue
		}
		applied := &AppliedDirective{Name: d.Name}
		if len(d.Arguments) > 0 {
			applied.Named = make(map[string]any, len(d.Arguments))
		}
		for _, arg := range d.Arguments {
			v, err := arg.Value.Value(nil)
			if err != nil {
				return nil, fmt.Errorf("@%s(%s): %w", d.Name, arg.Name, err)
			}
			applied.Named[arg.Name] = v
		}
		out = append(out, applied)
	}
	return out, nil
}

func deprecation(dirs language.DirectiveList) (string, bool) {
	d := dirs.ForName("deprecated")
	if d == nil {
		return "", false
	}
	if arg := d.Arguments.ForName("reason"); arg != nil {
		return arg.Value.Raw, true
	}
	return "No longer supported", true
}

// TypeRefFromAST converts a parsed type expression.
func TypeRefFromAST(t *language.Type) *TypeRef {
	if t == nil {
		return nil
	}
	if t.NonNull {
		return NonNullType(TypeRefFromAST(&language.Type{NamedType: t.NamedType, Elem: t.Elem}))
	}
	if t.NamedType != "" {
		return NamedType(t.NamedType)
	}
	if t.Elem != nil {
		return ListType(TypeRefFromAST(t.Elem))
	}
	return nil
}
