package schema

import "fmt"

// SchemaItem is anything in the schema that can carry applied directives.
type SchemaItem struct {
	Name       string
	Location   DirectiveLocation
	Target     any
	Directives []*AppliedDirective
	replace    func(any) error
}

// Replace swaps the item for v in its owner. Only types and fields can be
// replaced; other items must be altered in place.
func (i *SchemaItem) Replace(v any) error {
	if v == i.Target {
		return nil
	}
	if i.replace == nil {
		return fmt.Errorf("%s cannot be replaced by a directive", i.Name)
	}
	if err := i.replace(v); err != nil {
		return err
	}
	i.Target = v
	return nil
}

// AllSchemaItems lists every directive-carrying item in a fixed order: the
// schema, then each type by name followed by its members in declaration
// order, then directive definitions by name with their arguments.
func (s *Schema) AllSchemaItems() []*SchemaItem {
	items := []*SchemaItem{{
		Name:       "schema",
		Location:   LocationSchema,
		Target:     s,
		Directives: s.AppliedDirectives,
	}}
	for _, name := range s.typeNames() {
		t := s.Types[name]
		if isBuiltinType(t) {
			continue
		}
		typeName := name
		items = append(items, &SchemaItem{
			Name:       t.Name,
			Location:   typeLocation(t.Kind),
			Target:     t,
			Directives: t.AppliedDirectives,
			replace: func(v any) error {
				nt, ok := v.(*Type)
				if !ok || nt == nil {
					return fmt.Errorf("type %s can only be replaced by another type, got %T", typeName, v)
				}
				delete(s.Types, typeName)
				s.Types[nt.Name] = nt
				return nil
			},
		})
		for idx, f := range t.Fields {
			owner, pos := t, idx
			items = append(items, &SchemaItem{
				Name:       t.Name + "." + f.Name,
				Location:   LocationFieldDefinition,
				Target:     f,
				Directives: f.AppliedDirectives,
				replace: func(v any) error {
					nf, ok := v.(*Field)
					if !ok || nf == nil {
						return fmt.Errorf("field %s.%s can only be replaced by another field, got %T", owner.Name, owner.Fields[pos].Name, v)
					}
					owner.Fields[pos] = nf
					return nil
				},
			})
			for _, a := range f.Arguments {
				items = append(items, &SchemaItem{
					Name:       t.Name + "." + f.Name + "(" + a.Name + ")",
					Location:   LocationArgumentDefinition,
					Target:     a,
					Directives: a.AppliedDirectives,
				})
			}
		}
		for _, ev := range t.EnumValues {
			items = append(items, &SchemaItem{
				Name:       t.Name + "." + ev.Name,
				Location:   LocationEnumValue,
				Target:     ev,
				Directives: ev.AppliedDirectives,
			})
		}
		for _, iv := range t.InputFields {
			items = append(items, &SchemaItem{
				Name:       t.Name + "." + iv.Name,
				Location:   LocationInputFieldDefinition,
				Target:     iv,
				Directives: iv.AppliedDirectives,
			})
		}
	}
	return items
}

func typeLocation(k TypeKind) DirectiveLocation {
	switch k {
	case TypeKindScalar:
		return LocationScalar
	case TypeKindObject:
		return LocationObject
	case TypeKindInterface:
		return LocationInterface
	case TypeKindUnion:
		return LocationUnion
	case TypeKindEnum:
		return LocationEnum
	case TypeKindInputObject:
		return LocationInputObject
	}
	return ""
}

// ConfigurationError reports a schema that cannot be used, typically a
// directive that failed to apply during initialization.
type ConfigurationError struct {
	Item      string
	Directive string
	Err       error
}

func (e *ConfigurationError) Error() string {
	if e.Directive == "" {
		return fmt.Sprintf("schema configuration error on %s: %v", e.Item, e.Err)
	}
	return fmt.Sprintf("schema configuration error: directive @%s on %s: %v", e.Directive, e.Item, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }
