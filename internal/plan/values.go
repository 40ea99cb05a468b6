package plan

import (
	"fmt"
	"reflect"

	"github.com/hanpama/graphplan/internal/schema"
)

// CoerceInput converts a value to the input type t. Leaf values go through
// the scalar or enum codec, input objects are checked field by field and a
// single value supplied for a list type becomes a list of one.
func CoerceInput(s *schema.Schema, t *schema.TypeRef, value any) (any, error) {
	if t == nil {
		return value, nil
	}
	if t.IsNonNull() {
		if value == nil {
			return nil, fmt.Errorf("cannot provide null for non-null type %s", t)
		}
		return CoerceInput(s, t.OfType, value)
	}
	if value == nil {
		return nil, nil
	}
	if t.Kind == schema.TypeRefKindList {
		return coerceList(s, t, value)
	}
	named := s.FindGraphType(t.Named)
	if named == nil {
		return nil, fmt.Errorf("unknown type %s", t.Named)
	}
	switch named.Kind {
	case schema.TypeKindScalar, schema.TypeKindEnum:
		return schema.ParseLeaf(named, value)
	case schema.TypeKindInputObject:
		return coerceInputObject(s, named, value)
	}
	return nil, fmt.Errorf("%s is not an input type", named.Name)
}

func coerceList(s *schema.Schema, t *schema.TypeRef, value any) (any, error) {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		item, err := CoerceInput(s, t.OfType, value)
		if err != nil {
			return nil, err
		}
		return []any{item}, nil
	}
	out := make([]any, rv.Len())
	for i := range out {
		item, err := CoerceInput(s, t.OfType, rv.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out[i] = item
	}
	return out, nil
}

func coerceInputObject(s *schema.Schema, t *schema.Type, value any) (any, error) {
	in, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected an object for input type %s, got %T", t.Name, value)
	}
	for key := range in {
		if t.InputField(key) == nil {
			return nil, fmt.Errorf("field %q is not defined by type %s", key, t.Name)
		}
	}
	out := make(map[string]any, len(t.InputFields))
	for _, f := range t.InputFields {
		v, present := in[f.Name]
		if !present {
			if f.DefaultValue != nil {
				dv, err := CoerceInput(s, f.Type, f.DefaultValue)
				if err != nil {
					return nil, fmt.Errorf("default of %s.%s: %w", t.Name, f.Name, err)
				}
				out[f.Name] = dv
			} else if f.Type.IsNonNull() {
				return nil, fmt.Errorf("field %s.%s of required type %s was not provided", t.Name, f.Name, f.Type)
			}
			continue
		}
		cv, err := CoerceInput(s, f.Type, v)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", t.Name, f.Name, err)
		}
		out[f.Name] = cv
	}
	if t.OneOf {
		set := 0
		for _, v := range out {
			if v != nil {
				set++
			}
		}
		if set != 1 {
			return nil, fmt.Errorf("exactly one field must be set on OneOf input type %s", t.Name)
		}
	}
	return out, nil
}
