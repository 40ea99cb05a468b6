package fieldexec

import (
	"context"
	"reflect"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/hanpama/graphplan/internal/schema"
)

// PropertyResolver is used for fields without a resolver. It reads the
// field from the source value: a map entry named like the field, a struct
// field tagged `graphql:"name"` or named in camel case, or a method of that
// name taking no arguments.
type PropertyResolver struct{}

func (PropertyResolver) Resolve(_ context.Context, p schema.ResolveParams) (any, error) {
	name := p.Field.Name
	if p.Field.Mode == schema.Batch {
		out := make(map[any]any, len(p.Sources))
		for _, src := range p.Sources {
			if src != nil && reflect.TypeOf(src).Comparable() {
				out[src] = property(src, name)
			}
		}
		return out, nil
	}
	return property(p.Source, name), nil
}

func property(source any, name string) any {
	if m, ok := source.(map[string]any); ok {
		return m[name]
	}
	rv := reflect.ValueOf(source)
	if isNullish(source) {
		return nil
	}
	goName := strcase.ToCamel(name)
	if m := rv.MethodByName(goName); m.IsValid() && m.Type().NumIn() == 0 && m.Type().NumOut() >= 1 {
		return m.Call(nil)[0].Interface()
	}
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag := strings.Split(sf.Tag.Get("graphql"), ",")[0]
		if tag == name || (tag == "" && (sf.Name == goName || strings.EqualFold(sf.Name, name))) {
			return rv.Field(i).Interface()
		}
	}
	return nil
}
