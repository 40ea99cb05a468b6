package templates

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/iancoleman/strcase"

	"github.com/hanpama/graphplan/internal/controller"
	"github.com/hanpama/graphplan/internal/eventbus"
	"github.com/hanpama/graphplan/internal/events"
	"github.com/hanpama/graphplan/internal/schema"
)

// MethodResolver invokes the function of a validated field template.
type MethodResolver struct {
	template *FieldTemplate
}

// errBinding marks failures to shape the call from the request data.
var errBinding = errors.New("invalid invocation")

// Resolve calls the function. When the call cannot be built from the
// request data the field completes with a route-not-found result; errors and
// panics raised by the function itself propagate unchanged.
func (r *MethodResolver) Resolve(ctx context.Context, p schema.ResolveParams) (any, error) {
	t := r.template
	path := pathString(p.Path)
	start := time.Now()
	eventbus.Publish(ctx, events.ActionInvocationStarted{Action: t.Route, Field: path})

	in, err := t.arguments(ctx, p)
	eventbus.Publish(ctx, events.ActionModelValidated{Action: t.Route, Field: path, Valid: err == nil, Err: err})
	if err != nil {
		eventbus.Publish(ctx, events.ActionInvocationException{Action: t.Route, Field: path, Err: err})
		return controller.RouteNotFound(t.Route, err), nil
	}

	defer func() {
		if rec := recover(); rec != nil {
			eventbus.Publish(ctx, events.ActionUnhandledException{Field: t.Route, Path: path, Err: fmt.Errorf("panic: %v", rec)})
			panic(rec)
		}
	}()
	out := t.fn.Call(in)
	if t.returnsError && !out[1].IsNil() {
		err := out[1].Interface().(error)
		eventbus.Publish(ctx, events.ActionUnhandledException{Field: t.Route, Path: path, Err: err})
		return nil, err
	}

	result := out[0].Interface()
	kind := "Value"
	if ar, ok := result.(controller.ActionResult); ok {
		kind = controller.Kind(ar)
	}
	eventbus.Publish(ctx, events.ActionInvocationCompleted{Action: t.Route, Field: path, Result: kind, Duration: time.Since(start)})
	return result, nil
}

func (t *FieldTemplate) arguments(ctx context.Context, p schema.ResolveParams) ([]reflect.Value, error) {
	ft := t.fn.Type()
	in := make([]reflect.Value, len(t.params))
	for i, kind := range t.params {
		typ := ft.In(i)
		switch kind {
		case paramContext:
			in[i] = reflect.ValueOf(ctx)
		case paramSource:
			v, err := convert(p.Source, typ)
			if err != nil {
				return nil, fmt.Errorf("%w: source: %v", errBinding, err)
			}
			in[i] = v
		case paramSources:
			sources := reflect.MakeSlice(typ, 0, len(p.Sources))
			for _, s := range p.Sources {
				v, err := convert(s, typ.Elem())
				if err != nil {
					return nil, fmt.Errorf("%w: source batch: %v", errBinding, err)
				}
				sources = reflect.Append(sources, v)
			}
			in[i] = sources
		case paramArguments:
			v, err := convert(argumentValue(p.Args), typ)
			if err != nil {
				return nil, fmt.Errorf("%w: arguments: %v", errBinding, err)
			}
			in[i] = v
		}
	}
	return in, nil
}

func argumentValue(args map[string]any) any {
	if args == nil {
		return map[string]any{}
	}
	return args
}

// convert shapes a coerced GraphQL value into a Go value of type typ. Input
// objects arrive as map[string]any and fill struct fields named by their
// graphql tag or by the lower camel case form of the field name.
func convert(v any, typ reflect.Type) (reflect.Value, error) {
	if v == nil {
		switch typ.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
			return reflect.Zero(typ), nil
		}
		return reflect.Value{}, fmt.Errorf("null cannot be used as %s", typ)
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(typ) {
		return rv, nil
	}
	switch typ.Kind() {
	case reflect.Pointer:
		elem, err := convert(v, typ.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		ptr := reflect.New(typ.Elem())
		ptr.Elem().Set(elem)
		return ptr, nil
	case reflect.Slice:
		if rv.Kind() != reflect.Slice {
			return reflect.Value{}, fmt.Errorf("%T cannot be used as %s", v, typ)
		}
		out := reflect.MakeSlice(typ, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			item, err := convert(rv.Index(i).Interface(), typ.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			out = reflect.Append(out, item)
		}
		return out, nil
	case reflect.Struct:
		m, ok := v.(map[string]any)
		if !ok {
			return reflect.Value{}, fmt.Errorf("%T cannot be used as %s", v, typ)
		}
		out := reflect.New(typ).Elem()
		for i := 0; i < typ.NumField(); i++ {
			sf := typ.Field(i)
			if !sf.IsExported() {
				continue
			}
			value, ok := m[fieldName(sf)]
			if !ok {
				continue
			}
			fv, err := convert(value, sf.Type)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("%s: %w", sf.Name, err)
			}
			out.Field(i).Set(fv)
		}
		return out, nil
	}
	if rv.Type().ConvertibleTo(typ) && rv.Kind() != reflect.String && typ.Kind() != reflect.String {
		return rv.Convert(typ), nil
	}
	if rv.Kind() == reflect.String && typ.Kind() == reflect.String {
		return rv.Convert(typ), nil
	}
	return reflect.Value{}, fmt.Errorf("%T cannot be used as %s", v, typ)
}

func fieldName(sf reflect.StructField) string {
	if tag := sf.Tag.Get("graphql"); tag != "" {
		return strings.Split(tag, ",")[0]
	}
	return strcase.ToLowerCamel(sf.Name)
}

func pathString(path []any) string {
	var b strings.Builder
	for i, seg := range path {
		switch s := seg.(type) {
		case int:
			fmt.Fprintf(&b, "[%d]", s)
		default:
			if i > 0 {
				b.WriteByte('.')
			}
			fmt.Fprint(&b, s)
		}
	}
	return b.String()
}
