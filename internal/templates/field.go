package templates

import (
	"context"
	"reflect"

	"github.com/hanpama/graphplan/internal/controller"
	"github.com/hanpama/graphplan/internal/schema"
)

var (
	contextType      = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType        = reflect.TypeOf((*error)(nil)).Elem()
	actionResultType = reflect.TypeOf((*controller.ActionResult)(nil)).Elem()
	argumentMapType  = reflect.TypeOf(map[string]any(nil))
)

type paramKind int

const (
	paramContext paramKind = iota
	paramSource
	paramSources
	paramArguments
)

// FieldTemplate describes a Go function that resolves a field. Parameters
// are bound by type: a context.Context, the source value (or a slice of
// source values for Batch fields) and one struct or map[string]any receiving
// the field arguments. The function returns the value, optionally followed
// by an error.
type FieldTemplate struct {
	Route  string
	Mode   schema.ResolutionMode
	Source reflect.Type
	Return reflect.Type

	fn           reflect.Value
	params       []paramKind
	argsType     reflect.Type
	returnsError bool
}

// NewFieldTemplate describes fn as the resolver of route. source is the Go
// type of the parent values; it may be nil for root fields.
func NewFieldTemplate(route string, mode schema.ResolutionMode, source reflect.Type, fn any) *FieldTemplate {
	return &FieldTemplate{Route: route, Mode: mode, Source: source, fn: reflect.ValueOf(fn)}
}

// Validate parses the function signature.
func (t *FieldTemplate) Validate() error {
	t.params, t.argsType, t.returnsError = nil, nil, false
	if !t.fn.IsValid() || t.fn.Kind() != reflect.Func {
		return declarationError(t.Route, "The graph field '%s' is not backed by a function.", t.Route)
	}
	ft := t.fn.Type()

	switch {
	case ft.NumOut() == 0:
		return declarationError(t.Route, "The graph field '%s' has a void return. All graph fields must return something.", t.Route)
	case ft.NumOut() > 2 || (ft.NumOut() == 2 && ft.Out(1) != errorType):
		return declarationError(t.Route, "The graph field '%s' must return a single value, optionally followed by an error.", t.Route)
	}
	t.Return = ft.Out(0)
	t.returnsError = ft.NumOut() == 2

	if err := t.parseParams(ft); err != nil {
		return err
	}
	if t.Mode == schema.Batch {
		return t.validateBatchSignature()
	}
	return nil
}

func (t *FieldTemplate) parseParams(ft reflect.Type) error {
	for i := 0; i < ft.NumIn(); i++ {
		in := ft.In(i)
		switch {
		case in == contextType:
			if i != 0 {
				return declarationError(t.Route, "The graph field '%s' must take its context.Context as the first parameter.", t.Route)
			}
			t.params = append(t.params, paramContext)
		case t.Source != nil && in.Kind() == reflect.Slice && t.Source.AssignableTo(in.Elem()):
			t.params = append(t.params, paramSources)
		case t.Source != nil && t.Source.AssignableTo(in):
			t.params = append(t.params, paramSource)
		case t.argsType == nil && (in == argumentMapType || in.Kind() == reflect.Struct ||
			(in.Kind() == reflect.Pointer && in.Elem().Kind() == reflect.Struct)):
			t.argsType = in
			t.params = append(t.params, paramArguments)
		default:
			return declarationError(t.Route, "The graph field '%s' declares parameter %d of type '%s' which cannot be supplied.", t.Route, i, in)
		}
	}
	return nil
}

func (t *FieldTemplate) validateBatchSignature() error {
	hasSources := false
	for _, p := range t.params {
		if p == paramSources {
			hasSources = true
		}
	}
	if !hasSources {
		return declarationError(t.Route,
			"Invalid batch method signature. The field '%s' declares itself as batch method but does not accept a batch "+
				"of data as an input parameter. This method must accept a parameter of type '[]%s' somewhere in its method signature.",
			t.Route, t.Source)
	}
	if t.Return == actionResultType || t.Return.Implements(actionResultType) {
		return nil
	}
	if t.Return.Kind() == reflect.Map && t.Source.AssignableTo(t.Return.Key()) {
		return nil
	}
	return declarationError(t.Route,
		"Invalid batch method signature. The field '%s' declares a return type of '%s', however; batch methods must return "+
			"either a controller.ActionResult or a map keyed on the provided source data (e.g. 'map[%s]V').",
		t.Route, t.Return, t.Source)
}

// CreateResolver validates the template and returns a resolver invoking the
// function.
func (t *FieldTemplate) CreateResolver() (*MethodResolver, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &MethodResolver{template: t}, nil
}

// Bind installs fn as the resolver of the named field of parent.
func Bind(parent *schema.Type, field string, fn any) error {
	f := parent.Field(field)
	if f == nil {
		return declarationError(parent.Name+"."+field, "The type '%s' has no field '%s'.", parent.Name, field)
	}
	r, err := NewFieldTemplate(parent.Name+"."+field, f.Mode, parent.SourceType, fn).CreateResolver()
	if err != nil {
		return err
	}
	f.SetResolver(r)
	return nil
}
