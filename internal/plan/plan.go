// Package plan compiles a validated document into the field invocation graph
// executed for each request. Plans are read-only once generated and are
// shared between concurrent requests.
package plan

import (
	"fmt"
	"sort"

	"github.com/hanpama/graphplan/internal/document"
	"github.com/hanpama/graphplan/internal/messages"
	"github.com/hanpama/graphplan/internal/schema"
)

// Plan is the executable form of one operation.
type Plan struct {
	OperationName string
	OperationType string
	RootType      *schema.Type
	Variables     []*Variable
	// Directives are the operation-level directives by rank.
	Directives []*DirectiveInvocation
	Fields     []*FieldInvocation
	Messages   *messages.Collection
	Document   *document.Document
}

// IsSuccessful reports whether the plan can be executed.
func (p *Plan) IsSuccessful() bool { return p.Messages.IsSuccessful() }

// Variable is a variable declared by the operation.
type Variable struct {
	Name    string
	Type    *schema.TypeRef
	Default Resolvable
}

// FieldInvocation is one response key of a selection set resolved against a
// single concrete parent type. Field selections sharing a response name are
// merged into one invocation.
type FieldInvocation struct {
	ResponseName string
	Field        *schema.Field
	ParentType   *schema.Type
	// ReturnType is the named type of the field.
	ReturnType *schema.Type
	Arguments  []*Argument
	Directives []*DirectiveInvocation
	// Selections are the merged document parts, in document order.
	Selections []*document.Part
	Path       string
	Depth      int

	children   map[string][]*FieldInvocation
	childTypes []string
}

// Children returns the invocations to run for a value of the concrete type t.
func (f *FieldInvocation) Children(t *schema.Type) []*FieldInvocation {
	if t == nil {
		return nil
	}
	return f.children[t.Name]
}

// ChildTypes lists the concrete types the field has child invocations for.
func (f *FieldInvocation) ChildTypes() []string { return f.childTypes }

// IsLeaf reports whether the field has no selection set.
func (f *FieldInvocation) IsLeaf() bool { return len(f.children) == 0 }

func (f *FieldInvocation) String() string {
	return fmt.Sprintf("%s.%s", f.ParentType.Name, f.Field.Name)
}

// ArgumentValues merges the supplied arguments with the request variables and
// the argument defaults.
func (f *FieldInvocation) ArgumentValues(vars map[string]any) (map[string]any, error) {
	return argumentValues(f.Arguments, vars)
}

func (f *FieldInvocation) setChildren(t *schema.Type, children []*FieldInvocation) {
	if f.children == nil {
		f.children = make(map[string][]*FieldInvocation)
	}
	f.children[t.Name] = children
	f.childTypes = append(f.childTypes, t.Name)
	sort.Strings(f.childTypes)
}

// Argument binds an argument definition to the supplied value, if any, and
// to the coerced default.
type Argument struct {
	Name       string
	Definition *schema.InputValue
	// Value is nil when the document does not supply the argument.
	Value   Resolvable
	Default any
}

// DirectiveInvocation is a directive applied to a field, either directly or
// through the fragments that contain it.
type DirectiveInvocation struct {
	Directive *schema.Directive
	Location  schema.DirectiveLocation
	Rank      int
	Arguments []*Argument
	Origin    string
	part      document.PartID
}

// ArgumentValues resolves the directive arguments against vars, in the order
// the directive declares them.
func (d *DirectiveInvocation) ArgumentValues(vars map[string]any) ([]schema.ArgumentValue, error) {
	m, err := argumentValues(d.Arguments, vars)
	if err != nil {
		return nil, fmt.Errorf("directive @%s: %w", d.Directive.Name, err)
	}
	out := make([]schema.ArgumentValue, 0, len(m))
	for _, def := range d.Directive.Arguments {
		if v, ok := m[def.Name]; ok {
			out = append(out, schema.ArgumentValue{Name: def.Name, Value: v})
		}
	}
	return out, nil
}

func argumentValues(args []*Argument, vars map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(args))
	for _, a := range args {
		def := a.Definition
		if a.Value != nil {
			if v, ok := a.Value.Resolve(vars); ok {
				if v == nil && def.Type.IsNonNull() {
					return nil, fmt.Errorf("argument %q of non-null type %s cannot be null", a.Name, def.Type)
				}
				out[a.Name] = v
				continue
			}
		}
		if def.DefaultValue != nil {
			out[a.Name] = a.Default
		} else if def.Type.IsNonNull() {
			return nil, fmt.Errorf("argument %q of required type %s was not provided", a.Name, def.Type)
		}
	}
	return out, nil
}

// Resolvable produces an input value for a request. The boolean is false
// when the value refers to a variable the request did not supply.
type Resolvable interface {
	Resolve(vars map[string]any) (any, bool)
}

type literal struct{ value any }

func (l literal) Resolve(map[string]any) (any, bool) { return l.value, true }

type variableRef struct{ name string }

func (v variableRef) Resolve(vars map[string]any) (any, bool) {
	val, ok := vars[v.name]
	return val, ok
}

type listValue struct{ items []Resolvable }

func (l listValue) Resolve(vars map[string]any) (any, bool) {
	out := make([]any, len(l.items))
	for i, item := range l.items {
		out[i], _ = item.Resolve(vars)
	}
	return out, true
}

type objectField struct {
	name  string
	value Resolvable
}

type objectValue struct {
	fields   []objectField
	defaults map[string]any
}

func (o objectValue) Resolve(vars map[string]any) (any, bool) {
	out := make(map[string]any, len(o.fields)+len(o.defaults))
	for _, f := range o.fields {
		if v, ok := f.value.Resolve(vars); ok {
			out[f.name] = v
		}
	}
	for name, v := range o.defaults {
		if _, ok := out[name]; !ok {
			out[name] = v
		}
	}
	return out, true
}
