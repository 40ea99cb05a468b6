package fieldexec

import (
	"context"
	"fmt"
	"reflect"

	"github.com/hanpama/graphplan/internal/execution"
	"github.com/hanpama/graphplan/internal/pipeline"
	"github.com/hanpama/graphplan/internal/rules"
	"github.com/hanpama/graphplan/internal/schema"
)

// ProcessChildFields completes the resolved values into response values and
// writes them to the parent objects. Object values then have their own
// fields resolved, grouped by concrete type so that Batch fields see every
// parent at once.
func (e *Engine) ProcessChildFields(ctx context.Context, c *execution.FieldContext, next pipeline.Handler[*execution.FieldContext]) error {
	inv := c.Invocation
	parents := newParentGroups()
	for _, item := range c.Items.Items() {
		target := item.Target()
		switch item.Status() {
		case execution.ItemFailed:
			if target != nil {
				target.Set(inv.ResponseName, nil)
			}
			continue
		case execution.ItemResolved:
		default:
			continue
		}
		v, _ := item.Result()
		completed := e.complete(c, inv.Field.Type, v, item.Path(), parents)
		item.SetResult(completed)
		if target != nil {
			target.Set(inv.ResponseName, completed)
		}
	}

	var children []*execution.FieldContext
	for _, name := range parents.order {
		fields := inv.Children(e.schema.FindGraphType(name))
		children = append(children, e.contexts(c.Request, fields, parents.byType[name])...)
	}
	if err := e.executeAll(ctx, children, false); err != nil {
		return err
	}
	return next(ctx, c)
}

// complete turns a resolved value into its response form. Failures are
// reported on c and complete to null.
func (e *Engine) complete(c *execution.FieldContext, t *schema.TypeRef, v any, path []any, parents *parentGroups) any {
	if isNullish(v) {
		return nil
	}
	t = t.Nullable()
	if t.Kind == schema.TypeRefKindList {
		return e.completeList(c, t, v, path, parents)
	}

	named := e.schema.FindGraphType(t.GetNamedType())
	switch {
	case named == nil:
		report(c, path, rules.ValueCompletion, fmt.Sprintf("Unknown type %s.", t.GetNamedType()), nil)
		return nil
	case named.IsLeaf():
		out, err := schema.SerializeLeaf(named, v)
		if err != nil {
			report(c, path, rules.ValueCompletion, err.Error(), err)
			return nil
		}
		return out
	}

	concrete, err := e.schema.ResolveConcreteType(named, v)
	if err != nil {
		report(c, path, rules.ValueCompletion, err.Error(), err)
		return nil
	}
	object := execution.NewResponseMap()
	for _, child := range c.Invocation.Children(concrete) {
		object.Declare(child.ResponseName, child.Field.Type.IsNonNull())
	}
	parents.add(concrete.Name, parentValue{path: path, value: v, object: object})
	return object
}

func (e *Engine) completeList(c *execution.FieldContext, t *schema.TypeRef, v any, path []any, parents *parentGroups) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		report(c, path, rules.ValueCompletion,
			fmt.Sprintf("Expected a list value for field %s, got %T.", c.Invocation, v), nil)
		return nil
	}
	itemType := t.OfType
	list := &execution.ResponseList{Items: make([]any, rv.Len()), NonNullItems: itemType.IsNonNull()}
	for i := range list.Items {
		p := execution.AppendPath(path, i)
		item := e.complete(c, itemType, rv.Index(i).Interface(), p, parents)
		if item == nil && itemType.IsNonNull() && !hasErrorAt(c, p) {
			report(c, p, rules.ValueCompletion,
				fmt.Sprintf("Cannot return null for non-nullable list item of field %s.", c.Invocation), nil)
		}
		list.Items[i] = item
	}
	return list
}

// parentGroups collects completed objects by concrete type, in the order
// the types were first seen.
type parentGroups struct {
	order  []string
	byType map[string][]parentValue
}

func newParentGroups() *parentGroups {
	return &parentGroups{byType: make(map[string][]parentValue)}
}

func (g *parentGroups) add(typeName string, p parentValue) {
	if _, ok := g.byType[typeName]; !ok {
		g.order = append(g.order, typeName)
	}
	g.byType[typeName] = append(g.byType[typeName], p)
}
