package fieldexec

import (
	"fmt"
	"reflect"

	"github.com/hanpama/graphplan/internal/execution"
	"github.com/hanpama/graphplan/internal/messages"
	"github.com/hanpama/graphplan/internal/rules"
)

// validationContext is what the result rules see for one source item.
type validationContext struct {
	field *execution.FieldContext
	item  *execution.SourceItem
}

type validationContexts []*validationContext

func newValidationContexts(c *execution.FieldContext) validationContexts {
	out := make(validationContexts, 0, c.Items.Len())
	for _, item := range c.Items.Items() {
		out = append(out, &validationContext{field: c, item: item})
	}
	return out
}

// resultRule checks the outcome of one item. A failing rule reports on the
// field and returns false; the remaining rules are skipped for that item.
type resultRule struct {
	name  string
	check func(v *validationContext) bool
}

// completionRules run after the resolver, before child fields.
var completionRules = []resultRule{
	{name: "ItemIsSettled", check: itemIsSettled},
	{name: "ListFieldHasListValue", check: listFieldHasListValue},
}

// validationRules run after child fields completed.
var validationRules = []resultRule{
	{name: "NonNullFieldHasValue", check: nonNullFieldHasValue},
}

func (vs validationContexts) apply(rs []resultRule) bool {
	ok := true
	for _, v := range vs {
		for _, r := range rs {
			if !r.check(v) {
				ok = false
				break
			}
		}
	}
	return ok
}

func itemIsSettled(v *validationContext) bool {
	if v.item.Status() != execution.ItemPending {
		return true
	}
	report(v.field, v.item.Path(), rules.HandlingFieldErrors,
		fmt.Sprintf("Field %s did not produce a value.", v.field.Invocation), nil)
	v.item.Fail()
	return false
}

func listFieldHasListValue(v *validationContext) bool {
	value, ok := v.item.Result()
	if !ok || isNullish(value) || !v.field.Invocation.Field.Type.IsList() {
		return true
	}
	switch reflect.ValueOf(value).Kind() {
	case reflect.Slice, reflect.Array:
		return true
	}
	report(v.field, v.item.Path(), rules.ValueCompletion,
		fmt.Sprintf("Expected a list value for field %s, got %T.", v.field.Invocation, value), nil)
	v.item.Fail()
	return false
}

func nonNullFieldHasValue(v *validationContext) bool {
	if !v.field.Invocation.Field.Type.IsNonNull() {
		return true
	}
	switch v.item.Status() {
	case execution.ItemCancelled:
		return true
	case execution.ItemFailed:
		return false
	}
	value, _ := v.item.Result()
	if !isNullish(value) {
		return true
	}
	if !hasErrorAt(v.field, v.item.Path()) {
		report(v.field, v.item.Path(), rules.ValueCompletion,
			fmt.Sprintf("Cannot return null for non-nullable field %s.", v.field.Invocation), nil)
	}
	return false
}

// report adds a critical execution message located at path.
func report(c *execution.FieldContext, path []any, ref rules.Ref, text string, err error) *messages.Message {
	m := c.Fail(nil, messages.CodeExecutionError, text, err)
	m.Path = path
	m.RuleNumber, m.RuleURL = ref.Number, ref.URL()
	return m
}

func hasErrorAt(c *execution.FieldContext, path []any) bool {
	key := execution.FormatPath(path)
	for _, m := range c.Messages.Criticals() {
		if execution.FormatPath(m.Path) == key {
			return true
		}
	}
	return false
}

// isNullish reports nil interfaces and typed nils.
func isNullish(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
