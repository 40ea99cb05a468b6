package fieldexec

import (
	"reflect"

	"github.com/hanpama/graphplan/internal/controller"
	"github.com/hanpama/graphplan/internal/execution"
	"github.com/hanpama/graphplan/internal/messages"
)

// BatchResultProcessor hands the value returned by a Batch resolver back to
// the source items it was called for. The value is a map keyed by source, or
// an action result completing with such a map. Items whose source is not a
// key of the map resolve to null.
type BatchResultProcessor struct{}

// Assign settles every pending item of c from result. A result that is not
// a map is a fatal error.
func (BatchResultProcessor) Assign(c *execution.FieldContext, result any) error {
	if ar, ok := result.(controller.ActionResult); ok {
		sink := &batchSink{field: c}
		ar.Complete(sink)
		if sink.failed {
			for _, item := range c.Items.Pending() {
				item.Fail()
			}
			return nil
		}
		result = sink.value
	}

	items := c.Items.Pending()
	if isNullish(result) {
		for _, item := range items {
			item.Resolve(nil)
		}
		return nil
	}
	rv := reflect.ValueOf(result)
	if rv.Kind() != reflect.Map {
		return execution.NewExecutionError(c, "batch field %s must return a map keyed by source value, got %T", c.Invocation, result)
	}
	for _, item := range items {
		item.Resolve(lookup(rv, item.Source()))
	}
	return nil
}

// lookup returns the value stored under source, or nil when the map has no
// such key or source cannot be used as one.
func lookup(m reflect.Value, source any) any {
	keyType := m.Type().Key()
	if source == nil {
		return nil
	}
	key := reflect.ValueOf(source)
	switch {
	case key.Type().AssignableTo(keyType):
	case key.Type().ConvertibleTo(keyType) && key.Kind() == keyType.Kind():
		key = key.Convert(keyType)
	default:
		return nil
	}
	if !key.Type().Comparable() {
		return nil
	}
	v := m.MapIndex(key)
	if !v.IsValid() {
		return nil
	}
	return v.Interface()
}

// batchSink receives the outcome of an action result for all items of a
// batch.
type batchSink struct {
	field  *execution.FieldContext
	value  any
	failed bool
}

func (s *batchSink) SetResult(v any) { s.value = v }

func (s *batchSink) AddMessage(m *messages.Message) {
	if m.Severity.IsCritical() {
		s.failed = true
	}
	if m.Path == nil {
		if items := s.field.Items.Items(); len(items) > 0 {
			m.Path = items[0].Path()
		}
	}
	s.field.Messages.Add(m)
}

