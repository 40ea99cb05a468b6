package execution

import (
	"go.uber.org/atomic"
)

// ItemStatus is the resolution state of a source item.
type ItemStatus int32

const (
	ItemPending ItemStatus = iota
	ItemResolved
	ItemFailed
	ItemCancelled
)

func (s ItemStatus) String() string {
	switch s {
	case ItemPending:
		return "Pending"
	case ItemResolved:
		return "Resolved"
	case ItemFailed:
		return "Failed"
	case ItemCancelled:
		return "Cancelled"
	}
	return "Unknown"
}

// SourceItem is one parent value a field is resolved for, together with the
// response object the field's result is written to.
type SourceItem struct {
	path   []any
	source any
	target *ResponseMap

	status atomic.Int32
	result any
}

func NewSourceItem(path []any, source any, target *ResponseMap) *SourceItem {
	return &SourceItem{path: path, source: source, target: target}
}

// Path is the response path of the field value, e.g. [user friends 0 name].
func (i *SourceItem) Path() []any { return i.path }

func (i *SourceItem) Source() any { return i.source }

// Target is the response object the resolved value belongs to.
func (i *SourceItem) Target() *ResponseMap { return i.target }

func (i *SourceItem) Status() ItemStatus { return ItemStatus(i.status.Load()) }

// Resolve records the value of a pending item. It reports false when the
// item was already settled.
func (i *SourceItem) Resolve(v any) bool {
	if i.Status() != ItemPending {
		return false
	}
	i.result = v
	return i.status.CompareAndSwap(int32(ItemPending), int32(ItemResolved))
}

// Fail marks a pending or resolved item as failed and drops its value.
func (i *SourceItem) Fail() bool {
	for {
		cur := i.status.Load()
		if cur != int32(ItemPending) && cur != int32(ItemResolved) {
			return false
		}
		if i.status.CompareAndSwap(cur, int32(ItemFailed)) {
			i.result = nil
			return true
		}
	}
}

// Cancel abandons the item. Pending and resolved items become cancelled;
// failed items keep their state.
func (i *SourceItem) Cancel() bool {
	for {
		cur := i.status.Load()
		if cur == int32(ItemFailed) || cur == int32(ItemCancelled) {
			return false
		}
		if i.status.CompareAndSwap(cur, int32(ItemCancelled)) {
			return true
		}
	}
}

// Result returns the resolved value. The boolean is false unless the item is
// resolved.
func (i *SourceItem) Result() (any, bool) {
	if i.Status() != ItemResolved {
		return nil, false
	}
	return i.result, true
}

// SetResult replaces the value of a resolved item.
func (i *SourceItem) SetResult(v any) {
	if i.Status() == ItemResolved {
		i.result = v
	}
}

// DataContainer holds the source items of one field invocation.
type DataContainer struct {
	items []*SourceItem
}

func NewDataContainer(items ...*SourceItem) *DataContainer {
	return &DataContainer{items: items}
}

func (d *DataContainer) Items() []*SourceItem { return d.items }

func (d *DataContainer) Len() int { return len(d.items) }

// Sources returns the source values in item order.
func (d *DataContainer) Sources() []any {
	out := make([]any, len(d.items))
	for i, item := range d.items {
		out[i] = item.source
	}
	return out
}

// Pending returns the items still waiting for a value.
func (d *DataContainer) Pending() []*SourceItem {
	var out []*SourceItem
	for _, item := range d.items {
		if item.Status() == ItemPending {
			out = append(out, item)
		}
	}
	return out
}

// Cancel cancels every item.
func (d *DataContainer) Cancel() {
	for _, item := range d.items {
		item.Cancel()
	}
}
