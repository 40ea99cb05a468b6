// Package construction builds a document from a syntax tree by running
// construction steps against each node.
package construction

import (
	"fmt"
	"sort"

	"github.com/hanpama/graphplan/internal/document"
	"github.com/hanpama/graphplan/internal/syntax"
)

const (
	// AnyAncestor matches whatever part is active.
	AnyAncestor document.PartKind = -2
	// RootAncestor matches only at the document root, where no part is
	// active yet.
	RootAncestor document.PartKind = -1
)

// Step is one construction action. A step applies to nodes of kind Node
// while a part of kind Ancestor is active. Steps of the same node kind run in
// slot order; within a slot the first step whose ShouldExecute passes runs
// and the others are skipped. Execute returning false stops processing of
// the node and its subtree.
type Step struct {
	Name          string
	Node          syntax.Kind
	Ancestor      document.PartKind
	Slot          int
	ShouldExecute func(c *Context) bool
	Execute       func(c *Context) bool
}

func (s *Step) matches(c *Context) bool {
	switch s.Ancestor {
	case AnyAncestor:
	case RootAncestor:
		if c.Current != nil {
			return false
		}
	default:
		if c.Current == nil || c.Current.Kind != s.Ancestor {
			return false
		}
	}
	return s.ShouldExecute == nil || s.ShouldExecute(c)
}

func ancestorName(k document.PartKind) string {
	switch k {
	case AnyAncestor:
		return "Any"
	case RootAncestor:
		return "Root"
	}
	return k.String()
}

// Registry holds steps grouped by node kind and slot, in a fixed order.
type Registry struct {
	slots map[syntax.Kind][][]*Step
}

// NewRegistry validates and orders steps. Two steps in the same slot of the
// same node kind must require different ancestors, and a step matching any
// ancestor must be alone in its slot; otherwise the choice between them
// would depend on registration order.
func NewRegistry(steps ...*Step) (*Registry, error) {
	type slotKey struct {
		node syntax.Kind
		slot int
	}
	grouped := map[slotKey][]*Step{}
	for _, s := range steps {
		k := slotKey{s.Node, s.Slot}
		for _, other := range grouped[k] {
			if other.Ancestor == s.Ancestor || other.Ancestor == AnyAncestor || s.Ancestor == AnyAncestor {
				return nil, fmt.Errorf("construction steps %s and %s both match %s nodes under %s in slot %d",
					other.Name, s.Name, s.Node, ancestorName(s.Ancestor), s.Slot)
			}
		}
		grouped[k] = append(grouped[k], s)
	}

	keys := make([]slotKey, 0, len(grouped))
	for k := range grouped {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].node != keys[j].node {
			return keys[i].node < keys[j].node
		}
		return keys[i].slot < keys[j].slot
	})

	r := &Registry{slots: map[syntax.Kind][][]*Step{}}
	for _, k := range keys {
		group := grouped[k]
		sort.Slice(group, func(i, j int) bool { return group[i].Ancestor < group[j].Ancestor })
		r.slots[k.node] = append(r.slots[k.node], group)
	}
	return r, nil
}

// Slots returns the ordered step groups for a node kind.
func (r *Registry) Slots(k syntax.Kind) [][]*Step { return r.slots[k] }

// Select returns the step of group that runs for the context's current
// node, or nil. Groups are consulted one at a time so a step sees the parts
// created by earlier slots.
func Select(group []*Step, c *Context) *Step {
	for _, s := range group {
		if s.matches(c) {
			return s
		}
	}
	return nil
}
