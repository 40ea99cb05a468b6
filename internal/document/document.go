package document

import (
	"strings"

	"github.com/hanpama/graphplan/internal/messages"
	"github.com/hanpama/graphplan/internal/schema"
)

// Document is the semantic model built from one query text.
type Document struct {
	Schema   *schema.Schema
	Messages *messages.Collection

	parts      []*Part
	operations []PartID
	fragments  []PartID
}

func New(s *schema.Schema) *Document {
	return &Document{Schema: s, Messages: messages.New()}
}

// Add stores p under parent and returns its id.
func (d *Document) Add(p *Part, parent PartID) PartID {
	p.ID = PartID(len(d.parts))
	p.Parent = parent
	d.parts = append(d.parts, p)
	if parent != NoPart {
		owner := d.parts[parent]
		owner.Children = append(owner.Children, p.ID)
	}
	switch p.Kind {
	case KindOperation:
		d.operations = append(d.operations, p.ID)
	case KindNamedFragment:
		d.fragments = append(d.fragments, p.ID)
	}
	return p.ID
}

// Part returns the part with the given id, or nil for NoPart.
func (d *Document) Part(id PartID) *Part {
	if id < 0 || int(id) >= len(d.parts) {
		return nil
	}
	return d.parts[id]
}

func (d *Document) Len() int { return len(d.parts) }

func (d *Document) ParentOf(p *Part) *Part { return d.Part(p.Parent) }

// Children returns the child parts of p in insertion order.
func (d *Document) Children(p *Part) []*Part {
	out := make([]*Part, 0, len(p.Children))
	for _, id := range p.Children {
		out = append(out, d.parts[id])
	}
	return out
}

// ChildrenOfKind returns the children of p with kind k.
func (d *Document) ChildrenOfKind(p *Part, k PartKind) []*Part {
	var out []*Part
	for _, id := range p.Children {
		if c := d.parts[id]; c.Kind == k {
			out = append(out, c)
		}
	}
	return out
}

// FirstChild returns the first child of p with kind k or nil.
func (d *Document) FirstChild(p *Part, k PartKind) *Part {
	for _, id := range p.Children {
		if c := d.parts[id]; c.Kind == k {
			return c
		}
	}
	return nil
}

// Ancestor returns the closest ancestor of p with kind k or nil.
func (d *Document) Ancestor(p *Part, k PartKind) *Part {
	for cur := d.Part(p.Parent); cur != nil; cur = d.Part(cur.Parent) {
		if cur.Kind == k {
			return cur
		}
	}
	return nil
}

// Operations returns operation parts in document order.
func (d *Document) Operations() []*Part {
	out := make([]*Part, len(d.operations))
	for i, id := range d.operations {
		out[i] = d.parts[id]
	}
	return out
}

// NamedFragments returns named fragment parts in document order.
func (d *Document) NamedFragments() []*Part {
	out := make([]*Part, len(d.fragments))
	for i, id := range d.fragments {
		out[i] = d.parts[id]
	}
	return out
}

// Fragment returns the first named fragment called name.
func (d *Document) Fragment(name string) *Part {
	for _, id := range d.fragments {
		if p := d.parts[id]; p.Name == name {
			return p
		}
	}
	return nil
}

// Operation picks the operation to run. An empty name selects the only
// operation of a single-operation document.
func (d *Document) Operation(name string) *Part {
	if name == "" {
		if len(d.operations) == 1 {
			return d.parts[d.operations[0]]
		}
		return nil
	}
	for _, id := range d.operations {
		if p := d.parts[id]; p.Name == name {
			return p
		}
	}
	return nil
}

// LinkFragmentSpreads assigns every spread its named fragment. Spreads whose
// fragment does not exist keep NoPart.
func (d *Document) LinkFragmentSpreads() {
	for _, p := range d.parts {
		if p.Kind != KindFragmentSpread {
			continue
		}
		if f := d.Fragment(p.Name); f != nil {
			p.Fragment = f.ID
		}
	}
}

// Walk visits parts depth first in document order starting at the
// operations and then the named fragments. Returning false skips children.
func (d *Document) Walk(fn func(*Part) bool) {
	var rec func(id PartID)
	rec = func(id PartID) {
		p := d.parts[id]
		if !fn(p) {
			return
		}
		for _, c := range p.Children {
			rec(c)
		}
	}
	for _, id := range d.operations {
		rec(id)
	}
	for _, id := range d.fragments {
		rec(id)
	}
}

// Path renders the breadcrumb of p from the document root, e.g.
// "query GetUser/user/friends/name".
func (d *Document) Path(p *Part) string {
	var segments []string
	for cur := p; cur != nil; cur = d.Part(cur.Parent) {
		switch cur.Kind {
		case KindOperation:
			name := cur.OperationType
			if cur.Name != "" {
				name += " " + cur.Name
			}
			segments = append(segments, name)
		case KindNamedFragment:
			segments = append(segments, "fragment "+cur.Name)
		case KindFieldSelection:
			segments = append(segments, cur.ResponseName())
		case KindInlineFragment:
			if cur.GraphType != nil {
				segments = append(segments, "... on "+cur.GraphType.Name)
			}
		case KindFragmentSpread:
			segments = append(segments, "..."+cur.Name)
		case KindDirective:
			segments = append(segments, "@"+cur.Name)
		case KindInputArgument, KindVariable:
			segments = append(segments, cur.Name)
		}
	}
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return strings.Join(segments, "/")
}

// FieldDirectives returns the directive parts of a field selection in rank
// order.
func (d *Document) FieldDirectives(p *Part) []*Part {
	out := make([]*Part, 0, len(p.Directives))
	for _, rd := range p.Directives {
		out = append(out, d.parts[rd.ID])
	}
	return out
}

// VariableUsages returns the variable reference values reachable from an
// operation, following fragment spreads once each.
func (d *Document) VariableUsages(op *Part) []*Part {
	var out []*Part
	seen := map[PartID]bool{}
	var rec func(p *Part)
	rec = func(p *Part) {
		if p.Kind == KindVariable {
			return
		}
		if p.Kind == KindSuppliedValue && p.ValueKind == ValueVariable {
			out = append(out, p)
		}
		if p.Kind == KindFragmentSpread && p.Fragment != NoPart && !seen[p.Fragment] {
			seen[p.Fragment] = true
			rec(d.parts[p.Fragment])
		}
		for _, c := range p.Children {
			rec(d.parts[c])
		}
	}
	rec(op)
	return out
}
