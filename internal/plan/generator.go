package plan

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/hanpama/graphplan/internal/document"
	"github.com/hanpama/graphplan/internal/eventbus"
	"github.com/hanpama/graphplan/internal/events"
	"github.com/hanpama/graphplan/internal/messages"
	"github.com/hanpama/graphplan/internal/rules"
	"github.com/hanpama/graphplan/internal/schema"
)

// Generator compiles validated documents into plans.
type Generator struct {
	// MaxDepth limits how deeply fields may nest. Zero disables the limit.
	MaxDepth int
}

func NewGenerator(maxDepth int) *Generator {
	return &Generator{MaxDepth: maxDepth}
}

// Generate compiles the named operation of doc. An empty name selects the
// only operation of the document. Failures are recorded on the plan's
// messages; the returned plan is never nil.
func (g *Generator) Generate(ctx context.Context, doc *document.Document, operationName string) *Plan {
	start := time.Now()
	p := &Plan{OperationName: operationName, Messages: messages.New(), Document: doc}
	defer func() {
		eventbus.Publish(ctx, events.PlanGenerated{
			OperationName: p.OperationName,
			OperationType: p.OperationType,
			Fields:        countFields(p.Fields),
			Messages:      p.Messages.Len(),
			Duration:      time.Since(start),
		})
	}()

	op := doc.Operation(operationName)
	if op == nil {
		p.Messages.Add(&messages.Message{
			Severity: messages.Critical,
			Code:     messages.CodeOperationNotFound,
			Text:     operationNotFound(doc, operationName),
		})
		return p
	}
	p.OperationName = op.Name
	p.OperationType = op.OperationType
	p.RootType = op.GraphType
	if p.RootType == nil {
		p.Messages.Add(rules.OperationTypeSupported.Message(
			fmt.Sprintf("Schema does not support operation type %q.", op.OperationType), op.Position()))
		return p
	}

	b := &builder{doc: doc, schema: doc.Schema, plan: p, maxDepth: g.MaxDepth}
	for _, v := range doc.ChildrenOfKind(op, document.KindVariable) {
		decl := &Variable{Name: v.Name, Type: v.TypeExpression}
		if def := doc.FirstChild(v, document.KindSuppliedValue); def != nil {
			decl.Default = b.resolvable(def)
		}
		p.Variables = append(p.Variables, decl)
	}
	p.Directives = b.directives(nil, doc.FieldDirectives(op))
	if set := doc.FirstChild(op, document.KindFieldSelectionSet); set != nil {
		p.Fields = b.collect([]*document.Part{set}, p.RootType, 1)
	}
	return p
}

func operationNotFound(doc *document.Document, name string) string {
	switch {
	case name != "":
		return fmt.Sprintf("Unknown operation named %q.", name)
	case len(doc.Operations()) == 0:
		return "Document does not contain an operation."
	}
	return "Must provide operation name if query contains multiple operations."
}

func countFields(fields []*FieldInvocation) int {
	n := 0
	for _, f := range fields {
		n++
		for _, t := range f.childTypes {
			n += countFields(f.children[t])
		}
	}
	return n
}

type builder struct {
	doc      *document.Document
	schema   *schema.Schema
	plan     *Plan
	maxDepth int
	tooDeep  bool
}

type group struct {
	inv  *FieldInvocation
	sets []*document.Part
}

// collect merges the fields of sets that apply to the concrete type t, keyed
// by response name in first-seen order. Directives on enclosing fragments and
// spreads are carried onto the fields they contain.
func (b *builder) collect(sets []*document.Part, t *schema.Type, depth int) []*FieldInvocation {
	var order []*group
	groups := make(map[string]*group)

	var walk func(set *document.Part, inherited []*document.Part)
	walk = func(set *document.Part, inherited []*document.Part) {
		if set == nil {
			return
		}
		for _, sel := range b.doc.Children(set) {
			switch sel.Kind {
			case document.KindFieldSelection:
				if !sel.CanResolveForGraphType(b.schema, t) {
					continue
				}
				field := t.Field(sel.Name)
				if field == nil {
					continue
				}
				g := groups[sel.ResponseName()]
				if g == nil {
					g = &group{inv: &FieldInvocation{
						ResponseName: sel.ResponseName(),
						Field:        field,
						ParentType:   t,
						ReturnType:   b.schema.FindGraphType(field.Type.GetNamedType()),
						Arguments:    b.arguments(sel, field.Arguments),
						Path:         b.doc.Path(sel),
						Depth:        depth,
					}}
					groups[sel.ResponseName()] = g
					order = append(order, g)
				}
				g.inv.Selections = append(g.inv.Selections, sel)
				g.inv.Directives = b.directives(g.inv.Directives, inherited)
				g.inv.Directives = b.directives(g.inv.Directives, b.doc.FieldDirectives(sel))
				if sub := b.doc.FirstChild(sel, document.KindFieldSelectionSet); sub != nil {
					g.sets = append(g.sets, sub)
				}
			case document.KindInlineFragment:
				if sel.GraphType != nil && !b.schema.AnalyzeRuntimeConcreteType(sel.GraphType, t) {
					continue
				}
				walk(b.doc.FirstChild(sel, document.KindFieldSelectionSet), with(inherited, b.doc.FieldDirectives(sel)))
			case document.KindFragmentSpread:
				frag := b.doc.Part(sel.Fragment)
				if frag == nil || (frag.GraphType != nil && !b.schema.AnalyzeRuntimeConcreteType(frag.GraphType, t)) {
					continue
				}
				dirs := with(inherited, b.doc.FieldDirectives(sel))
				walk(b.doc.FirstChild(frag, document.KindFieldSelectionSet), with(dirs, b.doc.FieldDirectives(frag)))
			}
		}
	}
	for _, set := range sets {
		walk(set, nil)
	}

	out := make([]*FieldInvocation, 0, len(order))
	for _, g := range order {
		out = append(out, g.inv)
		if len(g.sets) == 0 || !g.inv.ReturnType.IsComposite() {
			continue
		}
		if b.maxDepth > 0 && depth >= b.maxDepth {
			b.exceedsDepth(g.inv)
			continue
		}
		for _, concrete := range b.schema.ExpandAbstractType(g.inv.ReturnType) {
			g.inv.setChildren(concrete, b.collect(g.sets, concrete, depth+1))
		}
	}
	return out
}

func with(parts []*document.Part, more []*document.Part) []*document.Part {
	if len(more) == 0 {
		return parts
	}
	out := make([]*document.Part, 0, len(parts)+len(more))
	return append(append(out, parts...), more...)
}

func (b *builder) exceedsDepth(inv *FieldInvocation) {
	if b.tooDeep {
		return
	}
	b.tooDeep = true
	m := &messages.Message{
		Severity: messages.Critical,
		Code:     messages.CodeValidationError,
		Text:     fmt.Sprintf("Field %q exceeds the maximum query depth of %d.", inv.Path, b.maxDepth),
	}
	if pos := inv.Selections[0].Position(); pos.Line > 0 {
		m.Location = &messages.Location{Line: pos.Line, Column: pos.Column}
	}
	b.plan.Messages.Add(m)
}

// directives adds the directive parts to list, skipping parts already
// present, and keeps the list in rank order.
func (b *builder) directives(list []*DirectiveInvocation, parts []*document.Part) []*DirectiveInvocation {
	for _, p := range parts {
		if p.Directive == nil || containsPart(list, p.ID) {
			continue
		}
		list = append(list, &DirectiveInvocation{
			Directive: p.Directive,
			Location:  p.Location,
			Rank:      p.Rank,
			Arguments: b.arguments(p, p.Directive.Arguments),
			Origin:    b.doc.Path(p),
			part:      p.ID,
		})
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Rank < list[j].Rank })
	return list
}

func containsPart(list []*DirectiveInvocation, id document.PartID) bool {
	for _, d := range list {
		if d.part == id {
			return true
		}
	}
	return false
}

// arguments binds every definition in defs to the value supplied on owner.
func (b *builder) arguments(owner *document.Part, defs []*schema.InputValue) []*Argument {
	supplied := b.doc.ChildrenOfKind(owner, document.KindInputArgument)
	out := make([]*Argument, 0, len(defs))
	for _, def := range defs {
		arg := &Argument{Name: def.Name, Definition: def, Default: b.defaultValue(def)}
		for _, a := range supplied {
			if a.Name != def.Name {
				continue
			}
			if v := b.doc.FirstChild(a, document.KindSuppliedValue); v != nil {
				arg.Value = b.resolvable(v)
			}
			break
		}
		out = append(out, arg)
	}
	return out
}

func (b *builder) defaultValue(def *schema.InputValue) any {
	if def.DefaultValue == nil {
		return nil
	}
	v, err := CoerceInput(b.schema, def.Type, def.DefaultValue)
	if err != nil {
		return def.DefaultValue
	}
	return v
}

func (b *builder) resolvable(v *document.Part) Resolvable {
	switch v.ValueKind {
	case document.ValueNull:
		return literal{}
	case document.ValueVariable:
		return variableRef{name: v.Name}
	case document.ValueList:
		items := b.doc.ChildrenOfKind(v, document.KindSuppliedValue)
		out := listValue{items: make([]Resolvable, len(items))}
		for i, item := range items {
			out.items[i] = b.resolvable(item)
		}
		return out
	case document.ValueComplex:
		var out objectValue
		for _, f := range b.doc.ChildrenOfKind(v, document.KindInputArgument) {
			if fv := b.doc.FirstChild(f, document.KindSuppliedValue); fv != nil {
				out.fields = append(out.fields, objectField{name: f.Name, value: b.resolvable(fv)})
			}
		}
		if v.GraphType != nil {
			for _, def := range v.GraphType.InputFields {
				if def.DefaultValue != nil {
					if out.defaults == nil {
						out.defaults = make(map[string]any)
					}
					out.defaults[def.Name] = b.defaultValue(def)
				}
			}
		}
		return out
	}
	lit, err := v.Literal()
	if err == nil {
		lit, err = CoerceInput(b.schema, v.TypeExpression, lit)
	}
	if err != nil {
		m := rules.CoercingFieldArguments.Message(fmt.Sprintf("Invalid value %s: %v", v.Raw, err), v.Position())
		b.plan.Messages.Add(m)
		return literal{}
	}
	return literal{value: lit}
}
