// Package validation checks a constructed document against the GraphQL
// validation rules.
package validation

import (
	"fmt"

	"github.com/hanpama/graphplan/internal/document"
	"github.com/hanpama/graphplan/internal/rules"
	"github.com/hanpama/graphplan/internal/schema"
)

// Rule checks one kind of document part. Execute reports failures through
// the context and returns false; the remaining rules for that part are then
// skipped. Traversal continues into its children so every violation in the
// document is collected.
type Rule struct {
	Ref           rules.Ref
	Kind          document.PartKind
	ShouldExecute func(c *Context, p *document.Part) bool
	Execute       func(c *Context, p *document.Part) bool
}

// Context carries per-document validation state.
type Context struct {
	Document *document.Document
	Schema   *schema.Schema

	memo map[string]bool
}

// Report records a failure of ref at p and returns false.
func (c *Context) Report(ref rules.Ref, p *document.Part, format string, args ...any) bool {
	c.Document.Messages.Add(ref.Message(fmt.Sprintf(format, args...), p.Position()))
	return false
}

// Once runs check the first time key is seen and returns the remembered
// result afterwards. Rules about a document-wide subject use it so the
// subject is reported at most once however many parts refer to it.
func (c *Context) Once(key string, check func() bool) bool {
	if ok, seen := c.memo[key]; seen {
		return ok
	}
	ok := check()
	c.memo[key] = ok
	return ok
}

// Engine runs rules over a document in pre-order.
type Engine struct {
	rules map[document.PartKind][]*Rule
}

func NewEngine(rs ...*Rule) *Engine {
	e := &Engine{rules: map[document.PartKind][]*Rule{}}
	for _, r := range rs {
		e.rules[r.Kind] = append(e.rules[r.Kind], r)
	}
	return e
}

var defaultEngine = NewEngine(DefaultRules()...)

// Validate runs the default rules and reports whether doc has no critical
// messages.
func Validate(doc *document.Document) bool { return defaultEngine.Validate(doc) }

// Validate runs every rule and reports whether doc has no critical
// messages, including those left by construction.
func (e *Engine) Validate(doc *document.Document) bool {
	c := &Context{Document: doc, Schema: doc.Schema, memo: map[string]bool{}}
	doc.Walk(func(p *document.Part) bool {
		for _, r := range e.rules[p.Kind] {
			if r.ShouldExecute != nil && !r.ShouldExecute(c, p) {
				continue
			}
			if !r.Execute(c, p) {
				break
			}
		}
		return true
	})
	return doc.Messages.IsSuccessful()
}

// DefaultRules returns every rule in evaluation order.
func DefaultRules() []*Rule {
	var out []*Rule
	out = append(out, operationRules()...)
	out = append(out, variableRules()...)
	out = append(out, fieldRules()...)
	out = append(out, fragmentRules()...)
	out = append(out, directiveRules()...)
	out = append(out, valueRules()...)
	return out
}

// collectFields flattens the field selections of a set through inline
// fragments and fragment spreads.
func (c *Context) collectFields(set *document.Part) []*document.Part {
	var out []*document.Part
	visited := map[document.PartID]bool{}
	var rec func(set *document.Part)
	rec = func(set *document.Part) {
		for _, child := range c.Document.Children(set) {
			switch child.Kind {
			case document.KindFieldSelection:
				out = append(out, child)
			case document.KindInlineFragment:
				if sub := c.Document.FirstChild(child, document.KindFieldSelectionSet); sub != nil {
					rec(sub)
				}
			case document.KindFragmentSpread:
				frag := c.Document.Part(child.Fragment)
				if frag == nil || visited[frag.ID] {
					continue
				}
				visited[frag.ID] = true
				if sub := c.Document.FirstChild(frag, document.KindFieldSelectionSet); sub != nil {
					rec(sub)
				}
			}
		}
	}
	rec(set)
	return out
}
