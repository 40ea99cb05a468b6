package construction

import (
	"sort"

	"github.com/hanpama/graphplan/internal/document"
	"github.com/hanpama/graphplan/internal/schema"
	"github.com/hanpama/graphplan/internal/syntax"
)

// Engine builds documents using a step registry.
type Engine struct {
	registry *Registry
}

// NewEngine returns an engine running the default construction steps.
func NewEngine() *Engine {
	r, err := NewRegistry(DefaultSteps()...)
	if err != nil {
		panic(err)
	}
	return &Engine{registry: r}
}

// NewEngineWithRegistry returns an engine running r.
func NewEngineWithRegistry(r *Registry) *Engine { return &Engine{registry: r} }

// Build constructs the document for root. Construction failures are
// recorded on the document's messages; nodes that fail are left out.
func (e *Engine) Build(s *schema.Schema, root *syntax.Node) *document.Document {
	doc := document.New(s)
	c := &Context{Document: doc, Schema: s, ranks: rankDirectives(root)}
	for _, child := range root.Children {
		e.visit(c, child, nil)
	}
	doc.LinkFragmentSpreads()
	return doc
}

func (e *Engine) visit(c *Context, n *syntax.Node, current *document.Part) {
	c.Node, c.Current, c.Created = n, current, nil
	for _, group := range e.registry.Slots(n.Kind) {
		step := Select(group, c)
		if step == nil {
			continue
		}
		if !step.Execute(c) {
			return
		}
	}
	next := current
	if c.Created != nil {
		next = c.Created
	}
	for _, child := range n.Children {
		e.visit(c, child, next)
	}
}

// rankDirectives orders every directive node by its position in the text.
func rankDirectives(root *syntax.Node) map[*syntax.Node]int {
	var nodes []*syntax.Node
	syntax.Walk(root, func(n *syntax.Node) bool {
		if n.Kind == syntax.KindDirective {
			nodes = append(nodes, n)
		}
		return true
	})
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i].Position, nodes[j].Position
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	ranks := make(map[*syntax.Node]int, len(nodes))
	for i, n := range nodes {
		ranks[n] = i
	}
	return ranks
}

var defaultEngine = NewEngine()

// BuildQuery parses query and builds its document with the default steps.
func BuildQuery(s *schema.Schema, query string) (*document.Document, error) {
	root, err := syntax.Parse(query)
	if err != nil {
		return nil, err
	}
	return defaultEngine.Build(s, root), nil
}
