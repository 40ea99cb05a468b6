package construction

import (
	"fmt"

	"github.com/hanpama/graphplan/internal/document"
	"github.com/hanpama/graphplan/internal/rules"
	"github.com/hanpama/graphplan/internal/schema"
	"github.com/hanpama/graphplan/internal/syntax"
)

// Context is the state shared by the steps run for one node.
type Context struct {
	Document *document.Document
	Schema   *schema.Schema
	Node     *syntax.Node
	// Current is the active part the node belongs to; nil at the root.
	Current *document.Part
	// Created is the part made for Node by an earlier step, if any.
	Created *document.Part

	ranks map[*syntax.Node]int
}

// AddPart attaches p under the active part and makes it the part created
// for the current node.
func (c *Context) AddPart(p *document.Part) *document.Part {
	parent := document.NoPart
	if c.Current != nil {
		parent = c.Current.ID
	}
	c.Document.Add(p, parent)
	c.Created = p
	return p
}

// Fail records a construction failure for the current node.
func (c *Context) Fail(ref rules.Ref, format string, args ...any) bool {
	c.Document.Messages.Add(ref.Message(fmt.Sprintf(format, args...), c.Node.Position))
	return false
}

// Rank is the declaration order of a directive node in the query text.
func (c *Context) Rank(n *syntax.Node) int { return c.ranks[n] }

// NamedType looks up the innermost named type of t.
func (c *Context) NamedType(t *schema.TypeRef) *schema.Type {
	if t == nil {
		return nil
	}
	return c.Schema.FindGraphType(t.GetNamedType())
}
