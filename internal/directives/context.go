// Package directives applies schema and field directives through a
// middleware pipeline, one directive at a time in rank order.
package directives

import (
	"github.com/hanpama/graphplan/internal/messages"
	"github.com/hanpama/graphplan/internal/schema"
)

// Context is the state of one directive application. It is what directive
// resolvers see as their schema.DirectiveInvocation.
type Context struct {
	Schema   *schema.Schema
	Messages *messages.Collection
	// RequestID names the operation request; empty at schema generation.
	RequestID string

	request   *schema.DirectiveRequest
	target    any
	cancelled bool
}

func NewContext(s *schema.Schema, req *schema.DirectiveRequest) *Context {
	return &Context{
		Schema:   s,
		Messages: messages.New(),
		request:  req,
		target:   req.Target(),
	}
}

func (c *Context) Request() *schema.DirectiveRequest { return c.request }

func (c *Context) Target() any { return c.target }

func (c *Context) SetTarget(v any) { c.target = v }

// Fail records a critical message. The directive pipeline stops after the
// current component.
func (c *Context) Fail(code, message string, err error) {
	c.Messages.Critical(code, message, err)
}

func (c *Context) Cancel() { c.cancelled = true }

func (c *Context) IsCancelled() bool { return c.cancelled }

// IsSuccessful reports whether the application neither failed nor was
// cancelled.
func (c *Context) IsSuccessful() bool { return !c.cancelled && c.Messages.IsSuccessful() }

var _ schema.DirectiveInvocation = (*Context)(nil)
