// Package pipeline composes middleware components into a single invoker.
package pipeline

import (
	"context"

	"github.com/hanpama/graphplan/internal/eventbus"
	"github.com/hanpama/graphplan/internal/events"
)

// Handler runs the rest of a pipeline for c.
type Handler[C any] func(ctx context.Context, c C) error

// Middleware is one component of a pipeline. It may act before and after
// calling next, or return without calling it to stop the pipeline.
type Middleware[C any] interface {
	Invoke(ctx context.Context, c C, next Handler[C]) error
}

// MiddlewareFunc adapts a function to Middleware.
type MiddlewareFunc[C any] func(ctx context.Context, c C, next Handler[C]) error

func (f MiddlewareFunc[C]) Invoke(ctx context.Context, c C, next Handler[C]) error {
	return f(ctx, c, next)
}

// Builder collects middleware in execution order.
type Builder[C any] struct {
	name       string
	names      []string
	components []Middleware[C]
}

func NewBuilder[C any](name string) *Builder[C] {
	return &Builder[C]{name: name}
}

// Use appends a component. The first component added runs first.
func (b *Builder[C]) Use(name string, m Middleware[C]) *Builder[C] {
	b.names = append(b.names, name)
	b.components = append(b.components, m)
	return b
}

// UseFunc appends a function component.
func (b *Builder[C]) UseFunc(name string, fn func(ctx context.Context, c C, next Handler[C]) error) *Builder[C] {
	return b.Use(name, MiddlewareFunc[C](fn))
}

// Build composes the components from the tail to the head. Each component
// receives the already composed remainder as its next handler.
func (b *Builder[C]) Build(ctx context.Context) *Pipeline[C] {
	next := Handler[C](func(context.Context, C) error { return nil })
	for i := len(b.components) - 1; i >= 0; i-- {
		m, rest := b.components[i], next
		next = func(ctx context.Context, c C) error { return m.Invoke(ctx, c, rest) }
	}
	names := append([]string(nil), b.names...)
	eventbus.Publish(ctx, events.PipelineRegistered{Name: b.name, Middleware: names})
	return &Pipeline[C]{name: b.name, names: names, entry: next}
}

// Pipeline is an immutable composed middleware chain.
type Pipeline[C any] struct {
	name  string
	names []string
	entry Handler[C]
}

func (p *Pipeline[C]) Invoke(ctx context.Context, c C) error { return p.entry(ctx, c) }

func (p *Pipeline[C]) Name() string { return p.name }

// Middleware lists component names in execution order.
func (p *Pipeline[C]) Middleware() []string { return append([]string(nil), p.names...) }
