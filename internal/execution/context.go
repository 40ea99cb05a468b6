// Package execution holds the request-scoped state of a running operation:
// source items, field contexts, response objects and metrics hooks.
package execution

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"

	"github.com/hanpama/graphplan/internal/messages"
	"github.com/hanpama/graphplan/internal/plan"
	"github.com/hanpama/graphplan/internal/schema"
)

// OperationRequest is the state shared by every field of one request.
type OperationRequest struct {
	ID        string
	Schema    *schema.Schema
	Plan      *plan.Plan
	Variables map[string]any
	Root      any
	Messages  *messages.Collection
	// Debug keeps the text of unhandled errors in response messages.
	Debug bool
}

func NewOperationRequest(id string, s *schema.Schema, p *plan.Plan, vars map[string]any, root any) *OperationRequest {
	if id == "" {
		id = uuid.NewString()
	}
	return &OperationRequest{
		ID:        id,
		Schema:    s,
		Plan:      p,
		Variables: vars,
		Root:      root,
		Messages:  messages.New(),
	}
}

// FieldContext is the execution state of one field invocation over one or
// more source items.
type FieldContext struct {
	ID         string
	Request    *OperationRequest
	Invocation *plan.FieldInvocation
	Items      *DataContainer
	Messages   *messages.Collection
	// Arguments are the resolved field arguments.
	Arguments map[string]any

	cancelled atomic.Bool
	started   time.Time
}

func NewFieldContext(req *OperationRequest, inv *plan.FieldInvocation, items *DataContainer) *FieldContext {
	return &FieldContext{
		ID:         uuid.NewString(),
		Request:    req,
		Invocation: inv,
		Items:      items,
		Messages:   messages.New(),
	}
}

// Cancel marks the field abandoned and cancels all of its source items.
func (c *FieldContext) Cancel() {
	if c.cancelled.CompareAndSwap(false, true) {
		c.Items.Cancel()
	}
}

func (c *FieldContext) IsCancelled() bool { return c.cancelled.Load() }

// IsSuccessful reports whether the field is neither cancelled nor carrying a
// critical message.
func (c *FieldContext) IsSuccessful() bool {
	return !c.IsCancelled() && c.Messages.IsSuccessful()
}

// Path is the response path of the first source item.
func (c *FieldContext) Path() string {
	if items := c.Items.Items(); len(items) > 0 {
		return FormatPath(items[0].Path())
	}
	return c.Invocation.Path
}

// Start records the start of resolution.
func (c *FieldContext) Start() { c.started = time.Now() }

// Elapsed is the time since Start.
func (c *FieldContext) Elapsed() time.Duration {
	if c.started.IsZero() {
		return 0
	}
	return time.Since(c.started)
}

// Fail adds a critical message located at item, or at the field when item is
// nil.
func (c *FieldContext) Fail(item *SourceItem, code, text string, err error) *messages.Message {
	m := &messages.Message{Severity: messages.Critical, Code: code, Text: text, Err: err}
	if item != nil {
		m.Path = item.Path()
	} else if items := c.Items.Items(); len(items) > 0 {
		m.Path = items[0].Path()
	}
	if sels := c.Invocation.Selections; len(sels) > 0 {
		if pos := sels[0].Position(); pos.Line > 0 {
			m.Location = &messages.Location{Line: pos.Line, Column: pos.Column}
		}
	}
	c.Messages.Add(m)
	return m
}

// ExecutionError is a fatal failure of a field that aborts the request.
type ExecutionError struct {
	Field string
	Path  string
	Err   error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execution of field %s failed at %s: %v", e.Field, e.Path, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// NewExecutionError builds the fatal error for field c.
func NewExecutionError(c *FieldContext, format string, args ...any) *ExecutionError {
	return &ExecutionError{Field: c.Invocation.String(), Path: c.Path(), Err: fmt.Errorf(format, args...)}
}
