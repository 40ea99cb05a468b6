// Package messages holds the ordered diagnostic collection accumulated while a
// document is built, validated and executed.
package messages

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/multierr"
)

// Severity ranks a message. Anything at or above Critical fails the stage that
// produced it.
type Severity int

const (
	Trace Severity = iota
	Debug
	Info
	Warning
	Critical
	Fatal
)

func (s Severity) IsCritical() bool { return s >= Critical }

func (s Severity) String() string {
	switch s {
	case Trace:
		return "TRACE"
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warning:
		return "WARNING"
	case Critical:
		return "CRITICAL"
	case Fatal:
		return "FATAL"
	}
	return fmt.Sprintf("SEVERITY(%d)", int(s))
}

// Common message codes.
const (
	CodeValidationError   = "VALIDATION_ERROR"
	CodeExecutionError    = "EXECUTION_ERROR"
	CodeInvalidDirective  = "INVALID_DIRECTIVE"
	CodeUnhandledError    = "UNHANDLED_EXCEPTION"
	CodeUnauthorized      = "ACCESS_DENIED"
	CodeBadRequest        = "BAD_REQUEST"
	CodeRouteNotFound     = "ROUTE_NOT_FOUND"
	CodeInternalError     = "INTERNAL_SERVER_ERROR"
	CodeInvalidBatch      = "INVALID_BATCH_RESULT"
	CodeSyntaxError       = "SYNTAX_ERROR"
	CodeOperationNotFound = "OPERATION_NOT_FOUND"
)

// Location is a one-based line/column pair in the query text.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Message is a single diagnostic entry.
type Message struct {
	Severity   Severity
	Code       string
	Text       string
	Err        error
	Location   *Location
	Path       []any
	RuleNumber string
	RuleURL    string
}

func (m *Message) String() string {
	var b strings.Builder
	b.WriteString(m.Severity.String())
	if m.Code != "" {
		b.WriteString(" ")
		b.WriteString(m.Code)
	}
	if m.RuleNumber != "" {
		b.WriteString(" [")
		b.WriteString(m.RuleNumber)
		b.WriteString("]")
	}
	b.WriteString(": ")
	b.WriteString(m.Text)
	if m.Location != nil {
		fmt.Fprintf(&b, " (%d:%d)", m.Location.Line, m.Location.Column)
	}
	return b.String()
}

// Collection is safe for concurrent appends; sibling fields may report into a
// shared parent collection.
type Collection struct {
	mu    sync.RWMutex
	items []*Message
}

func New() *Collection { return &Collection{} }

func (c *Collection) Add(m *Message) {
	if m == nil {
		return
	}
	c.mu.Lock()
	c.items = append(c.items, m)
	c.mu.Unlock()
}

func (c *Collection) AddRange(other *Collection) {
	if other == nil || other == c {
		return
	}
	items := other.All()
	c.mu.Lock()
	c.items = append(c.items, items...)
	c.mu.Unlock()
}

// Critical appends a message of Critical severity.
func (c *Collection) Critical(code, text string, err error) *Message {
	m := &Message{Severity: Critical, Code: code, Text: text, Err: err}
	c.Add(m)
	return m
}

func (c *Collection) All() []*Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Message, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// IsSuccessful reports whether no critical message has been recorded.
func (c *Collection) IsSuccessful() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, m := range c.items {
		if m.Severity.IsCritical() {
			return false
		}
	}
	return true
}

func (c *Collection) Criticals() []*Message {
	var out []*Message
	for _, m := range c.All() {
		if m.Severity.IsCritical() {
			out = append(out, m)
		}
	}
	return out
}

// CausalError is an error carrying every cause that led to a failure, in the
// order they were encountered.
type CausalError struct {
	Message string
	causes  error
}

func NewCausalError(message string, causes ...error) *CausalError {
	return &CausalError{Message: message, causes: multierr.Combine(causes...)}
}

func (e *CausalError) Error() string {
	if e.causes == nil {
		return e.Message
	}
	return e.Message + ": " + e.causes.Error()
}

// Causes returns the individual causes.
func (e *CausalError) Causes() []error { return multierr.Errors(e.causes) }

func (e *CausalError) Unwrap() []error { return e.Causes() }

// CausesFromCriticals builds the cause list for a failed stage: the first
// attached error wins, otherwise each critical message becomes one cause.
func CausesFromCriticals(c *Collection) []error {
	crit := c.Criticals()
	for _, m := range crit {
		if m.Err != nil {
			return []error{m.Err}
		}
	}
	out := make([]error, 0, len(crit))
	for _, m := range crit {
		text := m.Text
		if m.Code != "" {
			text = m.Code + " : " + text
		}
		out = append(out, fmt.Errorf("%s", text))
	}
	return out
}
