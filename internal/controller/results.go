// Package controller defines the results a field action can return instead
// of a plain value.
package controller

import (
	"fmt"

	"github.com/hanpama/graphplan/internal/messages"
)

// ResultSink receives the outcome of an action.
type ResultSink interface {
	SetResult(v any)
	AddMessage(m *messages.Message)
}

// ActionResult is returned by actions that need to report more than a value.
type ActionResult interface {
	Complete(sink ResultSink)
}

type okResult struct{ value any }

// Ok completes the field with v.
func Ok(v any) ActionResult { return okResult{value: v} }

func (r okResult) Complete(sink ResultSink) { sink.SetResult(r.value) }

type errorResult struct {
	code string
	text string
	err  error
}

func (r errorResult) Complete(sink ResultSink) {
	sink.AddMessage(&messages.Message{
		Severity: messages.Critical,
		Code:     r.code,
		Text:     r.text,
		Err:      r.err,
	})
}

// InternalServerError fails the field. err may be nil.
func InternalServerError(text string, err error) ActionResult {
	return errorResult{code: messages.CodeInternalError, text: text, err: err}
}

// BadRequest fails the field because of invalid input.
func BadRequest(text string) ActionResult {
	return errorResult{code: messages.CodeBadRequest, text: text}
}

// Unauthorized fails the field because the caller may not access it.
func Unauthorized(text string) ActionResult {
	if text == "" {
		text = "Access denied."
	}
	return errorResult{code: messages.CodeUnauthorized, text: text}
}

// RouteNotFound reports that the action could not be invoked with the data
// it was given.
func RouteNotFound(route string, err error) ActionResult {
	return errorResult{
		code: messages.CodeRouteNotFound,
		text: fmt.Sprintf("The field '%s' could not be resolved.", route),
		err:  err,
	}
}

// Kind names a result for logging.
func Kind(r ActionResult) string {
	switch v := r.(type) {
	case okResult:
		return "Ok"
	case errorResult:
		return v.code
	case nil:
		return "<nil>"
	}
	return fmt.Sprintf("%T", r)
}
