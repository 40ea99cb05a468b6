// Package templates checks Go declarations that back graph types and fields
// and turns them into schema items.
package templates

import "fmt"

// DeclarationError reports a Go declaration that cannot be used as a graph
// item.
type DeclarationError struct {
	Item    string
	Message string
}

func (e *DeclarationError) Error() string { return e.Message }

func declarationError(item, format string, args ...any) *DeclarationError {
	return &DeclarationError{Item: item, Message: fmt.Sprintf(format, args...)}
}
