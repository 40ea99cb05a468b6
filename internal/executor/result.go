package executor

import (
	"github.com/hanpama/graphplan/internal/messages"
)

// Path is a response path of field names and list indices.
type Path []any

// GraphQLError represents an error that occurred while validating or
// executing a request
type GraphQLError struct {
	Message    string              `json:"message"`
	Locations  []messages.Location `json:"locations,omitempty"`
	Path       Path                `json:"path,omitempty"`
	Extensions map[string]any      `json:"extensions,omitempty"`
}

func (e GraphQLError) Error() string {
	return e.Message
}

// ExecutionResult represents the result of executing a GraphQL query
type ExecutionResult struct {
	Data   any            `json:"data"`
	Errors []GraphQLError `json:"errors,omitempty"`
}

// fromMessage converts a critical message into a located response error.
// Validation messages carry the number and link of the rule they violate.
func fromMessage(m *messages.Message) GraphQLError {
	e := GraphQLError{Message: m.Text, Path: Path(m.Path)}
	if m.Location != nil {
		e.Locations = []messages.Location{*m.Location}
	}
	ext := map[string]any{}
	if m.Code != "" {
		ext["code"] = m.Code
	}
	if m.RuleNumber != "" {
		ext["rule"] = m.RuleNumber
		ext["specifiedBy"] = m.RuleURL
	}
	if len(ext) > 0 {
		e.Extensions = ext
	}
	return e
}

func fromMessages(list []*messages.Message) []GraphQLError {
	var out []GraphQLError
	for _, m := range list {
		if m.Severity.IsCritical() {
			out = append(out, fromMessage(m))
		}
	}
	return out
}
