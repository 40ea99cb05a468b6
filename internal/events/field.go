package events

import "time"

// FieldResolutionStarted is emitted before a field's middleware pipeline runs.
type FieldResolutionStarted struct {
	RequestID string
	FieldID   string
	Path      string
	Field     string
	Mode      string
	Items     int
}

// FieldResolutionCompleted is emitted after a field's middleware pipeline ran.
type FieldResolutionCompleted struct {
	RequestID string
	FieldID   string
	Path      string
	Field     string
	Cancelled bool
	Success   bool
	Err       error
	Duration  time.Duration
}

// FieldAuthorizationCompleted is emitted after a field authorization check.
type FieldAuthorizationCompleted struct {
	FieldID    string
	Path       string
	Authorized bool
	Err        error
}
