package events

import "time"

// SchemaInstanceCreated is emitted once a schema finished initialization.
type SchemaInstanceCreated struct {
	QueryType string
	Types     int
	Err       error
}

// PipelineRegistered is emitted when a middleware pipeline is built.
type PipelineRegistered struct {
	Name       string
	Middleware []string
}

// DirectiveApplied is emitted after a directive ran against its target.
type DirectiveApplied struct {
	RequestID string
	Directive string
	Phase     string
	Location  string
	Origin    string
	Err       error
	Duration  time.Duration
}
