package events

import "time"

// ActionInvocationStarted is emitted before a controller method is called.
type ActionInvocationStarted struct {
	Action string
	Field  string
}

// ActionModelValidated is emitted after the method arguments were bound.
type ActionModelValidated struct {
	Action string
	Field  string
	Valid  bool
	Err    error
}

// ActionInvocationCompleted is emitted after a controller method returned.
type ActionInvocationCompleted struct {
	Action   string
	Field    string
	Result   string
	Duration time.Duration
}

// ActionInvocationException is emitted when a controller method returned an
// error.
type ActionInvocationException struct {
	Action string
	Field  string
	Err    error
}

// ActionUnhandledException is emitted when resolving a field panicked or
// failed in a way the engine could not recover from.
type ActionUnhandledException struct {
	Field string
	Path  string
	Err   error
}
