package events

import "time"

// RequestReceived is emitted before a query is planned and executed.
type RequestReceived struct {
	RequestID     string
	OperationName string
	Query         string
}

// RequestCompleted is emitted once the response is assembled.
type RequestCompleted struct {
	RequestID     string
	OperationName string
	OperationType string
	Errors        int
	Err           error
	Duration      time.Duration
}

// PlanCacheHit is emitted when a compiled plan is served from the cache.
type PlanCacheHit struct {
	Key           uint64
	OperationName string
}

// PlanCacheMiss is emitted when no compiled plan exists for a query.
type PlanCacheMiss struct {
	Key           uint64
	OperationName string
}

// PlanCached is emitted when a newly compiled plan is stored.
type PlanCached struct {
	Key           uint64
	OperationName string
}

// PlanGenerated is emitted after a document was compiled into a plan.
type PlanGenerated struct {
	OperationName string
	OperationType string
	Fields        int
	Messages      int
	Duration      time.Duration
}
