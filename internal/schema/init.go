package schema

import (
	"context"
	"fmt"

	"github.com/hanpama/graphplan/internal/eventbus"
	"github.com/hanpama/graphplan/internal/events"
)

// EnsureInitialized runs init exactly once for the schema. Concurrent callers
// block until the first call finishes and all of them observe its error. A
// panic in init is recorded as the error.
func (s *Schema) EnsureInitialized(ctx context.Context, init func(context.Context, *Schema) error) error {
	s.initOnce.Do(func() {
		if init != nil {
			s.initErr = runInit(ctx, s, init)
		}
		s.initialized.Store(s.initErr == nil)
		eventbus.Publish(ctx, events.SchemaInstanceCreated{
			QueryType: s.QueryType,
			Types:     len(s.Types),
			Err:       s.initErr,
		})
	})
	return s.initErr
}

func runInit(ctx context.Context, s *Schema, init func(context.Context, *Schema) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("schema initialization panicked: %v", r)
		}
	}()
	return init(ctx, s)
}

// IsInitialized reports whether EnsureInitialized completed without error.
func (s *Schema) IsInitialized() bool { return s.initialized.Load() }
