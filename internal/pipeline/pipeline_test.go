package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hanpama/graphplan/internal/eventbus"
	"github.com/hanpama/graphplan/internal/events"
)

type trace struct{ steps []string }

func record(name string) func(ctx context.Context, c *trace, next Handler[*trace]) error {
	return func(ctx context.Context, c *trace, next Handler[*trace]) error {
		c.steps = append(c.steps, name+" before")
		err := next(ctx, c)
		c.steps = append(c.steps, name+" after")
		return err
	}
}

func TestPipeline_OnionOrder(t *testing.T) {
	p := NewBuilder[*trace]("test").
		UseFunc("outer", record("outer")).
		UseFunc("inner", record("inner")).
		Build(context.Background())

	var tr trace
	require.NoError(t, p.Invoke(context.Background(), &tr))
	require.Equal(t, []string{"outer before", "inner before", "inner after", "outer after"}, tr.steps)
	require.Equal(t, []string{"outer", "inner"}, p.Middleware())
}

func TestPipeline_ShortCircuit(t *testing.T) {
	stop := errors.New("stop")
	p := NewBuilder[*trace]("test").
		UseFunc("outer", record("outer")).
		UseFunc("gate", func(ctx context.Context, c *trace, next Handler[*trace]) error { return stop }).
		UseFunc("never", record("never")).
		Build(context.Background())

	var tr trace
	require.ErrorIs(t, p.Invoke(context.Background(), &tr), stop)
	require.Equal(t, []string{"outer before", "outer after"}, tr.steps)
}

func TestPipeline_ReusableAcrossInvocations(t *testing.T) {
	p := NewBuilder[*trace]("test").UseFunc("only", record("only")).Build(context.Background())
	for i := 0; i < 3; i++ {
		var tr trace
		require.NoError(t, p.Invoke(context.Background(), &tr))
		require.Len(t, tr.steps, 2)
	}
}

func TestPipeline_PublishesRegistration(t *testing.T) {
	eventbus.Use(eventbus.New())
	t.Cleanup(func() { eventbus.Use(nil) })
	var got []events.PipelineRegistered
	eventbus.Subscribe(func(_ context.Context, e events.PipelineRegistered) { got = append(got, e) })

	NewBuilder[*trace]("field").UseFunc("a", record("a")).Build(context.Background())
	require.Equal(t, []events.PipelineRegistered{{Name: "field", Middleware: []string{"a"}}}, got)
}
