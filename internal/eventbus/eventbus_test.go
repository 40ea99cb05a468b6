package eventbus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type pinged struct{ N int }

func TestPublishWithoutBusIsNoop(t *testing.T) {
	Use(nil)
	require.False(t, Has[pinged]())
	Publish(context.Background(), pinged{N: 1})
	unsubscribe := Subscribe(func(context.Context, pinged) { t.Fatal("unexpected delivery") })
	unsubscribe()
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	Use(New())
	t.Cleanup(func() { Use(nil) })

	var got []int
	unsubscribe := Subscribe(func(_ context.Context, e pinged) { got = append(got, e.N) })
	require.True(t, Has[pinged]())

	Publish(context.Background(), pinged{N: 1})
	Publish(context.Background(), struct{}{})
	unsubscribe()
	Publish(context.Background(), pinged{N: 2})

	require.Equal(t, []int{1}, got)
	require.False(t, Has[pinged]())
}

func TestUnsubscribeRemovesOnlyItsHandler(t *testing.T) {
	Use(New())
	t.Cleanup(func() { Use(nil) })

	var a, b int
	subscribe := func(n *int) func() {
		return Subscribe(func(context.Context, pinged) { *n++ })
	}
	unsubscribeA := subscribe(&a)
	subscribe(&b)

	unsubscribeA()
	Publish(context.Background(), pinged{})
	require.Equal(t, 0, a)
	require.Equal(t, 1, b)
}
