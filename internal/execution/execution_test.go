package execution

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/graphplan/internal/messages"
	"github.com/hanpama/graphplan/internal/plan"
	"github.com/hanpama/graphplan/internal/schema"
)

func TestSourceItem_Transitions(t *testing.T) {
	item := NewSourceItem([]any{"user"}, "src", nil)
	require.Equal(t, ItemPending, item.Status())
	_, ok := item.Result()
	require.False(t, ok)

	require.True(t, item.Resolve(42))
	require.False(t, item.Resolve(43), "settled items keep their value")
	v, ok := item.Result()
	require.True(t, ok)
	require.Equal(t, 42, v)

	require.True(t, item.Cancel())
	require.Equal(t, ItemCancelled, item.Status())
	_, ok = item.Result()
	require.False(t, ok)

	failed := NewSourceItem(nil, nil, nil)
	require.True(t, failed.Fail())
	require.False(t, failed.Cancel())
	require.Equal(t, ItemFailed, failed.Status())
}

func testInvocation() *plan.FieldInvocation {
	parent := schema.NewType("Query", schema.TypeKindObject, "")
	field := schema.NewField("user", "", schema.NamedType("String"))
	parent.AddField(field)
	return &plan.FieldInvocation{ResponseName: "user", Field: field, ParentType: parent, Path: "query/user"}
}

func TestFieldContext_CancelCascades(t *testing.T) {
	items := NewDataContainer(
		NewSourceItem([]any{"a"}, 1, nil),
		NewSourceItem([]any{"b"}, 2, nil),
	)
	items.Items()[0].Resolve("done")
	c := NewFieldContext(NewOperationRequest("", nil, nil, nil, nil), testInvocation(), items)
	require.True(t, c.IsSuccessful())
	require.Equal(t, []any{1, 2}, items.Sources())
	require.Len(t, items.Pending(), 1)

	c.Cancel()
	require.True(t, c.IsCancelled())
	require.False(t, c.IsSuccessful())
	for _, item := range items.Items() {
		require.Equal(t, ItemCancelled, item.Status())
	}
}

func TestFieldContext_Fail(t *testing.T) {
	items := NewDataContainer(NewSourceItem([]any{"user", 0, "name"}, nil, nil))
	c := NewFieldContext(NewOperationRequest("req", nil, nil, nil, nil), testInvocation(), items)
	m := c.Fail(nil, messages.CodeExecutionError, "boom", nil)
	require.Equal(t, []any{"user", 0, "name"}, m.Path)
	require.False(t, c.IsSuccessful())
	require.Equal(t, "user[0].name", c.Path())

	err := NewExecutionError(c, "bad %s", "thing")
	require.EqualError(t, err, "execution of field Query.user failed at user[0].name: bad thing")
}

func TestResponseMap_OrderAndFinalize(t *testing.T) {
	// Pattern: concurrent writers fill keys declared in document order
	m := NewResponseMap()
	keys := []string{"c", "a", "b"}
	for _, k := range keys {
		m.Declare(k, false)
	}
	var wg sync.WaitGroup
	for i := len(keys) - 1; i >= 0; i-- {
		wg.Add(1)
		go func(k string) {
			defer wg.Done()
			m.Set(k, k+"!")
		}(keys[i])
	}
	wg.Wait()
	out, err := json.Marshal(Finalize(m))
	require.NoError(t, err)
	require.JSONEq(t, `{"c":"c!","a":"a!","b":"b!"}`, string(out))
	require.Equal(t, `{"c":"c!","a":"a!","b":"b!"}`, string(out))
}

func TestFinalize_NullPropagation(t *testing.T) {
	tests := []struct {
		name  string
		build func() any
		want  string
	}{
		{
			name: "non-null key nulls the object",
			build: func() any {
				child := NewResponseMap()
				child.Declare("id", true)
				root := NewResponseMap()
				root.Declare("user", false)
				root.Set("user", child)
				return root
			},
			want: `{"user":null}`,
		},
		{
			name: "non-null list items null the list",
			build: func() any {
				root := NewResponseMap()
				root.Set("tags", &ResponseList{Items: []any{"a", nil}, NonNullItems: true})
				root.Set("names", &ResponseList{Items: []any{"a", nil}})
				return root
			},
			want: `{"tags":null,"names":["a",null]}`,
		},
		{
			name: "omitted keys are dropped",
			build: func() any {
				root := NewResponseMap()
				root.Declare("skipped", true)
				root.Declare("kept", false)
				root.Omit("skipped")
				root.Set("kept", 1)
				return root
			},
			want: `{"kept":1}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := json.Marshal(Finalize(tt.build()))
			require.NoError(t, err)
			require.Equal(t, tt.want, string(out))
		})
	}

	root := NewResponseMap()
	root.Declare("user", true)
	require.Nil(t, Finalize(root))
}

func TestFormatPath(t *testing.T) {
	require.Equal(t, "", FormatPath(nil))
	require.Equal(t, "users[1].friends[0].name", FormatPath([]any{"users", 1, "friends", 0, "name"}))
	base := []any{"a"}
	next := AppendPath(base, 2)
	require.Equal(t, []any{"a"}, base)
	require.Equal(t, []any{"a", 2}, next)
}

func TestPrometheusMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewPrometheusMetrics()
	m.MustRegister(registry)

	c := NewFieldContext(NewOperationRequest("", nil, nil, nil, nil), testInvocation(), NewDataContainer())
	c.Start()
	m.BeginFieldResolution(c)
	m.EndFieldResolution(c)
	m.DirectiveApplied("upper", "AfterFieldResolution")
	m.DirectiveApplied("upper", "AfterFieldResolution")

	require.Equal(t, 1, testutil.CollectAndCount(m.fieldDuration))
	require.Equal(t, 2.0, testutil.ToFloat64(m.directives.WithLabelValues("upper", "AfterFieldResolution")))
}
