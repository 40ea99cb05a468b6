package fieldexec

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/hanpama/graphplan/internal/eventbus"
	"github.com/hanpama/graphplan/internal/events"
	"github.com/hanpama/graphplan/internal/execution"
	"github.com/hanpama/graphplan/internal/messages"
	"github.com/hanpama/graphplan/internal/plan"
	"github.com/hanpama/graphplan/internal/rules/construction"
	"github.com/hanpama/graphplan/internal/rules/validation"
	"github.com/hanpama/graphplan/internal/schema"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testSDL = `
directive @upper on FIELD
directive @double on FIELD

interface Node { id: ID! }
type User implements Node {
  id: ID!
  name: String!
  score: Int
  friends: [User!]
}
type Robot implements Node {
  id: ID!
  model: String
}
type Query {
  user(id: ID!): User
  users: [User!]!
  node(id: ID!): Node
  echo(n: Int!): Int
  slow: String
  fast: String
  secret: String
}
`

type user struct {
	ID      string
	Name    string
	friends []*user
}

func (u *user) Friends() []*user { return u.friends }

type robot struct {
	ID    string `graphql:"id"`
	Model string
}

func newSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.BuildFromSDL(testSDL)
	require.NoError(t, err)
	return s
}

type result struct {
	json     string
	messages []*messages.Message
	err      error
}

func execute(t *testing.T, ctx context.Context, s *schema.Schema, query string, vars map[string]any) result {
	t.Helper()
	doc, err := construction.BuildQuery(s, query)
	require.NoError(t, err)
	require.True(t, validation.Validate(doc), "%v", doc.Messages.All())
	p := plan.NewGenerator(0).Generate(ctx, doc, "")
	require.True(t, p.IsSuccessful(), "%v", p.Messages.All())
	coerced, err := p.CoerceVariables(vars)
	require.NoError(t, err)

	req := execution.NewOperationRequest("", s, p, coerced, nil)
	data, err := New(ctx, s, Options{}).ExecuteOperation(ctx, req)
	out, merr := json.Marshal(execution.Finalize(data))
	require.NoError(t, merr)
	return result{json: string(out), messages: req.Messages.Criticals(), err: err}
}

func TestExecute_BatchMissingKeyResolvesToNull(t *testing.T) {
	s := newSchema(t)
	users := []*user{{ID: "1"}, {ID: "2"}, {ID: "3"}}
	s.FindGraphType("Query").Field("users").ResolveWith(func(context.Context, schema.ResolveParams) (any, error) {
		return users, nil
	})
	var calls, sources atomic.Int32
	s.FindGraphType("User").Field("score").SetMode(schema.Batch).ResolveWith(func(_ context.Context, p schema.ResolveParams) (any, error) {
		calls.Add(1)
		sources.Store(int32(len(p.Sources)))
		return map[*user]int{users[0]: 10, users[2]: 30}, nil
	})

	r := execute(t, context.Background(), s, `{ users { id score } }`, nil)
	require.NoError(t, r.err)
	require.Empty(t, r.messages)
	require.Equal(t, int32(1), calls.Load())
	require.Equal(t, int32(3), sources.Load())
	require.JSONEq(t, `{"users":[{"id":"1","score":10},{"id":"2","score":null},{"id":"3","score":30}]}`, r.json)
}

func TestExecute_BatchRejectsNonMapResult(t *testing.T) {
	s := newSchema(t)
	s.FindGraphType("Query").Field("users").ResolveWith(func(context.Context, schema.ResolveParams) (any, error) {
		return []*user{{ID: "1"}}, nil
	})
	s.FindGraphType("User").Field("score").SetMode(schema.Batch).ResolveWith(func(context.Context, schema.ResolveParams) (any, error) {
		return []int{1}, nil
	})

	r := execute(t, context.Background(), s, `{ users { score } }`, nil)
	var execErr *execution.ExecutionError
	require.ErrorAs(t, r.err, &execErr)
	require.Equal(t, "User.score", execErr.Field)
}

func TestInvokeFieldResolver_PerSourceItemRequiresOneItem(t *testing.T) {
	s := newSchema(t)
	called := false
	field := s.FindGraphType("User").Field("name").ResolveWith(func(context.Context, schema.ResolveParams) (any, error) {
		called = true
		return "x", nil
	})
	inv := &plan.FieldInvocation{ResponseName: "name", Field: field, ParentType: s.FindGraphType("User")}
	req := execution.NewOperationRequest("", s, &plan.Plan{Messages: messages.New()}, nil, nil)
	items := execution.NewDataContainer(
		execution.NewSourceItem([]any{"a", "name"}, &user{ID: "1"}, execution.NewResponseMap()),
		execution.NewSourceItem([]any{"b", "name"}, &user{ID: "2"}, execution.NewResponseMap()),
	)

	err := New(context.Background(), s, Options{}).Execute(context.Background(), execution.NewFieldContext(req, inv, items))
	var execErr *execution.ExecutionError
	require.ErrorAs(t, err, &execErr)
	require.Contains(t, execErr.Error(), "2 items")
	require.False(t, called)
}

func TestExecute_SiblingOrderIsDocumentOrder(t *testing.T) {
	s := newSchema(t)
	q := s.FindGraphType("Query")
	q.Field("slow").ResolveWith(func(context.Context, schema.ResolveParams) (any, error) {
		time.Sleep(20 * time.Millisecond)
		return "slow", nil
	})
	q.Field("fast").ResolveWith(func(context.Context, schema.ResolveParams) (any, error) {
		return "fast", nil
	})

	r := execute(t, context.Background(), s, `{ slow fast last: slow }`, nil)
	require.NoError(t, r.err)
	require.Equal(t, `{"slow":"slow","fast":"fast","last":"slow"}`, r.json)
}

func TestExecute_NullPropagation(t *testing.T) {
	s := newSchema(t)
	s.FindGraphType("Query").Field("user").ResolveWith(func(_ context.Context, p schema.ResolveParams) (any, error) {
		return &user{ID: p.Args["id"].(string)}, nil
	})
	s.FindGraphType("User").Field("name").ResolveWith(func(context.Context, schema.ResolveParams) (any, error) {
		return nil, errors.New("name unavailable")
	})

	r := execute(t, context.Background(), s, `{ user(id: "7") { id name } }`, nil)
	require.NoError(t, r.err)
	require.JSONEq(t, `{"user":null}`, r.json)
	require.Len(t, r.messages, 1)
	require.Equal(t, "name unavailable", r.messages[0].Text)
	require.Equal(t, []any{"user", "name"}, r.messages[0].Path)
}

func TestExecute_NonNullListItem(t *testing.T) {
	s := newSchema(t)
	s.FindGraphType("Query").Field("user").ResolveWith(func(context.Context, schema.ResolveParams) (any, error) {
		return &user{ID: "1", Name: "a", friends: []*user{{ID: "2", Name: "b"}, nil}}, nil
	})

	r := execute(t, context.Background(), s, `{ user(id: "1") { name friends { id } } }`, nil)
	require.NoError(t, r.err)
	require.JSONEq(t, `{"user":{"name":"a","friends":null}}`, r.json)
	require.Len(t, r.messages, 1)
	require.Equal(t, "6.4.3", r.messages[0].RuleNumber)
	require.Equal(t, []any{"user", "friends", 1}, r.messages[0].Path)
}

func TestExecute_AbstractTypes(t *testing.T) {
	s := newSchema(t)
	s.FindGraphType("Node").ResolveType = func(v any) string {
		if _, ok := v.(*robot); ok {
			return "Robot"
		}
		return "User"
	}
	s.FindGraphType("Query").Field("node").ResolveWith(func(_ context.Context, p schema.ResolveParams) (any, error) {
		if p.Args["id"] == "r" {
			return &robot{ID: "r", Model: "T-1000"}, nil
		}
		return &user{ID: "u", Name: "Ann"}, nil
	})

	r := execute(t, context.Background(), s, `{
		a: node(id: "r") { __typename id ... on Robot { model } ... on User { name } }
		b: node(id: "u") { __typename id ... on Robot { model } ... on User { name } }
	}`, nil)
	require.NoError(t, r.err)
	require.Equal(t, `{"a":{"__typename":"Robot","id":"r","model":"T-1000"},"b":{"__typename":"User","id":"u","name":"Ann"}}`, r.json)
}

func TestExecute_Directives(t *testing.T) {
	s := newSchema(t)
	s.FindGraphType("Query").Field("echo").ResolveWith(func(_ context.Context, p schema.ResolveParams) (any, error) {
		return p.Args["n"], nil
	})
	s.FindGraphType("Query").Field("fast").ResolveWith(func(context.Context, schema.ResolveParams) (any, error) {
		return "fast", nil
	})
	s.FindDirective("double").SetResolver(schema.DirectiveResolverFunc(func(_ context.Context, inv schema.DirectiveInvocation) error {
		args := inv.Target().(map[string]any)
		inv.SetTarget(map[string]any{"n": args["n"].(int) * 2})
		return nil
	}))
	s.FindDirective("upper").
		SetPhases(schema.PhaseAfterFieldResolution).
		SetResolver(schema.DirectiveResolverFunc(func(_ context.Context, inv schema.DirectiveInvocation) error {
			inv.SetTarget(strings.ToUpper(inv.Target().(string)))
			return nil
		}))

	// Pattern: before-resolution directives see the arguments, after-resolution ones the value
	r := execute(t, context.Background(), s, `query($show: Boolean!) {
		echo(n: 4) @double
		fast @upper
		hidden: fast @include(if: $show)
		skipped: fast @skip(if: true)
	}`, map[string]any{"show": false})
	require.NoError(t, r.err)
	require.Empty(t, r.messages)
	require.Equal(t, `{"echo":8,"fast":"FAST"}`, r.json)
}

func TestExecute_AuthorizeDeniesField(t *testing.T) {
	eventbus.Use(eventbus.New())
	t.Cleanup(func() { eventbus.Use(nil) })
	var mu sync.Mutex
	var auth []events.FieldAuthorizationCompleted
	eventbus.Subscribe(func(_ context.Context, e events.FieldAuthorizationCompleted) {
		mu.Lock()
		defer mu.Unlock()
		auth = append(auth, e)
	})

	s := newSchema(t)
	called := false
	secret := s.FindGraphType("Query").Field("secret").ResolveWith(func(context.Context, schema.ResolveParams) (any, error) {
		called = true
		return "s3cr3t", nil
	})
	secret.Authorize = func(schema.ResolveParams) error { return errors.New("not an admin") }

	r := execute(t, context.Background(), s, `{ secret }`, nil)
	require.NoError(t, r.err)
	require.False(t, called)
	require.JSONEq(t, `{"secret":null}`, r.json)
	require.Len(t, r.messages, 1)
	require.Equal(t, messages.CodeUnauthorized, r.messages[0].Code)
	require.Len(t, auth, 1)
	require.False(t, auth[0].Authorized)
}

func TestExecute_PanicIsFatal(t *testing.T) {
	eventbus.Use(eventbus.New())
	t.Cleanup(func() { eventbus.Use(nil) })
	var unhandled atomic.Int32
	eventbus.Subscribe(func(context.Context, events.ActionUnhandledException) { unhandled.Add(1) })

	s := newSchema(t)
	s.FindGraphType("Query").Field("slow").ResolveWith(func(context.Context, schema.ResolveParams) (any, error) {
		panic("boom")
	})

	r := execute(t, context.Background(), s, `{ slow }`, nil)
	var execErr *execution.ExecutionError
	require.ErrorAs(t, r.err, &execErr)
	require.Contains(t, execErr.Error(), "boom")
	require.Equal(t, int32(1), unhandled.Load())
}

func TestExecute_CancellationOmitsFields(t *testing.T) {
	s := newSchema(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.FindGraphType("Query").Field("fast").ResolveWith(func(context.Context, schema.ResolveParams) (any, error) {
		cancel()
		return "fast", nil
	})
	s.FindGraphType("Query").Field("slow").ResolveWith(func(ctx context.Context, _ schema.ResolveParams) (any, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	r := execute(t, ctx, s, `{ fast slow }`, nil)
	require.NoError(t, r.err)
	require.Empty(t, r.messages)
	require.Equal(t, `{}`, r.json)
}

func TestBatchResultProcessor(t *testing.T) {
	s := newSchema(t)
	field := s.FindGraphType("User").Field("score").SetMode(schema.Batch)
	inv := &plan.FieldInvocation{ResponseName: "score", Field: field, ParentType: s.FindGraphType("User")}
	req := execution.NewOperationRequest("", s, &plan.Plan{Messages: messages.New()}, nil, nil)

	tests := []struct {
		name   string
		result any
		want   []any
		status []execution.ItemStatus
	}{
		{
			name:   "keys by source value",
			result: map[string]int{"a": 1, "c": 3},
			want:   []any{1, nil, 3},
			status: []execution.ItemStatus{execution.ItemResolved, execution.ItemResolved, execution.ItemResolved},
		},
		{
			name:   "nil map resolves every item to null",
			result: map[string]int(nil),
			want:   []any{nil, nil, nil},
			status: []execution.ItemStatus{execution.ItemResolved, execution.ItemResolved, execution.ItemResolved},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := execution.NewDataContainer(
				execution.NewSourceItem([]any{0}, "a", nil),
				execution.NewSourceItem([]any{1}, "b", nil),
				execution.NewSourceItem([]any{2}, "c", nil),
			)
			c := execution.NewFieldContext(req, inv, items)
			require.NoError(t, BatchResultProcessor{}.Assign(c, tt.result))
			for i, item := range items.Items() {
				v, _ := item.Result()
				require.Equal(t, tt.want[i], v)
				require.Equal(t, tt.status[i], item.Status())
			}
		})
	}
}
