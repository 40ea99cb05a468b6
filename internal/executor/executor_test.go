package executor

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/graphplan/internal/eventbus"
	"github.com/hanpama/graphplan/internal/events"
	"github.com/hanpama/graphplan/internal/messages"
	"github.com/hanpama/graphplan/internal/schema"
	"github.com/hanpama/graphplan/internal/templates"
)

const testSDL = `
directive @audit on OBJECT

type Book {
  id: ID!
  title: String!
  author: Author
  reviews: [String!]
}
type Author {
  name: String!
}
type Query {
  book(id: ID!): Book
  books(first: Int = 2): [Book!]!
  explode: String
}
type Mutation {
  append(text: String!): [String!]!
}
`

type book struct {
	ID     string
	Title  string
	Author *author
}

type author struct{ Name string }

var reviews = map[string][]string{
	"1": {"classic", "long"},
	"2": {"eerie"},
}

var library = []*book{
	{ID: "1", Title: "Dune", Author: &author{Name: "Herbert"}},
	{ID: "2", Title: "Solaris", Author: &author{Name: "Lem"}},
	{ID: "3", Title: "Ubik"},
}

func newExecutor(t *testing.T, opts Options) *Executor {
	t.Helper()
	e, _ := newExecutorCounting(t, opts)
	return e
}

func newExecutorCounting(t *testing.T, opts Options) (*Executor, *atomic.Int32) {
	t.Helper()
	s, err := schema.BuildFromSDL(testSDL)
	require.NoError(t, err)

	var batches atomic.Int32
	bookType := s.FindGraphType("Book")
	bookType.SourceType = reflect.TypeOf(&book{})
	bookType.Field("reviews").SetMode(schema.Batch)
	require.NoError(t, templates.Bind(bookType, "reviews", func(books []*book) map[*book][]string {
		batches.Add(1)
		out := make(map[*book][]string)
		for _, b := range books {
			if r, ok := reviews[b.ID]; ok {
				out[b] = r
			}
		}
		return out
	}))

	q := s.FindGraphType("Query")
	q.Field("book").ResolveWith(func(_ context.Context, p schema.ResolveParams) (any, error) {
		for _, b := range library {
			if b.ID == p.Args["id"] {
				return b, nil
			}
		}
		return nil, nil
	})
	q.Field("books").ResolveWith(func(_ context.Context, p schema.ResolveParams) (any, error) {
		return library[:p.Args["first"].(int)], nil
	})
	q.Field("explode").ResolveWith(func(context.Context, schema.ResolveParams) (any, error) {
		panic("kaboom")
	})

	var mu sync.Mutex
	var log []string
	s.FindGraphType("Mutation").Field("append").ResolveWith(func(_ context.Context, p schema.ResolveParams) (any, error) {
		mu.Lock()
		defer mu.Unlock()
		log = append(log, p.Args["text"].(string))
		return append([]string(nil), log...), nil
	})

	e, err := New(context.Background(), s, opts)
	require.NoError(t, err)
	return e, &batches
}

func toJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

// Pattern: Result comparison
func TestExecute_Query(t *testing.T) {
	e := newExecutor(t, Options{})
	res := e.Execute(context.Background(), Request{
		Query: `query Shelf($id: ID!) {
			book(id: $id) { ...BookFields author { name } }
			books { id }
		}
		fragment BookFields on Book { id title }`,
		Variables: map[string]any{"id": "2"},
	})
	require.Empty(t, res.Errors)
	require.Equal(t,
		`{"data":{"book":{"id":"2","title":"Solaris","author":{"name":"Lem"}},"books":[{"id":"1"},{"id":"2"}]}}`,
		toJSON(t, res))
}

// Pattern: Error comparison
func TestExecute_ValidationErrorsCarryRules(t *testing.T) {
	e := newExecutor(t, Options{})
	res := e.Execute(context.Background(), Request{Query: `
		{ a: book(id: "1") { ...F } b: book(id: "2") { ...F } c: book(id: "3") { ...F } }
		fragment F on Book { id }
		fragment F on Book { title }
	`})
	require.Nil(t, res.Data)

	var rules []any
	for _, err := range res.Errors {
		if err.Extensions["rule"] == "5.5.1.1" {
			rules = append(rules, err.Extensions["rule"])
			require.Equal(t, messages.CodeValidationError, err.Extensions["code"])
			require.NotEmpty(t, err.Locations)
		}
	}
	require.Len(t, rules, 1)
}

// Pattern: Error comparison
func TestExecute_SyntaxError(t *testing.T) {
	e := newExecutor(t, Options{})
	res := e.Execute(context.Background(), Request{Query: `{ book(id: "1") { id }`})
	require.Nil(t, res.Data)
	require.Len(t, res.Errors, 1)
	require.Equal(t, messages.CodeSyntaxError, res.Errors[0].Extensions["code"])
	require.NotEmpty(t, res.Errors[0].Locations)
}

// Pattern: Error comparison
func TestExecute_VariableErrors(t *testing.T) {
	e := newExecutor(t, Options{})
	res := e.Execute(context.Background(), Request{
		Query: `query($id: ID!) { book(id: $id) { id } }`,
	})
	require.Nil(t, res.Data)
	require.Len(t, res.Errors, 1)
	require.Contains(t, res.Errors[0].Message, "id")
	require.Equal(t, messages.CodeBadRequest, res.Errors[0].Extensions["code"])
}

// Pattern: Result comparison
func TestExecute_FieldErrorsArePartial(t *testing.T) {
	e := newExecutor(t, Options{})
	res := e.Execute(context.Background(), Request{Query: `{ books(first: 3) { title author { name } } }`})
	require.Empty(t, res.Errors)
	require.Equal(t,
		`{"data":{"books":[{"title":"Dune","author":{"name":"Herbert"}},{"title":"Solaris","author":{"name":"Lem"}},{"title":"Ubik","author":null}]}}`,
		toJSON(t, res))
}

// Pattern: Result comparison
func TestExecute_BatchControllerMethod(t *testing.T) {
	e, batches := newExecutorCounting(t, Options{})
	res := e.Execute(context.Background(), Request{Query: `{ books(first: 3) { id reviews } }`})
	require.Empty(t, res.Errors)
	require.Equal(t,
		`{"data":{"books":[{"id":"1","reviews":["classic","long"]},{"id":"2","reviews":["eerie"]},{"id":"3","reviews":null}]}}`,
		toJSON(t, res))
	require.Equal(t, int32(1), batches.Load())
}

// Pattern: Error comparison
func TestExecute_PanicAbortsRequest(t *testing.T) {
	for _, debug := range []bool{false, true} {
		e := newExecutor(t, Options{Debug: debug})
		res := e.Execute(context.Background(), Request{Query: `{ explode }`})
		require.Nil(t, res.Data)
		require.Len(t, res.Errors, 1)
		got := res.Errors[0]
		require.Equal(t, "An unhandled error occurred while resolving field Query.explode.", got.Message)
		require.Equal(t, messages.CodeUnhandledError, got.Extensions["code"])
		_, exposed := got.Extensions["exception"]
		require.Equal(t, debug, exposed)
	}
}

// Pattern: Result comparison
func TestExecute_MutationFieldsRunInOrder(t *testing.T) {
	e := newExecutor(t, Options{})
	res := e.Execute(context.Background(), Request{Query: `mutation {
		first: append(text: "a")
		second: append(text: "b")
		third: append(text: "c")
	}`})
	require.Empty(t, res.Errors)
	require.Equal(t, `{"data":{"first":["a"],"second":["a","b"],"third":["a","b","c"]}}`, toJSON(t, res))
}

// Pattern: Event sequence
func TestExecute_PlanCacheAndRequestEvents(t *testing.T) {
	eventbus.Use(eventbus.New())
	t.Cleanup(func() { eventbus.Use(nil) })
	var mu sync.Mutex
	var seen []string
	record := func(name string) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, name)
	}
	eventbus.Subscribe(func(context.Context, events.PlanCacheMiss) { record("miss") })
	eventbus.Subscribe(func(context.Context, events.PlanCacheHit) { record("hit") })
	eventbus.Subscribe(func(context.Context, events.PlanCached) { record("cached") })
	var completed []events.RequestCompleted
	eventbus.Subscribe(func(_ context.Context, ev events.RequestCompleted) {
		mu.Lock()
		completed = append(completed, ev)
		mu.Unlock()
	})

	e := newExecutor(t, Options{PlanCacheSize: 8})
	for i := 0; i < 2; i++ {
		res := e.Execute(context.Background(), Request{Query: `{ book(id: "1") { title } }`})
		require.Empty(t, res.Errors)
	}

	require.Equal(t, []string{"miss", "cached", "hit"}, seen)
	require.Len(t, completed, 2)
	for _, ev := range completed {
		require.NotEmpty(t, ev.RequestID)
		require.Equal(t, "query", ev.OperationType)
		require.NoError(t, ev.Err)
	}
	require.NotEqual(t, completed[0].RequestID, completed[1].RequestID)
}

// Pattern: Error comparison
func TestNew_SchemaConfigurationFailure(t *testing.T) {
	s, err := schema.BuildFromSDL(testSDL)
	require.NoError(t, err)
	s.FindDirective("audit").SetResolver(schema.DirectiveResolverFunc(func(context.Context, schema.DirectiveInvocation) error {
		return errors.New("audit log unavailable")
	}))
	s.FindGraphType("Book").ApplyDirective(schema.Apply("audit"))

	_, err = New(context.Background(), s, Options{})
	var cfg *schema.ConfigurationError
	require.ErrorAs(t, err, &cfg)
	want := schema.ConfigurationError{Item: "Book", Directive: "audit"}
	if diff := cmp.Diff(want, *cfg, cmp.FilterPath(func(p cmp.Path) bool { return p.Last().String() == ".Err" }, cmp.Ignore())); diff != "" {
		t.Fatalf("ConfigurationError mismatch (-want +got):\n%s", diff)
	}
	require.ErrorContains(t, err, "audit log unavailable")
}
