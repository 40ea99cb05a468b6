package directives

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/graphplan/internal/execution"
	"github.com/hanpama/graphplan/internal/messages"
	"github.com/hanpama/graphplan/internal/schema"
)

func testSchema() *schema.Schema {
	s := schema.NewSchema("")
	user := schema.NewType("User", schema.TypeKindObject, "").
		AddField(schema.NewField("id", "", schema.NonNullType(schema.NamedType("ID")))).
		AddField(schema.NewField("name", "", schema.NamedType("String")))
	s.AddType(user).
		AddType(schema.NewType("Query", schema.TypeKindObject, "").
			AddField(schema.NewField("user", "", schema.NamedType("User"))))
	return s
}

func schemaDirective(name string, fn func(ctx context.Context, inv schema.DirectiveInvocation) error) *schema.Directive {
	return schema.NewDirective(name, "").
		AddLocation(schema.LocationObject, schema.LocationFieldDefinition).
		SetPhases(schema.PhaseSchemaGeneration).
		SetResolver(schema.DirectiveResolverFunc(fn))
}

func TestApplyDirectives_NonRepeatable(t *testing.T) {
	s := testSchema()
	calls := 0
	s.AddDirective(schemaDirective("audit", func(context.Context, schema.DirectiveInvocation) error {
		calls++
		return nil
	}))
	s.FindGraphType("User").
		ApplyDirective(schema.Apply("audit")).
		ApplyDirective(schema.Apply("audit"))

	err := NewProcessor(context.Background(), s).ApplyDirectives(context.Background())
	var cfg *schema.ConfigurationError
	require.ErrorAs(t, err, &cfg)
	require.Equal(t, "audit", cfg.Directive)
	require.Equal(t, "User", cfg.Item)
	require.Contains(t, err.Error(), "@audit")
	require.Contains(t, err.Error(), "User")
	require.Equal(t, 1, calls)
}

func TestApplyDirectives_RepeatableRunsInOrder(t *testing.T) {
	s := testSchema()
	var seen []any
	d := schemaDirective("tag", func(_ context.Context, inv schema.DirectiveInvocation) error {
		v, _ := inv.Request().Argument("name")
		seen = append(seen, v)
		return nil
	}).SetRepeatable(true).
		AddArgument(schema.NewInputValue("name", "", schema.NonNullType(schema.NamedType("String"))))
	s.AddDirective(d)
	s.FindGraphType("User").
		ApplyDirective(schema.Apply("tag", "first")).
		ApplyDirective(&schema.AppliedDirective{Name: "tag", Named: map[string]any{"name": "second"}})

	require.NoError(t, NewProcessor(context.Background(), s).ApplyDirectives(context.Background()))
	require.Equal(t, []any{"first", "second"}, seen)
}

func TestApplyDirectives_Arguments(t *testing.T) {
	// Pattern: positional, then named, then default
	d := schema.NewDirective("limit", "").
		AddArgument(schema.NewInputValue("max", "", schema.NamedType("Int"))).
		AddArgument(schema.NewInputValue("unit", "", schema.NamedType("String"))).
		AddArgument(schema.NewInputValue("strict", "", schema.NamedType("Boolean")).SetDefault(true))

	args, err := arguments(d, &schema.AppliedDirective{Arguments: []any{10}, Named: map[string]any{"unit": "ms"}})
	require.NoError(t, err)
	require.Equal(t, []schema.ArgumentValue{
		{Name: "max", Value: 10},
		{Name: "unit", Value: "ms"},
		{Name: "strict", Value: true},
	}, args)

	_, err = arguments(d, &schema.AppliedDirective{Arguments: []any{1, "a", false, "extra"}})
	require.Error(t, err)
}

func TestApplyDirectives_ReplacesTarget(t *testing.T) {
	s := testSchema()
	s.AddDirective(schemaDirective("rename", func(_ context.Context, inv schema.DirectiveInvocation) error {
		f := *inv.Target().(*schema.Field)
		f.Description = "renamed"
		inv.SetTarget(&f)
		return nil
	}))
	s.FindGraphType("User").Field("name").ApplyDirective(schema.Apply("rename"))

	require.NoError(t, NewProcessor(context.Background(), s).ApplyDirectives(context.Background()))
	require.Equal(t, "renamed", s.FindGraphType("User").Field("name").Description)
}

func TestApplyDirectives_FailureCauses(t *testing.T) {
	root := errors.New("root cause")
	tests := []struct {
		name   string
		fn     func(context.Context, schema.DirectiveInvocation) error
		causes []string
	}{
		{
			name: "attached error wins",
			fn: func(_ context.Context, inv schema.DirectiveInvocation) error {
				inv.Fail("A", "first", nil)
				inv.Fail("B", "second", root)
				return nil
			},
			causes: []string{"root cause"},
		},
		{
			name: "every critical message in order",
			fn: func(_ context.Context, inv schema.DirectiveInvocation) error {
				inv.Fail("A", "first", nil)
				inv.Fail("B", "second", nil)
				return nil
			},
			causes: []string{"A : first", "B : second"},
		},
		{
			name: "cancellation without messages",
			fn: func(_ context.Context, inv schema.DirectiveInvocation) error {
				inv.Cancel()
				return nil
			},
			causes: []string{"unknown directive failure"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testSchema()
			s.AddDirective(schemaDirective("broken", tt.fn))
			s.FindGraphType("User").ApplyDirective(schema.Apply("broken"))

			err := NewProcessor(context.Background(), s).ApplyDirectives(context.Background())
			var causal *messages.CausalError
			require.ErrorAs(t, err, &causal)
			var got []string
			for _, c := range causal.Causes() {
				got = append(got, c.Error())
			}
			require.Equal(t, tt.causes, got)
		})
	}
}

func TestApplyDirectives_UndefinedDirective(t *testing.T) {
	s := testSchema()
	s.FindGraphType("User").ApplyDirective(schema.Apply("missing"))
	err := NewProcessor(context.Background(), s).ApplyDirectives(context.Background())
	var cfg *schema.ConfigurationError
	require.ErrorAs(t, err, &cfg)
	require.Equal(t, "missing", cfg.Directive)
}

func TestApplyDirectives_SkipsExecutionDirectives(t *testing.T) {
	s := testSchema()
	called := false
	s.AddDirective(schemaDirective("later", func(context.Context, schema.DirectiveInvocation) error {
		called = true
		return nil
	}).SetPhases(schema.PhaseExecution))
	s.FindGraphType("User").Field("name").ApplyDirective(schema.Apply("later"))

	require.NoError(t, NewProcessor(context.Background(), s).ApplyDirectives(context.Background()))
	require.False(t, called)
}

func TestInitialize_RunsOnce(t *testing.T) {
	s := testSchema()
	var mu sync.Mutex
	calls := 0
	s.AddDirective(schemaDirective("once", func(context.Context, schema.DirectiveInvocation) error {
		mu.Lock()
		calls++
		mu.Unlock()
		return nil
	}))
	s.FindGraphType("User").ApplyDirective(schema.Apply("once"))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, Initialize(context.Background(), s))
		}()
	}
	wg.Wait()
	require.Equal(t, 1, calls)
	require.True(t, s.IsInitialized())
}

func TestValidateDirective(t *testing.T) {
	s := testSchema()
	d := schema.NewDirective("upper", "").
		AddLocation(schema.LocationField).
		SetPhases(schema.PhaseAfterFieldResolution).
		AddArgument(schema.NewInputValue("locale", "", schema.NonNullType(schema.NamedType("String"))))
	s.AddDirective(d)
	stranger := schema.NewDirective("upper", "").AddLocation(schema.LocationField).SetPhases(schema.PhaseAfterFieldResolution)

	tests := []struct {
		name string
		req  *schema.DirectiveRequest
		rule string
	}{
		{
			name: "not defined by the schema",
			req:  schema.NewDirectiveRequest(stranger, schema.LocationField, schema.PhaseAfterFieldResolution, nil, nil, "q"),
			rule: "5.7.1",
		},
		{
			name: "wrong location",
			req:  schema.NewDirectiveRequest(d, schema.LocationObject, schema.PhaseAfterFieldResolution, []schema.ArgumentValue{{Name: "locale", Value: "en"}}, nil, "q"),
			rule: "5.7.2",
		},
		{
			name: "unknown phase",
			req:  schema.NewDirectiveRequest(d, schema.LocationField, schema.PhaseUnknown, nil, nil, "q"),
			rule: "5.7",
		},
		{
			name: "missing required argument",
			req:  schema.NewDirectiveRequest(d, schema.LocationField, schema.PhaseAfterFieldResolution, nil, nil, "q"),
			rule: "5.4.2.1",
		},
		{
			name: "unknown argument",
			req:  schema.NewDirectiveRequest(d, schema.LocationField, schema.PhaseAfterFieldResolution, []schema.ArgumentValue{{Name: "locale", Value: "en"}, {Name: "x", Value: 1}}, nil, "q"),
			rule: "5.4.1",
		},
		{
			name: "argument of the wrong type",
			req:  schema.NewDirectiveRequest(d, schema.LocationField, schema.PhaseAfterFieldResolution, []schema.ArgumentValue{{Name: "locale", Value: []any{"en"}}}, nil, "q"),
			rule: "5.6.1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewContext(s, tt.req)
			reached := false
			err := ValidateDirective(context.Background(), c, func(context.Context, *Context) error {
				reached = true
				return nil
			})
			require.NoError(t, err)
			require.False(t, reached)
			crit := c.Messages.Criticals()
			require.NotEmpty(t, crit)
			require.Equal(t, tt.rule, crit[0].RuleNumber)
			require.Equal(t, messages.CodeInvalidDirective, crit[0].Code)
		})
	}
}

type recordingMetrics struct{ applied []string }

func (m *recordingMetrics) BeginFieldResolution(*execution.FieldContext) {}
func (m *recordingMetrics) EndFieldResolution(*execution.FieldContext)   {}
func (m *recordingMetrics) DirectiveApplied(directive, phase string) {
	m.applied = append(m.applied, directive+"/"+phase)
}

func TestFieldDirectiveRunner(t *testing.T) {
	s := testSchema()
	appendSuffix := func(suffix string) schema.DirectiveResolverFunc {
		return func(_ context.Context, inv schema.DirectiveInvocation) error {
			inv.SetTarget(inv.Target().(string) + suffix)
			return nil
		}
	}
	exec := func(name string, fn schema.DirectiveResolverFunc) *schema.Directive {
		d := schema.NewDirective(name, "").
			AddLocation(schema.LocationField).
			SetPhases(schema.PhaseExecution).
			SetResolver(fn)
		s.AddDirective(d)
		return d
	}
	a := exec("a", appendSuffix("-a"))
	b := exec("b", appendSuffix("-b"))
	stop := exec("stop", func(_ context.Context, inv schema.DirectiveInvocation) error {
		inv.Cancel()
		return nil
	})
	request := func(d *schema.Directive) *schema.DirectiveRequest {
		return schema.NewDirectiveRequest(d, schema.LocationField, schema.PhaseAfterFieldResolution, nil, nil, "query/user")
	}

	metrics := &recordingMetrics{}
	r := NewFieldDirectiveRunner(s, NewPipeline(context.Background()), metrics)

	out, err := r.Run(context.Background(), "req-1", []*schema.DirectiveRequest{request(a), request(b)}, "v")
	require.NoError(t, err)
	require.True(t, out.IsSuccessful())
	require.Equal(t, "v-a-b", out.Target)
	require.Equal(t, []string{"a/AfterFieldResolution", "b/AfterFieldResolution"}, metrics.applied)

	out, err = r.Run(context.Background(), "req-1", []*schema.DirectiveRequest{request(a), request(stop), request(b)}, "v")
	require.NoError(t, err)
	require.True(t, out.Cancelled)
	require.Equal(t, "v-a", out.Target)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out, err = r.Run(ctx, "req-1", []*schema.DirectiveRequest{request(a)}, "v")
	require.NoError(t, err)
	require.True(t, out.Cancelled)
	require.Equal(t, "v", out.Target)
}
