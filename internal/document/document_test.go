package document

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/graphplan/internal/schema"
	"github.com/hanpama/graphplan/internal/syntax"
)

func named(kind PartKind, name string) *Part {
	p := NewPart(kind, nil)
	p.Name = name
	return p
}

// query GetUser { u: user { name ...Extra } }
// fragment Extra on User { friends(first: $n) }
func sampleDocument() (*Document, map[string]*Part) {
	d := New(nil)
	parts := map[string]*Part{}

	op := named(KindOperation, "GetUser")
	op.OperationType = "query"
	d.Add(op, NoPart)
	set := d.Part(d.Add(NewPart(KindFieldSelectionSet, nil), op.ID))
	user := named(KindFieldSelection, "user")
	user.Alias = "u"
	d.Add(user, set.ID)
	userSet := d.Part(d.Add(NewPart(KindFieldSelectionSet, nil), user.ID))
	name := named(KindFieldSelection, "name")
	d.Add(name, userSet.ID)
	spread := named(KindFragmentSpread, "Extra")
	d.Add(spread, userSet.ID)

	frag := named(KindNamedFragment, "Extra")
	d.Add(frag, NoPart)
	fragSet := d.Part(d.Add(NewPart(KindFieldSelectionSet, nil), frag.ID))
	friends := named(KindFieldSelection, "friends")
	d.Add(friends, fragSet.ID)
	arg := named(KindInputArgument, "first")
	d.Add(arg, friends.ID)
	ref := named(KindSuppliedValue, "n")
	ref.ValueKind = ValueVariable
	d.Add(ref, arg.ID)

	for _, p := range []*Part{op, user, name, frag, friends, ref} {
		parts[p.Name] = p
	}
	parts["...Extra"] = spread
	return d, parts
}

func TestDocument_Navigation(t *testing.T) {
	d, parts := sampleDocument()

	require.Equal(t, 11, d.Len())
	require.Same(t, parts["GetUser"], d.Operation(""))
	require.Same(t, parts["GetUser"], d.Operation("GetUser"))
	require.Nil(t, d.Operation("Other"))
	require.Same(t, parts["Extra"], d.Fragment("Extra"))
	require.Nil(t, d.Part(NoPart))

	require.Same(t, parts["GetUser"], d.Ancestor(parts["name"], KindOperation))
	require.Same(t, parts["user"], d.Ancestor(parts["name"], KindFieldSelection))
	require.Nil(t, d.Ancestor(parts["friends"], KindOperation))

	set := d.FirstChild(parts["user"], KindFieldSelectionSet)
	require.NotNil(t, set)
	require.Len(t, d.ChildrenOfKind(set, KindFieldSelection), 1)
	require.Len(t, d.Children(set), 2)

	require.Equal(t, "query GetUser/u/name", d.Path(parts["name"]))
	require.Equal(t, "fragment Extra/friends/first", d.Path(parts["n"]))
}

func TestDocument_WalkOrder(t *testing.T) {
	d, _ := sampleDocument()

	var got []string
	d.Walk(func(p *Part) bool {
		if p.Kind == KindFieldSelection || p.Kind == KindNamedFragment || p.Kind == KindOperation {
			got = append(got, p.Name)
		}
		// returning false prunes the fragment body
		return p.Kind != KindNamedFragment
	})
	require.Equal(t, []string{"GetUser", "user", "name", "Extra"}, got)
}

func TestDocument_VariableUsagesFollowSpreads(t *testing.T) {
	d, parts := sampleDocument()

	// unlinked spreads are not followed
	require.Empty(t, d.VariableUsages(parts["GetUser"]))

	d.LinkFragmentSpreads()
	require.Equal(t, parts["Extra"].ID, parts["...Extra"].Fragment)

	usages := d.VariableUsages(parts["GetUser"])
	require.Len(t, usages, 1)
	require.Same(t, parts["n"], usages[0])
}

func TestPart_InsertDirectiveKeepsRankOrder(t *testing.T) {
	p := NewPart(KindFieldSelection, nil)
	p.InsertDirective(7, 2)
	p.InsertDirective(3, 0)
	p.InsertDirective(9, 2)
	p.InsertDirective(4, 1)

	want := []RankedDirective{{0, 3}, {1, 4}, {2, 7}, {2, 9}}
	if diff := cmp.Diff(want, p.Directives); diff != "" {
		t.Errorf("directives mismatch (-want +got):\n%s", diff)
	}
}

func TestPart_Literal(t *testing.T) {
	cases := []struct {
		name    string
		part    Part
		want    any
		wantErr bool
	}{
		{"int", Part{ValueKind: ValueScalar, ScalarKind: syntax.ScalarInt, Raw: "42"}, int64(42), false},
		{"float", Part{ValueKind: ValueScalar, ScalarKind: syntax.ScalarFloat, Raw: "1.5"}, 1.5, false},
		{"boolean", Part{ValueKind: ValueScalar, ScalarKind: syntax.ScalarBoolean, Raw: "true"}, true, false},
		{"string", Part{ValueKind: ValueScalar, ScalarKind: syntax.ScalarString, Raw: "hi"}, "hi", false},
		{"enum", Part{ValueKind: ValueEnum, Raw: "RED"}, "RED", false},
		{"list", Part{ValueKind: ValueList}, nil, true},
		{"bad int", Part{ValueKind: ValueScalar, ScalarKind: syntax.ScalarInt, Raw: "x"}, nil, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.part.Literal()
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestPart_CanResolveForGraphType(t *testing.T) {
	s, err := schema.BuildFromSDL(`
interface Node { id: ID! }
type User implements Node { id: ID! }
type Post { id: ID! }
union Entry = Post
type Query { node: Node entry: Entry }
`)
	require.NoError(t, err)
	user, post := s.Types["User"], s.Types["Post"]

	p := NewPart(KindFieldSelection, nil)
	require.True(t, p.CanResolveForGraphType(s, user), "unrestricted")

	p.TargetGraphType = s.Types["Node"]
	require.True(t, p.CanResolveForGraphType(s, user))
	require.False(t, p.CanResolveForGraphType(s, post))

	p.TargetGraphType = s.Types["Entry"]
	require.True(t, p.CanResolveForGraphType(s, post))
	require.False(t, p.CanResolveForGraphType(s, user))
}
