package syntax

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, q string) *Node {
	t.Helper()
	n, err := Parse(q)
	require.NoError(t, err)
	return n
}

// dump renders the tree one node per line, indented by depth.
func dump(n *Node) string {
	var b strings.Builder
	var rec func(n *Node, depth int)
	rec = func(n *Node, depth int) {
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(n.Kind.String())
		if n.Name != "" {
			b.WriteString(" " + n.Name)
		}
		if n.Alias != "" {
			b.WriteString(" as " + n.Alias)
		}
		if n.TypeCondition != "" {
			b.WriteString(" on " + n.TypeCondition)
		}
		if n.Raw != "" {
			b.WriteString(" " + n.Raw)
		}
		b.WriteString("\n")
		for _, c := range n.Children {
			rec(c, depth+1)
		}
	}
	rec(n, 0)
	return b.String()
}

func TestBuild_TreeShape(t *testing.T) {
	// Pattern: Result comparison
	root := mustParse(t, `
query Q($id: ID!, $n: Int = 3) @trace {
  me: user(id: $id, filter: {tags: ["a", "b"], deleted: null}) @skip(if: false) {
    name
    ... on Admin { level }
    ...Extra
  }
}
fragment Extra on User { email(kind: WORK) }
`)
	want := `Document
  Operation Q
    VariableDefinition id
    VariableDefinition n
      ScalarValue 3
    Directive trace
    FieldCollection
      Field user as me
        InputItemCollection
          InputItem id
            VariableValue id
          InputItem filter
            ComplexValue
              InputItem tags
                ListValue
                  ScalarValue a
                  ScalarValue b
              InputItem deleted
                NullValue
        Directive skip
          InputItemCollection
            InputItem if
              ScalarValue false
        FieldCollection
          Field name
          InlineFragment on Admin
            FieldCollection
              Field level
          FragmentSpread Extra
  NamedFragment Extra on User
    FieldCollection
      Field email
        InputItemCollection
          InputItem kind
            EnumValue WORK
`
	if diff := cmp.Diff(want, dump(root)); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_ParentLinksAndPositions(t *testing.T) {
	root := mustParse(t, "{ a(x: 1) }")
	var arg *Node
	Walk(root, func(n *Node) bool {
		if n.Kind == KindScalarValue {
			arg = n
		}
		return true
	})
	require.NotNil(t, arg)
	require.Equal(t, ScalarInt, arg.Scalar)
	require.Equal(t, KindInputItem, arg.Parent.Kind)
	require.Equal(t, KindInputItemCollection, arg.ParentOfParent().Kind)
	require.Equal(t, 1, arg.Position.Line)
	require.Greater(t, arg.Position.Column, 1)
}

func TestParse_SyntaxError(t *testing.T) {
	_, err := Parse("{ a(")
	require.Error(t, err)
}
