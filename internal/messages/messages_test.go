package messages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCollection_IsSuccessful(t *testing.T) {
	c := New()
	c.Add(&Message{Severity: Warning, Text: "careful"})
	require.True(t, c.IsSuccessful())

	c.Critical(CodeExecutionError, "boom", nil)
	require.False(t, c.IsSuccessful())
	require.Len(t, c.Criticals(), 1)
}

func TestCausesFromCriticals(t *testing.T) {
	t.Run("attached error wins", func(t *testing.T) {
		c := New()
		root := errors.New("root cause")
		c.Critical("A", "first", nil)
		c.Critical("B", "second", root)
		causes := CausesFromCriticals(c)
		require.Equal(t, []error{root}, causes)
	})

	t.Run("each critical becomes a cause in order", func(t *testing.T) {
		c := New()
		c.Critical("A", "first", nil)
		c.Add(&Message{Severity: Info, Text: "ignored"})
		c.Critical("", "second", nil)
		causes := CausesFromCriticals(c)
		require.Len(t, causes, 2)
		require.Equal(t, "A : first", causes[0].Error())
		require.Equal(t, "second", causes[1].Error())
	})
}

func TestCausalError(t *testing.T) {
	a := errors.New("a")
	b := errors.New("b")
	err := NewCausalError("directive failed", a, b)
	require.Equal(t, []error{a, b}, err.Causes())
	require.ErrorIs(t, err, b)
	require.Contains(t, err.Error(), "directive failed")
}
