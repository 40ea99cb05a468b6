package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testSDL = `
interface Pet { name: String! }
type Dog implements Pet { name: String! barks: Boolean }
type Cat implements Pet { name: String! lives: Int }
type Query {
  hello: String
  pets: [Pet!]!
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	a := &app{}
	cmd := a.command()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	a.close()
	return stdout.String(), stderr.String(), err
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	sdl := writeFile(t, dir, "schema.graphql", testSDL)

	t.Run("valid", func(t *testing.T) {
		q := writeFile(t, dir, "ok.graphql", `{ hello }`)
		out, _, err := run(t, "validate", "-s", sdl, "-q", q)
		require.NoError(t, err)
		require.Contains(t, out, "ok.graphql: ok")
	})

	t.Run("invalid", func(t *testing.T) {
		q := writeFile(t, dir, "dup.graphql", `
{ pets { ...P } }
fragment P on Pet { name }
fragment P on Pet { name }`)
		out, _, err := run(t, "validate", "-s", sdl, "-q", q)
		require.Error(t, err)
		require.Contains(t, out, "[5.5.1.1]")
	})

	t.Run("missing schema", func(t *testing.T) {
		q := writeFile(t, dir, "ok.graphql", `{ hello }`)
		_, _, err := run(t, "validate", "-q", q)
		require.ErrorContains(t, err, "--schema is required")
	})
}

func TestPlan(t *testing.T) {
	dir := t.TempDir()
	sdl := writeFile(t, dir, "schema.graphql", testSDL)
	q := writeFile(t, dir, "pets.graphql", `query Pets { pets { name ... on Dog { barks } } }`)

	out, _, err := run(t, "plan", "-s", sdl, "-q", q)
	require.NoError(t, err)

	var outline struct {
		Operation string
		Fields    []struct {
			Field    string
			Children map[string][]struct{ Field string }
		}
	}
	require.NoError(t, json.Unmarshal([]byte(out), &outline))
	require.Equal(t, "Pets", outline.Operation)
	require.Len(t, outline.Fields, 1)
	require.Equal(t, "Query.pets", outline.Fields[0].Field)
	require.Len(t, outline.Fields[0].Children["Dog"], 2)
	require.Len(t, outline.Fields[0].Children["Cat"], 1)
}

func TestSDL(t *testing.T) {
	sdl := writeFile(t, t.TempDir(), "schema.graphql", testSDL)
	out, _, err := run(t, "sdl", "-s", sdl)
	require.NoError(t, err)
	require.Contains(t, out, "type Query {")
	require.Contains(t, out, "interface Pet {")
}

func TestExecute(t *testing.T) {
	dir := t.TempDir()
	sdl := writeFile(t, dir, "schema.graphql", testSDL)
	q := writeFile(t, dir, "pets.graphql", `{ hello pets { name ... on Dog { barks } ... on Cat { lives } } }`)
	data := writeFile(t, dir, "data.json", `{
  "hello": "world",
  "pets": [
    {"__typename": "Dog", "name": "Rex", "barks": true},
    {"__typename": "Cat", "name": "Tom", "lives": 9}
  ]
}`)
	cfg := writeFile(t, dir, "graphplan.yaml", "metrics:\n  enabled: true\nlogging:\n  level: error\n")

	out, stderr, err := run(t, "execute", "--config", cfg, "-s", sdl, "-q", q, "-d", data)
	require.NoError(t, err)
	require.JSONEq(t,
		`{"data":{"hello":"world","pets":[{"name":"Rex","barks":true},{"name":"Tom","lives":9}]}}`,
		out)
	require.Contains(t, stderr, `graphplan_field_resolution_duration_seconds{field="pets",type="Query"}`)
}
