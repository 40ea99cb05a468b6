package execution

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
)

// ResponseMap is a response object that keeps its keys in declaration order.
// Sibling fields resolve concurrently, so keys are declared up front and
// filled as values arrive.
type ResponseMap struct {
	mu      sync.Mutex
	entries []responseEntry
	index   map[string]int
}

type responseEntry struct {
	key     string
	value   any
	nonNull bool
	omitted bool
}

func NewResponseMap() *ResponseMap {
	return &ResponseMap{index: make(map[string]int)}
}

// Declare reserves key. A null value under a non-null key nulls the whole
// object when the response is finalized.
func (m *ResponseMap) Declare(key string, nonNull bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i, ok := m.index[key]; ok {
		m.entries[i].nonNull = m.entries[i].nonNull || nonNull
		return
	}
	m.index[key] = len(m.entries)
	m.entries = append(m.entries, responseEntry{key: key, nonNull: nonNull})
}

func (m *ResponseMap) Set(key string, v any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.index[key]
	if !ok {
		i = len(m.entries)
		m.index[key] = i
		m.entries = append(m.entries, responseEntry{key: key})
	}
	m.entries[i].value = v
	m.entries[i].omitted = false
}

// Omit drops key from the response.
func (m *ResponseMap) Omit(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i, ok := m.index[key]; ok {
		m.entries[i].omitted = true
		m.entries[i].value = nil
	}
}

func (m *ResponseMap) Get(key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.index[key]
	if !ok || m.entries[i].omitted {
		return nil, false
	}
	return m.entries[i].value, true
}

// Keys lists the keys present in the response, in order.
func (m *ResponseMap) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		if !e.omitted {
			out = append(out, e.key)
		}
	}
	return out
}

func (m *ResponseMap) MarshalJSON() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, e := range m.entries {
		if e.omitted {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		key, err := json.Marshal(e.key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(e.value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ResponseList is a completed list value.
type ResponseList struct {
	Items        []any
	NonNullItems bool
}

func (l *ResponseList) MarshalJSON() ([]byte, error) { return json.Marshal(l.Items) }

// Finalize applies null propagation to a completed response tree: a null in
// a non-null position makes the enclosing object or list null. Omitted keys
// are dropped and lists become plain slices.
func Finalize(v any) any {
	switch t := v.(type) {
	case *ResponseMap:
		if t == nil {
			return nil
		}
		t.mu.Lock()
		entries := append([]responseEntry(nil), t.entries...)
		t.mu.Unlock()
		out := NewResponseMap()
		for _, e := range entries {
			if e.omitted {
				continue
			}
			fv := Finalize(e.value)
			if fv == nil && e.nonNull {
				return nil
			}
			out.Set(e.key, fv)
		}
		return out
	case *ResponseList:
		if t == nil {
			return nil
		}
		out := make([]any, len(t.Items))
		for i, item := range t.Items {
			fv := Finalize(item)
			if fv == nil && t.NonNullItems {
				return nil
			}
			out[i] = fv
		}
		return out
	}
	return v
}

// FormatPath renders a response path as user.friends[0].name.
func FormatPath(path []any) string {
	var b strings.Builder
	for i, elem := range path {
		switch v := elem.(type) {
		case int:
			b.WriteString("[")
			b.WriteString(strconv.Itoa(v))
			b.WriteString("]")
		case string:
			if i > 0 {
				b.WriteString(".")
			}
			b.WriteString(v)
		}
	}
	return b.String()
}

// AppendPath returns a copy of path with elem added.
func AppendPath(path []any, elem any) []any {
	out := make([]any, len(path)+1)
	copy(out, path)
	out[len(path)] = elem
	return out
}
