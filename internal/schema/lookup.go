package schema

import (
	"fmt"
	"reflect"
	"sort"
)

// FindGraphType returns the named type or nil.
func (s *Schema) FindGraphType(name string) *Type {
	if s == nil {
		return nil
	}
	return s.Types[name]
}

// FindDirective returns the named directive definition or nil.
func (s *Schema) FindDirective(name string) *Directive {
	if s == nil {
		return nil
	}
	return s.Directives[name]
}

// FindDirectiveByType returns the directive implemented by the Go type t.
// Pointer and value forms of the same type match each other.
func (s *Schema) FindDirectiveByType(t reflect.Type) *Directive {
	if s == nil || t == nil {
		return nil
	}
	for _, name := range s.directiveNames() {
		d := s.Directives[name]
		if d.Impl == nil {
			continue
		}
		if d.Impl == t || indirect(d.Impl) == indirect(t) {
			return d
		}
	}
	return nil
}

func indirect(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

// ResolveAppliedDirective finds the definition an applied directive refers
// to, by Go type first and by name otherwise.
func (s *Schema) ResolveAppliedDirective(a *AppliedDirective) *Directive {
	if a.Type != nil {
		if d := s.FindDirectiveByType(a.Type); d != nil {
			return d
		}
	}
	return s.FindDirective(a.Name)
}

// Operation returns the root type for an operation kind ("query",
// "mutation" or "subscription").
func (s *Schema) Operation(kind string) *Type {
	switch kind {
	case "query":
		return s.GetQueryType()
	case "mutation":
		if s.MutationType == "" {
			return nil
		}
		return s.GetMutationType()
	case "subscription":
		if s.SubscriptionType == "" {
			return nil
		}
		return s.GetSubscriptionType()
	}
	return nil
}

// ExpandAbstractType returns the object types a value of t may have at
// runtime, sorted by name. An object type expands to itself.
func (s *Schema) ExpandAbstractType(t *Type) []*Type {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case TypeKindObject:
		return []*Type{t}
	case TypeKindUnion:
		out := make([]*Type, 0, len(t.PossibleTypes))
		for _, name := range t.PossibleTypes {
			if m := s.Types[name]; m != nil {
				out = append(out, m)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		return out
	case TypeKindInterface:
		var out []*Type
		for _, name := range s.typeNames() {
			candidate := s.Types[name]
			if candidate.Kind == TypeKindObject && s.implements(candidate, t.Name, map[string]bool{}) {
				out = append(out, candidate)
			}
		}
		return out
	}
	return nil
}

// AnalyzeRuntimeConcreteType reports whether a value of candidate can stand
// in for target: the types are the same, candidate implements target
// (transitively through interface inheritance), or candidate is a member of
// the union target.
func (s *Schema) AnalyzeRuntimeConcreteType(target, candidate *Type) bool {
	if target == nil || candidate == nil {
		return false
	}
	if target == candidate || target.Name == candidate.Name {
		return true
	}
	switch target.Kind {
	case TypeKindInterface:
		return s.implements(candidate, target.Name, map[string]bool{})
	case TypeKindUnion:
		for _, name := range target.PossibleTypes {
			if name == candidate.Name {
				return true
			}
		}
		if candidate.IsAbstract() {
			// every member of the candidate must be a member of the target
			members := s.ExpandAbstractType(candidate)
			if len(members) == 0 {
				return false
			}
			for _, m := range members {
				if !s.AnalyzeRuntimeConcreteType(target, m) {
					return false
				}
			}
			return true
		}
	}
	return false
}

func (s *Schema) implements(t *Type, iface string, seen map[string]bool) bool {
	if seen[t.Name] {
		return false
	}
	seen[t.Name] = true
	for _, name := range t.Interfaces {
		if name == iface {
			return true
		}
		if parent := s.Types[name]; parent != nil && s.implements(parent, iface, seen) {
			return true
		}
	}
	return false
}

// ResolveConcreteType picks the object type for a runtime value of an
// abstract type. Map values name their type under the __typename key.
func (s *Schema) ResolveConcreteType(abstract *Type, value any) (*Type, error) {
	if abstract.Kind == TypeKindObject {
		return abstract, nil
	}
	if named, ok := value.(interface{ GraphQLTypeName() string }); ok {
		return s.checkConcrete(abstract, named.GraphQLTypeName())
	}
	if abstract.ResolveType != nil {
		return s.checkConcrete(abstract, abstract.ResolveType(value))
	}
	if m, ok := value.(map[string]any); ok {
		if name, ok := m[TypenameFieldName].(string); ok {
			return s.checkConcrete(abstract, name)
		}
	}
	vt := reflect.TypeOf(value)
	for _, member := range s.ExpandAbstractType(abstract) {
		if member.SourceType != nil && (member.SourceType == vt || indirect(member.SourceType) == indirect(vt)) {
			return member, nil
		}
	}
	return nil, fmt.Errorf("abstract type %s must resolve to an Object type at runtime for value of type %T", abstract.Name, value)
}

func (s *Schema) checkConcrete(abstract *Type, name string) (*Type, error) {
	t := s.Types[name]
	if t == nil || t.Kind != TypeKindObject {
		return nil, fmt.Errorf("abstract type %s must resolve to an Object type at runtime. Got: %s", abstract.Name, name)
	}
	if !s.AnalyzeRuntimeConcreteType(abstract, t) {
		return nil, fmt.Errorf("runtime object type %s is not a possible type for %s", name, abstract.Name)
	}
	return t, nil
}

func (s *Schema) typeNames() []string {
	names := make([]string, 0, len(s.Types))
	for name := range s.Types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Schema) directiveNames() []string {
	names := make([]string, 0, len(s.Directives))
	for name := range s.Directives {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
