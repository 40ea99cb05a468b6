package schema

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Render prints the schema as SDL. Built-in scalars and directives are left
// out; types and directives are printed in name order so the output is
// stable.
func Render(s *Schema) string {
	if s == nil {
		return ""
	}
	r := &renderer{schema: s}
	r.schemaDefinition()

	for _, name := range sortedKeys(s.Types) {
		if t := s.Types[name]; !isBuiltinType(t) {
			r.typeDefinition(t)
		}
	}
	for _, name := range sortedKeys(s.Directives) {
		if d := s.Directives[name]; !isBuiltinDirective(d) {
			r.directiveDefinition(d)
		}
	}
	return strings.TrimRight(r.String(), "\n") + "\n"
}

type renderer struct {
	strings.Builder
	schema *Schema
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// schemaDefinition is only printed when a root type does not use its
// conventional name.
func (r *renderer) schemaDefinition() {
	s := r.schema
	conventional := s.QueryType == "Query" &&
		(s.MutationType == "" || s.MutationType == "Mutation") &&
		(s.SubscriptionType == "" || s.SubscriptionType == "Subscription")
	if conventional && len(s.AppliedDirectives) == 0 {
		return
	}
	r.WriteString("schema")
	r.applied(s.AppliedDirectives)
	r.WriteString(" {\n")
	for _, root := range [][2]string{{"query", s.QueryType}, {"mutation", s.MutationType}, {"subscription", s.SubscriptionType}} {
		if root[1] != "" {
			fmt.Fprintf(r, "  %s: %s\n", root[0], root[1])
		}
	}
	r.WriteString("}\n\n")
}

func (r *renderer) typeDefinition(t *Type) {
	r.description(t.Description, "")
	switch t.Kind {
	case TypeKindScalar:
		r.WriteString("scalar " + t.Name)
		if t.SpecifiedByURL != nil {
			fmt.Fprintf(r, " @specifiedBy(url: %s)", strconv.Quote(*t.SpecifiedByURL))
		}
		r.applied(t.AppliedDirectives)
	case TypeKindUnion:
		r.WriteString("union " + t.Name)
		r.applied(t.AppliedDirectives)
		r.WriteString(" = " + strings.Join(t.PossibleTypes, " | "))
	case TypeKindEnum:
		r.WriteString("enum " + t.Name)
		r.applied(t.AppliedDirectives)
		r.WriteString(" {\n")
		for _, v := range t.EnumValues {
			r.description(v.Description, "  ")
			r.WriteString("  " + v.Name)
			r.applied(v.AppliedDirectives)
			r.deprecation(v.IsDeprecated, v.DeprecationReason)
			r.WriteString("\n")
		}
		r.WriteString("}")
	case TypeKindInputObject:
		r.WriteString("input " + t.Name)
		if t.OneOf {
			r.WriteString(" @oneOf")
		}
		r.applied(t.AppliedDirectives)
		r.WriteString(" {\n")
		for _, f := range t.InputFields {
			r.description(f.Description, "  ")
			r.WriteString("  ")
			r.inputValue(f)
			r.WriteString("\n")
		}
		r.WriteString("}")
	case TypeKindObject, TypeKindInterface:
		keyword := "type "
		if t.Kind == TypeKindInterface {
			keyword = "interface "
		}
		r.WriteString(keyword + t.Name)
		if len(t.Interfaces) > 0 {
			r.WriteString(" implements " + strings.Join(t.Interfaces, " & "))
		}
		r.applied(t.AppliedDirectives)
		r.WriteString(" {\n")
		for _, f := range t.Fields {
			r.field(f)
		}
		r.WriteString("}")
	}
	r.WriteString("\n\n")
}

func (r *renderer) field(f *Field) {
	r.description(f.Description, "  ")
	r.WriteString("  " + f.Name)
	r.arguments(f.Arguments)
	r.WriteString(": " + f.Type.String())
	r.applied(f.AppliedDirectives)
	r.deprecation(f.IsDeprecated, f.DeprecationReason)
	r.WriteString("\n")
}

func (r *renderer) directiveDefinition(d *Directive) {
	r.description(d.Description, "")
	r.WriteString("directive @" + d.Name)
	r.arguments(d.Arguments)
	if d.IsRepeatable {
		r.WriteString(" repeatable")
	}
	locations := make([]string, len(d.Locations))
	for i, l := range d.Locations {
		locations[i] = string(l)
	}
	r.WriteString(" on " + strings.Join(locations, " | ") + "\n\n")
}

func (r *renderer) arguments(args []*InputValue) {
	if len(args) == 0 {
		return
	}
	r.WriteString("(")
	for i, a := range args {
		if i > 0 {
			r.WriteString(", ")
		}
		r.inputValue(a)
	}
	r.WriteString(")")
}

func (r *renderer) inputValue(v *InputValue) {
	r.WriteString(v.Name + ": " + v.Type.String())
	if v.DefaultValue != nil {
		r.WriteString(" = " + r.literal(v.Type, v.DefaultValue))
	}
	r.applied(v.AppliedDirectives)
	r.deprecation(v.IsDeprecated, v.DeprecationReason)
}

// applied prints directive applications. Positional arguments take the
// names of the definition's parameters.
func (r *renderer) applied(list []*AppliedDirective) {
	for _, d := range list {
		r.WriteString(" @" + d.Name)
		def := r.schema.Directives[d.Name]
		args := make(map[string]any, len(d.Arguments)+len(d.Named))
		for i, v := range d.Arguments {
			if def != nil && i < len(def.Arguments) {
				args[def.Arguments[i].Name] = v
			}
		}
		for k, v := range d.Named {
			args[k] = v
		}
		if len(args) == 0 {
			continue
		}
		parts := make([]string, 0, len(args))
		for _, k := range sortedKeys(args) {
			var typ *TypeRef
			if def != nil {
				if a := def.Argument(k); a != nil {
					typ = a.Type
				}
			}
			parts = append(parts, k+": "+r.literal(typ, args[k]))
		}
		r.WriteString("(" + strings.Join(parts, ", ") + ")")
	}
}

func (r *renderer) deprecation(deprecated bool, reason string) {
	if !deprecated {
		return
	}
	r.WriteString(" @deprecated")
	if reason != "" {
		r.WriteString("(reason: " + strconv.Quote(reason) + ")")
	}
}

func (r *renderer) description(desc, indent string) {
	if desc == "" {
		return
	}
	r.WriteString(indent + `"""` + "\n")
	for _, line := range strings.Split(strings.ReplaceAll(desc, `"""`, `\"""`), "\n") {
		r.WriteString(indent + line + "\n")
	}
	r.WriteString(indent + `"""` + "\n")
}

func (t *Type) isEnum() bool { return t != nil && t.Kind == TypeKindEnum }

// literal prints a default value or directive argument of type t. Enum
// members are printed bare; t may be nil when the type is unknown.
func (r *renderer) literal(t *TypeRef, value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		if t != nil && r.schema.Types[t.GetNamedType()].isEnum() {
			return v
		}
		return strconv.Quote(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case []any:
		var item *TypeRef
		if t != nil {
			item = t.ListItem()
		}
		parts := make([]string, len(v))
		for i, x := range v {
			parts[i] = r.literal(item, x)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		var input *Type
		if t != nil {
			input = r.schema.Types[t.GetNamedType()]
		}
		parts := make([]string, 0, len(v))
		for _, k := range sortedKeys(v) {
			var field *TypeRef
			if input != nil {
				if f := input.InputField(k); f != nil {
					field = f.Type
				}
			}
			parts = append(parts, k+": "+r.literal(field, v[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return fmt.Sprint(value)
}
