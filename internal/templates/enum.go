package templates

import (
	"fmt"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/hanpama/graphplan/internal/schema"
)

// EnumOption is one labelled value of a Go enumeration.
type EnumOption struct {
	Label       string
	Value       any
	Description string
	Deprecation string
	// Skip leaves the option out of the graph type.
	Skip bool
}

// EnumTemplate describes a Go enumeration to expose as an ENUM type.
type EnumTemplate struct {
	Name        string
	Description string
	Options     []EnumOption
}

func NewEnumTemplate(name string, options ...EnumOption) *EnumTemplate {
	return &EnumTemplate{Name: name, Options: options}
}

// Validate requires every label to carry a distinct value, otherwise values
// could not be mapped back to a single member.
func (t *EnumTemplate) Validate() error {
	var order []string
	labels := map[string][]string{}
	for _, o := range t.Options {
		if o.Skip {
			continue
		}
		key := fmt.Sprint(o.Value)
		if _, ok := labels[key]; !ok {
			order = append(order, key)
		}
		labels[key] = append(labels[key], o.Label)
	}

	var dups []string
	for _, key := range order {
		if len(labels[key]) > 1 {
			dups = append(dups, fmt.Sprintf("{%s} == %s", strings.Join(labels[key], ", "), key))
		}
	}
	if len(dups) > 0 {
		return declarationError(t.Name,
			"Invalid enumeration. The type '%s' is indeterminate and cannot be used as a graph type. "+
				"Ensure all enum labels have unique values. (%s)", t.Name, strings.Join(dups, " || "))
	}

	seen := map[string]string{}
	for _, o := range t.Options {
		if o.Skip {
			continue
		}
		name := MemberName(o.Label)
		if other, ok := seen[name]; ok {
			return declarationError(t.Name, "Invalid enumeration. The labels '%s' and '%s' of type '%s' both map to the member %s.",
				other, o.Label, t.Name, name)
		}
		seen[name] = o.Label
	}
	return nil
}

// GraphType validates the template and builds its ENUM type.
func (t *EnumTemplate) GraphType() (*schema.Type, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	gt := schema.NewType(t.Name, schema.TypeKindEnum, t.Description)
	for _, o := range t.Options {
		if o.Skip {
			continue
		}
		v := schema.NewEnumValue(MemberName(o.Label), o.Description)
		v.Value = o.Value
		if o.Deprecation != "" {
			v.Deprecate(o.Deprecation)
		}
		gt.AddEnumValue(v)
	}
	return gt, nil
}

// MemberName converts a Go label such as InProgress to IN_PROGRESS.
func MemberName(label string) string { return strcase.ToScreamingSnake(label) }
