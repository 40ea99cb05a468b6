package plan

// Outline is a serializable view of a plan, used to inspect what a query
// compiles to.
type Outline struct {
	Operation string         `json:"operation,omitempty"`
	Type      string         `json:"type"`
	Variables []string       `json:"variables,omitempty"`
	Fields    []FieldOutline `json:"fields"`
}

type FieldOutline struct {
	ResponseName string   `json:"responseName"`
	Field        string   `json:"field"`
	Type         string   `json:"type"`
	Path         string   `json:"path"`
	Mode         string   `json:"mode"`
	Arguments    []string `json:"arguments,omitempty"`
	Directives   []string `json:"directives,omitempty"`
	// Children are keyed by the concrete type they apply to.
	Children map[string][]FieldOutline `json:"children,omitempty"`
}

// Outline describes p. Variables are listed with their declared types.
func (p *Plan) Outline() Outline {
	out := Outline{Operation: p.OperationName, Type: p.OperationType, Fields: outlineFields(p.Fields)}
	for _, v := range p.Variables {
		out.Variables = append(out.Variables, "$"+v.Name+": "+v.Type.String())
	}
	return out
}

func outlineFields(fields []*FieldInvocation) []FieldOutline {
	out := make([]FieldOutline, 0, len(fields))
	for _, f := range fields {
		o := FieldOutline{
			ResponseName: f.ResponseName,
			Field:        f.String(),
			Type:         f.Field.Type.String(),
			Path:         f.Path,
			Mode:         f.Field.Mode.String(),
		}
		for _, a := range f.Arguments {
			if a.Value != nil || a.Definition.DefaultValue != nil {
				o.Arguments = append(o.Arguments, a.Name)
			}
		}
		for _, d := range f.Directives {
			o.Directives = append(o.Directives, "@"+d.Directive.Name)
		}
		for _, name := range f.childTypes {
			if o.Children == nil {
				o.Children = make(map[string][]FieldOutline)
			}
			o.Children[name] = outlineFields(f.children[name])
		}
		out = append(out, o)
	}
	return out
}
