package plan

import (
	"fmt"
)

// VariableError reports a variable the request supplied badly or not at all.
type VariableError struct {
	Name string
	Err  error
}

func (e *VariableError) Error() string {
	return fmt.Sprintf("variable $%s: %v", e.Name, e.Err)
}

func (e *VariableError) Unwrap() error { return e.Err }

// CoerceVariables checks raw request variables against the operation's
// declarations. Absent variables take their declared default; absent
// variables without a default are left out.
func (p *Plan) CoerceVariables(raw map[string]any) (map[string]any, error) {
	coerced := make(map[string]any, len(p.Variables))
	for _, v := range p.Variables {
		val, ok := raw[v.Name]
		if !ok {
			if v.Default != nil {
				coerced[v.Name], _ = v.Default.Resolve(nil)
			} else if v.Type.IsNonNull() {
				return nil, &VariableError{Name: v.Name, Err: fmt.Errorf("required type %s was not provided", v.Type)}
			}
			continue
		}
		if val == nil && v.Type.IsNonNull() {
			return nil, &VariableError{Name: v.Name, Err: fmt.Errorf("type %s cannot be null", v.Type)}
		}
		cv, err := CoerceInput(p.Document.Schema, v.Type, val)
		if err != nil {
			return nil, &VariableError{Name: v.Name, Err: err}
		}
		coerced[v.Name] = cv
	}
	return coerced, nil
}
