package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"reflect"
	"strconv"
	"time"
)

// ScalarCodec converts leaf values between Go and the GraphQL wire format.
// ParseValue accepts both variable values and literal values; literals arrive
// as int64, float64, string or bool.
type ScalarCodec interface {
	Serialize(value any) (any, error)
	ParseValue(value any) (any, error)
}

type intCodec struct{}

func (intCodec) Serialize(value any) (any, error) {
	return toInt(value)
}

func (intCodec) ParseValue(value any) (any, error) {
	return toInt(value)
}

func toInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int8:
		return int(v), nil
	case int16:
		return int(v), nil
	case int32:
		return int(v), nil
	case int64:
		if v < math.MinInt32 || v > math.MaxInt32 {
			return 0, fmt.Errorf("Int cannot represent non 32-bit signed integer value: %d", v)
		}
		return int(v), nil
	case uint8, uint16, uint32:
		return int(reflect.ValueOf(v).Uint()), nil
	case float64:
		if v != math.Trunc(v) || v < math.MinInt32 || v > math.MaxInt32 {
			return 0, fmt.Errorf("Int cannot represent non-integer value: %v", v)
		}
		return int(v), nil
	case float32:
		return toInt(float64(v))
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("Int cannot represent %q", v.String())
		}
		return toInt(i)
	}
	return 0, fmt.Errorf("Int cannot represent value: %v (%T)", value, value)
}

type floatCodec struct{}

func (floatCodec) Serialize(value any) (any, error)  { return toFloat(value) }
func (floatCodec) ParseValue(value any) (any, error) { return toFloat(value) }

func toFloat(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("Float cannot represent %q", v.String())
		}
		return f, nil
	}
	return 0, fmt.Errorf("Float cannot represent value: %v (%T)", value, value)
}

type stringCodec struct{}

func (stringCodec) Serialize(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	case bool, int, int32, int64, float64:
		return fmt.Sprintf("%v", v), nil
	}
	return nil, fmt.Errorf("String cannot represent value: %v (%T)", value, value)
}

func (stringCodec) ParseValue(value any) (any, error) {
	if v, ok := value.(string); ok {
		return v, nil
	}
	return nil, fmt.Errorf("String cannot represent a non string value: %v", value)
}

type booleanCodec struct{}

func (booleanCodec) Serialize(value any) (any, error) { return booleanCodec{}.ParseValue(value) }

func (booleanCodec) ParseValue(value any) (any, error) {
	if v, ok := value.(bool); ok {
		return v, nil
	}
	return nil, fmt.Errorf("Boolean cannot represent a non boolean value: %v", value)
}

type idCodec struct{}

func (idCodec) Serialize(value any) (any, error) { return idCodec{}.ParseValue(value) }

func (idCodec) ParseValue(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case json.Number:
		return v.String(), nil
	}
	return nil, fmt.Errorf("ID cannot represent value: %v (%T)", value, value)
}

type dateTimeCodec struct{}

func (dateTimeCodec) Serialize(value any) (any, error) {
	switch v := value.(type) {
	case time.Time:
		return v.Format(time.RFC3339Nano), nil
	case *time.Time:
		if v == nil {
			return nil, nil
		}
		return v.Format(time.RFC3339Nano), nil
	case string:
		if _, err := time.Parse(time.RFC3339Nano, v); err != nil {
			return nil, fmt.Errorf("DateTime cannot represent %q: %w", v, err)
		}
		return v, nil
	}
	return nil, fmt.Errorf("DateTime cannot represent value: %v (%T)", value, value)
}

func (dateTimeCodec) ParseValue(value any) (any, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return nil, fmt.Errorf("DateTime cannot represent %q: %w", v, err)
		}
		return t, nil
	}
	return nil, fmt.Errorf("DateTime cannot represent value: %v (%T)", value, value)
}

type uriCodec struct{}

func (uriCodec) Serialize(value any) (any, error) {
	switch v := value.(type) {
	case *url.URL:
		if v == nil {
			return nil, nil
		}
		return v.String(), nil
	case url.URL:
		return v.String(), nil
	case string:
		if _, err := parseAbsoluteURI(v); err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, fmt.Errorf("URI cannot represent value: %v (%T)", value, value)
}

func (uriCodec) ParseValue(value any) (any, error) {
	switch v := value.(type) {
	case *url.URL:
		return v, nil
	case string:
		return parseAbsoluteURI(v)
	}
	return nil, fmt.Errorf("URI cannot represent value: %v (%T)", value, value)
}

func parseAbsoluteURI(s string) (*url.URL, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("URI cannot represent %q: %w", s, err)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("URI cannot represent %q: not an absolute uri", s)
	}
	return u, nil
}

// SerializeLeaf serializes a value of a SCALAR or ENUM type. Enum values
// serialize by name; a value matching an enum member's underlying Value
// serializes to that member's name.
func SerializeLeaf(t *Type, value any) (any, error) {
	switch t.Kind {
	case TypeKindScalar:
		if t.Scalar == nil {
			return value, nil
		}
		return t.Scalar.Serialize(value)
	case TypeKindEnum:
		for _, ev := range t.EnumValues {
			if ev.Value != nil && reflect.DeepEqual(ev.Value, value) {
				return ev.Name, nil
			}
		}
		name := fmt.Sprint(value)
		if s, ok := value.(fmt.Stringer); ok {
			name = s.String()
		}
		if t.EnumValue(name) != nil {
			return name, nil
		}
		return nil, fmt.Errorf("Enum %q cannot represent value: %v", t.Name, value)
	}
	return nil, fmt.Errorf("type %s is not a leaf type", t.Name)
}

// ParseLeaf converts an input value for a SCALAR or ENUM type.
func ParseLeaf(t *Type, value any) (any, error) {
	switch t.Kind {
	case TypeKindScalar:
		if t.Scalar == nil {
			return value, nil
		}
		return t.Scalar.ParseValue(value)
	case TypeKindEnum:
		name, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("Enum %q cannot represent non-string value: %v", t.Name, value)
		}
		ev := t.EnumValue(name)
		if ev == nil {
			return nil, fmt.Errorf("Value %q does not exist in %q enum", name, t.Name)
		}
		if ev.Value != nil {
			return ev.Value, nil
		}
		return name, nil
	}
	return nil, fmt.Errorf("type %s is not a leaf type", t.Name)
}
