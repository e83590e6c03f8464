package symbol

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// ValueType is the declared type of the values a symbol binds
type ValueType int

const (
	// TypeString binds text as-is
	TypeString ValueType = iota
	// TypeBool binds true/false
	TypeBool
	// TypeInt binds base-10 integers
	TypeInt
	// TypeFloat binds 64-bit floats
	TypeFloat
	// TypeDuration binds Go durations such as "1m30s"
	TypeDuration
)

var valueTypeNames = map[ValueType]string{
	TypeString:   "string",
	TypeBool:     "bool",
	TypeInt:      "int",
	TypeFloat:    "float",
	TypeDuration: "duration",
}

func (t ValueType) String() string {
	if name, ok := valueTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ValueType(%d)", int(t))
}

// ParseValueType maps a type name used in grammar files to a ValueType.
// The empty string means string.
func ParseValueType(name string) (ValueType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "string", "str":
		return TypeString, nil
	case "bool", "boolean":
		return TypeBool, nil
	case "int", "integer":
		return TypeInt, nil
	case "float", "number":
		return TypeFloat, nil
	case "duration":
		return TypeDuration, nil
	}
	return TypeString, fmt.Errorf("unknown value type %q", name)
}

// Ordered reports whether values of this type can be compared with < and >
func (t ValueType) Ordered() bool {
	switch t {
	case TypeString, TypeInt, TypeFloat, TypeDuration:
		return true
	case TypeBool:
		return false
	}
	return false
}

// Parse converts a single token text into a typed value
func (t ValueType) Parse(text string) (any, error) {
	switch t {
	case TypeString:
		return text, nil
	case TypeBool:
		return strconv.ParseBool(text)
	case TypeInt:
		return strconv.Atoi(text)
	case TypeFloat:
		return strconv.ParseFloat(text, 64)
	case TypeDuration:
		return time.ParseDuration(text)
	}
	return nil, fmt.Errorf("unsupported value type %s", t)
}

// Coerce converts a value of any supported Go type into this type. Bounds and
// defaults coming from grammar files arrive as int64, float64 or string.
func (t ValueType) Coerce(v any) (any, error) {
	if s, ok := v.(string); ok {
		return t.Parse(s)
	}

	switch t {
	case TypeString:
		return fmt.Sprint(v), nil
	case TypeBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case TypeInt:
		switch n := v.(type) {
		case int:
			return n, nil
		case int64:
			return int(n), nil
		case int32:
			return int(n), nil
		case uint64:
			return int(n), nil
		case float64:
			if n == math.Trunc(n) {
				return int(n), nil
			}
		}
	case TypeFloat:
		switch n := v.(type) {
		case float64:
			return n, nil
		case float32:
			return float64(n), nil
		case int:
			return float64(n), nil
		case int64:
			return float64(n), nil
		}
	case TypeDuration:
		switch n := v.(type) {
		case time.Duration:
			return n, nil
		case int:
			return time.Duration(n), nil
		case int64:
			return time.Duration(n), nil
		}
	}
	return nil, fmt.Errorf("cannot convert %v (%T) to %s", v, v, t)
}

// Convert turns the token texts bound to s into its typed value: a scalar, or
// a typed slice for list symbols. A bool with no tokens is true.
func (s *Symbol) Convert(texts []string) (any, error) {
	if len(s.acceptOnly) > 0 {
		for _, text := range texts {
			if !s.accepts(text) {
				return nil, fmt.Errorf("argument %q not recognized for %s; must be one of: %s",
					text, s.describe(), strings.Join(quoteAll(s.acceptOnly), ", "))
			}
		}
	}

	if s.list {
		return s.convertList(texts)
	}

	if len(texts) == 0 {
		if s.valueType == TypeBool {
			return true, nil
		}
		return nil, nil
	}

	text := texts[len(texts)-1]
	v, err := s.valueType.Parse(text)
	if err != nil {
		return nil, s.conversionError(text)
	}
	return v, nil
}

func (s *Symbol) convertList(texts []string) (any, error) {
	switch s.valueType {
	case TypeString:
		return append([]string{}, texts...), nil
	case TypeBool:
		return convertAll(s, texts, strconv.ParseBool)
	case TypeInt:
		return convertAll(s, texts, strconv.Atoi)
	case TypeFloat:
		return convertAll(s, texts, func(text string) (float64, error) {
			return strconv.ParseFloat(text, 64)
		})
	case TypeDuration:
		return convertAll(s, texts, time.ParseDuration)
	}
	return nil, fmt.Errorf("unsupported value type %s", s.valueType)
}

func convertAll[T any](s *Symbol, texts []string, parse func(string) (T, error)) ([]T, error) {
	out := make([]T, 0, len(texts))
	for _, text := range texts {
		v, err := parse(text)
		if err != nil {
			return nil, s.conversionError(text)
		}
		out = append(out, v)
	}
	return out, nil
}

// CoerceValue converts a value from a default or a grammar file into the shape
// Convert produces: a scalar of the symbol's type, or a typed slice for lists.
// A scalar given to a list symbol becomes a one-element list.
func (s *Symbol) CoerceValue(v any) (any, error) {
	if !s.list {
		return s.valueType.Coerce(v)
	}

	var items []any
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice {
		items = make([]any, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			items = append(items, rv.Index(i).Interface())
		}
	} else {
		items = []any{v}
	}

	switch s.valueType {
	case TypeString:
		return coerceAll[string](s.valueType, items)
	case TypeBool:
		return coerceAll[bool](s.valueType, items)
	case TypeInt:
		return coerceAll[int](s.valueType, items)
	case TypeFloat:
		return coerceAll[float64](s.valueType, items)
	case TypeDuration:
		return coerceAll[time.Duration](s.valueType, items)
	}
	return nil, fmt.Errorf("unsupported value type %s", s.valueType)
}

func coerceAll[T any](t ValueType, items []any) ([]T, error) {
	out := make([]T, 0, len(items))
	for _, item := range items {
		v, err := t.Coerce(item)
		if err != nil {
			return nil, err
		}
		out = append(out, v.(T))
	}
	return out, nil
}

func (s *Symbol) conversionError(text string) error {
	return fmt.Errorf("cannot parse argument %q for %s as expected type %s", text, s.describe(), s.valueType)
}

func (s *Symbol) accepts(text string) bool {
	for _, allowed := range s.acceptOnly {
		if allowed == text {
			return true
		}
	}
	return false
}

func quoteAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strconv.Quote(v)
	}
	return out
}
