package templates

import (
	"encoding/json"
	"math"
	"reflect"
)

// AsInteger converts decoded payload values into an int64. JSON decoders hand
// numbers over as float64 or json.Number, so integral values of those types
// are accepted alongside Go integer kinds.
func AsInteger(value any) (int64, bool) {
	switch typed := value.(type) {
	case int:
		return int64(typed), true
	case int8:
		return int64(typed), true
	case int16:
		return int64(typed), true
	case int32:
		return int64(typed), true
	case int64:
		return typed, true
	case uint:
		if uint64(typed) > math.MaxInt64 {
			return 0, false
		}
		return int64(typed), true
	case uint8:
		return int64(typed), true
	case uint16:
		return int64(typed), true
	case uint32:
		return int64(typed), true
	case uint64:
		if typed > math.MaxInt64 {
			return 0, false
		}
		return int64(typed), true
	case float32:
		return integralFloat(float64(typed))
	case float64:
		return integralFloat(typed)
	case json.Number:
		if n, err := typed.Int64(); err == nil {
			return n, true
		}
		if f, err := typed.Float64(); err == nil {
			return integralFloat(f)
		}
	}
	return 0, false
}

func integralFloat(value float64) (int64, bool) {
	if math.IsNaN(value) || math.IsInf(value, 0) || value != math.Trunc(value) {
		return 0, false
	}
	if value >= 1<<63 || value < math.MinInt64 {
		return 0, false
	}
	return int64(value), true
}

// AsList exposes slice-shaped payload values as []any.
func AsList(value any) ([]any, bool) {
	if value == nil {
		return nil, false
	}
	if list, ok := value.([]any); ok {
		return list, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// AsObject exposes map-shaped payload values keyed by string.
func AsObject(value any) (map[string]any, bool) {
	switch typed := value.(type) {
	case map[string]any:
		return typed, true
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			name, ok := key.(string)
			if !ok {
				return nil, false
			}
			out[name] = item
		}
		return out, true
	}
	return nil, false
}

// Accepts reports whether value has the runtime shape expected for field type t.
// Collections only check the outer list and object items; item fields are
// checked by their own rules.
func (t FieldType) Accepts(value any) bool {
	switch t {
	case FieldString, FieldText, FieldRichText, FieldImage:
		_, ok := value.(string)
		return ok
	case FieldInteger:
		_, ok := AsInteger(value)
		return ok
	case FieldBoolean:
		_, ok := value.(bool)
		return ok
	case FieldIntegerList:
		list, ok := AsList(value)
		if !ok {
			return false
		}
		for _, item := range list {
			if _, ok := AsInteger(item); !ok {
				return false
			}
		}
		return true
	case FieldCollection:
		list, ok := AsList(value)
		if !ok {
			return false
		}
		for _, item := range list {
			if _, ok := AsObject(item); !ok {
				return false
			}
		}
		return true
	default:
		return false
	}
}
