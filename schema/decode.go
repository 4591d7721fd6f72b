package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Validate runs v against raw from the root path.
func Validate(v Validator, raw any) (any, error) {
	return v.Validate(raw, nil)
}

// DecodeJSON parses data as a single JSON value, keeping numbers as
// json.Number, and validates it with v. Malformed input fails with an
// InvalidJSON *ValidationError.
func DecodeJSON(v Validator, data []byte) (any, error) {
	raw, err := decodeJSON(data)
	if err != nil {
		return nil, &ValidationError{
			Code:     InvalidJSON,
			Message:  fmt.Sprintf("malformed json: %v", err),
			Expected: v.Kind(),
		}
	}
	return v.Validate(raw, nil)
}

// Bind converts a validated value into T through its JSON form. Fields of T
// that the schema did not declare are left at their zero value. A value that
// fits the schema but not T (a fraction for an integer field, say) fails with
// a TypeMismatch *ValidationError.
func Bind[T any](value any) (T, error) {
	var out T
	if tv, ok := value.(T); ok {
		return tv, nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return out, fmt.Errorf("schema: bind: %w", err)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		var ute *json.UnmarshalTypeError
		if errors.As(err, &ute) {
			return out, bindMismatch(ute)
		}
		return out, fmt.Errorf("schema: bind: %w", err)
	}
	return out, nil
}

func bindMismatch(ute *json.UnmarshalTypeError) *ValidationError {
	var path Path
	if ute.Field != "" {
		for _, name := range strings.Split(ute.Field, ".") {
			path = path.Field(name)
		}
	}
	actual := KindUnknown
	switch word, _, _ := strings.Cut(ute.Value, " "); word {
	case "number":
		actual = KindNumber
	case "string":
		actual = KindString
	case "bool":
		actual = KindBoolean
	case "array":
		actual = KindArray
	case "object":
		actual = KindObject
	}
	return &ValidationError{
		Code:     TypeMismatch,
		Path:     path,
		Message:  fmt.Sprintf("cannot bind %s into %s", ute.Value, ute.Type),
		Expected: kindOfType(ute.Type),
		Actual:   actual,
	}
}

func kindOfType(t reflect.Type) Kind {
	if t == nil {
		return KindUnknown
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return KindString
	case reflect.Bool:
		return KindBoolean
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return KindNumber
	case reflect.Slice, reflect.Array:
		return KindArray
	case reflect.Struct, reflect.Map:
		return KindObject
	}
	return KindUnknown
}
