package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"reflect"
)

var errTrailingData = errors.New("unexpected data after top-level value")

// Kind names the runtime shape of a value in JSON terms.
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindObject  Kind = "object"
	KindArray   Kind = "array"
	KindNull    Kind = "null"
	KindUnknown Kind = "unknown"
)

// KindOf reports the JSON kind of raw. Go values are classified by their
// JSON form: structs are objects, slices are arrays, nil pointers are null.
func KindOf(raw any) Kind {
	v, ok := normalize(raw)
	if !ok {
		return KindUnknown
	}
	switch v.(type) {
	case nil:
		return KindNull
	case string:
		return KindString
	case bool:
		return KindBoolean
	case json.Number, int64, uint64, float64:
		return KindNumber
	case map[string]any, Record:
		return KindObject
	case []any:
		return KindArray
	}
	return KindUnknown
}

// normalize reduces raw to the generic value set the validators work on:
// nil, string, bool, int64, uint64, float64, json.Number, map[string]any,
// Record and []any. Composite Go values go through their JSON encoding so
// that struct tags and custom marshalers are honored. The boolean is false
// when raw has no JSON form.
func normalize(raw any) (any, bool) {
	switch v := raw.(type) {
	case nil:
		return nil, true
	case string, bool, float64, int64, uint64, json.Number:
		return v, true
	case Record:
		if v == nil {
			return nil, true
		}
		return v, true
	case map[string]any:
		if v == nil {
			return nil, true
		}
		return v, true
	case []any:
		if v == nil {
			return nil, true
		}
		return v, true
	case json.Marshaler:
		return viaJSON(v)
	}

	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, true
		}
		return normalize(rv.Elem().Interface())
	case reflect.String:
		return rv.String(), true
	case reflect.Bool:
		return rv.Bool(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint(), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Struct, reflect.Map, reflect.Slice, reflect.Array:
		return viaJSON(raw)
	}
	return raw, false
}

func viaJSON(raw any) (any, bool) {
	b, err := json.Marshal(raw)
	if err != nil {
		return raw, false
	}
	out, err := decodeJSON(b)
	if err != nil {
		return raw, false
	}
	return out, true
}

func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, errTrailingData
	}
	return out, nil
}
