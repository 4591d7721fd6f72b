package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// Validator checks a raw value against a declared shape and returns the
// validated value. The set of implementations is closed; compose the
// constructors in this package rather than implementing it.
type Validator interface {
	// Validate checks raw at path and returns the validated value or a
	// *ValidationError.
	Validate(raw any, path Path) (any, error)
	// Kind reports the kind this validator accepts. Optional validators
	// report the kind of the validator they wrap.
	Kind() Kind

	sealed()
}

// Fields declares the properties of an object validator.
type Fields map[string]Validator

// Record is the result of object validation: every declared field is
// present, holding nil when an optional field was absent. Record marshals to
// JSON without its nil entries.
type Record map[string]any

// MarshalJSON omits nil entries so absent optionals stay absent on the wire.
func (r Record) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(r))
	for k, v := range r {
		if v == nil {
			continue
		}
		m[k] = v
	}
	return json.Marshal(m)
}

// String accepts any value of string kind.
func String() Validator { return stringValidator{} }

// Number accepts integers, floats and json.Number. Numeric strings are
// rejected.
func Number() Validator { return numberValidator{} }

// Boolean accepts any value of bool kind.
func Boolean() Validator { return booleanValidator{} }

// Optional accepts absence (nil or a nil pointer) and otherwise defers to v.
func Optional(v Validator) Validator { return optionalValidator{inner: v} }

// Object validates a keyed structure against the declared fields. Unknown
// keys are ignored.
func Object(fields Fields) Validator {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return objectValidator{fields: fields, names: names}
}

// Array validates a sequence, checking every element with v.
func Array(v Validator) Validator { return arrayValidator{elem: v} }

// IsOptional reports whether v accepts absence.
func IsOptional(v Validator) bool {
	_, ok := v.(optionalValidator)
	return ok
}

type stringValidator struct{}

func (stringValidator) sealed()    {}
func (stringValidator) Kind() Kind { return KindString }

func (stringValidator) Validate(raw any, path Path) (any, error) {
	v, _ := normalize(raw)
	s, ok := v.(string)
	if !ok {
		return nil, typeMismatch(path, KindString, raw)
	}
	return s, nil
}

type numberValidator struct{}

func (numberValidator) sealed()    {}
func (numberValidator) Kind() Kind { return KindNumber }

func (numberValidator) Validate(raw any, path Path) (any, error) {
	v, _ := normalize(raw)
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, &ValidationError{
				Code:     TypeMismatch,
				Path:     path,
				Message:  fmt.Sprintf("non-finite number %v has no JSON form", n),
				Expected: KindNumber,
				Actual:   KindUnknown,
			}
		}
		return v, nil
	case json.Number, int64, uint64:
		return v, nil
	}
	return nil, typeMismatch(path, KindNumber, raw)
}

type booleanValidator struct{}

func (booleanValidator) sealed()    {}
func (booleanValidator) Kind() Kind { return KindBoolean }

func (booleanValidator) Validate(raw any, path Path) (any, error) {
	v, _ := normalize(raw)
	b, ok := v.(bool)
	if !ok {
		return nil, typeMismatch(path, KindBoolean, raw)
	}
	return b, nil
}

type optionalValidator struct {
	inner Validator
}

func (optionalValidator) sealed()      {}
func (o optionalValidator) Kind() Kind { return o.inner.Kind() }

func (o optionalValidator) Validate(raw any, path Path) (any, error) {
	if isAbsent(raw) {
		return nil, nil
	}
	return o.inner.Validate(raw, path)
}

type objectValidator struct {
	fields Fields
	names  []string // sorted
}

func (objectValidator) sealed()    {}
func (objectValidator) Kind() Kind { return KindObject }

func (o objectValidator) Validate(raw any, path Path) (any, error) {
	v, _ := normalize(raw)
	var props map[string]any
	switch m := v.(type) {
	case map[string]any:
		props = m
	case Record:
		props = m
	default:
		return nil, typeMismatch(path, KindObject, raw)
	}

	out := make(Record, len(o.names))
	for _, name := range o.names {
		fv := o.fields[name]
		fieldPath := path.Field(name)
		rawField, present := props[name]
		if !present && !IsOptional(fv) {
			return nil, missingField(fieldPath, fv.Kind())
		}
		val, err := fv.Validate(rawField, fieldPath)
		if err != nil {
			return nil, err
		}
		out[name] = val
	}
	return out, nil
}

type arrayValidator struct {
	elem Validator
}

func (arrayValidator) sealed()    {}
func (arrayValidator) Kind() Kind { return KindArray }

func (a arrayValidator) Validate(raw any, path Path) (any, error) {
	v, _ := normalize(raw)
	items, ok := v.([]any)
	if !ok {
		return nil, typeMismatch(path, KindArray, raw)
	}
	out := make([]any, len(items))
	for i, item := range items {
		val, err := a.elem.Validate(item, path.Index(i))
		if err != nil {
			return nil, err
		}
		out[i] = val
	}
	return out, nil
}

func isAbsent(raw any) bool {
	v, ok := normalize(raw)
	return ok && v == nil
}
