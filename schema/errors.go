package schema

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by *ValidationError through errors.Is.
var (
	ErrTypeMismatch = errors.New("schema: type mismatch")
	ErrMissingField = errors.New("schema: missing field")
	ErrInvalidJSON  = errors.New("schema: invalid json")
)

// Code classifies a validation failure.
type Code string

const (
	TypeMismatch Code = "type_mismatch"
	MissingField Code = "missing_field"
	InvalidJSON  Code = "invalid_json"
)

// ValidationError reports a value that does not conform to its declared
// shape. Path is relative to the value handed to the outermost validator.
type ValidationError struct {
	Code     Code
	Path     Path
	Message  string
	Expected Kind
	Actual   Kind // empty when not applicable (missing fields, malformed JSON)
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Is lets callers match failure classes with errors.Is.
func (e *ValidationError) Is(target error) bool {
	switch target {
	case ErrTypeMismatch:
		return e.Code == TypeMismatch
	case ErrMissingField:
		return e.Code == MissingField
	case ErrInvalidJSON:
		return e.Code == InvalidJSON
	}
	return false
}

func typeMismatch(path Path, expected Kind, raw any) *ValidationError {
	actual := KindOf(raw)
	return &ValidationError{
		Code:     TypeMismatch,
		Path:     path,
		Message:  fmt.Sprintf("expected %s, got %s", expected, actual),
		Expected: expected,
		Actual:   actual,
	}
}

func missingField(path Path, expected Kind) *ValidationError {
	return &ValidationError{
		Code:     MissingField,
		Path:     path,
		Message:  fmt.Sprintf("missing required %s field", expected),
		Expected: expected,
	}
}
