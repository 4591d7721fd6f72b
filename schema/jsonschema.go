package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
	"github.com/invopop/jsonschema"
)

// JSONSchema renders v as a JSON Schema document. Optional wrappers render
// as their inner schema; an object lists its non-optional fields as required.
func JSONSchema(v Validator) *jsonschema.Schema {
	switch t := v.(type) {
	case optionalValidator:
		return JSONSchema(t.inner)
	case arrayValidator:
		return &jsonschema.Schema{Type: "array", Items: JSONSchema(t.elem)}
	case objectValidator:
		props := jsonschema.NewProperties()
		var required []string
		for _, name := range t.names {
			fv := t.fields[name]
			props.Set(name, JSONSchema(fv))
			if !IsOptional(fv) {
				required = append(required, name)
			}
		}
		return &jsonschema.Schema{Type: "object", Properties: props, Required: required}
	}
	return &jsonschema.Schema{Type: string(v.Kind())}
}

// Fingerprint returns the hex SHA-256 of the canonical JSON encoding of v's
// JSON Schema. Structurally identical validators share a fingerprint.
func Fingerprint(v Validator) (string, error) {
	b, err := json.Marshal(JSONSchema(v))
	if err != nil {
		return "", fmt.Errorf("schema: marshal json schema: %w", err)
	}
	canon, err := jcs.Transform(b)
	if err != nil {
		return "", fmt.Errorf("schema: canonicalize json schema: %w", err)
	}
	sum := sha256.Sum256(canon)
	return hex.EncodeToString(sum[:]), nil
}
