// Package schema provides the small set of composable validators used at the
// API boundary: they check outgoing arguments before a request is built and
// decode incoming JSON payloads into well-shaped values.
//
// The set of validators is closed:
//
//	String()        any value of string kind
//	Number()        any integer / float kind, or json.Number
//	Boolean()       any value of bool kind
//	Optional(v)     nil (or a nil pointer) short-circuits to nil; otherwise v
//	Object(Fields)  a keyed structure; each declared field validated
//	Array(v)        a sequence; each element validated with v
//
// Validation is strict. Values are never coerced, so the string "12" is not a
// number. Object validation is non-strict about unknown keys: they are
// dropped from the result rather than rejected.
//
// # Errors
//
// Every failure is a *ValidationError carrying the Path at which it occurred,
// the expected kind and (when relevant) the actual kind. Use errors.Is with
// ErrTypeMismatch, ErrMissingField or ErrInvalidJSON to branch on the failure
// class.
//
// # Decoding responses
//
//	var listSchema = schema.Object(schema.Fields{
//	    "payments": schema.Optional(schema.Array(paymentSchema)),
//	    "cursor":   schema.Optional(schema.String()),
//	})
//
//	v, err := schema.DecodeJSON(listSchema, body)
//	if err != nil { ... }
//	out, err := schema.Bind[ListPaymentsResponse](v)
//
// DecodeJSON keeps numbers as json.Number so that integer amounts survive the
// trip without float rounding.
//
// # JSON Schema
//
// JSONSchema renders any validator as a JSON Schema document and Fingerprint
// derives a stable identifier from its canonical (RFC 8785) encoding.
package schema
