// Package payload normalizes the response shapes returned by the incident API.
//
// The API sits behind a Lambda-style proxy. Depending on the function, a response
// body may be the JSON payload itself, a JSON string containing the payload, or an
// envelope whose "body" field holds the payload (again possibly as a JSON string).
// Unwrap reduces all of these to a single tagged value.
package payload

import (
	"encoding/json"
	"strings"
)

// Kind tags the shape of an unwrapped payload.
type Kind int

const (
	KindNull Kind = iota
	KindObject
	KindArray
	KindText
	KindScalar
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindText:
		return "text"
	case KindScalar:
		return "scalar"
	default:
		return "null"
	}
}

// Payload is a decoded response body. Exactly one of Object, Array, Text or
// Scalar is meaningful, as selected by Kind.
type Payload struct {
	Kind   Kind
	Object map[string]any
	Array  []any
	Text   string
	Scalar any
}

// Value returns the payload as a plain decoded-JSON value.
func (p Payload) Value() any {
	switch p.Kind {
	case KindObject:
		return p.Object
	case KindArray:
		return p.Array
	case KindText:
		return p.Text
	case KindScalar:
		return p.Scalar
	default:
		return nil
	}
}

// Field returns an object field, or nil when the payload is not an object.
func (p Payload) Field(name string) any {
	if p.Kind != KindObject {
		return nil
	}
	return p.Object[name]
}

// Of tags an already-decoded JSON value.
func Of(v any) Payload {
	switch t := v.(type) {
	case nil:
		return Payload{Kind: KindNull}
	case map[string]any:
		return Payload{Kind: KindObject, Object: t}
	case []any:
		return Payload{Kind: KindArray, Array: t}
	case string:
		return Payload{Kind: KindText, Text: t}
	default:
		return Payload{Kind: KindScalar, Scalar: t}
	}
}

// Decode applies one level of string decoding: a string holding valid JSON is
// replaced by its decoded value, anything else is kept as is.
func Decode(raw any) Payload {
	return Of(decodeString(raw))
}

// Unwrap reduces a proxy response to its inner payload:
//  1. a string is JSON-decoded when possible;
//  2. an object carrying a "body" field is replaced by that field;
//  3. a string body is JSON-decoded when possible.
func Unwrap(raw any) Payload {
	v := decodeString(raw)

	if obj, ok := v.(map[string]any); ok {
		if body, has := obj["body"]; has {
			v = decodeString(body)
		}
	}

	return Of(v)
}

// Items extracts the list of records from a payload that is either a bare
// array or an object with an "items" array. Any other shape yields no items.
func Items(p Payload) []any {
	switch p.Kind {
	case KindArray:
		return p.Array
	case KindObject:
		if items, ok := p.Object["items"].([]any); ok {
			return items
		}
	}
	return nil
}

func decodeString(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	if strings.TrimSpace(s) == "" {
		return s
	}
	var out any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return s
	}
	return out
}
