package ingest

import (
	"bytes"
	"strings"

	"github.com/goccy/go-json"
)

// Text accepts any JSON scalar and keeps it as text. Strings are unquoted,
// numbers and booleans keep their literal form, null and nested values
// become the empty string.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		*t = ""
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
	case '{', '[', 'n':
		*t = ""
	default:
		*t = Text(b)
	}
	return nil
}

func (t Text) String() string { return string(t) }

// Flag accepts booleans, numbers and the usual yes/no strings.
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	var t Text
	if err := t.UnmarshalJSON(b); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(string(t))) {
	case "true", "1", "si", "sí", "yes", "y", "s":
		*f = true
	default:
		*f = false
	}
	return nil
}

// isObject reports whether raw holds a JSON object.
func isObject(raw json.RawMessage) bool {
	b := bytes.TrimSpace(raw)
	return len(b) > 0 && b[0] == '{'
}

func isArray(raw json.RawMessage) bool {
	b := bytes.TrimSpace(raw)
	return len(b) > 0 && b[0] == '['
}

// objects decodes the object elements of a JSON array into T. Anything that
// is not an array yields nil; elements that are not objects are skipped.
func objects[T any](raw json.RawMessage) []T {
	if !isArray(raw) {
		return nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil
	}
	out := make([]T, 0, len(elems))
	for _, e := range elems {
		if !isObject(e) {
			continue
		}
		var v T
		if err := json.Unmarshal(e, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// object decodes raw into v when it is a JSON object and reports whether it did.
func object(raw json.RawMessage, v any) bool {
	if !isObject(raw) {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

// members decodes a JSON object of objects. ok is false when raw is not an
// object; members whose value is not an object are skipped.
func members[T any](raw json.RawMessage) (out map[string]T, ok bool) {
	var m map[string]json.RawMessage
	if !object(raw, &m) {
		return nil, false
	}
	out = make(map[string]T, len(m))
	for k, e := range m {
		var v T
		if object(e, &v) {
			out[k] = v
		}
	}
	return out, true
}

// texts decodes a JSON array of scalars; other shapes yield nil.
func texts(raw json.RawMessage) []string {
	if !isArray(raw) {
		return nil
	}
	var ts []Text
	if err := json.Unmarshal(raw, &ts); err != nil {
		return nil
	}
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		if s := strings.TrimSpace(string(t)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// firstText returns the first non-blank value.
func firstText(values ...Text) string {
	for _, v := range values {
		if strings.TrimSpace(string(v)) != "" {
			return string(v)
		}
	}
	return ""
}
