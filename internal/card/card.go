package card

import (
	"bytes"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

// Well-known card fields
const (
	CodeField        = "code"
	NameField        = "name"
	PackNameField    = "pack_name"
	SetCodeField     = "set_code"
	SetNameField     = "set_name"
	DuplicateOfField = "duplicate_of"
	LinkedCardField  = "linked_card"
)

// Kind tells which shape a decoded JSON value has
type Kind int

const (
	Scalar Kind = iota // string, number, boolean or null
	Object             // nested mapping
	List               // array
)

func (k Kind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case Object:
		return "object"
	case List:
		return "list"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Value is a JSON value tagged with its kind at parse time
type Value struct {
	Kind   Kind
	Text   string  // report text, only for Scalar
	Fields Record  // only for Object
	Items  []Value // only for List

	literal string // JSON form of a decoded scalar
}

// Record is a raw card (or catalog entry) as read from JSON
type Record map[string]Value

// Flat is a flattened card: field name to report text
type Flat map[string]string

// StringValue returns a Scalar holding s
func StringValue(s string) Value {
	return Value{Kind: Scalar, Text: s}
}

// Render returns the report text of the value. Objects and lists render as
// compact JSON with markup characters left as they are.
func (v Value) Render() (string, error) {
	if v.Kind == Scalar {
		return v.Text, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v.plain()); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// plain converts the value back to generic Go values for re-encoding.
func (v Value) plain() any {
	switch v.Kind {
	case Object:
		m := make(map[string]any, len(v.Fields))
		for k, f := range v.Fields {
			m[k] = f.plain()
		}
		return m
	case List:
		items := make([]any, len(v.Items))
		for i, item := range v.Items {
			items[i] = item.plain()
		}
		return items
	}
	if v.literal != "" {
		return json.RawMessage(v.literal)
	}
	return v.Text
}

// UnmarshalJSON decodes any JSON value into its tagged form
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	*v = fromAny(raw)
	return nil
}

// UnmarshalJSON decodes a JSON object into a Record
func (r *Record) UnmarshalJSON(data []byte) error {
	var v Value
	if err := v.UnmarshalJSON(data); err != nil {
		return err
	}
	if v.Kind != Object {
		return fmt.Errorf("expected JSON object, got %s", v.Kind)
	}
	*r = v.Fields
	return nil
}

func fromAny(raw any) Value {
	switch x := raw.(type) {
	case map[string]any:
		fields := make(Record, len(x))
		for k, item := range x {
			fields[k] = fromAny(item)
		}
		return Value{Kind: Object, Fields: fields}
	case []any:
		items := make([]Value, len(x))
		for i, item := range x {
			items[i] = fromAny(item)
		}
		return Value{Kind: List, Items: items}
	case string:
		return StringValue(x)
	case json.Number:
		return Value{Kind: Scalar, Text: x.String(), literal: x.String()}
	case bool:
		// Same spelling as the reports generated before this tool existed
		if x {
			return Value{Kind: Scalar, Text: "True", literal: "true"}
		}
		return Value{Kind: Scalar, Text: "False", literal: "false"}
	default:
		// nil is all that is left once numbers decode as json.Number
		return Value{Kind: Scalar, Text: "None", literal: "null"}
	}
}

// Scalar returns the text of field name when it holds a scalar
func (r Record) Scalar(name string) (string, bool) {
	v, ok := r[name]
	if !ok || v.Kind != Scalar {
		return "", false
	}
	return v.Text, true
}

// Flatten drops nested objects from r and turns every other value into its
// report text with newlines escaped as a literal backslash-n.
func Flatten(r Record) (Flat, error) {
	flat := make(Flat, len(r))
	for name, v := range r {
		switch v.Kind {
		case Object:
			continue
		case Scalar, List:
			text, err := v.Render()
			if err != nil {
				return nil, fmt.Errorf("%w: field %s: %w", ErrParse, name, err)
			}
			flat[name] = EscapeNewlines(text)
		}
	}
	return flat, nil
}

// EscapeNewlines replaces every newline with the two characters `\n`
func EscapeNewlines(s string) string {
	return strings.ReplaceAll(s, "\n", `\n`)
}
