package roster

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"math"
	"strconv"
)

// Value is a TagMap value. Concrete types:
//
//   - Number (the only kind touched by NormalizeNumericEntries)
//   - Text
//   - Flag
//   - Null
//   - Raw (any other JSON, kept verbatim)
type Value interface {
	tagValue()
}

// Number is a numeric tag value.
type Number float64

// Text is a string tag value.
type Text string

// Flag is a boolean tag value.
type Flag bool

// Null is an explicit null tag value.
type Null struct{}

// Raw is a JSON value of any other shape (object, array).
type Raw json.RawMessage

func (Number) tagValue() {}
func (Text) tagValue()   {}
func (Flag) tagValue()   {}
func (Null) tagValue()   {}
func (Raw) tagValue()    {}

// TagMap is an insertion-ordered map from string keys to tag values.
// The zero value is ready to use.
type TagMap struct {
	keys   []string
	values map[string]Value
}

// NewTagMap creates an empty TagMap.
func NewTagMap() *TagMap {
	return &TagMap{values: make(map[string]Value)}
}

// Set stores value under key. Overwriting keeps the key's original position.
func (m *TagMap) Set(key string, value Value) {
	if m.values == nil {
		m.values = make(map[string]Value)
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored under key.
func (m *TagMap) Get(key string) (Value, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Delete removes key and reports whether it was present.
func (m *TagMap) Delete(key string) bool {
	if _, ok := m.values[key]; !ok {
		return false
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of entries.
func (m *TagMap) Len() int {
	return len(m.keys)
}

// Clone returns a copy of m that can be modified without affecting m.
func (m *TagMap) Clone() *TagMap {
	if m == nil {
		return nil
	}
	out := &TagMap{
		keys:   make([]string, len(m.keys)),
		values: make(map[string]Value, len(m.values)),
	}
	copy(out.keys, m.keys)
	for k, v := range m.values {
		if raw, ok := v.(Raw); ok {
			v = append(Raw(nil), raw...)
		}
		out.values[k] = v
	}
	return out
}

// Keys returns the keys in insertion order.
func (m *TagMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// All iterates entries in insertion order.
func (m *TagMap) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

// MarshalJSON encodes the map as a JSON object in insertion order.
func (m *TagMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := encodeValue(m.values[k])
		if err != nil {
			return nil, fmt.Errorf("tag %q: %w", k, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping key order.
func (m *TagMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: expected JSON object", ErrTypeProcessing)
	}

	m.keys = nil
	m.values = make(map[string]Value)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected object key %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		m.Set(key, decodeValue(raw))
	}
	_, err = dec.Token()
	return err
}

func decodeValue(raw json.RawMessage) Value {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Null{}
	}
	switch c := trimmed[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return Text(s)
		}
	case c == 't' || c == 'f':
		return Flag(c == 't')
	case c == 'n':
		return Null{}
	case c == '-' || (c >= '0' && c <= '9'):
		if f, err := strconv.ParseFloat(string(trimmed), 64); err == nil {
			return Number(f)
		}
	}
	return Raw(append([]byte(nil), trimmed...))
}

func encodeValue(v Value) ([]byte, error) {
	switch t := v.(type) {
	case Number:
		// JSON has no infinities or NaN; they encode as null.
		if f := float64(t); math.IsInf(f, 0) || math.IsNaN(f) {
			return []byte("null"), nil
		}
		return json.Marshal(float64(t))
	case Text:
		return json.Marshal(string(t))
	case Flag:
		return json.Marshal(bool(t))
	case Null, nil:
		return []byte("null"), nil
	case Raw:
		if len(t) == 0 {
			return []byte("null"), nil
		}
		return []byte(t), nil
	default:
		return nil, fmt.Errorf("unsupported tag value %T", v)
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// BOUNDARY ARGUMENTS
// ══════════════════════════════════════════════════════════════════════════════

// TagArg is a tag map argument as received from an untyped boundary.
// It is either a *TagMap or NotAMap.
type TagArg interface {
	tagArg()
}

func (*TagMap) tagArg() {}

// NotAMap is an argument that is not a key/value map.
type NotAMap struct {
	Raw json.RawMessage
}

func (NotAMap) tagArg() {}

// DecodeTagArg classifies raw JSON as a *TagMap (a JSON object) or NotAMap.
func DecodeTagArg(data []byte) TagArg {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return NotAMap{Raw: append(json.RawMessage(nil), trimmed...)}
	}
	m := NewTagMap()
	if err := m.UnmarshalJSON(trimmed); err != nil {
		return NotAMap{Raw: append(json.RawMessage(nil), trimmed...)}
	}
	return m
}
