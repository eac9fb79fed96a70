package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrUnrepresentable is returned when a value has no JSON form, e.g. a NaN number.
	ErrUnrepresentable = errors.New("payload: value cannot be represented as JSON")
	// ErrCircular is returned when a map or array contains itself.
	ErrCircular = errors.New("payload: circular reference")
	// ErrNotObject is returned when decoding JSON whose top level is not an object.
	ErrNotObject = errors.New("payload: document must be a JSON object")
)

// Marshal serializes m as a JSON object in key order.
func Marshal(m *Map) ([]byte, error) {
	var buf bytes.Buffer
	enc := encoder{buf: &buf, active: map[*Map]bool{}}
	if err := enc.writeMap(m, ""); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a JSON object into a new Map, keeping key order and the
// literal text of numbers.
func Unmarshal(data []byte) (*Map, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("payload: decode: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, ErrNotObject
	}
	m, err := decodeObject(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("payload: decode: trailing data after object")
	}
	return m, nil
}

func (m *Map) MarshalJSON() ([]byte, error) {
	return Marshal(m)
}

func (m *Map) UnmarshalJSON(data []byte) error {
	out, err := Unmarshal(data)
	if err != nil {
		return err
	}
	*m = *out
	return nil
}

type encoder struct {
	buf    *bytes.Buffer
	active map[*Map]bool
}

func (e *encoder) writeMap(m *Map, path string) error {
	if m == nil {
		e.buf.WriteString("{}")
		return nil
	}
	if e.active[m] {
		return fmt.Errorf("%w at %q", ErrCircular, path)
	}
	e.active[m] = true
	defer delete(e.active, m)

	e.buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			e.buf.WriteByte(',')
		}
		writeString(e.buf, k)
		e.buf.WriteByte(':')
		if err := e.writeValue(m.values[k], join(path, k)); err != nil {
			return err
		}
	}
	e.buf.WriteByte('}')
	return nil
}

func (e *encoder) writeValue(v Value, path string) error {
	switch v.kind {
	case KindNull:
		e.buf.WriteString("null")
	case KindString:
		writeString(e.buf, v.text)
	case KindNumber:
		if !validNumber(v.text) {
			return fmt.Errorf("%w: number %q at %q", ErrUnrepresentable, v.text, path)
		}
		e.buf.WriteString(v.text)
	case KindBool:
		if v.b {
			e.buf.WriteString("true")
		} else {
			e.buf.WriteString("false")
		}
	case KindObject:
		return e.writeMap(v.obj, path)
	case KindArray:
		e.buf.WriteByte('[')
		for i, it := range v.items {
			if i > 0 {
				e.buf.WriteByte(',')
			}
			if err := e.writeValue(it, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
		e.buf.WriteByte(']')
	default:
		return fmt.Errorf("%w: unknown kind %v at %q", ErrUnrepresentable, v.kind, path)
	}
	return nil
}

func writeString(buf *bytes.Buffer, s string) {
	b, _ := json.Marshal(s)
	buf.Write(b)
}

func validNumber(text string) bool {
	if text == "" {
		return false
	}
	if c := text[0]; c != '-' && (c < '0' || c > '9') {
		return false
	}
	return json.Valid([]byte(text))
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func decodeObject(dec *json.Decoder) (*Map, error) {
	m := NewMap()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("payload: decode: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("payload: decode: unexpected token %v", tok)
		}
		v, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		m.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("payload: decode: %w", err)
	}
	return m, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, fmt.Errorf("payload: decode: %w", err)
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			m, err := decodeObject(dec)
			if err != nil {
				return Value{}, err
			}
			return Object(m), nil
		case '[':
			items := []Value{}
			for dec.More() {
				it, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				items = append(items, it)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, fmt.Errorf("payload: decode: %w", err)
			}
			return Array(items...), nil
		}
		return Value{}, fmt.Errorf("payload: decode: unexpected delimiter %v", t)
	case string:
		return String(t), nil
	case json.Number:
		return Number(t.String()), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null(), nil
	}
	return Value{}, fmt.Errorf("payload: decode: unexpected token %v", tok)
}
