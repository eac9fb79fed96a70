package payload

import (
	"strconv"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is one JSON-like value of a document field. The zero Value is null.
type Value struct {
	kind  Kind
	text  string // string contents, or the literal number text
	b     bool
	obj   *Map
	items []Value
}

func String(s string) Value { return Value{kind: KindString, text: s} }

// Number holds the literal JSON text of a number. The text is checked when the
// value is serialized, not here.
func Number(text string) Value { return Value{kind: KindNumber, text: text} }

func Int(i int64) Value { return Number(strconv.FormatInt(i, 10)) }

// Float keeps NaN and infinities as-is; they fail serialization with ErrUnrepresentable.
func Float(f float64) Value { return Number(strconv.FormatFloat(f, 'g', -1, 64)) }

func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

func Null() Value { return Value{} }

// Object wraps a nested map. The map is shared, not copied.
func Object(m *Map) Value {
	if m == nil {
		return Null()
	}
	return Value{kind: KindObject, obj: m}
}

func Array(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindArray, items: items}
}

func (v Value) Kind() Kind { return v.kind }

// Text returns the contents of a string value or the literal text of a number.
func (v Value) Text() string { return v.text }

func (v Value) Bool() bool { return v.b }

func (v Value) Map() *Map { return v.obj }

func (v Value) Items() []Value { return v.items }

func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) clone() Value {
	switch v.kind {
	case KindObject:
		return Object(v.obj.Clone())
	case KindArray:
		items := make([]Value, len(v.items))
		for i, it := range v.items {
			items[i] = it.clone()
		}
		return Array(items...)
	}
	return v
}
