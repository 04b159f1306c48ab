package jsonval

import (
	"encoding/json"
	"strings"
)

// Kind identifies which variant a [Value] holds.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

// Member is a single object member. The order of members within an object is
// the order they appeared in the source text.
type Member struct {
	Key   string
	Value Value
}

// Value is a closed tagged-variant JSON value. The zero value is JSON null.
type Value struct {
	kind    Kind
	str     string // String content, or the Number source literal
	boolean bool
	arr     []Value
	obj     []Member
}

// NewNull returns the JSON null value.
func NewNull() Value { return Value{kind: Null} }

// NewBool returns a JSON boolean value.
func NewBool(b bool) Value { return Value{kind: Bool, boolean: b} }

// NewNumber returns a JSON number carrying its source literal verbatim.
func NewNumber(literal string) Value { return Value{kind: Number, str: literal} }

// NewString returns a JSON string value.
func NewString(s string) Value { return Value{kind: String, str: s} }

// NewArray returns a JSON array over the given elements.
func NewArray(elems []Value) Value { return Value{kind: Array, arr: elems} }

// NewObject returns a JSON object over the given members, preserving order.
func NewObject(members []Member) Value { return Value{kind: Object, obj: members} }

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// IsObject reports whether v is a JSON object.
func (v Value) IsObject() bool { return v.kind == Object }

// Members returns the ordered members of an object value. It returns nil for
// any other kind.
func (v Value) Members() []Member {
	if v.kind != Object {
		return nil
	}
	return v.obj
}

// Elements returns the ordered elements of an array value. It returns nil for
// any other kind.
func (v Value) Elements() []Value {
	if v.kind != Array {
		return nil
	}
	return v.arr
}

// Bool returns the boolean content of a Bool value.
func (v Value) Bool() bool { return v.boolean }

// Str returns the string content of a String value, or the source literal of
// a Number value.
func (v Value) Str() string { return v.str }

// Render converts v to its single-cell string form: strings verbatim, bools
// as "true"/"false", numbers as their source literal, null as the empty
// string. Arrays and objects render as compact JSON.
func (v Value) Render() string {
	switch v.kind {
	case Null:
		return ""
	case Bool:
		if v.boolean {
			return "true"
		}
		return "false"
	case Number, String:
		return v.str
	default:
		var b strings.Builder
		v.encode(&b)
		return b.String()
	}
}

// EncodeJSON returns the compact JSON encoding of v, preserving member order
// and number literals.
func (v Value) EncodeJSON() string {
	var b strings.Builder
	v.encode(&b)
	return b.String()
}

func (v Value) encode(b *strings.Builder) {
	switch v.kind {
	case Null:
		b.WriteString("null")
	case Bool:
		if v.boolean {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case Number:
		b.WriteString(v.str)
	case String:
		writeQuoted(b, v.str)
	case Array:
		b.WriteByte('[')
		for i, e := range v.arr {
			if i > 0 {
				b.WriteByte(',')
			}
			e.encode(b)
		}
		b.WriteByte(']')
	case Object:
		b.WriteByte('{')
		for i, m := range v.obj {
			if i > 0 {
				b.WriteByte(',')
			}
			writeQuoted(b, m.Key)
			b.WriteByte(':')
			m.Value.encode(b)
		}
		b.WriteByte('}')
	}
}

func writeQuoted(b *strings.Builder, s string) {
	quoted, err := json.Marshal(s)
	if err != nil {
		// json.Marshal never fails for a string; keep the value visible anyway.
		b.WriteByte('"')
		b.WriteString(s)
		b.WriteByte('"')
		return
	}
	b.Write(quoted)
}
