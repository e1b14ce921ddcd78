// Package codec implements the ido positional text format.
//
// A Shape describes the structure a caller expects; a Value holds data.
// Encode renders a Value without field names, and Decode parses text back
// into a fresh Value using the field order of a Shape supplied by the caller.
package codec

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value or described by a Shape.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindInt
	KindFloat
	KindString
	KindBool
	KindObject
	KindArray
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Field is a named member of an Object value.
type Field struct {
	Name  string
	Value Value
}

// Value is a concrete, fully typed instance. The zero Value means no data
// is present and cannot be encoded.
type Value struct {
	kind Kind

	intVal   int64
	floatVal float64
	strVal   string
	boolVal  bool

	fields []Field
	items  []Value
}

// Int returns an Integer value.
func Int(n int64) Value { return Value{kind: KindInt, intVal: n} }

// Float returns a Float value.
func Float(f float64) Value { return Value{kind: KindFloat, floatVal: f} }

// Str returns a String value.
func Str(s string) Value { return Value{kind: KindString, strVal: s} }

// Bool returns a Boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, boolVal: b} }

// Obj returns an Object value with the fields in the given order.
func Obj(fields ...Field) Value {
	fs := make([]Field, len(fields))
	copy(fs, fields)
	return Value{kind: KindObject, fields: fs}
}

// Arr returns an Array value.
func Arr(items ...Value) Value {
	is := make([]Value, len(items))
	copy(is, items)
	return Value{kind: KindArray, items: is}
}

// F is shorthand for a Field literal.
func F(name string, v Value) Field { return Field{Name: name, Value: v} }

// Kind returns the value's variant.
func (v Value) Kind() Kind { return v.kind }

// IsZero reports whether v is the zero Value, meaning no data present.
func (v Value) IsZero() bool { return v.kind == KindInvalid }

// Int returns the payload of an Integer value, or 0.
func (v Value) Int() int64 { return v.intVal }

// Float returns the payload of a Float value, or 0.
func (v Value) Float() float64 { return v.floatVal }

// Str returns the payload of a String value, or "".
func (v Value) Str() string { return v.strVal }

// Bool returns the payload of a Boolean value, or false.
func (v Value) Bool() bool { return v.boolVal }

// Len returns the number of elements of an Array value.
func (v Value) Len() int { return len(v.items) }

// Index returns the i-th element of an Array value. It panics when i is
// out of range.
func (v Value) Index(i int) Value { return v.items[i] }

// Fields returns a copy of the object's fields.
func (v Value) Fields() []Field {
	out := make([]Field, len(v.fields))
	copy(out, v.fields)
	return out
}

// Items returns a copy of the array's elements.
func (v Value) Items() []Value {
	out := make([]Value, len(v.items))
	copy(out, v.items)
	return out
}

// Get returns the first field with the given name.
func (v Value) Get(name string) (Value, bool) {
	for _, f := range v.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Set returns a copy of the object with the named field replaced. The
// receiver is left untouched.
func (v Value) Set(name string, nv Value) Value {
	out := Obj(v.fields...)
	for i := range out.fields {
		if out.fields[i].Name == name {
			out.fields[i].Value = nv
			return out
		}
	}
	out.fields = append(out.fields, Field{Name: name, Value: nv})
	return out
}

// Equal reports whether v and o hold the same data. Field names take part
// in the comparison for objects.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInvalid:
		return true
	case KindInt:
		return v.intVal == o.intVal
	case KindFloat:
		return v.floatVal == o.floatVal
	case KindString:
		return v.strVal == o.strVal
	case KindBool:
		return v.boolVal == o.boolVal
	case KindObject:
		if len(v.fields) != len(o.fields) {
			return false
		}
		for i := range v.fields {
			if v.fields[i].Name != o.fields[i].Name || !v.fields[i].Value.Equal(o.fields[i].Value) {
				return false
			}
		}
		return true
	case KindArray:
		if len(v.items) != len(o.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String renders the value for diagnostics. It is not the wire format.
func (v Value) String() string {
	var sb strings.Builder
	v.writeDebug(&sb)
	return sb.String()
}

func (v Value) writeDebug(sb *strings.Builder) {
	switch v.kind {
	case KindInt:
		sb.WriteString(strconv.FormatInt(v.intVal, 10))
	case KindFloat:
		sb.WriteString(strconv.FormatFloat(v.floatVal, 'g', -1, 64))
	case KindString:
		sb.WriteString(strconv.Quote(v.strVal))
	case KindBool:
		sb.WriteString(strconv.FormatBool(v.boolVal))
	case KindObject:
		sb.WriteByte('{')
		for i, f := range v.fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(f.Name)
			sb.WriteString(": ")
			f.Value.writeDebug(sb)
		}
		sb.WriteByte('}')
	case KindArray:
		sb.WriteByte('[')
		for i, it := range v.items {
			if i > 0 {
				sb.WriteString(", ")
			}
			it.writeDebug(sb)
		}
		sb.WriteByte(']')
	default:
		fmt.Fprintf(sb, "<%s>", v.kind)
	}
}
