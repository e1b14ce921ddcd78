package codec

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"sync"
	"time"
)

// Struct fields are encoded in declaration order. A field tagged ido:"-" is
// skipped and ido:"name" renames it; unexported fields are ignored.
// time.Time is carried as an Integer of Unix microseconds. Types
// implementing Marshaler, Unmarshaler and Shaper, on the value or the
// pointer receiver, take over their own encoding.

var timeType = reflect.TypeOf(time.Time{})

// Marshaler is implemented by types that build their own Value.
type Marshaler interface {
	MarshalIDO() (Value, error)
}

// Unmarshaler is implemented by types that read themselves from a decoded
// Value. UnmarshalIDO must copy what it keeps.
type Unmarshaler interface {
	UnmarshalIDO(Value) error
}

// Shaper describes the shape of a type with custom encoding. ShapeFor
// calls IDOShape on the zero value, and requires it of every Marshaler or
// Unmarshaler.
type Shaper interface {
	IDOShape() Shape
}

var (
	marshalerType   = reflect.TypeOf((*Marshaler)(nil)).Elem()
	unmarshalerType = reflect.TypeOf((*Unmarshaler)(nil)).Elem()
	shaperType      = reflect.TypeOf((*Shaper)(nil)).Elem()
)

// implements reports whether t or *t implements iface.
func implements(t, iface reflect.Type) bool {
	return t.Implements(iface) || reflect.PointerTo(t).Implements(iface)
}

// hookError attaches path to an error returned by a custom hook. Errors
// that already carry a kind keep it.
func hookError(err error, path, method string) error {
	if ce, ok := AsError(err); ok {
		return ce
	}
	return &Error{Kind: ErrUnsupportedValueType, Path: path, Offset: -1, Msg: method + " failed", Err: err}
}

type structField struct {
	index int
	name  string
}

var structCache sync.Map // map[reflect.Type][]structField

func fieldsOf(t reflect.Type) []structField {
	if f, ok := structCache.Load(t); ok {
		return f.([]structField)
	}
	fields := make([]structField, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("ido")
		if tag == "-" {
			continue
		}
		name := f.Name
		if tag != "" {
			name = tag
		}
		fields = append(fields, structField{index: i, name: name})
	}
	structCache.Store(t, fields)
	return fields
}

// Marshal encodes a Go value. v must be a struct, slice or array, or a
// pointer to one.
func Marshal(v any) ([]byte, error) {
	val, err := ValueOf(v)
	if err != nil {
		return nil, err
	}
	return AppendEncode(nil, val)
}

// Unmarshal decodes data into the value pointed to by v, using a shape
// derived from v's type. v is only written when decoding succeeds.
func Unmarshal(data []byte, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return newError(ErrUnsupportedValueType, "", -1, fmt.Sprintf("Unmarshal needs a non-nil pointer, got %T", v))
	}
	t := rv.Type().Elem()
	shape, err := ShapeFor(t)
	if err != nil {
		return err
	}
	val, err := Decode(string(data), shape)
	if err != nil {
		return err
	}
	tmp := reflect.New(t).Elem()
	if err := assign(tmp, val, ""); err != nil {
		return err
	}
	rv.Elem().Set(tmp)
	return nil
}

// ValueOf converts a Go value into a Value.
func ValueOf(v any) (Value, error) {
	if v == nil {
		return Value{}, newError(ErrNullField, "", -1, "nil value")
	}
	return valueOf(reflect.ValueOf(v), "")
}

func valueOf(rv reflect.Value, path string) (Value, error) {
	if k := rv.Kind(); k != reflect.Pointer && k != reflect.Interface && implements(rv.Type(), marshalerType) {
		return marshal(rv, path)
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Value{}, newError(ErrNullField, path, -1, "nil "+rv.Type().String())
		}
		return valueOf(rv.Elem(), path)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return Value{}, newError(ErrUnsupportedValueType, path, -1, strconv.FormatUint(u, 10)+" overflows int64")
		}
		return Int(int64(u)), nil
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	case reflect.String:
		return Str(rv.String()), nil
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Slice, reflect.Array:
		items := make([]Value, rv.Len())
		for i := range items {
			it, err := valueOf(rv.Index(i), path+"/"+strconv.Itoa(i))
			if err != nil {
				return Value{}, err
			}
			items[i] = it
		}
		return Value{kind: KindArray, items: items}, nil
	case reflect.Struct:
		if rv.Type() == timeType {
			return Int(rv.Interface().(time.Time).UnixMicro()), nil
		}
		sfs := fieldsOf(rv.Type())
		fields := make([]Field, len(sfs))
		for i, sf := range sfs {
			fv, err := valueOf(rv.Field(sf.index), path+"/"+sf.name)
			if err != nil {
				return Value{}, err
			}
			fields[i] = Field{Name: sf.name, Value: fv}
		}
		return Value{kind: KindObject, fields: fields}, nil
	default:
		return Value{}, newError(ErrUnsupportedValueType, path, -1, "Go kind "+rv.Kind().String())
	}
}

// marshal calls MarshalIDO on rv, or on a copy of it when the method has a
// pointer receiver and rv is not addressable.
func marshal(rv reflect.Value, path string) (Value, error) {
	var m Marshaler
	switch {
	case rv.Type().Implements(marshalerType):
		m = rv.Interface().(Marshaler)
	case rv.CanAddr():
		m = rv.Addr().Interface().(Marshaler)
	default:
		p := reflect.New(rv.Type())
		p.Elem().Set(rv)
		m = p.Interface().(Marshaler)
	}
	v, err := m.MarshalIDO()
	if err != nil {
		return Value{}, hookError(err, path, rv.Type().String()+".MarshalIDO")
	}
	if v.IsZero() {
		return Value{}, newError(ErrNullField, path, -1, rv.Type().String()+".MarshalIDO returned no value")
	}
	return v, nil
}

// ShapeOfGo returns the shape of v's type.
func ShapeOfGo(v any) (Shape, error) {
	if v == nil {
		return Shape{}, newError(ErrNullField, "", -1, "nil value")
	}
	return ShapeFor(reflect.TypeOf(v))
}

// ShapeFor derives a Shape from a Go type. Recursive types are rejected
// because a shape must be finite.
func ShapeFor(t reflect.Type) (Shape, error) {
	return shapeFor(t, "", map[reflect.Type]bool{})
}

func shapeFor(t reflect.Type, path string, visiting map[reflect.Type]bool) (Shape, error) {
	if t.Kind() == reflect.Pointer {
		return shapeFor(t.Elem(), path, visiting)
	}
	if t.Kind() != reflect.Interface {
		switch {
		case t.Implements(shaperType):
			return customShape(reflect.Zero(t).Interface().(Shaper), t, path)
		case reflect.PointerTo(t).Implements(shaperType):
			return customShape(reflect.New(t).Interface().(Shaper), t, path)
		case implements(t, marshalerType) || implements(t, unmarshalerType):
			return Shape{}, newError(ErrUnsupportedValueType, path, -1, t.String()+" has custom encoding but no IDOShape method")
		}
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return IntShape(), nil
	case reflect.Float32, reflect.Float64:
		return FloatShape(), nil
	case reflect.String:
		return StringShape(), nil
	case reflect.Bool:
		return BoolShape(), nil
	case reflect.Slice, reflect.Array:
		elem, err := shapeFor(t.Elem(), path+"/0", visiting)
		if err != nil {
			return Shape{}, err
		}
		return ArrayShape(elem), nil
	case reflect.Struct:
		if t == timeType {
			return IntShape(), nil
		}
		if visiting[t] {
			return Shape{}, newError(ErrUnsupportedValueType, path, -1, "recursive type "+t.String())
		}
		visiting[t] = true
		defer delete(visiting, t)
		sfs := fieldsOf(t)
		fields := make([]ShapeField, len(sfs))
		for i, sf := range sfs {
			fs, err := shapeFor(t.Field(sf.index).Type, path+"/"+sf.name, visiting)
			if err != nil {
				return Shape{}, err
			}
			fields[i] = ShapeField{Name: sf.name, Shape: fs}
		}
		return Shape{kind: KindObject, fields: fields}, nil
	default:
		return Shape{}, newError(ErrUnsupportedValueType, path, -1, "Go type "+t.String())
	}
}

func customShape(sh Shaper, t reflect.Type, path string) (Shape, error) {
	s := sh.IDOShape()
	if s.kind == KindInvalid {
		return Shape{}, newError(ErrUnsupportedValueType, path, -1, t.String()+".IDOShape returned the zero Shape")
	}
	return s, nil
}

// assign stores v into dst, allocating pointers and slices as needed.
func assign(dst reflect.Value, v Value, path string) error {
	t := dst.Type()
	if k := t.Kind(); k != reflect.Pointer && k != reflect.Interface {
		var u Unmarshaler
		switch {
		case reflect.PointerTo(t).Implements(unmarshalerType) && dst.CanAddr():
			u = dst.Addr().Interface().(Unmarshaler)
		case t.Implements(unmarshalerType):
			u = dst.Interface().(Unmarshaler)
		}
		if u != nil {
			if err := u.UnmarshalIDO(v); err != nil {
				return hookError(err, path, t.String()+".UnmarshalIDO")
			}
			return nil
		}
	}
	switch t.Kind() {
	case reflect.Pointer:
		nv := reflect.New(t.Elem())
		if err := assign(nv.Elem(), v, path); err != nil {
			return err
		}
		dst.Set(nv)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if dst.OverflowInt(v.intVal) {
			return newError(ErrNumericParse, path, -1, strconv.FormatInt(v.intVal, 10)+" overflows "+t.String())
		}
		dst.SetInt(v.intVal)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if v.intVal < 0 || dst.OverflowUint(uint64(v.intVal)) {
			return newError(ErrNumericParse, path, -1, strconv.FormatInt(v.intVal, 10)+" overflows "+t.String())
		}
		dst.SetUint(uint64(v.intVal))
	case reflect.Float32, reflect.Float64:
		if dst.OverflowFloat(v.floatVal) {
			return newError(ErrNumericParse, path, -1, strconv.FormatFloat(v.floatVal, 'g', -1, 64)+" overflows "+t.String())
		}
		dst.SetFloat(v.floatVal)
	case reflect.String:
		dst.SetString(v.strVal)
	case reflect.Bool:
		dst.SetBool(v.boolVal)
	case reflect.Slice:
		s := reflect.MakeSlice(t, len(v.items), len(v.items))
		for i, it := range v.items {
			if err := assign(s.Index(i), it, path+"/"+strconv.Itoa(i)); err != nil {
				return err
			}
		}
		dst.Set(s)
	case reflect.Array:
		if len(v.items) != dst.Len() {
			return newError(ErrFieldCountMismatch, path, -1,
				"got "+strconv.Itoa(len(v.items))+" elements for "+t.String())
		}
		for i, it := range v.items {
			if err := assign(dst.Index(i), it, path+"/"+strconv.Itoa(i)); err != nil {
				return err
			}
		}
	case reflect.Struct:
		if t == timeType {
			dst.Set(reflect.ValueOf(time.UnixMicro(v.intVal).UTC()))
			return nil
		}
		for i, sf := range fieldsOf(t) {
			if err := assign(dst.Field(sf.index), v.fields[i].Value, path+"/"+sf.name); err != nil {
				return err
			}
		}
	default:
		return newError(ErrUnsupportedValueType, path, -1, "Go type "+t.String())
	}
	return nil
}
