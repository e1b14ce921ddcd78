package codec

import (
	"strings"
)

// ShapeField is a named, ordered member of an Object shape.
type ShapeField struct {
	Name  string
	Shape Shape
}

// Shape is a type-only description of expected structure. Object shapes
// keep their fields in positional order; Array shapes carry one element
// shape. Shapes are never mutated after construction.
type Shape struct {
	kind   Kind
	fields []ShapeField
	elem   *Shape
}

// IntShape returns the Integer shape.
func IntShape() Shape { return Shape{kind: KindInt} }

// FloatShape returns the Float shape.
func FloatShape() Shape { return Shape{kind: KindFloat} }

// StringShape returns the String shape.
func StringShape() Shape { return Shape{kind: KindString} }

// BoolShape returns the Boolean shape.
func BoolShape() Shape { return Shape{kind: KindBool} }

// ObjectShape returns an Object shape whose fields are decoded in the
// given order.
func ObjectShape(fields ...ShapeField) Shape {
	fs := make([]ShapeField, len(fields))
	copy(fs, fields)
	return Shape{kind: KindObject, fields: fs}
}

// ArrayShape returns an Array shape with the given element shape.
func ArrayShape(elem Shape) Shape {
	e := elem
	return Shape{kind: KindArray, elem: &e}
}

// SF is shorthand for a ShapeField literal.
func SF(name string, s Shape) ShapeField { return ShapeField{Name: name, Shape: s} }

// Kind returns the shape's variant.
func (s Shape) Kind() Kind { return s.kind }

// NumFields returns the number of fields of an Object shape.
func (s Shape) NumFields() int { return len(s.fields) }

// Field returns the i-th field of an Object shape.
func (s Shape) Field(i int) ShapeField { return s.fields[i] }

// Fields returns a copy of the Object shape's fields.
func (s Shape) Fields() []ShapeField {
	out := make([]ShapeField, len(s.fields))
	copy(out, s.fields)
	return out
}

// Elem returns the element shape of an Array shape, or the zero Shape.
func (s Shape) Elem() Shape {
	if s.elem == nil {
		return Shape{}
	}
	return *s.elem
}

// Equal reports whether two shapes describe the same structure.
func (s Shape) Equal(o Shape) bool {
	if s.kind != o.kind {
		return false
	}
	switch s.kind {
	case KindObject:
		if len(s.fields) != len(o.fields) {
			return false
		}
		for i := range s.fields {
			if s.fields[i].Name != o.fields[i].Name || !s.fields[i].Shape.Equal(o.fields[i].Shape) {
				return false
			}
		}
		return true
	case KindArray:
		return s.Elem().Equal(o.Elem())
	default:
		return true
	}
}

// String returns a compact description such as {id:int,tags:[string]}.
func (s Shape) String() string {
	var sb strings.Builder
	s.write(&sb)
	return sb.String()
}

func (s Shape) write(sb *strings.Builder) {
	switch s.kind {
	case KindObject:
		sb.WriteByte('{')
		for i, f := range s.fields {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(f.Name)
			sb.WriteByte(':')
			f.Shape.write(sb)
		}
		sb.WriteByte('}')
	case KindArray:
		sb.WriteByte('[')
		s.Elem().write(sb)
		sb.WriteByte(']')
	default:
		sb.WriteString(s.kind.String())
	}
}

// ShapeOf derives a Shape from an example value. Array element shapes come
// from the first element, so example arrays must not be empty.
func ShapeOf(example Value) (Shape, error) {
	return shapeOf(example, "")
}

func shapeOf(v Value, path string) (Shape, error) {
	switch v.kind {
	case KindInt, KindFloat, KindString, KindBool:
		return Shape{kind: v.kind}, nil
	case KindObject:
		fields := make([]ShapeField, 0, len(v.fields))
		for _, f := range v.fields {
			fs, err := shapeOf(f.Value, path+"/"+f.Name)
			if err != nil {
				return Shape{}, err
			}
			fields = append(fields, ShapeField{Name: f.Name, Shape: fs})
		}
		return Shape{kind: KindObject, fields: fields}, nil
	case KindArray:
		if len(v.items) == 0 {
			return Shape{}, newError(ErrEmptyArrayUnsupported, path, -1, "cannot infer element shape of an empty array")
		}
		elem, err := shapeOf(v.items[0], path+"/0")
		if err != nil {
			return Shape{}, err
		}
		return ArrayShape(elem), nil
	case KindInvalid:
		return Shape{}, newError(ErrNullField, path, -1, "no data present")
	default:
		return Shape{}, newError(ErrUnsupportedValueType, path, -1, "unknown value kind "+v.kind.String())
	}
}
