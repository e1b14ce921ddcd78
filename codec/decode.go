package codec

import "strconv"

// DecodeOptions configures decoding.
type DecodeOptions struct {
	// RawStrings keeps backslash escapes inside strings as they appear on
	// the wire instead of unescaping them.
	RawStrings bool
}

// Decode parses text against shape and returns a newly allocated Value.
// shape must describe an object or an array.
func Decode(text string, shape Shape) (Value, error) {
	return DecodeWithOptions(text, shape, DecodeOptions{})
}

// DecodeWithOptions is Decode with explicit options.
func DecodeWithOptions(text string, shape Shape, opts DecodeOptions) (Value, error) {
	d := decoder{opts: opts}
	switch shape.kind {
	case KindObject:
		return d.object(text, shape, "", 0)
	case KindArray:
		return d.array(text, shape.Elem(), "", 0)
	default:
		return Value{}, newError(ErrUnsupportedValueType, "", -1, "top-level shape must be an object or array, got "+shape.kind.String())
	}
}

type decoder struct {
	opts DecodeOptions
}

// object decodes a {...} slice. Each depth-zero slice is coerced as soon as
// it closes, against the shape field at the same ordinal.
func (d *decoder) object(text string, shape Shape, path string, base int) (Value, error) {
	content, err := unwrap(text, '{', '}', base, path)
	if err != nil {
		return Value{}, err
	}
	if content == "" && len(shape.fields) == 0 {
		return Value{kind: KindObject, fields: []Field{}}, nil
	}

	fields := make([]Field, 0, len(shape.fields))
	err = splitTopLevel(content, base+1, path, func(slice string, off int) error {
		n := len(fields)
		if n >= len(shape.fields) {
			return newError(ErrFieldCountMismatch, path, off,
				"more than "+strconv.Itoa(len(shape.fields))+" fields")
		}
		sf := shape.fields[n]
		v, err := d.coerce(slice, sf.Shape, path+"/"+sf.Name, off)
		if err != nil {
			return err
		}
		fields = append(fields, Field{Name: sf.Name, Value: v})
		return nil
	})
	if err != nil {
		return Value{}, err
	}
	if len(fields) != len(shape.fields) {
		return Value{}, newError(ErrFieldCountMismatch, path, base+len(text)-1,
			"got "+strconv.Itoa(len(fields))+" fields, want "+strconv.Itoa(len(shape.fields)))
	}
	return Value{kind: KindObject, fields: fields}, nil
}
