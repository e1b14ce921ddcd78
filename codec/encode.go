package codec

import (
	"math"
	"strconv"
)

// Encode renders v as ido text. The top-level value must be an object or
// an array. Field names are never written.
func Encode(v Value) (string, error) {
	b, err := AppendEncode(nil, v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// AppendEncode appends the encoding of v to dst.
func AppendEncode(dst []byte, v Value) ([]byte, error) {
	switch v.kind {
	case KindObject, KindArray:
		return appendValue(dst, v, "")
	case KindInvalid:
		return dst, newError(ErrNullField, "", -1, "no data present")
	default:
		return dst, newError(ErrUnsupportedValueType, "", -1, "top-level value must be an object or array, got "+v.kind.String())
	}
}

func appendValue(b []byte, v Value, path string) ([]byte, error) {
	switch v.kind {
	case KindInt:
		return strconv.AppendInt(b, v.intVal, 10), nil
	case KindFloat:
		return appendFloat(b, v.floatVal, path)
	case KindString:
		return appendQuoted(b, v.strVal), nil
	case KindBool:
		return appendBool(b, v.boolVal), nil
	case KindObject:
		return appendObject(b, v, path)
	case KindArray:
		return appendArray(b, v, path)
	case KindInvalid:
		return b, newError(ErrNullField, path, -1, "no data present")
	default:
		return b, newError(ErrUnsupportedValueType, path, -1, "unknown value kind "+v.kind.String())
	}
}

func appendObject(b []byte, v Value, path string) ([]byte, error) {
	var err error
	b = append(b, '{')
	for i, f := range v.fields {
		if i > 0 {
			b = append(b, ',')
		}
		if b, err = appendValue(b, f.Value, path+"/"+f.Name); err != nil {
			return b, err
		}
	}
	return append(b, '}'), nil
}

// appendArray picks the rendering rule from the first element and holds
// every other element to it.
func appendArray(b []byte, v Value, path string) ([]byte, error) {
	if len(v.items) == 0 {
		return b, newError(ErrEmptyArrayUnsupported, path, -1, "")
	}
	kind := v.items[0].kind
	var err error
	b = append(b, '[')
	for i, it := range v.items {
		ipath := path + "/" + strconv.Itoa(i)
		if it.kind != kind {
			if it.kind == KindInvalid {
				return b, newError(ErrNullField, ipath, -1, "no data present")
			}
			return b, newError(ErrUnsupportedValueType, ipath, -1, "array of "+kind.String()+" holds "+it.kind.String())
		}
		if i > 0 {
			b = append(b, ',')
		}
		if b, err = appendValue(b, it, ipath); err != nil {
			return b, err
		}
	}
	return append(b, ']'), nil
}

func appendFloat(b []byte, f float64, path string) ([]byte, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return b, newError(ErrUnsupportedValueType, path, -1, "non-finite float "+strconv.FormatFloat(f, 'g', -1, 64))
	}
	return strconv.AppendFloat(b, f, 'g', -1, 64), nil
}

func appendBool(b []byte, v bool) []byte {
	if v {
		return append(b, '+')
	}
	return b
}

// appendQuoted writes s between double quotes, escaping quotes and
// backslashes so the scanners never see an unescaped quote inside.
func appendQuoted(b []byte, s string) []byte {
	b = append(b, '"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' || c == '\\' {
			b = append(b, '\\')
		}
		b = append(b, c)
	}
	return append(b, '"')
}
