package codec

import (
	"math"
	"strconv"
	"strings"
)

// coerce turns one field slice into a Value of the given shape.
func (d *decoder) coerce(slice string, shape Shape, path string, off int) (Value, error) {
	if slice == "" && shape.kind != KindBool && shape.kind != KindInvalid {
		return Value{}, newError(ErrNullField, path, off, "no data present for "+shape.kind.String())
	}
	switch shape.kind {
	case KindInt:
		return parseInt(slice, path, off)
	case KindFloat:
		return parseFloat(slice, path, off)
	case KindString:
		s, err := d.unquote(slice, path, off)
		if err != nil {
			return Value{}, err
		}
		return Value{kind: KindString, strVal: s}, nil
	case KindBool:
		return parseBool(slice, path, off)
	case KindObject:
		return d.object(slice, shape, path, off)
	case KindArray:
		return d.array(slice, shape.Elem(), path, off)
	default:
		return Value{}, newError(ErrUnsupportedValueType, path, off, "shape kind "+shape.kind.String())
	}
}

func parseInt(s, path string, off int) (Value, error) {
	if s[0] == '+' {
		return Value{}, newError(ErrNumericParse, path, off, "invalid integer "+strconv.Quote(s))
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return Value{}, &Error{Kind: ErrNumericParse, Path: path, Offset: off, Msg: "invalid integer " + strconv.Quote(s), Err: err}
	}
	return Value{kind: KindInt, intVal: n}, nil
}

func parseFloat(s, path string, off int) (Value, error) {
	if !isFloatLiteral(s) {
		return Value{}, newError(ErrNumericParse, path, off, "invalid float "+strconv.Quote(s))
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Value{}, &Error{Kind: ErrNumericParse, Path: path, Offset: off, Msg: "invalid float " + strconv.Quote(s), Err: err}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}, newError(ErrNumericParse, path, off, "non-finite float "+strconv.Quote(s))
	}
	return Value{kind: KindFloat, floatVal: f}, nil
}

// isFloatLiteral rejects the spellings strconv accepts but the encoder
// never writes: NaN, Inf, hex mantissas, underscores and a leading '+'.
// A '+' is only allowed as an exponent sign.
func isFloatLiteral(s string) bool {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9', c == '.', c == 'e', c == 'E', c == '-':
		case c == '+' && i > 0 && (s[i-1] == 'e' || s[i-1] == 'E'):
		default:
			return false
		}
	}
	return true
}

func parseBool(s, path string, off int) (Value, error) {
	switch s {
	case "+":
		return Value{kind: KindBool, boolVal: true}, nil
	case "":
		return Value{kind: KindBool, boolVal: false}, nil
	default:
		return Value{}, newError(ErrBooleanSentinel, path, off, "want '+' or empty, got "+strconv.Quote(s))
	}
}

// unquote strips the surrounding quotes from s and, unless RawStrings is
// set, resolves backslash escapes.
func (d *decoder) unquote(s, path string, off int) (string, error) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", newError(ErrQuoteMismatch, path, off, "string must be enclosed in '\"'")
	}
	inner := s[1 : len(s)-1]
	escapes := false
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '\\':
			escapes = true
			i++
		case '"':
			return "", newError(ErrQuoteMismatch, path, off+1+i, "unescaped '\"' inside string")
		}
	}
	if d.opts.RawStrings || !escapes {
		return inner, nil
	}
	var sb strings.Builder
	sb.Grow(len(inner))
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		if c == '\\' && i+1 < len(inner) {
			i++
			c = inner[i]
		}
		sb.WriteByte(c)
	}
	return sb.String(), nil
}
