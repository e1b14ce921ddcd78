package analyzer

import (
	"fmt"
	"strconv"

	"github.com/mcncl/ido/codec"
	"github.com/mcncl/ido/internal/config"
	"github.com/mcncl/ido/internal/errors"
	"github.com/mcncl/ido/internal/models"
)

func displayPath(path string) string {
	if path == "" {
		return "/"
	}
	return path
}

// Shape infers the shape of an example document. Object fields keep
// document order, whole numbers become int and other numbers float unless
// a configured type mapping matches the field path.
func (a *Analyzer) Shape(ir models.IntermediateRepresentation) (codec.Shape, error) {
	switch ir.Root.(type) {
	case models.JSONObject, models.JSONArray:
	case nil:
		return codec.Shape{}, errors.NewAnalysisError("the example document is null", codec.ErrNullField)
	default:
		return codec.Shape{}, errors.NewAnalysisError(
			fmt.Sprintf("the example root must be an object or array, got %s", describe(ir.Root)),
			codec.ErrUnsupportedValueType,
		)
	}
	return a.inferNode(ir.Root, "")
}

func (a *Analyzer) inferNode(node models.JSONValue, path string) (codec.Shape, error) {
	switch v := node.(type) {
	case nil:
		return codec.Shape{}, errors.NewAnalysisError(fmt.Sprintf("null value at %s", displayPath(path)), codec.ErrNullField)
	case bool:
		return codec.BoolShape(), nil
	case string:
		return codec.StringShape(), nil
	case models.Number:
		return a.numberShape(v, path)
	case models.JSONObject:
		fields := make([]codec.ShapeField, 0, len(v))
		for _, m := range v {
			s, err := a.inferNode(m.Value, path+"/"+m.Key)
			if err != nil {
				return codec.Shape{}, err
			}
			fields = append(fields, codec.SF(m.Key, s))
		}
		return codec.ObjectShape(fields...), nil
	case models.JSONArray:
		if len(v) == 0 {
			return codec.Shape{}, errors.NewAnalysisError(
				fmt.Sprintf("empty array at %s has no element to infer from", displayPath(path)),
				codec.ErrEmptyArrayUnsupported,
			)
		}
		elem, err := a.inferNode(v[0], path+"/0")
		if err != nil {
			return codec.Shape{}, err
		}
		for i := 1; i < len(v); i++ {
			ipath := path + "/" + strconv.Itoa(i)
			s, err := a.inferNode(v[i], ipath)
			if err != nil {
				return codec.Shape{}, err
			}
			merged, ok := mergeShapes(elem, s)
			if !ok {
				return codec.Shape{}, errors.NewAnalysisError(
					fmt.Sprintf("array element %s is %s but earlier elements are %s", ipath, s, elem),
					codec.ErrUnsupportedValueType,
				)
			}
			elem = merged
		}
		return codec.ArrayShape(elem), nil
	default:
		return codec.Shape{}, errors.NewAnalysisError(fmt.Sprintf("unexpected value of type %T at %s", v, displayPath(path)), codec.ErrUnsupportedValueType)
	}
}

func (a *Analyzer) numberShape(n models.Number, path string) (codec.Shape, error) {
	if mapping, found := a.checkTypeMapping(path); found {
		if mapping.Type == config.TypeFloat {
			return codec.FloatShape(), nil
		}
		if !n.IsInteger() {
			return codec.Shape{}, errors.NewAnalysisError(
				fmt.Sprintf("%s is mapped to int but the example holds %s", path, n),
				codec.ErrNumericParse,
			)
		}
		return codec.IntShape(), nil
	}
	if n.IsInteger() {
		return codec.IntShape(), nil
	}
	return codec.FloatShape(), nil
}

// mergeShapes reconciles two array element shapes. An int and a float at the
// same position widen to float; everything else must match exactly.
func mergeShapes(x, y codec.Shape) (codec.Shape, bool) {
	if x.Equal(y) {
		return x, true
	}
	switch {
	case isNumber(x) && isNumber(y):
		return codec.FloatShape(), true
	case x.Kind() == codec.KindObject && y.Kind() == codec.KindObject:
		if x.NumFields() != y.NumFields() {
			return codec.Shape{}, false
		}
		fields := make([]codec.ShapeField, x.NumFields())
		for i := range fields {
			xf, yf := x.Field(i), y.Field(i)
			if xf.Name != yf.Name {
				return codec.Shape{}, false
			}
			s, ok := mergeShapes(xf.Shape, yf.Shape)
			if !ok {
				return codec.Shape{}, false
			}
			fields[i] = codec.SF(xf.Name, s)
		}
		return codec.ObjectShape(fields...), true
	case x.Kind() == codec.KindArray && y.Kind() == codec.KindArray:
		s, ok := mergeShapes(x.Elem(), y.Elem())
		if !ok {
			return codec.Shape{}, false
		}
		return codec.ArrayShape(s), true
	}
	return codec.Shape{}, false
}

func isNumber(s codec.Shape) bool {
	return s.Kind() == codec.KindInt || s.Kind() == codec.KindFloat
}

// Value converts a document into a codec.Value laid out by shape. Object
// members are matched by name, so the document may list them in any order.
func (a *Analyzer) Value(ir models.IntermediateRepresentation, shape codec.Shape) (codec.Value, error) {
	if shape.Kind() != codec.KindObject && shape.Kind() != codec.KindArray {
		return codec.Value{}, errors.NewEncodeError(
			fmt.Sprintf("the shape must be an object or array, got %s", shape),
			codec.ErrUnsupportedValueType,
		)
	}
	return a.convert(ir.Root, shape, "")
}

func (a *Analyzer) convert(node models.JSONValue, shape codec.Shape, path string) (codec.Value, error) {
	if node == nil {
		return codec.Value{}, errors.NewEncodeError(fmt.Sprintf("null value at %s", displayPath(path)), codec.ErrNullField)
	}
	mismatch := func() (codec.Value, error) {
		return codec.Value{}, errors.NewEncodeError(
			fmt.Sprintf("value at %s is %s, the shape wants %s", displayPath(path), describe(node), shape),
			codec.ErrUnsupportedValueType,
		)
	}

	switch shape.Kind() {
	case codec.KindInt:
		n, ok := node.(models.Number)
		if !ok {
			return mismatch()
		}
		i, err := n.Int64()
		if err != nil {
			return codec.Value{}, errors.NewEncodeError(fmt.Sprintf("%s at %s is not an integer", n, displayPath(path)), codec.ErrNumericParse)
		}
		return codec.Int(i), nil
	case codec.KindFloat:
		n, ok := node.(models.Number)
		if !ok {
			return mismatch()
		}
		f, err := n.Float64()
		if err != nil {
			return codec.Value{}, errors.NewEncodeError(fmt.Sprintf("%s at %s is not a number", n, displayPath(path)), codec.ErrNumericParse)
		}
		return codec.Float(f), nil
	case codec.KindString:
		s, ok := node.(string)
		if !ok {
			return mismatch()
		}
		return codec.Str(s), nil
	case codec.KindBool:
		b, ok := node.(bool)
		if !ok {
			return mismatch()
		}
		return codec.Bool(b), nil
	case codec.KindObject:
		obj, ok := node.(models.JSONObject)
		if !ok {
			return mismatch()
		}
		fields := make([]codec.Field, shape.NumFields())
		known := make(map[string]struct{}, shape.NumFields())
		for i := range fields {
			sf := shape.Field(i)
			known[sf.Name] = struct{}{}
			member, found := obj.Get(sf.Name)
			if !found {
				return codec.Value{}, errors.NewEncodeError(
					fmt.Sprintf("field %s/%s is missing", path, sf.Name),
					codec.ErrNullField,
				)
			}
			v, err := a.convert(member, sf.Shape, path+"/"+sf.Name)
			if err != nil {
				return codec.Value{}, err
			}
			fields[i] = codec.F(sf.Name, v)
		}
		for _, m := range obj {
			if _, ok := known[m.Key]; !ok {
				return codec.Value{}, errors.NewEncodeError(
					fmt.Sprintf("field %s/%s is not in the shape", path, m.Key),
					codec.ErrFieldCountMismatch,
				)
			}
		}
		return codec.Obj(fields...), nil
	case codec.KindArray:
		arr, ok := node.(models.JSONArray)
		if !ok {
			return mismatch()
		}
		items := make([]codec.Value, len(arr))
		for i, el := range arr {
			v, err := a.convert(el, shape.Elem(), path+"/"+strconv.Itoa(i))
			if err != nil {
				return codec.Value{}, err
			}
			items[i] = v
		}
		return codec.Arr(items...), nil
	default:
		return codec.Value{}, errors.NewEncodeError(fmt.Sprintf("invalid shape at %s", displayPath(path)), codec.ErrUnsupportedValueType)
	}
}

func describe(node models.JSONValue) string {
	switch v := node.(type) {
	case nil:
		return "null"
	case bool:
		return "a boolean"
	case string:
		return "a string"
	case models.Number:
		return "the number " + string(v)
	case models.JSONObject:
		return "an object"
	case models.JSONArray:
		return "an array"
	default:
		return fmt.Sprintf("%T", v)
	}
}
