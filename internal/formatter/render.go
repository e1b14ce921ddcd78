package formatter

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/mcncl/ido/codec"
	"github.com/mcncl/ido/internal/errors"
	"github.com/mcncl/ido/internal/models"
)

// JSON renders a decoded record as JSON with object members in shape
// order. An empty indent gives compact output.
func (f *Formatter) JSON(v codec.Value, indent string) ([]byte, error) {
	raw, err := appendJSON(nil, v)
	if err != nil {
		return nil, err
	}
	if indent == "" {
		return raw, nil
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", indent); err != nil {
		return nil, errors.NewFormatError("failed to indent JSON", err)
	}
	return buf.Bytes(), nil
}

func appendJSON(b []byte, v codec.Value) ([]byte, error) {
	switch v.Kind() {
	case codec.KindInt:
		return strconv.AppendInt(b, v.Int(), 10), nil
	case codec.KindFloat:
		if math.IsNaN(v.Float()) || math.IsInf(v.Float(), 0) {
			return nil, errors.NewFormatError(fmt.Sprintf("cannot render %v as JSON", v.Float()), codec.ErrUnsupportedValueType)
		}
		enc, err := json.Marshal(v.Float())
		if err != nil {
			return nil, errors.NewFormatError("failed to render number", err)
		}
		return append(b, enc...), nil
	case codec.KindString:
		return appendJSONString(b, v.Str())
	case codec.KindBool:
		return strconv.AppendBool(b, v.Bool()), nil
	case codec.KindObject:
		b = append(b, '{')
		for i, field := range v.Fields() {
			if i > 0 {
				b = append(b, ',')
			}
			var err error
			if b, err = appendJSONString(b, field.Name); err != nil {
				return nil, err
			}
			b = append(b, ':')
			if b, err = appendJSON(b, field.Value); err != nil {
				return nil, err
			}
		}
		return append(b, '}'), nil
	case codec.KindArray:
		b = append(b, '[')
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				b = append(b, ',')
			}
			var err error
			if b, err = appendJSON(b, v.Index(i)); err != nil {
				return nil, err
			}
		}
		return append(b, ']'), nil
	default:
		return nil, errors.NewFormatError("cannot render an empty value", codec.ErrUnsupportedValueType)
	}
}

func appendJSONString(b []byte, s string) ([]byte, error) {
	enc, err := json.MarshalNoEscape(s)
	if err != nil {
		return nil, errors.NewFormatError("failed to render string", err)
	}
	return append(b, enc...), nil
}

// YAML renders a decoded record as a YAML document with mapping keys in
// shape order.
func (f *Formatter) YAML(v codec.Value) ([]byte, error) {
	node, err := yamlNode(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, errors.NewFormatError("failed to render YAML", err)
	}
	if err := enc.Close(); err != nil {
		return nil, errors.NewFormatError("failed to render YAML", err)
	}
	return buf.Bytes(), nil
}

func yamlNode(v codec.Value) (*yaml.Node, error) {
	switch v.Kind() {
	case codec.KindInt:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(v.Int(), 10)}, nil
	case codec.KindFloat:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, errors.NewFormatError(fmt.Sprintf("cannot render %v as YAML", f), codec.ErrUnsupportedValueType)
		}
		lit := strconv.FormatFloat(f, 'g', -1, 64)
		// Keep the float tag visible when the document is read back.
		if models.Number(lit).IsInteger() {
			lit += ".0"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: lit}, nil
	case codec.KindString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.Str()}, nil
	case codec.KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v.Bool())}, nil
	case codec.KindObject:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		if len(v.Fields()) == 0 {
			node.Style = yaml.FlowStyle
		}
		for _, field := range v.Fields() {
			val, err := yamlNode(field.Value)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: field.Name},
				val,
			)
		}
		return node, nil
	case codec.KindArray:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		if v.Len() == 0 {
			node.Style = yaml.FlowStyle
		}
		for _, item := range v.Items() {
			val, err := yamlNode(item)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, val)
		}
		return node, nil
	default:
		return nil, errors.NewFormatError("cannot render an empty value", codec.ErrUnsupportedValueType)
	}
}
