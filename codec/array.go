package codec

import (
	"strconv"
	"strings"
)

// array decodes a [...] slice whose elements all have the elem shape. The
// element shape selects the scanner: numbers and booleans cannot nest and
// are split on every comma, everything else goes through the depth-aware
// scanner.
func (d *decoder) array(text string, elem Shape, path string, base int) (Value, error) {
	content, err := unwrap(text, '[', ']', base, path)
	if err != nil {
		return Value{}, err
	}
	switch elem.kind {
	case KindInt, KindFloat:
		return d.numberArray(content, elem.kind, path, base+1)
	case KindBool:
		return d.boolArray(content, path, base+1)
	case KindString:
		return d.stringArray(content, path, base+1)
	case KindArray:
		return d.nestedArray(content, elem.Elem(), path, base+1)
	case KindObject:
		return d.objectArray(content, elem, path, base+1)
	default:
		return Value{}, newError(ErrUnsupportedValueType, path, base, "array element shape "+elem.kind.String())
	}
}

func emptyArray() Value { return Value{kind: KindArray, items: []Value{}} }

func (d *decoder) numberArray(content string, kind Kind, path string, base int) (Value, error) {
	if content == "" {
		return emptyArray(), nil
	}
	items := make([]Value, 0, strings.Count(content, ",")+1)
	off := base
	for i, piece := range strings.Split(content, ",") {
		ipath := path + "/" + strconv.Itoa(i)
		var (
			v   Value
			err error
		)
		switch {
		case piece == "":
			err = newError(ErrNullField, ipath, off, "no data present for "+kind.String())
		case kind == KindInt:
			v, err = parseInt(piece, ipath, off)
		default:
			v, err = parseFloat(piece, ipath, off)
		}
		if err != nil {
			return Value{}, err
		}
		items = append(items, v)
		off += len(piece) + 1
	}
	return Value{kind: KindArray, items: items}, nil
}

// boolArray keeps every comma significant: [+,,+] is three elements and
// [] is a single false.
func (d *decoder) boolArray(content, path string, base int) (Value, error) {
	items := make([]Value, 0, strings.Count(content, ",")+1)
	off := base
	for i, piece := range strings.Split(content, ",") {
		v, err := parseBool(piece, path+"/"+strconv.Itoa(i), off)
		if err != nil {
			return Value{}, err
		}
		items = append(items, v)
		off += len(piece) + 1
	}
	return Value{kind: KindArray, items: items}, nil
}

// stringArray splits only on commas outside quotes.
func (d *decoder) stringArray(content, path string, base int) (Value, error) {
	if content == "" {
		return emptyArray(), nil
	}
	var items []Value
	err := splitTopLevel(content, base, path, func(slice string, off int) error {
		ipath := path + "/" + strconv.Itoa(len(items))
		if slice == "" {
			return newError(ErrNullField, ipath, off, "no data present for string")
		}
		s, err := d.unquote(slice, ipath, off)
		if err != nil {
			return err
		}
		items = append(items, Value{kind: KindString, strVal: s})
		return nil
	})
	if err != nil {
		return Value{}, err
	}
	return Value{kind: KindArray, items: items}, nil
}

// nestedArray splits sibling sub-arrays at bracket depth zero and decodes
// each with the grandchild shape.
func (d *decoder) nestedArray(content string, grandchild Shape, path string, base int) (Value, error) {
	if content == "" {
		return emptyArray(), nil
	}
	var items []Value
	err := splitTopLevel(content, base, path, func(slice string, off int) error {
		ipath := path + "/" + strconv.Itoa(len(items))
		if slice == "" {
			return newError(ErrNullField, ipath, off, "no data present for array")
		}
		v, err := d.array(slice, grandchild, ipath, off)
		if err != nil {
			return err
		}
		items = append(items, v)
		return nil
	})
	if err != nil {
		return Value{}, err
	}
	return Value{kind: KindArray, items: items}, nil
}

// objectArray splits sibling sub-objects at brace depth zero. Every
// element is decoded into its own Value tree; shape is only read.
func (d *decoder) objectArray(content string, shape Shape, path string, base int) (Value, error) {
	if content == "" {
		return emptyArray(), nil
	}
	var items []Value
	err := splitTopLevel(content, base, path, func(slice string, off int) error {
		ipath := path + "/" + strconv.Itoa(len(items))
		if slice == "" {
			return newError(ErrNullField, ipath, off, "no data present for object")
		}
		v, err := d.object(slice, shape, ipath, off)
		if err != nil {
			return err
		}
		items = append(items, v)
		return nil
	})
	if err != nil {
		return Value{}, err
	}
	return Value{kind: KindArray, items: items}, nil
}
