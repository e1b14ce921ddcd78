package codec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeOf(t *testing.T) {
	tests := []struct {
		name     string
		value    Value
		expected string
	}{
		{name: "scalars", value: Obj(F("a", Int(1)), F("b", Float(1)), F("c", Str("")), F("d", Bool(false))), expected: "{a:int,b:float,c:string,d:bool}"},
		{name: "array element from first item", value: Arr(Arr(Str("x"))), expected: "[[string]]"},
		{name: "object array", value: Arr(Obj(F("id", Int(1)))), expected: "[{id:int}]"},
		{name: "empty object", value: Obj(), expected: "{}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shape, err := ShapeOf(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, shape.String())
		})
	}
}

func TestShapeOf_Errors(t *testing.T) {
	_, err := ShapeOf(Obj(F("tags", Arr())))
	assert.ErrorIs(t, err, ErrEmptyArrayUnsupported)
	ce, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, "/tags", ce.Path)

	_, err = ShapeOf(Arr(Obj(F("x", Value{}))))
	assert.ErrorIs(t, err, ErrNullField)
}

func TestShape_Equal(t *testing.T) {
	a := ObjectShape(SF("id", IntShape()), SF("tags", ArrayShape(StringShape())))
	b := ObjectShape(SF("id", IntShape()), SF("tags", ArrayShape(StringShape())))
	c := ObjectShape(SF("tags", ArrayShape(StringShape())), SF("id", IntShape()))

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c), "field order is part of the shape")
	assert.False(t, ArrayShape(IntShape()).Equal(ArrayShape(FloatShape())))
	assert.Equal(t, 2, a.NumFields())
	assert.Equal(t, "tags", a.Field(1).Name)
	assert.Equal(t, KindString, a.Field(1).Shape.Elem().Kind())
}

func TestError_Format(t *testing.T) {
	err := newError(ErrFieldCountMismatch, "/members/2", 14, "got 3 fields, want 4")
	assert.Equal(t, "ido: field count mismatch at /members/2 (offset 14): got 3 fields, want 4", err.Error())
	assert.True(t, errors.Is(err, ErrFieldCountMismatch))
	assert.False(t, errors.Is(err, ErrNullField))

	_, ok := AsError(errors.New("plain"))
	assert.False(t, ok)
}
