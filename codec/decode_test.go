package codec

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertValue(t *testing.T, want, got Value) {
	t.Helper()
	assert.Truef(t, want.Equal(got), "want %s\ngot  %s", want, got)
}

func heroShape() Shape {
	return ObjectShape(
		SF("homeTown", StringShape()),
		SF("formed", IntShape()),
		SF("active", BoolShape()),
		SF("secret", BoolShape()),
		SF("score", FloatShape()),
	)
}

func TestDecode_Object(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		shape    Shape
		expected Value
	}{
		{
			name:  "scalars",
			text:  `{"Metro City",2016,+,,1.5}`,
			shape: heroShape(),
			expected: Obj(
				F("homeTown", Str("Metro City")),
				F("formed", Int(2016)),
				F("active", Bool(true)),
				F("secret", Bool(false)),
				F("score", Float(1.5)),
			),
		},
		{
			name:     "string with comma and escaped quote",
			text:     `{"a,b\"c",5}`,
			shape:    ObjectShape(SF("s", StringShape()), SF("n", IntShape())),
			expected: Obj(F("s", Str(`a,b"c`)), F("n", Int(5))),
		},
		{
			name:     "string with brackets",
			text:     `{"[{",7}`,
			shape:    ObjectShape(SF("s", StringShape()), SF("n", IntShape())),
			expected: Obj(F("s", Str("[{")), F("n", Int(7))),
		},
		{
			name:     "last field is false",
			text:     `{"a",}`,
			shape:    ObjectShape(SF("s", StringShape()), SF("b", BoolShape())),
			expected: Obj(F("s", Str("a")), F("b", Bool(false))),
		},
		{
			name:     "single false field",
			text:     `{}`,
			shape:    ObjectShape(SF("b", BoolShape())),
			expected: Obj(F("b", Bool(false))),
		},
		{
			name:     "all false",
			text:     `{,,}`,
			shape:    ObjectShape(SF("a", BoolShape()), SF("b", BoolShape()), SF("c", BoolShape())),
			expected: Obj(F("a", Bool(false)), F("b", Bool(false)), F("c", Bool(false))),
		},
		{
			name:     "empty object",
			text:     `{}`,
			shape:    ObjectShape(),
			expected: Obj(),
		},
		{
			name: "nested object as last field",
			text: `{7,{"Gotham",1.25}}`,
			shape: ObjectShape(
				SF("id", IntShape()),
				SF("bank", ObjectShape(SF("location", StringShape()), SF("money", FloatShape()))),
			),
			expected: Obj(
				F("id", Int(7)),
				F("bank", Obj(F("location", Str("Gotham")), F("money", Float(1.25)))),
			),
		},
		{
			name: "array fields",
			text: `{["a","b"],[1,2],"end"}`,
			shape: ObjectShape(
				SF("names", ArrayShape(StringShape())),
				SF("ids", ArrayShape(IntShape())),
				SF("tail", StringShape()),
			),
			expected: Obj(
				F("names", Arr(Str("a"), Str("b"))),
				F("ids", Arr(Int(1), Int(2))),
				F("tail", Str("end")),
			),
		},
		{
			name:     "multi-character final token",
			text:     `{1,123456}`,
			shape:    ObjectShape(SF("a", IntShape()), SF("b", IntShape())),
			expected: Obj(F("a", Int(1)), F("b", Int(123456))),
		},
		{
			name:     "negative and exponent numbers",
			text:     `{-42,-1.5e-3}`,
			shape:    ObjectShape(SF("i", IntShape()), SF("f", FloatShape())),
			expected: Obj(F("i", Int(-42)), F("f", Float(-1.5e-3))),
		},
		{
			name:     "signed exponents as encoded",
			text:     `{1e+21,2E-07}`,
			shape:    ObjectShape(SF("a", FloatShape()), SF("b", FloatShape())),
			expected: Obj(F("a", Float(1e21)), F("b", Float(2e-7))),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Decode(tt.text, tt.shape)
			require.NoError(t, err)
			assertValue(t, tt.expected, result)
		})
	}
}

func TestDecode_RawStrings(t *testing.T) {
	shape := ObjectShape(SF("s", StringShape()), SF("n", IntShape()))

	result, err := DecodeWithOptions(`{"a,b\"c\\d",5}`, shape, DecodeOptions{RawStrings: true})
	require.NoError(t, err)
	s, _ := result.Get("s")
	assert.Equal(t, `a,b\"c\\d`, s.Str())

	result, err = Decode(`{"a,b\"c\\d",5}`, shape)
	require.NoError(t, err)
	s, _ = result.Get("s")
	assert.Equal(t, `a,b"c\d`, s.Str())
}

func TestDecode_Errors(t *testing.T) {
	pair := ObjectShape(SF("a", IntShape()), SF("b", IntShape()))

	tests := []struct {
		name  string
		text  string
		shape Shape
		kind  error
		path  string
	}{
		{name: "too few fields", text: `{"Metro City",2016}`, shape: heroShape(), kind: ErrFieldCountMismatch},
		{name: "too many fields", text: `{"Metro City",2016,+,,1.5,7}`, shape: heroShape(), kind: ErrFieldCountMismatch},
		{name: "data for an empty shape", text: `{5}`, shape: ObjectShape(), kind: ErrFieldCountMismatch},
		{name: "empty text for two fields", text: `{}`, shape: pair, kind: ErrNullField, path: "/a"},
		{name: "missing closing brace", text: `{1,2`, shape: pair, kind: ErrUnbalancedBrackets},
		{name: "missing opening brace", text: `1,2}`, shape: pair, kind: ErrUnbalancedBrackets},
		{name: "empty text", text: ``, shape: pair, kind: ErrUnbalancedBrackets},
		{name: "unclosed nested array", text: `{[1,2,3}`, shape: ObjectShape(SF("a", ArrayShape(IntShape()))), kind: ErrUnbalancedBrackets},
		{name: "stray closing bracket", text: `{1],2}`, shape: pair, kind: ErrUnbalancedBrackets},
		{name: "crossed brackets", text: `{[{]},2}`, shape: pair, kind: ErrUnbalancedBrackets},
		{name: "unterminated string", text: `{"abc,1}`, shape: ObjectShape(SF("s", StringShape()), SF("n", IntShape())), kind: ErrUnterminatedString},
		{name: "dangling escape", text: `{1,\}`, shape: pair, kind: ErrUnterminatedString},
		{name: "bad integer", text: `{1,x}`, shape: pair, kind: ErrNumericParse, path: "/b"},
		{name: "float for integer", text: `{1,2.5}`, shape: pair, kind: ErrNumericParse, path: "/b"},
		{name: "bad float", text: `{1.2.3}`, shape: ObjectShape(SF("f", FloatShape())), kind: ErrNumericParse, path: "/f"},
		{name: "NaN float", text: `{NaN}`, shape: ObjectShape(SF("f", FloatShape())), kind: ErrNumericParse, path: "/f"},
		{name: "infinite float", text: `{Inf}`, shape: ObjectShape(SF("f", FloatShape())), kind: ErrNumericParse, path: "/f"},
		{name: "negative infinite float", text: `{-Inf}`, shape: ObjectShape(SF("f", FloatShape())), kind: ErrNumericParse, path: "/f"},
		{name: "hex float", text: `{0x1p-2}`, shape: ObjectShape(SF("f", FloatShape())), kind: ErrNumericParse, path: "/f"},
		{name: "underscore float", text: `{1_0}`, shape: ObjectShape(SF("f", FloatShape())), kind: ErrNumericParse, path: "/f"},
		{name: "overflowing float", text: `{1e999}`, shape: ObjectShape(SF("f", FloatShape())), kind: ErrNumericParse, path: "/f"},
		{name: "float with leading plus", text: `{+1.5}`, shape: ObjectShape(SF("f", FloatShape())), kind: ErrNumericParse, path: "/f"},
		{name: "float with exponent sign only", text: `{1e+}`, shape: ObjectShape(SF("f", FloatShape())), kind: ErrNumericParse, path: "/f"},
		{name: "integer with leading plus", text: `{1,+5}`, shape: pair, kind: ErrNumericParse, path: "/b"},
		{name: "underscore integer", text: `{1_0,5}`, shape: pair, kind: ErrNumericParse, path: "/a"},
		{name: "unquoted string", text: `{abc}`, shape: ObjectShape(SF("s", StringShape())), kind: ErrQuoteMismatch, path: "/s"},
		{name: "unescaped inner quote", text: `{"a"b"c"}`, shape: ObjectShape(SF("s", StringShape())), kind: ErrQuoteMismatch, path: "/s"},
		{name: "bad boolean", text: `{-}`, shape: ObjectShape(SF("b", BoolShape())), kind: ErrBooleanSentinel, path: "/b"},
		{name: "true spelled out", text: `{true}`, shape: ObjectShape(SF("b", BoolShape())), kind: ErrBooleanSentinel, path: "/b"},
		{name: "empty integer", text: `{,5}`, shape: pair, kind: ErrNullField, path: "/a"},
		{name: "empty string field", text: `{1,}`, shape: ObjectShape(SF("n", IntShape()), SF("s", StringShape())), kind: ErrNullField, path: "/s"},
		{name: "zero shape field", text: `{1}`, shape: ObjectShape(SF("x", Shape{})), kind: ErrUnsupportedValueType, path: "/x"},
		{name: "scalar top-level shape", text: `1`, shape: IntShape(), kind: ErrUnsupportedValueType},
		{name: "nested field count", text: `{1,{2}}`, shape: ObjectShape(SF("a", IntShape()), SF("o", pair)), kind: ErrFieldCountMismatch, path: "/o"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Decode(tt.text, tt.shape)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
			assert.True(t, result.IsZero(), "no partial value on failure")

			ce, ok := AsError(err)
			require.True(t, ok)
			assert.Equal(t, tt.path, ce.Path)
		})
	}
}

func TestDecode_ErrorOffset(t *testing.T) {
	shape := ObjectShape(
		SF("a", StringShape()),
		SF("b", ObjectShape(SF("c", StringShape()), SF("d", IntShape()))),
	)
	_, err := Decode(`{"x",{"y",zz}}`, shape)
	require.Error(t, err)

	ce, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, "/b/d", ce.Path)
	assert.Equal(t, 10, ce.Offset)

	var numErr *strconv.NumError
	assert.ErrorAs(t, err, &numErr, "the strconv cause stays reachable")
	assert.Contains(t, err.Error(), "/b/d")
}
