package models

import "strconv"

// JSONValue is any decoded document value: string, Number, bool, nil,
// JSONObject or JSONArray.
type JSONValue interface{}

// Number is a numeric literal kept as written in the source document, so
// that 2 and 2.0 can still be told apart.
type Number string

// IsInteger reports whether the literal has no fraction or exponent.
func (n Number) IsInteger() bool {
	if n == "" {
		return false
	}
	for i := 0; i < len(n); i++ {
		switch n[i] {
		case '.', 'e', 'E':
			return false
		}
	}
	_, err := strconv.ParseInt(string(n), 10, 64)
	return err == nil
}

// Int64 returns the number as an int64.
func (n Number) Int64() (int64, error) {
	return strconv.ParseInt(string(n), 10, 64)
}

// Float64 returns the number as a float64.
func (n Number) Float64() (float64, error) {
	return strconv.ParseFloat(string(n), 64)
}

// JSONMember is one key/value pair of an object.
type JSONMember struct {
	Key   string
	Value JSONValue
}

// JSONObject is an object with its members in document order.
type JSONObject []JSONMember

// Get returns the value of the first member named key.
func (o JSONObject) Get(key string) (JSONValue, bool) {
	for _, m := range o {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// Keys returns the member names in document order.
func (o JSONObject) Keys() []string {
	keys := make([]string, len(o))
	for i, m := range o {
		keys[i] = m.Key
	}
	return keys
}

// JSONArray represents an array of JSONValues.
type JSONArray []JSONValue

// IntermediateRepresentation holds a parsed document for the analyzer.
type IntermediateRepresentation struct {
	Root        JSONValue
	RootIsArray bool // True if the root of the document is an array vs an object
}

// TypeKind is the Go type family of a generated field.
type TypeKind int

const (
	Int TypeKind = iota
	Float
	String
	Bool
	Struct
	Slice
)

// TypeInfo describes the Go type of a generated field.
type TypeInfo struct {
	Kind             TypeKind
	Name             string    // Go spelling, e.g. int64 or []Member
	StructName       string    // For Struct kinds
	SliceElementType *TypeInfo // For Slice kinds
}

// FieldInfo is one field of a generated struct.
type FieldInfo struct {
	Key     string // Name in the shape
	GoName  string
	GoType  TypeInfo
	Tag     string // Full struct tag including backquotes
	Comment string // Written above the field when set
}

// StructDef is a generated struct. Fields keep shape order, which is the
// order values are written on the wire.
type StructDef struct {
	Name   string
	Fields []FieldInfo
	IsRoot bool
}

// AnalysisResult is everything the generator needs to emit a file.
type AnalysisResult struct {
	Structs []StructDef
	// RootName and RootSlice are set when the document root is an array:
	// the generator then emits a named slice type for it.
	RootName  string
	RootSlice *TypeInfo
}
