package codec

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package matches exactly one of
// these with errors.Is.
var (
	ErrEmptyArrayUnsupported = errors.New("empty array unsupported")
	ErrUnsupportedValueType  = errors.New("unsupported value type")
	ErrFieldCountMismatch    = errors.New("field count mismatch")
	ErrUnterminatedString    = errors.New("unterminated string")
	ErrUnbalancedBrackets    = errors.New("unbalanced brackets")
	ErrNumericParse          = errors.New("numeric parse error")
	ErrQuoteMismatch         = errors.New("quote mismatch")
	ErrBooleanSentinel       = errors.New("invalid boolean sentinel")
	ErrNullField             = errors.New("null field")
)

// Error describes a failed encode or decode.
type Error struct {
	Kind   error  // One of the Err* sentinels above.
	Path   string // Location such as /members/0/name; empty for the root.
	Offset int    // Byte offset into the decoded text, -1 when not applicable.
	Msg    string
	Err    error // Optional underlying cause.
}

func newError(kind error, path string, offset int, msg string) *Error {
	return &Error{Kind: kind, Path: path, Offset: offset, Msg: msg}
}

func (e *Error) Error() string {
	loc := e.Path
	if loc == "" {
		loc = "/"
	}
	s := fmt.Sprintf("ido: %v at %s", e.Kind, loc)
	if e.Offset >= 0 {
		s += fmt.Sprintf(" (offset %d)", e.Offset)
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// AsError extracts an *Error from err.
func AsError(err error) (*Error, bool) {
	var ce *Error
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
