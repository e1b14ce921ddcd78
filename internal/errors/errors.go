package errors

import (
	"errors"
	"fmt"

	"github.com/mcncl/ido/codec"
)

// Standard application errors
var (
	ErrEmptyInput      = errors.New("input is empty or contains only whitespace")
	ErrInvalidJSON     = errors.New("invalid JSON format")
	ErrInvalidYAML     = errors.New("invalid YAML format")
	ErrMultipleJSON    = errors.New("multiple values found at the root, only one is allowed")
	ErrFileNotFound    = errors.New("file not found")
	ErrFileEmpty       = errors.New("file is empty")
	ErrNoInput         = errors.New("no input provided: please specify a file with -i or pipe data to stdin")
	ErrInvalidFilePath = errors.New("invalid file path")
	ErrNoShape         = errors.New("no shape provided: please pass an example document with -s")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeInput    ErrorType = "input"
	ErrorTypeParsing  ErrorType = "parsing"
	ErrorTypeAnalysis ErrorType = "analysis"
	ErrorTypeEncode   ErrorType = "encode"
	ErrorTypeDecode   ErrorType = "decode"
	ErrorTypeGenerate ErrorType = "generate"
	ErrorTypeFormat   ErrorType = "format"
	ErrorTypeOutput   ErrorType = "output"
	ErrorTypeConfig   ErrorType = "config"
	ErrorTypeUnknown  ErrorType = "unknown"
)

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *AppError of the same type.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

func newAppError(t ErrorType, message string, err error) *AppError {
	return &AppError{Type: t, Message: message, Err: err}
}

// NewInputError creates a new error related to input processing
func NewInputError(message string, err error) *AppError {
	return newAppError(ErrorTypeInput, message, err)
}

// NewParsingError creates a new error related to JSON or YAML parsing
func NewParsingError(message string, err error) *AppError {
	return newAppError(ErrorTypeParsing, message, err)
}

// NewAnalysisError creates a new error related to shape inference
func NewAnalysisError(message string, err error) *AppError {
	return newAppError(ErrorTypeAnalysis, message, err)
}

// NewEncodeError creates a new error raised while encoding values
func NewEncodeError(message string, err error) *AppError {
	return newAppError(ErrorTypeEncode, message, err)
}

// NewDecodeError creates a new error raised while decoding records
func NewDecodeError(message string, err error) *AppError {
	return newAppError(ErrorTypeDecode, message, err)
}

// NewGenerateError creates a new error related to code generation
func NewGenerateError(message string, err error) *AppError {
	return newAppError(ErrorTypeGenerate, message, err)
}

// NewFormatError creates a new error related to formatting output
func NewFormatError(message string, err error) *AppError {
	return newAppError(ErrorTypeFormat, message, err)
}

// NewOutputError creates a new error related to output processing
func NewOutputError(message string, err error) *AppError {
	return newAppError(ErrorTypeOutput, message, err)
}

// NewConfigError creates a new error related to the configuration file
func NewConfigError(message string, err error) *AppError {
	return newAppError(ErrorTypeConfig, message, err)
}

// codecHint explains a codec failure in terms of what the user can change.
func codecHint(err error) string {
	switch {
	case errors.Is(err, codec.ErrFieldCountMismatch):
		return "the record does not have as many fields as the shape; check that the shape example matches the data"
	case errors.Is(err, codec.ErrEmptyArrayUnsupported):
		return "empty arrays cannot be encoded or used to infer a shape; give every array at least one element"
	case errors.Is(err, codec.ErrNullField):
		return "null or missing values cannot be encoded; only booleans may be empty on the wire"
	case errors.Is(err, codec.ErrUnsupportedValueType):
		return "the value has a type the format cannot carry"
	case errors.Is(err, codec.ErrUnterminatedString):
		return "a string is missing its closing quote"
	case errors.Is(err, codec.ErrUnbalancedBrackets):
		return "brackets or braces do not balance"
	case errors.Is(err, codec.ErrNumericParse):
		return "a number could not be read; check the shape uses float where values have a fraction"
	case errors.Is(err, codec.ErrQuoteMismatch):
		return "a string field is not quoted, or contains an unescaped quote"
	case errors.Is(err, codec.ErrBooleanSentinel):
		return "booleans must be '+' for true or empty for false"
	}
	return ""
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		var msg string
		switch appErr.Type {
		case ErrorTypeInput:
			msg = fmt.Sprintf("Input error: %s", appErr.Message)
		case ErrorTypeParsing:
			msg = fmt.Sprintf("Parsing error: %s", appErr.Message)
		case ErrorTypeAnalysis:
			msg = fmt.Sprintf("Shape analysis error: %s", appErr.Message)
		case ErrorTypeEncode:
			msg = fmt.Sprintf("Encoding error: %s", appErr.Message)
		case ErrorTypeDecode:
			msg = fmt.Sprintf("Decoding error: %s", appErr.Message)
		case ErrorTypeGenerate:
			msg = fmt.Sprintf("Code generation error: %s", appErr.Message)
		case ErrorTypeFormat:
			msg = fmt.Sprintf("Formatting error: %s", appErr.Message)
		case ErrorTypeOutput:
			msg = fmt.Sprintf("Output error: %s", appErr.Message)
		case ErrorTypeConfig:
			msg = fmt.Sprintf("Configuration error: %s", appErr.Message)
		default:
			msg = fmt.Sprintf("Error: %s", appErr.Message)
		}
		if hint := codecHint(appErr.Err); hint != "" {
			msg += " (" + hint + ")"
		}
		return msg
	}

	if hint := codecHint(err); hint != "" {
		return fmt.Sprintf("Error: %v (%s)", err, hint)
	}

	// Handle standard errors
	if errors.Is(err, ErrEmptyInput) {
		return "Error: The input is empty. Please provide a JSON or YAML document."
	}
	if errors.Is(err, ErrInvalidJSON) {
		return "Error: The input contains invalid JSON. Please check your JSON syntax."
	}
	if errors.Is(err, ErrInvalidYAML) {
		return "Error: The input contains invalid YAML. Please check your YAML syntax."
	}
	if errors.Is(err, ErrMultipleJSON) {
		return "Error: Multiple values found. Please provide a single object or array."
	}
	if errors.Is(err, ErrFileNotFound) {
		return "Error: The specified file could not be found. Please check the file path."
	}
	if errors.Is(err, ErrFileEmpty) {
		return "Error: The specified file is empty. Please provide a file with content."
	}
	if errors.Is(err, ErrNoInput) {
		return "Error: No input provided. Please specify a file with -i or pipe data to stdin."
	}
	if errors.Is(err, ErrInvalidFilePath) {
		return "Error: Invalid file path. Please provide a valid file path."
	}
	if errors.Is(err, ErrNoShape) {
		return "Error: No shape provided. Please pass an example document with -s."
	}

	// Generic error message for unknown errors
	return fmt.Sprintf("Error: %v", err)
}
