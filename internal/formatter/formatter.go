package formatter

import (
	"go/format"
	"strings"

	"github.com/mcncl/ido/internal/errors"
)

// Formatter formats generated Go code and renders decoded records for
// display.
type Formatter struct{}

// NewFormatter creates a new Formatter instance
func NewFormatter() *Formatter {
	return &Formatter{}
}

// Format takes Go code as a string and returns properly formatted Go code
func (f *Formatter) Format(code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", nil
	}

	formatted, err := format.Source([]byte(code))
	if err != nil {
		return "", errors.NewFormatError("failed to parse Go code", err)
	}
	return string(formatted), nil
}
