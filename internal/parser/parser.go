package parser

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/mcncl/ido/internal/errors"
	"github.com/mcncl/ido/internal/models"
)

// Format is the syntax of an input document.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

// FormatForPath picks the document format from a file extension.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Parse converts JSON data from an io.Reader into an IntermediateRepresentation.
// Object members keep their document order.
func Parse(reader io.Reader) (models.IntermediateRepresentation, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return models.IntermediateRepresentation{}, errors.NewInputError("failed to read input", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return models.IntermediateRepresentation{}, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	root, err := readJSON(dec)
	if err != nil {
		return models.IntermediateRepresentation{}, jsonError(unexpectedEOF(err))
	}

	// Only whitespace may follow the first value.
	if _, err := dec.Token(); err == nil {
		return models.IntermediateRepresentation{}, errors.NewParsingError("multiple JSON values found at the root", errors.ErrMultipleJSON)
	} else if !stderrors.Is(err, io.EOF) {
		return models.IntermediateRepresentation{}, errors.NewParsingError(fmt.Sprintf("invalid trailing data after first JSON value: %v", err), errors.ErrInvalidJSON)
	}

	// The token stream tolerates missing separators, so check the syntax
	// strictly as well.
	if !json.Valid(data) {
		return models.IntermediateRepresentation{}, errors.NewParsingError("malformed JSON", errors.ErrInvalidJSON)
	}

	return newIR(root), nil
}

func newIR(root models.JSONValue) models.IntermediateRepresentation {
	_, isArray := root.(models.JSONArray)
	return models.IntermediateRepresentation{Root: root, RootIsArray: isArray}
}

func jsonError(err error) error {
	var syntaxError *json.SyntaxError
	if stderrors.As(err, &syntaxError) {
		return errors.NewParsingError(
			fmt.Sprintf("JSON syntax error at offset %d", syntaxError.Offset),
			errors.ErrInvalidJSON,
		)
	}
	if stderrors.Is(err, io.ErrUnexpectedEOF) {
		return errors.NewParsingError("unexpected end of JSON input", errors.ErrInvalidJSON)
	}
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return errors.NewParsingError(fmt.Sprintf("failed to decode JSON: %v", err), errors.ErrInvalidJSON)
}

// unexpectedEOF reports an end of input inside a value as truncation.
func unexpectedEOF(err error) error {
	if stderrors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// readJSON reads one value from the token stream. Objects are collected
// member by member so that key order survives.
func readJSON(dec *json.Decoder) (models.JSONValue, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			obj := models.JSONObject{}
			seen := make(map[string]struct{})
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, unexpectedEOF(err)
				}
				key, ok := kt.(string)
				if !ok {
					return nil, errors.NewParsingError(fmt.Sprintf("expected object key, got %v", kt), errors.ErrInvalidJSON)
				}
				if _, dup := seen[key]; dup {
					return nil, errors.NewParsingError(fmt.Sprintf("duplicate key %q", key), errors.ErrInvalidJSON)
				}
				seen[key] = struct{}{}
				val, err := readJSON(dec)
				if err != nil {
					return nil, unexpectedEOF(err)
				}
				obj = append(obj, models.JSONMember{Key: key, Value: val})
			}
			if _, err := dec.Token(); err != nil {
				return nil, unexpectedEOF(err)
			}
			return obj, nil
		case '[':
			arr := models.JSONArray{}
			for dec.More() {
				val, err := readJSON(dec)
				if err != nil {
					return nil, unexpectedEOF(err)
				}
				arr = append(arr, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, unexpectedEOF(err)
			}
			return arr, nil
		default:
			return nil, errors.NewParsingError(fmt.Sprintf("unexpected %q", rune(v)), errors.ErrInvalidJSON)
		}
	case json.Number:
		// The literal may share the decoder's buffer.
		return models.Number(strings.Clone(string(v))), nil
	case float64:
		return models.Number(strconv.FormatFloat(v, 'g', -1, 64)), nil
	case string, bool, nil:
		return v, nil
	default:
		return nil, errors.NewParsingError(fmt.Sprintf("unexpected token %T", tok), errors.ErrInvalidJSON)
	}
}

// ParseYAML converts a single YAML document into an IntermediateRepresentation.
// Mapping keys keep their document order.
func ParseYAML(reader io.Reader) (models.IntermediateRepresentation, error) {
	dec := yaml.NewDecoder(reader)

	var doc yaml.Node
	if err := dec.Decode(&doc); err != nil {
		if stderrors.Is(err, io.EOF) {
			return models.IntermediateRepresentation{}, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
		}
		return models.IntermediateRepresentation{}, errors.NewParsingError(err.Error(), errors.ErrInvalidYAML)
	}

	var next yaml.Node
	if err := dec.Decode(&next); err == nil {
		return models.IntermediateRepresentation{}, errors.NewParsingError("multiple YAML documents found", errors.ErrMultipleJSON)
	} else if !stderrors.Is(err, io.EOF) {
		return models.IntermediateRepresentation{}, errors.NewParsingError("invalid trailing YAML document", errors.ErrInvalidYAML)
	}

	node := &doc
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return models.IntermediateRepresentation{}, errors.NewParsingError("YAML document is empty", errors.ErrEmptyInput)
		}
		node = node.Content[0]
	}

	root, err := fromYAML(node)
	if err != nil {
		return models.IntermediateRepresentation{}, err
	}
	return newIR(root), nil
}

func fromYAML(n *yaml.Node) (models.JSONValue, error) {
	switch n.Kind {
	case yaml.MappingNode:
		obj := make(models.JSONObject, 0, len(n.Content)/2)
		seen := make(map[string]struct{}, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			if _, dup := seen[key]; dup {
				return nil, errors.NewParsingError(fmt.Sprintf("duplicate key %q at line %d", key, n.Content[i].Line), errors.ErrInvalidYAML)
			}
			seen[key] = struct{}{}
			val, err := fromYAML(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			obj = append(obj, models.JSONMember{Key: key, Value: val})
		}
		return obj, nil
	case yaml.SequenceNode:
		arr := make(models.JSONArray, 0, len(n.Content))
		for _, c := range n.Content {
			val, err := fromYAML(c)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		return arr, nil
	case yaml.AliasNode:
		return fromYAML(n.Alias)
	case yaml.ScalarNode:
		return yamlScalar(n)
	default:
		return nil, errors.NewParsingError(fmt.Sprintf("unsupported YAML node at line %d", n.Line), errors.ErrInvalidYAML)
	}
}

func yamlScalar(n *yaml.Node) (models.JSONValue, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, errors.NewParsingError(fmt.Sprintf("invalid boolean at line %d", n.Line), errors.ErrInvalidYAML)
		}
		return b, nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, errors.NewParsingError(fmt.Sprintf("invalid integer at line %d", n.Line), errors.ErrInvalidYAML)
		}
		return models.Number(strconv.FormatInt(i, 10)), nil
	case "!!float":
		lit := n.Value
		if _, err := strconv.ParseFloat(lit, 64); err != nil {
			var f float64
			if err := n.Decode(&f); err != nil {
				return nil, errors.NewParsingError(fmt.Sprintf("invalid float at line %d", n.Line), errors.ErrInvalidYAML)
			}
			lit = strconv.FormatFloat(f, 'g', -1, 64)
		}
		// The tag says float, so 2.0 must not turn into an integer.
		if models.Number(lit).IsInteger() {
			lit += ".0"
		}
		return models.Number(lit), nil
	default:
		return n.Value, nil
	}
}

// ParseFormat parses a document in the given format.
func ParseFormat(reader io.Reader, format Format) (models.IntermediateRepresentation, error) {
	if format == FormatYAML {
		return ParseYAML(reader)
	}
	return Parse(reader)
}

// ParseString parses JSON from a string
func ParseString(jsonString string) (models.IntermediateRepresentation, error) {
	if strings.TrimSpace(jsonString) == "" {
		return models.IntermediateRepresentation{}, errors.NewInputError("input string is empty", errors.ErrEmptyInput)
	}
	return Parse(strings.NewReader(jsonString))
}

// ParseFile parses a JSON or YAML file, chosen by its extension.
func ParseFile(filePath string) (models.IntermediateRepresentation, error) {
	if strings.TrimSpace(filePath) == "" {
		return models.IntermediateRepresentation{}, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return models.IntermediateRepresentation{}, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return models.IntermediateRepresentation{}, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing file: %v\n", err)
		}
	}()

	stat, err := file.Stat()
	if err != nil {
		return models.IntermediateRepresentation{}, errors.NewInputError(
			fmt.Sprintf("failed to get file stats for '%s'", filePath),
			err,
		)
	}
	if stat.Size() == 0 {
		return models.IntermediateRepresentation{}, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}

	return ParseFormat(file, FormatForPath(filePath))
}
