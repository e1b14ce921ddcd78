package analyzer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/mcncl/ido/codec"
	"github.com/mcncl/ido/internal/config"
	"github.com/mcncl/ido/internal/errors"
	"github.com/mcncl/ido/internal/models"
)

// DefaultRootName is the default name for the root struct if not specified.
const DefaultRootName = "RootType"

// Analyzer infers shapes from example documents, converts documents into
// codec values and lays out Go struct definitions for a shape.
type Analyzer struct {
	// structNames tracks generated struct names to avoid collisions
	structNames map[string]int
	// analysisResult holds discovered structs
	analysisResult models.AnalysisResult
	config         *config.Config
}

// NewAnalyzer creates a new Analyzer instance.
func NewAnalyzer() *Analyzer {
	return NewAnalyzerWithConfig(config.NewConfig())
}

// NewAnalyzerWithConfig creates a new Analyzer instance with custom configuration.
func NewAnalyzerWithConfig(cfg *config.Config) *Analyzer {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &Analyzer{
		structNames: make(map[string]int),
		config:      cfg,
	}
}

// Analyze lays out the Go types that mirror shape. Nested objects become
// named structs, arrays become slices and equivalent structs are shared.
// For an array shape the result carries a named slice type instead of a
// root struct.
func (a *Analyzer) Analyze(shape codec.Shape, rootStructName string) (models.AnalysisResult, error) {
	a.structNames = make(map[string]int)
	a.analysisResult = models.AnalysisResult{Structs: make([]models.StructDef, 0)}

	if rootStructName == "" {
		rootStructName = DefaultRootName
	}
	rootStructName = exportedName(a.getFieldName(rootStructName))

	switch shape.Kind() {
	case codec.KindObject:
		a.structNames[rootStructName]++
		def, err := a.structDef(shape, rootStructName, "")
		if err != nil {
			return models.AnalysisResult{}, err
		}
		def.Name = rootStructName
		def.IsRoot = true
		a.analysisResult.Structs = append(a.analysisResult.Structs, def)
	case codec.KindArray:
		a.structNames[rootStructName]++
		elemName := singularize(rootStructName)
		if elemName == rootStructName {
			elemName += "Item"
		}
		elem, err := a.typeOf(shape.Elem(), elemName, "/0")
		if err != nil {
			return models.AnalysisResult{}, err
		}
		a.analysisResult.RootName = rootStructName
		a.analysisResult.RootSlice = &models.TypeInfo{
			Kind:             models.Slice,
			Name:             "[]" + elem.Name,
			SliceElementType: &elem,
		}
	default:
		return models.AnalysisResult{}, errors.NewAnalysisError(
			fmt.Sprintf("cannot generate types for a %s root, want an object or array", shape.Kind()),
			codec.ErrUnsupportedValueType,
		)
	}

	return a.analysisResult, nil
}

func (a *Analyzer) typeOf(s codec.Shape, suggestedName, path string) (models.TypeInfo, error) {
	switch s.Kind() {
	case codec.KindInt:
		return models.TypeInfo{Kind: models.Int, Name: "int64"}, nil
	case codec.KindFloat:
		return models.TypeInfo{Kind: models.Float, Name: "float64"}, nil
	case codec.KindString:
		return models.TypeInfo{Kind: models.String, Name: "string"}, nil
	case codec.KindBool:
		return models.TypeInfo{Kind: models.Bool, Name: "bool"}, nil
	case codec.KindObject:
		def, err := a.structDef(s, suggestedName, path)
		if err != nil {
			return models.TypeInfo{}, err
		}
		return a.findOrAddStructDef(def, suggestedName), nil
	case codec.KindArray:
		elem, err := a.typeOf(s.Elem(), singularize(suggestedName), path+"/0")
		if err != nil {
			return models.TypeInfo{}, err
		}
		return models.TypeInfo{Kind: models.Slice, Name: "[]" + elem.Name, SliceElementType: &elem}, nil
	default:
		return models.TypeInfo{}, errors.NewAnalysisError(
			fmt.Sprintf("invalid shape at %s", displayPath(path)),
			codec.ErrUnsupportedValueType,
		)
	}
}

// structDef builds the fields of an object shape in wire order. Nested
// structs are registered before their parent.
func (a *Analyzer) structDef(s codec.Shape, structName, path string) (models.StructDef, error) {
	def := models.StructDef{Name: structName, Fields: make([]models.FieldInfo, 0, s.NumFields())}
	used := make(map[string]int, s.NumFields())
	for _, sf := range s.Fields() {
		goName := exportedName(a.getFieldName(sf.Name))
		if n := used[goName]; n > 0 {
			used[goName] = n + 1
			goName = fmt.Sprintf("%s%d", goName, n+1)
		} else {
			used[goName] = 1
		}

		fieldPath := path + "/" + sf.Name
		fieldType, err := a.typeOf(sf.Shape, structName+goName, fieldPath)
		if err != nil {
			return models.StructDef{}, err
		}
		var comment string
		if fieldType.Kind == models.Int || fieldType.Kind == models.Float {
			if mapping, found := a.checkTypeMapping(fieldPath); found {
				comment = mapping.Comment
			}
		}
		def.Fields = append(def.Fields, models.FieldInfo{
			Key:     sf.Name,
			GoName:  goName,
			GoType:  fieldType,
			Tag:     fieldTag(sf.Name),
			Comment: comment,
		})
	}
	return def, nil
}

// fieldTag writes the ido and json tags for a document key. Keys holding a
// backquote force an interpreted string literal.
func fieldTag(key string) string {
	var tag string
	if key == "-" {
		tag = `json:"-,"`
	} else {
		tag = "ido:" + strconv.Quote(key) + " json:" + strconv.Quote(key)
	}
	if strings.ContainsRune(tag, '`') {
		return strconv.Quote(tag)
	}
	return "`" + tag + "`"
}

// exportedName turns a converted key into an exported Go identifier.
func exportedName(name string) string {
	r := []rune(strings.TrimLeft(strings.Map(func(r rune) rune {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, name), "_"))
	switch {
	case len(r) == 0:
		return "Field"
	case unicode.IsDigit(r[0]):
		return "F" + string(r)
	}
	r[0] = unicode.ToUpper(r[0])
	if !unicode.IsUpper(r[0]) {
		return "X" + string(r)
	}
	return string(r)
}

// generateUniqueStructName ensures that the struct name is unique by appending a number if needed.
func (a *Analyzer) generateUniqueStructName(baseName string) string {
	name := baseName
	count := a.structNames[baseName]
	if count > 0 {
		name = fmt.Sprintf("%s%d", baseName, count)
	}
	a.structNames[baseName] = count + 1
	return name
}

// getFieldName returns the Go field name for a document key using configuration
func (a *Analyzer) getFieldName(key string) string {
	return a.config.GetFieldName(key)
}

// checkTypeMapping checks if a field path matches any configured type mappings
func (a *Analyzer) checkTypeMapping(path string) (config.TypeMapping, bool) {
	return a.config.FindTypeMapping(path)
}

// singularize attempts to convert a plural name to a singular one.
var knownSingulars = map[string]string{
	"series":    "series",
	"status":    "status",
	"analysis":  "analysis",
	"species":   "species",
	"news":      "news",
	"goods":     "goods",
	"children":  "child",
	"people":    "person",
	"men":       "man",
	"women":     "woman",
	"teeth":     "tooth",
	"feet":      "foot",
	"mice":      "mouse",
	"geese":     "goose",
	"data":      "data",
	"media":     "media",
	"addresses": "address",
}

func singularize(plural string) string {
	if singular, ok := knownSingulars[strings.ToLower(plural)]; ok {
		// Preserve original casing if the first letter was capitalized
		if len(plural) > 0 && strings.ToUpper(string(plural[0])) == string(plural[0]) {
			return strings.ToUpper(string(singular[0])) + singular[1:]
		}
		return singular
	}

	lowerPlural := strings.ToLower(plural)

	if strings.HasSuffix(lowerPlural, "ies") && len(lowerPlural) > 3 {
		return plural[:len(plural)-3] + "y"
	}

	// Avoid removing 's' from words like 'bus', 'gas', 'class', 'address'
	if strings.HasSuffix(lowerPlural, "ss") ||
		strings.HasSuffix(lowerPlural, "us") ||
		strings.HasSuffix(lowerPlural, "is") {
		return plural
	}

	if strings.HasSuffix(lowerPlural, "s") && len(lowerPlural) > 1 {
		return plural[:len(plural)-1]
	}

	return plural
}

func areTypeInfosEqual(t1, t2 *models.TypeInfo) bool {
	if t1 == nil || t2 == nil {
		return t1 == t2
	}
	if t1.Kind != t2.Kind || t1.Name != t2.Name || t1.StructName != t2.StructName {
		return false
	}
	if t1.Kind == models.Slice {
		return areTypeInfosEqual(t1.SliceElementType, t2.SliceElementType)
	}
	return true
}

// areStructDefsEquivalent compares two StructDefs field by field. Order
// matters because it is the wire order.
func areStructDefsEquivalent(s1, s2 *models.StructDef) bool {
	if s1 == nil || s2 == nil {
		return s1 == s2
	}
	if len(s1.Fields) != len(s2.Fields) {
		return false
	}
	for i := range s1.Fields {
		f1, f2 := s1.Fields[i], s2.Fields[i]
		if f1.Key != f2.Key || f1.GoName != f2.GoName || f1.Tag != f2.Tag || !areTypeInfosEqual(&f1.GoType, &f2.GoType) {
			return false
		}
	}
	return true
}

// findOrAddStructDef returns the TypeInfo of an existing equivalent struct,
// or names the candidate uniquely and records it.
func (a *Analyzer) findOrAddStructDef(candidate models.StructDef, suggestedName string) models.TypeInfo {
	for _, existing := range a.analysisResult.Structs {
		if areStructDefsEquivalent(&candidate, &existing) {
			return models.TypeInfo{Kind: models.Struct, Name: existing.Name, StructName: existing.Name}
		}
	}

	candidate.Name = a.generateUniqueStructName(suggestedName)
	candidate.IsRoot = false
	a.analysisResult.Structs = append(a.analysisResult.Structs, candidate)

	return models.TypeInfo{Kind: models.Struct, Name: candidate.Name, StructName: candidate.Name}
}
