package generator

import (
	"bytes"
	"fmt"
	"go/token"
	"sort"

	"github.com/mcncl/ido/internal/errors"
	"github.com/mcncl/ido/internal/models"
)

// Header marks generated files so tools and reviewers skip them.
const Header = "// Code generated by ido gen. DO NOT EDIT.\n"

// Generator is responsible for generating Go type definitions from analysis results
type Generator struct{}

// NewGenerator creates a new Generator instance
func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateStructs generates Go type definitions from the analysis result.
// Fields keep their wire order: reordering them would change the positional
// layout the ido tags describe.
func (g *Generator) GenerateStructs(result models.AnalysisResult, packageName string) (string, error) {
	if packageName == "" {
		packageName = "main"
	}
	if !token.IsIdentifier(packageName) {
		return "", errors.NewGenerateError(fmt.Sprintf("'%s' is not a valid package name", packageName), nil)
	}

	var buf bytes.Buffer
	buf.WriteString(Header)
	buf.WriteString(fmt.Sprintf("\npackage %s\n", packageName))

	if result.RootSlice != nil {
		if result.RootName == "" {
			return "", errors.NewGenerateError("root slice type has no name", nil)
		}
		buf.WriteString(fmt.Sprintf("\ntype %s %s\n", result.RootName, getTypeString(*result.RootSlice)))
	}

	for _, structDef := range sortStructs(result.Structs) {
		buf.WriteString("\n")
		buf.WriteString(fmt.Sprintf("type %s struct {\n", structDef.Name))

		// Calculate the maximum width for field names and types for proper alignment
		maxNameWidth := 0
		maxTypeWidth := 0
		for _, field := range structDef.Fields {
			if w := len(field.GoName); w > maxNameWidth {
				maxNameWidth = w
			}
			if w := len(getTypeString(field.GoType)); w > maxTypeWidth {
				maxTypeWidth = w
			}
		}

		for _, field := range structDef.Fields {
			if field.Comment != "" {
				buf.WriteString(fmt.Sprintf("\t// %s\n", field.Comment))
			}
			buf.WriteString(fmt.Sprintf("\t%-*s %-*s %s\n",
				maxNameWidth, field.GoName,
				maxTypeWidth, getTypeString(field.GoType),
				field.Tag))
		}

		buf.WriteString("}\n")
	}

	return buf.String(), nil
}

// sortStructs sorts structs to ensure root structs come first, followed by nested structs
func sortStructs(structs []models.StructDef) []models.StructDef {
	sorted := make([]models.StructDef, len(structs))
	copy(sorted, structs)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].IsRoot != sorted[j].IsRoot {
			return sorted[i].IsRoot
		}
		return sorted[i].Name < sorted[j].Name
	})

	return sorted
}

// getTypeString converts a TypeInfo to a string representation of the Go type
func getTypeString(typeInfo models.TypeInfo) string {
	switch typeInfo.Kind {
	case models.Struct:
		return typeInfo.StructName
	case models.Slice:
		if typeInfo.SliceElementType != nil {
			return "[]" + getTypeString(*typeInfo.SliceElementType)
		}
		return typeInfo.Name
	default:
		return typeInfo.Name
	}
}
