package csvinfer

import (
	"errors"
	"fmt"
	"go/format"
	"go/token"
	"strconv"
	"strings"

	"github.com/nao1215/csvinfer/domain/model"
)

// Default names of the generated Go code
const (
	DefaultPackageName = "model"
	DefaultTypeName    = "Record"
)

// GoStructOptions controls RenderGoStruct
type GoStructOptions struct {
	// PackageName is the package clause of the generated file
	PackageName string
	// TypeName is the name of the generated struct
	TypeName string
	// JSONTags adds a snake_case json tag to every field
	JSONTags bool
	// CSVTags adds a csv tag holding the original column name to every field
	CSVTags bool
	// Comments adds a comment with column, type, confidence and distinct count to every field
	Comments bool
}

// NewGoStructOptions returns the default options: package "model", type "Record",
// all tags and comments enabled.
func NewGoStructOptions() GoStructOptions {
	return GoStructOptions{
		PackageName: DefaultPackageName,
		TypeName:    DefaultTypeName,
		JSONTags:    true,
		CSVTags:     true,
		Comments:    true,
	}
}

// RenderGoStruct renders the columns of result as a gofmt-formatted Go source file holding
// one struct. Nullable value types become pointers.
func RenderGoStruct(result *Result, opts GoStructOptions) (string, error) {
	if result == nil {
		return "", errors.New("result cannot be nil")
	}
	if !token.IsIdentifier(opts.PackageName) {
		return "", fmt.Errorf("%w: invalid package name %q", ErrInvalidConfig, opts.PackageName)
	}
	if !token.IsIdentifier(opts.TypeName) {
		return "", fmt.Errorf("%w: invalid type name %q", ErrInvalidConfig, opts.TypeName)
	}

	names := make([]string, len(result.Columns))
	for i, col := range result.Columns {
		names[i] = col.Name
	}
	fields := uniqueNames(names, ToPascalCase)
	jsonNames := uniqueNames(names, ToSnakeCase)

	var sb strings.Builder
	fmt.Fprintf(&sb, "// Code generated by csvinfer from %s. DO NOT EDIT.\n\n", singleLine(result.Source))
	fmt.Fprintf(&sb, "package %s\n\n", opts.PackageName)
	writeImports(&sb, result.Columns)

	fmt.Fprintf(&sb, "// %s is one row of %s\n", opts.TypeName, singleLine(result.Source))
	fmt.Fprintf(&sb, "type %s struct {\n", opts.TypeName)
	for i, col := range result.Columns {
		goType := col.Type.GoType(col.Nullable)
		if opts.Comments {
			fmt.Fprintf(&sb, "\t// Column: %s\n", singleLine(col.Name))
			fmt.Fprintf(&sb, "\t// Type: %s (Confidence: %.0f%%)\n", goType, col.Confidence*100)
			fmt.Fprintf(&sb, "\t// Distinct Values: %d\n", col.DistinctCount)
		}
		fmt.Fprintf(&sb, "\t%s %s%s\n", fields[i], goType, structTag(col.Name, jsonNames[i], opts))
		if opts.Comments && i < len(result.Columns)-1 {
			sb.WriteString("\n")
		}
	}
	sb.WriteString("}\n")

	src, err := format.Source([]byte(sb.String()))
	if err != nil {
		return "", fmt.Errorf("failed to format generated code: %w", err)
	}
	return string(src), nil
}

// writeImports emits the imports needed by the field types
func writeImports(sb *strings.Builder, columns []model.ColumnResult) {
	var std, thirdParty []string
	seen := make(map[model.ColumnType]bool)
	for _, col := range columns {
		if seen[col.Type] {
			continue
		}
		seen[col.Type] = true
		switch col.Type {
		case model.ColumnTypeDateTime:
			std = append(std, `"time"`)
		case model.ColumnTypeDecimal:
			thirdParty = append(thirdParty, `"github.com/shopspring/decimal"`)
		case model.ColumnTypeGUID:
			thirdParty = append(thirdParty, `"github.com/google/uuid"`)
		}
	}
	if len(std)+len(thirdParty) == 0 {
		return
	}

	sb.WriteString("import (\n")
	for _, imp := range std {
		fmt.Fprintf(sb, "\t%s\n", imp)
	}
	if len(std) > 0 && len(thirdParty) > 0 {
		sb.WriteString("\n")
	}
	for _, imp := range thirdParty {
		fmt.Fprintf(sb, "\t%s\n", imp)
	}
	sb.WriteString(")\n\n")
}

// structTag builds the field tag. Names containing a backquote need an interpreted literal.
func structTag(column, jsonName string, opts GoStructOptions) string {
	var parts []string
	if opts.JSONTags {
		parts = append(parts, "json:"+strconv.Quote(jsonName))
	}
	if opts.CSVTags {
		parts = append(parts, "csv:"+strconv.Quote(column))
	}
	if len(parts) == 0 {
		return ""
	}

	tag := strings.Join(parts, " ")
	if strings.Contains(tag, "`") {
		return " " + strconv.Quote(tag)
	}
	return " `" + tag + "`"
}

// singleLine keeps a column name from breaking out of a line comment
func singleLine(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}
