// Package model provides domain model for csvinfer
package model

import "fmt"

// ColumnType represents a candidate scalar type for a column.
// The numeric order of the constants is the inference hierarchy: narrower types first.
type ColumnType int

const (
	// ColumnTypeBool represents boolean values
	ColumnTypeBool ColumnType = iota
	// ColumnTypeInt32 represents 32-bit signed integers
	ColumnTypeInt32
	// ColumnTypeInt64 represents 64-bit signed integers
	ColumnTypeInt64
	// ColumnTypeDecimal represents fixed-point decimal numbers
	ColumnTypeDecimal
	// ColumnTypeFloat64 represents double precision floating point numbers
	ColumnTypeFloat64
	// ColumnTypeDateTime represents dates and timestamps
	ColumnTypeDateTime
	// ColumnTypeGUID represents canonical hyphenated UUIDs
	ColumnTypeGUID
	// ColumnTypeString represents free text; every value matches it
	ColumnTypeString

	// columnTypeCount is the number of candidate types
	columnTypeCount = int(ColumnTypeString) + 1
)

// typeHierarchy is the fixed probing and tie-break order
var typeHierarchy = [columnTypeCount]ColumnType{
	ColumnTypeBool,
	ColumnTypeInt32,
	ColumnTypeInt64,
	ColumnTypeDecimal,
	ColumnTypeFloat64,
	ColumnTypeDateTime,
	ColumnTypeGUID,
	ColumnTypeString,
}

// TypeHierarchy returns the candidate types in inference order.
// The returned slice is a copy; callers may modify it.
func TypeHierarchy() []ColumnType {
	out := make([]ColumnType, columnTypeCount)
	copy(out, typeHierarchy[:])
	return out
}

// String returns the canonical type name
func (ct ColumnType) String() string {
	switch ct {
	case ColumnTypeBool:
		return "bool"
	case ColumnTypeInt32:
		return "int32"
	case ColumnTypeInt64:
		return "int64"
	case ColumnTypeDecimal:
		return "decimal"
	case ColumnTypeFloat64:
		return "float64"
	case ColumnTypeDateTime:
		return "datetime"
	case ColumnTypeGUID:
		return "guid"
	case ColumnTypeString:
		return "string"
	default:
		return "unknown"
	}
}

// IsValid reports whether ct is one of the candidate types
func (ct ColumnType) IsValid() bool {
	return ct >= ColumnTypeBool && ct <= ColumnTypeString
}

// IsValueType reports whether the type needs an explicit nullable marker when rendered.
// Text already has a natural "absent" representation, every other type does not.
func (ct ColumnType) IsValueType() bool {
	return ct.IsValid() && ct != ColumnTypeString
}

// GoType returns the Go type used when rendering a struct field
func (ct ColumnType) GoType(nullable bool) string {
	var name string
	switch ct {
	case ColumnTypeBool:
		name = "bool"
	case ColumnTypeInt32:
		name = "int32"
	case ColumnTypeInt64:
		name = "int64"
	case ColumnTypeDecimal:
		name = "decimal.Decimal"
	case ColumnTypeFloat64:
		name = "float64"
	case ColumnTypeDateTime:
		name = "time.Time"
	case ColumnTypeGUID:
		name = "uuid.UUID"
	default:
		name = "string"
	}
	if nullable && ct.IsValueType() {
		return "*" + name
	}
	return name
}

// SQLiteType returns the SQLite column type used when rendering DDL
func (ct ColumnType) SQLiteType() string {
	switch ct {
	case ColumnTypeBool, ColumnTypeInt32, ColumnTypeInt64:
		return "INTEGER"
	case ColumnTypeDecimal:
		return "NUMERIC"
	case ColumnTypeFloat64:
		return "REAL"
	default:
		// SQLite stores datetime and uuid as TEXT
		return "TEXT"
	}
}

// ParseColumnType converts a canonical type name back to a ColumnType
func ParseColumnType(name string) (ColumnType, bool) {
	for _, ct := range typeHierarchy {
		if ct.String() == name {
			return ct, true
		}
	}
	return ColumnTypeString, false
}

// MarshalText implements encoding.TextMarshaler
func (ct ColumnType) MarshalText() ([]byte, error) {
	return []byte(ct.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (ct *ColumnType) UnmarshalText(text []byte) error {
	parsed, ok := ParseColumnType(string(text))
	if !ok {
		return fmt.Errorf("unknown column type %q", text)
	}
	*ct = parsed
	return nil
}
