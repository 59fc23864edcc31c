package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeHierarchy(t *testing.T) {
	t.Parallel()

	t.Run("order is narrowest first", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, []ColumnType{
			ColumnTypeBool, ColumnTypeInt32, ColumnTypeInt64, ColumnTypeDecimal,
			ColumnTypeFloat64, ColumnTypeDateTime, ColumnTypeGUID, ColumnTypeString,
		}, TypeHierarchy())
	})

	t.Run("returned slice is a copy", func(t *testing.T) {
		t.Parallel()

		h := TypeHierarchy()
		h[0] = ColumnTypeString
		assert.Equal(t, ColumnTypeBool, TypeHierarchy()[0])
	})
}

func TestColumnType_Mappings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ct          ColumnType
		name        string
		goType      string
		goNullable  string
		sqliteType  string
		isValueType bool
	}{
		{ColumnTypeBool, "bool", "bool", "*bool", "INTEGER", true},
		{ColumnTypeInt32, "int32", "int32", "*int32", "INTEGER", true},
		{ColumnTypeInt64, "int64", "int64", "*int64", "INTEGER", true},
		{ColumnTypeDecimal, "decimal", "decimal.Decimal", "*decimal.Decimal", "NUMERIC", true},
		{ColumnTypeFloat64, "float64", "float64", "*float64", "REAL", true},
		{ColumnTypeDateTime, "datetime", "time.Time", "*time.Time", "TEXT", true},
		{ColumnTypeGUID, "guid", "uuid.UUID", "*uuid.UUID", "TEXT", true},
		{ColumnTypeString, "string", "string", "string", "TEXT", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.name, tt.ct.String())
			assert.Equal(t, tt.goType, tt.ct.GoType(false))
			assert.Equal(t, tt.goNullable, tt.ct.GoType(true))
			assert.Equal(t, tt.sqliteType, tt.ct.SQLiteType())
			assert.Equal(t, tt.isValueType, tt.ct.IsValueType())
			assert.True(t, tt.ct.IsValid())

			parsed, ok := ParseColumnType(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.ct, parsed)

			text, err := tt.ct.MarshalText()
			require.NoError(t, err)
			assert.Equal(t, tt.name, string(text))

			var decoded ColumnType
			require.NoError(t, decoded.UnmarshalText(text))
			assert.Equal(t, tt.ct, decoded)
		})
	}
}

func TestColumnType_Invalid(t *testing.T) {
	t.Parallel()

	ct := ColumnType(99)
	assert.False(t, ct.IsValid())
	assert.False(t, ct.IsValueType())
	assert.Equal(t, "unknown", ct.String())

	_, ok := ParseColumnType("varchar")
	assert.False(t, ok)

	var decoded ColumnType
	assert.Error(t, decoded.UnmarshalText([]byte("varchar")))
}
