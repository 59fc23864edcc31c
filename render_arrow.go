package csvinfer

import (
	"errors"
	"strconv"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/nao1215/csvinfer/domain/model"
)

// Field metadata keys set by ArrowSchema
const (
	ArrowMetadataType       = "csvinfer.type"
	ArrowMetadataConfidence = "csvinfer.confidence"
)

// Decimal columns map to a 128-bit decimal wide enough for every accepted value
const (
	arrowDecimalPrecision = 38
	arrowDecimalScale     = 9
)

// ArrowSchema converts the columns of result to an Arrow schema, e.g. for writing Parquet.
// Every field carries the inferred type name and confidence as metadata.
func ArrowSchema(result *Result) (*arrow.Schema, error) {
	if result == nil {
		return nil, errors.New("result cannot be nil")
	}

	fields := make([]arrow.Field, len(result.Columns))
	for i, col := range result.Columns {
		fields[i] = arrow.Field{
			Name:     col.Name,
			Type:     ArrowType(col.Type),
			Nullable: col.Nullable,
			Metadata: arrow.NewMetadata(
				[]string{ArrowMetadataType, ArrowMetadataConfidence},
				[]string{col.Type.String(), strconv.FormatFloat(col.Confidence, 'f', 4, 64)},
			),
		}
	}

	md := arrow.NewMetadata([]string{"csvinfer.source"}, []string{result.Source})
	return arrow.NewSchema(fields, &md), nil
}

// ArrowType returns the Arrow data type of a column type. GUIDs are kept as text.
func ArrowType(ct model.ColumnType) arrow.DataType {
	switch ct {
	case model.ColumnTypeBool:
		return arrow.FixedWidthTypes.Boolean
	case model.ColumnTypeInt32:
		return arrow.PrimitiveTypes.Int32
	case model.ColumnTypeInt64:
		return arrow.PrimitiveTypes.Int64
	case model.ColumnTypeDecimal:
		return &arrow.Decimal128Type{Precision: arrowDecimalPrecision, Scale: arrowDecimalScale}
	case model.ColumnTypeFloat64:
		return arrow.PrimitiveTypes.Float64
	case model.ColumnTypeDateTime:
		return arrow.FixedWidthTypes.Timestamp_us
	default:
		return arrow.BinaryTypes.String
	}
}
