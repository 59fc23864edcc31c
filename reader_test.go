package csvinfer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"testing"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/nao1215/csvinfer/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// readAllRecords drains a tableReader, copying every record
func readAllRecords(t *testing.T, reader tableReader) []model.Record {
	t.Helper()

	var records []model.Record
	for {
		record, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return records
		}
		require.NoError(t, err)
		records = append(records, append(model.Record(nil), record...))
	}
}

func TestDelimitedReader(t *testing.T) {
	t.Parallel()

	t.Run("csv with ragged rows", func(t *testing.T) {
		t.Parallel()

		reader, err := openTableReader(context.Background(),
			strings.NewReader("id,name,city\n1,Alice,Tokyo\n2,Bob\n3,Carol,Paris,extra\n"), FileTypeCSV, nil)
		require.NoError(t, err)
		defer reader.Close()

		assert.Equal(t, model.Header{"id", "name", "city"}, reader.Header())
		assert.Equal(t, []model.Record{
			{"1", "Alice", "Tokyo"},
			{"2", "Bob"},
			{"3", "Carol", "Paris", "extra"},
		}, readAllRecords(t, reader))
	})

	t.Run("tsv with bom and quotes", func(t *testing.T) {
		t.Parallel()

		reader, err := openTableReader(context.Background(),
			strings.NewReader("\xEF\xBB\xBFa\tb\n\"x\ty\"\t2\n"), FileTypeTSV, nil)
		require.NoError(t, err)
		defer reader.Close()

		assert.Equal(t, model.Header{"a", "b"}, reader.Header())
		assert.Equal(t, []model.Record{{"x\ty", "2"}}, readAllRecords(t, reader))
	})

	t.Run("stray quotes are tolerated", func(t *testing.T) {
		t.Parallel()

		reader, err := openTableReader(context.Background(),
			strings.NewReader("a,b\n5\" disk,1\n"), FileTypeCSV, nil)
		require.NoError(t, err)
		defer reader.Close()

		assert.Equal(t, []model.Record{{"5\" disk", "1"}}, readAllRecords(t, reader))
	})

	t.Run("header errors", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name    string
			input   string
			wantErr error
		}{
			{name: "empty", input: "", wantErr: ErrEmptyData},
			{name: "duplicate names", input: "id,name,id\n1,a,2\n", wantErr: ErrInvalidData},
			{name: "duplicate after trim", input: "id, id\n", wantErr: ErrInvalidData},
			{name: "binary", input: "PK\x03\x04\x00\x00", wantErr: ErrInvalidData},
		}
		for _, tt := range tests {
			_, err := openTableReader(context.Background(), strings.NewReader(tt.input), FileTypeCSV, nil)
			assert.True(t, errors.Is(err, tt.wantErr), "%s: got %v", tt.name, err)
		}
	})

	t.Run("too many columns", func(t *testing.T) {
		t.Parallel()

		names := make([]string, model.MaxColumns+1)
		for i := range names {
			names[i] = "c" + strconv.Itoa(i)
		}
		_, err := openTableReader(context.Background(), strings.NewReader(strings.Join(names, ",")+"\n"), FileTypeCSV, nil)
		assert.True(t, errors.Is(err, ErrInvalidData), "got %v", err)
		assert.True(t, errors.Is(err, model.ErrTooManyColumns), "got %v", err)
	})

	t.Run("unsupported type", func(t *testing.T) {
		t.Parallel()

		_, err := openTableReader(context.Background(), strings.NewReader("a\n"), FileTypeUnsupported, nil)
		assert.True(t, errors.Is(err, ErrUnsupportedFormat))
	})
}

// buildXLSX creates a workbook whose first sheet holds rows
func buildXLSX(t *testing.T, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	// A second sheet is ignored
	_, err := f.NewSheet("Other")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Other", "A1", "ignored"))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestXLSXReader(t *testing.T) {
	t.Parallel()

	t.Run("first sheet", func(t *testing.T) {
		t.Parallel()

		data := buildXLSX(t, [][]any{
			{"id", "name", "price"},
			{1, "Alice", 10.5},
			{2, "Bob", 7.25},
		})
		reader, err := openTableReader(context.Background(), bytes.NewReader(data), FileTypeXLSX, nil)
		require.NoError(t, err)
		defer reader.Close()

		assert.Equal(t, model.Header{"id", "name", "price"}, reader.Header())
		assert.Equal(t, []model.Record{
			{"1", "Alice", "10.5"},
			{"2", "Bob", "7.25"},
		}, readAllRecords(t, reader))
	})

	t.Run("not a workbook", func(t *testing.T) {
		t.Parallel()

		_, err := openTableReader(context.Background(), strings.NewReader("id,name\n"), FileTypeXLSX, nil)
		assert.True(t, errors.Is(err, ErrInvalidData), "got %v", err)
	})

	t.Run("empty sheet", func(t *testing.T) {
		t.Parallel()

		data := buildXLSX(t, nil)
		_, err := openTableReader(context.Background(), bytes.NewReader(data), FileTypeXLSX, nil)
		assert.True(t, errors.Is(err, ErrEmptyData), "got %v", err)
	})
}

// buildParquet writes an id/name/score table with n rows; every third score is null
func buildParquet(t *testing.T, n int) []byte {
	t.Helper()

	mem := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "name", Type: arrow.BinaryTypes.String},
		{Name: "score", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	}, nil)

	builder := array.NewRecordBuilder(mem, schema)
	defer builder.Release()

	ids := builder.Field(0).(*array.Int64Builder)
	names := builder.Field(1).(*array.StringBuilder)
	scores := builder.Field(2).(*array.Float64Builder)
	for i := 1; i <= n; i++ {
		ids.Append(int64(i))
		names.Append("name-" + strings.Repeat("x", i%3))
		if i%3 == 0 {
			scores.AppendNull()
		} else {
			scores.Append(float64(i) + 0.5)
		}
	}

	record := builder.NewRecord()
	defer record.Release()
	table := array.NewTableFromRecords(schema, []arrow.Record{record})
	defer table.Release()

	var buf bytes.Buffer
	require.NoError(t, pqarrow.WriteTable(table, &buf, 1024, parquet.NewWriterProperties(), pqarrow.DefaultWriterProps()))
	return buf.Bytes()
}

func TestParquetReader(t *testing.T) {
	t.Parallel()

	t.Run("in place", func(t *testing.T) {
		t.Parallel()

		reader, err := openTableReader(context.Background(), bytes.NewReader(buildParquet(t, 5)), FileTypeParquet, nil)
		require.NoError(t, err)
		defer reader.Close()

		assert.Equal(t, model.Header{"id", "name", "score"}, reader.Header())
		counter, ok := reader.(rowCounter)
		require.True(t, ok)
		assert.Equal(t, int64(5), counter.RowCount())

		records := readAllRecords(t, reader)
		require.Len(t, records, 5)
		assert.Equal(t, model.Record{"1", "name-x", "1.5"}, records[0])
		assert.Equal(t, model.Record{"3", "name-", ""}, records[2], "null becomes empty")
	})

	t.Run("buffered stream", func(t *testing.T) {
		t.Parallel()

		// io.MultiReader hides ReadAt and Seek
		stream := io.MultiReader(bytes.NewReader(buildParquet(t, 3)))
		reader, err := openTableReader(context.Background(), stream, FileTypeParquet, nil)
		require.NoError(t, err)
		defer reader.Close()

		assert.Len(t, readAllRecords(t, reader), 3)
	})

	t.Run("empty stream", func(t *testing.T) {
		t.Parallel()

		_, err := openTableReader(context.Background(), io.MultiReader(), FileTypeParquet, nil)
		assert.True(t, errors.Is(err, ErrEmptyData), "got %v", err)
	})

	t.Run("not parquet", func(t *testing.T) {
		t.Parallel()

		_, err := openTableReader(context.Background(), strings.NewReader("id,name\n1,a\n"), FileTypeParquet, nil)
		assert.True(t, errors.Is(err, ErrInvalidData), "got %v", err)
	})
}
