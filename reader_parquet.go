package csvinfer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet"
	pqfile "github.com/apache/arrow/go/v18/parquet/file"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/nao1215/csvinfer/domain/model"
)

// parquetBatchSize is the number of rows decoded per Arrow record batch
const parquetBatchSize = 4096

// parquetReader streams the rows of a Parquet file through Arrow record batches.
// Each value is rendered with the Arrow string form of its column type and nulls become "".
type parquetReader struct {
	file    *pqfile.Reader
	records pqarrow.RecordReader
	header  model.Header
	batch   arrow.Record
	row     int
}

// newParquetReader opens a Parquet stream. Parquet needs random access to its footer:
// an uncompressed file is read in place, any other stream is buffered in memory.
func newParquetReader(ctx context.Context, r io.Reader, limit *MemoryLimit) (*parquetReader, error) {
	var src parquet.ReaderAtSeeker
	if ras, ok := r.(parquet.ReaderAtSeeker); ok {
		// Hide Close: the caller owns the stream
		src = struct{ parquet.ReaderAtSeeker }{ras}
	} else {
		if _, err := limit.check("Parquet buffering"); err != nil {
			return nil, err
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet data: %w", err)
		}
		if len(data) == 0 {
			return nil, fmt.Errorf("%w: empty parquet file", ErrEmptyData)
		}
		src = bytes.NewReader(data)
	}

	pqReader, err := pqfile.NewParquetReader(src)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create parquet reader: %w", ErrInvalidData, err)
	}

	reader, err := openParquetRecords(ctx, pqReader)
	if err != nil {
		_ = pqReader.Close()
		return nil, err
	}
	return reader, nil
}

func openParquetRecords(ctx context.Context, pqReader *pqfile.Reader) (*parquetReader, error) {
	arrowReader, err := pqarrow.NewFileReader(
		pqReader,
		pqarrow.ArrowReadProperties{BatchSize: parquetBatchSize},
		memory.NewGoAllocator(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}

	schema, err := arrowReader.Schema()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read parquet schema: %w", ErrInvalidData, err)
	}

	header := make(model.Header, schema.NumFields())
	for i, field := range schema.Fields() {
		header[i] = field.Name
	}
	if err := validateHeader(header); err != nil {
		return nil, err
	}

	records, err := arrowReader.GetRecordReader(ctx, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create record reader: %w", err)
	}

	return &parquetReader{
		file:    pqReader,
		records: records,
		header:  header,
	}, nil
}

// Header returns the schema field names
func (p *parquetReader) Header() model.Header {
	return p.header
}

// RowCount returns the row count stored in the file footer
func (p *parquetReader) RowCount() int64 {
	return p.file.NumRows()
}

// Next returns the next row
func (p *parquetReader) Next() (model.Record, error) {
	for p.batch == nil || p.row >= int(p.batch.NumRows()) {
		if !p.records.Next() {
			if err := p.records.Err(); err != nil && !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("failed to read parquet records: %w", err)
			}
			return nil, io.EOF
		}
		p.batch = p.records.Record()
		p.row = 0
	}

	record := make(model.Record, p.batch.NumCols())
	for j, col := range p.batch.Columns() {
		if col.IsNull(p.row) {
			continue
		}
		record[j] = col.ValueStr(p.row)
	}
	p.row++
	return record, nil
}

// Close releases the record reader and the file
func (p *parquetReader) Close() error {
	p.records.Release()
	return p.file.Close()
}
