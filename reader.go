package csvinfer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/nao1215/csvinfer/domain/model"
)

// errMalformedRow marks a row the tokenizer could not split into fields.
// The row is skipped and reading continues.
var errMalformedRow = errors.New("malformed row")

// tableReader yields the header and then the data records of one table
type tableReader interface {
	// Header returns the validated column names
	Header() model.Header
	// Next returns the next data record, io.EOF after the last one, or an error
	// wrapping errMalformedRow for a row that could not be tokenized
	Next() (model.Record, error)
	// Close releases the reader; it does not close the underlying stream
	Close() error
}

// rowCounter is implemented by readers that know their row count without a scan
type rowCounter interface {
	RowCount() int64
}

// openTableReader creates the tokenizer for a format and reads the header.
// Empty input reports ErrEmptyData; an unusable header reports ErrInvalidData.
func openTableReader(ctx context.Context, r io.Reader, fileType FileType, limit *MemoryLimit) (tableReader, error) {
	switch fileType {
	case FileTypeCSV, FileTypeTSV:
		return newDelimitedReader(r, fileType.delimiter())
	case FileTypeXLSX:
		return newXLSXReader(r, limit)
	case FileTypeParquet:
		return newParquetReader(ctx, r, limit)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, fileType)
	}
}

// validateHeader maps header problems to ErrInvalidData
func validateHeader(header model.Header) error {
	if err := header.Validate(); err != nil {
		if errors.Is(err, model.ErrEmptyHeader) {
			return fmt.Errorf("%w: %w", ErrEmptyData, err)
		}
		return fmt.Errorf("%w: %w", ErrInvalidData, err)
	}
	return nil
}

// delimitedReader tokenizes CSV and TSV with encoding/csv.
// Rows may have fewer or more fields than the header and stray quotes are tolerated.
type delimitedReader struct {
	csv    *csv.Reader
	header model.Header
}

// newDelimitedReader reads the header row of a CSV or TSV stream
func newDelimitedReader(r io.Reader, delimiter rune) (*delimitedReader, error) {
	text, err := newTextReader(r)
	if err != nil {
		return nil, err
	}

	csvReader := csv.NewReader(text)
	csvReader.Comma = delimiter
	csvReader.FieldsPerRecord = -1
	csvReader.LazyQuotes = true
	csvReader.ReuseRecord = true

	header, err := csvReader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyData
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, fmt.Errorf("%w: failed to read header: %w", ErrInvalidData, err)
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	// ReuseRecord shares the slice between reads
	h := model.NewHeader(append([]string(nil), header...))
	if err := validateHeader(h); err != nil {
		return nil, err
	}

	return &delimitedReader{csv: csvReader, header: h}, nil
}

// Header returns the column names
func (d *delimitedReader) Header() model.Header {
	return d.header
}

// Next returns the next record. The returned slice is reused by the following call.
func (d *delimitedReader) Next() (model.Record, error) {
	record, err := d.csv.Read()
	if err == nil {
		return model.NewRecord(record), nil
	}
	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}

	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return nil, fmt.Errorf("%w: %w", errMalformedRow, err)
	}
	return nil, err
}

// Close implements tableReader
func (d *delimitedReader) Close() error {
	return nil
}
