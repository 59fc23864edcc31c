package csvinfer

import (
	"errors"
	"fmt"
	"io"

	"github.com/nao1215/csvinfer/domain/model"
	"github.com/xuri/excelize/v2"
)

// xlsxReader reads the first sheet of a workbook. The first non-empty row is the header.
// excelize needs the whole archive, so the input is buffered in memory.
type xlsxReader struct {
	file   *excelize.File
	rows   *excelize.Rows
	sheet  string
	header model.Header
}

// newXLSXReader opens a workbook and reads the header of its first sheet
func newXLSXReader(r io.Reader, limit *MemoryLimit) (*xlsxReader, error) {
	if _, err := limit.check("XLSX parsing"); err != nil {
		return nil, err
	}

	xlsxFile, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open XLSX file: %w", ErrInvalidData, err)
	}

	reader, err := readXLSXHeader(xlsxFile)
	if err != nil {
		_ = xlsxFile.Close() // Ignore close error
		return nil, err
	}
	return reader, nil
}

func readXLSXHeader(xlsxFile *excelize.File) (*xlsxReader, error) {
	sheetNames := xlsxFile.GetSheetList()
	if len(sheetNames) == 0 {
		return nil, fmt.Errorf("%w: no sheets found in XLSX file", ErrEmptyData)
	}

	sheetName := sheetNames[0]
	rows, err := xlsxFile.Rows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to open rows iterator for sheet %s: %w", sheetName, err)
	}

	reader := &xlsxReader{file: xlsxFile, rows: rows, sheet: sheetName}
	for rows.Next() {
		row, err := rows.Columns()
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to read row in sheet %s: %w", sheetName, err)
		}
		// Skip leading empty rows
		if len(row) == 0 {
			continue
		}
		reader.header = model.NewHeader(row)
		break
	}

	if len(reader.header) == 0 {
		_ = rows.Close()
		return nil, fmt.Errorf("%w: sheet %s is empty in XLSX file", ErrEmptyData, sheetName)
	}
	if err := validateHeader(reader.header); err != nil {
		_ = rows.Close()
		return nil, err
	}
	return reader, nil
}

// Header returns the column names
func (x *xlsxReader) Header() model.Header {
	return x.header
}

// Next returns the next row of the sheet
func (x *xlsxReader) Next() (model.Record, error) {
	if !x.rows.Next() {
		if err := x.rows.Error(); err != nil {
			return nil, fmt.Errorf("failed to iterate sheet %s: %w", x.sheet, err)
		}
		return nil, io.EOF
	}

	row, err := x.rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: sheet %s: %w", errMalformedRow, x.sheet, err)
	}
	return model.NewRecord(row), nil
}

// Close releases the row iterator and the workbook
func (x *xlsxReader) Close() error {
	return errors.Join(x.rows.Close(), x.file.Close())
}
