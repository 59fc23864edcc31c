package model

import (
	"fmt"
	"strings"
)

// MaxColumns is the widest header accepted
const MaxColumns = 2000

// Header is the first row of a table: one name per column.
type Header []string

// NewHeader create new Header.
func NewHeader(h []string) Header {
	return Header(h)
}

// Equal compare Header.
func (h Header) Equal(h2 Header) bool {
	if len(h) != len(h2) {
		return false
	}
	for i, v := range h {
		if v != h2[i] {
			return false
		}
	}
	return true
}

// Validate rejects an empty header, a header wider than MaxColumns and
// names that repeat after trimming surrounding whitespace.
func (h Header) Validate() error {
	if len(h) == 0 {
		return ErrEmptyHeader
	}
	if len(h) > MaxColumns {
		return fmt.Errorf("%w: %d columns (max %d)", ErrTooManyColumns, len(h), MaxColumns)
	}
	seen := make(map[string]int, len(h))
	for i, col := range h {
		trimmed := strings.TrimSpace(col)
		if first, ok := seen[trimmed]; ok {
			return fmt.Errorf("%w: %q at columns %d and %d", ErrDuplicateColumnName, col, first+1, i+1)
		}
		seen[trimmed] = i
	}
	return nil
}

// Record is one data row.
type Record []string

// NewRecord create new Record.
func NewRecord(r []string) Record {
	return Record(r)
}

// Equal compare Record.
func (r Record) Equal(r2 Record) bool {
	if len(r) != len(r2) {
		return false
	}
	for i, v := range r {
		if v != r2[i] {
			return false
		}
	}
	return true
}
