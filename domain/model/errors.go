package model

import "errors"

var (
	// ErrDuplicateColumnName is returned when a file contains duplicate column names
	ErrDuplicateColumnName = errors.New("duplicate column name")
	// ErrTooManyColumns is returned when a header is wider than MaxColumns
	ErrTooManyColumns = errors.New("too many columns")
	// ErrEmptyHeader is returned when a header has no columns
	ErrEmptyHeader = errors.New("empty header")
)
