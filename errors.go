package csvinfer

import (
	"errors"
	"fmt"
	"strings"
)

// Standard error values. Wrap them with %w so callers can test with errors.Is.
var (
	// ErrEmptyData indicates that the input has no header row
	ErrEmptyData = errors.New("csvinfer: empty data source")

	// ErrUnsupportedFormat indicates an unsupported file format
	ErrUnsupportedFormat = errors.New("csvinfer: unsupported file format")

	// ErrInvalidData indicates binary content or an unusable header
	ErrInvalidData = errors.New("csvinfer: invalid data format")

	// ErrInvalidConfig indicates that analyzer settings are out of range
	ErrInvalidConfig = errors.New("csvinfer: invalid configuration")

	// ErrNotResettable indicates that an input cannot be rewound for the second pass
	ErrNotResettable = errors.New("csvinfer: input cannot be reset")

	// ErrMemoryLimit indicates memory limit exceeded
	ErrMemoryLimit = errors.New("csvinfer: memory limit exceeded")

	// ErrContextCancelled indicates context was cancelled
	ErrContextCancelled = errors.New("csvinfer: context cancelled")
)

// cancelledError reports a cancelled run. It matches ErrContextCancelled and the context cause.
func cancelledError(cause error) error {
	return fmt.Errorf("%w: %w", ErrContextCancelled, cause)
}

// ErrorContext provides context for where an error occurred
type ErrorContext struct {
	Operation string
	Source    string
	Row       int64
	Details   string
}

// NewErrorContext creates a new error context
func NewErrorContext(operation, source string) *ErrorContext {
	return &ErrorContext{
		Operation: operation,
		Source:    source,
	}
}

// WithRow adds the 1-based data row number to the error context
func (ec *ErrorContext) WithRow(row int64) *ErrorContext {
	ec.Row = row
	return ec
}

// WithDetails adds details to the error context
func (ec *ErrorContext) WithDetails(details string) *ErrorContext {
	ec.Details = details
	return ec
}

// Error creates a formatted error with context
func (ec *ErrorContext) Error(baseErr error) error {
	var parts []string
	parts = append(parts, fmt.Sprintf("csvinfer: %s failed", ec.Operation))

	if ec.Source != "" {
		parts = append(parts, "source: "+ec.Source)
	}

	if ec.Row > 0 {
		parts = append(parts, fmt.Sprintf("row: %d", ec.Row))
	}

	if ec.Details != "" {
		parts = append(parts, "details: "+ec.Details)
	}

	context := strings.Join(parts, ", ")
	if baseErr != nil {
		return fmt.Errorf("%s: %w", context, baseErr)
	}
	return fmt.Errorf("%s", context)
}
