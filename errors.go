package gristle

import (
	"errors"
	"fmt"
	"strings"
)

// Standard error messages and error creation functions for consistency
var (
	// ErrDetection indicates that no dialect could be inferred from the sample
	ErrDetection = errors.New("gristle: dialect detection failed")

	// ErrEmptySample indicates that the sample contains no usable lines
	ErrEmptySample = errors.New("gristle: empty sample")

	// ErrInvalidDialect indicates a dialect that cannot be used for reading or writing
	ErrInvalidDialect = errors.New("gristle: invalid dialect")

	// ErrUnterminatedQuote indicates that the input ended inside a quoted field
	ErrUnterminatedQuote = errors.New("gristle: unterminated quoted field")

	// ErrUnsupportedFormat indicates an unsupported file format
	ErrUnsupportedFormat = errors.New("gristle: unsupported file format")

	// ErrFileNotFound indicates file not found
	ErrFileNotFound = errors.New("gristle: file not found")

	// ErrInvalidColumn indicates a negative or otherwise unusable column index
	ErrInvalidColumn = errors.New("gristle: invalid column")

	// ErrNoValues indicates that an aggregate had nothing to aggregate
	ErrNoValues = errors.New("gristle: no values")
)

// ParseError is returned for malformed delimited input.
// Line and Column are 1-based and point at the position where the problem was found.
type ParseError struct {
	Line   int
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("gristle: parse error on line %d, column %d: %v", e.Line, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// DetectionError describes why detection gave up.
type DetectionError struct {
	// Reason is a short human readable explanation
	Reason string
	// Lines is the number of sample lines that were inspected
	Lines int
}

func (e *DetectionError) Error() string {
	return fmt.Sprintf("%v: %s (%d sample lines)", ErrDetection, e.Reason, e.Lines)
}

// Is makes errors.Is(err, ErrDetection) hold for every DetectionError.
func (e *DetectionError) Is(target error) bool {
	return target == ErrDetection
}

// ErrorContext provides context for where an error occurred
type ErrorContext struct {
	Operation string
	FilePath  string
	Details   string
}

// NewErrorContext creates a new error context
func NewErrorContext(operation, filePath string) *ErrorContext {
	return &ErrorContext{
		Operation: operation,
		FilePath:  filePath,
	}
}

// WithDetails adds details to the error context
func (ec *ErrorContext) WithDetails(details string) *ErrorContext {
	ec.Details = details
	return ec
}

// Error creates a formatted error with context
func (ec *ErrorContext) Error(baseErr error) error {
	var parts []string
	parts = append(parts, fmt.Sprintf("gristle: %s failed", ec.Operation))

	if ec.FilePath != "" {
		parts = append(parts, "file: "+ec.FilePath)
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
