package qframe

import (
	"errors"
	"fmt"
	"strings"
)

// Standard errors. Every error returned by this package wraps one of them,
// so callers can classify failures with errors.Is.
var (
	// ErrUnsupportedType indicates a type tag that is not registered in the
	// null registry or the temporal conversion table.
	ErrUnsupportedType = errors.New("qframe: unsupported type")

	// ErrStructuralMismatch indicates a row-count or shape inconsistency,
	// e.g. a keyed table whose key and value tables differ in length.
	ErrStructuralMismatch = errors.New("qframe: structural mismatch")

	// ErrInvalidInput indicates a value presented where a different kind of
	// value was expected (nil columns, storage not matching the type tag,
	// a table where a column was expected, ...).
	ErrInvalidInput = errors.New("qframe: invalid input")

	// ErrNoColumns indicates an export of a frame without any column
	ErrNoColumns = errors.New("qframe: frame has no columns")

	// ErrUnsupportedFormat indicates an unsupported output format
	ErrUnsupportedFormat = errors.New("qframe: unsupported output format")

	// errDuplicateColumnName is returned when a table contains duplicate column names
	errDuplicateColumnName = errors.New("duplicate column name")
)

// UnsupportedTypeError reports the type tag that could not be handled.
type UnsupportedTypeError struct {
	Tag TypeTag
}

// Error implements error.
func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnsupportedType, e.Tag)
}

// Is reports whether target is ErrUnsupportedType.
func (e *UnsupportedTypeError) Is(target error) bool {
	return target == ErrUnsupportedType
}

// MismatchError reports the dimensions of a structural mismatch.
type MismatchError struct {
	// Subject describes what was compared, e.g. "keys vs values".
	Subject  string
	Expected int
	Actual   int
}

// Error implements error.
func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: %s: %d rows vs %d rows", ErrStructuralMismatch, e.Subject, e.Expected, e.Actual)
}

// Is reports whether target is ErrStructuralMismatch.
func (e *MismatchError) Is(target error) bool {
	return target == ErrStructuralMismatch
}

// ErrorContext provides context for where an error occurred
type ErrorContext struct {
	Operation string
	Table     string
	Column    string
	Details   string
}

// NewErrorContext creates a new error context
func NewErrorContext(operation string) *ErrorContext {
	return &ErrorContext{
		Operation: operation,
	}
}

// WithTable adds table context to the error
func (ec *ErrorContext) WithTable(tableName string) *ErrorContext {
	ec.Table = tableName
	return ec
}

// WithColumn adds column context to the error
func (ec *ErrorContext) WithColumn(columnName string) *ErrorContext {
	ec.Column = columnName
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
	parts = append(parts, fmt.Sprintf("qframe: %s failed", ec.Operation))

	if ec.Table != "" {
		parts = append(parts, "table: "+ec.Table)
	}

	if ec.Column != "" {
		parts = append(parts, "column: "+ec.Column)
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
