package driver

import (
	"errors"
	"fmt"
	"strings"
)

// MaxColumnCount defines the maximum number of columns allowed in a table.
// It matches SQLite's default SQLITE_MAX_COLUMN.
const MaxColumnCount = 2000

var (
	// ErrTooManyColumns is returned when a frame has too many columns
	ErrTooManyColumns = errors.New("too many columns")

	// ErrInvalidIdentifier is returned when an SQL identifier is invalid
	ErrInvalidIdentifier = errors.New("invalid SQL identifier")
)

// ValidateColumnCount checks if the number of columns is within acceptable limits
func ValidateColumnCount(columnCount int) error {
	if columnCount > MaxColumnCount {
		return ErrTooManyColumns
	}
	return nil
}

// ValidateIdentifier checks that name can be used as a bracket-quoted SQLite
// identifier.
func ValidateIdentifier(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidIdentifier)
	}
	if strings.ContainsAny(name, "]\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	return nil
}

// ValidateColumnNames checks for invalid and duplicate column names.
// SQLite compares identifiers case-insensitively, and so does this check.
func ValidateColumnNames(columns []string) error {
	if err := ValidateColumnCount(len(columns)); err != nil {
		return err
	}
	seen := make(map[string]bool, len(columns))
	for _, col := range columns {
		if err := ValidateIdentifier(col); err != nil {
			return err
		}
		key := strings.ToLower(strings.TrimSpace(col))
		if seen[key] {
			return fmt.Errorf("%w: %s", ErrDuplicateColumnName, col)
		}
		seen[key] = true
	}
	return nil
}
