package qframe

import (
	"fmt"
	"slices"
)

// Table is an ordered set of uniquely named raw columns of equal length.
// Column order is the declared order and is preserved by every conversion.
type Table struct {
	columns []*Column
	rows    int
}

// NewTable creates a table from columns in declared order. Duplicate names
// and nil columns fail with ErrInvalidInput; unequal lengths fail with
// ErrStructuralMismatch.
func NewTable(columns ...*Column) (*Table, error) {
	names := make([]string, 0, len(columns))
	for i, col := range columns {
		if col == nil {
			return nil, fmt.Errorf("%w: nil column at position %d", ErrInvalidInput, i)
		}
		names = append(names, col.name)
	}
	if err := validateColumnNames(names); err != nil {
		return nil, NewErrorContext("new table").Error(err)
	}

	rows := 0
	if len(columns) > 0 {
		rows = columns[0].Len()
	}
	for _, col := range columns {
		if col.Len() != rows {
			return nil, NewErrorContext("new table").WithColumn(col.name).Error(&MismatchError{
				Subject:  fmt.Sprintf("column %q vs column %q", columns[0].name, col.name),
				Expected: rows,
				Actual:   col.Len(),
			})
		}
	}

	return &Table{columns: slices.Clone(columns), rows: rows}, nil
}

// Columns returns the columns in declared order.
func (t *Table) Columns() []*Column {
	return slices.Clone(t.columns)
}

// ColumnNames returns the column names in declared order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, col := range t.columns {
		names[i] = col.name
	}
	return names
}

// Column returns the column with the given name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, col := range t.columns {
		if col.name == name {
			return col, true
		}
	}
	return nil, false
}

// NumRows returns the row count.
func (t *Table) NumRows() int {
	return t.rows
}

// NumCols returns the column count.
func (t *Table) NumCols() int {
	return len(t.columns)
}

// KeyedTable is a table split into key columns and value columns, row-aligned
// by position.
type KeyedTable struct {
	keys   *Table
	values *Table
}

// NewKeyedTable pairs keys with values. Both must have the same row count.
func NewKeyedTable(keys, values *Table) (*KeyedTable, error) {
	if err := validatePair("new keyed table", keys, values); err != nil {
		return nil, err
	}
	return &KeyedTable{keys: keys, values: values}, nil
}

// Keys returns the key table.
func (kt *KeyedTable) Keys() *Table {
	return kt.keys
}

// Values returns the value table.
func (kt *KeyedTable) Values() *Table {
	return kt.values
}

// Dictionary maps a table of keys onto a table of values. It is structurally
// identical to a KeyedTable.
type Dictionary struct {
	keys   *Table
	values *Table
}

// NewDictionary pairs keys with values. Both must have the same row count.
func NewDictionary(keys, values *Table) (*Dictionary, error) {
	if err := validatePair("new dictionary", keys, values); err != nil {
		return nil, err
	}
	return &Dictionary{keys: keys, values: values}, nil
}

// Keys returns the key table.
func (d *Dictionary) Keys() *Table {
	return d.keys
}

// Values returns the value table.
func (d *Dictionary) Values() *Table {
	return d.values
}

// validatePair checks that keys and values can be row-aligned
func validatePair(operation string, keys, values *Table) error {
	if keys == nil || values == nil {
		return NewErrorContext(operation).WithDetails("nil key or value table").Error(ErrInvalidInput)
	}
	if keys.rows != values.rows {
		return NewErrorContext(operation).Error(&MismatchError{
			Subject:  "keys vs values",
			Expected: keys.rows,
			Actual:   values.rows,
		})
	}
	return nil
}
