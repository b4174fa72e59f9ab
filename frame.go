package qframe

import (
	"fmt"
	"slices"
)

// Frame is the converted form of a table: an ordered list of series of equal
// length, some of which may be designated as the composite row index.
//
// For keyed tables and dictionaries the value columns come first, followed by
// the key columns, and the key columns form the index. Names may repeat when a
// key column and a value column share a name; lookups by name prefer the index.
type Frame struct {
	series []*Series
	// index holds the positions of the index series, in key order
	index []int
	rows  int
}

// Assemble converts every column of t, in declared order, into a frame
// without index.
func Assemble(t *Table) (*Frame, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil table", ErrInvalidInput)
	}
	series, err := convertTable(t)
	if err != nil {
		return nil, err
	}
	return &Frame{series: series, rows: t.rows}, nil
}

// AssembleKeyed converts the value columns, then the key columns, and
// designates the key columns as the index. Tables with different row counts
// fail with ErrStructuralMismatch.
func AssembleKeyed(keys, values *Table) (*Frame, error) {
	if err := validatePair("assemble keyed", keys, values); err != nil {
		return nil, err
	}

	valueSeries, err := convertTable(values)
	if err != nil {
		return nil, err
	}
	keySeries, err := convertTable(keys)
	if err != nil {
		return nil, err
	}

	index := make([]int, len(keySeries))
	for i := range keySeries {
		index[i] = len(valueSeries) + i
	}

	return &Frame{
		series: append(valueSeries, keySeries...),
		index:  index,
		rows:   values.rows,
	}, nil
}

// AssembleValue assembles a *Table, *KeyedTable or *Dictionary. A *Frame is
// returned as is. Nil pointers and anything else fail with ErrInvalidInput.
func AssembleValue(v any) (*Frame, error) {
	switch x := v.(type) {
	case *Frame:
		if x == nil {
			return nil, fmt.Errorf("%w: nil frame", ErrInvalidInput)
		}
		return x, nil
	case *Table:
		return Assemble(x)
	case *KeyedTable:
		if x == nil {
			return nil, fmt.Errorf("%w: nil keyed table", ErrInvalidInput)
		}
		return AssembleKeyed(x.keys, x.values)
	case *Dictionary:
		if x == nil {
			return nil, fmt.Errorf("%w: nil dictionary", ErrInvalidInput)
		}
		return AssembleKeyed(x.keys, x.values)
	default:
		return nil, fmt.Errorf("%w: %T is not a table, keyed table or dictionary", ErrInvalidInput, v)
	}
}

func convertTable(t *Table) ([]*Series, error) {
	series := make([]*Series, 0, len(t.columns))
	for _, col := range t.columns {
		s, err := ConvertColumn(col)
		if err != nil {
			return nil, err
		}
		series = append(series, s)
	}
	return series, nil
}

// NumRows returns the row count.
func (f *Frame) NumRows() int {
	return f.rows
}

// NumCols returns the number of series, index series included.
func (f *Frame) NumCols() int {
	return len(f.series)
}

// Series returns every series in frame order.
func (f *Frame) Series() []*Series {
	return slices.Clone(f.series)
}

// Names returns the name of every series in frame order.
func (f *Frame) Names() []string {
	names := make([]string, len(f.series))
	for i, s := range f.series {
		names[i] = s.name
	}
	return names
}

// HasIndex reports whether the frame has index columns.
func (f *Frame) HasIndex() bool {
	return len(f.index) > 0
}

// isIndex reports whether position pos is an index series
func (f *Frame) isIndex(pos int) bool {
	return slices.Contains(f.index, pos)
}

// IndexColumns returns the index series in key order.
func (f *Frame) IndexColumns() []*Series {
	out := make([]*Series, len(f.index))
	for i, pos := range f.index {
		out[i] = f.series[pos]
	}
	return out
}

// IndexNames returns the names of the index series.
func (f *Frame) IndexNames() []string {
	names := make([]string, len(f.index))
	for i, pos := range f.index {
		names[i] = f.series[pos].name
	}
	return names
}

// DataColumns returns the series that are not part of the index.
func (f *Frame) DataColumns() []*Series {
	out := make([]*Series, 0, len(f.series)-len(f.index))
	for pos, s := range f.series {
		if !f.isIndex(pos) {
			out = append(out, s)
		}
	}
	return out
}

// Flatten returns the index series followed by the data series. This is the
// column order used by every export.
func (f *Frame) Flatten() []*Series {
	return append(f.IndexColumns(), f.DataColumns()...)
}

// Column returns the series with the given name, preferring index series.
func (f *Frame) Column(name string) (*Series, bool) {
	for _, s := range f.IndexColumns() {
		if s.name == name {
			return s, true
		}
	}
	return f.DataColumn(name)
}

// DataColumn returns the data series with the given name.
func (f *Frame) DataColumn(name string) (*Series, bool) {
	for _, s := range f.DataColumns() {
		if s.name == name {
			return s, true
		}
	}
	return nil, false
}

// Index returns the index values of row i, NA or NaT for missing keys.
func (f *Frame) Index(i int) []any {
	out := make([]any, len(f.index))
	for k, pos := range f.index {
		out[k] = f.series[pos].At(i)
	}
	return out
}

// Row returns the data values of row i.
func (f *Frame) Row(i int) []any {
	data := f.DataColumns()
	out := make([]any, len(data))
	for k, s := range data {
		out[k] = s.At(i)
	}
	return out
}

// Equal reports whether both frames hold equal series with the same index.
func (f *Frame) Equal(other *Frame) bool {
	if f == nil || other == nil {
		return f == other
	}
	if f.rows != other.rows || !slices.Equal(f.index, other.index) || len(f.series) != len(other.series) {
		return false
	}
	for i, s := range f.series {
		if !s.Equal(other.series[i]) {
			return false
		}
	}
	return true
}
