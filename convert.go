package qframe

import (
	"fmt"
	"time"
)

// ConvertColumn converts a raw column into a Series.
//
// Null sentinels become missing positions. Temporal columns are reinterpreted
// as counts of their unit: absolute types are anchored at the kdb+ epoch and
// yield time.Time values in UTC, duration types yield time.Duration values.
// Sentinel positions are never reinterpreted. A non-null temporal element
// with no time.Time or time.Duration equivalent fails with ErrInvalidInput.
//
// The input column is not modified and the result shares no memory with it.
func ConvertColumn(col *Column) (*Series, error) {
	if col == nil {
		return nil, fmt.Errorf("%w: nil column", ErrInvalidInput)
	}
	spec, err := lookupNull(col.tag)
	if err != nil {
		return nil, NewErrorContext("convert").WithColumn(col.name).Error(err)
	}
	mask := spec.mask(col.data)

	if entry, ok := temporalTable[col.tag]; ok {
		return convertTemporal(col, entry, mask)
	}
	if col.tag.IsTemporal() {
		// every temporal tag has a conversion; reaching here means the tables disagree
		return nil, NewErrorContext("convert").WithColumn(col.name).Error(&UnsupportedTypeError{Tag: col.tag})
	}

	return &Series{
		name:    col.name,
		tag:     col.tag,
		kind:    KindPlain,
		values:  spec.storage.clone(col.data, mask),
		missing: mask,
	}, nil
}

// convertTemporal fails with ErrInvalidInput on the first non-null element
// that has no time.Time or time.Duration equivalent, such as a datetime
// infinity or a minute count beyond ±292 years.
func convertTemporal(col *Column, entry temporalEntry, mask []bool) (*Series, error) {
	unit := entry.spec.Unit
	series := &Series{
		name:    col.name,
		tag:     col.tag,
		kind:    entry.spec.Kind(),
		unit:    unit,
		missing: mask,
	}

	if series.kind == KindTimestamp {
		times := make([]time.Time, len(mask))
		for i, isNull := range mask {
			if isNull {
				continue
			}
			n, ok := entry.units(col.data, i)
			if !ok {
				return nil, outOfRange(col, i)
			}
			times[i] = unit.add(entry.epoch, n)
		}
		series.values = times
		return series, nil
	}

	durations := make([]time.Duration, len(mask))
	for i, isNull := range mask {
		if isNull {
			continue
		}
		n, ok := entry.units(col.data, i)
		if ok {
			durations[i], ok = unit.toDuration(n)
		}
		if !ok {
			return nil, outOfRange(col, i)
		}
	}
	series.values = durations
	return series, nil
}

func outOfRange(col *Column, i int) error {
	return NewErrorContext("convert").
		WithColumn(col.name).
		WithDetails(fmt.Sprintf("row %d", i)).
		Error(fmt.Errorf("%w: %s value %v out of range", ErrInvalidInput, col.tag, col.Raw(i)))
}

// ConvertValue converts a value received from the database client that is
// expected to be a single column. Tables, keyed tables and dictionaries fail
// with ErrInvalidInput; use AssembleValue for those.
func ConvertValue(v any) (*Series, error) {
	switch x := v.(type) {
	case *Column:
		return ConvertColumn(x)
	case *Table, *KeyedTable, *Dictionary, *Frame:
		return nil, fmt.Errorf("%w: %T where a column was expected", ErrInvalidInput, v)
	default:
		return nil, fmt.Errorf("%w: %T is not a column", ErrInvalidInput, v)
	}
}
