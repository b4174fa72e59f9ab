package qframe

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/google/uuid"
)

// Field metadata keys set on every exported Arrow field
const (
	// ArrowMetaType holds the source type name, e.g. "timestamp"
	ArrowMetaType = "qframe.type"
	// ArrowMetaIndex is "true" for index columns
	ArrowMetaIndex = "qframe.index"
)

var (
	arrowGUID      = &arrow.FixedSizeBinaryType{ByteWidth: 16}
	arrowTimeMs    = &arrow.TimestampType{Unit: arrow.Millisecond, TimeZone: "UTC"}
	arrowTimeNs    = &arrow.TimestampType{Unit: arrow.Nanosecond, TimeZone: "UTC"}
	arrowDuration  = &arrow.DurationType{Unit: arrow.Nanosecond}
	arrowDataTypes = map[TypeTag]arrow.DataType{
		TypeBoolean:   arrow.FixedWidthTypes.Boolean,
		TypeGUID:      arrowGUID,
		TypeByte:      arrow.PrimitiveTypes.Uint8,
		TypeShort:     arrow.PrimitiveTypes.Int16,
		TypeInt:       arrow.PrimitiveTypes.Int32,
		TypeLong:      arrow.PrimitiveTypes.Int64,
		TypeReal:      arrow.PrimitiveTypes.Float32,
		TypeFloat:     arrow.PrimitiveTypes.Float64,
		TypeChar:      arrow.BinaryTypes.String,
		TypeSymbol:    arrow.BinaryTypes.String,
		TypeTimestamp: arrowTimeNs,
		TypeMonth:     arrow.FixedWidthTypes.Date32,
		TypeDate:      arrow.FixedWidthTypes.Date32,
		TypeDatetime:  arrowTimeMs,
		TypeTimespan:  arrowDuration,
		TypeMinute:    arrowDuration,
		TypeSecond:    arrowDuration,
		TypeTime:      arrowDuration,
	}
)

// ToArrow exports the frame as a single Arrow record, index columns first.
// Missing elements become Arrow nulls. Timestamps are UTC, months and dates
// become date32 and durations become duration[ns].
//
// The caller owns the record and must Release it. A nil allocator selects
// memory.DefaultAllocator.
func (f *Frame) ToArrow(mem memory.Allocator) (arrow.Record, error) {
	return f.toArrow(mem, false)
}

// toArrow builds the record. With plainDurations set, durations are stored
// as int64 nanoseconds, which every Parquet writer accepts.
func (f *Frame) toArrow(mem memory.Allocator, plainDurations bool) (arrow.Record, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: nil frame", ErrInvalidInput)
	}
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	series := f.Flatten()
	if len(series) == 0 {
		return nil, ErrNoColumns
	}

	fields := make([]arrow.Field, len(series))
	for i, s := range series {
		dataType, ok := arrowDataTypes[s.tag]
		if !ok {
			return nil, NewErrorContext("arrow export").WithColumn(s.name).Error(&UnsupportedTypeError{Tag: s.tag})
		}
		if plainDurations && s.kind == KindDuration {
			dataType = arrow.PrimitiveTypes.Int64
		}
		fields[i] = arrow.Field{
			Name:     s.name,
			Type:     dataType,
			Nullable: true,
			Metadata: arrow.NewMetadata(
				[]string{ArrowMetaType, ArrowMetaIndex},
				[]string{s.tag.String(), strconv.FormatBool(i < len(f.index))},
			),
		}
	}

	builder := array.NewRecordBuilder(mem, arrow.NewSchema(fields, nil))
	defer builder.Release()

	for i, s := range series {
		if err := appendSeries(builder.Field(i), s); err != nil {
			return nil, NewErrorContext("arrow export").WithColumn(s.name).Error(err)
		}
	}
	return builder.NewRecord(), nil
}

// appendEach appends every element of s through appendValue, and a null for
// each missing position.
func appendEach[T any](b array.Builder, s *Series, appendValue func(T)) {
	values := s.values.([]T)
	b.Reserve(len(values))
	for i, v := range values {
		if s.missing[i] {
			b.AppendNull()
			continue
		}
		appendValue(v)
	}
}

func appendSeries(b array.Builder, s *Series) error {
	switch bld := b.(type) {
	case *array.BooleanBuilder:
		appendEach(b, s, bld.Append)
	case *array.FixedSizeBinaryBuilder:
		appendEach(b, s, func(u uuid.UUID) { bld.Append(u[:]) })
	case *array.Uint8Builder:
		appendEach(b, s, bld.Append)
	case *array.Int16Builder:
		appendEach(b, s, bld.Append)
	case *array.Int32Builder:
		appendEach(b, s, bld.Append)
	case *array.Int64Builder:
		if s.kind == KindDuration {
			appendEach(b, s, func(d time.Duration) { bld.Append(int64(d)) })
			break
		}
		appendEach(b, s, bld.Append)
	case *array.Float32Builder:
		appendEach(b, s, bld.Append)
	case *array.Float64Builder:
		appendEach(b, s, bld.Append)
	case *array.StringBuilder:
		if s.tag == TypeChar {
			appendEach(b, s, func(c byte) { bld.Append(string(rune(c))) })
			break
		}
		appendEach(b, s, bld.Append)
	case *array.Date32Builder:
		appendEach(b, s, func(t time.Time) { bld.Append(arrow.Date32FromTime(t)) })
	case *array.TimestampBuilder:
		if s.unit == UnitNanosecond {
			if err := checkUnixNanos(s); err != nil {
				return err
			}
			appendEach(b, s, func(t time.Time) { bld.Append(arrow.Timestamp(t.UnixNano())) })
			break
		}
		appendEach(b, s, func(t time.Time) { bld.Append(arrow.Timestamp(t.UnixMilli())) })
	case *array.DurationBuilder:
		appendEach(b, s, func(d time.Duration) { bld.Append(arrow.Duration(d)) })
	default:
		return fmt.Errorf("%w: no arrow builder for %s", ErrUnsupportedType, s.tag)
	}
	return nil
}

// Instants representable as int64 nanoseconds since the Unix epoch
var (
	minUnixNanos = time.Unix(0, math.MinInt64).UTC()
	maxUnixNanos = time.Unix(0, math.MaxInt64).UTC()
)

// checkUnixNanos rejects timestamps after 2262-04-11, which timestamp[ns]
// cannot hold.
func checkUnixNanos(s *Series) error {
	for i, t := range s.values.([]time.Time) {
		if s.missing[i] {
			continue
		}
		if t.Before(minUnixNanos) || t.After(maxUnixNanos) {
			return fmt.Errorf("%w: row %d: %s outside the timestamp[ns] range", ErrInvalidInput, i, t.Format(time.RFC3339Nano))
		}
	}
	return nil
}
