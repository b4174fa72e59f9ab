package qframe

import (
	"math"
	"time"
)

// Offsets between the Unix epoch (1970-01-01) and the kdb+ epoch
// (2000-01-01), expressed in the unit of each absolute temporal type.
const (
	// EpochOffsetMonths is the kdb+ epoch in months since 1970.01
	EpochOffsetMonths = 360
	// EpochOffsetDays is the kdb+ epoch in days since 1970.01.01
	EpochOffsetDays = 10957
	// EpochOffsetMillis is the kdb+ epoch in milliseconds since the Unix epoch
	EpochOffsetMillis = 946684800000
	// EpochOffsetNanos is the kdb+ epoch in nanoseconds since the Unix epoch
	EpochOffsetNanos = 946684800000000000
)

// millisPerDay converts the fractional days of a datetime into milliseconds
const millisPerDay = 86400000

// maxDatetimeMillis bounds datetime values to about ±292 thousand years
// around the epoch. Infinities and larger magnitudes are out of range.
const maxDatetimeMillis = math.MaxInt64 / 1000

// unixEpoch is the standard epoch all offsets are relative to
var unixEpoch = time.Unix(0, 0).UTC()

// TemporalSpec describes how a temporal type's integer encoding maps onto
// time.Time or time.Duration.
type TemporalSpec struct {
	// Unit is the resolution of the encoding
	Unit Unit
	// Offset is the distance, in Unit, from the Unix epoch to the type's
	// epoch. Only meaningful when HasOffset is true.
	Offset int64
	// HasOffset is true for absolute types and false for durations
	HasOffset bool
}

// Kind returns KindTimestamp for absolute types and KindDuration otherwise.
func (s TemporalSpec) Kind() Kind {
	if s.HasOffset {
		return KindTimestamp
	}
	return KindDuration
}

// Epoch returns the instant that the raw value 0 stands for. The second
// result is false for durations.
func (s TemporalSpec) Epoch() (time.Time, bool) {
	if !s.HasOffset {
		return time.Time{}, false
	}
	return s.Unit.add(unixEpoch, s.Offset), true
}

// temporalEntry is one row of the conversion table
type temporalEntry struct {
	spec TemporalSpec
	// epoch is spec.Epoch(), precomputed
	epoch time.Time
	// units returns element i of the raw data as a count of spec.Unit, or
	// false when the element has no such count
	units func(data any, i int) (int64, bool)
}

func intUnits[T int32 | int64](data any, i int) (int64, bool) {
	return int64(data.([]T)[i]), true
}

// datetimeUnits turns fractional days into whole milliseconds
func datetimeUnits(data any, i int) (int64, bool) {
	ms := math.Round(data.([]float64)[i] * millisPerDay)
	if math.IsInf(ms, 0) || math.Abs(ms) > maxDatetimeMillis {
		return 0, false
	}
	return int64(ms), true
}

func absolute(unit Unit, offset int64, units func(any, int) (int64, bool)) temporalEntry {
	spec := TemporalSpec{Unit: unit, Offset: offset, HasOffset: true}
	epoch, _ := spec.Epoch()
	return temporalEntry{spec: spec, epoch: epoch, units: units}
}

func duration(unit Unit, units func(any, int) (int64, bool)) temporalEntry {
	return temporalEntry{spec: TemporalSpec{Unit: unit}, units: units}
}

// temporalTable maps every temporal type tag to its conversion. Read-only.
var temporalTable = map[TypeTag]temporalEntry{
	TypeMonth:     absolute(UnitMonth, EpochOffsetMonths, intUnits[int32]),
	TypeDate:      absolute(UnitDay, EpochOffsetDays, intUnits[int32]),
	TypeDatetime:  absolute(UnitMillisecond, EpochOffsetMillis, datetimeUnits),
	TypeTimestamp: absolute(UnitNanosecond, EpochOffsetNanos, intUnits[int64]),
	TypeMinute:    duration(UnitMinute, intUnits[int32]),
	TypeSecond:    duration(UnitSecond, intUnits[int32]),
	TypeTime:      duration(UnitMillisecond, intUnits[int32]),
	TypeTimespan:  duration(UnitNanosecond, intUnits[int64]),
}

// Temporal returns the conversion of a temporal type tag.
func Temporal(tag TypeTag) (TemporalSpec, error) {
	entry, ok := temporalTable[tag]
	if !ok {
		return TemporalSpec{}, &UnsupportedTypeError{Tag: tag}
	}
	return entry.spec, nil
}
