package qframe

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Timestamp layouts per resolution, used for display and text export
const (
	layoutMonth  = "2006-01"
	layoutDay    = "2006-01-02"
	layoutMillis = "2006-01-02 15:04:05.000"
	layoutNanos  = "2006-01-02 15:04:05.000000000"
)

// Series is a converted column. Plain series hold a copy of the raw values;
// temporal series hold time.Time or time.Duration values. Positions that were
// null in the source are flagged missing and read back as NA or NaT.
//
// A Series is immutable once created.
type Series struct {
	name    string
	tag     TypeTag
	kind    Kind
	unit    Unit
	values  any
	missing []bool
}

// Name returns the series name.
func (s *Series) Name() string {
	return s.name
}

// Type returns the type tag of the source column.
func (s *Series) Type() TypeTag {
	return s.tag
}

// Kind returns whether the series is plain, timestamp or duration.
func (s *Series) Kind() Kind {
	return s.kind
}

// Unit returns the resolution of a temporal series and 0 for plain ones.
func (s *Series) Unit() Unit {
	return s.unit
}

// Len returns the number of elements.
func (s *Series) Len() int {
	return len(s.missing)
}

// IsMissing reports whether element i is missing.
func (s *Series) IsMissing(i int) bool {
	return s.missing[i]
}

// NullCount returns the number of missing elements.
func (s *Series) NullCount() int {
	n := 0
	for _, m := range s.missing {
		if m {
			n++
		}
	}
	return n
}

// Missing returns a copy of the missing mask.
func (s *Series) Missing() []bool {
	return slices.Clone(s.missing)
}

// marker returns the missing marker matching the series kind
func (s *Series) marker() Marker {
	if s.kind == KindPlain {
		return NA
	}
	return NaT
}

// Value returns element i and true, or nil and false when it is missing.
// Plain values keep their storage type; temporal values are time.Time or
// time.Duration.
func (s *Series) Value(i int) (any, bool) {
	if s.missing[i] {
		return nil, false
	}
	switch s.kind {
	case KindTimestamp:
		return s.values.([]time.Time)[i], true
	case KindDuration:
		return s.values.([]time.Duration)[i], true
	default:
		return nullRegistry[s.tag].storage.at(s.values, i), true
	}
}

// At returns element i, or NA / NaT when it is missing.
func (s *Series) At(i int) any {
	v, ok := s.Value(i)
	if !ok {
		return s.marker()
	}
	return v
}

// Values returns every element as returned by At.
func (s *Series) Values() []any {
	out := make([]any, s.Len())
	for i := range out {
		out[i] = s.At(i)
	}
	return out
}

// Times returns a copy of the instants of a timestamp series. Missing
// positions hold the zero time.
func (s *Series) Times() ([]time.Time, bool) {
	times, ok := s.values.([]time.Time)
	if !ok {
		return nil, false
	}
	return slices.Clone(times), true
}

// Durations returns a copy of the durations of a duration series. Missing
// positions hold 0.
func (s *Series) Durations() ([]time.Duration, bool) {
	durations, ok := s.values.([]time.Duration)
	if !ok {
		return nil, false
	}
	return slices.Clone(durations), true
}

// Format returns the display form of element i.
func (s *Series) Format(i int) string {
	v, ok := s.Value(i)
	if !ok {
		return s.marker().String()
	}
	switch x := v.(type) {
	case time.Time:
		return x.Format(s.layout())
	case time.Duration:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case uuid.UUID:
		return x.String()
	case byte:
		if s.tag == TypeChar {
			return string([]byte{x})
		}
		return fmt.Sprintf("0x%02x", x)
	default:
		return formatRaw(x)
	}
}

func (s *Series) layout() string {
	switch s.unit {
	case UnitMonth:
		return layoutMonth
	case UnitDay:
		return layoutDay
	case UnitMillisecond:
		return layoutMillis
	default:
		return layoutNanos
	}
}

// Equal reports whether both series have the same name, type and elements.
func (s *Series) Equal(other *Series) bool {
	if s == nil || other == nil {
		return s == other
	}
	if s.name != other.name || s.tag != other.tag || s.kind != other.kind || s.unit != other.unit {
		return false
	}
	if !slices.Equal(s.missing, other.missing) {
		return false
	}
	for i := range s.missing {
		a, ok := s.Value(i)
		if !ok {
			continue
		}
		b, _ := other.Value(i)
		if ta, isTime := a.(time.Time); isTime {
			if !ta.Equal(b.(time.Time)) {
				return false
			}
			continue
		}
		if a != b {
			return false
		}
	}
	return true
}
