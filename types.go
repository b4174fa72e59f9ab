package qframe

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// TypeTag identifies the element encoding of a column. The numeric values are
// the kdb+ wire type codes of the corresponding vector types.
type TypeTag int8

const (
	// TypeBoolean is a boolean vector ([]bool). kdb+ has no boolean null.
	TypeBoolean TypeTag = 1
	// TypeGUID is a guid vector ([]uuid.UUID)
	TypeGUID TypeTag = 2
	// TypeByte is a byte vector ([]byte)
	TypeByte TypeTag = 4
	// TypeShort is a 16-bit integer vector ([]int16)
	TypeShort TypeTag = 5
	// TypeInt is a 32-bit integer vector ([]int32)
	TypeInt TypeTag = 6
	// TypeLong is a 64-bit integer vector ([]int64)
	TypeLong TypeTag = 7
	// TypeReal is a 32-bit float vector ([]float32)
	TypeReal TypeTag = 8
	// TypeFloat is a 64-bit float vector ([]float64)
	TypeFloat TypeTag = 9
	// TypeChar is a char vector ([]byte)
	TypeChar TypeTag = 10
	// TypeSymbol is a symbol vector ([]string)
	TypeSymbol TypeTag = 11
	// TypeTimestamp counts nanoseconds since 2000.01.01 ([]int64)
	TypeTimestamp TypeTag = 12
	// TypeMonth counts months since 2000.01 ([]int32)
	TypeMonth TypeTag = 13
	// TypeDate counts days since 2000.01.01 ([]int32)
	TypeDate TypeTag = 14
	// TypeDatetime holds fractional days since 2000.01.01 with millisecond precision ([]float64)
	TypeDatetime TypeTag = 15
	// TypeTimespan is a nanosecond duration ([]int64)
	TypeTimespan TypeTag = 16
	// TypeMinute is a minute-of-day duration ([]int32)
	TypeMinute TypeTag = 17
	// TypeSecond is a second-of-day duration ([]int32)
	TypeSecond TypeTag = 18
	// TypeTime is a millisecond time-of-day duration ([]int32)
	TypeTime TypeTag = 19
)

// AllTypeTags returns every type tag this package knows about, plain tags
// first, in wire-code order.
func AllTypeTags() []TypeTag {
	return []TypeTag{
		TypeBoolean, TypeGUID, TypeByte, TypeShort, TypeInt, TypeLong,
		TypeReal, TypeFloat, TypeChar, TypeSymbol,
		TypeTimestamp, TypeMonth, TypeDate, TypeDatetime,
		TypeTimespan, TypeMinute, TypeSecond, TypeTime,
	}
}

// String returns the kdb+ name of the type
func (t TypeTag) String() string {
	switch t {
	case TypeBoolean:
		return "boolean"
	case TypeGUID:
		return "guid"
	case TypeByte:
		return "byte"
	case TypeShort:
		return "short"
	case TypeInt:
		return "int"
	case TypeLong:
		return "long"
	case TypeReal:
		return "real"
	case TypeFloat:
		return "float"
	case TypeChar:
		return "char"
	case TypeSymbol:
		return "symbol"
	case TypeTimestamp:
		return "timestamp"
	case TypeMonth:
		return "month"
	case TypeDate:
		return "date"
	case TypeDatetime:
		return "datetime"
	case TypeTimespan:
		return "timespan"
	case TypeMinute:
		return "minute"
	case TypeSecond:
		return "second"
	case TypeTime:
		return "time"
	default:
		return fmt.Sprintf("unknown(%d)", int8(t))
	}
}

// IsTemporal reports whether the tag is one of the temporal types.
func (t TypeTag) IsTemporal() bool {
	return t >= TypeTimestamp && t <= TypeTime
}

// Unit is the resolution of a temporal type's integer encoding.
type Unit int

const (
	// UnitMonth counts calendar months
	UnitMonth Unit = iota + 1
	// UnitDay counts calendar days
	UnitDay
	// UnitMillisecond counts milliseconds
	UnitMillisecond
	// UnitMinute counts minutes
	UnitMinute
	// UnitSecond counts seconds
	UnitSecond
	// UnitNanosecond counts nanoseconds
	UnitNanosecond
)

// String returns the numpy-style unit code
func (u Unit) String() string {
	switch u {
	case UnitMonth:
		return "M"
	case UnitDay:
		return "D"
	case UnitMillisecond:
		return "ms"
	case UnitMinute:
		return "m"
	case UnitSecond:
		return "s"
	case UnitNanosecond:
		return "ns"
	default:
		return "unknown"
	}
}

// Duration returns the length of one unit. Months have no fixed length and
// return 0.
func (u Unit) Duration() time.Duration {
	switch u {
	case UnitDay:
		return 24 * time.Hour
	case UnitMillisecond:
		return time.Millisecond
	case UnitMinute:
		return time.Minute
	case UnitSecond:
		return time.Second
	case UnitNanosecond:
		return time.Nanosecond
	default:
		return 0
	}
}

// add moves t forward by n units. Months and days use calendar arithmetic.
// Smaller units are applied as whole days plus a remainder below one day, so
// n may exceed the range of time.Duration.
func (u Unit) add(t time.Time, n int64) time.Time {
	switch u {
	case UnitMonth:
		return t.AddDate(0, int(n), 0)
	case UnitDay:
		return t.AddDate(0, 0, int(n))
	}
	unit := u.Duration()
	if unit == 0 {
		return t
	}
	perDay := int64(24 * time.Hour / unit)
	return t.AddDate(0, 0, int(n/perDay)).Add(time.Duration(n%perDay) * unit)
}

// toDuration returns n units as a time.Duration, or false when the result
// does not fit in one.
func (u Unit) toDuration(n int64) (time.Duration, bool) {
	unit := u.Duration()
	if unit == 0 || n > int64(math.MaxInt64/unit) || n < int64(math.MinInt64/unit) {
		return 0, false
	}
	return time.Duration(n) * unit, true
}

// Kind classifies a converted column.
type Kind int

const (
	// KindPlain holds the raw values with nulls normalized
	KindPlain Kind = iota
	// KindTimestamp holds absolute instants
	KindTimestamp
	// KindDuration holds durations
	KindDuration
)

// String returns the string representation of Kind
func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindTimestamp:
		return "timestamp"
	case KindDuration:
		return "duration"
	default:
		return "unknown"
	}
}

// Marker is a representation-neutral missing value.
type Marker uint8

const (
	// NA marks a missing plain value
	NA Marker = iota + 1
	// NaT marks a missing temporal value
	NaT
)

// String returns the pandas spelling of the marker
func (m Marker) String() string {
	switch m {
	case NA:
		return "NaN"
	case NaT:
		return "NaT"
	default:
		return "?"
	}
}

// IsMissing reports whether v is one of the missing markers.
func IsMissing(v any) bool {
	_, ok := v.(Marker)
	return ok
}

// Character validation constants
const (
	// firstDigitChar represents the first numeric character
	firstDigitChar = '0'
	// lastDigitChar represents the last numeric character
	lastDigitChar = '9'
	// firstLowerChar represents the first lowercase letter
	firstLowerChar = 'a'
	// lastLowerChar represents the last lowercase letter
	lastLowerChar = 'z'
	// firstUpperChar represents the first uppercase letter
	firstUpperChar = 'A'
	// lastUpperChar represents the last uppercase letter
	lastUpperChar = 'Z'
	// underscoreChar represents the underscore character
	underscoreChar = '_'
)

// TableName is a name under which a frame is exported, either as a file
// name or as an SQL table name.
type TableName struct {
	value string
}

// NewTableName creates a new TableName. Blank names become "table".
func NewTableName(name string) TableName {
	if strings.TrimSpace(name) == "" {
		return TableName{value: "table"}
	}
	return TableName{value: strings.TrimSpace(name)}
}

// String returns the string representation of TableName
func (tn TableName) String() string {
	return tn.value
}

// Equal compares two table names
func (tn TableName) Equal(other TableName) bool {
	return tn.value == other.value
}

// Sanitize returns a version of the name that is safe as a file name and as
// an unquoted SQL identifier.
func (tn TableName) Sanitize() TableName {
	return TableName{value: tn.sanitizeString()}
}

// sanitizeString removes invalid characters from table names
func (tn TableName) sanitizeString() string {
	result := strings.ReplaceAll(tn.value, " ", "_")
	result = strings.ReplaceAll(result, "-", "_")
	result = strings.ReplaceAll(result, ".", "_")

	var sanitized strings.Builder
	for _, r := range result {
		if (r >= firstLowerChar && r <= lastLowerChar) ||
			(r >= firstUpperChar && r <= lastUpperChar) ||
			(r >= firstDigitChar && r <= lastDigitChar) ||
			r == underscoreChar {
			sanitized.WriteRune(r)
		}
	}

	finalResult := sanitized.String()

	// Ensure it doesn't start with a number
	if len(finalResult) > 0 && finalResult[0] >= firstDigitChar && finalResult[0] <= lastDigitChar {
		finalResult = "table_" + finalResult
	}

	if finalResult == "" {
		finalResult = "table"
	}

	return finalResult
}

// validateColumnNames checks for duplicate column names and returns error if found.
// Column name comparison is case-sensitive.
func validateColumnNames(columns []string) error {
	columnsSeen := make(map[string]bool)
	for _, col := range columns {
		trimmedCol := strings.TrimSpace(col)
		if columnsSeen[trimmedCol] {
			return fmt.Errorf("%w: %w: %s", ErrInvalidInput, errDuplicateColumnName, col)
		}
		columnsSeen[trimmedCol] = true
	}
	return nil
}
