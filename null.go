package qframe

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// storage describes the Go slice type a type tag is carried in.
type storage struct {
	// name is the slice type, used in error messages
	name string
	// accepts reports whether data is a slice of the storage type
	accepts func(data any) bool
	// length returns the number of elements of data
	length func(data any) int
	// at returns element i of data
	at func(data any, i int) any
	// clone copies data, zeroing the positions set in mask
	clone func(data any, mask []bool) any
}

func storageOf[T any]() storage {
	var zero []T
	return storage{
		name: fmt.Sprintf("%T", zero),
		accepts: func(data any) bool {
			_, ok := data.([]T)
			return ok
		},
		length: func(data any) int {
			return len(data.([]T))
		},
		at: func(data any, i int) any {
			return data.([]T)[i]
		},
		clone: func(data any, mask []bool) any {
			values := data.([]T)
			out := make([]T, len(values))
			for i, v := range values {
				if !mask[i] {
					out[i] = v
				}
			}
			return out
		},
	}
}

// nullSpec is one entry of the null registry.
type nullSpec struct {
	storage storage
	// sentinel is the raw null value, nil when the type has no null
	sentinel any
	// isNull reports whether a single raw value is the sentinel
	isNull func(v any) bool
	// mask marks the sentinel positions of data
	mask func(data any) []bool
}

// equalSentinel registers a sentinel compared by equality.
func equalSentinel[T comparable](sentinel T) nullSpec {
	return nullSpec{
		storage:  storageOf[T](),
		sentinel: sentinel,
		isNull: func(v any) bool {
			x, ok := v.(T)
			return ok && x == sentinel
		},
		mask: func(data any) []bool {
			values := data.([]T)
			mask := make([]bool, len(values))
			for i, v := range values {
				mask[i] = v == sentinel
			}
			return mask
		},
	}
}

// nanSentinel registers NaN as the sentinel. Any NaN payload is null.
func nanSentinel[T float32 | float64]() nullSpec {
	return nullSpec{
		storage:  storageOf[T](),
		sentinel: T(math.NaN()),
		isNull: func(v any) bool {
			x, ok := v.(T)
			return ok && math.IsNaN(float64(x))
		},
		mask: func(data any) []bool {
			values := data.([]T)
			mask := make([]bool, len(values))
			for i, v := range values {
				mask[i] = math.IsNaN(float64(v))
			}
			return mask
		},
	}
}

// noSentinel registers a type without a null value.
func noSentinel[T any]() nullSpec {
	return nullSpec{
		storage: storageOf[T](),
		isNull:  func(any) bool { return false },
		mask: func(data any) []bool {
			return make([]bool, len(data.([]T)))
		},
	}
}

// nullRegistry maps every type tag to its null sentinel. Read-only.
var nullRegistry = map[TypeTag]nullSpec{
	TypeBoolean:   noSentinel[bool](),
	TypeGUID:      equalSentinel(uuid.Nil),
	TypeByte:      equalSentinel(byte(0x00)),
	TypeShort:     equalSentinel(int16(math.MinInt16)),
	TypeInt:       equalSentinel(int32(math.MinInt32)),
	TypeLong:      equalSentinel(int64(math.MinInt64)),
	TypeReal:      nanSentinel[float32](),
	TypeFloat:     nanSentinel[float64](),
	TypeChar:      equalSentinel(byte(' ')),
	TypeSymbol:    equalSentinel(""),
	TypeTimestamp: equalSentinel(int64(math.MinInt64)),
	TypeMonth:     equalSentinel(int32(math.MinInt32)),
	TypeDate:      equalSentinel(int32(math.MinInt32)),
	TypeDatetime:  nanSentinel[float64](),
	TypeTimespan:  equalSentinel(int64(math.MinInt64)),
	TypeMinute:    equalSentinel(int32(math.MinInt32)),
	TypeSecond:    equalSentinel(int32(math.MinInt32)),
	TypeTime:      equalSentinel(int32(math.MinInt32)),
}

func lookupNull(tag TypeTag) (nullSpec, error) {
	spec, ok := nullRegistry[tag]
	if !ok {
		return nullSpec{}, &UnsupportedTypeError{Tag: tag}
	}
	return spec, nil
}

// Sentinel returns the raw null value of tag. The second result is false for
// types without a null (boolean).
func Sentinel(tag TypeTag) (any, bool, error) {
	spec, err := lookupNull(tag)
	if err != nil {
		return nil, false, err
	}
	return spec.sentinel, spec.sentinel != nil, nil
}

// IsNull reports whether v is the null sentinel of tag. Values whose Go type
// does not match the tag's storage are never null.
func IsNull(tag TypeTag, v any) (bool, error) {
	spec, err := lookupNull(tag)
	if err != nil {
		return false, err
	}
	return spec.isNull(v), nil
}

// NullMask returns a mask with the same length as col, true where the raw
// value is the null sentinel of the column's type.
func NullMask(col *Column) ([]bool, error) {
	if col == nil {
		return nil, fmt.Errorf("%w: nil column", ErrInvalidInput)
	}
	spec, err := lookupNull(col.tag)
	if err != nil {
		return nil, err
	}
	return spec.mask(col.data), nil
}
