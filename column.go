package qframe

import (
	"fmt"
	"strconv"
	"strings"
)

// Column is a named vector as delivered by the database client: a type tag
// and a Go slice holding the raw wire encoding, null sentinels included.
//
// The slice type must match the tag, see the TypeTag constants. A Column
// never modifies its data, and nothing in this package writes to it.
type Column struct {
	name string
	tag  TypeTag
	data any
}

// NewColumn creates a column. It fails with ErrUnsupportedType for an
// unknown tag and with ErrInvalidInput when data is not a slice of the
// storage type of tag.
func NewColumn(name string, tag TypeTag, data any) (*Column, error) {
	spec, err := lookupNull(tag)
	if err != nil {
		return nil, NewErrorContext("new column").WithColumn(name).Error(err)
	}
	if !spec.storage.accepts(data) {
		return nil, NewErrorContext("new column").
			WithColumn(name).
			WithDetails(fmt.Sprintf("%s expects %s, got %T", tag, spec.storage.name, data)).
			Error(ErrInvalidInput)
	}
	return &Column{name: name, tag: tag, data: data}, nil
}

// Name returns the column name.
func (c *Column) Name() string {
	return c.name
}

// Type returns the type tag.
func (c *Column) Type() TypeTag {
	return c.tag
}

// Data returns the raw slice. Callers must not modify it.
func (c *Column) Data() any {
	return c.data
}

// Len returns the number of elements.
func (c *Column) Len() int {
	return nullRegistry[c.tag].storage.length(c.data)
}

// Raw returns element i in its wire encoding.
func (c *Column) Raw(i int) any {
	return nullRegistry[c.tag].storage.at(c.data, i)
}

// String renders the raw values as a bracketed sequence.
func (c *Column) String() string {
	return "[" + strings.Join(rawStrings(c), " ") + "]"
}

// rawStrings formats every element of c in its wire encoding, without any
// null substitution.
func rawStrings(c *Column) []string {
	out := make([]string, c.Len())
	for i := range out {
		if c.tag == TypeChar {
			out[i] = string([]byte{c.Raw(i).(byte)})
			continue
		}
		out[i] = formatRaw(c.Raw(i))
	}
	return out
}

func formatRaw(v any) string {
	switch x := v.(type) {
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
