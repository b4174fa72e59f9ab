package qframe

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// Fingerprint returns a 64-bit hash of the frame's names, types, index
// layout and elements. Equal frames have equal fingerprints, and converting
// the same input twice yields the same fingerprint.
func (f *Frame) Fingerprint() uint64 {
	h := xxhash.New()
	var buf [8]byte
	putInt := func(v int64) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		_, _ = h.Write(buf[:])
	}
	putString := func(s string) {
		putInt(int64(len(s)))
		_, _ = h.WriteString(s)
	}

	putInt(int64(f.rows))
	putInt(int64(len(f.index)))
	for _, pos := range f.index {
		putInt(int64(pos))
	}

	for _, s := range f.series {
		putString(s.name)
		putInt(int64(s.tag))
		for i := range s.missing {
			v, ok := s.Value(i)
			if !ok {
				_, _ = h.Write([]byte{0})
				continue
			}
			_, _ = h.Write([]byte{1})
			switch x := v.(type) {
			case bool:
				if x {
					putInt(1)
				} else {
					putInt(0)
				}
			case uuid.UUID:
				_, _ = h.Write(x[:])
			case byte:
				putInt(int64(x))
			case int16:
				putInt(int64(x))
			case int32:
				putInt(int64(x))
			case int64:
				putInt(x)
			case float32:
				putInt(int64(math.Float64bits(float64(x))))
			case float64:
				putInt(int64(math.Float64bits(x)))
			case string:
				putString(x)
			case time.Time:
				putInt(x.Unix())
				putInt(int64(x.Nanosecond()))
			case time.Duration:
				putInt(int64(x))
			}
		}
	}
	return h.Sum64()
}
