package qframe

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrame_Fingerprint(t *testing.T) {
	t.Parallel()

	fingerprint := func(t *testing.T, columns ...*Column) uint64 {
		t.Helper()
		table, err := NewTable(columns...)
		require.NoError(t, err)
		frame, err := Assemble(table)
		require.NoError(t, err)
		return frame.Fingerprint()
	}

	base := fingerprint(t, mustColumn(t, "j", TypeLong, []int64{0, 1}))

	tests := []struct {
		name    string
		columns []*Column
	}{
		{name: "missing differs from zero", columns: []*Column{mustColumn(t, "j", TypeLong, []int64{math.MinInt64, 1})}},
		{name: "value changed", columns: []*Column{mustColumn(t, "j", TypeLong, []int64{0, 2})}},
		{name: "name changed", columns: []*Column{mustColumn(t, "k", TypeLong, []int64{0, 1})}},
		{name: "type changed", columns: []*Column{mustColumn(t, "j", TypeTimespan, []int64{0, 1})}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.NotEqual(t, base, fingerprint(t, tt.columns...))
		})
	}

	t.Run("same content, same fingerprint", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, base, fingerprint(t, mustColumn(t, "j", TypeLong, []int64{0, 1})))
	})

	t.Run("index layout counts", func(t *testing.T) {
		t.Parallel()

		kt := employeeTable(t)
		keyed, err := AssembleValue(kt)
		require.NoError(t, err)

		flat, err := NewTable(append(kt.Values().Columns(), kt.Keys().Columns()...)...)
		require.NoError(t, err)
		plain, err := Assemble(flat)
		require.NoError(t, err)

		assert.Equal(t, keyed.Names(), plain.Names())
		assert.NotEqual(t, keyed.Fingerprint(), plain.Fingerprint())
	})
}
