package driver

import (
	"bytes"
	"context"
	"database/sql"
	"database/sql/driver"
	"log/slog"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/nao1215/qframe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustColumn(t *testing.T, name string, tag qframe.TypeTag, data any) *qframe.Column {
	t.Helper()
	col, err := qframe.NewColumn(name, tag, data)
	require.NoError(t, err)
	return col
}

// tradeFrame returns a three-row trade frame with one null in every column
func tradeFrame(t *testing.T) *qframe.Frame {
	t.Helper()
	table, err := qframe.NewTable(
		mustColumn(t, "date", qframe.TypeDate, []int32{0, 1, math.MinInt32}),
		mustColumn(t, "time", qframe.TypeTime, []int32{34200000, 0, math.MinInt32}),
		mustColumn(t, "sym", qframe.TypeSymbol, []string{"AAPL", "MSFT", ""}),
		mustColumn(t, "price", qframe.TypeFloat, []float64{101.5, math.NaN(), 99.25}),
		mustColumn(t, "size", qframe.TypeLong, []int64{100, math.MinInt64, 300}),
	)
	require.NoError(t, err)
	frame, err := qframe.Assemble(table)
	require.NoError(t, err)
	return frame
}

// employeeFrame returns the keyed frame eid -> (name, iq)
func employeeFrame(t *testing.T) *qframe.Frame {
	t.Helper()
	keys, err := qframe.NewTable(mustColumn(t, "eid", qframe.TypeLong, []int64{math.MinInt64, 1002}))
	require.NoError(t, err)
	values, err := qframe.NewTable(
		mustColumn(t, "name", qframe.TypeSymbol, []string{"Dent", "Beeblebrox"}),
		mustColumn(t, "iq", qframe.TypeLong, []int64{98, 42}),
	)
	require.NoError(t, err)
	frame, err := qframe.AssembleKeyed(keys, values)
	require.NoError(t, err)
	return frame
}

func openTrades(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(context.Background(),
		NamedFrame{Name: "trades", Frame: tradeFrame(t)},
		NamedFrame{Name: "employees", Frame: employeeFrame(t)},
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func TestNewConnector(t *testing.T) {
	t.Parallel()

	t.Run("sanitizes table names", func(t *testing.T) {
		t.Parallel()

		connector, err := NewConnector(
			NamedFrame{Name: "daily trades", Frame: tradeFrame(t)},
			NamedFrame{Name: "2024", Frame: tradeFrame(t)},
		)
		require.NoError(t, err)
		assert.Equal(t, []string{"daily_trades", "table_2024"}, connector.TableNames())
	})

	tests := []struct {
		name    string
		tables  func(t *testing.T) []NamedFrame
		wantErr error
	}{
		{
			name:    "no frames",
			tables:  func(*testing.T) []NamedFrame { return nil },
			wantErr: ErrNoFramesProvided,
		},
		{
			name:    "nil frame",
			tables:  func(*testing.T) []NamedFrame { return []NamedFrame{{Name: "t"}} },
			wantErr: ErrNilFrame,
		},
		{
			name: "duplicate table names",
			tables: func(t *testing.T) []NamedFrame {
				return []NamedFrame{
					{Name: "trades", Frame: tradeFrame(t)},
					{Name: "Trades", Frame: tradeFrame(t)},
				}
			},
			wantErr: ErrDuplicateTableName,
		},
		{
			name: "key and value share a column name",
			tables: func(t *testing.T) []NamedFrame {
				keys, err := qframe.NewTable(mustColumn(t, "id", qframe.TypeLong, []int64{1}))
				require.NoError(t, err)
				values, err := qframe.NewTable(mustColumn(t, "id", qframe.TypeSymbol, []string{"x"}))
				require.NoError(t, err)
				frame, err := qframe.AssembleKeyed(keys, values)
				require.NoError(t, err)
				return []NamedFrame{{Name: "ids", Frame: frame}}
			},
			wantErr: ErrDuplicateColumnName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewConnector(tt.tables(t)...)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestOpen_Queries(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("row count", func(t *testing.T) {
		t.Parallel()

		db := openTrades(t)
		var count int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM trades").Scan(&count))
		assert.Equal(t, 3, count)
	})

	t.Run("missing values are NULL", func(t *testing.T) {
		t.Parallel()

		db := openTrades(t)
		var sym string
		require.NoError(t, db.QueryRowContext(ctx, "SELECT sym FROM trades WHERE size IS NULL").Scan(&sym))
		assert.Equal(t, "MSFT", sym)

		var total int64
		require.NoError(t, db.QueryRowContext(ctx, "SELECT SUM(size) FROM trades").Scan(&total))
		assert.Equal(t, int64(400), total)

		var nulls int
		require.NoError(t, db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM trades WHERE date IS NULL AND time IS NULL AND sym IS NULL").Scan(&nulls))
		assert.Equal(t, 1, nulls)
	})

	t.Run("column types", func(t *testing.T) {
		t.Parallel()

		db := openTrades(t)
		var dateType, timeType, symType, priceType, sizeType string
		require.NoError(t, db.QueryRowContext(ctx,
			"SELECT typeof(date), typeof(time), typeof(sym), typeof(price), typeof(size) FROM trades WHERE sym = 'AAPL'").
			Scan(&dateType, &timeType, &symType, &priceType, &sizeType))
		assert.Equal(t, []string{"text", "integer", "text", "real", "integer"},
			[]string{dateType, timeType, symType, priceType, sizeType})

		var date string
		var clock int64
		require.NoError(t, db.QueryRowContext(ctx, "SELECT date, time FROM trades WHERE sym = 'AAPL'").Scan(&date, &clock))
		assert.Equal(t, "2000-01-01", date)
		assert.Equal(t, int64(34200000)*1000000, clock)
	})

	t.Run("date functions work on timestamps", func(t *testing.T) {
		t.Parallel()

		db := openTrades(t)
		var next string
		require.NoError(t, db.QueryRowContext(ctx,
			"SELECT date(date, '+1 day') FROM trades WHERE sym = 'MSFT'").Scan(&next))
		assert.Equal(t, "2000-01-03", next)
	})

	t.Run("keyed frames", func(t *testing.T) {
		t.Parallel()

		db := openTrades(t)
		var eid sql.NullInt64
		require.NoError(t, db.QueryRowContext(ctx, "SELECT eid FROM employees WHERE name = 'Dent'").Scan(&eid))
		assert.False(t, eid.Valid)

		require.NoError(t, db.QueryRowContext(ctx, "SELECT eid FROM employees WHERE iq = 42").Scan(&eid))
		assert.True(t, eid.Valid)
		assert.Equal(t, int64(1002), eid.Int64)

		rows, err := db.QueryContext(ctx, "SELECT * FROM employees")
		require.NoError(t, err)
		defer rows.Close()
		columns, err := rows.Columns()
		require.NoError(t, err)
		assert.Equal(t, []string{"eid", "name", "iq"}, columns)
	})

	t.Run("transactions", func(t *testing.T) {
		t.Parallel()

		db := openTrades(t)
		db.SetMaxOpenConns(1)

		tx, err := db.BeginTx(ctx, nil)
		require.NoError(t, err)
		_, err = tx.ExecContext(ctx, "INSERT INTO employees (eid, name, iq) VALUES (?, ?, ?)", 1003, "Prefect", 120)
		require.NoError(t, err)
		require.NoError(t, tx.Commit())

		var count int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM employees").Scan(&count))
		assert.Equal(t, 3, count)
	})
}

func TestOpen_ValueMapping(t *testing.T) {
	t.Parallel()

	id := uuid.MustParse("2d9a4b1e-5b3c-4c8e-9f1a-0b2c3d4e5f60")
	table, err := qframe.NewTable(
		mustColumn(t, "flag", qframe.TypeBoolean, []bool{true}),
		mustColumn(t, "id", qframe.TypeGUID, []uuid.UUID{id}),
		mustColumn(t, "side", qframe.TypeChar, []byte("B")),
		mustColumn(t, "ts", qframe.TypeTimestamp, []int64{1500}),
		mustColumn(t, "m", qframe.TypeMonth, []int32{1}),
		mustColumn(t, "qty", qframe.TypeReal, []float32{2.5}),
	)
	require.NoError(t, err)
	frame, err := qframe.Assemble(table)
	require.NoError(t, err)

	db, err := Open(context.Background(), NamedFrame{Name: "values", Frame: frame})
	require.NoError(t, err)
	defer db.Close()

	var (
		flag int64
		guid string
		side string
		ts   string
		m    string
		qty  float64
	)
	require.NoError(t, db.QueryRow("SELECT flag, id, side, ts, m, qty FROM [values]").
		Scan(&flag, &guid, &side, &ts, &m, &qty))
	assert.Equal(t, int64(1), flag)
	assert.Equal(t, id.String(), guid)
	assert.Equal(t, "B", side)
	assert.Equal(t, "2000-01-01 00:00:00.000001500", ts)
	assert.Equal(t, "2000-02-01", m)
	assert.InDelta(t, 2.5, qty, 0)
}

func TestRegister(t *testing.T) {
	t.Parallel()

	require.NoError(t, Register("driver-test-trades", NamedFrame{Name: "trades", Frame: tradeFrame(t)}))

	db, err := sql.Open(DriverName, "driver-test-trades")
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM trades WHERE price IS NOT NULL").Scan(&count))
	assert.Equal(t, 2, count)

	_, err = sql.Open(DriverName, "driver-test-unknown")
	assert.ErrorIs(t, err, ErrUnknownDSN)

	assert.ErrorIs(t, Register("driver-test-empty"), ErrNoFramesProvided)
}

func TestDriver_Open(t *testing.T) {
	t.Parallel()

	d := NewDriver()
	require.NoError(t, d.Register("people", NamedFrame{Name: "employees", Frame: employeeFrame(t)}))

	conn, err := d.Open("people")
	require.NoError(t, err)
	defer conn.Close()

	stmt, err := conn.Prepare("SELECT name FROM employees")
	require.NoError(t, err)
	defer stmt.Close()

	queryer, ok := stmt.(driver.StmtQueryContext)
	require.True(t, ok)
	rows, err := queryer.QueryContext(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, rows.Columns())
	require.NoError(t, rows.Close())

	_, err = d.Open("nobody")
	assert.ErrorIs(t, err, ErrUnknownDSN)
}

func TestConnector_WithLogger(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	connector, err := NewConnector(NamedFrame{Name: "trades", Frame: tradeFrame(t)})
	require.NoError(t, err)
	db := sql.OpenDB(connector.WithLogger(logger))
	defer db.Close()

	require.NoError(t, db.PingContext(context.Background()))
	assert.Contains(t, logs.String(), "loaded frame")
	assert.Contains(t, logs.String(), "table=trades")
	assert.Contains(t, logs.String(), "rows=3")
}
