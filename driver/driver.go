package driver

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nao1215/qframe"
	"modernc.org/sqlite"
)

// DriverName is the name the driver is registered under with database/sql
const DriverName = "qframe"

// SQL text layouts of timestamp columns, by resolution
const (
	sqlLayoutDay    = "2006-01-02"
	sqlLayoutMillis = "2006-01-02 15:04:05.000"
	sqlLayoutNanos  = "2006-01-02 15:04:05.000000000"
)

// NamedFrame is a frame together with the table name it is queried under.
// The name is sanitized the way dumped file names are.
type NamedFrame struct {
	Name  string
	Frame *qframe.Frame
}

// Driver implements database/sql/driver.Driver interface.
// Data source names refer to frame sets registered with Register.
type Driver struct {
	mu      sync.RWMutex
	sources map[string][]NamedFrame
}

// Connector implements database/sql/driver.Connector interface.
// It holds the frames that every new connection loads.
type Connector struct {
	driver *Driver
	tables []NamedFrame
	logger *slog.Logger
}

// Connection implements database/sql/driver.Conn interface.
// It wraps an in-memory SQLite connection that contains the loaded frames.
type Connection struct {
	conn driver.Conn
}

// Transaction implements database/sql/driver.Tx interface.
type Transaction struct {
	tx driver.Tx
}

var defaultDriver = NewDriver()

func init() {
	sql.Register(DriverName, defaultDriver)
}

// NewDriver creates a new driver without registered data sources
func NewDriver() *Driver {
	return &Driver{sources: make(map[string][]NamedFrame)}
}

// Register makes tables available to sql.Open(DriverName, dsn). Registering
// the same dsn again replaces its frames.
func Register(dsn string, tables ...NamedFrame) error {
	return defaultDriver.Register(dsn, tables...)
}

// Register makes tables available under dsn.
func (d *Driver) Register(dsn string, tables ...NamedFrame) error {
	if _, err := normalizeTables(tables); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sources[dsn] = append([]NamedFrame(nil), tables...)
	return nil
}

// Open implements driver.Driver interface
func (d *Driver) Open(dsn string) (driver.Conn, error) {
	connector, err := d.OpenConnector(dsn)
	if err != nil {
		return nil, err
	}
	return connector.Connect(context.Background())
}

// OpenConnector implements driver.DriverContext interface
func (d *Driver) OpenConnector(dsn string) (driver.Connector, error) {
	d.mu.RLock()
	tables, ok := d.sources[dsn]
	d.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDSN, dsn)
	}
	connector, err := NewConnector(tables...)
	if err != nil {
		return nil, err
	}
	connector.driver = d
	return connector, nil
}

// NewConnector validates tables and returns a connector that loads them into
// every new connection.
func NewConnector(tables ...NamedFrame) (*Connector, error) {
	normalized, err := normalizeTables(tables)
	if err != nil {
		return nil, err
	}
	return &Connector{
		driver: defaultDriver,
		tables: normalized,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// Open returns a database over tables. The frames are loaded before Open
// returns, so loading errors surface here.
func Open(ctx context.Context, tables ...NamedFrame) (*sql.DB, error) {
	connector, err := NewConnector(tables...)
	if err != nil {
		return nil, err
	}
	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// normalizeTables sanitizes table names and checks them and their columns
func normalizeTables(tables []NamedFrame) ([]NamedFrame, error) {
	if len(tables) == 0 {
		return nil, ErrNoFramesProvided
	}
	out := make([]NamedFrame, len(tables))
	seen := make(map[string]bool, len(tables))
	for i, t := range tables {
		if t.Frame == nil {
			return nil, fmt.Errorf("%w: %s", ErrNilFrame, t.Name)
		}
		name := qframe.NewTableName(t.Name).Sanitize().String()
		key := strings.ToLower(name)
		if seen[key] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTableName, name)
		}
		seen[key] = true

		columns := make([]string, 0, t.Frame.NumCols())
		for _, s := range t.Frame.Flatten() {
			columns = append(columns, s.Name())
		}
		if err := ValidateColumnNames(columns); err != nil {
			return nil, fmt.Errorf("table %s: %w", name, err)
		}
		out[i] = NamedFrame{Name: name, Frame: t.Frame}
	}
	return out, nil
}

// WithLogger sets the logger used for load events.
func (c *Connector) WithLogger(logger *slog.Logger) *Connector {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// Connect implements driver.Connector interface
func (c *Connector) Connect(ctx context.Context) (driver.Conn, error) {
	sqliteDriver := &sqlite.Driver{}
	conn, err := sqliteDriver.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory database: %w", err)
	}

	for _, table := range c.tables {
		start := time.Now()
		if err := c.loadFrame(ctx, conn, table); err != nil {
			_ = conn.Close() // Ignore close error since we're already returning an error
			c.logger.ErrorContext(ctx, "failed to load frame", slog.String("table", table.Name), slog.Any("error", err))
			return nil, fmt.Errorf("failed to load table %s: %w", table.Name, err)
		}
		c.logger.DebugContext(ctx, "loaded frame",
			slog.String("table", table.Name),
			slog.Int("rows", table.Frame.NumRows()),
			slog.Int("columns", table.Frame.NumCols()),
			slog.Duration("elapsed", time.Since(start)))
	}

	return &Connection{conn: conn}, nil
}

// Driver implements driver.Connector interface
func (c *Connector) Driver() driver.Driver {
	return c.driver
}

// loadFrame creates the table and inserts every row
func (c *Connector) loadFrame(ctx context.Context, conn driver.Conn, table NamedFrame) error {
	series := table.Frame.Flatten()
	if err := c.execStatement(ctx, conn, buildCreateTableQuery(table.Name, series), nil); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	if table.Frame.NumRows() == 0 {
		return nil
	}

	stmt, err := conn.Prepare(buildInsertQuery(table.Name, len(series)))
	if err != nil {
		return err
	}
	defer stmt.Close()

	args := make([]driver.NamedValue, len(series))
	for row := range table.Frame.NumRows() {
		for i, s := range series {
			args[i] = driver.NamedValue{Ordinal: i + 1, Value: sqlValue(s, row)}
		}
		if err := execPrepared(ctx, stmt, args); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", row, err)
		}
	}
	return nil
}

// buildCreateTableQuery constructs a CREATE TABLE query for the given series
func buildCreateTableQuery(name string, series []*qframe.Series) string {
	columns := make([]string, 0, len(series))
	for _, s := range series {
		columns = append(columns, fmt.Sprintf(`[%s] %s`, s.Name(), sqlType(s)))
	}
	return fmt.Sprintf(`CREATE TABLE [%s] (%s)`, name, strings.Join(columns, ", "))
}

// buildInsertQuery constructs an INSERT query with count placeholders
func buildInsertQuery(name string, count int) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", count), ", ")
	return fmt.Sprintf(`INSERT INTO [%s] VALUES (%s)`, name, placeholders)
}

// sqlType returns the declared SQLite type of a series
func sqlType(s *qframe.Series) string {
	switch s.Kind() {
	case qframe.KindTimestamp:
		return "TEXT"
	case qframe.KindDuration:
		return "INTEGER"
	}
	switch s.Type() {
	case qframe.TypeBoolean, qframe.TypeByte, qframe.TypeShort, qframe.TypeInt, qframe.TypeLong:
		return "INTEGER"
	case qframe.TypeReal, qframe.TypeFloat:
		return "REAL"
	default:
		return "TEXT"
	}
}

// sqlValue returns element i as a driver.Value, nil when missing
func sqlValue(s *qframe.Series, i int) driver.Value {
	v, ok := s.Value(i)
	if !ok {
		return nil
	}
	switch x := v.(type) {
	case bool:
		if x {
			return int64(1)
		}
		return int64(0)
	case byte:
		if s.Type() == qframe.TypeChar {
			return string(rune(x))
		}
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case float32:
		return float64(x)
	case float64:
		return x
	case string:
		return x
	case uuid.UUID:
		return x.String()
	case time.Time:
		return x.Format(sqlLayout(s.Unit()))
	case time.Duration:
		return int64(x)
	default:
		return fmt.Sprint(x)
	}
}

func sqlLayout(unit qframe.Unit) string {
	switch unit {
	case qframe.UnitMonth, qframe.UnitDay:
		return sqlLayoutDay
	case qframe.UnitMillisecond:
		return sqlLayoutMillis
	default:
		return sqlLayoutNanos
	}
}

// execStatement prepares and executes a statement without results
func (c *Connector) execStatement(ctx context.Context, conn driver.Conn, query string, args []driver.NamedValue) error {
	stmt, err := conn.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()
	return execPrepared(ctx, stmt, args)
}

func execPrepared(ctx context.Context, stmt driver.Stmt, args []driver.NamedValue) error {
	stmtExecCtx, ok := stmt.(driver.StmtExecContext)
	if !ok {
		return ErrStmtExecContextNotSupported
	}
	_, err := stmtExecCtx.ExecContext(ctx, args)
	return err
}

// Close implements driver.Conn interface
func (conn *Connection) Close() error {
	if conn.conn != nil {
		return conn.conn.Close()
	}
	return nil
}

// Begin implements driver.Conn interface (deprecated, use BeginTx instead)
func (conn *Connection) Begin() (driver.Tx, error) {
	return conn.BeginTx(context.Background(), driver.TxOptions{})
}

// BeginTx implements driver.ConnBeginTx interface
func (conn *Connection) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	if connBeginTx, ok := conn.conn.(driver.ConnBeginTx); ok {
		tx, err := connBeginTx.BeginTx(ctx, opts)
		if err != nil {
			return nil, err
		}
		return &Transaction{tx: tx}, nil
	}
	return nil, ErrBeginTxNotSupported
}

// Commit implements driver.Tx interface
func (t *Transaction) Commit() error {
	return t.tx.Commit()
}

// Rollback implements driver.Tx interface
func (t *Transaction) Rollback() error {
	return t.tx.Rollback()
}

// Prepare implements driver.Conn interface (deprecated, use PrepareContext instead)
func (conn *Connection) Prepare(query string) (driver.Stmt, error) {
	return conn.PrepareContext(context.Background(), query)
}

// PrepareContext implements driver.ConnPrepareContext interface
func (conn *Connection) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	if connPrepareCtx, ok := conn.conn.(driver.ConnPrepareContext); ok {
		return connPrepareCtx.PrepareContext(ctx, query)
	}
	return nil, ErrPrepareContextNotSupported
}

// TableNames returns the names of the loaded tables, in load order.
func (c *Connector) TableNames() []string {
	names := make([]string, len(c.tables))
	for i, t := range c.tables {
		names[i] = t.Name
	}
	return names
}
