package driver

import "errors"

// Predefined errors
var (
	// ErrNoFramesProvided is returned when a connector is created without frames
	ErrNoFramesProvided = errors.New("qframe driver: no frames provided")

	// ErrNilFrame is returned when a named frame has no frame
	ErrNilFrame = errors.New("qframe driver: nil frame")

	// ErrUnknownDSN is returned when sql.Open names a data source that was never registered
	ErrUnknownDSN = errors.New("qframe driver: unknown data source name")

	// ErrStmtExecContextNotSupported is returned when statement does not support ExecContext
	ErrStmtExecContextNotSupported = errors.New("qframe driver: statement does not support ExecContext")

	// ErrBeginTxNotSupported is returned when underlying connection does not support BeginTx
	ErrBeginTxNotSupported = errors.New("qframe driver: underlying connection does not support BeginTx")

	// ErrPrepareContextNotSupported is returned when underlying connection does not support PrepareContext
	ErrPrepareContextNotSupported = errors.New("qframe driver: underlying connection does not support PrepareContext")

	// ErrDuplicateColumnName is returned when a frame contains duplicate column names
	ErrDuplicateColumnName = errors.New("qframe driver: duplicate column name")

	// ErrDuplicateTableName is returned when several frames would create the same table name
	ErrDuplicateTableName = errors.New("qframe driver: duplicate table name")
)
