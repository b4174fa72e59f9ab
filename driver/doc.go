// Package driver provides a database/sql driver over converted frames.
//
// Frames are loaded into an in-memory SQLite database for every new
// connection, so they can be queried and joined with plain SQL:
//
//	db, err := driver.Open(ctx,
//		driver.NamedFrame{Name: "trades", Frame: trades},
//		driver.NamedFrame{Name: "quotes", Frame: quotes})
//	rows, err := db.QueryContext(ctx, "SELECT sym, SUM(size) FROM trades GROUP BY sym")
//
// Column mapping:
//   - booleans and integers: INTEGER
//   - reals and floats: REAL
//   - symbols, chars and guids: TEXT
//   - timestamps: TEXT in a sortable "YYYY-MM-DD HH:MM:SS" form SQLite date functions accept
//   - durations: INTEGER nanoseconds
//
// Missing elements are stored as NULL. Index columns come first.
package driver
