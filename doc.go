// Package qframe converts kdb+/q query results into typed, null-aware
// frames and renders them for notebook-style consoles.
//
// A query result arrives as raw columns: a name, a kdb+ type code and the
// values in their native encoding. Nulls are in-band sentinels (0N, 0n, `
// and so on) and temporal values are integer or float offsets from the kdb+
// epoch, 2000-01-01. Conversion turns those into a Series whose missing
// positions are explicit and whose temporal values are time.Time or
// time.Duration.
//
// # Features
//
//   - All nineteen kdb+ atom types, including guid, month, datetime and timespan
//   - Tables, keyed tables and dictionaries assembled into frames with an index
//   - HTML and text rendering with head/tail truncation of long results
//   - A console that runs queries through a client and keeps the last result
//   - Export to CSV, TSV, LTSV, Parquet and XLSX, optionally compressed
//     (gzip, xz, zstandard, lz4)
//   - Arrow records with the kdb+ type kept in field metadata
//   - SQL over frames through the driver subpackage
//
// # Basic Usage
//
//	table, err := qframe.NewTable(dateCol, symCol, priceCol)
//	if err != nil {
//		return err
//	}
//	frame, err := qframe.Assemble(table)
//	if err != nil {
//		return err
//	}
//	html, err := qframe.Render(frame)
//
// Keyed tables put their keys in the frame index:
//
//	kt, err := qframe.NewKeyedTable(keys, values)
//	frame, err := qframe.AssembleValue(kt)
//	frame.IndexNames() // key column names
//
// # Exporting
//
//	path, err := qframe.DumpFrame(frame, "./out", "trades",
//		qframe.NewDumpOptions().
//			WithFormat(qframe.OutputFormatParquet).
//			WithCompression(qframe.CompressionNone))
//
// # Missing values
//
// Booleans have no null. Every other type maps its sentinel to a missing
// position, rendered as NaN for plain values and NaT for temporal ones, and
// exported as an empty field, a null Arrow slot or an empty cell.
package qframe
