package qframe

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/xuri/excelize/v2"
)

// OutputFormat represents the output file format
type OutputFormat int

const (
	// OutputFormatCSV represents CSV output format
	OutputFormatCSV OutputFormat = iota
	// OutputFormatTSV represents TSV output format
	OutputFormatTSV
	// OutputFormatLTSV represents LTSV output format
	OutputFormatLTSV
	// OutputFormatParquet represents Parquet output format
	OutputFormatParquet
	// OutputFormatXLSX represents Excel XLSX output format
	OutputFormatXLSX
)

// String returns the string representation of OutputFormat
func (f OutputFormat) String() string {
	switch f {
	case OutputFormatTSV:
		return "tsv"
	case OutputFormatLTSV:
		return "ltsv"
	case OutputFormatParquet:
		return "parquet"
	case OutputFormatXLSX:
		return "xlsx"
	default:
		return "csv"
	}
}

// Extension returns the file extension for the format
func (f OutputFormat) Extension() string {
	return "." + f.String()
}

const (
	// parquetRowGroupSize is the maximum number of rows per Parquet row group
	parquetRowGroupSize = 64 * 1024
	// xlsxMaxSheetName is the longest sheet name Excel accepts
	xlsxMaxSheetName = 31
	defaultSheetName = "Sheet1"
)

// DumpOptions configures how frames are exported to files.
//
// Example:
//
//	options := NewDumpOptions().
//		WithFormat(OutputFormatTSV).
//		WithCompression(CompressionGZ)
//
//	path, err := DumpFrame(frame, "./output", "trades", options)
type DumpOptions struct {
	// Format specifies the output file format
	Format OutputFormat
	// Compression specifies the compression type
	Compression CompressionType
}

// NewDumpOptions creates default export options (CSV, no compression).
func NewDumpOptions() DumpOptions {
	return DumpOptions{
		Format:      OutputFormatCSV,
		Compression: CompressionNone,
	}
}

// WithFormat sets the output file format.
//
// Options:
//   - OutputFormatCSV: Comma-separated values
//   - OutputFormatTSV: Tab-separated values
//   - OutputFormatLTSV: Labeled tab-separated values
//   - OutputFormatParquet: Apache Parquet columnar format
//   - OutputFormatXLSX: Excel workbook with a single sheet
func (o DumpOptions) WithFormat(format OutputFormat) DumpOptions {
	o.Format = format
	return o
}

// WithCompression adds compression to output files.
//
// Options:
//   - CompressionNone: No compression (default)
//   - CompressionGZ: Gzip compression (.gz)
//   - CompressionXZ: XZ compression (.xz)
//   - CompressionZSTD: Zstandard compression (.zst)
//   - CompressionLZ4: LZ4 compression (.lz4)
func (o DumpOptions) WithCompression(compression CompressionType) DumpOptions {
	o.Compression = compression
	return o
}

// FileExtension returns the complete file extension including compression
func (o DumpOptions) FileExtension() string {
	return o.Format.Extension() + o.Compression.Extension()
}

// DumpFrame writes f to outputDir under the sanitized name and returns the
// path of the created file. The directory is created if needed.
//
// Columns are written index first, in the order returned by Frame.Flatten.
// Missing elements are written as empty cells (Parquet nulls).
func DumpFrame(f *Frame, outputDir, name string, opts ...DumpOptions) (string, error) {
	options := NewDumpOptions()
	if len(opts) > 0 {
		options = opts[0]
	}
	if err := checkDumpable(f); err != nil {
		return "", err
	}

	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	tableName := NewTableName(name).Sanitize()
	path := filepath.Join(outputDir, tableName.String()+options.FileExtension())

	w, cleanup, err := createCompressedFile(path, options.Compression)
	if err != nil {
		return "", NewErrorContext("dump").WithTable(tableName.String()).Error(err)
	}
	if err := writeFormat(w, f, tableName, options.Format); err != nil {
		_ = cleanup()
		return "", NewErrorContext("dump").WithTable(tableName.String()).Error(err)
	}
	if err := cleanup(); err != nil {
		return "", NewErrorContext("dump").WithTable(tableName.String()).Error(err)
	}
	return path, nil
}

// WriteFrame writes f to w in the configured format and compression.
func WriteFrame(w io.Writer, f *Frame, opts ...DumpOptions) error {
	options := NewDumpOptions()
	if len(opts) > 0 {
		options = opts[0]
	}
	if err := checkDumpable(f); err != nil {
		return err
	}

	cw, cleanup, err := NewCompressionHandler(options.Compression).CreateWriter(w)
	if err != nil {
		return err
	}
	if err := writeFormat(cw, f, NewTableName(defaultSheetName), options.Format); err != nil {
		_ = cleanup()
		return err
	}
	return cleanup()
}

func checkDumpable(f *Frame) error {
	if f == nil {
		return fmt.Errorf("%w: nil frame", ErrInvalidInput)
	}
	if f.NumCols() == 0 {
		return ErrNoColumns
	}
	return nil
}

func writeFormat(w io.Writer, f *Frame, name TableName, format OutputFormat) error {
	switch format {
	case OutputFormatCSV:
		return writeDelimited(w, f, ',')
	case OutputFormatTSV:
		return writeDelimited(w, f, '\t')
	case OutputFormatLTSV:
		return writeLTSV(w, f)
	case OutputFormatParquet:
		return writeParquet(w, f)
	case OutputFormatXLSX:
		return writeXLSX(w, f, name)
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedFormat, format)
	}
}

// textCell returns the export form of element i; missing elements are empty
func textCell(s *Series, i int) string {
	if s.IsMissing(i) {
		return ""
	}
	return s.Format(i)
}

func writeDelimited(w io.Writer, f *Frame, delimiter rune) error {
	series := f.Flatten()
	writer := csv.NewWriter(w)
	writer.Comma = delimiter

	header := make([]string, len(series))
	for i, s := range series {
		header[i] = s.Name()
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(series))
	for row := range f.NumRows() {
		for i, s := range series {
			record[i] = textCell(s, row)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ltsvReplacer keeps labels and values on one field
var ltsvReplacer = strings.NewReplacer("\t", " ", "\n", " ", "\r", "")

func writeLTSV(w io.Writer, f *Frame) error {
	series := f.Flatten()
	fields := make([]string, len(series))
	for row := range f.NumRows() {
		for i, s := range series {
			fields[i] = ltsvReplacer.Replace(s.Name()) + ":" + ltsvReplacer.Replace(textCell(s, row))
		}
		if _, err := io.WriteString(w, strings.Join(fields, "\t")+"\n"); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row, err)
		}
	}
	return nil
}

// sinkWriter hides Close from writers that close their sink when done
type sinkWriter struct {
	io.Writer
}

func writeParquet(w io.Writer, f *Frame) error {
	record, err := f.toArrow(memory.DefaultAllocator, true)
	if err != nil {
		return err
	}
	defer record.Release()

	table := array.NewTableFromRecords(record.Schema(), []arrow.Record{record})
	defer table.Release()

	err = pqarrow.WriteTable(table, sinkWriter{w}, parquetRowGroupSize,
		parquet.NewWriterProperties(),
		pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema()))
	if err != nil {
		return fmt.Errorf("failed to write parquet: %w", err)
	}
	return nil
}

// xlsxCell returns the value stored in a worksheet cell: numbers and booleans
// keep their type, everything else uses the display form.
func xlsxCell(s *Series, i int) any {
	v, ok := s.Value(i)
	if !ok {
		return nil
	}
	switch x := v.(type) {
	case bool, int16, int32, int64, float32, float64:
		return x
	case byte:
		if s.tag == TypeByte {
			return int(x)
		}
	}
	return s.Format(i)
}

func writeXLSX(w io.Writer, f *Frame, name TableName) error {
	book := excelize.NewFile()
	defer func() {
		_ = book.Close()
	}()

	sheet := name.String()
	if len(sheet) > xlsxMaxSheetName {
		sheet = sheet[:xlsxMaxSheetName]
	}
	if sheet != defaultSheetName {
		if err := book.SetSheetName(defaultSheetName, sheet); err != nil {
			return fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	series := f.Flatten()
	header := make([]any, len(series))
	for i, s := range series {
		header[i] = s.Name()
	}
	if err := book.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	cells := make([]any, len(series))
	for row := range f.NumRows() {
		for i, s := range series {
			cells[i] = xlsxCell(s, row)
		}
		cell, err := excelize.CoordinatesToCellName(1, row+2)
		if err != nil {
			return err
		}
		if err := book.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row, err)
		}
	}

	if err := book.Write(w); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}
