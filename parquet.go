package qframe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/memory"
	pqfile "github.com/apache/arrow/go/v18/parquet/file"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
)

// ReadParquet reads a Parquet stream written by DumpFrame or WriteFrame back
// into an Arrow table. The stored Arrow schema, field metadata included, is
// restored. The caller must Release the table.
func ReadParquet(ctx context.Context, reader io.Reader) (arrow.Table, error) {
	// Parquet requires random access
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet data: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("empty parquet file")
	}

	pqReader, err := pqfile.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet reader: %w", err)
	}
	defer pqReader.Close()

	arrowReader, err := pqarrow.NewFileReader(pqReader, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}

	table, err := arrowReader.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read table: %w", err)
	}
	return table, nil
}

// ReadParquetFile opens a dumped Parquet file, decompressing it according to
// its extension, and reads it with ReadParquet.
func ReadParquetFile(ctx context.Context, path string) (arrow.Table, error) {
	reader, cleanup, err := OpenCompressed(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cleanup()
	}()
	return ReadParquet(ctx, reader)
}
