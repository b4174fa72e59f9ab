package driver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/qframe"
)

// Builder collects query results under table names and opens a database
// over them. Values are assembled into frames during Build, concurrently.
//
// The typical usage pattern is:
//
//	builder, err := driver.NewBuilder().
//		AddValue("trades", tradesTable).
//		AddFrame("quotes", quotes).
//		Build(ctx)
//	if err != nil {
//		return err
//	}
//	db, err := builder.Open(ctx)
//	defer db.Close()
type Builder struct {
	// names holds the table name of each pending value
	names []string
	// values holds tables, keyed tables, dictionaries or frames
	values []any
	// tables is populated by Build
	tables []NamedFrame
	logger *slog.Logger
}

// NewBuilder creates an empty builder
func NewBuilder() *Builder {
	return &Builder{
		names:  make([]string, 0),
		values: make([]any, 0),
	}
}

// AddFrame adds an assembled frame under name.
// Returns the builder for method chaining.
func (b *Builder) AddFrame(name string, frame *qframe.Frame) *Builder {
	return b.AddValue(name, frame)
}

// AddValue adds a table, keyed table, dictionary or frame under name. The
// value is assembled during Build.
// Returns the builder for method chaining.
func (b *Builder) AddValue(name string, value any) *Builder {
	b.names = append(b.names, name)
	b.values = append(b.values, value)
	return b
}

// WithLogger sets the logger handed to the connector.
// Returns the builder for method chaining.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// Build assembles every added value and validates the resulting tables.
// It must be called before Open, Connector or Dump.
func (b *Builder) Build(ctx context.Context) (*Builder, error) {
	if len(b.values) == 0 {
		return nil, ErrNoFramesProvided
	}
	for i, v := range b.values {
		if f, ok := v.(*qframe.Frame); (ok && f == nil) || v == nil {
			return nil, fmt.Errorf("%w: %s", ErrNilFrame, b.names[i])
		}
	}

	frames, err := qframe.AssembleAll(ctx, b.values...)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble frames: %w", err)
	}

	tables := make([]NamedFrame, len(frames))
	for i, f := range frames {
		tables[i] = NamedFrame{Name: b.names[i], Frame: f}
	}
	normalized, err := normalizeTables(tables)
	if err != nil {
		return nil, err
	}
	b.tables = normalized
	return b, nil
}

// Connector returns a connector over the built tables
func (b *Builder) Connector() (*Connector, error) {
	if len(b.tables) == 0 {
		return nil, errors.New("no frames built, did you call Build()?")
	}
	connector, err := NewConnector(b.tables...)
	if err != nil {
		return nil, err
	}
	return connector.WithLogger(b.logger), nil
}

// Open returns a database over the built tables and checks that they load.
func (b *Builder) Open(ctx context.Context) (*sql.DB, error) {
	connector, err := b.Connector()
	if err != nil {
		return nil, err
	}
	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		closeErr := db.Close()
		if closeErr != nil {
			return nil, errors.Join(err, fmt.Errorf("failed to close database: %w", closeErr))
		}
		return nil, err
	}
	return db, nil
}

// Dump writes every built table to outputDir, one file per table, and
// returns the written paths in table order.
func (b *Builder) Dump(outputDir string, opts ...qframe.DumpOptions) ([]string, error) {
	if len(b.tables) == 0 {
		return nil, errors.New("no frames built, did you call Build()?")
	}
	paths := make([]string, 0, len(b.tables))
	for _, t := range b.tables {
		path, err := qframe.DumpFrame(t.Frame, outputDir, t.Name, opts...)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Tables returns the built tables in the order they were added
func (b *Builder) Tables() []NamedFrame {
	return append([]NamedFrame(nil), b.tables...)
}
