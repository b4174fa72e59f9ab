package qframe

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode"
)

// Querier evaluates a query on the database and returns the deserialized
// result: a *Column, *Table, *KeyedTable, *Dictionary or any scalar value.
type Querier interface {
	Query(ctx context.Context, expr string) (any, error)
}

// Client is a database connection that can both answer queries and report
// its status.
type Client interface {
	Conn
	Querier
}

// Result is one evaluated console query.
type Result struct {
	// Status is the connection status at the time of the query
	Status Status
	// Original is the query text as entered
	Original string
	// Query is the normalized text sent to the database
	Query string
	// Output is the rendered result
	Output string
	// Elapsed is the time spent in the database round trip
	Elapsed time.Duration
}

// Console runs queries typed by a user and renders their results. It keeps
// the last result, the way a browser session would.
//
// Thread Safety: All methods are safe for concurrent use by multiple goroutines.
type Console struct {
	client  Client
	logger  *slog.Logger
	options RenderOptions

	mu   sync.RWMutex
	last *Result
}

// NewConsole creates a console on top of client. Logging is disabled until
// WithLogger is called.
func NewConsole(client Client) *Console {
	return &Console{
		client:  client,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		options: NewRenderOptions(),
	}
}

// WithLogger sets the logger used for query events.
func (c *Console) WithLogger(logger *slog.Logger) *Console {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// WithRenderOptions sets how results are rendered.
func (c *Console) WithRenderOptions(options RenderOptions) *Console {
	c.options = options
	return c
}

// Status returns the current connection status.
func (c *Console) Status() Status {
	return StatusOf(c.client)
}

// Run normalizes text, sends it to the database and renders the result. On
// success the result becomes the one returned by Last.
func (c *Console) Run(ctx context.Context, text string) (*Result, error) {
	query, err := NormalizeQuery(text)
	if err != nil {
		return nil, err
	}

	c.logger.DebugContext(ctx, "running query", slog.String("query", query))
	start := time.Now()
	value, err := c.client.Query(ctx, query)
	elapsed := time.Since(start)
	if err != nil {
		c.logger.ErrorContext(ctx, "query failed",
			slog.String("query", query),
			slog.Duration("elapsed", elapsed),
			slog.Any("error", err))
		return nil, fmt.Errorf("qframe: query failed: %w", err)
	}

	output, err := Render(value, c.options)
	if err != nil {
		c.logger.ErrorContext(ctx, "rendering failed", slog.String("query", query), slog.Any("error", err))
		return nil, err
	}

	result := &Result{
		Status:   c.Status(),
		Original: text,
		Query:    query,
		Output:   output,
		Elapsed:  elapsed,
	}
	c.logger.InfoContext(ctx, "query completed",
		slog.String("query", query),
		slog.Duration("elapsed", elapsed),
		slog.String("result", fmt.Sprintf("%T", value)))

	c.mu.Lock()
	c.last = result
	c.mu.Unlock()
	return result, nil
}

// Last returns the most recent successful result.
func (c *Console) Last() (*Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last, c.last != nil
}

// Reset forgets the last result.
func (c *Console) Reset() {
	c.mu.Lock()
	c.last = nil
	c.mu.Unlock()
}

// NormalizeQuery flattens a multi-line query into the single line the
// database expects: newlines become spaces, carriage returns are dropped and
// runs of spaces collapse into one. Queries must be non-blank ASCII.
func NormalizeQuery(text string) (string, error) {
	for _, r := range text {
		if r > unicode.MaxASCII {
			return "", fmt.Errorf("%w: query contains non-ASCII character %q", ErrInvalidInput, r)
		}
	}

	query := strings.ReplaceAll(text, "\n", " ")
	query = strings.ReplaceAll(query, "\r", "")
	for strings.Contains(query, "  ") {
		query = strings.ReplaceAll(query, "  ", " ")
	}

	if strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("%w: empty query", ErrInvalidInput)
	}
	return query, nil
}
