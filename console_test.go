package qframe

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient answers queries from a fixed map and records what it was sent
type fakeClient struct {
	mu      sync.Mutex
	results map[string]any
	queries []string
}

func (c *fakeClient) IsConnected() bool      { return true }
func (c *fakeClient) ProtocolVersion() int   { return 3 }
func (c *fakeClient) Host() string           { return "localhost" }
func (c *fakeClient) Port() int              { return 5000 }
func (c *fakeClient) Timeout() time.Duration { return 30 * time.Second }

func (c *fakeClient) Query(_ context.Context, expr string) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queries = append(c.queries, expr)
	result, ok := c.results[expr]
	if !ok {
		return nil, errors.New("'type")
	}
	return result, nil
}

func TestStatusOf(t *testing.T) {
	t.Parallel()

	t.Run("connected client", func(t *testing.T) {
		t.Parallel()

		status := StatusOf(&fakeClient{})
		labels := make([]string, len(status))
		for i, e := range status {
			labels[i] = e.Label
		}
		assert.Equal(t, []string{"Is Connected", "Protocol Version", "Host", "Port", "Timeout"}, labels)

		port, ok := status.Get(StatusPort)
		require.True(t, ok)
		assert.Equal(t, "5000", port)
		timeout, _ := status.Get(StatusTimeout)
		assert.Equal(t, "30s", timeout)

		assert.Equal(t, "Is Connected: true\nProtocol Version: 3\nHost: localhost\nPort: 5000\nTimeout: 30s", status.String())
		assert.Contains(t, status.HTML(DefaultTableClass), "<tr><th>Host</th><td>localhost</td></tr>")
	})

	t.Run("no connection", func(t *testing.T) {
		t.Parallel()

		status := StatusOf(nil)
		connected, ok := status.Get(StatusConnected)
		require.True(t, ok)
		assert.Equal(t, "false", connected)
		_, ok = status.Get(StatusHost)
		assert.False(t, ok)
	})
}

func TestNormalizeQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{name: "single line", input: "select from trade", expected: "select from trade"},
		{name: "multi line", input: "select\nfrom trade\r\nwhere sym=`AAPL", expected: "select from trade where sym=`AAPL"},
		{name: "collapses spaces", input: "a    b\n\n c", expected: "a b c"},
		{name: "blank", input: " \n\r ", wantErr: true},
		{name: "non ASCII", input: "select from trade where sym=`ÄPL", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := NormalizeQuery(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestConsole_Run(t *testing.T) {
	t.Parallel()

	newClient := func(t *testing.T) *fakeClient {
		t.Helper()
		return &fakeClient{results: map[string]any{
			"select from trade": tradeTable(t),
			"til 3":             mustColumn(t, "", TypeLong, []int64{0, 1, 2}),
			"1+1":               int64(2),
			"d":                 mustColumn(t, "", TypeDate, []int32{0, math.MinInt32}),
		}}
	}

	t.Run("renders tables and records the last result", func(t *testing.T) {
		t.Parallel()

		client := newClient(t)
		var logs bytes.Buffer
		console := NewConsole(client).WithLogger(slog.New(slog.NewTextHandler(&logs, nil)))

		_, ok := console.Last()
		assert.False(t, ok)

		result, err := console.Run(context.Background(), "select\nfrom  trade")
		require.NoError(t, err)
		assert.Equal(t, "select\nfrom  trade", result.Original)
		assert.Equal(t, "select from trade", result.Query)
		assert.Contains(t, result.Output, "<th>price</th>")
		host, _ := result.Status.Get(StatusHost)
		assert.Equal(t, "localhost", host)

		last, ok := console.Last()
		require.True(t, ok)
		assert.Same(t, result, last)
		assert.Equal(t, []string{"select from trade"}, client.queries)
		assert.Contains(t, logs.String(), "query completed")

		console.Reset()
		_, ok = console.Last()
		assert.False(t, ok)
	})

	t.Run("lists and scalars", func(t *testing.T) {
		t.Parallel()

		console := NewConsole(newClient(t)).WithRenderOptions(NewRenderOptions().WithFormat(RenderText))

		result, err := console.Run(context.Background(), "til 3")
		require.NoError(t, err)
		assert.Equal(t, "[0 1 2]", result.Output)

		result, err = console.Run(context.Background(), "1+1")
		require.NoError(t, err)
		assert.Equal(t, "2", result.Output)

		result, err = console.Run(context.Background(), "d")
		require.NoError(t, err)
		assert.Equal(t, "[0 -2147483648]", result.Output)
	})

	t.Run("query errors keep the previous result", func(t *testing.T) {
		t.Parallel()

		client := newClient(t)
		var logs bytes.Buffer
		console := NewConsole(client).WithLogger(slog.New(slog.NewTextHandler(&logs, nil)))

		first, err := console.Run(context.Background(), "1+1")
		require.NoError(t, err)

		_, err = console.Run(context.Background(), "nonsense")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "'type")
		assert.Contains(t, logs.String(), "query failed")

		last, ok := console.Last()
		require.True(t, ok)
		assert.Same(t, first, last)
	})

	t.Run("typed nil results are rejected", func(t *testing.T) {
		t.Parallel()

		client := &fakeClient{results: map[string]any{
			"kt": (*KeyedTable)(nil),
			"f":  (*Frame)(nil),
		}}
		console := NewConsole(client)

		for _, query := range []string{"kt", "f"} {
			_, err := console.Run(context.Background(), query)
			assert.ErrorIs(t, err, ErrInvalidInput, "query %s", query)
		}
		_, ok := console.Last()
		assert.False(t, ok)
	})

	t.Run("invalid text never reaches the client", func(t *testing.T) {
		t.Parallel()

		client := newClient(t)
		console := NewConsole(client)

		_, err := console.Run(context.Background(), "   ")
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Empty(t, client.queries)
	})

	t.Run("concurrent runs", func(t *testing.T) {
		t.Parallel()

		console := NewConsole(newClient(t))
		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := console.Run(context.Background(), "1+1")
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		last, ok := console.Last()
		require.True(t, ok)
		assert.Equal(t, "1+1", last.Query)
	})
}
