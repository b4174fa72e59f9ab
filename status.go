package qframe

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"
)

// Conn exposes the metadata of a database connection. It is implemented by
// the external client and used for display only.
type Conn interface {
	IsConnected() bool
	ProtocolVersion() int
	Host() string
	Port() int
	Timeout() time.Duration
}

// Status labels, in display order
const (
	StatusConnected       = "Is Connected"
	StatusProtocolVersion = "Protocol Version"
	StatusHost            = "Host"
	StatusPort            = "Port"
	StatusTimeout         = "Timeout"
)

// StatusEntry is one labelled line of a connection status.
type StatusEntry struct {
	Label string
	Value string
}

// Status is the ordered connection summary shown next to query results.
type Status []StatusEntry

// StatusOf summarises conn. A nil conn yields a disconnected status.
func StatusOf(conn Conn) Status {
	if conn == nil {
		return Status{{Label: StatusConnected, Value: strconv.FormatBool(false)}}
	}
	return Status{
		{Label: StatusConnected, Value: strconv.FormatBool(conn.IsConnected())},
		{Label: StatusProtocolVersion, Value: strconv.Itoa(conn.ProtocolVersion())},
		{Label: StatusHost, Value: conn.Host()},
		{Label: StatusPort, Value: strconv.Itoa(conn.Port())},
		{Label: StatusTimeout, Value: conn.Timeout().String()},
	}
}

// Get returns the value of the entry with the given label.
func (s Status) Get(label string) (string, bool) {
	for _, e := range s {
		if e.Label == label {
			return e.Value, true
		}
	}
	return "", false
}

// String renders the status as "label: value" lines.
func (s Status) String() string {
	lines := make([]string, len(s))
	for i, e := range s {
		lines[i] = e.Label + ": " + e.Value
	}
	return strings.Join(lines, "\n")
}

// HTML renders the status as a two-column table.
func (s Status) HTML(class string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<table class=\"%s\">\n", html.EscapeString(class))
	for _, e := range s {
		fmt.Fprintf(&sb, "  <tr><th>%s</th><td>%s</td></tr>\n",
			html.EscapeString(e.Label), html.EscapeString(e.Value))
	}
	sb.WriteString("</table>\n")
	return sb.String()
}
