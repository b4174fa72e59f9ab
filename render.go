package qframe

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"text/tabwriter"
)

// DefaultMaxRows is the default number of rows rendered before truncation
const DefaultMaxRows = 100

// DefaultTableClass is the CSS class of rendered HTML tables
const DefaultTableClass = "table table-striped"

// ellipsis marks elided rows and values
const ellipsis = "..."

// RenderFormat selects the markup produced by Render
type RenderFormat int

const (
	// RenderHTML produces an HTML fragment
	RenderHTML RenderFormat = iota
	// RenderText produces aligned plain text
	RenderText
)

// String returns the string representation of RenderFormat
func (f RenderFormat) String() string {
	switch f {
	case RenderHTML:
		return "html"
	case RenderText:
		return "text"
	default:
		return "html"
	}
}

// RenderOptions configures Render.
//
// Example:
//
//	options := NewRenderOptions().
//		WithFormat(RenderText).
//		WithMaxRows(20)
//
//	out, err := Render(table, options)
type RenderOptions struct {
	// Format selects HTML or text output
	Format RenderFormat
	// MaxRows caps the number of rows shown for tabular values
	MaxRows int
	// TableClass is the class attribute of HTML tables
	TableClass string
}

// NewRenderOptions creates default render options (HTML, 100 rows).
func NewRenderOptions() RenderOptions {
	return RenderOptions{
		Format:     RenderHTML,
		MaxRows:    DefaultMaxRows,
		TableClass: DefaultTableClass,
	}
}

// WithFormat sets the output format.
func (o RenderOptions) WithFormat(format RenderFormat) RenderOptions {
	o.Format = format
	return o
}

// WithMaxRows sets the row cap. Values below 1 restore DefaultMaxRows.
func (o RenderOptions) WithMaxRows(rows int) RenderOptions {
	if rows < 1 {
		rows = DefaultMaxRows
	}
	o.MaxRows = rows
	return o
}

// WithTableClass sets the class attribute of HTML tables.
func (o RenderOptions) WithTableClass(class string) RenderOptions {
	o.TableClass = class
	return o
}

// Render produces a bounded textual representation of a query result for
// display. It is not meant to be parsed back.
//
//   - *Table, *KeyedTable, *Dictionary and *Frame are assembled and rendered as
//     a table of at most MaxRows rows; longer tables show their head and tail
//     around an ellipsis row, followed by a "N rows × M columns" footer.
//     M counts data columns only; index columns are shown as row labels
//     and are not included.
//   - A plain *Column renders its raw values as a bracketed sequence.
//   - A temporal *Column renders the raw numeric encoding of its values.
//   - Anything else renders through fmt.Sprint.
func Render(value any, opts ...RenderOptions) (string, error) {
	options := NewRenderOptions()
	if len(opts) > 0 {
		options = opts[0]
	}
	if options.MaxRows < 1 {
		options.MaxRows = DefaultMaxRows
	}

	switch v := value.(type) {
	case *Frame, *Table, *KeyedTable, *Dictionary:
		frame, err := AssembleValue(v)
		if err != nil {
			return "", err
		}
		return renderFrame(frame, options), nil
	case *Column:
		if v == nil {
			return "", fmt.Errorf("%w: nil column", ErrInvalidInput)
		}
		return renderSample(v.String(), options), nil
	default:
		return renderSample(fmt.Sprint(value), options), nil
	}
}

func renderSample(s string, options RenderOptions) string {
	if options.Format == RenderText {
		return s
	}
	return "<samp>" + html.EscapeString(s) + "</samp>"
}

// rowWindow returns the row numbers to display and the position after which
// the ellipsis row goes, or -1 when nothing is elided.
func rowWindow(rows, maxRows int) ([]int, int) {
	if rows <= maxRows {
		out := make([]int, rows)
		for i := range out {
			out[i] = i
		}
		return out, -1
	}
	head := (maxRows + 1) / 2
	tail := maxRows - head
	out := make([]int, 0, maxRows)
	for i := range head {
		out = append(out, i)
	}
	for i := rows - tail; i < rows; i++ {
		out = append(out, i)
	}
	return out, head
}

// frameGrid lays a frame out as header labels and cell text. The first
// headerWidth cells of a row are row labels (the index, or the row number).
type frameGrid struct {
	header      []string
	headerWidth int
	// rows includes the ellipsis row when truncated
	rows      [][]string
	truncated bool
}

func newFrameGrid(f *Frame, maxRows int) frameGrid {
	labels := f.IndexColumns()
	data := f.DataColumns()

	grid := frameGrid{headerWidth: max(1, len(labels))}
	if len(labels) == 0 {
		grid.header = append(grid.header, "")
	}
	for _, s := range labels {
		grid.header = append(grid.header, s.Name())
	}
	for _, s := range data {
		grid.header = append(grid.header, s.Name())
	}

	window, elideAt := rowWindow(f.NumRows(), maxRows)
	grid.truncated = elideAt >= 0

	for i, r := range window {
		if i == elideAt {
			grid.rows = append(grid.rows, grid.ellipsisRow())
		}
		row := make([]string, 0, len(grid.header))
		if len(labels) == 0 {
			row = append(row, strconv.Itoa(r))
		}
		for _, s := range labels {
			row = append(row, s.Format(r))
		}
		for _, s := range data {
			row = append(row, s.Format(r))
		}
		grid.rows = append(grid.rows, row)
	}
	if elideAt == len(window) {
		grid.rows = append(grid.rows, grid.ellipsisRow())
	}
	return grid
}

func (g frameGrid) ellipsisRow() []string {
	row := make([]string, len(g.header))
	for i := range row {
		row[i] = ellipsis
	}
	return row
}

// dimensions is the truncation footer; the column count excludes the index
func dimensions(f *Frame) string {
	return fmt.Sprintf("%d rows × %d columns", f.NumRows(), len(f.DataColumns()))
}

func renderFrame(f *Frame, options RenderOptions) string {
	grid := newFrameGrid(f, options.MaxRows)
	if options.Format == RenderText {
		return renderFrameText(f, grid)
	}
	return renderFrameHTML(f, grid, options.TableClass)
}

func renderFrameText(f *Frame, grid frameGrid) string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', tabwriter.AlignRight)
	writeLine := func(cells []string) {
		fmt.Fprintln(w, strings.Join(cells, "\t")+"\t")
	}

	writeLine(grid.header)
	for _, row := range grid.rows {
		writeLine(row)
	}
	_ = w.Flush()

	if grid.truncated {
		sb.WriteString("\n" + dimensions(f) + "\n")
	}
	return sb.String()
}

func renderFrameHTML(f *Frame, grid frameGrid, class string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<table class=\"%s\">\n", html.EscapeString(class))

	sb.WriteString("  <thead>\n    <tr style=\"text-align: right;\">\n")
	for _, h := range grid.header {
		fmt.Fprintf(&sb, "      <th>%s</th>\n", html.EscapeString(h))
	}
	sb.WriteString("    </tr>\n  </thead>\n  <tbody>\n")

	writeRow := func(cells []string) {
		sb.WriteString("    <tr>\n")
		for i, c := range cells {
			tag := "td"
			if i < grid.headerWidth {
				tag = "th"
			}
			fmt.Fprintf(&sb, "      <%s>%s</%s>\n", tag, html.EscapeString(c), tag)
		}
		sb.WriteString("    </tr>\n")
	}
	for _, row := range grid.rows {
		writeRow(row)
	}
	sb.WriteString("  </tbody>\n</table>\n")

	if grid.truncated {
		fmt.Fprintf(&sb, "<p>%s</p>\n", dimensions(f))
	}
	return sb.String()
}
