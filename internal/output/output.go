package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
)

// Format selects how a command renders its result.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
)

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatTable, FormatJSON, FormatCSV:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected table, json, or csv)", s)
	}
}

// WriteJSON renders v as indented JSON, the shape other tools consume.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// Table is a thin wrapper over tabwriter with a fixed header row.
type Table struct {
	tw      *tabwriter.Writer
	columns int
}

// NewTable writes an aligned table to w with the given header.
func NewTable(w io.Writer, headers ...string) *Table {
	t := &Table{
		tw:      tabwriter.NewWriter(w, 0, 4, 2, ' ', 0),
		columns: len(headers),
	}
	t.Row(toAny(headers)...)
	return t
}

// Row appends one row. Values beyond the header width are dropped.
func (t *Table) Row(values ...any) {
	if len(values) > t.columns {
		values = values[:t.columns]
	}
	for i, v := range values {
		if i > 0 {
			fmt.Fprint(t.tw, "\t")
		}
		fmt.Fprint(t.tw, formatCell(v))
	}
	fmt.Fprintln(t.tw)
}

// Flush renders the accumulated rows.
func (t *Table) Flush() error {
	return t.tw.Flush()
}

// WriteCSVRows writes a header plus rows of string cells.
func WriteCSVRows(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatCell(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', 3, 64)
	default:
		return fmt.Sprint(v)
	}
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
