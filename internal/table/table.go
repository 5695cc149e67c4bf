// Package table loads CSV input into an immutable in-memory dataset with
// cell access by column name.
//
// The loader is tolerant of real-world database exports: a UTF-8 BOM is
// dropped, invalid UTF-8 bytes are repaired, and cell values are trimmed.
// Structure is still enforced: a header row must exist, column names must
// be unique and non-blank, and every record needs the header's field count.
package table

import "strings"

// Table is a parsed CSV: column names in file order plus the data rows.
// It is read-only after Read returns.
type Table struct {
	cols      []string
	colIndex  map[string]int
	rows      [][]string
	truncated bool
}

// Columns returns the column names in file order. Callers must not modify
// the returned slice.
func (t *Table) Columns() []string { return t.cols }

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.rows) }

// HasColumn reports whether a column exists. Matching is exact and
// case-sensitive, like the source file's own header.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.colIndex[name]
	return ok
}

// Truncated reports whether ReadOptions.MaxRows stopped the parse before
// the end of the input.
func (t *Table) Truncated() bool { return t.truncated }

// Value returns the cell at a row and column. ok is false for an unknown
// column, an out-of-range row, or a blank cell: the source database leaves
// cells blank to mean "no data", and callers must not see that as an empty
// sequence.
func (t *Table) Value(row int, column string) (string, bool) {
	if row < 0 || row >= len(t.rows) {
		return "", false
	}
	i, ok := t.colIndex[column]
	if !ok || i >= len(t.rows[row]) {
		return "", false
	}
	v := t.rows[row][i]
	if v == "" {
		return "", false
	}
	return v, true
}

// Default column selections for the CoV-AbDab schema.
var (
	defaultHeaderColumns   = []string{"Name", "Ab or Nb", "Origin"}
	defaultSequenceColumns = []string{"CDRH3", "CDRL3", "VH or VHH", "VL"}
)

// DefaultColumns returns the CoV-AbDab selections offered before any file
// has been inspected. The slices are copies and safe to modify.
func DefaultColumns() (header, sequence []string) {
	return append([]string(nil), defaultHeaderColumns...),
		append([]string(nil), defaultSequenceColumns...)
}

// SplitColumns suggests header and sequence selections for a column set:
// the known CoV-AbDab columns when present, otherwise the first column as
// the header with the rest offered as sequence candidates. Either result
// may be empty; callers decide whether that is acceptable.
func SplitColumns(cols []string) (header, sequence []string) {
	header = keepKnown(defaultHeaderColumns, cols)
	sequence = keepKnown(defaultSequenceColumns, cols)
	if len(header) == 0 && len(cols) > 0 {
		header = cols[:1]
	}
	if len(sequence) == 0 && len(cols) > 1 {
		sequence = cols[1:]
	}
	return header, sequence
}

// keepKnown filters wanted down to the names present in cols, preserving
// the wanted order.
func keepKnown(wanted, cols []string) []string {
	var out []string
	for _, w := range wanted {
		for _, c := range cols {
			if strings.EqualFold(w, c) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
