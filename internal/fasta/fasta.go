// Package fasta converts tabular antibody records into FASTA text entries.
//
// The generator is pure: it performs no I/O, emits no logs, and keeps no
// state between invocations. Callers hand it an in-memory dataset plus the
// column selections and options for one conversion, then consume entries
// through an emit callback, an io.Writer, or a bounded preview slice.
package fasta

import (
	"path"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Dataset is the tabular input the generator iterates. Value reports the
// cell at a row and column; ok is false when the column is unknown or the
// cell is blank, mirroring a sparse source table. Implementations are
// read-only for the duration of a pass; the generator never mutates them.
type Dataset interface {
	HasColumn(name string) bool
	Len() int
	Value(row int, column string) (string, bool)
}

// Sentinel cell values marking an intentionally absent sequence. The
// CoV-AbDab database uses them for "not determined" and "to be confirmed".
var sentinels = [...]string{"ND", "TBC"}

// IsSentinel reports whether a cell value is a placeholder for a missing
// sequence. Matching is exact and case-sensitive: "nd" is a sequence.
func IsSentinel(v string) bool {
	for _, s := range sentinels {
		if v == s {
			return true
		}
	}
	return false
}

// Tag derives the header tag for a sequence column: the column name with
// spaces replaced by underscores ("VH or VHH" -> "VH_or_VHH").
func Tag(column string) string {
	return strings.ReplaceAll(column, " ", "_")
}

// nonWord matches every character outside [0-9A-Za-z_].
var nonWord = regexp.MustCompile(`\W`)

// SanitizeHeader replaces every character that is not a letter, digit or
// underscore with an underscore.
func SanitizeHeader(s string) string {
	return nonWord.ReplaceAllString(s, "_")
}

// WrapSequence splits seq into consecutive chunks of width characters (the
// last chunk may be shorter) joined by lineEnding. A width below one, or a
// sequence that already fits, returns seq unchanged. Lengths count
// characters, not bytes.
func WrapSequence(seq string, width int, lineEnding string) string {
	if width <= 0 || len(seq) <= width {
		return seq
	}
	runes := []rune(seq)
	if len(runes) <= width {
		return seq
	}
	var b strings.Builder
	b.Grow(len(seq) + (len(runes)/width)*len(lineEnding))
	for start := 0; start < len(runes); start += width {
		end := start + width
		if end > len(runes) {
			end = len(runes)
		}
		if start > 0 {
			b.WriteString(lineEnding)
		}
		b.WriteString(string(runes[start:end]))
	}
	return b.String()
}

// OutputName derives the download filename for a conversion source: the
// final path segment of the input with its extension replaced by ".fasta".
// Works for URLs (query and fragment are dropped) and for Windows-style
// upload paths. Falls back to "sequences.fasta" when nothing usable is
// left.
func OutputName(input string) string {
	name := strings.TrimSpace(input)
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		name = ""
	}
	name = strings.TrimSuffix(name, path.Ext(name))
	if name == "" {
		name = "sequences"
	}
	return name + ".fasta"
}

// headerLen counts characters the way header budgets are measured.
func headerLen(s string) int {
	return utf8.RuneCountInString(s)
}
