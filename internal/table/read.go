package table

// read.go parses CSV input into a Table. Parsing is a single forward pass
// over a sanitized reader stack, so a capped or previewed parse never pulls
// more of the input than it needs.

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrTooLarge marks input that exceeded ReadOptions.MaxBytes.
	ErrTooLarge = errors.New("input exceeds the size limit")

	// ErrNoHeader marks input with no header row at all.
	ErrNoHeader = errors.New("input has no header row")
)

// ReadOptions bound a parse. Zero values mean no limit.
type ReadOptions struct {
	// MaxRows caps the number of data rows kept. Further input is left
	// unread and the Table is flagged as truncated. Used for previews.
	MaxRows int

	// MaxBytes caps the raw input size. Exceeding it fails the parse with
	// ErrTooLarge.
	MaxBytes int64
}

// Read parses CSV from r. The first record is the header; column names are
// trimmed and must be unique and non-blank. Every data record must have
// the header's field count. Cell values are trimmed of surrounding
// whitespace.
func Read(r io.Reader, opts ReadOptions) (*Table, error) {
	cr := csv.NewReader(newSanitizedReader(r, opts.MaxBytes))
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoHeader
		}
		return nil, readErr(err)
	}

	cols := make([]string, len(header))
	colIndex := make(map[string]int, len(header))
	for i, c := range header {
		name := strings.TrimSpace(c)
		if name == "" {
			return nil, fmt.Errorf("column %d has a blank name", i+1)
		}
		if _, dup := colIndex[name]; dup {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		cols[i] = name
		colIndex[name] = i
	}

	t := &Table{cols: cols, colIndex: colIndex}
	for {
		if opts.MaxRows > 0 && len(t.rows) >= opts.MaxRows {
			// One probe read tells "exactly full" apart from "more behind".
			if _, err := cr.Read(); !errors.Is(err, io.EOF) {
				t.truncated = true
			}
			break
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, readErr(err)
		}
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		t.rows = append(t.rows, rec)
	}
	return t, nil
}

// readErr keeps ErrTooLarge recognizable with errors.Is and gives parse
// failures a stable prefix. encoding/csv errors already carry line numbers.
func readErr(err error) error {
	if errors.Is(err, ErrTooLarge) {
		return ErrTooLarge
	}
	return fmt.Errorf("parse csv: %w", err)
}
