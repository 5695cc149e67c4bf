package fasta

// generate.go holds the entry generator: a single forward pass over the
// dataset that composes one FASTA entry per usable (row, sequence column)
// pair and hands it to an emit callback.
//
// Entry layout, in order:
//
//	>[row|]tag|header<le>sequence<le>
//
// The row prefix appears only with AddRowNumber. The tag is the sequence
// column name with spaces replaced by "_". The header is the row's
// header-column values joined by "_". Entries come out in row order and,
// within a row, in the given sequence-column order.

import (
	"errors"
	"io"
	"strconv"
	"strings"
)

// Generator walks a dataset and emits FASTA entries. Construct with
// NewGenerator; the zero value is not usable.
type Generator struct {
	data       Dataset
	headerCols []string
	seqCols    []string
	opts       Options
	le         string
}

// NewGenerator validates the column selections and options against the
// dataset and returns a ready generator. Every configuration problem is
// reported here, before any entry can be produced.
func NewGenerator(data Dataset, headerCols, seqCols []string, opts Options) (*Generator, error) {
	if len(headerCols) == 0 {
		return nil, &ConfigError{Option: "HeaderColumns", Reason: "at least one header column is required"}
	}
	if len(seqCols) == 0 {
		return nil, &ConfigError{Option: "SequenceColumns", Reason: "at least one sequence column is required"}
	}
	for _, cols := range [][]string{headerCols, seqCols} {
		for _, c := range cols {
			if !data.HasColumn(c) {
				return nil, &UnknownColumnError{Column: c}
			}
		}
	}
	if err := opts.Validate(seqCols, data.Len()); err != nil {
		return nil, err
	}
	return &Generator{
		data:       data,
		headerCols: append([]string(nil), headerCols...),
		seqCols:    append([]string(nil), seqCols...),
		opts:       opts,
		le:         opts.lineEnding(),
	}, nil
}

// ForEach runs the conversion, calling emit once per entry. The pass stops
// at the first error, whether from a header lookup or from emit itself, and
// returns it unwrapped.
func (g *Generator) ForEach(emit func(entry string) error) error {
	for i := 0; i < g.data.Len(); i++ {
		header, err := g.header(i)
		if err != nil {
			return err
		}
		prefix := ""
		if g.opts.AddRowNumber {
			prefix = strconv.Itoa(i) + "|"
		}
		for _, col := range g.seqCols {
			seq, ok := g.data.Value(i, col)
			if !ok || IsSentinel(seq) {
				continue
			}
			if err := emit(g.entry(prefix, Tag(col), header, seq)); err != nil {
				return err
			}
		}
	}
	return nil
}

// header joins the row's header-column values with "_" and applies the
// configured cleanup. A blank or missing value is a RowError: the header
// describes the whole record, so no part of it may silently vanish.
func (g *Generator) header(i int) (string, error) {
	parts := make([]string, len(g.headerCols))
	for j, col := range g.headerCols {
		v, ok := g.data.Value(i, col)
		if !ok {
			return "", &RowError{Row: i, Column: col}
		}
		parts[j] = v
	}
	h := strings.ReplaceAll(strings.Join(parts, " "), " ", "_")
	if g.opts.CleanupHeader {
		h = SanitizeHeader(h)
	}
	return h, nil
}

// entry formats one FASTA entry, truncating the header values to the
// remaining budget when MaxHeaderLength is set. Validation has already
// guaranteed the budget is workable for every row and column.
func (g *Generator) entry(prefix, tag, header, seq string) string {
	if g.opts.MaxHeaderLength > 0 {
		budget := g.opts.MaxHeaderLength - len(prefix) - headerLen(tag) - 1
		if r := []rune(header); len(r) > budget {
			header = string(r[:budget])
		}
	}
	body := seq
	if g.opts.MaxLineLength > 0 {
		body = WrapSequence(seq, g.opts.MaxLineLength, g.le)
	}
	var b strings.Builder
	b.Grow(2 + len(prefix) + len(tag) + len(header) + len(body) + 2*len(g.le))
	b.WriteByte('>')
	b.WriteString(prefix)
	b.WriteString(tag)
	b.WriteByte('|')
	b.WriteString(header)
	b.WriteString(g.le)
	b.WriteString(body)
	b.WriteString(g.le)
	return b.String()
}

// WriteEntries streams every entry of the conversion to w and returns how
// many were written. Output is not atomic at the io level; callers that
// need all-or-nothing semantics write to a buffer and commit on success.
func WriteEntries(w io.Writer, data Dataset, headerCols, seqCols []string, opts Options) (int, error) {
	g, err := NewGenerator(data, headerCols, seqCols, opts)
	if err != nil {
		return 0, err
	}
	n := 0
	err = g.ForEach(func(entry string) error {
		if _, werr := io.WriteString(w, entry); werr != nil {
			return werr
		}
		n++
		return nil
	})
	return n, err
}

// errPreviewFull stops a preview pass once enough entries exist.
var errPreviewFull = errors.New("preview full")

// Preview collects at most maxEntries leading entries. Configuration is
// validated exactly like a real conversion; rows past the last collected
// entry are not visited.
func Preview(data Dataset, headerCols, seqCols []string, opts Options, maxEntries int) ([]string, error) {
	g, err := NewGenerator(data, headerCols, seqCols, opts)
	if err != nil {
		return nil, err
	}
	if maxEntries <= 0 {
		return nil, nil
	}
	entries := make([]string, 0, maxEntries)
	err = g.ForEach(func(entry string) error {
		entries = append(entries, entry)
		if len(entries) == maxEntries {
			return errPreviewFull
		}
		return nil
	})
	if err != nil && !errors.Is(err, errPreviewFull) {
		return nil, err
	}
	return entries, nil
}
