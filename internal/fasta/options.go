package fasta

// options.go defines the per-conversion generation options and their
// validation. Validation works on the worst (row, sequence column) pair the
// conversion can encounter, so it runs once, up front, and a nil result
// guarantees the pass itself cannot hit a configuration failure.

import (
	"fmt"
	"strconv"
)

const (
	// DefaultLineEnding terminates the header and every sequence line
	// unless the options say otherwise.
	DefaultLineEnding = "\n"

	// MinWrapWidth is the smallest accepted MaxLineLength.
	MinWrapWidth = 10

	// MinHeaderBudget is the smallest usable allowance for the joined
	// header-column values after the row prefix and tag take their share.
	MinHeaderBudget = 5
)

// Options control how entries are formatted. The zero value produces
// unnumbered, unsanitized, untruncated, unwrapped entries terminated by
// newlines. Options are immutable for the lifetime of a generator.
type Options struct {
	// LineEnding is written after the header and after every sequence
	// line. Empty means DefaultLineEnding.
	LineEnding string

	// AddRowNumber prefixes each header with the zero-based row index and
	// a "|", ahead of the sequence-column tag. Distinct rows then produce
	// distinct headers even when their header columns collide.
	AddRowNumber bool

	// CleanupHeader replaces every non-word character in the joined
	// header values with "_".
	CleanupHeader bool

	// MaxHeaderLength bounds the header line in characters, not counting
	// the leading ">". Only the joined header values are truncated to
	// fit; the row prefix and the tag are never cut. Zero means
	// unlimited.
	MaxHeaderLength int

	// MaxLineLength wraps sequences into chunks of this many characters.
	// Zero means no wrapping; anything below MinWrapWidth is rejected.
	MaxLineLength int
}

// lineEnding returns the configured terminator, defaulted.
func (o Options) lineEnding() string {
	if o.LineEnding == "" {
		return DefaultLineEnding
	}
	return o.LineEnding
}

// Validate checks the options against the conversion they will drive. The
// sequence columns and the dataset's row count determine the worst-case
// header budget when MaxHeaderLength is set.
func (o Options) Validate(seqColumns []string, rows int) error {
	if o.MaxLineLength != 0 && o.MaxLineLength < MinWrapWidth {
		return &ConfigError{
			Option: "MaxLineLength",
			Reason: fmt.Sprintf("must be 0 or at least %d, got %d", MinWrapWidth, o.MaxLineLength),
		}
	}
	if o.MaxHeaderLength != 0 {
		budget, col := o.worstHeaderBudget(seqColumns, rows)
		if budget < MinHeaderBudget {
			return &ConfigError{
				Option: "MaxHeaderLength",
				Reason: fmt.Sprintf("%d leaves %d characters for the header values of column %q, need at least %d",
					o.MaxHeaderLength, budget, col, MinHeaderBudget),
			}
		}
	}
	return nil
}

// worstHeaderBudget returns the smallest base-header allowance any
// (row, sequence column) pair of the conversion will see, and the column
// that causes it. The widest row prefix belongs to the last row; the
// longest tag to the longest column name.
func (o Options) worstHeaderBudget(seqColumns []string, rows int) (int, string) {
	prefix := 0
	if o.AddRowNumber {
		last := rows - 1
		if last < 0 {
			last = 0
		}
		prefix = len(strconv.Itoa(last)) + 1 // digits plus their "|"
	}
	longest, col := 0, ""
	for _, c := range seqColumns {
		if n := headerLen(Tag(c)); n > longest || col == "" {
			longest, col = n, c
		}
	}
	// One "|" sits between the tag and the joined header values.
	return o.MaxHeaderLength - prefix - longest - 1, col
}
