// Package cli implements the covab2fasta command line: flag parsing and
// the conversion run it drives.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"covab2fasta/internal/fasta"
	"covab2fasta/internal/version"
)

// Accepted -line-ending spellings.
const (
	LineEndingLF   = "lf"
	LineEndingCRLF = "crlf"
)

// Options holds all CLI flags.
type Options struct {
	// Input
	In  string // CSV file; empty with no URL means stdin
	URL string // remote CSV

	// Output
	Out string // FASTA file; "-" = stdout; empty = derived from the input

	// Column selection
	HeaderCols   []string
	SequenceCols []string

	// Entry formatting
	LineEnding  string // lf | crlf
	RowNumbers  bool
	CleanHeader bool
	MaxHeader   int
	Wrap        int

	Quiet   bool
	Version bool
}

// lineEnding maps the flag spelling onto the characters written.
func (o Options) lineEnding() string {
	if o.LineEnding == LineEndingCRLF {
		return "\r\n"
	}
	return "\n"
}

// NewFlagSet returns a configured FlagSet with custom usage/help.
func NewFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(),
			`%s: convert CoV-AbDab antibody CSV exports to FASTA

One entry is written per data row and selected sequence column; blank
cells and the placeholders "ND" and "TBC" are skipped. Input comes from
-in, -url, or stdin.

Version: %s

Usage of %s:
`, name, version.Version, name)
		fs.PrintDefaults()
	}
	return fs
}

// ParseArgs registers and parses all flags, returns an Options struct.
func ParseArgs(fs *flag.FlagSet, argv []string) (Options, error) {
	var opt Options
	var help bool

	// Input
	fs.StringVar(&opt.In, "in", "", "CSV file to read (default: stdin)")
	fs.StringVar(&opt.URL, "url", "", "fetch the CSV from this http(s) URL instead of a file")

	// Output
	fs.StringVar(&opt.Out, "out", "", "FASTA file to write ('-' = stdout; default: input name with .fasta)")

	// Column selection
	var headerCols columnList
	fs.Var(&headerCols, "header-col", "header column (repeatable or comma-separated; default: known CoV-AbDab columns)")
	var seqCols columnList
	fs.Var(&seqCols, "seq-col", "sequence column (repeatable or comma-separated; default: known CoV-AbDab columns)")

	// Entry formatting
	fs.StringVar(&opt.LineEnding, "line-ending", LineEndingLF, "line ending: lf | crlf")
	fs.BoolVar(&opt.RowNumbers, "row-numbers", false, "prefix each header with the zero-based row index")
	fs.BoolVar(&opt.CleanHeader, "clean-header", false, "replace non-word header characters with '_'")
	fs.IntVar(&opt.MaxHeader, "max-header", 0, "maximum header line length in characters (0 = unlimited)")
	fs.IntVar(&opt.Wrap, "wrap", 0, "wrap sequences to lines of this many characters (0 = single line)")

	fs.BoolVar(&opt.Quiet, "quiet", false, "suppress the summary line on stderr")
	fs.BoolVar(&opt.Version, "v", false, "print version and exit (shorthand)")
	fs.BoolVar(&opt.Version, "version", false, "print version and exit")
	fs.BoolVar(&help, "h", false, "show this help message (shorthand)")

	if err := fs.Parse(argv); err != nil {
		return opt, err
	}
	if help {
		fs.Usage()
		return opt, flag.ErrHelp
	}
	if opt.Version {
		return opt, nil
	}
	opt.HeaderCols = headerCols
	opt.SequenceCols = seqCols

	// Validation
	if fs.NArg() > 0 {
		return opt, fmt.Errorf("unexpected argument %q (use -in or -url)", fs.Arg(0))
	}
	if opt.In != "" && opt.URL != "" {
		return opt, errors.New("-in conflicts with -url")
	}
	if opt.LineEnding != LineEndingLF && opt.LineEnding != LineEndingCRLF {
		return opt, fmt.Errorf("invalid -line-ending %q (lf or crlf)", opt.LineEnding)
	}
	if opt.MaxHeader < 0 {
		return opt, errors.New("-max-header must be ≥ 0")
	}
	if opt.Wrap < 0 {
		return opt, errors.New("-wrap must be ≥ 0")
	}
	if opt.Wrap > 0 && opt.Wrap < fasta.MinWrapWidth {
		return opt, fmt.Errorf("-wrap must be 0 or ≥ %d", fasta.MinWrapWidth)
	}
	return opt, nil
}

// columnList allows repeatable column flags; each value may itself be a
// comma-separated list. Surrounding whitespace is trimmed, interior
// spaces ("Ab or Nb") survive.
type columnList []string

func (c *columnList) String() string { return strings.Join(*c, ",") }

func (c *columnList) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*c = append(*c, part)
		}
	}
	return nil
}
