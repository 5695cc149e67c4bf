package cli

// run.go executes one conversion: resolve the input, read the table,
// stream entries to the destination, and summarize on stderr.

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"covab2fasta/internal/fasta"
	"covab2fasta/internal/fetch"
	"covab2fasta/internal/table"
	"covab2fasta/internal/version"
)

// stdin is swapped out by tests that exercise the no-flag default.
var stdin io.Reader = os.Stdin

// cancelCheckEvery bounds how many entries are written between context
// checks, so an interrupt stops a large conversion promptly.
const cancelCheckEvery = 100

// RunContext parses argv, runs one conversion, and returns the process
// exit code: 0 on success (and for help or version requests), 2 for
// usage errors, 1 for runtime failures. Cancelling the context aborts
// the fetch and the entry stream.
func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	fs := NewFlagSet("covab2fasta")
	fs.SetOutput(io.Discard)

	opts, err := ParseArgs(fs, argv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(stdout)
			fs.Usage()
			return 0
		}
		fmt.Fprintln(stderr, err)
		fs.SetOutput(stderr)
		fs.Usage()
		return 2
	}
	if opts.Version {
		fmt.Fprintf(stdout, "covab2fasta version %s\n", version.Version)
		return 0
	}

	if err := run(parent, opts, stdout, stderr); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

// Run is RunContext with a background context.
func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

func run(ctx context.Context, opts Options, stdout, stderr io.Writer) error {
	src, err := openInput(ctx, opts)
	if err != nil {
		return err
	}
	defer src.Close()

	tbl, err := table.Read(src, table.ReadOptions{})
	if err != nil {
		return err
	}

	// Explicit selections win; otherwise fall back to the known
	// CoV-AbDab columns present in the file.
	headerCols, seqCols := table.SplitColumns(tbl.Columns())
	if len(opts.HeaderCols) > 0 {
		headerCols = opts.HeaderCols
	}
	if len(opts.SequenceCols) > 0 {
		seqCols = opts.SequenceCols
	}

	fopts := fasta.Options{
		LineEnding:      opts.lineEnding(),
		AddRowNumber:    opts.RowNumbers,
		CleanupHeader:   opts.CleanHeader,
		MaxHeaderLength: opts.MaxHeader,
		MaxLineLength:   opts.Wrap,
	}
	// Validate columns and options before the destination is touched; a
	// rejected configuration must not leave an empty output file behind.
	if _, err := fasta.NewGenerator(tbl, headerCols, seqCols, fopts); err != nil {
		return err
	}

	path := outputPath(opts)
	dest := stdout
	var file *os.File
	if path != "" {
		file, err = os.Create(path)
		if err != nil {
			return err
		}
		dest = file
	}

	// A row failure mid-stream leaves whatever was already flushed; the
	// summary line is the success marker.
	w := bufio.NewWriter(dest)
	entries, err := fasta.WriteEntries(&cancelWriter{ctx: ctx, w: w}, tbl, headerCols, seqCols, fopts)
	if err == nil {
		err = w.Flush()
	}
	if file != nil {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return err
	}

	if !opts.Quiet {
		target := path
		if target == "" {
			target = "stdout"
		}
		fmt.Fprintf(stderr, "wrote %d entries from %d rows to %s\n", entries, tbl.Len(), target)
	}
	return nil
}

// openInput returns the CSV source selected by the flags.
func openInput(ctx context.Context, opts Options) (io.ReadCloser, error) {
	switch {
	case opts.URL != "":
		return fetch.CSV(ctx, opts.URL)
	case opts.In != "":
		return os.Open(opts.In)
	default:
		return io.NopCloser(stdin), nil
	}
}

// outputPath resolves the destination file. An empty string selects
// stdout: requested with -out '-', or the default when reading stdin.
func outputPath(opts Options) string {
	switch {
	case opts.Out == "-":
		return ""
	case opts.Out != "":
		return opts.Out
	case opts.In != "":
		return filepath.Join(filepath.Dir(opts.In), fasta.OutputName(opts.In))
	case opts.URL != "":
		return fasta.OutputName(opts.URL)
	default:
		return ""
	}
}

// cancelWriter forwards entry writes and fails once the context is
// cancelled. WriteEntries issues one Write per entry, so n counts
// entries.
type cancelWriter struct {
	ctx context.Context
	w   io.Writer
	n   int
}

func (cw *cancelWriter) Write(p []byte) (int, error) {
	if cw.n%cancelCheckEvery == 0 {
		if err := cw.ctx.Err(); err != nil {
			return 0, err
		}
	}
	cw.n++
	return cw.w.Write(p)
}
