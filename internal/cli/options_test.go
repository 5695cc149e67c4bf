package cli

import (
	"errors"
	"flag"
	"io"
	"reflect"
	"testing"
)

func newFS() *flag.FlagSet {
	fs := NewFlagSet("test")
	fs.SetOutput(io.Discard)
	return fs
}

func mustParse(t *testing.T, args ...string) Options {
	t.Helper()
	opts, err := ParseArgs(newFS(), args)
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	return opts
}

func TestParseDefaults(t *testing.T) {
	o := mustParse(t)
	if o.In != "" || o.URL != "" || o.Out != "" {
		t.Errorf("want empty input/output defaults, got %+v", o)
	}
	if o.LineEnding != LineEndingLF {
		t.Errorf("LineEnding = %q, want %q", o.LineEnding, LineEndingLF)
	}
	if o.RowNumbers || o.CleanHeader || o.Quiet || o.Version {
		t.Errorf("boolean flags should default to false, got %+v", o)
	}
	if o.MaxHeader != 0 || o.Wrap != 0 {
		t.Errorf("numeric flags should default to 0, got %+v", o)
	}
	if len(o.HeaderCols) != 0 || len(o.SequenceCols) != 0 {
		t.Errorf("column selections should default to empty, got %+v", o)
	}
}

func TestParseColumnFlags(t *testing.T) {
	o := mustParse(t,
		"-header-col", "Name, Origin",
		"-header-col", "Ab or Nb",
		"-seq-col", "CDRH3,CDRL3",
	)
	wantHeader := []string{"Name", "Origin", "Ab or Nb"}
	if !reflect.DeepEqual(o.HeaderCols, wantHeader) {
		t.Errorf("HeaderCols = %v, want %v", o.HeaderCols, wantHeader)
	}
	wantSeq := []string{"CDRH3", "CDRL3"}
	if !reflect.DeepEqual(o.SequenceCols, wantSeq) {
		t.Errorf("SequenceCols = %v, want %v", o.SequenceCols, wantSeq)
	}
}

func TestParseLineEnding(t *testing.T) {
	if got := mustParse(t).lineEnding(); got != "\n" {
		t.Errorf("default lineEnding() = %q, want LF", got)
	}
	if got := mustParse(t, "-line-ending", "crlf").lineEnding(); got != "\r\n" {
		t.Errorf("crlf lineEnding() = %q, want CRLF", got)
	}
	if _, err := ParseArgs(newFS(), []string{"-line-ending", "cr"}); err == nil {
		t.Error("expected error for unknown line ending")
	}
}

func TestParseWrapBounds(t *testing.T) {
	if o := mustParse(t, "-wrap", "10"); o.Wrap != 10 {
		t.Errorf("Wrap = %d, want 10", o.Wrap)
	}
	for _, v := range []string{"5", "-1"} {
		if _, err := ParseArgs(newFS(), []string{"-wrap", v}); err == nil {
			t.Errorf("expected error for -wrap %s", v)
		}
	}
}

func TestParseNegativeMaxHeader(t *testing.T) {
	if _, err := ParseArgs(newFS(), []string{"-max-header", "-1"}); err == nil {
		t.Error("expected error for negative -max-header")
	}
}

func TestErrorInConflictsWithURL(t *testing.T) {
	_, err := ParseArgs(newFS(), []string{
		"-in", "a.csv", "-url", "http://example.org/a.csv",
	})
	if err == nil {
		t.Fatal("expected mutual-exclusion error")
	}
}

func TestErrorPositionalArgument(t *testing.T) {
	_, err := ParseArgs(newFS(), []string{"data.csv"})
	if err == nil {
		t.Fatal("expected error for positional argument")
	}
}

func TestHelpRequested(t *testing.T) {
	_, err := ParseArgs(newFS(), []string{"-h"})
	if !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("ParseArgs(-h) error = %v, want flag.ErrHelp", err)
	}
}

func TestVersionShortCircuitsValidation(t *testing.T) {
	o, err := ParseArgs(newFS(), []string{"-v", "-wrap", "5"})
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	if !o.Version {
		t.Error("Version = false, want true")
	}
}
