package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleCSV = `Name,Ab or Nb,Origin,CDRH3,CDRL3
Ab-1,Ab,Human,CARDYW,QQYNSY
Ab-2,Nb,Alpaca (VHH),CTRDFA,ND
Ab-3,Ab,Mouse,TBC,QHYGSS
`

const sampleFASTA = ">CDRH3|Ab-1_Ab_Human\nCARDYW\n" +
	">CDRL3|Ab-1_Ab_Human\nQQYNSY\n" +
	">CDRH3|Ab-2_Nb_Alpaca_(VHH)\nCTRDFA\n" +
	">CDRL3|Ab-3_Ab_Mouse\nQHYGSS\n"

// writeSample puts the sample CSV into dir and returns its path.
func writeSample(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = RunContext(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

// ---------------------------------------------------------------------------
// Conversion runs
// ---------------------------------------------------------------------------

func TestRun_FileToStdout(t *testing.T) {
	in := writeSample(t, t.TempDir(), "CoV-AbDab_230321.csv")

	code, stdout, stderr := runCLI(t, "-in", in, "-out", "-")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr)
	}
	if stdout != sampleFASTA {
		t.Errorf("stdout = %q, want %q", stdout, sampleFASTA)
	}
	if !strings.Contains(stderr, "wrote 4 entries from 3 rows to stdout") {
		t.Errorf("summary = %q", stderr)
	}
}

func TestRun_DerivedOutputName(t *testing.T) {
	dir := t.TempDir()
	in := writeSample(t, dir, "CoV-AbDab_230321.csv")

	code, stdout, stderr := runCLI(t, "-in", in)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr)
	}
	if stdout != "" {
		t.Errorf("stdout = %q, want empty", stdout)
	}

	out := filepath.Join(dir, "CoV-AbDab_230321.fasta")
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading derived output: %v", err)
	}
	if string(data) != sampleFASTA {
		t.Errorf("output = %q, want %q", data, sampleFASTA)
	}
	if !strings.Contains(stderr, out) {
		t.Errorf("summary %q does not name the output file", stderr)
	}
}

func TestRun_ExplicitOut(t *testing.T) {
	dir := t.TempDir()
	in := writeSample(t, dir, "data.csv")
	out := filepath.Join(dir, "custom.fa")

	code, _, stderr := runCLI(t, "-in", in, "-out", out)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if string(data) != sampleFASTA {
		t.Errorf("output = %q, want %q", data, sampleFASTA)
	}
}

func TestRun_Quiet(t *testing.T) {
	in := writeSample(t, t.TempDir(), "data.csv")

	code, _, stderr := runCLI(t, "-in", in, "-out", "-", "-quiet")
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if stderr != "" {
		t.Errorf("stderr = %q, want empty", stderr)
	}
}

func TestRun_Stdin(t *testing.T) {
	old := stdin
	stdin = strings.NewReader(sampleCSV)
	defer func() { stdin = old }()

	code, stdout, stderr := runCLI(t)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr)
	}
	if stdout != sampleFASTA {
		t.Errorf("stdout = %q, want %q", stdout, sampleFASTA)
	}
}

func TestRun_RowNumbersAndColumnFlags(t *testing.T) {
	in := writeSample(t, t.TempDir(), "data.csv")

	code, stdout, _ := runCLI(t,
		"-in", in, "-out", "-",
		"-row-numbers", "-header-col", "Name", "-seq-col", "CDRH3",
	)
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	want := ">0|CDRH3|Ab-1\nCARDYW\n>1|CDRH3|Ab-2\nCTRDFA\n"
	if stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
}

func TestRun_CRLF(t *testing.T) {
	in := writeSample(t, t.TempDir(), "data.csv")

	code, stdout, _ := runCLI(t,
		"-in", in, "-out", "-",
		"-line-ending", "crlf", "-header-col", "Name", "-seq-col", "CDRL3",
	)
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	want := ">CDRL3|Ab-1\r\nQQYNSY\r\n>CDRL3|Ab-3\r\nQHYGSS\r\n"
	if stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
}

func TestRun_Wrap(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "long.csv")
	csv := "Name,CDRH3\nAb1,CARDYWGQGTLVTVSSAB\n"
	if err := os.WriteFile(in, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	code, stdout, _ := runCLI(t,
		"-in", in, "-out", "-",
		"-wrap", "10", "-header-col", "Name", "-seq-col", "CDRH3",
	)
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	want := ">CDRH3|Ab1\nCARDYWGQGT\nLVTVSSAB\n"
	if stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
}

// ---------------------------------------------------------------------------
// Remote input
// ---------------------------------------------------------------------------

func TestRun_URL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, sampleCSV)
	}))
	defer srv.Close()

	code, stdout, stderr := runCLI(t, "-url", srv.URL+"/CoV-AbDab_230321.csv", "-out", "-")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr)
	}
	if stdout != sampleFASTA {
		t.Errorf("stdout = %q, want %q", stdout, sampleFASTA)
	}
}

func TestRun_URLDerivedName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, sampleCSV)
	}))
	defer srv.Close()
	t.Chdir(t.TempDir())

	code, _, stderr := runCLI(t, "-url", srv.URL+"/CoV-AbDab_230321.csv")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr)
	}
	data, err := os.ReadFile("CoV-AbDab_230321.fasta")
	if err != nil {
		t.Fatalf("reading derived output: %v", err)
	}
	if string(data) != sampleFASTA {
		t.Errorf("output = %q, want %q", data, sampleFASTA)
	}
}

func TestRun_FetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(http.NotFound))
	defer srv.Close()

	code, _, stderr := runCLI(t, "-url", srv.URL, "-out", "-")
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "fetch") {
		t.Errorf("stderr = %q, want fetch failure", stderr)
	}
}

func TestRun_BadScheme(t *testing.T) {
	code, _, stderr := runCLI(t, "-url", "ftp://example.org/data.csv", "-out", "-")
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "scheme") {
		t.Errorf("stderr = %q, want scheme error", stderr)
	}
}

// ---------------------------------------------------------------------------
// Exit codes and failure modes
// ---------------------------------------------------------------------------

func TestRun_Help(t *testing.T) {
	code, stdout, stderr := runCLI(t, "-h")
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if !strings.Contains(stdout, "Usage of covab2fasta") {
		t.Errorf("stdout = %q, want usage text", stdout)
	}
	if stderr != "" {
		t.Errorf("stderr = %q, want empty", stderr)
	}
}

func TestRun_Version(t *testing.T) {
	code, stdout, _ := runCLI(t, "-version")
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if !strings.HasPrefix(stdout, "covab2fasta version ") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestRun_UsageError(t *testing.T) {
	code, stdout, stderr := runCLI(t, "-in", "a.csv", "-url", "http://example.org/a.csv")
	if code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
	if stdout != "" {
		t.Errorf("stdout = %q, want empty", stdout)
	}
	if !strings.Contains(stderr, "conflicts") || !strings.Contains(stderr, "Usage of covab2fasta") {
		t.Errorf("stderr = %q, want error plus usage", stderr)
	}
}

func TestRun_UnknownFlag(t *testing.T) {
	code, _, stderr := runCLI(t, "-bogus")
	if code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
	if stderr == "" {
		t.Error("stderr empty, want parse error")
	}
}

func TestRun_MissingFile(t *testing.T) {
	code, _, stderr := runCLI(t, "-in", filepath.Join(t.TempDir(), "absent.csv"))
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "no such file") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestRun_RowError(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "broken.csv")
	csv := "Name,CDRH3\nAb1,CARDY\n,CTRDF\n"
	if err := os.WriteFile(in, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	code, stdout, stderr := runCLI(t, "-in", in, "-out", "-")
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if stdout != "" {
		t.Errorf("stdout = %q, want nothing flushed", stdout)
	}
	if !strings.Contains(stderr, "row 1") {
		t.Errorf("stderr = %q, want row error", stderr)
	}
}

func TestRun_InvalidConfigLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	in := writeSample(t, dir, "data.csv")

	// Budget of 7 minus tag and separator leaves 1, under the minimum.
	code, _, stderr := runCLI(t, "-in", in, "-max-header", "7")
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "invalid configuration") {
		t.Errorf("stderr = %q", stderr)
	}
	if _, err := os.Stat(filepath.Join(dir, "data.fasta")); !os.IsNotExist(err) {
		t.Errorf("output file exists after rejected configuration (stat err = %v)", err)
	}
}

func TestRun_Cancelled(t *testing.T) {
	in := writeSample(t, t.TempDir(), "data.csv")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out, errOut bytes.Buffer
	code := RunContext(ctx, []string{"-in", in, "-out", "-"}, &out, &errOut)
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(errOut.String(), "context canceled") {
		t.Errorf("stderr = %q", errOut.String())
	}
}
