// Package convert orchestrates the pipeline behind both the web API and
// the CLI: parse CSV input, run the entry generator, and hold finished
// conversions in a TTL registry keyed by download token.
package convert

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"covab2fasta/internal/fasta"
	"covab2fasta/internal/report"
	"covab2fasta/internal/table"
)

// Defaults for Config fields left zero.
const (
	DefaultPreviewRows    = 500
	DefaultPreviewEntries = 10
	DefaultResultTTL      = 10 * time.Minute
	DefaultMaxResults     = 64
)

// contextCheckInterval is how many emitted entries pass between context
// cancellation checks during a full conversion.
const contextCheckInterval = 100

// Config bounds the service. Zero fields take the package defaults;
// MaxInputBytes of zero means unlimited.
type Config struct {
	PreviewRows    int           // rows parsed for Inspect and Preview
	PreviewEntries int           // entries returned by Preview
	ResultTTL      time.Duration // how long finished conversions wait for download
	MaxResults     int           // stored-result cap; oldest is evicted at the cap
	MaxInputBytes  int64         // per-conversion input size cap
}

func (c Config) withDefaults() Config {
	if c.PreviewRows <= 0 {
		c.PreviewRows = DefaultPreviewRows
	}
	if c.PreviewEntries <= 0 {
		c.PreviewEntries = DefaultPreviewEntries
	}
	if c.ResultTTL <= 0 {
		c.ResultTTL = DefaultResultTTL
	}
	if c.MaxResults <= 0 {
		c.MaxResults = DefaultMaxResults
	}
	return c
}

// Request selects the columns and formatting options for one conversion.
// Empty column selections fall back to the dataset-derived suggestions.
type Request struct {
	HeaderColumns   []string `json:"headerColumns,omitempty"`
	SequenceColumns []string `json:"sequenceColumns,omitempty"`
	LineEnding      string   `json:"lineEnding,omitempty"`
	AddRowNumber    bool     `json:"addRowNumber,omitempty"`
	CleanupHeader   bool     `json:"cleanupHeader,omitempty"`
	MaxHeaderLength int      `json:"maxHeaderLength,omitempty"`
	MaxLineLength   int      `json:"maxLineLength,omitempty"`
}

func (r Request) options() fasta.Options {
	return fasta.Options{
		LineEnding:      r.LineEnding,
		AddRowNumber:    r.AddRowNumber,
		CleanupHeader:   r.CleanupHeader,
		MaxHeaderLength: r.MaxHeaderLength,
		MaxLineLength:   r.MaxLineLength,
	}
}

// Inspection describes a parsed file: its columns, the suggested column
// selections, and a bounded row count.
type Inspection struct {
	FileName        string   `json:"fileName"`
	OutputName      string   `json:"outputName"`
	Columns         []string `json:"columns"`
	HeaderColumns   []string `json:"headerColumns"`
	SequenceColumns []string `json:"sequenceColumns"`
	Rows            int      `json:"rows"`
	Truncated       bool     `json:"truncated"`
}

// Preview carries the leading entries of a bounded conversion plus the
// sequence-length report for the parsed rows.
type Preview struct {
	OutputName   string         `json:"outputName"`
	Entries      []string       `json:"entries"`
	Rows         int            `json:"rows"`
	Truncated    bool           `json:"truncated"`
	Report       *report.Report `json:"report"`
	HistogramSVG string         `json:"histogramSvg,omitempty"`
	ProcessingMs int64          `json:"processingMs"`
}

// Result summarizes a finished conversion held for download.
type Result struct {
	ID         string    `json:"id"`
	OutputName string    `json:"outputName"`
	Entries    int       `json:"entries"`
	Rows       int       `json:"rows"`
	Bytes      int       `json:"bytes"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// Payload is a downloadable conversion: the derived filename and the FASTA
// text.
type Payload struct {
	Name string
	Data []byte
}

type storedResult struct {
	res  Result
	data []byte
}

// Service runs conversions and keeps the finished ones until they are
// downloaded once or expire. Safe for concurrent use.
type Service struct {
	cfg Config

	mu      sync.RWMutex
	results map[string]*storedResult

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewService applies config defaults and starts the eviction janitor.
// Callers must Close the service to stop it.
func NewService(cfg Config) *Service {
	s := &Service{
		cfg:     cfg.withDefaults(),
		results: make(map[string]*storedResult),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go s.janitor(janitorInterval(s.cfg.ResultTTL))
	return s
}

// Close stops the janitor goroutine. Stored results become unreachable
// with the service; Close does not wait for pending downloads.
func (s *Service) Close() {
	s.closeOnce.Do(func() { close(s.stop) })
	<-s.done
}

// Inspect parses just enough of the input to report its columns, the
// suggested header/sequence selections, and a bounded row count.
func (s *Service) Inspect(ctx context.Context, r io.Reader, name string) (*Inspection, error) {
	tbl, err := table.Read(r, table.ReadOptions{MaxRows: s.cfg.PreviewRows, MaxBytes: s.cfg.MaxInputBytes})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	header, sequence := table.SplitColumns(tbl.Columns())
	return &Inspection{
		FileName:        name,
		OutputName:      fasta.OutputName(name),
		Columns:         tbl.Columns(),
		HeaderColumns:   header,
		SequenceColumns: sequence,
		Rows:            tbl.Len(),
		Truncated:       tbl.Truncated(),
	}, nil
}

// Preview converts a bounded slice of the input and returns the first
// entries together with the length report and its histogram. A bad
// configuration fails the whole preview, exactly like a real conversion.
func (s *Service) Preview(ctx context.Context, r io.Reader, name string, req Request) (*Preview, error) {
	start := time.Now()

	tbl, err := table.Read(r, table.ReadOptions{MaxRows: s.cfg.PreviewRows, MaxBytes: s.cfg.MaxInputBytes})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	headerCols, seqCols := resolveColumns(tbl, req)
	entries, err := fasta.Preview(tbl, headerCols, seqCols, req.options(), s.cfg.PreviewEntries)
	if err != nil {
		return nil, err
	}

	rep := report.Build(tbl, seqCols)
	svg, err := rep.HistogramSVG()
	if err != nil {
		return nil, err
	}

	return &Preview{
		OutputName:   fasta.OutputName(name),
		Entries:      entries,
		Rows:         tbl.Len(),
		Truncated:    tbl.Truncated(),
		Report:       rep,
		HistogramSVG: svg,
		ProcessingMs: time.Since(start).Milliseconds(),
	}, nil
}

// Convert runs the full conversion into memory and, on success, stores the
// output under a fresh download token. Any generator error discards the
// buffered output, so a stored result is always complete.
func (s *Service) Convert(ctx context.Context, r io.Reader, name string, req Request) (*Result, error) {
	tbl, err := table.Read(r, table.ReadOptions{MaxBytes: s.cfg.MaxInputBytes})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	headerCols, seqCols := resolveColumns(tbl, req)
	gen, err := fasta.NewGenerator(tbl, headerCols, seqCols, req.options())
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	entries := 0
	err = gen.ForEach(func(entry string) error {
		if entries%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		buf.WriteString(entry)
		entries++
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := Result{
		ID:         uuid.New().String(),
		OutputName: fasta.OutputName(name),
		Entries:    entries,
		Rows:       tbl.Len(),
		Bytes:      buf.Len(),
		ExpiresAt:  time.Now().Add(s.cfg.ResultTTL),
	}
	s.store(&storedResult{res: res, data: buf.Bytes()})
	return &res, nil
}

// Result returns the summary of a stored conversion without consuming it.
// Unknown and expired IDs are ErrNotFound.
func (s *Service) Result(id string) (*Result, error) {
	s.mu.RLock()
	sr, ok := s.results[id]
	s.mu.RUnlock()

	if !ok || time.Now().After(sr.res.ExpiresAt) {
		return nil, ErrNotFound
	}
	res := sr.res
	return &res, nil
}

// Download hands out a stored conversion exactly once: a successful call
// removes the entry, and later calls report ErrNotFound.
func (s *Service) Download(id string) (*Payload, error) {
	s.mu.Lock()
	sr, ok := s.results[id]
	if ok {
		delete(s.results, id)
	}
	s.mu.Unlock()

	if !ok || time.Now().After(sr.res.ExpiresAt) {
		return nil, ErrNotFound
	}
	return &Payload{Name: sr.res.OutputName, Data: sr.data}, nil
}

// resolveColumns fills empty selections from the dataset-derived
// suggestions so a bare request converts the known schema.
func resolveColumns(tbl *table.Table, req Request) (header, sequence []string) {
	header, sequence = req.HeaderColumns, req.SequenceColumns
	if len(header) == 0 || len(sequence) == 0 {
		suggestedHeader, suggestedSequence := table.SplitColumns(tbl.Columns())
		if len(header) == 0 {
			header = suggestedHeader
		}
		if len(sequence) == 0 {
			sequence = suggestedSequence
		}
	}
	return header, sequence
}

func (s *Service) store(sr *storedResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.results) >= s.cfg.MaxResults {
		s.evictOldestLocked()
	}
	s.results[sr.res.ID] = sr
}

// evictOldestLocked drops the entry closest to expiry. Called with the
// write lock held when the registry is at capacity.
func (s *Service) evictOldestLocked() {
	var oldest string
	var oldestAt time.Time
	for id, sr := range s.results {
		if oldest == "" || sr.res.ExpiresAt.Before(oldestAt) {
			oldest, oldestAt = id, sr.res.ExpiresAt
		}
	}
	if oldest != "" {
		delete(s.results, oldest)
	}
}

func (s *Service) evictExpired(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sr := range s.results {
		if now.After(sr.res.ExpiresAt) {
			delete(s.results, id)
		}
	}
}

func (s *Service) janitor(interval time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.evictExpired(time.Now())
		}
	}
}

func janitorInterval(ttl time.Duration) time.Duration {
	iv := ttl / 4
	if iv < time.Second {
		iv = time.Second
	}
	if iv > time.Minute {
		iv = time.Minute
	}
	return iv
}
