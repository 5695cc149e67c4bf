package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"covab2fasta/internal/convert"
	"covab2fasta/internal/fasta"
	"covab2fasta/internal/fetch"
	"covab2fasta/internal/table"
)

// fastaContentType is the conventional MIME type for FASTA downloads.
const fastaContentType = "chemical/seq-na-fasta"

// handleIndex serves the embedded single-page UI.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(s.index)
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// defaultsResponse tells the UI what a blank form means.
type defaultsResponse struct {
	HeaderColumns   []string        `json:"headerColumns"`
	SequenceColumns []string        `json:"sequenceColumns"`
	Options         convert.Request `json:"options"`
	DatabaseURL     string          `json:"databaseUrl"`
	MaxInputBytes   int64           `json:"maxInputBytes"`
	MinWrapWidth    int             `json:"minWrapWidth"`
	MinHeaderBudget int             `json:"minHeaderBudget"`
}

// handleDefaults returns the default column selections, option defaults,
// and the database URL offered as a prefill.
func (s *Server) handleDefaults(w http.ResponseWriter, r *http.Request) {
	header, sequence := table.DefaultColumns()
	writeJSON(w, defaultsResponse{
		HeaderColumns:   header,
		SequenceColumns: sequence,
		Options:         convert.Request{LineEnding: fasta.DefaultLineEnding},
		DatabaseURL:     s.cfg.Fetch.DatabaseURL,
		MaxInputBytes:   s.cfg.Upload.MaxFileSize,
		MinWrapWidth:    fasta.MinWrapWidth,
		MinHeaderBudget: fasta.MinHeaderBudget,
	})
}

// handleInspect parses the input and returns its columns, the suggested
// selections, and a bounded row count.
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	src, ok := s.openInput(w, r)
	if !ok {
		return
	}
	defer src.rc.Close()

	insp, err := s.service.Inspect(r.Context(), src.rc, src.name)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, insp)
}

// handlePreview converts a bounded slice of the input and returns the
// leading entries, the sequence-length report, and its histogram.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	src, ok := s.openInput(w, r)
	if !ok {
		return
	}
	defer src.rc.Close()

	preview, err := s.service.Preview(r.Context(), src.rc, src.name, src.req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, preview)
}

// handleConvert runs the full conversion and returns the download token.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	src, ok := s.openInput(w, r)
	if !ok {
		return
	}
	defer src.rc.Close()

	result, err := s.service.Convert(r.Context(), src.rc, src.name, src.req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// handleDownload streams a stored conversion as a FASTA attachment.
// Each result downloads once; the token is gone afterwards.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		s.badRequest(w, r, nil, "Missing download ID", "Use the id returned by a conversion")
		return
	}

	payload, err := s.service.Download(id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", fastaContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, payload.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(payload.Data)))
	w.Write(payload.Data)
}

// source is one resolved conversion input: the CSV stream, the name it
// goes by, and the decoded generation options.
type source struct {
	rc   io.ReadCloser
	name string
	req  convert.Request
}

// urlRequest is the JSON envelope for converting a remote CSV.
type urlRequest struct {
	URL     string          `json:"url"`
	Options convert.Request `json:"options"`
}

// openInput resolves the two request envelopes the conversion endpoints
// accept: a multipart upload with the CSV in a "file" field, or a JSON
// body naming a URL to fetch. On failure it has already responded.
func (s *Server) openInput(w http.ResponseWriter, r *http.Request) (*source, bool) {
	ct := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(ct, "application/json"):
		return s.openURLInput(w, r)
	case strings.HasPrefix(ct, "multipart/form-data"):
		return s.openUploadInput(w, r)
	}
	s.badRequest(w, r, nil, "Unsupported content type",
		`Upload the CSV as multipart form data, or send JSON {"url": "..."}`)
	return nil, false
}

// openUploadInput reads a multipart upload. Options ride along as a JSON
// form value so the file part stays a plain stream.
func (s *Server) openUploadInput(w http.ResponseWriter, r *http.Request) (*source, bool) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, r, err)
			return nil, false
		}
		s.badRequest(w, r, err, "The upload form could not be read",
			`Send the CSV as multipart form data in a "file" field`)
		return nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.badRequest(w, r, err, "No file provided",
			`Attach the CSV as the "file" form field`)
		return nil, false
	}

	var req convert.Request
	if optionsJSON := r.FormValue("options"); optionsJSON != "" {
		if err := json.Unmarshal([]byte(optionsJSON), &req); err != nil {
			file.Close()
			s.badRequest(w, r, err, "The conversion options are not valid JSON",
				`Fix the "options" form field or leave it out for the defaults`)
			return nil, false
		}
	}

	return &source{rc: file, name: header.Filename, req: req}, true
}

// openURLInput fetches the CSV named in a JSON body. The size cap is
// enforced by the loader, so remote input obeys the same limit as uploads.
func (s *Server) openURLInput(w http.ResponseWriter, r *http.Request) (*source, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)

	var req urlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, r, err, "The request body is not valid JSON",
			`Send {"url": "..."} with optional "options"`)
		return nil, false
	}
	if strings.TrimSpace(req.URL) == "" {
		s.badRequest(w, r, nil, "No url provided",
			`Set "url" to the CSV to fetch, or upload a file instead`)
		return nil, false
	}

	// The fetch gets its own deadline; its cancel is tied to the body so
	// closing the stream releases the connection.
	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Fetch.Timeout)
	body, err := fetch.CSV(ctx, req.URL)
	if err != nil {
		cancel()
		s.respondError(w, r, err)
		return nil, false
	}

	return &source{
		rc:   &fetchedBody{ReadCloser: body, cancel: cancel},
		name: req.URL,
		req:  req.Options,
	}, true
}

// fetchedBody couples a fetched response body with the context cancel
// that bounds the download, so closing the body releases both.
type fetchedBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *fetchedBody) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}
