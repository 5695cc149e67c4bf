// Package fetch retrieves remote CSV files over HTTP for conversion.
//
// It hands back the raw response body; size capping and parsing belong to
// the tabular loader, which treats remote and uploaded input identically.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultDatabaseURL points at the CoV-AbDab download this converter was
// built around. It is offered to the UI and CLI as a prefill, never
// fetched implicitly.
const DefaultDatabaseURL = "http://opig.stats.ox.ac.uk/webapps/covabdab/static/downloads/CoV-AbDab_230321.csv"

// userAgent identifies the converter to the hosts it pulls from.
const userAgent = "covab2fasta/1.0"

// httpClient performs requests; tests may replace it with a stub transport.
// Callers bound individual fetches with their context; the client timeout
// is only the outer safety net and must stay above any configurable
// per-fetch deadline.
var httpClient = &http.Client{Timeout: 5 * time.Minute}

// ErrScheme rejects URLs that are not plain http or https.
var ErrScheme = errors.New("url scheme must be http or https")

// StatusError reports a response that arrived but did not succeed.
type StatusError struct {
	URL    string
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Status)
}

// CSV issues a GET for rawURL and returns the response body. The caller
// owns the returned reader and must close it.
func CSV(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, ErrScheme
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/csv, */*")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", u.String(), err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &StatusError{URL: u.String(), Code: resp.StatusCode, Status: resp.Status}
	}
	return resp.Body, nil
}
