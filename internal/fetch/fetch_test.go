package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCSV(t *testing.T) {
	const payload = "Name,CDRH3\nAb1,CARDY\n"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != userAgent {
			t.Errorf("User-Agent = %q, want %q", got, userAgent)
		}
		w.Header().Set("Content-Type", "text/csv")
		io.WriteString(w, payload)
	}))
	defer srv.Close()

	body, err := CSV(context.Background(), srv.URL+"/CoV-AbDab.csv")
	if err != nil {
		t.Fatalf("CSV() error: %v", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("ReadAll() error: %v", err)
	}
	if string(data) != payload {
		t.Errorf("body = %q, want %q", data, payload)
	}
}

func TestCSV_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := CSV(context.Background(), srv.URL)

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("CSV() error = %v, want *StatusError", err)
	}
	if se.Code != http.StatusNotFound {
		t.Errorf("StatusError.Code = %d, want %d", se.Code, http.StatusNotFound)
	}
}

func TestCSV_RejectsNonHTTPSchemes(t *testing.T) {
	tests := []string{
		"ftp://example.org/data.csv",
		"file:///etc/passwd",
		"data.csv",
		"",
	}

	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			if _, err := CSV(context.Background(), raw); !errors.Is(err, ErrScheme) {
				t.Errorf("CSV(%q) error = %v, want ErrScheme", raw, err)
			}
		})
	}
}

func TestCSV_ContextCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := CSV(ctx, srv.URL); err == nil {
		t.Error("CSV() error = nil, want context deadline error")
	}
}
