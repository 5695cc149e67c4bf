// Package web provides the HTTP server and API for the converter UI.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"covab2fasta/internal/config"
	"covab2fasta/internal/convert"
	mw "covab2fasta/internal/web/middleware"
)

//go:embed static
var staticFiles embed.FS

// Server is the HTTP server for the conversion application.
type Server struct {
	cfg     *config.Config
	service *convert.Service
	router  *chi.Mux
	server  *http.Server
	index   []byte
}

// NewServer wires the conversion service into a configured router.
func NewServer(cfg *config.Config, service *convert.Service) *Server {
	s := &Server{
		cfg:     cfg,
		service: service,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

	// Security hardening
	s.router.Use(securityHeaders)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	index, err := fs.ReadFile(staticFS, "index.html")
	if err != nil {
		panic(err)
	}
	s.index = index

	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	s.router.Get("/", s.handleIndex)

	s.router.Route("/api", func(r chi.Router) {
		// Rate limiting covers the API only; the static page stays cheap
		// to serve even for throttled clients.
		if s.cfg.Rate.Enabled {
			limiter := newRateLimiter(s.cfg.Rate.RequestsPerMinute, s.cfg.Rate.Burst)
			r.Use(limiter.middleware)
		}

		r.Get("/health", s.handleHealth)
		r.Get("/defaults", s.handleDefaults)

		r.Post("/inspect", s.handleInspect)
		r.Post("/preview", s.handlePreview)
		r.Post("/convert", s.handleConvert)

		r.Get("/download/{id}", s.handleDownload)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Prevent MIME type sniffing
		w.Header().Set("X-Content-Type-Options", "nosniff")

		// Prevent clickjacking
		w.Header().Set("X-Frame-Options", "DENY")

		// XSS protection (legacy but still useful for older browsers)
		w.Header().Set("X-XSS-Protection", "1; mode=block")

		// Content Security Policy - the UI is a single self-contained page
		// with inline styles and scripts; the histogram SVG arrives as data
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; font-src 'self'")

		// Control referrer information
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}

// visitorStaleAfter is how long an idle client stays in the limiter map.
// A client returning after expiry starts over with a full bucket.
const visitorStaleAfter = 3 * time.Minute

// rateLimiter implements a token bucket rate limiter per IP: each client
// holds up to burst tokens and regains them at the sustained per-minute
// rate.
type rateLimiter struct {
	mu         sync.Mutex
	visitors   map[string]*visitor
	perSecond  float64 // token refill rate
	burst      float64 // bucket capacity
	retryAfter string  // seconds until a drained bucket holds a token again
}

type visitor struct {
	tokens float64
	last   time.Time
}

// newRateLimiter creates a limiter allowing ratePerMinute sustained
// requests with bursts of up to burst.
func newRateLimiter(ratePerMinute, burst int) *rateLimiter {
	rl := &rateLimiter{
		visitors:   make(map[string]*visitor),
		perSecond:  float64(ratePerMinute) / 60,
		burst:      float64(burst),
		retryAfter: strconv.Itoa((ratePerMinute + 59) / ratePerMinute),
	}
	// Start cleanup goroutine
	go rl.cleanup()
	return rl
}

// cleanup removes stale visitor entries every minute.
func (rl *rateLimiter) cleanup() {
	for {
		time.Sleep(time.Minute)
		rl.mu.Lock()
		for ip, v := range rl.visitors {
			if time.Since(v.last) > visitorStaleAfter {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// allow checks if the request should be allowed and consumes a token if so.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	v, exists := rl.visitors[ip]
	if !exists {
		rl.visitors[ip] = &visitor{tokens: rl.burst - 1, last: now}
		return true
	}

	// Refill for the time passed since the last request, capped at burst
	v.tokens += now.Sub(v.last).Seconds() * rl.perSecond
	if v.tokens > rl.burst {
		v.tokens = rl.burst
	}
	v.last = now

	if v.tokens < 1 {
		return false
	}
	v.tokens--
	return true
}

// middleware returns an HTTP middleware that rate limits by IP.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		// Use X-Real-IP if set (by RealIP middleware)
		if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
			ip = realIP
		}

		if !rl.allow(ip) {
			w.Header().Set("Retry-After", rl.retryAfter)
			writeErrorJSON(w, http.StatusTooManyRequests, ErrorResponse{
				Error:     "Too many requests",
				Action:    "Wait a moment before trying again",
				Code:      codeRateLimited,
				RequestID: middleware.GetReqID(r.Context()),
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
