// Package config provides centralized configuration management for the
// application. It loads settings from environment variables with sensible
// defaults and validates everything on startup to fail fast on
// misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server  ServerConfig
	Upload  UploadConfig
	Fetch   FetchConfig
	Convert ConvertConfig
	Rate    RateLimitConfig
	Logging LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"COVAB_SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on. PORT works as a fallback for
	// platform-assigned ports (default: 8080)
	Port int `env:"COVAB_SERVER_PORT" envAlt:"PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading the request body (default: 30s)
	ReadTimeout time.Duration `env:"COVAB_SERVER_READ_TIMEOUT" default:"30s"`

	// WriteTimeout is the maximum duration for writing the response (default: 2m)
	WriteTimeout time.Duration `env:"COVAB_SERVER_WRITE_TIMEOUT" default:"2m"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"COVAB_SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum wait for graceful shutdown (default: 15s)
	ShutdownTimeout time.Duration `env:"COVAB_SERVER_SHUTDOWN_TIMEOUT" default:"15s"`

	// RequestTimeout is the middleware timeout for requests (default: 90s)
	RequestTimeout time.Duration `env:"COVAB_SERVER_REQUEST_TIMEOUT" default:"90s"`
}

// UploadConfig holds input size limits. The cap applies to every source of
// CSV input, uploaded files and fetched URLs alike.
type UploadConfig struct {
	// MaxFileSize is the maximum allowed CSV size in bytes (default: 100MB)
	MaxFileSize int64 `env:"COVAB_UPLOAD_MAX_FILE_SIZE" default:"104857600"`
}

// FetchConfig holds remote database download settings.
type FetchConfig struct {
	// Timeout bounds one fetch of the remote CSV (default: 2m)
	Timeout time.Duration `env:"COVAB_FETCH_TIMEOUT" default:"2m"`

	// DatabaseURL is the CoV-AbDab download URL offered as the UI default.
	// It is never fetched without an explicit request.
	DatabaseURL string `env:"COVAB_FETCH_DATABASE_URL" default:"http://opig.stats.ox.ac.uk/webapps/covabdab/static/downloads/CoV-AbDab_230321.csv"`
}

// ConvertConfig bounds the conversion service and its result registry.
type ConvertConfig struct {
	// PreviewRows is how many data rows inspect and preview parse (default: 500)
	PreviewRows int `env:"COVAB_CONVERT_PREVIEW_ROWS" default:"500"`

	// PreviewEntries is how many entries a preview returns (default: 10)
	PreviewEntries int `env:"COVAB_CONVERT_PREVIEW_ENTRIES" default:"10"`

	// ResultTTL is how long a finished conversion waits for download (default: 10m)
	ResultTTL time.Duration `env:"COVAB_CONVERT_RESULT_TTL" default:"10m"`

	// MaxResults caps the stored-result registry (default: 64)
	MaxResults int `env:"COVAB_CONVERT_MAX_RESULTS" default:"64"`
}

// RateLimitConfig holds per-IP rate limiting for the API subtree.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"COVAB_RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the sustained per-IP budget (default: 120)
	RequestsPerMinute int `env:"COVAB_RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`

	// Burst is the instantaneous allowance on top of the sustained rate (default: 20)
	Burst int `env:"COVAB_RATE_LIMIT_BURST" default:"20"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"COVAB_LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"COVAB_LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
