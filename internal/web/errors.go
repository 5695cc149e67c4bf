package web

// errors.go provides unified error response handling for the web layer.
//
// It ensures all errors are:
//   - Logged with full technical details for debugging (server-side)
//   - Returned to clients as user-friendly messages with action suggestions
//   - Tagged with a stable code and the request ID for correlation
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err)
//  3. Error is mapped via convert.MapError to get user-friendly message
//  4. The HTTP status is derived from the mapped code
//  5. Technical error + context is logged with request ID for correlation

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"covab2fasta/internal/convert"
	"covab2fasta/internal/logging"
)

// Codes for failures the conversion mapping never sees. They are produced
// by the transport layer only: malformed request envelopes and throttling.
const (
	codeBadRequest  = "BAD_REQUEST"
	codeRateLimited = "RATE_LIMITED"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes machine-readable (Code, RequestID) and human-readable
// (Error, Action) fields.
type ErrorResponse struct {
	Error     string `json:"error"`
	Action    string `json:"action,omitempty"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// respondError handles error responses with user-friendly messages.
// It logs the technical error server-side and answers with the mapped
// message, its stable code, and the status the code implies.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	userMsg := convert.MapError(err)
	status := statusFromCode(userMsg.Code)

	// Log the technical error with context; the request ID rides along
	// via the context-bound logger.
	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	writeErrorJSON(w, status, ErrorResponse{
		Error:     userMsg.Message,
		Action:    userMsg.Action,
		Code:      userMsg.Code,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// badRequest answers a malformed request envelope: a missing file field,
// an unreadable multipart form, undecodable JSON. These never reach the
// conversion pipeline, so they carry their own code.
func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, err error, message, action string) {
	log := logging.FromContext(r.Context())
	if err != nil {
		log.Warn("bad request", "path", r.URL.Path, "method", r.Method, "error", err.Error())
	} else {
		log.Warn("bad request", "path", r.URL.Path, "method", r.Method, "reason", message)
	}

	writeErrorJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:     message,
		Action:    action,
		Code:      codeBadRequest,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// statusFromCode maps a stable error code onto its HTTP status.
func statusFromCode(code string) int {
	switch code {
	case convert.CodeInvalidOptions, convert.CodeBadRow, convert.CodeBadCSV:
		return http.StatusBadRequest
	case convert.CodeTooLarge:
		return http.StatusRequestEntityTooLarge
	case convert.CodeFetchFailed:
		return http.StatusBadGateway
	case convert.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeErrorJSON writes a JSON error response with the given status.
func writeErrorJSON(w http.ResponseWriter, status int, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
