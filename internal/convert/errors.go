package convert

// errors.go maps internal failures onto the stable user-facing codes the
// API returns. Every code pairs a plain-language message with a concrete
// next step; the technical error stays in the server log.

import (
	"context"
	"encoding/csv"
	"errors"
	"net/http"
	"net/url"

	"covab2fasta/internal/fasta"
	"covab2fasta/internal/fetch"
	"covab2fasta/internal/table"
)

// ErrNotFound reports a download token that is unknown, expired, or
// already consumed.
var ErrNotFound = errors.New("result not found")

// Stable error codes returned by the API. Clients branch on these, so they
// never change meaning.
const (
	CodeInvalidOptions = "INVALID_OPTIONS"
	CodeBadRow         = "BAD_ROW"
	CodeBadCSV         = "BAD_CSV"
	CodeTooLarge       = "TOO_LARGE"
	CodeFetchFailed    = "FETCH_FAILED"
	CodeNotFound       = "NOT_FOUND"
	CodeInternal       = "INTERNAL"
)

// UserMessage provides user-friendly error information with actionable
// guidance and a stable code.
type UserMessage struct {
	Message string `json:"error"`  // what happened
	Action  string `json:"action"` // what to do about it
	Code    string `json:"code"`   // stable code clients can branch on
}

// defaultMessage is the fallback for errors with no specific mapping.
// The original error should be logged whenever this is returned.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again",
	Code:    CodeInternal,
}

// MapError converts an internal error to the user-facing message the API
// returns. Typed errors are matched with errors.Is/errors.As; anything
// unrecognized falls back to the generic internal-error message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var (
		cfgErr    *fasta.ConfigError
		rowErr    *fasta.RowError
		colErr    *fasta.UnknownColumnError
		csvErr    *csv.ParseError
		statusErr *fetch.StatusError
		urlErr    *url.Error
		bodyErr   *http.MaxBytesError
	)

	switch {
	case errors.Is(err, ErrNotFound):
		return UserMessage{
			Message: "No conversion with that download ID",
			Action:  "The result may have expired or already been downloaded. Run the conversion again",
			Code:    CodeNotFound,
		}

	case errors.As(err, &cfgErr):
		return UserMessage{
			Message: "These conversion options cannot work",
			Action:  "Pick at least one header and one sequence column, use a wrap width of 10 or more, and leave the header limit room for at least 5 characters",
			Code:    CodeInvalidOptions,
		}

	case errors.As(err, &colErr):
		return UserMessage{
			Message: "A selected column does not exist in the file",
			Action:  "Inspect the file again and choose columns from its header row",
			Code:    CodeBadRow,
		}

	case errors.As(err, &rowErr):
		return UserMessage{
			Message: "A row has no value for one of the header columns",
			Action:  "Choose header columns that are filled in on every row, or remove the incomplete rows",
			Code:    CodeBadRow,
		}

	case errors.Is(err, table.ErrTooLarge), errors.As(err, &bodyErr):
		return UserMessage{
			Message: "The file exceeds the size limit",
			Action:  "Convert a smaller export, or raise the configured input limit",
			Code:    CodeTooLarge,
		}

	case errors.Is(err, table.ErrNoHeader):
		return UserMessage{
			Message: "The file has no header row",
			Action:  "Upload a CSV whose first line names the columns",
			Code:    CodeBadCSV,
		}

	case errors.As(err, &csvErr):
		return UserMessage{
			Message: "The file is not valid CSV",
			Action:  "Ensure every row has the same number of fields as the header",
			Code:    CodeBadCSV,
		}

	case errors.Is(err, fetch.ErrScheme):
		return UserMessage{
			Message: "The database URL scheme is not supported",
			Action:  "Use an http or https URL",
			Code:    CodeFetchFailed,
		}

	case errors.As(err, &statusErr):
		return UserMessage{
			Message: "The database URL did not return the file",
			Action:  "Check the URL, or try again later",
			Code:    CodeFetchFailed,
		}

	case errors.As(err, &urlErr):
		return UserMessage{
			Message: "The database URL could not be reached",
			Action:  "Check the URL and your network, then try again",
			Code:    CodeFetchFailed,
		}

	case errors.Is(err, context.DeadlineExceeded):
		return UserMessage{
			Message: "The request timed out",
			Action:  "Try a smaller file, or try again later",
			Code:    CodeInternal,
		}

	case errors.Is(err, context.Canceled):
		return UserMessage{
			Message: "The request was cancelled",
			Action:  "Please try again",
			Code:    CodeInternal,
		}
	}

	return defaultMessage
}
