package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/typerace/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeSessionNotFound      = "SESSION_NOT_FOUND"
	CodeSessionClosed        = "SESSION_CLOSED"
	CodeNotHost              = "NOT_HOST"
	CodeGameInProgress       = "GAME_IN_PROGRESS"
	CodeGameNotStarted       = "GAME_NOT_STARTED"
	CodeAlreadyJoined        = "ALREADY_JOINED"
	CodeParagraphUnavailable = "PARAGRAPH_UNAVAILABLE"
	CodeInternalError        = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// sessionErrors maps session failures to HTTP responses, most specific first.
// Their messages are the ones players see over WebSocket.
var sessionErrors = []struct {
	err    error
	status int
	code   string
}{
	{model.ErrSessionNotFound, http.StatusNotFound, CodeSessionNotFound},
	{model.ErrSessionClosed, http.StatusGone, CodeSessionClosed},
	{model.ErrNotHost, http.StatusForbidden, CodeNotHost},
	{model.ErrGameAlreadyStarted, http.StatusConflict, CodeGameInProgress},
	{model.ErrJoinAfterStart, http.StatusConflict, CodeGameInProgress},
	{model.ErrGameNotStarted, http.StatusConflict, CodeGameNotStarted},
	{model.ErrAlreadyJoined, http.StatusConflict, CodeAlreadyJoined},
	{model.ErrParagraphUnavailable, http.StatusServiceUnavailable, CodeParagraphUnavailable},
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	for _, e := range sessionErrors {
		if errors.Is(err, e.err) {
			return &httpError{e.status, APIError{e.code, model.ClientMessage(e.err)}}
		}
	}
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
