package apierr

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/bingogame-go/internal/model"
	"github.com/mcoot/bingogame-go/internal/services/auth"
	"github.com/mcoot/bingogame-go/internal/services/session"
	"github.com/mcoot/bingogame-go/internal/storage"
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
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeSessionNotFound    = "SESSION_NOT_FOUND"
	CodePlayerNotFound     = "PLAYER_NOT_FOUND"
	CodeSessionNotActive   = "SESSION_NOT_ACTIVE"
	CodePoolExhausted      = "POOL_EXHAUSTED"
	CodeInvalidStrategy    = "INVALID_STRATEGY"
	CodeDuplicatePlayer    = "DUPLICATE_PLAYER"
	CodeCardLocked         = "CARD_LOCKED"
	CodeSessionFull        = "SESSION_FULL"
	CodeConflict           = "CONFLICT"
	CodeUsernameExists     = "USERNAME_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUnavailable        = "UNAVAILABLE"
	CodeInternalError      = "INTERNAL_ERROR"
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

// Describe returns the API error an error maps to, for transports that
// report errors without an HTTP status
func Describe(err error) APIError {
	return toHTTPError(err).apiError
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrSessionNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeSessionNotFound, "Session not found"}}
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrSessionNotActive):
		return &httpError{http.StatusConflict, APIError{CodeSessionNotActive, "Session is not active"}}
	case errors.Is(err, model.ErrPoolExhausted):
		return &httpError{http.StatusConflict, APIError{CodePoolExhausted, "No balls left to draw"}}
	case errors.Is(err, model.ErrInvalidStrategy):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidStrategy, "Unknown win strategy"}}
	case errors.Is(err, model.ErrDuplicatePlayer):
		return &httpError{http.StatusConflict, APIError{CodeDuplicatePlayer, "A player with this contact already joined"}}
	case errors.Is(err, model.ErrCardLocked):
		return &httpError{http.StatusConflict, APIError{CodeCardLocked, "Cards cannot change once balls are drawn"}}
	case errors.Is(err, model.ErrSessionFull):
		return &httpError{http.StatusConflict, APIError{CodeSessionFull, "Session has no access codes left"}}
	case errors.Is(err, model.ErrUnauthorized):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
	case errors.Is(err, model.ErrForbidden):
		return &httpError{http.StatusForbidden, APIError{CodeForbidden, "Not allowed for this caller"}}
	case errors.Is(err, storage.ErrConflict):
		return &httpError{http.StatusConflict, APIError{CodeConflict, "Session was modified concurrently, retry"}}

	// Map auth errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid credentials"}}
	case errors.Is(err, auth.ErrInvalidToken):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired token"}}
	case errors.Is(err, auth.ErrUsernameExists):
		return &httpError{http.StatusConflict, APIError{CodeUsernameExists, "Username already exists"}}
	case errors.Is(err, auth.ErrInvalidUsername), errors.Is(err, auth.ErrPasswordTooShort):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, err.Error()}}

	// Map coordinator and request lifecycle errors
	case errors.Is(err, session.ErrClosed):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeUnavailable, "Server is shutting down"}}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeUnavailable, "Request cancelled"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
