package handler

import (
	"net/http"

	"github.com/mcoot/bingogame-go/internal/api/apierr"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// Re-export error codes
const (
	CodeInvalidRequest     = apierr.CodeInvalidRequest
	CodeUnauthorized       = apierr.CodeUnauthorized
	CodeForbidden          = apierr.CodeForbidden
	CodeSessionNotFound    = apierr.CodeSessionNotFound
	CodePlayerNotFound     = apierr.CodePlayerNotFound
	CodeSessionNotActive   = apierr.CodeSessionNotActive
	CodePoolExhausted      = apierr.CodePoolExhausted
	CodeInvalidStrategy    = apierr.CodeInvalidStrategy
	CodeDuplicatePlayer    = apierr.CodeDuplicatePlayer
	CodeCardLocked         = apierr.CodeCardLocked
	CodeConflict           = apierr.CodeConflict
	CodeUsernameExists     = apierr.CodeUsernameExists
	CodeInvalidCredentials = apierr.CodeInvalidCredentials
	CodeUnavailable        = apierr.CodeUnavailable
	CodeInternalError      = apierr.CodeInternalError
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return apierr.NewUnauthorizedError()
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return apierr.NewInternalError()
}
