package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/bingogame-go/internal/api/apierr"
	"github.com/mcoot/bingogame-go/internal/middleware"
)

// Recovery creates panic recovery middleware for the API
// Returns JSON error responses on panic
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, apiPanicHandler)
}

// Logging tags requests with an ID and logs them
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	requestID := middleware.RequestID()
	logging := middleware.Logging(logger)
	return func(next http.Handler) http.Handler {
		return requestID(logging(next))
	}
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}
