package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// PanicHandler writes the error response for a recovered panic
type PanicHandler func(w http.ResponseWriter, r *http.Request, err any)

// Recovery logs panics from downstream handlers and answers with handler.
// http.ErrAbortHandler is re-raised so net/http can drop the connection.
func Recovery(logger *slog.Logger, handler PanicHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				logger.Error("panic recovered",
					slog.String("request_id", GetRequestID(r.Context())),
					slog.Any("error", rec),
					slog.String("stack", string(debug.Stack())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)

				handler(w, r, rec)
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// DefaultPanicHandler answers 500 with a plain body
func DefaultPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
