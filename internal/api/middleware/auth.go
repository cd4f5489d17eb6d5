package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/bingogame-go/internal/api/apierr"
	"github.com/mcoot/bingogame-go/internal/services/auth"
)

// TokenCookie is the cookie a browser client may carry its token in
const TokenCookie = "bingo_token"

type contextKey string

const grantContextKey contextKey = "grant"

// Auth creates authentication middleware
func Auth(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			grant, err := authService.ValidateToken(token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), grantContextKey, grant)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth extracts the grant if present but doesn't require it
func OptionalAuth(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := ExtractToken(r); token != "" {
				if grant, err := authService.ValidateToken(token); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), grantContextKey, grant))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ExtractToken reads the bearer token from the Authorization header, the
// token cookie, or a "token" query parameter. The query parameter exists
// for EventSource and WebSocket clients, which cannot set headers.
func ExtractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	if cookie, err := r.Cookie(TokenCookie); err == nil {
		return cookie.Value
	}

	return r.URL.Query().Get("token")
}

// GetGrant returns the validated grant from the request context
func GetGrant(ctx context.Context) *auth.Grant {
	grant, _ := ctx.Value(grantContextKey).(*auth.Grant)
	return grant
}

// GetIdentity returns the caller's identity, or nil if unauthenticated
func GetIdentity(ctx context.Context) *auth.Identity {
	if grant := GetGrant(ctx); grant != nil {
		return &grant.Identity
	}
	return nil
}

// MustGetIdentity returns the caller's identity or panics
func MustGetIdentity(ctx context.Context) *auth.Identity {
	identity := GetIdentity(ctx)
	if identity == nil {
		panic("no identity in context - auth middleware not applied?")
	}
	return identity
}
