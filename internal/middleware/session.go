package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ticklist/ticklist/internal/auth"
	"github.com/ticklist/ticklist/internal/model"
	"github.com/ticklist/ticklist/internal/service"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "session"

// IdentityResolver maps a session token to the authenticated caller.
// *service.AuthService satisfies it.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (*model.Identity, error)
}

// SessionConfig holds configuration for the session middleware.
type SessionConfig struct {
	Logger   *slog.Logger
	Resolver IdentityResolver
}

// Session returns a middleware that authenticates requests from the
// session cookie. On success the caller identity is injected into the
// request context; otherwise the request is rejected with 401.
func Session(cfg SessionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r)

			id, err := cfg.Resolver.Resolve(r.Context(), token)
			if err != nil {
				if errors.Is(err, service.ErrUnauthenticated) {
					cfg.Logger.Warn("unauthenticated request",
						slog.String("endpoint", r.Method+" "+r.URL.Path),
						slog.String("ip", r.RemoteAddr),
						slog.String("request_id", GetRequestID(r.Context())),
					)
					writeUnauthorized(w)
					return
				}
				cfg.Logger.Error("session resolution error",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeJSONError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			ctx := auth.ContextWithIdentity(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionToken extracts the session token from the request cookie.
// Returns "" when the cookie is absent.
func SessionToken(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// writeUnauthorized writes a 401 response with no session detail.
func writeUnauthorized(w http.ResponseWriter) {
	writeJSONError(w, http.StatusUnauthorized, "authentication required")
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + message + `"}`))
}
