package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/hearthealth/hearthealth/internal/auth"
	"github.com/hearthealth/hearthealth/internal/model"
)

// TokenParser verifies an access token and returns its principal.
type TokenParser interface {
	Parse(token string) (*model.Principal, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger *slog.Logger
	Tokens TokenParser
}

// RequireAuth returns a middleware that rejects requests without a valid
// bearer token and injects the principal into the request context.
func RequireAuth(cfg AuthConfig) func(http.Handler) http.Handler {
	return authenticate(cfg, true)
}

// OptionalAuth lets anonymous requests through. A request that does carry
// a token must carry a valid one.
func OptionalAuth(cfg AuthConfig) func(http.Handler) http.Handler {
	return authenticate(cfg, false)
}

func authenticate(cfg AuthConfig, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, present := extractBearerToken(r)
			if !present {
				if !required {
					next.ServeHTTP(w, r)
					return
				}
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "missing_token"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			principal, err := cfg.Tokens.Parse(token)
			if err != nil {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "invalid_token"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			notePrincipal(r, principal)
			ctx := auth.ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken returns the token from "Authorization: Bearer <token>".
// present is true whenever an Authorization header was sent, even a
// malformed one, so that OptionalAuth rejects it instead of ignoring it.
func extractBearerToken(r *http.Request) (token string, present bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", false
	}
	scheme, value, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", true
	}
	return strings.TrimSpace(value), true
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="hearthealth"`)
	writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing access token")
}
