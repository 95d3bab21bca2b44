package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"dataroom/internal/auth"
	"dataroom/internal/httputil"
)

// Auth verifies the bearer token and stores the caller in the request
// context. Public requests pass through unauthenticated: health and metrics,
// share link views, and file reads that carry a share token.
func Auth(verifier auth.TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || isPublic(r) {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				logger.Debug("authentication failed", "path", r.URL.Path, "error", err)
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, httputil.WithUser(r, claims.GetUserID(), claims.Email))
		})
	}
}

func isPublic(r *http.Request) bool {
	path := r.URL.Path
	switch {
	case path == "/health", path == "/metrics":
		return true
	case strings.HasPrefix(path, "/api/share/") && r.Method == http.MethodGet:
		return true
	case strings.HasPrefix(path, "/api/files/") && r.Method == http.MethodGet:
		return r.URL.Query().Get("token") != ""
	}
	return false
}
