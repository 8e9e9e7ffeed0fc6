package middleware

import (
	"log/slog"
	"net/http"
	"strings"
)

const tokenPrefix = "Token "

type TokenChecker interface {
	ParseToken(string) error
}

// Auth admits requests carrying "Authorization: Token <jwt>" that checker
// accepts and answers everything else with 401.
func Auth(log *slog.Logger, checker TokenChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, tokenPrefix) {
				unauthorized(w)
				return
			}
			token := strings.TrimSpace(h[len(tokenPrefix):])
			if token == "" {
				unauthorized(w)
				return
			}
			if err := checker.ParseToken(token); err != nil {
				log.Debug("rejected token", "path", r.URL.Path, "error", err)
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", strings.TrimSpace(tokenPrefix))
	http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
}
