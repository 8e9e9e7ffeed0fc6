package middleware

import (
	"log/slog"
	"net/http"
)

// ConcurrencyLimiter rejects requests beyond n in flight with 503.
type ConcurrencyLimiter struct {
	log *slog.Logger
	sem chan struct{}
}

func NewConcurrencyLimiter(log *slog.Logger, n int) *ConcurrencyLimiter {
	if n <= 0 {
		n = 1
	}
	return &ConcurrencyLimiter{log: log, sem: make(chan struct{}, n)}
}

func (l *ConcurrencyLimiter) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case l.sem <- struct{}{}:
			defer func() { <-l.sem }()
			next.ServeHTTP(w, r)
		default:
			l.log.Warn("too many concurrent requests", "path", r.URL.Path, "limit", cap(l.sem))
			w.Header().Set("Retry-After", "1")
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		}
	})
}
