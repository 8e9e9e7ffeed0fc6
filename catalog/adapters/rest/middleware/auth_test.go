package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type checker map[string]bool

func (c checker) ParseToken(tok string) error {
	if c[tok] {
		return nil
	}
	return errors.New("bad token")
}

func TestAuth(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	h := Auth(slog.New(slog.NewTextHandler(io.Discard, nil)), checker{"good": true})(next)

	tests := []struct {
		header string
		want   int
	}{
		{header: "", want: http.StatusUnauthorized},
		{header: "Bearer good", want: http.StatusUnauthorized},
		{header: "Token ", want: http.StatusUnauthorized},
		{header: "Token bad", want: http.StatusUnauthorized},
		{header: "Token good", want: http.StatusNoContent},
	}
	for _, tc := range tests {
		req := httptest.NewRequest(http.MethodPut, "/api/comics/x/", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, tc.want, rec.Code, "header %q", tc.header)
		if tc.want == http.StatusUnauthorized {
			require.Equal(t, "Token", rec.Header().Get("WWW-Authenticate"))
		}
	}
}
