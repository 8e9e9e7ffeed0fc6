package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/SamuelNgundi/fullstack-comic-app/web/core"
)

const (
	CookieName  = "session"
	tokenPrefix = "Token "
	issuer      = "comic-web"

	// MinSecretLen is the shortest HS256 signing secret accepted.
	MinSecretLen = 32
)

type Service struct {
	secret []byte
	ttl    time.Duration
}

// New signs sessions with secret, so tokens stay valid across restarts
// sharing the same configuration.
func New(secret string, ttl time.Duration) (*Service, error) {
	if len(secret) < MinSecretLen {
		return nil, fmt.Errorf("token secret shorter than %d bytes: %w", MinSecretLen, core.ErrBadArguments)
	}
	return &Service{secret: []byte(secret), ttl: ttl}, nil
}

func (s *Service) TTL() time.Duration { return s.ttl }

func (s *Service) IssueToken(user string) (string, error) {
	if user == "" {
		return "", core.ErrBadArguments
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   user,
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

func (s *Service) ParseToken(tok string) (*core.Session, error) {
	parsed, err := jwt.ParseWithClaims(tok, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	session := &core.Session{User: claims.Subject}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}

// SessionFromRequest reads the session cookie, falling back to an
// "Authorization: Token <jwt>" header. No token at all is ErrMissingContext.
func (s *Service) SessionFromRequest(r *http.Request) (*core.Session, error) {
	var tok string
	if c, err := r.Cookie(CookieName); err == nil {
		tok = c.Value
	} else if h := r.Header.Get("Authorization"); strings.HasPrefix(h, tokenPrefix) {
		tok = strings.TrimSpace(h[len(tokenPrefix):])
	}
	if tok == "" {
		return nil, core.ErrMissingContext
	}
	return s.ParseToken(tok)
}
