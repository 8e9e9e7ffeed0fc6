package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	issuer = "comic-catalog"

	// MinSecretLen is the shortest HS256 signing secret accepted.
	MinSecretLen = 32
)

// Service issues and checks the admin tokens guarding catalog writes.
type Service struct {
	secret  []byte
	ttl     time.Duration
	subject string
}

func New(secret string, ttl time.Duration, subject string) (*Service, error) {
	if subject == "" {
		return nil, errors.New("empty token subject")
	}
	if len(secret) < MinSecretLen {
		return nil, fmt.Errorf("token secret must be at least %d bytes", MinSecretLen)
	}
	return &Service{
		secret:  []byte(secret),
		ttl:     ttl,
		subject: subject,
	}, nil
}

func (s *Service) IssueToken() (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   s.subject,
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

func (s *Service) ParseToken(tok string) error {
	parsed, err := jwt.ParseWithClaims(tok, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithSubject(s.subject))
	if err != nil {
		return err
	}
	if !parsed.Valid {
		return errors.New("invalid token")
	}
	return nil
}
