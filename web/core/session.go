package core

import "time"

type Session struct {
	User      string
	ExpiresAt time.Time
}

// RequireSession is the explicit replacement for an ambient auth lookup.
func RequireSession(s *Session) (*Session, error) {
	if s == nil {
		return nil, ErrMissingContext
	}
	return s, nil
}
