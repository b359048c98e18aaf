package domain

import "time"

// Session is an issued bearer session. Token is the opaque credential handed
// to the client; verification resolves it by store lookup.
type Session struct {
	ID          string
	PrincipalID string
	Token       string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// Expired reports whether the session has passed its expiry at the given time.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
