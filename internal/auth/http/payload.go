package http

import (
	"strings"
	"time"

	"github.com/Eatzy/auth-service/internal/auth/domain"
)

// userPayload is the principal projection returned by the auth endpoints.
type userPayload struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Username      string `json:"username"`
	EmailVerified bool   `json:"emailVerified"`
}

// sessionPayload includes the bearer token: this is the one response where
// the client learns it.
type sessionPayload struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type authResponse struct {
	User    userPayload    `json:"user"`
	Session sessionPayload `json:"session"`
}

func newUserPayload(p domain.Principal) userPayload {
	username := p.Email
	if at := strings.Index(p.Email, "@"); at > 0 {
		username = p.Email[:at]
	}
	return userPayload{
		ID:            p.ID,
		Email:         p.Email,
		Name:          p.DisplayName,
		Username:      username,
		EmailVerified: p.EmailVerified,
	}
}

func newSessionPayload(s domain.Session) sessionPayload {
	return sessionPayload{
		ID:        s.ID,
		UserID:    s.PrincipalID,
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
	}
}
