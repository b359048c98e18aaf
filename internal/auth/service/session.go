package service

import (
	"context"
	"time"

	"github.com/Eatzy/auth-service/internal/auth/domain"
	"github.com/Eatzy/auth-service/internal/auth/store"
	"github.com/Eatzy/auth-service/pkg/cryptox"
	"github.com/Eatzy/auth-service/pkg/idx"
)

const (
	// DefaultSessionTTL is used when no TTL is configured.
	DefaultSessionTTL = 7 * 24 * time.Hour

	// MinSessionTTL is the floor on session lifetime; expiry is never set
	// earlier than issuance plus this.
	MinSessionTTL = time.Minute
)

// SessionService issues opaque bearer sessions after reconciliation
// succeeds. Verification resolves them back through the Sessions repo.
type SessionService struct {
	Store store.Store
	TTL   time.Duration
}

// Issue creates and persists a new session for the principal. The returned
// session carries the opaque token handed to the client.
func (s *SessionService) Issue(ctx context.Context, principalID string) (domain.Session, error) {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if ttl < MinSessionTTL {
		ttl = MinSessionTTL
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return domain.Session{}, err
	}

	now := time.Now().UTC()
	session := domain.Session{
		ID:          idx.New().String(),
		PrincipalID: principalID,
		Token:       token,
		IssuedAt:    now,
		ExpiresAt:   now.Add(ttl),
	}

	if err := s.Store.Sessions().CreateSession(ctx, session); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

// Revoke removes a single session (sign-out).
func (s *SessionService) Revoke(ctx context.Context, sessionID string) error {
	return s.Store.Sessions().DeleteSession(ctx, sessionID)
}
