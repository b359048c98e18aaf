package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/Eatzy/auth-service/internal/auth/store"
)

// VerifiedPrincipal is the minimal principal projection returned to
// downstream services. Username falls back to the email local-part when no
// explicit username exists.
type VerifiedPrincipal struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Username      string `json:"username"`
	EmailVerified bool   `json:"emailVerified"`
}

// VerifiedSession is the minimal session projection.
type VerifiedSession struct {
	ID          string    `json:"id"`
	PrincipalID string    `json:"userId"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// VerifyResult is the outcome of a token verification. An unknown or
// expired token yields Valid=false with a nil error; absence is a normal
// outcome, not a failure.
type VerifyResult struct {
	Valid     bool
	Principal VerifiedPrincipal
	Session   VerifiedSession
}

// VerifyService resolves opaque bearer tokens against the local store. It
// is called synchronously by every downstream request, so the common case
// (already-decoded token, session present) performs exactly one session
// lookup.
type VerifyService struct {
	Store store.Store
}

// Verify resolves a bearer token to a principal and session.
//
// Some callers send percent-encoded tokens and others send raw ones, so a
// token that actually decodes differently gets one fallback lookup under its
// original form. The fallback never loops: at most two lookups happen.
func (s *VerifyService) Verify(ctx context.Context, token string) (VerifyResult, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return VerifyResult{}, nil
	}

	// Decode only when percent-encoding is actually present; the common
	// path skips the decode cost entirely.
	lookup := token
	if strings.Contains(token, "%") {
		if decoded, err := url.PathUnescape(token); err == nil {
			lookup = decoded
		}
	}

	session, err := s.Store.Sessions().GetSessionByToken(ctx, lookup)
	if errors.Is(err, store.ErrNotFound) && lookup != token {
		// Single bounded retry with the undecoded form.
		session, err = s.Store.Sessions().GetSessionByToken(ctx, token)
	}
	if errors.Is(err, store.ErrNotFound) {
		return VerifyResult{}, nil
	}
	if err != nil {
		return VerifyResult{}, err
	}

	if session.Expired(time.Now().UTC()) {
		return VerifyResult{}, nil
	}

	principal, err := s.Store.Principals().GetPrincipalByID(ctx, session.PrincipalID)
	if errors.Is(err, store.ErrNotFound) {
		return VerifyResult{}, nil
	}
	if err != nil {
		return VerifyResult{}, err
	}

	return VerifyResult{
		Valid: true,
		Principal: VerifiedPrincipal{
			ID:            principal.ID,
			Email:         principal.Email,
			Name:          principal.DisplayName,
			Username:      emailLocalPart(principal.Email),
			EmailVerified: principal.EmailVerified,
		},
		Session: VerifiedSession{
			ID:          session.ID,
			PrincipalID: session.PrincipalID,
			ExpiresAt:   session.ExpiresAt,
		},
	}, nil
}
