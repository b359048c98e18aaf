package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Eatzy/auth-service/internal/auth/domain"
	"github.com/Eatzy/auth-service/internal/auth/legacy"
	"github.com/Eatzy/auth-service/internal/auth/store"
	"github.com/Eatzy/auth-service/pkg/cryptox"
	"github.com/Eatzy/auth-service/pkg/idx"
	"github.com/Eatzy/auth-service/pkg/slogx"
)

var (
	ErrAlreadyExists      = errors.New("already_exists")
	ErrNotRegistered      = errors.New("not_registered")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrLegacyCreateFailed = errors.New("legacy_create_failed")

	// ErrLegacyUnavailable means the legacy store could not answer at all.
	// It is deliberately distinct from ErrNotRegistered: a legacy outage
	// during an existence check fails the request closed instead of
	// misreporting registration state.
	ErrLegacyUnavailable = errors.New("legacy_unavailable")
)

// LegacyDirectory is what the reconciliation engine needs from the legacy
// store client.
type LegacyDirectory interface {
	CheckUser(ctx context.Context, email string) (bool, *domain.LegacyUser, error)
	Authorize(ctx context.Context, username, credential string) (domain.LegacyAuthorization, error)
	CreateUser(ctx context.Context, params legacy.CreateUserParams) (*domain.LegacyUser, error)
}

// ReconcileService keeps the legacy store and the local store agreeing on
// which principals exist. It runs as the pre-step of every sign-up, sign-in
// and social callback, before any session is issued.
type ReconcileService struct {
	Store    store.Store
	Legacy   LegacyDirectory
	Migrator CredentialMigrator
}

// SignUpResult is the typed outcome of a successful sign-up, threaded
// explicitly to session issuance instead of riding on a shared context.
type SignUpResult struct {
	Principal domain.Principal
	Legacy    *domain.LegacyUser
}

// SignInResult is the typed outcome of a successful sign-in.
type SignInResult struct {
	Principal domain.Principal
	Legacy    *domain.LegacyUser

	// Migrated reports whether the stored credential hash was upgraded
	// during this sign-in.
	Migrated bool
}

// SignUp registers a new principal in both stores. The legacy store is
// written first; a legacy failure aborts without touching the local store so
// no non-reconcilable local-only account can appear.
func (s *ReconcileService) SignUp(ctx context.Context, email, rawCredential, name string) (SignUpResult, error) {
	l := slogx.FromContext(ctx)
	email = NormalizeEmail(email)

	exists, _, err := s.Legacy.CheckUser(ctx, email)
	if err != nil {
		return SignUpResult{}, fmt.Errorf("%w: existence check: %v", ErrLegacyUnavailable, err)
	}
	if exists {
		// The email goes in the message so the caller can prompt sign-in
		// instead of retrying registration.
		return SignUpResult{}, fmt.Errorf("%w: an account is already registered for %s", ErrAlreadyExists, email)
	}

	first, last := SplitName(name)
	legacyUser, err := s.Legacy.CreateUser(ctx, legacy.CreateUserParams{
		Email:     email,
		Password:  rawCredential,
		FirstName: first,
		LastName:  last,
		Username:  email,
	})
	if err != nil {
		if errors.Is(err, legacy.ErrUnavailable) {
			return SignUpResult{}, fmt.Errorf("%w: create user: %v", ErrLegacyUnavailable, err)
		}
		return SignUpResult{}, fmt.Errorf("%w: %v", ErrLegacyCreateFailed, err)
	}

	hash, err := cryptox.HashPassword(rawCredential)
	if err != nil {
		return SignUpResult{}, err
	}

	principal := domain.Principal{
		ID:          idx.New().String(),
		Email:       email,
		DisplayName: displayNameOrLocalPart(name, email),
		// Verification is inherited from the legacy store only on the
		// sign-in and social paths; fresh sign-ups start unverified.
		EmailVerified: false,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Principals().CreatePrincipal(ctx, principal); err != nil {
			return err
		}
		return tx.Credentials().CreateCredential(ctx, domain.Credential{
			ID:           idx.New().String(),
			PrincipalID:  principal.ID,
			ProviderID:   domain.ProviderPassword,
			PasswordHash: hash,
		})
	})
	if err != nil {
		return SignUpResult{}, err
	}

	l.Info("principal registered", "principal_id", principal.ID)
	return SignUpResult{Principal: principal, Legacy: legacyUser}, nil
}

// SignIn verifies a credential against the legacy store and lazily brings
// the local store up to date: the principal is created on first sign-in and
// the stored hash is upgraded when it predates the current format. Both
// steps are idempotent, which is what makes crash recovery automatic.
func (s *ReconcileService) SignIn(ctx context.Context, email, rawCredential string) (SignInResult, error) {
	l := slogx.FromContext(ctx)
	email = NormalizeEmail(email)

	exists, snapshot, err := s.Legacy.CheckUser(ctx, email)
	if err != nil {
		return SignInResult{}, fmt.Errorf("%w: existence check: %v", ErrLegacyUnavailable, err)
	}
	if !exists {
		return SignInResult{}, ErrNotRegistered
	}

	if _, err := s.Legacy.Authorize(ctx, email, rawCredential); err != nil {
		if errors.Is(err, legacy.ErrUnavailable) {
			return SignInResult{}, fmt.Errorf("%w: authorize: %v", ErrLegacyUnavailable, err)
		}
		return SignInResult{}, ErrInvalidCredentials
	}

	principal, err := s.ensureLocalPrincipal(ctx, email, snapshot, "")
	if err != nil {
		return SignInResult{}, err
	}

	migrated, err := s.ensurePasswordCredential(ctx, principal.ID, rawCredential)
	if err != nil {
		return SignInResult{}, err
	}
	if migrated {
		l.Info("credential hash migrated", "principal_id", principal.ID)
	}

	return SignInResult{Principal: principal, Legacy: snapshot, Migrated: migrated}, nil
}

// SocialCallback links a locally authenticated social sign-in to a legacy
// account when one exists for the email. Safe to run repeatedly for the same
// email: the existence checks short-circuit creation.
func (s *ReconcileService) SocialCallback(ctx context.Context, email, displayName string) (bool, error) {
	email = NormalizeEmail(email)

	exists, snapshot, err := s.Legacy.CheckUser(ctx, email)
	if err != nil {
		return false, fmt.Errorf("%w: existence check: %v", ErrLegacyUnavailable, err)
	}
	if !exists {
		// Provisioning new social users into the legacy store is the
		// caller's business decision, not ours.
		return false, nil
	}

	if _, err := s.ensureLocalPrincipal(ctx, email, snapshot, displayName); err != nil {
		return false, err
	}
	return true, nil
}

// ensureLocalPrincipal returns the local principal for email, creating one
// from the legacy snapshot when absent. Principals created here are marked
// email-verified: the legacy store already vouched for the address.
func (s *ReconcileService) ensureLocalPrincipal(
	ctx context.Context,
	email string,
	snapshot *domain.LegacyUser,
	fallbackName string,
) (domain.Principal, error) {
	principal, err := s.Store.Principals().GetPrincipalByEmail(ctx, email)
	if err == nil {
		return principal, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.Principal{}, err
	}

	principal = domain.Principal{
		ID:            idx.New().String(),
		Email:         email,
		DisplayName:   legacyDisplayName(snapshot, fallbackName, email),
		EmailVerified: true,
	}

	if err := s.Store.Principals().CreatePrincipal(ctx, principal); err != nil {
		// A concurrent request may have created it between the lookup and
		// the insert; re-read instead of failing.
		if errors.Is(err, store.ErrAlreadyExists) {
			return s.Store.Principals().GetPrincipalByEmail(ctx, email)
		}
		return domain.Principal{}, err
	}

	slogx.FromContext(ctx).Info("local principal created from legacy account",
		slog.String("principal_id", principal.ID))
	return principal, nil
}

// ensurePasswordCredential guarantees exactly one password credential exists
// for the principal and that its hash is in the current format.
func (s *ReconcileService) ensurePasswordCredential(ctx context.Context, principalID, rawCredential string) (bool, error) {
	cred, err := s.Store.Credentials().GetCredential(ctx, principalID, domain.ProviderPassword)
	if errors.Is(err, store.ErrNotFound) {
		hash, err := cryptox.HashPassword(rawCredential)
		if err != nil {
			return false, err
		}
		err = s.Store.Credentials().CreateCredential(ctx, domain.Credential{
			ID:           idx.New().String(),
			PrincipalID:  principalID,
			ProviderID:   domain.ProviderPassword,
			PasswordHash: hash,
		})
		if errors.Is(err, store.ErrAlreadyExists) {
			// Lost a race with a concurrent sign-in; the other writer's
			// hash is just as valid.
			return false, nil
		}
		return false, err
	}
	if err != nil {
		return false, err
	}

	hash, migrated, err := s.Migrator.EnsureCurrent(cred.PasswordHash, rawCredential)
	if err != nil {
		return false, err
	}
	if !migrated {
		return false, nil
	}

	if err := s.Store.Credentials().UpdatePasswordHash(ctx, cred.ID, hash); err != nil {
		return false, err
	}
	return true, nil
}

// NormalizeEmail is the comparison key shared by both stores.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SplitName derives legacy first/last name fields: the first whitespace run
// separates them, and a single bare name has an empty last name.
func SplitName(name string) (first, last string) {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}

func displayNameOrLocalPart(name, email string) string {
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		return trimmed
	}
	return emailLocalPart(email)
}

// legacyDisplayName prefers the legacy snapshot's name fields, then the
// caller-provided name, then the email local-part.
func legacyDisplayName(snapshot *domain.LegacyUser, fallbackName, email string) string {
	if snapshot != nil {
		full := strings.TrimSpace(snapshot.FirstName + " " + snapshot.LastName)
		if full != "" {
			return full
		}
	}
	return displayNameOrLocalPart(fallbackName, email)
}

func emailLocalPart(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
