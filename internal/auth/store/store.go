package store

import (
	"context"
	"errors"

	"github.com/Eatzy/auth-service/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today,
// postgres later) implement this. It exposes sub-repositories to keep
// concerns tidy and testable.
type Store interface {
	Principals() Principals
	Credentials() Credentials
	Sessions() Sessions
	Config() Config

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Principals interface {
	// GetPrincipalByID returns a principal by id.
	GetPrincipalByID(ctx context.Context, id string) (domain.Principal, error)

	// GetPrincipalByEmail resolves a principal by normalized email.
	GetPrincipalByEmail(ctx context.Context, email string) (domain.Principal, error)

	// CreatePrincipal inserts a new principal (id is provided by app via ULID).
	CreatePrincipal(ctx context.Context, p domain.Principal) error

	// UpdateEmailVerified flips email_verified and bumps updated_at.
	UpdateEmailVerified(ctx context.Context, principalID string, verified bool) error
}

type Credentials interface {
	// GetCredential fetches the unique (principal, provider) record.
	GetCredential(ctx context.Context, principalID, providerID string) (domain.Credential, error)

	// CreateCredential inserts a new credential record.
	CreateCredential(ctx context.Context, c domain.Credential) error

	// UpdatePasswordHash overwrites the stored hash and bumps updated_at.
	// Used by credential migration.
	UpdatePasswordHash(ctx context.Context, credentialID string, newHash string) error
}

type Sessions interface {
	// CreateSession stores a newly issued session.
	CreateSession(ctx context.Context, s domain.Session) error

	// GetSessionByToken resolves a session by its opaque bearer token.
	GetSessionByToken(ctx context.Context, token string) (domain.Session, error)

	// DeleteSession removes a single session (sign-out).
	DeleteSession(ctx context.Context, id string) error

	// DeleteExpiredSessions is housekeeping.
	DeleteExpiredSessions(ctx context.Context) error
}

type Config interface {
	// GetConfigEntry fetches a single entry by unique key.
	GetConfigEntry(ctx context.Context, key string) (domain.ConfigEntry, error)

	// ListConfigEntries returns every entry, ordered by key.
	ListConfigEntries(ctx context.Context) ([]domain.ConfigEntry, error)

	// ListConfigEntriesByCategory returns entries in a category, ordered by key.
	ListConfigEntriesByCategory(ctx context.Context, category string) ([]domain.ConfigEntry, error)

	// UpsertConfigEntry inserts or updates by unique key. Only this path
	// advances the persisted updated_at.
	UpsertConfigEntry(ctx context.Context, e domain.ConfigEntry) error

	// DeleteConfigEntry removes an entry by key.
	DeleteConfigEntry(ctx context.Context, key string) error
}
