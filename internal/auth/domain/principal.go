package domain

import "time"

// ProviderPassword is the provider id for password credentials. Social
// providers use their own ids but never carry a password hash.
const ProviderPassword = "password"

// Principal is a user identity owned by the local store. The legacy store
// remains authoritative for whether the email was registered before this
// service existed; the local store is authoritative for the id.
type Principal struct {
	ID            string
	Email         string // stored normalized, compared case-insensitively
	DisplayName   string
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Credential is a (principal, provider) pair. PasswordHash is only set for
// the password provider and holds either a current PHC Argon2id hash or a
// pre-migration legacy digest.
type Credential struct {
	ID           string
	PrincipalID  string
	ProviderID   string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
