package service

import (
	"github.com/Eatzy/auth-service/pkg/cryptox"
)

// CredentialMigrator upgrades stored password hashes to the current format.
// Hashes written before the format migration are bare digests without the
// PHC prefix; once a sign-in proves the raw credential, the stored hash is
// replaced with a current-format one.
type CredentialMigrator struct{}

// EnsureCurrent returns the hash that should be stored for the credential.
// When the stored hash is already current it is returned unchanged and
// migrated is false, which makes repeated sign-ins idempotent: a migrated
// hash is never re-migrated.
func (CredentialMigrator) EnsureCurrent(storedHash, rawCredential string) (hash string, migrated bool, err error) {
	if cryptox.IsCurrentFormat(storedHash) {
		return storedHash, false, nil
	}

	newHash, err := cryptox.HashPassword(rawCredential)
	if err != nil {
		return "", false, err
	}
	return newHash, true, nil
}
