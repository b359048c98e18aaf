package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/Eatzy/auth-service/internal/auth/domain"
	"github.com/Eatzy/auth-service/internal/auth/store"
)

type credentialsRepo struct {
	db dbtx
}

func (r *credentialsRepo) GetCredential(ctx context.Context, principalID, providerID string) (domain.Credential, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, principal_id, provider_id, password_hash, created_at, updated_at
		 FROM credentials WHERE principal_id = ? AND provider_id = ?`,
		principalID, providerID)

	var c domain.Credential
	err := row.Scan(&c.ID, &c.PrincipalID, &c.ProviderID, &c.PasswordHash, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return domain.Credential{}, mapNotFound(err)
	}
	return c, nil
}

func (r *credentialsRepo) CreateCredential(ctx context.Context, c domain.Credential) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO credentials (id, principal_id, provider_id, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.PrincipalID, c.ProviderID, c.PasswordHash, now, now)
	return mapConstraint(err)
}

func (r *credentialsRepo) UpdatePasswordHash(ctx context.Context, credentialID string, newHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE credentials SET password_hash = ?, updated_at = ? WHERE id = ?`,
		newHash, time.Now().UTC(), credentialID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

// requireRowAffected maps "no rows touched" updates to ErrNotFound so
// callers can tell a missing record apart from a silent no-op.
func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
