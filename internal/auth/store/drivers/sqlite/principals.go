package sqlite

import (
	"context"
	"time"

	"github.com/Eatzy/auth-service/internal/auth/domain"
)

type principalsRepo struct {
	db dbtx
}

const principalColumns = `id, email, display_name, email_verified, created_at, updated_at`

func scanPrincipal(row interface{ Scan(...any) error }) (domain.Principal, error) {
	var p domain.Principal
	err := row.Scan(&p.ID, &p.Email, &p.DisplayName, &p.EmailVerified, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *principalsRepo) GetPrincipalByID(ctx context.Context, id string) (domain.Principal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+principalColumns+` FROM principals WHERE id = ?`, id)
	p, err := scanPrincipal(row)
	if err != nil {
		return domain.Principal{}, mapNotFound(err)
	}
	return p, nil
}

func (r *principalsRepo) GetPrincipalByEmail(ctx context.Context, email string) (domain.Principal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+principalColumns+` FROM principals WHERE email = ?`, email)
	p, err := scanPrincipal(row)
	if err != nil {
		return domain.Principal{}, mapNotFound(err)
	}
	return p, nil
}

func (r *principalsRepo) CreatePrincipal(ctx context.Context, p domain.Principal) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO principals (id, email, display_name, email_verified, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Email, p.DisplayName, p.EmailVerified, now, now)
	return mapConstraint(err)
}

func (r *principalsRepo) UpdateEmailVerified(ctx context.Context, principalID string, verified bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE principals SET email_verified = ?, updated_at = ? WHERE id = ?`,
		verified, time.Now().UTC(), principalID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}
