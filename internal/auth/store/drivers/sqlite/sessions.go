package sqlite

import (
	"context"
	"time"

	"github.com/Eatzy/auth-service/internal/auth/domain"
)

type sessionsRepo struct {
	db dbtx
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, principal_id, token, issued_at, expires_at)
		 VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.PrincipalID, s.Token, s.IssuedAt, s.ExpiresAt)
	return mapConstraint(err)
}

func (r *sessionsRepo) GetSessionByToken(ctx context.Context, token string) (domain.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, principal_id, token, issued_at, expires_at
		 FROM sessions WHERE token = ?`, token)

	var s domain.Session
	err := row.Scan(&s.ID, &s.PrincipalID, &s.Token, &s.IssuedAt, &s.ExpiresAt)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	return s, nil
}

func (r *sessionsRepo) DeleteSession(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}

func (r *sessionsRepo) DeleteExpiredSessions(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= ?`, time.Now().UTC())
	return err
}
