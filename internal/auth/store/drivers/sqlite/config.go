package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/Eatzy/auth-service/internal/auth/domain"
)

type configRepo struct {
	db dbtx
}

const configColumns = `id, key, value, description, category, is_secret, created_at, updated_at`

func scanConfigEntry(row interface{ Scan(...any) error }) (domain.ConfigEntry, error) {
	var e domain.ConfigEntry
	err := row.Scan(&e.ID, &e.Key, &e.Value, &e.Description, &e.Category,
		&e.IsSecret, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func (r *configRepo) GetConfigEntry(ctx context.Context, key string) (domain.ConfigEntry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+configColumns+` FROM config WHERE key = ?`, key)
	e, err := scanConfigEntry(row)
	if err != nil {
		return domain.ConfigEntry{}, mapNotFound(err)
	}
	return e, nil
}

func (r *configRepo) ListConfigEntries(ctx context.Context) ([]domain.ConfigEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+configColumns+` FROM config ORDER BY key`)
	if err != nil {
		return nil, err
	}
	return collectConfigEntries(rows)
}

func (r *configRepo) ListConfigEntriesByCategory(ctx context.Context, category string) ([]domain.ConfigEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+configColumns+` FROM config WHERE category = ? ORDER BY key`, category)
	if err != nil {
		return nil, err
	}
	return collectConfigEntries(rows)
}

func collectConfigEntries(rows *sql.Rows) ([]domain.ConfigEntry, error) {
	defer rows.Close()

	var out []domain.ConfigEntry
	for rows.Next() {
		e, err := scanConfigEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *configRepo) UpsertConfigEntry(ctx context.Context, e domain.ConfigEntry) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO config (id, key, value, description, category, is_secret, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (key) DO UPDATE SET
		   value = excluded.value,
		   description = excluded.description,
		   category = excluded.category,
		   is_secret = excluded.is_secret,
		   updated_at = excluded.updated_at`,
		e.ID, e.Key, e.Value, e.Description, e.Category, e.IsSecret, now, now)
	return err
}

func (r *configRepo) DeleteConfigEntry(ctx context.Context, key string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM config WHERE key = ?`, key)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}
