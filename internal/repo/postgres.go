package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"linkstate/linkstate/internal/model"
)

const PgUniqueViolation pq.ErrorCode = "23505"

const pgSchema = `
	CREATE TABLE IF NOT EXISTS links (
		id UUID PRIMARY KEY,
		token TEXT NOT NULL UNIQUE,
		original_url TEXT NOT NULL,
		click_count BIGINT NOT NULL DEFAULT 0 CHECK (click_count >= 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		user_id TEXT NOT NULL DEFAULT ''
	)`

type PostgresRepo struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *PostgresRepo { return &PostgresRepo{db} }

func (r *PostgresRepo) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, pgSchema); err != nil {
		return fmt.Errorf("migrate links: %w", err)
	}
	return nil
}

func (r *PostgresRepo) Insert(ctx context.Context, link model.Link) (model.Link, error) {
	const q = `
		INSERT INTO links (id, token, original_url, click_count, created_at, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, token, original_url, click_count, created_at, user_id`

	rec, err := scanLink(r.db.QueryRowContext(ctx, q,
		link.ID, link.Token, link.OriginalURL, link.ClickCount, link.CreatedAt, link.OwnerTag))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == PgUniqueViolation {
			return model.Link{}, fmt.Errorf("%w: %s", ErrDuplicateKey, pqErr.Detail)
		}
		return model.Link{}, fmt.Errorf("insert link: %w", err)
	}

	return rec, nil
}

func (r *PostgresRepo) GetByToken(ctx context.Context, token string) (model.Link, error) {
	const q = `SELECT id, token, original_url, click_count, created_at, user_id FROM links WHERE token=$1`

	return notFound(scanLink(r.db.QueryRowContext(ctx, q, token)))
}

func (r *PostgresRepo) UpdateOriginalURL(ctx context.Context, token, originalURL string) error {
	const q = `UPDATE links SET original_url=$2 WHERE token=$1`

	res, err := r.db.ExecContext(ctx, q, token, originalURL)
	return affectedOne(res, err)
}

func (r *PostgresRepo) IncrementClickCount(ctx context.Context, token string) (model.Link, error) {
	const q = `
		UPDATE links SET click_count = click_count + 1
		WHERE token=$1
		RETURNING id, token, original_url, click_count, created_at, user_id`

	return notFound(scanLink(r.db.QueryRowContext(ctx, q, token)))
}

func (r *PostgresRepo) DeleteByToken(ctx context.Context, token string) error {
	const q = `DELETE FROM links WHERE token=$1`

	res, err := r.db.ExecContext(ctx, q, token)
	return affectedOne(res, err)
}

func scanLink(row *sql.Row) (model.Link, error) {
	var rec model.Link
	err := row.Scan(&rec.ID, &rec.Token, &rec.OriginalURL, &rec.ClickCount, timestamp{&rec.CreatedAt}, &rec.OwnerTag)
	return rec, err
}

func notFound(rec model.Link, err error) (model.Link, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return model.Link{}, ErrNotFound
	}
	if err != nil {
		return model.Link{}, fmt.Errorf("query link: %w", err)
	}
	return rec, nil
}

func affectedOne(res sql.Result, err error) error {
	if err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
