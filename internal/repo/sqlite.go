package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"linkstate/linkstate/internal/model"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS links (
		id TEXT PRIMARY KEY,
		token TEXT NOT NULL UNIQUE,
		original_url TEXT NOT NULL,
		click_count INTEGER NOT NULL DEFAULT 0 CHECK (click_count >= 0),
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		user_id TEXT NOT NULL DEFAULT ''
	);`

// sqliteTimeLayout is the text form both modernc and libsql read back as DATETIME.
const sqliteTimeLayout = "2006-01-02 15:04:05.999999999-07:00"

// SQLiteRepo serves both local SQLite (modernc) and remote libsql databases.
type SQLiteRepo struct{ db *sql.DB }

func NewSQLite(db *sql.DB) *SQLiteRepo { return &SQLiteRepo{db} }

func (r *SQLiteRepo) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("migrate links: %w", err)
	}
	return nil
}

func (r *SQLiteRepo) Insert(ctx context.Context, link model.Link) (model.Link, error) {
	const q = `
		INSERT INTO links (id, token, original_url, click_count, created_at, user_id)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		link.ID, link.Token, link.OriginalURL, link.ClickCount, link.CreatedAt.UTC().Format(sqliteTimeLayout), link.OwnerTag)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Link{}, fmt.Errorf("%w: %v", ErrDuplicateKey, err)
		}
		return model.Link{}, fmt.Errorf("insert link: %w", err)
	}

	return r.GetByToken(ctx, link.Token)
}

func (r *SQLiteRepo) GetByToken(ctx context.Context, token string) (model.Link, error) {
	const q = `SELECT id, token, original_url, click_count, created_at, user_id FROM links WHERE token = ?`

	return notFound(scanLink(r.db.QueryRowContext(ctx, q, token)))
}

func (r *SQLiteRepo) UpdateOriginalURL(ctx context.Context, token, originalURL string) error {
	const q = `UPDATE links SET original_url = ? WHERE token = ?`

	res, err := r.db.ExecContext(ctx, q, originalURL, token)
	return affectedOne(res, err)
}

func (r *SQLiteRepo) IncrementClickCount(ctx context.Context, token string) (model.Link, error) {
	const q = `UPDATE links SET click_count = click_count + 1 WHERE token = ?`

	// The increment is a single statement; the read that follows only
	// reports the record and may already include later clicks.
	res, err := r.db.ExecContext(ctx, q, token)
	if err := affectedOne(res, err); err != nil {
		return model.Link{}, err
	}

	return r.GetByToken(ctx, token)
}

func (r *SQLiteRepo) DeleteByToken(ctx context.Context, token string) error {
	const q = `DELETE FROM links WHERE token = ?`

	res, err := r.db.ExecContext(ctx, q, token)
	return affectedOne(res, err)
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	// libsql reports constraint failures as plain text
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// timestamp scans a time column that drivers may hand back as time.Time or
// as text. The libsql websocket driver reports every TEXT value as a string.
type timestamp struct{ t *time.Time }

var timestampLayouts = []string{
	sqliteTimeLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

func (ts timestamp) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*ts.t = v.UTC()
		return nil
	case string:
		return ts.parse(v)
	case []byte:
		return ts.parse(string(v))
	default:
		return fmt.Errorf("unsupported timestamp type %T", src)
	}
}

func (ts timestamp) parse(s string) error {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			*ts.t = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("unparseable timestamp %q", s)
}
