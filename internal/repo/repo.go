package repo

import (
	"context"
	"errors"
	"fmt"

	"linkstate/linkstate/internal/db"
	"linkstate/linkstate/internal/model"
)

var (
	ErrNotFound     = errors.New("URL not found")
	ErrDuplicateKey = errors.New("duplicate token")
)

type LinkRepo interface {
	Insert(ctx context.Context, link model.Link) (model.Link, error)
	GetByToken(ctx context.Context, token string) (model.Link, error)
	UpdateOriginalURL(ctx context.Context, token, originalURL string) error
	// IncrementClickCount atomically adds one click and returns the updated record.
	IncrementClickCount(ctx context.Context, token string) (model.Link, error)
	DeleteByToken(ctx context.Context, token string) error
	Migrate(ctx context.Context) error
}

// New returns the repository for the connection's dialect.
func New(conn *db.Conn) (LinkRepo, error) {
	switch conn.Dialect {
	case db.Postgres:
		return NewPostgres(conn.SQL), nil
	case db.SQLite, db.LibSQL:
		return NewSQLite(conn.SQL), nil
	case db.Mongo:
		return NewMongo(conn.Mongo.Database(conn.Database)), nil
	default:
		return nil, fmt.Errorf("unsupported dialect %q", conn.Dialect)
	}
}
