package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	_ "modernc.org/sqlite"
)

type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
	LibSQL   Dialect = "libsql"
	Mongo    Dialect = "mongo"
)

// Conn owns the store connection for the lifetime of the process. Exactly
// one of SQL or Mongo is set, depending on Dialect.
type Conn struct {
	Dialect  Dialect
	SQL      *sql.DB
	Mongo    *mongo.Client
	Database string
}

// DetectDialect picks the driver a connection string is meant for.
func DetectDialect(dsn string) Dialect {
	d := strings.TrimSpace(dsn)
	switch {
	case strings.HasPrefix(d, "postgres://"), strings.HasPrefix(d, "postgresql://"):
		return Postgres
	case strings.HasPrefix(d, "mongodb://"), strings.HasPrefix(d, "mongodb+srv://"):
		return Mongo
	case strings.HasPrefix(d, "libsql://"), strings.HasPrefix(d, "wss://"):
		return LibSQL
	case strings.Contains(d, "host=") || strings.Contains(d, "dbname="):
		return Postgres
	default:
		return SQLite
	}
}

// Open connects to the store named by dsn and pings it. database is only
// used for Mongo.
func Open(ctx context.Context, dsn, database string) (*Conn, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("empty database connection string")
	}

	dialect := DetectDialect(dsn)
	if dialect == Mongo {
		return openMongo(ctx, dsn, database)
	}

	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}

	if dialect == SQLite {
		// single writer; concurrent callers queue on the pool
		db.SetMaxOpenConns(1)
	}

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}

	return &Conn{Dialect: dialect, SQL: db}, nil
}

func openMongo(ctx context.Context, dsn, database string) (*Conn, error) {
	if database == "" {
		return nil, errors.New("mongo database name is required")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(dsn))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &Conn{Dialect: Mongo, Mongo: client, Database: database}, nil
}

func (c *Conn) Close(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if c.Mongo != nil {
		return c.Mongo.Disconnect(ctx)
	}
	if c.SQL != nil {
		return c.SQL.Close()
	}
	return nil
}
