// Package postgres provides Postgres-backed persistence for the SEO
// metadata entities.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hoxtonmix/seo-api/internal/seo"
)

// DB is the subset of pgxpool.Pool the store uses. pgxmock satisfies it,
// which keeps the store testable without a live database.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Config controls the Postgres connection pool.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// Store exposes CRUD and append-only operations over the five entity tables.
type Store struct {
	db DB
}

// New connects a pool and wraps it in a Store.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{db: pool}, nil
}

// NewWithDB constructs a store from an existing pool (primarily for testing).
func NewWithDB(db DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &Store{db: db}, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.db == nil {
		return
	}
	s.db.Close()
}

// pgErrorKinds maps Postgres constraint-violation codes to a domain error
// constructor. Anything absent falls through to a DatabaseError.
var pgErrorKinds = map[string]func(*pgconn.PgError, string) *seo.Error{
	"23505": func(e *pgconn.PgError, resource string) *seo.Error {
		return seo.NewDuplicate(resource+" already exists", e.ConstraintName)
	},
	"23503": func(e *pgconn.PgError, _ string) *seo.Error {
		return seo.NewValidation("invalid reference: %s", e.ConstraintName)
	},
	"23502": func(e *pgconn.PgError, _ string) *seo.Error {
		return seo.NewValidation("missing required value for column %q", e.ColumnName)
	},
}

// translateError converts a store failure into the domain taxonomy. Pure
// with respect to the incoming error; safe to test without a database.
func translateError(err error, resource string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return seo.NewNotFound(resource)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if build, ok := pgErrorKinds[pgErr.Code]; ok {
			return build(pgErr, resource)
		}
	}
	return seo.NewDatabase(err)
}
