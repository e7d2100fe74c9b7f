// Package store provides Postgres-backed persistence for harvested entities.
//
// All repositories hang off Queries, which is bound either to the connection
// pool or to an open transaction, so the same code path serves both
// granularities. Uniqueness is enforced at the storage layer: every entity
// table carries a unique constraint on its remote ID and upserts go through
// ON CONFLICT, so concurrent duplicate inserts resolve to the existing row.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/newsroomlab/pressharvest/internal/config"
)

// querier is the subset of pgx operations shared by pools and transactions.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB is the pool-level interface; satisfied by *pgxpool.Pool and by pgxmock
// pools in tests.
type DB interface {
	querier
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// Store owns the database handle and hands out Queries.
type Store struct {
	db DB
}

// Queries exposes the repositories over either a pool or a transaction.
type Queries struct {
	db querier
}

// New connects a Store to Postgres using the provided config.
func New(ctx context.Context, cfg config.DBConfig) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
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
	if cfg.MaxConnLifetimeMinutes > 0 {
		poolCfg.MaxConnLifetime = time.Duration(cfg.MaxConnLifetimeMinutes) * time.Minute
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

// NewWithDB constructs a Store from an existing handle (primarily for testing).
func NewWithDB(db DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("db handle is required")
	}
	return &Store{db: db}, nil
}

// Queries returns repositories bound to the pool (auto-commit semantics).
func (s *Store) Queries() Queries {
	return Queries{db: s.db}
}

// WithTx runs fn inside a single transaction, committing on success and
// rolling back on error or panic.
func (s *Store) WithTx(ctx context.Context, fn func(Queries) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(Queries{db: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.db == nil {
		return
	}
	s.db.Close()
}
