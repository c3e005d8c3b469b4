// Package postgres stores records in PostgreSQL through a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"sindbad/internal/core"
	"sindbad/internal/storage"
)

type Store struct {
	pool *pgxpool.Pool
}

var _ storage.Repository = (*Store)(nil)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type scanner interface {
	Scan(dest ...any) error
}

// NewPool opens a pool sized for a small back office.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnLifetime = time.Hour

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// Open connects to dsn, migrates the schema and returns the store.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := NewPool(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := RunMigrations(pool); err != nil {
		pool.Close()
		return nil, err
	}
	slog.InfoContext(ctx, "Postgres store ready")
	return &Store{pool: pool}, nil
}

// New wraps an already migrated pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return pgx.BeginFunc(ctx, s.pool, fn)
}

// mapError translates constraint violations into domain errors.
func mapError(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s: %w", op, core.ErrInvalidReference)
		case "23514": // check_violation
			return &core.ValidationError{Field: pgErr.ConstraintName, Err: fmt.Errorf("%s: %s", op, pgErr.Message)}
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func notFound(err error, entity, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return core.NotFound(entity, id)
	}
	return fmt.Errorf("get %s: %w", entity, err)
}

func requireCustomer(ctx context.Context, q querier, owner, id string) error {
	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM customers WHERE id = $1 AND owner_id = $2)`, id, owner).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check customer: %w", err)
	}
	if !exists {
		return storage.UnknownCustomer(id)
	}
	return nil
}

func affected(tag pgconn.CommandTag, entity, id string) error {
	if tag.RowsAffected() == 0 {
		return core.NotFound(entity, id)
	}
	return nil
}

func toDate(d core.Date) pgtype.Date {
	if d.IsEmpty() {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: d.Time, Valid: true}
}

func fromDate(d pgtype.Date) core.Date {
	if !d.Valid {
		return core.Date{}
	}
	return core.DateOf(d.Time, time.UTC)
}

func utc(r *core.Record) {
	r.CreatedAt = r.CreatedAt.UTC()
	r.UpdatedAt = r.UpdatedAt.UTC()
}
