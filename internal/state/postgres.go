package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// pgxPool is the subset of pgxpool.Pool the store uses, narrowed so tests
// can substitute a pgxmock pool.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore keeps the notified flag in a Postgres row, one row per
// monitor name. Schema:
//
//	CREATE TABLE monitor_state (
//	    name       TEXT PRIMARY KEY,
//	    notified   BOOLEAN NOT NULL DEFAULT FALSE,
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
type PostgresStore struct {
	pool   pgxPool
	name   string
	logger *zap.Logger
}

// NewPostgresStore connects a pool and returns a store scoped to the given
// monitor name.
func NewPostgresStore(ctx context.Context, dsn, name string, logger *zap.Logger) (*PostgresStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("state.dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	return NewPostgresStoreWithPool(pool, name, logger)
}

// NewPostgresStoreWithPool constructs a store from an existing pool
// (primarily for testing).
func NewPostgresStoreWithPool(pool pgxPool, name string, logger *zap.Logger) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if name == "" {
		name = "default"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresStore{pool: pool, name: name, logger: logger}, nil
}

// Close releases the underlying pool resources.
func (s *PostgresStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// Load reads the row for this monitor. A missing row or query failure
// yields the fresh default, persisted on a best-effort basis.
func (s *PostgresStore) Load(ctx context.Context) State {
	var notified bool
	err := s.pool.QueryRow(ctx,
		`SELECT notified FROM monitor_state WHERE name = $1`, s.name,
	).Scan(&notified)
	if err == nil {
		return State{Notified: notified}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		s.logger.Info("no state row yet, creating default", zap.String("name", s.name))
	} else {
		s.logger.Warn("state row unreadable, resetting to default",
			zap.String("name", s.name), zap.Error(err))
	}

	st := State{}
	if serr := s.Save(ctx, st); serr != nil {
		s.logger.Warn("failed to persist default state", zap.Error(serr))
	}
	return st
}

// Save upserts the row for this monitor. Failures wrap ErrUnwritable.
func (s *PostgresStore) Save(ctx context.Context, st State) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO monitor_state (name, notified, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE
		SET notified = EXCLUDED.notified, updated_at = NOW()`,
		s.name, st.Notified,
	)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnwritable, err)
	}
	s.logger.Info("state saved",
		zap.String("name", s.name), zap.Bool("notified", st.Notified))
	return nil
}
