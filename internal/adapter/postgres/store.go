package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store implements the database read ports using PostgreSQL. Every method
// is a single independent read; the gateway holds no transactions.
type Store struct {
	pool         *pgxpool.Pool
	queryTimeout time.Duration
}

// NewStore creates a new Store backed by the given connection pool.
// queryTimeout bounds each read; zero leaves only the caller's deadline.
func NewStore(pool *pgxpool.Pool, queryTimeout time.Duration) *Store {
	return &Store{pool: pool, queryTimeout: queryTimeout}
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.pool.Ping(ctx)
}
