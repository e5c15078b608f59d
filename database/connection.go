package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultLockTimeout bounds how long a settlement waits on a row lock
const DefaultLockTimeout = 5 * time.Second

// DB represents a database connection pool
type DB struct {
	*pgxpool.Pool

	// LockTimeout is applied with SET LOCAL to every transaction begun through
	// BeginTx; zero disables it
	LockTimeout time.Duration
}

// NewConnection creates a new database connection pool
func NewConnection(ctx context.Context, databaseURL string) (*DB, error) {
	// Parse config to set timezone
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Set timezone to UTC for all connections
	config.ConnConfig.RuntimeParams["timezone"] = "UTC"

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool, LockTimeout: DefaultLockTimeout}, nil
}

// Close closes the database connection pool
func (db *DB) Close() {
	db.Pool.Close()
}
