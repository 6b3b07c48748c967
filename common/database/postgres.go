package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/andalize/proptic/common/config"

	_ "github.com/lib/pq"
)

const defaultConnectTimeout = 5 * time.Second

// NewPostgresDB opens a pooled PostgreSQL handle and pings it within
// cfg.ConnectTimeout.
func NewPostgresDB(ctx context.Context, cfg *config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := setup(ctx, db, cfg); err != nil {
		return nil, err
	}
	return db, nil
}

// setup applies pool limits and checks the connection. db is closed on failure.
func setup(ctx context.Context, db *sql.DB, cfg *config.DatabaseConfig) error {
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}
	if cfg.MaxIdle > 0 {
		db.SetMaxIdleConns(cfg.MaxIdle)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// Close closes db if it is non-nil.
func Close(db *sql.DB) error {
	if db != nil {
		return db.Close()
	}
	return nil
}
