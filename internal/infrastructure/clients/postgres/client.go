package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/raksetu/bloodhub/pkg/config"
	"github.com/raksetu/bloodhub/pkg/retry"
)

const dialect = "postgres"

// Client owns the connection pool and the goqu builder bound to it
type Client struct {
	db   *sql.DB
	goqu *goqu.Database
}

// NewClient opens the pool and waits for the server to answer
func NewClient(ctx context.Context, cfg *config.DatabaseConfig) (*Client, error) {
	db, err := sql.Open(dialect, cfg.DatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	retryConfig := retry.DefaultConfig()
	retryConfig.OnRetry = func(attempt int, err error, nextDelay time.Duration) {
		log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", nextDelay).Str("host", cfg.Host).Msg("postgres not ready")
	}

	err = retry.Do(ctx, "postgres", retryConfig, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return db.PingContext(pingCtx)
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect postgres %s/%s: %w", cfg.Host, cfg.Database, err)
	}

	log.Info().Str("host", cfg.Host).Str("database", cfg.Database).Int("max_open_conns", cfg.MaxOpenConns).Msg("Connected to PostgreSQL")
	return NewClientFromDB(db), nil
}

// NewClientFromDB wraps an existing pool, e.g. a sqlmock connection
func NewClientFromDB(db *sql.DB) *Client {
	return &Client{db: db, goqu: goqu.New(dialect, db)}
}

// DB returns the underlying pool
func (c *Client) DB() *sql.DB {
	return c.db
}

// Goqu returns the query builder for the postgres dialect
func (c *Client) Goqu() *goqu.Database {
	return c.goqu
}

// WithTx runs fn in a transaction. It commits when fn returns nil and rolls
// back otherwise; the error from fn is returned unchanged.
func (c *Client) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Warn().Err(rbErr).Msg("rollback failed")
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Close closes the pool
func (c *Client) Close() error {
	return c.db.Close()
}
