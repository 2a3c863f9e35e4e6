// Package status persists off-chain operational state that must survive a
// restart: the forwarder's per-loop watermark (the last finalized block
// number recorded for the loop) and the submitter's structured per-tx status reports
// exposed on request (spec §7 "off-chain processes expose a structured
// status report").
package status

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
)

// Client wraps a connection-pooled *sql.DB.
type Client struct {
	db     *sql.DB
	logger *log.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets a custom logger.
func WithLogger(logger *log.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// Config bounds the connection pool.
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

// NewClient opens dsn and verifies connectivity.
func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("status: DSN cannot be empty")
	}

	c := &Client{logger: log.New(log.Writer(), "[status] ", log.LstdFlags)}
	for _, opt := range opts {
		opt(c)
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("status: open database: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("status: ping database: %w", err)
	}

	c.db = db
	return c, nil
}

// Close closes the underlying connection pool.
func (c *Client) Close() error {
	return c.db.Close()
}

// EnsureSchema creates the watermark and status-report tables if absent.
func (c *Client) EnsureSchema(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS forwarder_watermarks (
	loop_name    TEXT PRIMARY KEY,
	block_number BIGINT NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS tx_status_reports (
	tx_id              TEXT PRIMARY KEY,
	validated          BOOLEAN NOT NULL,
	broadcasted_peers  INTEGER NOT NULL,
	in_best_block      TEXT,
	finalized_in_block TEXT,
	dropped_message    TEXT,
	invalid_message    TEXT,
	error_message      TEXT,
	updated_at         TIMESTAMPTZ NOT NULL
);`)
	if err != nil {
		return fmt.Errorf("status: ensure schema: %w", err)
	}
	return nil
}
