package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the subset of pgx used by repositories. Every call is a single statement and
// therefore atomic on its own.
type DB interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// HealthChecker reports whether the product store answers queries.
type HealthChecker interface {
	IsHealthy(ctx context.Context) (bool, error)
}

const healthCheckTimeout = 2 * time.Second

var (
	_ DB            = (*Client)(nil)
	_ HealthChecker = (*Client)(nil)
)

type Client struct {
	*pgxpool.Pool
}

// NewClient wraps pool for the product repository and the health endpoint.
func NewClient(pool *pgxpool.Pool) *Client {
	return &Client{Pool: pool}
}

// IsHealthy runs a round trip against the products table within a short deadline.
func (c *Client) IsHealthy(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	var one int
	if err := c.QueryRow(ctx, `SELECT 1 FROM products LIMIT 1`).Scan(&one); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("query products table: %w", err)
	}
	return true, nil
}
