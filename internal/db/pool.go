package db

import (
	"context"
	"fmt"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PoolParams struct {
	Host           string
	Port           string
	Name           string
	TracingEnabled bool
}

// NewPool connects to postgres and returns the shared connection pool.
// Query tracing is attached per connection when enabled, so spans cover
// every statement the repos run.
func NewPool(ctx context.Context, params PoolParams) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(fmt.Sprintf(
		"postgres://postgres@%s:%s/%s",
		params.Host, params.Port, params.Name,
	))
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	if params.TracingEnabled {
		poolConfig.ConnConfig.Tracer = otelpgx.NewTracer()
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	return pool, nil
}
