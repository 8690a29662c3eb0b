package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/statuswatch/status-plane/internal/config"
	"github.com/statuswatch/status-plane/internal/health"
)

const IndicatorName = "database"

var _ health.Indicator = (*Database)(nil)

// Database wraps the postgres connection pool and exposes a ping-based
// health indicator for it.
type Database struct {
	pool        *pgxpool.Pool
	cfg         config.Database
	pingTimeout time.Duration
}

// Connect builds the connection pool. The pool connects lazily: an
// unreachable database at startup is reported by the indicator, not
// treated as a boot failure.
func Connect(ctx context.Context, cfg config.Database) (*Database, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	return &Database{
		pool:        pool,
		cfg:         cfg,
		pingTimeout: time.Duration(cfg.PingTimeoutSeconds) * time.Second,
	}, nil
}

func (d *Database) Close() {
	d.pool.Close()
}

func (d *Database) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, d.pingTimeout)
	defer cancel()
	return d.pool.Ping(ctx)
}

func (d *Database) Name() string {
	return IndicatorName
}

// Check performs a bounded round-trip against the database. Connection
// errors and timeouts become Down results, never faults.
func (d *Database) Check(ctx context.Context) health.Result {
	if err := d.Ping(ctx); err != nil {
		return health.Down(IndicatorName, err.Error()).WithDetails(map[string]any{
			"host":     d.cfg.Host,
			"database": d.cfg.Database,
		})
	}
	return health.Up(IndicatorName).WithDetails(map[string]any{
		"host":     d.cfg.Host,
		"database": d.cfg.Database,
	})
}
