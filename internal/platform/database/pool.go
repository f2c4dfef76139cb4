package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// ErrNotConfigured is returned by Health on a pool that was never opened.
var ErrNotConfigured = errors.New("database not configured")

// Config holds PostgreSQL connection settings. An empty URL selects the
// in-memory stores.
type Config struct {
	URL             string        `env:"DATABASE_URL"`
	MaxOpenConns    int           `env:"DATABASE_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"DATABASE_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DATABASE_CONN_MAX_LIFETIME" envDefault:"5m"`
	PingTimeout     time.Duration `env:"DATABASE_PING_TIMEOUT" envDefault:"5s"`
	// ConnectAttempts covers a database container that is still starting.
	ConnectAttempts int           `env:"DATABASE_CONNECT_ATTEMPTS" envDefault:"5"`
	ConnectBackoff  time.Duration `env:"DATABASE_CONNECT_BACKOFF" envDefault:"500ms"`
}

// Pool is the census database handle, opened through the pgx stdlib driver
// so goose and the stores share one *sql.DB.
type Pool struct {
	db *sql.DB
}

// New opens the database and waits until it answers a ping. It returns nil, nil
// when no URL is set.
func New(ctx context.Context, cfg Config) (*Pool, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := waitReady(ctx, cfg, db.PingContext); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Pool{db: db}, nil
}

// waitReady pings up to cfg.ConnectAttempts times, doubling the pause between tries.
func waitReady(ctx context.Context, cfg Config, ping func(context.Context) error) error {
	attempts := max(cfg.ConnectAttempts, 1)
	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	backoff := cfg.ConnectBackoff

	var err error
	for attempt := 1; ; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		err = ping(pingCtx)
		cancel()
		if err == nil || attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("ping database: %w", ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	if err != nil {
		return fmt.Errorf("ping database after %d attempts: %w", attempts, err)
	}
	return nil
}

func (p *Pool) DB() *sql.DB {
	return p.db
}

// Health is the readiness check.
func (p *Pool) Health(ctx context.Context) error {
	if p == nil || p.db == nil {
		return ErrNotConfigured
	}
	return p.db.PingContext(ctx)
}

func (p *Pool) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}

// RegisterMetrics exports pool statistics as go_sql_* series labelled
// db_name="censusdesk".
func (p *Pool) RegisterMetrics(reg prometheus.Registerer) error {
	if p == nil || p.db == nil {
		return nil
	}
	return reg.Register(collectors.NewDBStatsCollector(p.db, "censusdesk"))
}
