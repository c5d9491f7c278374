package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const (
	DefaultRetryInterval   = 5 * time.Second
	DefaultAcquireTimeout  = 5 * time.Second
	DefaultMaxOpenConns    = 10
	DefaultMaxIdleConns    = 5
	DefaultConnMaxLifetime = 30 * time.Minute
)

// SQLConfig holds everything the relational engine needs to build its pool.
// Zero values fall back to the Default* constants.
type SQLConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// RetryInterval is the pause between failed pool construction attempts.
	RetryInterval time.Duration
	// AcquireTimeout bounds how long a request waits for a free connection.
	AcquireTimeout time.Duration
}

func (c SQLConfig) withDefaults() SQLConfig {
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = DefaultMaxOpenConns
	}
	d, err := DialectFor(c.Driver)
	capped := err == nil && d.maxOpenConns > 0
	if capped && c.MaxOpenConns > d.maxOpenConns {
		c.MaxOpenConns = d.maxOpenConns
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = DefaultMaxIdleConns
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		c.MaxIdleConns = c.MaxOpenConns
	}
	if c.ConnMaxLifetime <= 0 {
		c.ConnMaxLifetime = DefaultConnMaxLifetime
	}
	// Setup pragmas are per connection; keep the capped pool's connections.
	if capped {
		c.ConnMaxLifetime = 0
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = DefaultRetryInterval
	}
	if c.AcquireTimeout <= 0 {
		c.AcquireTimeout = DefaultAcquireTimeout
	}
	return c
}

var openPoolFunc = openPool // mockable

// openPool makes a single attempt at building a bounded pool and proves it
// usable with a ping.
func openPool(ctx context.Context, cfg SQLConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.AcquireTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "pinging database")
	}
	if d, err := DialectFor(cfg.Driver); err == nil {
		for _, stmt := range d.setup {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				_ = db.Close()
				return nil, errors.Wrapf(err, "running %q", stmt)
			}
		}
	}
	return db, nil
}

// Connect builds the connection pool, waiting for the database to come up.
// A failed attempt is logged and retried after cfg.RetryInterval, forever:
// the only way out without a pool is cancelling ctx.  This is the one
// unbounded retry in the service; request paths never retry.
func Connect(ctx context.Context, cfg SQLConfig, logger *slog.Logger) (*sqlx.DB, error) {
	cfg = cfg.withDefaults()
	for attempt := 1; ; attempt++ {
		db, err := openPoolFunc(ctx, cfg)
		if err == nil {
			logger.Info("database pool ready",
				"driver", cfg.Driver, "attempt", attempt, "max_open_conns", cfg.MaxOpenConns)
			return db, nil
		}
		logger.Warn("database unavailable, retrying",
			"driver", cfg.Driver, "attempt", attempt, "retry_in", cfg.RetryInterval, "error", err)

		timer := time.NewTimer(cfg.RetryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, errors.Wrap(ctx.Err(), "waiting for database")
		case <-timer.C:
		}
	}
}
