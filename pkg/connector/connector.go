// pkg/connector/connector.go
package connector

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DatabaseConnector is an open connection backing a SQL record store
type DatabaseConnector interface {
	// DB returns the underlying database connection
	DB() *sql.DB

	// DriverName returns the database/sql driver the connection was opened
	// with. sqlstore uses it to pick the placeholder style.
	DriverName() string

	// Validate checks that migrations can run against the connection
	Validate(ctx context.Context) error

	// Close closes the connection and releases resources
	Close() error
}

const defaultPingTimeout = 5 * time.Second

// PoolSettings sizes a database/sql pool. Zero values keep the driver defaults.
type PoolSettings struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
	MaxIdleTime time.Duration
}

func (p PoolSettings) apply(db *sql.DB) {
	if p.MaxOpen > 0 {
		db.SetMaxOpenConns(p.MaxOpen)
	}
	if p.MaxIdle > 0 {
		db.SetMaxIdleConns(p.MaxIdle)
	}
	if p.MaxLifetime > 0 {
		db.SetConnMaxLifetime(p.MaxLifetime)
	}
	if p.MaxIdleTime > 0 {
		db.SetConnMaxIdleTime(p.MaxIdleTime)
	}
}

// openPool opens and sizes a pool, then pings it within defaultPingTimeout.
// The pool is closed again if the ping fails.
func openPool(ctx context.Context, driver, dsn string, pool PoolSettings) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s connection: %w", driver, err)
	}
	pool.apply(db)

	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging %s database: %w", driver, err)
	}
	return db, nil
}

// poolFields renders the pool statistics as log fields
func poolFields(db *sql.DB) []zap.Field {
	stats := db.Stats()
	return []zap.Field{
		zap.Int("open_connections", stats.OpenConnections),
		zap.Int("in_use", stats.InUse),
		zap.Int("idle", stats.Idle),
		zap.Int("max_open", stats.MaxOpenConnections),
		zap.Int64("wait_count", stats.WaitCount),
		zap.Duration("wait_duration", stats.WaitDuration),
	}
}
