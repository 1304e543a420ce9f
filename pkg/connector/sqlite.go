package connector

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/David-Botos/content-migrate/pkg/config"
)

// DriverSQLite is the name modernc.org/sqlite registers with database/sql
const DriverSQLite = "sqlite"

// SQLiteConnector implements the DatabaseConnector interface for a local
// SQLite file
type SQLiteConnector struct {
	db     *sql.DB
	logger *zap.Logger
	cfg    *config.SQLiteConfig
}

// NewSQLiteConnector opens the database file, creating it when missing
func NewSQLiteConnector(ctx context.Context, cfg *config.SQLiteConfig, logger *zap.Logger) (*SQLiteConnector, error) {
	if cfg == nil {
		return nil, errors.New("sqlite configuration is required")
	}
	if logger == nil {
		logger = zap.L().Named("sqlite-connector")
	}
	logger.Info("Opening SQLite database", zap.String("path", cfg.Path))

	// each :memory: connection is its own database
	pool := PoolSettings{MaxOpen: 4, MaxIdle: 2}
	if cfg.IsMemory() {
		pool = PoolSettings{MaxOpen: 1}
	}

	db, err := openPool(ctx, DriverSQLite, cfg.DSN(), pool)
	if err != nil {
		return nil, err
	}

	if !cfg.IsMemory() {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			logger.Warn("Failed to enable WAL journal", zap.Error(err))
		}
	}

	return &SQLiteConnector{db: db, logger: logger, cfg: cfg}, nil
}

// DB returns the underlying database connection
func (c *SQLiteConnector) DB() *sql.DB {
	return c.db
}

// DriverName returns "sqlite"
func (c *SQLiteConnector) DriverName() string {
	return DriverSQLite
}

// Validate checks the library version and the integrity of the file
func (c *SQLiteConnector) Validate(ctx context.Context) error {
	var version string
	if err := c.db.QueryRowContext(ctx, "SELECT sqlite_version()").Scan(&version); err != nil {
		return fmt.Errorf("failed to query SQLite version: %w", err)
	}

	var check string
	if err := c.db.QueryRowContext(ctx, "PRAGMA quick_check").Scan(&check); err != nil {
		return fmt.Errorf("integrity check failed: %w", err)
	}
	if check != "ok" {
		return fmt.Errorf("integrity check failed: %s", check)
	}

	c.logger.Info("SQLite database validated",
		zap.String("version", version),
		zap.String("path", c.cfg.Path))
	return nil
}

// Close closes the database connection
func (c *SQLiteConnector) Close() error {
	c.logger.Debug("Closing SQLite database", poolFields(c.db)...)
	return c.db.Close()
}
