// pkg/connector/postgres.go
package connector

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v4/stdlib"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/David-Botos/content-migrate/pkg/config"
)

// PostgresConnector opens the record store database through pgx or lib/pq
type PostgresConnector struct {
	db     *sql.DB
	driver string
	logger *zap.Logger
	cfg    *config.PostgresConfig
}

// NewPostgresConnector connects with the configured driver, "pgx" unless set
func NewPostgresConnector(ctx context.Context, cfg *config.PostgresConfig, logger *zap.Logger) (*PostgresConnector, error) {
	if cfg == nil {
		return nil, errors.New("postgres configuration is required")
	}
	if logger == nil {
		logger = zap.L().Named("postgres-connector")
	}

	driver := cfg.Driver
	if driver == "" {
		driver = config.DriverPgx
	}

	logger.Info("Connecting to PostgreSQL",
		zap.String("driver", driver),
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.String("user", cfg.User),
		zap.Duration("statement_timeout", cfg.StatementTimeout))

	db, err := openPool(ctx, driver, cfg.ConnectionString(), PoolSettings{
		MaxOpen:     cfg.MaxOpenConns,
		MaxIdle:     cfg.MaxIdleConns,
		MaxLifetime: cfg.ConnMaxLifetime,
		MaxIdleTime: cfg.ConnMaxIdleTime,
	})
	if err != nil {
		return nil, err
	}

	return &PostgresConnector{db: db, driver: driver, logger: logger, cfg: cfg}, nil
}

// DB returns the underlying database connection
func (c *PostgresConnector) DB() *sql.DB {
	return c.db
}

// DriverName returns "pgx" or "postgres"
func (c *PostgresConnector) DriverName() string {
	return c.driver
}

// Validate logs the server version and checks that the user may create the
// store tables in its current schema.
func (c *PostgresConnector) Validate(ctx context.Context) error {
	var (
		version   string
		schema    string
		canCreate bool
	)
	err := c.db.QueryRowContext(ctx, `
		SELECT version(), current_schema(), has_schema_privilege(current_schema(), 'CREATE')`).
		Scan(&version, &schema, &canCreate)
	if err != nil {
		return fmt.Errorf("querying PostgreSQL version: %w", err)
	}
	if !canCreate {
		return fmt.Errorf("user %s cannot create tables in schema %s", c.cfg.User, schema)
	}

	c.logger.Info("PostgreSQL connection validated",
		zap.String("version", version),
		zap.String("schema", schema),
		zap.String("database", c.cfg.Database))
	return nil
}

// Close closes the database connection
func (c *PostgresConnector) Close() error {
	c.logger.Info("Closing PostgreSQL connection", poolFields(c.db)...)
	return c.db.Close()
}
