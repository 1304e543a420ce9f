// pkg/connector/factory.go
package connector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/content-migrate/pkg/config"
	"github.com/David-Botos/content-migrate/pkg/store"
	"github.com/David-Botos/content-migrate/pkg/store/memory"
	"github.com/David-Botos/content-migrate/pkg/store/sqlstore"
)

// ConnectorFactory creates database connectors and the record store on top
type ConnectorFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewConnectorFactory creates a new connector factory
func NewConnectorFactory(cfg *config.Config, logger *zap.Logger) *ConnectorFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConnectorFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateConnector opens the connection for the configured backend
func (f *ConnectorFactory) CreateConnector(ctx context.Context) (DatabaseConnector, error) {
	switch f.cfg.StoreBackend {
	case config.BackendPostgres:
		f.logger.Info("Creating PostgreSQL connector")
		conn, err := NewPostgresConnector(ctx, f.cfg.Postgres, f.logger.Named("postgres"))
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL connector: %w", err)
		}
		return conn, nil
	case config.BackendSQLite:
		f.logger.Info("Creating SQLite connector")
		conn, err := NewSQLiteConnector(ctx, f.cfg.SQLite, f.logger.Named("sqlite"))
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite connector: %w", err)
		}
		return conn, nil
	default:
		return nil, fmt.Errorf("backend %q has no database connector", f.cfg.StoreBackend)
	}
}

// CreateStore returns the record store for the configured backend. Closing
// the store closes its connection.
func (f *ConnectorFactory) CreateStore(ctx context.Context) (store.RecordStore, error) {
	if f.cfg.StoreBackend == config.BackendMemory {
		f.logger.Warn("Using in-memory record store; nothing will be persisted")
		return memory.NewStore(), nil
	}

	conn, err := f.CreateConnector(ctx)
	if err != nil {
		return nil, err
	}

	if err := conn.Validate(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	s, err := sqlstore.New(ctx, conn.DB(), conn.DriverName(), f.logger.Named("sqlstore"))
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to prepare record store: %w", err)
	}
	return s, nil
}
