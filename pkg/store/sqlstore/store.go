// Package sqlstore implements store.RecordStore on PostgreSQL or SQLite
// through sqlx. Queries are written with ? placeholders and rebound for the
// connection's driver.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/David-Botos/content-migrate/pkg/model"
	"github.com/David-Botos/content-migrate/pkg/store"
	"github.com/David-Botos/content-migrate/pkg/store/sqlstore/migrations"
)

// Ensure Store implements the interface.
var _ store.RecordStore = (*Store)(nil)

// Store is a SQL-backed record store
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
	now    func() time.Time
}

// New wraps an open database and applies pending migrations. driverName must
// be the name the connection was opened with ("pgx", "postgres", "sqlite").
func New(ctx context.Context, db *sql.DB, driverName string, logger *zap.Logger) (*Store, error) {
	if db == nil {
		return nil, errors.New("database connection cannot be nil")
	}
	if logger == nil {
		logger = zap.L().Named("sqlstore")
	}

	s := &Store{
		db:     sqlx.NewDb(db, driverName),
		logger: logger,
		now:    time.Now,
	}

	if err := s.migrate(ctx, migrations.FS); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// migrate applies NNN_name.up.sql files newer than the recorded version
func (s *Store) migrate(ctx context.Context, fsys fs.FS) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at BIGINT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var current int
	if err := s.db.GetContext(ctx, &current, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations"); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= current {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := s.db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("starting migration %s: %w", name, err)
		}
		for _, stmt := range splitStatements(string(content)) {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				tx.Rollback()
				return fmt.Errorf("executing migration %s: %w", name, err)
			}
		}
		if _, err := tx.ExecContext(ctx,
			s.db.Rebind("INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)"),
			version, s.now().UnixMilli()); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", name, err)
		}

		s.logger.Info("Applied migration", zap.String("migration", name), zap.Int("version", version))
	}

	return nil
}

// splitStatements splits a migration on semicolons, dropping comment lines
func splitStatements(sqlText string) []string {
	var lines []string
	for _, line := range strings.Split(sqlText, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		lines = append(lines, line)
	}

	var stmts []string
	for _, stmt := range strings.Split(strings.Join(lines, "\n"), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

// FindUser returns the user matching every non-empty criterion
func (s *Store) FindUser(ctx context.Context, criteria store.UserCriteria) (*model.User, error) {
	if criteria.IsEmpty() {
		return nil, errors.New("find user: empty criteria")
	}

	var (
		conds []string
		args  []any
	)
	if criteria.ID != "" {
		conds = append(conds, "id = ?")
		args = append(args, criteria.ID)
	}
	if criteria.Email != "" {
		conds = append(conds, "email = ?")
		args = append(args, criteria.Email)
	}

	query := s.db.Rebind("SELECT " + userColumns + " FROM users WHERE " + strings.Join(conds, " AND ") + " LIMIT 1")
	var row userRow
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("finding user: %w", err)
	}
	return row.toModel(), nil
}

// CreateUser inserts a user
func (s *Store) CreateUser(ctx context.Context, user model.User) (*model.User, error) {
	now := s.now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (:id, :email, :encrypted_password, :created_at, :updated_at)`,
		newUserRow(user))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("user %s: %w", user.Email, store.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return newUserRow(user).toModel(), nil
}

// FindFirstUser returns the least recently created user
func (s *Store) FindFirstUser(ctx context.Context) (*model.User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row,
		"SELECT "+userColumns+" FROM users ORDER BY created_at ASC, id ASC LIMIT 1")
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("finding first user: %w", err)
	}
	return row.toModel(), nil
}

// FindRecord retrieves a record by key
func (s *Store) FindRecord(ctx context.Context, entity model.EntityType, id string) (*model.EntityRecord, error) {
	var row recordRow
	err := s.db.GetContext(ctx, &row,
		s.db.Rebind("SELECT "+recordColumns+" FROM records WHERE entity_type = ? AND id = ?"),
		string(entity), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("finding %s %s: %w", entity, id, err)
	}
	return row.toModel()
}

// CreateRecord inserts a record
func (s *Store) CreateRecord(ctx context.Context, record *model.EntityRecord) (*model.EntityRecord, error) {
	r := *record
	now := s.now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now

	row, err := newRecordRow(&r)
	if err != nil {
		return nil, err
	}

	_, err = s.db.NamedExecContext(ctx, `INSERT INTO records (`+recordColumns+`) VALUES (
		:entity_type, :id, :title, :content, :category, :tags, :image_url, :url,
		:has_location, :latitude, :longitude, :location_address,
		:has_address, :street, :city, :postal_code,
		:email, :phone, :extra, :author_id, :published, :published_at, :created_at, :updated_at)`, row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("record %s: %w", r.Key(), store.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("creating record %s: %w", r.Key(), err)
	}
	return row.toModel()
}

// UpdateRecord rewrites every mutable column of an existing record
func (s *Store) UpdateRecord(ctx context.Context, record *model.EntityRecord) (*model.EntityRecord, error) {
	r := *record
	r.UpdatedAt = s.now()

	row, err := newRecordRow(&r)
	if err != nil {
		return nil, err
	}

	res, err := s.db.NamedExecContext(ctx, `UPDATE records SET
		title = :title, content = :content, category = :category, tags = :tags,
		image_url = :image_url, url = :url,
		has_location = :has_location, latitude = :latitude, longitude = :longitude,
		location_address = :location_address,
		has_address = :has_address, street = :street, city = :city, postal_code = :postal_code,
		email = :email, phone = :phone, extra = :extra, author_id = :author_id,
		published = :published, published_at = :published_at, updated_at = :updated_at
		WHERE entity_type = :entity_type AND id = :id`, row)
	if err != nil {
		return nil, fmt.Errorf("updating record %s: %w", r.Key(), err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("record %s: %w", r.Key(), store.ErrNotFound)
	}

	return s.FindRecord(ctx, r.Type, r.ID)
}

// ListRecords returns all records of one type ordered by id
func (s *Store) ListRecords(ctx context.Context, entity model.EntityType) ([]model.EntityRecord, error) {
	var rows []recordRow
	err := s.db.SelectContext(ctx, &rows,
		s.db.Rebind("SELECT "+recordColumns+" FROM records WHERE entity_type = ? ORDER BY id"),
		string(entity))
	if err != nil {
		return nil, fmt.Errorf("listing %s records: %w", entity, err)
	}

	out := make([]model.EntityRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, nil
}

// CountRecords counts stored records of one type
func (s *Store) CountRecords(ctx context.Context, entity model.EntityType) (int64, error) {
	var n int64
	err := s.db.GetContext(ctx, &n,
		s.db.Rebind("SELECT COUNT(*) FROM records WHERE entity_type = ?"), string(entity))
	if err != nil {
		return 0, fmt.Errorf("counting %s records: %w", entity, err)
	}
	return n, nil
}

// RecordCleaningOperations inserts diagnostics in a single transaction
func (s *Store) RecordCleaningOperations(ctx context.Context, ops []model.CleaningOperation) error {
	if len(ops) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareNamedContext(ctx, `INSERT INTO cleaning_operations
		(id, run_id, entity_type, column_name, original_value, new_value,
		 row_identifier, operation, reason, cleaned_at)
		VALUES (:id, :run_id, :entity_type, :column_name, :original_value, :new_value,
		 :row_identifier, :operation, :reason, :cleaned_at)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, op := range ops {
		id := op.ID
		if id == "" {
			id = uuid.NewString()
		}
		cleanedAt := op.CleanedAt
		if cleanedAt.IsZero() {
			cleanedAt = s.now()
		}

		row := cleaningRow{
			ID:            id,
			RunID:         op.RunID,
			EntityType:    string(op.EntityType),
			ColumnName:    op.ColumnName,
			OriginalValue: op.OriginalValue,
			NewValue:      op.NewValue,
			RowIdentifier: op.RowIdentifier,
			Operation:     op.Operation,
			Reason:        op.Reason,
			CleanedAt:     cleanedAt.UnixMilli(),
		}
		if _, err := stmt.ExecContext(ctx, row); err != nil {
			return fmt.Errorf("failed to record cleaning operation for %s %s: %w",
				op.EntityType, op.RowIdentifier, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Debug("Recorded cleaning operations", zap.Int("count", len(ops)))
	return nil
}

// CountCleaningOperations returns the number of diagnostics stored for a run
func (s *Store) CountCleaningOperations(ctx context.Context, runID string) (int64, error) {
	var n int64
	err := s.db.GetContext(ctx, &n,
		s.db.Rebind("SELECT COUNT(*) FROM cleaning_operations WHERE run_id = ?"), runID)
	if err != nil {
		return 0, fmt.Errorf("counting cleaning operations: %w", err)
	}
	return n, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}
