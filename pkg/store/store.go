// Package store defines the record store the migration writes into.
package store

import (
	"context"
	"errors"

	"github.com/David-Botos/content-migrate/pkg/model"
)

var (
	// ErrNotFound is returned when a user or record does not exist
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a create collides with an existing key
	ErrAlreadyExists = errors.New("already exists")
)

// UserCriteria selects a user. Non-empty fields must all match.
type UserCriteria struct {
	ID    string
	Email string
}

// IsEmpty reports whether no field is set
func (c UserCriteria) IsEmpty() bool {
	return c.ID == "" && c.Email == ""
}

// RecordStore is the persistence boundary of the migration. Implementations
// are safe for sequential use by one orchestrator; lookups observe all
// earlier writes.
type RecordStore interface {
	// FindUser returns the user matching criteria or ErrNotFound
	FindUser(ctx context.Context, criteria UserCriteria) (*model.User, error)
	// CreateUser stores a new user; ErrAlreadyExists on id or email collision
	CreateUser(ctx context.Context, user model.User) (*model.User, error)
	// FindFirstUser returns the least recently created user or ErrNotFound
	FindFirstUser(ctx context.Context) (*model.User, error)

	// FindRecord returns the record with the given key or ErrNotFound
	FindRecord(ctx context.Context, entity model.EntityType, id string) (*model.EntityRecord, error)
	// CreateRecord stores a new record; ErrAlreadyExists when the key is taken
	CreateRecord(ctx context.Context, record *model.EntityRecord) (*model.EntityRecord, error)
	// UpdateRecord replaces an existing record; ErrNotFound when absent
	UpdateRecord(ctx context.Context, record *model.EntityRecord) (*model.EntityRecord, error)
	// ListRecords returns all records of one type ordered by id
	ListRecords(ctx context.Context, entity model.EntityType) ([]model.EntityRecord, error)
	// CountRecords returns the number of stored records of one type
	CountRecords(ctx context.Context, entity model.EntityType) (int64, error)

	// RecordCleaningOperations appends diagnostics for recovered values
	RecordCleaningOperations(ctx context.Context, ops []model.CleaningOperation) error

	Close() error
}

// IsNotFound reports whether err is ErrNotFound
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
