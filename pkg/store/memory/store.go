// Package memory provides an in-memory RecordStore for tests and previews.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/David-Botos/content-migrate/pkg/model"
	"github.com/David-Botos/content-migrate/pkg/store"
)

// Ensure Store implements the interface.
var _ store.RecordStore = (*Store)(nil)

// Store is an in-memory implementation of store.RecordStore.
type Store struct {
	mu         sync.RWMutex
	users      []model.User
	records    map[string]model.EntityRecord
	operations []model.CleaningOperation
	now        func() time.Time
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		records: make(map[string]model.EntityRecord),
		now:     time.Now,
	}
}

// clone copies a record so callers never share pointers with the store.
func clone(r model.EntityRecord) model.EntityRecord {
	if r.Tags != nil {
		r.Tags = append(model.TagSet{}, r.Tags...)
	}
	if r.Location != nil {
		loc := *r.Location
		r.Location = &loc
	}
	if r.Address != nil {
		addr := *r.Address
		r.Address = &addr
	}
	return r
}

func recordKey(entity model.EntityType, id string) string {
	return fmt.Sprintf("%s:%s", entity, id)
}

// FindUser returns the first user matching every non-empty criterion.
func (s *Store) FindUser(_ context.Context, criteria store.UserCriteria) (*model.User, error) {
	if criteria.IsEmpty() {
		return nil, fmt.Errorf("find user: empty criteria")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if criteria.ID != "" && u.ID != criteria.ID {
			continue
		}
		if criteria.Email != "" && u.Email != criteria.Email {
			continue
		}
		found := u
		return &found, nil
	}
	return nil, store.ErrNotFound
}

// CreateUser stores a user, rejecting duplicate ids and emails.
func (s *Store) CreateUser(_ context.Context, user model.User) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.ID == user.ID || u.Email == user.Email {
			return nil, fmt.Errorf("user %s: %w", user.Email, store.ErrAlreadyExists)
		}
	}

	now := s.now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}
	s.users = append(s.users, user)
	return &user, nil
}

// FindFirstUser returns the user with the earliest creation time.
func (s *Store) FindFirstUser(_ context.Context) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.users) == 0 {
		return nil, store.ErrNotFound
	}
	first := s.users[0]
	for _, u := range s.users[1:] {
		if u.CreatedAt.Before(first.CreatedAt) {
			first = u
		}
	}
	return &first, nil
}

// FindRecord retrieves a record by type and id.
func (s *Store) FindRecord(_ context.Context, entity model.EntityType, id string) (*model.EntityRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[recordKey(entity, id)]
	if !ok {
		return nil, store.ErrNotFound
	}
	r = clone(r)
	return &r, nil
}

// CreateRecord stores a new record.
func (s *Store) CreateRecord(_ context.Context, record *model.EntityRecord) (*model.EntityRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := recordKey(record.Type, record.ID)
	if _, exists := s.records[key]; exists {
		return nil, fmt.Errorf("record %s: %w", key, store.ErrAlreadyExists)
	}

	r := clone(*record)
	now := s.now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	s.records[key] = r
	out := clone(r)
	return &out, nil
}

// UpdateRecord replaces an existing record.
func (s *Store) UpdateRecord(_ context.Context, record *model.EntityRecord) (*model.EntityRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := recordKey(record.Type, record.ID)
	old, exists := s.records[key]
	if !exists {
		return nil, fmt.Errorf("record %s: %w", key, store.ErrNotFound)
	}

	r := clone(*record)
	r.CreatedAt = old.CreatedAt
	r.UpdatedAt = s.now()
	s.records[key] = r
	out := clone(r)
	return &out, nil
}

// ListRecords returns the records of one type sorted by id.
func (s *Store) ListRecords(_ context.Context, entity model.EntityType) ([]model.EntityRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.EntityRecord
	for _, r := range s.records {
		if r.Type == entity {
			out = append(out, clone(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CountRecords returns the number of records of one type.
func (s *Store) CountRecords(_ context.Context, entity model.EntityType) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, r := range s.records {
		if r.Type == entity {
			n++
		}
	}
	return n, nil
}

// RecordCleaningOperations appends cleaning diagnostics.
func (s *Store) RecordCleaningOperations(_ context.Context, ops []model.CleaningOperation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.operations = append(s.operations, ops...)
	return nil
}

// CleaningOperations returns a copy of the recorded diagnostics.
func (s *Store) CleaningOperations() []model.CleaningOperation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.CleaningOperation, len(s.operations))
	copy(out, s.operations)
	return out
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}
