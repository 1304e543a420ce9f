// Package storetest holds behaviour checks shared by every RecordStore.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/David-Botos/content-migrate/pkg/model"
	"github.com/David-Botos/content-migrate/pkg/store"
)

// Run exercises a fresh store returned by newStore for each subtest.
func Run(t *testing.T, newStore func(t *testing.T) store.RecordStore) {
	t.Run("users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("first user", func(t *testing.T) { testFirstUser(t, newStore(t)) })
	t.Run("records", func(t *testing.T) { testRecords(t, newStore(t)) })
	t.Run("update", func(t *testing.T) { testUpdate(t, newStore(t)) })
	t.Run("list and count", func(t *testing.T) { testListAndCount(t, newStore(t)) })
	t.Run("cleaning operations", func(t *testing.T) { testCleaningOperations(t, newStore(t)) })
}

func testUsers(t *testing.T, s store.RecordStore) {
	ctx := context.Background()

	_, err := s.FindUser(ctx, store.UserCriteria{Email: "a@example.org"})
	require.True(t, errors.Is(err, store.ErrNotFound))

	created, err := s.CreateUser(ctx, model.User{ID: "1", Email: "a@example.org", EncryptedPassword: "x"})
	require.NoError(t, err)
	assert.False(t, created.CreatedAt.IsZero())

	found, err := s.FindUser(ctx, store.UserCriteria{Email: "a@example.org"})
	require.NoError(t, err)
	assert.Equal(t, "1", found.ID)
	assert.Equal(t, "x", found.EncryptedPassword)

	found, err = s.FindUser(ctx, store.UserCriteria{ID: "1"})
	require.NoError(t, err)
	assert.Equal(t, "a@example.org", found.Email)

	_, err = s.FindUser(ctx, store.UserCriteria{ID: "1", Email: "other@example.org"})
	assert.True(t, errors.Is(err, store.ErrNotFound))

	_, err = s.CreateUser(ctx, model.User{ID: "2", Email: "a@example.org"})
	assert.True(t, errors.Is(err, store.ErrAlreadyExists), "duplicate email: %v", err)

	_, err = s.FindUser(ctx, store.UserCriteria{})
	assert.Error(t, err)
}

func testFirstUser(t *testing.T, s store.RecordStore) {
	ctx := context.Background()

	_, err := s.FindFirstUser(ctx)
	require.True(t, errors.Is(err, store.ErrNotFound))

	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = s.CreateUser(ctx, model.User{ID: "b", Email: "b@example.org", CreatedAt: base.Add(time.Hour)})
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, model.User{ID: "a", Email: "a@example.org", CreatedAt: base})
	require.NoError(t, err)

	first, err := s.FindFirstUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", first.ID)
	assert.True(t, first.CreatedAt.Equal(base))
}

func sampleRecord() *model.EntityRecord {
	return &model.EntityRecord{
		Type:        model.EntityActor,
		ID:          "42",
		Title:       "Les Amis du Vélo",
		Content:     "Atelier de réparation",
		Category:    "ASSOCIATION",
		Tags:        model.TagSet{"Association", "Mobilité"},
		URL:         "https://example.org",
		Location:    &model.GeoLocation{Latitude: 48.85, Longitude: 2.35, Address: "Paris"},
		Address:     &model.ParsedAddress{Street: "1 rue X", City: "Paris", PostalCode: "75001"},
		Email:       "contact@example.org",
		AuthorID:    "1",
		Published:   true,
		PublishedAt: time.Date(2021, 5, 6, 7, 8, 9, 0, time.UTC),
	}
}

func testRecords(t *testing.T, s store.RecordStore) {
	ctx := context.Background()

	_, err := s.FindRecord(ctx, model.EntityActor, "42")
	require.True(t, errors.Is(err, store.ErrNotFound))

	_, err = s.CreateRecord(ctx, sampleRecord())
	require.NoError(t, err)

	got, err := s.FindRecord(ctx, model.EntityActor, "42")
	require.NoError(t, err)
	want := sampleRecord()
	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, want.Tags, got.Tags)
	assert.Equal(t, want.Location, got.Location)
	assert.Equal(t, want.Address, got.Address)
	assert.True(t, want.PublishedAt.Equal(got.PublishedAt))
	assert.True(t, got.Published)

	_, err = s.CreateRecord(ctx, sampleRecord())
	assert.True(t, errors.Is(err, store.ErrAlreadyExists), "duplicate key: %v", err)

	// same id, other type is a different key
	other := sampleRecord()
	other.Type = model.EntityTip
	other.Location, other.Address = nil, nil
	_, err = s.CreateRecord(ctx, other)
	require.NoError(t, err)

	tip, err := s.FindRecord(ctx, model.EntityTip, "42")
	require.NoError(t, err)
	assert.Nil(t, tip.Location)
	assert.Nil(t, tip.Address)
}

func testUpdate(t *testing.T, s store.RecordStore) {
	ctx := context.Background()

	_, err := s.UpdateRecord(ctx, sampleRecord())
	require.True(t, errors.Is(err, store.ErrNotFound))

	_, err = s.CreateRecord(ctx, sampleRecord())
	require.NoError(t, err)

	changed := sampleRecord()
	changed.Location = &model.GeoLocation{Latitude: 2.35, Longitude: 48.85, Address: "Paris"}
	changed.Address = &model.ParsedAddress{Street: "2 rue Y", City: "Lyon", PostalCode: "69001"}
	updated, err := s.UpdateRecord(ctx, changed)
	require.NoError(t, err)
	assert.Equal(t, changed.Location, updated.Location)

	got, err := s.FindRecord(ctx, model.EntityActor, "42")
	require.NoError(t, err)
	assert.Equal(t, "Lyon", got.Address.City)
	assert.Equal(t, 2.35, got.Location.Latitude)
}

func testListAndCount(t *testing.T, s store.RecordStore) {
	ctx := context.Background()

	for _, id := range []string{"3", "1", "2"} {
		r := sampleRecord()
		r.ID = id
		_, err := s.CreateRecord(ctx, r)
		require.NoError(t, err)
	}
	tip := sampleRecord()
	tip.Type = model.EntityTip
	_, err := s.CreateRecord(ctx, tip)
	require.NoError(t, err)

	list, err := s.ListRecords(ctx, model.EntityActor)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"1", "2", "3"}, []string{list[0].ID, list[1].ID, list[2].ID})

	n, err := s.CountRecords(ctx, model.EntityActor)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = s.CountRecords(ctx, model.EntityForumPost)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func testCleaningOperations(t *testing.T, s store.RecordStore) {
	ctx := context.Background()

	require.NoError(t, s.RecordCleaningOperations(ctx, nil))
	require.NoError(t, s.RecordCleaningOperations(ctx, []model.CleaningOperation{
		{RunID: "run", EntityType: model.EntityTip, ColumnName: "tags", OriginalValue: "{", RowIdentifier: "1", Operation: "tag_default", Reason: "unparseable_tag_blob"},
		{RunID: "run", EntityType: model.EntityTip, ColumnName: "tags", OriginalValue: "[", RowIdentifier: "2", Operation: "tag_default", Reason: "unparseable_tag_blob"},
	}))
}
