package transfer

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/David-Botos/content-migrate/pkg/model"
	"github.com/David-Botos/content-migrate/pkg/store"
	"github.com/David-Botos/content-migrate/pkg/store/memory"
)

func newManager(t *testing.T, s store.RecordStore, opts Options) *TransferManager {
	t.Helper()
	tm, err := NewTransferManager(s, nil, nil, nil, opts, zap.NewNop())
	require.NoError(t, err)
	return tm
}

func stepOf(t *testing.T, m *TransferMetrics, name string) *StepMetrics {
	t.Helper()
	sm, ok := m.Step(name)
	require.True(t, ok, "step %s not recorded", name)
	return sm
}

func TestRun_MigratesAllSteps(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := memory.NewStore()

	metrics, err := newManager(t, s, f.options()).Run(ctx)
	require.NoError(t, err)

	users := stepOf(t, metrics, StepUsers)
	assert.EqualValues(t, 3, users.RowsRead)
	assert.EqualValues(t, 2, users.Migrated)
	assert.EqualValues(t, 1, users.Errors)

	tips := stepOf(t, metrics, "tip")
	assert.True(t, tips.Success)
	assert.EqualValues(t, 3, tips.RowsRead)
	assert.EqualValues(t, 2, tips.Migrated)
	assert.EqualValues(t, 1, tips.Skipped)
	assert.EqualValues(t, 1, tips.SkipReasons[SkipUnpublished])

	actors := stepOf(t, metrics, "actor")
	assert.EqualValues(t, 1, actors.Migrated)
	assert.EqualValues(t, 1, actors.Errors)

	t1, err := s.FindRecord(ctx, model.EntityTip, "t1")
	require.NoError(t, err)
	assert.Equal(t, "Un bac, des vers, et c'est parti", t1.Content)
	assert.Equal(t, model.TagSet{"Déchets"}, t1.Tags)
	assert.Equal(t, "WASTE", t1.Category)
	assert.Equal(t, "u1", t1.AuthorID)
	assert.Equal(t, 2021, t1.PublishedAt.Year())

	// unknown author falls back to the least recently created user
	t3, err := s.FindRecord(ctx, model.EntityTip, "t3")
	require.NoError(t, err)
	assert.Equal(t, "u1", t3.AuthorID)
	assert.Equal(t, model.TagSet{"Énergie", "Eau"}, t3.Tags)
	assert.Equal(t, "ENERGY", t3.Category)

	_, err = s.FindRecord(ctx, model.EntityTip, "t2")
	assert.ErrorIs(t, err, store.ErrNotFound)

	a1, err := s.FindRecord(ctx, model.EntityActor, "a1")
	require.NoError(t, err)
	require.NotNil(t, a1.Location)
	assert.Equal(t, 2.3522, a1.Location.Latitude)
	require.NotNil(t, a1.Address)
	assert.Equal(t, model.ParsedAddress{Street: "211 Avenue Jean Jaurès", PostalCode: "75019", City: "Paris"}, *a1.Address)
	assert.Equal(t, "ASSOCIATION", a1.Category)

	var authorOps int
	for _, op := range s.CleaningOperations() {
		assert.Equal(t, metrics.RunID, op.RunID)
		if op.ColumnName == "author" {
			authorOps++
			assert.Equal(t, "t3", op.RowIdentifier)
		}
	}
	assert.Equal(t, 1, authorOps)
}

func TestRun_Idempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := memory.NewStore()

	_, err := newManager(t, s, f.options()).Run(ctx)
	require.NoError(t, err)
	tipsAfterFirst, err := s.CountRecords(ctx, model.EntityTip)
	require.NoError(t, err)

	metrics, err := newManager(t, s, f.options()).Run(ctx)
	require.NoError(t, err)

	tipsAfterSecond, err := s.CountRecords(ctx, model.EntityTip)
	require.NoError(t, err)
	assert.Equal(t, tipsAfterFirst, tipsAfterSecond)

	tips := stepOf(t, metrics, "tip")
	assert.Zero(t, tips.Migrated)
	assert.EqualValues(t, 2, tips.SkipReasons[SkipExisting])
	assert.EqualValues(t, 1, tips.SkipReasons[SkipUnpublished])

	users := stepOf(t, metrics, StepUsers)
	assert.Zero(t, users.Migrated)
	assert.EqualValues(t, 2, users.Skipped)
	assert.Zero(t, metrics.TotalMigrated)
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	written := memory.NewStore()
	writeMetrics, err := newManager(t, written, f.options()).Run(ctx)
	require.NoError(t, err)

	s := memory.NewStore()
	require.NoError(t, seedUser(ctx, s))
	opts := f.options()
	opts.DryRun = true
	metrics, err := newManager(t, s, opts).Run(ctx)
	require.NoError(t, err)

	n, err := s.CountRecords(ctx, model.EntityTip)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, s.CleaningOperations())

	assert.Equal(t, stepOf(t, writeMetrics, "tip").Migrated, stepOf(t, metrics, "tip").Migrated)
	assert.True(t, metrics.DryRun)
}

func TestRun_DryRunMatchesRealRunOnEmptyStore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.dumpFiles[model.EntityTip] = writeFile(t, f.dir, "tip_dup.sql", tipDump+
		"INSERT INTO tips VALUES ('t1','Composter en appartement','encore','u2','2021-03-04','[]','','','true');\n")

	realRun, err := newManager(t, memory.NewStore(), f.options()).Run(ctx)
	require.NoError(t, err)

	opts := f.options()
	opts.DryRun = true
	dryStore := memory.NewStore()
	dryRun, err := newManager(t, dryStore, opts).Run(ctx)
	require.NoError(t, err)

	for _, step := range []string{StepUsers, "tip", "actor"} {
		t.Run(step, func(t *testing.T) {
			want, got := stepOf(t, realRun, step), stepOf(t, dryRun, step)
			assert.Equal(t, want.RowsRead, got.RowsRead)
			assert.Equal(t, want.Migrated, got.Migrated)
			assert.Equal(t, want.Skipped, got.Skipped)
			assert.Equal(t, want.Errors, got.Errors)
			assert.Equal(t, want.SkipReasons, got.SkipReasons)
			assert.Equal(t, want.CleaningOperations, got.CleaningOperations)
		})
	}

	tips := stepOf(t, dryRun, "tip")
	assert.EqualValues(t, 2, tips.Migrated)
	assert.EqualValues(t, 1, tips.SkipReasons[SkipExisting])
	assert.Zero(t, tips.Errors)

	_, err = dryStore.FindFirstUser(ctx)
	assert.ErrorIs(t, err, store.ErrNotFound)
	n, err := dryStore.CountRecords(ctx, model.EntityTip)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRun_DryRunPlansDefaultAuthorOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	opts := f.options()
	opts.UsersFile = ""
	opts.Entities = []model.EntityType{model.EntityTip}
	opts.DefaultAuthorEmail = "redaction@example.fr"
	opts.DryRun = true

	s := memory.NewStore()
	metrics, err := newManager(t, s, opts).Run(ctx)
	require.NoError(t, err)

	assert.EqualValues(t, 2, stepOf(t, metrics, "tip").Migrated)
	_, err = s.FindUser(ctx, store.UserCriteria{Email: "redaction@example.fr"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRun_UnreadableFileAbortsOnlyThatStep(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	opts := f.options()
	opts.DumpFiles[model.EntityTip] = filepath.Join(f.dir, "missing.sql")

	s := memory.NewStore()
	metrics, err := newManager(t, s, opts).Run(ctx)
	require.NoError(t, err)

	tips := stepOf(t, metrics, "tip")
	assert.False(t, tips.Success)
	assert.NotEmpty(t, tips.FileError)
	assert.Equal(t, 1, metrics.FailedSteps)
	assert.Equal(t, 1, metrics.ErrorCounts[ErrorCategoryFileLevel])

	actors := stepOf(t, metrics, "actor")
	assert.True(t, actors.Success)
	assert.EqualValues(t, 1, actors.Migrated)
}

func TestRun_NoAuthor(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	opts := f.options()
	opts.UsersFile = ""
	opts.Entities = []model.EntityType{model.EntityTip}

	core, logs := observer.New(zap.ErrorLevel)
	s := memory.NewStore()
	tm, err := NewTransferManager(s, nil, nil, nil, opts, zap.New(core))
	require.NoError(t, err)

	metrics, err := tm.Run(ctx)
	require.NoError(t, err)

	tips := stepOf(t, metrics, "tip")
	assert.Zero(t, tips.Migrated)
	assert.EqualValues(t, 2, tips.Errors)
	assert.Equal(t, 2, tm.GetErrorSummary()[ErrorCategoryRowLevel])
	assert.Equal(t, 2, logs.FilterMessage("Migration error").Len())

	samples := tm.GetErrorSamples()[ErrorCategoryRowLevel]
	require.NotEmpty(t, samples)
	assert.ErrorIs(t, samples[0].Error, ErrNoAuthor)
	assert.Equal(t, "t1", samples[0].RowID)
	assert.Equal(t, 1, samples[0].RowIndex)
}

func TestRun_DefaultAuthor(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	opts := f.options()
	opts.UsersFile = ""
	opts.Entities = []model.EntityType{model.EntityTip}
	opts.DefaultAuthorEmail = "redaction@example.fr"

	s := memory.NewStore()
	metrics, err := newManager(t, s, opts).Run(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stepOf(t, metrics, "tip").Migrated)

	author, err := s.FindUser(ctx, store.UserCriteria{Email: "redaction@example.fr"})
	require.NoError(t, err)

	t1, err := s.FindRecord(ctx, model.EntityTip, "t1")
	require.NoError(t, err)
	assert.Equal(t, author.ID, t1.AuthorID)

	t3, err := s.FindRecord(ctx, model.EntityTip, "t3")
	require.NoError(t, err)
	assert.Equal(t, author.ID, t3.AuthorID)
}

func TestTransferEntity_NoDumpConfigured(t *testing.T) {
	tm := newManager(t, memory.NewStore(), Options{DumpFiles: map[model.EntityType]string{}})
	result, err := tm.TransferEntity(context.Background(), model.EntityForumPost)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnreadableInput)
	assert.False(t, result.Success)
}

func TestReport(t *testing.T) {
	f := newFixture(t)
	tm := newManager(t, memory.NewStore(), f.options())
	_, err := tm.Run(context.Background())
	require.NoError(t, err)

	report := tm.GenerateReport()
	assert.Contains(t, report, "Migration Report")
	assert.Contains(t, report, "skipped unpublished: 1")
	assert.Contains(t, report, "RowLevel")

	data, err := tm.GetMetrics().ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"totalMigrated": 5`)
	assert.Contains(t, string(data), `"RowLevel": 1`)
}

func seedUser(ctx context.Context, s store.RecordStore) error {
	_, err := s.CreateUser(ctx, model.User{ID: "u1", Email: "alice@example.fr"})
	return err
}
