package transfer

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/David-Botos/content-migrate/pkg/model"
	"github.com/David-Botos/content-migrate/pkg/store/memory"
)

func TestVerifyEntity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := memory.NewStore()
	v := NewVerifier(s, nil, zap.NewNop())

	before, err := v.VerifyEntity(ctx, model.EntityTip, f.dumpFiles[model.EntityTip])
	require.NoError(t, err)
	assert.EqualValues(t, 3, before.DumpTuples)
	assert.EqualValues(t, 1, before.UnpublishedRows)
	assert.EqualValues(t, 2, before.ExpectedRecords)
	assert.Zero(t, before.StoredRecords)
	assert.ElementsMatch(t, []string{"t1", "t3"}, before.MissingIDs)
	assert.False(t, before.Passed())

	_, err = newManager(t, s, f.options()).Run(ctx)
	require.NoError(t, err)

	after, err := v.VerifyEntity(ctx, model.EntityTip, f.dumpFiles[model.EntityTip])
	require.NoError(t, err)
	assert.True(t, after.Passed())
	assert.Equal(t, 2, after.SampleSize)

	actors, err := v.VerifyEntity(ctx, model.EntityActor, f.dumpFiles[model.EntityActor])
	require.NoError(t, err)
	assert.EqualValues(t, 1, actors.MalformedRows)
	assert.True(t, actors.Passed())

	out := FormatVerificationReports([]*VerificationReport{before, after})
	assert.Contains(t, out, "MISMATCH")
	assert.Contains(t, out, "OK")
}

func TestVerifyEntity_MissingFile(t *testing.T) {
	v := NewVerifier(memory.NewStore(), nil, zap.NewNop())
	_, err := v.VerifyEntity(context.Background(), model.EntityTip, filepath.Join(t.TempDir(), "none.sql"))
	assert.ErrorIs(t, err, ErrUnreadableInput)
}

func TestSampleIDs(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e", "f"}
	assert.Equal(t, ids, sampleIDs(ids, 10))
	assert.Equal(t, []string{"a", "c", "e"}, sampleIDs(ids, 3))
	assert.Equal(t, 500, calculateSampleSize(5000))
}
