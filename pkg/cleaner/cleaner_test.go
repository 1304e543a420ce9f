package cleaner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/David-Botos/content-migrate/pkg/model"
	"github.com/David-Botos/content-migrate/pkg/store/memory"
)

type failingSink struct{ err error }

func (f failingSink) RecordCleaningOperations(context.Context, []model.CleaningOperation) error {
	return f.err
}

func TestNewRecorder_NilSink(t *testing.T) {
	_, err := NewRecorder(nil, "run", nil)
	assert.Error(t, err)
}

func TestTrack(t *testing.T) {
	s := memory.NewStore()
	r, err := NewRecorder(s, "run-1", nil)
	require.NoError(t, err)

	cctx := r.Context(model.EntityTip, "tags", "t1")

	tags := Track(r, cctx, OpTags, `{a}`, model.Clean(model.TagSet{"a"}), FormatTags)
	assert.Equal(t, model.TagSet{"a"}, tags)
	assert.Zero(t, r.Pending())

	tags = Track(r, cctx, OpTags, `a;b`, model.Recovered(model.TagSet{"a", "b"}, "manual_split"), FormatTags)
	assert.Equal(t, model.TagSet{"a", "b"}, tags)
	require.Equal(t, 1, r.Pending())

	require.NoError(t, r.Flush(context.Background()))
	assert.Zero(t, r.Pending())
	assert.Equal(t, 1, r.Recorded())

	ops := s.CleaningOperations()
	require.Len(t, ops, 1)
	op := ops[0]
	assert.NotEmpty(t, op.ID)
	assert.Equal(t, "run-1", op.RunID)
	assert.Equal(t, model.EntityTip, op.EntityType)
	assert.Equal(t, "tags_recovered", op.Operation)
	assert.Equal(t, "manual_split", op.Reason)
	assert.Equal(t, "a;b", op.OriginalValue)
	assert.Equal(t, "[a, b]", op.NewValue)
	assert.False(t, op.CleanedAt.IsZero())
}

func TestTrack_NilRecorder(t *testing.T) {
	v := Track(nil, model.CleaningContext{}, OpCategory, "", model.Defaulted("OTHER", "no_tags"), FormatString)
	assert.Equal(t, "OTHER", v)
}

func TestFlush_KeepsPendingOnError(t *testing.T) {
	r, err := NewRecorder(failingSink{err: errors.New("disk full")}, "", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, r.RunID())

	r.Add(NewOperation(r.Context(model.EntityActor, "address", "a1"), "x", "x", "address_defaulted", "unsplittable_address"))
	assert.Error(t, r.Flush(context.Background()))
	assert.Equal(t, 1, r.Pending())

	assert.Equal(t, 1, r.Discard())
	assert.Zero(t, r.Pending())
	assert.Equal(t, map[string]int{"address_defaulted": 1}, r.Counts())
}

func TestFlush_Batches(t *testing.T) {
	s := memory.NewStore()
	core, logs := observer.New(zap.InfoLevel)
	r, err := NewRecorder(s, "run", zap.New(core))
	require.NoError(t, err)
	r.batchSize = 2

	for range 5 {
		r.Add(NewOperation(r.Context(model.EntityTip, "publishDate", "t"), "", "", "timestamp_defaulted", "unparseable"))
	}
	require.NoError(t, r.Flush(context.Background()))
	assert.Len(t, s.CleaningOperations(), 5)
	assert.Equal(t, 1, logs.FilterMessage("Recorded cleaning operations").Len())
}

func TestRewind(t *testing.T) {
	r, err := NewRecorder(memory.NewStore(), "run", nil)
	require.NoError(t, err)

	cctx := r.Context(model.EntityTip, "tags", "t1")
	r.Add(NewOperation(cctx, "a", "a", "tags_recovered", "manual_split"))
	mark := r.Mark()
	r.Add(NewOperation(cctx, "b", "", "tags_defaulted", "unparseable_tag_blob"))
	r.Add(NewOperation(cctx, "c", "", "tags_defaulted", "unparseable_tag_blob"))

	r.Rewind(mark)
	assert.Equal(t, 1, r.Pending())
	assert.Equal(t, map[string]int{"tags_recovered": 1}, r.Counts())

	r.Rewind(5)
	assert.Equal(t, 1, r.Pending())
}
