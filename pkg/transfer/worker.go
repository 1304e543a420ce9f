package transfer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/content-migrate/pkg/cleaner"
	"github.com/David-Botos/content-migrate/pkg/dump"
	"github.com/David-Botos/content-migrate/pkg/model"
	"github.com/David-Botos/content-migrate/pkg/store"
)

// Worker migrates entity dump files one row at a time
type Worker struct {
	store    store.RecordStore
	builder  *RecordBuilder
	authors  *AuthorResolver
	recorder *cleaner.Recorder
	errors   *ErrorHandler
	logger   *zap.Logger
	plan     *dryRunPlan // nil outside dry runs
	now      func() time.Time
}

// NewWorker creates a worker
func NewWorker(
	s store.RecordStore,
	builder *RecordBuilder,
	authors *AuthorResolver,
	recorder *cleaner.Recorder,
	errorHandler *ErrorHandler,
	logger *zap.Logger,
) *Worker {
	if logger == nil {
		logger = zap.L().Named("worker")
	}
	if errorHandler == nil {
		errorHandler = NewErrorHandler(logger)
	}
	return &Worker{
		store:    s,
		builder:  builder,
		authors:  authors,
		recorder: recorder,
		errors:   errorHandler,
		logger:   logger,
		now:      time.Now,
	}
}

// ProcessJob migrates one dump file. Row failures are counted on the result
// and never stop the file; only an unreadable file fails the job.
func (w *Worker) ProcessJob(ctx context.Context, job EntityJob) TransferResult {
	result := NewTransferResult(job)

	logger := w.logger.With(
		zap.String("job_id", job.ID),
		zap.String("entity", string(job.Entity)),
		zap.String("file", job.Path))
	logger.Info("Starting entity migration", zap.Bool("dry_run", job.DryRun))

	layout, err := model.Layout(job.Entity)
	if err != nil {
		w.fileError(result, job, err)
		result.Complete(false)
		return *result
	}

	content, err := os.ReadFile(job.Path)
	if err != nil {
		w.fileError(result, job, fmt.Errorf("%w: %w", ErrUnreadableInput, err))
		result.Complete(false)
		return *result
	}
	text := string(content)

	index := 0
	for tuple := range dump.Tuples(text) {
		if err := ctx.Err(); err != nil {
			result.AddWarning(fmt.Sprintf("stopped after %d rows: %v", index, err))
			break
		}
		index++
		result.RowsRead++
		w.processRow(ctx, job, layout, index, tuple, result)
	}

	if job.DryRun {
		result.CleaningOperations = w.recorder.Discard()
	} else {
		result.CleaningOperations = w.recorder.Pending()
		if err := w.recorder.Flush(ctx); err != nil {
			logger.Warn("Failed to record cleaning operations", zap.Error(err))
			result.AddWarning(err.Error())
		}
	}

	result.Complete(true)
	logger.Info("Finished entity migration",
		zap.Int64("rows", result.RowsRead),
		zap.Int64("migrated", result.Migrated),
		zap.Int64("skipped", result.Skipped),
		zap.Int64("errors", result.Failed),
		zap.Duration("duration", result.Duration))
	return *result
}

func (w *Worker) fileError(result *TransferResult, job EntityJob, err error) {
	record := NewErrorRecord(err, ErrorCategoryFileLevel).WithEntity(job.Entity).WithColumn("file", job.Path)
	w.errors.RecordError(record)
	result.AddFileError(record)
}

// processRow migrates one tuple. Diagnostics of rows that are not written
// are withdrawn.
func (w *Worker) processRow(
	ctx context.Context,
	job EntityJob,
	layout *model.TableMetadata,
	index int,
	tuple dump.RawTuple,
	result *TransferResult,
) {
	mark := w.recorder.Mark()
	outcome, rowID, err := w.migrateRow(ctx, job, layout, tuple)
	if outcome != rowMigrated {
		w.recorder.Rewind(mark)
	}

	switch outcome {
	case rowMigrated:
		result.AddMigrated()
	case rowUnpublished:
		result.AddSkipped(SkipUnpublished)
		w.logger.Debug("Skipping unpublished row",
			zap.String("entity", string(job.Entity)), zap.Int("row", index), zap.String("id", rowID))
	case rowExisting:
		result.AddSkipped(SkipExisting)
	case rowFailed:
		record := NewErrorRecord(err, w.errors.CategorizeError(err)).
			WithEntity(job.Entity).
			WithRow(index, rowID)
		w.errors.RecordError(record)
		result.AddError(record)
	}
}

type rowOutcome int

const (
	rowMigrated rowOutcome = iota
	rowUnpublished
	rowExisting
	rowFailed
)

func (w *Worker) migrateRow(
	ctx context.Context,
	job EntityJob,
	layout *model.TableMetadata,
	tuple dump.RawTuple,
) (rowOutcome, string, error) {
	fields := tuple.Clean()
	row, surplus, err := layout.Bind(fields)
	if err != nil {
		rowID := ""
		if len(fields) > 0 {
			rowID = fields[0]
		}
		if len(fields) >= len(layout.Columns) {
			return rowFailed, rowID, fmt.Errorf("%w: %w", ErrMissingField, err)
		}
		return rowFailed, rowID, fmt.Errorf("%w: %w", ErrMalformedRow, err)
	}
	rowID := row["id"]
	if surplus > 0 {
		w.logger.Warn("Ignoring extra fields",
			zap.String("entity", string(job.Entity)),
			zap.String("id", rowID),
			zap.Int("extra", surplus))
	}

	if !w.builder.Published(row) {
		return rowUnpublished, rowID, nil
	}

	if _, err := w.store.FindRecord(ctx, job.Entity, rowID); err == nil {
		return rowExisting, rowID, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return rowFailed, rowID, fmt.Errorf("checking existing record: %w", err)
	}
	if job.DryRun && w.plan != nil && w.plan.hasRecord(job.Entity, rowID) {
		return rowExisting, rowID, nil
	}

	record, err := w.builder.Build(job.Entity, row, w.recorder)
	if err != nil {
		return rowFailed, rowID, err
	}

	author, source, err := w.authors.Resolve(ctx, row["author"])
	if err != nil {
		return rowFailed, rowID, err
	}
	record.AuthorID = author.ID
	if source != AuthorMatched {
		w.recorder.Add(cleaner.AuthorOperation(
			w.recorder.Context(job.Entity, "author", rowID),
			row["author"], author.ID, "author_not_found"))
	}

	if job.DryRun {
		if w.plan != nil {
			w.plan.addRecord(job.Entity, rowID)
		}
		return rowMigrated, rowID, nil
	}

	stamp(record, w.now().UTC())
	if _, err := w.store.CreateRecord(ctx, record); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return rowExisting, rowID, nil
		}
		return rowFailed, rowID, fmt.Errorf("creating record: %w", err)
	}
	return rowMigrated, rowID, nil
}
