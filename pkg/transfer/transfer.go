// Package transfer migrates legacy dump files into the record store.
package transfer

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/David-Botos/content-migrate/pkg/address"
	"github.com/David-Botos/content-migrate/pkg/category"
	"github.com/David-Botos/content-migrate/pkg/cleaner"
	"github.com/David-Botos/content-migrate/pkg/converter"
	"github.com/David-Botos/content-migrate/pkg/model"
	"github.com/David-Botos/content-migrate/pkg/store"
)

// Options selects the inputs and mode of a run
type Options struct {
	RunID              string
	DumpFiles          map[model.EntityType]string
	UsersFile          string // empty skips the user import
	Entities           []model.EntityType
	DryRun             bool
	DefaultAuthorEmail string
}

// TransferManager sequences the user import and the entity steps of a run
type TransferManager struct {
	opts         Options
	store        store.RecordStore
	logger       *zap.Logger
	metrics      *TransferMetrics
	errorHandler *ErrorHandler
	worker       *Worker
	users        *UserImporter
	recorder     *cleaner.Recorder
}

// NewTransferManager wires a manager. Nil parsers fall back to their defaults.
func NewTransferManager(
	s store.RecordStore,
	conv *converter.TypeConverter,
	mapper *category.Mapper,
	addresses *address.Parser,
	opts Options,
	logger *zap.Logger,
) (*TransferManager, error) {
	if s == nil {
		return nil, errors.New("record store cannot be nil")
	}
	if logger == nil {
		logger = zap.L().Named("transfer")
	}
	if conv == nil {
		conv = converter.NewTypeConverter(logger.Named("converter"))
	}
	if mapper == nil {
		mapper = category.DefaultMapper()
	}
	if addresses == nil {
		addresses = address.NewParser(logger.Named("address"))
	}
	if opts.RunID == "" {
		opts.RunID = uuid.New().String()
	}
	if len(opts.Entities) == 0 {
		opts.Entities = model.AllEntityTypes()
	}

	recorder, err := cleaner.NewRecorder(s, opts.RunID, logger.Named("cleaner"))
	if err != nil {
		return nil, err
	}

	errorHandler := NewErrorHandler(logger)
	authors := NewAuthorResolver(s, opts.DefaultAuthorEmail, logger.Named("authors"))
	builder := NewRecordBuilder(conv, mapper, addresses)
	worker := NewWorker(s, builder, authors, recorder, errorHandler, logger.Named("worker"))
	users := NewUserImporter(s, conv, errorHandler, logger.Named("users"))
	if opts.DryRun {
		plan := newDryRunPlan()
		authors.plan = plan
		worker.plan = plan
		users.plan = plan
	}

	return &TransferManager{
		opts:         opts,
		store:        s,
		logger:       logger,
		metrics:      NewTransferMetrics(opts.RunID, opts.DryRun, logger.Named("metrics")),
		errorHandler: errorHandler,
		worker:       worker,
		users:        users,
		recorder:     recorder,
	}, nil
}

// Run imports users, then migrates each selected entity type in order. A
// failed step is reported in the metrics and the run moves on.
func (tm *TransferManager) Run(ctx context.Context) (*TransferMetrics, error) {
	tm.logger.Info("Starting migration run",
		zap.String("run_id", tm.opts.RunID),
		zap.Bool("dry_run", tm.opts.DryRun),
		zap.Int("entities", len(tm.opts.Entities)))

	if tm.opts.UsersFile != "" {
		job := NewEntityJob("", tm.opts.UsersFile).WithDryRun(tm.opts.DryRun)
		tm.metrics.RecordStep(tm.users.ProcessJob(ctx, job))
	}

	for _, entity := range tm.opts.Entities {
		if err := ctx.Err(); err != nil {
			tm.metrics.Complete()
			return tm.metrics, fmt.Errorf("migration interrupted before %s: %w", entity, err)
		}
		if _, err := tm.TransferEntity(ctx, entity); err != nil {
			tm.logger.Error("Entity step failed", zap.String("entity", string(entity)), zap.Error(err))
		}
	}

	tm.metrics.Complete()
	return tm.metrics, nil
}

// TransferEntity migrates one entity dump file and records its metrics
func (tm *TransferManager) TransferEntity(ctx context.Context, entity model.EntityType) (*TransferResult, error) {
	path, ok := tm.opts.DumpFiles[entity]
	if !ok || path == "" {
		err := fmt.Errorf("%w: no dump file configured for %s", ErrUnreadableInput, entity)
		result := NewTransferResult(NewEntityJob(entity, ""))
		record := NewErrorRecord(err, ErrorCategoryFileLevel).WithEntity(entity)
		tm.errorHandler.RecordError(record)
		result.AddFileError(record)
		result.Complete(false)
		tm.metrics.RecordStep(*result)
		return result, err
	}

	job := NewEntityJob(entity, path).WithDryRun(tm.opts.DryRun)
	result := tm.worker.ProcessJob(ctx, job)
	tm.metrics.RecordStep(result)

	if !result.Success {
		return &result, fmt.Errorf("%s step failed: %s", entity, result.Errors[0].Message)
	}
	return &result, nil
}

// RunID returns the id stamped on the run's cleaning operations
func (tm *TransferManager) RunID() string {
	return tm.opts.RunID
}

// GetMetrics returns the current transfer metrics
func (tm *TransferManager) GetMetrics() *TransferMetrics {
	return tm.metrics
}

// GetErrorSummary returns a summary of errors by category
func (tm *TransferManager) GetErrorSummary() map[ErrorCategory]int {
	return tm.errorHandler.GetErrorSummary()
}

// GetErrorSamples returns a few errors per category
func (tm *TransferManager) GetErrorSamples() map[ErrorCategory][]ErrorRecord {
	return tm.errorHandler.GetErrorSamples()
}

// GenerateReport returns the text metrics report
func (tm *TransferManager) GenerateReport() string {
	return tm.metrics.GenerateMetricsReport()
}
