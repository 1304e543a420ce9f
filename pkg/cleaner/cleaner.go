// pkg/cleaner/cleaner.go
package cleaner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/David-Botos/content-migrate/pkg/model"
)

// Sink persists cleaning operations
type Sink interface {
	RecordCleaningOperations(ctx context.Context, ops []model.CleaningOperation) error
}

// Recorder collects cleaning operations for one run and flushes them to a
// sink in batches
type Recorder struct {
	sink      Sink
	logger    *zap.Logger
	runID     string
	batchSize int
	now       func() time.Time

	mu       sync.Mutex
	pending  []model.CleaningOperation
	recorded int
	counts   map[string]int
}

// NewRecorder creates a recorder for a run. An empty runID gets a fresh uuid.
func NewRecorder(sink Sink, runID string, logger *zap.Logger) (*Recorder, error) {
	if sink == nil {
		return nil, errors.New("cleaning operation sink cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if runID == "" {
		runID = uuid.New().String()
	}

	return &Recorder{
		sink:      sink,
		logger:    logger,
		runID:     runID,
		batchSize: 500,
		now:       time.Now,
		counts:    make(map[string]int),
	}, nil
}

// RunID returns the run the recorder stamps on every operation
func (r *Recorder) RunID() string {
	return r.runID
}

// Context returns a CleaningContext for one field of one row
func (r *Recorder) Context(entity model.EntityType, column, rowID string) model.CleaningContext {
	return model.CleaningContext{
		RunID:         r.runID,
		EntityType:    entity,
		ColumnName:    column,
		RowIdentifier: rowID,
	}
}

// Add queues an operation, filling its id, run and timestamp
func (r *Recorder) Add(op model.CleaningOperation) {
	if op.ID == "" {
		op.ID = uuid.New().String()
	}
	if op.RunID == "" {
		op.RunID = r.runID
	}
	if op.CleanedAt.IsZero() {
		op.CleanedAt = r.now().UTC()
	}

	r.mu.Lock()
	r.pending = append(r.pending, op)
	r.counts[op.Operation]++
	r.mu.Unlock()

	r.logger.Debug("Cleaned value",
		zap.String("entity", string(op.EntityType)),
		zap.String("row", op.RowIdentifier),
		zap.String("column", op.ColumnName),
		zap.String("operation", op.Operation),
		zap.String("reason", op.Reason))
}

// Pending returns the number of queued operations
func (r *Recorder) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Recorded returns the number of operations flushed so far
func (r *Recorder) Recorded() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recorded
}

// Counts returns queued and flushed operations by operation name
func (r *Recorder) Counts() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int, len(r.counts))
	for k, v := range r.counts {
		out[k] = v
	}
	return out
}

// Mark returns a position that Rewind can return to
func (r *Recorder) Mark() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Rewind drops operations queued after mark. Rows that end up not migrated
// use it to withdraw their diagnostics.
func (r *Recorder) Rewind(mark int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if mark < 0 || mark >= len(r.pending) {
		return
	}
	for _, op := range r.pending[mark:] {
		r.counts[op.Operation]--
		if r.counts[op.Operation] <= 0 {
			delete(r.counts, op.Operation)
		}
	}
	r.pending = r.pending[:mark]
}

// Discard drops queued operations without writing them. Dry runs use it.
func (r *Recorder) Discard() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.pending)
	r.pending = nil
	return n
}

// Flush writes queued operations in batches. Operations that fail to write
// stay queued.
func (r *Recorder) Flush(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for len(r.pending) > 0 {
		n := min(r.batchSize, len(r.pending))
		if err := r.sink.RecordCleaningOperations(ctx, r.pending[:n]); err != nil {
			return fmt.Errorf("failed to record cleaning operations: %w", err)
		}
		r.pending = r.pending[n:]
		r.recorded += n
	}

	if r.recorded > 0 {
		r.logger.Info("Recorded cleaning operations", zap.Int("count", r.recorded))
	}
	return nil
}
