package transfer

import (
	"time"

	"github.com/google/uuid"

	"github.com/David-Botos/content-migrate/pkg/model"
)

// StepUsers names the user import step in results and reports
const StepUsers = "users"

// Skip reasons
const (
	SkipUnpublished = "unpublished"
	SkipExisting    = "already_migrated"
)

// EntityJob represents the migration of one dump file
type EntityJob struct {
	ID        string           // Unique job identifier
	Entity    model.EntityType // Entity type, empty for the users step
	Path      string           // Input file
	DryRun    bool             // Skip store writes
	CreatedAt time.Time        // Job creation timestamp
}

// NewEntityJob creates a new job for an entity dump file
func NewEntityJob(entity model.EntityType, path string) EntityJob {
	return EntityJob{
		ID:        uuid.New().String(),
		Entity:    entity,
		Path:      path,
		CreatedAt: time.Now(),
	}
}

// WithDryRun sets dry-run mode and returns the modified job
func (j EntityJob) WithDryRun(dryRun bool) EntityJob {
	j.DryRun = dryRun
	return j
}

// Step returns the name used for the job in reports
func (j EntityJob) Step() string {
	if j.Entity == "" {
		return StepUsers
	}
	return string(j.Entity)
}

// TransferResult holds the counters of one job
type TransferResult struct {
	JobID              string
	Step               string
	Path               string
	DryRun             bool
	Success            bool
	RowsRead           int64
	Migrated           int64
	Skipped            int64
	Failed             int64
	SkipReasons        map[string]int64
	CleaningOperations int
	Errors             []ErrorRecord
	Warnings           []string
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}

// NewTransferResult initializes a result for a job
func NewTransferResult(job EntityJob) *TransferResult {
	return &TransferResult{
		JobID:       job.ID,
		Step:        job.Step(),
		Path:        job.Path,
		DryRun:      job.DryRun,
		SkipReasons: make(map[string]int64),
		StartTime:   time.Now(),
		Errors:      make([]ErrorRecord, 0),
		Warnings:    make([]string, 0),
	}
}

// Complete marks the job as complete and calculates duration
func (r *TransferResult) Complete(success bool) {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	r.Success = success
}

// AddMigrated counts a written (or, in dry-run, writable) row
func (r *TransferResult) AddMigrated() {
	r.Migrated++
}

// AddSkipped counts a row left alone for the given reason
func (r *TransferResult) AddSkipped(reason string) {
	r.Skipped++
	r.SkipReasons[reason]++
}

// AddError counts a failed row
func (r *TransferResult) AddError(err ErrorRecord) {
	r.Failed++
	r.Errors = append(r.Errors, err)
}

// AddFileError records a failure that prevented reading the input
func (r *TransferResult) AddFileError(err ErrorRecord) {
	r.Errors = append(r.Errors, err)
}

// AddWarning adds a warning to the result
func (r *TransferResult) AddWarning(warning string) {
	r.Warnings = append(r.Warnings, warning)
}

// ErrorCount returns the number of errors
func (r *TransferResult) ErrorCount() int {
	return len(r.Errors)
}

// HasErrors checks if any errors occurred
func (r *TransferResult) HasErrors() bool {
	return len(r.Errors) > 0
}
