package transfer

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// StepMetrics tracks counters for one migration step
type StepMetrics struct {
	Step               string           `json:"step"`
	Path               string           `json:"file"`
	Success            bool             `json:"success"`
	RowsRead           int64            `json:"rowsRead"`
	Migrated           int64            `json:"migrated"`
	Skipped            int64            `json:"skipped"`
	Errors             int64            `json:"errors"`
	SkipReasons        map[string]int64 `json:"skipReasons,omitempty"`
	CleaningOperations int              `json:"cleaningOperations"`
	FileError          string           `json:"fileError,omitempty"`
	Duration           time.Duration    `json:"-"`
}

// TransferMetrics collects the counters of a migration run
type TransferMetrics struct {
	mu               sync.Mutex
	logger           *zap.Logger
	RunID            string
	DryRun           bool
	StartTime        time.Time
	EndTime          time.Time
	Steps            []*StepMetrics
	TotalRowsRead    int64
	TotalMigrated    int64
	TotalSkipped     int64
	TotalErrors      int64
	TotalCleaningOps int
	FailedSteps      int
	ErrorCounts      map[ErrorCategory]int
}

// NewTransferMetrics creates a new TransferMetrics instance
func NewTransferMetrics(runID string, dryRun bool, logger *zap.Logger) *TransferMetrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransferMetrics{
		logger:      logger,
		RunID:       runID,
		DryRun:      dryRun,
		StartTime:   time.Now(),
		ErrorCounts: make(map[ErrorCategory]int),
	}
}

// RecordStep records the result of a completed step
func (tm *TransferMetrics) RecordStep(result TransferResult) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	sm := &StepMetrics{
		Step:               result.Step,
		Path:               result.Path,
		Success:            result.Success,
		RowsRead:           result.RowsRead,
		Migrated:           result.Migrated,
		Skipped:            result.Skipped,
		Errors:             result.Failed,
		SkipReasons:        make(map[string]int64, len(result.SkipReasons)),
		CleaningOperations: result.CleaningOperations,
		Duration:           result.Duration,
	}
	for reason, n := range result.SkipReasons {
		sm.SkipReasons[reason] = n
	}
	if !result.Success && len(result.Errors) > 0 {
		sm.FileError = result.Errors[0].Message
	}
	tm.Steps = append(tm.Steps, sm)

	tm.TotalRowsRead += result.RowsRead
	tm.TotalMigrated += result.Migrated
	tm.TotalSkipped += result.Skipped
	tm.TotalErrors += result.Failed
	tm.TotalCleaningOps += result.CleaningOperations
	if !result.Success {
		tm.FailedSteps++
	}
	for _, err := range result.Errors {
		tm.ErrorCounts[err.Category]++
	}

	tm.logger.Info("Step completed",
		zap.String("step", result.Step),
		zap.Bool("success", result.Success),
		zap.Int64("rowsRead", result.RowsRead),
		zap.Int64("migrated", result.Migrated),
		zap.Int64("skipped", result.Skipped),
		zap.Int64("errors", result.Failed),
		zap.Duration("duration", result.Duration))
}

// Step returns the metrics of a step by name
func (tm *TransferMetrics) Step(name string) (*StepMetrics, bool) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	for _, sm := range tm.Steps {
		if sm.Step == name {
			return sm, true
		}
	}
	return nil, false
}

// Complete marks the run as finished
func (tm *TransferMetrics) Complete() {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	tm.EndTime = time.Now()
	tm.logger.Info("Migration run completed",
		zap.String("run_id", tm.RunID),
		zap.Duration("duration", tm.EndTime.Sub(tm.StartTime)),
		zap.Int64("migrated", tm.TotalMigrated),
		zap.Int64("skipped", tm.TotalSkipped),
		zap.Int64("errors", tm.TotalErrors))
}

// Duration returns the total duration of the run
func (tm *TransferMetrics) Duration() time.Duration {
	if tm.EndTime.IsZero() {
		return time.Since(tm.StartTime)
	}
	return tm.EndTime.Sub(tm.StartTime)
}

// CalculateThroughput returns rows read per second
func (tm *TransferMetrics) CalculateThroughput() float64 {
	seconds := tm.Duration().Seconds()
	if seconds == 0 {
		return 0
	}
	return float64(tm.TotalRowsRead) / seconds
}

// formatDuration formats a duration to a human-readable string
func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

// GenerateMetricsReport creates the run-end summary
func (tm *TransferMetrics) GenerateMetricsReport() string {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	mode := "write"
	if tm.DryRun {
		mode = "dry-run (nothing written)"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `
Migration Report
================
Run ID:                  %s
Mode:                    %s
Duration:                %s

Totals
------
Rows Read:               %d
Migrated:                %d
Skipped:                 %d
Errors:                  %d
Cleaning Ops:            %d
Failed Steps:            %d
Average Throughput:      %.2f rows/sec
`,
		tm.RunID,
		mode,
		formatDuration(tm.Duration()),
		tm.TotalRowsRead,
		tm.TotalMigrated,
		tm.TotalSkipped,
		tm.TotalErrors,
		tm.TotalCleaningOps,
		tm.FailedSteps,
		tm.CalculateThroughput(),
	)

	sb.WriteString("\nSteps\n-----\n")
	for _, sm := range tm.Steps {
		if !sm.Success {
			fmt.Fprintf(&sb, "- %-12s FAILED: %s\n", sm.Step, sm.FileError)
			continue
		}
		fmt.Fprintf(&sb, "- %-12s read %d, migrated %d, skipped %d, errors %d, cleaning ops %d (%s)\n",
			sm.Step, sm.RowsRead, sm.Migrated, sm.Skipped, sm.Errors, sm.CleaningOperations,
			formatDuration(sm.Duration))
		for _, reason := range sortedKeys(sm.SkipReasons) {
			fmt.Fprintf(&sb, "    skipped %s: %d\n", reason, sm.SkipReasons[reason])
		}
	}

	if len(tm.ErrorCounts) > 0 {
		sb.WriteString("\nError Distribution\n------------------\n")
		total := 0
		for _, count := range tm.ErrorCounts {
			total += count
		}
		categories := make([]ErrorCategory, 0, len(tm.ErrorCounts))
		for category := range tm.ErrorCounts {
			categories = append(categories, category)
		}
		sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })
		for _, category := range categories {
			count := tm.ErrorCounts[category]
			fmt.Fprintf(&sb, "- %s: %d (%.1f%%)\n", category, count, getPercentage(float64(count), float64(total)))
		}
	}

	return sb.String()
}

// getPercentage safely calculates a percentage, avoiding division by zero
func getPercentage(value, total float64) float64 {
	if total == 0 {
		return 0
	}
	return (value / total) * 100
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ToJSON serializes metrics to JSON
func (tm *TransferMetrics) ToJSON() ([]byte, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	return json.MarshalIndent(struct {
		RunID            string                `json:"runId"`
		DryRun           bool                  `json:"dryRun"`
		Duration         string                `json:"duration"`
		TotalRowsRead    int64                 `json:"totalRowsRead"`
		TotalMigrated    int64                 `json:"totalMigrated"`
		TotalSkipped     int64                 `json:"totalSkipped"`
		TotalErrors      int64                 `json:"totalErrors"`
		TotalCleaningOps int                   `json:"totalCleaningOps"`
		FailedSteps      int                   `json:"failedSteps"`
		Steps            []*StepMetrics        `json:"steps"`
		ErrorCounts      map[ErrorCategory]int `json:"errorCounts"`
	}{
		RunID:            tm.RunID,
		DryRun:           tm.DryRun,
		Duration:         formatDuration(tm.Duration()),
		TotalRowsRead:    tm.TotalRowsRead,
		TotalMigrated:    tm.TotalMigrated,
		TotalSkipped:     tm.TotalSkipped,
		TotalErrors:      tm.TotalErrors,
		TotalCleaningOps: tm.TotalCleaningOps,
		FailedSteps:      tm.FailedSteps,
		Steps:            tm.Steps,
		ErrorCounts:      tm.ErrorCounts,
	}, "", "  ")
}
