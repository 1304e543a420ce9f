package transfer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/content-migrate/pkg/converter"
	"github.com/David-Botos/content-migrate/pkg/dump"
	"github.com/David-Botos/content-migrate/pkg/model"
	"github.com/David-Botos/content-migrate/pkg/store"
)

// VerificationReport compares one dump file with the stored records
type VerificationReport struct {
	Entity           model.EntityType
	Path             string
	VerificationTime time.Time
	DumpTuples       int64
	MalformedRows    int64
	UnpublishedRows  int64
	ExpectedRecords  int64
	StoredRecords    int64
	CountMatches     bool
	SampleSize       int
	MissingIDs       []string
	Duration         time.Duration
}

// Passed reports whether counts match and no sampled row is missing
func (r *VerificationReport) Passed() bool {
	return r.CountMatches && len(r.MissingIDs) == 0
}

// Verifier checks migrated records against the dump files
type Verifier struct {
	store     store.RecordStore
	converter *converter.TypeConverter
	logger    *zap.Logger
	timeout   time.Duration
}

// NewVerifier creates a new verifier
func NewVerifier(s store.RecordStore, conv *converter.TypeConverter, logger *zap.Logger) *Verifier {
	if logger == nil {
		logger = zap.L().Named("verifier")
	}
	if conv == nil {
		conv = converter.NewTypeConverter(zap.NewNop())
	}
	return &Verifier{
		store:     s,
		converter: conv,
		logger:    logger,
		timeout:   time.Minute * 5, // Default 5-minute timeout
	}
}

// WithTimeout sets a custom timeout for verification operations
func (v *Verifier) WithTimeout(timeout time.Duration) *Verifier {
	v.timeout = timeout
	return v
}

// VerifyEntity counts the migratable rows of a dump file, compares them with
// the store and looks up a sample of their ids.
func (v *Verifier) VerifyEntity(ctx context.Context, entity model.EntityType, path string) (*VerificationReport, error) {
	v.logger.Info("Verifying entity", zap.String("entity", string(entity)), zap.String("file", path))

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	startTime := time.Now()
	report := &VerificationReport{
		Entity:           entity,
		Path:             path,
		VerificationTime: startTime,
	}

	layout, err := model.Layout(entity)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableInput, err)
	}

	var ids []string
	for tuple := range dump.Tuples(string(content)) {
		report.DumpTuples++
		row, _, err := layout.Bind(tuple.Clean())
		if err != nil {
			report.MalformedRows++
			continue
		}
		if raw, ok := row["published"]; ok {
			if published, ok := v.converter.ParseBool(raw); ok && !published {
				report.UnpublishedRows++
				continue
			}
		}
		ids = append(ids, strings.TrimSpace(row["id"]))
	}
	report.ExpectedRecords = int64(len(ids))

	stored, err := v.store.CountRecords(ctx, entity)
	if err != nil {
		return nil, fmt.Errorf("failed to count %s records: %w", entity, err)
	}
	report.StoredRecords = stored
	report.CountMatches = stored == report.ExpectedRecords

	sample := sampleIDs(ids, calculateSampleSize(int64(len(ids))))
	report.SampleSize = len(sample)
	for _, id := range sample {
		_, err := v.store.FindRecord(ctx, entity, id)
		if errors.Is(err, store.ErrNotFound) {
			report.MissingIDs = append(report.MissingIDs, id)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to look up %s %s: %w", entity, id, err)
		}
	}

	report.Duration = time.Since(startTime)
	v.logger.Info("Verification completed",
		zap.String("entity", string(entity)),
		zap.Int64("expected", report.ExpectedRecords),
		zap.Int64("stored", report.StoredRecords),
		zap.Int("missing", len(report.MissingIDs)),
		zap.Duration("duration", report.Duration))

	return report, nil
}

// calculateSampleSize determines an appropriate sample size based on row count
func calculateSampleSize(rowCount int64) int {
	switch {
	case rowCount <= 1000:
		return int(rowCount)
	case rowCount <= 10000:
		return 500
	default:
		return 1000
	}
}

// sampleIDs picks n ids spread evenly over the list
func sampleIDs(ids []string, n int) []string {
	if n >= len(ids) {
		return ids
	}
	sample := make([]string, 0, n)
	step := float64(len(ids)) / float64(n)
	for i := 0; i < n; i++ {
		sample = append(sample, ids[int(float64(i)*step)])
	}
	return sample
}

// FormatVerificationReports renders reports as a table
func FormatVerificationReports(reports []*VerificationReport) string {
	var sb strings.Builder
	sb.WriteString("Verification Report\n===================\n")
	for _, r := range reports {
		status := "OK"
		if !r.Passed() {
			status = "MISMATCH"
		}
		fmt.Fprintf(&sb, "- %-12s %-8s tuples %d, malformed %d, unpublished %d, expected %d, stored %d",
			r.Entity, status, r.DumpTuples, r.MalformedRows, r.UnpublishedRows, r.ExpectedRecords, r.StoredRecords)
		if len(r.MissingIDs) > 0 {
			shown := r.MissingIDs
			if len(shown) > 10 {
				shown = shown[:10]
			}
			fmt.Fprintf(&sb, ", missing %d of %d sampled (%s)", len(r.MissingIDs), r.SampleSize, strings.Join(shown, ", "))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
