package transfer

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/content-migrate/pkg/model"
)

var (
	// ErrMalformedRow is returned when a tuple cannot be bound to its layout
	ErrMalformedRow = errors.New("malformed row")
	// ErrMissingField is returned when a required field is empty
	ErrMissingField = errors.New("missing required field")
	// ErrNoAuthor is returned when no user exists to own a record
	ErrNoAuthor = errors.New("no author available")
	// ErrUnreadableInput is returned when a dump or export file cannot be read
	ErrUnreadableInput = errors.New("input file unreadable")
)

// ErrorCategory defines categories of errors during migration
type ErrorCategory int

const (
	// Error categories with increasing severity
	ErrorCategoryNone ErrorCategory = iota
	ErrorCategoryWarning
	ErrorCategoryDataConversion
	ErrorCategoryValidation
	ErrorCategoryRowLevel
	ErrorCategoryFileLevel
)

// String returns a string representation of the error category
func (ec ErrorCategory) String() string {
	switch ec {
	case ErrorCategoryNone:
		return "None"
	case ErrorCategoryWarning:
		return "Warning"
	case ErrorCategoryDataConversion:
		return "DataConversion"
	case ErrorCategoryValidation:
		return "Validation"
	case ErrorCategoryRowLevel:
		return "RowLevel"
	case ErrorCategoryFileLevel:
		return "FileLevel"
	default:
		return fmt.Sprintf("Unknown(%d)", ec)
	}
}

// MarshalText lets categories key JSON maps by name
func (ec ErrorCategory) MarshalText() ([]byte, error) {
	return []byte(ec.String()), nil
}

// ErrorRecord represents a single error during migration
type ErrorRecord struct {
	Category    ErrorCategory
	Step        string // entity type or "users"
	RowIndex    int    // 1-based tuple position, 0 when not row-specific
	RowID       string
	ColumnName  string
	SourceValue string
	Error       error
	Message     string // Derived from Error but stored for serialization
	Timestamp   time.Time
}

// NewErrorRecord creates a new error record with current timestamp
func NewErrorRecord(err error, category ErrorCategory) ErrorRecord {
	record := ErrorRecord{
		Category:  category,
		Error:     err,
		Timestamp: time.Now(),
	}

	if err != nil {
		record.Message = err.Error()
	}

	return record
}

// WithEntity adds the migration step to the error record
func (r ErrorRecord) WithEntity(entity model.EntityType) ErrorRecord {
	r.Step = string(entity)
	return r
}

// WithStep adds a step name that is not an entity type
func (r ErrorRecord) WithStep(step string) ErrorRecord {
	r.Step = step
	return r
}

// WithRow adds row information to the error record
func (r ErrorRecord) WithRow(index int, rowID string) ErrorRecord {
	r.RowIndex = index
	r.RowID = rowID
	return r
}

// WithColumn adds column information to the error record
func (r ErrorRecord) WithColumn(columnName string, sourceValue string) ErrorRecord {
	r.ColumnName = columnName
	r.SourceValue = sourceValue
	return r
}

// Fields returns zap fields describing the record
func (r ErrorRecord) Fields() []zap.Field {
	fields := []zap.Field{
		zap.String("category", r.Category.String()),
		zap.String("step", r.Step),
	}
	if r.RowIndex > 0 {
		fields = append(fields, zap.Int("row", r.RowIndex))
	}
	if r.RowID != "" {
		fields = append(fields, zap.String("id", r.RowID))
	}
	if r.ColumnName != "" {
		fields = append(fields, zap.String("column", r.ColumnName))
	}
	if r.Error != nil {
		fields = append(fields, zap.Error(r.Error))
	}
	return fields
}

// String returns a formatted error message
func (r ErrorRecord) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] ", r.Category))

	if r.Step != "" {
		sb.WriteString(fmt.Sprintf("Step: %s ", r.Step))
	}

	if r.RowIndex > 0 {
		sb.WriteString(fmt.Sprintf("Row: %d ", r.RowIndex))
	}

	if r.RowID != "" {
		sb.WriteString(fmt.Sprintf("ID: %s ", r.RowID))
	}

	if r.ColumnName != "" {
		sb.WriteString(fmt.Sprintf("Column: %s ", r.ColumnName))
		if r.SourceValue != "" {
			sb.WriteString(fmt.Sprintf("Value: %q ", r.SourceValue))
		}
	}

	if r.Error != nil {
		sb.WriteString(fmt.Sprintf("Error: %s", r.Error.Error()))
	} else if r.Message != "" {
		sb.WriteString(fmt.Sprintf("Error: %s", r.Message))
	}

	return strings.TrimSpace(sb.String())
}

// ErrorHandler counts errors and keeps a few samples per category
type ErrorHandler struct {
	logger       *zap.Logger
	errorCounts  map[ErrorCategory]int
	sampleErrors map[ErrorCategory][]ErrorRecord
	stepErrors   map[string]int
	mu           sync.Mutex
	maxSamples   int
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *zap.Logger) *ErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorHandler{
		logger:       logger,
		errorCounts:  make(map[ErrorCategory]int),
		sampleErrors: make(map[ErrorCategory][]ErrorRecord),
		stepErrors:   make(map[string]int),
		maxSamples:   5, // Store up to 5 sample errors per category
	}
}

// CategorizeError determines the category of an error
func (eh *ErrorHandler) CategorizeError(err error) ErrorCategory {
	switch {
	case err == nil:
		return ErrorCategoryNone
	case errors.Is(err, ErrUnreadableInput):
		return ErrorCategoryFileLevel
	case errors.Is(err, ErrMissingField):
		return ErrorCategoryValidation
	default:
		return ErrorCategoryRowLevel
	}
}

// RecordError saves an error occurrence and logs it with its row context
func (eh *ErrorHandler) RecordError(record ErrorRecord) {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	eh.errorCounts[record.Category]++
	if record.Step != "" {
		eh.stepErrors[record.Step]++
	}
	if len(eh.sampleErrors[record.Category]) < eh.maxSamples {
		eh.sampleErrors[record.Category] = append(eh.sampleErrors[record.Category], record)
	}

	switch record.Category {
	case ErrorCategoryWarning, ErrorCategoryDataConversion:
		eh.logger.Warn("Row warning", record.Fields()...)
	default:
		eh.logger.Error("Migration error", record.Fields()...)
	}
}

// GetErrorSummary returns error counts by category
func (eh *ErrorHandler) GetErrorSummary() map[ErrorCategory]int {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	summary := make(map[ErrorCategory]int, len(eh.errorCounts))
	for category, count := range eh.errorCounts {
		summary[category] = count
	}
	return summary
}

// GetErrorSamples returns sample errors for each category
func (eh *ErrorHandler) GetErrorSamples() map[ErrorCategory][]ErrorRecord {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	samples := make(map[ErrorCategory][]ErrorRecord, len(eh.sampleErrors))
	for category, records := range eh.sampleErrors {
		samples[category] = append([]ErrorRecord(nil), records...)
	}
	return samples
}

// GetStepErrorCounts returns error counts by step
func (eh *ErrorHandler) GetStepErrorCounts() map[string]int {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	counts := make(map[string]int, len(eh.stepErrors))
	for step, count := range eh.stepErrors {
		counts[step] = count
	}
	return counts
}
