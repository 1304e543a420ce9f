package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/David-Botos/content-migrate/pkg/converter"
	"github.com/David-Botos/content-migrate/pkg/model"
	"github.com/David-Botos/content-migrate/pkg/store"
)

// exportedUser is one object of the user export. Timestamps are kept as raw
// JSON so both strings and epoch numbers are accepted.
type exportedUser struct {
	ID                string          `json:"id"`
	Email             string          `json:"email"`
	EncryptedPassword string          `json:"encrypted_password"`
	CreatedAt         json.RawMessage `json:"created_at"`
	UpdatedAt         json.RawMessage `json:"updated_at"`
}

// UserImporter creates users from the JSON export, keyed by email
type UserImporter struct {
	store     store.RecordStore
	converter *converter.TypeConverter
	errors    *ErrorHandler
	logger    *zap.Logger
	plan      *dryRunPlan // nil outside dry runs
}

// NewUserImporter creates an importer
func NewUserImporter(s store.RecordStore, conv *converter.TypeConverter, errorHandler *ErrorHandler, logger *zap.Logger) *UserImporter {
	if logger == nil {
		logger = zap.L().Named("users")
	}
	if errorHandler == nil {
		errorHandler = NewErrorHandler(logger)
	}
	return &UserImporter{store: s, converter: conv, errors: errorHandler, logger: logger}
}

// ProcessJob imports the export file named by the job
func (u *UserImporter) ProcessJob(ctx context.Context, job EntityJob) TransferResult {
	result := NewTransferResult(job)
	u.logger.Info("Importing users", zap.String("file", job.Path), zap.Bool("dry_run", job.DryRun))

	users, err := readUserExport(job.Path)
	if err != nil {
		record := NewErrorRecord(err, ErrorCategoryFileLevel).WithStep(StepUsers).WithColumn("file", job.Path)
		u.errors.RecordError(record)
		result.AddFileError(record)
		result.Complete(false)
		return *result
	}

	for i, eu := range users {
		if err := ctx.Err(); err != nil {
			result.AddWarning(fmt.Sprintf("stopped after %d users: %v", i, err))
			break
		}
		result.RowsRead++

		if err := u.importUser(ctx, eu, job.DryRun, result); err != nil {
			record := NewErrorRecord(err, u.errors.CategorizeError(err)).
				WithStep(StepUsers).
				WithRow(i+1, eu.ID)
			u.errors.RecordError(record)
			result.AddError(record)
		}
	}

	result.Complete(true)
	u.logger.Info("Finished user import",
		zap.Int64("users", result.RowsRead),
		zap.Int64("created", result.Migrated),
		zap.Int64("skipped", result.Skipped),
		zap.Int64("errors", result.Failed))
	return *result
}

func (u *UserImporter) importUser(ctx context.Context, eu exportedUser, dryRun bool, result *TransferResult) error {
	email := strings.TrimSpace(eu.Email)
	if email == "" {
		return fmt.Errorf("%w: email", ErrMissingField)
	}

	_, err := u.store.FindUser(ctx, store.UserCriteria{Email: email})
	if err == nil {
		result.AddSkipped(SkipExisting)
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("looking up user %s: %w", email, err)
	}

	user := model.User{
		ID:                strings.TrimSpace(eu.ID),
		Email:             email,
		EncryptedPassword: eu.EncryptedPassword,
		CreatedAt:         u.converter.ParseTimestamp(rawString(eu.CreatedAt)).Value,
		UpdatedAt:         u.converter.ParseTimestamp(rawString(eu.UpdatedAt)).Value,
	}
	if user.ID == "" {
		return fmt.Errorf("%w: id", ErrMissingField)
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = user.CreatedAt
	}

	if dryRun {
		return u.planUser(ctx, user, result)
	}

	if _, err := u.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			result.AddSkipped(SkipExisting)
			return nil
		}
		return fmt.Errorf("creating user %s: %w", email, err)
	}
	result.AddMigrated()
	return nil
}

// planUser applies the store's uniqueness rules to a user a dry run would
// create, so author lookups later in the run find it.
func (u *UserImporter) planUser(ctx context.Context, user model.User, result *TransferResult) error {
	if u.plan == nil {
		result.AddMigrated()
		return nil
	}

	_, err := u.store.FindUser(ctx, store.UserCriteria{ID: user.ID})
	if err == nil {
		result.AddSkipped(SkipExisting)
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("looking up user %s: %w", user.ID, err)
	}

	if _, ok := u.plan.addUser(user); !ok {
		result.AddSkipped(SkipExisting)
		return nil
	}
	result.AddMigrated()
	return nil
}

func readUserExport(path string) ([]exportedUser, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableInput, err)
	}

	var users []exportedUser
	if err := json.Unmarshal(content, &users); err != nil {
		return nil, fmt.Errorf("%w: decoding user export: %w", ErrUnreadableInput, err)
	}
	return users, nil
}

// rawString unwraps a JSON string or returns a bare token as written
func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}
