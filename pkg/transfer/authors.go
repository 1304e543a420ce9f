package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/David-Botos/content-migrate/pkg/dump"
	"github.com/David-Botos/content-migrate/pkg/model"
	"github.com/David-Botos/content-migrate/pkg/store"
)

// AuthorSource tells how an author was resolved
type AuthorSource int

const (
	// AuthorMatched means the source author id matched a stored user
	AuthorMatched AuthorSource = iota
	// AuthorFallback means the least recently created user was used
	AuthorFallback
	// AuthorDefault means the configured default author was used
	AuthorDefault
)

// AuthorResolver finds the user owning a migrated record. Every call queries
// the store so users created by earlier rows are visible to later ones. In a
// dry run the users the run would have created are consulted as well.
type AuthorResolver struct {
	store        store.RecordStore
	logger       *zap.Logger
	defaultEmail string
	now          func() time.Time
	plan         *dryRunPlan // nil outside dry runs
}

// NewAuthorResolver creates a resolver. defaultEmail may be empty.
func NewAuthorResolver(s store.RecordStore, defaultEmail string, logger *zap.Logger) *AuthorResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthorResolver{
		store:        s,
		logger:       logger,
		defaultEmail: defaultEmail,
		now:          time.Now,
	}
}

// Resolve returns the author for a source author id. It returns ErrNoAuthor
// when no user exists and no default author is configured.
func (a *AuthorResolver) Resolve(ctx context.Context, sourceID string) (*model.User, AuthorSource, error) {
	if !dump.IsNull(sourceID) {
		user, err := a.findUser(ctx, store.UserCriteria{ID: sourceID})
		switch {
		case err == nil:
			return user, AuthorMatched, nil
		case !errors.Is(err, store.ErrNotFound):
			return nil, 0, fmt.Errorf("looking up author %s: %w", sourceID, err)
		}
	}

	user, err := a.firstUser(ctx)
	switch {
	case err == nil:
		a.logger.Debug("Author not found, using first user",
			zap.String("source_author", sourceID),
			zap.String("user", user.ID))
		return user, AuthorFallback, nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, 0, fmt.Errorf("looking up fallback author: %w", err)
	}

	if a.defaultEmail == "" {
		return nil, 0, ErrNoAuthor
	}

	user, err = a.defaultAuthor(ctx)
	if err != nil {
		return nil, 0, err
	}
	return user, AuthorDefault, nil
}

func (a *AuthorResolver) findUser(ctx context.Context, criteria store.UserCriteria) (*model.User, error) {
	user, err := a.store.FindUser(ctx, criteria)
	if errors.Is(err, store.ErrNotFound) && a.plan != nil {
		if planned, ok := a.plan.findUser(criteria); ok {
			return planned, nil
		}
	}
	return user, err
}

// firstUser returns the least recently created user, planned users included
func (a *AuthorResolver) firstUser(ctx context.Context) (*model.User, error) {
	user, err := a.store.FindFirstUser(ctx)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		user = nil
	}
	if a.plan != nil {
		if planned, ok := a.plan.firstUser(); ok && (user == nil || planned.CreatedAt.Before(user.CreatedAt)) {
			return planned, nil
		}
	}
	if user == nil {
		return nil, store.ErrNotFound
	}
	return user, nil
}

func (a *AuthorResolver) defaultAuthor(ctx context.Context) (*model.User, error) {
	now := a.now().UTC()
	user := model.User{
		ID:        uuid.New().String(),
		Email:     a.defaultEmail,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if a.plan != nil {
		if planned, ok := a.plan.findUser(store.UserCriteria{Email: a.defaultEmail}); ok {
			return planned, nil
		}
		planned, _ := a.plan.addUser(user)
		a.logger.Info("Would create default author", zap.String("email", user.Email))
		return planned, nil
	}

	created, err := a.store.CreateUser(ctx, user)
	if errors.Is(err, store.ErrAlreadyExists) {
		return a.store.FindUser(ctx, store.UserCriteria{Email: a.defaultEmail})
	}
	if err != nil {
		return nil, fmt.Errorf("creating default author: %w", err)
	}

	a.logger.Info("Created default author",
		zap.String("id", created.ID),
		zap.String("email", created.Email))
	return created, nil
}
