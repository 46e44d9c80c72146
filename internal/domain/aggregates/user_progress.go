package aggregates

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/quizprogress-backend/internal/domain/user"
)

var UserProgressAggregateContract = Contract{
	Name:        "Progress.UserProgressAggregate",
	Tables:      []string{"user", "user_favorite", "quiz_attempt"},
	Concurrency: VersionCAS,
	Notes:       "User counters, favorites and the attempt ledger change together under one version bump.",
}

// UserProgressAggregate is the persistence contract consumed by the progress service.
//
// Failures return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeConflict, CodeUnavailable, CodeCanceled, CodeInternal.
type UserProgressAggregate interface {
	Aggregate

	// FindUserByID loads the user with favorites and attempts (ordered by first attempt).
	FindUserByID(ctx context.Context, id uuid.UUID) (*user.User, error)

	// AtomicUpdateUser applies m if the stored version still equals m.ExpectedVersion.
	// A stale version yields CodeConflict; a missing user yields CodeNotFound.
	AtomicUpdateUser(ctx context.Context, id uuid.UUID, m user.Mutation) (*user.User, error)
}
