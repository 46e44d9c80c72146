package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/quizprogress-backend/internal/data/repos"
	domainagg "github.com/yungbote/quizprogress-backend/internal/domain/aggregates"
	"github.com/yungbote/quizprogress-backend/internal/domain/user"
	"github.com/yungbote/quizprogress-backend/internal/platform/dbctx"
)

type UserProgressAggregateDeps struct {
	Base BaseDeps

	Users     repos.UserRepo
	Favorites repos.UserFavoriteRepo
	Attempts  repos.QuizAttemptRepo
}

type userProgressAggregate struct {
	deps UserProgressAggregateDeps
}

func NewUserProgressAggregate(deps UserProgressAggregateDeps) domainagg.UserProgressAggregate {
	deps.Base = deps.Base.withDefaults()
	return &userProgressAggregate{deps: deps}
}

func (a *userProgressAggregate) Contract() domainagg.Contract {
	return domainagg.UserProgressAggregateContract
}

func (a *userProgressAggregate) FindUserByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	const op = "Progress.UserProgress.FindUserByID"
	if id == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil)
	}
	if err := a.requireRepos(op); err != nil {
		return nil, err
	}
	var out *user.User
	err := executeRead(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		u, err := a.deps.Users.GetWithProgress(dbc, id)
		if err != nil {
			return err
		}
		if u == nil {
			return domainagg.Errorf(domainagg.CodeNotFound, op, "user not found: %s", id)
		}
		out = u
		return nil
	})
	return out, err
}

func (a *userProgressAggregate) AtomicUpdateUser(ctx context.Context, id uuid.UUID, m user.Mutation) (*user.User, error) {
	const op = "Progress.UserProgress.AtomicUpdateUser"
	if id == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil)
	}
	if err := m.Validate(); err != nil {
		return nil, domainagg.Wrap(domainagg.CodeValidation, op, err)
	}
	if err := a.requireRepos(op); err != nil {
		return nil, err
	}

	var out *user.User
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		ok, err := a.deps.Base.Guard.Apply(dbc, user.User{}.TableName(), id, m.ExpectedVersion, rowUpdates(m))
		if err != nil {
			return err
		}
		if !ok {
			exists, err := a.deps.Users.Exists(dbc, id)
			if err != nil {
				return err
			}
			if !exists {
				return domainagg.Errorf(domainagg.CodeNotFound, op, "user not found: %s", id)
			}
			return StaleVersion(user.User{}.TableName(), id)
		}

		for _, o := range m.Ops {
			switch o.Kind {
			case user.OpAddToSet:
				if _, err := a.deps.Favorites.Add(dbc, id, o.QuizID); err != nil {
					return err
				}
			case user.OpRemoveFromSet:
				if _, err := a.deps.Favorites.Remove(dbc, id, o.QuizID); err != nil {
					return err
				}
			case user.OpUpsertAttempt:
				if _, err := a.deps.Attempts.Upsert(dbc, id, *o.Attempt); err != nil {
					return err
				}
			}
		}

		u, err := a.deps.Users.GetWithProgress(dbc, id)
		if err != nil {
			return err
		}
		if u == nil {
			// The guarded update is unscoped, so a soft-deleted row still matches it.
			return domainagg.Errorf(domainagg.CodeNotFound, op, "user deleted: %s", id)
		}
		out = u
		return nil
	})
	return out, err
}

func (a *userProgressAggregate) requireRepos(op string) error {
	if a.deps.Users == nil || a.deps.Favorites == nil || a.deps.Attempts == nil {
		return domainagg.NewError(domainagg.CodeInternal, op, "user progress aggregate repos not configured", nil)
	}
	return nil
}

// rowUpdates folds the counter increments of m into column expressions for the guarded row update.
func rowUpdates(m user.Mutation) map[string]any {
	sums := map[user.Counter]int64{}
	for _, o := range m.Ops {
		if o.Kind == user.OpIncrement {
			sums[o.Counter] += o.By
		}
	}
	updates := map[string]any{"updated_at": time.Now().UTC()}
	for counter, by := range sums {
		col := string(counter)
		updates[col] = gorm.Expr(col+" + ?", by)
	}
	return updates
}
