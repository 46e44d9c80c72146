package aggregates

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/quizprogress-backend/internal/data/repos"
	domainagg "github.com/yungbote/quizprogress-backend/internal/domain/aggregates"
	"github.com/yungbote/quizprogress-backend/internal/domain/quiz"
	"github.com/yungbote/quizprogress-backend/internal/platform/dbctx"
)

type QuizCatalogDeps struct {
	Base    BaseDeps
	Quizzes repos.QuizRepo
}

type quizCatalog struct {
	deps QuizCatalogDeps
}

func NewQuizCatalog(deps QuizCatalogDeps) domainagg.QuizCatalog {
	deps.Base = deps.Base.withDefaults()
	return &quizCatalog{deps: deps}
}

func (c *quizCatalog) Contract() domainagg.Contract {
	return domainagg.QuizCatalogContract
}

func (c *quizCatalog) FindQuizzesByIDs(ctx context.Context, ids []uuid.UUID, skip, limit int) ([]*quiz.EnrichedQuiz, error) {
	const op = "Progress.QuizCatalog.FindQuizzesByIDs"
	if skip < 0 || limit < 1 {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "skip must be >= 0 and limit >= 1", nil)
	}
	if c.deps.Quizzes == nil {
		return nil, domainagg.NewError(domainagg.CodeInternal, op, "quiz repo not configured", nil)
	}
	var out []*quiz.EnrichedQuiz
	err := executeRead(ctx, c.deps.Base, op, func(dbc dbctx.Context) error {
		rows, err := c.deps.Quizzes.FindEnrichedByIDs(dbc, ids, skip, limit)
		out = rows
		return err
	})
	return out, err
}

func (c *quizCatalog) CountQuizzesByIDs(ctx context.Context, ids []uuid.UUID) (int, error) {
	const op = "Progress.QuizCatalog.CountQuizzesByIDs"
	if c.deps.Quizzes == nil {
		return 0, domainagg.NewError(domainagg.CodeInternal, op, "quiz repo not configured", nil)
	}
	var out int64
	err := executeRead(ctx, c.deps.Base, op, func(dbc dbctx.Context) error {
		n, err := c.deps.Quizzes.CountByIDs(dbc, ids)
		out = n
		return err
	})
	return int(out), err
}
