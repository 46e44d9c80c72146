package services

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	types "github.com/yungbote/quizprogress-backend/internal/domain"
	domainagg "github.com/yungbote/quizprogress-backend/internal/domain/aggregates"
	"github.com/yungbote/quizprogress-backend/internal/domain/rawjson"
	"github.com/yungbote/quizprogress-backend/internal/domain/user"
	"github.com/yungbote/quizprogress-backend/internal/observability"
	"github.com/yungbote/quizprogress-backend/internal/platform/logger"
)

type UserReader interface {
	FindUserByID(ctx context.Context, id uuid.UUID) (*types.User, error)
}

type UserMutator interface {
	AtomicUpdateUser(ctx context.Context, id uuid.UUID, m user.Mutation) (*types.User, error)
}

type QuizCatalog interface {
	FindQuizzesByIDs(ctx context.Context, ids []uuid.UUID, skip, limit int) ([]*types.EnrichedQuiz, error)
	CountQuizzesByIDs(ctx context.Context, ids []uuid.UUID) (int, error)
}

// AttemptResult is the user's aggregate state right after an attempt commits.
type AttemptResult struct {
	TotalAnswers   int64                `json:"total_answers"`
	TotalQuestions int64                `json:"total_questions"`
	Average        *int                 `json:"average"`
	PassedQuizzes  []*types.QuizAttempt `json:"passed_quizzes"`
}

type HistoryPage struct {
	Items      []*types.EnrichedQuiz `json:"items"`
	TotalCount int                   `json:"total_count"`
}

type ProgressService interface {
	// RecordAttempt upserts the ledger entry for quizID and adds the attempt to the running totals.
	// A re-attempt overwrites the entry but still adds to the totals.
	RecordAttempt(ctx context.Context, userID, quizID uuid.UUID, quantityQuestions, correctAnswers int, rating rawjson.JSON) (*AttemptResult, error)
	GetHistory(ctx context.Context, userID uuid.UUID, page, limit int) (*HistoryPage, error)
	// ToggleFavorite reports whether quizID was added (true) or removed (false).
	ToggleFavorite(ctx context.Context, userID, quizID uuid.UUID) (bool, error)
}

type progressService struct {
	log     *logger.Logger
	users   UserReader
	mutator UserMutator
	catalog QuizCatalog
}

func NewProgressService(log *logger.Logger, users UserReader, mutator UserMutator, catalog QuizCatalog) ProgressService {
	return &progressService{
		log:     log.With("service", "ProgressService"),
		users:   users,
		mutator: mutator,
		catalog: catalog,
	}
}

var progressTracer = observability.Tracer("services/progress")

func (ps *progressService) RecordAttempt(ctx context.Context, userID, quizID uuid.UUID, quantityQuestions, correctAnswers int, rating rawjson.JSON) (*AttemptResult, error) {
	const op = "ProgressService.RecordAttempt"
	ctx, span := progressTracer.Start(ctx, op)
	defer span.End()
	span.SetAttributes(attribute.String("quiz.id", quizID.String()))

	if userID == uuid.Nil {
		return nil, endSpan(span, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil))
	}
	if quizID == uuid.Nil {
		return nil, endSpan(span, domainagg.NewError(domainagg.CodeValidation, op, "missing quiz_id", nil))
	}
	if correctAnswers < 0 || quantityQuestions < correctAnswers {
		return nil, endSpan(span, domainagg.NewError(domainagg.CodeValidation, op,
			fmt.Sprintf("expected quantity_questions >= correct_answers >= 0, got %d/%d", quantityQuestions, correctAnswers), nil))
	}

	u, err := ps.users.FindUserByID(ctx, userID)
	if err != nil {
		return nil, endSpan(span, err)
	}
	if u == nil {
		return nil, endSpan(span, domainagg.NewError(domainagg.CodeNotFound, op, "user not found", nil))
	}
	existing := u.FindAttempt(quizID) != nil
	span.SetAttributes(attribute.Bool("attempt.reattempt", existing))

	m := user.NewMutation(u.Version).
		UpsertAttempt(user.AttemptValues{
			QuizID:            quizID,
			QuantityQuestions: quantityQuestions,
			CorrectAnswers:    correctAnswers,
			Rating:            rating,
		}).
		Increment(user.CounterTotalQuestions, int64(quantityQuestions)).
		Increment(user.CounterTotalAnswers, int64(correctAnswers))

	updated, err := ps.mutator.AtomicUpdateUser(ctx, userID, *m)
	if err != nil {
		return nil, endSpan(span, err)
	}
	if updated == nil {
		return nil, endSpan(span, domainagg.NewError(domainagg.CodeNotFound, op, "user not found", nil))
	}

	ps.log.Ctx(ctx).Debug("quiz attempt recorded",
		"quiz_id", quizID,
		"reattempt", existing,
		"total_questions", updated.TotalQuestions,
		"total_answers", updated.TotalAnswers,
	)
	return &AttemptResult{
		TotalAnswers:   updated.TotalAnswers,
		TotalQuestions: updated.TotalQuestions,
		Average:        updated.Average(),
		PassedQuizzes:  attemptPointers(updated.PassedQuizzes),
	}, nil
}

func (ps *progressService) GetHistory(ctx context.Context, userID uuid.UUID, page, limit int) (*HistoryPage, error) {
	const op = "ProgressService.GetHistory"
	ctx, span := progressTracer.Start(ctx, op)
	defer span.End()
	span.SetAttributes(attribute.Int("page", page), attribute.Int("limit", limit))

	if page < 1 || limit < 1 {
		return nil, endSpan(span, domainagg.NewError(domainagg.CodeValidation, op,
			fmt.Sprintf("page and limit must be >= 1, got page=%d limit=%d", page, limit), nil))
	}
	if page-1 > math.MaxInt/limit {
		return nil, endSpan(span, domainagg.NewError(domainagg.CodeValidation, op,
			fmt.Sprintf("page %d is out of range for limit %d", page, limit), nil))
	}
	if userID == uuid.Nil {
		return nil, endSpan(span, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil))
	}

	u, err := ps.users.FindUserByID(ctx, userID)
	if err != nil {
		return nil, endSpan(span, err)
	}
	if u == nil {
		return nil, endSpan(span, domainagg.NewError(domainagg.CodeNotFound, op, "user not found", nil))
	}

	ids := u.PassedQuizIDs()
	if len(ids) == 0 {
		return &HistoryPage{Items: []*types.EnrichedQuiz{}, TotalCount: 0}, nil
	}
	skip := (page - 1) * limit

	var (
		items []*types.EnrichedQuiz
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = ps.catalog.FindQuizzesByIDs(gctx, ids, skip, limit)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = ps.catalog.CountQuizzesByIDs(gctx, ids)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, endSpan(span, err)
	}
	if items == nil {
		items = []*types.EnrichedQuiz{}
	}
	span.SetAttributes(attribute.Int("history.total", total), attribute.Int("history.items", len(items)))
	return &HistoryPage{Items: items, TotalCount: total}, nil
}

func (ps *progressService) ToggleFavorite(ctx context.Context, userID, quizID uuid.UUID) (bool, error) {
	const op = "ProgressService.ToggleFavorite"
	ctx, span := progressTracer.Start(ctx, op)
	defer span.End()

	if userID == uuid.Nil || quizID == uuid.Nil {
		return false, endSpan(span, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id or quiz_id", nil))
	}

	u, err := ps.users.FindUserByID(ctx, userID)
	if err != nil {
		return false, endSpan(span, err)
	}
	if u == nil {
		return false, endSpan(span, domainagg.NewError(domainagg.CodeNotFound, op, "user not found", nil))
	}

	add := !u.HasFavorite(quizID)
	m := user.NewMutation(u.Version)
	if add {
		m.AddToSet(user.SetFavorites, quizID)
	} else {
		m.RemoveFromSet(user.SetFavorites, quizID)
	}
	if _, err := ps.mutator.AtomicUpdateUser(ctx, userID, *m); err != nil {
		return false, endSpan(span, err)
	}
	span.SetAttributes(attribute.Bool("favorite.added", add))
	return add, nil
}

func attemptPointers(in []types.QuizAttempt) []*types.QuizAttempt {
	out := make([]*types.QuizAttempt, 0, len(in))
	for i := range in {
		out = append(out, &in[i])
	}
	return out
}

func endSpan(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(domainagg.CodeOf(err)))
	}
	return err
}
