package aggregates

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/quizprogress-backend/internal/domain/quiz"
)

var QuizCatalogContract = Contract{
	Name:        "Progress.QuizCatalog",
	Tables:      []string{"quiz", "quiz_category"},
	Concurrency: ReadOnly,
	Notes:       "Catalog lookups used to enrich a user's history.",
}

// QuizCatalog resolves quiz ids to catalog entries joined with their category name.
type QuizCatalog interface {
	Aggregate

	// FindQuizzesByIDs returns the entries in ids sorted by created_at DESC, windowed by skip/limit.
	FindQuizzesByIDs(ctx context.Context, ids []uuid.UUID, skip, limit int) ([]*quiz.EnrichedQuiz, error)

	// CountQuizzesByIDs counts catalog entries in ids; ids unknown to the catalog are not counted.
	CountQuizzesByIDs(ctx context.Context, ids []uuid.UUID) (int, error)
}
