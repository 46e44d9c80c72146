package domain

import (
	"github.com/yungbote/quizprogress-backend/internal/domain/quiz"
	"github.com/yungbote/quizprogress-backend/internal/domain/review"
	"github.com/yungbote/quizprogress-backend/internal/domain/user"
)

type User = user.User
type UserFavorite = user.UserFavorite
type QuizAttempt = user.QuizAttempt
type Mutation = user.Mutation
type AttemptValues = user.AttemptValues

type Quiz = quiz.Quiz
type QuizCategory = quiz.QuizCategory
type EnrichedQuiz = quiz.EnrichedQuiz

type Review = review.Review

// Models lists every table owned by this service, in migration order.
func Models() []any {
	return []any{
		&quiz.QuizCategory{},
		&quiz.Quiz{},
		&user.User{},
		&user.UserFavorite{},
		&user.QuizAttempt{},
		&review.Review{},
	}
}
