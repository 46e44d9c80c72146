package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/quizprogress-backend/internal/data/repos/quiz"
	"github.com/yungbote/quizprogress-backend/internal/data/repos/review"
	"github.com/yungbote/quizprogress-backend/internal/data/repos/user"
	"github.com/yungbote/quizprogress-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type UserFavoriteRepo = user.UserFavoriteRepo
type QuizAttemptRepo = user.QuizAttemptRepo

type QuizRepo = quiz.QuizRepo

type ReviewRepo = review.ReviewRepo

func NewUserRepo(db *gorm.DB, log *logger.Logger) UserRepo { return user.NewUserRepo(db, log) }
func NewUserFavoriteRepo(db *gorm.DB, log *logger.Logger) UserFavoriteRepo {
	return user.NewUserFavoriteRepo(db, log)
}
func NewQuizAttemptRepo(db *gorm.DB, log *logger.Logger) QuizAttemptRepo {
	return user.NewQuizAttemptRepo(db, log)
}
func NewQuizRepo(db *gorm.DB, log *logger.Logger) QuizRepo { return quiz.NewQuizRepo(db, log) }
func NewReviewRepo(db *gorm.DB, log *logger.Logger) ReviewRepo {
	return review.NewReviewRepo(db, log)
}
