package user

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/quizprogress-backend/internal/domain"
	"github.com/yungbote/quizprogress-backend/internal/platform/dbctx"
	"github.com/yungbote/quizprogress-backend/internal/platform/logger"
)

type QuizAttemptRepo interface {
	// Upsert overwrites the entry for v.QuizID or appends a new one at the end of
	// the ledger. It reports whether a new entry was created.
	Upsert(dbc dbctx.Context, userID uuid.UUID, v types.AttemptValues) (bool, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.QuizAttempt, error)
}

type quizAttemptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizAttemptRepo(db *gorm.DB, baseLog *logger.Logger) QuizAttemptRepo {
	return &quizAttemptRepo{db: db, log: baseLog.With("repo", "QuizAttemptRepo")}
}

func (r *quizAttemptRepo) Upsert(dbc dbctx.Context, userID uuid.UUID, v types.AttemptValues) (bool, error) {
	if userID == uuid.Nil || v.QuizID == uuid.Nil {
		return false, fmt.Errorf("missing user_id or quiz_id")
	}
	txx := dbc.DB(r.db)
	now := time.Now().UTC()

	var existing types.QuizAttempt
	err := txx.Where("user_id = ? AND quiz_id = ?", userID, v.QuizID).Take(&existing).Error
	switch {
	case err == nil:
		return false, txx.Model(&types.QuizAttempt{}).
			Where("id = ?", existing.ID).
			Updates(map[string]any{
				"quantity_questions": v.QuantityQuestions,
				"correct_answers":    v.CorrectAnswers,
				"rating":             v.Rating,
				"updated_at":         now,
			}).Error
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return false, err
	}

	var seq int64
	if err := txx.Model(&types.QuizAttempt{}).Where("user_id = ?", userID).Count(&seq).Error; err != nil {
		return false, err
	}
	row := &types.QuizAttempt{
		ID:                uuid.New(),
		UserID:            userID,
		QuizID:            v.QuizID,
		Seq:               int(seq),
		QuantityQuestions: v.QuantityQuestions,
		CorrectAnswers:    v.CorrectAnswers,
		Rating:            v.Rating,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := txx.Create(row).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (r *quizAttemptRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.QuizAttempt, error) {
	var out []*types.QuizAttempt
	if err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("seq ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
