package user

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/quizprogress-backend/internal/domain"
	"github.com/yungbote/quizprogress-backend/internal/platform/dbctx"
	"github.com/yungbote/quizprogress-backend/internal/platform/logger"
)

// UserFavoriteRepo treats a user's favorites as a set: adds and removes are idempotent.
type UserFavoriteRepo interface {
	Add(dbc dbctx.Context, userID, quizID uuid.UUID) (bool, error)
	Remove(dbc dbctx.Context, userID, quizID uuid.UUID) (bool, error)
	ListQuizIDs(dbc dbctx.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type userFavoriteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserFavoriteRepo(db *gorm.DB, baseLog *logger.Logger) UserFavoriteRepo {
	return &userFavoriteRepo{db: db, log: baseLog.With("repo", "UserFavoriteRepo")}
}

// Add reports whether a row was inserted.
func (r *userFavoriteRepo) Add(dbc dbctx.Context, userID, quizID uuid.UUID) (bool, error) {
	if userID == uuid.Nil || quizID == uuid.Nil {
		return false, fmt.Errorf("missing user_id or quiz_id")
	}
	row := &types.UserFavorite{
		ID:        uuid.New(),
		UserID:    userID,
		QuizID:    quizID,
		CreatedAt: time.Now().UTC(),
	}
	res := dbc.DB(r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Remove reports whether a row was deleted.
func (r *userFavoriteRepo) Remove(dbc dbctx.Context, userID, quizID uuid.UUID) (bool, error) {
	if userID == uuid.Nil || quizID == uuid.Nil {
		return false, fmt.Errorf("missing user_id or quiz_id")
	}
	res := dbc.DB(r.db).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Delete(&types.UserFavorite{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *userFavoriteRepo) ListQuizIDs(dbc dbctx.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var rows []*types.UserFavorite
	if err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.QuizID)
	}
	return out, nil
}
