package review

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/quizprogress-backend/internal/domain"
	"github.com/yungbote/quizprogress-backend/internal/platform/dbctx"
	"github.com/yungbote/quizprogress-backend/internal/platform/logger"
)

type ReviewRepo interface {
	Create(dbc dbctx.Context, rows []*types.Review) ([]*types.Review, error)
	ListNewest(dbc dbctx.Context, skip, limit int) ([]*types.Review, error)
	Count(dbc dbctx.Context) (int64, error)
	CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
}

type reviewRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReviewRepo(db *gorm.DB, baseLog *logger.Logger) ReviewRepo {
	return &reviewRepo{db: db, log: baseLog.With("repo", "ReviewRepo")}
}

func (r *reviewRepo) Create(dbc dbctx.Context, rows []*types.Review) ([]*types.Review, error) {
	if len(rows) == 0 {
		return []*types.Review{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *reviewRepo) ListNewest(dbc dbctx.Context, skip, limit int) ([]*types.Review, error) {
	out := []*types.Review{}
	if limit <= 0 {
		return out, nil
	}
	if skip < 0 {
		skip = 0
	}
	if err := dbc.DB(r.db).
		Order("created_at DESC").
		Order("id ASC").
		Offset(skip).
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *reviewRepo) Count(dbc dbctx.Context) (int64, error) {
	var count int64
	if err := dbc.DB(r.db).Model(&types.Review{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *reviewRepo) CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	var count int64
	if err := dbc.DB(r.db).
		Model(&types.Review{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
