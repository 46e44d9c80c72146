package quiz

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/quizprogress-backend/internal/domain"
	"github.com/yungbote/quizprogress-backend/internal/platform/dbctx"
	"github.com/yungbote/quizprogress-backend/internal/platform/logger"
)

type QuizRepo interface {
	Create(dbc dbctx.Context, rows []*types.Quiz) ([]*types.Quiz, error)
	CreateCategories(dbc dbctx.Context, rows []*types.QuizCategory) ([]*types.QuizCategory, error)
	// FindEnrichedByIDs returns catalog entries in ids ordered newest first, windowed by skip/limit.
	FindEnrichedByIDs(dbc dbctx.Context, ids []uuid.UUID, skip, limit int) ([]*types.EnrichedQuiz, error)
	CountByIDs(dbc dbctx.Context, ids []uuid.UUID) (int64, error)
}

type quizRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizRepo(db *gorm.DB, baseLog *logger.Logger) QuizRepo {
	return &quizRepo{db: db, log: baseLog.With("repo", "QuizRepo")}
}

func (r *quizRepo) Create(dbc dbctx.Context, rows []*types.Quiz) ([]*types.Quiz, error) {
	if len(rows) == 0 {
		return []*types.Quiz{}, nil
	}
	if err := dbc.DB(r.db).Omit("Category").Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *quizRepo) CreateCategories(dbc dbctx.Context, rows []*types.QuizCategory) ([]*types.QuizCategory, error) {
	if len(rows) == 0 {
		return []*types.QuizCategory{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *quizRepo) FindEnrichedByIDs(dbc dbctx.Context, ids []uuid.UUID, skip, limit int) ([]*types.EnrichedQuiz, error) {
	out := []*types.EnrichedQuiz{}
	if len(ids) == 0 || limit <= 0 {
		return out, nil
	}
	if skip < 0 {
		skip = 0
	}
	if err := dbc.DB(r.db).
		Table("quiz AS q").
		Select("q.id AS id, q.title AS title, COALESCE(c.name, '') AS category_name, q.created_at AS created_at").
		Joins("LEFT JOIN quiz_category c ON c.id = q.category_id").
		Where("q.id IN ?", ids).
		Order("q.created_at DESC").
		Order("q.id ASC").
		Offset(skip).
		Limit(limit).
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *quizRepo) CountByIDs(dbc dbctx.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	if err := dbc.DB(r.db).
		Model(&types.Quiz{}).
		Where("id IN ?", ids).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
