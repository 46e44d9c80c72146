package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/quizprogress-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:    uuid.New(),
		Email: email,
		Name:  "Quiz Taker",
	}
	if err := tx.WithContext(ctx).Omit("Favorites", "PassedQuizzes").Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedCategory(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.QuizCategory {
	tb.Helper()
	c := &types.QuizCategory{ID: uuid.New(), Name: name, CreatedAt: time.Now().UTC()}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed category: %v", err)
	}
	return c
}

// SeedQuizzes creates n quizzes in categoryID whose created_at increases with the index.
func SeedQuizzes(tb testing.TB, ctx context.Context, tx *gorm.DB, categoryID uuid.UUID, n int) []*types.Quiz {
	tb.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]*types.Quiz, 0, n)
	for i := 0; i < n; i++ {
		q := &types.Quiz{
			ID:         uuid.New(),
			Title:      "quiz-" + string(rune('a'+i)),
			CategoryID: categoryID,
			CreatedAt:  base.Add(time.Duration(i) * time.Hour),
			UpdatedAt:  base,
		}
		if err := tx.WithContext(ctx).Omit("Category").Create(q).Error; err != nil {
			tb.Fatalf("seed quiz: %v", err)
		}
		out = append(out, q)
	}
	return out
}
