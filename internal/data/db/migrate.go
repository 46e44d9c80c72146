package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/quizprogress-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(types.Models()...)
}

// EnsureProgressIndexes creates indexes AutoMigrate cannot express.
func EnsureProgressIndexes(db *gorm.DB) error {
	// History windows sort the catalog by creation time.
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_quiz_created_at_id ON quiz (created_at DESC, id);`).Error; err != nil {
		return fmt.Errorf("create idx_quiz_created_at_id: %w", err)
	}
	// Ledger reads are always per user in first-attempt order.
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_quiz_attempt_user_seq ON quiz_attempt (user_id, seq);`).Error; err != nil {
		return fmt.Errorf("create idx_quiz_attempt_user_seq: %w", err)
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_review_created_at ON review (created_at DESC);`).Error; err != nil {
		return fmt.Errorf("create idx_review_created_at: %w", err)
	}
	return nil
}
