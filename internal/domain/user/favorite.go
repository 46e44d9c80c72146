package user

import (
	"time"

	"github.com/google/uuid"
)

// UserFavorite is one member of a user's favorites set.
type UserFavorite struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_favorite_user_quiz,priority:1" json:"user_id"`
	QuizID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_favorite_user_quiz,priority:2;index" json:"quiz_id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (UserFavorite) TableName() string { return "user_favorite" }
