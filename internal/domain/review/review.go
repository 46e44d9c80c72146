package review

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/quizprogress-backend/internal/domain/rawjson"
)

const (
	MinRating     = 1
	MaxRating     = 5
	MaxCommentLen = 1000
)

// Review is a site review. Username and AvatarURL are copied from the author at write time.
type Review struct {
	ID        uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID    `gorm:"type:uuid;not null;index" json:"-"`
	Username  string       `gorm:"not null;column:username" json:"username"`
	AvatarURL string       `gorm:"column:avatar_url" json:"avatar"`
	Rating    int          `gorm:"not null;column:rating" json:"rating"`
	Comment   string       `gorm:"not null;type:text;column:comment" json:"comment"`
	Metadata  rawjson.JSON `gorm:"column:metadata" json:"-"`
	CreatedAt time.Time    `gorm:"not null;index" json:"created_at"`
}

func (Review) TableName() string { return "review" }

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
