package quiz

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuizCategory struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null;uniqueIndex;column:name" json:"name"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (QuizCategory) TableName() string { return "quiz_category" }

func (c *QuizCategory) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Quiz is a catalog entry. The progress subsystem only reads it.
type Quiz struct {
	ID         uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Title      string        `gorm:"not null;column:title" json:"title"`
	CategoryID uuid.UUID     `gorm:"type:uuid;not null;index;column:category_id" json:"category_id"`
	Category   *QuizCategory `gorm:"foreignKey:CategoryID;references:ID" json:"category,omitempty"`
	CreatedAt  time.Time     `gorm:"not null;index" json:"created_at"`
	UpdatedAt  time.Time     `gorm:"not null" json:"updated_at"`
}

func (Quiz) TableName() string { return "quiz" }

func (q *Quiz) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// EnrichedQuiz is a catalog row joined with its category display name.
type EnrichedQuiz struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	CategoryName string    `json:"category"`
	CreatedAt    time.Time `json:"created_at"`
}
