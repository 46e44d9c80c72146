package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/quizprogress-backend/internal/domain/rawjson"
)

// QuizAttempt is the single ledger entry a user holds per quiz. Re-attempts overwrite
// the counters and rating in place; Seq records first-attempt order and never changes.
type QuizAttempt struct {
	ID                uuid.UUID    `gorm:"type:uuid;primaryKey" json:"-"`
	UserID            uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_quiz_attempt_user_quiz,priority:1" json:"-"`
	QuizID            uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_quiz_attempt_user_quiz,priority:2;index" json:"quiz_id"`
	Seq               int          `gorm:"not null;default:0;column:seq" json:"-"`
	QuantityQuestions int          `gorm:"not null;column:quantity_questions" json:"quantity_questions"`
	CorrectAnswers    int          `gorm:"not null;column:correct_answers" json:"correct_answers"`
	Rating            rawjson.JSON `gorm:"column:rating" json:"rating"`
	CreatedAt         time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time    `gorm:"not null" json:"updated_at"`
}

func (QuizAttempt) TableName() string { return "quiz_attempt" }
