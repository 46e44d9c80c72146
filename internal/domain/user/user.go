package user

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email           string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Name            string    `gorm:"not null;default:'';column:name" json:"name"`
	AvatarBucketKey string    `gorm:"column:avatar_bucket_key" json:"avatar_bucket_key"`
	AvatarURL       string    `gorm:"column:avatar_url" json:"avatar_url"`

	TotalQuestions int64 `gorm:"not null;default:0;column:total_questions" json:"total_questions"`
	TotalAnswers   int64 `gorm:"not null;default:0;column:total_answers" json:"total_answers"`
	// Version is bumped by every guarded write on the row.
	Version int64 `gorm:"not null;default:0;column:version" json:"-"`

	Favorites     []UserFavorite `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	PassedQuizzes []QuizAttempt  `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"passed_quizzes"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "user" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Average is round(totalAnswers/totalQuestions*100), nil while no questions were answered.
func (u *User) Average() *int {
	if u == nil || u.TotalQuestions <= 0 {
		return nil
	}
	avg := int(math.Round(float64(u.TotalAnswers) * 100 / float64(u.TotalQuestions)))
	return &avg
}

func (u *User) HasFavorite(quizID uuid.UUID) bool {
	if u == nil {
		return false
	}
	for _, f := range u.Favorites {
		if f.QuizID == quizID {
			return true
		}
	}
	return false
}

// FindAttempt returns the ledger entry for quizID, or nil.
func (u *User) FindAttempt(quizID uuid.UUID) *QuizAttempt {
	if u == nil {
		return nil
	}
	for i := range u.PassedQuizzes {
		if u.PassedQuizzes[i].QuizID == quizID {
			return &u.PassedQuizzes[i]
		}
	}
	return nil
}

func (u *User) FavoriteIDs() []uuid.UUID {
	if u == nil {
		return nil
	}
	out := make([]uuid.UUID, 0, len(u.Favorites))
	for _, f := range u.Favorites {
		out = append(out, f.QuizID)
	}
	return out
}

// PassedQuizIDs lists ledger quiz ids in first-attempt order.
func (u *User) PassedQuizIDs() []uuid.UUID {
	if u == nil {
		return nil
	}
	out := make([]uuid.UUID, 0, len(u.PassedQuizzes))
	for _, a := range u.PassedQuizzes {
		out = append(out, a.QuizID)
	}
	return out
}
