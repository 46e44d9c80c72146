package user

import (
	"testing"

	"github.com/google/uuid"
)

func TestAverage(t *testing.T) {
	cases := []struct {
		name      string
		questions int64
		answers   int64
		want      *int
	}{
		{name: "no_questions", questions: 0, answers: 0, want: nil},
		{name: "seventy", questions: 10, answers: 7, want: intPtr(70)},
		{name: "eighty", questions: 20, answers: 16, want: intPtr(80)},
		{name: "rounds_half_up", questions: 8, answers: 5, want: intPtr(63)},
		{name: "rounds_down", questions: 3, answers: 1, want: intPtr(33)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u := &User{TotalQuestions: tc.questions, TotalAnswers: tc.answers}
			got := u.Average()
			switch {
			case tc.want == nil && got != nil:
				t.Fatalf("want nil average, got %d", *got)
			case tc.want != nil && (got == nil || *got != *tc.want):
				t.Fatalf("want %d, got %v", *tc.want, got)
			}
		})
	}
}

func TestHasFavorite(t *testing.T) {
	quizID := uuid.New()
	u := &User{Favorites: []UserFavorite{{QuizID: quizID}}}
	if !u.HasFavorite(quizID) || u.HasFavorite(uuid.New()) {
		t.Fatalf("HasFavorite mismatch")
	}
	var nilUser *User
	if nilUser.HasFavorite(quizID) {
		t.Fatalf("nil user has no favorites")
	}
}

func intPtr(v int) *int { return &v }
