package user

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/quizprogress-backend/internal/domain/rawjson"
)

func TestMutationValidate(t *testing.T) {
	quizID := uuid.New()
	cases := []struct {
		name    string
		m       *Mutation
		wantErr bool
	}{
		{name: "empty", m: NewMutation(0), wantErr: true},
		{name: "negative_increment", m: NewMutation(0).Increment(CounterTotalAnswers, -1), wantErr: true},
		{name: "unknown_counter", m: NewMutation(0).Increment(Counter("average"), 1), wantErr: true},
		{name: "nil_quiz", m: NewMutation(0).AddToSet(SetFavorites, uuid.Nil), wantErr: true},
		{name: "unknown_set", m: NewMutation(0).RemoveFromSet(Set("passed"), quizID), wantErr: true},
		{name: "correct_gt_quantity", m: NewMutation(0).UpsertAttempt(AttemptValues{QuizID: quizID, QuantityQuestions: 3, CorrectAnswers: 4}), wantErr: true},
		{name: "negative_correct", m: NewMutation(0).UpsertAttempt(AttemptValues{QuizID: quizID, QuantityQuestions: 3, CorrectAnswers: -1}), wantErr: true},
		{name: "record_attempt", m: NewMutation(2).
			UpsertAttempt(AttemptValues{QuizID: quizID, QuantityQuestions: 10, CorrectAnswers: 7}).
			Increment(CounterTotalQuestions, 10).
			Increment(CounterTotalAnswers, 7)},
		{name: "toggle", m: NewMutation(1).AddToSet(SetFavorites, quizID)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.m.Validate()
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidMutation) {
					t.Fatalf("expected ErrInvalidMutation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate: %v", err)
			}
		})
	}
}

func TestMutationApplyUpsertKeepsOrderAndOverwrites(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	quizA, quizB := uuid.New(), uuid.New()
	u := &User{ID: uuid.New()}

	u = NewMutation(u.Version).
		UpsertAttempt(AttemptValues{QuizID: quizA, QuantityQuestions: 10, CorrectAnswers: 7, Rating: rawjson.JSON(`70`)}).
		Increment(CounterTotalQuestions, 10).Increment(CounterTotalAnswers, 7).
		Apply(u, now)
	u = NewMutation(u.Version).
		UpsertAttempt(AttemptValues{QuizID: quizB, QuantityQuestions: 4, CorrectAnswers: 4}).
		Increment(CounterTotalQuestions, 4).Increment(CounterTotalAnswers, 4).
		Apply(u, now)
	u = NewMutation(u.Version).
		UpsertAttempt(AttemptValues{QuizID: quizA, QuantityQuestions: 10, CorrectAnswers: 9, Rating: rawjson.JSON(`90`)}).
		Increment(CounterTotalQuestions, 10).Increment(CounterTotalAnswers, 9).
		Apply(u, now)

	if u.Version != 3 {
		t.Fatalf("version: want=3 got=%d", u.Version)
	}
	ids := u.PassedQuizIDs()
	if len(ids) != 2 || ids[0] != quizA || ids[1] != quizB {
		t.Fatalf("ledger order: %v", ids)
	}
	if a := u.FindAttempt(quizA); a == nil || a.CorrectAnswers != 9 || string(a.Rating) != "90" {
		t.Fatalf("quizA entry not overwritten: %+v", a)
	}
	if u.TotalQuestions != 24 || u.TotalAnswers != 20 {
		t.Fatalf("totals: got %d/%d", u.TotalQuestions, u.TotalAnswers)
	}
}

func TestMutationApplySetOpsAreIdempotent(t *testing.T) {
	quizID := uuid.New()
	u := &User{ID: uuid.New()}
	u = NewMutation(0).AddToSet(SetFavorites, quizID).AddToSet(SetFavorites, quizID).Apply(u, time.Now())
	if len(u.Favorites) != 1 {
		t.Fatalf("favorites: want=1 got=%d", len(u.Favorites))
	}
	u = NewMutation(1).RemoveFromSet(SetFavorites, quizID).RemoveFromSet(SetFavorites, quizID).Apply(u, time.Now())
	if len(u.Favorites) != 0 {
		t.Fatalf("favorites after remove: %d", len(u.Favorites))
	}
}

func TestMutationApplyDoesNotAliasInput(t *testing.T) {
	quizID := uuid.New()
	orig := &User{ID: uuid.New(), PassedQuizzes: []QuizAttempt{{QuizID: quizID, QuantityQuestions: 2, CorrectAnswers: 1}}}
	_ = NewMutation(0).UpsertAttempt(AttemptValues{QuizID: quizID, QuantityQuestions: 2, CorrectAnswers: 2}).Apply(orig, time.Now())
	if orig.PassedQuizzes[0].CorrectAnswers != 1 {
		t.Fatalf("Apply mutated its input")
	}
}
