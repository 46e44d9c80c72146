package user

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/quizprogress-backend/internal/domain/rawjson"
)

type OpKind string

const (
	OpIncrement     OpKind = "increment"
	OpAddToSet      OpKind = "add_to_set"
	OpRemoveFromSet OpKind = "remove_from_set"
	OpUpsertAttempt OpKind = "upsert_attempt"
)

// Counter names the user columns an increment may touch.
type Counter string

const (
	CounterTotalQuestions Counter = "total_questions"
	CounterTotalAnswers   Counter = "total_answers"
)

type Set string

const SetFavorites Set = "favorites"

var ErrInvalidMutation = errors.New("invalid user mutation")

// AttemptValues is the payload of an upsert keyed by QuizID.
type AttemptValues struct {
	QuizID            uuid.UUID
	QuantityQuestions int
	CorrectAnswers    int
	Rating            rawjson.JSON
}

type Op struct {
	Kind    OpKind
	Counter Counter
	By      int64
	Set     Set
	QuizID  uuid.UUID
	Attempt *AttemptValues
}

// Mutation is an ordered list of field operations applied to one user row in a
// single transaction, guarded by the version it was computed from.
type Mutation struct {
	ExpectedVersion int64
	Ops             []Op
}

func NewMutation(expectedVersion int64) *Mutation {
	return &Mutation{ExpectedVersion: expectedVersion}
}

func (m *Mutation) Increment(c Counter, by int64) *Mutation {
	m.Ops = append(m.Ops, Op{Kind: OpIncrement, Counter: c, By: by})
	return m
}

func (m *Mutation) AddToSet(s Set, quizID uuid.UUID) *Mutation {
	m.Ops = append(m.Ops, Op{Kind: OpAddToSet, Set: s, QuizID: quizID})
	return m
}

func (m *Mutation) RemoveFromSet(s Set, quizID uuid.UUID) *Mutation {
	m.Ops = append(m.Ops, Op{Kind: OpRemoveFromSet, Set: s, QuizID: quizID})
	return m
}

func (m *Mutation) UpsertAttempt(v AttemptValues) *Mutation {
	m.Ops = append(m.Ops, Op{Kind: OpUpsertAttempt, QuizID: v.QuizID, Attempt: &v})
	return m
}

// Validate rejects empty mutations, negative increments (counters never decrease),
// unknown targets and attempts outside 0 <= correct <= quantity.
func (m Mutation) Validate() error {
	if len(m.Ops) == 0 {
		return fmt.Errorf("%w: no operations", ErrInvalidMutation)
	}
	if m.ExpectedVersion < 0 {
		return fmt.Errorf("%w: negative expected version", ErrInvalidMutation)
	}
	for i, op := range m.Ops {
		switch op.Kind {
		case OpIncrement:
			if op.Counter != CounterTotalQuestions && op.Counter != CounterTotalAnswers {
				return fmt.Errorf("%w: op %d: unknown counter %q", ErrInvalidMutation, i, op.Counter)
			}
			if op.By < 0 {
				return fmt.Errorf("%w: op %d: negative increment", ErrInvalidMutation, i)
			}
		case OpAddToSet, OpRemoveFromSet:
			if op.Set != SetFavorites {
				return fmt.Errorf("%w: op %d: unknown set %q", ErrInvalidMutation, i, op.Set)
			}
			if op.QuizID == uuid.Nil {
				return fmt.Errorf("%w: op %d: missing quiz id", ErrInvalidMutation, i)
			}
		case OpUpsertAttempt:
			a := op.Attempt
			if a == nil || a.QuizID == uuid.Nil {
				return fmt.Errorf("%w: op %d: missing attempt", ErrInvalidMutation, i)
			}
			if a.CorrectAnswers < 0 || a.CorrectAnswers > a.QuantityQuestions {
				return fmt.Errorf("%w: op %d: correct answers out of range", ErrInvalidMutation, i)
			}
		default:
			return fmt.Errorf("%w: op %d: unknown kind %q", ErrInvalidMutation, i, op.Kind)
		}
	}
	return nil
}

// Apply projects m onto a copy of u and bumps the version. Set operations are
// idempotent and attempt upserts keep first-attempt order.
func (m Mutation) Apply(u *User, now time.Time) *User {
	out := *u
	out.Favorites = append([]UserFavorite(nil), u.Favorites...)
	out.PassedQuizzes = append([]QuizAttempt(nil), u.PassedQuizzes...)
	for _, op := range m.Ops {
		switch op.Kind {
		case OpIncrement:
			switch op.Counter {
			case CounterTotalQuestions:
				out.TotalQuestions += op.By
			case CounterTotalAnswers:
				out.TotalAnswers += op.By
			}
		case OpAddToSet:
			if !out.HasFavorite(op.QuizID) {
				out.Favorites = append(out.Favorites, UserFavorite{
					ID: uuid.New(), UserID: out.ID, QuizID: op.QuizID, CreatedAt: now,
				})
			}
		case OpRemoveFromSet:
			kept := out.Favorites[:0]
			for _, f := range out.Favorites {
				if f.QuizID != op.QuizID {
					kept = append(kept, f)
				}
			}
			out.Favorites = kept
		case OpUpsertAttempt:
			a := op.Attempt
			if existing := out.FindAttempt(a.QuizID); existing != nil {
				existing.QuantityQuestions = a.QuantityQuestions
				existing.CorrectAnswers = a.CorrectAnswers
				existing.Rating = a.Rating
				existing.UpdatedAt = now
				continue
			}
			out.PassedQuizzes = append(out.PassedQuizzes, QuizAttempt{
				ID:                uuid.New(),
				UserID:            out.ID,
				QuizID:            a.QuizID,
				Seq:               len(out.PassedQuizzes),
				QuantityQuestions: a.QuantityQuestions,
				CorrectAnswers:    a.CorrectAnswers,
				Rating:            a.Rating,
				CreatedAt:         now,
				UpdatedAt:         now,
			})
		}
	}
	out.Version = u.Version + 1
	out.UpdatedAt = now
	return &out
}
