package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/quizprogress-backend/internal/clients/redis"
	types "github.com/yungbote/quizprogress-backend/internal/domain"
	domainagg "github.com/yungbote/quizprogress-backend/internal/domain/aggregates"
	"github.com/yungbote/quizprogress-backend/internal/domain/rawjson"
	"github.com/yungbote/quizprogress-backend/internal/observability"
	"github.com/yungbote/quizprogress-backend/internal/platform/ctxutil"
	"github.com/yungbote/quizprogress-backend/internal/platform/logger"
	"github.com/yungbote/quizprogress-backend/internal/services"
)

type fakeProgress struct {
	mu sync.Mutex

	conflictsLeft int
	attemptCalls  int
	lastRating    rawjson.JSON
	toggleErr     error
	toggleAdded   bool
	historyErr    error
	lastPage      [2]int
}

func (f *fakeProgress) RecordAttempt(ctx context.Context, userID, quizID uuid.UUID, qty, correct int, rating rawjson.JSON) (*services.AttemptResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attemptCalls++
	f.lastRating = rating
	if correct > qty {
		return nil, domainagg.NewError(domainagg.CodeValidation, "fake", "correct > quantity", nil)
	}
	if f.conflictsLeft > 0 {
		f.conflictsLeft--
		return nil, domainagg.NewError(domainagg.CodeConflict, "fake", "stale version", nil)
	}
	avg := 70
	return &services.AttemptResult{
		TotalQuestions: int64(qty),
		TotalAnswers:   int64(correct),
		Average:        &avg,
		PassedQuizzes:  []*types.QuizAttempt{{QuizID: quizID, QuantityQuestions: qty, CorrectAnswers: correct, Rating: rating}},
	}, nil
}

func (f *fakeProgress) GetHistory(ctx context.Context, userID uuid.UUID, page, limit int) (*services.HistoryPage, error) {
	f.lastPage = [2]int{page, limit}
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return &services.HistoryPage{Items: []*types.EnrichedQuiz{{ID: uuid.New(), Title: "Algebra", CategoryName: "math"}}, TotalCount: 5}, nil
}

func (f *fakeProgress) ToggleFavorite(ctx context.Context, userID, quizID uuid.UUID) (bool, error) {
	return f.toggleAdded, f.toggleErr
}

type fakePublisher struct {
	mu     sync.Mutex
	events []redis.ProgressEvent
	err    error
}

func (p *fakePublisher) Publish(ctx context.Context, ev redis.ProgressEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func newProgressRouter(t *testing.T, svc services.ProgressService, pub EventPublisher, retry RetryPolicy) (*gin.Engine, uuid.UUID) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	uid := uuid.New()
	h := NewProgressHandler(ProgressHandlerDeps{
		Log:      logger.Nop(),
		Progress: svc,
		Events:   pub,
		Metrics:  observability.NewMetrics(),
		Retry:    retry,
	})
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{UserID: uid}))
		c.Next()
	})
	r.POST("/api/user/favorites", h.ToggleFavorite)
	r.POST("/api/user/quizzes", h.RecordAttempt)
	r.GET("/api/user/quizzes", h.GetHistory)
	return r, uid
}

func doJSON(r http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func fastRetry(n int) RetryPolicy {
	return RetryPolicy{MaxRetries: n, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}
}

func TestToggleFavoriteStatus(t *testing.T) {
	cases := []struct {
		name   string
		svc    *fakeProgress
		body   any
		status int
		events int
	}{
		{"added", &fakeProgress{toggleAdded: true}, gin.H{"quiz_id": uuid.NewString()}, http.StatusCreated, 1},
		{"removed", &fakeProgress{toggleAdded: false}, gin.H{"quiz_id": uuid.NewString()}, http.StatusOK, 1},
		{"conflict_not_retried", &fakeProgress{toggleErr: domainagg.NewError(domainagg.CodeConflict, "x", "stale", nil)}, gin.H{"quiz_id": uuid.NewString()}, http.StatusConflict, 0},
		{"user_missing", &fakeProgress{toggleErr: domainagg.NewError(domainagg.CodeNotFound, "x", "user not found", nil)}, gin.H{"quiz_id": uuid.NewString()}, http.StatusNotFound, 0},
		{"bad_quiz_id", &fakeProgress{}, gin.H{"quiz_id": "nope"}, http.StatusBadRequest, 0},
		{"missing_body_field", &fakeProgress{}, gin.H{}, http.StatusBadRequest, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pub := &fakePublisher{}
			r, _ := newProgressRouter(t, tc.svc, pub, fastRetry(3))
			rec := doJSON(r, http.MethodPost, "/api/user/favorites", tc.body)
			if rec.Code != tc.status {
				t.Fatalf("status=%d want %d body=%s", rec.Code, tc.status, rec.Body.String())
			}
			if len(pub.events) != tc.events {
				t.Fatalf("events=%d want %d", len(pub.events), tc.events)
			}
		})
	}
}

func TestRecordAttemptRetriesConflicts(t *testing.T) {
	svc := &fakeProgress{conflictsLeft: 2}
	pub := &fakePublisher{err: errors.New("redis down")}
	r, uid := newProgressRouter(t, svc, pub, fastRetry(3))

	rec := doJSON(r, http.MethodPost, "/api/user/quizzes", gin.H{
		"quiz_id": uuid.NewString(), "quantity_questions": 10, "correct_answers": 7, "rating": 70,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	if svc.attemptCalls != 3 {
		t.Fatalf("attempt calls=%d want 3", svc.attemptCalls)
	}
	if string(svc.lastRating) != "70" {
		t.Fatalf("rating stored as %q", svc.lastRating)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["total_questions"] != float64(10) || body["average"] != float64(70) {
		t.Fatalf("body=%v", body)
	}
	if len(pub.events) != 1 || pub.events[0].Event != redis.EventQuizAttemptRecorded || pub.events[0].UserID != uid {
		t.Fatalf("events=%+v", pub.events)
	}
}

func TestRecordAttemptGivesUpAfterRetries(t *testing.T) {
	svc := &fakeProgress{conflictsLeft: 10}
	r, _ := newProgressRouter(t, svc, nil, fastRetry(2))
	rec := doJSON(r, http.MethodPost, "/api/user/quizzes", gin.H{
		"quiz_id": uuid.NewString(), "quantity_questions": 3, "correct_answers": 1,
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	if svc.attemptCalls != 3 {
		t.Fatalf("attempt calls=%d want 3", svc.attemptCalls)
	}
}

func TestRecordAttemptValidation(t *testing.T) {
	cases := []struct {
		name string
		body any
	}{
		{"missing_quantity", gin.H{"quiz_id": uuid.NewString(), "correct_answers": 1}},
		{"negative_correct", gin.H{"quiz_id": uuid.NewString(), "quantity_questions": 3, "correct_answers": -1}},
		{"correct_above_quantity", gin.H{"quiz_id": uuid.NewString(), "quantity_questions": 3, "correct_answers": 4}},
		{"bad_quiz_id", gin.H{"quiz_id": "x", "quantity_questions": 3, "correct_answers": 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeProgress{}
			r, _ := newProgressRouter(t, svc, nil, fastRetry(3))
			rec := doJSON(r, http.MethodPost, "/api/user/quizzes", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
			}
			if svc.attemptCalls > 1 {
				t.Fatalf("validation errors must not be retried (calls=%d)", svc.attemptCalls)
			}
		})
	}
}

func TestGetHistoryParams(t *testing.T) {
	cases := []struct {
		target string
		status int
		page   [2]int
	}{
		{"/api/user/quizzes", http.StatusOK, [2]int{1, 10}},
		{"/api/user/quizzes?page=3&limit=2", http.StatusOK, [2]int{3, 2}},
		{"/api/user/quizzes?page=abc", http.StatusBadRequest, [2]int{}},
		{"/api/user/quizzes?limit=1000", http.StatusBadRequest, [2]int{}},
	}
	for _, tc := range cases {
		t.Run(tc.target, func(t *testing.T) {
			svc := &fakeProgress{}
			r, _ := newProgressRouter(t, svc, nil, fastRetry(0))
			rec := doJSON(r, http.MethodGet, tc.target, nil)
			if rec.Code != tc.status {
				t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
			}
			if svc.lastPage != tc.page {
				t.Fatalf("service saw page=%v want %v", svc.lastPage, tc.page)
			}
			if tc.status != http.StatusOK {
				return
			}
			var body struct {
				Items      []map[string]any `json:"items"`
				TotalCount int              `json:"total_count"`
				Page       int              `json:"page"`
				Limit      int              `json:"limit"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.TotalCount != 5 || len(body.Items) != 1 || body.Items[0]["category"] != "math" || body.Page != tc.page[0] {
				t.Fatalf("body=%+v", body)
			}
		})
	}
}

func TestGetHistoryMapsServiceErrors(t *testing.T) {
	svc := &fakeProgress{historyErr: domainagg.NewError(domainagg.CodeValidation, "x", "page and limit must be >= 1", nil)}
	r, _ := newProgressRouter(t, svc, nil, fastRetry(0))
	if rec := doJSON(r, http.MethodGet, "/api/user/quizzes?page=0", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", rec.Code)
	}
	svc.historyErr = domainagg.NewError(domainagg.CodeUnavailable, "x", "db down", nil)
	if rec := doJSON(r, http.MethodGet, "/api/user/quizzes", nil); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", rec.Code)
	}
}
