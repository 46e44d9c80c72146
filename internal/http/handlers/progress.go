package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/quizprogress-backend/internal/clients/redis"
	domainagg "github.com/yungbote/quizprogress-backend/internal/domain/aggregates"
	"github.com/yungbote/quizprogress-backend/internal/domain/rawjson"
	"github.com/yungbote/quizprogress-backend/internal/http/response"
	"github.com/yungbote/quizprogress-backend/internal/observability"
	"github.com/yungbote/quizprogress-backend/internal/platform/ctxutil"
	"github.com/yungbote/quizprogress-backend/internal/platform/logger"
	"github.com/yungbote/quizprogress-backend/internal/services"
)

// EventPublisher fans committed progress changes out to other processes.
type EventPublisher interface {
	Publish(ctx context.Context, ev redis.ProgressEvent) error
}

type ProgressHandlerDeps struct {
	Log      *logger.Logger
	Progress services.ProgressService
	Events   EventPublisher
	Metrics  *observability.Metrics
	Retry    RetryPolicy
}

type ProgressHandler struct {
	log      *logger.Logger
	progress services.ProgressService
	events   EventPublisher
	metrics  *observability.Metrics
	retry    RetryPolicy
}

func NewProgressHandler(deps ProgressHandlerDeps) *ProgressHandler {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	return &ProgressHandler{
		log:      log.With("handler", "ProgressHandler"),
		progress: deps.Progress,
		events:   deps.Events,
		metrics:  deps.Metrics,
		retry:    deps.Retry,
	}
}

type toggleFavoriteRequest struct {
	QuizID string `json:"quiz_id" binding:"required"`
}

// POST /api/user/favorites
// Conflicts are returned as 409; the client decides whether to toggle again.
func (h *ProgressHandler) ToggleFavorite(c *gin.Context) {
	const op = "ProgressHandler.ToggleFavorite"
	var req toggleFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondDomainError(c, bindError(op, err))
		return
	}
	quizID, err := parseQuizID(req.QuizID, op)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	ctx := c.Request.Context()
	userID := ctxutil.UserID(ctx)

	added, err := h.progress.ToggleFavorite(ctx, userID, quizID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	h.publish(ctx, redis.ProgressEvent{
		Event:  redis.EventFavoriteToggled,
		UserID: userID,
		QuizID: quizID,
		Added:  &added,
	})

	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"added": added})
}

type recordAttemptRequest struct {
	QuizID            string          `json:"quiz_id" binding:"required"`
	QuantityQuestions *int            `json:"quantity_questions" binding:"required,gte=0"`
	CorrectAnswers    *int            `json:"correct_answers" binding:"required,gte=0"`
	Rating            json.RawMessage `json:"rating"`
}

// POST /api/user/quizzes
func (h *ProgressHandler) RecordAttempt(c *gin.Context) {
	const op = "ProgressHandler.RecordAttempt"
	var req recordAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondDomainError(c, bindError(op, err))
		return
	}
	quizID, err := parseQuizID(req.QuizID, op)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	var rating rawjson.JSON
	if len(req.Rating) > 0 && string(req.Rating) != "null" {
		rating = rawjson.JSON(req.Rating)
	}

	ctx := c.Request.Context()
	userID := ctxutil.UserID(ctx)
	res, retries, err := retryOnConflict(ctx, h.retry, func() (*services.AttemptResult, error) {
		return h.progress.RecordAttempt(ctx, userID, quizID, *req.QuantityQuestions, *req.CorrectAnswers, rating)
	})
	outcome := "success"
	if err != nil {
		outcome = string(domainagg.CodeOf(err))
	}
	h.metrics.ObserveAttemptRetries(retries, outcome)
	if retries > 0 {
		h.log.Ctx(ctx).Info("attempt recording retried after conflict", "retries", retries, "outcome", outcome)
	}
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}

	h.publish(ctx, redis.ProgressEvent{
		Event:          redis.EventQuizAttemptRecorded,
		UserID:         userID,
		QuizID:         quizID,
		TotalQuestions: &res.TotalQuestions,
		TotalAnswers:   &res.TotalAnswers,
		Average:        res.Average,
	})
	response.RespondOK(c, res)
}

type historyResponse struct {
	Items      any `json:"items"`
	TotalCount int `json:"total_count"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
}

// GET /api/user/quizzes?page=1&limit=10
func (h *ProgressHandler) GetHistory(c *gin.Context) {
	const op = "ProgressHandler.GetHistory"
	page, limit, err := pageParams(c, op)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	ctx := c.Request.Context()
	res, err := h.progress.GetHistory(ctx, ctxutil.UserID(ctx), page, limit)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, historyResponse{Items: res.Items, TotalCount: res.TotalCount, Page: page, Limit: limit})
}

// publish runs after commit; failures are logged and counted, never surfaced.
func (h *ProgressHandler) publish(ctx context.Context, ev redis.ProgressEvent) {
	if h.events == nil {
		return
	}
	if ev.UserID == uuid.Nil {
		return
	}
	ev.OccurredAt = time.Now().UTC()
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	err := h.events.Publish(pubCtx, ev)
	h.metrics.IncProgressEvent(ev.Event, err)
	if err != nil {
		h.log.Ctx(ctx).Warn("progress event publish failed", "event", ev.Event, "error", err)
	}
}
