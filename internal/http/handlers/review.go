package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/quizprogress-backend/internal/domain/rawjson"
	"github.com/yungbote/quizprogress-backend/internal/http/response"
	"github.com/yungbote/quizprogress-backend/internal/services"
)

type ReviewHandler struct {
	reviews services.ReviewService
}

func NewReviewHandler(reviews services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

type createReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment" binding:"required"`
}

// POST /api/reviews
func (rh *ReviewHandler) Create(c *gin.Context) {
	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondDomainError(c, bindError("ReviewHandler.Create", err))
		return
	}
	meta, _ := json.Marshal(map[string]string{"user_agent": c.Request.UserAgent()})
	r, err := rh.reviews.Create(c.Request.Context(), req.Rating, req.Comment, rawjson.JSON(meta))
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"review": r})
}

// GET /api/reviews?page=1&limit=10
func (rh *ReviewHandler) List(c *gin.Context) {
	page, limit, err := pageParams(c, "ReviewHandler.List")
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	res, err := rh.reviews.List(c.Request.Context(), page, limit)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": res.Items, "total_count": res.TotalCount, "page": page, "limit": limit})
}
