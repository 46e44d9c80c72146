package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainagg "github.com/yungbote/quizprogress-backend/internal/domain/aggregates"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// pageParams reads ?page and ?limit. Missing values take the defaults; values that are
// present must be integers, and limit is capped at maxLimit.
func pageParams(c *gin.Context, op string) (page, limit int, err error) {
	page, err = intQuery(c, "page", defaultPage)
	if err != nil {
		return 0, 0, domainagg.NewError(domainagg.CodeValidation, op, err.Error(), nil)
	}
	limit, err = intQuery(c, "limit", defaultLimit)
	if err != nil {
		return 0, 0, domainagg.NewError(domainagg.CodeValidation, op, err.Error(), nil)
	}
	if limit > maxLimit {
		return 0, 0, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("limit must be <= %d", maxLimit), nil)
	}
	return page, limit, nil
}

func intQuery(c *gin.Context, key string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return v, nil
}

func parseQuizID(raw, op string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, domainagg.NewError(domainagg.CodeValidation, op, "quiz_id must be a uuid", nil)
	}
	return id, nil
}

func bindError(op string, err error) error {
	return domainagg.NewError(domainagg.CodeValidation, op, "invalid request body: "+err.Error(), nil)
}
