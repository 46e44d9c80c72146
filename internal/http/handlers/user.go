package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/quizprogress-backend/internal/domain"
	domainagg "github.com/yungbote/quizprogress-backend/internal/domain/aggregates"
	"github.com/yungbote/quizprogress-backend/internal/http/response"
	"github.com/yungbote/quizprogress-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
	bucket      URLResolver
}

func NewUserHandler(userService services.UserService, bucket URLResolver) *UserHandler {
	return &UserHandler{userService: userService, bucket: bucket}
}

type meView struct {
	ID             uuid.UUID   `json:"id"`
	Name           string      `json:"name"`
	Email          string      `json:"email"`
	AvatarURL      string      `json:"avatar"`
	Favorites      []uuid.UUID `json:"favorites"`
	TotalQuestions int64       `json:"total_questions"`
	TotalAnswers   int64       `json:"total_answers"`
	Average        *int        `json:"average"`
}

func (uh *UserHandler) view(u *types.User) meView {
	normalizeUserAvatarURL(uh.bucket, u)
	return meView{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		AvatarURL:      u.AvatarURL,
		Favorites:      u.FavoriteIDs(),
		TotalQuestions: u.TotalQuestions,
		TotalAnswers:   u.TotalAnswers,
		Average:        u.Average(),
	}
}

// GET /api/me
func (uh *UserHandler) GetMe(c *gin.Context) {
	me, err := uh.userService.GetMe(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"me": uh.view(me)})
}

// PATCH /api/user/name
// body: { "name": "..." }
func (uh *UserHandler) ChangeName(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondDomainError(c, bindError("UserHandler.ChangeName", err))
		return
	}
	u, err := uh.userService.UpdateName(c.Request.Context(), req.Name)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"me": uh.view(u)})
}

// POST /api/user/avatar (multipart/form-data, field "file")
func (uh *UserHandler) UploadAvatar(c *gin.Context) {
	const op = "UserHandler.UploadAvatar"
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, services.MaxAvatarBytes+1<<20)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.RespondError(c, http.StatusRequestEntityTooLarge, string(domainagg.CodeValidation), errors.New("avatar exceeds 10MB"))
			return
		}
		response.RespondDomainError(c, domainagg.NewError(domainagg.CodeValidation, op, "missing file", nil))
		return
	}
	if fh.Size > services.MaxAvatarBytes {
		response.RespondError(c, http.StatusRequestEntityTooLarge, string(domainagg.CodeValidation), errors.New("avatar exceeds 10MB"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.RespondDomainError(c, domainagg.Wrap(domainagg.CodeValidation, op, err))
		return
	}
	defer f.Close()
	raw, err := io.ReadAll(io.LimitReader(f, services.MaxAvatarBytes+1))
	if err != nil {
		response.RespondDomainError(c, domainagg.Wrap(domainagg.CodeValidation, op, err))
		return
	}

	u, err := uh.userService.UploadAvatarImage(c.Request.Context(), raw)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"me": uh.view(u)})
}

// DELETE /api/user/avatar
func (uh *UserHandler) ResetAvatar(c *gin.Context) {
	u, err := uh.userService.ResetAvatar(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"me": uh.view(u)})
}
