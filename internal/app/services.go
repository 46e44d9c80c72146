package app

import (
	"fmt"

	"github.com/yungbote/quizprogress-backend/internal/platform/gcp"
	"github.com/yungbote/quizprogress-backend/internal/platform/logger"
	"github.com/yungbote/quizprogress-backend/internal/services"
)

type Services struct {
	Token    services.TokenService
	Progress services.ProgressService
	Avatar   services.AvatarService
	User     services.UserService
	Review   services.ReviewService
}

func wireServices(log *logger.Logger, cfg Config, r Repos, a Aggregates, bucket gcp.AvatarBucket) (Services, error) {
	log.Info("Wiring services...")

	tokens, err := services.NewTokenService(log, cfg.Auth.JWTSecretKey, cfg.Auth.JWTIssuer)
	if err != nil {
		return Services{}, fmt.Errorf("init token service: %w", err)
	}

	var avatars services.AvatarService
	if bucket != nil {
		avatars, err = services.NewAvatarService(log, bucket)
		if err != nil {
			return Services{}, fmt.Errorf("init avatar service: %w", err)
		}
	}

	return Services{
		Token:    tokens,
		Progress: services.NewProgressService(log, a.UserProgress, a.UserProgress, a.QuizCatalog),
		Avatar:   avatars,
		User:     services.NewUserService(log, a.UserProgress, r.User, avatars),
		Review:   services.NewReviewService(log, r.User, r.Review),
	}, nil
}
