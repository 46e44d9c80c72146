package app

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/quizprogress-backend/internal/http"
	httpH "github.com/yungbote/quizprogress-backend/internal/http/handlers"
	httpMW "github.com/yungbote/quizprogress-backend/internal/http/middleware"
	"github.com/yungbote/quizprogress-backend/internal/observability"
	"github.com/yungbote/quizprogress-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health   *httpH.HealthHandler
	User     *httpH.UserHandler
	Progress *httpH.ProgressHandler
	Review   *httpH.ReviewHandler
}

// dbPinger adapts gorm to the health handler.
type dbPinger struct{ db *gorm.DB }

func (p dbPinger) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func wireMiddleware(log *logger.Logger, s Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{Auth: httpMW.NewAuthMiddleware(log, s.Token)}
}

func wireHandlers(log *logger.Logger, cfg Config, db *gorm.DB, metrics *observability.Metrics, s Services, c Clients) Handlers {
	log.Info("Wiring handlers...")
	var events httpH.EventPublisher
	if c.Bus != nil {
		events = c.Bus
	}
	var resolver httpH.URLResolver
	if c.AvatarBucket != nil {
		resolver = c.AvatarBucket
	}
	return Handlers{
		Health: httpH.NewHealthHandler(dbPinger{db: db}),
		User:   httpH.NewUserHandler(s.User, resolver),
		Progress: httpH.NewProgressHandler(httpH.ProgressHandlerDeps{
			Log:      log,
			Progress: s.Progress,
			Events:   events,
			Metrics:  metrics,
			Retry:    cfg.RetryPolicy(),
		}),
		Review: httpH.NewReviewHandler(s.Review),
	}
}

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, h Handlers, mw Middleware) *http.Server {
	srv := http.NewServer(http.RouterConfig{
		Log:             log,
		Metrics:         metrics,
		ServiceName:     observability.DefaultServiceName,
		AllowedOrigins:  cfg.HTTP.AllowedOrigins,
		AuthMiddleware:  mw.Auth,
		UserHandler:     h.User,
		ProgressHandler: h.Progress,
		ReviewHandler:   h.Review,
		HealthHandler:   h.Health,
	})
	srv.ShutdownTimeout = cfg.HTTP.ShutdownTimeout
	return srv
}
