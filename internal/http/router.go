package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/quizprogress-backend/internal/http/handlers"
	httpMW "github.com/yungbote/quizprogress-backend/internal/http/middleware"
	"github.com/yungbote/quizprogress-backend/internal/observability"
	"github.com/yungbote/quizprogress-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	AllowedOrigins []string

	AuthMiddleware *httpMW.AuthMiddleware

	UserHandler     *httpH.UserHandler
	ProgressHandler *httpH.ProgressHandler
	ReviewHandler   *httpH.ReviewHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = observability.DefaultServiceName
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.RequireAuth())
	}

	// User (Me)
	if cfg.UserHandler != nil {
		api.GET("/me", cfg.UserHandler.GetMe)
		api.PATCH("/user/name", cfg.UserHandler.ChangeName)
		api.POST("/user/avatar", cfg.UserHandler.UploadAvatar)
		api.DELETE("/user/avatar", cfg.UserHandler.ResetAvatar)
	}

	// Progress
	if cfg.ProgressHandler != nil {
		api.POST("/user/favorites", cfg.ProgressHandler.ToggleFavorite)
		api.POST("/user/quizzes", cfg.ProgressHandler.RecordAttempt)
		api.GET("/user/quizzes", cfg.ProgressHandler.GetHistory)
	}

	// Reviews
	if cfg.ReviewHandler != nil {
		api.POST("/reviews", cfg.ReviewHandler.Create)
		api.GET("/reviews", cfg.ReviewHandler.List)
	}

	return r
}
