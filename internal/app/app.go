package app

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/quizprogress-backend/internal/data/db"
	"github.com/yungbote/quizprogress-backend/internal/http"
	"github.com/yungbote/quizprogress-backend/internal/observability"
	"github.com/yungbote/quizprogress-backend/internal/platform/logger"
)

type App struct {
	Log        *logger.Logger
	DB         *gorm.DB
	Server     *http.Server
	Cfg        Config
	Metrics    *observability.Metrics
	Repos      Repos
	Aggregates Aggregates
	Services   Services
	Clients    Clients

	dbService    *db.Service
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

// New loads configuration and wires every layer. Call Close when done.
func New(ctx context.Context) (*App, error) {
	bootLog, err := logger.New("development")
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	bootLog.Info("Loading configuration...")
	cfg, err := LoadConfig(bootLog)
	if err != nil {
		bootLog.Sync()
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return NewWithConfig(ctx, log, cfg)
}

func NewWithConfig(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	a := &App{Log: log, Cfg: cfg}
	a.otelShutdown = observability.InitOTel(ctx, log, cfg.OtelConfig())

	dbService, err := db.NewService(cfg.DBConfig(), log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init database: %w", err)
	}
	a.dbService = dbService
	a.DB = dbService.DB()
	if err := db.AutoMigrateAll(a.DB); err != nil {
		a.Close()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	if err := db.EnsureProgressIndexes(a.DB); err != nil {
		a.Close()
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}

	a.Metrics = observability.NewMetrics()

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Clients = clients

	a.Repos = wireRepos(a.DB, log)
	a.Aggregates = wireAggregates(a.DB, log, a.Metrics, a.Repos)
	a.Services, err = wireServices(log, cfg, a.Repos, a.Aggregates, clients.AvatarBucket)
	if err != nil {
		a.Close()
		return nil, err
	}

	handlers := wireHandlers(log, cfg, a.DB, a.Metrics, a.Services, clients)
	a.Server = wireServer(log, cfg, a.Metrics, handlers, wireMiddleware(log, a.Services))
	return a, nil
}

// Start launches background collectors and the metrics listener.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	a.Metrics.StartDBCollector(ctx, a.Log, a.DB, 15*time.Second)
	if a.Clients.Bus != nil {
		a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.Bus, 15*time.Second)
	}
	if a.Cfg.Metrics.Enabled {
		a.Metrics.StartServer(ctx, a.Log, a.Cfg.Metrics.Addr)
	}
}

// Run serves HTTP until ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Server.Run(ctx, a.Cfg.Addr())
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.Clients.Close()
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil && a.Log != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.dbService != nil {
		_ = a.dbService.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
