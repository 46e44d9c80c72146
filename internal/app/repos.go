package app

import (
	"time"

	"gorm.io/gorm"

	aggimpl "github.com/yungbote/quizprogress-backend/internal/data/aggregates"
	"github.com/yungbote/quizprogress-backend/internal/data/repos"
	domainagg "github.com/yungbote/quizprogress-backend/internal/domain/aggregates"
	"github.com/yungbote/quizprogress-backend/internal/observability"
	"github.com/yungbote/quizprogress-backend/internal/platform/logger"
)

type Repos struct {
	User         repos.UserRepo
	UserFavorite repos.UserFavoriteRepo
	QuizAttempt  repos.QuizAttemptRepo
	Quiz         repos.QuizRepo
	Review       repos.ReviewRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:         repos.NewUserRepo(db, log),
		UserFavorite: repos.NewUserFavoriteRepo(db, log),
		QuizAttempt:  repos.NewQuizAttemptRepo(db, log),
		Quiz:         repos.NewQuizRepo(db, log),
		Review:       repos.NewReviewRepo(db, log),
	}
}

type Aggregates struct {
	UserProgress domainagg.UserProgressAggregate
	QuizCatalog  domainagg.QuizCatalog
}

func wireAggregates(db *gorm.DB, log *logger.Logger, metrics *observability.Metrics, r Repos) Aggregates {
	log.Info("Wiring aggregates...")
	base := aggimpl.BaseDeps{
		DB:  db,
		Log: log,
		Hooks: aggimpl.MultiHooks(
			aggimpl.NewLogHooks(log, 250*time.Millisecond),
			aggimpl.NewObservabilityHooks(metrics),
		),
	}
	return Aggregates{
		UserProgress: aggimpl.NewUserProgressAggregate(aggimpl.UserProgressAggregateDeps{
			Base:      base,
			Users:     r.User,
			Favorites: r.UserFavorite,
			Attempts:  r.QuizAttempt,
		}),
		QuizCatalog: aggimpl.NewQuizCatalog(aggimpl.QuizCatalogDeps{Base: base, Quizzes: r.Quiz}),
	}
}
