package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	aggimpl "github.com/yungbote/quizprogress-backend/internal/data/aggregates"
	"github.com/yungbote/quizprogress-backend/internal/data/repos"
	types "github.com/yungbote/quizprogress-backend/internal/domain"
	domainagg "github.com/yungbote/quizprogress-backend/internal/domain/aggregates"
	"github.com/yungbote/quizprogress-backend/internal/domain/rawjson"
	"github.com/yungbote/quizprogress-backend/internal/domain/review"
	"github.com/yungbote/quizprogress-backend/internal/platform/dbctx"
	"github.com/yungbote/quizprogress-backend/internal/platform/logger"
)

type ReviewPage struct {
	Items      []*types.Review `json:"items"`
	TotalCount int64           `json:"total_count"`
}

type ReviewService interface {
	// Create stores a review authored by the caller, snapshotting their name and avatar.
	Create(ctx context.Context, rating int, comment string, metadata rawjson.JSON) (*types.Review, error)
	List(ctx context.Context, page, limit int) (*ReviewPage, error)
}

type reviewService struct {
	log        *logger.Logger
	userRepo   repos.UserRepo
	reviewRepo repos.ReviewRepo
	now        func() time.Time
}

func NewReviewService(log *logger.Logger, userRepo repos.UserRepo, reviewRepo repos.ReviewRepo) ReviewService {
	return &reviewService{
		log:        log.With("service", "ReviewService"),
		userRepo:   userRepo,
		reviewRepo: reviewRepo,
		now:        time.Now,
	}
}

func (rs *reviewService) Create(ctx context.Context, rating int, comment string, metadata rawjson.JSON) (*types.Review, error) {
	const op = "ReviewService.Create"
	id, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	if rating < review.MinRating || rating > review.MaxRating {
		return nil, domainagg.NewError(domainagg.CodeValidation, op,
			fmt.Sprintf("rating must be %d..%d", review.MinRating, review.MaxRating), nil)
	}
	comment = strings.TrimSpace(comment)
	if n := utf8.RuneCountInString(comment); n == 0 || n > review.MaxCommentLen {
		return nil, domainagg.NewError(domainagg.CodeValidation, op,
			fmt.Sprintf("comment must be 1..%d characters", review.MaxCommentLen), nil)
	}

	dbc := dbctx.Context{Ctx: ctx}
	author, err := rs.userRepo.GetByID(dbc, id)
	if err != nil {
		return nil, aggimpl.MapError(op, err)
	}
	if author == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, "user not found", nil)
	}

	row := &types.Review{
		UserID:    author.ID,
		Username:  author.Name,
		AvatarURL: author.AvatarURL,
		Rating:    rating,
		Comment:   comment,
		Metadata:  metadata,
		CreatedAt: rs.now().UTC(),
	}
	if _, err := rs.reviewRepo.Create(dbc, []*types.Review{row}); err != nil {
		return nil, aggimpl.MapError(op, err)
	}
	rs.log.Ctx(ctx).Info("review created", "rating", rating)
	return row, nil
}

func (rs *reviewService) List(ctx context.Context, page, limit int) (*ReviewPage, error) {
	const op = "ReviewService.List"
	if page < 1 || limit < 1 {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "page and limit must be >= 1", nil)
	}
	var (
		items []*types.Review
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = rs.reviewRepo.ListNewest(dbctx.Context{Ctx: gctx}, (page-1)*limit, limit)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = rs.reviewRepo.Count(dbctx.Context{Ctx: gctx})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, aggimpl.MapError(op, err)
	}
	return &ReviewPage{Items: items, TotalCount: total}, nil
}
