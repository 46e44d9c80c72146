package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	aggimpl "github.com/yungbote/quizprogress-backend/internal/data/aggregates"
	"github.com/yungbote/quizprogress-backend/internal/data/repos"
	types "github.com/yungbote/quizprogress-backend/internal/domain"
	domainagg "github.com/yungbote/quizprogress-backend/internal/domain/aggregates"
	"github.com/yungbote/quizprogress-backend/internal/platform/ctxutil"
	"github.com/yungbote/quizprogress-backend/internal/platform/dbctx"
	"github.com/yungbote/quizprogress-backend/internal/platform/logger"
)

const MaxNameLen = 32

type UserService interface {
	// GetMe loads the caller with favorites and the attempt ledger.
	GetMe(ctx context.Context) (*types.User, error)
	UpdateName(ctx context.Context, name string) (*types.User, error)
	UploadAvatarImage(ctx context.Context, raw []byte) (*types.User, error)
	// ResetAvatar replaces the caller's avatar with a generated initials image.
	ResetAvatar(ctx context.Context) (*types.User, error)
}

type userService struct {
	log           *logger.Logger
	users         UserReader
	userRepo      repos.UserRepo
	avatarService AvatarService
}

func NewUserService(log *logger.Logger, users UserReader, userRepo repos.UserRepo, avatarService AvatarService) UserService {
	return &userService{
		log:           log.With("service", "UserService"),
		users:         users,
		userRepo:      userRepo,
		avatarService: avatarService,
	}
}

func callerID(ctx context.Context, op string) (uuid.UUID, error) {
	id := ctxutil.UserID(ctx)
	if id == uuid.Nil {
		return uuid.Nil, domainagg.NewError(domainagg.CodeValidation, op, "request data not set in context", nil)
	}
	return id, nil
}

func (us *userService) GetMe(ctx context.Context) (*types.User, error) {
	id, err := callerID(ctx, "UserService.GetMe")
	if err != nil {
		return nil, err
	}
	return us.users.FindUserByID(ctx, id)
}

// ValidateName trims name and checks its length in characters.
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	if n == 0 || n > MaxNameLen {
		return "", domainagg.NewError(domainagg.CodeValidation, "ValidateName",
			fmt.Sprintf("name must be 1..%d characters", MaxNameLen), nil)
	}
	return name, nil
}

func (us *userService) UpdateName(ctx context.Context, name string) (*types.User, error) {
	const op = "UserService.UpdateName"
	id, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	name, err = ValidateName(name)
	if err != nil {
		return nil, err
	}
	if err := us.userRepo.UpdateName(dbctx.Context{Ctx: ctx}, id, name); err != nil {
		return nil, us.mapRepoErr(op, err)
	}
	return us.users.FindUserByID(ctx, id)
}

func (us *userService) UploadAvatarImage(ctx context.Context, raw []byte) (*types.User, error) {
	const op = "UserService.UploadAvatarImage"
	if len(raw) == 0 || len(raw) > MaxAvatarBytes {
		return nil, domainagg.NewError(domainagg.CodeValidation, op,
			fmt.Sprintf("avatar must be 1..%d bytes", MaxAvatarBytes), nil)
	}
	return us.replaceAvatar(ctx, op, func(u *types.User) error {
		err := us.avatarService.UploadImageAvatar(ctx, u, raw)
		switch {
		case errors.Is(err, ErrInvalidAvatar):
			return domainagg.Wrap(domainagg.CodeValidation, op, err)
		case err != nil:
			return domainagg.Wrap(domainagg.CodeUnavailable, op, err)
		}
		return nil
	})
}

func (us *userService) ResetAvatar(ctx context.Context) (*types.User, error) {
	const op = "UserService.ResetAvatar"
	return us.replaceAvatar(ctx, op, func(u *types.User) error {
		if err := us.avatarService.UploadInitialsAvatar(ctx, u); err != nil {
			return domainagg.Wrap(domainagg.CodeUnavailable, op, err)
		}
		return nil
	})
}

func (us *userService) replaceAvatar(ctx context.Context, op string, render func(u *types.User) error) (*types.User, error) {
	id, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	if us.avatarService == nil {
		return nil, domainagg.NewError(domainagg.CodeUnavailable, op, "avatar storage not configured", nil)
	}
	dbc := dbctx.Context{Ctx: ctx}
	u, err := us.userRepo.GetByID(dbc, id)
	if err != nil {
		return nil, us.mapRepoErr(op, err)
	}
	if u == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, "user not found", nil)
	}
	if err := render(u); err != nil {
		return nil, err
	}
	if err := us.userRepo.UpdateAvatarFields(dbc, id, u.AvatarBucketKey, u.AvatarURL); err != nil {
		return nil, us.mapRepoErr(op, err)
	}
	us.log.Ctx(ctx).Info("avatar updated", "key", u.AvatarBucketKey)
	return us.users.FindUserByID(ctx, id)
}

func (us *userService) mapRepoErr(op string, err error) error {
	mapped := aggimpl.MapError(op, err)
	if !domainagg.IsCode(mapped, domainagg.CodeNotFound) {
		us.log.Warn("user repo call failed", "op", op, "error", err)
	}
	return mapped
}
