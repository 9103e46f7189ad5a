package domain

import (
	"context"
	"errors"
	"log/slog"
)

type loggingUserFinder struct {
	logger *slog.Logger
	next   UserFinder
}

// NewLoggingUserFinder logs store faults. Missing users are an expected
// outcome of authentication and are not logged.
func NewLoggingUserFinder(logger *slog.Logger, next UserFinder) UserFinder {
	if logger == nil || next == nil {
		return next
	}

	return &loggingUserFinder{
		logger: logger,
		next:   next,
	}
}

func (f *loggingUserFinder) FindByID(ctx context.Context, id string) (User, error) {
	user, err := f.next.FindByID(ctx, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		f.logger.ErrorContext(ctx, "find user failed", "user_id", id, "err", err.Error())
	}
	return user, err
}

type loggingUserService struct {
	logger *slog.Logger
	next   UserService
}

func NewLoggingUserService(logger *slog.Logger, next UserService) UserService {
	if logger == nil || next == nil {
		return next
	}

	return &loggingUserService{
		logger: logger,
		next:   next,
	}
}

func (s *loggingUserService) CreateUser(ctx context.Context, input CreateUserInput) (User, error) {
	user, err := s.next.CreateUser(ctx, input)
	if err != nil {
		s.logger.ErrorContext(ctx, "create user failed", "email", input.Email, "err", err.Error())
		return User{}, err
	}

	s.logger.InfoContext(ctx, "user created", "id", user.ID, "provider", user.AuthProvider, "active", user.IsActive)
	return user, nil
}
