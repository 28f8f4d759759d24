package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/itemledger/itemledger/internal/metrics"
	"github.com/itemledger/itemledger/internal/model"
	"github.com/itemledger/itemledger/internal/repository"
)

// UserService handles user business logic.
type UserService struct {
	store   repository.UserStore
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(store repository.UserStore, recorder metrics.Recorder, logger *slog.Logger) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		store:   store,
		metrics: recorder,
		logger:  logger.With("component", "user_service"),
	}
}

// ListUsers returns every user in creation order.
func (s *UserService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetUser returns one user.
func (s *UserService) GetUser(ctx context.Context, id int64) (*model.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// CreateUser validates input and registers a new user.
func (s *UserService) CreateUser(ctx context.Context, input model.NewUser) (*model.User, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	u, err := s.store.CreateUser(ctx, input)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return nil, ErrEmailExists
		case errors.Is(err, repository.ErrUserNotFound):
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.IncEntityCreated(metrics.EntityUser)
	s.logger.Info("user created", "user_id", u.ID)
	return u, nil
}

// UpdateUser applies a partial update. Email uniqueness is re-checked when it changes.
func (s *UserService) UpdateUser(ctx context.Context, id int64, patch model.UserPatch) (*model.User, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	u, err := s.store.UpdateUser(ctx, id, patch)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return nil, ErrEmailExists
		case errors.Is(err, repository.ErrUserNotFound):
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.metrics.IncEntityUpdated(metrics.EntityUser)
	s.logger.Info("user updated", "user_id", u.ID)
	return u, nil
}

// DeleteUser removes a user. Items owned by the user are not touched.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.store.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.metrics.IncEntityDeleted(metrics.EntityUser)
	s.logger.Info("user deleted", "user_id", id)
	return nil
}
