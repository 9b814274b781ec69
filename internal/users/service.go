package users

import (
	"context"
	"errors"
	"strings"

	"eventpass/pkg/logger"
)

type Service interface {
	Register(ctx context.Context, userID string, req *RegisterRequest) (*User, error)
	GetProfile(ctx context.Context, userID string) (*User, error)
}

type service struct {
	repo Repository
	log  *logger.Logger
}

func NewService(repo Repository, log *logger.Logger) Service {
	if log == nil {
		log = logger.GetDefault()
	}
	return &service{repo: repo, log: log.WithComponent("users")}
}

// Register stores the profile once per identity
func (s *service) Register(ctx context.Context, userID string, req *RegisterRequest) (*User, error) {
	_, err := s.repo.GetByID(ctx, userID)
	if err == nil {
		return nil, ErrAlreadyRegistered
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	user := &User{
		ID:        userID,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.WithUserID(userID).InfoContext(ctx, "user registered")
	return user, nil
}

func (s *service) GetProfile(ctx context.Context, userID string) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}
