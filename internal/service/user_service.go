package service

import (
	"context"
	"fmt"

	"productify/internal/apperr"
	"productify/internal/model"
	"productify/internal/repository"
)

// UserService syncs identity-provider profiles into the local users table.
type UserService interface {
	Sync(ctx context.Context, subjectID, email, name, imageURL string) (*model.User, error)
}

type userService struct {
	users repository.UserRepository
}

// NewUserService creates a new user service.
func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

// Sync upserts the caller's profile keyed by the provider-issued subject id.
// Calling it again with changed fields refreshes the single existing row,
// which makes it the one operation safe to repeat.
func (s *userService) Sync(ctx context.Context, subjectID, email, name, imageURL string) (*model.User, error) {
	if subjectID == "" {
		return nil, apperr.ErrUnauthenticated
	}

	user := &model.User{
		ID:       subjectID,
		Email:    email,
		Name:     name,
		ImageURL: imageURL,
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("upsert user %s: %w", subjectID, err)
	}

	// Re-read so the response carries database-assigned timestamps.
	synced, err := s.users.FindByID(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("reload user %s: %w", subjectID, err)
	}
	return synced, nil
}
