package service

import (
	"context"
	"fmt"

	"github.com/tapturf/turf-services/internal/turfsvc/models"
	"github.com/tapturf/turf-services/internal/turfsvc/store"
)

// UserService keeps the profile row behind the denormalized display
// fields. Authentication itself lives with the identity provider; this
// only mirrors its subject into the users table.
type UserService struct {
	userStore UserStore
}

func NewUserService(userStore UserStore) *UserService {
	return &UserService{userStore: userStore}
}

// GetOrCreateUser checks if a user exists and creates them if not.
// Called when an authenticated principal first touches the API, so the
// user-reference foreign keys on games and requests can be satisfied.
func (s *UserService) GetOrCreateUser(ctx context.Context, userInfo models.User) (*models.User, error) {
	existing, err := s.userStore.GetByID(ctx, userInfo.UserId)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	userInfo.Status = "ACTIVE"
	userId, err := s.userStore.CreateUser(ctx, userInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	userInfo.UserId = userId

	return &userInfo, nil
}

// Get serves the public profile read behind host and requester display
// names.
func (s *UserService) Get(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		if store.IsUnavailable(err) {
			return nil, ErrStoreUnavailable
		}
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}
