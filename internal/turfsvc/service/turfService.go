package service

import (
	"context"

	"github.com/tapturf/turf-services/internal/turfsvc/models"
	"github.com/tapturf/turf-services/internal/turfsvc/store"
)

// TurfService serves the read-only catalog the game lifecycle
// denormalizes from. Turf writes belong to the admin tooling and the
// seed command, not this service.
type TurfService struct {
	turfStore TurfStore
}

func NewTurfService(turfStore TurfStore) *TurfService {
	return &TurfService{turfStore: turfStore}
}

func (s *TurfService) List(ctx context.Context) ([]*models.Turf, error) {
	turfs, err := s.turfStore.ListTurfs(ctx)
	if err != nil {
		if store.IsUnavailable(err) {
			return nil, ErrStoreUnavailable
		}
		return nil, err
	}
	return turfs, nil
}

func (s *TurfService) Get(ctx context.Context, turfID string) (*models.Turf, error) {
	turf, err := s.turfStore.GetTurfByID(ctx, turfID)
	if err != nil {
		if store.IsUnavailable(err) {
			return nil, ErrStoreUnavailable
		}
		return nil, err
	}
	if turf == nil {
		return nil, ErrNotFound
	}
	return turf, nil
}
