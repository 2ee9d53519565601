package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/tapturf/turf-services/internal/turfsvc/fallback"
	"github.com/tapturf/turf-services/internal/turfsvc/models"
	"github.com/tapturf/turf-services/internal/turfsvc/store"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// RequestService drives the join-request state machine:
// pending -> accepted | rejected (host decision), or a pending request
// is hard-deleted by its own creator. No transition leaves a terminal
// state.
type RequestService struct {
	requestStore RequestStore
	gameStore    GameStore
	userStore    UserStore
	notifs       *NotificationService
	cache        *fallback.Cache
	now          func() time.Time
}

func NewRequestService(requestStore RequestStore, gameStore GameStore, userStore UserStore,
	notifs *NotificationService, cache *fallback.Cache) *RequestService {
	return &RequestService{
		requestStore: requestStore,
		gameStore:    gameStore,
		userStore:    userStore,
		notifs:       notifs,
		cache:        cache,
		now:          time.Now,
	}
}

// Send files a pending request for the acting player. Duplicate checks
// run against both the store and the caller's fallback bucket, so a
// request parked in the cache by an earlier degraded send still blocks
// a second one. On store failure the request itself is parked in the
// cache and the reply shape is identical to the durable path.
func (s *RequestService) Send(ctx context.Context, actorID, gameID, note string) (*models.GameRequest, error) {
	if actorID == "" {
		return nil, ErrUnauthenticated
	}

	req := &models.GameRequest{
		ID:     uuid.New().String(),
		GameID: gameID,
		UserID: actorID,
		Note:   note,
		Status: models.RequestStatusPending,
	}

	if dup := s.cache.ActiveRequest(actorID, gameID); dup != nil {
		return nil, dupOutcome(dup)
	}

	game, err := s.gameStore.GetGameByID(ctx, gameID)
	if err != nil {
		if !store.IsUnavailable(err) {
			return nil, err
		}
		return s.sendFallback(actorID, req, err)
	}
	if game == nil {
		game = s.cache.Game(actorID, gameID)
		if game == nil {
			return nil, ErrNotFound
		}
	}
	if game.Status != models.GameStatusOpen {
		return nil, ErrGameNotOpen
	}
	if game.CurrentPlayers >= game.MaxPlayers {
		return nil, ErrGameFull
	}

	existing, err := s.requestStore.GetActiveRequest(ctx, gameID, actorID)
	if err != nil {
		if !store.IsUnavailable(err) {
			return nil, err
		}
		return s.sendFallback(actorID, req, err)
	}
	if existing != nil {
		return nil, dupOutcome(existing)
	}

	requester, err := s.userStore.GetByID(ctx, actorID)
	if err != nil && !store.IsUnavailable(err) {
		return nil, err
	}
	hydrateRequester(req, requester)

	created, err := s.requestStore.CreateRequest(ctx, req)
	if err != nil {
		if store.IsUniqueViolation(err) {
			// two sends raced; the first row wins
			return nil, ErrDuplicateRequest
		}
		if store.IsUnavailable(err) || store.IsUserReferenceViolation(err) {
			return s.sendFallback(actorID, req, err)
		}
		return nil, err
	}

	s.notifyHost(ctx, game, created)

	return created, nil
}

func dupOutcome(existing *models.GameRequest) error {
	if existing.Status == models.RequestStatusAccepted {
		return ErrAlreadyJoined
	}
	return ErrDuplicateRequest
}

func (s *RequestService) sendFallback(actorID string, req *models.GameRequest, cause error) (*models.GameRequest, error) {
	log.Warnf("join request degraded to local cache: %v", cause)
	if dup := s.cache.ActiveRequest(actorID, req.GameID); dup != nil {
		return nil, dupOutcome(dup)
	}
	req.CreatedAt = s.now()
	req.UpdatedAt = req.CreatedAt
	if err := s.cache.PutRequest(actorID, req); err != nil {
		return nil, cause
	}
	// the host notification can only reach the cache when the cached
	// game names its creator; otherwise push waits for reconciliation
	if game := s.cache.Game(actorID, req.GameID); game != nil {
		s.notifyHost(context.Background(), game, req)
	}
	return req, nil
}

func (s *RequestService) notifyHost(ctx context.Context, game *models.Game, req *models.GameRequest) {
	_, err := s.notifs.Create(ctx, game.CreatorID, models.NotifGameRequest,
		"New join request",
		req.RequesterName+" wants to join your game at "+game.TurfName,
		models.NotifMetadata(game.ID, req.ID))
	if err != nil {
		log.Errorf("failed to notify host %s: %v", game.CreatorID, err)
	}
}

// Accept lets the host admit a pending request. The store transaction
// compare-and-swaps the status, re-checks capacity under a row lock,
// increments the count, and inserts the participant row, so concurrent
// accepts cannot double-admit.
func (s *RequestService) Accept(ctx context.Context, actorID, requestID string) (*models.GameRequest, error) {
	req, game, err := s.loadForDecision(ctx, actorID, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != models.RequestStatusPending {
		return nil, ErrAlreadyProcessed
	}
	if game.CurrentPlayers >= game.MaxPlayers {
		return nil, ErrGameFull
	}

	accepted, updatedGame, err := s.requestStore.AcceptRequest(ctx, requestID, uuid.New().String())
	if err != nil {
		switch {
		case errors.Is(err, store.ErrRequestNotPending):
			return nil, ErrAlreadyProcessed
		case errors.Is(err, store.ErrGameFull):
			return nil, ErrGameFull
		case errors.Is(err, store.ErrRequestNotFound):
			return nil, ErrNotFound
		case store.IsUnavailable(err):
			return s.acceptFallback(actorID, req, game, err)
		}
		return nil, err
	}

	s.notifyDecision(ctx, accepted, updatedGame, true)

	return accepted, nil
}

func (s *RequestService) acceptFallback(actorID string, req *models.GameRequest, game *models.Game, cause error) (*models.GameRequest, error) {
	log.Warnf("accept degraded to local cache: %v", cause)

	// shadow copies only; the store rows stay as they were
	shadowReq := *req
	shadowReq.Status = models.RequestStatusAccepted
	shadowReq.UpdatedAt = s.now()
	if err := s.cache.PutRequest(actorID, &shadowReq); err != nil {
		return nil, cause
	}
	shadowGame := *game
	shadowGame.CurrentPlayers++
	shadowGame.UpdatedAt = s.now()
	if err := s.cache.PutGame(actorID, &shadowGame); err != nil {
		return nil, cause
	}
	s.notifyDecision(context.Background(), &shadowReq, &shadowGame, true)
	return &shadowReq, nil
}

// Reject sets a pending request to rejected; no count or participant
// side effects.
func (s *RequestService) Reject(ctx context.Context, actorID, requestID string) (*models.GameRequest, error) {
	req, _, err := s.loadForDecision(ctx, actorID, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != models.RequestStatusPending {
		return nil, ErrAlreadyProcessed
	}

	rejected, err := s.requestStore.RejectRequest(ctx, requestID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrRequestNotPending):
			return nil, ErrAlreadyProcessed
		case store.IsUnavailable(err):
			log.Warnf("reject degraded to local cache: %v", err)
			shadow := *req
			shadow.Status = models.RequestStatusRejected
			shadow.UpdatedAt = s.now()
			if cacheErr := s.cache.PutRequest(actorID, &shadow); cacheErr != nil {
				return nil, err
			}
			s.notifyDecision(context.Background(), &shadow, nil, false)
			return &shadow, nil
		}
		return nil, err
	}

	s.notifyDecision(ctx, rejected, nil, false)

	return rejected, nil
}

// loadForDecision resolves the request and its game and verifies the
// actor hosts that game. Degraded sessions fall back to the actor's own
// cached copies.
func (s *RequestService) loadForDecision(ctx context.Context, actorID, requestID string) (*models.GameRequest, *models.Game, error) {
	if actorID == "" {
		return nil, nil, ErrUnauthenticated
	}

	req, err := s.requestStore.GetRequestByID(ctx, requestID)
	if err != nil && !store.IsUnavailable(err) {
		return nil, nil, err
	}
	if req == nil {
		for _, r := range s.cache.Requests(actorID) {
			if r.ID == requestID {
				req = r
				break
			}
		}
	}
	if req == nil {
		if err != nil {
			return nil, nil, ErrStoreUnavailable
		}
		return nil, nil, ErrNotFound
	}

	game, err := s.gameStore.GetGameByID(ctx, req.GameID)
	if err != nil && !store.IsUnavailable(err) {
		return nil, nil, err
	}
	if game == nil {
		game = s.cache.Game(actorID, req.GameID)
	}
	if game == nil {
		if err != nil {
			return nil, nil, ErrStoreUnavailable
		}
		return nil, nil, ErrNotFound
	}
	if game.CreatorID != actorID {
		return nil, nil, ErrForbidden
	}

	return req, game, nil
}

func (s *RequestService) notifyDecision(ctx context.Context, req *models.GameRequest, game *models.Game, accepted bool) {
	if accepted {
		_, err := s.notifs.Create(ctx, req.UserID, models.NotifGameRequestAccepted,
			"Request accepted",
			"You're in! Your join request was accepted.",
			models.NotifMetadata(req.GameID, req.ID))
		if err != nil {
			log.Errorf("failed to notify requester %s: %v", req.UserID, err)
		}
		if game != nil && game.CurrentPlayers >= game.MaxPlayers {
			_, err := s.notifs.Create(ctx, game.CreatorID, models.NotifGameFull,
				"Game full",
				"Your game at "+game.TurfName+" is full. All spots are taken.",
				models.NotifMetadata(game.ID, ""))
			if err != nil {
				log.Errorf("failed to notify host %s: %v", game.CreatorID, err)
			}
		}
		return
	}
	_, err := s.notifs.Create(ctx, req.UserID, models.NotifGameRequestRejected,
		"Request declined",
		"Your join request was declined by the host.",
		models.NotifMetadata(req.GameID, req.ID))
	if err != nil {
		log.Errorf("failed to notify requester %s: %v", req.UserID, err)
	}
}

// CancelMine hard-deletes the caller's own pending request so the
// duplicate check frees up for a later send.
func (s *RequestService) CancelMine(ctx context.Context, actorID, requestID string) error {
	if actorID == "" {
		return ErrUnauthenticated
	}

	req, err := s.requestStore.GetRequestByID(ctx, requestID)
	if err != nil && !store.IsUnavailable(err) {
		return err
	}
	if req == nil {
		for _, r := range s.cache.Requests(actorID) {
			if r.ID == requestID {
				if r.UserID != actorID {
					return ErrForbidden
				}
				if r.Status != models.RequestStatusPending {
					return ErrAlreadyProcessed
				}
				return s.cache.DeleteRequest(actorID, requestID)
			}
		}
		if err != nil {
			return ErrStoreUnavailable
		}
		return ErrNotFound
	}
	if req.UserID != actorID {
		return ErrForbidden
	}
	if req.Status != models.RequestStatusPending {
		return ErrAlreadyProcessed
	}

	err = s.requestStore.DeleteRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, store.ErrRequestNotPending) {
			return ErrAlreadyProcessed
		}
		if store.IsUnavailable(err) {
			log.Warnf("cancel degraded to local cache: %v", err)
			return s.cache.DeleteRequest(actorID, requestID)
		}
		return err
	}

	return nil
}

// ListForGame returns a game's requests to its host.
func (s *RequestService) ListForGame(ctx context.Context, actorID, gameID string) ([]*models.GameRequest, error) {
	if actorID == "" {
		return nil, ErrUnauthenticated
	}

	game, err := s.gameStore.GetGameByID(ctx, gameID)
	if err != nil && !store.IsUnavailable(err) {
		return nil, err
	}
	if game == nil {
		game = s.cache.Game(actorID, gameID)
	}
	if game == nil {
		if err != nil {
			return nil, ErrStoreUnavailable
		}
		return nil, ErrNotFound
	}
	if game.CreatorID != actorID {
		return nil, ErrForbidden
	}

	remote, err := s.requestStore.ListRequestsByGame(ctx, gameID)
	if err != nil {
		if !store.IsUnavailable(err) {
			return nil, err
		}
		log.Warnf("request list degraded to local cache: %v", err)
		remote = nil
	}

	var cached []*models.GameRequest
	for _, r := range s.cache.Requests(actorID) {
		if r.GameID == gameID {
			cached = append(cached, r)
		}
	}

	merged := MergeRequests(remote, cached)
	sortRequests(merged)

	return merged, nil
}

// ListMine returns the caller's requests across games.
func (s *RequestService) ListMine(ctx context.Context, actorID string) ([]*models.GameRequest, error) {
	if actorID == "" {
		return nil, ErrUnauthenticated
	}

	remote, err := s.requestStore.ListRequestsByUser(ctx, actorID)
	if err != nil {
		if !store.IsUnavailable(err) {
			return nil, err
		}
		log.Warnf("request list degraded to local cache: %v", err)
		remote = nil
	}

	var cached []*models.GameRequest
	for _, r := range s.cache.Requests(actorID) {
		if r.UserID == actorID {
			cached = append(cached, r)
		}
	}

	merged := MergeRequests(remote, cached)
	sortRequests(merged)

	return merged, nil
}

func sortRequests(reqs []*models.GameRequest) {
	sort.SliceStable(reqs, func(i, j int) bool {
		return reqs[i].CreatedAt.After(reqs[j].CreatedAt)
	})
}
