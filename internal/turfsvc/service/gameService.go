package service

import (
	"context"
	"time"

	"github.com/tapturf/turf-services/internal/turfsvc/fallback"
	"github.com/tapturf/turf-services/internal/turfsvc/models"
	"github.com/tapturf/turf-services/internal/turfsvc/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// Rank of each status on the one-way road toward a terminal state.
var statusRank = map[string]int{
	models.GameStatusOpen:      0,
	models.GameStatusUpcoming:  1,
	models.GameStatusActive:    2,
	models.GameStatusCompleted: 3,
	models.GameStatusCancelled: 3,
}

type GameService struct {
	gameStore    GameStore
	turfStore    TurfStore
	userStore    UserStore
	participants ParticipantStore
	notifs       *NotificationService
	cache        *fallback.Cache
	now          func() time.Time
}

func NewGameService(gameStore GameStore, turfStore TurfStore, userStore UserStore,
	participants ParticipantStore, notifs *NotificationService, cache *fallback.Cache) *GameService {
	return &GameService{
		gameStore:    gameStore,
		turfStore:    turfStore,
		userStore:    userStore,
		participants: participants,
		notifs:       notifs,
		cache:        cache,
		now:          time.Now,
	}
}

type CreateGameInput struct {
	TurfID         string          `json:"turf_id"`
	Sport          string          `json:"sport"`
	Format         string          `json:"format"`
	SkillLevel     string          `json:"skill_level"`
	Date           string          `json:"date"`
	StartTime      string          `json:"start_time"`
	EndTime        string          `json:"end_time"`
	TimeSlot       string          `json:"time_slot"`
	MaxPlayers     int             `json:"max_players"`
	PricePerPlayer decimal.Decimal `json:"price_per_player"`
	Description    string          `json:"description"`
	IsPrivate      bool            `json:"is_private"`
}

type GameFilter struct {
	Sport string
}

// Create validates the turf reference, hydrates the denormalized
// fields, and inserts the game. A missing creator profile row or an
// unreachable store must not lose the host's input: the game is given a
// client-generated id and parked in the host's fallback bucket instead.
func (s *GameService) Create(ctx context.Context, actorID string, in CreateGameInput) (*models.Game, error) {
	if actorID == "" {
		return nil, ErrUnauthenticated
	}
	if in.TurfID == "" || in.Date == "" || in.MaxPlayers < 2 {
		return nil, ErrInvalidInput
	}

	g := &models.Game{
		ID:             uuid.New().String(),
		CreatorID:      actorID,
		TurfID:         in.TurfID,
		Sport:          in.Sport,
		Format:         in.Format,
		SkillLevel:     in.SkillLevel,
		Date:           in.Date,
		StartTime:      in.StartTime,
		EndTime:        in.EndTime,
		TimeSlot:       in.TimeSlot,
		CurrentPlayers: 1, // the host plays
		MaxPlayers:     in.MaxPlayers,
		PricePerPlayer: in.PricePerPlayer,
		Status:         models.GameStatusOpen,
		Description:    in.Description,
		IsPrivate:      in.IsPrivate,
	}

	turf, err := s.turfStore.GetTurfByID(ctx, in.TurfID)
	if err != nil {
		if !store.IsUnavailable(err) {
			return nil, err
		}
		return s.createFallback(actorID, g, err)
	}
	if turf == nil {
		// Seeding placeholder turfs from here was removed; run seedsvc
		// against a fresh deployment instead.
		return nil, ErrNotFound
	}
	g.TurfName = turf.Name
	g.TurfAddress = turf.Address

	host, err := s.userStore.GetByID(ctx, actorID)
	if err != nil {
		if !store.IsUnavailable(err) {
			return nil, err
		}
		return s.createFallback(actorID, g, err)
	}
	hydrateHost(g, host)

	created, err := s.gameStore.CreateGame(ctx, g)
	if err != nil {
		if store.IsUnavailable(err) || store.IsUserReferenceViolation(err) {
			return s.createFallback(actorID, g, err)
		}
		return nil, err
	}

	return created, nil
}

func (s *GameService) createFallback(actorID string, g *models.Game, cause error) (*models.Game, error) {
	log.Warnf("game create degraded to local cache: %v", cause)
	g.CreatedAt = s.now()
	g.UpdatedAt = g.CreatedAt
	if err := s.cache.PutGame(actorID, g); err != nil {
		return nil, cause
	}
	return g, nil
}

// ListAvailable returns joinable games: open, not expired, games
// closest to full first. Fallback-cached games from the caller's own
// session are merged in, store rows winning on id collision.
func (s *GameService) ListAvailable(ctx context.Context, actorID string, filter GameFilter) ([]*models.Game, error) {
	remote, err := s.gameStore.ListOpenGames(ctx, filter.Sport)
	if err != nil {
		if !store.IsUnavailable(err) {
			return nil, err
		}
		log.Warnf("game list degraded to local cache: %v", err)
		remote = nil
	}

	var cached []*models.Game
	for _, g := range s.cache.Games(actorID) {
		if g.Status != models.GameStatusOpen || g.IsPrivate {
			continue
		}
		if filter.Sport != "" && g.Sport != filter.Sport {
			continue
		}
		cached = append(cached, g)
	}

	games := FilterExpired(MergeGames(remote, cached), s.now())
	SortAvailable(games)

	return games, nil
}

func (s *GameService) Get(ctx context.Context, actorID, gameID string) (*models.Game, error) {
	g, err := s.gameStore.GetGameByID(ctx, gameID)
	if err != nil && !store.IsUnavailable(err) {
		return nil, err
	}
	if g != nil {
		return g, nil
	}
	if cached := s.cache.Game(actorID, gameID); cached != nil {
		return cached, nil
	}
	if err != nil {
		return nil, ErrStoreUnavailable
	}

	return nil, ErrNotFound
}

type GamePatch struct {
	Date           *string          `json:"date"`
	StartTime      *string          `json:"start_time"`
	EndTime        *string          `json:"end_time"`
	TimeSlot       *string          `json:"time_slot"`
	SkillLevel     *string          `json:"skill_level"`
	MaxPlayers     *int             `json:"max_players"`
	PricePerPlayer *decimal.Decimal `json:"price_per_player"`
	Description    *string          `json:"description"`
	IsPrivate      *bool            `json:"is_private"`
	Status         *string          `json:"status"`
}

// Update applies a host edit. Only the creator may edit; terminal
// statuses are final; status can only move toward a terminal state.
// Cancelling fans out game_cancelled notifications to participants.
func (s *GameService) Update(ctx context.Context, actorID, gameID string, patch GamePatch) (*models.Game, error) {
	if actorID == "" {
		return nil, ErrUnauthenticated
	}

	g, err := s.Get(ctx, actorID, gameID)
	if err != nil {
		return nil, err
	}
	if g.CreatorID != actorID {
		return nil, ErrForbidden
	}
	if g.Terminal() {
		return nil, ErrAlreadyProcessed
	}

	if err := applyPatch(g, patch); err != nil {
		return nil, err
	}

	updated, err := s.gameStore.UpdateGame(ctx, g)
	if err != nil {
		if !store.IsUnavailable(err) {
			return nil, err
		}
		log.Warnf("game update degraded to local cache: %v", err)
		g.UpdatedAt = s.now()
		if cacheErr := s.cache.PutGame(actorID, g); cacheErr != nil {
			return nil, err
		}
		updated = g
	} else if updated == nil {
		return nil, ErrNotFound
	} else {
		// keep any session copy in step with the store row
		if s.cache.Game(actorID, gameID) != nil {
			_ = s.cache.PutGame(actorID, updated)
		}
	}

	if updated.Status == models.GameStatusCancelled {
		s.notifyCancelled(ctx, updated)
	}

	return updated, nil
}

func applyPatch(g *models.Game, patch GamePatch) error {
	if patch.Date != nil {
		g.Date = *patch.Date
	}
	if patch.StartTime != nil {
		g.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		g.EndTime = *patch.EndTime
	}
	if patch.TimeSlot != nil {
		g.TimeSlot = *patch.TimeSlot
	}
	if patch.SkillLevel != nil {
		g.SkillLevel = *patch.SkillLevel
	}
	if patch.MaxPlayers != nil {
		if *patch.MaxPlayers < g.CurrentPlayers {
			return ErrGameFull
		}
		g.MaxPlayers = *patch.MaxPlayers
	}
	if patch.PricePerPlayer != nil {
		g.PricePerPlayer = *patch.PricePerPlayer
	}
	if patch.Description != nil {
		g.Description = *patch.Description
	}
	if patch.IsPrivate != nil {
		g.IsPrivate = *patch.IsPrivate
	}
	if patch.Status != nil {
		next, ok := statusRank[*patch.Status]
		if !ok || next <= statusRank[g.Status] {
			return ErrAlreadyProcessed
		}
		g.Status = *patch.Status
	}
	return nil
}

func (s *GameService) notifyCancelled(ctx context.Context, g *models.Game) {
	participants, err := s.participants.GetParticipantsByGameID(ctx, g.ID)
	if err != nil {
		log.Errorf("cancel fan-out: failed to list participants for game %s: %v", g.ID, err)
		return
	}
	for _, p := range participants {
		if p.UserID == g.CreatorID {
			continue
		}
		_, err := s.notifs.Create(ctx, p.UserID, models.NotifGameCancelled,
			"Game cancelled",
			g.HostName+" cancelled the game at "+g.TurfName,
			models.NotifMetadata(g.ID, ""))
		if err != nil {
			log.Errorf("cancel fan-out: failed to notify user %s: %v", p.UserID, err)
		}
	}
}

// ListParticipants returns the accepted roster for a game.
func (s *GameService) ListParticipants(ctx context.Context, gameID string) ([]*models.GameParticipant, error) {
	participants, err := s.participants.GetParticipantsByGameID(ctx, gameID)
	if err != nil {
		if store.IsUnavailable(err) {
			return nil, ErrStoreUnavailable
		}
		return nil, err
	}
	return participants, nil
}
