package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tapturf/turf-services/internal/turfsvc/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() CreateGameInput {
	return CreateGameInput{
		TurfID:         "turf-1",
		Sport:          "football",
		Format:         "7v7",
		SkillLevel:     "intermediate",
		Date:           "2099-03-01",
		StartTime:      "18:00",
		EndTime:        "19:00",
		MaxPlayers:     14,
		PricePerPlayer: decimal.NewFromInt(120),
	}
}

func TestCreateGame(t *testing.T) {
	env := newTestEnv()
	env.seedUser("host-1", "Host")
	env.seedTurf("turf-1", "Greenfield Arena")

	game, err := env.games.Create(context.Background(), "host-1", validInput())
	require.NoError(t, err)

	assert.NotEmpty(t, game.ID)
	assert.Equal(t, "host-1", game.CreatorID)
	assert.Equal(t, "Greenfield Arena", game.TurfName, "turf fields denormalized at write time")
	assert.Equal(t, "Host", game.HostName, "host fields denormalized at write time")
	assert.Equal(t, 1, game.CurrentPlayers, "the host takes the first spot")
	assert.Equal(t, models.GameStatusOpen, game.Status)
	require.Contains(t, env.store.games, game.ID)
}

func TestCreateGameUnauthenticated(t *testing.T) {
	env := newTestEnv()

	_, err := env.games.Create(context.Background(), "", validInput())
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCreateGameInvalidInput(t *testing.T) {
	env := newTestEnv()
	env.seedUser("host-1", "Host")

	in := validInput()
	in.MaxPlayers = 1
	_, err := env.games.Create(context.Background(), "host-1", in)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateGameTurfMissing(t *testing.T) {
	env := newTestEnv()
	env.seedUser("host-1", "Host")

	_, err := env.games.Create(context.Background(), "host-1", validInput())
	assert.ErrorIs(t, err, ErrNotFound, "no silent placeholder seeding; run seedsvc instead")
	assert.Empty(t, env.store.games)
}

func TestCreateGameFallbackOnMissingProfile(t *testing.T) {
	env := newTestEnv()
	env.seedTurf("turf-1", "Greenfield Arena")
	env.store.failWrites = &pgconn.PgError{
		Code:           "23503",
		ConstraintName: "games_creator_id_fkey",
	}

	game, err := env.games.Create(context.Background(), "host-1", validInput())
	require.NoError(t, err, "the host's input must not be lost")
	assert.NotEmpty(t, game.ID)
	assert.Empty(t, env.store.games, "nothing durable was written")

	cached := env.cache.Games("host-1")
	require.Len(t, cached, 1)
	assert.Equal(t, game.ID, cached[0].ID)

	got, err := env.games.Get(context.Background(), "host-1", game.ID)
	require.NoError(t, err)
	assert.Equal(t, game.ID, got.ID, "get-by-id consults the caller's cache")

	listed, err := env.games.ListAvailable(context.Background(), "host-1", GameFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 1, "list merges the caller's cached games")

	// another principal never sees the shadow game
	other, err := env.games.ListAvailable(context.Background(), "u2", GameFilter{})
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestPrivateGameStaysOutOfAvailableView(t *testing.T) {
	env := newTestEnv()
	env.store.failAll = errors.New("dial tcp: connection refused")

	in := validInput()
	in.IsPrivate = true
	game, err := env.games.Create(context.Background(), "host-1", in)
	require.NoError(t, err)

	listed, err := env.games.ListAvailable(context.Background(), "host-1", GameFilter{})
	require.NoError(t, err)
	assert.Empty(t, listed, "private games never join the available view, cached or not")

	got, err := env.games.Get(context.Background(), "host-1", game.ID)
	require.NoError(t, err)
	assert.Equal(t, game.ID, got.ID, "direct lookup still works for the creator")
}

func TestCreateGameFallbackOnStoreDown(t *testing.T) {
	env := newTestEnv()
	env.store.failAll = errors.New("dial tcp: connection refused")

	game, err := env.games.Create(context.Background(), "host-1", validInput())
	require.NoError(t, err)
	assert.NotEmpty(t, game.ID)
	require.Len(t, env.cache.Games("host-1"), 1)
}

func TestListAvailableFiltersExpired(t *testing.T) {
	env := newTestEnv()
	now := time.Date(2025, 6, 15, 20, 0, 0, 0, time.UTC)
	env.games.now = func() time.Time { return now }

	env.seedGame(&models.Game{ID: "past", CreatorID: "h", Date: "2025-06-14", CurrentPlayers: 2, MaxPlayers: 10})
	env.seedGame(&models.Game{ID: "earlier-today", CreatorID: "h", Date: "2025-06-15", StartTime: "18:00", CurrentPlayers: 2, MaxPlayers: 10})
	env.seedGame(&models.Game{ID: "tonight", CreatorID: "h", Date: "2025-06-15", StartTime: "21:00", CurrentPlayers: 2, MaxPlayers: 10})
	env.seedGame(&models.Game{ID: "tomorrow", CreatorID: "h", Date: "2025-06-16", CurrentPlayers: 9, MaxPlayers: 10})

	games, err := env.games.ListAvailable(context.Background(), "u1", GameFilter{})
	require.NoError(t, err)

	ids := map[string]bool{}
	for _, g := range games {
		ids[g.ID] = true
		assert.False(t, ExpiredAt(g, now), "expired game leaked into the view")
	}
	assert.False(t, ids["past"])
	assert.False(t, ids["earlier-today"])
	assert.True(t, ids["tonight"])
	assert.True(t, ids["tomorrow"])

	assert.Equal(t, "tomorrow", games[0].ID, "closest-to-full surfaces first")
}

func TestUpdateGameForbidden(t *testing.T) {
	env := newTestEnv()
	env.seedGame(openGame("g1", "host-1", 2, 10))

	desc := "new description"
	_, err := env.games.Update(context.Background(), "u1", "g1", GamePatch{Description: &desc})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateGameTerminalIsFinal(t *testing.T) {
	env := newTestEnv()
	g := openGame("g1", "host-1", 2, 10)
	g.Status = models.GameStatusCancelled
	env.seedGame(g)

	open := models.GameStatusOpen
	_, err := env.games.Update(context.Background(), "host-1", "g1", GamePatch{Status: &open})
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestUpdateGameStatusMonotonic(t *testing.T) {
	env := newTestEnv()
	g := openGame("g1", "host-1", 2, 10)
	g.Status = models.GameStatusActive
	env.seedGame(g)

	upcoming := models.GameStatusUpcoming
	_, err := env.games.Update(context.Background(), "host-1", "g1", GamePatch{Status: &upcoming})
	assert.ErrorIs(t, err, ErrAlreadyProcessed, "status never moves backwards")

	completed := models.GameStatusCompleted
	updated, err := env.games.Update(context.Background(), "host-1", "g1", GamePatch{Status: &completed})
	require.NoError(t, err)
	assert.Equal(t, models.GameStatusCompleted, updated.Status)
}

func TestUpdateGameMaxBelowCurrent(t *testing.T) {
	env := newTestEnv()
	env.seedGame(openGame("g1", "host-1", 6, 10))

	four := 4
	_, err := env.games.Update(context.Background(), "host-1", "g1", GamePatch{MaxPlayers: &four})
	assert.ErrorIs(t, err, ErrGameFull)
}

func TestCancelNotifiesParticipants(t *testing.T) {
	env := newTestEnv()
	env.seedUser("host-1", "Host")
	env.seedUser("u1", "Asha")
	env.seedGame(openGame("g1", "host-1", 1, 10))
	env.store.requests["r1"] = &models.GameRequest{
		ID: "r1", GameID: "g1", UserID: "u1", Status: models.RequestStatusPending,
	}
	_, err := env.requests.Accept(context.Background(), "host-1", "r1")
	require.NoError(t, err)

	cancelled := models.GameStatusCancelled
	_, err = env.games.Update(context.Background(), "host-1", "g1", GamePatch{Status: &cancelled})
	require.NoError(t, err)

	notifs := env.store.notificationsOfType("u1", models.NotifGameCancelled)
	assert.Len(t, notifs, 1)
}
