package service

import (
	"context"
	"sort"
	"time"

	"github.com/tapturf/turf-services/internal/turfsvc/fallback"
	"github.com/tapturf/turf-services/internal/turfsvc/models"
	"github.com/tapturf/turf-services/internal/turfsvc/store"
)

// memStore is an in-memory implementation of every store interface.
// failAll fails every call; failWrites fails only mutations, so
// degraded-write paths can be exercised with working reads.
type memStore struct {
	failAll    error
	failWrites error

	games         map[string]*models.Game
	requests      map[string]*models.GameRequest
	participants  []*models.GameParticipant
	notifications []*models.Notification
	users         map[string]*models.User
	turfs         map[string]*models.Turf

	clock time.Time
}

func newMemStore() *memStore {
	return &memStore{
		games:    map[string]*models.Game{},
		requests: map[string]*models.GameRequest{},
		users:    map[string]*models.User{},
		turfs:    map[string]*models.Turf{},
		clock:    time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memStore) readErr() error {
	return m.failAll
}

func (m *memStore) writeErr() error {
	if m.failAll != nil {
		return m.failAll
	}
	return m.failWrites
}

func (m *memStore) GetGameByID(_ context.Context, gameID string) (*models.Game, error) {
	if err := m.readErr(); err != nil {
		return nil, err
	}
	return m.games[gameID], nil
}

func (m *memStore) ListOpenGames(_ context.Context, sport string) ([]*models.Game, error) {
	if err := m.readErr(); err != nil {
		return nil, err
	}
	var out []*models.Game
	for _, g := range m.games {
		if g.Status != models.GameStatusOpen || g.IsPrivate {
			continue
		}
		if sport != "" && g.Sport != sport {
			continue
		}
		out = append(out, g)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memStore) CreateGame(_ context.Context, g *models.Game) (*models.Game, error) {
	if err := m.writeErr(); err != nil {
		return nil, err
	}
	g.CreatedAt = m.tick()
	g.UpdatedAt = g.CreatedAt
	m.games[g.ID] = g
	return g, nil
}

func (m *memStore) UpdateGame(_ context.Context, g *models.Game) (*models.Game, error) {
	if err := m.writeErr(); err != nil {
		return nil, err
	}
	if _, ok := m.games[g.ID]; !ok {
		return nil, nil
	}
	g.UpdatedAt = m.tick()
	m.games[g.ID] = g
	return g, nil
}

func (m *memStore) GetRequestByID(_ context.Context, requestID string) (*models.GameRequest, error) {
	if err := m.readErr(); err != nil {
		return nil, err
	}
	return m.requests[requestID], nil
}

func (m *memStore) GetActiveRequest(_ context.Context, gameID, userID string) (*models.GameRequest, error) {
	if err := m.readErr(); err != nil {
		return nil, err
	}
	for _, r := range m.requests {
		if r.GameID == gameID && r.UserID == userID && r.Active() {
			return r, nil
		}
	}
	return nil, nil
}

func (m *memStore) ListRequestsByGame(_ context.Context, gameID string) ([]*models.GameRequest, error) {
	if err := m.readErr(); err != nil {
		return nil, err
	}
	var out []*models.GameRequest
	for _, r := range m.requests {
		if r.GameID == gameID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) ListRequestsByUser(_ context.Context, userID string) ([]*models.GameRequest, error) {
	if err := m.readErr(); err != nil {
		return nil, err
	}
	var out []*models.GameRequest
	for _, r := range m.requests {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) CreateRequest(_ context.Context, r *models.GameRequest) (*models.GameRequest, error) {
	if err := m.writeErr(); err != nil {
		return nil, err
	}
	r.CreatedAt = m.tick()
	r.UpdatedAt = r.CreatedAt
	m.requests[r.ID] = r
	return r, nil
}

func (m *memStore) AcceptRequest(_ context.Context, requestID, participantID string) (*models.GameRequest, *models.Game, error) {
	if err := m.writeErr(); err != nil {
		return nil, nil, err
	}
	req, ok := m.requests[requestID]
	if !ok {
		return nil, nil, store.ErrRequestNotFound
	}
	if req.Status != models.RequestStatusPending {
		return nil, nil, store.ErrRequestNotPending
	}
	game, ok := m.games[req.GameID]
	if !ok {
		return nil, nil, store.ErrRequestNotFound
	}
	if game.CurrentPlayers >= game.MaxPlayers {
		return nil, nil, store.ErrGameFull
	}
	req.Status = models.RequestStatusAccepted
	req.UpdatedAt = m.tick()
	game.CurrentPlayers++
	game.UpdatedAt = req.UpdatedAt
	m.participants = append(m.participants, &models.GameParticipant{
		ID:       participantID,
		GameID:   game.ID,
		UserID:   req.UserID,
		JoinedAt: req.UpdatedAt,
	})
	return req, game, nil
}

func (m *memStore) RejectRequest(_ context.Context, requestID string) (*models.GameRequest, error) {
	if err := m.writeErr(); err != nil {
		return nil, err
	}
	req, ok := m.requests[requestID]
	if !ok || req.Status != models.RequestStatusPending {
		return nil, store.ErrRequestNotPending
	}
	req.Status = models.RequestStatusRejected
	req.UpdatedAt = m.tick()
	return req, nil
}

func (m *memStore) DeleteRequest(_ context.Context, requestID string) error {
	if err := m.writeErr(); err != nil {
		return err
	}
	req, ok := m.requests[requestID]
	if !ok || req.Status != models.RequestStatusPending {
		return store.ErrRequestNotPending
	}
	delete(m.requests, requestID)
	return nil
}

func (m *memStore) GetParticipantsByGameID(_ context.Context, gameID string) ([]*models.GameParticipant, error) {
	if err := m.readErr(); err != nil {
		return nil, err
	}
	var out []*models.GameParticipant
	for _, p := range m.participants {
		if p.GameID == gameID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) CreateNotification(_ context.Context, n *models.Notification) (*models.Notification, error) {
	if err := m.writeErr(); err != nil {
		return nil, err
	}
	n.CreatedAt = m.tick()
	m.notifications = append(m.notifications, n)
	return n, nil
}

func (m *memStore) ListNotificationsByUser(_ context.Context, userID string) ([]*models.Notification, error) {
	if err := m.readErr(); err != nil {
		return nil, err
	}
	var out []*models.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memStore) UnreadCount(_ context.Context, userID string) (int, error) {
	if err := m.readErr(); err != nil {
		return 0, err
	}
	count := 0
	for _, n := range m.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (m *memStore) MarkRead(_ context.Context, notificationID string) error {
	if err := m.writeErr(); err != nil {
		return err
	}
	for _, n := range m.notifications {
		if n.ID == notificationID {
			n.Read = true
			return nil
		}
	}
	return nil
}

func (m *memStore) GetByID(_ context.Context, id string) (*models.User, error) {
	if err := m.readErr(); err != nil {
		return nil, err
	}
	return m.users[id], nil
}

func (m *memStore) CreateUser(_ context.Context, user models.User) (string, error) {
	if err := m.writeErr(); err != nil {
		return "", err
	}
	user.CreatedAt = m.tick()
	user.UpdatedAt = user.CreatedAt
	m.users[user.UserId] = &user
	return user.UserId, nil
}

func (m *memStore) GetTurfByID(_ context.Context, turfID string) (*models.Turf, error) {
	if err := m.readErr(); err != nil {
		return nil, err
	}
	return m.turfs[turfID], nil
}

func (m *memStore) ListTurfs(_ context.Context) ([]*models.Turf, error) {
	if err := m.readErr(); err != nil {
		return nil, err
	}
	var out []*models.Turf
	for _, t := range m.turfs {
		out = append(out, t)
	}
	return out, nil
}

// notificationsOfType filters the fake's rows for assertions.
func (m *memStore) notificationsOfType(userID, ntype string) []*models.Notification {
	var out []*models.Notification
	for _, n := range m.notifications {
		if n.UserID == userID && n.Type == ntype {
			out = append(out, n)
		}
	}
	return out
}

// recordingPublisher captures push events for assertions.
type recordingPublisher struct {
	subjects []string
	payloads [][]byte
}

func (p *recordingPublisher) Publish(subject string, data []byte) error {
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, data)
	return nil
}

// testEnv wires the services over one memStore and one cache.
type testEnv struct {
	store    *memStore
	cache    *fallback.Cache
	pub      *recordingPublisher
	notifs   *NotificationService
	games    *GameService
	requests *RequestService
}

func newTestEnv() *testEnv {
	ms := newMemStore()
	cache := fallback.NewCache()
	pub := &recordingPublisher{}
	notifs := NewNotificationService(ms, cache, pub)
	games := NewGameService(ms, ms, ms, ms, notifs, cache)
	requests := NewRequestService(ms, ms, ms, notifs, cache)
	return &testEnv{
		store:    ms,
		cache:    cache,
		pub:      pub,
		notifs:   notifs,
		games:    games,
		requests: requests,
	}
}

// seedUser, seedTurf, seedGame install fixture rows directly.
func (e *testEnv) seedUser(id, name string) {
	e.store.users[id] = &models.User{UserId: id, Name: name, Phone: "99" + id, Status: "ACTIVE"}
}

func (e *testEnv) seedTurf(id, name string) {
	e.store.turfs[id] = &models.Turf{ID: id, OwnerID: "owner-1", Name: name, Address: name + " street"}
}

func (e *testEnv) seedGame(g *models.Game) *models.Game {
	if g.Status == "" {
		g.Status = models.GameStatusOpen
	}
	g.CreatedAt = e.store.tick()
	g.UpdatedAt = g.CreatedAt
	e.store.games[g.ID] = g
	return g
}
