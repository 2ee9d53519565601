package fallback

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/tapturf/turf-services/internal/turfsvc/models"

	log "github.com/sirupsen/logrus"
)

// Cache is the in-process stand-in for the browser-session store the
// web client keeps when the primary store is unreachable. Entries are
// scoped to the principal that wrote them, invisible to store queries,
// and lost on restart. Every write replaces the whole serialized list
// for its bucket; there are no partial updates. The mutex is held
// across the full read-modify-write so concurrent writers for the same
// principal cannot drop each other's rows.
type Cache struct {
	mu      sync.RWMutex
	buckets map[string][]byte
}

func NewCache() *Cache {
	return &Cache{buckets: map[string][]byte{}}
}

func gamesKey(userID string) string         { return "games:" + userID }
func requestsKey(userID string) string      { return "requests:" + userID }
func notificationsKey(userID string) string { return "notifications:" + userID }

// loadLocked unmarshals a bucket into dst. A missing bucket leaves dst
// alone. Callers hold at least a read lock.
func (c *Cache) loadLocked(key string, dst interface{}) {
	raw, ok := c.buckets[key]
	if !ok {
		return
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		log.Errorf("fallback cache: corrupt bucket %s: %v", key, err)
	}
}

// saveLocked serializes src and replaces the bucket wholesale. Callers
// hold the write lock.
func (c *Cache) saveLocked(key string, src interface{}) error {
	raw, err := json.Marshal(src)
	if err != nil {
		return fmt.Errorf("fallback cache: failed to serialize bucket %s: %w", key, err)
	}
	c.buckets[key] = raw
	return nil
}

func (c *Cache) Games(userID string) []*models.Game {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var games []*models.Game
	c.loadLocked(gamesKey(userID), &games)
	return games
}

func (c *Cache) PutGame(userID string, g *models.Game) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var games []*models.Game
	c.loadLocked(gamesKey(userID), &games)
	replaced := false
	for i, existing := range games {
		if existing.ID == g.ID {
			games[i] = g
			replaced = true
			break
		}
	}
	if !replaced {
		games = append(games, g)
	}
	return c.saveLocked(gamesKey(userID), games)
}

func (c *Cache) Game(userID, gameID string) *models.Game {
	for _, g := range c.Games(userID) {
		if g.ID == gameID {
			return g
		}
	}
	return nil
}

func (c *Cache) Requests(userID string) []*models.GameRequest {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var reqs []*models.GameRequest
	c.loadLocked(requestsKey(userID), &reqs)
	return reqs
}

func (c *Cache) PutRequest(userID string, r *models.GameRequest) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var reqs []*models.GameRequest
	c.loadLocked(requestsKey(userID), &reqs)
	replaced := false
	for i, existing := range reqs {
		if existing.ID == r.ID {
			reqs[i] = r
			replaced = true
			break
		}
	}
	if !replaced {
		reqs = append(reqs, r)
	}
	return c.saveLocked(requestsKey(userID), reqs)
}

// ActiveRequest mirrors the store's duplicate check for degraded sends.
func (c *Cache) ActiveRequest(userID, gameID string) *models.GameRequest {
	for _, r := range c.Requests(userID) {
		if r.GameID == gameID && r.Active() {
			return r
		}
	}
	return nil
}

func (c *Cache) DeleteRequest(userID, requestID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var reqs []*models.GameRequest
	c.loadLocked(requestsKey(userID), &reqs)
	kept := reqs[:0]
	for _, r := range reqs {
		if r.ID != requestID {
			kept = append(kept, r)
		}
	}
	return c.saveLocked(requestsKey(userID), kept)
}

func (c *Cache) Notifications(userID string) []*models.Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var notifs []*models.Notification
	c.loadLocked(notificationsKey(userID), &notifs)
	return notifs
}

func (c *Cache) PutNotification(userID string, n *models.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var notifs []*models.Notification
	c.loadLocked(notificationsKey(userID), &notifs)
	notifs = append(notifs, n)
	return c.saveLocked(notificationsKey(userID), notifs)
}

func (c *Cache) MarkNotificationRead(userID, notificationID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	var notifs []*models.Notification
	c.loadLocked(notificationsKey(userID), &notifs)
	for _, n := range notifs {
		if n.ID == notificationID {
			n.Read = true
			if err := c.saveLocked(notificationsKey(userID), notifs); err != nil {
				log.Errorf("fallback cache: %v", err)
				return false
			}
			return true
		}
	}
	return false
}
