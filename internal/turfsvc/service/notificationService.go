package service

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/tapturf/turf-services/internal/comm"
	"github.com/tapturf/turf-services/internal/turfsvc/fallback"
	"github.com/tapturf/turf-services/internal/turfsvc/models"
	"github.com/tapturf/turf-services/internal/turfsvc/store"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Publisher is the NATS leg of the relay; *nats.Conn satisfies it.
// A nil publisher disables push, the REST poll endpoints still work.
type Publisher interface {
	Publish(subject string, data []byte) error
}

type NotificationService struct {
	notifStore NotificationStore
	cache      *fallback.Cache
	pub        Publisher
	now        func() time.Time
}

func NewNotificationService(notifStore NotificationStore, cache *fallback.Cache, pub Publisher) *NotificationService {
	return &NotificationService{
		notifStore: notifStore,
		cache:      cache,
		pub:        pub,
		now:        time.Now,
	}
}

// Create writes a notification row and publishes it for socket push.
// On store failure the row lands in the recipient's fallback bucket
// instead; push is skipped since nothing durable was written.
func (s *NotificationService) Create(ctx context.Context, userID, ntype, title, message string, metadata json.RawMessage) (*models.Notification, error) {
	n := &models.Notification{
		ID:       uuid.New().String(),
		UserID:   userID,
		Type:     ntype,
		Title:    title,
		Message:  message,
		Metadata: metadata,
	}

	created, err := s.notifStore.CreateNotification(ctx, n)
	if err != nil {
		if !store.IsUnavailable(err) && !store.IsUserReferenceViolation(err) {
			return nil, err
		}
		log.Warnf("notification store write failed, caching locally: %v", err)
		n.CreatedAt = s.now()
		if cacheErr := s.cache.PutNotification(userID, n); cacheErr != nil {
			return nil, err
		}
		return n, nil
	}

	s.publish(created)

	return created, nil
}

func (s *NotificationService) publish(n *models.Notification) {
	if s.pub == nil {
		return
	}
	event := comm.NotificationEvent{
		NotificationId: n.ID,
		UserId:         n.UserID,
		Type:           n.Type,
		Title:          n.Title,
		Message:        n.Message,
		Metadata:       n.Metadata,
		CreatedAt:      n.CreatedAt,
	}
	bytes, err := json.Marshal(event)
	if err != nil {
		log.Errorf("failed to marshal notification event: %v", err)
		return
	}
	// push is best effort, the poll endpoints remain authoritative
	if err := s.pub.Publish(comm.NotifyTopic, bytes); err != nil {
		log.Errorf("failed to publish notification event: %v", err)
	}
}

// List returns the recipient's notifications newest first, merging in
// any fallback-cached rows from this session.
func (s *NotificationService) List(ctx context.Context, actorID string) ([]*models.Notification, error) {
	if actorID == "" {
		return nil, ErrUnauthenticated
	}

	remote, err := s.notifStore.ListNotificationsByUser(ctx, actorID)
	if err != nil && !store.IsUnavailable(err) {
		return nil, err
	}
	if err != nil {
		log.Warnf("notification store read failed, serving cache: %v", err)
	}

	cached := s.cache.Notifications(actorID)
	merged := mergeNotifications(remote, cached)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})

	return merged, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, actorID string) (int, error) {
	if actorID == "" {
		return 0, ErrUnauthenticated
	}

	count, err := s.notifStore.UnreadCount(ctx, actorID)
	if err != nil {
		if !store.IsUnavailable(err) {
			return 0, err
		}
		log.Warnf("unread count failed, serving cache: %v", err)
		count = 0
	}

	for _, n := range s.cache.Notifications(actorID) {
		if !n.Read {
			count++
		}
	}

	return count, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, actorID, notificationID string) error {
	if actorID == "" {
		return ErrUnauthenticated
	}

	err := s.notifStore.MarkRead(ctx, notificationID)
	if err == nil {
		return nil
	}
	if !store.IsUnavailable(err) {
		return err
	}
	if s.cache.MarkNotificationRead(actorID, notificationID) {
		return nil
	}

	return err
}

func mergeNotifications(remote, cached []*models.Notification) []*models.Notification {
	seen := make(map[string]struct{}, len(remote))
	merged := make([]*models.Notification, 0, len(remote)+len(cached))
	for _, n := range remote {
		seen[n.ID] = struct{}{}
		merged = append(merged, n)
	}
	for _, n := range cached {
		if _, ok := seen[n.ID]; !ok {
			merged = append(merged, n)
		}
	}
	return merged
}
