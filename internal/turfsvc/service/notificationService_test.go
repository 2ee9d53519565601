package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/tapturf/turf-services/internal/comm"
	"github.com/tapturf/turf-services/internal/turfsvc/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateNotificationPublishes(t *testing.T) {
	env := newTestEnv()

	n, err := env.notifs.Create(context.Background(), "u1", models.NotifGameRequest,
		"New join request", "Asha wants to join", models.NotifMetadata("g1", "r1"))
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)
	assert.False(t, n.Read)

	require.Len(t, env.pub.subjects, 1)
	assert.Equal(t, comm.NotifyTopic, env.pub.subjects[0])

	var event comm.NotificationEvent
	require.NoError(t, json.Unmarshal(env.pub.payloads[0], &event))
	assert.Equal(t, n.ID, event.NotificationId)
	assert.Equal(t, "u1", event.UserId)
	assert.Equal(t, models.NotifGameRequest, event.Type)
}

func TestCreateNotificationNilPublisher(t *testing.T) {
	env := newTestEnv()
	env.notifs.pub = nil

	_, err := env.notifs.Create(context.Background(), "u1", models.NotifGameRequest,
		"New join request", "Asha wants to join", nil)
	require.NoError(t, err, "push is optional, the row still lands")
	assert.Len(t, env.store.notifications, 1)
}

func TestCreateNotificationDegradesToCache(t *testing.T) {
	env := newTestEnv()
	env.store.failAll = errors.New("dial tcp: connection refused")

	n, err := env.notifs.Create(context.Background(), "u1", models.NotifGameRequest,
		"New join request", "Asha wants to join", nil)
	require.NoError(t, err)

	assert.Empty(t, env.pub.subjects, "nothing durable was written, so no push")
	require.Len(t, env.cache.Notifications("u1"), 1)

	// the cached row shows up once the recipient polls
	list, err := env.notifs.List(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, n.ID, list[0].ID)
}

func TestListNotificationsNewestFirst(t *testing.T) {
	env := newTestEnv()
	for _, title := range []string{"first", "second", "third"} {
		_, err := env.notifs.Create(context.Background(), "u1", models.NotifGameRequest, title, "m", nil)
		require.NoError(t, err)
	}
	_, err := env.notifs.Create(context.Background(), "u2", models.NotifGameRequest, "other", "m", nil)
	require.NoError(t, err)

	list, err := env.notifs.List(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, list, 3, "only the recipient's rows")
	assert.Equal(t, "third", list[0].Title)
	assert.Equal(t, "first", list[2].Title)
}

func TestUnreadCountIncludesCache(t *testing.T) {
	env := newTestEnv()
	_, err := env.notifs.Create(context.Background(), "u1", models.NotifGameRequest, "a", "m", nil)
	require.NoError(t, err)
	read, err := env.notifs.Create(context.Background(), "u1", models.NotifGameRequest, "b", "m", nil)
	require.NoError(t, err)
	require.NoError(t, env.notifs.MarkRead(context.Background(), "u1", read.ID))

	env.store.failWrites = errors.New("dial tcp: connection refused")
	_, err = env.notifs.Create(context.Background(), "u1", models.NotifGameRequest, "c", "m", nil)
	require.NoError(t, err)

	count, err := env.notifs.UnreadCount(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one unread store row plus one cached row")
}

func TestMarkReadDegradesToCache(t *testing.T) {
	env := newTestEnv()
	env.store.failAll = errors.New("dial tcp: connection refused")

	n, err := env.notifs.Create(context.Background(), "u1", models.NotifGameRequest, "a", "m", nil)
	require.NoError(t, err)

	require.NoError(t, env.notifs.MarkRead(context.Background(), "u1", n.ID))

	count, err := env.notifs.UnreadCount(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestMarkReadUnknownIDSurfacesError(t *testing.T) {
	env := newTestEnv()
	env.store.failAll = errors.New("dial tcp: connection refused")

	err := env.notifs.MarkRead(context.Background(), "u1", "nope")
	assert.Error(t, err, "not in the store and not in the cache")
}

func TestNotificationsRequireAuth(t *testing.T) {
	env := newTestEnv()

	_, err := env.notifs.List(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = env.notifs.UnreadCount(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.ErrorIs(t, env.notifs.MarkRead(context.Background(), "", "n1"), ErrUnauthenticated)
}
