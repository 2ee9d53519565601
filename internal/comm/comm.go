package comm

import (
	"encoding/json"
	"time"
)

// Topic the turf service publishes notification events on; socketsvc
// subscribes to it and pushes to connected clients.
const NotifyTopic = "notify.service"

type WSMessage struct {
	Type     string          `json:"type"` // e.g. "init", "notification"
	Data     json.RawMessage `json:"data"`
	SocketId string          `json:"socketid"`
}

// InitPayload binds a freshly opened socket to a user id so
// notification events can be routed to it.
type InitPayload struct {
	UserId string `json:"user_id"`
	Name   string `json:"name"`
}

// NotificationEvent crosses NATS from turfsvc to socketsvc whenever a
// notification row is created in the store.
type NotificationEvent struct {
	NotificationId string          `json:"notification_id"`
	UserId         string          `json:"user_id"`
	Type           string          `json:"type"`
	Title          string          `json:"title"`
	Message        string          `json:"message"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Topics for service liveness tracking.
const (
	HeartbeatTopic = "service.heartbeat"
	ShutdownTopic  = "service.shutdown"
)

type ServiceHeartbeat struct {
	ID        string    `json:"id"` // service id
	Timestamp time.Time `json:"timestamp"`
}

type ServiceShutdown struct {
	ID string `json:"id"` // service id
}
