package models

import (
	"encoding/json"
	"time"
)

// Notification types.
const (
	NotifGameRequest         = "game_request"
	NotifGameRequestAccepted = "game_request_accepted"
	NotifGameRequestRejected = "game_request_rejected"
	NotifGameFull            = "game_full"
	NotifGameCancelled       = "game_cancelled"
	NotifNewPlayerJoined     = "new_player_joined"
	NotifBookingConfirmation = "booking_confirmation"
	NotifSystem              = "system"
)

// Notification is created as a side effect of request transitions and
// only ever mutated by mark-read. Metadata carries at minimum the
// gameId/requestId the client navigates to.
type Notification struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	Read      bool            `json:"read"`
	CreatedAt time.Time       `json:"created_at"`
}

// NotifMetadata builds the jsonb payload for request-driven
// notifications. Empty fields are omitted.
func NotifMetadata(gameID, requestID string) json.RawMessage {
	m := map[string]string{}
	if gameID != "" {
		m["gameId"] = gameID
	}
	if requestID != "" {
		m["requestId"] = requestID
	}
	b, _ := json.Marshal(m)
	return b
}
