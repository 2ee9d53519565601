package models

import "time"

// Request statuses. pending is the only non-terminal state; a pending
// request may also be hard-deleted by its own creator (cancel).
const (
	RequestStatusPending  = "pending"
	RequestStatusAccepted = "accepted"
	RequestStatusRejected = "rejected"
)

// GameRequest is a player's application to join a game. Requester
// display fields are denormalized at insert time.
type GameRequest struct {
	ID              string    `json:"id"`
	GameID          string    `json:"game_id"`
	UserID          string    `json:"user_id"`
	Note            string    `json:"note,omitempty"`
	Status          string    `json:"status"`
	RequesterName   string    `json:"requester_name"`
	RequesterPhone  string    `json:"requester_phone,omitempty"`
	RequesterAvatar string    `json:"requester_avatar,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Active reports whether the request counts toward the one-active-
// request-per-(game,user) rule.
func (r *GameRequest) Active() bool {
	return r.Status == RequestStatusPending || r.Status == RequestStatusAccepted
}
