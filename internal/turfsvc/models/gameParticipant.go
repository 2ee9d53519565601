package models

import "time"

// GameParticipant exists exactly once per accepted request and counts
// against the game's capacity.
type GameParticipant struct {
	ID       string    `json:"id"`
	GameID   string    `json:"game_id"`
	UserID   string    `json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
}
