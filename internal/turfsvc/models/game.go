package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Game statuses. Transitions only move toward completed/cancelled;
// 'open' is the only status that accepts join requests.
const (
	GameStatusOpen      = "open"
	GameStatusUpcoming  = "upcoming"
	GameStatusActive    = "active"
	GameStatusCompleted = "completed"
	GameStatusCancelled = "cancelled"
)

// Game is a pickup session hosted by a player at a turf. Turf and host
// display fields are denormalized onto the row at write time so list
// views render without joins.
type Game struct {
	ID             string          `json:"id"`
	CreatorID      string          `json:"creator_id"`
	TurfID         string          `json:"turf_id"`
	TurfName       string          `json:"turf_name"`
	TurfAddress    string          `json:"turf_address"`
	Sport          string          `json:"sport"`
	Format         string          `json:"format"`      // e.g. 5v5, 7v7
	SkillLevel     string          `json:"skill_level"` // beginner | intermediate | advanced | all
	Date           string          `json:"date"`        // "2006-01-02", form-sourced; expiry parsing fails open
	StartTime      string          `json:"start_time"`  // "15:04"
	EndTime        string          `json:"end_time"`
	TimeSlot       string          `json:"time_slot,omitempty"` // "HH:MM-HH:MM" when sourced as one field
	CurrentPlayers int             `json:"current_players"`
	MaxPlayers     int             `json:"max_players"`
	PricePerPlayer decimal.Decimal `json:"price_per_player"`
	Status         string          `json:"status"`
	HostName       string          `json:"host_name"`
	HostPhone      string          `json:"host_phone,omitempty"`
	HostAvatar     string          `json:"host_avatar,omitempty"`
	Description    string          `json:"description,omitempty"`
	IsPrivate      bool            `json:"is_private"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// SpotsLeft is the primary sort key for the available-games view.
func (g *Game) SpotsLeft() int {
	return g.MaxPlayers - g.CurrentPlayers
}

// Terminal reports whether the game status admits no further transition.
func (g *Game) Terminal() bool {
	return g.Status == GameStatusCompleted || g.Status == GameStatusCancelled
}
