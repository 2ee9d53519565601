package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Turf is a bookable facility. The core only reads turfs; ownership and
// editing belong to the admin tooling outside this repo.
type Turf struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Pricing   Pricing   `json:"pricing"`
	Amenities []string  `json:"amenities"`
	Images    []string  `json:"images"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Pricing holds the per-time-block hourly rates.
type Pricing struct {
	WeekdayMorning   decimal.Decimal `json:"weekday_morning"`
	WeekdayAfternoon decimal.Decimal `json:"weekday_afternoon"`
	WeekdayEvening   decimal.Decimal `json:"weekday_evening"`
	WeekendMorning   decimal.Decimal `json:"weekend_morning"`
	WeekendAfternoon decimal.Decimal `json:"weekend_afternoon"`
	WeekendEvening   decimal.Decimal `json:"weekend_evening"`
}
