package service

import (
	"sort"
	"strings"
	"time"

	"github.com/tapturf/turf-services/internal/turfsvc/models"
)

// A game dated today stays visible until 30 minutes past its start, so
// a session in progress is not hidden from its own players.
const startGrace = 30 * time.Minute

const dateLayout = "2006-01-02"
const clockLayout = "15:04"

// ExpiredAt reports whether the game is over from the viewpoint of now.
// Unparseable dates and underivable start times fail open (not
// expired): a game must never disappear because of a data-entry defect.
func ExpiredAt(g *models.Game, now time.Time) bool {
	day, err := time.ParseInLocation(dateLayout, g.Date, now.Location())
	if err != nil {
		return false
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if day.Before(today) {
		return true
	}
	if day.After(today) {
		return false
	}

	clock, ok := startClock(g)
	if !ok {
		return false
	}
	hm, err := time.Parse(clockLayout, clock)
	if err != nil {
		return false
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), hm.Hour(), hm.Minute(), 0, 0, now.Location())
	return !now.Before(start.Add(startGrace))
}

// startClock derives the "HH:MM" start from the combined slot field
// (text before the hyphen) or the discrete start-time field.
func startClock(g *models.Game) (string, bool) {
	raw := g.TimeSlot
	if raw == "" {
		raw = g.StartTime
	}
	if raw == "" {
		return "", false
	}
	if i := strings.Index(raw, "-"); i >= 0 {
		raw = raw[:i]
	}
	return strings.TrimSpace(raw), true
}

// FilterExpired drops games past their start grace window.
func FilterExpired(games []*models.Game, now time.Time) []*models.Game {
	kept := make([]*models.Game, 0, len(games))
	for _, g := range games {
		if !ExpiredAt(g, now) {
			kept = append(kept, g)
		}
	}
	return kept
}

// SortAvailable orders the available view: games closest to full first
// (ascending spots left), newest first among equals. Stable so
// equal-key rows keep their source order.
func SortAvailable(games []*models.Game) {
	sort.SliceStable(games, func(i, j int) bool {
		si, sj := games[i].SpotsLeft(), games[j].SpotsLeft()
		if si != sj {
			return si < sj
		}
		return games[i].CreatedAt.After(games[j].CreatedAt)
	})
}

// MergeGames combines store rows with fallback-cached rows, preferring
// the store copy when an id exists in both.
func MergeGames(remote, cached []*models.Game) []*models.Game {
	seen := make(map[string]struct{}, len(remote))
	merged := make([]*models.Game, 0, len(remote)+len(cached))
	for _, g := range remote {
		seen[g.ID] = struct{}{}
		merged = append(merged, g)
	}
	for _, g := range cached {
		if _, ok := seen[g.ID]; !ok {
			merged = append(merged, g)
		}
	}
	return merged
}

// MergeRequests is MergeGames for request lists.
func MergeRequests(remote, cached []*models.GameRequest) []*models.GameRequest {
	seen := make(map[string]struct{}, len(remote))
	merged := make([]*models.GameRequest, 0, len(remote)+len(cached))
	for _, r := range remote {
		seen[r.ID] = struct{}{}
		merged = append(merged, r)
	}
	for _, r := range cached {
		if _, ok := seen[r.ID]; !ok {
			merged = append(merged, r)
		}
	}
	return merged
}
