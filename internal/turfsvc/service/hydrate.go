package service

import "github.com/tapturf/turf-services/internal/turfsvc/models"

// Display fields are copied from the profile onto game and request rows
// at write time so list views render without joins. The copies go stale
// if the profile later changes; that trade-off is deliberate and lives
// entirely in this file.

func hydrateHost(g *models.Game, u *models.User) {
	if u == nil {
		return
	}
	g.HostName = u.Name
	g.HostPhone = u.Phone
	g.HostAvatar = u.Avatar
}

func hydrateRequester(r *models.GameRequest, u *models.User) {
	if u == nil {
		return
	}
	r.RequesterName = u.Name
	r.RequesterPhone = u.Phone
	r.RequesterAvatar = u.Avatar
}
