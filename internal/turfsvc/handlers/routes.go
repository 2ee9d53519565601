package handlers

import (
	"os"

	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
)

func (h *Handler) SetRoutes(r *chi.Mux) {
	r.Route("/v1", func(r chi.Router) {

		r.Get("/health", h.HealthHandler)

		// Secure routes
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(h.tokenAuth))
			r.Use(jwtauth.Authenticator)

			r.Get("/me", h.MeHandler)

			r.Route("/games", func(r chi.Router) {
				r.Post("/", h.CreateGameHandler)
				r.Get("/", h.ListGamesHandler)
				r.Get("/{gameID}", h.GetGameHandler)
				r.Patch("/{gameID}", h.UpdateGameHandler)
				r.Post("/{gameID}/requests", h.SendRequestHandler)
				r.Get("/{gameID}/requests", h.ListGameRequestsHandler)
				r.Get("/{gameID}/participants", h.ListParticipantsHandler)
			})

			r.Route("/requests", func(r chi.Router) {
				r.Get("/", h.ListMyRequestsHandler)
				r.Post("/{requestID}/accept", h.AcceptRequestHandler)
				r.Post("/{requestID}/reject", h.RejectRequestHandler)
				r.Delete("/{requestID}", h.CancelRequestHandler)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.ListNotificationsHandler)
				r.Get("/unread-count", h.UnreadCountHandler)
				r.Post("/{notificationID}/read", h.MarkReadHandler)
			})

			r.Get("/users/{userID}", h.GetUserHandler)

			r.Route("/turfs", func(r chi.Router) {
				r.Get("/", h.ListTurfsHandler)
				r.Get("/{turfID}", h.GetTurfHandler)
			})
		})
	})
}

func (h *Handler) InitAuth() {
	var jwtKey = os.Getenv("JWT_SECRET_KEY")
	h.tokenAuth = jwtauth.New("HS256", []byte(jwtKey), nil)
}
