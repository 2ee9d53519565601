package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/tapturf/turf-services/internal/turfsvc/models"
	"github.com/tapturf/turf-services/internal/turfsvc/service"

	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	tokenAuth *jwtauth.JWTAuth

	games    *service.GameService
	requests *service.RequestService
	notifs   *service.NotificationService
	turfs    *service.TurfService
	users    *service.UserService
}

func NewHandler(games *service.GameService, requests *service.RequestService,
	notifs *service.NotificationService, turfs *service.TurfService, users *service.UserService) *Handler {
	return &Handler{
		games:    games,
		requests: requests,
		notifs:   notifs,
		turfs:    turfs,
		users:    users,
	}
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error,omitempty"`
}

func (h *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)

	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}

func (h *Handler) respond(w http.ResponseWriter, code int, data interface{}) {
	h.CreateResponse(w, Response{Code: code, Data: data})
}

// respondErr maps the service taxonomy onto HTTP statuses. Fallback
// successes never reach here; only terminal outcomes do.
func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		code = http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		code = http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, service.ErrInvalidInput):
		code = http.StatusBadRequest
	case errors.Is(err, service.ErrDuplicateRequest),
		errors.Is(err, service.ErrAlreadyJoined),
		errors.Is(err, service.ErrGameFull),
		errors.Is(err, service.ErrGameNotOpen),
		errors.Is(err, service.ErrAlreadyProcessed):
		code = http.StatusConflict
	case errors.Is(err, service.ErrStoreUnavailable):
		code = http.StatusServiceUnavailable
	}
	if code == http.StatusInternalServerError {
		log.Errorf("internal error: %v", err)
		h.CreateResponse(w, Response{Code: code, Error: "internal error"})
		return
	}
	h.CreateResponse(w, Response{Code: code, Error: err.Error()})
}

// actingUser reads the principal from the verified JWT. The services
// never read auth state ambiently; it enters here and only here.
func actingUser(r *http.Request) string {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return ""
	}
	userID, _ := claims["user_id"].(string)
	return userID
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	rsp := Response{
		Message: "turf service is running at port " + os.Getenv("TURF_SERVICE_PORT"),
		Code:    200,
		Data:    nil,
	}
	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("Failed to encode health response: %v", err)
	}
}

func (h *Handler) MeHandler(w http.ResponseWriter, r *http.Request) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		h.respondErr(w, service.ErrUnauthenticated)
		return
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		h.respondErr(w, service.ErrUnauthenticated)
		return
	}
	name, _ := claims["name"].(string)
	email, _ := claims["email"].(string)
	avatar, _ := claims["avatar"].(string)

	user, err := h.users.GetOrCreateUser(r.Context(), models.User{
		UserId: userID,
		Name:   name,
		Email:  email,
		Avatar: avatar,
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, http.StatusOK, user)
}

func (h *Handler) CreateGameHandler(w http.ResponseWriter, r *http.Request) {
	var in service.CreateGameInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.respondErr(w, service.ErrInvalidInput)
		return
	}

	game, err := h.games.Create(r.Context(), actingUser(r), in)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, http.StatusCreated, game)
}

func (h *Handler) ListGamesHandler(w http.ResponseWriter, r *http.Request) {
	filter := service.GameFilter{Sport: r.URL.Query().Get("sport")}

	games, err := h.games.ListAvailable(r.Context(), actingUser(r), filter)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, http.StatusOK, games)
}

func (h *Handler) GetGameHandler(w http.ResponseWriter, r *http.Request) {
	game, err := h.games.Get(r.Context(), actingUser(r), chi.URLParam(r, "gameID"))
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, http.StatusOK, game)
}

func (h *Handler) UpdateGameHandler(w http.ResponseWriter, r *http.Request) {
	var patch service.GamePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.respondErr(w, service.ErrInvalidInput)
		return
	}

	game, err := h.games.Update(r.Context(), actingUser(r), chi.URLParam(r, "gameID"), patch)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, http.StatusOK, game)
}

func (h *Handler) ListParticipantsHandler(w http.ResponseWriter, r *http.Request) {
	participants, err := h.games.ListParticipants(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, http.StatusOK, participants)
}

func (h *Handler) SendRequestHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Note string `json:"note"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			h.respondErr(w, service.ErrInvalidInput)
			return
		}
	}

	req, err := h.requests.Send(r.Context(), actingUser(r), chi.URLParam(r, "gameID"), body.Note)
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, http.StatusCreated, req)
}

func (h *Handler) ListGameRequestsHandler(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.requests.ListForGame(r.Context(), actingUser(r), chi.URLParam(r, "gameID"))
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, http.StatusOK, reqs)
}

func (h *Handler) ListMyRequestsHandler(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.requests.ListMine(r.Context(), actingUser(r))
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, http.StatusOK, reqs)
}

func (h *Handler) AcceptRequestHandler(w http.ResponseWriter, r *http.Request) {
	req, err := h.requests.Accept(r.Context(), actingUser(r), chi.URLParam(r, "requestID"))
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, http.StatusOK, req)
}

func (h *Handler) RejectRequestHandler(w http.ResponseWriter, r *http.Request) {
	req, err := h.requests.Reject(r.Context(), actingUser(r), chi.URLParam(r, "requestID"))
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, http.StatusOK, req)
}

func (h *Handler) CancelRequestHandler(w http.ResponseWriter, r *http.Request) {
	err := h.requests.CancelMine(r.Context(), actingUser(r), chi.URLParam(r, "requestID"))
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, http.StatusOK, nil)
}

func (h *Handler) ListNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	notifs, err := h.notifs.List(r.Context(), actingUser(r))
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, http.StatusOK, notifs)
}

func (h *Handler) UnreadCountHandler(w http.ResponseWriter, r *http.Request) {
	count, err := h.notifs.UnreadCount(r.Context(), actingUser(r))
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, http.StatusOK, map[string]int{"unread": count})
}

func (h *Handler) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	err := h.notifs.MarkRead(r.Context(), actingUser(r), chi.URLParam(r, "notificationID"))
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, http.StatusOK, nil)
}

func (h *Handler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, http.StatusOK, user)
}

func (h *Handler) ListTurfsHandler(w http.ResponseWriter, r *http.Request) {
	turfs, err := h.turfs.List(r.Context())
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, http.StatusOK, turfs)
}

func (h *Handler) GetTurfHandler(w http.ResponseWriter, r *http.Request) {
	turf, err := h.turfs.Get(r.Context(), chi.URLParam(r, "turfID"))
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, http.StatusOK, turf)
}
