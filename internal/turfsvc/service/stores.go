package service

import (
	"context"

	"github.com/tapturf/turf-services/internal/turfsvc/models"
)

// Store interfaces consumed by the services. The pgx stores in the
// store package satisfy them; tests substitute in-memory fakes.

type GameStore interface {
	GetGameByID(ctx context.Context, gameID string) (*models.Game, error)
	ListOpenGames(ctx context.Context, sport string) ([]*models.Game, error)
	CreateGame(ctx context.Context, g *models.Game) (*models.Game, error)
	UpdateGame(ctx context.Context, g *models.Game) (*models.Game, error)
}

type RequestStore interface {
	GetRequestByID(ctx context.Context, requestID string) (*models.GameRequest, error)
	GetActiveRequest(ctx context.Context, gameID, userID string) (*models.GameRequest, error)
	ListRequestsByGame(ctx context.Context, gameID string) ([]*models.GameRequest, error)
	ListRequestsByUser(ctx context.Context, userID string) ([]*models.GameRequest, error)
	CreateRequest(ctx context.Context, r *models.GameRequest) (*models.GameRequest, error)
	AcceptRequest(ctx context.Context, requestID, participantID string) (*models.GameRequest, *models.Game, error)
	RejectRequest(ctx context.Context, requestID string) (*models.GameRequest, error)
	DeleteRequest(ctx context.Context, requestID string) error
}

type ParticipantStore interface {
	GetParticipantsByGameID(ctx context.Context, gameID string) ([]*models.GameParticipant, error)
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) (*models.Notification, error)
	ListNotificationsByUser(ctx context.Context, userID string) ([]*models.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, notificationID string) error
}

type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	CreateUser(ctx context.Context, user models.User) (string, error)
}

type TurfStore interface {
	GetTurfByID(ctx context.Context, turfID string) (*models.Turf, error)
	ListTurfs(ctx context.Context) ([]*models.Turf, error)
}
