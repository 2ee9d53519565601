package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/tapturf/turf-services/internal/turfsvc/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Outcomes the accept/reject transaction can surface besides driver
// failures. The service layer maps these onto its user-facing taxonomy.
var (
	ErrRequestNotFound   = errors.New("request not found")
	ErrRequestNotPending = errors.New("request is not pending")
	ErrGameFull          = errors.New("game is already full")
)

type RequestStore struct {
	db *pgxpool.Pool
}

func NewRequestStore(db *pgxpool.Pool) *RequestStore {
	return &RequestStore{db: db}
}

const requestColumns = `
	id, game_id, user_id, note, status,
	requester_name, requester_phone, requester_avatar,
	created_at, updated_at
`

func scanRequest(row pgx.Row) (*models.GameRequest, error) {
	r := &models.GameRequest{}
	err := row.Scan(
		&r.ID,
		&r.GameID,
		&r.UserID,
		&r.Note,
		&r.Status,
		&r.RequesterName,
		&r.RequesterPhone,
		&r.RequesterAvatar,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *RequestStore) GetRequestByID(ctx context.Context, requestID string) (*models.GameRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM game_requests WHERE id = $1`

	r, err := scanRequest(s.db.QueryRow(ctx, query, requestID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // request not found
		}
		return nil, fmt.Errorf("failed to get request by ID: %w", err)
	}

	return r, nil
}

// GetActiveRequest returns the pending or accepted request for a
// (game, user) pair, if any. Rejected requests do not block a retry.
func (s *RequestStore) GetActiveRequest(ctx context.Context, gameID, userID string) (*models.GameRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM game_requests
		WHERE game_id = $1 AND user_id = $2 AND status IN ($3, $4)
		LIMIT 1
	`

	r, err := scanRequest(s.db.QueryRow(ctx, query, gameID, userID,
		models.RequestStatusPending, models.RequestStatusAccepted))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active request: %w", err)
	}

	return r, nil
}

func (s *RequestStore) ListRequestsByGame(ctx context.Context, gameID string) ([]*models.GameRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM game_requests
		WHERE game_id = $1
		ORDER BY created_at DESC
	`
	return s.listRequests(ctx, query, gameID)
}

func (s *RequestStore) ListRequestsByUser(ctx context.Context, userID string) ([]*models.GameRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM game_requests
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	return s.listRequests(ctx, query, userID)
}

func (s *RequestStore) listRequests(ctx context.Context, query string, arg string) ([]*models.GameRequest, error) {
	rows, err := s.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	var reqs []*models.GameRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, r)
	}

	return reqs, rows.Err()
}

func (s *RequestStore) CreateRequest(ctx context.Context, r *models.GameRequest) (*models.GameRequest, error) {
	query := `
		INSERT INTO game_requests (
			id, game_id, user_id, note, status,
			requester_name, requester_phone, requester_avatar
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + requestColumns + `
	`

	created, err := scanRequest(s.db.QueryRow(ctx, query,
		r.ID, r.GameID, r.UserID, r.Note, r.Status,
		r.RequesterName, r.RequesterPhone, r.RequesterAvatar,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	return created, nil
}

// AcceptRequest performs the pending->accepted transition, the player
// count increment, and the participant insert in one transaction. The
// request row is locked and its status re-checked under the lock, so a
// second concurrent accept sees ErrRequestNotPending instead of
// double-incrementing the count.
func (s *RequestStore) AcceptRequest(ctx context.Context, requestID, participantID string) (*models.GameRequest, *models.Game, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin accept transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	req, err := scanRequest(tx.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM game_requests WHERE id = $1 FOR UPDATE`, requestID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrRequestNotFound
		}
		return nil, nil, fmt.Errorf("failed to lock request: %w", err)
	}
	if req.Status != models.RequestStatusPending {
		return nil, nil, ErrRequestNotPending
	}

	// Lock the game row before touching the count.
	var current, max int
	err = tx.QueryRow(ctx,
		`SELECT current_players, max_players FROM games WHERE id = $1 FOR UPDATE`,
		req.GameID).Scan(&current, &max)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrRequestNotFound
		}
		return nil, nil, fmt.Errorf("failed to lock game: %w", err)
	}
	if current >= max {
		return nil, nil, ErrGameFull
	}

	accepted, err := scanRequest(tx.QueryRow(ctx, `
		UPDATE game_requests
		SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3
		RETURNING `+requestColumns, requestID, models.RequestStatusAccepted, models.RequestStatusPending))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to accept request: %w", err)
	}

	game, err := scanGame(tx.QueryRow(ctx, `
		UPDATE games
		SET current_players = current_players + 1, updated_at = now()
		WHERE id = $1
		RETURNING `+gameColumns, req.GameID))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to increment player count: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO game_participants (id, game_id, user_id)
		VALUES ($1, $2, $3)
	`, participantID, req.GameID, req.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to insert participant: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit accept transaction: %w", err)
	}

	return accepted, game, nil
}

// RejectRequest is a plain pending->rejected compare-and-swap; no count
// or participant side effects.
func (s *RequestStore) RejectRequest(ctx context.Context, requestID string) (*models.GameRequest, error) {
	rejected, err := scanRequest(s.db.QueryRow(ctx, `
		UPDATE game_requests
		SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3
		RETURNING `+requestColumns, requestID, models.RequestStatusRejected, models.RequestStatusPending))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRequestNotPending
		}
		return nil, fmt.Errorf("failed to reject request: %w", err)
	}

	return rejected, nil
}

// DeleteRequest removes a pending request (requester cancel). The
// status guard keeps decided requests immutable.
func (s *RequestStore) DeleteRequest(ctx context.Context, requestID string) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM game_requests WHERE id = $1 AND status = $2
	`, requestID, models.RequestStatusPending)
	if err != nil {
		return fmt.Errorf("failed to delete request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRequestNotPending
	}

	return nil
}
