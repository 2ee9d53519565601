package store

import (
	"context"
	"fmt"

	"github.com/tapturf/turf-services/internal/turfsvc/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ParticipantStore struct {
	db *pgxpool.Pool
}

func NewParticipantStore(db *pgxpool.Pool) *ParticipantStore {
	return &ParticipantStore{db: db}
}

// Participant rows are inserted inside the accept transaction in
// RequestStore; this store only serves reads.
func (s *ParticipantStore) GetParticipantsByGameID(ctx context.Context, gameID string) ([]*models.GameParticipant, error) {
	query := `
		SELECT id, game_id, user_id, joined_at
		FROM game_participants
		WHERE game_id = $1
		ORDER BY joined_at
	`

	rows, err := s.db.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []*models.GameParticipant
	for rows.Next() {
		var p models.GameParticipant
		err := rows.Scan(
			&p.ID,
			&p.GameID,
			&p.UserID,
			&p.JoinedAt,
		)
		if err != nil {
			return nil, err
		}
		participants = append(participants, &p)
	}

	return participants, rows.Err()
}
