package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/tapturf/turf-services/internal/turfsvc/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type GameStore struct {
	db *pgxpool.Pool
}

func NewGameStore(db *pgxpool.Pool) *GameStore {
	return &GameStore{db: db}
}

const gameColumns = `
	id, creator_id, turf_id, turf_name, turf_address,
	sport, format, skill_level, game_date, start_time, end_time, time_slot,
	current_players, max_players, price_per_player, status,
	host_name, host_phone, host_avatar, description, is_private,
	created_at, updated_at
`

func scanGame(row pgx.Row) (*models.Game, error) {
	g := &models.Game{}
	err := row.Scan(
		&g.ID,
		&g.CreatorID,
		&g.TurfID,
		&g.TurfName,
		&g.TurfAddress,
		&g.Sport,
		&g.Format,
		&g.SkillLevel,
		&g.Date,
		&g.StartTime,
		&g.EndTime,
		&g.TimeSlot,
		&g.CurrentPlayers,
		&g.MaxPlayers,
		&g.PricePerPlayer,
		&g.Status,
		&g.HostName,
		&g.HostPhone,
		&g.HostAvatar,
		&g.Description,
		&g.IsPrivate,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (s *GameStore) GetGameByID(ctx context.Context, gameID string) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`

	g, err := scanGame(s.db.QueryRow(ctx, query, gameID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // game not found
		}
		return nil, fmt.Errorf("failed to get game by ID: %w", err)
	}

	return g, nil
}

// ListOpenGames returns candidate rows for the available view, newest
// first. Expiry filtering and the spots-left ordering are applied by the
// service on top of this.
func (s *GameStore) ListOpenGames(ctx context.Context, sport string) ([]*models.Game, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE status = $1 AND is_private = false
		  AND ($2 = '' OR sport = $2)
		ORDER BY created_at DESC
	`

	rows, err := s.db.Query(ctx, query, models.GameStatusOpen, sport)
	if err != nil {
		return nil, fmt.Errorf("failed to list open games: %w", err)
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}

	return games, rows.Err()
}

func (s *GameStore) CreateGame(ctx context.Context, g *models.Game) (*models.Game, error) {
	query := `
		INSERT INTO games (
			id, creator_id, turf_id, turf_name, turf_address,
			sport, format, skill_level, game_date, start_time, end_time, time_slot,
			current_players, max_players, price_per_player, status,
			host_name, host_phone, host_avatar, description, is_private
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
		        $13, $14, $15, $16, $17, $18, $19, $20, $21)
		RETURNING ` + gameColumns + `
	`

	created, err := scanGame(s.db.QueryRow(ctx, query,
		g.ID, g.CreatorID, g.TurfID, g.TurfName, g.TurfAddress,
		g.Sport, g.Format, g.SkillLevel, g.Date, g.StartTime, g.EndTime, g.TimeSlot,
		g.CurrentPlayers, g.MaxPlayers, g.PricePerPlayer, g.Status,
		g.HostName, g.HostPhone, g.HostAvatar, g.Description, g.IsPrivate,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	return created, nil
}

// UpdateGame writes the host-editable columns plus status. The caller
// loads the row, applies its patch, and saves; creator_id, turf
// references and player counts are never touched here.
func (s *GameStore) UpdateGame(ctx context.Context, g *models.Game) (*models.Game, error) {
	query := `
		UPDATE games
		SET game_date = $2, start_time = $3, end_time = $4, time_slot = $5,
		    sport = $6, format = $7, skill_level = $8, max_players = $9,
		    price_per_player = $10, description = $11, is_private = $12,
		    status = $13, updated_at = now()
		WHERE id = $1
		RETURNING ` + gameColumns + `
	`

	updated, err := scanGame(s.db.QueryRow(ctx, query,
		g.ID, g.Date, g.StartTime, g.EndTime, g.TimeSlot,
		g.Sport, g.Format, g.SkillLevel, g.MaxPlayers,
		g.PricePerPlayer, g.Description, g.IsPrivate, g.Status,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	return updated, nil
}
