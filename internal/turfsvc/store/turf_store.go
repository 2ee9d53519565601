package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/tapturf/turf-services/internal/turfsvc/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TurfStore struct {
	db *pgxpool.Pool
}

func NewTurfStore(db *pgxpool.Pool) *TurfStore {
	return &TurfStore{db: db}
}

const turfColumns = `
	id, owner_id, name, address,
	price_weekday_morning, price_weekday_afternoon, price_weekday_evening,
	price_weekend_morning, price_weekend_afternoon, price_weekend_evening,
	amenities, images, created_at, updated_at
`

func scanTurf(row pgx.Row) (*models.Turf, error) {
	t := &models.Turf{}
	err := row.Scan(
		&t.ID,
		&t.OwnerID,
		&t.Name,
		&t.Address,
		&t.Pricing.WeekdayMorning,
		&t.Pricing.WeekdayAfternoon,
		&t.Pricing.WeekdayEvening,
		&t.Pricing.WeekendMorning,
		&t.Pricing.WeekendAfternoon,
		&t.Pricing.WeekendEvening,
		&t.Amenities,
		&t.Images,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TurfStore) GetTurfByID(ctx context.Context, turfID string) (*models.Turf, error) {
	query := `SELECT ` + turfColumns + ` FROM turfs WHERE id = $1`

	t, err := scanTurf(s.db.QueryRow(ctx, query, turfID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // turf not found
		}
		return nil, fmt.Errorf("failed to get turf by ID: %w", err)
	}

	return t, nil
}

func (s *TurfStore) ListTurfs(ctx context.Context) ([]*models.Turf, error) {
	query := `SELECT ` + turfColumns + ` FROM turfs ORDER BY name`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list turfs: %w", err)
	}
	defer rows.Close()

	var turfs []*models.Turf
	for rows.Next() {
		t, err := scanTurf(rows)
		if err != nil {
			return nil, err
		}
		turfs = append(turfs, t)
	}

	return turfs, rows.Err()
}

// CreateTurf is used by the seed tooling only; the request path never
// writes turfs.
func (s *TurfStore) CreateTurf(ctx context.Context, t *models.Turf) error {
	query := `
		INSERT INTO turfs (
			id, owner_id, name, address,
			price_weekday_morning, price_weekday_afternoon, price_weekday_evening,
			price_weekend_morning, price_weekend_afternoon, price_weekend_evening,
			amenities, images
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := s.db.Exec(ctx, query,
		t.ID, t.OwnerID, t.Name, t.Address,
		t.Pricing.WeekdayMorning, t.Pricing.WeekdayAfternoon, t.Pricing.WeekdayEvening,
		t.Pricing.WeekendMorning, t.Pricing.WeekendAfternoon, t.Pricing.WeekendEvening,
		t.Amenities, t.Images,
	)
	if err != nil {
		return fmt.Errorf("failed to create turf: %w", err)
	}

	return nil
}
