package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func pgErr(code, constraint string) error {
	return &pgconn.PgError{Code: code, ConstraintName: constraint}
}

func TestIsUnavailable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"no rows", pgx.ErrNoRows, false},
		{"wrapped no rows", fmt.Errorf("failed to get game: %w", pgx.ErrNoRows), false},
		{"connection failure", pgErr("08006", ""), true},
		{"auth failure", pgErr("28P01", ""), true},
		{"missing table", pgErr("42P01", ""), true},
		{"too many connections", pgErr("53300", ""), true},
		{"admin shutdown", pgErr("57P01", ""), true},
		{"system error", pgErr("58030", ""), true},
		{"unique violation", pgErr("23505", "game_requests_active_unique"), false},
		{"fk violation", pgErr("23503", "games_creator_id_fkey"), false},
		{"check violation", pgErr("23514", "games_player_bounds"), false},
		{"driver error", errors.New("dial tcp 127.0.0.1:5432: connection refused"), true},
		{"wrapped pg error", fmt.Errorf("failed to create game: %w", pgErr("08006", "")), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUnavailable(tt.err))
		})
	}
}

func TestIsUserReferenceViolation(t *testing.T) {
	assert.True(t, IsUserReferenceViolation(pgErr("23503", "games_creator_id_fkey")))
	assert.True(t, IsUserReferenceViolation(pgErr("23503", "game_requests_user_id_fkey")))
	assert.True(t, IsUserReferenceViolation(
		fmt.Errorf("failed to create notification: %w", pgErr("23503", "notifications_user_id_fkey"))))

	assert.False(t, IsUserReferenceViolation(pgErr("23503", "games_turf_id_fkey")),
		"a missing turf is a caller mistake, not a degraded session")
	assert.False(t, IsUserReferenceViolation(pgErr("23505", "games_creator_id_fkey")))
	assert.False(t, IsUserReferenceViolation(errors.New("connection refused")))
	assert.False(t, IsUserReferenceViolation(nil))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(pgErr("23505", "game_requests_active_unique")))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", pgErr("23505", ""))))
	assert.False(t, IsUniqueViolation(pgErr("23503", "")))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
	assert.False(t, IsUniqueViolation(nil))
}
