package store

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// IsUnavailable reports whether err is a transport, permission, or
// schema failure rather than a domain outcome. These are the only
// errors that trigger the local fallback path: pg class 08 (connection),
// 28 (auth), 42 (schema/privilege), 53/57/58 (resources, operator
// intervention, system), plus any non-pg driver error.
func IsUnavailable(err error) bool {
	if err == nil || errors.Is(err, pgx.ErrNoRows) {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if len(pgErr.Code) < 2 {
			return false
		}
		switch pgErr.Code[:2] {
		case "08", "28", "42", "53", "57", "58":
			return true
		}
		return false
	}
	return true
}

// IsUserReferenceViolation reports a foreign key failure on a user
// reference (the authenticated principal has no profile row). Treated
// the same as unavailability by callers: fall back, do not lose input.
func IsUserReferenceViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23503" {
		return false
	}
	return strings.Contains(pgErr.ConstraintName, "user") ||
		strings.Contains(pgErr.ConstraintName, "creator")
}

// IsUniqueViolation reports a unique constraint failure.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
