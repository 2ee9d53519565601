package service

import "errors"

// User-facing outcomes. Handlers match these with errors.Is and map
// them onto HTTP statuses; none of them is retried or degraded.
var (
	ErrUnauthenticated  = errors.New("no authenticated principal")
	ErrInvalidInput     = errors.New("invalid input")
	ErrForbidden        = errors.New("principal does not own this resource")
	ErrNotFound         = errors.New("not found")
	ErrDuplicateRequest = errors.New("a pending request already exists for this game")
	ErrAlreadyJoined    = errors.New("already joined this game")
	ErrGameFull         = errors.New("game is full")
	ErrGameNotOpen      = errors.New("game is not open for join requests")
	ErrAlreadyProcessed = errors.New("request was already processed")
)

// ErrStoreUnavailable surfaces only when the fallback path also fails
// or no fallback applies to the operation.
var ErrStoreUnavailable = errors.New("store unavailable")
