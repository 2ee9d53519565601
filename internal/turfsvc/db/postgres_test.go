package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnectRejectsBadDSN(t *testing.T) {
	_, err := Connect(context.Background(), "://not-a-dsn")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse postgres dsn")
}

func TestConnectRejectsBadMaxConns(t *testing.T) {
	t.Setenv("PG_MAX_CONNS", "zero")
	_, err := Connect(context.Background(), "postgres://localhost:5432/tapturf")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "PG_MAX_CONNS")

	t.Setenv("PG_MAX_CONNS", "0")
	_, err = Connect(context.Background(), "postgres://localhost:5432/tapturf")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "PG_MAX_CONNS")
}
