package broker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStaleSince(t *testing.T) {
	b := &Broker{}
	now := time.Now()

	b.LastHeartbeatMap.Store("turf-001", now)
	b.LastHeartbeatMap.Store("turf-002", now.Add(-5*time.Minute))

	stale := b.StaleSince(now.Add(-2 * time.Minute))
	assert.Equal(t, []string{"turf-002"}, stale)

	b.LastHeartbeatMap.Delete("turf-002")
	assert.Empty(t, b.StaleSince(now.Add(-2*time.Minute)))
}
