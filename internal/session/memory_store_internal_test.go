package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSweepsExpiredEntries(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, "abandoned", &Data{}, 10*time.Minute))
	require.NoError(t, store.Set(ctx, "active", &Data{}, time.Hour))
	assert.Len(t, store.entries, 2)

	now = now.Add(30 * time.Second)
	require.NoError(t, store.Set(ctx, "early", &Data{}, time.Hour))
	assert.Len(t, store.entries, 3, "no sweep before the interval")

	now = now.Add(15 * time.Minute)
	require.NoError(t, store.Set(ctx, "late", &Data{}, time.Hour))
	assert.NotContains(t, store.entries, "abandoned")
	assert.Contains(t, store.entries, "active")
	assert.Contains(t, store.entries, "early")
	assert.Contains(t, store.entries, "late")
}
