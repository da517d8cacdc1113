package memory

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryPreferencesRoundTrip(t *testing.T) {
	p := NewInMemoryPreferences()
	ctx := context.Background()

	require.NoError(t, p.Set(ctx, "u1", "athir", map[string]any{"tone": "formal"}))

	prefs, err := p.Get(ctx, "u1", "athir")
	require.NoError(t, err)
	assert.Equal(t, "formal", prefs["tone"])
}

func TestInMemoryPreferencesAbsent(t *testing.T) {
	p := NewInMemoryPreferences()

	prefs, err := p.Get(context.Background(), "u1", "athir")
	require.NoError(t, err)
	assert.Nil(t, prefs)
}

func TestInMemoryPreferencesExpiry(t *testing.T) {
	p := NewInMemoryPreferences()
	ctx := context.Background()

	require.NoError(t, p.Set(ctx, "u1", "athir", map[string]any{"tone": "formal"}))
	p.now = func() time.Time { return time.Now().Add(25 * time.Hour) }

	prefs, err := p.Get(ctx, "u1", "athir")
	require.NoError(t, err)
	assert.Nil(t, prefs)
}

func TestInMemoryPreferencesScopedByPersona(t *testing.T) {
	p := NewInMemoryPreferences()
	ctx := context.Background()

	require.NoError(t, p.Set(ctx, "u1", "athir", map[string]any{"tone": "formal"}))

	prefs, err := p.Get(ctx, "u1", "other")
	require.NoError(t, err)
	assert.Nil(t, prefs)
}

func TestRedisPreferencesRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	p := NewRedisPreferences(client)
	ctx := context.Background()

	require.NoError(t, p.Set(ctx, "u1", "athir", map[string]any{"tone": "playful", "blocked_tools": []any{"web_search"}}))

	prefs, err := p.Get(ctx, "u1", "athir")
	require.NoError(t, err)
	assert.Equal(t, "playful", prefs["tone"])

	// 24h TTL applied.
	assert.Greater(t, mr.TTL("prefs:u1:athir").Hours(), float64(23))
}

func TestRedisPreferencesExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	p := NewRedisPreferences(client)
	ctx := context.Background()

	require.NoError(t, p.Set(ctx, "u1", "athir", map[string]any{"tone": "formal"}))
	mr.FastForward(25 * time.Hour)

	prefs, err := p.Get(ctx, "u1", "athir")
	require.NoError(t, err)
	assert.Nil(t, prefs)
}
