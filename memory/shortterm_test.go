package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func testShortTermStore(t *testing.T, s ShortTermStore) {
	ctx := context.Background()

	t.Run("most recent first", func(t *testing.T) {
		require.NoError(t, s.Append(ctx, "order-user", Entry{Role: "user", Content: "first"}))
		require.NoError(t, s.Append(ctx, "order-user", Entry{Role: "assistant", Content: "second"}))

		entries, err := s.Recent(ctx, "order-user", 5)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "second", entries[0].Content)
		assert.Equal(t, "first", entries[1].Content)
	})

	t.Run("capacity ten", func(t *testing.T) {
		for i := 0; i < 15; i++ {
			require.NoError(t, s.Append(ctx, "cap-user", Entry{Role: "user", Content: fmt.Sprintf("m%d", i)}))
		}

		entries, err := s.Recent(ctx, "cap-user", 10)
		require.NoError(t, err)
		require.Len(t, entries, 10)
		// Exactly the last 10 inserted, newest first.
		for i := 0; i < 10; i++ {
			assert.Equal(t, fmt.Sprintf("m%d", 14-i), entries[i].Content)
		}
	})

	t.Run("read clamps above capacity", func(t *testing.T) {
		for i := 0; i < 12; i++ {
			require.NoError(t, s.Append(ctx, "clamp-user", Entry{Role: "user", Content: fmt.Sprintf("m%d", i)}))
		}
		entries, err := s.Recent(ctx, "clamp-user", 50)
		require.NoError(t, err)
		assert.Len(t, entries, 10)
	})

	t.Run("scoped per user", func(t *testing.T) {
		require.NoError(t, s.Append(ctx, "user-a", Entry{Role: "user", Content: "for a"}))

		entries, err := s.Recent(ctx, "user-b", 5)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("zero read", func(t *testing.T) {
		entries, err := s.Recent(ctx, "order-user", 0)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestInMemoryShortTerm(t *testing.T) {
	testShortTermStore(t, NewInMemoryShortTerm())
}

func TestRedisShortTerm(t *testing.T) {
	testShortTermStore(t, NewRedisShortTerm(setupRedis(t)))
}

func TestRedisShortTermSkipsCorruptEntries(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	s := NewRedisShortTerm(client)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "u1", Entry{Role: "user", Content: "good"}))
	_, err := mr.Lpush("st:u1", "{not json")
	require.NoError(t, err)

	entries, err := s.Recent(ctx, "u1", 5)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "good", entries[0].Content)
}

func TestRedisShortTermSetsExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	s := NewRedisShortTerm(client)

	require.NoError(t, s.Append(context.Background(), "u1", Entry{Role: "user", Content: "x"}))
	assert.Greater(t, mr.TTL("st:u1").Seconds(), float64(0))
}
