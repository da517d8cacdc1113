package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// shortTermCap bounds the per-user recent-message buffer.
const shortTermCap = 10

// shortTermTTL is the best-effort expiry applied to the per-user buffer.
const shortTermTTL = time.Hour

// Entry is one role/content pair in short-term memory.
type Entry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ShortTermStore is the bounded recent-message buffer for one user.
// Entries are ordered most-recent-first and capped at 10 per user.
type ShortTermStore interface {
	// Append prepends an entry to the user's buffer and truncates to capacity.
	Append(ctx context.Context, userID string, entry Entry) error

	// Recent returns up to n entries, most recent first.
	Recent(ctx context.Context, userID string, n int) ([]Entry, error)
}

func shortTermKey(userID string) string { return "st:" + userID }

// RedisShortTerm stores the buffer as a Redis list (LPUSH + LTRIM 0..9).
type RedisShortTerm struct {
	client *redis.Client
}

// NewRedisShortTerm wraps an existing Redis client.
func NewRedisShortTerm(client *redis.Client) *RedisShortTerm {
	return &RedisShortTerm{client: client}
}

// Append implements ShortTermStore.
func (s *RedisShortTerm) Append(ctx context.Context, userID string, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	key := shortTermKey(userID)
	pipe := s.client.Pipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, shortTermCap-1)
	pipe.Expire(ctx, key, shortTermTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append short-term: %w", err)
	}
	return nil
}

// Recent implements ShortTermStore.
func (s *RedisShortTerm) Recent(ctx context.Context, userID string, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	if n > shortTermCap {
		n = shortTermCap
	}

	raw, err := s.client.LRange(ctx, shortTermKey(userID), 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read short-term: %w", err)
	}

	entries := make([]Entry, 0, len(raw))
	for _, item := range raw {
		var e Entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			continue // skip corrupt entries
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// InMemoryShortTerm is the in-process fallback with the same semantics as the
// Redis list. Safe for concurrent use.
type InMemoryShortTerm struct {
	mu      sync.RWMutex
	buffers map[string][]Entry
}

// NewInMemoryShortTerm constructs an empty in-process buffer store.
func NewInMemoryShortTerm() *InMemoryShortTerm {
	return &InMemoryShortTerm{buffers: make(map[string][]Entry)}
}

// Append implements ShortTermStore.
func (s *InMemoryShortTerm) Append(_ context.Context, userID string, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := append([]Entry{entry}, s.buffers[userID]...)
	if len(buf) > shortTermCap {
		buf = buf[:shortTermCap]
	}
	s.buffers[userID] = buf
	return nil
}

// Recent implements ShortTermStore.
func (s *InMemoryShortTerm) Recent(_ context.Context, userID string, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	if n > shortTermCap {
		n = shortTermCap
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	buf := s.buffers[userID]
	if n > len(buf) {
		n = len(buf)
	}
	out := make([]Entry, n)
	copy(out, buf[:n])
	return out, nil
}
