package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// prefsTTL is the freshness window for persona preferences.
const prefsTTL = 24 * time.Hour

// PreferenceStore holds arbitrary key/value preferences scoped by
// (user, persona) with a 24h freshness window. Get returns nil when nothing
// fresh is stored; absence is not an error.
type PreferenceStore interface {
	Set(ctx context.Context, userID, personaID string, prefs map[string]any) error
	Get(ctx context.Context, userID, personaID string) (map[string]any, error)
}

func prefsKey(userID, personaID string) string {
	return fmt.Sprintf("prefs:%s:%s", userID, personaID)
}

// RedisPreferences stores preferences as JSON strings with a TTL.
type RedisPreferences struct {
	client *redis.Client
}

// NewRedisPreferences wraps an existing Redis client.
func NewRedisPreferences(client *redis.Client) *RedisPreferences {
	return &RedisPreferences{client: client}
}

// Set implements PreferenceStore.
func (p *RedisPreferences) Set(ctx context.Context, userID, personaID string, prefs map[string]any) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}
	if err := p.client.Set(ctx, prefsKey(userID, personaID), data, prefsTTL).Err(); err != nil {
		return fmt.Errorf("set preferences: %w", err)
	}
	return nil
}

// Get implements PreferenceStore.
func (p *RedisPreferences) Get(ctx context.Context, userID, personaID string) (map[string]any, error) {
	data, err := p.client.Get(ctx, prefsKey(userID, personaID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get preferences: %w", err)
	}

	var prefs map[string]any
	if err := json.Unmarshal([]byte(data), &prefs); err != nil {
		return nil, nil // treat corrupt payloads as absent
	}
	return prefs, nil
}

type prefEntry struct {
	prefs     map[string]any
	expiresAt time.Time
}

// InMemoryPreferences is the in-process fallback with the same TTL semantics.
// Safe for concurrent use.
type InMemoryPreferences struct {
	mu      sync.RWMutex
	entries map[string]prefEntry
	now     func() time.Time
}

// NewInMemoryPreferences constructs an empty in-process preference store.
func NewInMemoryPreferences() *InMemoryPreferences {
	return &InMemoryPreferences{entries: make(map[string]prefEntry), now: time.Now}
}

// Set implements PreferenceStore.
func (p *InMemoryPreferences) Set(_ context.Context, userID, personaID string, prefs map[string]any) error {
	cloned := make(map[string]any, len(prefs))
	for k, v := range prefs {
		cloned[k] = v
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries[prefsKey(userID, personaID)] = prefEntry{prefs: cloned, expiresAt: p.now().Add(prefsTTL)}
	return nil
}

// Get implements PreferenceStore.
func (p *InMemoryPreferences) Get(_ context.Context, userID, personaID string) (map[string]any, error) {
	p.mu.RLock()
	entry, ok := p.entries[prefsKey(userID, personaID)]
	p.mu.RUnlock()

	if !ok || p.now().After(entry.expiresAt) {
		return nil, nil
	}
	return entry.prefs, nil
}
